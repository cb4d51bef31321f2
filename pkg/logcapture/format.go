package logcapture

import (
	"log/slog"
	"path"
	"runtime"
	"strconv"
	"strings"
	"time"
)

// targetKey overrides the target derived from the caller's package.
const targetKey = "target"

// appendAttr writes " key=value", flattening groups into dotted keys.
func appendAttr(b *strings.Builder, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		inner := prefix
		if a.Key != "" {
			inner = prefix + a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			appendAttr(b, inner, ga)
		}
		return
	}

	if b.Len() > 0 {
		b.WriteByte(' ')
	}
	b.WriteString(prefix)
	b.WriteString(a.Key)
	b.WriteByte('=')
	if a.Value.Kind() == slog.KindString {
		b.WriteString(strconv.Quote(a.Value.String()))
		return
	}
	b.WriteString(a.Value.String())
}

// formatArgs renders slog-style key-value args as "k=v k2=v2".
func formatArgs(args []any) string {
	if len(args) == 0 {
		return ""
	}
	r := slog.NewRecord(time.Time{}, slog.LevelInfo, "", 0)
	r.Add(args...)

	var b strings.Builder
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(&b, "", a)
		return true
	})
	return b.String()
}

// source returns the package, file and line of the record's call site.
func source(pc uintptr) (pkg, file string, line int) {
	if pc == 0 {
		return "", "", 0
	}
	frame, _ := runtime.CallersFrames([]uintptr{pc}).Next()
	if frame.File != "" {
		file = path.Base(frame.File)
	}
	return funcPackage(frame.Function), file, frame.Line
}

// funcPackage extracts the import path from a qualified function name such
// as "github.com/x/y/pkg.(*T).Method".
func funcPackage(fn string) string {
	slash := strings.LastIndexByte(fn, '/')
	if dot := strings.IndexByte(fn[slash+1:], '.'); dot >= 0 {
		return fn[:slash+1+dot]
	}
	return fn
}
