package value

import (
	"math"
	"strconv"
	"strings"
)

// Placeholder is shown for a value the display layer cannot render.
const Placeholder = "<?>"

// String renders v on a single line in a compact YAML-flow-like syntax:
// scalars as-is, sequences as [a, b], mappings as {k: v}, tagged values as
// !name inner. It never fails; unknown variants render as Placeholder.
func (v Value) String() string {
	var sb strings.Builder
	v.writeFlow(&sb)
	return sb.String()
}

func (v Value) writeFlow(sb *strings.Builder) {
	switch v.kind {
	case KindNull:
		sb.WriteString("null")
	case KindBool:
		sb.WriteString(strconv.FormatBool(v.b))
	case KindNumber:
		sb.WriteString(formatFloat(v.n))
	case KindString:
		sb.WriteString(v.s)
	case KindSequence:
		sb.WriteByte('[')
		for i, it := range v.seq {
			if i > 0 {
				sb.WriteString(", ")
			}
			it.writeFlow(sb)
		}
		sb.WriteByte(']')
	case KindMapping:
		sb.WriteByte('{')
		for i, e := range v.Entries() {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(e.Key)
			sb.WriteString(": ")
			e.Value.writeFlow(sb)
		}
		sb.WriteByte('}')
	case KindTagged:
		name, inner, ok := v.Tag()
		if !ok {
			sb.WriteString(Placeholder)
			return
		}
		sb.WriteByte('!')
		sb.WriteString(name)
		sb.WriteByte(' ')
		inner.writeFlow(sb)
	default:
		sb.WriteString(Placeholder)
	}
}

// Scalar reports whether v is a leaf: null, bool, number or string.
func (v Value) Scalar() bool {
	return v.kind <= KindString
}

// Float returns a numeric reading of v for plotting. Numbers convert directly,
// tagged numbers are unwrapped. Everything else has no numeric reading.
func (v Value) Float() (float64, bool) {
	switch v.kind {
	case KindNumber:
		return v.n, true
	case KindTagged:
		_, inner, _ := v.Tag()
		return inner.Float()
	}
	return 0, false
}

func formatFloat(f float64) string {
	switch {
	case math.IsNaN(f):
		return ".nan"
	case math.IsInf(f, 1):
		return ".inf"
	case math.IsInf(f, -1):
		return "-.inf"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
