package value

import (
	"strconv"
	"strings"
)

// Resolve addresses a sub-value of v by a dot-delimited path.
//
// An empty path returns v itself. On a Mapping the dotted prefixes of path are
// tried as literal keys from the longest proper prefix down to the first
// segment; the first hit recurses into that child with the remaining suffix.
// If no prefix is a key, the whole path is tried as one literal key. This lets
// literal dotted keys ("v6.addr") and nested mappings coexist.
//
// The search is best effort: once a prefix matches there is no backtracking,
// so {"a": 1, "a.b": 2} does not resolve "a.b". On a Sequence the first
// segment must be a decimal index. Scalars and tagged values cannot be
// descended into.
//
// The boolean result is false when the path addresses nothing; that is an
// absent field, not an error.
func Resolve(v Value, path string) (Value, bool) {
	if path == "" {
		return v, true
	}

	switch v.kind {
	case KindMapping:
		end := len(path)
		for {
			pos := strings.LastIndexByte(path[:end], '.')
			if pos < 0 {
				break
			}
			if child, ok := v.Get(path[:pos]); ok {
				return Resolve(child, path[pos+1:])
			}
			end = pos
		}
		if child, ok := v.Get(path); ok {
			return child, true
		}
		return Value{}, false

	case KindSequence:
		segment, rest, _ := strings.Cut(path, ".")
		idx, err := strconv.ParseUint(segment, 10, 0)
		if err != nil {
			return Value{}, false
		}
		child, ok := v.Index(int(idx))
		if !ok {
			return Value{}, false
		}
		return Resolve(child, rest)
	}

	return Value{}, false
}

// Lookup is the method form of Resolve.
func (v Value) Lookup(path string) (Value, bool) {
	return Resolve(v, path)
}
