package value

import (
	"math"
)

// Kind identifies the variant held by a Value.
type Kind uint8

const (
	KindNull Kind = iota
	KindBool
	KindNumber
	KindString
	KindSequence
	KindMapping
	KindTagged
)

// String returns the lower-case variant name.
func (k Kind) String() string {
	switch k {
	case KindNull:
		return "null"
	case KindBool:
		return "bool"
	case KindNumber:
		return "number"
	case KindString:
		return "string"
	case KindSequence:
		return "sequence"
	case KindMapping:
		return "mapping"
	case KindTagged:
		return "tagged"
	default:
		return "unknown"
	}
}

// Value is an immutable, self-describing tree node.
// The zero Value is Null.
//
// Values are never mutated in place: builders and helpers always return a new
// Value, so a Value can be shared freely between goroutines once constructed.
type Value struct {
	kind Kind
	b    bool
	n    float64
	s    string // string payload, or the tag name for KindTagged
	seq  []Value
	m    *mapping
	tag  *Value
}

// Entry is one key/value pair of a Mapping.
type Entry struct {
	Key   string
	Value Value
}

type mapping struct {
	entries []Entry
	index   map[string]int
}

// Null returns the null Value.
func Null() Value { return Value{} }

// Bool wraps a boolean.
func Bool(b bool) Value { return Value{kind: KindBool, b: b} }

// Number wraps a number.
func Number(n float64) Value { return Value{kind: KindNumber, n: n} }

// Int wraps an integer as a Number.
func Int(n int64) Value { return Value{kind: KindNumber, n: float64(n)} }

// String wraps a string.
func String(s string) Value { return Value{kind: KindString, s: s} }

// Sequence builds an ordered sequence. The slice is copied.
func Sequence(items ...Value) Value {
	seq := make([]Value, len(items))
	copy(seq, items)
	return Value{kind: KindSequence, seq: seq}
}

// Mapping builds an insertion-ordered mapping. A repeated key keeps its first
// position and takes the last value.
func Mapping(entries ...Entry) Value {
	m := &mapping{
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[string]int, len(entries)),
	}
	for _, e := range entries {
		m.set(e.Key, e.Value)
	}
	return Value{kind: KindMapping, m: m}
}

// Tagged wraps exactly one inner Value under a tag name.
func Tagged(name string, inner Value) Value {
	v := inner
	return Value{kind: KindTagged, s: name, tag: &v}
}

// E is shorthand for building a mapping Entry.
func E(key string, v Value) Entry { return Entry{Key: key, Value: v} }

func (m *mapping) set(key string, v Value) {
	if i, ok := m.index[key]; ok {
		m.entries[i].Value = v
		return
	}
	m.index[key] = len(m.entries)
	m.entries = append(m.entries, Entry{Key: key, Value: v})
}

// Kind reports the variant.
func (v Value) Kind() Kind { return v.kind }

// IsNull reports whether v is Null.
func (v Value) IsNull() bool { return v.kind == KindNull }

// AsBool returns the boolean payload.
func (v Value) AsBool() (bool, bool) {
	if v.kind != KindBool {
		return false, false
	}
	return v.b, true
}

// AsNumber returns the numeric payload.
func (v Value) AsNumber() (float64, bool) {
	if v.kind != KindNumber {
		return 0, false
	}
	return v.n, true
}

// AsString returns the string payload.
func (v Value) AsString() (string, bool) {
	if v.kind != KindString {
		return "", false
	}
	return v.s, true
}

// Tag returns the tag name and inner value of a Tagged value.
func (v Value) Tag() (string, Value, bool) {
	if v.kind != KindTagged || v.tag == nil {
		return "", Value{}, false
	}
	return v.s, *v.tag, true
}

// Len returns the number of elements of a Sequence or entries of a Mapping.
// Every other kind has length zero.
func (v Value) Len() int {
	switch v.kind {
	case KindSequence:
		return len(v.seq)
	case KindMapping:
		if v.m == nil {
			return 0
		}
		return len(v.m.entries)
	}
	return 0
}

// Index returns the i-th element of a Sequence.
func (v Value) Index(i int) (Value, bool) {
	if v.kind != KindSequence || i < 0 || i >= len(v.seq) {
		return Value{}, false
	}
	return v.seq[i], true
}

// Items returns a copy of the elements of a Sequence.
func (v Value) Items() []Value {
	if v.kind != KindSequence {
		return nil
	}
	out := make([]Value, len(v.seq))
	copy(out, v.seq)
	return out
}

// Get looks up a literal key in a Mapping.
func (v Value) Get(key string) (Value, bool) {
	if v.kind != KindMapping || v.m == nil {
		return Value{}, false
	}
	i, ok := v.m.index[key]
	if !ok {
		return Value{}, false
	}
	return v.m.entries[i].Value, true
}

// Keys returns the keys of a Mapping in insertion order.
func (v Value) Keys() []string {
	if v.kind != KindMapping || v.m == nil {
		return nil
	}
	keys := make([]string, len(v.m.entries))
	for i, e := range v.m.entries {
		keys[i] = e.Key
	}
	return keys
}

// Entries returns a copy of the entries of a Mapping in insertion order.
func (v Value) Entries() []Entry {
	if v.kind != KindMapping || v.m == nil {
		return nil
	}
	out := make([]Entry, len(v.m.entries))
	copy(out, v.m.entries)
	return out
}

// With returns a copy of the Mapping v with key set to x.
// On a non-mapping receiver it returns a one-entry mapping.
func (v Value) With(key string, x Value) Value {
	entries := v.Entries()
	entries = append(entries, Entry{Key: key, Value: x})
	return Mapping(entries...)
}

// Equal reports deep equality. Mapping comparison ignores entry order, and
// NaN compares equal to NaN so that an unchanged NaN field is not reported as
// a change on every step.
func Equal(a, b Value) bool {
	if a.kind != b.kind {
		return false
	}
	switch a.kind {
	case KindNull:
		return true
	case KindBool:
		return a.b == b.b
	case KindNumber:
		if math.IsNaN(a.n) && math.IsNaN(b.n) {
			return true
		}
		return a.n == b.n
	case KindString:
		return a.s == b.s
	case KindSequence:
		if len(a.seq) != len(b.seq) {
			return false
		}
		for i := range a.seq {
			if !Equal(a.seq[i], b.seq[i]) {
				return false
			}
		}
		return true
	case KindMapping:
		if a.Len() != b.Len() {
			return false
		}
		for _, e := range a.Entries() {
			other, ok := b.Get(e.Key)
			if !ok || !Equal(e.Value, other) {
				return false
			}
		}
		return true
	case KindTagged:
		an, ai, _ := a.Tag()
		bn, bi, _ := b.Tag()
		return an == bn && Equal(ai, bi)
	}
	return false
}

// Equal is the method form of Equal.
func (v Value) Equal(other Value) bool { return Equal(v, other) }
