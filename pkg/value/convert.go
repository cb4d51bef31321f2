package value

import (
	"encoding/json"
	"fmt"
	"net"
	"net/netip"
	"reflect"
	"sort"
	"time"
)

// From converts a plain Go value into a Value.
//
// Maps with string keys become Mappings (keys sorted, since Go maps carry no
// order), slices and arrays become Sequences, numeric kinds become Numbers.
// Types implementing fmt.Stringer (addresses, durations, ...) are rendered as
// Strings. Anything else is wrapped as a Tagged value named after its Go type
// with its %v rendering inside, so nothing is ever silently dropped.
func From(x any) Value {
	switch t := x.(type) {
	case nil:
		return Null()
	case Value:
		return t
	case *Value:
		if t == nil {
			return Null()
		}
		return *t
	case bool:
		return Bool(t)
	case string:
		return String(t)
	case []byte:
		return String(string(t))
	case int:
		return Int(int64(t))
	case int8:
		return Int(int64(t))
	case int16:
		return Int(int64(t))
	case int32:
		return Int(int64(t))
	case int64:
		return Int(t)
	case uint:
		return Number(float64(t))
	case uint8:
		return Number(float64(t))
	case uint16:
		return Number(float64(t))
	case uint32:
		return Number(float64(t))
	case uint64:
		return Number(float64(t))
	case float32:
		return Number(float64(t))
	case float64:
		return Number(t)
	case json.Number:
		if f, err := t.Float64(); err == nil {
			return Number(f)
		}
		return String(t.String())
	case time.Duration:
		return String(t.String())
	case net.IP:
		return String(t.String())
	case netip.Addr:
		return String(t.String())
	case netip.AddrPort:
		return String(t.String())
	case []any:
		items := make([]Value, len(t))
		for i, it := range t {
			items[i] = From(it)
		}
		return Sequence(items...)
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, Entry{Key: k, Value: From(t[k])})
		}
		return Mapping(entries...)
	case fmt.Stringer:
		return String(t.String())
	}
	return fromReflect(reflect.ValueOf(x))
}

func fromReflect(rv reflect.Value) Value {
	switch rv.Kind() {
	case reflect.Pointer, reflect.Interface:
		if rv.IsNil() {
			return Null()
		}
		return From(rv.Elem().Interface())
	case reflect.Slice, reflect.Array:
		items := make([]Value, rv.Len())
		for i := range items {
			items[i] = From(rv.Index(i).Interface())
		}
		return Sequence(items...)
	case reflect.Map:
		if rv.Type().Key().Kind() != reflect.String {
			break
		}
		keys := make([]string, 0, rv.Len())
		for _, k := range rv.MapKeys() {
			keys = append(keys, k.String())
		}
		sort.Strings(keys)
		entries := make([]Entry, 0, len(keys))
		for _, k := range keys {
			entries = append(entries, Entry{Key: k, Value: From(rv.MapIndex(reflect.ValueOf(k).Convert(rv.Type().Key())).Interface())})
		}
		return Mapping(entries...)
	case reflect.Bool:
		return Bool(rv.Bool())
	case reflect.String:
		return String(rv.String())
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return Int(rv.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr:
		return Number(float64(rv.Uint()))
	case reflect.Float32, reflect.Float64:
		return Number(rv.Float())
	}
	if !rv.IsValid() {
		return Null()
	}
	return Tagged(rv.Type().String(), String(fmt.Sprintf("%v", rv.Interface())))
}

// Interface converts v back into plain Go values: nil, bool, float64, string,
// []any, map[string]any. Tagged values become a single-entry map keyed by
// "!name", which is also how they are encoded as JSON.
func (v Value) Interface() any {
	switch v.kind {
	case KindBool:
		return v.b
	case KindNumber:
		return v.n
	case KindString:
		return v.s
	case KindSequence:
		out := make([]any, len(v.seq))
		for i, it := range v.seq {
			out[i] = it.Interface()
		}
		return out
	case KindMapping:
		out := make(map[string]any, v.Len())
		for _, e := range v.Entries() {
			out[e.Key] = e.Value.Interface()
		}
		return out
	case KindTagged:
		name, inner, _ := v.Tag()
		return map[string]any{"!" + name: inner.Interface()}
	}
	return nil
}
