package value

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strings"
)

// MarshalJSON encodes v as JSON. Mapping order is preserved. Tagged values
// are encoded as {"!name": inner}. Non-finite numbers have no JSON form and
// are encoded as strings.
func (v Value) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	if err := v.writeJSON(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (v Value) writeJSON(buf *bytes.Buffer) error {
	switch v.kind {
	case KindNull:
		buf.WriteString("null")
	case KindBool:
		if v.b {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case KindNumber:
		if math.IsNaN(v.n) || math.IsInf(v.n, 0) {
			return writeJSONString(buf, formatFloat(v.n))
		}
		buf.WriteString(formatFloat(v.n))
	case KindString:
		return writeJSONString(buf, v.s)
	case KindSequence:
		buf.WriteByte('[')
		for i, it := range v.seq {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := it.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte(']')
	case KindMapping:
		buf.WriteByte('{')
		for i, e := range v.Entries() {
			if i > 0 {
				buf.WriteByte(',')
			}
			if err := writeJSONString(buf, e.Key); err != nil {
				return err
			}
			buf.WriteByte(':')
			if err := e.Value.writeJSON(buf); err != nil {
				return err
			}
		}
		buf.WriteByte('}')
	case KindTagged:
		name, inner, _ := v.Tag()
		buf.WriteByte('{')
		if err := writeJSONString(buf, "!"+name); err != nil {
			return err
		}
		buf.WriteByte(':')
		if err := inner.writeJSON(buf); err != nil {
			return err
		}
		buf.WriteByte('}')
	default:
		return fmt.Errorf("value: cannot encode kind %s", v.kind)
	}
	return nil
}

func writeJSONString(buf *bytes.Buffer, s string) error {
	out, err := json.Marshal(s)
	if err != nil {
		return err
	}
	buf.Write(out)
	return nil
}

// UnmarshalJSON decodes JSON into v, preserving object key order.
// A single-key object whose key starts with "!" decodes as a Tagged value.
func (v *Value) UnmarshalJSON(data []byte) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	parsed, err := decodeJSON(dec)
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// ParseJSON decodes a JSON document into a Value.
func ParseJSON(data []byte) (Value, error) {
	var v Value
	if err := v.UnmarshalJSON(data); err != nil {
		return Value{}, fmt.Errorf("value: parse json: %w", err)
	}
	return v, nil
}

func decodeJSON(dec *json.Decoder) (Value, error) {
	tok, err := dec.Token()
	if err != nil {
		return Value{}, err
	}
	switch t := tok.(type) {
	case nil:
		return Null(), nil
	case bool:
		return Bool(t), nil
	case json.Number:
		f, err := t.Float64()
		if err != nil {
			return Value{}, err
		}
		return Number(f), nil
	case string:
		return String(t), nil
	case json.Delim:
		switch t {
		case '[':
			var items []Value
			for dec.More() {
				item, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				items = append(items, item)
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			return Sequence(items...), nil
		case '{':
			var entries []Entry
			for dec.More() {
				keyTok, err := dec.Token()
				if err != nil {
					return Value{}, err
				}
				key, ok := keyTok.(string)
				if !ok {
					return Value{}, fmt.Errorf("value: unexpected object key %v", keyTok)
				}
				item, err := decodeJSON(dec)
				if err != nil {
					return Value{}, err
				}
				entries = append(entries, Entry{Key: key, Value: item})
			}
			if _, err := dec.Token(); err != nil {
				return Value{}, err
			}
			if len(entries) == 1 && strings.HasPrefix(entries[0].Key, "!") && len(entries[0].Key) > 1 {
				return Tagged(entries[0].Key[1:], entries[0].Value), nil
			}
			return Mapping(entries...), nil
		}
	}
	return Value{}, fmt.Errorf("value: unexpected token %v", tok)
}
