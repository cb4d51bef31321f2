package value_test

import (
	"encoding/json"
	"math"
	"testing"
	"time"

	"github.com/aretw0/simscope/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMapping_KeysUniqueAndOrdered(t *testing.T) {
	m := value.Mapping(
		value.E("b", value.Int(1)),
		value.E("a", value.Int(2)),
		value.E("b", value.Int(3)),
	)

	assert.Equal(t, []string{"b", "a"}, m.Keys())
	got, ok := m.Get("b")
	require.True(t, ok)
	n, _ := got.AsNumber()
	assert.Equal(t, 3.0, n)
}

func TestMapping_WithDoesNotMutate(t *testing.T) {
	base := value.Mapping(value.E("a", value.Int(1)))
	next := base.With("b", value.Int(2))

	assert.Equal(t, 1, base.Len())
	assert.Equal(t, 2, next.Len())
}

func TestEqual(t *testing.T) {
	tests := []struct {
		name string
		a, b value.Value
		want bool
	}{
		{"null", value.Null(), value.Null(), true},
		{"kind mismatch", value.Int(1), value.String("1"), false},
		{"numbers", value.Int(2), value.Number(2.0), true},
		{"nan", value.Number(math.NaN()), value.Number(math.NaN()), true},
		{"sequence order matters", value.Sequence(value.Int(1), value.Int(2)), value.Sequence(value.Int(2), value.Int(1)), false},
		{
			"mapping order ignored",
			value.Mapping(value.E("a", value.Int(1)), value.E("b", value.Int(2))),
			value.Mapping(value.E("b", value.Int(2)), value.E("a", value.Int(1))),
			true,
		},
		{"mapping size", value.Mapping(value.E("a", value.Int(1))), value.Mapping(), false},
		{"tag name", value.Tagged("A", value.Int(1)), value.Tagged("B", value.Int(1)), false},
		{"tag inner", value.Tagged("A", value.Int(1)), value.Tagged("A", value.Int(1)), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, value.Equal(tt.a, tt.b))
		})
	}
}

func TestFrom(t *testing.T) {
	type addr struct{ Host string }

	v := value.From(map[string]any{
		"counter": 3,
		"ok":      true,
		"rtt":     20 * time.Millisecond,
		"peers":   []string{"ping", "pong"},
		"nested":  map[string]int{"x": 1},
		"nothing": nil,
		"custom":  addr{Host: "h"},
	})

	assert.Equal(t, []string{"counter", "custom", "nested", "nothing", "ok", "peers", "rtt"}, v.Keys())
	assertResolves(t, v, "counter", value.Int(3))
	assertResolves(t, v, "rtt", value.String("20ms"))
	assertResolves(t, v, "peers.1", value.String("pong"))
	assertResolves(t, v, "nested.x", value.Int(1))
	assertResolves(t, v, "nothing", value.Null())

	custom, ok := v.Get("custom")
	require.True(t, ok)
	name, _, ok := custom.Tag()
	require.True(t, ok)
	assert.Equal(t, "value_test.addr", name)
}

func TestYAML_RoundTrip(t *testing.T) {
	src := []byte(`
counter: 3
ratio: 0.5
name: ping
flags: [true, false]
addr: !Ipv4 10.0.0.1
inner:
  empty: {}
  none: null
`)
	v, err := value.ParseYAML(src)
	require.NoError(t, err)

	assertResolves(t, v, "counter", value.Int(3))
	assertResolves(t, v, "ratio", value.Number(0.5))
	assertResolves(t, v, "flags.0", value.Bool(true))
	assertResolves(t, v, "addr", value.Tagged("Ipv4", value.String("10.0.0.1")))
	assertResolves(t, v, "inner.none", value.Null())
	assert.Equal(t, []string{"counter", "ratio", "name", "flags", "addr", "inner"}, v.Keys())

	out, err := v.YAML()
	require.NoError(t, err)
	back, err := value.ParseYAML([]byte(out))
	require.NoError(t, err)
	assert.True(t, value.Equal(v, back), "round trip changed value:\n%s", out)
}

func TestJSON_RoundTripKeepsOrderAndTags(t *testing.T) {
	v := value.Mapping(
		value.E("z", value.Int(1)),
		value.E("a", value.Tagged("Some", value.String("x"))),
		value.E("list", value.Sequence(value.Null(), value.Bool(false))),
	)

	data, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"z":1,"a":{"!Some":"x"},"list":[null,false]}`, string(data))
	assert.Equal(t, `{"z":1,"a":{"!Some":"x"},"list":[null,false]}`, string(data))

	var back value.Value
	require.NoError(t, json.Unmarshal(data, &back))
	assert.True(t, value.Equal(v, back))
	assert.Equal(t, []string{"z", "a", "list"}, back.Keys())
}

func TestString(t *testing.T) {
	v := value.Mapping(
		value.E("n", value.Number(1.5)),
		value.E("s", value.Sequence(value.String("a"), value.Int(2))),
		value.E("t", value.Tagged("V6", value.String("::1"))),
	)
	assert.Equal(t, "{n: 1.5, s: [a, 2], t: !V6 ::1}", v.String())
}

func TestFloat(t *testing.T) {
	f, ok := value.Int(4).Float()
	assert.True(t, ok)
	assert.Equal(t, 4.0, f)

	f, ok = value.Tagged("Celsius", value.Number(21.5)).Float()
	assert.True(t, ok)
	assert.Equal(t, 21.5, f)

	_, ok = value.String("4").Float()
	assert.False(t, ok)
}
