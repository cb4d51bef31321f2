package value_test

import (
	"testing"

	"github.com/aretw0/simscope/pkg/value"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func assertResolves(t *testing.T, v value.Value, path string, want value.Value) {
	t.Helper()
	got, ok := value.Resolve(v, path)
	require.True(t, ok, "path %q should resolve", path)
	assert.True(t, value.Equal(want, got), "path %q: want %s, got %s", path, want, got)
}

func TestResolve_EmptyPathIsIdentity(t *testing.T) {
	values := []value.Value{
		value.Null(),
		value.Bool(true),
		value.Int(3),
		value.String("x"),
		value.Sequence(value.Int(1)),
		value.Mapping(value.E("a", value.Int(1))),
		value.Tagged("Some", value.Int(1)),
	}
	for _, v := range values {
		assertResolves(t, v, "", v)
	}
}

func TestResolve_BothAddressingStyles(t *testing.T) {
	x := value.String("X")

	literal := value.Mapping(value.E("a.b", x))
	nested := value.Mapping(value.E("a", value.Mapping(value.E("b", x))))

	assertResolves(t, literal, "a.b", x)
	assertResolves(t, nested, "a.b", x)
}

func TestResolve_MultiKeys(t *testing.T) {
	solicitations := value.Sequence(value.String("a"), value.String("b"))
	v := value.Mapping(
		value.E("inet", value.Mapping(
			value.E("v6.solicitations", solicitations),
		)),
	)

	assertResolves(t, v, "inet.v6.solicitations", solicitations)
	assertResolves(t, v, "inet.v6.solicitations.1", value.String("b"))
}

func TestResolve_Sequence(t *testing.T) {
	v := value.Sequence(
		value.Mapping(value.E("id", value.Int(7))),
		value.Int(2),
	)

	assertResolves(t, v, "0.id", value.Int(7))
	assertResolves(t, v, "1", value.Int(2))

	for _, path := range []string{"2", "-1", "x", "1.foo", "0.missing"} {
		_, ok := value.Resolve(v, path)
		assert.False(t, ok, "path %q should not resolve", path)
	}
}

func TestResolve_Absent(t *testing.T) {
	v := value.Mapping(
		value.E("counter", value.Int(1)),
		value.E("tag", value.Tagged("Addr", value.Mapping(value.E("port", value.Int(80))))),
	)

	tests := []string{
		"missing",
		"counter.deeper",
		"tag.port", // tagged values are leaves for descent
	}
	for _, path := range tests {
		t.Run(path, func(t *testing.T) {
			_, ok := value.Resolve(v, path)
			assert.False(t, ok)
		})
	}
}

func TestResolve_TieBreakOrder(t *testing.T) {
	t.Run("longest proper prefix wins over shorter", func(t *testing.T) {
		v := value.Mapping(
			value.E("a", value.Mapping(value.E("b.c", value.String("short")))),
			value.E("a.b", value.Mapping(value.E("c", value.String("long")))),
		)
		assertResolves(t, v, "a.b.c", value.String("long"))
	})

	t.Run("prefix wins over full literal key", func(t *testing.T) {
		v := value.Mapping(
			value.E("a", value.Mapping(value.E("b", value.String("nested")))),
			value.E("a.b", value.String("literal")),
		)
		assertResolves(t, v, "a.b", value.String("nested"))
	})

	t.Run("no backtracking after a prefix hit", func(t *testing.T) {
		// Known limitation: "a" matches, descent into a scalar fails, and the
		// literal "a.b" key is never tried.
		v := value.Mapping(
			value.E("a", value.Int(1)),
			value.E("a.b", value.Int(2)),
		)
		_, ok := value.Resolve(v, "a.b")
		assert.False(t, ok)
	})

	t.Run("no character truncation of the last segment", func(t *testing.T) {
		v := value.Mapping(value.E("ab", value.Int(1)))
		_, ok := value.Resolve(v, "abc")
		assert.False(t, ok)
	})

	t.Run("trailing dot addresses the prefix", func(t *testing.T) {
		v := value.Mapping(value.E("a", value.Int(1)))
		assertResolves(t, v, "a.", value.Int(1))
	})
}
