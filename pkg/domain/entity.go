package domain

import (
	"fmt"
	"strings"
)

// EntityPath identifies one simulation entity, e.g. "router.eth0".
// Segments are joined with '.'; the zero value means "no entity".
// EntityPaths are comparable, ordered by their string form, and immutable.
type EntityPath string

// NewEntityPath joins segments into an EntityPath.
func NewEntityPath(segments ...string) EntityPath {
	return EntityPath(strings.Join(segments, "."))
}

// ParseEntityPath accepts slash- or dot-joined segments and normalises them.
// Leading, trailing and doubled separators are ignored.
func ParseEntityPath(s string) (EntityPath, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == '/' || r == '.' })
	if len(fields) == 0 {
		return "", fmt.Errorf("%w: %q", ErrInvalidEntityPath, s)
	}
	return NewEntityPath(fields...), nil
}

// MustParseEntityPath is like ParseEntityPath but panics on error.
func MustParseEntityPath(s string) EntityPath {
	p, err := ParseEntityPath(s)
	if err != nil {
		panic(err)
	}
	return p
}

// IsZero reports whether p names no entity.
func (p EntityPath) IsZero() bool { return p == "" }

// String returns the dot-joined form.
func (p EntityPath) String() string { return string(p) }

// Segments splits the path into its segments.
func (p EntityPath) Segments() []string {
	if p == "" {
		return nil
	}
	return strings.Split(string(p), ".")
}

// Name returns the last segment.
func (p EntityPath) Name() string {
	s := string(p)
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		return s[i+1:]
	}
	return s
}

// Parent returns the enclosing entity path and false for a root entity.
func (p EntityPath) Parent() (EntityPath, bool) {
	s := string(p)
	i := strings.LastIndexByte(s, '.')
	if i < 0 {
		return "", false
	}
	return EntityPath(s[:i]), true
}

// Compare orders paths by their string form.
func (p EntityPath) Compare(other EntityPath) int {
	return strings.Compare(string(p), string(other))
}
