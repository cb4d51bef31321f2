package domain

import (
	"fmt"
	"strings"
)

// BreakpointKind selects the value transition a breakpoint reacts to.
type BreakpointKind int

const (
	BreakpointDisabled BreakpointKind = iota
	BreakpointOnValueChanged
	BreakpointOnValueAppeared
	BreakpointOnValueDisappeared
)

var breakpointKindNames = map[BreakpointKind]string{
	BreakpointDisabled:           "Disabled",
	BreakpointOnValueChanged:     "OnValueChanged",
	BreakpointOnValueAppeared:    "OnValueAppeared",
	BreakpointOnValueDisappeared: "OnValueDisappeared",
}

// BreakpointKinds lists every kind in declaration order.
func BreakpointKinds() []BreakpointKind {
	return []BreakpointKind{
		BreakpointDisabled,
		BreakpointOnValueChanged,
		BreakpointOnValueAppeared,
		BreakpointOnValueDisappeared,
	}
}

func (k BreakpointKind) String() string {
	if name, ok := breakpointKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("BreakpointKind(%d)", int(k))
}

// ParseBreakpointKind parses a kind name, case-insensitively. The short forms
// "changed", "appeared", "disappeared" and "off" are accepted as well.
func ParseBreakpointKind(s string) (BreakpointKind, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "disabled", "off":
		return BreakpointDisabled, nil
	case "onvaluechanged", "onvaluechange", "changed", "change":
		return BreakpointOnValueChanged, nil
	case "onvalueappeared", "appeared", "appear":
		return BreakpointOnValueAppeared, nil
	case "onvaluedisappeared", "disappeared", "disappear":
		return BreakpointOnValueDisappeared, nil
	}
	return BreakpointDisabled, fmt.Errorf("%w: %q", ErrUnknownBreakpointKind, s)
}

// MarshalText implements encoding.TextMarshaler.
func (k BreakpointKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *BreakpointKind) UnmarshalText(text []byte) error {
	parsed, err := ParseBreakpointKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
