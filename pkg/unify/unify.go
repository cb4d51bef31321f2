// Package unify folds the flat attribute list of a simulation entity into one
// nested value tree.
package unify

import (
	"strings"

	"github.com/aretw0/simscope/pkg/value"
)

// Attribute is one flat (key, value) pair exposed by an entity. The key may
// encode hierarchy with '.' and a selector group with '@', as in
// "inet@v6.addr".
type Attribute struct {
	Key   string
	Value value.Value
}

// Attr is shorthand for building an Attribute from a plain Go value.
func Attr(key string, v any) Attribute {
	return Attribute{Key: key, Value: value.From(v)}
}

// Unify builds a Mapping from attrs.
//
// A single attribute yields {key: value} with its flat key untouched.
// Otherwise every key is split at its first '@' into selector and remainder.
// Keys without a selector are inserted under their remainder at the top
// level. Keys sharing a selector form a group whose remainders are unified
// recursively; a group that collapses to exactly one key is hoisted as
// "group.innerKey" instead of nesting a one-entry mapping.
//
// Entries appear in first-seen order, but callers must treat the order across
// groups as unspecified.
func Unify(attrs []Attribute) value.Value {
	if len(attrs) == 1 {
		return value.Mapping(value.E(attrs[0].Key, attrs[0].Value))
	}

	entries := make([]value.Entry, 0, len(attrs))
	groups := make(map[string][]Attribute)
	var order []string

	for _, attr := range attrs {
		selector, remainder, found := strings.Cut(attr.Key, "@")
		if !found {
			selector, remainder = "", attr.Key
		}
		if selector == "" {
			entries = append(entries, value.E(remainder, attr.Value))
			continue
		}
		if _, seen := groups[selector]; !seen {
			order = append(order, selector)
		}
		groups[selector] = append(groups[selector], Attribute{Key: remainder, Value: attr.Value})
	}

	for _, group := range order {
		inner := Unify(groups[group])
		if inner.Len() == 1 {
			e := inner.Entries()[0]
			entries = append(entries, value.E(strings.Trim(group+"."+e.Key, "."), e.Value))
			continue
		}
		entries = append(entries, value.E(group, inner))
	}

	return value.Mapping(entries...)
}

// PruneEmpty removes, bottom-up, every mapping entry whose value is an empty
// mapping or an empty sequence once its own children have been pruned.
// Non-empty leaves are never removed and PruneEmpty(PruneEmpty(m)) equals
// PruneEmpty(m). Non-mapping inputs are returned unchanged.
func PruneEmpty(m value.Value) value.Value {
	if m.Kind() != value.KindMapping {
		return m
	}

	entries := m.Entries()
	kept := entries[:0]
	for _, e := range entries {
		child := PruneEmpty(e.Value)
		if isEmptyContainer(child) {
			continue
		}
		kept = append(kept, value.E(e.Key, child))
	}
	return value.Mapping(kept...)
}

func isEmptyContainer(v value.Value) bool {
	switch v.Kind() {
	case value.KindMapping, value.KindSequence:
		return v.Len() == 0
	}
	return false
}

// Tree is Unify followed by PruneEmpty, the form stored in snapshots.
func Tree(attrs []Attribute) value.Value {
	return PruneEmpty(Unify(attrs))
}
