/*
Package value implements the dynamically typed state tree exposed by
simulation entities.

A Value is one of Null, Bool, Number, String, Sequence, Mapping (insertion
ordered, unique keys) or Tagged (a name wrapping exactly one inner Value).
Values are immutable; updates produce a new tree.

Resolve addresses a sub-value by dotted path and accepts both literal dotted
keys and nested mappings:

	v := value.Mapping(value.E("inet", value.Mapping(
		value.E("v6.solicitations", value.Sequence(value.String("a"))),
	)))
	got, ok := value.Resolve(v, "inet.v6.solicitations")

Values round-trip through YAML (custom tags become Tagged) and JSON.
*/
package value
