package gonest

import "context"

// Cardinality describes how many child models a nested association holds.
type Cardinality int

const (
	One Cardinality = iota
	Many
)

// DestroyKey is the per-child marker attribute. A truthy value ("1", 1, true)
// in a nested-attributes mapping drops that child from the resulting
// collection when the association allows destroy.
const DestroyKey = "_destroy"

// Type is the pluggable attribute caster: Cast turns raw, shape-ambiguous
// input into the typed value, Dump turns the typed value back into a
// JSON-safe value. Cast(Dump(x)) must round-trip to a value equal to x by
// attribute values.
type Type interface {
	Cast(ctx context.Context, v any) (any, error)
	Dump(ctx context.Context, v any) (any, error)
}

// Transform is an optional per-attribute encode/decode step (e.g. encryption)
// applied transparently at the attribute's leaf: Cast runs Decode first, Dump
// runs Encode last. Encode must produce a JSON-safe value.
//
// Decode must recognize its own encoding and return values it does not
// recognize unchanged, so that plaintext assignment and reloading a stored
// document share one code path. A recognized but undecodable value (e.g. a
// corrupted ciphertext) is an error; bulk assignment then skips the attribute.
type Transform interface {
	Encode(ctx context.Context, v any) (any, error)
	Decode(ctx context.Context, v any) (any, error)
}

// PredicateFunc decides whether a raw child mapping should be rejected before
// construction. The parent instance is provided for late-bound, named
// predicates.
type PredicateFunc func(ctx context.Context, parent *Model, attrs map[string]any) bool
