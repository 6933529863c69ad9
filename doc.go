package gonest

// Package gonest provides:
//
// - Typed, nestable value objects assigned from loosely structured input
//   (arrays of mappings, index-keyed mappings, single mappings)
// - A nested-attributes assignment engine honoring _destroy markers,
//   reject_if predicates, and update-vs-create semantics to arbitrary depth
// - Declaration-ordered JSON document serialization that round-trips through
//   the same casting layer assignment writes through
// - A stable error model via Issues (JSON Pointer, code, message)
// - Per-attribute value transforms (e.g. encryption) applied at the leaf,
//   oblivious to nesting depth
//
// Design policy:
// - Keep only public APIs in the root package; shared normalization lives
//   under internal/.
// - Place the ModelType builder under dsl/ and value transforms under codec/.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//	part := dsl.Model("part").
//		Attr("name", gonest.String()).Required().
//		MustBuild()
//	supplier := dsl.Model("supplier").
//		Attr("name", gonest.String()).
//		Attr("parts", gonest.Models(part)).
//		AcceptsNested("parts", dsl.WithAllowDestroy(), dsl.WithRejectAllBlank()).
//		MustBuild()
//
//	m, err := supplier.New(ctx, map[string]any{
//		"name": "ACME",
//		"parts_attributes": []any{
//			map[string]any{"name": "bolt"},
//			map[string]any{"name": "obsolete", "_destroy": "1"},
//		},
//	})
//	doc, err := gonest.ToJSON(ctx, m)
//	back, err := gonest.FromJSON(ctx, supplier, doc)
