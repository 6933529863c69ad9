// Package dsl provides the fluent builder used to declare model classes:
// ordered attribute declarations, defaults, transforms, named predicates,
// and nested-attributes configuration.
package dsl

import (
	gonest "github.com/reoring/gonest"
)

// ModelBuilder accumulates a class declaration and produces a ModelType.
type ModelBuilder struct {
	name       string
	attrs      []gonest.Attribute
	nested     []nestedDecl
	predicates map[string]gonest.PredicateFunc
}

type nestedDecl struct {
	name string
	opts []NestedOption
}

type attrStep struct {
	b   *ModelBuilder
	idx int
}

// Model creates a new builder for the named class.
func Model(name string) *ModelBuilder {
	return &ModelBuilder{name: name, predicates: map[string]gonest.PredicateFunc{}}
}

// Attr declares an attribute. Declaration order is serialization order.
func (b *ModelBuilder) Attr(name string, t gonest.Type) *attrStep {
	b.attrs = append(b.attrs, gonest.Attribute{Name: name, Type: t})
	return &attrStep{b: b, idx: len(b.attrs) - 1}
}

// Required marks the attribute as required and returns the builder.
func (s *attrStep) Required() *ModelBuilder {
	s.b.attrs[s.idx].Required = true
	return s.b
}

// Optional marks the attribute as optional (the default) and returns the builder.
func (s *attrStep) Optional() *ModelBuilder {
	s.b.attrs[s.idx].Required = false
	return s.b
}

// Default sets a default value, cast through the attribute's type at
// instantiation.
func (s *attrStep) Default(v any) *ModelBuilder {
	s.b.attrs[s.idx].Default = v
	return s.b
}

// Transform attaches a value transform to the attribute's leaf.
func (s *attrStep) Transform(tr gonest.Transform) *ModelBuilder {
	s.b.attrs[s.idx].Transform = tr
	return s.b
}

func (s *attrStep) Attr(name string, t gonest.Type) *attrStep { return s.b.Attr(name, t) }
func (s *attrStep) AcceptsNested(name string, opts ...NestedOption) *ModelBuilder {
	return s.b.AcceptsNested(name, opts...)
}
func (s *attrStep) Require(names ...string) *ModelBuilder { return s.b.Require(names...) }
func (s *attrStep) Build() (*gonest.ModelType, error)     { return s.b.Build() }
func (s *attrStep) MustBuild() *gonest.ModelType      { return s.b.MustBuild() }

// Require marks one or more declared attributes as required.
func (b *ModelBuilder) Require(names ...string) *ModelBuilder {
	for i := range b.attrs {
		for _, n := range names {
			if b.attrs[i].Name == n {
				b.attrs[i].Required = true
			}
		}
	}
	return b
}

// Predicate registers a named reject predicate resolved late by
// gonest.RejectMethod rules.
func (b *ModelBuilder) Predicate(name string, fn gonest.PredicateFunc) *ModelBuilder {
	b.predicates[name] = fn
	return b
}

// AcceptsNested configures nested-attributes handling for the named
// association. When the association is also a declared attribute with a
// nested type, the child class and cardinality are taken from it; otherwise
// supply them via WithChild/WithResolver and WithCardinality. Configuration
// is purely structural and never fails for an unresolved target.
func (b *ModelBuilder) AcceptsNested(name string, opts ...NestedOption) *ModelBuilder {
	b.nested = append(b.nested, nestedDecl{name: name, opts: opts})
	return b
}

// NestedOption adjusts one association's NestedConfig.
type NestedOption func(*gonest.NestedConfig)

// WithAllowDestroy enables the _destroy marker for the association.
func WithAllowDestroy() NestedOption {
	return func(c *gonest.NestedConfig) { c.AllowDestroy = true }
}

// WithUpdateOnly updates children in place instead of replacing them.
func WithUpdateOnly() NestedOption {
	return func(c *gonest.NestedConfig) { c.UpdateOnly = true }
}

// WithReject installs a reject rule (RejectFunc, RejectMethod, or
// RejectAllBlank).
func WithReject(r *gonest.RejectRule) NestedOption {
	return func(c *gonest.NestedConfig) { c.RejectIf = r }
}

// WithRejectAllBlank is shorthand for WithReject(gonest.RejectAllBlank()).
func WithRejectAllBlank() NestedOption {
	return func(c *gonest.NestedConfig) { c.RejectIf = gonest.RejectAllBlank() }
}

// WithChild sets the association's child class explicitly.
func WithChild(mt *gonest.ModelType) NestedOption {
	return func(c *gonest.NestedConfig) { c.Child = mt }
}

// WithResolver defers child class resolution to writer invocation time, for
// associations whose target is not available at configuration time.
func WithResolver(f func() *gonest.ModelType) NestedOption {
	return func(c *gonest.NestedConfig) { c.Resolve = f }
}

// WithCardinality overrides the association cardinality for targets that are
// not declared attributes.
func WithCardinality(card gonest.Cardinality) NestedOption {
	return func(c *gonest.NestedConfig) { c.Cardinality = card }
}

// Build validates the declaration and returns the ModelType.
func (b *ModelBuilder) Build() (*gonest.ModelType, error) {
	mt := gonest.NewModelType(b.name, b.attrs)
	for name, fn := range b.predicates {
		mt.RegisterPredicate(name, fn)
	}
	for _, nd := range b.nested {
		cfg := gonest.NestedConfig{Name: nd.name, Cardinality: gonest.Many}
		if a, ok := mt.Attribute(nd.name); ok {
			if child, card, isNested := gonest.ChildTypeOf(a.Type); isNested {
				cfg.Child = child
				cfg.Cardinality = card
			}
		}
		for _, opt := range nd.opts {
			opt(&cfg)
		}
		if err := mt.AcceptNested(cfg); err != nil {
			return nil, err
		}
	}
	return mt, nil
}

// MustBuild is like Build but panics on error.
func (b *ModelBuilder) MustBuild() *gonest.ModelType {
	mt, err := b.Build()
	if err != nil {
		panic(err)
	}
	return mt
}
