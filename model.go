package gonest

import (
	"context"
	"reflect"
	"sort"
	"time"
)

// Attribute describes one declared attribute of a ModelType.
type Attribute struct {
	Name      string
	Type      Type
	Default   any
	Required  bool
	Transform Transform
}

// castValue applies the attribute's Transform decode step (first) and then
// the declared type's cast.
func (a Attribute) castValue(ctx context.Context, v any) (any, error) {
	if a.Transform != nil && v != nil {
		dv, err := a.Transform.Decode(ctx, v)
		if err != nil {
			return nil, toIssues(err)
		}
		v = dv
	}
	return a.Type.Cast(ctx, v)
}

// dumpValue applies the declared type's dump and then the Transform encode
// step (last).
func (a Attribute) dumpValue(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	dv, err := a.Type.Dump(ctx, v)
	if err != nil {
		return nil, err
	}
	if a.Transform != nil && dv != nil {
		return a.Transform.Encode(ctx, dv)
	}
	return dv, nil
}

// ModelType is the per-class registry: ordered attribute declarations
// (declaration order is serialization order), the nested-attributes writer
// table, and named reject predicates. A ModelType is built once, before any
// instances exist, and is not mutated afterwards except for the lazy
// _destroy augmentation performed by nested-attributes configuration.
type ModelType struct {
	name       string
	attrs      []Attribute
	index      map[string]int
	writers    map[string]nestedWriter
	nested     map[string]*NestedConfig
	predicates map[string]PredicateFunc
}

type nestedWriter func(ctx context.Context, parent *Model, input any) error

// NewModelType builds a ModelType from ordered attribute declarations.
// Duplicate attribute names keep the first declaration.
func NewModelType(name string, attrs []Attribute) *ModelType {
	mt := &ModelType{
		name:       name,
		attrs:      make([]Attribute, 0, len(attrs)),
		index:      make(map[string]int, len(attrs)),
		writers:    map[string]nestedWriter{},
		nested:     map[string]*NestedConfig{},
		predicates: map[string]PredicateFunc{},
	}
	for _, a := range attrs {
		mt.addAttribute(a)
	}
	return mt
}

func (mt *ModelType) addAttribute(a Attribute) {
	if _, dup := mt.index[a.Name]; dup || a.Name == "" || a.Type == nil {
		return
	}
	mt.index[a.Name] = len(mt.attrs)
	mt.attrs = append(mt.attrs, a)
}

// Name returns the model class name.
func (mt *ModelType) Name() string { return mt.name }

// Attributes returns the declared attributes in declaration order.
func (mt *ModelType) Attributes() []Attribute {
	out := make([]Attribute, len(mt.attrs))
	copy(out, mt.attrs)
	return out
}

// Attribute looks up a declared attribute by name.
func (mt *ModelType) Attribute(name string) (Attribute, bool) {
	i, ok := mt.index[name]
	if !ok {
		return Attribute{}, false
	}
	return mt.attrs[i], true
}

// RegisterPredicate installs a named reject predicate, resolved late by
// RejectMethod rules at writer invocation time.
func (mt *ModelType) RegisterPredicate(name string, fn PredicateFunc) {
	if name == "" || fn == nil {
		return
	}
	mt.predicates[name] = fn
}

// New constructs an instance: declared defaults first, then a bulk assign of
// the initial mapping. The returned error carries only structural failures
// (e.g. an unresolvable nested-attributes target); scalar cast mismatches are
// skipped per the permissive bulk-assignment contract.
func (mt *ModelType) New(ctx context.Context, init map[string]any) (*Model, error) {
	m := &Model{typ: mt, values: make(map[string]any, len(mt.attrs))}
	for _, a := range mt.attrs {
		if a.Default == nil {
			continue
		}
		if v, err := a.castValue(ctx, a.Default); err == nil {
			m.values[a.Name] = v
		}
	}
	if len(init) == 0 {
		return m, nil
	}
	if err := m.Assign(ctx, init); err != nil {
		return nil, err
	}
	return m, nil
}

// Cast implements Type, making a ModelType usable directly as a
// nested-single attribute type: an existing instance of the same class passes
// through, a mapping constructs a child instance, anything else is a type
// mismatch.
func (mt *ModelType) Cast(ctx context.Context, v any) (any, error) {
	switch t := v.(type) {
	case nil:
		return nil, nil
	case *Model:
		if t == nil {
			return nil, nil
		}
		if t.typ != mt {
			return nil, typeMismatch("/", "model instance of class "+t.typ.name+", expected "+mt.name)
		}
		return t, nil
	case map[string]any:
		return mt.New(ctx, t)
	default:
		return nil, typeMismatch("/", "expected mapping or "+mt.name+" instance")
	}
}

// Dump implements Type: the child's full attribute mapping.
func (mt *ModelType) Dump(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(*Model)
	if !ok {
		return nil, typeMismatch("/", "expected "+mt.name+" instance")
	}
	if m == nil {
		return nil, nil
	}
	return m.AsJSON(ctx)
}

// Models returns the nested-array attribute type holding an ordered sequence
// of child instances of mt.
func Models(mt *ModelType) Type { return modelSliceType{of: mt} }

type modelSliceType struct{ of *ModelType }

func (t modelSliceType) Cast(ctx context.Context, v any) (any, error) {
	switch src := v.(type) {
	case nil:
		return nil, nil
	case []*Model:
		out := make([]*Model, 0, len(src))
		for _, e := range src {
			cv, err := t.of.Cast(ctx, e)
			if err != nil {
				return nil, err
			}
			if cm, ok := cv.(*Model); ok && cm != nil {
				out = append(out, cm)
			}
		}
		return out, nil
	default:
		seq, ok := normalizeSequence(v)
		if !ok {
			return nil, typeMismatch("/", "expected array of mappings or index-keyed object")
		}
		out := make([]*Model, 0, len(seq))
		for _, attrs := range seq {
			cm, err := t.of.New(ctx, attrs)
			if err != nil {
				return nil, err
			}
			out = append(out, cm)
		}
		return out, nil
	}
}

func (t modelSliceType) Dump(ctx context.Context, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	src, ok := v.([]*Model)
	if !ok {
		return nil, typeMismatch("/", "expected []*Model")
	}
	out := make([]any, 0, len(src))
	for _, cm := range src {
		dv, err := t.of.Dump(ctx, cm)
		if err != nil {
			return nil, err
		}
		out = append(out, dv)
	}
	return out, nil
}

// ChildTypeOf inspects a declared attribute type and reports the child model
// class and cardinality when it is a nested type.
func ChildTypeOf(t Type) (*ModelType, Cardinality, bool) {
	switch nt := t.(type) {
	case *ModelType:
		return nt, One, true
	case modelSliceType:
		return nt.of, Many, true
	default:
		return nil, One, false
	}
}

// Model is one typed instance: an ordered attribute mapping owned exclusively
// by this instance. The graph below a model is a tree; children are never
// shared.
type Model struct {
	typ    *ModelType
	values map[string]any
}

// Type returns the model's class.
func (m *Model) Type() *ModelType { return m.typ }

// Get returns the current typed value of a declared attribute (nil when
// unset or undeclared).
func (m *Model) Get(name string) any { return m.values[name] }

// Set casts and stores a single attribute, or dispatches to a
// nested-attributes writer when name is a configured "<assoc>_attributes"
// key. Unlike Assign, Set surfaces cast mismatches as errors.
func (m *Model) Set(ctx context.Context, name string, v any) error {
	if w, ok := m.typ.writers[name]; ok {
		return w(ctx, m, v)
	}
	a, ok := m.typ.Attribute(name)
	if !ok {
		return Issues{{Path: "/" + name, Code: CodeParseError, Message: "undeclared attribute", Hint: name}}
	}
	cv, err := a.castValue(ctx, v)
	if err != nil {
		return toIssues(err)
	}
	m.values[a.Name] = cv
	return nil
}

// Assign merges the mapping into the instance. Declared attributes are cast
// and stored; "<assoc>_attributes" keys dispatch to their installed writer;
// unknown keys are ignored. A cast mismatch skips that attribute and the
// rest of the assignment proceeds; only structural writer failures (an
// unresolvable association target, a missing named predicate) surface as an
// error.
func (m *Model) Assign(ctx context.Context, attrs map[string]any) error {
	if len(attrs) == 0 {
		return nil
	}
	// deterministic application order
	keys := make([]string, 0, len(attrs))
	for k := range attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var iss Issues
	for _, k := range keys {
		v := attrs[k]
		if w, ok := m.typ.writers[k]; ok {
			if err := w(ctx, m, v); err != nil && !IsTypeMismatch(err) {
				iss = AppendIssues(iss, toIssues(err)...)
			}
			continue
		}
		if a, ok := m.typ.Attribute(k); ok {
			cv, err := a.castValue(ctx, v)
			if err != nil {
				continue // best-effort bulk assign: leave the attribute as-is
			}
			m.values[a.Name] = cv
		}
		// unknown key: ignored
	}
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// Destroyed reports whether the instance carries a truthy _destroy marker.
// Children kept by a writer remain introspectable this way.
func (m *Model) Destroyed() bool {
	return destroyTruthy(m.values[DestroyKey])
}

// Equal reports attribute-wise equality, recursing into nested models and
// collections. Instances of different classes are never equal.
func (m *Model) Equal(o *Model) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.typ != o.typ {
		return false
	}
	for _, a := range m.typ.attrs {
		if !valueEqual(m.values[a.Name], o.values[a.Name]) {
			return false
		}
	}
	return true
}

func valueEqual(a, b any) bool {
	switch av := a.(type) {
	case *Model:
		bv, ok := b.(*Model)
		return ok && av.Equal(bv)
	case []*Model:
		bv, ok := b.([]*Model)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !av[i].Equal(bv[i]) {
				return false
			}
		}
		return true
	case time.Time:
		bv, ok := b.(time.Time)
		return ok && av.Equal(bv)
	default:
		return reflect.DeepEqual(a, b)
	}
}

// Clone returns a deep copy; ownership of the copied subtree transfers to the
// caller.
func (m *Model) Clone() *Model {
	if m == nil {
		return nil
	}
	out := &Model{typ: m.typ, values: make(map[string]any, len(m.values))}
	for k, v := range m.values {
		switch cv := v.(type) {
		case *Model:
			out.values[k] = cv.Clone()
		case []*Model:
			cp := make([]*Model, len(cv))
			for i, cm := range cv {
				cp[i] = cm.Clone()
			}
			out.values[k] = cp
		default:
			out.values[k] = v
		}
	}
	return out
}
