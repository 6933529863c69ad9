package gonest

import (
	"context"

	"github.com/reoring/gonest/i18n"
	eng "github.com/reoring/gonest/internal/engine"
)

// attributesSuffix is appended to the association name to form the synthetic
// write-only key handled by Assign/Set.
const attributesSuffix = "_attributes"

// internalKeys are never counted by the all-blank reject rule.
var internalKeys = []string{"id", DestroyKey}

// NestedConfig declares nested-attributes handling for one association.
type NestedConfig struct {
	// Name is the association (and usually the declared attribute) name.
	Name string
	// Cardinality selects the one- or many-writer.
	Cardinality Cardinality
	// AllowDestroy enables the _destroy marker and augments the child class
	// with a _destroy string attribute.
	AllowDestroy bool
	// RejectIf, when set, drops raw child mappings before construction.
	RejectIf *RejectRule
	// UpdateOnly updates the child already occupying a slot in place instead
	// of replacing it.
	UpdateOnly bool
	// Child is the association's model class. Leave nil and set Resolve for
	// associations whose target cannot be resolved at configuration time.
	Child *ModelType
	// Resolve is consulted lazily, at writer invocation; configuration never
	// touches a live resource.
	Resolve func() *ModelType
}

// RejectRule is the tagged reject_if variant: a callable predicate, a named
// predicate resolved against the parent's class at call time, or the
// all-blank marker.
type RejectRule struct {
	kind   rejectKind
	fn     PredicateFunc
	method string
}

type rejectKind int

const (
	rejectFunc rejectKind = iota
	rejectMethod
	rejectAllBlank
)

// RejectFunc rejects mappings for which fn returns true.
func RejectFunc(fn PredicateFunc) *RejectRule { return &RejectRule{kind: rejectFunc, fn: fn} }

// RejectMethod rejects via a predicate registered on the parent's ModelType
// under the given name. Resolution happens at writer invocation time; a
// missing predicate surfaces then, not at configuration time.
func RejectMethod(name string) *RejectRule { return &RejectRule{kind: rejectMethod, method: name} }

// RejectAllBlank rejects mappings whose values, aside from id/_destroy, are
// all blank (nil, empty, or whitespace-only).
func RejectAllBlank() *RejectRule { return &RejectRule{kind: rejectAllBlank} }

func (r *RejectRule) evaluate(ctx context.Context, parent *Model, attrs map[string]any) (bool, error) {
	switch r.kind {
	case rejectFunc:
		if r.fn == nil {
			return false, nil
		}
		return r.fn(ctx, parent, attrs), nil
	case rejectMethod:
		fn, ok := parent.typ.predicates[r.method]
		if !ok {
			return false, Issues{{
				Path:    "/" + parent.typ.name,
				Code:    CodeParseError,
				Message: i18n.T(CodeParseError, nil),
				Hint:    "reject_if predicate not registered: " + r.method,
			}}
		}
		return fn(ctx, parent, attrs), nil
	case rejectAllBlank:
		return eng.AllBlank(attrs, internalKeys...), nil
	default:
		return false, nil
	}
}

// AcceptNested installs the config on the parent class: the synthetic
// "<name>_attributes" writer joins the dispatch table, and with AllowDestroy
// the child class gains a _destroy attribute. Installation is purely
// structural; an unresolvable target only surfaces when the writer runs.
func (mt *ModelType) AcceptNested(cfg NestedConfig) error {
	if cfg.Name == "" {
		return Issues{{Path: "/", Code: CodeParseError, Message: "nested attributes config requires an association name"}}
	}
	c := cfg
	if c.Child != nil && c.AllowDestroy {
		c.Child.ensureDestroyAttribute()
	}
	mt.nested[c.Name] = &c
	key := c.Name + attributesSuffix
	switch c.Cardinality {
	case One:
		mt.writers[key] = func(ctx context.Context, parent *Model, input any) error {
			return c.assignOne(ctx, parent, input)
		}
	default:
		mt.writers[key] = func(ctx context.Context, parent *Model, input any) error {
			return c.assignMany(ctx, parent, input)
		}
	}
	return nil
}

// NestedConfigFor returns the installed config for an association name.
func (mt *ModelType) NestedConfigFor(name string) (*NestedConfig, bool) {
	c, ok := mt.nested[name]
	return c, ok
}

func (mt *ModelType) ensureDestroyAttribute() {
	if _, ok := mt.index[DestroyKey]; ok {
		return
	}
	mt.addAttribute(Attribute{Name: DestroyKey, Type: String()})
}

func (c *NestedConfig) resolveChild() (*ModelType, error) {
	if c.Child == nil && c.Resolve != nil {
		if mt := c.Resolve(); mt != nil {
			c.Child = mt
			if c.AllowDestroy {
				c.Child.ensureDestroyAttribute()
			}
		}
	}
	if c.Child == nil {
		return nil, Issues{{
			Path:    "/" + c.Name + attributesSuffix,
			Code:    CodeAssociationUnresolved,
			Message: i18n.T(CodeAssociationUnresolved, nil),
			Hint:    c.Name,
		}}
	}
	return c.Child, nil
}

// assignMany normalizes input into an ordered sequence and rebuilds the
// parent's collection: destroy-marked and rejected entries contribute
// nothing; the rest are constructed (or updated in place with UpdateOnly)
// and appended in original relative order.
func (c *NestedConfig) assignMany(ctx context.Context, parent *Model, input any) error {
	child, err := c.resolveChild()
	if err != nil {
		return err
	}
	seq, ok := eng.Sequence(input)
	if !ok {
		return typeMismatch("/"+c.Name+attributesSuffix, "expected array of mappings or index-keyed object")
	}
	var existing []*Model
	if c.UpdateOnly {
		existing, _ = parent.values[c.Name].([]*Model)
	}
	out := make([]*Model, 0, len(seq))
	for i, attrs := range seq {
		keep, cm, err := c.buildChild(ctx, parent, child, attrs, slotAt(existing, i))
		if err != nil {
			return err
		}
		if keep {
			out = append(out, cm)
		}
	}
	parent.values[c.Name] = out
	return nil
}

// assignOne applies the same per-entry policy to a single mapping; a
// destroyed or rejected entry empties the parent's attribute.
func (c *NestedConfig) assignOne(ctx context.Context, parent *Model, input any) error {
	child, err := c.resolveChild()
	if err != nil {
		return err
	}
	attrs, ok := input.(map[string]any)
	if !ok {
		return typeMismatch("/"+c.Name+attributesSuffix, "expected mapping")
	}
	var slot *Model
	if c.UpdateOnly {
		slot, _ = parent.values[c.Name].(*Model)
	}
	keep, cm, err := c.buildChild(ctx, parent, child, attrs, slot)
	if err != nil {
		return err
	}
	if !keep {
		parent.values[c.Name] = nil
		return nil
	}
	parent.values[c.Name] = cm
	return nil
}

// buildChild runs the destroy/reject/construct steps for one raw mapping.
// keep=false means the entry contributes nothing to the final value.
func (c *NestedConfig) buildChild(ctx context.Context, parent *Model, child *ModelType, attrs map[string]any, slot *Model) (keep bool, cm *Model, err error) {
	destroy, hasDestroy := attrs[DestroyKey]
	if c.AllowDestroy && eng.Truthy(destroy) {
		return false, nil, nil
	}
	if c.RejectIf != nil {
		rejected, err := c.RejectIf.evaluate(ctx, parent, attrs)
		if err != nil {
			return false, nil, err
		}
		if rejected {
			return false, nil, nil
		}
	}
	stripped := attrs
	if hasDestroy {
		stripped = make(map[string]any, len(attrs)-1)
		for k, v := range attrs {
			if k != DestroyKey {
				stripped[k] = v
			}
		}
	}
	if c.UpdateOnly && slot != nil {
		cm = slot
		if err := cm.Assign(ctx, stripped); err != nil {
			return false, nil, err
		}
	} else {
		cm, err = child.New(ctx, stripped)
		if err != nil {
			return false, nil, err
		}
	}
	if c.AllowDestroy && hasDestroy {
		// keep the flag introspectable on the surviving child
		if v, cerr := String().Cast(ctx, destroy); cerr == nil {
			cm.values[DestroyKey] = v
		}
	}
	return true, cm, nil
}

func slotAt(existing []*Model, i int) *Model {
	if i < len(existing) {
		return existing[i]
	}
	return nil
}

// normalizeSequence re-exports the shared normalization for the plain
// nested-array cast so both paths stay in lockstep.
func normalizeSequence(v any) ([]map[string]any, bool) { return eng.Sequence(v) }

func destroyTruthy(v any) bool { return eng.Truthy(v) }
