package gonest_test

import (
	"context"
	"testing"

	gonest "github.com/reoring/gonest"
	"github.com/reoring/gonest/dsl"
)

func newPartType(t *testing.T) *gonest.ModelType {
	t.Helper()
	return dsl.Model("part").
		Attr("name", gonest.String()).Required().
		Attr("qty", gonest.Int()).
		MustBuild()
}

func newSupplierType(t *testing.T, part *gonest.ModelType, opts ...dsl.NestedOption) *gonest.ModelType {
	t.Helper()
	return dsl.Model("supplier").
		Attr("name", gonest.String()).
		Attr("parts", gonest.Models(part)).
		AcceptsNested("parts", opts...).
		MustBuild()
}

func TestNew_AppliesDefaultsThenAssign(t *testing.T) {
	ctx := context.Background()
	mt := dsl.Model("widget").
		Attr("name", gonest.String()).Default("unnamed").
		Attr("qty", gonest.Int()).Default("3").
		MustBuild()

	m, err := mt.New(ctx, map[string]any{"name": "bolt"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got := m.Get("name"); got != "bolt" {
		t.Fatalf("name want=bolt got=%v", got)
	}
	// default is cast through the declared type
	if got := m.Get("qty"); got != int64(3) {
		t.Fatalf("qty want=int64(3) got=%v (%T)", got, got)
	}
}

func TestAssign_MergesWithoutResettingUnspecified(t *testing.T) {
	ctx := context.Background()
	mt := newPartType(t)
	m, err := mt.New(ctx, map[string]any{"name": "bolt", "qty": 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := m.Assign(ctx, map[string]any{"qty": 5}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Get("name") != "bolt" {
		t.Fatalf("name should survive partial assign, got %v", m.Get("name"))
	}
	if m.Get("qty") != int64(5) {
		t.Fatalf("qty want=5 got=%v", m.Get("qty"))
	}
}

func TestAssign_IgnoresUnknownKeys(t *testing.T) {
	ctx := context.Background()
	mt := newPartType(t)
	m, err := mt.New(ctx, map[string]any{"name": "bolt", "color": "red"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Get("color") != nil {
		t.Fatalf("unknown key must not be stored, got %v", m.Get("color"))
	}
}

func TestAssign_CoercesScalars(t *testing.T) {
	ctx := context.Background()
	mt := dsl.Model("thing").
		Attr("qty", gonest.Int()).
		Attr("ratio", gonest.Float()).
		Attr("active", gonest.Bool()).
		MustBuild()
	m, err := mt.New(ctx, map[string]any{"qty": "12", "ratio": "1.5", "active": "true"})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Get("qty") != int64(12) {
		t.Fatalf("qty want=12 got=%v (%T)", m.Get("qty"), m.Get("qty"))
	}
	if m.Get("ratio") != 1.5 {
		t.Fatalf("ratio want=1.5 got=%v", m.Get("ratio"))
	}
	if m.Get("active") != true {
		t.Fatalf("active want=true got=%v", m.Get("active"))
	}
}

func TestAssign_TypeMismatchSkipsAttributeAndContinues(t *testing.T) {
	ctx := context.Background()
	mt := newPartType(t)
	m, err := mt.New(ctx, map[string]any{"name": "bolt", "qty": 2})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	// qty cannot be cast; name still applies, no assignment-time error
	if err := m.Assign(ctx, map[string]any{"name": "nut", "qty": []any{"x"}}); err != nil {
		t.Fatalf("bulk assign must not fail on cast mismatch: %v", err)
	}
	if m.Get("name") != "nut" {
		t.Fatalf("name want=nut got=%v", m.Get("name"))
	}
	if m.Get("qty") != int64(2) {
		t.Fatalf("qty must keep stale value, got %v", m.Get("qty"))
	}
}

func TestSet_SurfacesErrors(t *testing.T) {
	ctx := context.Background()
	mt := newPartType(t)
	m, _ := mt.New(ctx, nil)

	if err := m.Set(ctx, "nope", 1); err == nil {
		t.Fatalf("expected error for undeclared attribute")
	}
	err := m.Set(ctx, "qty", []any{"x"})
	if err == nil {
		t.Fatalf("expected cast error")
	}
	if !gonest.IsTypeMismatch(err) {
		t.Fatalf("want type mismatch, got %v", err)
	}
	if err := m.Set(ctx, "qty", "7"); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Get("qty") != int64(7) {
		t.Fatalf("qty want=7 got=%v", m.Get("qty"))
	}
}

func TestEqual_RecursesIntoChildren(t *testing.T) {
	ctx := context.Background()
	part := newPartType(t)
	supplier := newSupplierType(t, part)

	input := map[string]any{
		"name":  "ACME",
		"parts": []any{map[string]any{"name": "bolt", "qty": 2}},
	}
	a, err := supplier.New(ctx, input)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b, err := supplier.New(ctx, map[string]any{
		"name":  "ACME",
		"parts": []any{map[string]any{"name": "bolt", "qty": 2}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !a.Equal(b) {
		t.Fatalf("expected equal models")
	}
	if err := b.Assign(ctx, map[string]any{"parts": []any{map[string]any{"name": "nut", "qty": 2}}}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.Equal(b) {
		t.Fatalf("expected inequality after child change")
	}
}

func TestEqual_DifferentClassesNeverEqual(t *testing.T) {
	ctx := context.Background()
	a, _ := newPartType(t).New(ctx, map[string]any{"name": "x"})
	b, _ := newPartType(t).New(ctx, map[string]any{"name": "x"})
	if a.Equal(b) {
		t.Fatalf("instances of distinct classes must not be equal")
	}
}

func TestClone_IsDeep(t *testing.T) {
	ctx := context.Background()
	part := newPartType(t)
	supplier := newSupplierType(t, part)
	a, err := supplier.New(ctx, map[string]any{
		"name":  "ACME",
		"parts": []any{map[string]any{"name": "bolt"}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	b := a.Clone()
	if !a.Equal(b) {
		t.Fatalf("clone must be equal")
	}
	child := b.Get("parts").([]*gonest.Model)[0]
	if err := child.Assign(ctx, map[string]any{"name": "nut"}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if a.Get("parts").([]*gonest.Model)[0].Get("name") != "bolt" {
		t.Fatalf("mutating the clone must not touch the original")
	}
}
