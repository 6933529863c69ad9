package gonest_test

import (
	"context"
	"testing"
	"time"

	gonest "github.com/reoring/gonest"
	"github.com/reoring/gonest/dsl"
)

func TestMarshalJSON_DeclarationOrder(t *testing.T) {
	ctx := context.Background()
	part := newPartType(t)
	supplier := dsl.Model("supplier").
		Attr("name", gonest.String()).
		Attr("code", gonest.String()).
		Attr("parts", gonest.Models(part)).
		MustBuild()

	m, err := supplier.New(ctx, map[string]any{
		"code": "S1",
		"name": "ACME",
		"parts": []any{
			map[string]any{"qty": 2, "name": "bolt"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	got, err := gonest.ToJSON(ctx, m)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := `{"name":"ACME","code":"S1","parts":[{"name":"bolt","qty":2}]}`
	if string(got) != want {
		t.Fatalf("declaration order lost:\nwant %s\ngot  %s", want, got)
	}
}

func TestMarshalJSON_UnsetAttributesAreNull(t *testing.T) {
	ctx := context.Background()
	mt := dsl.Model("thing").
		Attr("name", gonest.String()).
		Attr("child", dsl.Model("sub").Attr("x", gonest.String()).MustBuild()).
		MustBuild()
	m, _ := mt.New(ctx, map[string]any{"name": "a"})
	got, err := gonest.ToJSON(ctx, m)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	want := `{"name":"a","child":null}`
	if string(got) != want {
		t.Fatalf("want %s got %s", want, got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	ctx := context.Background()
	part := newPartType(t)
	supplier := dsl.Model("supplier").
		Attr("name", gonest.String()).
		Attr("since", gonest.Time()).
		Attr("rating", gonest.Float()).
		Attr("active", gonest.Bool()).
		Attr("parts", gonest.Models(part)).
		MustBuild()

	m, err := supplier.New(ctx, map[string]any{
		"name":   "ACME",
		"since":  time.Date(2021, 3, 4, 5, 6, 7, 0, time.UTC),
		"rating": 4.5,
		"active": true,
		"parts": []any{
			map[string]any{"name": "bolt", "qty": 2},
			map[string]any{"name": "nut"},
		},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	doc, err := gonest.ToJSON(ctx, m)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	back, err := gonest.FromJSON(ctx, supplier, doc)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !m.Equal(back) {
		t.Fatalf("round-trip must preserve attribute-wise equality\ndoc: %s", doc)
	}
}

func TestFromJSON_MalformedDocument(t *testing.T) {
	ctx := context.Background()
	if _, err := gonest.FromJSON(ctx, newPartType(t), []byte(`{`)); err == nil {
		t.Fatalf("expected parse error")
	}
}

func TestFromYAML(t *testing.T) {
	ctx := context.Background()
	part := newPartType(t)
	supplier := newSupplierType(t, part)

	doc := []byte("name: ACME\nparts:\n  - name: bolt\n    qty: 2\n")
	m, err := gonest.FromYAML(ctx, supplier, doc)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if m.Get("name") != "ACME" {
		t.Fatalf("name want=ACME got=%v", m.Get("name"))
	}
	got := partNames(t, m)
	if len(got) != 1 || got[0] != "bolt" {
		t.Fatalf("want [bolt] got %v", got)
	}
	if m.Get("parts").([]*gonest.Model)[0].Get("qty") != int64(2) {
		t.Fatalf("yaml scalars must flow through the same cast layer")
	}
}

func TestAsJSON_DumpsNestedMappings(t *testing.T) {
	ctx := context.Background()
	part := newPartType(t)
	supplier := newSupplierType(t, part)
	m, err := supplier.New(ctx, map[string]any{
		"name":  "ACME",
		"parts": []any{map[string]any{"name": "bolt"}},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	doc, err := m.AsJSON(ctx)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	parts, ok := doc["parts"].([]any)
	if !ok || len(parts) != 1 {
		t.Fatalf("want dumped parts array, got %T", doc["parts"])
	}
	child, ok := parts[0].(map[string]any)
	if !ok || child["name"] != "bolt" {
		t.Fatalf("want child mapping, got %v", parts[0])
	}
}
