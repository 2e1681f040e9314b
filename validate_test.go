package goflat_test

import (
	"strings"
	"testing"

	goflat "github.com/reoring/goflat"
	g "github.com/reoring/goflat/dsl"
)

func TestValidate_OK(t *testing.T) {
	seal := g.Union("Seal", g.FixedTag(1),
		g.Variant("A", g.Struct("A", g.Field("a", g.Int()))),
		g.Variant("B", g.Struct("B", g.Field("b", g.String()))),
	)
	s := g.ListOf(g.Struct("Env",
		g.Field("kind", g.Enum("Kind", "A", "B")),
		g.Field("count", g.Short()),
		g.Field("items", g.List(seal, "count")),
		g.Field("inner", g.Struct("Inner",
			g.Field("u", g.Union("U", g.TagFrom("kind"),
				g.Variant("A", g.Struct("UA")),
				g.Variant("B", g.Struct("UB", g.Nullable("z", g.Zoned(3)))),
			)),
		)),
	))
	if err := goflat.Validate(s); err != nil {
		t.Fatalf("want valid schema, got %v", err)
	}
}

func TestValidate_Errors(t *testing.T) {
	item := g.Struct("Item", g.Field("sku", g.String()))
	self := &goflat.Schema{Kind: goflat.KindStruct, Name: "Self"}
	self.Fields = []goflat.Field{{Name: "self", Schema: self}}

	cases := []struct {
		name string
		s    *goflat.Schema
		path string
		code string
		hint string
	}{
		{"length field after list", g.Struct("S", g.Field("items", g.List(item, "n")), g.Field("n", g.Int())),
			"/items", goflat.CodeSchemaError, "must be declared before"},
		{"length field absent", g.Struct("S", g.Field("items", g.List(item, "n"))),
			"/items", goflat.CodeSchemaError, "does not exist"},
		{"nullable length field", g.Struct("S", g.Nullable("n", g.Int()), g.Field("items", g.List(item, "n"))),
			"/items", goflat.CodeSchemaError, "must not be nullable"},
		{"string length field", g.Struct("S", g.Field("n", g.String()), g.Field("items", g.List(item, "n"))),
			"/items", goflat.CodeSchemaError, "must be an integer"},
		{"nested list without length", g.Struct("S", g.Field("items", g.ListOf(item))),
			"/items", goflat.CodeSchemaError, "requires a length field"},
		{"top-level list with length", g.List(item, "n"),
			"/", goflat.CodeSchemaError, "top-level list"},
		{"list of lists", g.ListOf(g.ListOf(item)),
			"/", goflat.CodeUnsupportedShape, "list of lists"},
		{"map", g.Struct("S", g.Field("m", g.Map(g.String(), g.Int()))),
			"/m", goflat.CodeUnsupportedShape, "map"},
		{"recursive", self, "/self", goflat.CodeSchemaError, "recursive"},
		{"duplicate field", g.Struct("S", g.Field("a", g.Int()), g.Field("a", g.Int())),
			"/a", goflat.CodeSchemaError, "duplicate field"},
		{"duplicate enum value", g.Enum("E", "X", "X"),
			"/", goflat.CodeSchemaError, "duplicate enum value"},
		{"unsigned zoned", g.Struct("S", g.Field("z", g.Uint32().WithZoned())),
			"/z", goflat.CodeSchemaError, "signed integer"},
		{"discriminator declared later", g.Struct("S",
			g.Field("u", g.Union("U", g.TagFrom("kind"), g.Variant("A", item))),
			g.Field("kind", g.String())),
			"/u", goflat.CodeSchemaError, "not declared before"},
		{"numeric discriminator", g.Struct("S",
			g.Field("kind", g.Int()),
			g.Field("u", g.Union("U", g.TagFrom("kind"), g.Variant("A", item)))),
			"/u", goflat.CodeSchemaError, "string or enum"},
		{"duplicate variant", g.Union("U", g.FixedTag(1), g.Variant("A", item), g.Variant("A", item)),
			"/A", goflat.CodeSchemaError, "ambiguous"},
		{"primitive variant", g.Union("U", g.FixedTag(1), g.Variant("A", g.Int())),
			"/A", goflat.CodeUnsupportedShape, "must be structs"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := goflat.Validate(tc.s)
			iss, ok := goflat.AsIssues(err)
			if !ok {
				t.Fatalf("want issues, got %v", err)
			}
			for _, it := range iss {
				if it.Path == tc.path && it.Code == tc.code && strings.Contains(it.Hint, tc.hint) {
					if it.Record != -1 || it.Offset != -1 {
						t.Fatalf("schema issue should not carry a position: %+v", it)
					}
					return
				}
			}
			t.Fatalf("want %s at %s containing %q, got %v", tc.code, tc.path, tc.hint, iss)
		})
	}
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	s := g.Struct("S",
		g.Field("m", g.Map(g.String(), g.Int())),
		g.Field("e", g.Enum("E")),
		g.Field("items", g.ListOf(g.Struct("I"))),
	)
	iss, _ := goflat.AsIssues(goflat.Validate(s))
	if len(iss) != 3 {
		t.Fatalf("want 3 issues, got %d: %v", len(iss), iss)
	}
}
