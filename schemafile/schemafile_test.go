package schemafile_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/csv"
	g "github.com/reoring/goflat/dsl"
	"github.com/reoring/goflat/flf"
	"github.com/reoring/goflat/schemafile"
)

const sealedDoc = `
schema:
  list:
    elem: {ref: Envelope}
types:
  Kind:
    enum: [One, Two]
    length: 3
  Seal:
    union:
      discriminator: {length: 1}
      variants:
        - tag: A
          fields:
            - {name: a, type: int, length: 2}
            - {name: s, type: int, length: 4}
        - tag: B
          fields:
            - {name: b, type: string, length: 10}
            - {name: s, type: int, length: 4}
  Envelope:
    fields:
      - {name: count, type: int, length: 1}
      - {name: kind, ref: Kind}
      - {name: amount, type: long, length: 5, ebcdic: zoned}
      - {name: note, type: string, length: 4, nullable: true}
      - name: items
        list: {elem: {ref: Seal}, lengthRef: count}
flf:
  fillLeadingZeros: false
csv:
  separator: ";"
  lineSeparator: "\r\n"
  numberFormat: comma
  includeHeader: false
`

func TestLoad(t *testing.T) {
	doc, err := schemafile.Parse([]byte(sealedDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	seal := g.Union("Seal", g.FixedTag(1),
		g.Variant("A", g.Struct("", g.Field("a", g.Int().Len(2)), g.Field("s", g.Int().Len(4)))),
		g.Variant("B", g.Struct("", g.Field("b", g.String().Len(10)), g.Field("s", g.Int().Len(4)))),
	)
	want := g.ListOf(g.Struct("Envelope",
		g.Field("count", g.Int().Len(1)),
		g.Field("kind", g.Enum("Kind", "One", "Two").Len(3)),
		g.Field("amount", g.Zoned(5)),
		g.Nullable("note", g.String().Len(4)),
		g.Field("items", g.List(seal, "count")),
	))
	if diff := cmp.Diff(want.String(), doc.Schema.String()); diff != "" {
		t.Fatalf("schema mismatch (-want +got):\n%s", diff)
	}
	if len(doc.Types) != 3 {
		t.Fatalf("want 3 types, got %d", len(doc.Types))
	}

	fc := doc.FLFConfig()
	if fc.FillLeadingZeros || !fc.Trim || fc.LineSeparator != "\n" {
		t.Fatalf("unexpected flf config %+v", fc)
	}
	cc := doc.CSVConfig()
	wantCSV := csv.Config{Separator: ';', LineSeparator: "\r\n", NumberFormat: csv.NumberComma}
	if diff := cmp.Diff(wantCSV, cc); diff != "" {
		t.Fatalf("csv config (-want +got):\n%s", diff)
	}
}

func TestLoad_DecodesWithFLF(t *testing.T) {
	doc, err := schemafile.Parse([]byte(sealedDoc))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	f, err := flf.New(doc.FLFConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	v, err := f.DecodeString(doc.Schema, "1One0004K    A421   ")
	if err != nil {
		t.Fatalf("DecodeString: %v", err)
	}
	want := []any{goflat.Record{
		"count":  int64(1),
		"kind":   "One",
		"amount": int64(-42),
		"note":   nil,
		"items":  []any{goflat.Union{Tag: "A", Record: goflat.Record{"a": int64(42), "s": int64(1)}}},
	}}
	if diff := cmp.Diff(want, v); diff != "" {
		t.Fatalf("(-want +got):\n%s", diff)
	}
}

func TestLoad_Errors(t *testing.T) {
	cases := []struct {
		name string
		doc  string
		path string
		hint string
	}{
		{"unknown key", "schema:\n  fields:\n    - {name: a, type: int, width: 3}\n", "/schema/fields/0/width", "3:28: unknown key width"},
		{"unknown type", "schema:\n  fields:\n    - {name: a, type: integer}\n", "/schema/fields/0/type", "3:23: unknown type integer"},
		{"missing schema", "types: {}\n", "/", "1:1: missing key schema"},
		{"two shapes", "schema: {type: int, ref: X}\n", "/schema", "1:9: want exactly one of"},
		{"dangling ref", "schema: {ref: Missing}\n", "/schema/ref", "1:15: unknown type Missing"},
		{"recursive", "schema: {ref: A}\ntypes:\n  A:\n    fields:\n      - {name: self, ref: A}\n", "/types/A/fields/0/ref", "recursive type A"},
		{"bad separator", "schema: {fields: [{name: a, type: int}]}\ncsv: {separator: ab}\n", "/csv/separator", "single character"},
		{"bad discriminator", "schema:\n  union:\n    discriminator: {}\n    variants: []\n", "/schema/union/discriminator", "needs length or property"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := schemafile.Parse([]byte(tc.doc))
			iss, ok := goflat.AsIssues(err)
			if !ok {
				t.Fatalf("want issues, got %v", err)
			}
			if iss[0].Code != goflat.CodeSchemaError || iss[0].Path != tc.path || !strings.Contains(iss[0].Hint, tc.hint) {
				t.Fatalf("want schema_error at %s containing %q, got %+v", tc.path, tc.hint, iss[0])
			}
		})
	}
}

func TestLoad_ValidatesSchema(t *testing.T) {
	doc := "schema:\n  fields:\n    - {name: m, map: {key: {type: string}, value: {type: int}}}\n"
	_, err := schemafile.Parse([]byte(doc))
	if !goflat.HasCode(err, goflat.CodeUnsupportedShape) {
		t.Fatalf("want unsupported_shape for a map field, got %v", err)
	}
	if _, err := schemafile.Parse([]byte("schema: [\n")); !goflat.HasCode(err, goflat.CodeSchemaError) {
		t.Fatalf("want schema_error for broken YAML, got %v", err)
	}
	if _, err := schemafile.Parse(nil); !goflat.HasCode(err, goflat.CodeSchemaError) {
		t.Fatalf("want schema_error for an empty document, got %v", err)
	}
}
