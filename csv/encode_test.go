package csv_test

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/csv"
	g "github.com/reoring/goflat/dsl"
)

func encode(t *testing.T, f *csv.Format, s *goflat.Schema, v any) string {
	t.Helper()
	out, err := f.EncodeToString(s, v)
	if err != nil {
		t.Fatalf("EncodeToString: %v", err)
	}
	return out
}

func TestEncode(t *testing.T) {
	nested := func(bar, foo int) goflat.Record {
		return goflat.Record{"baz": 42, "child": goflat.Record{"baz": nil, "bar": bar}, "foo": foo}
	}
	cases := []struct {
		name   string
		schema *goflat.Schema
		v      any
		want   string
	}{
		{"normal", fooSchema, goflat.Record{"bar": 42}, "bar\n42"},
		{"nullable second", fooNullSchema, goflat.Record{"bar": 42, "baz": nil}, "bar,baz\n42,"},
		{"nullable first", fooNullFirstSchema, goflat.Record{"bar": 42}, "baz,bar\n,42"},
		{"nested", fooNestedSchema, nested(42, 1), "baz,baz,bar,foo\n42,,42,1"},
		{"list", g.ListOf(fooNestedSchema), []any{nested(0, 0), nested(1, 10), nested(2, 20)},
			"baz,baz,bar,foo\n42,,0,0\n42,,1,10\n42,,2,20"},
		{"empty list", g.ListOf(fooNestedSchema), []any{}, "baz,baz,bar,foo"},
		{"enum", fooEnumSchema, map[string]any{"baz": nil, "foo": "One"}, "baz,foo\n,One"},
		{"inline double", g.Struct("FooInline", g.Field("foo", g.Double())), goflat.Record{"foo": 42.42}, "foo\n42.42"},
		{"quotes values with separators", fooStringSchema, goflat.Record{"bar": 1, "value": "a,\"b\"", "foo": 2},
			"bar,value,foo\n1,\"a,\"\"b\"\"\",2"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := encode(t, csv.Default, tc.schema, tc.v); got != tc.want {
				t.Fatalf("want %q, got %q", tc.want, got)
			}
		})
	}
}

func TestEncode_Dialects(t *testing.T) {
	custom := mustFormat(t, func(c *csv.Config) { c.Separator = ';'; c.LineSeparator = "\r\n" })
	if got := encode(t, custom, fooNullSchema, goflat.Record{"bar": 42}); got != "bar;baz\r\n42;" {
		t.Fatalf("want custom dialect, got %q", got)
	}

	comma := mustFormat(t, func(c *csv.Config) {
		c.Separator = ';'
		c.LineSeparator = "\r\n"
		c.NumberFormat = csv.NumberComma
	})
	var rows []any
	for _, r := range complexRows(42.42) {
		rows = append(rows, r)
	}
	want := "bar;foo;enum;instant\r\n;42,42;Three;1970-01-01T00:00:00Z\r\nSomething;42,42;Three;1970-01-01T00:00:01Z\r\n;42,42;Three;1970-01-01T00:00:02Z"
	if got := encode(t, comma, g.ListOf(fooComplex), rows); got != want {
		t.Fatalf("want %q, got %q", want, got)
	}
}

func TestEncode_SealedWithoutHeader(t *testing.T) {
	values := func(text string) []any {
		return []any{
			goflat.Union{Tag: "foo", Record: goflat.Record{"foo": text}},
			&goflat.Union{Tag: "bar", Record: goflat.Record{"bar": 42}},
		}
	}
	custom := mustFormat(t, func(c *csv.Config) {
		c.Separator = ';'
		c.LineSeparator = "\r\n"
		c.IncludeHeader = false
	})
	if got := encode(t, custom, g.ListOf(sealedSchema), values("Hello ;from\r\nWorld")); got != "foo;\"Hello ;from\r\nWorld\"\r\nbar;42" {
		t.Fatalf("custom list: got %q", got)
	}

	always := mustFormat(t, func(c *csv.Config) { c.AlwaysEmitQuotes = true; c.IncludeHeader = false })
	if got := encode(t, always, g.ListOf(sealedSchema), values("Hello from\nWorld")); got != "\"foo\",\"Hello from\nWorld\"\n\"bar\",\"42\"" {
		t.Fatalf("always quote: got %q", got)
	}
}

func TestEncode_Errors(t *testing.T) {
	if _, err := csv.Default.EncodeToString(g.ListOf(sealedSchema), []any{}); !goflat.HasCode(err, goflat.CodeUnsupportedShape) {
		t.Fatalf("want unsupported_shape for union with header, got %v", err)
	}
	if _, err := csv.Default.EncodeToString(fooSchema, goflat.Record{}); !goflat.HasCode(err, goflat.CodeMissingField) {
		t.Fatalf("want missing_field for nil non-null value, got %v", err)
	}
	if _, err := csv.Default.EncodeToString(fooSchema, goflat.Record{"bar": "x"}); !goflat.HasCode(err, goflat.CodeFormatError) {
		t.Fatalf("want format_error for a string in an int field, got %v", err)
	}
	if _, err := csv.Default.EncodeToString(fooEnumSchema, goflat.Record{"foo": "Four"}); !goflat.HasCode(err, goflat.CodeFormatError) {
		t.Fatalf("want format_error for unknown enum value, got %v", err)
	}
}

func TestEncoder_Streaming(t *testing.T) {
	b := &strings.Builder{}
	e, err := csv.Default.NewEncoder(b, g.ListOf(fooSchema))
	if err != nil {
		t.Fatalf("NewEncoder: %v", err)
	}
	if err := e.Encode(goflat.Record{"bar": 1}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := e.Encode(goflat.Record{"bar": "bad"}); err == nil {
		t.Fatalf("want error for bad record")
	}
	if err := e.Encode(goflat.Record{"bar": 2}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	if got := b.String(); got != "bar\n1\n2" {
		t.Fatalf("failed records must not be written, got %q", got)
	}
	if err := e.Encode(goflat.Record{"bar": 3}); !goflat.HasCode(err, goflat.CodeInvalidState) {
		t.Fatalf("want invalid_state after Close, got %v", err)
	}
}

func TestRoundTrip(t *testing.T) {
	s := g.ListOf(g.Struct("Row",
		g.Field("id", g.Long()),
		g.Field("name", g.String()),
		g.Nullable("score", g.Double()),
		g.Field("ok", g.Bool()),
		g.Field("grade", g.Char()),
		g.Field("kind", fooEnum),
	))
	in := []any{
		goflat.Record{"id": int64(1), "name": "a;b", "score": 1.5, "ok": true, "grade": 'A', "kind": "One"},
		goflat.Record{"id": int64(-2), "name": "multi\nline", "score": nil, "ok": false, "grade": 'B', "kind": "Three"},
	}
	for _, f := range []*csv.Format{
		csv.Default,
		mustFormat(t, func(c *csv.Config) { c.Separator = ';'; c.LineSeparator = "\r\n"; c.NumberFormat = csv.NumberComma }),
		mustFormat(t, func(c *csv.Config) { c.IncludeHeader = false; c.AlwaysEmitQuotes = true }),
	} {
		text := encode(t, f, s, in)
		got := decode(t, f, s, text)
		if diff := cmp.Diff(in, got); diff != "" {
			t.Fatalf("round trip via %q (-want +got):\n%s", text, diff)
		}
	}
}

func TestRoundTrip_SingleEmptyCell(t *testing.T) {
	cases := []struct {
		name string
		s    *goflat.Schema
		in   []any
	}{
		{"null cell", g.ListOf(g.Struct("Foo", g.Nullable("bar", g.Int()))),
			[]any{goflat.Record{"bar": nil}, goflat.Record{"bar": int64(1)}, goflat.Record{"bar": nil}}},
		{"empty string", g.ListOf(g.Struct("S", g.Field("s", g.String()))),
			[]any{goflat.Record{"s": ""}, goflat.Record{"s": "x"}, goflat.Record{"s": ""}}},
	}
	for _, tc := range cases {
		for _, f := range []*csv.Format{
			csv.Default,
			mustFormat(t, func(c *csv.Config) { c.IncludeHeader = false }),
			mustFormat(t, func(c *csv.Config) { c.IncludeHeader = false; c.AlwaysEmitQuotes = true }),
		} {
			text := encode(t, f, tc.s, tc.in)
			got := decode(t, f, tc.s, text)
			if diff := cmp.Diff(tc.in, got); diff != "" {
				t.Fatalf("%s: round trip via %q (-want +got):\n%s", tc.name, text, diff)
			}
		}
	}
}
