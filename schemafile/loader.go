package schemafile

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/csv"
	"github.com/reoring/goflat/i18n"
)

// nodeKeys are accepted on every schema node; fields and variants add their
// own on top.
var nodeKeys = []string{"name", "type", "ref", "length", "ebcdic", "enum", "fields", "list", "union", "map"}

// shapeKeys select the kind of a node; exactly one must be present.
var shapeKeys = []string{"type", "ref", "enum", "fields", "list", "union", "map"}

type loader struct {
	issues goflat.Issues

	raw      map[string]*yaml.Node
	built    map[string]*goflat.Schema
	building map[string]bool
}

func newLoader() *loader {
	return &loader{
		raw:      map[string]*yaml.Node{},
		built:    map[string]*goflat.Schema{},
		building: map[string]bool{},
	}
}

// fail records a schema_error at p; the hint carries the position of n.
func (l *loader) fail(n *yaml.Node, p goflat.PathRef, msg string) {
	l.issues = goflat.AppendIssues(l.issues, goflat.Issue{
		Path:    p.Pointer(),
		Code:    goflat.CodeSchemaError,
		Message: i18n.T(goflat.CodeSchemaError, nil),
		Hint:    fmt.Sprintf("%d:%d: %s", n.Line, n.Column, msg),
		Offset:  -1,
		Record:  -1,
	})
}

// mapping returns the entries of a mapping node by key, reporting duplicate
// and unknown keys.
func (l *loader) mapping(n *yaml.Node, p goflat.PathRef, allowed ...string) map[string]*yaml.Node {
	if n.Kind != yaml.MappingNode {
		l.fail(n, p, "expected a mapping")
		return nil
	}
	m := make(map[string]*yaml.Node, len(n.Content)/2)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		switch {
		case !slices.Contains(allowed, k.Value):
			l.fail(k, p.Field(k.Value), "unknown key "+k.Value)
		case m[k.Value] != nil:
			l.fail(k, p.Field(k.Value), "duplicate key "+k.Value)
		default:
			m[k.Value] = v
		}
	}
	return m
}

func (l *loader) scalar(n *yaml.Node, p goflat.PathRef, dst any) bool {
	if n.Kind != yaml.ScalarNode {
		l.fail(n, p, "expected a scalar")
		return false
	}
	if err := n.Decode(dst); err != nil {
		l.fail(n, p, err.Error())
		return false
	}
	return true
}

func (l *loader) document(n *yaml.Node) *Document {
	p := goflat.Root()
	m := l.mapping(n, p, "schema", "types", "csv", "flf")
	if m == nil {
		return nil
	}
	doc := &Document{Types: map[string]*goflat.Schema{}}
	if t := m["types"]; t != nil {
		l.types(t, p.Field("types"), doc)
	}
	if s := m["schema"]; s != nil {
		doc.Schema = l.schema(s, p.Field("schema"))
	} else {
		l.fail(n, p, "missing key schema")
	}
	if c := m["csv"]; c != nil {
		l.csv(c, p.Field("csv"), &doc.csv)
	}
	if f := m["flf"]; f != nil {
		l.flf(f, p.Field("flf"), &doc.flf)
	}
	return doc
}

func (l *loader) types(n *yaml.Node, p goflat.PathRef, doc *Document) {
	if n.Kind != yaml.MappingNode {
		l.fail(n, p, "expected a mapping")
		return
	}
	var names []string
	for i := 0; i+1 < len(n.Content); i += 2 {
		k := n.Content[i]
		if l.raw[k.Value] != nil {
			l.fail(k, p.Field(k.Value), "duplicate type "+k.Value)
			continue
		}
		l.raw[k.Value] = n.Content[i+1]
		names = append(names, k.Value)
	}
	for _, name := range names {
		if s := l.resolve(name, n, p); s != nil {
			doc.Types[name] = s
		}
	}
}

// resolve builds the named type once and reports reference cycles.
func (l *loader) resolve(name string, at *yaml.Node, p goflat.PathRef) *goflat.Schema {
	if s, ok := l.built[name]; ok {
		return s
	}
	raw := l.raw[name]
	if raw == nil {
		l.fail(at, p, "unknown type "+name)
		return nil
	}
	if l.building[name] {
		l.fail(at, p, "recursive type "+name)
		return nil
	}
	l.building[name] = true
	s := l.schema(raw, goflat.Root().Field("types").Field(name))
	delete(l.building, name)
	if s != nil && s.Name == "" {
		s.Name = name
	}
	l.built[name] = s
	return s
}

func (l *loader) schema(n *yaml.Node, p goflat.PathRef) *goflat.Schema {
	s, _ := l.node(n, p)
	return s
}

// node builds the schema described by n. extra lists the keys the caller
// reads itself; their values are returned.
func (l *loader) node(n *yaml.Node, p goflat.PathRef, extra ...string) (*goflat.Schema, map[string]*yaml.Node) {
	m := l.mapping(n, p, append(slices.Clone(nodeKeys), extra...)...)
	if m == nil {
		return nil, nil
	}
	var shapes []string
	for _, k := range shapeKeys {
		if m[k] != nil {
			shapes = append(shapes, k)
		}
	}
	if len(shapes) != 1 {
		l.fail(n, p, "want exactly one of "+strings.Join(shapeKeys, ", ")+", got "+fmt.Sprint(len(shapes)))
		return nil, m
	}
	var s *goflat.Schema
	switch shapes[0] {
	case "ref":
		var name string
		if l.scalar(m["ref"], p.Field("ref"), &name) {
			if ref := l.resolve(name, m["ref"], p.Field("ref")); ref != nil {
				s = ref
				if m["length"] != nil {
					c := *ref
					s = &c
				}
			}
		}
	case "type":
		s = l.primitive(m["type"], p.Field("type"))
	case "enum":
		s = l.enum(m["enum"], p.Field("enum"))
	case "fields":
		s = l.fields(m["fields"], p.Field("fields"))
	case "list":
		s = l.list(m["list"], p.Field("list"))
	case "union":
		s = l.union(m["union"], p.Field("union"))
	case "map":
		mm := l.mapping(m["map"], p.Field("map"), "key", "value")
		s = &goflat.Schema{Kind: goflat.KindMap}
		if k := mm["key"]; k != nil {
			s.Key = l.schema(k, p.Field("map").Field("key"))
		}
		if v := mm["value"]; v != nil {
			s.Value = l.schema(v, p.Field("map").Field("value"))
		}
	}
	if s == nil {
		return nil, m
	}
	if v := m["name"]; v != nil && shapes[0] != "ref" && !slices.Contains(extra, "nullable") {
		l.scalar(v, p.Field("name"), &s.Name)
	}
	if v := m["length"]; v != nil {
		l.scalar(v, p.Field("length"), &s.Length)
	}
	if v := m["ebcdic"]; v != nil {
		var enc string
		if l.scalar(v, p.Field("ebcdic"), &enc) {
			switch enc {
			case "zoned":
				if shapes[0] == "ref" {
					c := *s
					s = &c
				}
				s.Ebcdic = goflat.EbcdicZoned
			case "none":
			default:
				l.fail(v, p.Field("ebcdic"), "unknown ebcdic format "+enc)
			}
		}
	}
	return s, m
}

func (l *loader) primitive(n *yaml.Node, p goflat.PathRef) *goflat.Schema {
	var name string
	if !l.scalar(n, p, &name) {
		return nil
	}
	t, ok := goflat.ParsePrimitiveType(name)
	if !ok {
		l.fail(n, p, "unknown type "+name)
		return nil
	}
	return &goflat.Schema{Kind: goflat.KindPrimitive, Type: t}
}

func (l *loader) enum(n *yaml.Node, p goflat.PathRef) *goflat.Schema {
	if n.Kind != yaml.SequenceNode {
		l.fail(n, p, "expected a list of names")
		return nil
	}
	s := &goflat.Schema{Kind: goflat.KindEnum}
	for i, c := range n.Content {
		var v string
		if l.scalar(c, p.Index(i), &v) {
			s.Values = append(s.Values, v)
		}
	}
	return s
}

func (l *loader) fields(n *yaml.Node, p goflat.PathRef) *goflat.Schema {
	if n.Kind != yaml.SequenceNode {
		l.fail(n, p, "expected a list of fields")
		return nil
	}
	s := &goflat.Schema{Kind: goflat.KindStruct}
	for i, c := range n.Content {
		fp := p.Index(i)
		fs, m := l.node(c, fp, "nullable")
		if m == nil {
			continue
		}
		f := goflat.Field{Schema: fs}
		if v := m["name"]; v != nil {
			l.scalar(v, fp.Field("name"), &f.Name)
		} else {
			l.fail(c, fp, "field without name")
		}
		if v := m["nullable"]; v != nil {
			l.scalar(v, fp.Field("nullable"), &f.Nullable)
		}
		s.Fields = append(s.Fields, f)
	}
	return s
}

func (l *loader) list(n *yaml.Node, p goflat.PathRef) *goflat.Schema {
	m := l.mapping(n, p, "elem", "lengthRef")
	if m == nil {
		return nil
	}
	s := &goflat.Schema{Kind: goflat.KindList}
	if e := m["elem"]; e != nil {
		s.Elem = l.schema(e, p.Field("elem"))
	} else {
		l.fail(n, p, "list without elem")
	}
	if r := m["lengthRef"]; r != nil {
		l.scalar(r, p.Field("lengthRef"), &s.LengthRef)
	}
	return s
}

func (l *loader) union(n *yaml.Node, p goflat.PathRef) *goflat.Schema {
	m := l.mapping(n, p, "discriminator", "variants")
	if m == nil {
		return nil
	}
	s := &goflat.Schema{Kind: goflat.KindUnion}
	if d := m["discriminator"]; d != nil {
		dp := p.Field("discriminator")
		dm := l.mapping(d, dp, "length", "property")
		switch {
		case dm["length"] != nil && dm["property"] != nil:
			l.fail(d, dp, "discriminator takes either length or property")
		case dm["property"] != nil:
			s.Discriminator.Kind = goflat.DiscriminatorProperty
			l.scalar(dm["property"], dp.Field("property"), &s.Discriminator.Property)
		case dm["length"] != nil:
			l.scalar(dm["length"], dp.Field("length"), &s.Discriminator.Length)
		default:
			l.fail(d, dp, "discriminator needs length or property")
		}
	} else {
		l.fail(n, p, "union without discriminator")
	}
	vs := m["variants"]
	if vs == nil || vs.Kind != yaml.SequenceNode {
		l.fail(n, p.Field("variants"), "expected a list of variants")
		return s
	}
	for i, c := range vs.Content {
		vp := p.Field("variants").Index(i)
		vsch, vm := l.node(c, vp, "tag")
		if vm == nil {
			continue
		}
		v := goflat.Variant{Schema: vsch}
		if t := vm["tag"]; t != nil {
			l.scalar(t, vp.Field("tag"), &v.Tag)
		} else {
			l.fail(c, vp, "variant without tag")
		}
		s.Variants = append(s.Variants, v)
	}
	return s
}

func (l *loader) csv(n *yaml.Node, p goflat.PathRef, out *csvSettings) {
	m := l.mapping(n, p, "separator", "lineSeparator", "includeHeader", "alwaysEmitQuotes", "numberFormat", "strictTrailingFields")
	if v := m["separator"]; v != nil {
		var sep string
		if l.scalar(v, p.Field("separator"), &sep) {
			if r, size := utf8.DecodeRuneInString(sep); size == 0 || size != len(sep) {
				l.fail(v, p.Field("separator"), "separator must be a single character")
			} else {
				out.separator = &r
			}
		}
	}
	if v := m["numberFormat"]; v != nil {
		var nf string
		if l.scalar(v, p.Field("numberFormat"), &nf) {
			var f csv.NumberFormat
			switch nf {
			case "dot":
				f = csv.NumberDot
			case "comma":
				f = csv.NumberComma
			default:
				l.fail(v, p.Field("numberFormat"), "numberFormat must be dot or comma")
			}
			out.numberFormat = &f
		}
	}
	out.lineSeparator = optional[string](l, m, p, "lineSeparator")
	out.includeHeader = optional[bool](l, m, p, "includeHeader")
	out.alwaysEmitQuotes = optional[bool](l, m, p, "alwaysEmitQuotes")
	out.strictTrailingFields = optional[bool](l, m, p, "strictTrailingFields")
}

func (l *loader) flf(n *yaml.Node, p goflat.PathRef, out *flfSettings) {
	m := l.mapping(n, p, "lineSeparator", "fillLeadingZeros", "trim")
	out.lineSeparator = optional[string](l, m, p, "lineSeparator")
	out.fillLeadingZeros = optional[bool](l, m, p, "fillLeadingZeros")
	out.trim = optional[bool](l, m, p, "trim")
}

func optional[T any](l *loader, m map[string]*yaml.Node, p goflat.PathRef, key string) *T {
	n := m[key]
	if n == nil {
		return nil
	}
	var v T
	if !l.scalar(n, p.Field(key), &v) {
		return nil
	}
	return &v
}
