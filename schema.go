package goflat

import (
	"strconv"
	"strings"
)

// Schema is an immutable tree describing one record type. It is a tagged
// union over Kind; only the fields relevant to Kind are meaningful.
//
// Schemas are built once (by hand, with package dsl, or from a schema file)
// and may be shared freely between goroutines and codec instances. The
// With* helpers return modified copies and never mutate the receiver.
type Schema struct {
	Kind Kind
	// Name is the type name of structs, enums, unions and list elements. It
	// is only used in diagnostics.
	Name string

	// Primitive
	Type   PrimitiveType
	Ebcdic EbcdicFormat

	// Length is the declared width in characters of a primitive, enum or
	// union tag. Zero means undeclared; the fixed-length codec requires it.
	Length int

	// Enum
	Values []string

	// Struct
	Fields []Field

	// List
	Elem *Schema
	// LengthRef names the earlier sibling integer field holding the number of
	// elements. Empty for a top-level list, which runs until input ends.
	LengthRef string

	// Union
	Variants      []Variant
	Discriminator Discriminator

	// Map (never encodable; present so providers can describe and reject it)
	Key   *Schema
	Value *Schema
}

// Field is a named member of a struct schema.
type Field struct {
	Name     string
	Schema   *Schema
	Nullable bool
}

// Variant is one alternative of a union. Schema must be a struct.
type Variant struct {
	Tag    string
	Schema *Schema
}

// Discriminator describes how a union selects its variant.
type Discriminator struct {
	Kind DiscriminatorKind
	// Length is the tag width for DiscriminatorFixed.
	Length int
	// Property names the sibling field for DiscriminatorProperty.
	Property string
}

// WithLength returns a copy of s with the declared width set to n.
func (s *Schema) WithLength(n int) *Schema {
	c := *s
	c.Length = n
	return &c
}

// Len is shorthand for WithLength.
func (s *Schema) Len(n int) *Schema { return s.WithLength(n) }

// WithZoned returns a copy of s that renders as EBCDIC zoned decimal.
func (s *Schema) WithZoned() *Schema {
	c := *s
	c.Ebcdic = EbcdicZoned
	return &c
}

// Named returns a copy of s with the given type name.
func (s *Schema) Named(name string) *Schema {
	c := *s
	c.Name = name
	return &c
}

// FieldIndex returns the index of the named field in a struct schema, or -1.
func (s *Schema) FieldIndex(name string) int {
	for i, f := range s.Fields {
		if f.Name == name {
			return i
		}
	}
	return -1
}

// Variant returns the variant with the given tag.
func (s *Schema) Variant(tag string) (Variant, bool) {
	for _, v := range s.Variants {
		if v.Tag == tag {
			return v, true
		}
	}
	return Variant{}, false
}

// IsLeaf reports whether s is a primitive or enum.
func (s *Schema) IsLeaf() bool { return s.Kind == KindPrimitive || s.Kind == KindEnum }

// String renders a compact description such as "struct Foo{bar int32(4)}".
func (s *Schema) String() string {
	b := &strings.Builder{}
	s.describe(b, 0)
	return b.String()
}

func (s *Schema) describe(b *strings.Builder, depth int) {
	if s == nil {
		b.WriteString("<nil>")
		return
	}
	if depth > 8 {
		b.WriteString("...")
		return
	}
	width := func() {
		if s.Length > 0 {
			b.WriteString("(" + strconv.Itoa(s.Length) + ")")
		}
	}
	switch s.Kind {
	case KindPrimitive:
		b.WriteString(s.Type.String())
		if s.Ebcdic == EbcdicZoned {
			b.WriteString(" zoned")
		}
		width()
	case KindEnum:
		b.WriteString("enum")
		if s.Name != "" {
			b.WriteString(" " + s.Name)
		}
		b.WriteString("[" + strings.Join(s.Values, "|") + "]")
		width()
	case KindStruct:
		b.WriteString("struct")
		if s.Name != "" {
			b.WriteString(" " + s.Name)
		}
		b.WriteString("{")
		for i, f := range s.Fields {
			if i > 0 {
				b.WriteString(", ")
			}
			b.WriteString(f.Name + " ")
			f.Schema.describe(b, depth+1)
			if f.Nullable {
				b.WriteString("?")
			}
		}
		b.WriteString("}")
	case KindList:
		b.WriteString("list[")
		s.Elem.describe(b, depth+1)
		b.WriteString("]")
		if s.LengthRef != "" {
			b.WriteString("#" + s.LengthRef)
		}
	case KindUnion:
		b.WriteString("union")
		if s.Name != "" {
			b.WriteString(" " + s.Name)
		}
		if s.Discriminator.Kind == DiscriminatorProperty {
			b.WriteString("<" + s.Discriminator.Property + ">")
		} else {
			b.WriteString("<" + strconv.Itoa(s.Discriminator.Length) + ">")
		}
		b.WriteString("{")
		for i, v := range s.Variants {
			if i > 0 {
				b.WriteString(" | ")
			}
			b.WriteString(v.Tag + ": ")
			v.Schema.describe(b, depth+1)
		}
		b.WriteString("}")
	case KindMap:
		b.WriteString("map")
	}
}
