package dsl

import goflat "github.com/reoring/goflat"

// Field declares a non-nullable struct member.
func Field(name string, s *goflat.Schema) goflat.Field {
	return goflat.Field{Name: name, Schema: s}
}

// Nullable declares a struct member that may be null (blank in the wire text).
func Nullable(name string, s *goflat.Schema) goflat.Field {
	return goflat.Field{Name: name, Schema: s, Nullable: true}
}

// Struct returns a struct schema with the given ordered fields.
func Struct(name string, fields ...goflat.Field) *goflat.Schema {
	return &goflat.Schema{Kind: goflat.KindStruct, Name: name, Fields: append([]goflat.Field(nil), fields...)}
}

// ObjectBuilder accumulates struct fields in declaration order.
type ObjectBuilder struct {
	name   string
	fields []goflat.Field
}

// Object starts a struct builder.
func Object(name string) *ObjectBuilder { return &ObjectBuilder{name: name} }

// Field appends a non-nullable member.
func (b *ObjectBuilder) Field(name string, s *goflat.Schema) *ObjectBuilder {
	b.fields = append(b.fields, Field(name, s))
	return b
}

// Nullable appends a nullable member.
func (b *ObjectBuilder) Nullable(name string, s *goflat.Schema) *ObjectBuilder {
	b.fields = append(b.fields, Nullable(name, s))
	return b
}

// Build returns the struct schema. The builder may keep being used; later
// calls do not affect schemas already built.
func (b *ObjectBuilder) Build() *goflat.Schema { return Struct(b.name, b.fields...) }
