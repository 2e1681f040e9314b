package dsl

import goflat "github.com/reoring/goflat"

// Union returns a sealed union over struct variants.
func Union(name string, disc goflat.Discriminator, variants ...goflat.Variant) *goflat.Schema {
	return &goflat.Schema{
		Kind:          goflat.KindUnion,
		Name:          name,
		Variants:      append([]goflat.Variant(nil), variants...),
		Discriminator: disc,
	}
}

// Variant pairs a tag with its struct schema.
func Variant(tag string, s *goflat.Schema) goflat.Variant {
	return goflat.Variant{Tag: tag, Schema: s}
}

// FixedTag selects the variant from a tag of n characters written before it.
func FixedTag(n int) goflat.Discriminator {
	return goflat.Discriminator{Kind: goflat.DiscriminatorFixed, Length: n}
}

// TagFrom selects the variant from the value of an earlier sibling field; no
// tag characters are written for the union itself.
func TagFrom(field string) goflat.Discriminator {
	return goflat.Discriminator{Kind: goflat.DiscriminatorProperty, Property: field}
}
