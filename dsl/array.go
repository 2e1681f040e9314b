package dsl

import goflat "github.com/reoring/goflat"

// List returns a nested list whose element count is stored in the earlier
// sibling integer field lengthRef.
func List(elem *goflat.Schema, lengthRef string) *goflat.Schema {
	return &goflat.Schema{Kind: goflat.KindList, Elem: elem, LengthRef: lengthRef}
}

// ListOf returns a top-level list: one element per record until input ends.
func ListOf(elem *goflat.Schema) *goflat.Schema {
	return &goflat.Schema{Kind: goflat.KindList, Elem: elem}
}
