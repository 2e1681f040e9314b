// Package dsl provides a compact schema DSL for goflat.
//
// Overview
//   - Primitives: String()/Char()/Bool()/Int()/Long()/Double()/... return leaf schemas;
//     chain .Len(n) for the fixed-length width and .WithZoned() for EBCDIC zoned decimals.
//   - Enum(name, values...): a leaf with a closed set of names.
//   - Struct(name, fields...) or Object(name).Field(...).Nullable(...).Build(): ordered records.
//   - List(elem, lengthRef): a repeated element whose count is an earlier sibling field.
//     ListOf(elem) is the top-level form ("one record per line until input ends").
//   - Union(name, FixedTag(n)|TagFrom(field), Variant(tag, struct)...): sealed variants.
//
// Schemas are plain *goflat.Schema values; the DSL only saves typing. Nothing is
// validated here: codecs validate eagerly when they are handed a schema.
//
// Example
//
//	package main
//
//	import (
//	    g "github.com/reoring/goflat/dsl"
//	    "github.com/reoring/goflat/flf"
//	)
//
//	var seal = g.Union("Seal", g.FixedTag(1),
//	    g.Variant("A", g.Struct("A", g.Field("a", g.Int().Len(2)), g.Field("s", g.Int().Len(4)))),
//	    g.Variant("B", g.Struct("B", g.Field("b", g.String().Len(10)), g.Field("s", g.Int().Len(4)))),
//	)
//
//	func main() {
//	    f, _ := flf.New(flf.DefaultConfig())
//	    v, _ := f.DecodeString(seal, "A421   ") // goflat.Union{Tag: "A", Record: {a: 42, s: 1}}
//	    _ = v
//	}
package dsl
