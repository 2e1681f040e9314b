package goflat

// Package goflat provides:
//
// - A schema model (Schema) describing flat-file records: primitives, enums,
//   nested structs, length-prefixed lists and discriminated unions
// - A stable error model via Issues (JSON Pointer, code, message, byte offset)
// - Two codecs built on that model: csv (RFC 4180 family) and flf (fixed-width
//   positional records with optional EBCDIC zoned decimals)
//
// Design policy:
// - Keep only the shared model in the root package; codecs live in csv/ and flf/.
// - Place schema construction helpers under dsl/, file-based schemas under schemafile/,
//   JSON interop under jsonbridge/ and the CLI under cmd/goflat.
// - Codec configuration is an explicit value passed to constructors; there is no
//   package-level mutable default.
// - Prefer black-box testing against public APIs.
//
// Typical usage:
//
//  s := dsl.Struct("Foo", dsl.Field("bar", dsl.Int().Len(4)))
//  f, err := flf.New(flf.DefaultConfig())
//  v, err := f.DecodeString(s, "0042")      // goflat.Record{"bar": int64(42)}
//  line, err := f.EncodeToString(s, v)      // "0042"
//
//  c, err := csv.New(csv.DefaultConfig())
//  rows, err := c.DecodeString(dsl.ListOf(s), "bar\n42\n7")
