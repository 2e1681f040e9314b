package dsl

import goflat "github.com/reoring/goflat"

func prim(t goflat.PrimitiveType) *goflat.Schema {
	return &goflat.Schema{Kind: goflat.KindPrimitive, Type: t}
}

// String returns a text leaf.
func String() *goflat.Schema { return prim(goflat.TypeString) }

// Char returns a single-character leaf. Fixed-length decoding never trims it.
func Char() *goflat.Schema { return prim(goflat.TypeChar) }

// Bool returns a boolean leaf rendered as true/false.
func Bool() *goflat.Schema { return prim(goflat.TypeBool) }

func Int8() *goflat.Schema   { return prim(goflat.TypeInt8) }
func Int16() *goflat.Schema  { return prim(goflat.TypeInt16) }
func Int32() *goflat.Schema  { return prim(goflat.TypeInt32) }
func Int64() *goflat.Schema  { return prim(goflat.TypeInt64) }
func Uint8() *goflat.Schema  { return prim(goflat.TypeUint8) }
func Uint16() *goflat.Schema { return prim(goflat.TypeUint16) }
func Uint32() *goflat.Schema { return prim(goflat.TypeUint32) }
func Uint64() *goflat.Schema { return prim(goflat.TypeUint64) }

// Byte, Short, Int and Long are the familiar aliases of Int8..Int64.
func Byte() *goflat.Schema  { return Int8() }
func Short() *goflat.Schema { return Int16() }
func Int() *goflat.Schema   { return Int32() }
func Long() *goflat.Schema  { return Int64() }

// Float and Double are float32 and float64 leaves.
func Float() *goflat.Schema  { return prim(goflat.TypeFloat32) }
func Double() *goflat.Schema { return prim(goflat.TypeFloat64) }

// Zoned returns an int64 leaf of the given width encoded as EBCDIC zoned decimal.
func Zoned(length int) *goflat.Schema { return Long().Len(length).WithZoned() }

// Enum returns a leaf whose value is one of values.
func Enum(name string, values ...string) *goflat.Schema {
	return &goflat.Schema{Kind: goflat.KindEnum, Name: name, Values: append([]string(nil), values...)}
}

// Map describes a map field. Every codec rejects it with unsupported_shape;
// it exists so schema providers can describe such fields faithfully.
func Map(key, value *goflat.Schema) *goflat.Schema {
	return &goflat.Schema{Kind: goflat.KindMap, Key: key, Value: value}
}
