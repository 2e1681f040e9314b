package goflat

// Kind identifies the shape of a Schema node.
type Kind int

const (
	KindPrimitive Kind = iota // A leaf scalar.
	KindEnum                  // A leaf with a closed set of names.
	KindStruct                // Ordered named fields.
	KindList                  // Repeated element; length given by a sibling field.
	KindUnion                 // Closed set of struct variants selected by a discriminator.
	KindMap                   // Only describable; every codec rejects it.
)

func (k Kind) String() string {
	switch k {
	case KindPrimitive:
		return "primitive"
	case KindEnum:
		return "enum"
	case KindStruct:
		return "struct"
	case KindList:
		return "list"
	case KindUnion:
		return "union"
	case KindMap:
		return "map"
	default:
		return "unknown"
	}
}

// PrimitiveType dictates how a primitive leaf is rendered and parsed.
type PrimitiveType int

const (
	TypeString PrimitiveType = iota
	TypeChar
	TypeBool
	TypeInt8
	TypeInt16
	TypeInt32
	TypeInt64
	TypeUint8
	TypeUint16
	TypeUint32
	TypeUint64
	TypeFloat32
	TypeFloat64
)

var primitiveNames = [...]string{
	TypeString:  "string",
	TypeChar:    "char",
	TypeBool:    "bool",
	TypeInt8:    "int8",
	TypeInt16:   "int16",
	TypeInt32:   "int32",
	TypeInt64:   "int64",
	TypeUint8:   "uint8",
	TypeUint16:  "uint16",
	TypeUint32:  "uint32",
	TypeUint64:  "uint64",
	TypeFloat32: "float32",
	TypeFloat64: "float64",
}

func (t PrimitiveType) String() string {
	if t < 0 || int(t) >= len(primitiveNames) {
		return "unknown"
	}
	return primitiveNames[t]
}

// ParsePrimitiveType resolves a type name as used by schema files. Besides the
// canonical names it accepts the aliases int (int32), long (int64), short
// (int16), byte (int8), float (float32) and double (float64).
func ParsePrimitiveType(name string) (PrimitiveType, bool) {
	switch name {
	case "int":
		return TypeInt32, true
	case "long":
		return TypeInt64, true
	case "short":
		return TypeInt16, true
	case "byte":
		return TypeInt8, true
	case "float":
		return TypeFloat32, true
	case "double":
		return TypeFloat64, true
	case "uint":
		return TypeUint32, true
	}
	for i, n := range primitiveNames {
		if n == name {
			return PrimitiveType(i), true
		}
	}
	return 0, false
}

// IsSigned reports whether t is a signed integer type.
func (t PrimitiveType) IsSigned() bool { return t >= TypeInt8 && t <= TypeInt64 }

// IsUnsigned reports whether t is an unsigned integer type.
func (t PrimitiveType) IsUnsigned() bool { return t >= TypeUint8 && t <= TypeUint64 }

// IsInteger reports whether t is any integer type.
func (t PrimitiveType) IsInteger() bool { return t.IsSigned() || t.IsUnsigned() }

// IsFloat reports whether t is a floating point type.
func (t PrimitiveType) IsFloat() bool { return t == TypeFloat32 || t == TypeFloat64 }

// IsNumeric reports whether t is rendered as a number.
func (t PrimitiveType) IsNumeric() bool { return t.IsInteger() || t.IsFloat() }

// BitSize returns the storage size of numeric types (0 otherwise).
func (t PrimitiveType) BitSize() int {
	switch t {
	case TypeInt8, TypeUint8:
		return 8
	case TypeInt16, TypeUint16:
		return 16
	case TypeInt32, TypeUint32, TypeFloat32:
		return 32
	case TypeInt64, TypeUint64, TypeFloat64:
		return 64
	}
	return 0
}

// EbcdicFormat selects an alternate numeric text encoding.
type EbcdicFormat int

const (
	EbcdicNone  EbcdicFormat = iota
	EbcdicZoned              // Signed zoned decimal, sign folded into the last digit.
)

// DiscriminatorKind selects how a union picks its variant.
type DiscriminatorKind int

const (
	DiscriminatorFixed    DiscriminatorKind = iota // A tag of Length characters precedes the variant.
	DiscriminatorProperty                          // The tag is the value of an earlier sibling field.
)
