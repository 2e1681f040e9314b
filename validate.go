package goflat

import "fmt"

// Validate checks the format-independent invariants of s and returns Issues
// describing every violation found. Codecs call it eagerly, before any text is
// consumed, and add their own format-specific checks on top.
func Validate(s *Schema) error {
	v := &validator{visiting: map[*Schema]bool{}}
	v.walk(s, Root(), nil, false)
	if len(v.issues) > 0 {
		return v.issues
	}
	return nil
}

// scope is the chain of struct fields visible to a property discriminator:
// the fields declared before the current one, then those of enclosing structs.
type scope struct {
	s      *Schema
	upto   int
	parent *scope
}

// Lookup finds the nearest visible field with the given name.
func (sc *scope) lookup(name string) (Field, bool) {
	for c := sc; c != nil; c = c.parent {
		for i := c.upto - 1; i >= 0; i-- {
			if c.s.Fields[i].Name == name {
				return c.s.Fields[i], true
			}
		}
	}
	return Field{}, false
}

type validator struct {
	issues   Issues
	visiting map[*Schema]bool
}

func (v *validator) fail(p PathRef, code, hint string) {
	v.issues = AppendIssues(v.issues, IssueAt(p, code, hint))
}

func (v *validator) walk(s *Schema, p PathRef, sc *scope, inField bool) {
	if s == nil {
		v.fail(p, CodeSchemaError, "nil schema")
		return
	}
	if v.visiting[s] {
		v.fail(p, CodeSchemaError, "recursive schema")
		return
	}
	v.visiting[s] = true
	defer delete(v.visiting, s)

	if s.Length < 0 {
		v.fail(p, CodeSchemaError, fmt.Sprintf("negative length %d", s.Length))
	}
	switch s.Kind {
	case KindPrimitive:
		if s.Type < TypeString || s.Type > TypeFloat64 {
			v.fail(p, CodeSchemaError, "unknown primitive type")
		}
		if s.Ebcdic == EbcdicZoned && !s.Type.IsSigned() {
			v.fail(p, CodeSchemaError, "zoned decimal requires a signed integer type, got "+s.Type.String())
		}
	case KindEnum:
		if len(s.Values) == 0 {
			v.fail(p, CodeSchemaError, "enum without values")
		}
		seen := make(map[string]bool, len(s.Values))
		for _, val := range s.Values {
			if val == "" {
				v.fail(p, CodeSchemaError, "empty enum value")
			}
			if seen[val] {
				v.fail(p, CodeSchemaError, "duplicate enum value "+val)
			}
			seen[val] = true
		}
	case KindStruct:
		v.walkStruct(s, p, sc)
	case KindList:
		if !inField && s.LengthRef != "" {
			v.fail(p, CodeSchemaError, "top-level list cannot reference a length field")
		}
		if s.Elem == nil {
			v.fail(p, CodeSchemaError, "list without element schema")
			return
		}
		if s.Elem.Kind == KindList {
			v.fail(p, CodeUnsupportedShape, "list of lists")
			return
		}
		v.walk(s.Elem, p.Index(0), sc, false)
	case KindUnion:
		v.walkUnion(s, p, sc)
	case KindMap:
		v.fail(p, CodeUnsupportedShape, "map fields are not supported")
	default:
		v.fail(p, CodeSchemaError, "unknown schema kind")
	}
}

func (v *validator) walkStruct(s *Schema, p PathRef, sc *scope) {
	seen := make(map[string]bool, len(s.Fields))
	for i, f := range s.Fields {
		fp := p.Field(f.Name)
		if f.Name == "" {
			v.fail(fp, CodeSchemaError, fmt.Sprintf("field %d has no name", i))
		}
		if seen[f.Name] {
			v.fail(fp, CodeSchemaError, "duplicate field "+f.Name)
		}
		seen[f.Name] = true
		if f.Schema == nil {
			v.fail(fp, CodeSchemaError, "nil schema")
			continue
		}
		if f.Schema.Kind == KindList {
			v.checkLengthRef(s, i, fp)
		}
		v.walk(f.Schema, fp, &scope{s: s, upto: i, parent: sc}, true)
	}
}

// checkLengthRef enforces that the list at index i names a non-nullable
// integer sibling declared before it.
func (v *validator) checkLengthRef(s *Schema, i int, p PathRef) {
	ref := s.Fields[i].Schema.LengthRef
	if ref == "" {
		v.fail(p, CodeSchemaError, "nested list requires a length field")
		return
	}
	idx := s.FieldIndex(ref)
	switch {
	case idx < 0:
		v.fail(p, CodeSchemaError, "length field "+ref+" does not exist")
	case idx >= i:
		v.fail(p, CodeSchemaError, "length field "+ref+" must be declared before "+s.Fields[i].Name)
	case s.Fields[idx].Nullable:
		v.fail(p, CodeSchemaError, "length field "+ref+" must not be nullable")
	case s.Fields[idx].Schema == nil || s.Fields[idx].Schema.Kind != KindPrimitive || !s.Fields[idx].Schema.Type.IsInteger():
		v.fail(p, CodeSchemaError, "length field "+ref+" must be an integer")
	}
}

func (v *validator) walkUnion(s *Schema, p PathRef, sc *scope) {
	if len(s.Variants) == 0 {
		v.fail(p, CodeSchemaError, "union without variants")
	}
	switch s.Discriminator.Kind {
	case DiscriminatorFixed:
		if s.Discriminator.Length < 0 {
			v.fail(p, CodeSchemaError, "negative discriminator length")
		}
	case DiscriminatorProperty:
		name := s.Discriminator.Property
		if name == "" {
			v.fail(p, CodeSchemaError, "property discriminator without a field name")
			break
		}
		f, ok := sc.lookup(name)
		switch {
		case !ok:
			v.fail(p, CodeSchemaError, "discriminator field "+name+" is not declared before the union")
		case f.Schema == nil || !(f.Schema.Kind == KindEnum || (f.Schema.Kind == KindPrimitive && f.Schema.Type == TypeString)):
			v.fail(p, CodeSchemaError, "discriminator field "+name+" must be a string or enum")
		}
	default:
		v.fail(p, CodeSchemaError, "unknown discriminator kind")
	}
	seen := make(map[string]bool, len(s.Variants))
	for _, vr := range s.Variants {
		vp := p.Field(vr.Tag)
		if vr.Tag == "" {
			v.fail(vp, CodeSchemaError, "variant without tag")
		}
		if seen[vr.Tag] {
			v.fail(vp, CodeSchemaError, "ambiguous discriminator: duplicate variant "+vr.Tag)
		}
		seen[vr.Tag] = true
		if vr.Schema == nil {
			v.fail(vp, CodeSchemaError, "nil variant schema")
			continue
		}
		if vr.Schema.Kind != KindStruct {
			v.fail(vp, CodeUnsupportedShape, "union variants must be structs, got "+vr.Schema.Kind.String())
			continue
		}
		v.walk(vr.Schema, vp, sc, false)
	}
}
