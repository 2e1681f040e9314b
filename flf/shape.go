package flf

import (
	"strconv"
	"unicode/utf8"

	goflat "github.com/reoring/goflat"
)

// Validate checks that s can be decoded and encoded as fixed-length text.
// Besides goflat.Validate it requires a width on every leaf and fixed
// discriminator.
func (f *Format) Validate(s *goflat.Schema) error {
	return Validate(s)
}

// Validate is the configuration independent form of Format.Validate.
func Validate(s *goflat.Schema) error {
	if err := goflat.Validate(s); err != nil {
		return err
	}
	rec := s
	if s.Kind == goflat.KindList {
		rec = s.Elem
	}
	if rec.Kind != goflat.KindStruct && rec.Kind != goflat.KindUnion {
		return goflat.NewIssue("/", goflat.CodeUnsupportedShape, "top-level schema must be a struct, a union or a list of them")
	}
	var iss goflat.Issues
	checkWidths(rec, goflat.Root(), &iss)
	if len(iss) > 0 {
		return iss
	}
	return nil
}

func checkWidths(s *goflat.Schema, p goflat.PathRef, iss *goflat.Issues) {
	fail := func(p goflat.PathRef, hint string) {
		*iss = goflat.AppendIssues(*iss, p.Issue(goflat.CodeSchemaError, hint))
	}
	switch s.Kind {
	case goflat.KindPrimitive, goflat.KindEnum:
		if s.Length <= 0 {
			fail(p, "missing fixed length")
		}
	case goflat.KindStruct:
		for _, fd := range s.Fields {
			fp := p.Field(fd.Name)
			if fd.Nullable && !fd.Schema.IsLeaf() {
				fail(fp, "only primitive and enum fields can be nullable")
			}
			checkWidths(fd.Schema, fp, iss)
		}
	case goflat.KindList:
		checkWidths(s.Elem, p.Index(0), iss)
	case goflat.KindUnion:
		fixed := s.Discriminator.Kind == goflat.DiscriminatorFixed
		if fixed && s.Discriminator.Length <= 0 {
			fail(p, "missing discriminator length")
		}
		for _, v := range s.Variants {
			vp := p.Field(v.Tag)
			if fixed && s.Discriminator.Length > 0 && utf8.RuneCountInString(v.Tag) > s.Discriminator.Length {
				fail(vp, "tag "+v.Tag+" is longer than the discriminator length "+strconv.Itoa(s.Discriminator.Length))
			}
			checkWidths(v.Schema, vp, iss)
		}
	}
}

// MinRecordLength returns the number of characters a record of s needs at
// least. Trailing nullable leaves may be missing from a physical record and
// are not counted; lists count as empty and unions as their tag plus their
// shortest variant. s must be a struct or union with a width on every leaf.
func MinRecordLength(s *goflat.Schema) (int, error) {
	if s == nil || (s.Kind != goflat.KindStruct && s.Kind != goflat.KindUnion) {
		return 0, goflat.NewIssue("/", goflat.CodeSchemaError, "minimum length needs a struct or union schema")
	}
	return minLength(s, goflat.Root())
}

func minLength(s *goflat.Schema, p goflat.PathRef) (int, error) {
	switch s.Kind {
	case goflat.KindPrimitive, goflat.KindEnum:
		if s.Length <= 0 {
			return 0, goflat.Issues{p.Issue(goflat.CodeSchemaError, "missing fixed length")}
		}
		return s.Length, nil
	case goflat.KindList:
		return 0, nil
	case goflat.KindUnion:
		tag := 0
		if s.Discriminator.Kind == goflat.DiscriminatorFixed {
			tag = s.Discriminator.Length
		}
		shortest := -1
		for _, v := range s.Variants {
			n, err := minLength(v.Schema, p.Field(v.Tag))
			if err != nil {
				return 0, err
			}
			if shortest < 0 || n < shortest {
				shortest = n
			}
		}
		return tag + max(shortest, 0), nil
	case goflat.KindStruct:
		total, counting := 0, false
		for i := len(s.Fields) - 1; i >= 0; i-- {
			fd := s.Fields[i]
			if !counting && fd.Nullable {
				continue
			}
			n, err := minLength(fd.Schema, p.Field(fd.Name))
			if err != nil {
				return 0, err
			}
			total += n
			counting = true
		}
		return total, nil
	}
	return 0, goflat.Issues{p.Issue(goflat.CodeSchemaError, s.Kind.String()+" has no fixed length")}
}

// fixedWidth returns the number of characters every record of s occupies,
// or -1 when lists or unions with variants of different widths make it vary.
func fixedWidth(s *goflat.Schema) int {
	switch s.Kind {
	case goflat.KindPrimitive, goflat.KindEnum:
		return s.Length
	case goflat.KindStruct:
		total := 0
		for _, f := range s.Fields {
			n := fixedWidth(f.Schema)
			if n < 0 {
				return -1
			}
			total += n
		}
		return total
	case goflat.KindUnion:
		w := -1
		for i, v := range s.Variants {
			n := fixedWidth(v.Schema)
			if n < 0 || (i > 0 && n != w) {
				return -1
			}
			w = n
		}
		if w < 0 {
			return -1
		}
		if s.Discriminator.Kind == goflat.DiscriminatorFixed {
			w += s.Discriminator.Length
		}
		return w
	}
	return -1
}
