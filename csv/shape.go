package csv

import goflat "github.com/reoring/goflat"

// FlatNames returns the header names of s: leaf field names in depth-first
// order. Unions have no static header and fail with unsupported_shape, as do
// nested lists. A top-level list yields the names of its element.
func FlatNames(s *goflat.Schema) ([]string, error) {
	if s != nil && s.Kind == goflat.KindList {
		s = s.Elem
	}
	var (
		names []string
		iss   goflat.Issues
	)
	var walk func(s *goflat.Schema, p goflat.PathRef)
	walk = func(s *goflat.Schema, p goflat.PathRef) {
		for _, f := range s.Fields {
			fp := p.Field(f.Name)
			switch f.Schema.Kind {
			case goflat.KindPrimitive, goflat.KindEnum:
				names = append(names, f.Name)
			case goflat.KindStruct:
				walk(f.Schema, fp)
			case goflat.KindUnion:
				iss = goflat.AppendIssues(iss, fp.Issue(goflat.CodeUnsupportedShape, "unions cannot be combined with a header"))
			default:
				iss = goflat.AppendIssues(iss, fp.Issue(goflat.CodeUnsupportedShape, f.Schema.Kind.String()+" fields are not supported in CSV"))
			}
		}
	}
	switch {
	case s == nil:
		return nil, goflat.NewIssue("/", goflat.CodeSchemaError, "nil schema")
	case s.Kind == goflat.KindUnion:
		return nil, goflat.NewIssue("/", goflat.CodeUnsupportedShape, "unions cannot be combined with a header")
	case s.Kind != goflat.KindStruct:
		return nil, goflat.NewIssue("/", goflat.CodeUnsupportedShape, "records must be structs")
	}
	walk(s, goflat.Root())
	if len(iss) > 0 {
		return nil, iss
	}
	return names, nil
}

// Validate checks that s can be decoded and encoded with f.
func (f *Format) Validate(s *goflat.Schema) error {
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
	if f.cfg.IncludeHeader {
		_, err := FlatNames(rec)
		return err
	}
	var iss goflat.Issues
	var walk func(s *goflat.Schema, p goflat.PathRef)
	walk = func(s *goflat.Schema, p goflat.PathRef) {
		switch s.Kind {
		case goflat.KindStruct:
			for _, fd := range s.Fields {
				walk(fd.Schema, p.Field(fd.Name))
			}
		case goflat.KindUnion:
			for _, v := range s.Variants {
				walk(v.Schema, p.Field(v.Tag))
			}
		case goflat.KindList:
			iss = goflat.AppendIssues(iss, p.Issue(goflat.CodeUnsupportedShape, "nested lists are not supported in CSV"))
		}
	}
	walk(rec, goflat.Root())
	if len(iss) > 0 {
		return iss
	}
	return nil
}

// leafCount returns the number of cells s occupies when it holds no union.
func leafCount(s *goflat.Schema) (int, bool) {
	switch s.Kind {
	case goflat.KindPrimitive, goflat.KindEnum:
		return 1, true
	case goflat.KindStruct:
		n := 0
		for _, f := range s.Fields {
			c, ok := leafCount(f.Schema)
			if !ok {
				return 0, false
			}
			n += c
		}
		return n, true
	}
	return 0, false
}
