// Package jsonbridge converts codec values to and from JSON.
//
// Structs become objects with their fields in schema order, lists become
// arrays and unions become objects whose "type" member holds the variant tag.
// Numbers are checked against their declared type in both directions.
package jsonbridge

import (
	"bytes"
	"io"
	"maps"
	"math"
	"slices"
	"strconv"

	j "github.com/goccy/go-json"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/internal/scalar"
)

// TypeKey is the member that carries a union's variant tag.
const TypeKey = "type"

// Marshal renders v as JSON.
func Marshal(s *goflat.Schema, v any) ([]byte, error) {
	b := &bytes.Buffer{}
	if err := write(b, s, false, v, goflat.Root()); err != nil {
		return nil, err
	}
	return b.Bytes(), nil
}

// Unmarshal parses data into a value of s.
func Unmarshal(s *goflat.Schema, data []byte) (any, error) {
	dec := j.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var raw any
	if err := dec.Decode(&raw); err != nil {
		return nil, syntaxIssue(err)
	}
	if dec.More() {
		return nil, goflat.NewIssue("/", goflat.CodeParseError, "trailing data after JSON value")
	}
	return convert(s, false, raw, goflat.Root())
}

// Bind stores v in dst, a pointer to a Go value whose JSON form matches s.
func Bind(s *goflat.Schema, v any, dst any) error {
	data, err := Marshal(s, v)
	if err != nil {
		return err
	}
	return j.Unmarshal(data, dst)
}

// Capture converts a Go value into a value of s through its JSON form.
func Capture(s *goflat.Schema, src any) (any, error) {
	data, err := j.Marshal(src)
	if err != nil {
		return nil, err
	}
	return Unmarshal(s, data)
}

// Reader reads a stream of JSON values, such as JSON lines.
type Reader struct {
	s     *goflat.Schema
	dec   *j.Decoder
	index int
}

// NewReader returns a Reader converting each value of r with s.
func NewReader(r io.Reader, s *goflat.Schema) *Reader {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &Reader{s: s, dec: dec}
}

// Read returns the next value, or io.EOF at the end of the stream. A syntax
// error ends the stream; a value that does not fit s does not.
func (r *Reader) Read() (any, error) {
	var raw any
	if err := r.dec.Decode(&raw); err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		return nil, goflat.WithRecord(syntaxIssue(err), r.index)
	}
	idx := r.index
	r.index++
	v, err := convert(r.s, false, raw, goflat.Root())
	if err != nil {
		return nil, goflat.WithRecord(err, idx)
	}
	return v, nil
}

func syntaxIssue(err error) error {
	return goflat.Issues{goflat.IssueWithCause(goflat.Root(), goflat.CodeParseError, err.Error(), err)}
}

func write(b *bytes.Buffer, s *goflat.Schema, nullable bool, v any, p goflat.PathRef) error {
	if v == nil {
		if !nullable {
			return goflat.Issues{p.Issue(goflat.CodeMissingField, "value is nil")}
		}
		b.WriteString("null")
		return nil
	}
	switch s.Kind {
	case goflat.KindStruct:
		rec, ok := goflat.AsRecord(v)
		if !ok {
			return goflat.Issues{p.Issue(goflat.CodeFormatError, "want a record value")}
		}
		b.WriteByte('{')
		if err := writeFields(b, s, rec, p, false); err != nil {
			return err
		}
		b.WriteByte('}')
	case goflat.KindUnion:
		u, ok := goflat.AsUnion(v)
		if !ok {
			return goflat.Issues{p.Issue(goflat.CodeFormatError, "want a union value")}
		}
		vr, ok := s.Variant(u.Tag)
		if !ok {
			return goflat.Issues{p.Issue(goflat.CodeFormatError, "unknown variant "+strconv.Quote(u.Tag))}
		}
		if vr.Schema.FieldIndex(TypeKey) >= 0 {
			return goflat.Issues{p.Issue(goflat.CodeUnsupportedShape, "variant "+u.Tag+" has a field named "+TypeKey)}
		}
		b.WriteString(`{"` + TypeKey + `":`)
		writeString(b, u.Tag)
		if err := writeFields(b, vr.Schema, u.Record, p, true); err != nil {
			return err
		}
		b.WriteByte('}')
	case goflat.KindList:
		items, ok := goflat.AsList(v)
		if !ok {
			return goflat.Issues{p.Issue(goflat.CodeFormatError, "want a list value")}
		}
		b.WriteByte('[')
		for i, it := range items {
			if i > 0 {
				b.WriteByte(',')
			}
			if err := write(b, s.Elem, false, it, p.Index(i)); err != nil {
				return err
			}
		}
		b.WriteByte(']')
	case goflat.KindEnum:
		text, err := scalar.FormatEnum(s.Values, v)
		if err != nil {
			return goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
		}
		writeString(b, text)
	case goflat.KindPrimitive:
		return writePrimitive(b, s.Type, v, p)
	default:
		return goflat.Issues{p.Issue(goflat.CodeUnsupportedShape, s.Kind.String()+" values cannot be rendered")}
	}
	return nil
}

func writeFields(b *bytes.Buffer, s *goflat.Schema, rec goflat.Record, p goflat.PathRef, comma bool) error {
	for _, f := range s.Fields {
		if comma {
			b.WriteByte(',')
		}
		comma = true
		writeString(b, f.Name)
		b.WriteByte(':')
		if err := write(b, f.Schema, f.Nullable, rec[f.Name], p.Field(f.Name)); err != nil {
			return err
		}
	}
	return nil
}

func writePrimitive(b *bytes.Buffer, t goflat.PrimitiveType, v any, p goflat.PathRef) error {
	c, err := scalar.Coerce(t, v)
	if err != nil {
		return goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
	}
	switch x := c.(type) {
	case string:
		writeString(b, x)
		return nil
	case rune:
		writeString(b, string(x))
		return nil
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return goflat.Issues{p.Issue(goflat.CodeFormatError, "JSON has no representation for "+strconv.FormatFloat(x, 'g', -1, 64))}
		}
	}
	text, err := scalar.Format(t, c)
	if err != nil {
		return goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
	}
	b.WriteString(text)
	return nil
}

func writeString(b *bytes.Buffer, s string) {
	out, _ := j.MarshalNoEscape(s)
	b.Write(out)
}

func convert(s *goflat.Schema, nullable bool, raw any, p goflat.PathRef) (any, error) {
	if raw == nil {
		if nullable {
			return nil, nil
		}
		return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "value is null")}
	}
	mismatch := func(want string) (any, error) {
		return nil, goflat.Issues{p.Issue(goflat.CodeFormatError, "want "+want)}
	}
	switch s.Kind {
	case goflat.KindStruct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return mismatch("an object")
		}
		return convertFields(s, obj, p, "")
	case goflat.KindUnion:
		obj, ok := raw.(map[string]any)
		if !ok {
			return mismatch("an object")
		}
		tag, ok := obj[TypeKey].(string)
		if !ok {
			return nil, goflat.Issues{p.Field(TypeKey).Issue(goflat.CodeMissingField, "variant tag absent")}
		}
		vr, ok := s.Variant(tag)
		if !ok {
			return nil, goflat.Issues{p.Field(TypeKey).Issue(goflat.CodeFormatError, "unknown variant "+strconv.Quote(tag))}
		}
		rec, err := convertFields(vr.Schema, obj, p, TypeKey)
		if err != nil {
			return nil, err
		}
		return goflat.Union{Tag: tag, Record: rec}, nil
	case goflat.KindList:
		arr, ok := raw.([]any)
		if !ok {
			return mismatch("an array")
		}
		out := make([]any, 0, len(arr))
		for i, it := range arr {
			v, err := convert(s.Elem, false, it, p.Index(i))
			if err != nil {
				return nil, err
			}
			out = append(out, v)
		}
		return out, nil
	case goflat.KindEnum:
		str, ok := raw.(string)
		if !ok {
			return mismatch("a string")
		}
		v, err := scalar.ParseEnum(s.Values, str)
		if err != nil {
			return nil, goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
		}
		return v, nil
	case goflat.KindPrimitive:
		var text string
		switch x := raw.(type) {
		case string:
			if s.Type.IsNumeric() || s.Type == goflat.TypeBool {
				return mismatch("a " + s.Type.String())
			}
			text = x
		case bool:
			if s.Type != goflat.TypeBool {
				return mismatch("a " + s.Type.String())
			}
			return x, nil
		case j.Number:
			if !s.Type.IsNumeric() {
				return mismatch("a " + s.Type.String())
			}
			text = x.String()
		default:
			return mismatch("a " + s.Type.String())
		}
		v, err := scalar.Parse(s.Type, text)
		if err != nil {
			return nil, goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
		}
		return v, nil
	}
	return nil, goflat.Issues{p.Issue(goflat.CodeUnsupportedShape, s.Kind.String()+" values cannot be parsed")}
}

func convertFields(s *goflat.Schema, obj map[string]any, p goflat.PathRef, skip string) (goflat.Record, error) {
	var iss goflat.Issues
	for _, k := range slices.Sorted(maps.Keys(obj)) {
		if k != skip && s.FieldIndex(k) < 0 {
			iss = goflat.AppendIssues(iss, p.Field(k).Issue(goflat.CodeFormatError, "unknown field "+k))
		}
	}
	rec := make(goflat.Record, len(s.Fields))
	for _, f := range s.Fields {
		v, err := convert(f.Schema, f.Nullable, obj[f.Name], p.Field(f.Name))
		if err != nil {
			if more, ok := goflat.AsIssues(err); ok {
				iss = goflat.AppendIssues(iss, more...)
				continue
			}
			return nil, err
		}
		rec[f.Name] = v
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return rec, nil
}
