package flf

import (
	"bufio"
	"io"
	"iter"
	"strconv"
	"strings"
	"unicode/utf8"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/ebcdic"
	"github.com/reoring/goflat/internal/scalar"
)

// Encoder writes one record per Encode call. Output is buffered; Close
// flushes it. An Encoder is not safe for concurrent use.
type Encoder struct {
	f   *Format
	rec *goflat.Schema
	w   *bufio.Writer
	b   strings.Builder

	wrote  bool
	closed bool
	index  int
}

// NewEncoder validates s and returns an encoder writing to w. For a list
// schema each Encode call takes one element.
func (f *Format) NewEncoder(w io.Writer, s *goflat.Schema) (*Encoder, error) {
	if err := f.Validate(s); err != nil {
		return nil, err
	}
	return &Encoder{f: f, rec: record(s), w: bufio.NewWriter(w)}, nil
}

// Encode renders v as the next record. Nothing is written when v fails.
func (e *Encoder) Encode(v any) error {
	if e.closed {
		return goflat.NewIssue("/", goflat.CodeInvalidState, "encoder closed")
	}
	e.b.Reset()
	if err := e.encodeValue(e.rec, false, v, goflat.Root(), nil); err != nil {
		return goflat.WithRecord(err, e.index)
	}
	e.index++
	if e.wrote {
		if _, err := e.w.WriteString(e.f.cfg.LineSeparator); err != nil {
			return err
		}
	}
	e.wrote = true
	_, err := e.w.WriteString(e.b.String())
	return err
}

// EncodeSeq encodes every value of seq and stops at the first error.
func (e *Encoder) EncodeSeq(seq iter.Seq[any]) error {
	for v := range seq {
		if err := e.Encode(v); err != nil {
			return err
		}
	}
	return nil
}

// Close flushes the output. Later Encode calls fail with invalid_state.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	return e.w.Flush()
}

func (e *Encoder) encodeValue(s *goflat.Schema, nullable bool, v any, p goflat.PathRef, fr *frame) error {
	if v == nil && !nullable {
		return goflat.Issues{p.Issue(goflat.CodeMissingField, "value is nil")}
	}
	switch s.Kind {
	case goflat.KindStruct:
		return e.encodeStruct(s, v, p, fr)
	case goflat.KindUnion:
		return e.encodeUnion(s, v, p, fr)
	case goflat.KindList:
		return e.encodeList(s, v, p, fr)
	}
	if v == nil {
		e.b.WriteString(strings.Repeat(" ", s.Length))
		return nil
	}
	text, err := e.f.formatLeaf(s, v, p)
	if err != nil {
		return err
	}
	e.b.WriteString(text)
	return nil
}

func (e *Encoder) encodeStruct(s *goflat.Schema, v any, p goflat.PathRef, parent *frame) error {
	rec, ok := goflat.AsRecord(v)
	if !ok {
		return goflat.Issues{p.Issue(goflat.CodeFormatError, "want a record value")}
	}
	fr := &frame{rec: rec, parent: parent}
	for _, f := range s.Fields {
		if err := e.encodeValue(f.Schema, f.Nullable, rec[f.Name], p.Field(f.Name), fr); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeList(s *goflat.Schema, v any, p goflat.PathRef, fr *frame) error {
	items, ok := goflat.AsList(v)
	if !ok {
		return goflat.Issues{p.Issue(goflat.CodeFormatError, "want a list value")}
	}
	n, err := listLength(s, fr, p)
	if err != nil {
		return err
	}
	if n != len(items) {
		return goflat.Issues{p.Issue(goflat.CodeFormatError, "list has "+strconv.Itoa(len(items))+" elements but "+s.LengthRef+" is "+strconv.Itoa(n))}
	}
	for i, it := range items {
		if err := e.encodeValue(s.Elem, false, it, p.Index(i), fr); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeUnion(s *goflat.Schema, v any, p goflat.PathRef, fr *frame) error {
	u, ok := goflat.AsUnion(v)
	if !ok {
		return goflat.Issues{p.Issue(goflat.CodeFormatError, "want a union value")}
	}
	vr, ok := s.Variant(u.Tag)
	if !ok {
		return goflat.Issues{p.Issue(goflat.CodeFormatError, "unknown variant "+strconv.Quote(u.Tag))}
	}
	if s.Discriminator.Kind == goflat.DiscriminatorProperty {
		got, _ := fr.lookup(s.Discriminator.Property)
		if tag, _ := got.(string); strings.TrimSpace(tag) != u.Tag {
			return goflat.Issues{p.Issue(goflat.CodeFormatError, "variant "+u.Tag+" does not match field "+s.Discriminator.Property)}
		}
	} else {
		e.b.WriteString(padRight(u.Tag, s.Discriminator.Length))
	}
	return e.encodeStruct(vr.Schema, u.Record, p, fr)
}

// formatLeaf renders v padded to the width of s.
func (f *Format) formatLeaf(s *goflat.Schema, v any, p goflat.PathRef) (string, error) {
	bad := func(err error) (string, error) {
		return "", goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
	}
	var (
		text    string
		numeric bool
	)
	switch {
	case s.Kind == goflat.KindEnum:
		t, err := scalar.FormatEnum(s.Values, v)
		if err != nil {
			return bad(err)
		}
		text = t
	case s.Ebcdic == goflat.EbcdicZoned:
		c, err := scalar.Coerce(s.Type, v)
		if err != nil {
			return bad(err)
		}
		z := ebcdic.EncodeZoned(c.(int64))
		if utf8.RuneCountInString(z) > s.Length {
			return "", tooLong(p, z, s.Length)
		}
		return strings.Repeat("0", s.Length-len(z)) + z, nil
	default:
		t, err := scalar.Format(s.Type, v)
		if err != nil {
			return bad(err)
		}
		text, numeric = t, s.Type.IsNumeric()
	}
	n := utf8.RuneCountInString(text)
	if n > s.Length {
		return "", tooLong(p, text, s.Length)
	}
	if numeric && f.cfg.FillLeadingZeros {
		return zeroFill(text, s.Length), nil
	}
	return text + strings.Repeat(" ", s.Length-n), nil
}

func tooLong(p goflat.PathRef, text string, width int) error {
	return goflat.Issues{p.Issue(goflat.CodeLengthViolation, strconv.Quote(text)+" is longer than "+strconv.Itoa(width))}
}

// zeroFill left-pads a number with zeros, keeping a leading minus sign in
// front: -1 at width 4 is "-001".
func zeroFill(text string, width int) string {
	pad := strings.Repeat("0", width-len(text))
	if strings.HasPrefix(text, "-") {
		return "-" + pad + text[1:]
	}
	return pad + text
}

func padRight(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}
