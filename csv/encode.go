package csv

import (
	"bufio"
	"io"
	"strings"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/internal/scalar"
)

// Encoder writes one record per Encode call. Output is buffered; Close
// flushes it. An Encoder is not safe for concurrent use.
type Encoder struct {
	f   *Format
	rec *goflat.Schema
	w   *bufio.Writer

	names         []string
	headerWritten bool
	wrote         bool
	closed        bool
	index         int
	cells         []cell
}

type cell struct {
	text string
	null bool
}

// NewEncoder validates s and returns an encoder writing to w. For a list
// schema each Encode call takes one element.
func (f *Format) NewEncoder(w io.Writer, s *goflat.Schema) (*Encoder, error) {
	if err := f.Validate(s); err != nil {
		return nil, err
	}
	rec := s
	if s.Kind == goflat.KindList {
		rec = s.Elem
	}
	e := &Encoder{f: f, rec: rec, w: bufio.NewWriter(w)}
	if f.cfg.IncludeHeader {
		e.names, _ = FlatNames(rec)
	}
	return e, nil
}

// Encode renders v as the next record. Nothing is written when v fails.
func (e *Encoder) Encode(v any) error {
	if e.closed {
		return goflat.NewIssue("/", goflat.CodeInvalidState, "encoder closed")
	}
	e.cells = e.cells[:0]
	var err error
	if e.rec.Kind == goflat.KindUnion {
		err = e.encodeUnion(e.rec, v, goflat.Root(), nil)
	} else {
		err = e.encodeStruct(e.rec, v, goflat.Root(), nil)
	}
	if err != nil {
		return goflat.WithRecord(err, e.index)
	}
	e.index++
	if err := e.writeHeader(); err != nil {
		return err
	}
	if e.wrote {
		if _, err := e.w.WriteString(e.f.cfg.LineSeparator); err != nil {
			return err
		}
	}
	for i, c := range e.cells {
		if i > 0 {
			if _, err := e.w.WriteRune(e.f.cfg.Separator); err != nil {
				return err
			}
		}
		text := e.quote(c, e.f.cfg.AlwaysEmitQuotes)
		if text == "" && len(e.cells) == 1 {
			// a lone empty cell would read back as a blank line
			text = `""`
		}
		if _, err := e.w.WriteString(text); err != nil {
			return err
		}
	}
	e.wrote = true
	return nil
}

// Close writes the header if no record was encoded and flushes the output.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	if err := e.writeHeader(); err != nil {
		return err
	}
	return e.w.Flush()
}

func (e *Encoder) writeHeader() error {
	if !e.f.cfg.IncludeHeader || e.headerWritten {
		return nil
	}
	e.headerWritten = true
	for i, n := range e.names {
		if i > 0 {
			if _, err := e.w.WriteRune(e.f.cfg.Separator); err != nil {
				return err
			}
		}
		if _, err := e.w.WriteString(e.quote(cell{text: n}, false)); err != nil {
			return err
		}
	}
	e.wrote = true
	return nil
}

func (e *Encoder) quote(c cell, always bool) string {
	if c.null {
		return ""
	}
	need := always ||
		strings.ContainsRune(c.text, e.f.cfg.Separator) ||
		strings.Contains(c.text, e.f.cfg.LineSeparator) ||
		strings.ContainsRune(c.text, '"')
	if !need {
		return c.text
	}
	return `"` + strings.ReplaceAll(c.text, `"`, `""`) + `"`
}

func (e *Encoder) encodeStruct(s *goflat.Schema, v any, p goflat.PathRef, parent *frame) error {
	rec, ok := goflat.AsRecord(v)
	if !ok {
		return goflat.Issues{p.Issue(goflat.CodeFormatError, "want a record value")}
	}
	fr := &frame{rec: rec, parent: parent}
	for _, f := range s.Fields {
		if err := e.encodeField(f.Schema, f.Nullable, rec[f.Name], p.Field(f.Name), fr); err != nil {
			return err
		}
	}
	return nil
}

func (e *Encoder) encodeField(s *goflat.Schema, nullable bool, v any, p goflat.PathRef, fr *frame) error {
	if v == nil {
		if !nullable {
			return goflat.Issues{p.Issue(goflat.CodeMissingField, "value is nil")}
		}
		switch s.Kind {
		case goflat.KindStruct:
			n, ok := leafCount(s)
			if !ok {
				return goflat.Issues{p.Issue(goflat.CodeFormatError, "cannot write a null struct that contains a union")}
			}
			for range n {
				e.cells = append(e.cells, cell{null: true})
			}
		case goflat.KindUnion:
			if s.Discriminator.Kind == goflat.DiscriminatorFixed {
				e.cells = append(e.cells, cell{null: true})
			}
		default:
			e.cells = append(e.cells, cell{null: true})
		}
		return nil
	}
	switch s.Kind {
	case goflat.KindStruct:
		return e.encodeStruct(s, v, p, fr)
	case goflat.KindUnion:
		return e.encodeUnion(s, v, p, fr)
	}
	text, err := e.f.formatLeaf(s, v, p)
	if err != nil {
		return err
	}
	e.cells = append(e.cells, cell{text: text})
	return nil
}

func (e *Encoder) encodeUnion(s *goflat.Schema, v any, p goflat.PathRef, fr *frame) error {
	u, ok := goflat.AsUnion(v)
	if !ok {
		return goflat.Issues{p.Issue(goflat.CodeFormatError, "want a union value")}
	}
	vr, ok := s.Variant(u.Tag)
	if !ok {
		return goflat.Issues{p.Issue(goflat.CodeFormatError, "unknown variant "+u.Tag)}
	}
	if s.Discriminator.Kind == goflat.DiscriminatorProperty {
		if got, _ := fr.lookup(s.Discriminator.Property); got != u.Tag {
			return goflat.Issues{p.Issue(goflat.CodeFormatError, "variant "+u.Tag+" does not match field "+s.Discriminator.Property)}
		}
	} else {
		e.cells = append(e.cells, cell{text: u.Tag})
	}
	return e.encodeStruct(vr.Schema, u.Record, p, fr)
}

func (f *Format) formatLeaf(s *goflat.Schema, v any, p goflat.PathRef) (string, error) {
	if s.Kind == goflat.KindEnum {
		text, err := scalar.FormatEnum(s.Values, v)
		if err != nil {
			return "", goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
		}
		return text, nil
	}
	text, err := scalar.Format(s.Type, v)
	if err != nil {
		return "", goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
	}
	if s.Type.IsFloat() && f.cfg.NumberFormat == NumberComma {
		text = strings.Replace(text, ".", ",", 1)
	}
	return text, nil
}
