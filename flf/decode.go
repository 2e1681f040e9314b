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
	"github.com/reoring/goflat/internal/textio"
)

// Decoder reads records one at a time. It is not safe for concurrent use.
type Decoder struct {
	f   *Format
	rec *goflat.Schema

	rows   RowSource     // line mode
	br     *bufio.Reader // undelimited mode
	minLen int
	width  int // fixed record width in undelimited mode, -1 when it varies

	index  int
	err    error // sticky error
	ranged bool
}

// NewDecoder validates s and reads records from r. With a line separator
// every line is a record; without one, records are cut from the stream by
// their schema and a tail shorter than MinRecordLength ends the input.
// An undelimited record that fails is skipped when the schema has a fixed
// width; otherwise the error ends the stream.
func (f *Format) NewDecoder(s *goflat.Schema, r io.Reader) (*Decoder, error) {
	if err := f.Validate(s); err != nil {
		return nil, err
	}
	d := &Decoder{f: f, rec: record(s)}
	if !f.Undelimited() {
		d.rows = scannerRows{sc: textio.NewLineScanner(r, f.cfg.LineSeparator)}
		return d, nil
	}
	n, err := MinRecordLength(d.rec)
	if err != nil {
		return nil, err
	}
	d.minLen = n
	d.width = fixedWidth(d.rec)
	d.br = bufio.NewReaderSize(r, max(4096, n*utf8.UTFMax))
	return d, nil
}

// NewRowDecoder validates s and decodes one record per row of src.
func (f *Format) NewRowDecoder(src RowSource, s *goflat.Schema) (*Decoder, error) {
	if err := f.Validate(s); err != nil {
		return nil, err
	}
	return &Decoder{f: f, rec: record(s), rows: src}, nil
}

func record(s *goflat.Schema) *goflat.Schema {
	if s.Kind == goflat.KindList {
		return s.Elem
	}
	return s
}

// Decode returns the next record, or io.EOF when the input is exhausted. A
// data error aborts only the current record.
func (d *Decoder) Decode() (any, error) {
	if d.err != nil {
		return nil, d.err
	}
	if d.br != nil {
		return d.decodeStream()
	}
	for {
		line, err := d.rows.NextRow()
		if err == io.EOF {
			return nil, io.EOF
		}
		if err != nil {
			d.err = goflat.WithRecord(err, d.index)
			return nil, d.err
		}
		if line == "" {
			continue
		}
		idx := d.index
		d.index++
		in := &rowText{runes: []rune(line)}
		v, err := d.decodeRecord(in)
		if err == nil {
			if rest := in.rest(); strings.TrimSpace(rest) != "" {
				err = goflat.NewIssue("/", goflat.CodeFormatError, "unexpected trailing characters "+strconv.Quote(rest))
			}
		}
		if err != nil {
			return nil, goflat.WithRecord(err, idx)
		}
		return v, nil
	}
}

func (d *Decoder) decodeStream() (any, error) {
	need := d.minLen
	if d.index == 0 {
		need = 1
	}
	ok, err := available(d.br, need)
	if err != nil {
		d.err = goflat.WithRecord(err, d.index)
		return nil, d.err
	}
	if !ok {
		return nil, io.EOF
	}
	idx := d.index
	d.index++
	in := &streamText{br: d.br}
	v, err := d.decodeRecord(in)
	if err != nil {
		_, data := goflat.AsIssues(err)
		err = goflat.WithRecord(err, idx)
		if !data || d.width < 0 {
			d.err = err
			return nil, err
		}
		if _, serr := in.take(d.width - in.read); serr != nil {
			d.err = goflat.WithRecord(serr, idx)
		}
		return nil, err
	}
	return v, nil
}

// Records iterates over the remaining records. The sequence can be ranged
// over once; a second range yields a single invalid_state error.
func (d *Decoder) Records() iter.Seq2[any, error] {
	return func(yield func(any, error) bool) {
		if d.ranged {
			yield(nil, goflat.NewIssue("/", goflat.CodeInvalidState, "record sequence already consumed"))
			return
		}
		d.ranged = true
		for {
			v, err := d.Decode()
			if err == io.EOF {
				return
			}
			if !yield(v, err) || d.err != nil {
				return
			}
		}
	}
}

// Close releases a row source that holds resources.
func (d *Decoder) Close() error {
	if c, ok := d.rows.(io.Closer); ok {
		return c.Close()
	}
	return nil
}

// frame is the chain of records under construction. Property discriminators
// and list lengths are resolved against it.
type frame struct {
	rec    goflat.Record
	parent *frame
}

func (fr *frame) lookup(name string) (any, bool) {
	for c := fr; c != nil; c = c.parent {
		if v, ok := c.rec[name]; ok {
			return v, true
		}
	}
	return nil, false
}

func (d *Decoder) decodeRecord(in text) (any, error) {
	return d.decodeValue(d.rec, false, in, goflat.Root(), nil)
}

func (d *Decoder) decodeValue(s *goflat.Schema, nullable bool, in text, p goflat.PathRef, fr *frame) (any, error) {
	switch s.Kind {
	case goflat.KindStruct:
		return d.decodeStruct(s, in, p, fr)
	case goflat.KindUnion:
		return d.decodeUnion(s, in, p, fr)
	case goflat.KindList:
		return d.decodeList(s, in, p, fr)
	}
	raw, err := in.take(s.Length)
	if err != nil {
		return nil, err
	}
	return d.decodeLeaf(s, nullable, raw, p)
}

func (d *Decoder) decodeStruct(s *goflat.Schema, in text, p goflat.PathRef, parent *frame) (goflat.Record, error) {
	rec := make(goflat.Record, len(s.Fields))
	fr := &frame{rec: rec, parent: parent}
	for _, f := range s.Fields {
		v, err := d.decodeValue(f.Schema, f.Nullable, in, p.Field(f.Name), fr)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func (d *Decoder) decodeList(s *goflat.Schema, in text, p goflat.PathRef, fr *frame) ([]any, error) {
	n, err := listLength(s, fr, p)
	if err != nil {
		return nil, err
	}
	tooLong := goflat.Issues{p.Issue(goflat.CodeFormatError, "length "+strconv.Itoa(n)+" exceeds the remaining record")}
	m, err := minLength(s.Elem, p)
	if err != nil {
		return nil, err
	}
	if rt, ok := in.(*rowText); ok && m > 0 && n > rt.remaining()/m {
		return nil, tooLong
	}
	out := make([]any, 0, min(n, 64))
	for i := range n {
		// elements that may be empty would otherwise repeat without bound
		if m == 0 && in.exhausted() {
			return nil, tooLong
		}
		v, err := d.decodeValue(s.Elem, false, in, p.Index(i), fr)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// listLength reads the element count from the sibling field named by the
// list.
func listLength(s *goflat.Schema, fr *frame, p goflat.PathRef) (int, error) {
	v, _ := fr.lookup(s.LengthRef)
	n, err := scalar.Coerce(goflat.TypeInt64, v)
	if err != nil {
		return 0, goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, "length field "+s.LengthRef+": "+err.Error(), err)}
	}
	count := n.(int64)
	if count < 0 {
		return 0, goflat.Issues{p.Issue(goflat.CodeFormatError, "negative length "+strconv.FormatInt(count, 10))}
	}
	return int(count), nil
}

func (d *Decoder) decodeUnion(s *goflat.Schema, in text, p goflat.PathRef, fr *frame) (any, error) {
	var tag string
	if s.Discriminator.Kind == goflat.DiscriminatorProperty {
		v, _ := fr.lookup(s.Discriminator.Property)
		if v == nil {
			return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "discriminator "+s.Discriminator.Property+" is null")}
		}
		t, _ := v.(string)
		tag = strings.TrimSpace(t)
	} else {
		raw, err := in.take(s.Discriminator.Length)
		if err != nil {
			return nil, err
		}
		tag = strings.TrimSpace(raw)
		if tag == "" {
			return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "variant tag absent")}
		}
	}
	vr, ok := s.Variant(tag)
	if !ok {
		return nil, goflat.Issues{p.Issue(goflat.CodeFormatError, "unknown variant "+strconv.Quote(tag))}
	}
	rec, err := d.decodeStruct(vr.Schema, in, p, fr)
	if err != nil {
		return nil, err
	}
	return goflat.Union{Tag: tag, Record: rec}, nil
}

func (d *Decoder) decodeLeaf(s *goflat.Schema, nullable bool, raw string, p goflat.PathRef) (any, error) {
	trimmed := strings.TrimSpace(raw)
	switch {
	case raw == "" && !nullable:
		return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "record ends before the field")}
	case trimmed == "" && nullable:
		return nil, nil
	}
	bad := func(err error) (any, error) {
		return nil, goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
	}
	if s.Kind == goflat.KindEnum {
		v, err := scalar.ParseEnum(s.Values, trimmed)
		if err != nil {
			return bad(err)
		}
		return v, nil
	}
	switch {
	case s.Type == goflat.TypeString:
		if d.f.cfg.Trim {
			return trimmed, nil
		}
		return raw, nil
	case s.Type == goflat.TypeChar:
		r, size := utf8.DecodeRuneInString(raw)
		if strings.TrimSpace(raw[size:]) != "" {
			return nil, goflat.Issues{p.Issue(goflat.CodeFormatError, strconv.Quote(raw)+" is not a single character")}
		}
		return r, nil
	case trimmed == "":
		return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "blank value")}
	case s.Ebcdic == goflat.EbcdicZoned:
		n, ok := ebcdic.DecodeZoned(trimmed)
		if !ok {
			return nil, goflat.Issues{p.Issue(goflat.CodeFormatError, strconv.Quote(trimmed)+" is not a zoned decimal")}
		}
		v, err := scalar.Coerce(s.Type, n)
		if err != nil {
			return bad(err)
		}
		return v, nil
	}
	v, err := scalar.Parse(s.Type, trimmed)
	if err != nil {
		return bad(err)
	}
	return v, nil
}
