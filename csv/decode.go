package csv

import (
	"io"
	"iter"
	"strings"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/internal/cursor"
	"github.com/reoring/goflat/internal/scalar"
)

// Decoder reads records one at a time. It is not safe for concurrent use.
type Decoder struct {
	f    *Format
	s    *goflat.Schema
	rec  *goflat.Schema
	tz   *Tokenizer
	toks *cursor.Peekable[Token]

	names   []string
	header  []string
	mapping []int // leaf ordinal -> column; nil means positional

	started bool
	err     error // sticky tokenizer error
	index   int
	ranged  bool
}

// NewDecoder validates s and prepares to read records from r. Nothing is read
// until the first call to Header, Decode or Records.
func (f *Format) NewDecoder(s *goflat.Schema, r io.Reader) (*Decoder, error) {
	if err := f.Validate(s); err != nil {
		return nil, err
	}
	rec := s
	if s.Kind == goflat.KindList {
		rec = s.Elem
	}
	tz := NewTokenizer(r, f.cfg.Separator, f.cfg.LineSeparator)
	return &Decoder{f: f, s: s, rec: rec, tz: tz, toks: cursor.New(tz.Next)}, nil
}

// Header returns the header row, reading it when needed. Without a
// configured header it returns nil.
func (d *Decoder) Header() ([]string, error) {
	if err := d.start(); err != nil {
		return nil, err
	}
	return d.header, nil
}

func (d *Decoder) start() error {
	if d.started {
		return d.err
	}
	d.started = true
	if !d.f.cfg.IncludeHeader {
		return nil
	}
	d.names, _ = FlatNames(d.rec)
	cells, ok, err := d.readRecord()
	if err != nil {
		d.err = err
		return err
	}
	if !ok {
		return nil
	}
	d.header = make([]string, len(cells))
	for i, c := range cells {
		d.header[i] = c.Text
	}
	d.mapping = columnMapping(d.names, d.header)
	return nil
}

// columnMapping returns nil when header starts with names in order; otherwise
// each leaf is matched with the first unclaimed column of the same name.
// Columns the schema does not know are ignored.
func columnMapping(names, header []string) []int {
	if len(header) >= len(names) {
		seq := true
		for i, n := range names {
			if header[i] != n {
				seq = false
				break
			}
		}
		if seq {
			return nil
		}
	}
	claimed := make([]bool, len(header))
	m := make([]int, len(names))
	for k, n := range names {
		m[k] = -1
		for j, h := range header {
			if !claimed[j] && h == n {
				claimed[j] = true
				m[k] = j
				break
			}
		}
	}
	return m
}

// readRecord collects the fields up to the next record end. It reports false
// when the input holds no further tokens.
func (d *Decoder) readRecord() ([]Token, bool, error) {
	if _, ok := d.toks.Peek(); !ok {
		return nil, false, d.tz.Err()
	}
	var cells []Token
	for {
		tok, ok := d.toks.Next()
		if !ok {
			if err := d.tz.Err(); err != nil {
				return nil, false, err
			}
			return cells, true, nil
		}
		if tok.Kind == TokenRecordEnd {
			return cells, true, nil
		}
		cells = append(cells, tok)
	}
}

// Decode returns the next record, or io.EOF when the input is exhausted. A
// data error aborts only the current record; the next call continues with the
// following one.
func (d *Decoder) Decode() (any, error) {
	if err := d.start(); err != nil {
		return nil, err
	}
	for {
		cells, ok, err := d.readRecord()
		if err != nil {
			d.err = goflat.WithRecord(err, d.index)
			return nil, d.err
		}
		if !ok {
			return nil, io.EOF
		}
		if len(cells) == 1 && cells[0].Text == "" && !cells[0].Quoted {
			continue
		}
		idx := d.index
		d.index++
		r := &row{cells: cells, mapping: d.mapping}
		v, err := d.decodeRecord(r)
		if err != nil {
			return nil, goflat.WithRecord(err, idx)
		}
		return v, nil
	}
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

type row struct {
	cells   []Token
	mapping []int
	pos     int
}

func (r *row) next() (Token, bool) {
	i := r.pos
	r.pos++
	if r.mapping != nil {
		if i >= len(r.mapping) || r.mapping[i] < 0 {
			return Token{}, false
		}
		i = r.mapping[i]
	}
	if i >= len(r.cells) {
		return Token{}, false
	}
	return r.cells[i], true
}

// blank reports whether the next n cells are all empty or absent.
func (r *row) blank(n int) bool {
	save := r.pos
	defer func() { r.pos = save }()
	for range n {
		if tok, ok := r.next(); ok && tok.Text != "" {
			return false
		}
	}
	return true
}

// frame is the chain of records under construction, consulted by property
// discriminators.
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

func (d *Decoder) decodeRecord(r *row) (any, error) {
	if d.rec.Kind == goflat.KindUnion {
		return d.decodeUnion(d.rec, false, r, goflat.Root(), nil)
	}
	return d.decodeStruct(d.rec, r, goflat.Root(), nil)
}

func (d *Decoder) decodeStruct(s *goflat.Schema, r *row, p goflat.PathRef, parent *frame) (goflat.Record, error) {
	rec := make(goflat.Record, len(s.Fields))
	fr := &frame{rec: rec, parent: parent}
	for _, f := range s.Fields {
		v, err := d.decodeField(f.Schema, f.Nullable, r, p.Field(f.Name), fr)
		if err != nil {
			return nil, err
		}
		rec[f.Name] = v
	}
	return rec, nil
}

func (d *Decoder) decodeField(s *goflat.Schema, nullable bool, r *row, p goflat.PathRef, fr *frame) (any, error) {
	switch s.Kind {
	case goflat.KindStruct:
		if nullable {
			if n, ok := leafCount(s); ok && r.blank(n) {
				r.pos += n
				return nil, nil
			}
		}
		return d.decodeStruct(s, r, p, fr)
	case goflat.KindUnion:
		return d.decodeUnion(s, nullable, r, p, fr)
	}
	tok, present := r.next()
	switch {
	case !present:
		if nullable && !d.f.cfg.StrictTrailingFields {
			return nil, nil
		}
		return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "column absent")}
	case tok.Text == "":
		if nullable {
			return nil, nil
		}
		if s.Kind == goflat.KindPrimitive && s.Type == goflat.TypeString {
			return "", nil
		}
		return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "empty value")}
	}
	return d.f.parseLeaf(s, tok.Text, p)
}

func (d *Decoder) decodeUnion(s *goflat.Schema, nullable bool, r *row, p goflat.PathRef, fr *frame) (any, error) {
	var tag string
	switch s.Discriminator.Kind {
	case goflat.DiscriminatorProperty:
		v, _ := fr.lookup(s.Discriminator.Property)
		if v == nil {
			if nullable {
				return nil, nil
			}
			return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "discriminator "+s.Discriminator.Property+" is null")}
		}
		tag, _ = v.(string)
	default:
		tok, present := r.next()
		if !present || tok.Text == "" {
			if nullable {
				return nil, nil
			}
			return nil, goflat.Issues{p.Issue(goflat.CodeMissingField, "variant tag absent")}
		}
		tag = tok.Text
	}
	vr, ok := s.Variant(tag)
	if !ok {
		return nil, goflat.Issues{p.Issue(goflat.CodeFormatError, "unknown variant "+tag)}
	}
	rec, err := d.decodeStruct(vr.Schema, r, p, fr)
	if err != nil {
		return nil, err
	}
	return goflat.Union{Tag: tag, Record: rec}, nil
}

func (f *Format) parseLeaf(s *goflat.Schema, text string, p goflat.PathRef) (any, error) {
	if s.Kind == goflat.KindEnum {
		v, err := scalar.ParseEnum(s.Values, text)
		if err != nil {
			return nil, goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
		}
		return v, nil
	}
	if s.Type.IsFloat() && f.cfg.NumberFormat == NumberComma {
		text = strings.Replace(text, ",", ".", 1)
	}
	v, err := scalar.Parse(s.Type, text)
	if err != nil {
		return nil, goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
	}
	return v, nil
}
