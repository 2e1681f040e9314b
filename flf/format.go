// Package flf encodes and decodes schema-described records as fixed-length
// text: every leaf occupies a declared number of characters and records are
// separated by a line separator, or follow each other without one.
package flf

import (
	"io"
	"strings"

	goflat "github.com/reoring/goflat"
)

// Config controls the fixed-length dialect. Start from DefaultConfig.
type Config struct {
	// LineSeparator ends every record. Empty means records follow each other
	// in one continuous stream and are delimited by their schema alone.
	LineSeparator string
	// FillLeadingZeros left-pads numbers with zeros (after the sign) instead
	// of right-padding them with spaces.
	FillLeadingZeros bool
	// Trim strips padding from decoded strings. Numbers, booleans and enum
	// names are always trimmed; chars never are.
	Trim bool
}

// DefaultConfig returns newline separated records with zero-filled numbers
// and trimmed strings.
func DefaultConfig() Config {
	return Config{LineSeparator: "\n", FillLeadingZeros: true, Trim: true}
}

// Format is an immutable fixed-length codec configuration, safe for
// concurrent use.
type Format struct {
	cfg Config
}

// New returns a Format for cfg. Every Config is valid today; the error keeps
// the constructor in line with csv.New.
func New(cfg Config) (*Format, error) {
	return &Format{cfg: cfg}, nil
}

// Default is the Format built from DefaultConfig.
var Default = &Format{cfg: DefaultConfig()}

// Config returns the configuration of f.
func (f *Format) Config() Config { return f.cfg }

// Undelimited reports whether records are written without a separator.
func (f *Format) Undelimited() bool { return f.cfg.LineSeparator == "" }

// DecodeString decodes text. A struct or union schema yields the first record;
// a top-level list yields every record.
func (f *Format) DecodeString(s *goflat.Schema, text string) (any, error) {
	return f.Decode(s, strings.NewReader(text))
}

// Decode is DecodeString over a reader.
func (f *Format) Decode(s *goflat.Schema, r io.Reader) (any, error) {
	d, err := f.NewDecoder(s, r)
	if err != nil {
		return nil, err
	}
	defer d.Close()
	if s.Kind != goflat.KindList {
		v, err := d.Decode()
		if err == io.EOF {
			return nil, goflat.NewIssue("/", goflat.CodeMissingField, "no data record")
		}
		return v, err
	}
	out := []any{}
	for v, err := range d.Records() {
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

// EncodeToString renders v. A top-level list emits one record per element.
func (f *Format) EncodeToString(s *goflat.Schema, v any) (string, error) {
	b := &strings.Builder{}
	if err := f.Encode(b, s, v); err != nil {
		return "", err
	}
	return b.String(), nil
}

// Encode writes v to w.
func (f *Format) Encode(w io.Writer, s *goflat.Schema, v any) error {
	e, err := f.NewEncoder(w, s)
	if err != nil {
		return err
	}
	if s.Kind == goflat.KindList {
		items, ok := goflat.AsList(v)
		if !ok && v != nil {
			return goflat.NewIssue("/", goflat.CodeFormatError, "want a list value")
		}
		for _, it := range items {
			if err := e.Encode(it); err != nil {
				return err
			}
		}
	} else if err := e.Encode(v); err != nil {
		return err
	}
	return e.Close()
}
