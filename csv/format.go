// Package csv encodes and decodes schema-described records as RFC-4180 style
// delimited text with a configurable separator and line separator.
package csv

import (
	"io"
	"strings"

	goflat "github.com/reoring/goflat"
)

// NumberFormat selects the decimal separator of floating point fields.
type NumberFormat int

const (
	NumberDot   NumberFormat = iota // 42.42
	NumberComma                     // 42,42
)

// Config controls the text dialect. The zero value is not usable; start from
// DefaultConfig.
type Config struct {
	Separator        rune
	LineSeparator    string
	IncludeHeader    bool
	AlwaysEmitQuotes bool
	NumberFormat     NumberFormat
	// StrictTrailingFields turns absent trailing columns of nullable fields
	// into missing_field errors instead of nulls.
	StrictTrailingFields bool
}

// DefaultConfig returns the comma separated, newline terminated dialect with
// a header row.
func DefaultConfig() Config {
	return Config{
		Separator:     ',',
		LineSeparator: "\n",
		IncludeHeader: true,
		NumberFormat:  NumberDot,
	}
}

// Format is an immutable CSV codec configuration. It is safe for concurrent
// use; every decode or encode call owns its own state.
type Format struct {
	cfg Config
}

// New checks cfg and returns a Format.
func New(cfg Config) (*Format, error) {
	var iss goflat.Issues
	bad := func(path, hint string) {
		iss = goflat.AppendIssues(iss, goflat.At(path).Issue(goflat.CodeSchemaError, hint))
	}
	switch {
	case cfg.Separator == 0:
		bad("/separator", "separator must be set")
	case cfg.Separator == '"':
		bad("/separator", "separator cannot be a quote")
	}
	switch {
	case cfg.LineSeparator == "":
		bad("/lineSeparator", "line separator must not be empty")
	case strings.ContainsRune(cfg.LineSeparator, '"'):
		bad("/lineSeparator", "line separator cannot contain a quote")
	case cfg.Separator != 0 && strings.ContainsRune(cfg.LineSeparator, cfg.Separator):
		bad("/lineSeparator", "line separator cannot contain the separator")
	}
	if cfg.NumberFormat != NumberDot && cfg.NumberFormat != NumberComma {
		bad("/numberFormat", "unknown number format")
	}
	if len(iss) > 0 {
		return nil, iss
	}
	return &Format{cfg: cfg}, nil
}

// Default is the Format built from DefaultConfig.
var Default = &Format{cfg: DefaultConfig()}

// Config returns the configuration of f.
func (f *Format) Config() Config { return f.cfg }

// DecodeString decodes text. A struct or union schema yields the first data
// record; a top-level list yields every record until the input ends.
func (f *Format) DecodeString(s *goflat.Schema, text string) (any, error) {
	return f.Decode(s, strings.NewReader(text))
}

// Decode is DecodeString over a reader.
func (f *Format) Decode(s *goflat.Schema, r io.Reader) (any, error) {
	d, err := f.NewDecoder(s, r)
	if err != nil {
		return nil, err
	}
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
