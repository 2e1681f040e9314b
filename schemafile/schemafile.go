// Package schemafile loads schemas and codec settings from YAML documents.
//
// A document names the record schema, optional reusable type definitions and
// optional codec settings:
//
//	schema:
//	  ref: Row
//	types:
//	  Kind:
//	    enum: [One, Two]
//	    length: 3
//	  Row:
//	    fields:
//	      - {name: id, type: long, length: 6}
//	      - {name: kind, ref: Kind}
//	      - {name: note, type: string, length: 10, nullable: true}
//	csv:
//	  separator: ";"
//	flf:
//	  lineSeparator: ""
//
// Unknown keys are rejected. Every error is a schema_error Issue whose path
// points into the document and whose hint starts with the line and column.
package schemafile

import (
	"bytes"
	"errors"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	goflat "github.com/reoring/goflat"
	"github.com/reoring/goflat/csv"
	"github.com/reoring/goflat/flf"
)

// Document is a loaded schema file.
type Document struct {
	// Schema is the record schema; already checked with goflat.Validate.
	Schema *goflat.Schema
	// Types holds the named definitions, referenced from nodes with ref.
	Types map[string]*goflat.Schema

	csv csvSettings
	flf flfSettings
}

type csvSettings struct {
	separator            *rune
	lineSeparator        *string
	includeHeader        *bool
	alwaysEmitQuotes     *bool
	numberFormat         *csv.NumberFormat
	strictTrailingFields *bool
}

type flfSettings struct {
	lineSeparator    *string
	fillLeadingZeros *bool
	trim             *bool
}

// CSVConfig overlays the csv settings of the document on csv.DefaultConfig.
func (d *Document) CSVConfig() csv.Config {
	cfg := csv.DefaultConfig()
	set(&cfg.Separator, d.csv.separator)
	set(&cfg.LineSeparator, d.csv.lineSeparator)
	set(&cfg.IncludeHeader, d.csv.includeHeader)
	set(&cfg.AlwaysEmitQuotes, d.csv.alwaysEmitQuotes)
	set(&cfg.NumberFormat, d.csv.numberFormat)
	set(&cfg.StrictTrailingFields, d.csv.strictTrailingFields)
	return cfg
}

// FLFConfig overlays the flf settings of the document on flf.DefaultConfig.
func (d *Document) FLFConfig() flf.Config {
	cfg := flf.DefaultConfig()
	set(&cfg.LineSeparator, d.flf.lineSeparator)
	set(&cfg.FillLeadingZeros, d.flf.fillLeadingZeros)
	set(&cfg.Trim, d.flf.trim)
	return cfg
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

// LoadFile reads the document at path.
func LoadFile(path string) (*Document, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return Load(f)
}

// Parse loads a document held in memory.
func Parse(data []byte) (*Document, error) {
	return Load(bytes.NewReader(data))
}

// Load reads a single YAML document from r.
func Load(r io.Reader) (*Document, error) {
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, goflat.NewIssue("/", goflat.CodeSchemaError, "empty document")
		}
		return nil, goflat.Issues{goflat.IssueWithCause(goflat.Root(), goflat.CodeSchemaError, err.Error(), err)}
	}
	if len(root.Content) == 0 {
		return nil, goflat.NewIssue("/", goflat.CodeSchemaError, "empty document")
	}
	l := newLoader()
	doc := l.document(root.Content[0])
	if len(l.issues) > 0 {
		return nil, l.issues
	}
	if err := goflat.Validate(doc.Schema); err != nil {
		return nil, err
	}
	return doc, nil
}
