package goflat

import (
	"errors"
	"fmt"
	"strings"

	"github.com/reoring/goflat/i18n"
)

// Issue codes. Each code corresponds to one error kind of the codecs.
const (
	CodeParseError       = "parse_error"       // Malformed CSV quoting; Offset carries the byte position.
	CodeMissingField     = "missing_field"     // A non-null field is absent from the record.
	CodeSchemaError      = "schema_error"      // Invalid schema, detected before any text is consumed.
	CodeFormatError      = "format_error"      // A value does not parse as its declared type.
	CodeLengthViolation  = "length_violation"  // An encoded value exceeds its declared width.
	CodeUnsupportedShape = "unsupported_shape" // Shape the format cannot represent (maps, nested lists, ...).
	CodeInvalidState     = "invalid_state"     // API misuse, e.g. iterating a consumed sequence twice.
)

// Issue represents a single codec error entry.
type Issue struct {
	Path    string // JSON Pointer into the schema/value (for example: /items/2/price).
	Code    string // One of the codes listed above.
	Message string
	Hint    string // Optional: remediation hints, offending text, etc.
	Cause   error  // Optional: underlying error.
	Offset  int64  // Byte offset in the input (-1 when unknown).
	// Record is the zero-based index of the record being processed (-1 when
	// the issue is not tied to a record, e.g. schema errors).
	Record int
}

// Issues is a collection of codec errors that implements error.
type Issues []Issue

// Error summarizes the first few issues.
func (iss Issues) Error() string {
	if len(iss) == 0 {
		return ""
	}
	const maxShown = 3
	b := &strings.Builder{}
	n := len(iss)
	lim := min(n, maxShown)
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		it := iss[i]
		// e.g. format_error at /bar: invalid value ("x")
		fmt.Fprintf(b, "%s at %s", it.Code, it.Path)
		if it.Message != "" && it.Message != it.Code {
			fmt.Fprintf(b, ": %s", it.Message)
		}
		if it.Hint != "" {
			fmt.Fprintf(b, " (%s)", it.Hint)
		}
		if it.Offset >= 0 && it.Code == CodeParseError {
			fmt.Fprintf(b, " at offset %d", it.Offset)
		}
	}
	if n > lim {
		fmt.Fprintf(b, "; ... (total %d)", n)
	}
	return b.String()
}

// Unwrap exposes the underlying causes so errors.Is/As can reach them.
func (iss Issues) Unwrap() []error {
	var out []error
	for _, it := range iss {
		if it.Cause != nil {
			out = append(out, it.Cause)
		}
	}
	return out
}

// AppendIssues appends issues to the destination, initializing the slice when
// needed.
func AppendIssues(dst Issues, more ...Issue) Issues {
	if dst == nil {
		dst = Issues{}
	}
	dst = append(dst, more...)
	return dst
}

// AsIssues extracts Issues from an error using errors.As internally.
func AsIssues(err error) (Issues, bool) {
	if err == nil {
		return nil, false
	}
	var iss Issues
	if errors.As(err, &iss) {
		return iss, true
	}
	return nil, false
}

// HasCode reports whether err carries an issue with the given code.
func HasCode(err error, code string) bool {
	iss, ok := AsIssues(err)
	if !ok {
		return false
	}
	for _, it := range iss {
		if it.Code == code {
			return true
		}
	}
	return false
}

// NewIssue builds a single-issue error with the translated message for code.
func NewIssue(path, code, hint string) Issues {
	return Issues{Issue{Path: path, Code: code, Message: i18n.T(code, nil), Hint: hint, Offset: -1, Record: -1}}
}

// WithRecord stamps the record index on every issue of err that does not have
// one yet. Errors that are not Issues are wrapped as format errors.
func WithRecord(err error, record int) error {
	if err == nil {
		return nil
	}
	iss, ok := AsIssues(err)
	if !ok {
		return Issues{Issue{Path: "/", Code: CodeFormatError, Message: err.Error(), Cause: err, Offset: -1, Record: record}}
	}
	out := make(Issues, len(iss))
	for i, it := range iss {
		if it.Record < 0 {
			it.Record = record
		}
		out[i] = it
	}
	return out
}
