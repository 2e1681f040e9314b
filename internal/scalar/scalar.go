// Package scalar renders and parses primitive leaf values. Both codecs share
// it so that CSV and fixed-length text agree on every primitive.
package scalar

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"slices"
	"strconv"
	"strings"
	"unicode/utf8"

	goflat "github.com/reoring/goflat"
)

// ErrType reports a Go value whose kind does not fit the primitive type.
var ErrType = errors.New("value type does not match schema")

// Parse converts trimmed text into the canonical value of t: string, rune,
// bool, int64, uint64 or float64.
func Parse(t goflat.PrimitiveType, text string) (any, error) {
	switch {
	case t == goflat.TypeString:
		return text, nil
	case t == goflat.TypeChar:
		r, n := utf8.DecodeRuneInString(text)
		if n == 0 || n != len(text) || r == utf8.RuneError {
			return nil, fmt.Errorf("%q is not a single character", text)
		}
		return r, nil
	case t == goflat.TypeBool:
		switch strings.ToLower(text) {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("%q is not a boolean: %w", text, strconv.ErrSyntax)
	case t.IsSigned():
		n, err := strconv.ParseInt(text, 10, t.BitSize())
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid %s: %w", text, t, unwrapNum(err))
		}
		return n, nil
	case t.IsUnsigned():
		n, err := strconv.ParseUint(text, 10, t.BitSize())
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid %s: %w", text, t, unwrapNum(err))
		}
		return n, nil
	case t.IsFloat():
		f, err := strconv.ParseFloat(text, t.BitSize())
		if err != nil {
			return nil, fmt.Errorf("%q is not a valid %s: %w", text, t, unwrapNum(err))
		}
		return f, nil
	}
	return nil, fmt.Errorf("unknown primitive type %d", t)
}

// Format renders v as text for t. v is coerced first, so any Go integer or
// float kind is accepted for numeric types.
func Format(t goflat.PrimitiveType, v any) (string, error) {
	c, err := Coerce(t, v)
	if err != nil {
		return "", err
	}
	switch x := c.(type) {
	case string:
		return x, nil
	case rune:
		return string(x), nil
	case bool:
		return strconv.FormatBool(x), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float64:
		return strconv.FormatFloat(x, 'f', -1, t.BitSize()), nil
	}
	return "", fmt.Errorf("%w: %T", ErrType, c)
}

// Coerce converts an encoder input into the canonical value of t, checking
// that integers fit the declared bit size.
func Coerce(t goflat.PrimitiveType, v any) (any, error) {
	switch {
	case t == goflat.TypeString:
		switch x := v.(type) {
		case string:
			return x, nil
		case fmt.Stringer:
			return x.String(), nil
		}
	case t == goflat.TypeChar:
		switch x := v.(type) {
		case rune:
			return x, nil
		case string:
			r, n := utf8.DecodeRuneInString(x)
			if n > 0 && n == len(x) {
				return r, nil
			}
			return nil, fmt.Errorf("%q is not a single character", x)
		}
	case t == goflat.TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}
	case t.IsSigned():
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanInt():
			n := rv.Int()
			if !fitsInt(n, t.BitSize()) {
				return nil, fmt.Errorf("%d overflows %s: %w", n, t, strconv.ErrRange)
			}
			return n, nil
		case rv.CanUint():
			u := rv.Uint()
			if u > math.MaxInt64 || !fitsInt(int64(u), t.BitSize()) {
				return nil, fmt.Errorf("%d overflows %s: %w", u, t, strconv.ErrRange)
			}
			return int64(u), nil
		case rv.CanFloat() && isWhole(rv.Float()):
			return Coerce(t, int64(rv.Float()))
		}
	case t.IsUnsigned():
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanUint():
			u := rv.Uint()
			if t.BitSize() < 64 && u>>t.BitSize() != 0 {
				return nil, fmt.Errorf("%d overflows %s: %w", u, t, strconv.ErrRange)
			}
			return u, nil
		case rv.CanInt():
			n := rv.Int()
			if n < 0 {
				return nil, fmt.Errorf("%d is negative for %s: %w", n, t, strconv.ErrRange)
			}
			return Coerce(t, uint64(n))
		case rv.CanFloat() && isWhole(rv.Float()) && rv.Float() >= 0:
			return Coerce(t, uint64(rv.Float()))
		}
	case t.IsFloat():
		rv := reflect.ValueOf(v)
		switch {
		case rv.CanFloat():
			return rv.Float(), nil
		case rv.CanInt():
			return float64(rv.Int()), nil
		case rv.CanUint():
			return float64(rv.Uint()), nil
		}
	}
	return nil, fmt.Errorf("%w: %T for %s", ErrType, v, t)
}

// ParseEnum returns text when it names one of values.
func ParseEnum(values []string, text string) (string, error) {
	if slices.Contains(values, text) {
		return text, nil
	}
	return "", fmt.Errorf("%q is not one of %s", text, strings.Join(values, ", "))
}

// FormatEnum renders an enum value, accepting strings, fmt.Stringer values and
// ordinals.
func FormatEnum(values []string, v any) (string, error) {
	switch x := v.(type) {
	case string:
		return ParseEnum(values, x)
	case fmt.Stringer:
		return ParseEnum(values, x.String())
	}
	rv := reflect.ValueOf(v)
	if rv.CanInt() {
		if i := rv.Int(); i >= 0 && i < int64(len(values)) {
			return values[i], nil
		}
		return "", fmt.Errorf("enum ordinal %d out of range", rv.Int())
	}
	return "", fmt.Errorf("%w: %T for enum", ErrType, v)
}

func fitsInt(n int64, bits int) bool {
	if bits >= 64 {
		return true
	}
	lim := int64(1) << (bits - 1)
	return n >= -lim && n < lim
}

func isWhole(f float64) bool {
	return !math.IsInf(f, 0) && !math.IsNaN(f) && f == math.Trunc(f) && math.Abs(f) < 1<<63
}

func unwrapNum(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}
