// Package codec converts leaf values of decoded records into domain types and
// back, such as RFC3339 text into time.Time or zoned integers with an implied
// decimal point into floats.
package codec

import (
	"fmt"
	"math"
	"time"

	goflat "github.com/reoring/goflat"
)

// Codec converts a wire value In, as produced by the text codecs, into a
// domain value Out. Encode reverses Decode.
type Codec[In, Out any] interface {
	Decode(in In) (Out, error)
	Encode(out Out) (In, error)
}

// Identity returns a Codec that passes values through.
func Identity[T any]() Codec[T, T] { return identity[T]{} }

type identity[T any] struct{}

func (identity[T]) Decode(in T) (T, error)  { return in, nil }
func (identity[T]) Encode(out T) (T, error) { return out, nil }

// TimeRFC3339 converts RFC3339 text to time.Time. Encoding normalizes to UTC
// and drops trailing zeros of the fraction.
func TimeRFC3339() Codec[string, time.Time] { return rfc3339{} }

type rfc3339 struct{}

func (rfc3339) Decode(in string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, in)
	if err != nil {
		return time.Time{}, fmt.Errorf("%q is not an RFC3339 time: %w", in, err)
	}
	return t, nil
}

func (rfc3339) Encode(out time.Time) (string, error) {
	return out.UTC().Format(time.RFC3339Nano), nil
}

// Scaled reads integers as fixed-point numbers with the given count of
// implied decimal places, so "0004K" decoded as -42 becomes -0.42 with two.
func Scaled(decimals int) Codec[int64, float64] {
	return scaled{pow: math.Pow10(decimals)}
}

type scaled struct{ pow float64 }

func (s scaled) Decode(in int64) (float64, error) { return float64(in) / s.pow, nil }

func (s scaled) Encode(out float64) (int64, error) {
	n := math.Round(out * s.pow)
	if math.IsNaN(n) || n >= math.MaxInt64 || n < math.MinInt64 {
		return 0, fmt.Errorf("%v does not fit a scaled integer", out)
	}
	return int64(n), nil
}

// DecodeField replaces the value of field name in rec with its decoded form.
// Null and absent values are left alone.
func DecodeField[In, Out any](rec goflat.Record, name string, c Codec[In, Out]) error {
	return apply(rec, name, c.Decode)
}

// EncodeField is the inverse of DecodeField.
func EncodeField[In, Out any](rec goflat.Record, name string, c Codec[In, Out]) error {
	return apply(rec, name, c.Encode)
}

func apply[A, B any](rec goflat.Record, name string, fn func(A) (B, error)) error {
	v, ok := rec[name]
	if !ok || v == nil {
		return nil
	}
	p := goflat.Root().Field(name)
	a, ok := v.(A)
	if !ok {
		var want A
		return goflat.Issues{p.Issue(goflat.CodeFormatError, fmt.Sprintf("want %T, got %T", want, v))}
	}
	b, err := fn(a)
	if err != nil {
		return goflat.Issues{goflat.IssueWithCause(p, goflat.CodeFormatError, err.Error(), err)}
	}
	rec[name] = b
	return nil
}
