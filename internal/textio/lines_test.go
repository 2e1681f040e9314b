package textio_test

import (
	"slices"
	"strings"
	"testing"

	"github.com/reoring/goflat/internal/textio"
)

func collect(t *testing.T, in, sep string) []string {
	t.Helper()
	sc := textio.NewLineScanner(strings.NewReader(in), sep)
	var out []string
	for {
		line, ok := sc.Next()
		if !ok {
			break
		}
		out = append(out, line)
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return out
}

func TestLineScanner(t *testing.T) {
	cases := []struct {
		in, sep string
		want    []string
	}{
		{"a\nb", "\n", []string{"a", "b"}},
		{"a\nb\n", "\n", []string{"a", "b"}},
		{"a\r\nb\nc\r\n", "\r\n", []string{"a", "b\nc"}},
		{"a\n\nb", "\n", []string{"a", "", "b"}},
		{"", "\n", nil},
		{"x||y||", "||", []string{"x", "y"}},
	}
	for _, tc := range cases {
		if got := collect(t, tc.in, tc.sep); !slices.Equal(got, tc.want) {
			t.Fatalf("%q split on %q: want %q, got %q", tc.in, tc.sep, tc.want, got)
		}
	}
}
