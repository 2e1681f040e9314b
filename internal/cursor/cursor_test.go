package cursor_test

import (
	"slices"
	"testing"

	"github.com/reoring/goflat/internal/cursor"
)

func TestPeekable_PeekIsIdempotent(t *testing.T) {
	pulls := 0
	items := []int{1, 2}
	c := cursor.New(func() (int, bool) {
		if pulls >= len(items) {
			return 0, false
		}
		pulls++
		return items[pulls-1], true
	})
	if _, ok := c.Current(); ok {
		t.Fatalf("Current before Next must report false")
	}
	for i := 0; i < 3; i++ {
		if v, ok := c.Peek(); !ok || v != 1 {
			t.Fatalf("want 1, got %d (ok=%v)", v, ok)
		}
	}
	if pulls != 1 {
		t.Fatalf("peek must buffer a single item, pulled %d", pulls)
	}
	if v, _ := c.Next(); v != 1 {
		t.Fatalf("want 1, got %d", v)
	}
	if v, ok := c.Current(); !ok || v != 1 {
		t.Fatalf("want current 1, got %d", v)
	}
	if v, _ := c.Next(); v != 2 {
		t.Fatalf("want 2, got %d", v)
	}
	if c.HasNext() {
		t.Fatalf("want exhausted cursor")
	}
	if _, ok := c.Next(); ok {
		t.Fatalf("Next after end must report false")
	}
	if v, _ := c.Current(); v != 2 {
		t.Fatalf("current must keep the last item, got %d", v)
	}
}

func TestFromSeq(t *testing.T) {
	c, stop := cursor.FromSeq(slices.Values([]string{"a", "b", "c"}))
	defer stop()
	var got []string
	for {
		v, ok := c.Next()
		if !ok {
			break
		}
		got = append(got, v)
	}
	if !slices.Equal(got, []string{"a", "b", "c"}) {
		t.Fatalf("want [a b c], got %v", got)
	}
}

func TestFromSlice_Empty(t *testing.T) {
	c := cursor.FromSlice[int](nil)
	if c.HasNext() {
		t.Fatalf("want empty")
	}
}
