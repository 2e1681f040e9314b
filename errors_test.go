package goflat_test

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	goflat "github.com/reoring/goflat"
)

func TestIssues_Error(t *testing.T) {
	iss := goflat.Issues{
		goflat.Root().Field("bar").Issue(goflat.CodeFormatError, `"x"`),
		{Path: "/", Code: goflat.CodeParseError, Message: "parse error", Offset: 12, Record: 0},
	}
	got := iss.Error()
	want := `format_error at /bar: invalid value ("x"); parse_error at /: parse error at offset 12`
	if got != want {
		t.Fatalf("want %q, got %q", want, got)
	}

	many := goflat.Issues{}
	for i := range 5 {
		many = goflat.AppendIssues(many, goflat.Root().Index(i).Issue(goflat.CodeMissingField, ""))
	}
	if !strings.HasSuffix(many.Error(), "; ... (total 5)") {
		t.Fatalf("want a truncated summary, got %q", many.Error())
	}
}

func TestIssues_ErrorsIsAndAs(t *testing.T) {
	_, cause := strconv.Atoi("x")
	err := fmt.Errorf("decode: %w", goflat.Issues{goflat.IssueWithCause(goflat.At("/n"), goflat.CodeFormatError, "bad", cause)})
	if !errors.Is(err, strconv.ErrSyntax) {
		t.Fatalf("want the cause to be reachable")
	}
	iss, ok := goflat.AsIssues(err)
	if !ok || iss[0].Path != "/n" {
		t.Fatalf("want issues through wrapping, got %v", err)
	}
	if !goflat.HasCode(err, goflat.CodeFormatError) || goflat.HasCode(err, goflat.CodeParseError) {
		t.Fatalf("HasCode mismatch for %v", err)
	}
	if _, ok := goflat.AsIssues(nil); ok {
		t.Fatalf("want no issues from nil")
	}
}

func TestWithRecord(t *testing.T) {
	err := goflat.Issues{
		goflat.Root().Field("a").Issue(goflat.CodeMissingField, ""),
		{Path: "/b", Code: goflat.CodeFormatError, Offset: -1, Record: 7},
	}
	got, _ := goflat.AsIssues(goflat.WithRecord(err, 3))
	if diff := cmp.Diff([]int{3, 7}, []int{got[0].Record, got[1].Record}); diff != "" {
		t.Fatalf("records (-want +got):\n%s", diff)
	}
	if err[0].Record != -1 {
		t.Fatalf("WithRecord must not modify its input")
	}

	plain, _ := goflat.AsIssues(goflat.WithRecord(errors.New("boom"), 2))
	if plain[0].Code != goflat.CodeFormatError || plain[0].Record != 2 || plain[0].Message != "boom" {
		t.Fatalf("unexpected wrapped issue %+v", plain[0])
	}
	if goflat.WithRecord(nil, 1) != nil {
		t.Fatalf("want nil for nil")
	}
}

func TestPathRef(t *testing.T) {
	p := goflat.Root().Field("a/b").Index(2).Field("c~d")
	if got := p.Pointer(); got != "/a~1b/2/c~0d" {
		t.Fatalf("want escaped pointer, got %s", got)
	}
	if got := goflat.At("/x/0/y").Field("z").Pointer(); got != "/x/0/y/z" {
		t.Fatalf("unexpected pointer %s", got)
	}
	if got := goflat.Root().Field("").Pointer(); got != "/" {
		t.Fatalf("want root, got %s", got)
	}
}
