package goflat

import (
	"strconv"
	"strings"
)

// PathRef builds JSON Pointer paths in a chain-safe way and creates Issues.
// Extending a PathRef never changes the receiver.
type PathRef interface {
	Field(name string) PathRef
	Index(i int) PathRef
	Pointer() string
	Issue(code, hint string) Issue
}

// Root returns the empty path ("/").
func Root() PathRef { return pathRef("") }

// At wraps a pointer such as "/a/b/0". Segments are taken as already escaped.
func At(path string) PathRef {
	path = strings.TrimRight(path, "/")
	if path != "" && !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return pathRef(path)
}

// pathRef is the pointer text without the root slash for the empty path.
type pathRef string

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

func (p pathRef) Field(name string) PathRef {
	if name == "" {
		return p
	}
	return p + "/" + pathRef(pointerEscaper.Replace(name))
}

func (p pathRef) Index(i int) PathRef {
	return p + "/" + pathRef(strconv.Itoa(i))
}

func (p pathRef) Pointer() string {
	if p == "" {
		return "/"
	}
	return string(p)
}

func (p pathRef) Issue(code, hint string) Issue { return IssueAt(p, code, hint) }
