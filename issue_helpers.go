package goflat

import "github.com/reoring/goflat/i18n"

// IssueAt creates an Issue at the given path with provided code and hint.
// This is a convenience helper to improve readability at call sites with many parameters.
func IssueAt(p PathRef, code, hint string) Issue {
	return Issue{Path: p.Pointer(), Code: code, Message: i18n.T(code, nil), Hint: hint, Offset: -1, Record: -1}
}

// IssueWithCause is IssueAt with an underlying error attached.
func IssueWithCause(p PathRef, code, hint string, cause error) Issue {
	it := IssueAt(p, code, hint)
	it.Cause = cause
	return it
}
