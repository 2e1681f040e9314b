package csv

import (
	"bufio"
	"errors"
	"io"
	"unicode/utf8"

	goflat "github.com/reoring/goflat"
)

// TokenKind distinguishes field tokens from record terminators.
type TokenKind int

const (
	TokenField     TokenKind = iota // One field of the current record.
	TokenRecordEnd                  // The line separator after the last field.
)

// Token is one lexical unit of CSV text. Offset is the byte position where
// the field starts.
type Token struct {
	Kind   TokenKind
	Text   string
	Quoted bool
	Offset int64
}

// Tokenizer splits CSV text into field and record-end tokens. It reads the
// input incrementally and never holds more than the current field.
type Tokenizer struct {
	r       *bufio.Reader
	sep     rune
	lineSep string
	lsFirst rune
	lsSize  int

	off        int64
	lastSize   int
	expectNext bool // a separator was consumed, so one more field follows
	pendingEnd bool
	endOffset  int64
	done       bool
	err        error
	buf        []byte
}

// NewTokenizer returns a tokenizer over r. lineSep must not be empty.
func NewTokenizer(r io.Reader, sep rune, lineSep string) *Tokenizer {
	br, ok := r.(*bufio.Reader)
	if !ok {
		br = bufio.NewReader(r)
	}
	first, size := utf8.DecodeRuneInString(lineSep)
	return &Tokenizer{r: br, sep: sep, lineSep: lineSep, lsFirst: first, lsSize: size}
}

// Err returns the error that stopped the tokenizer, if any. A quote left open
// at the end of input is reported as a parse_error carrying its byte offset.
func (t *Tokenizer) Err() error { return t.err }

// Offset is the number of bytes consumed so far.
func (t *Tokenizer) Offset() int64 { return t.off }

// Next returns the next token. It reports false at the end of input or after
// an error.
func (t *Tokenizer) Next() (Token, bool) {
	if t.pendingEnd {
		t.pendingEnd = false
		return Token{Kind: TokenRecordEnd, Offset: t.endOffset}, true
	}
	if t.done {
		return Token{}, false
	}
	start := t.off
	r, err := t.read()
	if err != nil {
		t.done = true
		if !errors.Is(err, io.EOF) {
			t.err = err
			return Token{}, false
		}
		if t.expectNext {
			t.expectNext = false
			return Token{Kind: TokenField, Offset: start}, true
		}
		return Token{}, false
	}
	t.buf = t.buf[:0]
	quoted := false
	if r == '"' {
		quoted = true
		if !t.readQuoted(start) {
			return Token{}, false
		}
	} else {
		t.unread()
	}
	// bare text, or whatever follows a closing quote, up to the next delimiter
	for {
		pos := t.off
		r, err := t.read()
		if err != nil {
			t.done = true
			t.expectNext = false
			if !errors.Is(err, io.EOF) {
				t.err = err
				return Token{}, false
			}
			break
		}
		if r == t.sep {
			t.expectNext = true
			break
		}
		if r == t.lsFirst {
			ok, err := t.matchLineSep()
			if err != nil {
				t.done, t.err = true, err
				return Token{}, false
			}
			if ok {
				t.expectNext = false
				t.pendingEnd = true
				t.endOffset = pos
				break
			}
		}
		t.buf = utf8.AppendRune(t.buf, r)
	}
	return Token{Kind: TokenField, Text: string(t.buf), Quoted: quoted, Offset: start}, true
}

// readQuoted consumes a quoted section whose opening quote sits at start.
func (t *Tokenizer) readQuoted(start int64) bool {
	for {
		r, err := t.read()
		if err != nil {
			t.done = true
			if errors.Is(err, io.EOF) {
				iss := goflat.NewIssue("/", goflat.CodeParseError, "unterminated quoted field")
				iss[0].Offset = start
				t.err = iss
			} else {
				t.err = err
			}
			return false
		}
		if r != '"' {
			t.buf = utf8.AppendRune(t.buf, r)
			continue
		}
		next, err := t.read()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return true
			}
			t.done, t.err = true, err
			return false
		}
		if next == '"' {
			t.buf = append(t.buf, '"')
			continue
		}
		t.unread()
		return true
	}
}

// matchLineSep is called after the first rune of the line separator was read
// and consumes the rest of it when present.
func (t *Tokenizer) matchLineSep() (bool, error) {
	rest := len(t.lineSep) - t.lsSize
	if rest == 0 {
		return true, nil
	}
	peek, err := t.r.Peek(rest)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return false, err
	}
	if string(peek) != t.lineSep[t.lsSize:] {
		return false, nil
	}
	if _, err := t.r.Discard(rest); err != nil {
		return false, err
	}
	t.off += int64(rest)
	return true, nil
}

func (t *Tokenizer) read() (rune, error) {
	r, size, err := t.r.ReadRune()
	if err != nil {
		return 0, err
	}
	t.off += int64(size)
	t.lastSize = size
	return r, nil
}

func (t *Tokenizer) unread() {
	if err := t.r.UnreadRune(); err == nil {
		t.off -= int64(t.lastSize)
	}
}
