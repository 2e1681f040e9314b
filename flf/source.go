package flf

import (
	"bufio"
	"io"
	"iter"
	"strings"
	"unicode/utf8"

	"github.com/reoring/goflat/internal/cursor"
	"github.com/reoring/goflat/internal/textio"
)

// RowSource supplies one physical record per call and io.EOF at the end.
type RowSource interface {
	NextRow() (string, error)
}

// Lines adapts a sequence of records. The returned source implements
// io.Closer; Decoder.Close releases the sequence when it is not drained.
func Lines(seq iter.Seq[string]) RowSource {
	p, stop := cursor.FromSeq(seq)
	return &seqRows{p: p, stop: stop}
}

type seqRows struct {
	p    *cursor.Peekable[string]
	stop func()
}

func (s *seqRows) NextRow() (string, error) {
	row, ok := s.p.Next()
	if !ok {
		s.stop()
		return "", io.EOF
	}
	return row, nil
}

func (s *seqRows) Close() error {
	s.stop()
	return nil
}

type scannerRows struct {
	sc *textio.LineScanner
}

func (s scannerRows) NextRow() (string, error) {
	row, ok := s.sc.Next()
	if !ok {
		if err := s.sc.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	return row, nil
}

// text yields the characters of one record, a field at a time.
type text interface {
	// take returns up to n characters; fewer when the record or input ends.
	take(n int) (string, error)
	// exhausted reports whether no characters are left.
	exhausted() bool
}

// rowText is one record held in memory.
type rowText struct {
	runes []rune
	pos   int
}

func (r *rowText) take(n int) (string, error) {
	end := min(r.pos+n, len(r.runes))
	s := string(r.runes[r.pos:end])
	r.pos = end
	return s, nil
}

func (r *rowText) remaining() int { return len(r.runes) - r.pos }

func (r *rowText) exhausted() bool { return r.pos >= len(r.runes) }

// rest returns the characters no field consumed.
func (r *rowText) rest() string { return string(r.runes[r.pos:]) }

// streamText reads fields straight from an undelimited input and counts the
// characters consumed by the current record.
type streamText struct {
	br   *bufio.Reader
	read int
}

func (s *streamText) take(n int) (string, error) {
	b := &strings.Builder{}
	for range n {
		r, _, err := s.br.ReadRune()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", err
		}
		s.read++
		b.WriteRune(r)
	}
	return b.String(), nil
}

func (s *streamText) exhausted() bool {
	_, err := s.br.Peek(1)
	return err != nil
}

// available reports whether at least n characters are buffered or readable
// without consuming them. n is bounded by the reader's buffer.
func available(br *bufio.Reader, n int) (bool, error) {
	if n <= 0 {
		n = 1
	}
	want := min(n*utf8.UTFMax, br.Size())
	buf, err := br.Peek(want)
	if err != nil && err != io.EOF && err != bufio.ErrBufferFull {
		return false, err
	}
	return utf8.RuneCount(buf) >= n, nil
}
