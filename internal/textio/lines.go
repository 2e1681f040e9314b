// Package textio splits text streams into records.
package textio

import (
	"bufio"
	"bytes"
	"io"
)

// MaxLine bounds a single line held in memory.
const MaxLine = 1 << 20

// LineScanner yields lines separated by an arbitrary, possibly multi-character
// separator. A separator at the very end of the input does not produce an
// empty final line.
type LineScanner struct {
	sc   *bufio.Scanner
	line int
}

// NewLineScanner returns a scanner over r. sep must not be empty.
func NewLineScanner(r io.Reader, sep string) *LineScanner {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), MaxLine)
	sc.Split(splitOn([]byte(sep)))
	return &LineScanner{sc: sc}
}

// Next returns the next line. It reports false at the end of input or on a
// read error; see Err.
func (l *LineScanner) Next() (string, bool) {
	if !l.sc.Scan() {
		return "", false
	}
	l.line++
	return l.sc.Text(), true
}

// Line is the one-based number of the line most recently returned.
func (l *LineScanner) Line() int { return l.line }

// Err returns the first non-EOF error.
func (l *LineScanner) Err() error { return l.sc.Err() }

func splitOn(sep []byte) bufio.SplitFunc {
	return func(data []byte, atEOF bool) (int, []byte, error) {
		if atEOF && len(data) == 0 {
			return 0, nil, nil
		}
		if i := bytes.Index(data, sep); i >= 0 {
			return i + len(sep), data[:i], nil
		}
		if atEOF {
			return len(data), data, nil
		}
		return 0, nil, nil
	}
}
