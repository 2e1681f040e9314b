// Package cursor provides a one-item lookahead over a pull function.
package cursor

import "iter"

// Peekable wraps a forward-only source. At most one item is buffered.
type Peekable[T any] struct {
	pull func() (T, bool)

	peeked  bool
	next    T
	nextOK  bool
	current T
	started bool
	done    bool
}

// New wraps pull, which reports false once the source is exhausted.
func New[T any](pull func() (T, bool)) *Peekable[T] {
	return &Peekable[T]{pull: pull}
}

// FromSeq adapts an iterator. The returned stop function releases the
// iterator early; it is safe to call more than once.
func FromSeq[T any](seq iter.Seq[T]) (*Peekable[T], func()) {
	next, stop := iter.Pull(seq)
	return New(next), stop
}

// FromSlice iterates over the items of s.
func FromSlice[T any](s []T) *Peekable[T] {
	i := 0
	return New(func() (T, bool) {
		if i >= len(s) {
			var zero T
			return zero, false
		}
		i++
		return s[i-1], true
	})
}

func (p *Peekable[T]) fill() {
	if p.peeked {
		return
	}
	p.peeked = true
	if p.done {
		var zero T
		p.next, p.nextOK = zero, false
		return
	}
	p.next, p.nextOK = p.pull()
	if !p.nextOK {
		p.done = true
	}
}

// Peek returns the next item without consuming it. Repeated calls return the
// same item.
func (p *Peekable[T]) Peek() (T, bool) {
	p.fill()
	return p.next, p.nextOK
}

// Next consumes and returns the next item.
func (p *Peekable[T]) Next() (T, bool) {
	p.fill()
	p.peeked = false
	if p.nextOK {
		p.current, p.started = p.next, true
	}
	return p.next, p.nextOK
}

// Current returns the item most recently returned by Next. It reports false
// before the first successful Next.
func (p *Peekable[T]) Current() (T, bool) { return p.current, p.started }

// HasNext reports whether Next would return an item.
func (p *Peekable[T]) HasNext() bool {
	_, ok := p.Peek()
	return ok
}
