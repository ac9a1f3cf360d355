package rc

import (
	"io"
	"iter"
)

// Source is a finite, pull-based producer of elements. It follows the
// bufio.Scanner shape: Next advances and reports whether an element is
// available, Value returns it, and Err reports the failure that stopped
// production, if any.
type Source[T any] interface {
	// Next advances to the next element. It returns false when the
	// source is exhausted or when production failed; the two cases are
	// told apart through Err.
	Next() bool

	// Value returns the current element. Valid only after Next has
	// returned true. The element is consumed: the builder moves it into
	// the block and the source must not retain it.
	Value() T

	// Err returns the production failure that terminated the source, or
	// nil after normal exhaustion.
	Err() error

	// SizeHint bounds the number of elements still to come. lower is
	// always safe to rely on. upper is meaningful only when upperKnown
	// is true; a source may still produce fewer than upper elements.
	SizeHint() (lower, upper int, upperKnown bool)
}

// SliceSource returns a Source over the elements of s, in order, with an
// exact size hint.
func SliceSource[T any](s []T) Source[T] {
	return &sliceSource[T]{s: s, i: -1}
}

type sliceSource[T any] struct {
	s []T
	i int
}

func (ss *sliceSource[T]) Next() bool {
	ss.i++
	return ss.i < len(ss.s)
}

func (ss *sliceSource[T]) Value() T   { return ss.s[ss.i] }
func (ss *sliceSource[T]) Err() error { return nil }

func (ss *sliceSource[T]) SizeHint() (int, int, bool) {
	n := len(ss.s) - ss.i - 1
	if n < 0 {
		n = 0
	}
	return n, n, true
}

// FuncSource adapts a pull function to a Source. The function returns
// io.EOF after the last element; any other error aborts the build and is
// handed to the caller unchanged. The length is unknown in advance.
func FuncSource[T any](next func() (T, error)) Source[T] {
	return &funcSource[T]{next: next}
}

type funcSource[T any] struct {
	next func() (T, error)
	cur  T
	err  error
	done bool
}

func (fs *funcSource[T]) Next() bool {
	if fs.done {
		return false
	}
	v, err := fs.next()
	if err != nil {
		fs.done = true
		if err != io.EOF {
			fs.err = err
		}
		return false
	}
	fs.cur = v
	return true
}

func (fs *funcSource[T]) Value() T                  { return fs.cur }
func (fs *funcSource[T]) Err() error                { return fs.err }
func (fs *funcSource[T]) SizeHint() (int, int, bool) { return 0, 0, false }

// SeqSource adapts a range-over-func iterator to a Source. The sequence
// must be finite; its length is unknown in advance.
func SeqSource[T any](seq iter.Seq[T]) Source[T] {
	next, stop := iter.Pull(seq)
	return &seqSource[T]{next: next, stop: stop}
}

type seqSource[T any] struct {
	next func() (T, bool)
	stop func()
	cur  T
}

func (s *seqSource[T]) Next() bool {
	v, ok := s.next()
	if !ok {
		s.stop()
		return false
	}
	s.cur = v
	return true
}

func (s *seqSource[T]) Value() T                  { return s.cur }
func (s *seqSource[T]) Err() error                { return nil }
func (s *seqSource[T]) SizeHint() (int, int, bool) { return 0, 0, false }

// ChanSource drains a channel until it is closed. The producer must close
// the channel; the length is unknown in advance.
func ChanSource[T any](ch <-chan T) Source[T] {
	return &chanSource[T]{ch: ch}
}

type chanSource[T any] struct {
	ch  <-chan T
	cur T
}

func (cs *chanSource[T]) Next() bool {
	v, ok := <-cs.ch
	if !ok {
		return false
	}
	cs.cur = v
	return true
}

func (cs *chanSource[T]) Value() T                  { return cs.cur }
func (cs *chanSource[T]) Err() error                { return nil }
func (cs *chanSource[T]) SizeHint() (int, int, bool) { return 0, 0, false }

// HintedSource overrides the size hint of src. Useful when the caller
// knows bounds the underlying source cannot report. The hint only affects
// capacity planning; a wrong hint costs growth steps or tail slack, never
// correctness.
func HintedSource[T any](src Source[T], lower, upper int, upperKnown bool) Source[T] {
	return &hintedSource[T]{Source: src, lower: lower, upper: upper, upperKnown: upperKnown}
}

type hintedSource[T any] struct {
	Source[T]
	lower, upper int
	upperKnown   bool
}

func (hs *hintedSource[T]) SizeHint() (int, int, bool) {
	return hs.lower, hs.upper, hs.upperKnown
}
