package rc

import "unsafe"

// Ref is a shared-ownership handle over an immutable sequence of T built
// by Collect. Clones share one underlying block; the block is freed when
// the last handle is released. The zero Ref is an empty, released handle.
//
// Clone and Release mutate a non-atomic reference count and must stay on
// one goroutine. Reads are safe from anywhere; the payload never changes
// after the build.
type Ref[T any] struct {
	base unsafe.Pointer
	n    int
	drop func(*T)
}

// Len returns the number of elements.
func (r Ref[T]) Len() int { return r.n }

// IsEmpty reports whether the sequence has no elements.
func (r Ref[T]) IsEmpty() bool { return r.n == 0 }

// At returns the element at index i. It panics when i is out of range.
func (r Ref[T]) At(i int) T { return r.View()[i] }

// View returns the payload as a slice. The slice aliases the shared
// block: treat it as read-only, and do not use it after the last handle
// is released.
func (r Ref[T]) View() []T {
	if r.n == 0 {
		return nil
	}
	return unsafe.Slice((*T)(payloadAt(r.base)), r.n)
}

// Clone returns a new handle sharing the same block and bumps the strong
// count. Not goroutine-safe; see the type comment.
func (r Ref[T]) Clone() Ref[T] {
	retain(r.base)
	return r
}

// Release drops one strong reference. At zero the destructor registered
// with WithDestructor, if any, runs exactly once per element and the
// block is freed. Releasing more times than the handle was cloned panics.
func (r Ref[T]) Release() {
	release(r.base, r.teardown())
}

func (r Ref[T]) teardown() func() {
	if r.drop == nil {
		return nil
	}
	return func() {
		view := unsafe.Slice((*T)(payloadAt(r.base)), r.n)
		for i := range view {
			r.drop(&view[i])
		}
	}
}

// Str is a shared-ownership handle over immutable UTF-8 text built by
// CollectText. The zero Str is an empty, released handle. The same
// clone/release and goroutine rules as Ref apply.
type Str struct {
	base unsafe.Pointer
	n    int // payload length in bytes
}

// Len returns the text length in bytes.
func (s Str) Len() int { return s.n }

// IsEmpty reports whether the text is empty.
func (s Str) IsEmpty() bool { return s.n == 0 }

// String returns the text. The string aliases the shared block without
// copying; do not use it after the last handle is released.
func (s Str) String() string {
	if s.n == 0 {
		return ""
	}
	return unsafe.String((*byte)(payloadAt(s.base)), s.n)
}

// Bytes returns the UTF-8 payload. The slice aliases the shared block:
// treat it as read-only, and do not use it after the last handle is
// released.
func (s Str) Bytes() []byte {
	if s.n == 0 {
		return nil
	}
	return unsafe.Slice((*byte)(payloadAt(s.base)), s.n)
}

// Clone returns a new handle sharing the same block and bumps the strong
// count.
func (s Str) Clone() Str {
	retain(s.base)
	return s
}

// Release drops one strong reference; the last release frees the block.
func (s Str) Release() {
	release(s.base, nil)
}
