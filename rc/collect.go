package rc

import (
	"math"
	"unsafe"
)

// Option configures a single build.
type Option[T any] func(*buildConfig[T])

type buildConfig[T any] struct {
	drop func(*T)
}

// WithDestructor registers fn to run exactly once per initialized element
// when a build aborts, or when the last handle is released. Use it for
// elements that own external resources (file descriptors, host handles).
func WithDestructor[T any](fn func(*T)) Option[T] {
	return func(c *buildConfig[T]) {
		c.drop = fn
	}
}

// Collect drains src into a single shared block and returns a handle over
// the elements in production order.
//
// The source's size hint plans the initial capacity; when the hint covers
// the actual length the whole build performs exactly one allocation. A
// hint that undershoots costs amortized doubling steps, each of which
// frees the block it replaces. The allocation is not shrunk to fit
// afterward: trimming would cost the second allocation this package
// exists to avoid, so tail slack is accepted.
//
// A source error aborts the build: every element written so far is torn
// down, the block is freed, and the error is returned unchanged. A panic
// out of the source unwinds through the same cleanup. An exhausted source
// with no elements yields an empty handle backed by the shared sentinel,
// with no allocation at all.
//
// Collect panics if T contains pointer-typed memory; see the package
// comment.
func Collect[T any](src Source[T], opts ...Option[T]) (Ref[T], error) {
	if src == nil {
		return Ref[T]{}, ErrNilSource
	}
	checkElemType[T]()

	var cfg buildConfig[T]
	for _, o := range opts {
		o(&cfg)
	}

	elemSize := int(unsafe.Sizeof(*new(T)))
	lower, upper, upperKnown := src.SizeHint()

	var (
		base     unsafe.Pointer
		capSlots int
		written  int
		done     bool
	)

	// Abort guard: armed for the whole write phase, disarmed right
	// before finalize. Fires on the error return below and on any panic
	// out of the source; either way the written prefix is torn down and
	// the block freed, so no partial result survives.
	defer func() {
		if done || base == nil {
			return
		}
		if cfg.drop != nil {
			view := unsafe.Slice((*T)(payloadAt(base)), written)
			for i := range view {
				cfg.drop(&view[i])
			}
		}
		freeBlock(base)
	}()

	for src.Next() {
		if base == nil {
			capSlots = planCapacity(lower, upper, upperKnown, elemSize)
			if capSlots < 1 {
				capSlots = 1
			}
			base = allocBlock(capSlots * elemSize)
			if elemSize == 0 {
				// Zero-size elements occupy no payload; only the
				// count matters, so the block never needs to grow.
				capSlots = math.MaxInt
			}
		} else if written == capSlots {
			next := capSlots * 2
			base = growBlock(base, written*elemSize, next*elemSize)
			capSlots = next
		}
		v := src.Value()
		*(*T)(unsafe.Add(payloadAt(base), written*elemSize)) = v
		written++
	}
	if err := src.Err(); err != nil {
		return Ref[T]{}, err
	}
	if base == nil {
		done = true
		return Ref[T]{base: sentinelBase()}, nil
	}

	done = true // guard disarmed; ownership passes to the finalizer
	return Ref[T]{base: finalize(base), n: written, drop: cfg.drop}, nil
}
