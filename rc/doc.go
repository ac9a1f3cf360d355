// Package rc builds immutable, reference-counted sequences and text from
// lazy sources in a single allocation.
//
// # Overview
//
// The conventional way to turn a producer of unknown length into a shared
// immutable value costs two allocations: materialize into a growable
// buffer, then copy into the shared block. This package collects straight
// into the shared block instead. The source's size hint plans the initial
// capacity, elements are written in place, the block doubles only when the
// hint undershoots, and on success the raw block is reinterpreted as the
// public handle. When the hint covers the actual length, the whole build
// is exactly one allocation.
//
// # Key Types
//
//   - Source: a pull-based producer with optional length bounds
//   - Ref: shared-ownership handle over an immutable sequence
//   - Str: shared-ownership handle over immutable UTF-8 text
//
// # Block Layout
//
// Every handle points at one contiguous block:
//
//	[strong count - 8B] [weak count - 8B] [payload ...]
//
// The layout contract lives in internal/format. Empty results share a
// process-wide sentinel block and allocate nothing.
//
// # Building
//
//	ref, err := rc.Collect(rc.SliceSource([]int32{1, 2, 3}))
//	if err != nil {
//	    return err
//	}
//	defer ref.Release()
//
//	for _, v := range ref.View() {
//	    // ...
//	}
//
// A source error aborts the build, tears down everything written so far,
// frees the block, and surfaces the error unchanged. A panic out of the
// source unwinds through the same cleanup. No partial result ever escapes.
//
// # Constraints
//
// Element payloads live in memory the garbage collector does not scan, so
// element types must be pointer free (integers, floats, bools, arrays and
// structs of those). Collect panics otherwise.
//
// # Concurrency
//
// Clone and Release mutate a non-atomic count: all clones of one handle
// must stay on a single goroutine. Reads through At, View, String and
// Bytes are safe from any number of goroutines once the handle exists,
// because the payload is immutable.
package rc
