package rc

import (
	"fmt"
	"reflect"
	"unsafe"

	"github.com/okriv/refblock/internal/format"
)

// Header accessors and the finalize step. Everything here assumes exactly
// the layout documented in internal/format; nothing else in the package
// touches raw header memory.

func strongAt(base unsafe.Pointer) *uint64 {
	return (*uint64)(unsafe.Add(base, format.StrongOffset))
}

func weakAt(base unsafe.Pointer) *uint64 {
	return (*uint64)(unsafe.Add(base, format.WeakOffset))
}

// payloadAt returns the address of the first payload byte.
func payloadAt(base unsafe.Pointer) unsafe.Pointer {
	return unsafe.Add(base, format.HeaderSize)
}

// sentinel backs every empty result. It is a process-wide constant, not a
// refcounted instance: Clone and Release recognize it by address and
// leave the counts alone, so it is exempt from free-at-zero and invisible
// to allocation tracking. Its payload region is empty and never read.
var sentinel [format.HeaderSize / format.WordSize]uint64

func sentinelBase() unsafe.Pointer {
	return unsafe.Pointer(&sentinel[0])
}

// finalize installs the initial reference counts and hands the base
// pointer to the public handle: one strong owner, plus the implicit weak
// reference collectively held by the strong handles (the convention that
// lets the block outlive strong zero only while weak holders remain).
// This is the single point where raw builder memory becomes a
// shared-ownership value.
func finalize(base unsafe.Pointer) unsafe.Pointer {
	*strongAt(base) = 1
	*weakAt(base) = 1
	return base
}

// retain bumps the strong count of a live block.
func retain(base unsafe.Pointer) {
	if base == nil || base == sentinelBase() {
		return
	}
	*strongAt(base)++
}

// release drops one strong reference. When the count reaches zero the
// teardown callback (if any) runs, then the implicit weak reference is
// dropped and the block freed. The free happens exactly once, at the
// last release, never earlier.
func release(base unsafe.Pointer, teardown func()) {
	if base == nil || base == sentinelBase() {
		return
	}
	s := strongAt(base)
	if *s == 0 {
		panic("rc: release of dead handle")
	}
	*s--
	if *s > 0 {
		return
	}
	if teardown != nil {
		teardown()
	}
	w := weakAt(base)
	*w--
	if *w == 0 {
		freeBlock(base)
	}
}

// checkElemType rejects element types with pointer-typed memory. Payload
// slots live in untyped words the collector does not scan, so a pointer
// stored there would not keep its referent alive.
func checkElemType[T any]() {
	t := reflect.TypeFor[T]()
	if hasPointers(t) {
		panic(fmt.Sprintf("rc: element type %s contains pointers and cannot be stored in a shared block", t))
	}
	if a := t.Align(); a > format.PayloadAlign {
		panic(fmt.Sprintf("rc: element type %s requires %d-byte alignment, payload guarantees %d", t, a, format.PayloadAlign))
	}
}

func hasPointers(t reflect.Type) bool {
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64, reflect.Uintptr,
		reflect.Float32, reflect.Float64,
		reflect.Complex64, reflect.Complex128:
		return false
	case reflect.Array:
		return hasPointers(t.Elem())
	case reflect.Struct:
		for i := range t.NumField() {
			if hasPointers(t.Field(i).Type) {
				return true
			}
		}
		return false
	default:
		// Pointers, slices, strings, maps, chans, funcs, interfaces.
		return true
	}
}
