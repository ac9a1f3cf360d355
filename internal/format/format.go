// Package format defines the in-memory layout contract for shared blocks.
// The goal is to keep the layout in one place, independent from the public
// API, so the handle and builder code in package rc can reinterpret raw
// block addresses against a single documented contract.
//
// A shared block is one contiguous allocation:
//
//	0x00  strong reference count (uint64, host representation)
//	0x08  weak reference count   (uint64, host representation)
//	0x10  payload: [len]T for sequences, UTF-8 bytes for text
//
// The counts are plain native words, not a serialized format: blocks never
// leave the process. The payload begins at HeaderSize and is PayloadAlign
// aligned because every backing allocation is word aligned and the header
// is an even number of words. If this layout ever changes, the finalizer
// and the handle accessors in package rc are the places to re-verify.
package format

const (
	// WordSize is the size in bytes of one header word.
	WordSize = 8

	// StrongOffset is the byte offset of the strong reference count.
	StrongOffset = 0

	// WeakOffset is the byte offset of the weak reference count.
	WeakOffset = WordSize

	// HeaderSize is the total size of the block header in bytes. Payload
	// starts immediately after.
	HeaderSize = 2 * WordSize

	// PayloadAlign is the guaranteed alignment of the payload region.
	// Element types with stricter alignment cannot be stored inline.
	PayloadAlign = WordSize

	// WordMask is the bitmask used for word alignment (WordSize - 1).
	WordMask = WordSize - 1
)

// AlignWord returns n aligned up to the next word boundary.
//
// Example:
//
//	AlignWord(1)  = 8
//	AlignWord(8)  = 8
//	AlignWord(9)  = 16
func AlignWord(n int) int {
	return (n + WordMask) &^ WordMask
}

// Words returns the number of header-sized words needed to hold n bytes.
func Words(n int) int {
	return AlignWord(n) / WordSize
}
