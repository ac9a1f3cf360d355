package rc

import (
	"testing"
	"unsafe"

	"github.com/stretchr/testify/require"

	"github.com/okriv/refblock/internal/format"
)

func payloadBytes(base unsafe.Pointer, n int) []byte {
	return unsafe.Slice((*byte)(payloadAt(base)), n)
}

func TestAllocBlock_Tracked(t *testing.T) {
	before := AllocStats()

	base := allocBlock(32)
	mid := AllocStats()
	require.Equal(t, before.Live+1, mid.Live)
	require.Equal(t, before.Allocs+1, mid.Allocs)
	require.Equal(t, before.LiveBytes+int64(format.HeaderSize+32), mid.LiveBytes)

	// The whole payload region must be writable.
	p := payloadBytes(base, 32)
	for i := range p {
		p[i] = byte(i)
	}

	freeBlock(base)
	after := AllocStats()
	require.Equal(t, before.Live, after.Live)
	require.Equal(t, before.LiveBytes, after.LiveBytes)
	require.Equal(t, mid.Frees+1, after.Frees)
}

func TestAllocBlock_RoundsCapacityToWords(t *testing.T) {
	before := AllocStats()
	base := allocBlock(5)
	require.Equal(t, before.LiveBytes+int64(format.HeaderSize+format.AlignWord(5)), AllocStats().LiveBytes)
	freeBlock(base)
}

func TestGrowBlock_PreservesPayload(t *testing.T) {
	before := AllocStats()

	base := allocBlock(32)
	p := payloadBytes(base, 32)
	for i := range p {
		p[i] = byte(0xA0 + i)
	}

	base = growBlock(base, 32, 64)
	grown := payloadBytes(base, 32)
	for i := range grown {
		require.Equal(t, byte(0xA0+i), grown[i], "payload byte %d after grow", i)
	}

	after := AllocStats()
	require.Equal(t, before.Live+1, after.Live, "grow must free the block it replaces")
	require.Equal(t, before.Grows+1, after.Grows)
	require.Equal(t, before.Allocs+2, after.Allocs)
	require.Equal(t, before.Frees+1, after.Frees)

	freeBlock(base)
	require.Equal(t, before.Live, AllocStats().Live)
}

func TestGrowBlock_EmptyPayload(t *testing.T) {
	base := allocBlock(0)
	base = growBlock(base, 0, 8)
	payloadBytes(base, 8)[7] = 0xFF
	freeBlock(base)
}

func TestAllocBlock_LargeBlock(t *testing.T) {
	// Large enough to take the mmap path where one exists; the heap
	// fallback must behave identically.
	const size = 512 << 10

	before := AllocStats()
	base := allocBlock(size)
	p := payloadBytes(base, size)
	p[0], p[size-1] = 0x11, 0x22
	require.Equal(t, byte(0x11), p[0])
	require.Equal(t, byte(0x22), p[size-1])

	freeBlock(base)
	require.Equal(t, before.Live, AllocStats().Live)
	require.Equal(t, before.LiveBytes, AllocStats().LiveBytes)
}

func TestFreeBlock_UnknownBlockPanics(t *testing.T) {
	var word uint64
	require.PanicsWithValue(t, "rc: free of unknown block", func() {
		freeBlock(unsafe.Pointer(&word))
	})
}

func TestFreeBlock_DoubleFreePanics(t *testing.T) {
	base := allocBlock(8)
	freeBlock(base)
	require.PanicsWithValue(t, "rc: free of unknown block", func() {
		freeBlock(base)
	})
}

func TestAllocBlock_NegativeCapacityPanics(t *testing.T) {
	require.Panics(t, func() {
		allocBlock(-1)
	})
}
