package rc

import (
	"fmt"
	"math"
	"sync"
	"unsafe"

	"github.com/okriv/refblock/internal/format"
)

// Raw block allocation. A block is header + payload in one contiguous
// region (layout in internal/format). Small blocks live on the Go heap as
// []uint64 backings, which guarantees word alignment and keeps the region
// visible to the collector through the handle's base pointer. Large
// blocks on unix come from anonymous mmap and are returned to the host
// explicitly; see alloc_unix.go.
//
// Inability to obtain memory is not a recoverable condition: like the
// built-in growable containers, the allocator panics rather than making
// every caller thread an impossible error upward.

// backing records how a live block's memory is held and released.
type backing struct {
	heap   []uint64 // heap backing; nil for mapped blocks
	mapped []byte   // mmap region; nil for heap blocks
	size   int      // total block size in bytes, header included
}

// tracker indexes every live block by base address so releases can find
// their backing and tests can assert allocation behavior. Builds are
// single-threaded, but independent builds may run on different
// goroutines, hence the mutex.
type tracker struct {
	mu     sync.Mutex
	blocks map[uintptr]backing
	stats  Stats
}

var live = &tracker{blocks: make(map[uintptr]backing)}

// Stats is a snapshot of allocator activity since process start. The
// sentinel block for empty results is not an allocation and never shows
// up here.
type Stats struct {
	Live      int   // blocks currently allocated
	LiveBytes int64 // bytes currently allocated, headers included
	Allocs    int64 // blocks ever allocated (each grow allocates one)
	Grows     int64 // grow relocations performed
	Frees     int64 // blocks ever freed
}

// AllocStats reports current allocator activity. Intended for tests and
// leak checks; a balanced workload ends with Live == 0.
func AllocStats() Stats {
	live.mu.Lock()
	defer live.mu.Unlock()
	return live.stats
}

func (t *tracker) add(base unsafe.Pointer, bk backing) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.blocks[uintptr(base)] = bk
	t.stats.Live++
	t.stats.LiveBytes += int64(bk.size)
	t.stats.Allocs++
}

func (t *tracker) remove(base unsafe.Pointer) (backing, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	bk, ok := t.blocks[uintptr(base)]
	if !ok {
		return backing{}, false
	}
	delete(t.blocks, uintptr(base))
	t.stats.Live--
	t.stats.LiveBytes -= int64(bk.size)
	t.stats.Frees++
	return bk, true
}

func (t *tracker) grew() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stats.Grows++
}

// allocBlock obtains one contiguous block with room for capBytes payload
// bytes behind the header. The header words are not yet meaningful; the
// finalizer installs them on success.
func allocBlock(capBytes int) unsafe.Pointer {
	if capBytes < 0 || capBytes > math.MaxInt-format.HeaderSize {
		panic(fmt.Sprintf("rc: impossible block capacity %d", capBytes))
	}
	total := format.HeaderSize + format.AlignWord(capBytes)

	var (
		base unsafe.Pointer
		bk   backing
	)
	if p, m, ok := mapAlloc(total); ok {
		base, bk = p, backing{mapped: m, size: total}
	} else {
		words := make([]uint64, total/format.WordSize)
		base = unsafe.Pointer(&words[0])
		bk = backing{heap: words, size: total}
	}
	live.add(base, bk)
	return base
}

// growBlock relocates a block's payload into a new allocation with at
// least newCapBytes of payload and frees the old block. The usedBytes
// already written move verbatim, without re-validation; header words are
// not carried over. Total live allocations never exceed the one block
// plus its replacement for the duration of the copy.
func growBlock(base unsafe.Pointer, usedBytes, newCapBytes int) unsafe.Pointer {
	next := allocBlock(newCapBytes)
	if usedBytes > 0 {
		src := unsafe.Slice((*byte)(unsafe.Add(base, format.HeaderSize)), usedBytes)
		dst := unsafe.Slice((*byte)(unsafe.Add(next, format.HeaderSize)), usedBytes)
		copy(dst, src)
	}
	freeBlock(base)
	live.grew()
	return next
}

// freeBlock releases a block's memory. Element teardown, when any, has
// already happened; the payload bytes are not touched. Freeing an
// address the tracker does not know is a double free or a stray pointer,
// both caller bugs.
func freeBlock(base unsafe.Pointer) {
	bk, ok := live.remove(base)
	if !ok {
		panic("rc: free of unknown block")
	}
	if bk.mapped != nil {
		mapFree(bk.mapped)
	}
	// Heap backings are dropped here; the collector reclaims them once
	// the last handle pointer is gone.
}
