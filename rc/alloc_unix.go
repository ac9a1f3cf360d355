//go:build linux || darwin

package rc

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/unix"
)

// mmapThreshold is the total block size at which allocation switches from
// the Go heap to anonymous mmap. Large payloads bypass the collector
// entirely and go back to the host the moment the last handle is
// released.
const mmapThreshold = 256 << 10

// mapAlloc obtains total bytes from the host via anonymous mmap when the
// request is large enough to be worth a direct mapping. ok is false for
// small requests, which stay on the Go heap.
func mapAlloc(total int) (unsafe.Pointer, []byte, bool) {
	if total < mmapThreshold {
		return nil, nil, false
	}
	m, err := unix.Mmap(-1, 0, total, unix.PROT_READ|unix.PROT_WRITE, unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		// Host memory exhaustion is unrecoverable by convention.
		panic(fmt.Sprintf("rc: anonymous mmap of %d bytes failed: %v", total, err))
	}
	return unsafe.Pointer(&m[0]), m, true
}

// mapFree returns a mapped region to the host.
func mapFree(m []byte) {
	if err := unix.Munmap(m); err != nil {
		panic(fmt.Sprintf("rc: munmap failed: %v", err))
	}
}
