//go:build !linux && !darwin

package rc

import "unsafe"

// Platforms without the anonymous-mmap path keep every block on the Go
// heap.

func mapAlloc(total int) (unsafe.Pointer, []byte, bool) {
	return nil, nil, false
}

func mapFree(m []byte) {
	panic("rc: mapFree without mmap support")
}
