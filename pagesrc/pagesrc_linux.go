//go:build linux

package pagesrc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// osAcquire commits a zero-filled anonymous region. It first tries
// MAP_HUGETLB — matching the retrieved momentics-hioload-ws buffer pool's
// opportunistic hugepage attempt — then falls back to a regular anonymous
// mapping, since MAP_HUGETLB requires a pre-reserved hugepage pool this
// library cannot assume the host has configured.
func osAcquire(bytes int64) (uintptr, bool) {
	length := int(bytes)
	b, err := unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE|unix.MAP_HUGETLB)
	if err != nil {
		b, err = unix.Mmap(-1, 0, length,
			unix.PROT_READ|unix.PROT_WRITE,
			unix.MAP_ANONYMOUS|unix.MAP_PRIVATE)
	}
	if err != nil {
		return 0, false
	}
	return uintptr(unsafe.Pointer(&b[0])), true
}

// osReserve obtains address space without asking the kernel to commit
// physical pages up front, relying on demand paging for the untouched
// majority of a sparse table — MAP_NORESERVE additionally tells the
// kernel's overcommit accounting not to reserve swap for the whole span.
func osReserve(bytes int64) (uintptr, bool) {
	length := int(bytes)
	b, err := unix.Mmap(-1, 0, length,
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANONYMOUS|unix.MAP_PRIVATE|unix.MAP_NORESERVE)
	if err != nil {
		return 0, false
	}
	return uintptr(unsafe.Pointer(&b[0])), true
}
