//go:build darwin || freebsd

package pagesrc

import (
	"unsafe"

	"golang.org/x/sys/unix"
)

// osAcquire commits a zero-filled anonymous region. Darwin and FreeBSD
// don't expose Linux's MAP_HUGETLB through golang.org/x/sys/unix, so this
// always takes the plain anonymous-mapping path; both kernels already
// back anonymous mappings with demand-paged physical pages, which is all
// the page primitive contract (spec.md §2, component A) requires.
func osAcquire(bytes int64) (uintptr, bool) {
	b, err := unix.Mmap(-1, 0, int(bytes),
		unix.PROT_READ|unix.PROT_WRITE,
		unix.MAP_ANON|unix.MAP_PRIVATE)
	if err != nil {
		return 0, false
	}
	return uintptr(unsafe.Pointer(&b[0])), true
}

// osReserve obtains address space for a sparse table. BSD anonymous
// mappings are demand-paged by default, so reservation is identical to
// acquisition here.
func osReserve(bytes int64) (uintptr, bool) {
	return osAcquire(bytes)
}
