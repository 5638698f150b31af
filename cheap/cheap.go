// Package cheap is component F's C-heap-compatible surface (spec.md §6):
// malloc/free/calloc/realloc and the alignment family, all thin adapters
// over a single lazily-initialized package-level *coa.Arena.
package cheap

import (
	"errors"
	"math"
	"unsafe"

	"github.com/prataprc/coalesce/coa"
)

// ErrOOM is returned by PosixMemalign when the underlying arena can't
// satisfy the request — the POSIX ENOMEM case (spec.md §6).
var ErrOOM = errors.New("cheap: out of memory")

func arena() *coa.Arena { return coa.Default() }

// Malloc rounds n up to a whole page and returns a fresh block, or nil on
// OS exhaustion. The first call anywhere in the process triggers lazy
// initialization of the default arena.
func Malloc(n int64) unsafe.Pointer {
	return arena().Alloc(n)
}

// Free returns ptr's block to the arena. Free(nil) is a no-op.
func Free(ptr unsafe.Pointer) {
	arena().Free(ptr)
}

// MallocUsableSize returns the current block size backing ptr, or 0 for
// nil or an address this allocator never returned.
func MallocUsableSize(ptr unsafe.Pointer) int64 {
	return arena().UsableSize(ptr)
}

// Calloc overflow-checks n*size, then mallocs and zero-fills. Returns nil
// on overflow or OS exhaustion, per spec.md §6.
func Calloc(n, size int64) unsafe.Pointer {
	if n == 0 || size == 0 {
		return Malloc(0)
	}
	if n < 0 || size < 0 || n > math.MaxInt64/size {
		return nil
	}
	total := n * size
	ptr := Malloc(total)
	if ptr == nil {
		return nil
	}
	zeroFill(ptr, arena().UsableSize(ptr))
	return ptr
}

func zeroFill(ptr unsafe.Pointer, n int64) {
	b := unsafe.Slice((*byte)(ptr), n)
	for i := range b {
		b[i] = 0
	}
}

// Realloc implements spec.md §6's realloc contract exactly: nil ptr
// behaves as malloc, n==0 behaves as free, a request that already fits
// the current block returns ptr unchanged, and a growing request mallocs
// fresh, copies the old contents, and frees the old block.
func Realloc(ptr unsafe.Pointer, n int64) unsafe.Pointer {
	if ptr == nil {
		return Malloc(n)
	}
	if n == 0 {
		Free(ptr)
		return nil
	}
	current := arena().UsableSize(ptr)
	if n <= current {
		return ptr
	}
	fresh := Malloc(n)
	if fresh == nil {
		return nil
	}
	copyMem(fresh, ptr, current)
	Free(ptr)
	return fresh
}

func copyMem(dst, src unsafe.Pointer, n int64) {
	d := unsafe.Slice((*byte)(dst), n)
	s := unsafe.Slice((*byte)(src), n)
	copy(d, s)
}

// PosixMemalign requires align to be no larger than the page size — every
// block this allocator hands out is already page-aligned, so anything up
// to a page is satisfied for free, and anything larger is undefined by
// contract (spec.md §6) and rejected here with coa.ErrAlignment. Returns
// ErrOOM if the underlying malloc fails.
func PosixMemalign(align, n int64) (unsafe.Pointer, error) {
	if align > arena().Pages() {
		return nil, coa.ErrAlignment
	}
	ptr := Malloc(n)
	if ptr == nil {
		return nil, ErrOOM
	}
	return ptr, nil
}

// AlignedAlloc, Valloc, Memalign and Pvalloc all reduce to Malloc by
// exploiting the page-alignment every block already carries (spec.md §6).
func AlignedAlloc(align, n int64) unsafe.Pointer {
	ptr, _ := PosixMemalign(align, n)
	return ptr
}

// Valloc returns page-aligned memory of at least n bytes.
func Valloc(n int64) unsafe.Pointer {
	return Malloc(n)
}

// Memalign is the historical (pre-POSIX) name for AlignedAlloc.
func Memalign(align, n int64) unsafe.Pointer {
	ptr, _ := PosixMemalign(align, n)
	return ptr
}

// Pvalloc rounds n up to a whole page before delegating to Malloc.
func Pvalloc(n int64) unsafe.Pointer {
	pages := arena().Pages()
	rounded := ((n + pages - 1) / pages) * pages
	return Malloc(rounded)
}
