package coalesce

import (
	"unsafe"

	"github.com/prataprc/coalesce/coa"
	"github.com/prataprc/coalesce/internal/config"
)

// Allocator is the accounting-and-lifecycle surface every coa.Arena
// satisfies, narrowed from the teacher's api.Mallocer interface to what a
// page-granularity, non-size-classed allocator actually has: no
// Slabs/Allocslab/Slabsize/Chunklen, since this design has no fixed slab
// sizes to report (spec.md §1's size-class-bucketing non-goal).
type Allocator interface {
	Alloc(bytes int64) unsafe.Pointer
	AllocPages(pages int64) unsafe.Pointer
	Free(ptr unsafe.Pointer)
	Info() (capacity, acquired, allocated, overhead int64)
	Utilization() (sizes []int64, pct []float64)
}

var _ Allocator = (*coa.Arena)(nil)

// NewArena is a package-level convenience constructor equivalent to
// coa.Init, kept at the root so callers who only need the high-level
// arena API don't need to import package coa directly.
func NewArena(setts config.Settings) *coa.Arena {
	return coa.Init(setts)
}

// DefaultSettings returns the baseline configuration NewArena/coa.Init
// use when passed nil.
func DefaultSettings() config.Settings {
	return config.Default()
}
