// Package nodepool is component D of the coalescing allocator: a
// per-thread free-list carved from large regions, supplying tree nodes to
// package nmtree without recursing into the allocator being built
// (spec.md §4.3).
//
// The teacher's own take on this idea is malloc/pool_flist.go: a base
// pointer sliced into fixed-size cells with a freelist and a
// prev/next-linked chain of slabs. That version slices raw C-heap memory
// (via cgo's C.malloc) because its cells are opaque byte blocks with no
// Go pointers inside them. Our cells (nmtree's nodes) hold live
// atomic.Pointer fields, so slicing them out of unmanaged memory would
// hide those pointers from Go's precise garbage collector — memory-unsafe
// regardless of how carefully it's tagged. This pool instead carves cells
// out of ordinary Go-heap slabs sized like a huge page's worth of cells,
// keeping the "one huge-page region per refill, never returned, never
// reused after retirement" shape of the reference design while staying
// inside what Go's GC can track (see DESIGN.md).
package nodepool

import (
	"sync"
	"unsafe"
)

// shard is one thread's slab-in-progress: a slice of T with a bump
// pointer into unused cells, mirroring poolflist's freeoff counter.
type shard[T any] struct {
	slab []T
	next int64
}

// Pool hands out *T cells drawn from per-goroutine shards. Retirement
// (Put) is a no-op: spec.md §4.3 makes cell retirement a no-op in the
// reference design, and once a cell becomes unreachable from live tree
// structure Go's collector reclaims it — there is nothing for this pool
// to do on the way back.
type Pool[T any] struct {
	cellsPerSlab int64
	shards       sync.Pool
}

// New builds a Pool whose slabs hold roughly hugePageBytes worth of T
// cells each, echoing the reference design's "one huge-page region"
// refill unit (spec.md §4.3).
func New[T any](hugePageBytes int64) *Pool[T] {
	var zero T
	cellSize := int64(unsafe.Sizeof(zero))
	if cellSize == 0 {
		cellSize = 1
	}
	cellsPerSlab := hugePageBytes / cellSize
	if cellsPerSlab < 64 {
		cellsPerSlab = 64
	}
	p := &Pool[T]{cellsPerSlab: cellsPerSlab}
	p.shards.New = func() interface{} {
		return &shard[T]{slab: make([]T, cellsPerSlab)}
	}
	return p
}

// Get pops one cell, refilling the calling goroutine's shard from a fresh
// slab when exhausted.
func (p *Pool[T]) Get() *T {
	sh := p.shards.Get().(*shard[T])
	if sh.next >= int64(len(sh.slab)) {
		sh.slab = make([]T, p.cellsPerSlab)
		sh.next = 0
	}
	cell := &sh.slab[sh.next]
	sh.next++
	p.shards.Put(sh)
	return cell
}

// Put is the reference design's retire(node): a no-op. Kept as a method
// so callers can write allocator code that reads the same whether or not
// a future implementation layers reclamation on top (spec.md §9).
func (p *Pool[T]) Put(*T) {}
