// Package pageinfo implements component B of the coalescing allocator: a
// flat, address-indexed side table recording block boundaries so the
// coalescing engine (package coa) can discover a freed block's physical
// neighbors without walking the free-block tree.
//
// A single signed int64 slot per page encodes the boundary: 0 means "not a
// boundary", +S means "first page of a size-S block", -S means "last page
// of a size-S block". The table never resizes and is never released; its
// backing storage is a sparse virtual-memory reservation so that pages
// never touched by Set/CAS never consume physical memory (see
// pagesrc.Source.Reserve).
package pageinfo

import (
	"fmt"
	"reflect"
	"sync/atomic"
	"unsafe"

	"github.com/prataprc/coalesce/internal/config"
	"github.com/prataprc/coalesce/pagesrc"
)

// IndexBits controls the table's addressable span: 2^IndexBits slots of
// 8 bytes each. The reference design cites 36 bits on 48-bit x86-64 after
// truncating the 12 low page-offset bits; that yields a 512GiB sparse
// reservation, well within what a lazily-committed anonymous mapping can
// absorb on a 64-bit host.
const IndexBits = 36

// Entry is a page-info slot value. See package doc for the encoding.
type Entry int64

// Table is the process-wide page-info side table. Created once via New,
// never resized, never freed (spec.md §3).
type Table struct {
	slots    []int64
	pageBits uint
	mask     uintptr
}

// New reserves the table's backing storage from src and returns a Table
// keyed by page addresses with pageBits low bits of page-offset truncated.
// indexBits sizes the table to 2^indexBits slots; production callers
// should use IndexBits, tests may pass a smaller value to keep the
// reservation trivial.
func New(src pagesrc.Source, pageBits uint, indexBits uint) *Table {
	nslots := int64(1) << indexBits
	bytes := nslots * 8
	base, ok := src.Reserve(bytes)
	if !ok {
		panicf("pageinfo: OS denied reservation of %d bytes", bytes)
	}
	var slots []int64
	hdr := (*reflect.SliceHeader)(unsafe.Pointer(&slots))
	hdr.Data, hdr.Len, hdr.Cap = base, int(nslots), int(nslots)
	return &Table{
		slots:    slots,
		pageBits: pageBits,
		mask:     uintptr(nslots - 1),
	}
}

// NewDefault reserves a production-sized table against pagesrc.Default,
// keyed by config.PageSize pages.
func NewDefault() *Table {
	return New(pagesrc.Default, pageBitsOf(config.PageSize), IndexBits)
}

func pageBitsOf(pageSize int64) uint {
	bits := uint(0)
	for (int64(1) << bits) < pageSize {
		bits++
	}
	return bits
}

func (t *Table) key(addr uintptr) uintptr {
	return (addr >> t.pageBits) & t.mask
}

// Get atomically loads the page-info entry for the page containing addr.
func (t *Table) Get(addr uintptr) Entry {
	idx := t.key(addr)
	return Entry(atomic.LoadInt64(&t.slots[idx]))
}

// Set atomically stores the page-info entry for the page containing addr.
func (t *Table) Set(addr uintptr, entry Entry) {
	idx := t.key(addr)
	atomic.StoreInt64(&t.slots[idx], int64(entry))
}

// CAS atomically compares-and-swaps the page-info entry for the page
// containing addr. Package coa's engine does not call it: it publishes
// and clears boundaries with Set, and a neighbor counts as claimed only
// once nmtree.Tree.Remove succeeds on its key.
func (t *Table) CAS(addr uintptr, expected, desired Entry) bool {
	idx := t.key(addr)
	return atomic.CompareAndSwapInt64(&t.slots[idx], int64(expected), int64(desired))
}

// panicf mirrors the teacher's malloc/util.go panicerr helper.
func panicf(format string, args ...interface{}) {
	panic(fmt.Errorf(format, args...))
}
