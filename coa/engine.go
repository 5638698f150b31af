// Package coa is component E (the coalescing engine) plus the
// coalescing-arena API of component F (spec.md §4.4, §6): AllocBlock and
// FreeBlock compose pageinfo and nmtree to split oversized free blocks on
// allocation and merge adjacent free blocks on deallocation.
package coa

import (
	"github.com/prataprc/coalesce/internal/xlog"
	"github.com/prataprc/coalesce/nmtree"
	"github.com/prataprc/coalesce/pageinfo"
	"github.com/prataprc/coalesce/pagesrc"
)

// Engine implements the coalescing policy over a page-info table and a
// free-block tree. It holds no allocation-count bookkeeping of its own;
// Arena wraps it with the accounting spec.md's adapters expect.
type Engine struct {
	pages         *pageinfo.Table
	tree          *nmtree.Tree
	src           pagesrc.Source
	pageBytes     int64
	hugePageBytes int64
	log           xlog.Logger
}

func newEngine(pages *pageinfo.Table, tree *nmtree.Tree, src pagesrc.Source, pageBytes, hugePageBytes int64) *Engine {
	return &Engine{
		pages: pages, tree: tree, src: src,
		pageBytes: pageBytes, hugePageBytes: hugePageBytes,
		log: xlog.Get(),
	}
}

func roundUpPages(bytes, pageBytes int64) int64 {
	if bytes <= 0 {
		return pageBytes
	}
	n := (bytes + pageBytes - 1) / pageBytes
	return n * pageBytes
}

func boundaryAddrs(addr uintptr, size, pageBytes int64) (first, last uintptr) {
	first = addr
	if size <= pageBytes {
		last = addr
	} else {
		last = addr + uintptr(size) - uintptr(pageBytes)
	}
	return first, last
}

func (e *Engine) publishBoundaries(addr uintptr, size int64) {
	first, last := boundaryAddrs(addr, size, e.pageBytes)
	e.pages.Set(first, pageinfo.Entry(size))
	if last != first {
		e.pages.Set(last, pageinfo.Entry(-size))
	}
}

func (e *Engine) clearBoundaries(addr uintptr, size int64) {
	first, last := boundaryAddrs(addr, size, e.pageBytes)
	e.pages.Set(first, 0)
	if last != first {
		e.pages.Set(last, 0)
	}
}

// AllocBlock implements spec.md §4.4's alloc_block: round up to a page,
// take the smallest sufficiently large free block, splitting off and
// reinserting the remainder if it's larger than requested, falling back
// to a fresh OS region when the tree has nothing big enough.
func (e *Engine) AllocBlock(requestedBytes int64) (uintptr, bool) {
	size := roundUpPages(requestedBytes, e.pageBytes)

	key, ok := e.tree.RemoveLowerBound(nmtree.Key{Size: size})
	if !ok {
		acquire := size
		if e.hugePageBytes > acquire {
			acquire = e.hugePageBytes
		}
		base, ok := e.src.Acquire(acquire)
		if !ok {
			e.log.Warnf("coa: OS denied acquisition of %d bytes", acquire)
			return 0, false
		}
		key = nmtree.Key{Size: acquire, Addr: int64(base)}
		e.publishBoundaries(base, acquire)
	}

	if key.Size == size {
		return uintptr(key.Addr), true
	}

	// Split: the tree/OS gave us more than asked. Clear the whole block's
	// boundaries, publish the prefix and suffix separately, and return
	// the leftover suffix to the tree (spec.md §4.4 step 4).
	e.clearBoundaries(uintptr(key.Addr), key.Size)

	prefixAddr := uintptr(key.Addr)
	suffixAddr := prefixAddr + uintptr(size)
	suffixSize := key.Size - size

	e.publishBoundaries(prefixAddr, size)
	e.publishBoundaries(suffixAddr, suffixSize)

	suffixKey := nmtree.Key{Size: suffixSize, Addr: int64(suffixAddr)}
	if !e.tree.Insert(suffixKey) {
		panicf("coa: insert of split suffix %+v failed, tree corruption", suffixKey)
	}

	return prefixAddr, true
}

// neighborFromBackEntry reconstructs a backward neighbor's (size, base)
// from the page-info entry one page before addr (spec.md §4.4 step 3):
// either that page is the sole page of a one-page block, or the last
// page of a larger one ending exactly at addr.
func neighborFromBackEntry(addr uintptr, back pageinfo.Entry, pageBytes int64) (size int64, base uintptr, ok bool) {
	switch {
	case int64(back) == pageBytes:
		return pageBytes, addr - uintptr(pageBytes), true
	case back < 0:
		size = int64(-back)
		return size, addr - uintptr(size), true
	default:
		return 0, 0, false
	}
}

// FreeBlock implements spec.md §4.4's free_block: clear this block's
// boundaries, then attempt exactly one backward and one forward merge,
// publishing and reinserting whatever the probes leave us with.
func (e *Engine) FreeBlock(addr uintptr, strictFree bool) {
	entry := e.pages.Get(addr)
	if entry <= 0 {
		if strictFree {
			e.log.Errorf("coa: free of unknown pointer %#x", addr)
			panic(ErrInvalidFree)
		}
		e.log.Warnf("coa: ignoring free of unknown pointer %#x", addr)
		return
	}

	key := nmtree.Key{Size: int64(entry), Addr: int64(addr)}
	e.clearBoundaries(addr, key.Size)

	if addr >= uintptr(e.pageBytes) {
		backAddr := addr - uintptr(e.pageBytes)
		if back := e.pages.Get(backAddr); back != 0 {
			if nsize, nbase, ok := neighborFromBackEntry(addr, back, e.pageBytes); ok {
				nkey := nmtree.Key{Size: nsize, Addr: int64(nbase)}
				if e.tree.Remove(nkey) {
					e.clearBoundaries(nbase, nsize)
					key.Addr = nkey.Addr
					key.Size += nkey.Size
				}
			}
		}
	}

	fwdAddr := uintptr(key.Addr) + uintptr(key.Size)
	if fwd := e.pages.Get(fwdAddr); fwd > 0 {
		nkey := nmtree.Key{Size: int64(fwd), Addr: int64(fwdAddr)}
		if e.tree.Remove(nkey) {
			e.clearBoundaries(fwdAddr, nkey.Size)
			key.Size += nkey.Size
		}
	}

	poisonBlock(uintptr(key.Addr), key.Size)
	e.publishBoundaries(uintptr(key.Addr), key.Size)
	if !e.tree.Insert(key) {
		panicf("coa: insert of merged block %+v failed, tree corruption", key)
	}
}
