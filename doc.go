// Package coalesce implements a page-granularity memory allocator with
// block coalescing.
//
// pagesrc:
//
// OS page primitive. Requests contiguous zero-filled regions from the
// operating system at page granularity; regions are never released.
//
// pageinfo:
//
// Flat, address-indexed side table recording per-page block-boundary
// metadata, mutated only through atomic loads, stores and
// compare-and-swaps.
//
// nmtree:
//
// Lock-free free-block index keyed by (size, address), a Natarajan–Mittal
// external binary search tree using edge flag/tag bits for safe
// concurrent deletion.
//
// nodepool:
//
// Per-goroutine free-list node allocator supplying nmtree's storage
// without recursing into the allocator being built.
//
// coa:
//
// The coalescing engine (AllocBlock/FreeBlock) and the coalescing-arena
// API built on top of it.
//
// cheap:
//
// A C-heap-compatible malloc/free/calloc/realloc surface built on coa.
package coalesce
