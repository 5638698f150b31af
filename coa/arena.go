package coa

import (
	"sync"
	"sync/atomic"
	"unsafe"

	"github.com/prataprc/coalesce/internal/config"
	"github.com/prataprc/coalesce/internal/stats"
	"github.com/prataprc/coalesce/internal/xlog"
	"github.com/prataprc/coalesce/nmtree"
	"github.com/prataprc/coalesce/pageinfo"
	"github.com/prataprc/coalesce/pagesrc"
)

// Arena is the coalescing-arena API of spec.md §6: Init/Alloc/AllocPages/
// Free, plus the accounting supplement of SPEC_FULL.md §12 (Info,
// Utilization, Pages) modeled on the teacher's malloc.Arena.
type Arena struct {
	engine     *Engine
	pageBytes  int64
	strictFree bool

	acquired  int64 // bytes obtained from the OS, cumulative
	allocated int64 // bytes currently carved out to callers

	sizes *stats.AverageInt64
	util  *stats.HistogramInt64
}

// Init builds an Arena from setts (see internal/config for recognized
// keys), matching spec.md §6's coa_init: sets up the page-info table and
// tree, and if "initial_pages" is positive, eagerly acquires that many
// pages and seeds the tree with one free block covering them.
func Init(setts config.Settings) *Arena {
	if setts == nil {
		setts = config.Default()
	}
	pageBytes := config.Int64(setts, config.KeyPageBytes, config.PageSize)
	hugeBytes := config.Int64(setts, config.KeyHugePageBytes, config.HugePageSize)
	strictFree := config.Bool(setts, config.KeyStrictFree, true)

	if level := config.String(setts, config.KeyLogLevel, ""); level != "" {
		xlog.SetLogger(nil, level)
	}
	if path := config.String(setts, config.KeyLogFile, ""); path != "" {
		if err := xlog.SetOutputFile(path); err != nil {
			panicf("coa: failed to open log file %q: %v", path, err)
		}
	}

	pages := pageinfo.NewDefault()
	tree := nmtree.New()

	a := &Arena{
		engine:     newEngine(pages, tree, pagesrc.Default, pageBytes, hugeBytes),
		pageBytes:  pageBytes,
		strictFree: strictFree,
		sizes:      &stats.AverageInt64{},
		util:       stats.NewHistogramInt64(0, hugeBytes*4, pageBytes),
	}

	if initial := config.Int64(setts, config.KeyInitialPages, 0); initial > 0 {
		bytes := initial * pageBytes
		base, ok := pagesrc.Default.Acquire(bytes)
		if !ok {
			panicf("coa: init failed to acquire %d initial pages", initial)
		}
		a.engine.publishBoundaries(base, bytes)
		if !tree.Insert(nmtree.Key{Size: bytes, Addr: int64(base)}) {
			panicf("coa: init failed to seed tree with initial region")
		}
		atomic.AddInt64(&a.acquired, bytes)
	}

	return a
}

// Alloc rounds bytes up to a whole page and returns a pointer to a fresh
// block, or nil on OS exhaustion (spec.md §6's coa_alloc).
func (a *Arena) Alloc(bytes int64) unsafe.Pointer {
	before := pagesrc.AcquireCount()
	addr, ok := a.engine.AllocBlock(bytes)
	if !ok {
		return nil
	}
	if after := pagesrc.AcquireCount(); after != before {
		size := roundUpPages(bytes, a.pageBytes)
		if size < a.pageBytes {
			size = a.pageBytes
		}
		hugeAcquired := a.hugeAcquiredSize(size)
		atomic.AddInt64(&a.acquired, hugeAcquired)
	}
	size := a.engine.pages.Get(addr)
	atomic.AddInt64(&a.allocated, int64(size))
	a.sizes.Add(int64(size))
	a.util.Add(int64(size))
	return unsafe.Pointer(addr)
}

// hugeAcquiredSize mirrors AllocBlock's own "max(requested, huge page)"
// decision so Info()'s acquired-byte counter matches what the OS actually
// handed out, without AllocBlock needing to report it explicitly.
func (a *Arena) hugeAcquiredSize(requested int64) int64 {
	if a.engine.hugePageBytes > requested {
		return a.engine.hugePageBytes
	}
	return requested
}

// AllocPages is Alloc expressed in whole pages (spec.md §6's
// coa_alloc_pages).
func (a *Arena) AllocPages(pages int64) unsafe.Pointer {
	return a.Alloc(pages * a.pageBytes)
}

// Free returns ptr's block to the arena, coalescing with free physical
// neighbors. A nil ptr is a no-op (spec.md §6's coa_free).
func (a *Arena) Free(ptr unsafe.Pointer) {
	if ptr == nil {
		return
	}
	addr := uintptr(ptr)
	size := a.engine.pages.Get(addr)
	a.engine.FreeBlock(addr, a.strictFree)
	if size > 0 {
		atomic.AddInt64(&a.allocated, -int64(size))
	}
}

// UsableSize returns the current size of the block at ptr, or 0 if ptr is
// nil or unknown — the C-heap adapters' malloc_usable_size.
func (a *Arena) UsableSize(ptr unsafe.Pointer) int64 {
	if ptr == nil {
		return 0
	}
	entry := a.engine.pages.Get(uintptr(ptr))
	if entry <= 0 {
		return 0
	}
	return int64(entry)
}

// Pages returns the arena's page size in bytes.
func (a *Arena) Pages() int64 { return a.pageBytes }

// Info returns coarse accounting: capacity (bytes ever acquired from the
// OS), acquired (alias of capacity, kept for readability at call sites),
// allocated (bytes currently carved out), and overhead (acquired minus
// allocated — free-but-held memory). Adapted from malloc/arena.go's
// Memory/Allocated/Available trio.
func (a *Arena) Info() (capacity, acquired, allocated, overhead int64) {
	acq := atomic.LoadInt64(&a.acquired)
	alloc := atomic.LoadInt64(&a.allocated)
	return acq, acq, alloc, acq - alloc
}

// Utilization reports the distribution of allocated block sizes as a
// histogram, adapted from malloc/arena.go's Utilization.
func (a *Arena) Utilization() (sizes []int64, pct []float64) {
	return a.util.Buckets()
}

// AllocSizeStats reports running statistics (sample count, mean, min, max)
// over every block size handed out by Alloc, adapted from the teacher's
// lib.AverageInt64 accounting.
func (a *Arena) AllocSizeStats() (samples, mean, min, max int64) {
	return a.sizes.Samples(), a.sizes.Mean(), a.sizes.Min(), a.sizes.Max()
}

var (
	defaultOnce sync.Once
	defaultArn  *Arena
)

// Default lazily initializes and returns the package-wide default arena
// package cheap wraps, using config.Default(). Exactly one goroutine ever
// runs Init, via sync.Once (SPEC_FULL.md §6).
func Default() *Arena {
	defaultOnce.Do(func() {
		defaultArn = Init(config.Default())
	})
	return defaultArn
}
