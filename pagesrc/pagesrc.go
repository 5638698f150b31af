// Package pagesrc is component A of the coalescing allocator: the OS-level
// page primitive. It hands out contiguous, zero-filled, page-aligned
// regions on request and never returns them to the OS (spec.md's
// "returning memory to the OS" is an explicit non-goal).
//
// The heavy lifting — the actual mmap/VirtualAlloc syscalls — lives in
// platform-specific files (pagesrc_linux.go, pagesrc_bsd.go,
// pagesrc_windows.go), following the same per-OS build-tag split the
// retrieved hivekit package uses for its dirty-range flush primitive
// (hive/dirty/flush_unix.go, flush_windows.go).
package pagesrc

import (
	"sync/atomic"

	"github.com/prataprc/coalesce/internal/xlog"
)

// Source models the OS-level region primitive that the coalescing engine
// (component E) falls back on when the free-block tree cannot satisfy a
// request.
type Source interface {
	// Acquire obtains a committed, zero-filled region of at least `bytes`,
	// rounded up to the platform's allocation granularity. Returns false
	// on OS-reported out-of-memory.
	Acquire(bytes int64) (base uintptr, ok bool)

	// Reserve obtains address space for `bytes` without committing
	// physical pages, for sparse tables (pageinfo) that rely on the OS's
	// own demand paging to keep untouched regions free.
	Reserve(bytes int64) (base uintptr, ok bool)
}

var acquireCount int64
var reserveCount int64

// AcquireCount returns the number of times Acquire has invoked the OS
// primitive, process-wide. Scenario S3 in spec.md §8 asserts this stays
// at 1 across two allocations carved from the same huge-page region.
func AcquireCount() int64 { return atomic.LoadInt64(&acquireCount) }

// ReserveCount returns the number of times Reserve has invoked the OS
// primitive, process-wide.
func ReserveCount() int64 { return atomic.LoadInt64(&reserveCount) }

// Default is the process-wide OS page source. Tests may substitute a
// smaller-granularity Source; production code uses this value.
var Default Source = &osSource{}

type osSource struct{}

func (s *osSource) Acquire(bytes int64) (uintptr, bool) {
	base, ok := osAcquire(bytes)
	if ok {
		atomic.AddInt64(&acquireCount, 1)
		xlog.Get().Debugf("pagesrc: acquired %d bytes at 0x%x", bytes, base)
	} else {
		xlog.Get().Warnf("pagesrc: OS denied acquire of %d bytes", bytes)
	}
	return base, ok
}

func (s *osSource) Reserve(bytes int64) (uintptr, bool) {
	base, ok := osReserve(bytes)
	if ok {
		atomic.AddInt64(&reserveCount, 1)
		xlog.Get().Debugf("pagesrc: reserved %d bytes at 0x%x", bytes, base)
	} else {
		xlog.Get().Warnf("pagesrc: OS denied reservation of %d bytes", bytes)
	}
	return base, ok
}
