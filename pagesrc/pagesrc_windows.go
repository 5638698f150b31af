//go:build windows

package pagesrc

import (
	"golang.org/x/sys/windows"
)

// osAcquire commits a zero-filled anonymous region via VirtualAlloc,
// the natural Windows counterpart to the unix mmap path — the same
// per-OS split the retrieved hive/dirty package uses between
// flush_unix.go and flush_windows.go.
func osAcquire(bytes int64) (uintptr, bool) {
	addr, err := windows.VirtualAlloc(0, uintptr(bytes),
		windows.MEM_COMMIT|windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return 0, false
	}
	return addr, true
}

// osReserve obtains address space without committing physical pages,
// via MEM_RESERVE alone.
func osReserve(bytes int64) (uintptr, bool) {
	addr, err := windows.VirtualAlloc(0, uintptr(bytes),
		windows.MEM_RESERVE, windows.PAGE_READWRITE)
	if err != nil {
		return 0, false
	}
	return addr, true
}
