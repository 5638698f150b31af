//go:build debug

package coa

import "unsafe"

// poisonFill is the byte debug builds stamp across a freed block before it
// is published back into the tree, mirroring malloc/debug.go's
// poolblkinit (spec.md-derived SPEC_FULL.md §7). A block read after free
// reads back as this byte instead of whatever garbage or stale payload
// happened to be there, which makes use-after-free bugs in tests visible
// immediately instead of only sometimes.
const poisonFill = 0xff

// poisonBlock overwrites size bytes at addr with poisonFill.
func poisonBlock(addr uintptr, size int64) {
	b := unsafe.Slice((*byte)(unsafe.Pointer(addr)), size)
	for i := range b {
		b[i] = poisonFill
	}
}
