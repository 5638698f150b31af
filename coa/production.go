//go:build !debug

package coa

// poisonBlock is a no-op in production builds: the write that debug
// builds pay for to catch use-after-free is pure overhead once a block
// is trusted to be actually free (mirroring malloc/production.go's
// zeroblkinit-skipping counterpart).
func poisonBlock(addr uintptr, size int64) {}
