package coa

import "errors"

// Flat sentinel errors, mirroring the teacher's own errors.go: a handful
// of package-level vars rather than a custom error type hierarchy.
var (
	// ErrInvalidFree is raised (as a panic in strict mode) when a pointer
	// handed to Free carries no positive page-info entry — spec.md §7's
	// "free of an unknown pointer" precondition violation.
	ErrInvalidFree = errors.New("coa: free of pointer not returned by this allocator")

	// ErrAlignment is returned by PosixMemalign when the requested
	// alignment exceeds the page size, the one case spec.md §6 leaves
	// undefined for this allocator (every block is already page-aligned).
	ErrAlignment = errors.New("coa: requested alignment exceeds page size")
)
