package coa

import (
	"fmt"

	"github.com/prataprc/coalesce/internal/xlog"
)

// panicf logs the failure then panics, mirroring malloc/util.go's
// panicerr: internal invariant violations (spec.md §7's "reference design
// treats it as a fatal assertion") are bugs, not recoverable conditions,
// so they get a log line for the trace and a panic for the stack.
func panicf(format string, args ...interface{}) {
	xlog.Get().Errorf(format, args...)
	panic(fmt.Errorf(format, args...))
}
