// Package config carries the tunable parameters of the coalescing
// allocator, keyed the way the rest of this codebase's teacher keys its
// settings: a flat gosettings.Settings map with typed accessors.
package config

import (
	s "github.com/prataprc/gosettings"
)

// Page size in bytes. Fixed at the conventional 4KiB; spec.md's examples
// (S1-S6) are all expressed against this value.
const PageSize = int64(4096)

// HugePageSize is the default unit of OS acquisition when the free-block
// tree cannot satisfy a request.
const HugePageSize = int64(2 * 1024 * 1024)

// Settings keys recognized by coa.Init and cheap's default arena.
const (
	KeyHugePageBytes = "huge_page_bytes"
	KeyPageBytes     = "page_bytes"
	KeyStrictFree    = "strict_free"
	KeyLogLevel      = "log.level"
	KeyLogFile       = "log.file"
	KeyInitialPages  = "initial_pages"
)

// Default returns the baseline settings, mirroring the teacher's
// malloc.Defaultsettings pattern of a plain settings literal with
// documented keys.
//
// "huge_page_bytes" (int64, default: 2MiB)
//		Unit of OS acquisition used whenever the free-block tree cannot
//		satisfy a request.
//
// "page_bytes" (int64, default: 4096)
//		Page granularity. Every allocation is rounded up to a multiple
//		of this value.
//
// "strict_free" (bool, default: true)
//		When true, freeing a pointer with no positive page-info entry
//		panics (matches the standard C heap's undefined-behavior
//		contract). When false, it is silently ignored.
//
// "initial_pages" (int64, default: 0)
//		Pages to eagerly acquire from the OS at Init time.
//
// "log.level" (string, default: "info")
//		Level name passed to internal/xlog.SetLogger.
//
// "log.file" (string, default: "", meaning os.Stdout)
//		Path to redirect the default logger's output to, opened for
//		append. Left unset, the default logger keeps writing to
//		os.Stdout.
func Default() s.Settings {
	return s.Settings{
		KeyHugePageBytes: HugePageSize,
		KeyPageBytes:     PageSize,
		KeyStrictFree:    true,
		KeyInitialPages:  int64(0),
		KeyLogLevel:      "info",
	}
}

// Settings alias, kept local so callers don't need to import gosettings
// directly for the common case.
type Settings = s.Settings

// Int64 fetches a numeric setting, tolerating the handful of numeric
// representations JSON/YAML-sourced settings tend to arrive as, falling
// back to def when the key is absent or of an unexpected type. Mirrors
// the teacher's own config.Int64 behavior (malloc/config.go,
// lib/settings.go) without taking on a method-set dependency on
// gosettings beyond its map shape.
func Int64(setts Settings, key string, def int64) int64 {
	val, ok := setts[key]
	if !ok {
		return def
	}
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	case uint64:
		return int64(v)
	}
	return def
}

// Bool fetches a boolean setting, falling back to def.
func Bool(setts Settings, key string, def bool) bool {
	val, ok := setts[key]
	if !ok {
		return def
	}
	if v, ok := val.(bool); ok {
		return v
	}
	return def
}

// String fetches a string setting, falling back to def.
func String(setts Settings, key string, def string) string {
	val, ok := setts[key]
	if !ok {
		return def
	}
	if v, ok := val.(string); ok {
		return v
	}
	return def
}
