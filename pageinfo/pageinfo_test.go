package pageinfo

import (
	"testing"

	"github.com/prataprc/coalesce/pagesrc"
)

// smallTable builds a table with a trivial reservation so tests don't
// depend on multi-hundred-gigabyte virtual memory.
func smallTable(t *testing.T) *Table {
	t.Helper()
	return New(pagesrc.Default, 12, 16) // 4KiB pages, 64K slots (512KiB table)
}

func TestGetSetRoundtrip(t *testing.T) {
	tbl := smallTable(t)
	addr := uintptr(0x1000)
	if e := tbl.Get(addr); e != 0 {
		t.Fatalf("expected zero-valued fresh slot, got %v", e)
	}
	tbl.Set(addr, Entry(4096))
	if e := tbl.Get(addr); e != 4096 {
		t.Errorf("expected 4096, got %v", e)
	}
}

func TestCAS(t *testing.T) {
	tbl := smallTable(t)
	addr := uintptr(0x2000)
	if !tbl.CAS(addr, 0, Entry(8192)) {
		t.Fatalf("expected CAS from zero to succeed")
	}
	if tbl.CAS(addr, 0, Entry(1234)) {
		t.Errorf("expected CAS against stale expected value to fail")
	}
	if e := tbl.Get(addr); e != 8192 {
		t.Errorf("expected 8192 after successful CAS, got %v", e)
	}
}

func TestSamePageSameSlot(t *testing.T) {
	tbl := smallTable(t)
	base := uintptr(0x3000)
	tbl.Set(base, Entry(4096))
	if e := tbl.Get(base + 100); e != 4096 {
		t.Errorf("expected offset within same page to see same entry, got %v", e)
	}
}
