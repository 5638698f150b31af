package cheap

import (
	"testing"
	"unsafe"
)

// TestCallocZeroInit is scenario S4 from spec.md §8.
func TestCallocZeroInit(t *testing.T) {
	p := Calloc(1000, 8)
	if p == nil {
		t.Fatalf("expected non-nil calloc result")
	}
	defer Free(p)

	if got := MallocUsableSize(p); got != 8192 {
		t.Errorf("expected block size 8192, got %d", got)
	}
	b := unsafe.Slice((*byte)(p), 8000)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not zeroed: %d", i, v)
			break
		}
	}
}

func TestCallocOverflow(t *testing.T) {
	huge := int64(1) << 62
	if p := Calloc(huge, huge); p != nil {
		t.Errorf("expected overflow to yield nil, got %v", p)
	}
}

// TestReallocGrowPreservesData is scenario S5 from spec.md §8.
func TestReallocGrowPreservesData(t *testing.T) {
	p := Malloc(4096)
	if p == nil {
		t.Fatalf("expected non-nil malloc result")
	}
	b := unsafe.Slice((*byte)(p), 4096)
	for i := range b {
		b[i] = byte(i)
	}

	q := Realloc(p, 4097)
	if q == nil {
		t.Fatalf("expected non-nil realloc result")
	}
	if q == p {
		t.Errorf("expected realloc to a larger size class to move the block")
	}
	nb := unsafe.Slice((*byte)(q), 4096)
	for i := range nb {
		if nb[i] != byte(i) {
			t.Fatalf("byte %d not preserved across realloc: got %d want %d", i, nb[i], byte(i))
		}
	}
	Free(q)
}

func TestReallocShrinkKeepsPointer(t *testing.T) {
	p := Malloc(8192)
	defer Free(p)
	q := Realloc(p, 100)
	if q != p {
		t.Errorf("expected realloc within the same size class to return the same pointer")
	}
}

func TestReallocNilIsMalloc(t *testing.T) {
	p := Realloc(nil, 4096)
	if p == nil {
		t.Fatalf("expected realloc(nil, n) to behave as malloc")
	}
	Free(p)
}

func TestReallocZeroIsFree(t *testing.T) {
	p := Malloc(4096)
	if q := Realloc(p, 0); q != nil {
		t.Errorf("expected realloc(p, 0) to return nil")
	}
}

func TestMallocUsableSizeRoundTrip(t *testing.T) {
	p := Malloc(10)
	defer Free(p)
	if got := MallocUsableSize(p); got < 10 {
		t.Errorf("expected usable size >= 10, got %d", got)
	}
	if MallocUsableSize(nil) != 0 {
		t.Errorf("expected usable size of nil to be 0")
	}
}

func TestPosixMemalignRejectsOversizedAlignment(t *testing.T) {
	if _, err := PosixMemalign(1<<20, 4096); err == nil {
		t.Errorf("expected an alignment beyond the page size to be rejected")
	}
}

func TestPvallocRoundsUp(t *testing.T) {
	p := Pvalloc(1)
	defer Free(p)
	if got := MallocUsableSize(p); got != 4096 {
		t.Errorf("expected pvalloc(1) to round up to one page, got %d", got)
	}
}
