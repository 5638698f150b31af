package nodepool

import (
	"sync"
	"testing"
)

type cell struct {
	a, b int64
}

func TestGetReturnsDistinctZeroedCells(t *testing.T) {
	p := New[cell](4096)
	a := p.Get()
	b := p.Get()
	if a == b {
		t.Fatalf("expected distinct cells, got the same pointer twice")
	}
	if a.a != 0 || a.b != 0 {
		t.Errorf("expected a fresh cell to be zero-valued, got %+v", *a)
	}
	a.a = 7
	if b.a == 7 {
		t.Errorf("writing through one cell must not affect another")
	}
}

func TestGetRefillsAcrossSlabBoundary(t *testing.T) {
	// A tiny hugePageBytes forces New to clamp cellsPerSlab to its floor
	// of 64; ask for more than that to exercise the refill path.
	p := New[cell](1)
	seen := make(map[*cell]bool)
	for i := 0; i < 200; i++ {
		c := p.Get()
		if seen[c] {
			t.Fatalf("Get returned an already-issued cell at iteration %d", i)
		}
		seen[c] = true
	}
}

func TestPutIsANoOp(t *testing.T) {
	p := New[cell](4096)
	c := p.Get()
	c.a = 42
	p.Put(c)
	if c.a != 42 {
		t.Errorf("Put must not mutate or reclaim the cell it's handed")
	}
}

// TestConcurrentGetNeverAliases exercises the per-goroutine shard path:
// many goroutines pulling cells concurrently must never observe the same
// cell pointer twice.
func TestConcurrentGetNeverAliases(t *testing.T) {
	p := New[cell](4096)
	const workers = 16
	const perWorker = 500

	results := make([][]*cell, workers)
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			cells := make([]*cell, perWorker)
			for i := range cells {
				cells[i] = p.Get()
			}
			results[w] = cells
		}(w)
	}
	wg.Wait()

	seen := make(map[*cell]bool, workers*perWorker)
	for _, cells := range results {
		for _, c := range cells {
			if seen[c] {
				t.Fatalf("cell %p handed out to more than one caller", c)
			}
			seen[c] = true
		}
	}
}
