// Command coastress runs spec.md §8's scenario S6: N goroutines each
// perform M random alloc/free pairs of random page counts, then it prints
// the OS acquisition count, the arena's accounting and the bytes still
// held, from which the end-state invariant (total bytes acquired from the
// OS equals live bytes plus the coalesced free remainder) can be read.
// It does not assert the invariant itself.
package main

import (
	"flag"
	"fmt"
	"math/rand"
	"sync"
	"unsafe"

	"github.com/prataprc/coalesce/coa"
	"github.com/prataprc/coalesce/internal/config"
	"github.com/prataprc/coalesce/pagesrc"
)

var options struct {
	workers    int
	iterations int
	maxPages   int
	seed       int64
}

func argParse() {
	flag.IntVar(&options.workers, "workers", 8, "number of concurrent goroutines")
	flag.IntVar(&options.iterations, "iterations", 2000, "alloc/free pairs per goroutine")
	flag.IntVar(&options.maxPages, "maxpages", 8, "largest random allocation, in pages")
	flag.Int64Var(&options.seed, "seed", 1, "PRNG seed")
	flag.Parse()
}

func main() {
	argParse()
	arena := coa.Init(config.Default())

	before := pagesrc.AcquireCount()
	live := runWorkers(arena)
	after := pagesrc.AcquireCount()

	capacity, _, allocated, overhead := arena.Info()
	fmt.Printf("os acquisitions: %d\n", after-before)
	fmt.Printf("capacity=%d allocated=%d overhead=%d live-tracked=%d\n",
		capacity, allocated, overhead, live)

	samples, mean, min, max := arena.AllocSizeStats()
	fmt.Printf("alloc sizes: n=%d mean=%d min=%d max=%d\n", samples, mean, min, max)

	sizes, pct := arena.Utilization()
	for i, size := range sizes {
		fmt.Printf("size>=%-10d %.2f%%\n", size, pct[i])
	}
}

// runWorkers fires up options.workers goroutines, each doing
// options.iterations random alloc/free pairs, and returns the number of
// bytes left carved-out (not freed) across all of them at the end.
func runWorkers(arena *coa.Arena) int64 {
	var wg sync.WaitGroup
	var mu sync.Mutex
	var liveBytes int64

	for w := 0; w < options.workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			rng := rand.New(rand.NewSource(options.seed + int64(w)))
			var held []unsafe.Pointer
			for i := 0; i < options.iterations; i++ {
				pages := int64(rng.Intn(options.maxPages) + 1)
				p := arena.AllocPages(pages)
				if p == nil {
					continue
				}
				held = append(held, p)
				if len(held) > 1 && rng.Intn(2) == 0 {
					j := rng.Intn(len(held))
					arena.Free(held[j])
					held[j] = held[len(held)-1]
					held = held[:len(held)-1]
				}
			}
			var sum int64
			for _, p := range held {
				sum += arena.UsableSize(p)
			}
			mu.Lock()
			liveBytes += sum
			mu.Unlock()
		}(w)
	}
	wg.Wait()
	return liveBytes
}
