// Package stats carries small accounting helpers for the coalescing
// arena's Info()/Utilization() accessors — adapted from the teacher's
// lib.AverageInt64, made safe for concurrent Add() calls from multiple
// allocating goroutines via a mutex (the samples themselves are cheap to
// record; a lock-free histogram is not worth the complexity here).
package stats

import (
	"math"
	"sync"
)

// AverageInt64 computes running mean, variance and extrema over a stream
// of int64 samples.
type AverageInt64 struct {
	mu     sync.Mutex
	n      int64
	minval int64
	maxval int64
	sum    int64
	sumsq  float64
	init   bool
}

// Add a sample.
func (av *AverageInt64) Add(sample int64) {
	av.mu.Lock()
	defer av.mu.Unlock()
	av.n++
	av.sum += sample
	f := float64(sample)
	av.sumsq += f * f
	if !av.init || sample < av.minval {
		av.minval = sample
		av.init = true
	}
	if av.maxval < sample {
		av.maxval = sample
	}
}

// Min sample observed so far.
func (av *AverageInt64) Min() int64 {
	av.mu.Lock()
	defer av.mu.Unlock()
	return av.minval
}

// Max sample observed so far.
func (av *AverageInt64) Max() int64 {
	av.mu.Lock()
	defer av.mu.Unlock()
	return av.maxval
}

// Samples returns the number of samples added.
func (av *AverageInt64) Samples() int64 {
	av.mu.Lock()
	defer av.mu.Unlock()
	return av.n
}

// Sum of all samples.
func (av *AverageInt64) Sum() int64 {
	av.mu.Lock()
	defer av.mu.Unlock()
	return av.sum
}

// Mean of all samples.
func (av *AverageInt64) Mean() int64 {
	av.mu.Lock()
	defer av.mu.Unlock()
	return av.mean()
}

func (av *AverageInt64) mean() int64 {
	if av.n == 0 {
		return 0
	}
	return int64(float64(av.sum) / float64(av.n))
}

// Variance of all samples.
func (av *AverageInt64) Variance() float64 {
	av.mu.Lock()
	defer av.mu.Unlock()
	if av.n == 0 {
		return 0
	}
	nf, meanf := float64(av.n), float64(av.mean())
	return (av.sumsq / nf) - (meanf * meanf)
}

// SD returns the standard deviation of all samples.
func (av *AverageInt64) SD() float64 {
	return math.Sqrt(av.Variance())
}
