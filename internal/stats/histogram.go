package stats

import "sync"

// HistogramInt64 buckets int64 samples into equal-width bins, adapted
// from the teacher's lib.HistogramInt64 with a mutex added for the same
// reason AverageInt64 has one: Utilization() is read while allocations
// keep adding samples from other goroutines.
type HistogramInt64 struct {
	mu        sync.Mutex
	histogram []int64
	from      int64
	till      int64
	width     int64
}

// NewHistogramInt64 builds a histogram with buckets of width spanning
// [from, till), plus overflow buckets on either end.
func NewHistogramInt64(from, till, width int64) *HistogramInt64 {
	if width <= 0 {
		width = 1
	}
	from = (from / width) * width
	till = (till / width) * width
	return &HistogramInt64{
		from: from, till: till, width: width,
		histogram: make([]int64, 2+((till-from)/width)),
	}
}

// Add a sample.
func (h *HistogramInt64) Add(sample int64) {
	h.mu.Lock()
	defer h.mu.Unlock()
	switch {
	case sample < h.from:
		h.histogram[0]++
	case sample >= h.till:
		h.histogram[len(h.histogram)-1]++
	default:
		h.histogram[((sample-h.from)/h.width)+1]++
	}
}

// Buckets returns each bucket's lower bound (size) and its share of total
// samples (pct), skipping empty buckets — the shape coa.Arena.Utilization
// exposes.
func (h *HistogramInt64) Buckets() (sizes []int64, pct []float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	total := int64(0)
	for _, c := range h.histogram {
		total += c
	}
	if total == 0 {
		return nil, nil
	}
	for i, c := range h.histogram {
		if c == 0 {
			continue
		}
		bound := h.from + int64(i-1)*h.width
		sizes = append(sizes, bound)
		pct = append(pct, float64(c)/float64(total)*100)
	}
	return sizes, pct
}
