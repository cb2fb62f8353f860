package metric

import (
	"math"
	"sort"
	"strconv"
	"sync"

	"github.com/yndnr/omfamily/pkg/labels"
)

// DefaultBuckets are used by the zero Histogram. They suit request latencies
// measured in seconds.
var DefaultBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Histogram counts observations into buckets and tracks their sum.
//
// The zero value uses DefaultBuckets. Use NewHistogram for custom buckets,
// typically from a family constructor:
//
//	family.New[labels.Set](func() *metric.Histogram {
//		return metric.NewHistogram(metric.ExponentialBuckets(1, 2, 10))
//	})
type Histogram struct {
	mu     sync.Mutex
	bounds []float64
	counts []uint64
	sum    float64
	count  uint64
}

// NewHistogram returns a histogram with the given upper bounds. Bounds are
// sorted and deduplicated; +Inf is implicit and dropped if present.
func NewHistogram(buckets []float64) *Histogram {
	bounds := make([]float64, 0, len(buckets))
	for _, b := range buckets {
		if math.IsInf(b, 1) || math.IsNaN(b) {
			continue
		}
		bounds = append(bounds, b)
	}
	sort.Float64s(bounds)
	uniq := bounds[:0]
	for i, b := range bounds {
		if i == 0 || b != bounds[i-1] {
			uniq = append(uniq, b)
		}
	}
	return &Histogram{bounds: uniq, counts: make([]uint64, len(uniq)+1)}
}

// MetricType implements Typed.
func (*Histogram) MetricType() Type { return TypeHistogram }

// Observe records v.
func (h *Histogram) Observe(v float64) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.counts == nil {
		h.bounds = DefaultBuckets
		h.counts = make([]uint64, len(DefaultBuckets)+1)
	}
	i := sort.SearchFloat64s(h.bounds, v)
	h.counts[i]++
	h.sum += v
	h.count++
}

// Bucket is a cumulative histogram bucket.
type Bucket struct {
	UpperBound float64 `json:"upper_bound"`
	Count      uint64  `json:"count"`
}

// HistogramSnapshot is a point-in-time copy of a Histogram.
type HistogramSnapshot struct {
	Buckets []Bucket `json:"buckets"` // cumulative, +Inf last
	Sum     float64  `json:"sum"`
	Count   uint64   `json:"count"`
}

// Snapshot returns a consistent copy of the histogram state.
func (h *Histogram) Snapshot() HistogramSnapshot {
	h.mu.Lock()
	bounds := h.bounds
	counts := append([]uint64(nil), h.counts...)
	sum, count := h.sum, h.count
	h.mu.Unlock()

	if counts == nil {
		bounds = DefaultBuckets
		counts = make([]uint64, len(DefaultBuckets)+1)
	}

	buckets := make([]Bucket, 0, len(counts))
	var cum uint64
	for i, c := range counts {
		cum += c
		ub := math.Inf(1)
		if i < len(bounds) {
			ub = bounds[i]
		}
		buckets = append(buckets, Bucket{UpperBound: ub, Count: cum})
	}
	return HistogramSnapshot{Buckets: buckets, Sum: sum, Count: count}
}

// Export implements Exporter.
func (h *Histogram) Export(emit func(Sample)) {
	s := h.Snapshot()
	for _, b := range s.Buckets {
		emit(Sample{
			Suffix: "_bucket",
			Label:  labels.Pair{Name: "le", Value: FormatFloat(b.UpperBound)},
			Value:  float64(b.Count),
		})
	}
	emit(Sample{Suffix: "_sum", Value: s.Sum})
	emit(Sample{Suffix: "_count", Value: float64(s.Count)})
}

// ExponentialBuckets returns n bounds starting at start, each one factor
// times the previous.
func ExponentialBuckets(start, factor float64, n int) []float64 {
	if n < 1 || start <= 0 || factor <= 1 {
		return nil
	}
	out := make([]float64, n)
	v := start
	for i := range out {
		out[i] = v
		v *= factor
	}
	return out
}

// LinearBuckets returns n bounds starting at start, width apart.
func LinearBuckets(start, width float64, n int) []float64 {
	if n < 1 || width <= 0 {
		return nil
	}
	out := make([]float64, n)
	for i := range out {
		out[i] = start + float64(i)*width
	}
	return out
}

// FormatFloat renders v the way the text exposition format expects.
func FormatFloat(v float64) string {
	switch {
	case math.IsInf(v, 1):
		return "+Inf"
	case math.IsInf(v, -1):
		return "-Inf"
	case math.IsNaN(v):
		return "NaN"
	default:
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
}
