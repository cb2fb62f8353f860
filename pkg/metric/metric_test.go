package metric

import (
	"math"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/yndnr/omfamily/pkg/labels"
)

func TestType_String(t *testing.T) {
	tests := []struct {
		typ  Type
		want string
	}{
		{TypeUnknown, "unknown"},
		{TypeCounter, "counter"},
		{TypeGauge, "gauge"},
		{TypeHistogram, "histogram"},
		{TypeInfo, "info"},
		{Type(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.typ.String(); got != tt.want {
			t.Errorf("Type(%d).String() = %q, want %q", tt.typ, got, tt.want)
		}
	}
}

func TestMetricType_NilReceiver(t *testing.T) {
	var (
		c *Counter
		g *Gauge
		h *Histogram
		i *Info
	)
	if c.MetricType() != TypeCounter {
		t.Error("Counter kind")
	}
	if g.MetricType() != TypeGauge {
		t.Error("Gauge kind")
	}
	if h.MetricType() != TypeHistogram {
		t.Error("Histogram kind")
	}
	if i.MetricType() != TypeInfo {
		t.Error("Info kind")
	}
}

func TestCounter(t *testing.T) {
	var c Counter
	if prev := c.Inc(); prev != 0 {
		t.Errorf("Inc() = %d, want 0", prev)
	}
	if prev := c.Add(5); prev != 1 {
		t.Errorf("Add(5) = %d, want 1", prev)
	}
	if c.Get() != 6 {
		t.Errorf("Get() = %d, want 6", c.Get())
	}

	var got []Sample
	c.Export(func(s Sample) { got = append(got, s) })
	want := []Sample{{Suffix: "_total", Value: 6}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Export mismatch (-want +got):\n%s", diff)
	}
}

func TestCounter_Concurrent(t *testing.T) {
	var c Counter
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				c.Inc()
			}
		}()
	}
	wg.Wait()
	if c.Get() != 5000 {
		t.Errorf("Get() = %d, want 5000", c.Get())
	}
}

func TestGauge(t *testing.T) {
	var g Gauge
	g.Set(10)
	g.Inc()
	g.Dec()
	g.Add(5)
	g.Sub(3)
	if g.Get() != 12 {
		t.Errorf("Get() = %d, want 12", g.Get())
	}
	if prev := g.Set(-1); prev != 12 {
		t.Errorf("Set(-1) = %d, want 12", prev)
	}

	var got []Sample
	g.Export(func(s Sample) { got = append(got, s) })
	if len(got) != 1 || got[0].Suffix != "" || got[0].Value != -1 {
		t.Errorf("Export = %+v", got)
	}
}

func TestHistogram_Observe(t *testing.T) {
	h := NewHistogram([]float64{1, 0.5, 2, 2, math.Inf(1)})
	for _, v := range []float64{0.1, 0.5, 0.7, 3} {
		h.Observe(v)
	}

	s := h.Snapshot()
	want := HistogramSnapshot{
		Buckets: []Bucket{
			{UpperBound: 0.5, Count: 2},
			{UpperBound: 1, Count: 3},
			{UpperBound: 2, Count: 3},
			{UpperBound: math.Inf(1), Count: 4},
		},
		Sum:   4.3,
		Count: 4,
	}
	if diff := cmp.Diff(want, s, cmp.Comparer(func(a, b float64) bool {
		return a == b || math.Abs(a-b) < 1e-9
	})); diff != "" {
		t.Errorf("Snapshot mismatch (-want +got):\n%s", diff)
	}
}

func TestHistogram_ZeroValueUsesDefaultBuckets(t *testing.T) {
	var h Histogram
	s := h.Snapshot()
	if len(s.Buckets) != len(DefaultBuckets)+1 {
		t.Fatalf("buckets = %d, want %d", len(s.Buckets), len(DefaultBuckets)+1)
	}
	h.Observe(0.02)
	s = h.Snapshot()
	if s.Count != 1 || s.Buckets[len(s.Buckets)-1].Count != 1 {
		t.Errorf("unexpected snapshot after Observe: %+v", s)
	}
}

func TestHistogram_Export(t *testing.T) {
	h := NewHistogram([]float64{1})
	h.Observe(0.5)
	h.Observe(5)

	var got []Sample
	h.Export(func(s Sample) { got = append(got, s) })
	want := []Sample{
		{Suffix: "_bucket", Label: labels.Pair{Name: "le", Value: "1"}, Value: 1},
		{Suffix: "_bucket", Label: labels.Pair{Name: "le", Value: "+Inf"}, Value: 2},
		{Suffix: "_sum", Value: 5.5},
		{Suffix: "_count", Value: 2},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Export mismatch (-want +got):\n%s", diff)
	}
}

func TestBuckets(t *testing.T) {
	if diff := cmp.Diff([]float64{1, 2, 4, 8}, ExponentialBuckets(1, 2, 4)); diff != "" {
		t.Errorf("ExponentialBuckets mismatch:\n%s", diff)
	}
	if diff := cmp.Diff([]float64{0, 5, 10}, LinearBuckets(0, 5, 3)); diff != "" {
		t.Errorf("LinearBuckets mismatch:\n%s", diff)
	}
	if ExponentialBuckets(1, 1, 3) != nil {
		t.Error("factor <= 1 should yield nil")
	}
	if LinearBuckets(0, 1, 0) != nil {
		t.Error("n < 1 should yield nil")
	}
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		1:            "1",
		0.25:         "0.25",
		math.Inf(1):  "+Inf",
		math.Inf(-1): "-Inf",
		1e21:         "1e+21",
	}
	for in, want := range tests {
		if got := FormatFloat(in); got != want {
			t.Errorf("FormatFloat(%v) = %q, want %q", in, got, want)
		}
	}
}
