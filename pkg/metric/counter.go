package metric

import "sync/atomic"

// Counter is a monotonically increasing counter.
// The zero value is ready to use.
type Counter struct {
	val atomic.Uint64
}

// MetricType implements Typed.
func (*Counter) MetricType() Type { return TypeCounter }

// Inc increments the counter by one and returns the previous value.
func (c *Counter) Inc() uint64 { return c.val.Add(1) - 1 }

// Add increments the counter by v and returns the previous value.
func (c *Counter) Add(v uint64) uint64 { return c.val.Add(v) - v }

// Get returns the current value.
func (c *Counter) Get() uint64 { return c.val.Load() }

// Export implements Exporter.
func (c *Counter) Export(emit func(Sample)) {
	emit(Sample{Suffix: "_total", Value: float64(c.Get())})
}

// Gauge is a value that can go up and down.
// The zero value is ready to use.
type Gauge struct {
	val atomic.Int64
}

// MetricType implements Typed.
func (*Gauge) MetricType() Type { return TypeGauge }

// Set sets the gauge and returns the previous value.
func (g *Gauge) Set(v int64) int64 { return g.val.Swap(v) }

// Inc increments the gauge by one and returns the previous value.
func (g *Gauge) Inc() int64 { return g.Add(1) }

// Dec decrements the gauge by one and returns the previous value.
func (g *Gauge) Dec() int64 { return g.Add(-1) }

// Add adds v and returns the previous value.
func (g *Gauge) Add(v int64) int64 { return g.val.Add(v) - v }

// Sub subtracts v and returns the previous value.
func (g *Gauge) Sub(v int64) int64 { return g.Add(-v) }

// Get returns the current value.
func (g *Gauge) Get() int64 { return g.val.Load() }

// Export implements Exporter.
func (g *Gauge) Export(emit func(Sample)) {
	emit(Sample{Value: float64(g.Get())})
}

// Info is a constant metric whose information lives in its labels.
// It is exposed as <name>_info with value 1.
type Info struct{}

// MetricType implements Typed.
func (*Info) MetricType() Type { return TypeInfo }

// Export implements Exporter.
func (*Info) Export(emit func(Sample)) {
	emit(Sample{Suffix: "_info", Value: 1})
}
