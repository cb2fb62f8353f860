package metric

import (
	"math"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/yndnr/omfamily/pkg/metric"
)

// bridge exposes registered families to the Prometheus registry as const
// metrics. It describes nothing, so the Prometheus registry treats it as an
// unchecked collector and label names may differ between label sets.
type bridge struct {
	r *Registry
}

func (bridge) Describe(chan<- *prometheus.Desc) {}

func (b bridge) Collect(ch chan<- prometheus.Metric) {
	for _, e := range b.r.sorted() {
		for _, s := range collectSeries(e.c) {
			collectSeriesMetrics(ch, e, s)
		}
	}
}

func collectSeriesMetrics(ch chan<- prometheus.Metric, e *entry, s *series) {
	names := make([]string, len(s.pairs))
	values := make([]string, len(s.pairs))
	for i, p := range s.pairs {
		names[i] = p.Name
		values[i] = p.Value
	}

	typ := e.c.MetricType()
	if typ == metric.TypeHistogram {
		desc := prometheus.NewDesc(e.name, e.help, names, nil)
		count, sum, buckets := histogramValues(s.samples)
		ch <- prometheus.MustNewConstHistogram(desc, count, sum, buckets, values...)
		return
	}

	for _, sample := range s.samples {
		sampleNames, sampleValues := names, values
		if sample.Label.Name != "" {
			sampleNames = append(names[:len(names):len(names)], sample.Label.Name)
			sampleValues = append(values[:len(values):len(values)], sample.Label.Value)
		}
		desc := prometheus.NewDesc(e.name+sample.Suffix, e.help, sampleNames, nil)
		ch <- prometheus.MustNewConstMetric(desc, valueType(typ), sample.Value, sampleValues...)
	}
}

func valueType(t metric.Type) prometheus.ValueType {
	switch t {
	case metric.TypeCounter:
		return prometheus.CounterValue
	case metric.TypeGauge, metric.TypeInfo:
		return prometheus.GaugeValue
	default:
		return prometheus.UntypedValue
	}
}

// histogramValues folds _bucket, _sum and _count samples back into the form
// NewConstHistogram takes. The +Inf bucket is implied by count.
func histogramValues(samples []metric.Sample) (count uint64, sum float64, buckets map[float64]uint64) {
	buckets = make(map[float64]uint64)
	for _, s := range samples {
		switch s.Suffix {
		case "_bucket":
			le, err := strconv.ParseFloat(s.Label.Value, 64)
			if err != nil || math.IsInf(le, 1) {
				continue
			}
			buckets[le] = uint64(s.Value)
		case "_sum":
			sum = s.Value
		case "_count":
			count = uint64(s.Value)
		}
	}
	return count, sum, buckets
}

var _ prometheus.Collector = bridge{}
