package metric

import (
	"fmt"

	"github.com/yndnr/omfamily/pkg/family"
	"github.com/yndnr/omfamily/pkg/labels"
	"github.com/yndnr/omfamily/pkg/metric"
)

// RegisterFamily creates a family with constructor and registers it under
// name. Every label set created in it is counted in SeriesCreatedName.
//
// The counting hook runs before any WithOnCreate hook passed in opts.
func RegisterFamily[S LabelSet, M metric.Exporter](r *Registry, name, help string, constructor func() M, opts ...family.Option[S]) (family.Family[S, M], error) {
	if !ValidName(name) {
		return family.Family[S, M]{}, fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	key := labels.MustNew("family", name)

	all := make([]family.Option[S], 0, len(opts)+1)
	all = append(all, family.WithOnCreate(func(S) {
		r.seriesCreated.GetOrCreate(key).Inc()
	}))
	all = append(all, opts...)

	f := family.New(constructor, all...)
	if err := r.Register(name, help, FromFamily(f)); err != nil {
		return family.Family[S, M]{}, err
	}
	// Expose a zero count before the first label set arrives.
	r.seriesCreated.GetOrCreate(key)
	return f, nil
}

// NewCounterFamily registers a counter family.
func NewCounterFamily[S LabelSet](r *Registry, name, help string, opts ...family.Option[S]) (family.Family[S, *metric.Counter], error) {
	return RegisterFamily(r, name, help, func() *metric.Counter { return &metric.Counter{} }, opts...)
}

// NewGaugeFamily registers a gauge family.
func NewGaugeFamily[S LabelSet](r *Registry, name, help string, opts ...family.Option[S]) (family.Family[S, *metric.Gauge], error) {
	return RegisterFamily(r, name, help, func() *metric.Gauge { return &metric.Gauge{} }, opts...)
}

// NewHistogramFamily registers a histogram family whose instances share
// buckets. nil buckets selects metric.DefaultBuckets.
func NewHistogramFamily[S LabelSet](r *Registry, name, help string, buckets []float64, opts ...family.Option[S]) (family.Family[S, *metric.Histogram], error) {
	if buckets == nil {
		buckets = metric.DefaultBuckets
	}
	return RegisterFamily(r, name, help, func() *metric.Histogram { return metric.NewHistogram(buckets) }, opts...)
}

// NewInfoFamily registers an info family.
func NewInfoFamily[S LabelSet](r *Registry, name, help string, opts ...family.Option[S]) (family.Family[S, *metric.Info], error) {
	return RegisterFamily(r, name, help, func() *metric.Info { return &metric.Info{} }, opts...)
}
