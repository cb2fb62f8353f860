package metric

import (
	"github.com/yndnr/omfamily/pkg/family"
	"github.com/yndnr/omfamily/pkg/labels"
	"github.com/yndnr/omfamily/pkg/metric"
)

// Collector yields the samples of one metric family.
type Collector interface {
	MetricType() metric.Type
	// Collect calls emit for every sample. Samples of one instance are
	// emitted consecutively.
	Collect(emit func(lbls []labels.Pair, s metric.Sample))
}

// LabelSet is a label-set type usable both as a family key and for exposition.
type LabelSet interface {
	comparable
	labels.Labeler
}

type familyCollector[S LabelSet, M metric.Exporter] struct {
	f family.Family[S, M]
}

// FromFamily adapts f to a Collector. Each Collect is one Range over f.
func FromFamily[S LabelSet, M metric.Exporter](f family.Family[S, M]) Collector {
	return familyCollector[S, M]{f: f}
}

func (c familyCollector[S, M]) MetricType() metric.Type {
	return c.f.MetricType()
}

func (c familyCollector[S, M]) Collect(emit func([]labels.Pair, metric.Sample)) {
	c.f.Range(func(key S, m M) bool {
		pairs := key.Pairs()
		m.Export(func(s metric.Sample) {
			emit(pairs, s)
		})
		return true
	})
}

func (c familyCollector[S, M]) Len() int {
	return c.f.Len()
}
