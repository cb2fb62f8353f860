package metric

import "github.com/yndnr/omfamily/pkg/labels"

// Type is the declared kind of a metric family.
type Type int

const (
	TypeUnknown Type = iota
	TypeCounter
	TypeGauge
	TypeHistogram
	TypeInfo
)

// String returns the OpenMetrics TYPE token.
func (t Type) String() string {
	switch t {
	case TypeCounter:
		return "counter"
	case TypeGauge:
		return "gauge"
	case TypeHistogram:
		return "histogram"
	case TypeInfo:
		return "info"
	default:
		return "unknown"
	}
}

// Typed declares a fixed metric kind. Implementations must be callable on
// a nil receiver.
type Typed interface {
	MetricType() Type
}

// Sample is one exposed value of a metric instance.
type Sample struct {
	// Suffix is appended to the family name, e.g. "_total" or "_bucket".
	Suffix string
	// Label is an extra per-sample label such as le="0.5". Empty when unused.
	Label labels.Pair
	Value float64
}

// Exporter is a Typed metric whose current value can be read for exposition.
type Exporter interface {
	Typed
	Export(emit func(Sample))
}
