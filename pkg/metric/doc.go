// Package metric defines the metric-instance capability that families are
// generic over, and the concrete instance types shipped with omfamily.
//
// A type can be tracked by a family.Family when it implements Typed. The
// MetricType method must not dereference its receiver: families query the
// kind on the zero value, which is a nil pointer for the types below.
//
// Counter, Gauge, Histogram and Info guard their own state and are safe for
// concurrent use. The family map lock only protects the map structure.
package metric
