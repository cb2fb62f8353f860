// Package metric exposes metric families over HTTP.
//
// A Registry maps family names to Collectors. Families built with the
// family package are adapted by FromFamily, or created and registered in one
// step by NewCounterFamily, NewGaugeFamily and NewHistogramFamily.
//
// Registered families are exposed two ways:
//
//   - Encode writes the OpenMetrics text format directly.
//   - Handler serves the Prometheus registry that bridges every family into
//     const metrics, alongside the Go runtime and process collectors.
package metric
