// Package connection talks to omfamily exporters over HTTP.
//
// HTTPClient wraps the JSON endpoints and the metrics endpoint; Scrape
// parses a Prometheus text exposition into metric families.
package connection
