// Package httpserver provides the omfamily-exporter HTTP server.
//
// It uses net/http with a middleware chain:
//
//	Recover -> [RealIP] -> RequestID -> Audit -> RateLimit -> Instrument -> routes
//
// RealIP is added only when forwarding headers are trusted; otherwise rate
// limiting and audit logs use the connection's remote address.
//
// Instrument records every request into the http_requests,
// http_request_duration_seconds and http_requests_in_flight families, which
// are exposed on the same server.
package httpserver
