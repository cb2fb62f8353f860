// Package logger provides structured logging for omfamily.
//
// Two backends implement the Logger interface:
//
//   - slog (default): log/slog JSON or text handler
//   - zap: go.uber.org/zap JSON or console encoder
//
// Both share one process-wide level that SetLevel adjusts at runtime, and
// both redact values logged under sensitive keys such as "password" or
// "authorization".
//
// Context helpers carry a logger and a request ID through handlers; L returns
// a logger enriched with the request ID.
package logger
