// Package config defines the omfamily-exporter configuration.
//
//   - spec.go: ExporterConfig struct definition
//   - default.go: Default configuration values
//   - verify.go: Validation
//   - sanitize.go: Masking of secrets before logging
//
// Configuration is loaded via internal/infra/confloader.
package config
