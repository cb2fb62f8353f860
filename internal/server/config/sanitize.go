package config

import "strings"

// Sanitize returns a copy of the config with secrets masked, for logging.
func Sanitize(cfg *ExporterConfig) *ExporterConfig {
	sanitized := *cfg
	if sanitized.Server.HTTP.BearerToken != "" {
		sanitized.Server.HTTP.BearerToken = maskSecret(sanitized.Server.HTTP.BearerToken)
	}
	return &sanitized
}

func maskSecret(s string) string {
	if len(s) <= 4 {
		return "****"
	}
	return s[:2] + strings.Repeat("*", len(s)-4) + s[len(s)-2:]
}
