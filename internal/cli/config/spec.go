package config

import "time"

// CLIConfig is the configuration for omfamily-cli.
type CLIConfig struct {
	// Server is the exporter used by commands that talk to one target.
	Server string `yaml:"server"`
	// Token is sent as a bearer token.
	Token string `yaml:"token,omitempty"`
	// Output is the default format: table, json or yaml.
	Output string `yaml:"output"`
	// MetricsPath is scraped by the scrape command.
	MetricsPath string        `yaml:"metrics_path"`
	Timeout     time.Duration `yaml:"timeout"`
	// Targets are scraped when scrape is given no --target.
	Targets []string `yaml:"targets,omitempty"`
}

// Default returns the default CLI configuration.
func Default() *CLIConfig {
	return &CLIConfig{
		Server:      "http://127.0.0.1:9464",
		Output:      "table",
		MetricsPath: "/metrics",
		Timeout:     10 * time.Second,
	}
}
