package command

import (
	"fmt"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/omfamily/internal/cli/config"
	"github.com/yndnr/omfamily/internal/cli/connection"
	"github.com/yndnr/omfamily/internal/cli/output"
	"github.com/yndnr/omfamily/internal/infra/buildinfo"
)

const configKey = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "omfamily-cli",
		Usage:   "Inspect omfamily exporters and OpenMetrics endpoints",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			ScrapeCommand(),
			FamiliesCommand(),
			OpenMetricsCommand(),
			HelloCommand(),
			DemoCommand(),
			ConfigCommand(),
			VersionCommand(),
		},
		Before: loadConfig,
	}
}

// globalFlags returns the global CLI flags.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "CLI config file",
			EnvVars: []string{"OMFAMILY_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "exporter address (e.g. 127.0.0.1:9464)",
			EnvVars: []string{"OMFAMILY_SERVER"},
		},
		&cli.StringFlag{
			Name:    "token",
			Usage:   "bearer token for protected endpoints",
			EnvVars: []string{"OMFAMILY_TOKEN"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "show wide output (more columns)",
		},
		&cli.DurationFlag{
			Name:  "timeout",
			Usage: "per-request timeout",
		},
	}
}

// GlobalFlags is the effective connection and output settings: the config
// file overridden by any flag or environment variable that was set.
type GlobalFlags struct {
	Server  string
	Token   string
	Output  output.Format
	Wide    bool
	Timeout time.Duration
}

// ParseGlobalFlags extracts global flags from context.
func ParseGlobalFlags(c *cli.Context) (*GlobalFlags, error) {
	cfg := cliConfig(c)
	flags := &GlobalFlags{
		Server:  cfg.Server,
		Token:   cfg.Token,
		Timeout: cfg.Timeout,
		Wide:    c.Bool("wide"),
	}
	format := cfg.Output

	if c.IsSet("server") {
		flags.Server = c.String("server")
	}
	if c.IsSet("token") {
		flags.Token = c.String("token")
	}
	if c.IsSet("timeout") {
		flags.Timeout = c.Duration("timeout")
	}
	if c.IsSet("output") {
		format = c.String("output")
	}

	var err error
	if flags.Output, err = output.ParseFormat(format); err != nil {
		return nil, err
	}
	return flags, nil
}

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[configKey].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

// client returns an HTTP client for the selected server.
func client(c *cli.Context) (*connection.HTTPClient, *GlobalFlags, error) {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return nil, nil, err
	}
	return connection.NewHTTPClient(flags.Server, flags.Token, flags.Timeout), flags, nil
}

// render writes data in the selected output format.
func render(c *cli.Context, flags *GlobalFlags, data any) error {
	return output.NewFormatter(flags.Output, flags.Wide).Format(c.App.Writer, data)
}

// VersionCommand prints build information.
func VersionCommand() *cli.Command {
	return &cli.Command{
		Name:  "version",
		Usage: "Show build information",
		Action: func(c *cli.Context) error {
			flags, err := ParseGlobalFlags(c)
			if err != nil {
				return err
			}
			if flags.Output == output.FormatTable {
				_, err := fmt.Fprintln(c.App.Writer, buildinfo.String())
				return err
			}
			return render(c, flags, buildinfo.Get())
		},
	}
}
