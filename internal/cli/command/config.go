package command

import (
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/omfamily/internal/cli/config"
)

// ConfigCommand manages the CLI config file.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage the CLI configuration file",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Print the effective configuration",
				Action: configShow,
			},
			{
				Name:   "init",
				Usage:  "Write the effective configuration to the config file",
				Action: configInit,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	cfg := effectiveConfig(c, flags)
	if cfg.Token != "" {
		cfg.Token = "******"
	}
	return render(c, flags, cfg)
}

func configInit(c *cli.Context) error {
	flags, err := ParseGlobalFlags(c)
	if err != nil {
		return err
	}
	path := c.String("config")
	if err := config.Save(effectiveConfig(c, flags), path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	_, err = fmt.Fprintf(c.App.Writer, "wrote %s\n", path)
	return err
}

func effectiveConfig(c *cli.Context, flags *GlobalFlags) *config.CLIConfig {
	cfg := *cliConfig(c)
	cfg.Server = flags.Server
	cfg.Token = flags.Token
	cfg.Output = string(flags.Output)
	cfg.Timeout = flags.Timeout
	return &cfg
}
