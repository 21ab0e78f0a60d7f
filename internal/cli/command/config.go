package command

import (
	"github.com/urfave/cli/v2"

	"github.com/yndnr/docmesh-go/internal/cli/config"
)

type configView struct {
	Path          string `json:"path"`
	DefaultServer string `json:"default_server"`
	DefaultOutput string `json:"default_output"`
}

// ConfigCommand returns the config subcommand group.
func ConfigCommand() *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Local CLI configuration",
		Subcommands: []*cli.Command{
			{
				Name:   "show",
				Usage:  "Show the effective CLI configuration",
				Action: configShow,
			},
			{
				Name:      "set",
				Usage:     "Set a configuration value",
				ArgsUsage: "KEY VALUE",
				Action:    configSet,
			},
		},
	}
}

func configShow(c *cli.Context) error {
	cfg := cliConfig(c)
	return render(c, configView{
		Path:          c.String("config"),
		DefaultServer: cfg.DefaultServer,
		DefaultOutput: cfg.DefaultOutput,
	}, nil)
}

func configSet(c *cli.Context) error {
	if c.NArg() != 2 {
		return cli.Exit("usage: docmesh-cli config set KEY VALUE", 2)
	}

	cfg := cliConfig(c)
	if err := cfg.Set(c.Args().Get(0), c.Args().Get(1)); err != nil {
		return cli.Exit(err.Error(), 2)
	}
	if err := config.Save(cfg, c.String("config")); err != nil {
		return err
	}
	printf(c, "Set %s = %s\n", c.Args().Get(0), c.Args().Get(1))
	return nil
}
