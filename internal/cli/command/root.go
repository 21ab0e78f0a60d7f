package command

import (
	"context"
	"fmt"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/docmesh-go/internal/cli/config"
	"github.com/yndnr/docmesh-go/internal/cli/connection"
	"github.com/yndnr/docmesh-go/internal/cli/output"
	"github.com/yndnr/docmesh-go/internal/infra/buildinfo"
)

const metaConfig = "cliConfig"

// App creates the CLI application.
func App() *cli.App {
	return &cli.App{
		Name:    "docmesh-cli",
		Usage:   "DocMesh command-line client",
		Version: buildinfo.String(),
		Flags:   globalFlags(),
		Commands: []*cli.Command{
			DocumentCommand(),
			SystemCommand(),
			ConfigCommand(),
		},
		Before: loadCLIConfig,
	}
}

// globalFlags returns the global CLI flags. server and output carry no
// default so that the configuration file can supply one.
func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "server",
			Aliases: []string{"s"},
			Usage:   "DocMesh server address (default from config, " + config.DefaultServer + ")",
			EnvVars: []string{"DOCMESH_CLI_SERVER"},
		},
		&cli.StringFlag{
			Name:    "output",
			Aliases: []string{"o"},
			Usage:   "Output format: table, json, yaml",
		},
		&cli.BoolFlag{
			Name:    "wide",
			Aliases: []string{"w"},
			Usage:   "Show wide output (more columns)",
		},
		&cli.BoolFlag{
			Name:  "no-headers",
			Usage: "Omit the header row of table output",
		},
		&cli.StringFlag{
			Name:    "config",
			Usage:   "CLI configuration file",
			EnvVars: []string{"DOCMESH_CLI_CONFIG"},
			Value:   config.DefaultConfigPath(),
		},
	}
}

func loadCLIConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	c.App.Metadata[metaConfig] = cfg
	return nil
}

// cliConfig returns the configuration loaded in Before, or the defaults.
func cliConfig(c *cli.Context) *config.CLIConfig {
	if cfg, ok := c.App.Metadata[metaConfig].(*config.CLIConfig); ok {
		return cfg
	}
	return config.Default()
}

func serverAddress(c *cli.Context) string {
	if s := c.String("server"); s != "" {
		return s
	}
	return cliConfig(c).DefaultServer
}

func newClient(c *cli.Context) *connection.HTTPClient {
	return connection.NewHTTPClient(serverAddress(c))
}

func requestContext(c *cli.Context) (context.Context, context.CancelFunc) {
	parent := c.Context
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, connection.DefaultTimeout)
}

func outputFormat(c *cli.Context) (output.Format, error) {
	name := c.String("output")
	if name == "" {
		name = cliConfig(c).DefaultOutput
	}
	return output.ParseFormat(name)
}

// render writes data in the selected output format. When the format is
// table and text is non-nil, text is used instead of the table renderer.
func render(c *cli.Context, data any, text func() error) error {
	format, err := outputFormat(c)
	if err != nil {
		return err
	}
	if format == output.FormatTable && text != nil {
		return text()
	}
	return output.NewFormatter(format, tableOptions(c)).Format(c.App.Writer, data)
}

func tableOptions(c *cli.Context) output.TableFormatter {
	return output.TableFormatter{Wide: c.Bool("wide"), NoHeaders: c.Bool("no-headers")}
}

func printf(c *cli.Context, format string, args ...any) {
	fmt.Fprintf(c.App.Writer, format, args...)
}

// requireArg returns the first positional argument or a usage error.
func requireArg(c *cli.Context, name string) (string, error) {
	if c.NArg() < 1 || c.Args().First() == "" {
		return "", cli.Exit(fmt.Sprintf("%s is required\nusage: %s %s", name, c.Command.HelpName, c.Command.ArgsUsage), 2)
	}
	return c.Args().First(), nil
}
