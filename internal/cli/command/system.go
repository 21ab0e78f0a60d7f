package command

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/docmesh-go/internal/cli/connection"
)

type healthResult struct {
	Status      string `json:"status"`
	Time        string `json:"time"`
	Documents   int    `json:"documents"`
	Connections int    `json:"connections"`
}

// SystemCommand returns the system subcommand group.
func SystemCommand() *cli.Command {
	return &cli.Command{
		Name:    "system",
		Aliases: []string{"sys"},
		Usage:   "Server status commands",
		Subcommands: []*cli.Command{
			{
				Name:   "health",
				Usage:  "Check server liveness",
				Action: systemHealth,
			},
			{
				Name:   "ready",
				Usage:  "Check whether the server accepts new work",
				Action: systemReady,
			},
		},
	}
}

func systemHealth(c *cli.Context) error {
	return probe(c, "/health")
}

func systemReady(c *cli.Context) error {
	return probe(c, "/ready")
}

// probe queries a health endpoint. A 503 carries a health body, so it is
// rendered before the command fails.
func probe(c *cli.Context, path string) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	client := newClient(c)
	resp, err := client.Get(ctx, path)
	if err != nil {
		return cli.Exit(fmt.Sprintf("server unreachable: %v", err), 1)
	}

	var result healthResult
	if resp.StatusCode == http.StatusServiceUnavailable {
		defer resp.Body.Close()
		if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
			return &connection.APIError{Status: resp.StatusCode}
		}
	} else if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	err = render(c, result, func() error {
		printf(c, "Server %s is %s\n", client.BaseURL(), result.Status)
		printf(c, "  Documents:   %d\n", result.Documents)
		printf(c, "  Connections: %d\n", result.Connections)
		return nil
	})
	if err != nil {
		return err
	}
	if resp.StatusCode == http.StatusServiceUnavailable {
		return cli.Exit("", 1)
	}
	return nil
}
