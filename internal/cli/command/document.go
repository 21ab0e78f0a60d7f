package command

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/yndnr/docmesh-go/internal/cli/connection"
)

type documentItem struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	UserCount   int    `json:"userCount"`
	LastUpdated int64  `json:"lastUpdated" table:"ms"`
}

type documentDetail struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	IsPublic    bool   `json:"isPublic"`
	UserCount   int    `json:"userCount"`
	LastUpdated int64  `json:"lastUpdated" table:"ms"`
}

type createRequest struct {
	IsPublic bool   `json:"isPublic"`
	Password string `json:"password,omitempty"`
}

type createResult struct {
	ID       string `json:"id"`
	IsPublic bool   `json:"isPublic"`
}

type joinRequest struct {
	Password string `json:"password,omitempty"`
}

type joinResult struct {
	Success   bool   `json:"success"`
	Ticket    string `json:"ticket,omitempty"`
	ExpiresAt int64  `json:"expiresAt,omitempty" table:"ms"`
	URL       string `json:"url"`
}

// DocumentCommand returns the document subcommand group.
func DocumentCommand() *cli.Command {
	return &cli.Command{
		Name:    "doc",
		Aliases: []string{"document", "documents"},
		Usage:   "Manage collaborative documents",
		Subcommands: []*cli.Command{
			{
				Name:    "list",
				Aliases: []string{"ls"},
				Usage:   "List public documents",
				Action:  documentList,
			},
			{
				Name:  "create",
				Usage: "Create a document",
				Flags: []cli.Flag{
					&cli.BoolFlag{Name: "private", Usage: "Create an unlisted, password protected document"},
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Password for a private document", EnvVars: []string{"DOCMESH_CLI_PASSWORD"}},
				},
				Action: documentCreate,
			},
			{
				Name:      "get",
				Usage:     "Show a document",
				ArgsUsage: "ID",
				Action:    documentGet,
			},
			{
				Name:      "join",
				Usage:     "Request access to a document and print its WebSocket URL",
				ArgsUsage: "ID",
				Flags: []cli.Flag{
					&cli.StringFlag{Name: "password", Aliases: []string{"p"}, Usage: "Document password", EnvVars: []string{"DOCMESH_CLI_PASSWORD"}},
				},
				Action: documentJoin,
			},
			{
				Name:      "delete",
				Aliases:   []string{"rm"},
				Usage:     "Close a document and disconnect its clients",
				ArgsUsage: "ID",
				Action:    documentDelete,
			},
		},
	}
}

func documentList(c *cli.Context) error {
	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Get(ctx, "/documents")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	items := []documentItem{}
	if err := connection.ParseResponse(resp, &items); err != nil {
		return err
	}

	return render(c, items, func() error {
		if len(items) == 0 {
			printf(c, "No public documents.\n")
			return nil
		}
		return tableOptions(c).Format(c.App.Writer, items)
	})
}

func documentCreate(c *cli.Context) error {
	req := createRequest{IsPublic: !c.Bool("private"), Password: c.String("password")}
	if req.IsPublic && req.Password != "" {
		return cli.Exit("--password requires --private", 2)
	}
	if !req.IsPublic && req.Password == "" {
		return cli.Exit("--private requires --password", 2)
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Post(ctx, "/documents", req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var result createResult
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}

	return render(c, result, func() error {
		kind := "public"
		if !result.IsPublic {
			kind = "private"
		}
		printf(c, "Created %s document %s\n", kind, result.ID)
		return nil
	})
}

func documentGet(c *cli.Context) error {
	id, err := requireArg(c, "document ID")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Get(ctx, "/documents/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var doc documentDetail
	if err := connection.ParseResponse(resp, &doc); err != nil {
		return err
	}
	return render(c, doc, nil)
}

func documentJoin(c *cli.Context) error {
	id, err := requireArg(c, "document ID")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	client := newClient(c)
	resp, err := client.Post(ctx, "/documents/"+url.PathEscape(id)+"/join", joinRequest{Password: c.String("password")})
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	var result joinResult
	if err := connection.ParseResponse(resp, &result); err != nil {
		return err
	}
	result.URL = socketURL(client.BaseURL(), id, result.Ticket)

	return render(c, result, func() error {
		printf(c, "Joined %s\n", id)
		if result.Ticket != "" {
			printf(c, "  Ticket:  %s\n", result.Ticket)
		}
		printf(c, "  Connect: %s\n", result.URL)
		return nil
	})
}

func documentDelete(c *cli.Context) error {
	id, err := requireArg(c, "document ID")
	if err != nil {
		return err
	}

	ctx, cancel := requestContext(c)
	defer cancel()

	resp, err := newClient(c).Delete(ctx, "/documents/"+url.PathEscape(id))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if err := connection.ParseResponse(resp, nil); err != nil {
		return err
	}
	printf(c, "Deleted document %s\n", id)
	return nil
}

// socketURL derives the WebSocket endpoint of document id from the HTTP
// base URL.
func socketURL(baseURL, id, ticket string) string {
	u := strings.Replace(baseURL, "http", "ws", 1) + "/ws/" + url.PathEscape(id)
	if ticket != "" {
		u += "?ticket=" + url.QueryEscape(ticket)
	}
	return u
}
