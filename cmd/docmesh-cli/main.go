// Package main is the entry point of docmesh-cli, the command-line client
// for a DocMesh server.
//
// Usage:
//
//	docmesh-cli [global flags] command [flags] [args]
//	docmesh-cli doc list -o json
//	docmesh-cli --server http://localhost:4000 doc join <id> -p secret
package main

import (
	"fmt"
	"os"

	"github.com/yndnr/docmesh-go/internal/cli/command"
)

func main() {
	if err := command.App().Run(os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
