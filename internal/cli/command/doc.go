// Package command defines the docmesh-cli commands.
//
// Commands are built with urfave/cli/v2. Global flags select the server
// and output format; values not given on the command line fall back to
// the local CLI configuration file.
//
//	docmesh-cli doc list
//	docmesh-cli doc create --private --password s3cret
//	docmesh-cli doc join <id> --password s3cret
//	docmesh-cli system health
//	docmesh-cli config set default_server http://docs.internal:4000
package command
