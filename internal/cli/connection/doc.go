// Package connection is the HTTP transport of docmesh-cli.
//
// HTTPClient wraps net/http with the base URL, timeout and headers the
// server expects. ParseResponse turns the server's {code, error} replies
// into *APIError values so commands can branch on the HTTP status.
package connection
