// Package config loads and saves the local docmesh-cli configuration,
// a small YAML file under ~/.docmesh.
package config
