// Package output renders CLI results as a table, JSON or YAML.
//
// Table output reads `table` struct tags: "-" hides a field, "wide" shows
// it only with --wide, and "ms" renders Unix milliseconds as a time.
// JSON and YAML output use the json field names.
package output
