// Package confloader loads layered configuration and watches it for
// changes.
//
// Loader merges, lowest precedence first: the defaults already present
// in the target struct, a YAML file, DOCMESH_ environment variables and
// explicit overrides such as command-line flags. Keys are dot separated
// and contain no underscores, since every underscore of an environment
// name becomes a dot: DOCMESH_REAPER_IDLE sets reaper.idle.
//
// Watcher reports edits of the configuration file so that runtime
// tunables can be re-applied without a restart.
package confloader
