// Package config defines the synchronizer settings and provides helpers to
// load, validate and save them in YAML format.
//
// The Config type holds the release feed location, the hashing tool command,
// the catalog path and the concurrency and timeout knobs of a run.
package config
