// Package logger carries the zap logger of a synchronization run.
//
// Run names a logger and stores it in the context; the resolver and
// merger tasks read it back with FromContext so every line of a run
// shares one name. Output goes to stderr in a tab-separated console format.
package logger
