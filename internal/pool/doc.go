// Package pool runs a function over a set of inputs with bounded concurrency.
//
// Results land at the index of their input, so callers never share a mutable
// accumulator between tasks. The first failure cancels the remaining tasks.
package pool
