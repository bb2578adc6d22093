// Package synchronizer brings the release catalog in line with the upstream feed.
//
// A run fetches every release, reuses catalog entries that are already known,
// hashes the assets of new (and testing channel) releases, re-sorts the merged
// versions by publish time and re-derives the latest version of each channel.
// The catalog file is replaced only when the result differs from what was loaded.
package synchronizer
