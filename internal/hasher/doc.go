// Package hasher computes content hashes of remote assets by invoking an
// external tool, by default "nix store prefetch-file --json".
package hasher
