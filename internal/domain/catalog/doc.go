// Package catalog contains core domain types for the release catalog.
//
// It defines the persisted Catalog value (systems, channels, versions), the raw
// Release records delivered by the upstream feed, and the pure functions that
// derive catalog data from them: ParseVersionInfo and SelectChannels.
// Catalog values are never mutated in place; every run builds a new one.
package catalog
