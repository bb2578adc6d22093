// Package version reports which build of release-catalog is running.
package version
