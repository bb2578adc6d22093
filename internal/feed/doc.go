// Package feed reads the upstream release listing.
//
// The Client pages through the listing until an empty page is returned and
// hands back every release in the order the feed delivered them.
package feed
