// Package cache stores successful API response bodies on disk with a TTL.
//
// It plays the part a browser HTTP cache plays for a web dashboard: repeated
// invocations within the TTL are served from ~/.regdash/cache instead of the
// network. Entries are keyed by the SHA-256 of the canonical request URL.
// The cache never feeds tree node state; a node still fetches at most once.
package cache
