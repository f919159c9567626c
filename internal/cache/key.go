package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"net/url"
	"strings"
)

// KeyForURL returns the cache key for a request URL. Query parameters are
// re-encoded in sorted order and the host is lower-cased, so equivalent
// URLs share an entry.
func KeyForURL(raw string) string {
	canonical := raw
	if u, err := url.Parse(raw); err == nil {
		u.Host = strings.ToLower(u.Host)
		u.Scheme = strings.ToLower(u.Scheme)
		u.RawQuery = u.Query().Encode()
		u.Fragment = ""
		canonical = u.String()
	}
	sum := sha256.Sum256([]byte(canonical))
	return hex.EncodeToString(sum[:])
}
