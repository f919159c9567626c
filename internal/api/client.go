// Package api is the read-only client for the regulatory statistics API.
//
// One Client is built at process start from configuration and handed to
// every command and view; nothing else knows the API origin.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/rshade/regdash/internal/cache"
	"github.com/rshade/regdash/internal/logging"
	"github.com/rshade/regdash/pkg/version"
)

const (
	defaultTimeout = 30 * time.Second
	maxBodyBytes   = 32 << 20
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64 // requests per second; 0 disables limiting
	Burst     int
	UserAgent string

	// Cache, when non-nil and enabled, serves repeated GETs from disk.
	Cache *cache.FileStore

	// HTTPClient overrides the default client (tests).
	HTTPClient *http.Client
}

// Client issues GET requests against the API and decodes JSON responses.
type Client struct {
	base      *url.URL
	http      *http.Client
	limiter   *rate.Limiter
	store     *cache.FileStore
	userAgent string
}

// New validates opts and builds a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil || base.Host == "" || (base.Scheme != "http" && base.Scheme != "https") {
		return nil, fmt.Errorf("invalid API base URL %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	var limiter *rate.Limiter
	if opts.RateLimit > 0 {
		burst := opts.Burst
		if burst < 1 {
			burst = 1
		}
		limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = "regdash/" + version.GetVersion()
	}

	return &Client{
		base:      base,
		http:      httpClient,
		limiter:   limiter,
		store:     opts.Cache,
		userAgent: ua,
	}, nil
}

// BaseURL returns the configured API origin.
func (c *Client) BaseURL() string { return c.base.String() }

// Close releases idle connections.
func (c *Client) Close() {
	c.http.CloseIdleConnections()
}

// endpoint joins escaped path segments onto the base URL.
func (c *Client) endpoint(query url.Values, segments ...string) string {
	u := *c.base
	escaped := make([]string, len(segments))
	for i, s := range segments {
		escaped[i] = url.PathEscape(s)
	}
	prefix := strings.TrimRight(u.EscapedPath(), "/")
	u.RawPath = prefix + "/" + strings.Join(escaped, "/")
	u.Path = strings.TrimRight(u.Path, "/") + "/" + strings.Join(segments, "/")
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// getJSON fetches target and decodes it into out. Every failure is returned
// as a *FetchError tagged with op.
func (c *Client) getJSON(ctx context.Context, op, target string, out any) error {
	log := logging.ComponentLogger(*logging.FromContext(ctx), "api")

	if c.cacheEnabled() {
		entry, err := c.store.Get(target)
		if err == nil {
			if decodeErr := json.Unmarshal(entry.Body, out); decodeErr == nil {
				log.Debug().Ctx(ctx).Str("url", target).Str("op", op).Msg("cache hit")
				return nil
			}
		} else if !errors.Is(err, cache.ErrCacheNotFound) && !errors.Is(err, cache.ErrCacheExpired) {
			log.Warn().Ctx(ctx).Err(err).Str("url", target).Msg("cache read failed")
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &FetchError{Op: op, URL: target, Err: err}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return &FetchError{Op: op, URL: target, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if traceID := logging.TraceIDFromContext(ctx); traceID != "" {
		req.Header.Set("X-Request-Id", traceID)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		log.Debug().Ctx(ctx).Err(err).Str("url", target).Msg("request failed")
		return &FetchError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	log.Debug().Ctx(ctx).
		Str("url", target).
		Int("status", resp.StatusCode).
		Dur("duration_ms", time.Since(start)).
		Msg("GET")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &FetchError{Op: op, URL: target, StatusCode: resp.StatusCode}
	}
	if err != nil {
		return &FetchError{Op: op, URL: target, Err: err}
	}
	if err = json.Unmarshal(body, out); err != nil {
		return &FetchError{Op: op, URL: target, Err: fmt.Errorf("decoding response: %w", err)}
	}

	if c.cacheEnabled() {
		if setErr := c.store.Set(target, body); setErr != nil {
			log.Warn().Ctx(ctx).Err(setErr).Str("url", target).Msg("cache write failed")
		}
	}
	return nil
}

func (c *Client) cacheEnabled() bool {
	return c.store != nil && c.store.IsEnabled()
}
