package config

import (
	"fmt"
	"sort"
	"strconv"
)

// keyAccessor reads and writes one dotted configuration key.
type keyAccessor struct {
	get func(c *Config) string
	set func(c *Config, v string) error
}

func intSetter(dst func(c *Config) *int) func(*Config, string) error {
	return func(c *Config, v string) error {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("expected an integer, got %q", v)
		}
		*dst(c) = n
		return nil
	}
}

func stringSetter(dst func(c *Config) *string) func(*Config, string) error {
	return func(c *Config, v string) error {
		*dst(c) = v
		return nil
	}
}

//nolint:gochecknoglobals // Static lookup table of settable keys.
var keyAccessors = map[string]keyAccessor{
	"api.base_url": {
		get: func(c *Config) string { return c.API.BaseURL },
		set: stringSetter(func(c *Config) *string { return &c.API.BaseURL }),
	},
	"api.timeout_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.API.TimeoutSeconds) },
		set: intSetter(func(c *Config) *int { return &c.API.TimeoutSeconds }),
	},
	"api.rate_limit": {
		get: func(c *Config) string { return strconv.FormatFloat(c.API.RateLimit, 'f', -1, 64) },
		set: func(c *Config, v string) error {
			f, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return fmt.Errorf("expected a number, got %q", v)
			}
			c.API.RateLimit = f
			return nil
		},
	},
	"api.burst": {
		get: func(c *Config) string { return strconv.Itoa(c.API.Burst) },
		set: intSetter(func(c *Config) *int { return &c.API.Burst }),
	},
	"api.user_agent": {
		get: func(c *Config) string { return c.API.UserAgent },
		set: stringSetter(func(c *Config) *string { return &c.API.UserAgent }),
	},
	"cache.enabled": {
		get: func(c *Config) string { return strconv.FormatBool(c.Cache.Enabled) },
		set: func(c *Config, v string) error {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return fmt.Errorf("expected true or false, got %q", v)
			}
			c.Cache.Enabled = b
			return nil
		},
	},
	"cache.ttl_seconds": {
		get: func(c *Config) string { return strconv.Itoa(c.Cache.TTLSeconds) },
		set: intSetter(func(c *Config) *int { return &c.Cache.TTLSeconds }),
	},
	"cache.directory": {
		get: func(c *Config) string { return c.Cache.Directory },
		set: stringSetter(func(c *Config) *string { return &c.Cache.Directory }),
	},
	"cache.max_size_mb": {
		get: func(c *Config) string { return strconv.Itoa(c.Cache.MaxSizeMB) },
		set: intSetter(func(c *Config) *int { return &c.Cache.MaxSizeMB }),
	},
	"dashboard.index_year": {
		get: func(c *Config) string { return strconv.Itoa(c.Dashboard.IndexYear) },
		set: intSetter(func(c *Config) *int { return &c.Dashboard.IndexYear }),
	},
	"dashboard.explore_year": {
		get: func(c *Config) string { return strconv.Itoa(c.Dashboard.ExploreYear) },
		set: intSetter(func(c *Config) *int { return &c.Dashboard.ExploreYear }),
	},
	"dashboard.recent_years": {
		get: func(c *Config) string { return strconv.Itoa(c.Dashboard.RecentYears) },
		set: intSetter(func(c *Config) *int { return &c.Dashboard.RecentYears }),
	},
	"output.default_format": {
		get: func(c *Config) string { return c.Output.DefaultFormat },
		set: func(c *Config, v string) error {
			if !IsValidOutputFormat(v) {
				return fmt.Errorf("%w: got %q", ErrInvalidOutputFormat, v)
			}
			c.Output.DefaultFormat = v
			return nil
		},
	},
	"logging.level": {
		get: func(c *Config) string { return c.Logging.Level },
		set: stringSetter(func(c *Config) *string { return &c.Logging.Level }),
	},
	"logging.format": {
		get: func(c *Config) string { return c.Logging.Format },
		set: stringSetter(func(c *Config) *string { return &c.Logging.Format }),
	},
	"logging.file": {
		get: func(c *Config) string { return c.Logging.File },
		set: stringSetter(func(c *Config) *string { return &c.Logging.File }),
	},
}

// Get returns the string form of a dotted key such as "api.base_url".
func (c *Config) Get(key string) (string, error) {
	acc, ok := keyAccessors[key]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	return acc.get(c), nil
}

// Set parses value and assigns it to the dotted key.
func (c *Config) Set(key, value string) error {
	acc, ok := keyAccessors[key]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if err := acc.set(c, value); err != nil {
		return fmt.Errorf("%s: %w", key, err)
	}
	return nil
}

// Keys returns every settable key in sorted order.
func Keys() []string {
	return sortedKeys(keyAccessors)
}

// List returns every key with its current value.
func (c *Config) List() map[string]string {
	out := make(map[string]string, len(keyAccessors))
	for k, acc := range keyAccessors {
		out[k] = acc.get(c)
	}
	return out
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
