package cli

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/cache"
)

// managementStore opens the configured cache directory for maintenance. It
// ignores cache.enabled and --no-cache so a disabled cache can still be
// inspected and cleared.
func managementStore(cmd *cobra.Command) (*cache.FileStore, error) {
	a, err := mustApp(cmd)
	if err != nil {
		return nil, err
	}
	c := a.cfg.Cache
	return cache.NewFileStore(a.cfg.CacheDirectory(), true, c.TTLSeconds, c.MaxSizeMB)
}

// NewCacheClearCmd removes every cached response.
func NewCacheClearCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clear",
		Short: "Delete every cached API response",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := managementStore(cmd)
			if err != nil {
				return err
			}
			n, err := store.Clear()
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d cached responses from %s\n", n, store.Directory())
			return nil
		},
	}
}

// NewCachePruneCmd removes expired responses only.
func NewCachePruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete expired cached API responses",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := managementStore(cmd)
			if err != nil {
				return err
			}
			n, err := store.CleanupExpired()
			if err != nil {
				return err
			}
			cmd.Printf("Removed %d expired responses\n", n)
			return nil
		},
	}
}

// NewCacheStatsCmd reports the cache location, entry counts and size.
func NewCacheStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show cache location, entry count and disk usage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := mustApp(cmd)
			if err != nil {
				return err
			}
			store, err := managementStore(cmd)
			if err != nil {
				return err
			}
			st, err := store.Stats()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			state := "enabled"
			if !a.cfg.Cache.Enabled {
				state = "disabled"
			}
			lines := []string{
				"Directory: " + st.Directory,
				"Status:    " + state,
				"TTL:       " + cache.FormatDuration(time.Duration(st.TTLSeconds)*time.Second),
				fmt.Sprintf("Entries:   %d (%d expired)", st.Entries, st.Expired),
				"Size:      " + humanize.Bytes(uint64(st.SizeBytes)), //nolint:gosec // sizes are non-negative
			}
			if !st.Oldest.IsZero() {
				lines = append(lines, "Oldest:    "+humanize.Time(st.Oldest))
			}
			for _, l := range lines {
				if _, err = fmt.Fprintln(out, l); err != nil {
					return err
				}
			}
			return nil
		},
	}
}
