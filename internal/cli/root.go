package cli

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/rshade/regdash/internal/cache"
	"github.com/rshade/regdash/internal/config"
	"github.com/rshade/regdash/internal/logging"
)

// isTerminal checks if the given file is a terminal.
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}

// logger is the package-level logger for CLI operations.
var logger zerolog.Logger //nolint:gochecknoglobals // Required for zerolog context integration

// NewRootCmd creates the root Cobra command for the regdash CLI.
// It resolves configuration, wires logging and tracing, and builds the API
// client shared by every subcommand.
func NewRootCmd(ver string) *cobra.Command {
	var logResult *logging.LogPathResult

	cmd := &cobra.Command{
		Use:     "regdash",
		Short:   "Regulatory statistics dashboard for the terminal",
		Long:    "regdash: browse rule counts, word counts, agency complexity and the agency/chapter/rule hierarchy",
		Version: ver,
		Example: rootCmdExample,
		// Errors are printed by main; usage is only useful for flag errors.
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			config.SetGlobalConfig(cfg)

			result := setupLogging(cmd)
			logResult = &result

			debug, _ := cmd.Flags().GetBool("debug")
			cmd.SetContext(withApp(cmd.Context(), &app{cfg: cfg, logResult: logResult, debug: debug}))
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a := appFrom(cmd.Context()); a != nil {
				a.close()
			}
			return cleanupLogging(logResult)
		},
	}

	cmd.PersistentFlags().Bool("debug", false, "enable debug logging")
	cmd.PersistentFlags().String("api-url", "", "statistics API origin (overrides config and REGDASH_API_URL)")
	cmd.PersistentFlags().
		String("cache-ttl", "0", "response cache TTL, seconds or duration like 30m (0 = use config default)")
	cmd.PersistentFlags().Bool("no-cache", false, "disable the on-disk response cache")
	cmd.PersistentFlags().String("project-dir", "", "project directory holding .regdash/config.yaml")

	cmd.AddCommand(
		NewDashboardCmd(), NewAgenciesCmd(), NewExploreCmd(), NewAgencyCmd(), NewRuleCmd(),
		newConfigCmd(), newCacheCmd(),
	)

	return cmd
}

// loadConfig resolves the project overlay and applies the global flags on
// top of file and environment values.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	ctx := cmd.Context()

	projectFlag, _ := cmd.Flags().GetString("project-dir")
	wd, _ := os.Getwd()
	projectDir := config.ResolveProjectDir(ctx, projectFlag, wd)
	config.SetResolvedProjectDir(projectDir)

	cfg := config.NewWithProjectDir(ctx, projectDir)

	if cmd.Flags().Changed("api-url") {
		cfg.API.BaseURL, _ = cmd.Flags().GetString("api-url")
	}

	rawTTL, _ := cmd.Flags().GetString("cache-ttl")
	ttl, err := cache.ParseTTL(rawTTL)
	if err != nil {
		return nil, fmt.Errorf("--cache-ttl: %w", err)
	}
	if ttl > 0 {
		cfg.Cache.TTLSeconds = ttl
	}

	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		cfg.Cache.Enabled = false
	}
	return cfg, nil
}

const rootCmdExample = `  # Show the dashboard: bureaucracy index, charts and agency cards
  regdash dashboard

  # Search and sort agency stats interactively
  regdash agencies

  # Browse the agency -> chapter -> rule hierarchy
  regdash explore

  # Print every agency with its chapters expanded, as JSON
  regdash explore --depth 1 --output json

  # Show one agency
  regdash agency 42

  # Render the text of a rule
  regdash rule 761-1.1

  # Point at a different API
  regdash dashboard --api-url https://stats.example.org

  # Initialize configuration
  regdash config init`

// newConfigCmd creates the config command group with configuration subcommands.
func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "config", Short: "Configuration management commands"}
	cmd.AddCommand(
		NewConfigInitCmd(), NewConfigSetCmd(), NewConfigGetCmd(),
		NewConfigListCmd(), NewConfigValidateCmd(),
	)
	return cmd
}

// newCacheCmd creates the cache command group.
func newCacheCmd() *cobra.Command {
	cmd := &cobra.Command{Use: "cache", Short: "Response cache commands"}
	cmd.AddCommand(NewCacheClearCmd(), NewCacheStatsCmd(), NewCachePruneCmd())
	return cmd
}
