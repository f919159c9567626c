package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/config"
)

// NewConfigGetCmd prints the effective value of one key.
func NewConfigGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <key>",
		Short: "Print the effective value of a configuration key",
		Example: `  regdash config get api.base_url
  regdash config get dashboard.index_year`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			v, err := config.GetGlobalConfig().Get(args[0])
			if err != nil {
				return fmt.Errorf("%w (known keys: %s)", err, strings.Join(config.Keys(), ", "))
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), v)
			return err
		},
	}
}

// NewConfigSetCmd writes one key to the global config file.
func NewConfigSetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "set <key> <value>",
		Short: "Set a configuration key in the global config file",
		Long: `Sets a key in ~/.regdash/config.yaml, creating the file from the defaults
when it does not exist. Environment overrides are not written to the file.`,
		Example: `  regdash config set api.base_url https://stats.example.org
  regdash config set cache.ttl_seconds 600
  regdash config set output.default_format json`,
		Args: cobra.ExactArgs(2), //nolint:mnd // key and value
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := config.GlobalConfigPath()
			if err != nil {
				return err
			}
			cfg, err := config.LoadForEdit(path)
			if err != nil {
				return fmt.Errorf("loading %s: %w", path, err)
			}
			if err = cfg.Set(args[0], args[1]); err != nil {
				return err
			}
			if err = cfg.Validate(); err != nil {
				return fmt.Errorf("refusing to save invalid configuration: %w", err)
			}
			if err = cfg.Save(); err != nil {
				return err
			}
			logger.Debug().Ctx(cmd.Context()).Str("key", args[0]).Str("path", path).Msg("config key set")
			cmd.Printf("Set %s = %s\n", args[0], args[1])
			return nil
		},
	}
}

// NewConfigListCmd prints every key with its effective value.
func NewConfigListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List every configuration key with its effective value",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			values := config.GetGlobalConfig().List()
			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0) //nolint:mnd // column padding
			for _, k := range config.Keys() {
				if _, err := fmt.Fprintf(w, "%s\t%s\n", k, values[k]); err != nil {
					return err
				}
			}
			return w.Flush()
		},
	}
}
