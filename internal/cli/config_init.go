package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/rshade/regdash/internal/config"
)

// NewConfigInitCmd creates the config init command for initializing configuration.
// When a project directory was resolved (--project-dir or REGDASH_PROJECT_DIR)
// and --global is not set, it writes the project overlay. Otherwise it writes
// the global ~/.regdash/config.yaml.
func NewConfigInitCmd() *cobra.Command {
	var (
		force  bool
		global bool
	)

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize configuration file with default values",
		Long: `Creates a new configuration file with default values.

With --project-dir or REGDASH_PROJECT_DIR, creates the project overlay at
$PROJECT/.regdash/config.yaml. Use --global to initialize the global file
even when a project directory is set.`,
		Example: `  # Create global configuration
  regdash config init

  # Create a project overlay
  regdash config init --project-dir .

  # Overwrite an existing file
  regdash config init --force`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			path, err := config.GlobalConfigPath()
			if err != nil {
				return err
			}
			if projectDir := config.GetResolvedProjectDir(); projectDir != "" && !global {
				path = filepath.Join(projectDir, "config.yaml")
			}
			return initConfigFile(cmd, path, force)
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite existing configuration file")
	cmd.Flags().BoolVar(&global, "global", false, "initialize the global file even when a project directory is set")

	return cmd
}

// initConfigFile writes the built-in defaults to path.
func initConfigFile(cmd *cobra.Command, path string, force bool) error {
	if !force {
		_, err := os.Stat(path)
		if err == nil {
			return errors.New("configuration file already exists, use --force to overwrite")
		}
		if !os.IsNotExist(err) {
			return fmt.Errorf("cannot access config path %s: %w", path, err)
		}
	}

	cfg := config.Default()
	cfg.SetConfigPath(path)
	if err := cfg.Save(); err != nil {
		return fmt.Errorf("failed to save configuration: %w", err)
	}

	cmd.Printf("Configuration initialized at %s\n", path)
	return nil
}
