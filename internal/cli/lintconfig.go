package cli

import (
	"fmt"

	"github.com/pelletier/go-toml/v2"
	"github.com/predixlabs/predix-deploy/internal/lintcfg"
	"github.com/predixlabs/predix-deploy/internal/ui"
	"github.com/spf13/cobra"
)

// LintConfigCmd validates the agent repo's lint configuration and prints
// the resolved rule set. The same check runs as a pre-flight before every
// build, so this surfaces what that check sees.
func LintConfigCmd(flags *rootFlags) *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "lint-config",
		Short: "Validate and print the resolved lint configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := configPath
			if path == "" {
				cfg, err := loadConfig(flags)
				if err != nil {
					return err
				}
				if cfg.Lint == nil || cfg.Lint.Config == "" {
					return fmt.Errorf("no lint config declared; pass --file or set lint.config")
				}
				path = cfg.Lint.Config
			}

			lintConfig, err := lintcfg.Load(path)
			if err != nil {
				return err
			}

			resolved, err := toml.Marshal(lintConfig)
			if err != nil {
				return fmt.Errorf("failed to render lint config: %w", err)
			}
			fmt.Print(string(resolved))

			if lintConfig.LineLengthAdvisory() {
				ui.Warn("line-length %d is advisory: E501 is not enforced\n", lintConfig.LineLength)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&configPath, "file", "", "Path to ruff.toml or pyproject.toml (default: lint.config from the deployment config)")
	return cmd
}
