package cli

import (
	"fmt"

	"github.com/predixlabs/predix-deploy/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

// ValidateCmd loads and validates the deployment config without deploying.
func ValidateCmd(flags *rootFlags) *cobra.Command {
	var printConfig bool

	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Validate the deployment configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			if printConfig {
				rendered, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("failed to render config: %w", err)
				}
				fmt.Print(string(rendered))
				return nil
			}

			ui.Success("Configuration is valid\n")
			ui.Info("App: %s, image: %s\n", cfg.Name, cfg.Image.Repository)
			for branch, rule := range cfg.Branches {
				ui.Info("  %s -> tag %q on runner %q (env secret %s)\n", branch, rule.Tag, rule.Runner, rule.EnvSecret)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&printConfig, "print", false, "Print the normalized configuration as YAML")
	return cmd
}
