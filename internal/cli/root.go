// Package cli implements the predix-deploy command tree.
package cli

import (
	"github.com/spf13/cobra"
)

// rootFlags holds the values for flags shared by all commands.
type rootFlags struct {
	configPath string
}

func NewRootCmd() *cobra.Command {
	flags := &rootFlags{}

	cmd := &cobra.Command{
		Use:           "predix-deploy",
		Short:         "predix-deploy builds, publishes and runs the agent container per branch",
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	cmd.PersistentFlags().StringVarP(&flags.configPath, "config", "c", "", "Path to config file or directory (default: .)")

	cmd.AddCommand(
		BuildCmd(flags),
		DeployCmd(flags),
		ServeCmd(flags),
		StatusCmd(flags),
		HistoryCmd(flags),
		SecretsCmd(),
		ValidateCmd(flags),
		LintConfigCmd(flags),
		VersionCmd(),
	)

	return cmd
}
