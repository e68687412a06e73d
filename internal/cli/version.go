package cli

import (
	"github.com/predixlabs/predix-deploy/internal/constants"
	"github.com/predixlabs/predix-deploy/internal/ui"
	"github.com/spf13/cobra"
)

func VersionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ui.Info("predix-deploy %s\n", constants.Version)
		},
	}
	return cmd
}
