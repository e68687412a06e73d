package cli

import (
	"errors"

	"github.com/predixlabs/predix-deploy/internal/dockerx"
	"github.com/predixlabs/predix-deploy/internal/store"
	"github.com/predixlabs/predix-deploy/internal/ui"
	"github.com/spf13/cobra"
)

// StatusCmd reports the state of the agent container and the last
// successful deployment per configured branch.
func StatusCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show the agent container state and recent deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			dockerClient, err := dockerx.NewClient(cmd.Context())
			if err != nil {
				return err
			}
			defer dockerClient.Close()

			containerID, err := dockerx.FindContainerByName(cmd.Context(), dockerClient, cfg.Name)
			if err != nil {
				return err
			}
			if containerID == "" {
				ui.Warn("Container %q is not running\n", cfg.Name)
			} else {
				info, err := dockerClient.ContainerInspect(cmd.Context(), containerID)
				if err != nil {
					return err
				}
				state := "unknown"
				if info.State != nil {
					state = info.State.Status
				}
				ui.Success("Container %q is %s (image %s)\n", cfg.Name, state, info.Config.Image)
				if deploymentID, ok := info.Config.Labels[dockerx.LabelDeploymentID]; ok {
					ui.Info("Deployment: %s (branch %s)\n", deploymentID, info.Config.Labels[dockerx.LabelBranch])
				}
			}

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			for branch := range cfg.Branches {
				branchUI := &ui.PrefixedUI{Prefix: branch + ": "}
				last, err := st.LastSuccessful(branch)
				if errors.Is(err, store.ErrNotFound) {
					branchUI.Info("no successful deployment yet\n")
					continue
				}
				if err != nil {
					return err
				}
				branchUI.Info("last deployed %s (%s)\n", last.ID, last.ImageRef)
			}
			return nil
		},
	}
	return cmd
}

// HistoryCmd lists recorded deployments, newest first.
func HistoryCmd(flags *rootFlags) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded deployments",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			deployments, err := st.ListDeployments(limit)
			if err != nil {
				return err
			}
			if len(deployments) == 0 {
				ui.Info("No deployments recorded\n")
				return nil
			}
			for _, d := range deployments {
				ui.Info("%s\n", statusLine(d))
				if d.Error != "" {
					ui.Error("  %s\n", d.Error)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Maximum number of deployments to show")
	return cmd
}
