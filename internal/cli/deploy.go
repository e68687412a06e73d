package cli

import (
	"fmt"

	"github.com/predixlabs/predix-deploy/internal/deploy"
	"github.com/predixlabs/predix-deploy/internal/store"
	"github.com/predixlabs/predix-deploy/internal/ui"
	"github.com/spf13/cobra"
)

// BuildCmd builds and pushes the image for a branch without touching the
// running container.
func BuildCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build <branch>",
		Short: "Build and push the agent image for a branch",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := args[0]
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			pipeline, cleanup, err := newPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			release, err := pipeline.Resolve(branch)
			if err != nil {
				return err
			}
			if err := pipeline.Build(cmd.Context(), release); err != nil {
				return err
			}
			ui.Success("Built and pushed %s\n", cfg.Image.Ref(release.Tag))
			return nil
		},
	}
	return cmd
}

// DeployCmd runs the full pipeline for a branch: build, push, and replace
// the running container.
func DeployCmd(flags *rootFlags) *cobra.Command {
	var skipBuild bool

	cmd := &cobra.Command{
		Use:   "deploy <branch>",
		Short: "Build, push and deploy the agent container for a branch",
		Long:  "Runs the full pipeline for a branch: build and push the image, then replace the running container with it. With --skip-build the currently published image is deployed as-is.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			branch := args[0]
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			pipeline, cleanup, err := newPipeline(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer cleanup()

			deploymentID := deploy.NewDeploymentID()
			if skipBuild {
				release, err := pipeline.Resolve(branch)
				if err != nil {
					return err
				}
				if err := pipeline.Deploy(cmd.Context(), deploymentID, release); err != nil {
					return err
				}
				ui.Success("Deployed %s (deployment %s)\n", cfg.Image.Ref(release.Tag), deploymentID)
				return nil
			}

			d, err := pipeline.Run(cmd.Context(), deploymentID, branch, "cli")
			if err != nil {
				return err
			}
			if d.Status == store.StatusSkipped {
				ui.Warn("No deployment rule for branch %q, nothing deployed\n", branch)
				return nil
			}
			ui.Success("Deployed %s (deployment %s)\n", d.ImageRef, d.ID)
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipBuild, "skip-build", false, "Deploy the already published image without building")
	return cmd
}

func statusLine(d store.Deployment) string {
	finished := "-"
	if d.FinishedAt != nil {
		finished = d.FinishedAt.Format("2006-01-02 15:04:05")
	}
	return fmt.Sprintf("%s  %-9s  %-20s  %-8s  %s", d.ID, d.Status, d.Branch, d.Trigger, finished)
}
