package cli

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/predixlabs/predix-deploy/internal/api"
	"github.com/predixlabs/predix-deploy/internal/deploy"
	"github.com/predixlabs/predix-deploy/internal/dockerx"
	"github.com/spf13/cobra"
)

// ServeCmd runs the push-event daemon. It is the long-running counterpart
// of the deploy command: the CI forwarder posts push events and the daemon
// deploys the ones that match its runner.
func ServeCmd(flags *rootFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the push-event daemon",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(flags)
			if err != nil {
				return err
			}

			apiToken := os.Getenv(cfg.Server.APITokenEnv)
			if apiToken == "" {
				return fmt.Errorf("API token environment variable '%s' is not set", cfg.Server.APITokenEnv)
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			dockerClient, err := dockerx.NewClient(ctx)
			if err != nil {
				return err
			}
			defer dockerClient.Close()

			st, err := openStore()
			if err != nil {
				return err
			}
			defer st.Close()

			logger := newLogger(cfg)
			pipeline := deploy.NewPipeline(cfg, dockerClient, st, logger, os.Stdout)
			server := api.NewAPIServer(cfg, st, pipeline, logger, apiToken)
			return server.ListenAndServe(ctx)
		},
	}
	return cmd
}
