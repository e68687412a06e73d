package cli

import (
	"context"
	"log/slog"
	"os"

	"github.com/predixlabs/predix-deploy/internal/config"
	"github.com/predixlabs/predix-deploy/internal/constants"
	"github.com/predixlabs/predix-deploy/internal/deploy"
	"github.com/predixlabs/predix-deploy/internal/dockerx"
	"github.com/predixlabs/predix-deploy/internal/logging"
	"github.com/predixlabs/predix-deploy/internal/store"
)

func loadConfig(flags *rootFlags) (config.Config, error) {
	path := flags.configPath
	if path == "" {
		path = "."
	}
	return config.Load(path)
}

func openStore() (*store.Store, error) {
	dataDir, err := config.DataDir()
	if err != nil {
		return nil, err
	}
	return store.Open(dataDir)
}

func newLogger(cfg config.Config) *slog.Logger {
	level := logging.ParseLevel(cfg.Server.LogLevel)
	if os.Getenv(constants.EnvVarDebug) == "true" {
		level = slog.LevelDebug
	}
	return logging.New(level)
}

// newPipeline wires a pipeline against the local Docker daemon and data
// store. The returned cleanup closes both.
func newPipeline(ctx context.Context, cfg config.Config) (*deploy.Pipeline, func(), error) {
	dockerClient, err := dockerx.NewClient(ctx)
	if err != nil {
		return nil, nil, err
	}
	st, err := openStore()
	if err != nil {
		dockerClient.Close()
		return nil, nil, err
	}
	cleanup := func() {
		st.Close()
		dockerClient.Close()
	}
	pipeline := deploy.NewPipeline(cfg, dockerClient, st, newLogger(cfg), os.Stdout)
	return pipeline, cleanup, nil
}
