// Package api exposes the deployment daemon's HTTP surface: the push event
// endpoint the CI forwarder posts to, plus deployment history and secret
// management.
package api

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/predixlabs/predix-deploy/internal/config"
	"github.com/predixlabs/predix-deploy/internal/store"
)

// defaultContextTimeout bounds a background deployment launched from a push
// event, build included.
const defaultContextTimeout = 45 * time.Minute

// PipelineRunner runs the full build-and-deploy pipeline for a branch.
// Satisfied by *deploy.Pipeline.
type PipelineRunner interface {
	Run(ctx context.Context, id, branch, trigger string) (store.Deployment, error)
}

type APIServer struct {
	cfg      config.Config
	store    *store.Store
	pipeline PipelineRunner
	logger   *slog.Logger
	apiToken string
	router   *http.ServeMux
}

func NewAPIServer(cfg config.Config, st *store.Store, pipeline PipelineRunner, logger *slog.Logger, apiToken string) *APIServer {
	s := &APIServer{
		cfg:      cfg,
		store:    st,
		pipeline: pipeline,
		logger:   logger,
		apiToken: apiToken,
		router:   http.NewServeMux(),
	}
	s.setupRoutes()
	return s
}

// Handler returns the routed handler, middleware included.
func (s *APIServer) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *APIServer) ListenAndServe(ctx context.Context) error {
	httpServer := &http.Server{
		Addr:              s.cfg.Server.ListenAddr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- httpServer.ListenAndServe()
	}()
	s.logger.Info("API server listening", "addr", s.cfg.Server.ListenAddr, "runner", s.cfg.Server.Runner)

	select {
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	}
}
