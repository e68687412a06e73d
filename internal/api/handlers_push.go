package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/predixlabs/predix-deploy/internal/apitypes"
	"github.com/predixlabs/predix-deploy/internal/deploy"
	"github.com/predixlabs/predix-deploy/internal/gitref"
	"github.com/predixlabs/predix-deploy/internal/logging"
)

// handlePushEvent maps a push to a deployment. Pushes to branches without a
// rule, and releases targeting another runner, are acknowledged with 202 and
// status "skipped" so the forwarder never retries them.
func (s *APIServer) handlePushEvent() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apitypes.PushEventRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		branch, err := gitref.ParseBranch(req.Ref)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		release, err := gitref.Resolve(branch, s.cfg.Branches)
		if errors.Is(err, gitref.ErrBranchNotConfigured) {
			s.logger.Info("Ignoring push to branch with no deployment rule", "branch", branch)
			s.writeResponse(w, http.StatusAccepted, apitypes.PushEventResponse{
				Status: "skipped",
				Branch: branch,
				Reason: "no deployment rule for branch",
			})
			return
		}
		if err != nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		if s.cfg.Server.Runner != "" && release.Runner != s.cfg.Server.Runner {
			s.logger.Info("Ignoring release for another runner",
				"branch", branch, "runner", release.Runner, "self", s.cfg.Server.Runner)
			s.writeResponse(w, http.StatusAccepted, apitypes.PushEventResponse{
				Status: "skipped",
				Branch: branch,
				Runner: release.Runner,
				Reason: fmt.Sprintf("release targets runner '%s', this server is '%s'", release.Runner, s.cfg.Server.Runner),
			})
			return
		}

		deploymentID := deploy.NewDeploymentID()
		deploymentLogger := logging.ForDeployment(s.logger, deploymentID, branch)

		// Run the pipeline in the background; the forwarder only needs the
		// event acknowledged.
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), defaultContextTimeout)
			defer cancel()

			if _, err := s.pipeline.Run(ctx, deploymentID, branch, "push"); err != nil {
				deploymentLogger.Error("Deployment failed", "error", err)
			}
		}()

		s.writeResponse(w, http.StatusAccepted, apitypes.PushEventResponse{
			DeploymentID: deploymentID,
			Status:       "started",
			Branch:       branch,
			Tag:          release.Tag,
			Runner:       release.Runner,
		})
	}
}

func (s *APIServer) writeResponse(w http.ResponseWriter, status int, data any) {
	if err := writeJSON(w, status, data); err != nil {
		s.logger.Error("Failed to write JSON response", "error", err)
	}
}
