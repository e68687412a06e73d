package api

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/predixlabs/predix-deploy/internal/apitypes"
	"github.com/predixlabs/predix-deploy/internal/constants"
	"github.com/predixlabs/predix-deploy/internal/store"
)

func (s *APIServer) handleDeploymentsList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := constants.DefaultDeploymentsToKeep
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = parsed
		}

		deployments, err := s.store.ListDeployments(limit)
		if err != nil {
			s.logger.Error("Failed to list deployments", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.writeResponse(w, http.StatusOK, apitypes.DeploymentsListResponse{Deployments: deployments})
	}
}

func (s *APIServer) handleDeploymentGet() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		deploymentID := r.PathValue("deploymentID")
		if deploymentID == "" {
			http.Error(w, "deployment ID is required", http.StatusBadRequest)
			return
		}

		deployment, err := s.store.GetDeployment(deploymentID)
		if errors.Is(err, store.ErrNotFound) {
			http.Error(w, "deployment not found", http.StatusNotFound)
			return
		}
		if err != nil {
			s.logger.Error("Failed to fetch deployment", "deployment", deploymentID, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		s.writeResponse(w, http.StatusOK, apitypes.DeploymentResponse{Deployment: deployment})
	}
}
