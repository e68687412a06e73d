package api

import (
	"net/http"

	"github.com/predixlabs/predix-deploy/internal/apitypes"
	"github.com/predixlabs/predix-deploy/internal/constants"
)

func (s *APIServer) handleHealth() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := apitypes.HealthResponse{
			Status:  "ok",
			Version: constants.Version,
			Service: "predix-deployd",
		}
		if err := writeJSON(w, http.StatusOK, response); err != nil {
			s.logger.Error("Failed to write JSON response", "error", err)
		}
	}
}
