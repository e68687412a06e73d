package api

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/predixlabs/predix-deploy/internal/apitypes"
	"github.com/predixlabs/predix-deploy/internal/store"
)

func (s *APIServer) handleSecretsList() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		secrets, err := s.store.ListSecrets()
		if err != nil {
			s.logger.Error("Failed to list secrets", "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		apiSecrets := make([]apitypes.SecretListItemResponse, len(secrets))
		for i, secret := range secrets {
			apiSecrets[i] = apitypes.SecretListItemResponse{
				Name:        secret.Name,
				DigestValue: secret.Digest(),
				CreatedAt:   secret.CreatedAt.Format(time.RFC3339),
				UpdatedAt:   secret.UpdatedAt.Format(time.RFC3339),
			}
		}
		s.writeResponse(w, http.StatusOK, apitypes.SecretsListResponse{Secrets: apiSecrets})
	}
}

func (s *APIServer) handleSetSecret() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req apitypes.SetSecretRequest
		if err := decodeJSON(r.Body, &req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := validateSetSecretRequest(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		if err := s.store.SetSecret(req.Name, req.Value); err != nil {
			s.logger.Error("Failed to set secret", "name", req.Name, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func (s *APIServer) handleDeleteSecret() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		name := r.PathValue("name")
		if name == "" {
			http.Error(w, "Secret name is required", http.StatusBadRequest)
			return
		}

		if err := s.store.DeleteSecret(name); errors.Is(err, store.ErrNotFound) {
			http.Error(w, "secret not found", http.StatusNotFound)
			return
		} else if err != nil {
			s.logger.Error("Failed to delete secret", "name", name, "error", err)
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func validateSetSecretRequest(req apitypes.SetSecretRequest) error {
	if strings.TrimSpace(req.Name) == "" {
		return fmt.Errorf("secret name is required")
	}
	if strings.TrimSpace(req.Value) == "" {
		return fmt.Errorf("secret value is required")
	}
	if len(req.Name) > 255 {
		return fmt.Errorf("secret name too long (max 255 characters)")
	}
	if !isValidSecretName(req.Name) {
		return fmt.Errorf("secret name can only contain letters, numbers, underscores, hyphens, and dots")
	}
	// Env secrets hold whole .env files, so the limit is generous.
	if len(req.Value) > 65536 {
		return fmt.Errorf("secret value too long (max 65536 characters)")
	}
	return nil
}

func isValidSecretName(name string) bool {
	for _, char := range name {
		if !((char >= 'a' && char <= 'z') ||
			(char >= 'A' && char <= 'Z') ||
			(char >= '0' && char <= '9') ||
			char == '_' || char == '-' || char == '.') {
			return false
		}
	}
	return true
}
