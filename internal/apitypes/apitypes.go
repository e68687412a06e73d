package apitypes

import "github.com/predixlabs/predix-deploy/internal/store"

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
	Service string `json:"service"`
}

// PushEventRequest is the payload the CI forwarder posts on every push.
// Ref is the fully qualified git ref, e.g. "refs/heads/master".
type PushEventRequest struct {
	Ref        string `json:"ref"`
	Repository string `json:"repository,omitempty"`
	Pusher     string `json:"pusher,omitempty"`
	Commit     string `json:"commit,omitempty"`
}

// PushEventResponse reports how the daemon handled a push event. Status is
// "started" when a deployment was launched and "skipped" otherwise; Reason
// explains a skip.
type PushEventResponse struct {
	DeploymentID string `json:"deploymentId,omitempty"`
	Status       string `json:"status"`
	Branch       string `json:"branch,omitempty"`
	Tag          string `json:"tag,omitempty"`
	Runner       string `json:"runner,omitempty"`
	Reason       string `json:"reason,omitempty"`
}

type DeploymentsListResponse struct {
	Deployments []store.Deployment `json:"deployments"`
}

type DeploymentResponse struct {
	Deployment store.Deployment `json:"deployment"`
}

type SecretListItemResponse struct {
	Name        string `json:"name"`
	DigestValue string `json:"digestValue"`
	CreatedAt   string `json:"createdAt"`
	UpdatedAt   string `json:"updatedAt"`
}

type SecretsListResponse struct {
	Secrets []SecretListItemResponse `json:"secrets"`
}

type SetSecretRequest struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
