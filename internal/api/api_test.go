package api

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"filippo.io/age"
	"github.com/predixlabs/predix-deploy/internal/apitypes"
	"github.com/predixlabs/predix-deploy/internal/config"
	"github.com/predixlabs/predix-deploy/internal/constants"
	"github.com/predixlabs/predix-deploy/internal/store"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testToken = "test-token"

type runCall struct {
	id      string
	branch  string
	trigger string
}

type fakePipeline struct {
	runs chan runCall
}

func (f *fakePipeline) Run(ctx context.Context, id, branch, trigger string) (store.Deployment, error) {
	f.runs <- runCall{id: id, branch: branch, trigger: trigger}
	return store.Deployment{ID: id, Branch: branch, Status: store.StatusSucceeded}, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *store.Store, *fakePipeline) {
	t.Helper()

	identity, err := age.GenerateX25519Identity()
	require.NoError(t, err)
	t.Setenv(constants.EnvVarAgeIdentity, identity.String())

	st, err := store.Open(t.TempDir())
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	cfg := config.Config{Server: config.Server{Runner: "prod"}}
	normalized, err := cfg.Normalize()
	require.NoError(t, err)

	pipeline := &fakePipeline{runs: make(chan runCall, 1)}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	apiServer := NewAPIServer(normalized, st, pipeline, logger, testToken)

	ts := httptest.NewServer(apiServer.Handler())
	t.Cleanup(ts.Close)
	return ts, st, pipeline
}

func doRequest(t *testing.T, method, url, token, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, url, reader)
	require.NoError(t, err)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeBody[T any](t *testing.T, resp *http.Response) T {
	t.Helper()
	var v T
	require.NoError(t, decodeJSON(resp.Body, &v))
	return v
}

func TestHealthNeedsNoAuth(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodGet, ts.URL+"/health", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)

	health := decodeBody[apitypes.HealthResponse](t, resp)
	assert.Equal(t, "ok", health.Status)
	assert.Equal(t, "predix-deployd", health.Service)
}

func TestBearerTokenAuth(t *testing.T) {
	ts, _, _ := newTestServer(t)

	tests := []struct {
		name       string
		token      string
		wantStatus int
	}{
		{"missing token", "", http.StatusUnauthorized},
		{"wrong token", "nope", http.StatusUnauthorized},
		{"valid token", testToken, http.StatusOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, http.MethodGet, ts.URL+"/v1/deployments", tt.token, "")
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
		})
	}
}

func TestPushEventStartsDeployment(t *testing.T) {
	ts, _, pipeline := newTestServer(t)

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/events/push", testToken,
		`{"ref": "refs/heads/master", "pusher": "alice"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	event := decodeBody[apitypes.PushEventResponse](t, resp)
	assert.Equal(t, "started", event.Status)
	assert.Equal(t, "master", event.Branch)
	assert.Equal(t, "latest", event.Tag)
	assert.Equal(t, "prod", event.Runner)
	assert.NotEmpty(t, event.DeploymentID)

	select {
	case call := <-pipeline.runs:
		assert.Equal(t, event.DeploymentID, call.id)
		assert.Equal(t, "master", call.branch)
		assert.Equal(t, "push", call.trigger)
	case <-time.After(2 * time.Second):
		t.Fatal("pipeline was never run")
	}
}

func TestPushEventSkipsUnconfiguredBranch(t *testing.T) {
	ts, _, pipeline := newTestServer(t)

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/events/push", testToken,
		`{"ref": "refs/heads/feature/widgets"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	event := decodeBody[apitypes.PushEventResponse](t, resp)
	assert.Equal(t, "skipped", event.Status)
	assert.Contains(t, event.Reason, "no deployment rule")
	assert.Empty(t, pipeline.runs)
}

func TestPushEventSkipsOtherRunner(t *testing.T) {
	// The test server identifies as the "prod" runner; develop releases
	// target "dev" and must be acknowledged without deploying.
	ts, _, pipeline := newTestServer(t)

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/events/push", testToken,
		`{"ref": "refs/heads/develop"}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)

	event := decodeBody[apitypes.PushEventResponse](t, resp)
	assert.Equal(t, "skipped", event.Status)
	assert.Equal(t, "dev", event.Runner)
	assert.Contains(t, event.Reason, "runner")
	assert.Empty(t, pipeline.runs)
}

func TestPushEventBadRequests(t *testing.T) {
	ts, _, _ := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"empty body", ""},
		{"malformed JSON", `{"ref": `},
		{"unknown field", `{"ref": "refs/heads/master", "bogus": true}`},
		{"tag ref", `{"ref": "refs/tags/v1.0"}`},
		{"bare branch name", `{"ref": "master"}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := doRequest(t, http.MethodPost, ts.URL+"/v1/events/push", testToken, tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
}

func TestDeploymentEndpoints(t *testing.T) {
	ts, st, _ := newTestServer(t)

	d := store.Deployment{
		ID:        "01TESTDEPLOYMENT0000000000",
		AppName:   "predix-agent",
		Branch:    "master",
		Tag:       "latest",
		ImageRef:  "ghcr.io/predixlabs/predix-agent:latest",
		Runner:    "prod",
		Trigger:   "push",
		Status:    store.StatusSucceeded,
		StartedAt: time.Now(),
	}
	require.NoError(t, st.SaveDeployment(d))

	resp := doRequest(t, http.MethodGet, ts.URL+"/v1/deployments", testToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[apitypes.DeploymentsListResponse](t, resp)
	require.Len(t, list.Deployments, 1)
	assert.Equal(t, d.ID, list.Deployments[0].ID)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/deployments/"+d.ID, testToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	single := decodeBody[apitypes.DeploymentResponse](t, resp)
	assert.Equal(t, "master", single.Deployment.Branch)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/deployments/missing", testToken, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/deployments?limit=bogus", testToken, "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestSecretsEndpoints(t *testing.T) {
	ts, _, _ := newTestServer(t)

	resp := doRequest(t, http.MethodPost, ts.URL+"/v1/secrets", testToken,
		`{"name": "ENV_PRD", "value": "OPENAI_API_KEY=sk-test\nLOG_LEVEL=info\n"}`)
	require.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodGet, ts.URL+"/v1/secrets", testToken, "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list := decodeBody[apitypes.SecretsListResponse](t, resp)
	require.Len(t, list.Secrets, 1)
	assert.Equal(t, "ENV_PRD", list.Secrets[0].Name)
	assert.NotEmpty(t, list.Secrets[0].DigestValue)

	resp = doRequest(t, http.MethodPost, ts.URL+"/v1/secrets", testToken,
		`{"name": "bad name", "value": "x"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, ts.URL+"/v1/secrets/ENV_PRD", testToken, "")
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, http.MethodDelete, ts.URL+"/v1/secrets/ENV_PRD", testToken, "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}
