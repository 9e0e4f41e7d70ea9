package handlers_test

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"todoapp/backend/testutil"
)

func TestHealthEndpoints(t *testing.T) {
	r, store := testutil.SetupTestRouter(t)

	resp := testutil.DoJSON(t, r, http.MethodGet, "/healthz", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.JSONEq(t, `{"status":"ok"}`, resp.Body.String())

	resp = testutil.DoJSON(t, r, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "healthy", decode[map[string]any](t, resp.Body.Bytes())["status"])

	store.PingErr = errors.New("connection refused")
	resp = testutil.DoJSON(t, r, http.MethodGet, "/readyz", nil)
	require.Equal(t, http.StatusServiceUnavailable, resp.Code)
	assert.Equal(t, "unhealthy", decode[map[string]any](t, resp.Body.Bytes())["status"])
}

func TestMetricsEndpoint(t *testing.T) {
	r, _ := testutil.SetupTestRouter(t)
	testutil.CreateTestTodo(t, r, map[string]any{"title": "Buy milk"})

	resp := testutil.DoJSON(t, r, http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, resp.Code)
	assert.Contains(t, resp.Body.String(), "todo_http_requests_total")
	assert.Contains(t, resp.Body.String(), `route="/api/todos/"`)
}
