package server

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/services"
	"github.com/amphitheatre-app/playbooks/internal/testutil"
)

const repoName = "acme/app"

// testEnv wires the router to real services over in-memory clients.
type testEnv struct {
	orch   *testutil.FakeOrchestrator
	scm    *testutil.FakeSCM
	router *Router
}

func newTestEnv(t *testing.T, playbooks ...*api.PlaybookSpec) *testEnv {
	t.Helper()
	return newTestEnvWithOptions(t, Options{
		RequestTimeout: time.Second,
		AllowedOrigins: []string{"*"},
	}, playbooks...)
}

func newTestEnvWithOptions(t *testing.T, opts Options, playbooks ...*api.PlaybookSpec) *testEnv {
	t.Helper()
	orch := testutil.NewFakeOrchestrator(playbooks...)
	scmClient := testutil.NewFakeSCM()
	log := testutil.SilentLogger()

	router := NewRouter(Services{
		Playbooks: services.NewPlaybookService(orch, scmClient, log),
		Files:     services.NewFileService(orch, scmClient, log),
		Folders:   services.NewFolderService(orch, scmClient, log),
		Logs:      services.NewLoggerService(orch, log),
	}, log, opts)

	return &testEnv{orch: orch, scm: scmClient, router: router}
}

func (e *testEnv) do(method, target, body string) *httptest.ResponseRecorder {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rr := httptest.NewRecorder()
	e.router.ServeHTTP(rr, req)
	return rr
}

func decodeBody[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &v), "body: %s", rr.Body.String())
	return v
}

func requireError(t *testing.T, rr *httptest.ResponseRecorder, status int, code string) api.ErrorResponse {
	t.Helper()
	require.Equal(t, status, rr.Code, "body: %s", rr.Body.String())
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	body := decodeBody[api.ErrorResponse](t, rr)
	require.Equal(t, code, body.Code)
	require.NotEmpty(t, body.Message)
	return body
}

func playbookURL(p *api.PlaybookSpec, suffix string) string {
	return "/v1/playbooks/" + p.ID + suffix
}

func testEvent(message string) api.LogEvent {
	return api.LogEvent{Message: message}
}
