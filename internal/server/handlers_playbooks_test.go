package server

import (
	"errors"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/testutil"
)

func TestHandleCreatePlaybook(t *testing.T) {
	env := newTestEnv(t)
	env.scm.AddRepository(repoName, api.SCMRepository{Name: "app", Description: "The app"})

	rr := env.do(http.MethodPost, "/v1/playbooks", `{"repo":"https://github.com/acme/app.git","branch":"main"}`)
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	p := decodeBody[api.PlaybookSpec](t, rr)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "app", p.Title)
	assert.Equal(t, "The app", p.Description)
	require.NotNil(t, p.Preface.Repository)
	assert.Equal(t, "main", p.Preface.Repository.Branch)
	assert.Len(t, env.orch.Created, 1)
}

func TestHandleCreatePlaybook_Errors(t *testing.T) {
	tests := []struct {
		name       string
		body       string
		createErr  error
		wantStatus int
		wantCode   string
		wantMsg    string
	}{
		{
			name:       "invalid json",
			body:       `{"repo":`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_PLAYBOOK_REQUEST",
		},
		{
			name:       "empty body",
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_PLAYBOOK_REQUEST",
		},
		{
			name:       "missing selector",
			body:       `{"repo":"https://github.com/acme/app.git"}`,
			wantStatus: http.StatusBadRequest,
			wantCode:   "BAD_PLAYBOOK_REQUEST",
			wantMsg:    "requires either branch, tag, or rev",
		},
		{
			name:       "unknown repository",
			body:       `{"repo":"https://github.com/acme/missing.git","branch":"main"}`,
			wantStatus: http.StatusInternalServerError,
			wantCode:   "NOT_FOUND_REPO",
		},
		{
			name:       "orchestrator rejects",
			body:       `{"repo":"https://github.com/acme/app.git","tag":"v1"}`,
			createErr:  errors.New("quota exceeded"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "FAILED_TO_CREATE_PLAYBOOK",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.scm.AddRepository(repoName, api.SCMRepository{})
			env.orch.CreateErr = tt.createErr

			rr := env.do(http.MethodPost, "/v1/playbooks", tt.body)
			body := requireError(t, rr, tt.wantStatus, tt.wantCode)
			if tt.wantMsg != "" {
				assert.Contains(t, body.Message, tt.wantMsg)
			}
		})
	}
}

func TestHandleGetPlaybook(t *testing.T) {
	p := testutil.NewPlaybookBuilder().WithTitle("My App").Build()
	env := newTestEnv(t, p)

	rr := env.do(http.MethodGet, playbookURL(p, ""), "")
	require.Equal(t, http.StatusOK, rr.Code)
	got := decodeBody[api.PlaybookSpec](t, rr)
	assert.Equal(t, p.ID, got.ID)
	assert.Equal(t, "My App", got.Title)
}

func TestHandleGetPlaybook_Errors(t *testing.T) {
	env := newTestEnv(t)

	rr := env.do(http.MethodGet, "/v1/playbooks/0b8c1d5e-51b4-4a57-9a3f-6c2f2c7c2a10", "")
	requireError(t, rr, http.StatusNotFound, "NOT_FOUND_PLAYBOOK")

	before := env.orch.CallCount("GetPlaybook")
	rr = env.do(http.MethodGet, "/v1/playbooks/not-a-uuid", "")
	requireError(t, rr, http.StatusBadRequest, "BAD_PLAYBOOK_REQUEST")
	assert.Equal(t, before, env.orch.CallCount("GetPlaybook"))
}

func TestHandleGetPlaybookDetail(t *testing.T) {
	p := testutil.NewPlaybookBuilder().Build()
	env := newTestEnv(t, p)
	env.scm.AddContent(repoName, "main", "README.md", []byte("# App"))
	env.scm.AddTree(repoName, "v1", "", api.Tree{Sha: "root-v1"})

	rr := env.do(http.MethodGet, playbookURL(p, "/detail?path=README.md"), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	detail := decodeBody[api.PlaybookDetail](t, rr)
	assert.Equal(t, "main", detail.Reference)
	require.NotNil(t, detail.Content)
	assert.Equal(t, "# App", string(detail.Content.Data))

	rr = env.do(http.MethodGet, playbookURL(p, "/detail?reference=v1&recursive=true"), "")
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	detail = decodeBody[api.PlaybookDetail](t, rr)
	require.NotNil(t, detail.Tree)
	assert.Equal(t, "root-v1", detail.Tree.Sha)
	assert.True(t, env.scm.Recursive)

	rr = env.do(http.MethodGet, playbookURL(p, "/detail?recursive=maybe"), "")
	requireError(t, rr, http.StatusBadRequest, "BAD_PLAYBOOK_REQUEST")
}

func TestHandleUpdatePlaybook(t *testing.T) {
	for _, method := range []string{http.MethodPut, http.MethodPatch} {
		t.Run(method, func(t *testing.T) {
			p := testutil.NewPlaybookBuilder().WithCharacters("web").Build()
			env := newTestEnv(t, p)

			rr := env.do(method, playbookURL(p, ""),
				`{"kind":"modify","paths":[{"kind":"file","path":"main.go"}],"payload":"aGVsbG8="}`)
			require.Equal(t, http.StatusNoContent, rr.Code, rr.Body.String())
			assert.Empty(t, rr.Body.String())

			require.Len(t, env.orch.Syncs, 1)
			sync := env.orch.Syncs[0]
			assert.Equal(t, "web", sync.Actor)
			assert.Equal(t, api.EventModify, sync.Request.Kind)
			assert.Equal(t, "hello", string(sync.Request.Payload))
		})
	}
}

func TestHandleUpdatePlaybook_Errors(t *testing.T) {
	t.Run("no characters", func(t *testing.T) {
		p := testutil.NewPlaybookBuilder().WithoutCharacters().Build()
		env := newTestEnv(t, p)

		rr := env.do(http.MethodPut, playbookURL(p, ""), `{"kind":"modify"}`)
		requireError(t, rr, http.StatusBadRequest, "BAD_PLAYBOOK")
		assert.Zero(t, env.orch.CallCount("SyncActor"))
	})

	t.Run("missing playbook", func(t *testing.T) {
		env := newTestEnv(t)
		rr := env.do(http.MethodPut, "/v1/playbooks/0b8c1d5e-51b4-4a57-9a3f-6c2f2c7c2a10", `{"kind":"modify"}`)
		requireError(t, rr, http.StatusNotFound, "NOT_FOUND_PLAYBOOK")
	})

	t.Run("sync failure", func(t *testing.T) {
		p := testutil.NewPlaybookBuilder().Build()
		env := newTestEnv(t, p)
		env.orch.SyncErr = errors.New("actor unavailable")

		rr := env.do(http.MethodPatch, playbookURL(p, ""), `{"kind":"override"}`)
		requireError(t, rr, http.StatusInternalServerError, "FAILED_TO_SYNCHRONIZE")
	})

	t.Run("unknown kind", func(t *testing.T) {
		p := testutil.NewPlaybookBuilder().Build()
		env := newTestEnv(t, p)

		rr := env.do(http.MethodPut, playbookURL(p, ""), `{"kind":"explode"}`)
		requireError(t, rr, http.StatusBadRequest, "BAD_PLAYBOOK_REQUEST")
	})
}

func TestHandleDeletePlaybook(t *testing.T) {
	p := testutil.NewPlaybookBuilder().Build()
	env := newTestEnv(t, p)

	rr := env.do(http.MethodDelete, playbookURL(p, ""), "")
	require.Equal(t, http.StatusNoContent, rr.Code)

	rr = env.do(http.MethodDelete, playbookURL(p, ""), "")
	requireError(t, rr, http.StatusNotFound, "NOT_FOUND_PLAYBOOK")
	assert.Equal(t, 1, env.orch.CallCount("DeletePlaybook"))

	other := testutil.NewPlaybookBuilder().Build()
	env = newTestEnv(t, other)
	env.orch.DeleteErr = errors.New("boom")
	rr = env.do(http.MethodDelete, playbookURL(other, ""), "")
	requireError(t, rr, http.StatusInternalServerError, "FAILED_TO_DELETE_PLAYBOOK")
}

func TestHandleStartPlaybook(t *testing.T) {
	p := testutil.NewPlaybookBuilder().Build()
	env := newTestEnv(t, p)

	rr := env.do(http.MethodPost, playbookURL(p, "/actions/start"), "")
	require.Equal(t, http.StatusNoContent, rr.Code)
	assert.Equal(t, []string{p.ID}, env.orch.Started)

	rr = env.do(http.MethodPost, "/v1/playbooks/0b8c1d5e-51b4-4a57-9a3f-6c2f2c7c2a10/actions/start", "")
	requireError(t, rr, http.StatusNotFound, "NOT_FOUND_PLAYBOOK")

	env.orch.StartErr = errors.New("boom")
	rr = env.do(http.MethodPost, playbookURL(p, "/actions/start"), "")
	requireError(t, rr, http.StatusInternalServerError, "FAILED_TO_START_PLAYBOOK")
}
