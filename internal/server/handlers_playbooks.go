package server

import (
	"net/http"
	"strings"

	"github.com/amphitheatre-app/playbooks/internal/api"
)

// handleCreatePlaybook handles POST /v1/playbooks to create a playbook from a repository.
func (r *Router) handleCreatePlaybook(w http.ResponseWriter, req *http.Request) {
	var createReq api.CreatePlaybookRequest
	if err := decodeRequestBody(w, req, &createReq); err != nil {
		r.handleAndLogError(w, req, err, "create playbook")
		return
	}

	playbook, err := r.svc.Playbooks.Create(req.Context(), createReq)
	if err != nil {
		r.handleAndLogError(w, req, err, "create playbook")
		return
	}

	writeJSON(w, http.StatusCreated, playbook)
}

// handleGetPlaybook handles GET /v1/playbooks/{id}.
func (r *Router) handleGetPlaybook(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "get playbook")
		return
	}

	playbook, err := r.svc.Playbooks.Get(req.Context(), id)
	if err != nil {
		r.handleAndLogError(w, req, err, "get playbook")
		return
	}

	writeJSON(w, http.StatusOK, playbook)
}

// handleGetPlaybookDetail handles GET /v1/playbooks/{id}/detail.
func (r *Router) handleGetPlaybookDetail(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "get playbook detail")
		return
	}

	recursive, err := boolQuery(req, "recursive")
	if err != nil {
		r.handleAndLogError(w, req, err, "get playbook detail")
		return
	}

	query := req.URL.Query()
	detail, err := r.svc.Playbooks.Detail(req.Context(), id,
		strings.TrimSpace(query.Get("reference")),
		strings.Trim(query.Get("path"), "/ "),
		recursive,
	)
	if err != nil {
		r.handleAndLogError(w, req, err, "get playbook detail")
		return
	}

	writeJSON(w, http.StatusOK, detail)
}

// handleUpdatePlaybook handles PUT and PATCH /v1/playbooks/{id} by forwarding a
// synchronization to the playbook's primary actor.
func (r *Router) handleUpdatePlaybook(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "update playbook")
		return
	}

	var sync api.Synchronization
	if err = decodeRequestBody(w, req, &sync); err != nil {
		r.handleAndLogError(w, req, err, "update playbook")
		return
	}

	if err = r.svc.Playbooks.Update(req.Context(), id, sync); err != nil {
		r.handleAndLogError(w, req, err, "update playbook")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleDeletePlaybook handles DELETE /v1/playbooks/{id}.
func (r *Router) handleDeletePlaybook(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "delete playbook")
		return
	}

	if err = r.svc.Playbooks.Delete(req.Context(), id); err != nil {
		r.handleAndLogError(w, req, err, "delete playbook")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleStartPlaybook handles POST /v1/playbooks/{id}/actions/start.
func (r *Router) handleStartPlaybook(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "start playbook")
		return
	}

	if err = r.svc.Playbooks.Start(req.Context(), id); err != nil {
		r.handleAndLogError(w, req, err, "start playbook")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
