package server

import (
	"net/http"
	"strings"

	"github.com/amphitheatre-app/playbooks/internal/api"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
)

// handleGetFolder handles GET /v1/playbooks/{id}/folders/{reference} and
// GET /v1/playbooks/{id}/folders/{reference}/{path}.
func (r *Router) handleGetFolder(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "get folder")
		return
	}

	recursive, err := boolQuery(req, "recursive")
	if err != nil {
		r.handleAndLogError(w, req, err, "get folder")
		return
	}

	tree, err := r.svc.Folders.Get(req.Context(), id, urlParam(req, "reference"), wildcardPath(req), recursive)
	if err != nil {
		r.handleAndLogError(w, req, err, "get folder")
		return
	}

	writeJSON(w, http.StatusOK, tree)
}

// handleGetTree handles GET /v1/playbooks/{id}/tree.
func (r *Router) handleGetTree(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "get tree")
		return
	}

	recursive, err := boolQuery(req, "recursive")
	if err != nil {
		r.handleAndLogError(w, req, err, "get tree")
		return
	}

	reference := strings.TrimSpace(req.URL.Query().Get("reference"))
	tree, err := r.svc.Folders.Tree(req.Context(), id, reference, recursive)
	if err != nil {
		r.handleAndLogError(w, req, err, "get tree")
		return
	}

	writeJSON(w, http.StatusOK, tree)
}

// handlePostFolder handles POST /v1/playbooks/{id}/folders/{reference}/{path}: a
// folder creation, or a copy or move when the path ends in /actions/copy|move.
func (r *Router) handlePostFolder(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "create folder")
		return
	}
	path, err := requiredPath(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "create folder")
		return
	}
	reference := urlParam(req, "reference")
	caps := r.svc.Folders.Capabilities()

	base, name := action(path)
	switch name {
	case "":
		if !caps.Create {
			r.handleAndLogError(w, req, apperrors.ErrNotSupported("folder create"), "create folder")
			return
		}
		content, err := r.svc.Folders.Create(req.Context(), id, reference, path)
		if err != nil {
			r.handleAndLogError(w, req, err, "create folder")
			return
		}
		writeJSON(w, http.StatusCreated, content)

	default:
		operation := "folder " + name
		if (name == "copy" && !caps.Copy) || (name == "move" && !caps.Move) {
			r.handleAndLogError(w, req, apperrors.ErrNotSupported(operation), operation)
			return
		}

		var destReq api.DestinationRequest
		if err := decodeRequestBody(w, req, &destReq); err != nil {
			r.handleAndLogError(w, req, err, operation)
			return
		}

		copyOrMove := r.svc.Folders.Copy
		if name == "move" {
			copyOrMove = r.svc.Folders.Move
		}
		content, err := copyOrMove(req.Context(), id, reference, base, destReq.Destination)
		if err != nil {
			r.handleAndLogError(w, req, err, operation)
			return
		}
		writeJSON(w, http.StatusOK, content)
	}
}

// handleDeleteFolder handles DELETE /v1/playbooks/{id}/folders/{reference}/{path}.
func (r *Router) handleDeleteFolder(w http.ResponseWriter, req *http.Request) {
	if !r.svc.Folders.Capabilities().Delete {
		r.handleAndLogError(w, req, apperrors.ErrNotSupported("folder delete"), "delete folder")
		return
	}

	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "delete folder")
		return
	}
	path, err := requiredPath(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "delete folder")
		return
	}

	if err = r.svc.Folders.Delete(req.Context(), id, urlParam(req, "reference"), path); err != nil {
		r.handleAndLogError(w, req, err, "delete folder")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
