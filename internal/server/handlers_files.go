package server

import (
	"net/http"

	"github.com/amphitheatre-app/playbooks/internal/api"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
)

// handleGetFile handles GET /v1/playbooks/{id}/files/{reference}/{path}.
func (r *Router) handleGetFile(w http.ResponseWriter, req *http.Request) {
	id, path, err := fileTarget(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "get file")
		return
	}

	content, err := r.svc.Files.Get(req.Context(), id, urlParam(req, "reference"), path)
	if err != nil {
		r.handleAndLogError(w, req, err, "get file")
		return
	}

	writeJSON(w, http.StatusOK, content)
}

// handlePostFile handles POST /v1/playbooks/{id}/files/{reference}/{path}: a file
// creation, or a copy or move when the path ends in /actions/copy|move.
func (r *Router) handlePostFile(w http.ResponseWriter, req *http.Request) {
	id, path, err := fileTarget(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "create file")
		return
	}

	if base, name := action(path); name != "" {
		r.handleFileAction(w, req, id, base, name)
		return
	}

	if !r.svc.Files.Capabilities().Create {
		r.handleAndLogError(w, req, apperrors.ErrNotSupported("file create"), "create file")
		return
	}

	var fileReq api.FileRequest
	if err = decodeRequestBody(w, req, &fileReq); err != nil {
		r.handleAndLogError(w, req, err, "create file")
		return
	}

	content, err := r.svc.Files.Create(req.Context(), id, path, fileReq.Content)
	if err != nil {
		r.handleAndLogError(w, req, err, "create file")
		return
	}

	writeJSON(w, http.StatusCreated, content)
}

func (r *Router) handleFileAction(w http.ResponseWriter, req *http.Request, id, path, name string) {
	caps := r.svc.Files.Capabilities()
	operation := "file " + name

	if (name == "copy" && !caps.Copy) || (name == "move" && !caps.Move) {
		r.handleAndLogError(w, req, apperrors.ErrNotSupported(operation), operation)
		return
	}

	var destReq api.DestinationRequest
	if err := decodeRequestBody(w, req, &destReq); err != nil {
		r.handleAndLogError(w, req, err, operation)
		return
	}

	copyOrMove := r.svc.Files.Copy
	if name == "move" {
		copyOrMove = r.svc.Files.Move
	}
	content, err := copyOrMove(req.Context(), id, path, destReq.Destination)
	if err != nil {
		r.handleAndLogError(w, req, err, operation)
		return
	}

	writeJSON(w, http.StatusOK, content)
}

// handleUpdateFile handles PUT /v1/playbooks/{id}/files/{reference}/{path}.
func (r *Router) handleUpdateFile(w http.ResponseWriter, req *http.Request) {
	id, path, err := fileTarget(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "update file")
		return
	}

	if !r.svc.Files.Capabilities().Update {
		r.handleAndLogError(w, req, apperrors.ErrNotSupported("file update"), "update file")
		return
	}

	var fileReq api.FileRequest
	if err = decodeRequestBody(w, req, &fileReq); err != nil {
		r.handleAndLogError(w, req, err, "update file")
		return
	}

	content, err := r.svc.Files.Update(req.Context(), id, path, fileReq.Content)
	if err != nil {
		r.handleAndLogError(w, req, err, "update file")
		return
	}

	writeJSON(w, http.StatusOK, content)
}

// handleDeleteFile handles DELETE /v1/playbooks/{id}/files/{reference}/{path}.
func (r *Router) handleDeleteFile(w http.ResponseWriter, req *http.Request) {
	if !r.svc.Files.Capabilities().Delete {
		r.handleAndLogError(w, req, apperrors.ErrNotSupported("file delete"), "delete file")
		return
	}

	id, path, err := fileTarget(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "delete file")
		return
	}

	if err = r.svc.Files.Delete(req.Context(), id, path); err != nil {
		r.handleAndLogError(w, req, err, "delete file")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// fileTarget returns the playbook id and the file path of a file route.
func fileTarget(req *http.Request) (string, string, error) {
	id, err := playbookID(req)
	if err != nil {
		return "", "", err
	}
	path, err := requiredPath(req)
	if err != nil {
		return "", "", err
	}
	return id, path, nil
}
