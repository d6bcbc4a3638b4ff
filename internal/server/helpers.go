package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/constants"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
)

var errNotFound = apperrors.ErrNotFound(nil)

// writeJSON writes v as a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, statusCode int, v any) {
	w.Header().Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErrorResponse writes the error envelope of err.
func writeErrorResponse(w http.ResponseWriter, err error) {
	writeJSON(w, apperrors.GetStatusCode(err), api.ErrorResponse{
		Message: apperrors.GetErrorMessage(err),
		Code:    apperrors.GetErrorCode(err),
	})
}

// handleAndLogError logs an error and writes a standardized error response.
// Server errors are logged at error level, client errors at warn level.
//
// Example:
//
//	if err := r.svc.Playbooks.Delete(req.Context(), id); err != nil {
//	    r.handleAndLogError(w, req, err, "delete playbook")
//	    return
//	}
func (r *Router) handleAndLogError(w http.ResponseWriter, req *http.Request, err error, operationName string) {
	logger := r.GetLoggerFromContext(req.Context())
	statusCode := apperrors.GetStatusCode(err)

	level := logger.Warn
	if statusCode >= constants.HTTPStatusServerError {
		level = logger.Error
	}
	level("operation failed",
		"operation", operationName,
		"error", err,
		"status_code", statusCode,
		"error_code", apperrors.GetErrorCode(err),
	)

	writeErrorResponse(w, err)
}

// decodeRequestBody decodes the JSON request body into v.
func decodeRequestBody(w http.ResponseWriter, req *http.Request, v any) error {
	body := http.MaxBytesReader(w, req.Body, constants.MaxRequestBodyBytes)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		if errors.Is(err, io.EOF) {
			return apperrors.ErrBadPlaybookRequest("request body is required", err)
		}
		return apperrors.ErrBadPlaybookRequest("invalid request body", err)
	}
	return nil
}

// playbookID parses the {id} URL parameter as a UUID.
func playbookID(req *http.Request) (string, error) {
	raw := strings.TrimSpace(chi.URLParam(req, "id"))
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", apperrors.ErrBadPlaybookRequest(fmt.Sprintf("invalid playbook id %q", raw), err)
	}
	return id.String(), nil
}

// urlParam returns an unescaped URL parameter. chi matches on the raw path
// when one is present, so encoded slashes such as feature%2Fx arrive escaped.
func urlParam(req *http.Request, name string) string {
	value := chi.URLParam(req, name)
	if unescaped, err := url.PathUnescape(value); err == nil {
		value = unescaped
	}
	return strings.TrimSpace(value)
}

// wildcardPath returns the repository path captured by a trailing wildcard.
func wildcardPath(req *http.Request) string {
	return strings.Trim(urlParam(req, "*"), "/")
}

// requiredPath returns the wildcard path or a BadPlaybookRequest when empty.
func requiredPath(req *http.Request) (string, error) {
	p := wildcardPath(req)
	if p == "" {
		return "", apperrors.ErrBadPlaybookRequest("path is required", nil)
	}
	return p, nil
}

// boolQuery parses an optional boolean query parameter.
func boolQuery(req *http.Request, name string) (bool, error) {
	raw := strings.TrimSpace(req.URL.Query().Get(name))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperrors.ErrBadPlaybookRequest(fmt.Sprintf("invalid %s value %q", name, raw), err)
	}
	return v, nil
}

// action splits a trailing "/actions/copy" or "/actions/move" suffix off a
// wildcard path. Other paths are returned unchanged with an empty action.
func action(p string) (string, string) {
	for _, name := range []string{"copy", "move"} {
		if base, ok := strings.CutSuffix(p, "/actions/"+name); ok && base != "" {
			return base, name
		}
	}
	return p, ""
}
