// Package errors provides the error taxonomy of the playbooks gateway.
// Every failure reported to an HTTP client is an AppError carrying one Kind
// from a closed set, the HTTP status derived from that kind, and the upstream cause.
package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind identifies one entry of the closed error taxonomy.
type Kind int

// The error kinds. Adding a kind requires extending kindInfo below.
const (
	KindInternalServerError Kind = iota
	KindNotFound
	KindNotFoundPlaybook
	KindFailedToCreatePlaybook
	KindFailedToDeletePlaybook
	KindFailedToStartPlaybook
	KindNotFoundContent
	KindNotFoundFolder
	KindInvalidRepoAddress
	KindFailedToSynchronize
	KindBadPlaybook
	KindNotFoundRepo
	KindBadPlaybookRequest
	KindNotSupported
)

type kindMeta struct {
	name    string
	code    string
	message string
	status  int
}

var kindInfo = map[Kind]kindMeta{
	KindInternalServerError: {
		"InternalServerError", "INTERNAL_SERVER_ERROR", "Internal Server Error", http.StatusInternalServerError,
	},
	KindNotFound:               {"NotFound", "NOT_FOUND", "Not Found", http.StatusNotFound},
	KindNotFoundPlaybook:       {"NotFoundPlaybook", "NOT_FOUND_PLAYBOOK", "Not Found Playbook", http.StatusNotFound},
	KindFailedToCreatePlaybook: {
		"FailedToCreatePlaybook", "FAILED_TO_CREATE_PLAYBOOK", "Failed to create playbook", http.StatusBadRequest,
	},
	KindFailedToDeletePlaybook: {
		"FailedToDeletePlaybook", "FAILED_TO_DELETE_PLAYBOOK", "Failed to delete playbook", http.StatusInternalServerError,
	},
	KindFailedToStartPlaybook: {
		"FailedToStartPlaybook", "FAILED_TO_START_PLAYBOOK", "Failed to start playbook", http.StatusInternalServerError,
	},
	KindNotFoundContent: {"NotFoundContent", "NOT_FOUND_CONTENT", "Not Found Content", http.StatusNotFound},
	KindNotFoundFolder:  {"NotFoundFolder", "NOT_FOUND_FOLDER", "Not Found Folder", http.StatusNotFound},
	KindInvalidRepoAddress: {
		"InvalidRepoAddress", "INVALID_REPO_ADDRESS", "Invalid repository address", http.StatusInternalServerError,
	},
	KindFailedToSynchronize: {
		"FailedToSynchronize", "FAILED_TO_SYNCHRONIZE", "Failed to synchronize", http.StatusInternalServerError,
	},
	KindBadPlaybook:  {"BadPlaybook", "BAD_PLAYBOOK", "Bad Playbook", http.StatusBadRequest},
	KindNotFoundRepo: {"NotFoundRepo", "NOT_FOUND_REPO", "Not Found Repo", http.StatusInternalServerError},
	KindBadPlaybookRequest: {
		"BadPlaybookRequest", "BAD_PLAYBOOK_REQUEST", "Bad Playbook Request", http.StatusBadRequest,
	},
	KindNotSupported: {"NotSupported", "NOT_SUPPORTED", "Operation not supported", http.StatusNotImplemented},
}

// Kinds returns every kind of the taxonomy in declaration order.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindInfo))
	for k := KindInternalServerError; k <= KindNotSupported; k++ {
		kinds = append(kinds, k)
	}
	return kinds
}

func (k Kind) meta() kindMeta {
	if m, ok := kindInfo[k]; ok {
		return m
	}
	return kindInfo[KindInternalServerError]
}

// String returns the kind name, e.g. "NotFoundPlaybook".
func (k Kind) String() string { return k.meta().name }

// Code returns the machine readable error code, e.g. "NOT_FOUND_PLAYBOOK".
func (k Kind) Code() string { return k.meta().code }

// StatusCode maps the kind to its HTTP status. Unknown kinds map to 500.
func (k Kind) StatusCode() int { return k.meta().status }

// AppError represents an application error with an associated HTTP status code.
type AppError struct {
	// Kind is the taxonomy entry of this error
	Kind Kind
	// Code is the error code string for programmatic handling
	Code string
	// Message is a user-friendly error message
	Message string
	// StatusCode is the HTTP status code to return
	StatusCode int
	// Cause is the underlying error (for error wrapping)
	Cause error
}

// Error implements the error interface.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

// Unwrap returns the underlying error for error unwrapping.
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is allows errors.Is to work with AppError. Two AppErrors match when their kinds match.
func (e *AppError) Is(target error) bool {
	if t, ok := target.(*AppError); ok {
		return e.Kind == t.Kind
	}
	return false
}

// New creates an AppError of the given kind with the kind's default message.
func New(kind Kind, cause error) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       kind.Code(),
		Message:    kind.meta().message,
		StatusCode: kind.StatusCode(),
		Cause:      cause,
	}
}

// Newf creates an AppError of the given kind with a custom message.
func Newf(kind Kind, cause error, format string, args ...any) *AppError {
	return &AppError{
		Kind:       kind,
		Code:       kind.Code(),
		Message:    fmt.Sprintf(format, args...),
		StatusCode: kind.StatusCode(),
		Cause:      cause,
	}
}

// Convenience constructors, one per kind

// ErrInternalServerError creates an unclassified failure (500).
func ErrInternalServerError(cause error) *AppError {
	return New(KindInternalServerError, cause)
}

// ErrNotFound creates a generic not found error (404).
func ErrNotFound(cause error) *AppError {
	return New(KindNotFound, cause)
}

// ErrNotFoundPlaybook reports that the orchestration server returned no playbook (404).
func ErrNotFoundPlaybook(cause error) *AppError {
	return New(KindNotFoundPlaybook, cause)
}

// ErrFailedToCreatePlaybook reports that the orchestration server rejected a creation (400).
func ErrFailedToCreatePlaybook(cause error) *AppError {
	return New(KindFailedToCreatePlaybook, cause)
}

// ErrFailedToDeletePlaybook reports a failed delete call after the existence check (500).
func ErrFailedToDeletePlaybook(cause error) *AppError {
	return New(KindFailedToDeletePlaybook, cause)
}

// ErrFailedToStartPlaybook reports a failed start call after the existence check (500).
func ErrFailedToStartPlaybook(cause error) *AppError {
	return New(KindFailedToStartPlaybook, cause)
}

// ErrNotFoundContent reports that the SCM has no file at path/reference (404).
func ErrNotFoundContent(cause error) *AppError {
	return New(KindNotFoundContent, cause)
}

// ErrNotFoundFolder reports that the SCM has no tree at path/reference (404).
func ErrNotFoundFolder(cause error) *AppError {
	return New(KindNotFoundFolder, cause)
}

// ErrInvalidRepoAddress reports a repository URL that failed to parse (500).
func ErrInvalidRepoAddress(cause error) *AppError {
	return New(KindInvalidRepoAddress, cause)
}

// ErrFailedToSynchronize reports a synchronization event rejected by the orchestration server (500).
func ErrFailedToSynchronize(cause error) *AppError {
	return New(KindFailedToSynchronize, cause)
}

// ErrBadPlaybook reports a playbook lacking a required actor or repository (400).
func ErrBadPlaybook(message string) *AppError {
	return Newf(KindBadPlaybook, nil, "%s: %s", KindBadPlaybook.meta().message, message)
}

// ErrNotFoundRepo reports a failed SCM repository lookup (500).
func ErrNotFoundRepo(cause error) *AppError {
	return New(KindNotFoundRepo, cause)
}

// ErrBadPlaybookRequest reports a client request with a missing or invalid field (400).
func ErrBadPlaybookRequest(message string, cause error) *AppError {
	return Newf(KindBadPlaybookRequest, cause, "%s: %s", KindBadPlaybookRequest.meta().message, message)
}

// ErrNotSupported reports an operation outside a resource's capability set (501).
func ErrNotSupported(operation string) *AppError {
	return Newf(KindNotSupported, nil, "%s: %s", KindNotSupported.meta().message, operation)
}

// GetKind extracts the kind from an error.
// Returns KindInternalServerError and false if the error is not an AppError.
func GetKind(err error) (Kind, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Kind, true
	}
	return KindInternalServerError, false
}

// GetStatusCode extracts the HTTP status code from an error.
// Returns 500 if the error is not an AppError.
func GetStatusCode(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return http.StatusInternalServerError
}

// GetErrorCode extracts the error code from an error.
// Returns the internal server error code if the error is not an AppError.
func GetErrorCode(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return KindInternalServerError.Code()
}

// GetErrorMessage extracts the message rendered to clients, including the cause.
// Errors outside the taxonomy are hidden behind the generic internal error message.
func GetErrorMessage(err error) string {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Error()
	}
	return KindInternalServerError.meta().message
}
