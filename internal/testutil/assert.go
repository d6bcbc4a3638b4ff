package testutil

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
)

// AssertErrorType checks if the error is of a specific type using errors.Is.
func AssertErrorType(t *testing.T, err, target error, _ ...any) bool {
	t.Helper()
	if !stderrors.Is(err, target) {
		return assert.Fail(t, "Error type mismatch", "Expected error type %T, got %T", target, err)
	}
	return true
}

// AssertAppErrorKind checks if the error carries a specific error kind.
func AssertAppErrorKind(t *testing.T, err error, expected apperrors.Kind, _ ...any) bool {
	t.Helper()
	kind, ok := apperrors.GetKind(err)
	if !ok {
		return assert.Fail(t, "Not an application error", "Expected kind %s, got %v", expected, err)
	}
	if kind != expected {
		return assert.Fail(t, "Error kind mismatch", "Expected kind %s, got %s (%v)", expected, kind, err)
	}
	return true
}

// AssertAppErrorCode checks if the error has a specific error code.
func AssertAppErrorCode(t *testing.T, err error, expectedCode string, _ ...any) bool {
	t.Helper()
	code := apperrors.GetErrorCode(err)
	if code != expectedCode {
		return assert.Fail(t, "Error code mismatch", "Expected error code %q, got %q", expectedCode, code)
	}
	return true
}

// AssertAppErrorStatus checks if the error has a specific HTTP status code.
func AssertAppErrorStatus(t *testing.T, err error, expectedStatus int, _ ...any) bool {
	t.Helper()
	status := apperrors.GetStatusCode(err)
	if status != expectedStatus {
		return assert.Fail(t, "Status code mismatch", "Expected status %d, got %d", expectedStatus, status)
	}
	return true
}
