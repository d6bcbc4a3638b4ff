package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name:     "error with cause",
			err:      ErrNotFoundPlaybook(errors.New("404 playbook 42 not found")),
			expected: "Not Found Playbook: 404 playbook 42 not found",
		},
		{
			name:     "error without cause",
			err:      ErrNotFound(nil),
			expected: "Not Found",
		},
		{
			name:     "bad playbook carries its message",
			err:      ErrBadPlaybook("the playbook has no characters"),
			expected: "Bad Playbook: the playbook has no characters",
		},
		{
			name:     "not supported names the operation",
			err:      ErrNotSupported("copy folder"),
			expected: "Operation not supported: copy folder",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	cause := errors.New("underlying error")
	err := ErrFailedToSynchronize(cause)

	assert.Equal(t, cause, err.Unwrap())
	assert.ErrorIs(t, err, cause)
}

func TestAppError_Is(t *testing.T) {
	err := fmt.Errorf("wrapped: %w", ErrNotFoundContent(errors.New("missing")))

	assert.ErrorIs(t, err, &AppError{Kind: KindNotFoundContent})
	assert.NotErrorIs(t, err, &AppError{Kind: KindNotFoundFolder})
}

func TestKind_StatusCode(t *testing.T) {
	expected := map[Kind]int{
		KindInternalServerError:    http.StatusInternalServerError,
		KindNotFound:               http.StatusNotFound,
		KindNotFoundPlaybook:       http.StatusNotFound,
		KindFailedToCreatePlaybook: http.StatusBadRequest,
		KindFailedToDeletePlaybook: http.StatusInternalServerError,
		KindFailedToStartPlaybook:  http.StatusInternalServerError,
		KindNotFoundContent:        http.StatusNotFound,
		KindNotFoundFolder:         http.StatusNotFound,
		KindInvalidRepoAddress:     http.StatusInternalServerError,
		KindFailedToSynchronize:    http.StatusInternalServerError,
		KindBadPlaybook:            http.StatusBadRequest,
		KindNotFoundRepo:           http.StatusInternalServerError,
		KindBadPlaybookRequest:     http.StatusBadRequest,
		KindNotSupported:           http.StatusNotImplemented,
	}

	require.Len(t, Kinds(), len(expected))
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			status, ok := expected[kind]
			require.True(t, ok, "kind %s has no expected status", kind)
			assert.Equal(t, status, kind.StatusCode())
			assert.Equal(t, status, New(kind, nil).StatusCode)
			assert.NotEmpty(t, kind.Code())
		})
	}
}

func TestNew_KeepsDefaultMessage(t *testing.T) {
	for _, kind := range Kinds() {
		t.Run(kind.String(), func(t *testing.T) {
			err := New(kind, nil)
			assert.Equal(t, kind.meta().message, err.Message)
			assert.NotContains(t, err.Message, "%!")
		})
	}
}

func TestConstructors_KeepPercentInDetail(t *testing.T) {
	assert.Equal(t, KindBadPlaybook.meta().message+": 100% broken", ErrBadPlaybook("100% broken").Message)
	assert.Equal(t, KindNotSupported.meta().message+": file %s", ErrNotSupported("file %s").Message)
}

func TestKind_UnknownFallsBackToInternal(t *testing.T) {
	unknown := Kind(999)

	assert.Equal(t, http.StatusInternalServerError, unknown.StatusCode())
	assert.Equal(t, "INTERNAL_SERVER_ERROR", unknown.Code())
}

func TestGetters(t *testing.T) {
	t.Run("app error", func(t *testing.T) {
		err := fmt.Errorf("service: %w", ErrBadPlaybookRequest("requires either branch, tag, or rev", nil))

		kind, ok := GetKind(err)
		assert.True(t, ok)
		assert.Equal(t, KindBadPlaybookRequest, kind)
		assert.Equal(t, http.StatusBadRequest, GetStatusCode(err))
		assert.Equal(t, "BAD_PLAYBOOK_REQUEST", GetErrorCode(err))
		assert.Equal(t, "Bad Playbook Request: requires either branch, tag, or rev", GetErrorMessage(err))
	})

	t.Run("plain error", func(t *testing.T) {
		err := errors.New("boom")

		kind, ok := GetKind(err)
		assert.False(t, ok)
		assert.Equal(t, KindInternalServerError, kind)
		assert.Equal(t, http.StatusInternalServerError, GetStatusCode(err))
		assert.Equal(t, "INTERNAL_SERVER_ERROR", GetErrorCode(err))
		assert.Equal(t, "Internal Server Error", GetErrorMessage(err))
	})
}
