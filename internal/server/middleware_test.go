package server

import (
	"bytes"
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/aws/aws-lambda-go/lambdacontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/testutil"
)

func TestRequestIDMiddleware(t *testing.T) {
	tests := []struct {
		name    string
		prepare func(*http.Request) *http.Request
		want    string
	}{
		{
			name: "existing request ID in context",
			prepare: func(req *http.Request) *http.Request {
				req.Header.Set("X-Request-ID", "from-header")
				return req.WithContext(logger.WithRequestID(req.Context(), "from-context"))
			},
			want: "from-context",
		},
		{
			name: "request header",
			prepare: func(req *http.Request) *http.Request {
				req.Header.Set("X-Request-ID", "from-header")
				return req.WithContext(lambdacontext.NewContext(req.Context(),
					&lambdacontext.LambdaContext{AwsRequestID: "from-lambda"}))
			},
			want: "from-header",
		},
		{
			name: "lambda context",
			prepare: func(req *http.Request) *http.Request {
				return req.WithContext(lambdacontext.NewContext(req.Context(),
					&lambdacontext.LambdaContext{AwsRequestID: "from-lambda"}))
			},
			want: "from-lambda",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router := &Router{logger: testutil.SilentLogger()}
			var got string
			handler := router.requestIDMiddleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = logger.GetRequestID(r.Context())
				w.WriteHeader(http.StatusOK)
			}))

			rr := httptest.NewRecorder()
			handler.ServeHTTP(rr, tt.prepare(httptest.NewRequest(http.MethodGet, "/test", nil)))

			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.want, rr.Header().Get("X-Request-ID"))
		})
	}
}

func TestRequestIDMiddleware_Generates(t *testing.T) {
	router := &Router{logger: testutil.SilentLogger()}
	var got string
	handler := router.requestIDMiddleware(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
		got = logger.GetRequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	handler.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Len(t, got, 36)
	assert.Equal(t, got, rr.Header().Get("X-Request-ID"))
}

func TestRequestLoggingMiddleware(t *testing.T) {
	var buf bytes.Buffer
	log := slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: slog.LevelInfo}))
	router := &Router{logger: log}

	handler := router.requestIDMiddleware(router.requestLoggingMiddleware(
		http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusTeapot)
			_, _ = w.Write([]byte("short and stout"))
		})))

	req := httptest.NewRequest(http.MethodGet, "/pot", nil)
	req.Header.Set("X-Request-ID", "req-1")
	handler.ServeHTTP(httptest.NewRecorder(), req)

	out := buf.String()
	assert.Contains(t, out, `"requestID":"req-1"`)
	assert.Contains(t, out, `"path":"/pot"`)
	assert.Contains(t, out, `"status":418`)
	assert.Contains(t, out, `"bytes":15`)
}

func TestRequestTimeoutMiddleware(t *testing.T) {
	router := &Router{logger: testutil.SilentLogger()}

	t.Run("sets a deadline", func(t *testing.T) {
		var hasDeadline bool
		handler := router.requestTimeoutMiddleware(time.Second)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.True(t, hasDeadline)
	})

	t.Run("zero disables", func(t *testing.T) {
		var hasDeadline bool
		handler := router.requestTimeoutMiddleware(0)(http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
			_, hasDeadline = r.Context().Deadline()
		}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.False(t, hasDeadline)
	})

	t.Run("cancels slow handlers", func(t *testing.T) {
		var ctxErr error
		handler := router.requestTimeoutMiddleware(10 * time.Millisecond)(
			http.HandlerFunc(func(_ http.ResponseWriter, r *http.Request) {
				<-r.Context().Done()
				ctxErr = r.Context().Err()
			}))
		handler.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/", nil))
		assert.ErrorIs(t, ctxErr, context.DeadlineExceeded)
	})
}

func TestCORSMiddleware(t *testing.T) {
	tests := []struct {
		name       string
		allowed    []string
		origin     string
		wantOrigin string
	}{
		{"wildcard echoes origin", []string{"*"}, "https://app.example", "https://app.example"},
		{"wildcard without origin", []string{"*"}, "", "*"},
		{"listed origin", []string{"https://app.example"}, "https://app.example", "https://app.example"},
		{"unlisted origin", []string{"https://app.example"}, "https://evil.example", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnvWithOptions(t, Options{AllowedOrigins: tt.allowed})
			req := httptest.NewRequest(http.MethodGet, "/health", nil)
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			rr := httptest.NewRecorder()
			env.router.ServeHTTP(rr, req)

			require.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.wantOrigin, rr.Header().Get("Access-Control-Allow-Origin"))
		})
	}
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	env := newTestEnv(t)
	req := httptest.NewRequest(http.MethodOptions, "/v1/playbooks", nil)
	req.Header.Set("Origin", "https://app.example")
	rr := httptest.NewRecorder()
	env.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Contains(t, rr.Header().Get("Access-Control-Allow-Methods"), "PATCH")
	assert.Empty(t, env.orch.Calls)
}

func TestRecoverer(t *testing.T) {
	p := testutil.NewPlaybookBuilder().Build()
	env := newTestEnv(t, p)
	env.router.svc.Playbooks = nil

	rr := env.do(http.MethodGet, playbookURL(p, ""), "")
	assert.Equal(t, http.StatusInternalServerError, rr.Code)
}
