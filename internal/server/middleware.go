package server

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/amphitheatre-app/playbooks/internal/constants"
	loggerPkg "github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/telemetry"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// requestIDMiddleware resolves the request ID and stores a request-scoped logger.
// Priority: 1) Existing request ID in context, 2) X-Request-ID header,
// 3) Lambda request ID, 4) Generated random ID.
func (r *Router) requestIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		requestID := loggerPkg.GetRequestID(req.Context())

		if requestID == "" {
			requestID = strings.TrimSpace(req.Header.Get(constants.RequestIDHeader))
		}

		if requestID == "" {
			requestID, _ = loggerPkg.GetLambdaRequestID(req.Context())
		}

		if requestID == "" {
			requestID = uuid.NewString()
		}

		w.Header().Set(constants.RequestIDHeader, requestID)

		ctx := loggerPkg.WithRequestID(req.Context(), requestID)
		log := r.logger.With(constants.RequestIDLogField, requestID)
		ctx = context.WithValue(ctx, loggerContextKey, log)

		next.ServeHTTP(w, req.WithContext(ctx))
	})
}

// requestTimeoutMiddleware creates a context with timeout for each request.
// The timeout starts when the request is received, ensuring each request has
// a fair timeout regardless of connection reuse.
func (r *Router) requestTimeoutMiddleware(timeout time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if timeout <= 0 {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			ctx, cancel := context.WithTimeout(req.Context(), timeout)
			defer cancel()

			req = req.WithContext(ctx)

			next.ServeHTTP(w, req)

			if errors.Is(ctx.Err(), context.DeadlineExceeded) {
				r.GetLoggerFromContext(ctx).Warn("request timeout exceeded", "request", map[string]any{
					"method":  req.Method,
					"path":    req.URL.Path,
					"timeout": timeout.String(),
				})
			}
		})
	}
}

// corsMiddleware handles CORS headers for cross-origin requests
func (r *Router) corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		origin := req.Header.Get("Origin")
		switch {
		case slices.Contains(r.opts.AllowedOrigins, "*"):
			if origin == "" {
				origin = "*"
			}
			w.Header().Set("Access-Control-Allow-Origin", origin)
		case origin != "" && slices.Contains(r.opts.AllowedOrigins, origin):
			w.Header().Set("Access-Control-Allow-Origin", origin)
		}
		w.Header().Add("Vary", "Origin")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Request-ID")
		w.Header().Set("Access-Control-Max-Age", "3600")

		// Handle preflight requests
		if req.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		next.ServeHTTP(w, req)
	})
}

// checkOrigin applies the CORS origin list to WebSocket upgrades.
func (r *Router) checkOrigin(req *http.Request) bool {
	origin := req.Header.Get("Origin")
	if origin == "" || slices.Contains(r.opts.AllowedOrigins, "*") {
		return true
	}
	return slices.Contains(r.opts.AllowedOrigins, origin)
}

// requestLoggingMiddleware logs incoming requests and their responses
// Uses logger from context (includes request ID if available)
func (r *Router) requestLoggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		logger := r.GetLoggerFromContext(req.Context())
		if traceID := telemetry.TraceID(req.Context()); traceID != "" {
			logger = logger.With("traceID", traceID)
			req = req.WithContext(context.WithValue(req.Context(), loggerContextKey, logger))
		}
		start := time.Now()

		wrapped := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

		logger.Info("processing incoming client request", "request", map[string]string{
			"method":     req.Method,
			"path":       req.URL.Path,
			"remoteAddr": req.RemoteAddr,
		})

		next.ServeHTTP(wrapped, req)

		status := wrapped.Status()
		if status == 0 {
			status = http.StatusOK
		}
		logger.Info("response sent to client", "response", map[string]any{
			"status":   status,
			"bytes":    wrapped.BytesWritten(),
			"duration": time.Since(start).String(),
		})
	})
}

// GetLoggerFromContext extracts the logger from request context
// Returns the request-scoped logger (with request ID if available) or falls back to the router logger
func (r *Router) GetLoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*slog.Logger); ok && logger != nil {
		return logger
	}

	return r.logger
}
