package constants

import "time"

// AuthorizationHeader is the HTTP header carrying the orchestration token.
const AuthorizationHeader = "Authorization"

// ContentTypeHeader is the HTTP Content-Type header name.
const ContentTypeHeader = "Content-Type"

// AcceptHeader is the HTTP Accept header name.
const AcceptHeader = "Accept"

// RequestIDHeader is the header echoing the request ID back to callers.
const RequestIDHeader = "X-Request-ID"

// Content types.
const (
	ContentTypeJSON        = "application/json"
	ContentTypeYAML        = "application/yaml"
	ContentTypeHTML        = "text/html; charset=utf-8"
	ContentTypeEventStream = "text/event-stream"
)

// HTTPStatusBadRequest is the HTTP status code for bad requests (400)
const HTTPStatusBadRequest = 400

// HTTPStatusServerError is the HTTP status code for server errors (500)
const HTTPStatusServerError = 500

// ServerReadTimeout is the HTTP server read timeout
const ServerReadTimeout = 15 * time.Second

// ServerIdleTimeout is the HTTP server idle timeout
const ServerIdleTimeout = 60 * time.Second

// ServerShutdownTimeout is the timeout for graceful server shutdown
const ServerShutdownTimeout = 5 * time.Second

// MaxRequestBodyBytes bounds the size of request bodies decoded by handlers.
const MaxRequestBodyBytes = 10 << 20
