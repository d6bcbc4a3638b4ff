// Package api defines the API types and structures used across the playbooks gateway.
// It contains request and response structures for the HTTP API and for the
// payloads exchanged with the orchestration server and the SCM.
package api

// ErrorResponse represents an error response
type ErrorResponse struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// HealthResponse represents the response to a health check request
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

// Capabilities declares which operations a resource type supports.
type Capabilities struct {
	Read   bool `json:"read"`
	Create bool `json:"create"`
	Update bool `json:"update"`
	Delete bool `json:"delete"`
	Copy   bool `json:"copy"`
	Move   bool `json:"move"`
}
