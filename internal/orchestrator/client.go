// Package orchestrator provides the HTTP client of the orchestration server.
// It handles authentication, request/response serialization, and error handling
// for the playbooks and actors resources.
package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/config"
	"github.com/amphitheatre-app/playbooks/internal/constants"
	"github.com/amphitheatre-app/playbooks/internal/logger"
)

// Client provides a generic HTTP client for orchestration server operations
type Client struct {
	baseURL    string
	token      string
	timeout    time.Duration
	httpClient *http.Client
	logger     *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// New creates a new orchestration client
func New(cfg config.OrchestratorConfig, log *slog.Logger, opts ...Option) *Client {
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		baseURL: cfg.URL,
		token:   cfg.Token,
		timeout: cfg.Timeout,
		// No client-wide timeout: log feeds are long lived. Do bounds
		// request/response calls through the context instead.
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:     log,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Request represents an orchestration server request
type Request struct {
	Method string
	Path   string
	Body   any
}

// Response represents an orchestration server response
type Response struct {
	StatusCode int
	Body       []byte
}

// buildURL constructs the full URL from the escaped path
func (c *Client) buildURL(path string) (string, error) {
	base, err := url.Parse(c.baseURL)
	if err != nil {
		return "", err
	}
	return strings.TrimSuffix(base.String(), "/") + path, nil
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	var bodyReader io.Reader
	if req.Body != nil {
		jsonData, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonData)
	}

	apiURL, err := c.buildURL(req.Path)
	if err != nil {
		return nil, fmt.Errorf("invalid orchestrator endpoint: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, apiURL, bodyReader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	if req.Body != nil {
		httpReq.Header.Set(constants.ContentTypeHeader, constants.ContentTypeJSON)
	}
	httpReq.Header.Set(constants.AcceptHeader, constants.ContentTypeJSON)
	if c.token != "" {
		httpReq.Header.Set(constants.AuthorizationHeader, "Bearer "+c.token)
	}
	if requestID := logger.GetRequestID(ctx); requestID != "" {
		httpReq.Header.Set(constants.RequestIDHeader, requestID)
	}

	return httpReq, nil
}

// Do makes an HTTP request to the orchestration server
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	log := logger.DeriveRequestLogger(ctx, c.logger)

	// Log before making HTTP request with deadline info
	logArgs := []any{
		"operation", "Orchestrator.Request",
		"method", req.Method,
		"url", httpReq.URL.String(),
		"hasBody", req.Body != nil,
	}
	logArgs = append(logArgs, logger.GetDeadlineInfo(ctx)...)
	log.Debug("calling external service", logArgs...)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	log.Debug("received HTTP response",
		"status", resp.StatusCode,
		"bodySize", len(body),
		"method", req.Method,
		"url", httpReq.URL.String())

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// DoJSON makes a request and unmarshals the response into result.
// A nil result discards the response body.
func (c *Client) DoJSON(ctx context.Context, req Request, result any) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}

	if resp.StatusCode >= constants.HTTPStatusBadRequest {
		return newHTTPError(resp.StatusCode, resp.Body)
	}

	if resp.StatusCode == http.StatusNoContent || result == nil || len(resp.Body) == 0 {
		return nil
	}

	if err = json.Unmarshal(resp.Body, result); err != nil {
		c.logger.Debug("response body", "body", string(resp.Body))
		return fmt.Errorf("failed to parse response: %w", err)
	}

	return nil
}

// newHTTPError builds an HTTPError from an error response body, which may
// be a JSON envelope or plain text.
func newHTTPError(status int, body []byte) *HTTPError {
	var envelope api.ErrorResponse
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return &HTTPError{StatusCode: status, Message: envelope.Message}
	}
	return &HTTPError{StatusCode: status, Message: strings.TrimSpace(string(body))}
}

// GetPlaybook fetches a playbook by id
func (c *Client) GetPlaybook(ctx context.Context, id string) (*api.PlaybookSpec, error) {
	var resp api.PlaybookSpec
	err := c.DoJSON(ctx, Request{
		Method: http.MethodGet,
		Path:   "/v1/playbooks/" + url.PathEscape(id),
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// CreatePlaybook creates a playbook from its payload
func (c *Client) CreatePlaybook(ctx context.Context, payload api.PlaybookPayload) (*api.PlaybookSpec, error) {
	var resp api.PlaybookSpec
	err := c.DoJSON(ctx, Request{
		Method: http.MethodPost,
		Path:   "/v1/playbooks",
		Body:   payload,
	}, &resp)
	if err != nil {
		return nil, err
	}

	return &resp, nil
}

// DeletePlaybook deletes a playbook by id
func (c *Client) DeletePlaybook(ctx context.Context, id string) error {
	return c.DoJSON(ctx, Request{
		Method: http.MethodDelete,
		Path:   "/v1/playbooks/" + url.PathEscape(id),
	}, nil)
}

// StartPlaybook starts a playbook by id
func (c *Client) StartPlaybook(ctx context.Context, id string) error {
	return c.DoJSON(ctx, Request{
		Method: http.MethodPost,
		Path:   "/v1/playbooks/" + url.PathEscape(id) + "/actions/start",
	}, nil)
}

// SyncActor forwards a synchronization event to an actor of a playbook
func (c *Client) SyncActor(ctx context.Context, playbookID, name string, req api.Synchronization) error {
	return c.DoJSON(ctx, Request{
		Method: http.MethodPost,
		Path:   actorPath(playbookID, name) + "/sync",
		Body:   req,
	}, nil)
}

func actorPath(playbookID, name string) string {
	return "/v1/actors/" + url.PathEscape(playbookID) + "/" + url.PathEscape(name)
}
