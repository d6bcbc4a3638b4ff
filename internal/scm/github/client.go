// Package github implements an scm.Client for GitHub using its REST API v3.
package github

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/scm"
)

// DefaultBaseURL is the public GitHub API endpoint.
const DefaultBaseURL = "https://api.github.com"

// Client implements scm.Client for GitHub.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	logger     *slog.Logger
}

// NewClient creates a GitHub client. An empty baseURL selects the public API.
func NewClient(baseURL, token string, log *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)},
		logger:     log,
	}
}

// ghRepository mirrors the JSON response of GET /repos/{owner}/{repo}.
type ghRepository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	CloneURL      string `json:"clone_url"`
}

// ghContent mirrors a file entry of GET /repos/{owner}/{repo}/contents/{path}.
type ghContent struct {
	Type     string `json:"type"`
	Path     string `json:"path"`
	Sha      string `json:"sha"`
	Encoding string `json:"encoding"`
	Content  string `json:"content"`
}

// ghTree mirrors the JSON response of GET /repos/{owner}/{repo}/git/trees/{sha}.
type ghTree struct {
	Sha       string        `json:"sha"`
	Tree      []ghTreeEntry `json:"tree"`
	Truncated bool          `json:"truncated"`
}

type ghTreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	Sha  string `json:"sha"`
	Size int64  `json:"size"`
}

// FindRepository returns the metadata of repo.
func (c *Client) FindRepository(ctx context.Context, repo string) (*api.SCMRepository, error) {
	body, err := c.doRequest(ctx, "/repos/"+repo)
	if err != nil {
		return nil, fmt.Errorf("github find repository %s: %w", repo, err)
	}

	var r ghRepository
	if err := json.Unmarshal(body, &r); err != nil {
		return nil, fmt.Errorf("github parse response: %w", err)
	}

	return &api.SCMRepository{
		Name:          r.Name,
		FullName:      r.FullName,
		Description:   r.Description,
		DefaultBranch: r.DefaultBranch,
		CloneURL:      r.CloneURL,
	}, nil
}

// FindContent returns the file at path under ref.
func (c *Client) FindContent(ctx context.Context, repo, path, ref string) (*api.Content, error) {
	reqPath := "/repos/" + repo + "/contents/" + escapePath(path)
	if ref != "" {
		reqPath += "?ref=" + url.QueryEscape(ref)
	}

	body, err := c.doRequest(ctx, reqPath)
	if err != nil {
		return nil, fmt.Errorf("github find content %s@%s:%s: %w", repo, ref, path, err)
	}

	// A directory answers with a JSON array.
	if trimmed := strings.TrimSpace(string(body)); strings.HasPrefix(trimmed, "[") {
		return nil, fmt.Errorf("github find content %s: %w", path, scm.ErrNotAFile)
	}

	var content ghContent
	if err := json.Unmarshal(body, &content); err != nil {
		return nil, fmt.Errorf("github parse response: %w", err)
	}
	if content.Type != "" && content.Type != "file" {
		return nil, fmt.Errorf("github find content %s is a %s: %w", path, content.Type, scm.ErrNotAFile)
	}

	data, err := decodeContent(content.Encoding, content.Content)
	if err != nil {
		return nil, fmt.Errorf("github decode content %s: %w", path, err)
	}

	return &api.Content{
		Path:   content.Path,
		Data:   data,
		Sha:    content.Sha,
		BlobID: content.Sha,
	}, nil
}

// GetTree lists the directory at path under ref. Subdirectories are
// addressed with the "<ref>:<path>" tree expression.
func (c *Client) GetTree(ctx context.Context, repo, ref, path string, recursive bool) (*api.Tree, error) {
	treeish := ref
	if p := strings.Trim(path, "/"); p != "" {
		treeish = ref + ":" + p
	}

	reqPath := "/repos/" + repo + "/git/trees/" + escapePath(treeish)
	if recursive {
		reqPath += "?recursive=1"
	}

	body, err := c.doRequest(ctx, reqPath)
	if err != nil {
		return nil, fmt.Errorf("github get tree %s@%s: %w", repo, treeish, err)
	}

	var tree ghTree
	if err := json.Unmarshal(body, &tree); err != nil {
		return nil, fmt.Errorf("github parse response: %w", err)
	}

	entries := make([]api.TreeEntry, 0, len(tree.Tree))
	for _, e := range tree.Tree {
		entries = append(entries, api.TreeEntry(e))
	}

	return &api.Tree{Sha: tree.Sha, Tree: entries, Truncated: tree.Truncated}, nil
}

func (c *Client) doRequest(ctx context.Context, reqPath string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+reqPath, http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/vnd.github+json")
	req.Header.Set("X-GitHub-Api-Version", "2022-11-28")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	log := logger.DeriveRequestLogger(ctx, c.logger)
	logArgs := []any{"operation", "GitHub.Request", "url", req.URL.String()}
	log.Debug("calling external service", append(logArgs, logger.GetDeadlineInfo(ctx)...)...)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	log.Debug("received HTTP response", "status", resp.StatusCode, "bodySize", len(respBody), "url", req.URL.String())

	switch {
	case resp.StatusCode == http.StatusNotFound, resp.StatusCode == http.StatusUnprocessableEntity:
		return nil, fmt.Errorf("github API %d: %w", resp.StatusCode, scm.ErrNotFound)
	case resp.StatusCode >= http.StatusBadRequest:
		return nil, fmt.Errorf("github API %d: %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	return respBody, nil
}

// escapePath escapes every segment of a repository path.
func escapePath(p string) string {
	segments := strings.Split(strings.Trim(p, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.Join(segments, "/")
}

func decodeContent(encoding, content string) ([]byte, error) {
	switch encoding {
	case "base64":
		// GitHub wraps base64 payloads at 60 columns.
		return base64.StdEncoding.DecodeString(strings.ReplaceAll(content, "\n", ""))
	case "", "none":
		return []byte(content), nil
	default:
		return nil, fmt.Errorf("unsupported encoding %q", encoding)
	}
}
