// Package gitrepo implements an scm.Client that reads any git remote
// through an in-memory clone. It needs no forge API, so it serves
// self-hosted remotes that only speak the git protocol. All remotes live
// under one base URL, and every call clones afresh.
package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing"
	"github.com/go-git/go-git/v5/plumbing/filemode"
	"github.com/go-git/go-git/v5/plumbing/object"
	"github.com/go-git/go-git/v5/plumbing/transport"
	githttp "github.com/go-git/go-git/v5/plumbing/transport/http"
	"github.com/go-git/go-git/v5/storage/memory"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/scm"
)

// DefaultBaseURL is prepended to "owner/repo" to build remote URLs.
const DefaultBaseURL = "https://github.com"

// Opener returns a repository for a remote URL.
type Opener func(ctx context.Context, remoteURL string) (*git.Repository, error)

// Client implements scm.Client on top of go-git.
type Client struct {
	baseURL string
	token   string
	open    Opener
	logger  *slog.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithOpener replaces how repositories are obtained.
func WithOpener(open Opener) Option {
	return func(c *Client) {
		c.open = open
	}
}

// NewClient creates a git client. An empty baseURL selects DefaultBaseURL.
func NewClient(baseURL, token string, log *slog.Logger, opts ...Option) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if log == nil {
		log = slog.Default()
	}
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		token:   token,
		logger:  log,
	}
	c.open = c.clone
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// RemoteURL returns the clone URL of an "owner/repo" name.
func (c *Client) RemoteURL(repo string) string {
	return c.baseURL + "/" + strings.Trim(repo, "/") + ".git"
}

// clone mirrors the remote into memory so that branches, tags and other
// named references such as refs/pull/*/head all resolve.
func (c *Client) clone(ctx context.Context, remoteURL string) (*git.Repository, error) {
	opts := &git.CloneOptions{
		URL:    remoteURL,
		Mirror: true,
		Tags:   git.AllTags,
	}
	if c.token != "" {
		opts.Auth = &githttp.BasicAuth{Username: "x-access-token", Password: c.token}
	}

	repo, err := git.CloneContext(ctx, memory.NewStorage(), nil, opts)
	if err != nil {
		if errors.Is(err, git.ErrRepositoryNotExists) || errors.Is(err, transport.ErrRepositoryNotFound) {
			return nil, fmt.Errorf("clone %s: %w", remoteURL, scm.ErrNotFound)
		}
		return nil, fmt.Errorf("clone %s: %w", remoteURL, err)
	}
	return repo, nil
}

func (c *Client) openRepo(ctx context.Context, repo string) (*git.Repository, error) {
	remoteURL := c.RemoteURL(repo)

	log := logger.DeriveRequestLogger(ctx, c.logger)
	log.Debug("opening git repository",
		append([]any{"operation", "Git.Clone", "url", remoteURL}, logger.GetDeadlineInfo(ctx)...)...)

	return c.open(ctx, remoteURL)
}

// FindRepository returns the metadata git itself knows about: names,
// default branch and clone URL. Git carries no description.
func (c *Client) FindRepository(ctx context.Context, repo string) (*api.SCMRepository, error) {
	r, err := c.openRepo(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("git find repository %s: %w", repo, err)
	}

	meta := &api.SCMRepository{
		Name:     path.Base(repo),
		FullName: repo,
		CloneURL: c.RemoteURL(repo),
	}
	if head, err := r.Reference(plumbing.HEAD, false); err == nil && head.Type() == plumbing.SymbolicReference {
		meta.DefaultBranch = head.Target().Short()
	}

	return meta, nil
}

// FindContent returns the file at filePath under ref.
func (c *Client) FindContent(ctx context.Context, repo, filePath, ref string) (*api.Content, error) {
	r, err := c.openRepo(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("git find content %s: %w", repo, err)
	}

	tree, err := treeForRevision(r, ref)
	if err != nil {
		return nil, fmt.Errorf("git find content %s@%s: %w", repo, ref, err)
	}

	clean := cleanPath(filePath)
	entry, err := tree.FindEntry(clean)
	if err != nil {
		return nil, fmt.Errorf("git find content %s: %w", clean, scm.ErrNotFound)
	}
	if !entry.Mode.IsFile() {
		return nil, fmt.Errorf("git find content %s: %w", clean, scm.ErrNotAFile)
	}

	blob, err := r.BlobObject(entry.Hash)
	if err != nil {
		return nil, fmt.Errorf("git read blob %s: %w", entry.Hash, err)
	}
	reader, err := blob.Reader()
	if err != nil {
		return nil, fmt.Errorf("git read blob %s: %w", entry.Hash, err)
	}
	defer func() { _ = reader.Close() }()

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, fmt.Errorf("git read blob %s: %w", entry.Hash, err)
	}

	return &api.Content{
		Path:   clean,
		Data:   data,
		Sha:    entry.Hash.String(),
		BlobID: entry.Hash.String(),
	}, nil
}

// GetTree lists the directory at dirPath under ref. Recursive listings
// carry every descendant with its path relative to dirPath.
func (c *Client) GetTree(ctx context.Context, repo, ref, dirPath string, recursive bool) (*api.Tree, error) {
	r, err := c.openRepo(ctx, repo)
	if err != nil {
		return nil, fmt.Errorf("git get tree %s: %w", repo, err)
	}

	tree, err := treeForRevision(r, ref)
	if err != nil {
		return nil, fmt.Errorf("git get tree %s@%s: %w", repo, ref, err)
	}

	if clean := cleanPath(dirPath); clean != "" {
		entry, err := tree.FindEntry(clean)
		if err != nil {
			return nil, fmt.Errorf("git get tree %s: %w", clean, scm.ErrNotFound)
		}
		if entry.Mode != filemode.Dir {
			return nil, fmt.Errorf("git get tree %s: %w", clean, scm.ErrNotADirectory)
		}
		if tree, err = tree.Tree(clean); err != nil {
			return nil, fmt.Errorf("git get tree %s: %w", clean, err)
		}
	}

	entries, err := listTree(r, tree, recursive)
	if err != nil {
		return nil, err
	}

	return &api.Tree{Sha: tree.Hash.String(), Tree: entries}, nil
}

func listTree(r *git.Repository, tree *object.Tree, recursive bool) ([]api.TreeEntry, error) {
	var entries []api.TreeEntry

	if !recursive {
		for _, e := range tree.Entries {
			entries = append(entries, toEntry(r, e.Name, e))
		}
		return entries, nil
	}

	walker := object.NewTreeWalker(tree, true, nil)
	defer walker.Close()

	for {
		name, e, err := walker.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("git walk tree %s: %w", tree.Hash, err)
		}
		entries = append(entries, toEntry(r, name, e))
	}

	return entries, nil
}

func toEntry(r *git.Repository, name string, e object.TreeEntry) api.TreeEntry {
	entry := api.TreeEntry{
		Path: name,
		Mode: fmt.Sprintf("%06o", uint32(e.Mode)),
		Sha:  e.Hash.String(),
	}

	switch e.Mode {
	case filemode.Dir:
		entry.Type = "tree"
	case filemode.Submodule:
		entry.Type = "commit"
	default:
		entry.Type = "blob"
		if obj, err := r.Storer.EncodedObject(plumbing.BlobObject, e.Hash); err == nil {
			entry.Size = obj.Size()
		}
	}

	return entry
}

// treeForRevision resolves a branch, tag, commit hash or named reference
// and returns the tree of the commit it points at.
func treeForRevision(r *git.Repository, rev string) (*object.Tree, error) {
	if rev == "" {
		rev = plumbing.HEAD.String()
	}

	hash, err := r.ResolveRevision(plumbing.Revision(rev))
	if err != nil {
		return nil, fmt.Errorf("resolve revision %q: %w", rev, scm.ErrNotFound)
	}

	commit, err := r.CommitObject(*hash)
	if err != nil {
		return nil, fmt.Errorf("failed to get commit object: %w", err)
	}

	tree, err := commit.Tree()
	if err != nil {
		return nil, fmt.Errorf("failed to get tree: %w", err)
	}

	return tree, nil
}

func cleanPath(p string) string {
	p = strings.Trim(p, "/")
	if p == "" {
		return ""
	}
	return path.Clean(p)
}
