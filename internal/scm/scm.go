// Package scm defines the source-control port the gateway reads repository
// metadata, file contents and trees from. Drivers register themselves by
// name and are selected through configuration.
package scm

import (
	"context"
	"errors"

	"github.com/amphitheatre-app/playbooks/internal/api"
)

// Client reads repositories addressed by their "owner/repo" name.
type Client interface {
	// FindRepository returns repository metadata.
	FindRepository(ctx context.Context, repo string) (*api.SCMRepository, error)
	// FindContent returns the file at path under ref.
	FindContent(ctx context.Context, repo, path, ref string) (*api.Content, error)
	// GetTree lists the directory at path under ref. An empty path is the
	// repository root.
	GetTree(ctx context.Context, repo, ref, path string, recursive bool) (*api.Tree, error)
}

// ErrNotFound is returned when a repository, reference or path does not exist.
var ErrNotFound = errors.New("not found")

// ErrNotAFile is returned when a content lookup lands on a directory.
var ErrNotAFile = errors.New("path is not a file")

// ErrNotADirectory is returned when a tree lookup lands on a file.
var ErrNotADirectory = errors.New("path is not a directory")
