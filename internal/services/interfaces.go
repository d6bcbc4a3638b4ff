package services

import (
	"context"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
)

// Service interfaces for dependency injection and testing

// Playbooks manages the lifecycle of playbooks.
type Playbooks interface {
	Create(ctx context.Context, req api.CreatePlaybookRequest) (*api.PlaybookSpec, error)
	Get(ctx context.Context, id string) (*api.PlaybookSpec, error)
	Detail(ctx context.Context, id, reference, path string, recursive bool) (*api.PlaybookDetail, error)
	Update(ctx context.Context, id string, req api.Synchronization) error
	Delete(ctx context.Context, id string) error
	Start(ctx context.Context, id string) error
}

// Files reads and writes single files of a playbook.
type Files interface {
	Capabilities() api.Capabilities
	Get(ctx context.Context, id, reference, path string) (*api.Content, error)
	Create(ctx context.Context, id, path, content string) (*api.Content, error)
	Update(ctx context.Context, id, path, content string) (*api.Content, error)
	Delete(ctx context.Context, id, path string) error
	Copy(ctx context.Context, id, path, destination string) (*api.Content, error)
	Move(ctx context.Context, id, path, destination string) (*api.Content, error)
}

// Folders reads and writes directories of a playbook.
type Folders interface {
	Capabilities() api.Capabilities
	Get(ctx context.Context, id, reference, path string, recursive bool) (*api.Tree, error)
	Tree(ctx context.Context, id, reference string, recursive bool) (*api.Tree, error)
	Create(ctx context.Context, id, reference, path string) (*api.Content, error)
	Delete(ctx context.Context, id, reference, path string) error
	Copy(ctx context.Context, id, reference, path, destination string) (*api.Content, error)
	Move(ctx context.Context, id, reference, path, destination string) (*api.Content, error)
}

// Logs streams the live logs of a playbook.
type Logs interface {
	Logs(ctx context.Context, id string) (orchestrator.LogStream, error)
}

var (
	_ Playbooks = (*PlaybookService)(nil)
	_ Files     = (*FileService)(nil)
	_ Folders   = (*FolderService)(nil)
	_ Logs      = (*LoggerService)(nil)
)
