package orchestrator

import (
	"context"

	"github.com/amphitheatre-app/playbooks/internal/api"
)

// Interface defines the orchestration client for dependency injection and testing
type Interface interface {
	GetPlaybook(ctx context.Context, id string) (*api.PlaybookSpec, error)
	CreatePlaybook(ctx context.Context, payload api.PlaybookPayload) (*api.PlaybookSpec, error)
	DeletePlaybook(ctx context.Context, id string) error
	StartPlaybook(ctx context.Context, id string) error
	SyncActor(ctx context.Context, playbookID, name string, req api.Synchronization) error
	ActorLogs(ctx context.Context, playbookID, name string) (LogStream, error)
}

// LogStream is a live feed of log events. Next blocks until an event is
// available and returns io.EOF once the upstream closes the feed.
type LogStream interface {
	Next() (api.LogEvent, error)
	Close() error
}

// Compile-time check to ensure Client implements Interface
var _ Interface = (*Client)(nil)
