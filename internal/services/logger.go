package services

import (
	"context"
	"log/slog"

	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
)

// LoggerService opens log streams of playbooks.
type LoggerService struct {
	client orchestrator.Interface
	logger *slog.Logger
}

// NewLoggerService creates a new logger service
func NewLoggerService(client orchestrator.Interface, log *slog.Logger) *LoggerService {
	if log == nil {
		log = slog.Default()
	}
	return &LoggerService{client: client, logger: log}
}

// Logs opens the log stream of the playbook's primary actor. The stream
// lives until ctx is done or the caller closes it.
func (s *LoggerService) Logs(ctx context.Context, id string) (orchestrator.LogStream, error) {
	p, err := lookupPlaybook(ctx, s.client, id)
	if err != nil {
		return nil, err
	}

	actor, err := primaryActor(p)
	if err != nil {
		return nil, err
	}

	logger.DeriveRequestLogger(ctx, s.logger).Debug("opening log stream", "playbookID", id, "actor", actor)

	stream, err := s.client.ActorLogs(ctx, id, actor)
	if err != nil {
		if orchestrator.IsNotFound(err) {
			return nil, apperrors.ErrNotFound(err)
		}
		return nil, apperrors.ErrInternalServerError(err)
	}
	return stream, nil
}
