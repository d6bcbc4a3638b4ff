package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/amphitheatre-app/playbooks/internal/api"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
	"github.com/amphitheatre-app/playbooks/internal/scm"
)

// FileService reads files from the SCM and writes them through the
// playbook's primary actor.
type FileService struct {
	client orchestrator.Interface
	scm    scm.Client
	logger *slog.Logger
}

// NewFileService creates a new file service
func NewFileService(client orchestrator.Interface, scmClient scm.Client, log *slog.Logger) *FileService {
	if log == nil {
		log = slog.Default()
	}
	return &FileService{client: client, scm: scmClient, logger: log}
}

// Capabilities reports that files can be read and created.
func (s *FileService) Capabilities() api.Capabilities {
	return api.Capabilities{Read: true, Create: true}
}

// Get returns the file at path under reference.
func (s *FileService) Get(ctx context.Context, id, ref, path string) (*api.Content, error) {
	p, err := lookupPlaybook(ctx, s.client, id)
	if err != nil {
		return nil, err
	}

	repo, name, err := source(p)
	if err != nil {
		return nil, err
	}

	content, err := s.scm.FindContent(ctx, name, path, effectiveReference(repo, ref))
	if err != nil {
		return nil, apperrors.ErrNotFoundContent(err)
	}
	return content, nil
}

// Create sends a create event carrying content to the primary actor and
// echoes the file back. The echo has no sha or blob id since nothing was
// committed.
func (s *FileService) Create(ctx context.Context, id, path, content string) (*api.Content, error) {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil, apperrors.ErrBadPlaybookRequest("file path is required", nil)
	}

	err := synchronize(ctx, s.client, s.logger, id, api.Synchronization{
		Kind:    api.EventCreate,
		Paths:   []api.SyncPath{api.FilePath(path)},
		Payload: []byte(content),
	})
	if err != nil {
		return nil, err
	}

	return &api.Content{Path: path, Data: []byte(content)}, nil
}

// Update is not supported.
func (s *FileService) Update(context.Context, string, string, string) (*api.Content, error) {
	return nil, apperrors.ErrNotSupported("file update")
}

// Delete is not supported.
func (s *FileService) Delete(context.Context, string, string) error {
	return apperrors.ErrNotSupported("file delete")
}

// Copy is not supported.
func (s *FileService) Copy(context.Context, string, string, string) (*api.Content, error) {
	return nil, apperrors.ErrNotSupported("file copy")
}

// Move is not supported.
func (s *FileService) Move(context.Context, string, string, string) (*api.Content, error) {
	return nil, apperrors.ErrNotSupported("file move")
}
