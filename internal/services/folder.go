package services

import (
	"context"
	"log/slog"

	"github.com/amphitheatre-app/playbooks/internal/api"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
	"github.com/amphitheatre-app/playbooks/internal/scm"
)

// FolderService lists directories of a playbook's repository.
type FolderService struct {
	client orchestrator.Interface
	scm    scm.Client
	logger *slog.Logger
}

// NewFolderService creates a new folder service
func NewFolderService(client orchestrator.Interface, scmClient scm.Client, log *slog.Logger) *FolderService {
	if log == nil {
		log = slog.Default()
	}
	return &FolderService{client: client, scm: scmClient, logger: log}
}

// Capabilities reports that folders are read-only.
func (s *FolderService) Capabilities() api.Capabilities {
	return api.Capabilities{Read: true}
}

// Get lists the directory at path under reference.
func (s *FolderService) Get(ctx context.Context, id, ref, path string, recursive bool) (*api.Tree, error) {
	p, err := lookupPlaybook(ctx, s.client, id)
	if err != nil {
		return nil, err
	}

	repo, name, err := source(p)
	if err != nil {
		return nil, err
	}

	ref = effectiveReference(repo, ref)
	logger.DeriveRequestLogger(ctx, s.logger).Debug("listing folder",
		"playbookID", id, "repo", name, "reference", ref, "path", path, "recursive", recursive)

	tree, err := s.scm.GetTree(ctx, name, ref, path, recursive)
	if err != nil {
		return nil, apperrors.ErrNotFoundFolder(err)
	}
	return tree, nil
}

// Tree lists the repository root under reference.
func (s *FolderService) Tree(ctx context.Context, id, ref string, recursive bool) (*api.Tree, error) {
	return s.Get(ctx, id, ref, "", recursive)
}

// Create is not supported.
func (s *FolderService) Create(context.Context, string, string, string) (*api.Content, error) {
	return nil, apperrors.ErrNotSupported("folder create")
}

// Delete is not supported.
func (s *FolderService) Delete(context.Context, string, string, string) error {
	return apperrors.ErrNotSupported("folder delete")
}

// Copy is not supported.
func (s *FolderService) Copy(context.Context, string, string, string, string) (*api.Content, error) {
	return nil, apperrors.ErrNotSupported("folder copy")
}

// Move is not supported.
func (s *FolderService) Move(context.Context, string, string, string, string) (*api.Content, error) {
	return nil, apperrors.ErrNotSupported("folder move")
}
