package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/amphitheatre-app/playbooks/internal/api"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
	"github.com/amphitheatre-app/playbooks/internal/reference"
	"github.com/amphitheatre-app/playbooks/internal/scm"
)

// PlaybookService handles playbook lifecycle business logic
type PlaybookService struct {
	client orchestrator.Interface
	scm    scm.Client
	logger *slog.Logger
}

// NewPlaybookService creates a new playbook service
func NewPlaybookService(client orchestrator.Interface, scmClient scm.Client, log *slog.Logger) *PlaybookService {
	if log == nil {
		log = slog.Default()
	}
	return &PlaybookService{client: client, scm: scmClient, logger: log}
}

// Create resolves the requested reference, looks the repository up in the
// SCM and asks the orchestration server to create the playbook.
// The stored repository keeps only the selector that won precedence.
func (s *PlaybookService) Create(ctx context.Context, req api.CreatePlaybookRequest) (*api.PlaybookSpec, error) {
	if err := validate.StructCtx(ctx, req); err != nil {
		return nil, apperrors.ErrBadPlaybookRequest("repo is required", err)
	}

	ref, err := reference.Resolve(req.Repository)
	if err != nil {
		return nil, err
	}

	name, err := reference.RepoName(req.Repo)
	if err != nil {
		return nil, err
	}

	reqLogger := logger.DeriveRequestLogger(ctx, s.logger)
	reqLogger.Debug("looking up repository", "repo", name, "reference", ref.String())

	meta, err := s.scm.FindRepository(ctx, name)
	if err != nil {
		return nil, apperrors.ErrNotFoundRepo(err)
	}

	short := reference.ShortName(req.Repo)
	title := req.Title
	if title == "" {
		title = short
	}
	description := req.Description
	if description == "" {
		description = meta.Description
	}

	repo := api.Repository{Repo: req.Repo}
	switch ref.Kind {
	case reference.KindRev:
		repo.Rev = ref.Name
	case reference.KindTag:
		repo.Tag = ref.Name
	default:
		repo.Branch = ref.Name
	}

	p, err := s.client.CreatePlaybook(ctx, api.PlaybookPayload{
		Title:       title,
		Description: description,
		Preface:     api.Preface{Name: short, Repository: &repo},
	})
	if err != nil {
		return nil, apperrors.ErrFailedToCreatePlaybook(err)
	}

	reqLogger.Info("playbook created", "playbookID", p.ID, "repo", name, "reference", ref.String())
	return p, nil
}

// Get returns the playbook with the given id.
func (s *PlaybookService) Get(ctx context.Context, id string) (*api.PlaybookSpec, error) {
	return lookupPlaybook(ctx, s.client, id)
}

// Detail returns the playbook along with its repository at reference.
// A path naming a file yields its content; no path, or a directory, yields
// the tree. An empty reference falls back to the playbook's own one.
func (s *PlaybookService) Detail(
	ctx context.Context, id, ref, path string, recursive bool,
) (*api.PlaybookDetail, error) {
	p, err := lookupPlaybook(ctx, s.client, id)
	if err != nil {
		return nil, err
	}

	repo, name, err := source(p)
	if err != nil {
		return nil, err
	}

	detail := &api.PlaybookDetail{Playbook: p, Reference: effectiveReference(repo, ref)}

	if path != "" {
		content, err := s.scm.FindContent(ctx, name, path, detail.Reference)
		switch {
		case err == nil:
			detail.Content = content
			return detail, nil
		case !errors.Is(err, scm.ErrNotAFile):
			return nil, apperrors.ErrNotFoundContent(err)
		}
	}

	tree, err := s.scm.GetTree(ctx, name, detail.Reference, path, recursive)
	if err != nil {
		return nil, apperrors.ErrNotFoundFolder(err)
	}
	detail.Tree = tree
	return detail, nil
}

// Update forwards a synchronization to the playbook's primary actor.
func (s *PlaybookService) Update(ctx context.Context, id string, req api.Synchronization) error {
	if err := validate.StructCtx(ctx, req); err != nil {
		return apperrors.ErrBadPlaybookRequest("invalid synchronization", err)
	}
	return synchronize(ctx, s.client, s.logger, id, req)
}

// Delete removes a playbook. The playbook must exist beforehand.
func (s *PlaybookService) Delete(ctx context.Context, id string) error {
	if _, err := lookupPlaybook(ctx, s.client, id); err != nil {
		return err
	}

	if err := s.client.DeletePlaybook(ctx, id); err != nil {
		return apperrors.ErrFailedToDeletePlaybook(err)
	}

	logger.DeriveRequestLogger(ctx, s.logger).Info("playbook deleted", "playbookID", id)
	return nil
}

// Start asks the orchestration server to start a playbook.
func (s *PlaybookService) Start(ctx context.Context, id string) error {
	if _, err := lookupPlaybook(ctx, s.client, id); err != nil {
		return err
	}

	if err := s.client.StartPlaybook(ctx, id); err != nil {
		return apperrors.ErrFailedToStartPlaybook(err)
	}

	logger.DeriveRequestLogger(ctx, s.logger).Info("playbook started", "playbookID", id)
	return nil
}
