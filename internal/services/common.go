// Package services holds the playbook, file, folder and logger services.
// Each one reshapes a request, forwards it to the orchestration server or
// the SCM and converts every failure into an application error kind at the
// point of the call.
package services

import (
	"context"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/amphitheatre-app/playbooks/internal/api"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
	"github.com/amphitheatre-app/playbooks/internal/logger"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
	"github.com/amphitheatre-app/playbooks/internal/reference"
)

var validate = validator.New()

// defaultReference is used when neither the request nor the playbook names one.
const defaultReference = "HEAD"

// lookupPlaybook fetches a playbook; any failure reports the playbook as missing.
func lookupPlaybook(ctx context.Context, client orchestrator.Interface, id string) (*api.PlaybookSpec, error) {
	p, err := client.GetPlaybook(ctx, id)
	if err != nil {
		return nil, apperrors.ErrNotFoundPlaybook(err)
	}
	return p, nil
}

// primaryActor returns the first character of p.
func primaryActor(p *api.PlaybookSpec) (string, error) {
	name, ok := p.PrimaryActor()
	if !ok {
		return "", apperrors.ErrBadPlaybook("The playbook has no characters")
	}
	return name, nil
}

// source returns the repository of p together with its "owner/repo" name.
func source(p *api.PlaybookSpec) (*api.Repository, string, error) {
	repo := p.Preface.Repository
	if repo == nil || repo.Repo == "" {
		return nil, "", apperrors.ErrBadPlaybook("The playbook has no repository")
	}

	name, err := reference.RepoName(repo.Repo)
	if err != nil {
		return nil, "", err
	}
	return repo, name, nil
}

// effectiveReference returns ref when set, else the playbook's own
// reference, else HEAD.
func effectiveReference(repo *api.Repository, ref string) string {
	if ref != "" {
		return ref
	}
	if resolved, err := reference.Resolve(*repo); err == nil {
		return resolved.Name
	}
	return defaultReference
}

// synchronize forwards req to the primary actor of playbook id.
func synchronize(ctx context.Context, client orchestrator.Interface, log *slog.Logger, id string, req api.Synchronization) error {
	p, err := lookupPlaybook(ctx, client, id)
	if err != nil {
		return err
	}

	actor, err := primaryActor(p)
	if err != nil {
		return err
	}

	logger.DeriveRequestLogger(ctx, log).Debug("synchronizing playbook",
		"playbookID", id, "actor", actor, "kind", req.Kind, "paths", len(req.Paths))

	if err := client.SyncActor(ctx, id, actor, req); err != nil {
		return apperrors.ErrFailedToSynchronize(err)
	}
	return nil
}
