// Package testutil provides shared testing utilities and helpers.
package testutil

import (
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/google/uuid"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/constants"
)

// DefaultRepo is the repository address used by builders.
const DefaultRepo = "https://github.com/acme/app.git"

// PlaybookBuilder provides a fluent interface for building test playbooks.
type PlaybookBuilder struct {
	playbook *api.PlaybookSpec
}

// NewPlaybookBuilder creates a new PlaybookBuilder with sensible defaults:
// a random id, a repository on branch main and one character named "app".
func NewPlaybookBuilder() *PlaybookBuilder {
	return &PlaybookBuilder{
		playbook: &api.PlaybookSpec{
			ID:    uuid.NewString(),
			Title: "app",
			Preface: api.Preface{
				Name:       "app",
				Repository: &api.Repository{Repo: DefaultRepo, Branch: "main"},
			},
			Characters: []api.Character{{Meta: api.CharacterMeta{Name: "app"}}},
		},
	}
}

// WithID sets the playbook id.
func (b *PlaybookBuilder) WithID(id string) *PlaybookBuilder {
	b.playbook.ID = id
	return b
}

// WithTitle sets the playbook title.
func (b *PlaybookBuilder) WithTitle(title string) *PlaybookBuilder {
	b.playbook.Title = title
	return b
}

// WithRepository replaces the preface repository.
func (b *PlaybookBuilder) WithRepository(repo api.Repository) *PlaybookBuilder {
	b.playbook.Preface.Repository = &repo
	return b
}

// WithoutRepository removes the preface repository.
func (b *PlaybookBuilder) WithoutRepository() *PlaybookBuilder {
	b.playbook.Preface.Repository = nil
	return b
}

// WithCharacters replaces the characters by ones with the given names.
func (b *PlaybookBuilder) WithCharacters(names ...string) *PlaybookBuilder {
	b.playbook.Characters = nil
	for _, name := range names {
		b.playbook.Characters = append(b.playbook.Characters, api.Character{Meta: api.CharacterMeta{Name: name}})
	}
	return b
}

// WithoutCharacters removes every character.
func (b *PlaybookBuilder) WithoutCharacters() *PlaybookBuilder {
	b.playbook.Characters = nil
	return b
}

// Build returns the constructed playbook.
func (b *PlaybookBuilder) Build() *api.PlaybookSpec {
	return b.playbook
}

// TestContext creates a test context with a reasonable timeout.
// Note: The cancel function is intentionally not returned since test contexts
// are expected to be short-lived and will be cleaned up when the test completes.
func TestContext() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), constants.TestContextTimeout)
	_ = cancel // Silence unused warning - context will timeout automatically
	return ctx
}

// TestLogger creates a logger suitable for testing (outputs to stderr).
func TestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelError, // Only show errors in tests
	}))
}

// SilentLogger creates a logger that discards all output.
func SilentLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}
