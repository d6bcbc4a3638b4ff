package github

import (
	"log/slog"

	"github.com/amphitheatre-app/playbooks/internal/config"
	"github.com/amphitheatre-app/playbooks/internal/constants"
	"github.com/amphitheatre-app/playbooks/internal/scm"
)

func init() {
	scm.Register(string(constants.GitHubDriver), func(cfg config.SCMConfig, log *slog.Logger) (scm.Client, error) {
		return NewClient(cfg.BaseURL, cfg.Token, log), nil
	})
}
