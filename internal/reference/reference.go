// Package reference selects the git reference a playbook points at and
// derives SCM repository identifiers from repository addresses.
package reference

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/amphitheatre-app/playbooks/internal/api"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
)

// Kind is the selector a reference was resolved from.
type Kind int

const (
	// KindBranch is a branch name such as "main".
	KindBranch Kind = iota
	// KindTag is a tag name such as "v1.0".
	KindTag
	// KindRev is a commit hash or a named remote reference.
	KindRev
)

// String returns a human-readable name of the kind.
func (k Kind) String() string {
	switch k {
	case KindBranch:
		return "branch"
	case KindTag:
		return "tag"
	case KindRev:
		return "rev"
	default:
		return "unknown"
	}
}

// Reference is the single effective reference of a repository.
type Reference struct {
	Kind Kind
	Name string
}

// String returns the reference name passed to the SCM.
func (r Reference) String() string {
	return r.Name
}

// MissingSelectorMessage is returned when a repository carries no selector.
const MissingSelectorMessage = "requires either branch, tag, or rev"

// Resolve returns the effective reference of repo.
// When more than one selector is set, rev wins over tag and tag wins over branch.
func Resolve(repo api.Repository) (Reference, error) {
	rev := strings.TrimSpace(repo.Rev)
	tag := strings.TrimSpace(repo.Tag)
	branch := strings.TrimSpace(repo.Branch)

	switch {
	case rev != "":
		return Reference{Kind: KindRev, Name: rev}, nil
	case tag != "":
		return Reference{Kind: KindTag, Name: tag}, nil
	case branch != "":
		return Reference{Kind: KindBranch, Name: branch}, nil
	default:
		return Reference{}, apperrors.ErrBadPlaybookRequest(MissingSelectorMessage, nil)
	}
}

// RepoName extracts "owner/repo" from a repository address. Both URL
// addresses (https://github.com/owner/repo.git) and scp-like addresses
// (git@github.com:owner/repo.git) are accepted.
func RepoName(address string) (string, error) {
	p, err := repoPath(address)
	if err != nil {
		return "", apperrors.ErrInvalidRepoAddress(err)
	}

	segments := strings.Split(p, "/")
	if len(segments) < 2 {
		return "", apperrors.ErrInvalidRepoAddress(fmt.Errorf("address %q has no owner/repo path", address))
	}
	owner, name := segments[len(segments)-2], segments[len(segments)-1]
	if owner == "" || name == "" {
		return "", apperrors.ErrInvalidRepoAddress(fmt.Errorf("address %q has an empty path segment", address))
	}

	return owner + "/" + name, nil
}

// ShortName returns the last path segment of a repository address without
// the .git suffix, e.g. "app" for https://github.com/acme/app.git.
func ShortName(address string) string {
	p, err := repoPath(address)
	if err != nil {
		return ""
	}
	if i := strings.LastIndex(p, "/"); i >= 0 {
		return p[i+1:]
	}
	return p
}

// repoPath returns the repository path of address without surrounding
// slashes and without the .git suffix.
func repoPath(address string) (string, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return "", fmt.Errorf("empty repository address")
	}

	var p string
	if strings.Contains(address, "://") {
		u, err := url.Parse(address)
		if err != nil {
			return "", fmt.Errorf("parse repository address: %w", err)
		}
		if u.Host == "" && u.Scheme != "file" {
			return "", fmt.Errorf("address %q has no host", address)
		}
		p = u.Path
	} else {
		// scp-like: [user@]host:owner/repo
		at := strings.Index(address, "@")
		colon := strings.Index(address, ":")
		if colon <= at+1 {
			return "", fmt.Errorf("address %q is neither a URL nor an scp-like address", address)
		}
		p = address[colon+1:]
	}

	p = strings.Trim(p, "/")
	p = strings.TrimSuffix(p, ".git")
	if p == "" {
		return "", fmt.Errorf("address %q has no repository path", address)
	}
	return p, nil
}
