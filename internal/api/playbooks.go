package api

// Repository is a git reference: a repository address plus at most one
// selector among branch, tag and rev.
type Repository struct {
	// Source code repository the playbook is cloned from,
	// e.g. https://github.com/amphitheatre-app/amphitheatre.git.
	Repo string `json:"repo" validate:"required" jsonschema:"required,example=https://github.com/acme/app.git"`
	// Git branch, e.g. master or main.
	Branch string `json:"branch,omitempty"`
	// Git tag, e.g. v1.0.
	Tag string `json:"tag,omitempty"`
	// A commit hash like "4c59b707", or a named reference exposed by the
	// remote such as "refs/pull/493/head".
	Rev string `json:"rev,omitempty"`
}

// Preface is the descriptive section of a playbook.
type Preface struct {
	Name       string      `json:"name"`
	Repository *Repository `json:"repository,omitempty"`
	Manifest   string      `json:"manifest,omitempty"`
}

// CharacterMeta identifies a character (actor) of a playbook.
type CharacterMeta struct {
	Name        string `json:"name"`
	Version     string `json:"version,omitempty"`
	Description string `json:"description,omitempty"`
}

// Character is the runtime unit associated with a playbook.
type Character struct {
	Meta CharacterMeta `json:"meta"`
}

// PlaybookSpec is a playbook as tracked by the orchestration server.
type PlaybookSpec struct {
	ID          string      `json:"id"`
	Title       string      `json:"title"`
	Description string      `json:"description,omitempty"`
	Preface     Preface     `json:"preface"`
	Characters  []Character `json:"characters,omitempty"`
}

// PrimaryActor returns the name of the first character of the playbook.
func (p *PlaybookSpec) PrimaryActor() (string, bool) {
	if len(p.Characters) == 0 || p.Characters[0].Meta.Name == "" {
		return "", false
	}
	return p.Characters[0].Meta.Name, true
}

// CreatePlaybookRequest is the body of POST /v1/playbooks.
type CreatePlaybookRequest struct {
	Repository
	// Optional title; defaults to the repository name.
	Title string `json:"title,omitempty"`
	// Optional description; defaults to the repository description.
	Description string `json:"description,omitempty"`
}

// PlaybookPayload is the creation payload sent to the orchestration server.
type PlaybookPayload struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Preface     Preface `json:"preface"`
}

// PlaybookDetail is a playbook together with a snapshot of its repository
// at a reference: a file content when a path names a file, the tree otherwise.
type PlaybookDetail struct {
	Playbook  *PlaybookSpec `json:"playbook"`
	Reference string        `json:"reference"`
	Content   *Content      `json:"content,omitempty"`
	Tree      *Tree         `json:"tree,omitempty"`
}
