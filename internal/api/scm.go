package api

// Content is a snapshot of a single file read from the SCM.
type Content struct {
	Path string `json:"path"`
	// Raw file bytes, base64 encoded in JSON.
	Data   []byte `json:"data"`
	Sha    string `json:"sha"`
	BlobID string `json:"blob_id"`
}

// TreeEntry is one path of a directory listing.
type TreeEntry struct {
	Path string `json:"path"`
	Mode string `json:"mode"`
	Type string `json:"type"`
	Sha  string `json:"sha"`
	Size int64  `json:"size,omitempty"`
}

// Tree is a directory listing, possibly recursive, under a reference.
type Tree struct {
	Sha       string      `json:"sha"`
	Tree      []TreeEntry `json:"tree"`
	Truncated bool        `json:"truncated"`
}

// SCMRepository is repository metadata returned by the SCM.
type SCMRepository struct {
	Name          string `json:"name"`
	FullName      string `json:"full_name"`
	Description   string `json:"description"`
	DefaultBranch string `json:"default_branch"`
	CloneURL      string `json:"clone_url"`
}
