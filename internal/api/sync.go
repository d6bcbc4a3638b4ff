package api

// EventKind is the kind of a synchronization event.
type EventKind string

// Synchronization event kinds understood by the orchestration server.
const (
	EventCreate   EventKind = "create"
	EventModify   EventKind = "modify"
	EventRename   EventKind = "rename"
	EventRemove   EventKind = "remove"
	EventOverride EventKind = "override"
)

// PathKind tells whether a synchronized path is a file or a directory.
type PathKind string

// Path kinds.
const (
	PathFile      PathKind = "file"
	PathDirectory PathKind = "directory"
)

// SyncPath is one path touched by a synchronization event.
type SyncPath struct {
	Kind PathKind `json:"kind" validate:"required,oneof=file directory"`
	Path string   `json:"path" validate:"required"`
}

// FilePath builds a SyncPath naming a file.
func FilePath(path string) SyncPath {
	return SyncPath{Kind: PathFile, Path: path}
}

// Synchronization is an update forwarded to the playbook's primary actor.
// The gateway routes it without interpreting its contents.
type Synchronization struct {
	Kind       EventKind         `json:"kind" validate:"required,oneof=create modify rename remove override"`
	Paths      []SyncPath        `json:"paths" validate:"dive"`
	Attributes map[string]string `json:"attributes,omitempty"`
	// Payload bytes, base64 encoded in JSON.
	Payload []byte `json:"payload,omitempty"`
}

// FileRequest is the body of file create/update requests.
type FileRequest struct {
	Content string `json:"content"`
}

// DestinationRequest is the body of copy/move requests.
type DestinationRequest struct {
	Destination string `json:"destination" validate:"required"`
}
