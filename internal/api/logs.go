package api

// LogEvent is a single line of an actor's live log feed.
type LogEvent struct {
	Message string `json:"message"`
}
