package orchestrator

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/constants"
	"github.com/amphitheatre-app/playbooks/internal/logger"
)

// ActorLogs opens the live log feed of an actor. The feed stays open until
// ctx is cancelled, the upstream ends it, or the returned stream is closed.
func (c *Client) ActorLogs(ctx context.Context, playbookID, name string) (LogStream, error) {
	httpReq, err := c.newRequest(ctx, Request{
		Method: http.MethodGet,
		Path:   actorPath(playbookID, name) + "/logs",
	})
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set(constants.AcceptHeader, constants.ContentTypeEventStream)

	log := logger.DeriveRequestLogger(ctx, c.logger)
	log.Debug("opening actor log stream",
		"operation", "Orchestrator.ActorLogs",
		"url", httpReq.URL.String())

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to open log stream: %w", err)
	}

	if resp.StatusCode >= constants.HTTPStatusBadRequest {
		defer func() {
			_ = resp.Body.Close()
		}()
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, newHTTPError(resp.StatusCode, body)
	}

	return newEventStream(resp.Body), nil
}

// eventStream decodes a text/event-stream body into log events.
type eventStream struct {
	body      io.ReadCloser
	reader    *bufio.Reader
	closeOnce sync.Once
}

func newEventStream(body io.ReadCloser) *eventStream {
	return &eventStream{body: body, reader: bufio.NewReader(body)}
}

// Next returns the next event. Comment lines (keep-alives) are skipped and
// multi-line data fields are joined with a newline.
func (s *eventStream) Next() (api.LogEvent, error) {
	var data []string
	hasData := false

	for {
		line, err := s.reader.ReadString('\n')
		if err != nil && line == "" {
			if hasData {
				return api.LogEvent{Message: strings.Join(data, "\n")}, nil
			}
			return api.LogEvent{}, err
		}
		line = strings.TrimRight(line, "\r\n")

		switch {
		case line == "":
			if hasData {
				return api.LogEvent{Message: strings.Join(data, "\n")}, nil
			}
		case strings.HasPrefix(line, ":"):
			// comment
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
			hasData = true
		}
		// event, id and retry fields carry nothing the gateway forwards.

		if err != nil {
			if hasData {
				return api.LogEvent{Message: strings.Join(data, "\n")}, nil
			}
			return api.LogEvent{}, err
		}
	}
}

// Close releases the upstream connection. It is safe to call more than once.
func (s *eventStream) Close() error {
	var err error
	s.closeOnce.Do(func() {
		err = s.body.Close()
	})
	return err
}
