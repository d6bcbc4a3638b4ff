package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"

	"github.com/amphitheatre-app/playbooks/internal/api"
	"github.com/amphitheatre-app/playbooks/internal/constants"
	apperrors "github.com/amphitheatre-app/playbooks/internal/errors"
	"github.com/amphitheatre-app/playbooks/internal/orchestrator"
)

// writeWait bounds each WebSocket write.
const writeWait = 10 * time.Second

// handleLogs handles GET /v1/playbooks/{id}/logs. The primary actor's log
// feed is relayed as server-sent events, or as WebSocket text frames when
// the request asks for an upgrade. The upstream stream is closed as soon as
// the client goes away.
func (r *Router) handleLogs(w http.ResponseWriter, req *http.Request) {
	id, err := playbookID(req)
	if err != nil {
		r.handleAndLogError(w, req, err, "stream logs")
		return
	}

	ctx, cancel := context.WithCancel(req.Context())
	defer cancel()

	stream, err := r.svc.Logs.Logs(ctx, id)
	if err != nil {
		r.handleAndLogError(w, req, err, "stream logs")
		return
	}
	defer func() { _ = stream.Close() }()

	if websocket.IsWebSocketUpgrade(req) {
		r.streamWebSocket(ctx, cancel, w, req, stream)
		return
	}
	r.streamSSE(ctx, w, req, stream)
}

func (r *Router) streamSSE(ctx context.Context, w http.ResponseWriter, req *http.Request, stream orchestrator.LogStream) {
	logger := r.GetLoggerFromContext(req.Context())

	flusher, ok := w.(http.Flusher)
	if !ok {
		r.handleAndLogError(w, req, apperrors.ErrInternalServerError(errors.New("streaming unsupported")), "stream logs")
		return
	}

	h := w.Header()
	h.Set(constants.ContentTypeHeader, constants.ContentTypeEventStream)
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events, errc := pump(ctx, stream)
	keepAlive, stop := r.keepAlive()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("log stream client disconnected")
			return
		case <-keepAlive:
			if _, err := io.WriteString(w, ": keep-alive\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case ev, ok := <-events:
			if !ok {
				r.logStreamEnd(req, <-errc)
				return
			}
			if err := writeEvent(w, ev); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// writeEvent writes ev as one server-sent event. Multi-line messages use one
// data field per line.
func writeEvent(w io.Writer, ev api.LogEvent) error {
	var b strings.Builder
	for _, line := range strings.Split(ev.Message, "\n") {
		b.WriteString("data: ")
		b.WriteString(line)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	_, err := io.WriteString(w, b.String())
	return err
}

func (r *Router) streamWebSocket(
	ctx context.Context, cancel context.CancelFunc, w http.ResponseWriter, req *http.Request, stream orchestrator.LogStream,
) {
	logger := r.GetLoggerFromContext(req.Context())

	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// Upgrade has already replied to the client.
		logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer func() { _ = conn.Close() }()

	// The connection is hijacked, so a failed read is the only sign the
	// client went away.
	go func() {
		defer cancel()
		for {
			if _, _, err := conn.NextReader(); err != nil {
				return
			}
		}
	}()

	events, errc := pump(ctx, stream)
	keepAlive, stop := r.keepAlive()
	defer stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("log stream client disconnected")
			return
		case <-keepAlive:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		case ev, ok := <-events:
			if !ok {
				r.logStreamEnd(req, <-errc)
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
				_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(writeWait))
				return
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, []byte(ev.Message)); err != nil {
				return
			}
		}
	}
}

// pump reads stream until it fails and relays the events. The terminal
// error is delivered on the second channel before the first one closes.
func pump(ctx context.Context, stream orchestrator.LogStream) (<-chan api.LogEvent, <-chan error) {
	events := make(chan api.LogEvent)
	errc := make(chan error, 1)

	go func() {
		defer close(events)
		for {
			ev, err := stream.Next()
			if err != nil {
				errc <- err
				return
			}
			select {
			case events <- ev:
			case <-ctx.Done():
				errc <- ctx.Err()
				return
			}
		}
	}()

	return events, errc
}

// keepAlive returns the keep-alive ticks, nil when disabled.
func (r *Router) keepAlive() (<-chan time.Time, func()) {
	if r.opts.KeepAlive <= 0 {
		return nil, func() {}
	}
	t := time.NewTicker(r.opts.KeepAlive)
	return t.C, t.Stop
}

func (r *Router) logStreamEnd(req *http.Request, err error) {
	logger := r.GetLoggerFromContext(req.Context())
	if err == nil || errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
		logger.Debug("log stream ended")
		return
	}
	logger.Warn("log stream failed", "error", err)
}
