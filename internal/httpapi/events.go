package httpapi

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"predictd/internal/predictor"
	"predictd/internal/session"
)

// heartbeatInterval keeps idle event streams alive through proxies.
const heartbeatInterval = 15 * time.Second

// handleEvents streams session events as server-sent events. The first
// frame is always a full snapshot so clients can render immediately;
// subsequent frames follow the session's transitions.
//
//	GET /v1/events
func handleEvents(svc Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		fl, ok := w.(http.Flusher)
		if !ok {
			writeError(w, http.StatusInternalServerError, predictor.CodeInternal, "streaming unsupported")
			return
		}
		if !acquireEventStream() {
			IncrementBackpressure("event_streams")
			writeError(w, http.StatusTooManyRequests, predictor.CodeInvalidRequest, "too many event streams")
			return
		}
		defer releaseEventStream()

		id, ch := svc.Subscribe()
		defer svc.Unsubscribe(id)

		w.Header().Set("Content-Type", "text/event-stream")
		w.Header().Set("Cache-Control", "no-cache")
		w.Header().Set("Connection", "keep-alive")

		out := io.Writer(w)
		if requestLogLevel(r) >= LevelDebug {
			out = io.MultiWriter(w, &loggingLineWriter{})
		}

		if err := writeEvent(out, session.Event{Name: session.EventSnapshot, Snapshot: svc.Snapshot()}); err != nil {
			return
		}
		fl.Flush()

		// Stop on client disconnect or server shutdown, whichever first.
		ctx, cancel := joinContexts(serverBaseCtx, r.Context())
		defer cancel()
		heartbeat := time.NewTicker(heartbeatInterval)
		defer heartbeat.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case e, open := <-ch:
				if !open {
					return
				}
				if err := writeEvent(out, e); err != nil {
					return
				}
				fl.Flush()
			case <-heartbeat.C:
				if _, err := io.WriteString(w, ": keepalive\n\n"); err != nil {
					return
				}
				fl.Flush()
			}
		}
	}
}

// writeEvent encodes one SSE frame: an event name line, a data line, and
// a blank separator.
func writeEvent(w io.Writer, e session.Event) error {
	data, err := json.Marshal(e.Snapshot)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "event: %s\ndata: %s\n\n", e.Name, data)
	return err
}
