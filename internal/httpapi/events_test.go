package httpapi

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"predictd/internal/session"
	"predictd/pkg/types"
)

// openStream connects to /v1/events and returns a line scanner plus a
// cancel that drops the connection.
func openStream(t *testing.T, url string) (*bufio.Scanner, context.CancelFunc) {
	t.Helper()
	// Bounded so a wedged stream fails the test instead of hanging it.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url+"/v1/events", nil)
	if err != nil {
		t.Fatalf("request: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		cancel()
		t.Fatalf("connect: %v", err)
	}
	t.Cleanup(func() {
		cancel()
		resp.Body.Close()
	})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status=%d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/event-stream") {
		t.Fatalf("content-type=%s", ct)
	}
	return bufio.NewScanner(resp.Body), cancel
}

// nextFrame reads one SSE frame (event + data line).
func nextFrame(t *testing.T, sc *bufio.Scanner) (name, data string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for sc.Scan() {
		line := sc.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			name = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data = strings.TrimPrefix(line, "data: ")
		case line == "" && name != "":
			return name, data
		}
		if time.Now().After(deadline) {
			break
		}
	}
	t.Fatalf("stream ended before a full frame (last name=%q)", name)
	return "", ""
}

func TestEventsStreamSnapshotThenTransitions(t *testing.T) {
	svc := newMockService()
	svc.snap.State = "awaiting_input"
	h, _, _ := newTestMux(svc)
	srv := httptest.NewServer(h)
	defer srv.Close()

	sc, _ := openStream(t, srv.URL)

	name, data := nextFrame(t, sc)
	if name != session.EventSnapshot {
		t.Fatalf("expected snapshot first, got %q", name)
	}
	if !strings.Contains(data, `"awaiting_input"`) {
		t.Fatalf("snapshot payload missing state: %s", data)
	}

	svc.emit(session.Event{
		Name:     session.EventPredictionSucceeded,
		Snapshot: types.Snapshot{State: "displaying"},
	})
	name, data = nextFrame(t, sc)
	if name != session.EventPredictionSucceeded {
		t.Fatalf("expected prediction event, got %q", name)
	}
	if !strings.Contains(data, `"displaying"`) {
		t.Fatalf("event payload missing state: %s", data)
	}
}

func TestEventsStreamClosesWithClient(t *testing.T) {
	svc := newMockService()
	h, _, _ := newTestMux(svc)
	srv := httptest.NewServer(h)
	defer srv.Close()

	sc, cancel := openStream(t, srv.URL)
	nextFrame(t, sc) // snapshot

	cancel()
	// The subscriber should be detached shortly after the disconnect.
	deadline := time.Now().Add(2 * time.Second)
	for {
		svc.mu.Lock()
		n := len(svc.subs)
		svc.mu.Unlock()
		if n == 0 {
			return
		}
		if time.Now().After(deadline) {
			t.Fatalf("subscriber still attached after disconnect")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestEventsStreamBackpressure(t *testing.T) {
	SetMaxEventStreams(1)
	defer SetMaxEventStreams(0)

	svc := newMockService()
	h, _, _ := newTestMux(svc)
	srv := httptest.NewServer(h)
	defer srv.Close()

	sc, _ := openStream(t, srv.URL)
	nextFrame(t, sc) // hold the first stream open

	resp, err := http.Get(srv.URL + "/v1/events")
	if err != nil {
		t.Fatalf("second connect: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusTooManyRequests {
		t.Fatalf("expected 429 for second stream, got %d", resp.StatusCode)
	}
}
