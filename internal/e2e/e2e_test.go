package e2e

import (
	"bufio"
	"context"
	"encoding/json"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"predictd/pkg/types"
)

// pollState polls GET /v1/state until the session reaches want, failing
// the test after two seconds.
func pollState(t *testing.T, base, want string) types.Snapshot {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	var snap types.Snapshot
	for {
		_, body := httpGet(t, base+"/v1/state")
		if err := json.Unmarshal(body, &snap); err != nil {
			t.Fatalf("/v1/state json: %v body=%s", err, string(body))
		}
		if snap.State == want {
			return snap
		}
		if time.Now().After(deadline) {
			t.Fatalf("state did not reach %q in time; last=%q", want, snap.State)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestE2E_TypingTriggersPrediction(t *testing.T) {
	provider := newFakeProvider(t, "sk-test")
	srv, _ := newServer(t, provider, "sk-test")

	// Typing new text triggers a request; the response snapshot is already
	// in the requesting state.
	resp, body := httpPostJSON(t, srv.URL+"/v1/input", []byte(`{"text":"The weather today is"}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/v1/input status=%d body=%s", resp.StatusCode, string(body))
	}

	snap := pollState(t, srv.URL, "displaying")
	res := snap.Result
	if res == nil || len(res.Candidates) != 5 {
		t.Fatalf("expected 5 candidates, got %+v", res)
	}
	for i, c := range res.Candidates {
		if math.Abs(c.Probability-math.Exp(c.LogProb)) > 1e-9 {
			t.Fatalf("candidate %d probability mismatch: %v vs exp(%v)", i, c.Probability, c.LogProb)
		}
		if i > 0 && c.Probability > res.Candidates[i-1].Probability {
			t.Fatalf("candidates not ordered at %d", i)
		}
	}
	if res.Preview != "The weather today is sunny" {
		t.Fatalf("preview = %q", res.Preview)
	}

	// History retains the prediction with at most three candidates.
	_, body = httpGet(t, srv.URL+"/v1/history")
	var hist types.HistoryResponse
	if err := json.Unmarshal(body, &hist); err != nil {
		t.Fatalf("/v1/history json: %v", err)
	}
	if len(hist.Entries) != 1 || len(hist.Entries[0].Candidates) != 3 {
		t.Fatalf("history = %+v", hist.Entries)
	}

	// Re-sending identical text must not hit the provider again.
	before := provider.hits.Load()
	httpPostJSON(t, srv.URL+"/v1/input", []byte(`{"text":"The weather today is"}`))
	time.Sleep(50 * time.Millisecond)
	if got := provider.hits.Load(); got != before {
		t.Fatalf("identical text retriggered: hits %d -> %d", before, got)
	}
}

func TestE2E_RefreshRepredictsUnchangedText(t *testing.T) {
	provider := newFakeProvider(t, "sk-test")
	srv, _ := newServer(t, provider, "sk-test")

	httpPostJSON(t, srv.URL+"/v1/input", []byte(`{"text":"hello"}`))
	pollState(t, srv.URL, "displaying")
	before := provider.hits.Load()

	resp, body := httpPostJSON(t, srv.URL+"/v1/refresh", []byte(`{}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/v1/refresh status=%d body=%s", resp.StatusCode, string(body))
	}
	pollState(t, srv.URL, "displaying")

	deadline := time.Now().Add(2 * time.Second)
	for provider.hits.Load() == before {
		if time.Now().After(deadline) {
			t.Fatalf("refresh never reached the provider")
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestE2E_MissingCredentialNeverCallsProvider(t *testing.T) {
	provider := newFakeProvider(t, "sk-test")
	srv, _ := newServer(t, provider, "")

	// Readiness reflects the missing key.
	resp, _ := httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Fatalf("/readyz expected 503, got %d", resp.StatusCode)
	}

	httpPostJSON(t, srv.URL+"/v1/input", []byte(`{"text":"hello"}`))
	snap := pollState(t, srv.URL, "failed")
	if snap.Error == nil || snap.Error.Code != "missing_credential" {
		t.Fatalf("error = %+v", snap.Error)
	}
	if provider.hits.Load() != 0 {
		t.Fatalf("provider was called %d times without a key", provider.hits.Load())
	}

	// The stateless endpoint maps the same failure to 401.
	resp, body := httpPostJSON(t, srv.URL+"/v1/predict", []byte(`{"text":"hello"}`))
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("/v1/predict status=%d body=%s", resp.StatusCode, string(body))
	}
	var apiErr types.ErrorResponse
	if err := json.Unmarshal(body, &apiErr); err != nil || apiErr.Code != "missing_credential" {
		t.Fatalf("error payload = %s", string(body))
	}
}

func TestE2E_ProviderFailureRetainsPreviousResult(t *testing.T) {
	provider := newFakeProvider(t, "sk-test")
	srv, _ := newServer(t, provider, "sk-test")

	httpPostJSON(t, srv.URL+"/v1/input", []byte(`{"text":"first"}`))
	pollState(t, srv.URL, "displaying")

	provider.failWith.Store(http.StatusBadGateway)
	httpPostJSON(t, srv.URL+"/v1/input", []byte(`{"text":"second"}`))
	snap := pollState(t, srv.URL, "failed")

	if snap.Error == nil || snap.Error.Code != "rejected_by_provider" {
		t.Fatalf("error = %+v", snap.Error)
	}
	if snap.Result == nil || !strings.HasPrefix(snap.Result.Preview, "first") {
		t.Fatalf("previous result not retained: %+v", snap.Result)
	}

	// No automatic retry: the failure is terminal until new input arrives.
	before := provider.hits.Load()
	time.Sleep(50 * time.Millisecond)
	if provider.hits.Load() != before {
		t.Fatalf("failed prediction was retried")
	}
}

func TestE2E_PredictClampsTopN(t *testing.T) {
	provider := newFakeProvider(t, "sk-test")
	srv, _ := newServer(t, provider, "sk-test")

	resp, body := httpPostJSON(t, srv.URL+"/v1/predict", []byte(`{"text":"hi","top_n":99}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/v1/predict status=%d body=%s", resp.StatusCode, string(body))
	}
	var res types.PredictionResult
	if err := json.Unmarshal(body, &res); err != nil {
		t.Fatalf("json: %v", err)
	}
	if len(res.Candidates) != 10 {
		t.Fatalf("expected clamp to 10 candidates, got %d", len(res.Candidates))
	}
}

func TestE2E_SettingsClampAndRuntimeCredential(t *testing.T) {
	provider := newFakeProvider(t, "sk-live-0123456789")
	srv, _ := newServer(t, provider, "")

	resp, body := httpPutJSON(t, srv.URL+"/v1/settings", []byte(`{"auto_update":false,"top_n":99,"temperature":0.5}`))
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/v1/settings status=%d body=%s", resp.StatusCode, string(body))
	}
	var snap types.Snapshot
	if err := json.Unmarshal(body, &snap); err != nil {
		t.Fatalf("json: %v", err)
	}
	if snap.Settings.TopN != 10 || snap.Settings.AutoUpdate {
		t.Fatalf("settings not clamped: %+v", snap.Settings)
	}

	// Installing a key at runtime flips readiness.
	httpPutJSON(t, srv.URL+"/v1/credential", []byte(`{"api_key":"sk-live-0123456789"}`))
	resp, _ = httpGet(t, srv.URL+"/readyz")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("/readyz expected 200 after credential, got %d", resp.StatusCode)
	}

	var status types.CredentialStatus
	_, body = httpGet(t, srv.URL+"/v1/credential")
	if err := json.Unmarshal(body, &status); err != nil || !status.Present || status.Source != "runtime" {
		t.Fatalf("credential status = %s", string(body))
	}
	if strings.Contains(status.Masked, "0123456789") {
		t.Fatalf("masked key leaks: %q", status.Masked)
	}
}

func TestE2E_EventStreamAnnouncesLifecycle(t *testing.T) {
	provider := newFakeProvider(t, "sk-test")
	srv, _ := newServer(t, provider, "sk-test")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/v1/events", nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("open stream: %v", err)
	}
	defer resp.Body.Close()

	names := make(chan string, 16)
	go func() {
		sc := bufio.NewScanner(resp.Body)
		for sc.Scan() {
			line := sc.Text()
			if strings.HasPrefix(line, "event: ") {
				names <- strings.TrimPrefix(line, "event: ")
			}
		}
		close(names)
	}()

	next := func() string {
		select {
		case n, ok := <-names:
			if !ok {
				t.Fatal("stream closed early")
			}
			return n
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for event")
			return ""
		}
	}

	if got := next(); got != "snapshot" {
		t.Fatalf("first frame = %q, want snapshot", got)
	}

	httpPostJSON(t, srv.URL+"/v1/input", []byte(`{"text":"The weather today is"}`))
	if got := next(); got != "request_started" {
		t.Fatalf("second frame = %q, want request_started", got)
	}
	if got := next(); got != "prediction_succeeded" {
		t.Fatalf("third frame = %q, want prediction_succeeded", got)
	}
}
