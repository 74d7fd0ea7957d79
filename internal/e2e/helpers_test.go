package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"predictd/internal/config"
	"predictd/internal/httpapi"
	"predictd/internal/predictor"
	"predictd/internal/session"
	"predictd/pkg/types"
)

// candidateTokens is the distribution the fake provider hands out, most
// likely first.
var candidateTokens = []struct {
	token   string
	logprob float64
}{
	{" sunny", -1.04},
	{" cloudy", -1.67},
	{" rainy", -2.10},
	{" cold", -2.42},
	{" warm", -2.80},
	{" nice", -3.10},
	{" hot", -3.40},
	{" wet", -3.70},
	{" dry", -4.00},
	{" gray", -4.30},
}

// fakeProvider mimics the chat-completions endpoint closely enough for the
// predictor: it honors top_logprobs and echoes the configured key check.
type fakeProvider struct {
	srv  *httptest.Server
	hits atomic.Int64
	// wantKey, when set, returns 401 for any other bearer token.
	wantKey string
	// failWith, when non-zero, makes every call fail with that status.
	failWith atomic.Int32
}

func newFakeProvider(t *testing.T, wantKey string) *fakeProvider {
	t.Helper()
	p := &fakeProvider{wantKey: wantKey}
	p.srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		p.hits.Add(1)
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if code := p.failWith.Load(); code != 0 {
			w.WriteHeader(int(code))
			fmt.Fprintf(w, `{"error":{"message":"synthetic provider failure","type":"server_error"}}`)
			return
		}
		if p.wantKey != "" && r.Header.Get("Authorization") != "Bearer "+p.wantKey {
			w.WriteHeader(http.StatusUnauthorized)
			fmt.Fprintf(w, `{"error":{"message":"invalid api key","type":"auth_error"}}`)
			return
		}
		var req struct {
			TopLogprobs int `json:"top_logprobs"`
		}
		body, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(body, &req)
		n := req.TopLogprobs
		if n <= 0 || n > len(candidateTokens) {
			n = len(candidateTokens)
		}

		tops := make([]map[string]any, 0, n)
		for _, c := range candidateTokens[:n] {
			tops = append(tops, map[string]any{"token": c.token, "logprob": c.logprob})
		}
		resp := map[string]any{
			"id": "chatcmpl-test",
			"choices": []map[string]any{{
				"message": map[string]any{"role": "assistant", "content": candidateTokens[0].token},
				"logprobs": map[string]any{
					"content": []map[string]any{{
						"token":        candidateTokens[0].token,
						"logprob":      candidateTokens[0].logprob,
						"top_logprobs": tops,
					}},
				},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	t.Cleanup(p.srv.Close)
	return p
}

// newServer assembles the full service against a fake provider: credential
// store, predictor, session and HTTP mux, exactly as cmd/predictd wires them.
// Ambient key env vars are neutralized so only apiKey decides readiness.
func newServer(t *testing.T, provider *fakeProvider, apiKey string) (*httptest.Server, *session.Manager) {
	t.Helper()
	t.Setenv(config.EnvAPIKey, "")
	t.Setenv(config.EnvAPIKeyFallback, "")

	creds := config.NewCredentialStore(config.Config{APIKey: apiKey})
	profiles := []types.Profile{{ID: "gpt-4o", BaseURL: provider.srv.URL}}
	client := predictor.New(predictor.Config{
		Profiles:     profiles,
		DefaultModel: "gpt-4o",
		Credential:   creds.Key,
	})
	sess := session.New(session.Config{Requester: client})
	t.Cleanup(sess.Close)

	mux := httpapi.NewMux(httpapi.Deps{
		Session:     sess,
		Predictor:   client,
		Credentials: creds,
		Profiles:    profiles,
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv, sess
}

func httpGet(t *testing.T, url string) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), http.MethodGet, url, nil)
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpSendJSON(t *testing.T, method, url string, payload []byte) (*http.Response, []byte) {
	t.Helper()
	req, err := http.NewRequestWithContext(context.Background(), method, url, bytes.NewReader(payload))
	if err != nil {
		t.Fatalf("new req: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do req: %v", err)
	}
	body, _ := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	return resp, body
}

func httpPostJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	return httpSendJSON(t, http.MethodPost, url, payload)
}

func httpPutJSON(t *testing.T, url string, payload []byte) (*http.Response, []byte) {
	return httpSendJSON(t, http.MethodPut, url, payload)
}
