// Package predictctl implements the predictctl command line client: one-shot
// queries against a running predictd server and an interactive terminal view
// of the live session.
package predictctl

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"predictd/pkg/types"
)

// Client is the HTTP client for the predictd /v1 API.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewClient creates a new client.
func NewClient(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Client{
		BaseURL:    strings.TrimRight(baseURL, "/"),
		HTTPClient: httpClient,
	}
}

// do sends a request with an optional JSON body and decodes the JSON
// response into out when out is non-nil.
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal request: %w", err)
		}
		rd = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rd)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var apiErr types.ErrorResponse
		if json.Unmarshal(respBody, &apiErr) == nil && apiErr.Error != "" {
			if apiErr.Code != "" {
				return fmt.Errorf("server returned %d (%s): %s", resp.StatusCode, apiErr.Code, apiErr.Error)
			}
			return fmt.Errorf("server returned %d: %s", resp.StatusCode, apiErr.Error)
		}
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return fmt.Errorf("unmarshal response: %w", err)
	}
	return nil
}

// Predict runs a one-shot prediction outside the live session.
func (c *Client) Predict(ctx context.Context, req types.PredictRequest) (*types.PredictionResult, error) {
	var res types.PredictionResult
	if err := c.do(ctx, http.MethodPost, "/v1/predict", req, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

// SetInput replaces the session's input text.
func (c *Client) SetInput(ctx context.Context, text string) (types.Snapshot, error) {
	var snap types.Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/input", types.InputRequest{Text: text}, &snap)
	return snap, err
}

// Refresh requests a prediction for the current text regardless of
// whether it changed.
func (c *Client) Refresh(ctx context.Context) (types.Snapshot, error) {
	var snap types.Snapshot
	err := c.do(ctx, http.MethodPost, "/v1/refresh", struct{}{}, &snap)
	return snap, err
}

// State fetches the current session snapshot.
func (c *Client) State(ctx context.Context) (types.Snapshot, error) {
	var snap types.Snapshot
	err := c.do(ctx, http.MethodGet, "/v1/state", nil, &snap)
	return snap, err
}

// History fetches the retained predictions, oldest first.
func (c *Client) History(ctx context.Context) ([]types.HistoryEntry, error) {
	var res types.HistoryResponse
	if err := c.do(ctx, http.MethodGet, "/v1/history", nil, &res); err != nil {
		return nil, err
	}
	return res.Entries, nil
}

// Models lists the configured model profiles.
func (c *Client) Models(ctx context.Context) ([]types.Profile, error) {
	var res types.ModelsResponse
	if err := c.do(ctx, http.MethodGet, "/v1/models", nil, &res); err != nil {
		return nil, err
	}
	return res.Models, nil
}

// Status fetches server health and host usage.
func (c *Client) Status(ctx context.Context) (types.StatusResponse, error) {
	var st types.StatusResponse
	err := c.do(ctx, http.MethodGet, "/v1/status", nil, &st)
	return st, err
}

// Settings fetches the current session settings.
func (c *Client) Settings(ctx context.Context) (types.Settings, error) {
	var s types.Settings
	err := c.do(ctx, http.MethodGet, "/v1/settings", nil, &s)
	return s, err
}

// UpdateSettings replaces the session settings and returns the resulting
// snapshot with any clamping applied.
func (c *Client) UpdateSettings(ctx context.Context, s types.Settings) (types.Snapshot, error) {
	var snap types.Snapshot
	err := c.do(ctx, http.MethodPut, "/v1/settings", s, &snap)
	return snap, err
}

// Credential reports whether the server can resolve an API key.
func (c *Client) Credential(ctx context.Context) (types.CredentialStatus, error) {
	var st types.CredentialStatus
	err := c.do(ctx, http.MethodGet, "/v1/credential", nil, &st)
	return st, err
}

// SetCredential stores (or, with an empty key, clears) the runtime API key.
func (c *Client) SetCredential(ctx context.Context, key string) (types.CredentialStatus, error) {
	var st types.CredentialStatus
	err := c.do(ctx, http.MethodPut, "/v1/credential", types.CredentialRequest{APIKey: key}, &st)
	return st, err
}

// EventCallback is called for each event on the session stream.
type EventCallback func(name string, snap types.Snapshot)

// Watch subscribes to the server's event stream and calls cb for each
// event until ctx is done or the stream closes.
func (c *Client) Watch(ctx context.Context, cb EventCallback) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/v1/events", nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(respBody))
	}

	scanner := bufio.NewScanner(resp.Body)
	// Increase buffer for large snapshots
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	var event string
	for scanner.Scan() {
		line := scanner.Text()
		switch {
		case strings.HasPrefix(line, "event: "):
			event = strings.TrimPrefix(line, "event: ")
		case strings.HasPrefix(line, "data: "):
			data := strings.TrimPrefix(line, "data: ")
			var snap types.Snapshot
			if err := json.Unmarshal([]byte(data), &snap); err != nil {
				continue
			}
			if cb != nil && event != "" {
				cb(event, snap)
			}
			event = ""
		}
	}
	if err := scanner.Err(); err != nil && ctx.Err() == nil {
		return fmt.Errorf("read stream: %w", err)
	}
	return ctx.Err()
}
