// Package predictor issues next-token prediction requests against an
// OpenAI-compatible chat-completions API and converts the returned
// log-probabilities into an ordered candidate distribution.
package predictor

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"predictd/pkg/types"
)

const (
	// DefaultTemperature is applied when a request omits its temperature.
	DefaultTemperature = 0.3
	// DefaultTopN is applied when a request omits its candidate count.
	DefaultTopN = 5
	// MinTopN and MaxTopN bound the candidate count.
	MinTopN = 1
	MaxTopN = 10

	defaultTimeout = 30 * time.Second

	// systemPrompt steers the model to emit exactly the next token.
	systemPrompt = "Complete the text with just the next most likely word or token. " +
		"Do not rewrite or correct the input text - just add what naturally comes next."

	maxProviderMessage = 256
)

// CredentialFunc resolves the upstream API key at call time; ok is false
// when no configured source yields a key.
type CredentialFunc func() (key string, ok bool)

// Config assembles a Client.
type Config struct {
	// Profiles lists the selectable upstream models. At least one is required.
	Profiles []types.Profile
	// DefaultModel is the profile used when a request names none. Empty
	// selects the first profile.
	DefaultModel string
	// Credential resolves the API key per request.
	Credential CredentialFunc
	// Timeout bounds each outbound call. Zero means 30s.
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client performs single next-token predictions. Safe for concurrent use.
type Client struct {
	profiles  map[string]types.Profile
	defaultID string
	cred      CredentialFunc
	hc        *http.Client
	log       zerolog.Logger
}

// New builds a Client from cfg.
func New(cfg Config) *Client {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	profiles := make(map[string]types.Profile, len(cfg.Profiles))
	defaultID := cfg.DefaultModel
	for _, p := range cfg.Profiles {
		profiles[p.ID] = p
		if defaultID == "" {
			defaultID = p.ID
		}
	}
	cred := cfg.Credential
	if cred == nil {
		cred = func() (string, bool) { return "", false }
	}
	return &Client{
		profiles:  profiles,
		defaultID: defaultID,
		cred:      cred,
		hc:        &http.Client{Timeout: timeout},
		log:       cfg.Logger,
	}
}

// DefaultModel returns the profile id used when requests name none.
func (c *Client) DefaultModel() string { return c.defaultID }

// resolve validates req, applies defaults and clamps, and picks the profile.
func (c *Client) resolve(req types.PredictRequest) (types.PredictRequest, types.Profile, error) {
	if strings.TrimSpace(req.Text) == "" {
		return req, types.Profile{}, ErrInvalidRequest("text must be non-empty")
	}
	if req.Temperature < 0 {
		return req, types.Profile{}, ErrInvalidRequest("temperature must not be negative")
	}
	if req.Model == "" {
		req.Model = c.defaultID
	}
	prof, ok := c.profiles[req.Model]
	if !ok {
		return req, types.Profile{}, ErrUnknownModel(req.Model)
	}
	if req.Temperature == 0 {
		req.Temperature = prof.Temperature
	}
	if req.Temperature == 0 {
		req.Temperature = DefaultTemperature
	}
	if req.TopN == 0 {
		req.TopN = DefaultTopN
	}
	if req.TopN < MinTopN {
		req.TopN = MinTopN
	}
	if req.TopN > MaxTopN {
		req.TopN = MaxTopN
	}
	return req, prof, nil
}

// Predict issues one chat-completions request with log-probabilities enabled
// and returns the ordered candidate distribution for the next token.
// Failures are typed per the taxonomy in errors.go and never retried.
func (c *Client) Predict(ctx context.Context, req types.PredictRequest) (*types.PredictionResult, error) {
	req, prof, err := c.resolve(req)
	if err != nil {
		return nil, err
	}
	key, ok := c.cred()
	if !ok || key == "" {
		return nil, ErrMissingCredential()
	}

	body, err := json.Marshal(chatCompletionsRequest{
		Model: prof.ID,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: req.Text},
		},
		MaxTokens:   1,
		Temperature: req.Temperature,
		Logprobs:    true,
		TopLogprobs: req.TopN,
	})
	if err != nil {
		return nil, err
	}

	url := strings.TrimRight(prof.BaseURL, "/") + "/v1/chat/completions"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, ErrTransportFailure(err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+key)

	c.log.Debug().Str("model", prof.ID).Int("top_n", req.TopN).
		Float64("temperature", req.Temperature).Msg("prediction request")

	resp, err := c.hc.Do(httpReq)
	if err != nil {
		return nil, ErrTransportFailure(err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, ErrTransportFailure(err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, ErrRejectedByProvider(resp.StatusCode, providerMessage(raw))
	}

	var cr chatCompletionsResponse
	if err := json.Unmarshal(raw, &cr); err != nil {
		return nil, ErrEmptyResponse("unparseable provider response: " + err.Error())
	}
	if cr.Error != nil {
		return nil, ErrRejectedByProvider(resp.StatusCode, cr.Error.Message)
	}

	candidates := extractCandidates(cr, req.TopN)
	if len(candidates) == 0 {
		return nil, ErrEmptyResponse("no logprobs returned")
	}

	return &types.PredictionResult{
		ID:         "pred-" + uuid.NewString()[:8],
		Model:      prof.ID,
		Created:    time.Now().Unix(),
		Candidates: candidates,
		Generated:  generatedToken(cr),
		Preview:    req.Text + candidates[0].Token,
	}, nil
}

// extractCandidates pulls the alternatives for the first completion position
// and converts them to probabilities, sorted non-increasing, capped at topN.
func extractCandidates(cr chatCompletionsResponse, topN int) []types.Candidate {
	if len(cr.Choices) == 0 {
		return nil
	}
	lp := cr.Choices[0].Logprobs
	if lp == nil || len(lp.Content) == 0 {
		return nil
	}
	tops := lp.Content[0].TopLogprobs
	out := make([]types.Candidate, 0, len(tops))
	for _, t := range tops {
		v := t.Logprob
		if v > 0 {
			// Some providers round marginally above zero; keep logprob <= 0
			// so probability stays within (0,1].
			v = 0
		}
		out = append(out, types.Candidate{
			Token:       t.Token,
			LogProb:     v,
			Probability: math.Exp(v),
		})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Probability > out[j].Probability })
	if len(out) > topN {
		out = out[:topN]
	}
	return out
}

func generatedToken(cr chatCompletionsResponse) string {
	if len(cr.Choices) == 0 {
		return ""
	}
	return cr.Choices[0].Message.Content
}

// providerMessage extracts the error message from a non-2xx body, falling
// back to the trimmed raw body.
func providerMessage(raw []byte) string {
	var env errorEnvelope
	if err := json.Unmarshal(raw, &env); err == nil && env.Error != nil && env.Error.Message != "" {
		return env.Error.Message
	}
	msg := strings.TrimSpace(string(raw))
	if len(msg) > maxProviderMessage {
		msg = msg[:maxProviderMessage] + "..."
	}
	return msg
}
