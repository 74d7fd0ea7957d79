package types

// Candidate is one alternative next token returned by the provider,
// with its log-probability and the derived probability.
type Candidate struct {
	// Token text exactly as returned by the provider (often begins with a space).
	// example:  sunny
	Token string `json:"token" example:" sunny"`
	// Natural-log likelihood of the token at this position; always <= 0.
	// example: -1.04
	LogProb float64 `json:"logprob" example:"-1.04"`
	// Probability derived as exp(logprob), in (0,1].
	// example: 0.3535
	Probability float64 `json:"probability" example:"0.3535"`
}

// PredictionResult is the ordered next-token distribution for one request.
type PredictionResult struct {
	// Server-assigned prediction identifier.
	// example: pred-1a2b3c4d
	ID string `json:"id" example:"pred-1a2b3c4d"`
	// Model profile that served the prediction.
	// example: gpt-4o
	Model string `json:"model" example:"gpt-4o"`
	// Creation time in unix seconds.
	// example: 1700000000
	Created int64 `json:"created_unix" example:"1700000000"`
	// Candidates ordered by non-increasing probability; length <= requested top_n.
	Candidates []Candidate `json:"candidates"`
	// Token the model actually emitted for the single-token completion.
	// example:  sunny
	Generated string `json:"generated,omitempty" example:" sunny"`
	// Input text followed by the top candidate's token.
	// example: The weather today is sunny
	Preview string `json:"preview,omitempty" example:"The weather today is sunny"`
}

// HistoryEntry is one retained past prediction.
type HistoryEntry struct {
	// Snapshot of the input text, truncated to its trailing 50 runes.
	// example: The weather today is
	Text string `json:"text" example:"The weather today is"`
	// Top candidates at the time of the prediction (at most 3).
	Candidates []Candidate `json:"candidates"`
	// Time the prediction completed, unix seconds.
	// example: 1700000000
	At int64 `json:"at_unix" example:"1700000000"`
}

// Settings are the user-tunable session controls.
type Settings struct {
	// Re-predict automatically whenever the input text changes.
	// example: true
	AutoUpdate bool `json:"auto_update" example:"true"`
	// Number of candidates to request and show, clamped to [1,10].
	// example: 5
	TopN int `json:"top_n" example:"5"`
	// Sampling temperature for the upstream request.
	// example: 0.3
	Temperature float64 `json:"temperature" example:"0.3"`
	// Model profile id; empty selects the server default.
	// example: gpt-4o
	Model string `json:"model,omitempty" example:"gpt-4o"`
}

// Profile is a named upstream model configuration. Profiles are loaded
// from YAML/JSON/TOML files, so fields carry tags for all three.
type Profile struct {
	// Stable identifier for the profile.
	// example: gpt-4o
	ID string `json:"id" yaml:"id" toml:"id" example:"gpt-4o"`
	// Upstream OpenAI-compatible base URL.
	// example: https://api.openai.com
	BaseURL string `json:"base_url" yaml:"base_url" toml:"base_url" example:"https://api.openai.com"`
	// Default sampling temperature for this profile.
	// example: 0.3
	Temperature float64 `json:"temperature,omitempty" yaml:"temperature" toml:"temperature" example:"0.3"`
	// Free-form operator notes.
	// example: primary provider
	Notes string `json:"notes,omitempty" yaml:"notes" toml:"notes" example:"primary provider"`
}
