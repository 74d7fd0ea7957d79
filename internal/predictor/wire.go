package predictor

// Chat-completions wire format, reduced to the fields this service reads.

type chatCompletionsRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature,omitempty"`
	Logprobs    bool          `json:"logprobs,omitempty"`
	TopLogprobs int           `json:"top_logprobs,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatCompletionsResponse struct {
	ID      string       `json:"id"`
	Choices []chatChoice `json:"choices"`
	Error   *apiError    `json:"error,omitempty"`
}

type chatChoice struct {
	Message  chatMessage     `json:"message"`
	Logprobs *choiceLogprobs `json:"logprobs"`
}

type choiceLogprobs struct {
	Content []tokenLogprobs `json:"content"`
}

type tokenLogprobs struct {
	Token       string       `json:"token"`
	Logprob     float64      `json:"logprob"`
	TopLogprobs []topLogprob `json:"top_logprobs"`
}

type topLogprob struct {
	Token   string  `json:"token"`
	Logprob float64 `json:"logprob"`
}

type apiError struct {
	Message string `json:"message"`
	Type    string `json:"type"`
}

// errorEnvelope is the {"error": {...}} wrapper some providers use on
// non-2xx responses.
type errorEnvelope struct {
	Error *apiError `json:"error"`
}
