package llm

// CompletionOption is a functional option for configuring completion requests.
type CompletionOption func(*CompletionRequest)

// WithTemperature sets the temperature for the completion request.
func WithTemperature(temperature float64) CompletionOption {
	return func(req *CompletionRequest) {
		req.Temperature = temperature
	}
}

// WithTopK restricts sampling to the K most likely tokens.
func WithTopK(topK int) CompletionOption {
	return func(req *CompletionRequest) {
		req.TopK = topK
	}
}

// WithTopP sets the nucleus sampling parameter (0.0 - 1.0).
func WithTopP(topP float64) CompletionOption {
	return func(req *CompletionRequest) {
		req.TopP = topP
	}
}

// WithMaxTokens sets the maximum number of tokens to generate.
func WithMaxTokens(maxTokens int) CompletionOption {
	return func(req *CompletionRequest) {
		req.MaxTokens = maxTokens
	}
}

// WithSystemPrompt sets the system instruction block.
func WithSystemPrompt(prompt string) CompletionOption {
	return func(req *CompletionRequest) {
		req.SystemPrompt = prompt
	}
}

// WithStopSequences sets sequences that will stop generation when encountered.
func WithStopSequences(sequences ...string) CompletionOption {
	return func(req *CompletionRequest) {
		req.StopSequences = sequences
	}
}

// WithDecoding applies all fields of p.
func WithDecoding(p DecodingParams) CompletionOption {
	return func(req *CompletionRequest) {
		req.Temperature = p.Temperature
		req.TopK = p.TopK
		req.TopP = p.TopP
		req.MaxTokens = p.MaxTokens
	}
}

// NewCompletionRequest creates a new completion request with the given model and messages.
//
// Example:
//
//	req := NewCompletionRequest("anthropic.claude-v2",
//	    []Message{NewUserMessage("Which disease affect most of my patients?")},
//	    WithTemperature(0),
//	    WithTopK(1),
//	    WithMaxTokens(2048),
//	)
func NewCompletionRequest(model string, messages []Message, opts ...CompletionOption) CompletionRequest {
	req := CompletionRequest{
		Model:    model,
		Messages: messages,
	}
	for _, opt := range opts {
		opt(&req)
	}
	return req
}
