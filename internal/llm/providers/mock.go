package providers

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/types"
)

// MockCall represents a recorded call to the mock provider
type MockCall struct {
	Request llm.CompletionRequest
}

// MockProvider implements LLMProvider for testing. Responses are returned
// in order and cycle once exhausted; queued errors take precedence.
type MockProvider struct {
	mu            sync.RWMutex
	responses     []string
	responseIndex int
	errors        []error
	respond       func(llm.CompletionRequest) (string, error)
	calls         []MockCall
	health        types.HealthStatus
}

// NewMockProvider creates a new mock provider
func NewMockProvider(responses []string) *MockProvider {
	return &MockProvider{
		responses: responses,
		calls:     make([]MockCall, 0),
		health:    types.Healthy("mock provider ready"),
	}
}

// Name returns the provider name
func (p *MockProvider) Name() string {
	return "mock"
}

// QueueError makes the next call fail with err. Multiple queued errors
// are consumed in order before any response is returned.
func (p *MockProvider) QueueError(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errors = append(p.errors, err)
}

// SetRespondFunc computes replies from the request, overriding the
// scripted responses.
func (p *MockProvider) SetRespondFunc(fn func(llm.CompletionRequest) (string, error)) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.respond = fn
}

// SetHealthStatus sets the status returned by Health.
func (p *MockProvider) SetHealthStatus(status types.HealthStatus) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.health = status
}

// Complete generates a completion
func (p *MockProvider) Complete(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, llm.TranslateError("mock", err)
	}

	p.mu.Lock()
	p.calls = append(p.calls, MockCall{Request: req})

	if len(p.errors) > 0 {
		err := p.errors[0]
		p.errors = p.errors[1:]
		p.mu.Unlock()
		return nil, err
	}

	var response string
	switch {
	case p.respond != nil:
		fn := p.respond
		p.mu.Unlock()
		r, err := fn(req)
		if err != nil {
			return nil, err
		}
		response = r
	case len(p.responses) == 0:
		p.mu.Unlock()
		return nil, llm.NewProviderUnavailableError("mock", nil)
	default:
		response = p.responses[p.responseIndex%len(p.responses)]
		p.responseIndex++
		p.mu.Unlock()
	}

	return &llm.CompletionResponse{
		ID:    uuid.New().String(),
		Model: req.Model,
		Message: llm.Message{
			Role:    llm.RoleAssistant,
			Content: response,
		},
		FinishReason: llm.FinishReasonStop,
		Usage: llm.CompletionTokenUsage{
			PromptTokens:     10,
			CompletionTokens: len(response) / 4,
			TotalTokens:      10 + len(response)/4,
		},
	}, nil
}

// Health returns the configured health status
func (p *MockProvider) Health(ctx context.Context) types.HealthStatus {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.health
}

// GetCalls returns all recorded calls
func (p *MockProvider) GetCalls() []MockCall {
	p.mu.RLock()
	defer p.mu.RUnlock()
	calls := make([]MockCall, len(p.calls))
	copy(calls, p.calls)
	return calls
}

// CallCount returns the number of Complete calls made so far.
func (p *MockProvider) CallCount() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.calls)
}

// Reset clears recorded calls and rewinds the response script
func (p *MockProvider) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = make([]MockCall, 0)
	p.errors = nil
	p.responseIndex = 0
}

var _ llm.LLMProvider = (*MockProvider)(nil)
var _ llm.LLMProvider = (*LangchainProvider)(nil)
