package llm

import (
	"context"
	"sync"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// stubProvider answers every request with a fixed text and counts calls.
type stubProvider struct {
	mu     sync.Mutex
	name   string
	reply  string
	err    error
	health types.HealthStatus
	reqs   []CompletionRequest
}

func newStub(reply string) *stubProvider {
	return &stubProvider{name: "stub", reply: reply, health: types.Healthy("ok")}
}

func (s *stubProvider) Name() string { return s.name }

func (s *stubProvider) Complete(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reqs = append(s.reqs, req)
	if s.err != nil {
		return nil, s.err
	}
	return &CompletionResponse{Model: req.Model, Message: NewAssistantMessage(s.reply), FinishReason: FinishReasonStop}, nil
}

func (s *stubProvider) Health(ctx context.Context) types.HealthStatus { return s.health }

func (s *stubProvider) calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.reqs)
}
