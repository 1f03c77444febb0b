package retrieval

import (
	"context"
	"sync"

	"github.com/zero-day-ai/graphqa/internal/llm"
)

// scriptedGenerator replies with each response in turn, repeating the last.
type scriptedGenerator struct {
	mu        sync.Mutex
	responses []string
	err       error
	prompts   []string
}

func (g *scriptedGenerator) Generate(ctx context.Context, system string, messages []llm.Message, params llm.DecodingParams) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.prompts = append(g.prompts, messages[len(messages)-1].Content)
	if g.err != nil {
		return "", g.err
	}
	idx := len(g.prompts) - 1
	if idx >= len(g.responses) {
		idx = len(g.responses) - 1
	}
	return g.responses[idx], nil
}
