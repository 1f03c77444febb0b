package pipeline

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zero-day-ai/graphqa/internal/graph"
	"github.com/zero-day-ai/graphqa/internal/llm"
	"github.com/zero-day-ai/graphqa/internal/llm/providers"
	"github.com/zero-day-ai/graphqa/internal/prompt"
	"github.com/zero-day-ai/graphqa/internal/retrieval"
	"github.com/zero-day-ai/graphqa/internal/types"
)

const diseaseCypher = "MATCH (p:Patient)-[:HAS_DISEASE]->(d:Disease) RETURN d.name AS disease, count(p) AS patients ORDER BY patients DESC"

// fakeTimer fires immediately and records every requested wait.
type fakeTimer struct {
	mu    sync.Mutex
	waits []time.Duration
}

func (f *fakeTimer) After(d time.Duration) <-chan time.Time {
	f.mu.Lock()
	f.waits = append(f.waits, d)
	f.mu.Unlock()
	ch := make(chan time.Time, 1)
	ch <- time.Time{}
	return ch
}

type recordingMetrics struct {
	mu       sync.Mutex
	attempts []error
	runs     int
	lastRun  int
}

func (m *recordingMetrics) RecordAttempt(strategy string, err error, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.attempts = append(m.attempts, err)
}

func (m *recordingMetrics) RecordRun(strategy string, attempts int, err error, elapsed time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.runs++
	m.lastRun = attempts
}

// patient is one row of the fake clinical dataset.
type patient struct {
	id      string
	disease string
}

var patients = []patient{
	{id: "P-001", disease: "Diabetes"},
	{id: "P-002", disease: "Hypertension"},
	{id: "P-003", disease: "Diabetes"},
}

// diseaseCounts answers diseaseCypher against the fake dataset.
func diseaseCounts(cypher string, params map[string]any) (graph.QueryResult, error) {
	if cypher != diseaseCypher {
		return graph.QueryResult{}, fmt.Errorf("unexpected query: %s", cypher)
	}
	counts := map[string]int64{}
	for _, p := range patients {
		counts[p.disease]++
	}
	names := make([]string, 0, len(counts))
	for name := range counts {
		names = append(names, name)
	}
	sort.Slice(names, func(i, j int) bool {
		if counts[names[i]] != counts[names[j]] {
			return counts[names[i]] > counts[names[j]]
		}
		return names[i] < names[j]
	})

	res := graph.QueryResult{Columns: []string{"disease", "patients"}}
	for _, name := range names {
		res.Records = append(res.Records, map[string]any{"disease": name, "patients": counts[name]})
	}
	return res, nil
}

// answerFromContext plays the synthesis model: it reads the JSON context
// out of the cypher-qa prompt and names the most frequent disease first.
func answerFromContext(req llm.CompletionRequest) (string, error) {
	user := req.Messages[len(req.Messages)-1].Content
	start := strings.Index(user, "Information:\n") + len("Information:\n")
	end := strings.Index(user, "\n\nQuestion:")
	var rows []struct {
		Disease  string `json:"disease"`
		Patients int    `json:"patients"`
	}
	if err := json.Unmarshal([]byte(user[start:end]), &rows); err != nil {
		return "", err
	}
	if len(rows) == 0 {
		return "I don't know the answer.", nil
	}
	top := rows[0]
	return fmt.Sprintf("%s affects %d of your patients.\nOther conditions are less common.", top.Disease, top.Patients), nil
}

type fixture struct {
	graph      *graph.MockGraphClient
	translator *providers.MockProvider
	answerer   *providers.MockProvider
	timer      *fakeTimer
	metrics    *recordingMetrics
	states     []State
	pipeline   *Pipeline
}

func newFixture(t *testing.T, mutate func(*Config)) *fixture {
	t.Helper()

	f := &fixture{
		graph:      graph.NewMockGraphClient(),
		translator: providers.NewMockProvider([]string{"```\n" + diseaseCypher + "\n```"}),
		answerer:   providers.NewMockProvider(nil),
		timer:      &fakeTimer{},
		metrics:    &recordingMetrics{},
	}
	f.graph.SetQueryFunc(diseaseCounts)
	f.answerer.SetRespondFunc(answerFromContext)

	strategy, err := retrieval.NewCypherStrategy(retrieval.CypherConfig{
		Graph:      f.graph,
		Translator: &llm.Slot{Provider: f.translator, Model: "anthropic.claude-v2"},
		Schema:     "Node properties are the following:\nPatient {id: STRING}\nDisease {name: STRING}",
		Params:     llm.DecodingParams{TopK: 1, TopP: 0.999, MaxTokens: 2048},
	})
	require.NoError(t, err)

	qa, err := prompt.Builtin(prompt.CypherQAID)
	require.NoError(t, err)

	cfg := Config{
		Strategy:      strategy,
		Answerer:      &llm.Slot{Provider: f.answerer, Model: "anthropic.claude-v2"},
		Prompt:        qa,
		Params:        llm.DecodingParams{TopK: 1, TopP: 0.999, MaxTokens: 2048},
		Timer:         f.timer,
		Metrics:       f.metrics,
		OnStateChange: func(s State) { f.states = append(f.states, s) },
	}
	if mutate != nil {
		mutate(&cfg)
	}

	f.pipeline, err = New(cfg)
	require.NoError(t, err)
	return f
}

func TestPipeline_EndToEndMostCommonDisease(t *testing.T) {
	f := newFixture(t, nil)

	res, err := f.pipeline.Ask(context.Background(), "Which disease affect most of my patients?")
	require.NoError(t, err)

	firstLine := strings.SplitN(res.Answer, "\n", 2)[0]
	assert.Equal(t, "Diabetes affects 2 of your patients.", firstLine)
	assert.Equal(t, diseaseCypher, res.Query)
	assert.Equal(t, `[{"disease":"Diabetes","patients":2},{"disease":"Hypertension","patients":1}]`, res.Context)
	assert.Equal(t, `{"disease":"Diabetes","patients":2}`, res.FirstRecordJSON())
	assert.Equal(t, 1, res.Attempts)
	assert.Empty(t, f.timer.waits)

	assert.Equal(t, []State{StateIdle, StateAssemblingContext, StateAwaitingModel, StateCompleted}, f.states)

	// The answer model sees only what the database returned.
	req := f.answerer.GetCalls()[0].Request
	assert.Contains(t, req.SystemPrompt, "medical assistant")
	assert.Contains(t, req.Messages[0].Content, res.Context)
	assert.Equal(t, 0.0, req.Temperature)
	assert.Equal(t, 1, req.TopK)
}

func TestPipeline_RetriesUntilSuccess(t *testing.T) {
	f := newFixture(t, nil)
	for i := 0; i < 4; i++ {
		f.answerer.QueueError(llm.NewRateLimitError("bedrock", errors.New("ThrottlingException")))
	}

	res, err := f.pipeline.Ask(context.Background(), "Which disease affect most of my patients?")
	require.NoError(t, err)

	assert.NotEmpty(t, res.Answer)
	assert.Equal(t, 5, res.Attempts)
	assert.Equal(t, 5, f.answerer.CallCount())
	// retrieval is re-run on every attempt
	assert.Equal(t, 5, f.translator.CallCount())
	assert.Equal(t, 5, f.graph.CallCount("Query"))
	assert.Equal(t, []time.Duration{5 * time.Second, 5 * time.Second, 5 * time.Second, 5 * time.Second}, f.timer.waits)
	assert.Len(t, f.metrics.attempts, 5)
	assert.Equal(t, 5, f.metrics.lastRun)
}

func TestPipeline_FailsAfterFiveAttempts(t *testing.T) {
	f := newFixture(t, nil)
	cause := llm.NewProviderUnavailableError("bedrock", errors.New("service unavailable"))
	f.answerer.SetRespondFunc(func(llm.CompletionRequest) (string, error) { return "", cause })

	_, err := f.pipeline.Ask(context.Background(), "Which disease affect most of my patients?")
	require.Error(t, err)

	failure, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, 5, failure.Attempts)
	assert.True(t, types.HasCode(err, ErrCodePipelineFailed))
	assert.True(t, errors.Is(err, cause))

	assert.Equal(t, 5, f.answerer.CallCount())
	require.Len(t, f.timer.waits, 4)
	for _, w := range f.timer.waits {
		assert.Equal(t, 5*time.Second, w)
	}
	assert.Equal(t, StateFailed, f.states[len(f.states)-1])
	assert.Contains(t, f.states, StateRetrying)
}

func TestPipeline_TranslationFailureIsRetried(t *testing.T) {
	f := newFixture(t, nil)
	f.translator.SetRespondFunc(func(llm.CompletionRequest) (string, error) {
		if f.translator.CallCount() < 3 {
			return "Sorry, I am not sure.", nil
		}
		return "```\n" + diseaseCypher + "\n```", nil
	})

	res, err := f.pipeline.Ask(context.Background(), "Which disease affect most of my patients?")
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)

	// Translation failures never reach the database.
	assert.Equal(t, 1, f.graph.CallCount("Query"))
}

func TestPipeline_RetryBypassesResponseCache(t *testing.T) {
	translator := providers.NewMockProvider(nil)
	translator.SetRespondFunc(func(llm.CompletionRequest) (string, error) {
		if translator.CallCount() < 2 {
			return "Sorry, I am not sure.", nil
		}
		return "```cypher\n" + diseaseCypher + "\n```", nil
	})
	cached, err := llm.NewCachingProvider(translator, 256)
	require.NoError(t, err)

	g := graph.NewMockGraphClient()
	g.SetQueryFunc(diseaseCounts)
	strategy, err := retrieval.NewCypherStrategy(retrieval.CypherConfig{
		Graph:      g,
		Translator: &llm.Slot{Provider: cached, Model: "anthropic.claude-v2"},
		Schema:     "Node properties are the following:\nPatient {id: STRING}\nDisease {name: STRING}",
		Params:     llm.DecodingParams{TopK: 1, TopP: 0.999, MaxTokens: 2048},
	})
	require.NoError(t, err)

	f := newFixture(t, func(c *Config) { c.Strategy = strategy })

	res, err := f.pipeline.Ask(context.Background(), "Which disease affect most of my patients?")
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	assert.Equal(t, diseaseCypher, res.Query)
	assert.Equal(t, 2, translator.CallCount())
	assert.Equal(t, 1, g.CallCount("Query"))

	// The corrected translation replaced the bad one in the cache.
	res, err = f.pipeline.Ask(context.Background(), "Which disease affect most of my patients?")
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, 2, translator.CallCount())
}

func TestPipeline_PromptErrorIsNotRetried(t *testing.T) {
	bad, err := prompt.New("bad", "", "{input} {missing}")
	require.NoError(t, err)
	f := newFixture(t, func(c *Config) { c.Prompt = bad })

	_, err = f.pipeline.Ask(context.Background(), "q")
	require.Error(t, err)

	failure, ok := AsFailure(err)
	require.True(t, ok)
	assert.Equal(t, 1, failure.Attempts)
	assert.True(t, types.HasCode(err, prompt.ErrCodeMissingVariable))
	assert.Empty(t, f.timer.waits)
	assert.Zero(t, f.answerer.CallCount())
}

func TestPipeline_CancelledContext(t *testing.T) {
	f := newFixture(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.pipeline.Ask(ctx, "q")
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, types.HasCode(err, ErrCodePipelineFailed))
	assert.Zero(t, f.answerer.CallCount())
}

func TestPipeline_EmptyAnswerIsFailure(t *testing.T) {
	f := newFixture(t, func(c *Config) { c.Attempts = 2 })
	f.answerer.SetRespondFunc(func(llm.CompletionRequest) (string, error) { return "   ", nil })

	_, err := f.pipeline.Ask(context.Background(), "q")
	require.Error(t, err)
	failure, _ := AsFailure(err)
	assert.Equal(t, 2, failure.Attempts)
	assert.True(t, types.HasCode(err, llm.ErrEmptyResponse))
}

func TestPipeline_EffectiveQuestion(t *testing.T) {
	lines := []string{"Which patient has the most symptoms?", "P-001", "Which disease affect most of my patients?"}

	t.Run("last line only", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.pipeline.Run(context.Background(), lines)
		require.NoError(t, err)
		translation := f.translator.GetCalls()[0].Request.Messages[0].Content
		assert.Contains(t, translation, "Human: Which disease affect most of my patients?\nAssistant:")
		assert.NotContains(t, translation, "P-001")
	})

	t.Run("history aware", func(t *testing.T) {
		f := newFixture(t, func(c *Config) { c.HistoryAware = true })
		_, err := f.pipeline.Run(context.Background(), lines)
		require.NoError(t, err)
		translation := f.translator.GetCalls()[0].Request.Messages[0].Content
		assert.Contains(t, translation, "Human: Which patient has the most symptoms?\nP-001\nWhich disease affect most of my patients?\nAssistant:")
	})

	t.Run("empty", func(t *testing.T) {
		f := newFixture(t, nil)
		_, err := f.pipeline.Run(context.Background(), []string{"", "  "})
		assert.True(t, types.HasCode(err, ErrCodeInvalidInput))
	})
}

func TestNew_Validation(t *testing.T) {
	_, err := New(Config{})
	assert.True(t, types.HasCode(err, ErrCodeInvalidConfig))
}

func TestState_IsTerminal(t *testing.T) {
	assert.True(t, StateCompleted.IsTerminal())
	assert.True(t, StateFailed.IsTerminal())
	assert.False(t, StateRetrying.IsTerminal())
}
