package conversation

import (
	"sync"
)

// DefaultWindow is how many past exchanges feed a new question.
const DefaultWindow = 3

// HistorySource selects what is paired with each past question when
// building context for a new one.
type HistorySource string

const (
	// HistoryAnswers pairs each past question with its answer.
	HistoryAnswers HistorySource = "answers"

	// HistoryContexts pairs each past question with the first record it
	// retrieved.
	HistoryContexts HistorySource = "contexts"
)

// Exchange is one conversation turn.
type Exchange struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
	Query    string `json:"query"`
	Context  string `json:"context"`
}

// State is the history of one session, kept as four sequences that always
// have the same length.
//
// Every exchange is retained for display unless MaxExchanges is set; only
// the last Window exchanges are fed back into new questions.
// State is safe for concurrent use.
type State struct {
	mu sync.RWMutex

	questions []string
	answers   []string
	queries   []string
	contexts  []string

	window       int
	maxExchanges int
	source       HistorySource
}

// Option configures a State.
type Option func(*State)

// WithWindow sets how many past exchanges BuildRecentContext uses by default.
func WithWindow(n int) Option {
	return func(s *State) {
		if n >= 0 {
			s.window = n
		}
	}
}

// WithMaxExchanges caps retained history; the oldest exchanges are dropped
// first. Zero keeps everything.
func WithMaxExchanges(n int) Option {
	return func(s *State) {
		if n >= 0 {
			s.maxExchanges = n
		}
	}
}

// WithHistorySource selects what follows each past question in
// BuildRecentContext.
func WithHistorySource(src HistorySource) Option {
	return func(s *State) {
		if src == HistoryAnswers || src == HistoryContexts {
			s.source = src
		}
	}
}

// NewState creates an empty State.
func NewState(opts ...Option) *State {
	s := &State{
		window: DefaultWindow,
		source: HistoryAnswers,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// AppendExchange records one turn. All four sequences grow together, also
// when answer, query and context are placeholders for a failed turn.
func (s *State) AppendExchange(question, answer, query, context string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.questions = append(s.questions, question)
	s.answers = append(s.answers, answer)
	s.queries = append(s.queries, query)
	s.contexts = append(s.contexts, context)

	if s.maxExchanges > 0 && len(s.questions) > s.maxExchanges {
		drop := len(s.questions) - s.maxExchanges
		s.questions = append([]string(nil), s.questions[drop:]...)
		s.answers = append([]string(nil), s.answers[drop:]...)
		s.queries = append([]string(nil), s.queries[drop:]...)
		s.contexts = append([]string(nil), s.contexts[drop:]...)
	}
}

// Len returns the number of retained exchanges.
func (s *State) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.questions)
}

// Window returns the default context window.
func (s *State) Window() int {
	return s.window
}

// BuildRecentContext returns the last n (question, history item) pairs,
// oldest first, followed by question. n <= 0 uses the state's window.
func (s *State) BuildRecentContext(question string, n int) []string {
	if n <= 0 {
		n = s.window
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	items := s.answers
	if s.source == HistoryContexts {
		items = s.contexts
	}

	size := len(s.questions)
	start := size - n
	if start < 0 {
		start = 0
	}

	out := make([]string, 0, 2*(size-start)+1)
	for i := start; i < size; i++ {
		out = append(out, s.questions[i], items[i])
	}
	return append(out, question)
}

// Exchanges returns every retained exchange, oldest first.
func (s *State) Exchanges() []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.slice(0)
}

// Recent returns the last n exchanges, oldest first.
func (s *State) Recent(n int) []Exchange {
	s.mu.RLock()
	defer s.mu.RUnlock()

	start := len(s.questions) - n
	if start < 0 || n <= 0 {
		start = 0
	}
	return s.slice(start)
}

// LatestQuery returns the query of the newest exchange, or "".
func (s *State) LatestQuery() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if len(s.queries) == 0 {
		return ""
	}
	return s.queries[len(s.queries)-1]
}

func (s *State) slice(start int) []Exchange {
	out := make([]Exchange, 0, len(s.questions)-start)
	for i := start; i < len(s.questions); i++ {
		out = append(out, Exchange{
			Question: s.questions[i],
			Answer:   s.answers[i],
			Query:    s.queries[i],
			Context:  s.contexts[i],
		})
	}
	return out
}

// Snapshot is the serialized form of a State.
type Snapshot struct {
	Questions []string `json:"questions"`
	Answers   []string `json:"answers"`
	Queries   []string `json:"queries"`
	Contexts  []string `json:"contexts"`
}

// Snapshot copies the sequences.
func (s *State) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return Snapshot{
		Questions: append([]string{}, s.questions...),
		Answers:   append([]string{}, s.answers...),
		Queries:   append([]string{}, s.queries...),
		Contexts:  append([]string{}, s.contexts...),
	}
}

// Restore replaces the sequences with snap. Snapshots whose sequences
// differ in length are truncated to the shortest one.
func (s *State) Restore(snap Snapshot) {
	n := min(len(snap.Questions), len(snap.Answers), len(snap.Queries), len(snap.Contexts))

	s.mu.Lock()
	defer s.mu.Unlock()
	s.questions = append([]string{}, snap.Questions[:n]...)
	s.answers = append([]string{}, snap.Answers[:n]...)
	s.queries = append([]string{}, snap.Queries[:n]...)
	s.contexts = append([]string{}, snap.Contexts[:n]...)
}
