package graph

import (
	"context"
	"sync"
	"time"

	"github.com/zero-day-ai/graphqa/internal/types"
)

// MockCall represents a recorded method call on the mock graph client.
type MockCall struct {
	Method    string
	Args      []interface{}
	Timestamp time.Time
}

// QueryFunc answers a Query call on MockGraphClient.
type QueryFunc func(cypher string, params map[string]any) (QueryResult, error)

// MockGraphClient is a mock implementation of GraphClient for testing.
// Query answers come from, in order of precedence: the queued errors, the
// queued results, the QueryFunc, and finally an empty result.
type MockGraphClient struct {
	mu sync.RWMutex

	connected    bool
	healthStatus types.HealthStatus
	calls        []MockCall

	queryResults  []QueryResult
	queryErrors   []error
	queryFunc     QueryFunc
	vectorMatches []VectorMatch
	vectorError   error
	connectError  error
}

// NewMockGraphClient creates a new mock graph client for testing.
func NewMockGraphClient() *MockGraphClient {
	return &MockGraphClient{
		healthStatus: types.Healthy("mock graph client"),
		calls:        make([]MockCall, 0),
	}
}

func (m *MockGraphClient) record(method string, args ...interface{}) {
	m.calls = append(m.calls, MockCall{
		Method:    method,
		Args:      args,
		Timestamp: time.Now(),
	})
}

// Connect records the call and simulates connection.
func (m *MockGraphClient) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Connect")
	if m.connectError != nil {
		return m.connectError
	}
	m.connected = true
	return nil
}

// Close records the call and simulates disconnection.
func (m *MockGraphClient) Close(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Close")
	m.connected = false
	return nil
}

// Health records the call and returns the configured health status.
func (m *MockGraphClient) Health(ctx context.Context) types.HealthStatus {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("Health")
	return m.healthStatus
}

// Query records the call and returns the next scripted answer.
func (m *MockGraphClient) Query(ctx context.Context, cypher string, params map[string]any) (QueryResult, error) {
	m.mu.Lock()
	m.record("Query", cypher, params)

	if err := ctx.Err(); err != nil {
		m.mu.Unlock()
		return QueryResult{}, err
	}

	if len(m.queryErrors) > 0 {
		err := m.queryErrors[0]
		m.queryErrors = m.queryErrors[1:]
		m.mu.Unlock()
		return QueryResult{}, err
	}

	if len(m.queryResults) > 0 {
		res := m.queryResults[0]
		m.queryResults = m.queryResults[1:]
		m.mu.Unlock()
		return res, nil
	}

	fn := m.queryFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(cypher, params)
	}
	return QueryResult{Columns: []string{}, Records: []map[string]any{}}, nil
}

// VectorSearch records the call and returns the configured matches, trimmed to K.
func (m *MockGraphClient) VectorSearch(ctx context.Context, q VectorQuery) ([]VectorMatch, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.record("VectorSearch", q)
	if err := q.Validate(); err != nil {
		return nil, err
	}
	if m.vectorError != nil {
		return nil, m.vectorError
	}

	matches := m.vectorMatches
	if len(matches) > q.K {
		matches = matches[:q.K]
	}
	out := make([]VectorMatch, len(matches))
	copy(out, matches)
	return out, nil
}

// AddQueryResult queues a result returned by the next Query call.
func (m *MockGraphClient) AddQueryResult(result QueryResult) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryResults = append(m.queryResults, result)
}

// AddQueryError queues an error returned by the next Query call.
func (m *MockGraphClient) AddQueryError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryErrors = append(m.queryErrors, err)
}

// SetQueryFunc installs a handler for Query calls that have nothing queued.
func (m *MockGraphClient) SetQueryFunc(fn QueryFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queryFunc = fn
}

// SetVectorMatches sets the matches returned by VectorSearch.
func (m *MockGraphClient) SetVectorMatches(matches []VectorMatch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectorMatches = matches
}

// SetVectorError makes VectorSearch fail.
func (m *MockGraphClient) SetVectorError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.vectorError = err
}

// SetConnectError makes Connect fail.
func (m *MockGraphClient) SetConnectError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.connectError = err
}

// SetHealthStatus sets the status returned by Health.
func (m *MockGraphClient) SetHealthStatus(status types.HealthStatus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.healthStatus = status
}

// IsConnected reports whether Connect succeeded more recently than Close.
func (m *MockGraphClient) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// GetCalls returns a copy of all recorded calls.
func (m *MockGraphClient) GetCalls() []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// GetCallsByMethod returns recorded calls of one method.
func (m *MockGraphClient) GetCallsByMethod(method string) []MockCall {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []MockCall
	for _, c := range m.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

// CallCount returns the number of recorded calls of one method.
func (m *MockGraphClient) CallCount(method string) int {
	return len(m.GetCallsByMethod(method))
}

// Reset clears recorded calls and scripted answers.
func (m *MockGraphClient) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.calls = make([]MockCall, 0)
	m.queryResults = nil
	m.queryErrors = nil
	m.queryFunc = nil
	m.vectorMatches = nil
	m.vectorError = nil
	m.connectError = nil
}

// Ensure MockGraphClient implements GraphClient.
var _ GraphClient = (*MockGraphClient)(nil)
var _ GraphClient = (*Neo4jClient)(nil)
