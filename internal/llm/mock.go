package llm

import (
	"context"
	"encoding/json"
	"sync"
)

// MockResponse is one canned answer. Stop may be StopMaxTokens to simulate
// a truncated reply.
type MockResponse struct {
	Content json.RawMessage
	Usage   Usage
	Stop    string
	Err     error
}

// MockProvider answers from a FIFO queue, then from Respond when set. Its
// answers go through the same schema checks as a real provider, so canned
// JSON must match the request schema. Every request is recorded.
type MockProvider struct {
	mu      sync.Mutex
	queue   []MockResponse
	calls   []Request
	Respond func(Request) MockResponse
}

func NewMockProvider(responses ...MockResponse) *MockProvider {
	return &MockProvider{queue: responses}
}

func (m *MockProvider) Generate(_ context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req)
	next, ok := m.next(req)
	m.mu.Unlock()

	if !ok {
		return nil, &ErrProviderUnavailable{Provider: ProviderMock}
	}
	if next.Err != nil {
		return nil, next.Err
	}
	return finish(req, reply{text: string(next.Content), model: "mock", stop: next.Stop, usage: next.Usage})
}

func (m *MockProvider) next(req Request) (MockResponse, bool) {
	if len(m.queue) > 0 {
		r := m.queue[0]
		m.queue = m.queue[1:]
		return r, true
	}
	if m.Respond != nil {
		return m.Respond(req), true
	}
	return MockResponse{}, false
}

func (m *MockProvider) ModelID() string {
	return "mock"
}

// AddResponse queues r behind the pending answers.
func (m *MockProvider) AddResponse(r MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queue = append(m.queue, r)
}

// LastCall returns the most recent request.
func (m *MockProvider) LastCall() (Request, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.calls) == 0 {
		return Request{}, false
	}
	return m.calls[len(m.calls)-1], true
}

func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
