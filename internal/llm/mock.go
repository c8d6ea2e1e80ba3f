package llm

import (
	"context"
	"sync"
)

// MockReply is a canned reply for the MockProvider.
type MockReply struct {
	Content string
	Err     error
}

// MockProvider is a deterministic Provider for testing.
// It returns canned replies in FIFO order and records all requests.
type MockProvider struct {
	mu      sync.Mutex
	replies []MockReply
	Calls   [][]Message
}

// NewMockProvider creates a MockProvider with the given canned replies.
func NewMockProvider(replies ...MockReply) *MockProvider {
	return &MockProvider{replies: replies}
}

func (m *MockProvider) Name() string { return "mock" }

// Chat returns the next canned reply or an unavailable error if the
// queue is empty.
func (m *MockProvider) Chat(_ context.Context, messages []Message) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, append([]Message(nil), messages...))

	if len(m.replies) == 0 {
		return "", &UpstreamError{Kind: KindUnavailable}
	}

	r := m.replies[0]
	m.replies = m.replies[1:]

	if r.Err != nil {
		return "", r.Err
	}
	return r.Content, nil
}

// AddReply appends a canned reply to the queue.
func (m *MockProvider) AddReply(content string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, MockReply{Content: content})
}

// AddError appends a canned failure to the queue.
func (m *MockProvider) AddError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replies = append(m.replies, MockReply{Err: err})
}

// CallCount returns the number of Chat calls made.
func (m *MockProvider) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
