package model

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/chronosynth/chronosynth/core"
)

// MockInvoker is a lightweight in-memory Invoker for tests and examples.
// Responses, failures and artificial delays are scripted per role, and
// every call is recorded so tests can assert exact invocation counts.
type MockInvoker struct {
	mu        sync.Mutex
	info      Info
	responses map[core.Role]string
	errs      map[core.Role]error
	delays    map[core.Role]time.Duration
	calls     []core.Role
	prompts   map[core.Role]string
}

// NewMockInvoker constructs an empty mock with deterministic defaults.
func NewMockInvoker() *MockInvoker {
	return &MockInvoker{
		info:      Info{Name: "mock-model", Provider: "mock"},
		responses: make(map[core.Role]string),
		errs:      make(map[core.Role]error),
		delays:    make(map[core.Role]time.Duration),
		prompts:   make(map[core.Role]string),
	}
}

// RespondWith registers a canned completion for a role.
func (m *MockInvoker) RespondWith(role core.Role, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[role] = text
}

// FailWith scripts a failure for a role.
func (m *MockInvoker) FailWith(role core.Role, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[role] = err
}

// DelayFor makes calls for a role sleep before resolving, so timeout and
// serialization behavior can be exercised.
func (m *MockInvoker) DelayFor(role core.Role, d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delays[role] = d
}

// Calls returns the roles invoked so far, in call order.
func (m *MockInvoker) Calls() []core.Role {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]core.Role, len(m.calls))
	copy(out, m.calls)
	return out
}

// CallCount returns how many times a role was invoked.
func (m *MockInvoker) CallCount(role core.Role) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, r := range m.calls {
		if r == role {
			n++
		}
	}
	return n
}

// LastPrompt returns the prompt most recently sent for a role.
func (m *MockInvoker) LastPrompt(role core.Role) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.prompts[role]
}

// Invoke implements Invoker.
func (m *MockInvoker) Invoke(ctx context.Context, req Request) (*Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, req.Role)
	m.prompts[req.Role] = req.Prompt
	delay := m.delays[req.Role]
	scripted := m.errs[req.Role]
	text, ok := m.responses[req.Role]
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if scripted != nil {
		return nil, scripted
	}
	if !ok {
		text = fmt.Sprintf("Mock response to: %s", req.Prompt)
	}
	return &Response{Text: text, Model: m.info.Name}, nil
}

// Info implements Invoker.
func (m *MockInvoker) Info() Info { return m.info }

// Embed implements Embedder with a cheap deterministic hash embedding so
// recall paths can be tested without a provider.
func (m *MockInvoker) Embed(_ context.Context, text string) ([]float32, error) {
	vec := make([]float32, 8)
	for i, r := range text {
		vec[i%8] += float32(r%101) / 100
	}
	return vec, nil
}
