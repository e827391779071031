package runner

import (
	"context"
	"strings"
	"sync"
)

// MockRunner records commands and answers them with registered handlers.
// Unmatched commands succeed without doing anything.
type MockRunner struct {
	mu       sync.Mutex
	calls    []Command
	handlers []mockHandler
}

type mockHandler struct {
	match string
	fn    func(ctx context.Context, cmd Command) error
}

// NewMockRunner creates a new MockRunner
func NewMockRunner() *MockRunner {
	return &MockRunner{}
}

// On registers fn for every command whose rendered command line contains
// match. Later registrations take precedence.
func (m *MockRunner) On(match string, fn func(ctx context.Context, cmd Command) error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers = append(m.handlers, mockHandler{match: match, fn: fn})
}

// Fail makes commands containing match exit with code and stderr.
func (m *MockRunner) Fail(match string, code int, stderr string) {
	m.On(match, func(_ context.Context, cmd Command) error {
		if cmd.Stderr != nil {
			cmd.Stderr.Write([]byte(stderr))
		}
		return &ExitError{Tool: cmd.Name, Code: code, Stderr: stderr}
	})
}

func (m *MockRunner) Run(ctx context.Context, cmd Command) error {
	m.mu.Lock()
	m.calls = append(m.calls, cmd)
	var fn func(context.Context, Command) error
	line := cmd.String()
	for i := len(m.handlers) - 1; i >= 0; i-- {
		if strings.Contains(line, m.handlers[i].match) {
			fn = m.handlers[i].fn
			break
		}
	}
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return err
	}
	if fn == nil {
		return nil
	}
	return fn(ctx, cmd)
}

// Calls returns every command run so far.
func (m *MockRunner) Calls() []Command {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Command(nil), m.calls...)
}

// Ran reports whether any command line contained match.
func (m *MockRunner) Ran(match string) bool {
	for _, c := range m.Calls() {
		if strings.Contains(c.String(), match) {
			return true
		}
	}
	return false
}
