package cilint

import "context"

// MockLinter is a mock implementation of Linter for testing.
type MockLinter struct {
	LintFunc func(ctx context.Context, content string) (*Result, error)
	Calls    []string
}

// Lint implements Linter.
func (m *MockLinter) Lint(ctx context.Context, content string) (*Result, error) {
	m.Calls = append(m.Calls, content)
	if m.LintFunc != nil {
		return m.LintFunc(ctx, content)
	}
	return &Result{Valid: true}, nil
}
