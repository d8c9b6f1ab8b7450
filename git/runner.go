package git

import (
	"bytes"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CommandRunner executes external commands.
// Run returns trimmed stdout. On failure the error carries stderr.
type CommandRunner interface {
	Run(dir, name string, args ...string) (string, error)
}

// ExecRunner runs commands with os/exec.
type ExecRunner struct{}

// NewExecRunner creates a runner that executes real commands.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements CommandRunner.
func (r *ExecRunner) Run(dir, name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	cmd.Dir = dir

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return strings.TrimSpace(stdout.String()), &Error{
			Op:     strings.Join(append([]string{name}, firstArg(args)...), " "),
			Cmd:    name + " " + strings.Join(args, " "),
			Output: strings.TrimSpace(stderr.String()),
			Err:    err,
		}
	}
	return strings.TrimSpace(stdout.String()), nil
}

func firstArg(args []string) []string {
	if len(args) == 0 {
		return nil
	}
	return args[:1]
}

// MockCall records one invocation of a MockRunner.
type MockCall struct {
	Dir  string
	Name string
	Args []string
}

type mockResult struct {
	output string
	err    error
}

// MockRunner returns queued results in order and records every call.
// Once the queue is empty it returns empty output and no error.
type MockRunner struct {
	mu      sync.Mutex
	results []mockResult
	Calls   []MockCall
}

// NewSequentialMockRunner creates an empty MockRunner.
func NewSequentialMockRunner() *MockRunner {
	return &MockRunner{}
}

// AddOutput queues the result of the next call.
func (m *MockRunner) AddOutput(output string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.results = append(m.results, mockResult{output: output, err: err})
}

// AddOutputError queues a failing call whose error carries stderr.
func (m *MockRunner) AddOutputError(output, stderr string, err error) {
	if err == nil {
		err = errors.New("exit status 1")
	}
	m.AddOutput(output, &Error{Op: "mock", Output: stderr, Err: err})
}

// Run implements CommandRunner.
func (m *MockRunner) Run(dir, name string, args ...string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, MockCall{Dir: dir, Name: name, Args: args})
	if len(m.results) == 0 {
		return "", nil
	}
	res := m.results[0]
	m.results = m.results[1:]
	return res.output, res.err
}

// CallString formats call i as a command line, for assertions.
func (m *MockRunner) CallString(i int) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	if i < 0 || i >= len(m.Calls) {
		return fmt.Sprintf("<no call %d>", i)
	}
	c := m.Calls[i]
	return strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
}
