// Package mocks provides hand-written fakes for testing
package mocks

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// Call records one invocation of MockExecutor.
type Call struct {
	Dir  string
	Name string
	Args []string
}

// MockExecutor implements executor.Executor. Run decides each command's
// output; when nil every command succeeds with empty output.
type MockExecutor struct {
	Run     func(name string, args []string) (string, error)
	Missing map[string]bool

	mu    sync.Mutex
	Calls []Call
}

func (m *MockExecutor) Execute(ctx context.Context, name string, args ...string) (string, error) {
	return m.ExecuteInDir(ctx, "", name, args...)
}

func (m *MockExecutor) ExecuteInDir(ctx context.Context, dir string, name string, args ...string) (string, error) {
	m.mu.Lock()
	m.Calls = append(m.Calls, Call{Dir: dir, Name: name, Args: append([]string(nil), args...)})
	m.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.Run == nil {
		return "", nil
	}
	return m.Run(name, args)
}

func (m *MockExecutor) LookPath(name string) (string, error) {
	if m.Missing[name] {
		return "", fmt.Errorf("%s not found in PATH", name)
	}
	return "/usr/bin/" + name, nil
}

// CallCount returns how many commands named name were run.
func (m *MockExecutor) CallCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.Calls {
		if c.Name == name {
			n++
		}
	}
	return n
}

// MockGenerator implements llm.Generator. Respond maps a prompt to a reply.
type MockGenerator struct {
	Respond func(prompt string) (string, error)

	mu      sync.Mutex
	Prompts []string
}

func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.mu.Lock()
	m.Prompts = append(m.Prompts, prompt)
	m.mu.Unlock()

	if m.Respond == nil {
		return "", nil
	}
	return m.Respond(prompt)
}

// CallCount returns how many prompts were sent.
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}

// PromptsWithPrefix returns recorded prompts starting with prefix.
func (m *MockGenerator) PromptsWithPrefix(prefix string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []string
	for _, p := range m.Prompts {
		if strings.HasPrefix(p, prefix) {
			out = append(out, p)
		}
	}
	return out
}
