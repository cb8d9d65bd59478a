package slurm

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

type call struct {
	Name string
	Args []string
}

// fakeRunner answers commands from a table keyed by command name.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	missing map[string]bool
	calls   []call
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		outputs: map[string]string{},
		errs:    map[string]error{},
		missing: map[string]bool{},
	}
}

func (f *fakeRunner) Run(_ context.Context, name string, args ...string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, call{Name: name, Args: args})
	if f.missing[name] {
		return "", &CommandError{Name: name, Args: args, Err: fmt.Errorf("%w: %s", ErrCommandNotFound, name)}
	}
	return f.outputs[name], f.errs[name]
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", fmt.Errorf("%w: %s", ErrCommandNotFound, name)
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) commandLines() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	lines := make([]string, len(f.calls))
	for i, c := range f.calls {
		lines[i] = strings.TrimSpace(c.Name + " " + strings.Join(c.Args, " "))
	}
	return lines
}
