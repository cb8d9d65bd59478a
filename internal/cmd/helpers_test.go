package cmd

import (
	"bytes"
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/require"

	"github.com/chemflow/orcakit/internal/prompt"
	"github.com/chemflow/orcakit/pkg/slurm"
)

// fakeRunner answers scheduler commands by command name.
type fakeRunner struct {
	mu      sync.Mutex
	outputs map[string]string
	errs    map[string]error
	missing map[string]bool
	calls   []string
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
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	if f.missing[name] {
		return "", &slurm.CommandError{Name: name, Args: args, Err: fmt.Errorf("%w: %s", slurm.ErrCommandNotFound, name)}
	}
	return f.outputs[name], f.errs[name]
}

func (f *fakeRunner) LookPath(name string) (string, error) {
	if f.missing[name] {
		return "", fmt.Errorf("%w: %s", slurm.ErrCommandNotFound, name)
	}
	return "/usr/bin/" + name, nil
}

func (f *fakeRunner) called(prefix string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.calls {
		if strings.HasPrefix(c, prefix) {
			out = append(out, c)
		}
	}
	return out
}

// useRunner installs r as the scheduler runner for one test.
func useRunner(t *testing.T, r slurm.Runner) {
	t.Helper()
	orig := newRunner
	newRunner = func() slurm.Runner { return r }
	t.Cleanup(func() { newRunner = orig })
}

// usePrompter installs d as the prompt driver for one test.
func usePrompter(t *testing.T, d prompt.Driver) {
	t.Helper()
	orig := newPrompter
	newPrompter = func() prompt.Driver { return d }
	t.Cleanup(func() { newPrompter = orig })
}

// resetCommandFlags restores every flag of c and its children to defaults.
func resetCommandFlags(c *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	c.Flags().VisitAll(reset)
	c.PersistentFlags().VisitAll(reset)
	for _, child := range c.Commands() {
		resetCommandFlags(child)
	}
}

// isolateCLI points config and registry lookups at temp dirs.
func isolateCLI(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", home+"/config")
	t.Setenv("XDG_DATA_HOME", home+"/data")
	t.Setenv("ORCAKIT_CONFIG", "")
	t.Setenv("ORCAKIT_READONLY", "")
	t.Setenv("ORCAKIT_REGISTRY_DIR", home+"/registry")
	t.Setenv("USER", "alice")
	t.Setenv("FORCE_COLOR", "")
	t.Setenv("CLICOLOR_FORCE", "")
	return home
}

// runCLI executes the root command with args and returns captured stdout.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetCommandFlags(rootCmd)
	resetReadOnly(t)
	appCfg = nil

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs(args)
	rootCmd.SetContext(context.Background())

	err := rootCmd.Execute()

	rootCmd.SetArgs(nil)
	rootCmd.SetOut(nil)
	rootCmd.SetErr(nil)
	resetCommandFlags(rootCmd)
	resetReadOnly(t)
	appCfg = nil
	return out.String(), err
}

func requireExitCode(t *testing.T, err error, code int) {
	t.Helper()
	require.Error(t, err)
	require.Equal(t, code, exitCodeOf(err), "error: %v", err)
}
