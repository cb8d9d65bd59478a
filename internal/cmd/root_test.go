package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSetVersionInfo(t *testing.T) {
	// Save original values
	origVersion := versionInfo.Version
	origCommit := versionInfo.Commit
	origBuildDate := versionInfo.BuildDate
	defer func() {
		versionInfo.Version = origVersion
		versionInfo.Commit = origCommit
		versionInfo.BuildDate = origBuildDate
	}()

	tests := []struct {
		name      string
		version   string
		commit    string
		buildDate string
	}{
		{
			name:      "set all values",
			version:   "1.0.0",
			commit:    "abc123",
			buildDate: "2024-01-15",
		},
		{
			name:      "set dev version",
			version:   "dev",
			commit:    "HEAD",
			buildDate: "unknown",
		},
		{
			name:      "set empty values",
			version:   "",
			commit:    "",
			buildDate: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			SetVersionInfo(tt.version, tt.commit, tt.buildDate)

			assert.Equal(t, tt.version, versionInfo.Version)
			assert.Equal(t, tt.commit, versionInfo.Commit)
			assert.Equal(t, tt.buildDate, versionInfo.BuildDate)
		})
	}
}

func TestGetAppIdentity(t *testing.T) {
	t.Run("returns nil before init", func(t *testing.T) {
		orig := appIdentity
		appIdentity = nil
		defer func() { appIdentity = orig }()

		assert.Nil(t, GetAppIdentity())
	})

	t.Run("set by the root command", func(t *testing.T) {
		isolateCLI(t)
		_, err := runCLI(t, "version")
		require.NoError(t, err)

		identity := GetAppIdentity()
		require.NotNil(t, identity)
		assert.Equal(t, "orcakit", identity.BinaryName)
		assert.Equal(t, "orcakit", identity.ConfigName)
		assert.Equal(t, "ORCAKIT", identity.EnvPrefix)
	})
}

func TestExitError(t *testing.T) {
	tests := []struct {
		name    string
		code    int
		message string
		err     error
		want    string
	}{
		{
			name:    "basic error",
			code:    1,
			message: "Something failed",
			err:     assert.AnError,
			want:    "Something failed",
		},
		{
			name:    "includes exit code",
			code:    foundry.ExitInvalidArgument,
			message: "Bad flag",
			err:     assert.AnError,
			want:    fmt.Sprintf("exit code %d", foundry.ExitInvalidArgument),
		},
		{
			name:    "nil cause",
			code:    foundry.ExitFileNotFound,
			message: "Missing",
			want:    "Missing (exit code",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := exitError(tt.code, tt.message, tt.err)
			require.Error(t, err)
			assert.True(t, strings.Contains(err.Error(), tt.want), err.Error())
			if tt.err != nil {
				assert.ErrorIs(t, err, tt.err)
			}
		})
	}
}

func TestExitCodeOf(t *testing.T) {
	assert.Equal(t, 0, exitCodeOf(nil))
	assert.Equal(t, foundry.ExitFileNotFound, exitCodeOf(exitError(foundry.ExitFileNotFound, "x", nil)))
	assert.Equal(t, foundry.ExitFileWriteError, exitCodeOf(fmt.Errorf("wrapped: %w", exitError(foundry.ExitFileWriteError, "x", nil))))
	assert.Equal(t, foundry.ExitSignalInt, exitCodeOf(context.Canceled))
	assert.Equal(t, 1, exitCodeOf(assert.AnError))
}

func TestRootConfigFile_ReadOnly(t *testing.T) {
	isolateCLI(t)
	r := newFakeRunner()
	useRunner(t, r)
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "orcakit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("readonly: true\n"), 0644))
	inp := writeInput(t, dir, "mol.inp")

	_, err := runCLI(t, "--config", cfgPath, "submit", "--inp", inp, "--submit")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "readonly")
	assert.Empty(t, r.called("sbatch"))
}

func TestRootConfigFile_Partition(t *testing.T) {
	isolateCLI(t)
	useRunner(t, newFakeRunner())
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "orcakit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("slurm:\n  partition: long\n"), 0644))
	inp := writeInput(t, dir, "mol.inp")

	_, err := runCLI(t, "--config", cfgPath, "submit", "--inp", inp)
	require.NoError(t, err)
	script, err := os.ReadFile(filepath.Join(dir, "mol.slurm"))
	require.NoError(t, err)
	assert.Contains(t, string(script), "#SBATCH --partition=long")
}

func TestRootConfigFile_Invalid(t *testing.T) {
	isolateCLI(t)
	cfgPath := filepath.Join(t.TempDir(), "orcakit.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte("input:\n  pal: 0\n"), 0644))

	_, err := runCLI(t, "--config", cfgPath, "version")
	requireExitCode(t, err, foundry.ExitInvalidArgument)
	assert.Contains(t, err.Error(), "configuration")
}

func TestRootConfigFile_Missing(t *testing.T) {
	isolateCLI(t)
	_, err := runCLI(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "version")
	requireExitCode(t, err, foundry.ExitInvalidArgument)
}

func TestRegistryDir(t *testing.T) {
	isolateCLI(t)
	cfg, err := currentConfig(context.Background())
	require.NoError(t, err)
	defer func() { appCfg = nil }()

	assert.Equal(t, os.Getenv("ORCAKIT_REGISTRY_DIR"), registryDir(cfg))

	cfg.Registry.Dir = ""
	got := registryDir(cfg)
	assert.Equal(t, "jobs", filepath.Base(got))
	assert.Contains(t, got, "orcakit")
}

func TestVersionCommand(t *testing.T) {
	isolateCLI(t)
	origVersion := versionInfo.Version
	defer func() { versionInfo.Version = origVersion }()
	versionInfo.Version = "1.2.3"

	out, err := runCLI(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "orcakit 1.2.3")

	out, err = runCLI(t, "version", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"version":"1.2.3"`)
}
