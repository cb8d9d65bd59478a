package cmd

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chemflow/orcakit/internal/prompt"
	"github.com/chemflow/orcakit/pkg/jobregistry"
	"github.com/chemflow/orcakit/pkg/output"
	"github.com/chemflow/orcakit/pkg/slurm"
)

func TestSubmit_WritesScript(t *testing.T) {
	isolateCLI(t)
	r := newFakeRunner()
	useRunner(t, r)
	inp := writeInput(t, t.TempDir(), "mol.inp")

	_, err := runCLI(t, "submit", "--inp", inp, "--partition", "long", "--time", "72:00:00",
		"--no-exclusive", "--workdir", "scratch", "--clean", "standart")
	require.NoError(t, err)

	script := readFile(t, filepath.Join(filepath.Dir(inp), "mol.slurm"))
	assert.Contains(t, script, "#SBATCH --job-name=alice_ORCA_calc\n")
	assert.Contains(t, script, "#SBATCH --ntasks-per-node=8\n")
	assert.Contains(t, script, "#SBATCH --mem=16000MB\n")
	assert.Contains(t, script, "#SBATCH --partition=long\n")
	assert.Contains(t, script, "#SBATCH --time=72:00:00\n")
	assert.NotContains(t, script, "--exclusive")
	assert.Contains(t, script, `WORKDIR="/scratch/${SLURM_JOB_ID}"`)
	assert.Contains(t, script, `INPUT="mol.inp"`)
	assert.Empty(t, r.called("sbatch"))
}

func TestSubmit_SubmitsAndRecords(t *testing.T) {
	home := isolateCLI(t)
	r := newFakeRunner()
	r.outputs["sbatch"] = "Submitted batch job 4242\n"
	useRunner(t, r)
	inp := writeInput(t, t.TempDir(), "mol.inp")

	out, err := runCLI(t, "submit", "--inp", inp, "--submit", "--json", "--nodelist", "c1028")
	require.NoError(t, err)

	calls := r.called("sbatch")
	require.Len(t, calls, 1)
	assert.Equal(t, "sbatch --chdir="+filepath.Dir(inp)+" "+filepath.Join(filepath.Dir(inp), "mol.slurm"), calls[0])

	records := decodeRecords(t, out)
	require.Len(t, records, 1)
	require.Equal(t, output.TypeSubmit, records[0].Type)
	var sub output.SubmitRecord
	require.NoError(t, json.Unmarshal(records[0].Data, &sub))
	assert.True(t, sub.Submitted)
	assert.Equal(t, "4242", sub.SlurmJobID)
	assert.NotEmpty(t, sub.RecordID)
	assert.Equal(t, 8, sub.NTasks)

	store := jobregistry.NewStore(filepath.Join(home, "registry"))
	rec, err := store.FindBySlurmID("4242")
	require.NoError(t, err)
	assert.Equal(t, jobregistry.StateSubmitted, rec.State)
	assert.Equal(t, "c1028", rec.NodeList)
	assert.Equal(t, records[0].RunID, rec.RunID)

	out, err = runCLI(t, "submit", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "SLURM ID")
	assert.Contains(t, out, "4242")
	assert.Contains(t, out, "16 GiB")

	out, err = runCLI(t, "submit", "history", "--json")
	require.NoError(t, err)
	var listed []jobregistry.JobRecord
	require.NoError(t, json.Unmarshal([]byte(out), &listed))
	require.Len(t, listed, 1)
	assert.Equal(t, "4242", listed[0].SlurmJobID)
}

func TestSubmit_HistoryEmpty(t *testing.T) {
	isolateCLI(t)

	out, err := runCLI(t, "submit", "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No submissions recorded")

	out, err = runCLI(t, "submit", "history", "--json")
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}

func TestSubmit_All(t *testing.T) {
	isolateCLI(t)
	r := newFakeRunner()
	r.outputs["sbatch"] = "Submitted batch job 7\n"
	useRunner(t, r)
	dir := t.TempDir()
	writeInput(t, dir, "a.inp")
	writeInput(t, dir, "b.inp")

	_, err := runCLI(t, "submit", "--all", "--dir", dir, "--submit", "--rate", "0")
	require.NoError(t, err)

	assert.FileExists(t, filepath.Join(dir, "a.slurm"))
	assert.FileExists(t, filepath.Join(dir, "b.slurm"))
	assert.Len(t, r.called("sbatch"), 2)
}

func TestSubmit_Errors(t *testing.T) {
	tests := []struct {
		name  string
		setup func(r *fakeRunner)
		args  func(inp string) []string
		code  int
	}{
		{
			name: "missing input",
			args: func(inp string) []string { return []string{"--inp", inp + ".nope"} },
			code: foundry.ExitFileNotFound,
		},
		{
			name: "bad workdir",
			args: func(inp string) []string { return []string{"--inp", inp, "--workdir", "ramdisk"} },
			code: foundry.ExitInvalidArgument,
		},
		{
			name:  "sbatch missing",
			setup: func(r *fakeRunner) { r.missing["sbatch"] = true },
			args:  func(inp string) []string { return []string{"--inp", inp, "--submit"} },
			code:  foundry.ExitExternalServiceUnavailable,
		},
		{
			name:  "sbatch unexpected output",
			setup: func(r *fakeRunner) { r.outputs["sbatch"] = "sbatch: error: invalid partition\n" },
			args:  func(inp string) []string { return []string{"--inp", inp, "--submit"} },
			code:  foundry.ExitExternalServiceUnavailable,
		},
		{
			name:  "sbatch fails",
			setup: func(r *fakeRunner) {
				r.errs["sbatch"] = &slurm.CommandError{Name: "sbatch", Err: errors.New("exit status 1")}
			},
			args: func(inp string) []string { return []string{"--inp", inp, "--submit"} },
			code: foundry.ExitExternalServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolateCLI(t)
			r := newFakeRunner()
			if tt.setup != nil {
				tt.setup(r)
			}
			useRunner(t, r)
			inp := writeInput(t, t.TempDir(), "mol.inp")

			_, err := runCLI(t, append([]string{"submit"}, tt.args(inp)...)...)
			requireExitCode(t, err, tt.code)
		})
	}
}

func TestSubmit_MutuallyExclusiveFlags(t *testing.T) {
	isolateCLI(t)
	useRunner(t, newFakeRunner())
	inp := writeInput(t, t.TempDir(), "mol.inp")

	_, err := runCLI(t, "submit", "--inp", inp, "--exclusive", "--no-exclusive")
	require.Error(t, err)

	_, err = runCLI(t, "submit", "--inp", inp, "--all")
	require.Error(t, err)
}

func TestSubmit_Menu(t *testing.T) {
	isolateCLI(t)
	r := newFakeRunner()
	r.outputs["sbatch"] = "Submitted batch job 55\n"
	useRunner(t, r)
	p := &prompt.Scripted{Multis: [][]int{{2, 0}}}
	usePrompter(t, p)

	dir := t.TempDir()
	for _, name := range []string{"a.slurm", "b.slurm", "c.slurm"} {
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("#!/bin/bash\n"), 0644))
	}
	writeInput(t, dir, "a.inp")

	out, err := runCLI(t, "submit", "--menu", "--dir", dir, "--json")
	require.NoError(t, err)

	calls := r.called("sbatch")
	require.Len(t, calls, 2)
	assert.True(t, strings.HasSuffix(calls[0], "a.slurm"))
	assert.True(t, strings.HasSuffix(calls[1], "c.slurm"))
	require.Len(t, p.Asked, 1)

	records := decodeRecords(t, out)
	require.Len(t, records, 2)
	var first output.SubmitRecord
	require.NoError(t, json.Unmarshal(records[0].Data, &first))
	assert.Equal(t, filepath.Join(dir, "a.inp"), first.Input)
	var second output.SubmitRecord
	require.NoError(t, json.Unmarshal(records[1].Data, &second))
	assert.Empty(t, second.Input)
}

func TestSubmit_MenuAborted(t *testing.T) {
	isolateCLI(t)
	r := newFakeRunner()
	useRunner(t, r)
	usePrompter(t, &prompt.Scripted{})

	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.slurm"), []byte("#!/bin/bash\n"), 0644))

	_, err := runCLI(t, "submit", "--menu", "--dir", dir)
	require.NoError(t, err)
	assert.Empty(t, r.called("sbatch"))
}

func TestSubmit_NoModeShowsHelp(t *testing.T) {
	isolateCLI(t)

	out, err := runCLI(t, "submit")
	require.NoError(t, err)
	assert.Contains(t, out, "--inp")
}
