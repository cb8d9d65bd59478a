package slurm

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func baseOptions() ScriptOptions {
	return ScriptOptions{
		JobName:   "alice_ORCA_calc",
		Partition: "normal",
		Time:      "48:00:00",
		Exclusive: true,
		Workdir:   WorkdirLocalScratch,
		Clean:     CleanCopyTmp,
		Input:     "water.inp",
		NTasks:    32,
		MemoryMB:  128000,
		ORCAPath:  "/opt/orca",
		Modules:   []string{"GCC/12.3.0", "hwloc/2.9.1-GCCcore-12.3.0"},
	}
}

func TestRenderScriptHeader(t *testing.T) {
	text, err := RenderScript(baseOptions())
	require.NoError(t, err)

	assert.Contains(t, text, "#!/bin/bash\n#SBATCH --job-name=alice_ORCA_calc\n#SBATCH --nodes=1\n#SBATCH --ntasks-per-node=32\n#SBATCH --time=48:00:00\n#SBATCH --partition=normal\n#SBATCH --exclusive\n#SBATCH --mem=128000MB\n#SBATCH --output=orca_output.log\n")
	assert.Contains(t, text, "module purge\nmodule load GCC/12.3.0 hwloc/2.9.1-GCCcore-12.3.0\n\nexport ORCA_PATH=/opt/orca\n")
	assert.Contains(t, text, `INPUT="water.inp"`)
	assert.Contains(t, text, `"$ORCA_PATH/orca" "$INPUT" > "${INPUT%.inp}.out"`)
	assert.NotContains(t, text, "--nodelist")
	assert.NotContains(t, text, "{{")
}

func TestRenderScriptNodeListAndShared(t *testing.T) {
	opts := baseOptions()
	opts.NodeList = "c1028"
	opts.Exclusive = false
	text, err := RenderScript(opts)
	require.NoError(t, err)
	assert.Contains(t, text, "#SBATCH --partition=normal\n#SBATCH --nodelist=c1028\n#SBATCH --mem=128000MB\n")
	assert.NotContains(t, text, "--exclusive")
}

func TestRenderScriptEnvironment(t *testing.T) {
	opts := baseOptions()
	opts.ORCAPath = ""
	opts.MPIPrefix = "/opt/openmpi"
	opts.Modules = nil
	text, err := RenderScript(opts)
	require.NoError(t, err)

	assert.Contains(t, text, "module purge\n\nexport PATH=/opt/openmpi/bin:$PATH\nexport LD_LIBRARY_PATH=/opt/openmpi/lib:${LD_LIBRARY_PATH:-}\n: \"${ORCA_PATH:?")
	assert.NotContains(t, text, "module load")
}

func TestRenderScriptWorkdirs(t *testing.T) {
	tests := []struct {
		name     string
		workdir  Workdir
		clean    Clean
		contains []string
		absent   []string
	}{
		{
			name:    "LocalScratchCopyTmp",
			workdir: WorkdirLocalScratch,
			clean:   CleanCopyTmp,
			contains: []string{
				`WORKDIR="/lscratch/${SLURM_JOB_ID}"`,
				`WORKDIR="/tmp/${SLURM_JOB_ID}"`,
				"    cp * \"$RESULTDIR\"\n    rm -rf \"$WORKDIR\"",
				"mkdir -p \"$WORKDIR\"\n\nshopt -s nullglob",
				"TO_COPY=( *.inp *.gbw *.xyz",
				`rsync -a "$WORKDIR"/ "$RESULTDIR"/`,
			},
		},
		{
			name:     "ScratchStandard",
			workdir:  WorkdirScratch,
			clean:    CleanStandard,
			contains: []string{`WORKDIR="/scratch/${SLURM_JOB_ID}"`, "echo \"[INFO] cleaning up $WORKDIR\"\n    rm -rf", "############################\nshopt -s nullglob"},
			absent:   []string{"cp * ", "/lscratch"},
		},
		{
			name:     "LegacyStandart",
			workdir:  WorkdirScratch,
			clean:    Clean("standart"),
			contains: []string{"rm -rf \"$WORKDIR\""},
			absent:   []string{"cp * "},
		},
		{
			name:     "PWD",
			workdir:  WorkdirPWD,
			clean:    "",
			contains: []string{`WORKDIR="$PWD"`, "no cleanup for workdir=pwd", "no staging; running in $PWD", "no copy-back"},
			absent:   []string{"rsync", "rm -rf"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOptions()
			opts.Workdir = tt.workdir
			opts.Clean = tt.clean
			text, err := RenderScript(opts)
			require.NoError(t, err)
			for _, s := range tt.contains {
				assert.Contains(t, text, s)
			}
			for _, s := range tt.absent {
				assert.NotContains(t, text, s)
			}
		})
	}
}

func TestRenderScriptValidation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*ScriptOptions)
	}{
		{"NoJobName", func(o *ScriptOptions) { o.JobName = " " }},
		{"NoInput", func(o *ScriptOptions) { o.Input = "" }},
		{"ZeroTasks", func(o *ScriptOptions) { o.NTasks = 0 }},
		{"ZeroMemory", func(o *ScriptOptions) { o.MemoryMB = 0 }},
		{"BadWorkdir", func(o *ScriptOptions) { o.Workdir = "home" }},
		{"BadClean", func(o *ScriptOptions) { o.Clean = "tidy" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := baseOptions()
			tt.mutate(&opts)
			_, err := RenderScript(opts)
			require.Error(t, err)
			assert.True(t, IsInvalidOptions(err))
		})
	}
}

func TestParseWorkdirAndClean(t *testing.T) {
	w, err := ParseWorkdir("LSCRATCH")
	require.NoError(t, err)
	assert.Equal(t, WorkdirLocalScratch, w)

	c, err := ParseClean("standart")
	require.NoError(t, err)
	assert.Equal(t, CleanStandard, c)

	_, err = ParseClean("nope")
	assert.True(t, IsInvalidOptions(err))
}

func TestWriteScript(t *testing.T) {
	dir := t.TempDir()
	inp := filepath.Join(dir, "water.inp")
	require.NoError(t, os.WriteFile(inp, []byte("! PAL8\n%MaxCore 1500\n"), 0o644))

	opts := baseOptions()
	opts.Input, opts.NTasks, opts.MemoryMB = "", 0, 0
	path, err := WriteScript(inp, opts)
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "water.slurm"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "#SBATCH --ntasks-per-node=8\n")
	assert.Contains(t, string(data), "#SBATCH --mem=12000MB\n")
	assert.Contains(t, string(data), `INPUT="water.inp"`)

	_, err = WriteScript(filepath.Join(dir, "missing.inp"), opts)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestDefaultJobName(t *testing.T) {
	assert.Equal(t, "bob_ORCA_calc", DefaultJobName("bob"))
	assert.Equal(t, "user_ORCA_calc", DefaultJobName(""))
}

func TestSubmit(t *testing.T) {
	r := newFakeRunner()
	r.outputs["sbatch"] = "Submitted batch job 49229449\n"

	id, err := Submit(context.Background(), r, filepath.Join("runs", "water.slurm"))
	require.NoError(t, err)
	assert.Equal(t, "49229449", id)
	assert.Equal(t, []string{"sbatch --chdir=runs " + filepath.Join("runs", "water.slurm")}, r.commandLines())

	r.outputs["sbatch"] = "sbatch: error: invalid partition\n"
	_, err = Submit(context.Background(), r, "x.slurm")
	assert.ErrorIs(t, err, ErrUnexpectedOutput)

	r.errs["sbatch"] = &CommandError{Name: "sbatch", ExitCode: 1, Stderr: "denied"}
	_, err = Submit(context.Background(), r, "x.slurm")
	var cerr *CommandError
	require.ErrorAs(t, err, &cerr)
	assert.Contains(t, err.Error(), "denied")
}

func TestParseSubmitted(t *testing.T) {
	id, err := ParseSubmitted("Submitted batch job 77 on cluster hpc\n")
	require.NoError(t, err)
	assert.Equal(t, "77", id)
}
