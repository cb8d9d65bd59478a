package slurm

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractResources(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  Resources
	}{
		{
			name:  "Defaults",
			input: "! B3LYP def2-SVP\n* xyzfile 0 1 a.xyz\n",
			want:  Resources{Procs: 32, MaxCoreMB: 4000},
		},
		{
			name:  "PalBlockAndMaxCore",
			input: "! B3LYP\n%pal\n  nprocs 16\nend\n%MaxCore 2500\n",
			want:  Resources{Procs: 16, MaxCoreMB: 2500},
		},
		{
			name:  "BangPal",
			input: "! wB97X-D4 def2-TZVPPD TightSCF\n! PAL8\n%maxcore 1000\n",
			want:  Resources{Procs: 8, MaxCoreMB: 1000},
		},
		{
			name:  "OneLinePal",
			input: "%pal nprocs 12 end\n%MaxCore 3000\n",
			want:  Resources{Procs: 12, MaxCoreMB: 3000},
		},
		{
			name:  "GarbageIgnored",
			input: "%pal\n  nprocs lots\nend\n%maxcore\n",
			want:  Resources{Procs: 32, MaxCoreMB: 4000},
		},
		{
			name:  "NprocsOutsidePalIgnored",
			input: "%scf\n  nprocs 4\nend\n",
			want:  Resources{Procs: 32, MaxCoreMB: 4000},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractResources(strings.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResourcesMemory(t *testing.T) {
	assert.Equal(t, 128000, Resources{Procs: 32, MaxCoreMB: 4000}.MemoryMB())
}

func TestExtractResourcesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "a.inp")
	require.NoError(t, os.WriteFile(path, []byte("! PAL4\n"), 0o644))
	got, err := ExtractResourcesFile(path)
	require.NoError(t, err)
	assert.Equal(t, 4, got.Procs)

	_, err = ExtractResourcesFile(filepath.Join(t.TempDir(), "nope.inp"))
	assert.Error(t, err)
}
