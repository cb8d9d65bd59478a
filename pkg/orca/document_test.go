package orca

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	blockRes = ResourceSpec{Procs: 32, MaxCoreMB: 4000, Style: PalBlock}
	bangRes  = ResourceSpec{Procs: 32, MaxCoreMB: 2000, Style: PalBang}
	water    = Geometry{Path: "mol.xyz", Charge: 0, Mult: 1}
)

func TestSingle_Render(t *testing.T) {
	doc := Single{
		Stage: Stage{Spec: JobSpec{
			Method: "wB97X-D4", Basis: "def2-TZVPPD", Kind: KindOptFreq, Grid: "DEFGRID3",
		}},
		Geometry:  water,
		Resources: blockRes,
	}

	got, err := doc.Render()
	require.NoError(t, err)

	want := "! wB97X-D4 def2-TZVPPD DEFGRID3 TightSCF Opt Freq\n\n" +
		"%pal\n  nprocs 32\nend\n%MaxCore 4000\n%scf\n  MaxIter 300\nend\n\n" +
		"\n* xyzfile 0 1 mol.xyz\n\n"
	assert.Equal(t, want, got)
}

func TestSingle_RenderBangStyleRestartAndBlocks(t *testing.T) {
	doc := Single{
		Stage: Stage{
			Spec:   JobSpec{Method: "B3LYP", Basis: "def2-SVP", Kind: KindSP, MOInput: "guess.gbw"},
			Blocks: []string{"%output\n  Print[P_Hirshfeld] 1\nend\n\n\n", "%geom\n  MaxIter 50\nend"},
		},
		Geometry:  Geometry{Path: "anion.xyz", Charge: -1, Mult: 2},
		Resources: ResourceSpec{Procs: 8, MaxCoreMB: 1000, Style: PalBang},
	}

	got, err := doc.Render()
	require.NoError(t, err)

	want := "! B3LYP def2-SVP TightSCF moread\n\n! PAL8\n\n" +
		"%MaxCore 1000\n%scf\n  MaxIter 300\nend\n\n" +
		"%moinp \"guess.gbw\"\n\n" +
		"%output\n  Print[P_Hirshfeld] 1\nend\n\n%geom\n  MaxIter 50\nend\n\n\n" +
		"\n* xyzfile -1 2 anion.xyz\n\n"
	assert.Equal(t, want, got)
	assert.Less(t, strings.Index(got, "%moinp"), strings.Index(got, "* xyzfile"))
}

func TestSingle_RenderTDDFT(t *testing.T) {
	doc := Single{
		Stage: Stage{
			Spec:    JobSpec{Method: "wB97X-D4", Basis: "def2-TZVPPD", Kind: KindTDDFT, Grid: "DEFGRID3", SMD: "water"},
			NStates: 30,
		},
		Geometry:  water,
		Resources: blockRes,
	}

	got, err := doc.Render()
	require.NoError(t, err)

	lines := strings.Split(got, "\n")
	assert.True(t, strings.HasSuffix(lines[0], "SMD(water)"))
	assert.NotContains(t, lines[0], "Opt")
	assert.NotContains(t, lines[0], "Freq")
	assert.Contains(t, got, "%MaxCore 4000\n%tddft\n  nroots 30\nend\n%scf")
}

func TestSingle_TDDFTDefaultRoots(t *testing.T) {
	doc := Single{
		Stage:     Stage{Spec: JobSpec{Method: "PBE0", Kind: KindTDDFT}},
		Geometry:  water,
		Resources: blockRes,
	}
	got, err := doc.Render()
	require.NoError(t, err)
	assert.Contains(t, got, "nroots 10")
}

func TestSingle_NoTDDFTSectionForOtherKinds(t *testing.T) {
	doc := Single{
		Stage:     Stage{Spec: JobSpec{Method: "PBE0", Kind: KindOpt}, NStates: 30},
		Geometry:  water,
		Resources: blockRes,
	}
	got, err := doc.Render()
	require.NoError(t, err)
	assert.NotContains(t, got, "%tddft")
}

func TestSingle_Idempotent(t *testing.T) {
	doc := Single{
		Stage:     Stage{Spec: JobSpec{Method: "PBE0", Basis: "def2-SVP", Kind: KindOpt, Extra: []string{"D4"}, MOInput: "a.gbw"}},
		Geometry:  water,
		Resources: blockRes,
	}
	a, err := doc.Render()
	require.NoError(t, err)
	b, err := doc.Render()
	require.NoError(t, err)
	assert.Equal(t, a, b)
	assert.Equal(t, []string{"D4"}, doc.Stage.Spec.Extra)
}

func TestSingle_InvalidInputs(t *testing.T) {
	tests := []struct {
		name string
		doc  Single
	}{
		{name: "zero procs", doc: Single{Geometry: water, Resources: ResourceSpec{Procs: 0, MaxCoreMB: 1, Style: PalBlock}}},
		{name: "zero maxcore", doc: Single{Geometry: water, Resources: ResourceSpec{Procs: 1, MaxCoreMB: 0, Style: PalBlock}}},
		{name: "bad style", doc: Single{Geometry: water, Resources: ResourceSpec{Procs: 1, MaxCoreMB: 1, Style: "inline"}}},
		{name: "empty geometry", doc: Single{Geometry: Geometry{Mult: 1}, Resources: blockRes}},
		{name: "zero multiplicity", doc: Single{Geometry: Geometry{Path: "a.xyz"}, Resources: blockRes}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := tt.doc.Render()
			require.Error(t, err)
			assert.True(t, IsConfiguration(err))
		})
	}
}

func TestCompound_Render(t *testing.T) {
	doc := Compound{
		Stages: []Stage{
			{Spec: JobSpec{Method: "wB97X-D4", Basis: "def2-SVPD", Kind: KindOptFreq, Grid: "DEFGRID3"}},
			{Spec: JobSpec{Method: "wB97M-V", Basis: "def2-TZVPPD", Kind: KindSP, Grid: "DEFGRID3"}},
		},
		Geometry:  water,
		Resources: bangRes,
	}

	got, err := doc.Render()
	require.NoError(t, err)

	want := "! PAL32\n%MaxCore 2000\n\n" +
		"%compound\n" +
		"New_step\n" +
		"! wB97X-D4 def2-SVPD DEFGRID3 TightSCF Opt Freq\n" +
		"%scf\n  MaxIter 300\nend\n" +
		"* xyzfile 0 1 mol.xyz\n\n" +
		"Step_end\n\n" +
		"New_step\n" +
		"! wB97M-V def2-TZVPPD DEFGRID3 TightSCF\n" +
		"%scf\n  MaxIter 300\nend\n" +
		"Step_end\n\n" +
		"EndRun\n"
	assert.Equal(t, want, got)

	// Geometry binding sits between stage 1's SCF section and its end marker.
	geo := strings.Index(got, "* xyzfile")
	assert.Equal(t, 1, strings.Count(got, "* xyzfile"))
	assert.Greater(t, geo, strings.Index(got, "%scf"))
	assert.Less(t, geo, strings.Index(got, "Step_end"))
}

func TestCompound_GeometryBoundOnce(t *testing.T) {
	for n := 1; n <= 6; n++ {
		stages := make([]Stage, n)
		for i := range stages {
			stages[i] = Stage{Spec: JobSpec{Method: "PBE0", Kind: KindSP}}
		}
		got, err := Compound{Stages: stages, Geometry: water, Resources: blockRes}.Render()
		require.NoError(t, err)

		assert.Equal(t, 1, strings.Count(got, "* xyzfile"), "stages=%d", n)
		assert.Equal(t, n, strings.Count(got, "New_step"))
		assert.Equal(t, n, strings.Count(got, "Step_end"))
		assert.Less(t, strings.Index(got, "* xyzfile"), strings.Index(got, "Step_end"))
	}
}

func TestCompound_RenderBlocksRestartAndTDDFT(t *testing.T) {
	doc := Compound{
		Stages: []Stage{
			{
				Spec:   JobSpec{Method: "wB97X-D4", Basis: "def2-SVPD", Kind: KindOpt, SMD: "water", Extra: []string{"SlowConv", "defgrid3", "tightSCF"}, MOInput: "mol_guess.gbw"},
				Blocks: []string{"%geom\n  Calc_Hess true\nend\n\n"},
			},
			{
				Spec:    JobSpec{Method: "wB97M-V", Basis: "def2-TZVPPD", Kind: KindTDDFT},
				NStates: 25,
			},
		},
		Geometry:  water,
		Resources: blockRes,
		Blocks:    []string{"%output\n  PrintLevel Mini\nend\n"},
	}

	got, err := doc.Render()
	require.NoError(t, err)

	want := "%pal\n  nprocs 32\nend\n%MaxCore 4000\n\n" +
		"%output\n  PrintLevel Mini\nend\n\n" +
		"%compound\n" +
		"New_step\n" +
		"! wB97X-D4 def2-SVPD Opt SMD(water) SlowConv defgrid3 tightSCF moread\n" +
		"%moinp \"mol_guess.gbw\"\n" +
		"%scf\n  MaxIter 300\nend\n" +
		"%geom\n  Calc_Hess true\nend\n" +
		"* xyzfile 0 1 mol.xyz\n\n" +
		"Step_end\n\n" +
		"New_step\n" +
		"! wB97M-V def2-TZVPPD TightSCF\n" +
		"%tddft\n  nroots 25\nend\n" +
		"%scf\n  MaxIter 300\nend\n" +
		"Step_end\n\n" +
		"EndRun\n"
	assert.Equal(t, want, got)
}

func TestCompound_NoStages(t *testing.T) {
	_, err := Compound{Geometry: water, Resources: blockRes}.Render()
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}

func TestNEB_Render(t *testing.T) {
	doc := NEB{
		Spec:        JobSpec{Method: "PBEh-3c", Extra: []string{"FREQ"}},
		Mode:        NEBTS,
		Geometry:    Geometry{Path: "reactant.xyz", Charge: 0, Mult: 1},
		Resources:   blockRes,
		EndXYZ:      "product.xyz",
		TSGuessXYZ:  "guessTS.xyz",
		SpringConst: DefaultSpringConst,
		MaxIter:     DefaultNEBMaxIter,
		Images:      DefaultNEBImages,
	}

	got, err := doc.Render()
	require.NoError(t, err)

	want := "! PBEh-3c TightSCF NEB-TS FREQ\n\n" +
		"%pal\n  nprocs 32\nend\n%MaxCore 4000\n%scf\n  MaxIter 300\nend\n\n" +
		"%NEB\n" +
		"  NEB_END_XYZFILE \"product.xyz\"\n" +
		"  NEB_TS_XYZFILE \"guessTS.xyz\"\n" +
		"  SpringConst 0.01\n" +
		"  MAXITER 200\n" +
		"  NImages 10\n" +
		"end\n\n" +
		"* xyzfile 0 1 reactant.xyz\n\n"
	assert.Equal(t, want, got)
}

func TestNEB_RenderModesAndBang(t *testing.T) {
	tests := []struct {
		mode    NEBMode
		keyword string
	}{
		{NEBBasic, "NEB"},
		{NEBCI, "NEB-CI"},
		{NEBTS, "NEB-TS"},
	}

	for _, tt := range tests {
		t.Run(string(tt.mode), func(t *testing.T) {
			doc := NEB{
				Spec:        JobSpec{Method: "r2SCAN-3c", Kind: KindOptFreq},
				Mode:        tt.mode,
				Geometry:    water,
				Resources:   bangRes,
				EndXYZ:      "p.xyz",
				SpringConst: 1,
				MaxIter:     50,
				Images:      8,
			}
			got, err := doc.Render()
			require.NoError(t, err)

			first := strings.SplitN(got, "\n", 2)[0]
			assert.Equal(t, "! r2SCAN-3c TightSCF "+tt.keyword, first)
			assert.Contains(t, got, "\n\n! PAL32\n\n%MaxCore 2000")
			assert.NotContains(t, got, "NEB_TS_XYZFILE")
			assert.Contains(t, got, "SpringConst 1.0\n")
			assert.True(t, strings.HasSuffix(got, "* xyzfile 0 1 mol.xyz\n\n"))
		})
	}
}

func TestNEB_RequiresEndGeometry(t *testing.T) {
	_, err := NEB{Mode: NEBBasic, Geometry: water, Resources: blockRes}.Render()
	require.Error(t, err)
	assert.True(t, IsConfiguration(err))
}

func TestParseNEBMode(t *testing.T) {
	m, err := ParseNEBMode("NEB-CI")
	require.NoError(t, err)
	assert.Equal(t, NEBCI, m)
	assert.Equal(t, KindNEBCI, m.Kind())
	assert.Equal(t, NEBTS, NEBModeForKind(KindNEBTS))

	_, err = ParseNEBMode("string")
	assert.True(t, IsConfiguration(err))
}

func TestFormatFloat(t *testing.T) {
	tests := map[float64]string{
		0:        "0.0",
		0.1:      "0.1",
		0.01:     "0.01",
		1:        "1.0",
		2.5:      "2.5",
		1e6:      "1000000.0",
		123456.5: "123456.5",
		1e15:     "1000000000000000.0",
		1e16:     "1e+16",
		1.5e16:   "1.5e+16",
		0.0001:   "0.0001",
		0.00001:  "1e-05",
		-3:       "-3.0",
	}
	for in, want := range tests {
		assert.Equal(t, want, formatFloat(in), "formatFloat(%v)", in)
	}
}
