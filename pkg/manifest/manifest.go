// Package manifest loads input manifests: declarative descriptions of
// multi-stage ORCA inputs, validated against an embedded JSON schema.
package manifest

import (
	"fmt"
	"path/filepath"

	"github.com/chemflow/orcakit/pkg/orca"
)

// Stage defaults, applied when a stage leaves the field empty.
const (
	DefaultStageMethod = "wB97X-D4"
	DefaultStageBasis  = "def2-SVPD"
	DefaultStageJob    = "sp"
)

// InputManifest describes a compound ORCA input.
type InputManifest struct {
	// Schema is the optional $schema reference for editor support.
	Schema string `json:"$schema,omitempty" yaml:"$schema,omitempty"`

	Version   string          `json:"version" yaml:"version"`
	Geometry  GeometryConfig  `json:"geometry,omitzero" yaml:"geometry,omitempty"`
	Resources ResourcesConfig `json:"resources,omitzero" yaml:"resources,omitempty"`

	// Grid is inherited by stages that set none.
	Grid string `json:"grid,omitempty" yaml:"grid,omitempty"`

	// Blocks are global literal block files, relative to the manifest.
	Blocks []string      `json:"blocks,omitempty" yaml:"blocks,omitempty"`
	Stages []StageConfig `json:"stages" yaml:"stages"`
}

// GeometryConfig overrides charge and multiplicity. Nil means "use the
// caller's value".
type GeometryConfig struct {
	Charge *int `json:"charge,omitempty" yaml:"charge,omitempty"`
	Mult   *int `json:"mult,omitempty" yaml:"mult,omitempty"`
}

// ResourcesConfig overrides parallel resources. Zero values fall back.
type ResourcesConfig struct {
	Procs     int    `json:"procs,omitempty" yaml:"procs,omitempty"`
	MaxCoreMB int    `json:"maxcore_mb,omitempty" yaml:"maxcore_mb,omitempty"`
	PalStyle  string `json:"pal_style,omitempty" yaml:"pal_style,omitempty"`
}

// StageConfig is one step of the compound job.
type StageConfig struct {
	Job     string   `json:"job,omitempty" yaml:"job,omitempty"`
	Method  string   `json:"method,omitempty" yaml:"method,omitempty"`
	Basis   string   `json:"basis,omitempty" yaml:"basis,omitempty"`
	Grid    string   `json:"grid,omitempty" yaml:"grid,omitempty"`
	CPCM    string   `json:"cpcm,omitempty" yaml:"cpcm,omitempty"`
	SMD     string   `json:"smd,omitempty" yaml:"smd,omitempty"`
	Extra   []string `json:"extra,omitempty" yaml:"extra,omitempty"`
	MOInp   string   `json:"moinp,omitempty" yaml:"moinp,omitempty"`
	NStates int      `json:"nstates,omitempty" yaml:"nstates,omitempty"`
	Blocks  []string `json:"blocks,omitempty" yaml:"blocks,omitempty"`
}

// ApplyDefaults fills empty stage fields.
func (m *InputManifest) ApplyDefaults() {
	for i := range m.Stages {
		s := &m.Stages[i]
		if s.Job == "" {
			s.Job = DefaultStageJob
		}
		if s.Method == "" {
			s.Method = DefaultStageMethod
		}
		if s.Basis == "" {
			s.Basis = DefaultStageBasis
		}
		if s.Grid == "" {
			s.Grid = m.Grid
		}
		if s.NStates == 0 {
			s.NStates = orca.DefaultNStates
		}
	}
}

// BuildStages converts the manifest stages into assembler stages. Relative block
// paths resolve against dir (normally the manifest's directory); moinp is
// kept as written since ORCA resolves it from the run directory.
func (m *InputManifest) BuildStages(dir string) ([]orca.Stage, error) {
	stages := make([]orca.Stage, 0, len(m.Stages))
	for i, sc := range m.Stages {
		kind, err := orca.ParseJobKind(sc.Job)
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
		blocks, err := orca.ReadBlocks(resolveAll(dir, sc.Blocks))
		if err != nil {
			return nil, fmt.Errorf("stage %d: %w", i+1, err)
		}
		stages = append(stages, orca.Stage{
			Spec: orca.JobSpec{
				Method:  sc.Method,
				Basis:   sc.Basis,
				Kind:    kind,
				Grid:    sc.Grid,
				CPCM:    sc.CPCM,
				SMD:     sc.SMD,
				Extra:   orca.ParseExtras(sc.Extra),
				MOInput: sc.MOInp,
			},
			NStates: sc.NStates,
			Blocks:  blocks,
		})
	}
	return stages, nil
}

// GlobalBlocks reads the manifest-level block files relative to dir.
func (m *InputManifest) GlobalBlocks(dir string) ([]string, error) {
	return orca.ReadBlocks(resolveAll(dir, m.Blocks))
}

// ResourceSpec overlays the manifest's resources onto fallback.
func (m *InputManifest) ResourceSpec(fallback orca.ResourceSpec) (orca.ResourceSpec, error) {
	res := fallback
	if m.Resources.Procs > 0 {
		res.Procs = m.Resources.Procs
	}
	if m.Resources.MaxCoreMB > 0 {
		res.MaxCoreMB = m.Resources.MaxCoreMB
	}
	if m.Resources.PalStyle != "" {
		style, err := orca.ParsePalStyle(m.Resources.PalStyle)
		if err != nil {
			return orca.ResourceSpec{}, err
		}
		res.Style = style
	}
	return res, nil
}

// GeometryFor returns the geometry for xyzPath with the manifest's charge
// and multiplicity overlaid onto the given defaults.
func (m *InputManifest) GeometryFor(xyzPath string, charge, mult int) orca.Geometry {
	g := orca.Geometry{Path: xyzPath, Charge: charge, Mult: mult}
	if m.Geometry.Charge != nil {
		g.Charge = *m.Geometry.Charge
	}
	if m.Geometry.Mult != nil {
		g.Mult = *m.Geometry.Mult
	}
	return g
}

func resolveAll(dir string, paths []string) []string {
	if len(paths) == 0 {
		return nil
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		if dir != "" && !filepath.IsAbs(p) {
			p = filepath.Join(dir, p)
		}
		out[i] = p
	}
	return out
}
