package orca

import (
	"math"
	"strconv"
	"strings"
)

// Document is a renderable ORCA input.
type Document interface {
	// Render composes the full input text.
	Render() (string, error)
}

// Stage is one leg of a chained computation.
type Stage struct {
	Spec JobSpec

	// NStates is the TDDFT root count; only used when Spec.Kind is tddft.
	NStates int

	// Blocks are literal sections injected verbatim into this stage.
	Blocks []string
}

// Single is a one-step input document.
type Single struct {
	Stage     Stage
	Geometry  Geometry
	Resources ResourceSpec
}

// Render implements Document.
//
// Layout, chunks separated by a blank line:
//
//	! <directive line>          (+ "! PALn" line for bang style)
//	<control sections>
//	%moinp "<file>"             (if set)
//	<literal blocks>            (if any)
//	* xyzfile <charge> <mult> <xyz>
func (d Single) Render() (string, error) {
	if err := d.Resources.Validate(); err != nil {
		return "", err
	}
	if err := d.Geometry.Validate(); err != nil {
		return "", err
	}

	spec := d.Stage.Spec
	header := DirectiveLine(spec)
	if d.Resources.Style == PalBang {
		header += "\n\n" + palBang(d.Resources.Procs)
	}
	blocks := controlSections(d.Resources, nstatesFor(spec.Kind, d.Stage.NStates))

	content := []string{header, strings.Join(blocks, "\n")}
	if spec.MOInput != "" {
		content = append(content, moinpLine(spec.MOInput))
	}
	if len(d.Stage.Blocks) > 0 {
		content = append(content, strings.Join(normalizeBlocks(d.Stage.Blocks), "\n"))
	}
	content = append(content, "\n"+d.Geometry.Line()+"\n\n")

	return strings.Join(content, "\n\n"), nil
}

// Compound is a multi-step %compound document. Stages share one geometry;
// only the first stage binds it.
type Compound struct {
	Stages    []Stage
	Geometry  Geometry
	Resources ResourceSpec

	// Blocks are literal sections placed after the shared header.
	Blocks []string
}

// Render implements Document.
func (d Compound) Render() (string, error) {
	if len(d.Stages) == 0 {
		return "", configErrorf("compound document needs at least one stage")
	}
	if err := d.Resources.Validate(); err != nil {
		return "", err
	}
	if err := d.Geometry.Validate(); err != nil {
		return "", err
	}

	var header []string
	if d.Resources.Style == PalBang {
		header = append(header, palBang(d.Resources.Procs))
	} else {
		header = append(header, palBlock(d.Resources.Procs))
	}
	header = append(header, maxCoreBlock(d.Resources.MaxCoreMB))

	comp := []string{"%compound"}
	for i, st := range d.Stages {
		comp = append(comp, "New_step", DirectiveLine(st.Spec))
		if st.Spec.MOInput != "" {
			comp = append(comp, moinpLine(st.Spec.MOInput))
		}
		if n := nstatesFor(st.Spec.Kind, st.NStates); n > 0 {
			comp = append(comp, tddftBlock(n))
		}
		comp = append(comp, scfBlock(DefaultSCFMaxIter))
		if len(st.Blocks) > 0 {
			comp = append(comp, strings.TrimRight(strings.Join(normalizeBlocks(st.Blocks), "\n"), " \t\r\n"))
		}
		if i == 0 {
			comp = append(comp, d.Geometry.Line()+"\n")
		}
		comp = append(comp, "Step_end\n")
	}
	comp = append(comp, "EndRun")

	var b strings.Builder
	b.WriteString(strings.TrimSpace(strings.Join(header, "\n")))
	b.WriteString("\n\n")
	if len(d.Blocks) > 0 {
		b.WriteString(strings.TrimRight(strings.Join(normalizeBlocks(d.Blocks), "\n"), " \t\r\n"))
		b.WriteString("\n\n")
	}
	b.WriteString(strings.Join(comp, "\n"))
	b.WriteString("\n")
	return b.String(), nil
}

// NEB defaults.
const (
	DefaultSpringConst = 0.01
	DefaultNEBMaxIter  = 200
	DefaultNEBImages   = 10
)

// NEB is a nudged-elastic-band document. Geometry binds the start point;
// EndXYZ and TSGuessXYZ are referenced from the %NEB section.
type NEB struct {
	Spec      JobSpec
	Mode      NEBMode
	Geometry  Geometry
	Resources ResourceSpec

	EndXYZ      string
	TSGuessXYZ  string
	SpringConst float64
	MaxIter     int
	Images      int
}

// Render implements Document.
func (d NEB) Render() (string, error) {
	if strings.TrimSpace(d.EndXYZ) == "" {
		return "", configErrorf("NEB requires an end-point geometry")
	}
	if err := d.Resources.Validate(); err != nil {
		return "", err
	}
	if err := d.Geometry.Validate(); err != nil {
		return "", err
	}

	spec := d.Spec
	spec.Kind = d.Mode.Kind()
	header := BangLine(spec)
	if d.Resources.Style == PalBang {
		header += "\n\n" + palBang(d.Resources.Procs)
	}
	blocks := controlSections(d.Resources, 0)

	neb := []string{"%NEB", "  NEB_END_XYZFILE \"" + d.EndXYZ + "\""}
	if d.TSGuessXYZ != "" {
		neb = append(neb, "  NEB_TS_XYZFILE \""+d.TSGuessXYZ+"\"")
	}
	neb = append(neb,
		"  SpringConst "+formatFloat(d.SpringConst),
		"  MAXITER "+strconv.Itoa(d.MaxIter),
		"  NImages "+strconv.Itoa(d.Images),
		"end",
	)

	chunks := []string{
		header,
		strings.Join(blocks, "\n"),
		strings.Join(neb, "\n"),
		d.Geometry.Line() + "\n",
	}
	return strings.Join(chunks, "\n\n") + "\n", nil
}

// formatFloat renders v as the shortest round-tripping decimal. Magnitudes
// in [1e-4, 1e16) use plain notation with ".0" kept for whole numbers;
// anything else uses an exponent ("1e-05", "1.5e+16").
func formatFloat(v float64) string {
	a := math.Abs(v)
	if math.IsNaN(v) || math.IsInf(v, 0) || (a != 0 && (a < 1e-4 || a >= 1e16)) {
		return strconv.FormatFloat(v, 'g', -1, 64)
	}
	s := strconv.FormatFloat(v, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

var (
	_ Document = Single{}
	_ Document = Compound{}
	_ Document = NEB{}
)
