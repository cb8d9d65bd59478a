package orca

import (
	"fmt"
	"strings"
	"unicode"
)

const (
	// DefaultSCFMaxIter is the SCF iteration ceiling written into every document.
	DefaultSCFMaxIter = 300

	// DefaultNStates is the TDDFT root count used when none is given.
	DefaultNStates = 10
)

// PalStyle selects how parallelism is rendered.
type PalStyle string

const (
	// PalBlock renders a "%pal nprocs N end" section.
	PalBlock PalStyle = "block"

	// PalBang renders a "! PALN" directive line.
	PalBang PalStyle = "bang"
)

// ParsePalStyle parses "block" or "bang".
func ParsePalStyle(s string) (PalStyle, error) {
	switch p := PalStyle(strings.ToLower(strings.TrimSpace(s))); p {
	case PalBlock, PalBang:
		return p, nil
	default:
		return "", configErrorf("unknown pal style %q (valid: block, bang)", s)
	}
}

// ResourceSpec holds parallelism and memory settings.
type ResourceSpec struct {
	Procs     int
	MaxCoreMB int
	Style     PalStyle
}

// Validate checks that the resource values are renderable.
func (r ResourceSpec) Validate() error {
	if r.Procs < 1 {
		return configErrorf("procs must be positive, got %d", r.Procs)
	}
	if r.MaxCoreMB < 1 {
		return configErrorf("maxcore must be positive, got %d MB", r.MaxCoreMB)
	}
	if r.Style != PalBlock && r.Style != PalBang {
		return configErrorf("unknown pal style %q", r.Style)
	}
	return nil
}

// Geometry binds the molecular coordinates of a document.
type Geometry struct {
	// Path is the xyz file reference written into the document.
	Path   string
	Charge int
	Mult   int
}

// Validate checks that the geometry line can be rendered.
func (g Geometry) Validate() error {
	if strings.TrimSpace(g.Path) == "" {
		return configErrorf("geometry reference is empty")
	}
	if g.Mult < 1 {
		return configErrorf("multiplicity must be positive, got %d", g.Mult)
	}
	return nil
}

// Line renders the geometry-binding line without trailing newline.
func (g Geometry) Line() string {
	return fmt.Sprintf("* xyzfile %d %d %s", g.Charge, g.Mult, g.Path)
}

func palBlock(procs int) string {
	return fmt.Sprintf("%%pal\n  nprocs %d\nend", procs)
}

func palBang(procs int) string {
	return fmt.Sprintf("! PAL%d", procs)
}

func maxCoreBlock(mb int) string {
	return fmt.Sprintf("%%MaxCore %d", mb)
}

func scfBlock(maxIter int) string {
	return fmt.Sprintf("%%scf\n  MaxIter %d\nend", maxIter)
}

func tddftBlock(nroots int) string {
	return fmt.Sprintf("%%tddft\n  nroots %d\nend", nroots)
}

func moinpLine(path string) string {
	return fmt.Sprintf("%%moinp \"%s\"", path)
}

// controlSections returns the resource and control sections in fixed order:
// pal (block style only), maxcore, tddft (if nstates > 0), scf.
func controlSections(res ResourceSpec, nstates int) []string {
	var blocks []string
	if res.Style == PalBlock {
		blocks = append(blocks, palBlock(res.Procs))
	}
	blocks = append(blocks, maxCoreBlock(res.MaxCoreMB))
	if nstates > 0 {
		blocks = append(blocks, tddftBlock(nstates))
	}
	blocks = append(blocks, scfBlock(DefaultSCFMaxIter))
	return blocks
}

// NormalizeBlock trims trailing whitespace and appends a single newline.
func NormalizeBlock(text string) string {
	return strings.TrimRightFunc(text, unicode.IsSpace) + "\n"
}

func normalizeBlocks(blocks []string) []string {
	out := make([]string, len(blocks))
	for i, b := range blocks {
		out[i] = NormalizeBlock(b)
	}
	return out
}

func nstatesFor(kind JobKind, nstates int) int {
	if kind != KindTDDFT {
		return 0
	}
	if nstates < 1 {
		return DefaultNStates
	}
	return nstates
}
