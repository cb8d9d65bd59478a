package orca

import (
	"fmt"
	"strings"
)

const (
	// DefaultConvergence is inserted unless the user supplies a convergence token.
	DefaultConvergence = "TightSCF"

	// RestartReadToken asks ORCA to read orbitals from the %moinp file.
	RestartReadToken = "moread"
)

// convergence prefixes that suppress DefaultConvergence.
var convergencePrefixes = []string{"tightscf", "loosescf"}

// basis values meaning "no basis token".
var omitBasis = map[string]struct{}{
	"None": {},
	"-":    {},
	"NA":   {},
}

// JobSpec describes the chemistry of one directive line.
type JobSpec struct {
	Method string
	Basis  string
	Kind   JobKind
	Grid   string

	// CPCM and SMD name implicit solvents. Both may be set; no exclusivity
	// is enforced.
	CPCM string
	SMD  string

	// Extra tokens are appended verbatim, in order, without deduplication.
	Extra []string

	// MOInput is the restart orbital file (%moinp). Optional.
	MOInput string
}

// ParseExtras splits extra-token arguments on commas and whitespace.
//
// Each input item may hold several tokens ("SlowConv defgrid3,tightSCF").
// Empty tokens are dropped; order is preserved; duplicates are kept.
func ParseExtras(items []string) []string {
	var toks []string
	for _, item := range items {
		for _, t := range strings.Fields(strings.ReplaceAll(item, ",", " ")) {
			if t != "" {
				toks = append(toks, t)
			}
		}
	}
	return toks
}

// BangLine builds the "!" directive line for spec.
//
// Token order is fixed: method, basis, grid, default convergence, job-kind
// keywords, CPCM, SMD, extras, forced tokens. Empty tokens are dropped.
func BangLine(spec JobSpec, force ...string) string {
	var toks []string
	toks = append(toks, spec.Method)
	if _, omit := omitBasis[spec.Basis]; !omit {
		toks = append(toks, spec.Basis)
	}
	toks = append(toks, spec.Grid)
	if !hasConvergenceOverride(spec.Extra) {
		toks = append(toks, DefaultConvergence)
	}
	toks = append(toks, spec.Kind.Keywords()...)
	if spec.CPCM != "" {
		toks = append(toks, fmt.Sprintf("CPCM(%s)", spec.CPCM))
	}
	if spec.SMD != "" {
		toks = append(toks, fmt.Sprintf("SMD(%s)", spec.SMD))
	}
	toks = append(toks, spec.Extra...)
	toks = append(toks, force...)
	return joinBangTokens(toks)
}

// DirectiveLine is BangLine after applying the restart-read rule: when a
// %moinp file is set and no extra token already requests MORead, the
// restart-read token is appended to the extras.
func DirectiveLine(spec JobSpec) string {
	return BangLine(spec.withRestartRead())
}

func (s JobSpec) withRestartRead() JobSpec {
	if s.MOInput == "" || hasToken(s.Extra, RestartReadToken) {
		return s
	}
	extra := make([]string, 0, len(s.Extra)+1)
	extra = append(extra, s.Extra...)
	s.Extra = append(extra, RestartReadToken)
	return s
}

func hasConvergenceOverride(extra []string) bool {
	for _, t := range extra {
		lower := strings.ToLower(t)
		for _, p := range convergencePrefixes {
			if strings.HasPrefix(lower, p) {
				return true
			}
		}
	}
	return false
}

func hasToken(toks []string, want string) bool {
	for _, t := range toks {
		if strings.EqualFold(t, want) {
			return true
		}
	}
	return false
}

func joinBangTokens(toks []string) string {
	kept := toks[:0:0]
	for _, t := range toks {
		if t != "" {
			kept = append(kept, t)
		}
	}
	return "! " + strings.Join(kept, " ")
}
