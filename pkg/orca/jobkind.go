package orca

import (
	"sort"
	"strings"
)

// JobKind selects the job-type keywords placed on the directive line.
type JobKind string

const (
	KindSP      JobKind = "sp"
	KindOpt     JobKind = "opt"
	KindFreq    JobKind = "freq"
	KindOptFreq JobKind = "optfreq"
	KindOptTS   JobKind = "optts"
	KindTDDFT   JobKind = "tddft"
	KindNEB     JobKind = "neb"
	KindNEBCI   JobKind = "nebci"
	KindNEBTS   JobKind = "nebts"
)

var jobKeywords = map[JobKind][]string{
	KindSP:      {},
	KindOpt:     {"Opt"},
	KindFreq:    {"Freq"},
	KindOptFreq: {"Opt", "Freq"},
	KindOptTS:   {"OptTS"},
	KindTDDFT:   {},
	KindNEB:     {"NEB"},
	KindNEBCI:   {"NEB-CI"},
	KindNEBTS:   {"NEB-TS"},
}

// ParseJobKind parses a job kind name case-insensitively.
func ParseJobKind(s string) (JobKind, error) {
	k := JobKind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := jobKeywords[k]; !ok {
		return "", configErrorf("unknown job kind %q (valid: %s)", s, strings.Join(JobKindNames(), ", "))
	}
	return k, nil
}

// JobKindNames returns all job kind names in sorted order.
func JobKindNames() []string {
	names := make([]string, 0, len(jobKeywords))
	for k := range jobKeywords {
		names = append(names, string(k))
	}
	sort.Strings(names)
	return names
}

// Keywords returns the directive-line keywords for the kind.
// Unknown kinds contribute no keywords.
func (k JobKind) Keywords() []string {
	kw := jobKeywords[k]
	out := make([]string, len(kw))
	copy(out, kw)
	return out
}

// IsNEB reports whether the kind is one of the NEB variants.
func (k JobKind) IsNEB() bool {
	return k == KindNEB || k == KindNEBCI || k == KindNEBTS
}

// NEBMode is the interpolation variant for NEB documents.
type NEBMode string

const (
	NEBBasic NEBMode = "neb"
	NEBCI    NEBMode = "neb-ci"
	NEBTS    NEBMode = "neb-ts"
)

// ParseNEBMode parses a mode name ("neb", "neb-ci", "neb-ts").
func ParseNEBMode(s string) (NEBMode, error) {
	switch m := NEBMode(strings.ToLower(strings.TrimSpace(s))); m {
	case NEBBasic, NEBCI, NEBTS:
		return m, nil
	default:
		return "", configErrorf("unknown NEB mode %q (valid: neb, neb-ci, neb-ts)", s)
	}
}

// NEBModeForKind maps a NEB job kind onto its mode. Non-NEB kinds map to NEBBasic.
func NEBModeForKind(k JobKind) NEBMode {
	switch k {
	case KindNEBCI:
		return NEBCI
	case KindNEBTS:
		return NEBTS
	default:
		return NEBBasic
	}
}

// Kind returns the job kind carrying this mode's keyword.
func (m NEBMode) Kind() JobKind {
	switch m {
	case NEBCI:
		return KindNEBCI
	case NEBTS:
		return KindNEBTS
	default:
		return KindNEB
	}
}
