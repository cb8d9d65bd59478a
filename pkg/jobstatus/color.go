// Package jobstatus renders Slurm job tables, node information and the
// interactive watch loop.
package jobstatus

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/gookit/color"

	"github.com/chemflow/orcakit/pkg/slurm"
)

// Styles used across the status views.
var (
	StyleHeader   = color.New(color.OpBold, color.FgCyan)
	StyleDim      = color.New(color.OpFuzzy)
	StyleLabel    = color.New(color.OpBold, color.FgYellow)
	StyleNode     = color.New(color.FgCyan)
	StylePrompt   = color.New(color.OpBold, color.FgMagenta)
	StyleOK       = color.New(color.FgGreen)
	StyleOKBold   = color.New(color.OpBold, color.FgGreen)
	StyleWarn     = color.New(color.FgYellow)
	StyleWarnBold = color.New(color.OpBold, color.FgYellow)
	StyleErr      = color.New(color.FgRed)
	StyleErrBold  = color.New(color.OpBold, color.FgRed)
)

var stateStyles = map[string]color.Style{
	slurm.StateRunning:     color.New(color.FgGreen),
	slurm.StateCompleted:   color.New(color.FgCyan),
	slurm.StatePending:     color.New(color.FgYellow),
	slurm.StateCompleting:  color.New(color.FgCyan),
	slurm.StateConfiguring: color.New(color.FgYellow),
	slurm.StateFailed:      color.New(color.FgRed),
	slurm.StateCancelled:   color.New(color.FgMagenta),
	slurm.StateTimeout:     color.New(color.FgRed),
	slurm.StateOutOfMemory: color.New(color.FgRed),
	slurm.StateSuspended:   color.New(color.FgMagenta),
}

// Painter applies ANSI styles when Enabled.
//
// Escapes are written directly instead of through gookit's terminal
// detection so --color works when stdout is a pipe.
type Painter struct {
	Enabled bool
}

// Paint wraps s in style's escape sequence.
func (p Painter) Paint(style color.Style, s string) string {
	if !p.Enabled || len(style) == 0 || s == "" {
		return s
	}
	return fmt.Sprintf(color.FullColorTpl, style.Code(), s)
}

// State colors a scheduler state by its canonical key; the raw text is
// kept. Unknown states are left plain.
func (p Painter) State(state string) string {
	style, ok := stateStyles[slurm.NormalizeState(state)]
	if !ok {
		return state
	}
	return p.Paint(style, state)
}

// VisibleLen is the printed width of s, ignoring ANSI color codes.
func VisibleLen(s string) int {
	return utf8.RuneCountInString(color.ClearCode(s))
}

// ColorDecision resolves whether to emit colors.
type ColorDecision struct {
	ForceOn  bool
	ForceOff bool
	IsTTY    bool
	Getenv   func(string) string
}

// Enabled applies --no-color, then TTY, --color, FORCE_COLOR and
// CLICOLOR_FORCE.
func (d ColorDecision) Enabled() bool {
	if d.ForceOff {
		return false
	}
	if d.IsTTY || d.ForceOn {
		return true
	}
	if d.Getenv == nil {
		return false
	}
	switch strings.ToLower(d.Getenv("FORCE_COLOR")) {
	case "1", "true", "yes":
		return true
	}
	return d.Getenv("CLICOLOR_FORCE") == "1"
}
