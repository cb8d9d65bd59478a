package config

import (
	"fmt"
	"strings"
)

// Validate checks value ranges and enumerations.
func (c *Config) Validate() error {
	var problems []string

	if c.Input.Procs < 1 {
		problems = append(problems, fmt.Sprintf("input.pal must be positive (got %d)", c.Input.Procs))
	}
	if c.Input.MaxCoreMB < 1 {
		problems = append(problems, fmt.Sprintf("input.maxcore_mb must be positive (got %d)", c.Input.MaxCoreMB))
	}
	if c.Input.Mult < 1 {
		problems = append(problems, fmt.Sprintf("input.mult must be positive (got %d)", c.Input.Mult))
	}
	switch c.Input.PalStyle {
	case "block", "bang":
	default:
		problems = append(problems, fmt.Sprintf("input.pal_style must be block or bang (got %q)", c.Input.PalStyle))
	}
	switch c.Slurm.Workdir {
	case "lscratch", "scratch", "pwd":
	default:
		problems = append(problems, fmt.Sprintf("slurm.workdir must be lscratch, scratch or pwd (got %q)", c.Slurm.Workdir))
	}
	switch c.Slurm.Clean {
	case "standard", "standart", "copy_tmp":
	default:
		problems = append(problems, fmt.Sprintf("slurm.clean must be standard or copy_tmp (got %q)", c.Slurm.Clean))
	}
	if c.Slurm.SubmitRate < 0 {
		problems = append(problems, fmt.Sprintf("slurm.submit_rate must not be negative (got %g)", c.Slurm.SubmitRate))
	}
	if c.Status.WatchInterval < 0 {
		problems = append(problems, fmt.Sprintf("status.watch_interval must not be negative (got %s)", c.Status.WatchInterval))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}
