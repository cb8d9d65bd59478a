// Package slurm generates ORCA batch scripts and wraps the Slurm command
// line tools (sbatch, squeue, sacct, scontrol, sstat, scancel).
//
// Every external command goes through a Runner so callers and tests can
// substitute their own execution.
package slurm
