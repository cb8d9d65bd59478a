// Package config loads orcakit configuration.
//
// Precedence, lowest to highest: built-in defaults, the config file
// (YAML; $XDG_CONFIG_HOME/orcakit/config.yaml or ORCAKIT_CONFIG), ORCAKIT_*
// environment variables, runtime overrides (command-line flags).
package config

import (
	"time"
)

// Config is the fully resolved orcakit configuration.
type Config struct {
	Input    InputConfig    `mapstructure:"input"`
	Slurm    SlurmConfig    `mapstructure:"slurm"`
	Status   StatusConfig   `mapstructure:"status"`
	Logging  LoggingConfig  `mapstructure:"logging"`
	Registry RegistryConfig `mapstructure:"registry"`

	// ReadOnly blocks scheduler mutations (sbatch, scancel).
	ReadOnly bool `mapstructure:"readonly"`
}

// InputConfig holds defaults for generated ORCA inputs.
type InputConfig struct {
	Method    string `mapstructure:"method"`
	Basis     string `mapstructure:"basis"`
	Grid      string `mapstructure:"grid"`
	Job       string `mapstructure:"job"`
	Charge    int    `mapstructure:"charge"`
	Mult      int    `mapstructure:"mult"`
	NStates   int    `mapstructure:"nstates"`
	Procs     int    `mapstructure:"pal"`
	MaxCoreMB int    `mapstructure:"maxcore_mb"`
	PalStyle  string `mapstructure:"pal_style"`
	Pattern   string `mapstructure:"pattern"`

	// Compound stages fall back to these when a stage names no method/basis.
	StageMethod string `mapstructure:"stage_method"`
	StageBasis  string `mapstructure:"stage_basis"`

	// NEBMethod is the method used for NEB documents when none is given.
	NEBMethod string `mapstructure:"neb_method"`
}

// SlurmConfig holds batch-script and submission defaults.
type SlurmConfig struct {
	Partition string   `mapstructure:"partition"`
	Time      string   `mapstructure:"time"`
	Exclusive bool     `mapstructure:"exclusive"`
	Workdir   string   `mapstructure:"workdir"`
	Clean     string   `mapstructure:"clean"`
	ORCAPath  string   `mapstructure:"orca_path"`
	MPIPrefix string   `mapstructure:"mpi_prefix"`
	Modules   []string `mapstructure:"modules"`

	// SubmitRate limits sbatch calls per second during bulk submission.
	SubmitRate float64 `mapstructure:"submit_rate"`
}

// StatusConfig holds job status display settings.
type StatusConfig struct {
	WatchInterval time.Duration `mapstructure:"watch_interval"`

	// SSHDomain is appended to bare node names for remote node info.
	SSHDomain   string   `mapstructure:"ssh_domain"`
	ScratchDirs []string `mapstructure:"scratch_dirs"`
}

// LoggingConfig controls CLI logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// RegistryConfig controls where submitted jobs are recorded.
type RegistryConfig struct {
	// Dir overrides the default <app data dir>/jobs location.
	Dir string `mapstructure:"dir"`
}
