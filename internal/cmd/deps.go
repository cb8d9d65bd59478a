package cmd

import (
	"github.com/chemflow/orcakit/internal/prompt"
	"github.com/chemflow/orcakit/pkg/slurm"
)

// Scheduler and prompt constructors. Tests swap these for fakes.
var (
	newRunner = func() slurm.Runner { return slurm.ExecRunner{} }

	newPrompter = func() prompt.Driver { return prompt.NewSurveyDriver() }
)
