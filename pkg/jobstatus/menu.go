package jobstatus

import (
	"fmt"

	"github.com/chemflow/orcakit/pkg/slurm"
)

// CancellableJobs filters jobs to those the cancel menu offers.
func CancellableJobs(jobs []slurm.Job) []slurm.Job {
	var out []slurm.Job
	for _, j := range jobs {
		if slurm.IsCancellable(j.State) {
			out = append(out, j)
		}
	}
	return out
}

// RunningWithNode filters jobs to running ones with an assigned node.
func RunningWithNode(jobs []slurm.Job) []slurm.Job {
	var out []slurm.Job
	for _, j := range jobs {
		if slurm.IsRunning(j.State) && j.Node() != "" {
			out = append(out, j)
		}
	}
	return out
}

// CancelChoice is the menu label for a cancellable job.
func CancelChoice(j slurm.Job) string {
	return fmt.Sprintf("job=%s  state=%s  name=%s  node=%s  elapsed=%s  cpus=%s  mem=%s  part=%s",
		j.ID, j.State, j.Name, orDefault(j.Node(), "-"), j.Elapsed, j.CPUs, j.Memory, j.Partition)
}

// SSHChoice is the menu label for a running job.
func SSHChoice(j slurm.Job) string {
	return fmt.Sprintf("job=%s  node=%s  name=%s  elapsed=%s  cpus=%s  mem=%s  part=%s",
		j.ID, j.Node(), j.Name, j.Elapsed, j.CPUs, j.Memory, j.Partition)
}
