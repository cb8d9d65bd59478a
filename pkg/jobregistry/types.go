// Package jobregistry keeps a local record of every batch job orcakit
// submitted. It never talks to the scheduler.
package jobregistry

import "time"

// State is the registry's view of a submission.
//
// These values are persisted in job.json.
type State string

const (
	StateSubmitted State = "submitted"
	StateCancelled State = "cancelled"
	StateUnknown   State = "unknown"
)

// JobRecord is the persistent record written to job.json. Fields are only
// ever added.
type JobRecord struct {
	RecordID   string `json:"record_id"`
	SlurmJobID string `json:"slurm_job_id"`
	Name       string `json:"name,omitempty"`
	State      State  `json:"state"`
	InputPath  string `json:"input_path"`
	ScriptPath string `json:"script_path"`
	Partition  string `json:"partition,omitempty"`
	NodeList   string `json:"nodelist,omitempty"`
	Workdir    string `json:"workdir,omitempty"`
	NTasks     int    `json:"ntasks,omitempty"`
	MemoryMB   int    `json:"memory_mb,omitempty"`
	Host       string `json:"submit_host,omitempty"`
	RunID      string `json:"run_id,omitempty"`

	SubmittedAt time.Time  `json:"submitted_at"`
	UpdatedAt   *time.Time `json:"updated_at,omitempty"`
}
