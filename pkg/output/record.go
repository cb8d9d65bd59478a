// Package output provides JSONL output for orcakit commands.
//
// Output is structured as typed record envelopes. Each line is a
// self-contained JSON object that can be parsed independently.
package output

import (
	"encoding/json"
	"errors"
	"time"
)

// Record type constants follow the pattern orcakit.<type>.v<version>.
const (
	TypeInput   = "orcakit.input.v1"
	TypeSkip    = "orcakit.skip.v1"
	TypeSubmit  = "orcakit.submit.v1"
	TypeJob     = "orcakit.job.v1"
	TypeNode    = "orcakit.node.v1"
	TypeError   = "orcakit.error.v1"
	TypeSummary = "orcakit.summary.v1"
)

// Record is the envelope for all JSONL output.
type Record struct {
	Type string    `json:"type"`
	TS   time.Time `json:"ts"`

	// RunID correlates every record of one command invocation.
	RunID string `json:"run_id"`

	// Scheduler names the batch system ("slurm").
	Scheduler string `json:"scheduler"`

	Data json.RawMessage `json:"data"`
}

// InputRecord reports one generated ORCA input.
type InputRecord struct {
	Geometry string `json:"geometry,omitempty"`
	Path     string `json:"path"`

	// Layout is single, compound or neb.
	Layout string   `json:"layout"`
	Jobs   []string `json:"jobs"`
	Bytes  int      `json:"bytes"`

	// DryRun is set when the document was printed instead of written.
	DryRun bool `json:"dry_run,omitempty"`
}

// SkipRecord reports work that was deliberately not done.
type SkipRecord struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// Skip reasons.
const (
	SkipReasonExists   = "exists"
	SkipReasonReadOnly = "readonly"
)

// SubmitRecord reports a generated (and possibly submitted) batch script.
type SubmitRecord struct {
	Input      string `json:"input"`
	Script     string `json:"script"`
	NTasks     int    `json:"ntasks"`
	MemoryMB   int    `json:"memory_mb"`
	Partition  string `json:"partition"`
	Submitted  bool   `json:"submitted"`
	SlurmJobID string `json:"slurm_job_id,omitempty"`
	RecordID   string `json:"record_id,omitempty"`
}

// JobRecord is one scheduler job row.
type JobRecord struct {
	JobID     string `json:"job_id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Elapsed   string `json:"elapsed"`
	CPUs      string `json:"cpus"`
	Memory    string `json:"mem"`
	Partition string `json:"partition"`
	Node      string `json:"node"`
	Source    string `json:"source"`
}

// Job sources.
const (
	SourceQueue    = "squeue"
	SourceHistory  = "sacct"
	SourceRegistry = "registry"
)

// ErrorRecord reports a per-item failure that did not stop the command.
type ErrorRecord struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
	JobID   string `json:"job_id,omitempty"`
}

// Error codes for ErrorRecord.
const (
	ErrCodeInvalidInput = "INVALID_INPUT"
	ErrCodeNotFound     = "NOT_FOUND"
	ErrCodeWrite        = "WRITE_FAILED"
	ErrCodeScheduler    = "SCHEDULER"
	ErrCodeInternal     = "INTERNAL"
)

// SummaryRecord closes a batch command.
type SummaryRecord struct {
	Generated     int           `json:"generated"`
	Skipped       int           `json:"skipped"`
	Submitted     int           `json:"submitted,omitempty"`
	Errors        int           `json:"errors"`
	Duration      time.Duration `json:"duration_ns"`
	DurationHuman string        `json:"duration"`
}

// ErrWriterClosed is returned when writing to a closed writer.
var ErrWriterClosed = errors.New("writer is closed")

// WriteError wraps errors that occur during write operations.
type WriteError struct {
	Op  string // Operation that failed (e.g., "marshal_data", "write")
	Err error  // Underlying error
}

func (e *WriteError) Error() string {
	return "output: " + e.Op + ": " + e.Err.Error()
}

func (e *WriteError) Unwrap() error {
	return e.Err
}
