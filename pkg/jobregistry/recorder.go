package jobregistry

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Submission describes one successful sbatch call.
type Submission struct {
	SlurmJobID string
	Name       string
	InputPath  string
	ScriptPath string
	Partition  string
	NodeList   string
	Workdir    string
	NTasks     int
	MemoryMB   int
	RunID      string
}

// Recorder turns submissions into stored records.
type Recorder struct {
	store *Store
	now   func() time.Time
}

func NewRecorder(root string) *Recorder {
	return &Recorder{store: NewStore(root), now: time.Now}
}

func (r *Recorder) Store() *Store {
	return r.store
}

// Record assigns a record id and persists sub with state submitted.
// Relative paths are made absolute so history stays meaningful from any
// directory.
func (r *Recorder) Record(sub Submission) (*JobRecord, error) {
	if r == nil || r.store == nil {
		return nil, fmt.Errorf("recorder is not initialized")
	}
	if sub.SlurmJobID == "" {
		return nil, fmt.Errorf("slurm job id is required")
	}

	host, _ := os.Hostname()
	record := &JobRecord{
		RecordID:    uuid.New().String(),
		SlurmJobID:  sub.SlurmJobID,
		Name:        sub.Name,
		State:       StateSubmitted,
		InputPath:   absPath(sub.InputPath),
		ScriptPath:  absPath(sub.ScriptPath),
		Partition:   sub.Partition,
		NodeList:    sub.NodeList,
		Workdir:     sub.Workdir,
		NTasks:      sub.NTasks,
		MemoryMB:    sub.MemoryMB,
		Host:        host,
		RunID:       sub.RunID,
		SubmittedAt: r.now().UTC(),
	}
	if err := r.store.Write(record); err != nil {
		return nil, err
	}
	return record, nil
}

func absPath(p string) string {
	if p == "" {
		return ""
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}
