package jobregistry

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrNotFound is returned when no record matches.
var ErrNotFound = errors.New("job record not found")

// Store persists and loads JobRecords from an on-disk directory.
//
// Directory layout:
//
//	<root>/<record_id>/job.json
//
// Root is expected to be under the app data dir.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: strings.TrimSpace(root)}
}

func (s *Store) RootDir() string {
	return s.root
}

func (s *Store) RecordDir(recordID string) string {
	return filepath.Join(s.root, recordID)
}

func (s *Store) RecordPath(recordID string) string {
	return filepath.Join(s.RecordDir(recordID), "job.json")
}

func (s *Store) ensureRoot() error {
	if s.root == "" {
		return fmt.Errorf("job registry root dir is empty")
	}
	return os.MkdirAll(s.root, 0o755)
}

// Write stores record atomically (temp file plus rename).
func (s *Store) Write(record *JobRecord) error {
	if record == nil {
		return fmt.Errorf("job record is nil")
	}
	id := strings.TrimSpace(record.RecordID)
	if id == "" {
		return fmt.Errorf("record_id is required")
	}
	if err := s.ensureRoot(); err != nil {
		return err
	}

	dir := s.RecordDir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create record dir: %w", err)
	}

	b, err := json.MarshalIndent(record, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal job record: %w", err)
	}
	b = append(b, '\n')

	tmp, err := os.CreateTemp(dir, "job.json.tmp.*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer func() { _ = os.Remove(tmpName) }()

	if _, err := tmp.Write(b); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("write temp job file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp job file: %w", err)
	}
	if err := os.Rename(tmpName, s.RecordPath(id)); err != nil {
		return fmt.Errorf("rename job file: %w", err)
	}
	return nil
}

// Get loads one record by record id.
func (s *Store) Get(recordID string) (*JobRecord, error) {
	recordID = strings.TrimSpace(recordID)
	if recordID == "" {
		return nil, fmt.Errorf("record_id is required")
	}
	b, err := os.ReadFile(s.RecordPath(recordID))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, recordID)
		}
		return nil, err
	}

	trimmed := strings.TrimSpace(string(b))
	if trimmed == "" {
		return nil, fmt.Errorf("job.json is empty")
	}
	var record JobRecord
	if err := json.Unmarshal([]byte(trimmed), &record); err != nil {
		return nil, fmt.Errorf("parse job.json: %w", err)
	}
	return &record, nil
}

// List returns every readable record, newest submission first. A missing
// root yields no records.
func (s *Store) List() ([]JobRecord, error) {
	if s.root == "" {
		return nil, fmt.Errorf("job registry root dir is empty")
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read jobs root: %w", err)
	}

	out := make([]JobRecord, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		r, err := s.Get(entry.Name())
		if err != nil {
			continue
		}
		out = append(out, *r)
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].SubmittedAt.After(out[j].SubmittedAt)
	})
	return out, nil
}

// FindBySlurmID returns the newest record for a scheduler job id.
func (s *Store) FindBySlurmID(slurmJobID string) (*JobRecord, error) {
	records, err := s.List()
	if err != nil {
		return nil, err
	}
	for i := range records {
		if records[i].SlurmJobID == slurmJobID {
			return &records[i], nil
		}
	}
	return nil, fmt.Errorf("%w: slurm job %s", ErrNotFound, slurmJobID)
}

// SetState updates the state of the record for a scheduler job id.
func (s *Store) SetState(slurmJobID string, state State, at time.Time) (*JobRecord, error) {
	r, err := s.FindBySlurmID(slurmJobID)
	if err != nil {
		return nil, err
	}
	r.State = state
	ts := at.UTC()
	r.UpdatedAt = &ts
	if err := s.Write(r); err != nil {
		return nil, err
	}
	return r, nil
}
