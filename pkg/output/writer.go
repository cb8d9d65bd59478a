package output

import (
	"context"
	"encoding/json"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
)

// SchedulerSlurm is the scheduler name stamped on every record.
const SchedulerSlurm = "slurm"

// Writer outputs JSONL records. Implementations must be safe for
// concurrent use.
type Writer interface {
	WriteInput(ctx context.Context, rec *InputRecord) error
	WriteSkip(ctx context.Context, rec *SkipRecord) error
	WriteSubmit(ctx context.Context, rec *SubmitRecord) error
	WriteJob(ctx context.Context, rec *JobRecord) error
	WriteNode(ctx context.Context, rec any) error
	WriteError(ctx context.Context, rec *ErrorRecord) error
	WriteSummary(ctx context.Context, rec *SummaryRecord) error
	Close() error
}

// JSONLWriter writes records as newline-delimited JSON to an io.Writer.
// Writes are serialized so lines never interleave.
type JSONLWriter struct {
	w         io.Writer
	runID     string
	scheduler string
	now       func() time.Time
	mu        sync.Mutex
	closed    bool
}

// NewJSONLWriter creates a writer stamping runID on every record. An empty
// runID gets a fresh UUID.
func NewJSONLWriter(w io.Writer, runID string) *JSONLWriter {
	if runID == "" {
		runID = NewRunID()
	}
	return &JSONLWriter{
		w:         w,
		runID:     runID,
		scheduler: SchedulerSlurm,
		now:       time.Now,
	}
}

// NewRunID returns a fresh correlation id.
func NewRunID() string {
	return uuid.New().String()
}

// RunID returns the correlation id stamped on records.
func (jw *JSONLWriter) RunID() string {
	return jw.runID
}

func (jw *JSONLWriter) WriteInput(ctx context.Context, rec *InputRecord) error {
	return jw.writeRecord(ctx, TypeInput, rec)
}

func (jw *JSONLWriter) WriteSkip(ctx context.Context, rec *SkipRecord) error {
	return jw.writeRecord(ctx, TypeSkip, rec)
}

func (jw *JSONLWriter) WriteSubmit(ctx context.Context, rec *SubmitRecord) error {
	return jw.writeRecord(ctx, TypeSubmit, rec)
}

func (jw *JSONLWriter) WriteJob(ctx context.Context, rec *JobRecord) error {
	return jw.writeRecord(ctx, TypeJob, rec)
}

// WriteNode emits a node record; rec is any JSON-marshalable node summary.
func (jw *JSONLWriter) WriteNode(ctx context.Context, rec any) error {
	return jw.writeRecord(ctx, TypeNode, rec)
}

func (jw *JSONLWriter) WriteError(ctx context.Context, rec *ErrorRecord) error {
	return jw.writeRecord(ctx, TypeError, rec)
}

func (jw *JSONLWriter) WriteSummary(ctx context.Context, rec *SummaryRecord) error {
	return jw.writeRecord(ctx, TypeSummary, rec)
}

// Close marks the writer as closed. The underlying writer is not closed.
func (jw *JSONLWriter) Close() error {
	jw.mu.Lock()
	defer jw.mu.Unlock()
	jw.closed = true
	return nil
}

func (jw *JSONLWriter) writeRecord(ctx context.Context, recordType string, data any) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// marshal the payload outside the lock
	dataBytes, err := json.Marshal(data)
	if err != nil {
		return &WriteError{Op: "marshal_data", Err: err}
	}

	jw.mu.Lock()
	defer jw.mu.Unlock()

	if jw.closed {
		return ErrWriterClosed
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	record := Record{
		Type:      recordType,
		TS:        jw.now().UTC(),
		RunID:     jw.runID,
		Scheduler: jw.scheduler,
		Data:      dataBytes,
	}
	recordBytes, err := json.Marshal(record)
	if err != nil {
		return &WriteError{Op: "marshal_record", Err: err}
	}

	// io.Writer may return n < len(p) with a nil error; a truncated line
	// would corrupt the stream.
	recordBytes = append(recordBytes, '\n')
	if err := writeAll(jw.w, recordBytes); err != nil {
		return &WriteError{Op: "write", Err: err}
	}
	return nil
}

func writeAll(w io.Writer, p []byte) error {
	for len(p) > 0 {
		n, err := w.Write(p)
		if err != nil {
			return err
		}
		if n == 0 {
			return io.ErrShortWrite
		}
		p = p[n:]
	}
	return nil
}

var _ Writer = (*JSONLWriter)(nil)
