package manifest

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	schemasassets "github.com/chemflow/orcakit/internal/assets/schemas"
	"github.com/chemflow/orcakit/pkg/orca"
	"github.com/fulmenhq/gofulmen/schema"
)

// SchemaID is the schema identifier for input manifests.
const SchemaID = "orcakit/v1.0.0/input-manifest"

var (
	// ErrSchemaNotFound is returned when the embedded schema is missing.
	ErrSchemaNotFound = errors.New("manifest schema not found")

	// ErrValidationFailed is wrapped by every ValidationErrors.
	ErrValidationFailed = errors.New("manifest validation failed")
)

var (
	compileOnce sync.Once
	compiled    *schema.Validator
	compileErr  error
)

// ValidationError is one problem found in a manifest.
type ValidationError struct {
	// Path is a JSON pointer such as "/stages/0/job".
	Path    string
	Message string
}

func (e ValidationError) Error() string {
	if e.Path == "" {
		return e.Message
	}
	return e.Path + ": " + e.Message
}

// ValidationErrors lists every problem found in one manifest.
type ValidationErrors []ValidationError

func (e ValidationErrors) Error() string {
	switch len(e) {
	case 0:
		return ErrValidationFailed.Error()
	case 1:
		return e[0].Error()
	}
	msgs := make([]string, len(e))
	for i, ve := range e {
		msgs[i] = "  - " + ve.Error()
	}
	return fmt.Sprintf("%s (%d problems):\n%s", ErrValidationFailed, len(e), strings.Join(msgs, "\n"))
}

func (e ValidationErrors) Unwrap() error {
	return ErrValidationFailed
}

// Validate re-checks a decoded manifest against the schema and the stage
// rules. Unknown fields are already gone at this point; ValidateRaw sees them.
func Validate(m *InputManifest) error {
	data, err := json.Marshal(m)
	if err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	if err := ValidateRaw(data); err != nil {
		return err
	}
	if errs := checkStages(m.Stages); len(errs) > 0 {
		return errs
	}
	return nil
}

// ValidateRaw checks JSON data against the embedded schema, rejecting
// unknown fields. Only error-severity diagnostics are reported.
func ValidateRaw(data []byte) error {
	v, err := manifestValidator()
	if err != nil {
		return err
	}
	diags, err := v.ValidateJSON(data)
	if err != nil {
		return fmt.Errorf("validate manifest: %w", err)
	}

	var errs ValidationErrors
	for _, d := range diags {
		if d.Severity != schema.SeverityError {
			continue
		}
		errs = append(errs, ValidationError{Path: d.Pointer, Message: d.Message})
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}

// checkStages applies the rules the schema cannot express: NEB runs are
// whole documents and never compound steps.
func checkStages(stages []StageConfig) ValidationErrors {
	var errs ValidationErrors
	for i, s := range stages {
		kind, err := orca.ParseJobKind(s.Job)
		if err != nil {
			errs = append(errs, ValidationError{Path: fmt.Sprintf("/stages/%d/job", i), Message: err.Error()})
			continue
		}
		if kind.IsNEB() {
			errs = append(errs, ValidationError{
				Path:    fmt.Sprintf("/stages/%d/job", i),
				Message: fmt.Sprintf("%s cannot be a compound stage; use mkinput --job %s", kind, kind),
			})
		}
	}
	return errs
}

func manifestValidator() (*schema.Validator, error) {
	compileOnce.Do(func() {
		if len(schemasassets.InputManifestSchema) == 0 {
			compileErr = fmt.Errorf("%w: embedded schema is empty", ErrSchemaNotFound)
			return
		}
		compiled, compileErr = schema.NewValidator(schemasassets.InputManifestSchema)
		if compileErr != nil {
			compileErr = fmt.Errorf("compile manifest schema: %w", compileErr)
		}
	})
	return compiled, compileErr
}
