package slurm

import (
	"bytes"
	"embed"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed script.sh.tmpl
var templates embed.FS

var scriptTemplate = template.Must(
	template.New("script.sh.tmpl").
		Funcs(template.FuncMap{"join": strings.Join}).
		ParseFS(templates, "script.sh.tmpl"),
)

// ScriptExt is the extension of generated batch scripts.
const ScriptExt = ".slurm"

// Workdir selects where the job runs.
type Workdir string

const (
	// WorkdirLocalScratch runs in node-local /lscratch/<jobid>, falling back
	// to /tmp/<jobid>.
	WorkdirLocalScratch Workdir = "lscratch"
	// WorkdirScratch runs in shared /scratch/<jobid>.
	WorkdirScratch Workdir = "scratch"
	// WorkdirPWD runs in the submission directory with no staging.
	WorkdirPWD Workdir = "pwd"
)

// ParseWorkdir validates a workdir name.
func ParseWorkdir(s string) (Workdir, error) {
	switch w := Workdir(strings.ToLower(strings.TrimSpace(s))); w {
	case WorkdirLocalScratch, WorkdirScratch, WorkdirPWD:
		return w, nil
	}
	return "", invalidOptionsf("unknown workdir %q (want lscratch, scratch or pwd)", s)
}

// Clean selects what the exit trap does with the scratch directory.
type Clean string

const (
	// CleanStandard deletes the scratch directory.
	CleanStandard Clean = "standard"
	// CleanCopyTmp copies scratch files back before deleting.
	CleanCopyTmp Clean = "copy_tmp"
)

// ParseClean validates a clean mode. "standart" is accepted as a legacy
// spelling of "standard".
func ParseClean(s string) (Clean, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "standart":
		return CleanStandard, nil
	case "copy_tmp":
		return CleanCopyTmp, nil
	}
	return "", invalidOptionsf("unknown clean mode %q (want standard or copy_tmp)", s)
}

// DefaultStageGlobs are the files copied into scratch before the run.
var DefaultStageGlobs = []string{
	"*.inp", "*.gbw", "*.xyz", "*.hess", "*.engrad", "*.molden.input",
	"*.molden", "*.wfn", "*.num", "*.mkl", "*.trj", "*.swag", "*.tmp",
}

// ScriptOptions parameterize a batch script.
type ScriptOptions struct {
	JobName   string
	Partition string
	Time      string
	NodeList  string
	Exclusive bool
	Workdir   Workdir
	Clean     Clean

	// Input is the ORCA input file name, relative to the submit directory.
	Input string

	NTasks   int
	MemoryMB int

	// ORCAPath is exported as ORCA_PATH; empty requires it in the job
	// environment.
	ORCAPath  string
	Modules   []string
	MPIPrefix string

	StageGlobs []string
}

// DefaultJobName is "<user>_ORCA_calc".
func DefaultJobName(user string) string {
	if user == "" {
		user = "user"
	}
	return user + "_ORCA_calc"
}

// Validate checks that opts can be rendered.
func (o ScriptOptions) Validate() error {
	switch {
	case strings.TrimSpace(o.JobName) == "":
		return invalidOptionsf("job name is required")
	case strings.TrimSpace(o.Partition) == "":
		return invalidOptionsf("partition is required")
	case strings.TrimSpace(o.Time) == "":
		return invalidOptionsf("time limit is required")
	case strings.TrimSpace(o.Input) == "":
		return invalidOptionsf("input file is required")
	case o.NTasks < 1:
		return invalidOptionsf("ntasks must be positive (got %d)", o.NTasks)
	case o.MemoryMB < 1:
		return invalidOptionsf("memory must be positive (got %d MB)", o.MemoryMB)
	}
	if _, err := ParseWorkdir(string(o.Workdir)); err != nil {
		return err
	}
	if o.Workdir != WorkdirPWD {
		if _, err := ParseClean(string(o.Clean)); err != nil {
			return err
		}
	}
	return nil
}

// RenderScript renders the batch script text.
func RenderScript(opts ScriptOptions) (string, error) {
	if err := opts.Validate(); err != nil {
		return "", err
	}
	// normalize the legacy alias before templating
	if opts.Workdir != WorkdirPWD {
		opts.Clean, _ = ParseClean(string(opts.Clean))
	}
	if len(opts.StageGlobs) == 0 {
		opts.StageGlobs = DefaultStageGlobs
	}

	var buf bytes.Buffer
	if err := scriptTemplate.Execute(&buf, opts); err != nil {
		return "", fmt.Errorf("render batch script: %w", err)
	}
	return buf.String(), nil
}

// ScriptPath is the batch script path for an input: the input path with
// its extension replaced by .slurm.
func ScriptPath(inpPath string) string {
	return strings.TrimSuffix(inpPath, filepath.Ext(inpPath)) + ScriptExt
}

// WriteScript renders a script for inpPath and writes it next to the input.
//
// Empty Input, NTasks and MemoryMB are filled from the input file itself.
// It returns the script path.
func WriteScript(inpPath string, opts ScriptOptions) (string, error) {
	if _, err := os.Stat(inpPath); err != nil {
		return "", fmt.Errorf("input %s: %w", inpPath, err)
	}
	if opts.Input == "" {
		opts.Input = filepath.Base(inpPath)
	}
	if opts.NTasks == 0 || opts.MemoryMB == 0 {
		res, err := ExtractResourcesFile(inpPath)
		if err != nil {
			return "", fmt.Errorf("read resources from %s: %w", inpPath, err)
		}
		if opts.NTasks == 0 {
			opts.NTasks = res.Procs
		}
		if opts.MemoryMB == 0 {
			opts.MemoryMB = res.MemoryMB()
		}
	}

	text, err := RenderScript(opts)
	if err != nil {
		return "", err
	}

	path := ScriptPath(inpPath)
	if err := os.WriteFile(path, []byte(text), 0o644); err != nil {
		return "", fmt.Errorf("write batch script %s: %w", path, err)
	}
	return path, nil
}
