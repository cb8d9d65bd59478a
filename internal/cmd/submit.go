package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/chemflow/orcakit/internal/config"
	errwrap "github.com/chemflow/orcakit/internal/errors"
	"github.com/chemflow/orcakit/internal/observability"
	"github.com/chemflow/orcakit/internal/prompt"
	"github.com/chemflow/orcakit/pkg/discover"
	"github.com/chemflow/orcakit/pkg/jobregistry"
	"github.com/chemflow/orcakit/pkg/output"
	"github.com/chemflow/orcakit/pkg/slurm"
)

var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Generate Slurm batch scripts for ORCA inputs",
	Long: `Generate a Slurm batch script (<input>.slurm) for ORCA inputs and
optionally submit it with sbatch.

Core count and memory come from the input itself (%pal nprocs or ! PALn,
and %MaxCore). Every successful submission is recorded in the local job
registry; see 'orcakit submit history'.

Examples:
  orcakit submit --inp benzene.inp
  orcakit submit --inp benzene.inp --submit --partition long --time 72:00:00
  orcakit submit --all --submit --workdir scratch
  orcakit submit --menu`,
	RunE: runSubmit,
}

var submitHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded submissions",
	RunE:  runSubmitHistory,
}

var (
	submitInp       string
	submitAll       bool
	submitDo        bool
	submitMenu      bool
	submitDir       string
	submitNodeList  string
	submitPartition string
	submitTime      string
	submitJobName   string
	submitExclusive bool
	submitNoExcl    bool
	submitWorkdir   string
	submitClean     string
	submitRate      float64
	submitJSON      bool

	historyJSON  bool
	historyLimit int
)

func init() {
	rootCmd.AddCommand(submitCmd)
	submitCmd.AddCommand(submitHistoryCmd)

	submitCmd.Long += "\n\nSafety:\n- --readonly (or ORCAKIT_READONLY=1) writes scripts but refuses to run sbatch."

	f := submitCmd.Flags()
	f.StringVar(&submitInp, "inp", "", "Generate a script for one .inp file")
	f.BoolVar(&submitAll, "all", false, "Generate scripts for every .inp file in --dir")
	f.BoolVar(&submitDo, "submit", false, "Submit with sbatch after writing the script")
	f.BoolVar(&submitMenu, "menu", false, "Pick .slurm scripts in --dir to submit")
	f.StringVar(&submitDir, "dir", ".", "Directory scanned by --all and --menu")
	f.StringVar(&submitNodeList, "nodelist", "", "Specific node list (e.g. c1028 or c1028,c1029)")
	f.StringVar(&submitPartition, "partition", "", "Slurm partition (default: slurm.partition)")
	f.StringVar(&submitTime, "time", "", "Walltime (default: slurm.time)")
	f.StringVar(&submitJobName, "job-name", "", "Job name (default: $USER_ORCA_calc)")
	f.BoolVar(&submitExclusive, "exclusive", false, "Request exclusive nodes (default: slurm.exclusive)")
	f.BoolVar(&submitNoExcl, "no-exclusive", false, "Do not request exclusive nodes")
	f.StringVar(&submitWorkdir, "workdir", "", "Where to run: lscratch, scratch or pwd (default: slurm.workdir)")
	f.StringVar(&submitClean, "clean", "", "Cleanup on exit: standard or copy_tmp (default: slurm.clean)")
	f.Float64Var(&submitRate, "rate", 0, "Max sbatch calls per second (default: slurm.submit_rate)")
	f.BoolVar(&submitJSON, "json", false, "Emit JSONL records on stdout")
	submitCmd.MarkFlagsMutuallyExclusive("exclusive", "no-exclusive")
	submitCmd.MarkFlagsMutuallyExclusive("inp", "all", "menu")

	submitHistoryCmd.Flags().BoolVar(&historyJSON, "json", false, "Output as JSON")
	submitHistoryCmd.Flags().IntVar(&historyLimit, "limit", 0, "Show at most N records (0 = all)")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	if submitInp == "" && !submitAll && !submitMenu {
		return cmd.Help()
	}

	cfg, err := currentConfig(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}
	opts, err := scriptOptionsFromFlags(cmd, cfg)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Invalid submit options", err)
	}

	s := &submitter{
		runner:   newRunner(),
		opts:     opts,
		recorder: jobregistry.NewRecorder(registryDir(cfg)),
		limiter:  rate.NewLimiter(rate.Limit(submitRateFor(cmd, cfg)), 1),
	}
	if submitJSON {
		s.w = output.NewJSONLWriter(cmd.OutOrStdout(), "")
		defer func() { _ = s.w.Close() }()
	}

	if submitMenu {
		return s.menu(ctx, submitDir)
	}

	if submitDo && IsReadOnly() {
		return requireWritable("submit batch jobs")
	}

	var inputs []string
	if submitInp != "" {
		inputs = []string{submitInp}
	} else {
		inputs, err = discover.FindPattern(submitDir, "*.inp")
		if err != nil {
			return exitError(foundry.ExitFileNotFound, "Cannot scan --dir", err)
		}
		if len(inputs) == 0 {
			observability.CLILogger.Warn("No .inp files found", zap.String("dir", submitDir))
			return nil
		}
	}

	var firstErr error
	for _, inp := range inputs {
		if err := s.prepare(ctx, inp, submitDo); err != nil {
			observability.CLILogger.Error("Failed to prepare job", zap.String("input", inp), zap.Error(err))
			s.writeError(ctx, inp, err)
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	if firstErr != nil {
		return submitExitError(firstErr)
	}
	return nil
}

type submitter struct {
	runner   slurm.Runner
	opts     slurm.ScriptOptions
	recorder *jobregistry.Recorder
	limiter  *rate.Limiter
	w        *output.JSONLWriter
}

// prepare writes the script for inp and optionally submits it.
func (s *submitter) prepare(ctx context.Context, inp string, submit bool) error {
	res, err := slurm.ExtractResourcesFile(inp)
	if err != nil {
		return err
	}
	opts := s.opts
	opts.NTasks = res.Procs
	opts.MemoryMB = res.MemoryMB()

	script, err := slurm.WriteScript(inp, opts)
	if err != nil {
		return err
	}
	observability.CLILogger.Info("Created batch script",
		zap.String("script", script),
		zap.Int("ntasks", opts.NTasks),
		zap.String("memory", humanize.IBytes(uint64(opts.MemoryMB)*1024*1024)))

	rec := &output.SubmitRecord{
		Input:     inp,
		Script:    script,
		NTasks:    opts.NTasks,
		MemoryMB:  opts.MemoryMB,
		Partition: opts.Partition,
	}
	if submit {
		if err := s.submit(ctx, inp, script, opts, rec); err != nil {
			return err
		}
	}
	if s.w != nil {
		return s.w.WriteSubmit(ctx, rec)
	}
	return nil
}

// submit runs sbatch on script and records the result. inp may be empty
// when only the script is known.
func (s *submitter) submit(ctx context.Context, inp, script string, opts slurm.ScriptOptions, rec *output.SubmitRecord) error {
	if err := s.limiter.Wait(ctx); err != nil {
		return err
	}
	jobID, err := slurm.Submit(ctx, s.runner, script)
	if err != nil {
		return err
	}
	observability.CLILogger.Info("Submitted batch job",
		zap.String("script", script),
		zap.String("slurm_job_id", jobID))
	rec.Submitted = true
	rec.SlurmJobID = jobID

	runID := ""
	if s.w != nil {
		runID = s.w.RunID()
	}
	record, err := s.recorder.Record(jobregistry.Submission{
		SlurmJobID: jobID,
		Name:       opts.JobName,
		InputPath:  inp,
		ScriptPath: script,
		Partition:  opts.Partition,
		NodeList:   opts.NodeList,
		Workdir:    string(opts.Workdir),
		NTasks:     opts.NTasks,
		MemoryMB:   opts.MemoryMB,
		RunID:      runID,
	})
	if err != nil {
		// the job is already queued; losing the record is not fatal
		observability.CLILogger.Warn("Failed to record submission",
			zap.String("slurm_job_id", jobID),
			zap.Error(err))
		return nil
	}
	rec.RecordID = record.RecordID
	return nil
}

// menu offers the .slurm scripts in dir for submission.
func (s *submitter) menu(ctx context.Context, dir string) error {
	scripts, err := discover.FindPattern(dir, "*"+slurm.ScriptExt)
	if err != nil {
		return exitError(foundry.ExitFileNotFound, "Cannot scan --dir", err)
	}
	if len(scripts) == 0 {
		observability.CLILogger.Info("No .slurm files found", zap.String("dir", dir))
		return nil
	}
	if err := requireWritable("submit batch jobs"); err != nil {
		return err
	}

	names := make([]string, len(scripts))
	for i, p := range scripts {
		names[i] = filepath.Base(p)
	}
	picked, err := newPrompter().MultiSelect(ctx, prompt.SelectConfig{
		Message: "Select SLURM scripts to submit:",
		Options: prompt.Numbered(names),
	})
	if err != nil {
		if errors.Is(err, prompt.ErrAborted) {
			observability.CLILogger.Info("Aborted")
			return nil
		}
		return exitError(foundry.ExitInvalidArgument, "Menu failed", err)
	}
	sort.Ints(picked)

	var firstErr error
	for _, i := range picked {
		script := scripts[i]
		rec := &output.SubmitRecord{Script: script, Partition: s.opts.Partition}
		inp := slurmInputFor(script)
		rec.Input = inp
		if err := s.submit(ctx, inp, script, s.opts, rec); err != nil {
			observability.CLILogger.Error("Failed to submit", zap.String("script", script), zap.Error(err))
			s.writeError(ctx, script, err)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if s.w != nil {
			_ = s.w.WriteSubmit(ctx, rec)
		}
	}
	if firstErr != nil {
		return submitExitError(firstErr)
	}
	return nil
}

func (s *submitter) writeError(ctx context.Context, path string, err error) {
	if s.w == nil {
		return
	}
	code := output.ErrCodeInternal
	switch {
	case errors.Is(err, os.ErrNotExist):
		code = output.ErrCodeNotFound
	case slurm.IsInvalidOptions(err):
		code = output.ErrCodeInvalidInput
	case isSchedulerError(err):
		code = output.ErrCodeScheduler
	}
	_ = s.w.WriteError(ctx, &output.ErrorRecord{Code: code, Message: err.Error(), Path: path})
}

// slurmInputFor returns the .inp sitting next to script, or "" if absent.
func slurmInputFor(script string) string {
	inp := script[:len(script)-len(filepath.Ext(script))] + ".inp"
	if _, err := os.Stat(inp); err != nil {
		return ""
	}
	return inp
}

func scriptOptionsFromFlags(cmd *cobra.Command, cfg *config.Config) (slurm.ScriptOptions, error) {
	sc := cfg.Slurm
	workdir, err := slurm.ParseWorkdir(stringFlagOr(cmd, "workdir", submitWorkdir, sc.Workdir))
	if err != nil {
		return slurm.ScriptOptions{}, err
	}
	clean, err := slurm.ParseClean(stringFlagOr(cmd, "clean", submitClean, sc.Clean))
	if err != nil {
		return slurm.ScriptOptions{}, err
	}

	exclusive := sc.Exclusive
	switch {
	case cmd.Flags().Changed("no-exclusive"):
		exclusive = !submitNoExcl
	case cmd.Flags().Changed("exclusive"):
		exclusive = submitExclusive
	}

	jobName := submitJobName
	if jobName == "" {
		jobName = slurm.DefaultJobName(slurm.CurrentUser())
	}

	return slurm.ScriptOptions{
		JobName:   jobName,
		Partition: stringFlagOr(cmd, "partition", submitPartition, sc.Partition),
		Time:      stringFlagOr(cmd, "time", submitTime, sc.Time),
		NodeList:  submitNodeList,
		Exclusive: exclusive,
		Workdir:   workdir,
		Clean:     clean,
		ORCAPath:  sc.ORCAPath,
		Modules:   sc.Modules,
		MPIPrefix: sc.MPIPrefix,
	}, nil
}

func submitRateFor(cmd *cobra.Command, cfg *config.Config) float64 {
	r := cfg.Slurm.SubmitRate
	if cmd.Flags().Changed("rate") {
		r = submitRate
	}
	if r <= 0 {
		return float64(rate.Inf)
	}
	return r
}

func isSchedulerError(err error) bool {
	var ce *slurm.CommandError
	return errors.As(err, &ce) || errors.Is(err, slurm.ErrUnexpectedOutput)
}

func submitExitError(err error) error {
	switch {
	case slurm.IsCommandNotFound(err):
		return exitError(foundry.ExitExternalServiceUnavailable, "sbatch is not available",
			errwrap.WrapExternalService(err, "Slurm CLI not found"))
	case isSchedulerError(err):
		return exitError(foundry.ExitExternalServiceUnavailable, "Submission failed", err)
	case errors.Is(err, os.ErrNotExist):
		return exitError(foundry.ExitFileNotFound, "Input not found", err)
	case slurm.IsInvalidOptions(err):
		return exitError(foundry.ExitInvalidArgument, "Invalid script options", err)
	case errors.Is(err, context.Canceled):
		return exitError(foundry.ExitSignalInt, "submit cancelled", err)
	default:
		return exitError(foundry.ExitFileWriteError, "Failed to write batch script", err)
	}
}

func runSubmitHistory(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := currentConfig(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}

	store := jobregistry.NewStore(registryDir(cfg))
	records, err := store.List()
	if err != nil {
		return exitError(foundry.ExitFileReadError, "Failed to read job registry", err)
	}
	if historyLimit > 0 && len(records) > historyLimit {
		records = records[:historyLimit]
	}

	out := cmd.OutOrStdout()
	if historyJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		if records == nil {
			records = []jobregistry.JobRecord{}
		}
		return enc.Encode(records)
	}
	if len(records) == 0 {
		_, _ = fmt.Fprintln(out, "No submissions recorded")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	defer func() { _ = w.Flush() }()

	_, _ = fmt.Fprintln(w, "SLURM ID\tSTATE\tSUBMITTED\tPARTITION\tNTASKS\tMEM\tINPUT")
	for _, r := range records {
		mem := "-"
		if r.MemoryMB > 0 {
			mem = humanize.IBytes(uint64(r.MemoryMB) * 1024 * 1024)
		}
		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\t%s\t%s\n",
			r.SlurmJobID,
			r.State,
			humanize.Time(r.SubmittedAt),
			valueOrDash(r.Partition),
			r.NTasks,
			mem,
			valueOrDash(r.InputPath),
		)
	}
	return nil
}

func valueOrDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
