package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"syscall"
	"time"

	"github.com/fulmenhq/gofulmen/foundry"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chemflow/orcakit/internal/config"
	errwrap "github.com/chemflow/orcakit/internal/errors"
	"github.com/chemflow/orcakit/internal/observability"
	"github.com/chemflow/orcakit/internal/prompt"
	"github.com/chemflow/orcakit/pkg/jobregistry"
	"github.com/chemflow/orcakit/pkg/jobstatus"
	"github.com/chemflow/orcakit/pkg/output"
	"github.com/chemflow/orcakit/pkg/slurm"
)

// localNode is the --nodeinfo value used when no node is named.
const localNode = "localhost"

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show your Slurm jobs",
	Long: `Show your Slurm jobs as a colored table, optionally merged with recent
accounting history.

Examples:
  orcakit status
  orcakit status --watch           # refresh every slurm status.watch_interval (3s)
  orcakit status --watch=10        # refresh every 10 seconds
  orcakit status --history 24h     # include jobs finished in the last day
  orcakit status --job 123456      # scontrol/sstat/sacct details
  orcakit status --cancel-menu     # pick jobs to cancel, with confirmation
  orcakit status --ssh-menu        # ssh into the node of a running job
  orcakit status --nodeinfo        # CPU/memory/load of this host
  orcakit status --nodeinfo=c1028  # ... or of a node over ssh`,
	RunE: runStatus,
}

var (
	statusWatch      int
	statusJob        string
	statusHistory    string
	statusSSHMenu    bool
	statusCancelMenu bool
	statusNodeInfo   string
	statusColor      bool
	statusNoColor    bool
	statusUser       string
	statusJSON       bool
)

// statusStdin feeds watch-mode key presses.
var statusStdin = os.Stdin

// execSSH replaces the process with an interactive ssh session.
var execSSH = func(args []string) error {
	path, err := exec.LookPath("ssh")
	if err != nil {
		return err
	}
	observability.Sync()
	return syscall.Exec(path, append([]string{"ssh"}, args...), os.Environ())
}

func init() {
	rootCmd.AddCommand(statusCmd)

	statusCmd.Long += "\n\nSafety:\n- --readonly (or ORCAKIT_READONLY=1) disables the cancel menu."

	f := statusCmd.Flags()
	f.IntVar(&statusWatch, "watch", 0, "Refresh every N seconds (--watch=N; bare --watch uses status.watch_interval)")
	f.Lookup("watch").NoOptDefVal = "0"
	f.StringVar(&statusJob, "job", "", "Show details for one job id")
	f.StringVar(&statusHistory, "history", "", "Include finished jobs newer than this window (e.g. 24h)")
	f.BoolVar(&statusSSHMenu, "ssh-menu", false, "Pick a RUNNING job and ssh into its node")
	f.BoolVar(&statusCancelMenu, "cancel-menu", false, "Pick your jobs to cancel, with a final confirmation")
	f.StringVar(&statusNodeInfo, "nodeinfo", "", "Show CPU/memory/load for this host or --nodeinfo=NODE")
	f.Lookup("nodeinfo").NoOptDefVal = localNode
	f.BoolVar(&statusColor, "color", false, "Force ANSI colors even if stdout is not a TTY")
	f.BoolVar(&statusNoColor, "no-color", false, "Disable ANSI colors")
	f.StringVar(&statusUser, "user", "", "Show jobs of USER instead of yours (menus always use yours)")
	f.BoolVar(&statusJSON, "json", false, "Emit JSONL records on stdout")
	statusCmd.MarkFlagsMutuallyExclusive("color", "no-color")
	statusCmd.MarkFlagsMutuallyExclusive("ssh-menu", "cancel-menu", "nodeinfo", "job", "watch")
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cfg, err := currentConfig(ctx)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Failed to load configuration", err)
	}

	out := cmd.OutOrStdout()
	v := &statusView{
		client:  slurm.NewClient(newRunner()),
		cfg:     cfg,
		out:     out,
		painter: jobstatus.Painter{Enabled: colorEnabled(out)},
	}
	if statusJSON {
		v.w = output.NewJSONLWriter(out, "")
		defer func() { _ = v.w.Close() }()
	}

	switch {
	case cmd.Flags().Changed("nodeinfo"):
		return v.nodeInfo(ctx, statusNodeInfo)
	case statusSSHMenu:
		return v.sshMenu(ctx)
	case statusCancelMenu:
		return v.cancelMenu(ctx)
	case statusJob != "":
		return v.details(ctx, statusJob)
	}

	user := statusUser
	if user == "" {
		user = slurm.CurrentUser()
	}
	if statusHistory != "" {
		window, err := slurm.ParseWindow(statusHistory)
		if err != nil {
			return exitError(foundry.ExitInvalidArgument, "Invalid --history value", err)
		}
		hist, err := v.client.History(ctx, user, window)
		if err != nil {
			observability.CLILogger.Warn("sacct history unavailable", zap.Error(err))
		}
		v.hist = hist
	}

	if !cmd.Flags().Changed("watch") || statusJSON {
		return v.render(ctx, out, v.painter, user)
	}

	interval := time.Duration(statusWatch) * time.Second
	if statusWatch <= 0 {
		interval = cfg.Status.WatchInterval
	}
	return v.watch(ctx, interval, user)
}

type statusView struct {
	client  *slurm.Client
	cfg     *config.Config
	out     io.Writer
	painter jobstatus.Painter
	hist    []slurm.Job
	w       *output.JSONLWriter
}

func colorEnabled(out io.Writer) bool {
	tty := false
	if f, ok := out.(*os.File); ok {
		tty = jobstatus.IsTerminal(f)
	}
	return jobstatus.ColorDecision{
		ForceOn:  statusColor,
		ForceOff: statusNoColor,
		IsTTY:    tty,
		Getenv:   os.Getenv,
	}.Enabled()
}

// render prints one table (or JSONL job records).
func (v *statusView) render(ctx context.Context, w io.Writer, p jobstatus.Painter, user string) error {
	live, err := v.client.Queue(ctx, user)
	if err != nil {
		return schedulerExitError("squeue", err)
	}
	jobs := slurm.Merge(live, v.hist)

	if v.w != nil {
		liveIDs := make(map[string]bool, len(live))
		for _, j := range live {
			liveIDs[j.ID] = true
		}
		for _, j := range jobs {
			source := output.SourceHistory
			if liveIDs[j.ID] {
				source = output.SourceQueue
			}
			if err := v.w.WriteJob(ctx, jobRecord(j, source)); err != nil {
				return err
			}
		}
		return nil
	}

	if len(jobs) == 0 {
		_, err := fmt.Fprintf(w, "[INFO] No jobs found for user: %s.\n", user)
		return err
	}
	return jobstatus.RenderTable(w, jobs, p)
}

func (v *statusView) watch(ctx context.Context, interval time.Duration, user string) error {
	keys, err := jobstatus.OpenKeys(statusStdin)
	if err != nil {
		return exitError(foundry.ExitInvalidArgument, "Cannot switch terminal to raw mode", err)
	}
	defer func() { _ = keys.Restore() }()

	out := v.out
	if keys.Raw() {
		out = jobstatus.CRLFWriter{W: out}
	}
	watcher := &jobstatus.Watcher{
		Interval: interval,
		Out:      out,
		Painter:  v.painter,
		Keys:     keys.Keys,
		Render: func(ctx context.Context, w io.Writer, p jobstatus.Painter) error {
			return v.render(ctx, w, p, user)
		},
	}
	observability.CLILogger.Debug("Watching jobs", zap.Duration("interval", interval), zap.Bool("raw", keys.Raw()))
	return watcher.Run(ctx)
}

func (v *statusView) details(ctx context.Context, id string) error {
	sections := v.client.Details(ctx, id)
	if v.w != nil {
		enc := json.NewEncoder(v.out)
		return enc.Encode(struct {
			JobID    string                `json:"job_id"`
			Sections []slurm.DetailSection `json:"sections"`
		}{id, sections})
	}

	p := v.painter
	_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleHeader, fmt.Sprintf("== Job %s ==", id)))
	if len(sections) == 0 {
		_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleWarn, "[WARN] none of scontrol, sstat or sacct is available"))
		return nil
	}
	for _, s := range sections {
		_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleLabel, "-- "+s.Title+" --"))
		if s.Output != "" {
			_, _ = fmt.Fprintln(v.out, s.Output)
		}
		if s.Err != "" {
			_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleErr, "[ERR] "+s.Err))
		}
	}
	return nil
}

func (v *statusView) nodeInfo(ctx context.Context, node string) error {
	remote := strings.TrimSpace(node)
	if remote == localNode {
		remote = ""
	}
	info, err := jobstatus.FetchNodeInfo(ctx, v.client.Runner, jobstatus.NodeInfoRequest{
		Remote: remote,
		User:   slurm.CurrentUser(),
		Domain: v.cfg.Status.SSHDomain,
	})
	if v.w != nil {
		if werr := v.w.WriteNode(ctx, info); werr != nil {
			return werr
		}
	} else if rerr := jobstatus.RenderNodeInfo(v.out, info, v.painter); rerr != nil {
		return rerr
	}
	if err != nil {
		return schedulerExitError("node probe", err)
	}
	return nil
}

// sshMenu always lists the current user's jobs.
func (v *statusView) sshMenu(ctx context.Context) error {
	live, err := v.client.Queue(ctx, slurm.CurrentUser())
	if err != nil {
		return schedulerExitError("squeue", err)
	}
	running := jobstatus.RunningWithNode(live)
	if len(running) == 0 {
		_, _ = fmt.Fprintln(v.out, "[INFO] No RUNNING jobs with assigned nodes were found for your user.")
		return nil
	}

	labels := make([]string, len(running))
	for i, j := range running {
		labels[i] = jobstatus.SSHChoice(j)
	}
	idx, err := newPrompter().Select(ctx, prompt.SelectConfig{
		Message: "Select a job to SSH into its node",
		Options: prompt.Numbered(labels),
	})
	if err != nil {
		return menuExitError(err)
	}

	job := running[idx]
	host := slurm.QualifyHost(job.Node(), "", v.cfg.Status.SSHDomain)
	_, _ = fmt.Fprintln(v.out, v.painter.Paint(jobstatus.StyleHeader,
		fmt.Sprintf("SSH → %s  (starting in %s/%s if it exists)", host, firstScratchDir(v.cfg.Status.ScratchDirs), job.ID)))
	if err := execSSH(slurm.InteractiveShellArgs(host, job.ID, v.cfg.Status.ScratchDirs)); err != nil {
		return exitError(foundry.ExitExternalServiceUnavailable, "Failed to start ssh",
			errwrap.WrapExternalService(err, "ssh"))
	}
	return nil
}

// cancelMenu always lists the current user's jobs.
func (v *statusView) cancelMenu(ctx context.Context) error {
	if !slurm.Have(v.client.Runner, "scancel") {
		return exitError(foundry.ExitExternalServiceUnavailable, "scancel not found in PATH",
			errwrap.NewExternalServiceError("Slurm CLI not available"))
	}
	if err := requireWritable("cancel jobs"); err != nil {
		return err
	}

	live, err := v.client.Queue(ctx, slurm.CurrentUser())
	if err != nil {
		return schedulerExitError("squeue", err)
	}
	if len(live) == 0 {
		_, _ = fmt.Fprintln(v.out, "[INFO] No jobs found for your user.")
		return nil
	}
	cancellable := jobstatus.CancellableJobs(live)
	if len(cancellable) == 0 {
		_, _ = fmt.Fprintln(v.out, "[INFO] No RUNNING/PENDING/CONFIGURING jobs to cancel.")
		return nil
	}

	p := v.painter
	_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleHeader, "Select job(s) to cancel (comma/range, e.g., 1,3-5)"))
	for i, j := range cancellable {
		_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleWarn, fmt.Sprintf("[%d] %s", i+1, jobstatus.CancelChoice(j))))
	}

	prompter := newPrompter()
	sel, err := prompter.Input(ctx, prompt.InputConfig{Message: "Enter selection:"})
	if err != nil {
		return menuExitError(err)
	}
	indices := slurm.ParseSelection(sel, len(cancellable))
	if len(indices) == 0 {
		_, _ = fmt.Fprintln(v.out, "[INFO] Nothing selected; aborting.")
		return nil
	}

	chosen := make([]slurm.Job, 0, len(indices))
	_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleHeader, "\nYou are about to CANCEL the following jobs:"))
	for _, i := range indices {
		j := cancellable[i-1]
		chosen = append(chosen, j)
		_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleErr, fmt.Sprintf("  - %s  (%s)  %s", j.ID, j.State, j.Name)))
	}

	sure, err := prompter.Input(ctx, prompt.InputConfig{Message: "Type 'yes' to confirm cancellation:"})
	if err != nil {
		return menuExitError(err)
	}
	if strings.ToLower(strings.TrimSpace(sure)) != "yes" {
		_, _ = fmt.Fprintln(v.out, "[INFO] Confirmation not given. No jobs were cancelled.")
		return nil
	}

	store := jobregistry.NewStore(registryDir(v.cfg))
	errs := 0
	for _, j := range chosen {
		if err := v.client.Cancel(ctx, j.ID); err != nil {
			errs++
			_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleErr, fmt.Sprintf("[ERR] scancel %s → %v", j.ID, err)))
			continue
		}
		_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleOK, "[OK] scancel "+j.ID))
		if _, err := store.SetState(j.ID, jobregistry.StateCancelled, time.Now()); err != nil && !errors.Is(err, jobregistry.ErrNotFound) {
			observability.CLILogger.Warn("Failed to update job registry", zap.String("slurm_job_id", j.ID), zap.Error(err))
		}
	}

	if errs == 0 {
		_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleOKBold, "All selected jobs were sent a cancel request."))
		return nil
	}
	_, _ = fmt.Fprintln(v.out, p.Paint(jobstatus.StyleWarnBold, fmt.Sprintf("Cancel requests issued with %d error(s). Some jobs may remain.", errs)))
	return exitError(foundry.ExitExternalServiceUnavailable, "Some cancel requests failed", fmt.Errorf("%d of %d scancel calls failed", errs, len(chosen)))
}

func jobRecord(j slurm.Job, source string) *output.JobRecord {
	node := j.Node()
	if node == "" {
		node = "-"
	}
	return &output.JobRecord{
		JobID:     j.ID,
		Name:      j.Name,
		State:     j.State,
		Elapsed:   j.Elapsed,
		CPUs:      j.CPUs,
		Memory:    j.Memory,
		Partition: j.Partition,
		Node:      node,
		Source:    source,
	}
}

func firstScratchDir(dirs []string) string {
	if len(dirs) == 0 {
		return "/lscratch"
	}
	return strings.TrimRight(dirs[0], "/")
}

func menuExitError(err error) error {
	if errors.Is(err, prompt.ErrAborted) {
		return exitError(foundry.ExitSignalInt, "Aborted", err)
	}
	return exitError(foundry.ExitInvalidArgument, "Menu failed", err)
}

func schedulerExitError(tool string, err error) error {
	if errors.Is(err, context.Canceled) {
		return exitError(foundry.ExitSignalInt, "Cancelled", err)
	}
	if slurm.IsCommandNotFound(err) {
		return exitError(foundry.ExitExternalServiceUnavailable, tool+" is not available",
			errwrap.WrapExternalService(err, "Slurm CLI not found"))
	}
	return exitError(foundry.ExitExternalServiceUnavailable, tool+" failed", err)
}
