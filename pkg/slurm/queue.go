package slurm

import (
	"context"
	"fmt"
	"strings"
	"time"
)

// squeueFormat: JobID|Name|State|Elapsed|CPUs|Mem|Partition|NodeList(Reason).
const squeueFormat = "%i|%j|%T|%M|%C|%m|%P|%R"

const sacctTimeLayout = "2006-01-02T15:04:05"

// Job is one row of the status table.
type Job struct {
	ID        string `json:"job_id"`
	Name      string `json:"name"`
	State     string `json:"state"`
	Elapsed   string `json:"elapsed"`
	CPUs      string `json:"cpus"`
	Memory    string `json:"mem"`
	Partition string `json:"partition"`
	NodeList  string `json:"node"`
}

// Row returns the table cells in display order.
func (j Job) Row() []string {
	return []string{j.ID, j.Name, j.State, j.Elapsed, j.CPUs, j.Memory, j.Partition, j.NodeList}
}

// Node is the first concrete host of the job's node list, or "".
func (j Job) Node() string {
	return FirstNode(j.NodeList)
}

// Client queries and controls the scheduler through a Runner.
type Client struct {
	Runner Runner

	// Now is used for history windows; nil means time.Now.
	Now func() time.Time
}

// NewClient returns a Client over r.
func NewClient(r Runner) *Client {
	return &Client{Runner: r}
}

func (c *Client) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

// Queue lists the live jobs of user. Rows with fewer than eight fields are
// skipped.
func (c *Client) Queue(ctx context.Context, user string) ([]Job, error) {
	out, err := c.Runner.Run(ctx, "squeue", "-h", "-u", user, "-o", squeueFormat)
	if err != nil {
		return nil, err
	}
	return ParseQueue(out), nil
}

// ParseQueue parses squeue output in squeueFormat.
func ParseQueue(out string) []Job {
	var jobs []Job
	for _, line := range splitLines(out) {
		parts := strings.Split(line, "|")
		if len(parts) < 8 {
			continue
		}
		jobs = append(jobs, Job{
			ID:        parts[0],
			Name:      parts[1],
			State:     parts[2],
			Elapsed:   parts[3],
			CPUs:      parts[4],
			Memory:    parts[5],
			Partition: parts[6],
			// node lists never contain '|', but reasons might
			NodeList: strings.Join(parts[7:], "|"),
		})
	}
	return jobs
}

// History lists jobs of user that sacct knows about since the given window
// before now. Step rows (ids containing '.') are dropped.
func (c *Client) History(ctx context.Context, user string, window time.Duration) ([]Job, error) {
	since := c.now().Add(-window).Format(sacctTimeLayout)
	out, err := c.Runner.Run(ctx, "sacct", "-u", user, "-S", since,
		"--parsable2", "--noheader",
		"--format=JobID,JobName,State,Elapsed,ReqMem,AllocCPUS")
	if err != nil {
		return nil, err
	}
	return ParseHistory(out), nil
}

// ParseHistory parses sacct --parsable2 output.
func ParseHistory(out string) []Job {
	var jobs []Job
	for _, line := range splitLines(out) {
		parts := strings.Split(line, "|")
		if len(parts) < 6 {
			continue
		}
		if strings.Contains(parts[0], ".") {
			continue
		}
		jobs = append(jobs, Job{
			ID:        parts[0],
			Name:      parts[1],
			State:     parts[2],
			Elapsed:   parts[3],
			Memory:    parts[4],
			CPUs:      parts[5],
			Partition: "-",
			NodeList:  "-",
		})
	}
	return jobs
}

// BaseJobID strips a step suffix (".batch", ".0") but keeps array indices.
func BaseJobID(id string) string {
	base, _, _ := strings.Cut(id, ".")
	return base
}

// Merge appends history rows to live rows, skipping step rows and jobs
// that still appear live.
func Merge(live, hist []Job) []Job {
	seen := make(map[string]struct{}, len(live))
	merged := make([]Job, 0, len(live)+len(hist))
	for _, j := range live {
		if j.ID != "" {
			seen[BaseJobID(j.ID)] = struct{}{}
		}
		merged = append(merged, j)
	}
	for _, j := range hist {
		if j.ID == "" || strings.Contains(j.ID, ".") {
			continue
		}
		if _, ok := seen[BaseJobID(j.ID)]; ok {
			continue
		}
		merged = append(merged, j)
	}
	return merged
}

// DetailSection is one tool's view of a job.
type DetailSection struct {
	Title  string `json:"title"`
	Output string `json:"output"`
	Err    string `json:"error,omitempty"`
}

// Details gathers scontrol, sstat and sacct views of a job. Tools missing
// from PATH are skipped; a failing tool records its error and the rest
// still run.
func (c *Client) Details(ctx context.Context, id string) []DetailSection {
	type probe struct {
		title string
		name  string
		args  []string
	}
	probes := []probe{
		{"scontrol show job", "scontrol", []string{"show", "job", id}},
		{"sstat (live averages)", "sstat", []string{"-j", id + ".batch", "--format=AveCPU,AveRSS,MaxRSS,MaxVMSize,AllocCPUS"}},
		{"sacct (accounting)", "sacct", []string{"-j", id, "--format=JobID,State,Elapsed,MaxRSS,MaxVMSize,AveRSS,CPUTimeRAW"}},
	}

	var sections []DetailSection
	for _, p := range probes {
		if !Have(c.Runner, p.name) {
			continue
		}
		out, err := c.Runner.Run(ctx, p.name, p.args...)
		sec := DetailSection{Title: p.title, Output: strings.TrimSpace(out)}
		if err != nil {
			sec.Err = err.Error()
		}
		sections = append(sections, sec)
	}
	return sections
}

// Cancel asks the scheduler to cancel a job.
func (c *Client) Cancel(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return fmt.Errorf("%w: empty job id", ErrInvalidOptions)
	}
	_, err := c.Runner.Run(ctx, "scancel", id)
	return err
}

func splitLines(out string) []string {
	var lines []string
	for _, l := range strings.Split(strings.TrimSpace(out), "\n") {
		l = strings.TrimRight(l, "\r")
		if strings.TrimSpace(l) != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
