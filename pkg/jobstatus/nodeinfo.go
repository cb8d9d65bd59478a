package jobstatus

import (
	"context"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/chemflow/orcakit/pkg/slurm"
)

// nodeInfoCommand gathers everything in one shell invocation so a remote
// node costs a single ssh round trip.
const nodeInfoCommand = "LC_ALL=C lscpu; echo __SEP1__; " +
	"LC_ALL=C free -h | awk '/^Mem:/ {print $2}'; echo __SEP2__; " +
	"cat /proc/loadavg; echo __SEP3__; uptime -p || true"

var nodeInfoSeparators = map[string]bool{"__SEP1__": true, "__SEP2__": true, "__SEP3__": true}

var (
	reModel      = regexp.MustCompile(`(?m)Model name:\s*(.+)`)
	reSockets    = regexp.MustCompile(`(?m)Socket\(s\):\s*(\d+)`)
	reCoresPer   = regexp.MustCompile(`(?m)Core\(s\) per socket:\s*(\d+)`)
	reThreadsPer = regexp.MustCompile(`(?m)Thread\(s\) per core:\s*(\d+)`)
	reCPUs       = regexp.MustCompile(`(?m)^CPU\(s\):\s*(\d+)`)
	reMHz        = regexp.MustCompile(`(?m)CPU MHz:\s*([\d.]+)`)
	reMHzMax     = regexp.MustCompile(`(?m)CPU max MHz:\s*([\d.]+)`)
)

// NodeInfo summarizes a compute node's CPU, memory and load.
type NodeInfo struct {
	Host           string `json:"host"`
	Model          string `json:"model"`
	Sockets        string `json:"sockets"`
	CoresPerSocket string `json:"cores_per_socket"`
	ThreadsPerCore string `json:"threads_per_core"`
	CPUs           string `json:"cpus"`
	MHz            string `json:"mhz"`
	MHzMax         string `json:"mhz_max"`
	MemTotal       string `json:"mem_total"`
	Load           string `json:"load"`
	Uptime         string `json:"uptime"`
}

// NodeInfoRequest selects the node to inspect.
type NodeInfoRequest struct {
	// Remote is the node; empty inspects the local host.
	Remote string
	User   string
	Domain string
}

// FetchNodeInfo runs the one-shot probe locally (bash -lc) or on a remote
// node over ssh. A failed probe returns whatever was parsed along with the
// error.
func FetchNodeInfo(ctx context.Context, r slurm.Runner, req NodeInfoRequest) (NodeInfo, error) {
	var (
		out string
		err error
	)
	host := strings.TrimSpace(req.Remote)
	if host == "" {
		out, err = r.Run(ctx, "bash", "-lc", nodeInfoCommand)
		if h, herr := r.Run(ctx, "hostname"); herr == nil {
			host = strings.TrimSpace(h)
		}
	} else {
		target := slurm.QualifyHost(host, req.User, req.Domain)
		out, err = r.Run(ctx, "ssh", slurm.RemoteCommandArgs(target, nodeInfoCommand)...)
	}

	info := ParseNodeInfo(out)
	info.Host = host
	return info, err
}

// ParseNodeInfo parses the probe output: lscpu, free total, loadavg and
// uptime blocks separated by marker lines.
func ParseNodeInfo(out string) NodeInfo {
	var info NodeInfo
	if strings.TrimSpace(out) == "" {
		return info
	}

	var blocks []string
	var cur []string
	for _, line := range strings.Split(out, "\n") {
		if nodeInfoSeparators[strings.TrimSpace(line)] {
			blocks = append(blocks, strings.Join(cur, "\n"))
			cur = nil
			continue
		}
		cur = append(cur, line)
	}
	blocks = append(blocks, strings.Join(cur, "\n"))

	lscpu := blocks[0]
	info.Model = firstGroup(reModel, lscpu)
	info.Sockets = firstGroup(reSockets, lscpu)
	info.CoresPerSocket = firstGroup(reCoresPer, lscpu)
	info.ThreadsPerCore = firstGroup(reThreadsPer, lscpu)
	info.CPUs = firstGroup(reCPUs, lscpu)
	info.MHz = firstGroup(reMHz, lscpu)
	info.MHzMax = firstGroup(reMHzMax, lscpu)

	if len(blocks) > 1 {
		if f := strings.Fields(blocks[1]); len(f) > 0 {
			info.MemTotal = f[0]
		}
	}
	if len(blocks) > 2 {
		info.Load = strings.TrimSpace(blocks[2])
	}
	if len(blocks) > 3 {
		info.Uptime = strings.TrimSpace(blocks[3])
	}
	return info
}

func firstGroup(re *regexp.Regexp, s string) string {
	m := re.FindStringSubmatch(s)
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// RenderNodeInfo writes info as labeled lines under a title.
func RenderNodeInfo(w io.Writer, info NodeInfo, p Painter) error {
	host := info.Host
	if host == "" {
		host = "unknown"
	}
	title := "Node Info - " + host

	var b strings.Builder
	fmt.Fprintln(&b, p.Paint(StyleHeader, title))
	fmt.Fprintln(&b, p.Paint(StyleDim, strings.Repeat("─", VisibleLen(title))))
	fmt.Fprintf(&b, "%s    %s\n", p.Paint(StyleLabel, "CPU Model:"), orDefault(info.Model, "N/A"))
	fmt.Fprintf(&b, "%s     Sockets=%s  Cores/Socket=%s  Threads/Core=%s  Logical CPUs=%s\n",
		p.Paint(StyleLabel, "Topology:"),
		orDefault(info.Sockets, "?"), orDefault(info.CoresPerSocket, "?"),
		orDefault(info.ThreadsPerCore, "?"), orDefault(info.CPUs, "?"))
	fmt.Fprintf(&b, "%s    Base(?) MHz=%s  Max MHz=%s\n",
		p.Paint(StyleLabel, "Frequency:"), orDefault(info.MHz, "?"), orDefault(info.MHzMax, "?"))
	fmt.Fprintf(&b, "%s       Total=%s\n", p.Paint(StyleLabel, "Memory:"), orDefault(info.MemTotal, "N/A"))
	fmt.Fprintf(&b, "%s     %s\n", p.Paint(StyleLabel, "CPU Load:"), orDefault(info.Load, "N/A"))
	if info.Uptime != "" {
		fmt.Fprintf(&b, "%s       %s\n", p.Paint(StyleLabel, "Uptime:"), info.Uptime)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
