package slurm

import (
	"fmt"
	"strings"
)

// QualifyHost appends domain to a bare host name and prefixes user@ when
// no user is given. An empty domain leaves the host unqualified.
func QualifyHost(host, user, domain string) string {
	h := strings.TrimSpace(host)
	if h == "" {
		return ""
	}
	name := h
	if i := strings.LastIndex(h, "@"); i >= 0 {
		name = h[i+1:]
	}
	if domain = strings.Trim(domain, ". "); domain != "" && !strings.Contains(name, ".") {
		h += "." + domain
	}
	if !strings.Contains(h, "@") && user != "" {
		h = user + "@" + h
	}
	return h
}

// RemoteCommandArgs are the ssh arguments for one non-interactive command
// on host. Connection sharing keeps repeated calls to a single password
// prompt.
func RemoteCommandArgs(host, command string) []string {
	return []string{
		"-T",
		"-o", "BatchMode=no",
		"-o", "StrictHostKeyChecking=no",
		"-o", "ConnectTimeout=5",
		"-o", "LogLevel=ERROR",
		"-o", "ControlMaster=auto",
		"-o", "ControlPersist=60",
		"-o", "ControlPath=~/.ssh/cm-%r@%h:%p",
		"-o", "NumberOfPasswordPrompts=1",
		"-o", "PreferredAuthentications=publickey,password",
		"-o", "KbdInteractiveAuthentication=no",
		host, command,
	}
}

// JobShellCommand changes into the job's scratch directory, trying dirs in
// order, then starts a login shell.
func JobShellCommand(jobID string, dirs []string) string {
	if len(dirs) == 0 {
		dirs = []string{"/lscratch", "/tmp", "/scratch"}
	}
	var b strings.Builder
	for _, d := range dirs {
		fmt.Fprintf(&b, "cd %s/%s 2>/dev/null || ", strings.TrimRight(d, "/"), jobID)
	}
	fmt.Fprintf(&b, `echo "[WARN] No job dir found under %s for %s on $(hostname)"; `, strings.Join(dirs, "|"), jobID)
	b.WriteString("pwd; exec $SHELL -l")
	return b.String()
}

// InteractiveShellArgs are the ssh arguments for a terminal session on node
// that starts in the job's scratch directory.
func InteractiveShellArgs(node, jobID string, dirs []string) []string {
	return []string{"-t", "-o", "StrictHostKeyChecking=no", node, JobShellCommand(jobID, dirs)}
}
