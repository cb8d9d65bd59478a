package slurm

import "strings"

// Canonical state keys.
const (
	StateRunning     = "RUNNING"
	StatePending     = "PENDING"
	StateCompleted   = "COMPLETED"
	StateCompleting  = "COMPLETING"
	StateConfiguring = "CONFIGURING"
	StateFailed      = "FAILED"
	StateCancelled   = "CANCELLED"
	StateTimeout     = "TIMEOUT"
	StateOutOfMemory = "OUT_OF_MEMORY"
	StateSuspended   = "SUSPENDED"
)

// NormalizeState maps scheduler state variants ("CANCELLED by 123",
// "OOM") onto canonical keys. Unknown states are upper-cased.
func NormalizeState(state string) string {
	s := strings.ToUpper(strings.TrimSpace(state))
	switch {
	case strings.HasPrefix(s, "CANCELLED"):
		return StateCancelled
	case strings.HasPrefix(s, "RUNNING"):
		return StateRunning
	case strings.HasPrefix(s, "PENDING"):
		return StatePending
	case strings.HasPrefix(s, "COMPLETED"):
		return StateCompleted
	case strings.Contains(s, "TIMEOUT"):
		return StateTimeout
	case strings.Contains(s, "OUT_OF_MEMORY"), strings.Contains(s, "OOM"):
		return StateOutOfMemory
	case strings.HasPrefix(s, "FAILED"):
		return StateFailed
	case strings.HasPrefix(s, "SUSPENDED"):
		return StateSuspended
	case strings.HasPrefix(s, "COMPLETING"):
		return StateCompleting
	case strings.HasPrefix(s, "CONFIGURING"):
		return StateConfiguring
	}
	return s
}

// IsRunning reports a running job.
func IsRunning(state string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(state)), "RUN")
}

// IsCancellable reports a job that has not reached a final state: running,
// pending or configuring.
func IsCancellable(state string) bool {
	s := strings.ToUpper(strings.TrimSpace(state))
	for _, p := range []string{"RUNN", "PEND", "CONFIG"} {
		if strings.HasPrefix(s, p) {
			return true
		}
	}
	return false
}
