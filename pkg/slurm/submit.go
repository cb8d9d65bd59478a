package slurm

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
)

// Submit runs sbatch on script with the working directory set to the
// script's own directory, and returns the scheduler job id.
func Submit(ctx context.Context, r Runner, script string) (string, error) {
	dir := filepath.Dir(script)
	out, err := r.Run(ctx, "sbatch", "--chdir="+dir, script)
	if err != nil {
		return "", err
	}
	return ParseSubmitted(out)
}

// ParseSubmitted extracts the id from "Submitted batch job <id>" (optionally
// followed by " on cluster <name>").
func ParseSubmitted(out string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 4 && fields[0] == "Submitted" && fields[1] == "batch" && fields[2] == "job" {
			return fields[3], nil
		}
	}
	return "", fmt.Errorf("%w: sbatch printed %q", ErrUnexpectedOutput, strings.TrimSpace(out))
}
