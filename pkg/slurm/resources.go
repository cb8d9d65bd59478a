package slurm

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"regexp"
	"strconv"
	"strings"
)

// Resource defaults used when an input declares none.
const (
	DefaultProcs     = 32
	DefaultMaxCoreMB = 4000
)

var palBangRe = regexp.MustCompile(`(?i)pal\s*(\d+)`)

// Resources are the parallel resources an ORCA input requests.
type Resources struct {
	Procs     int
	MaxCoreMB int
}

// MemoryMB is the whole-job memory request: procs times per-core memory.
func (r Resources) MemoryMB() int {
	return r.Procs * r.MaxCoreMB
}

// ExtractResources scans ORCA input text for the %pal nprocs value, the
// %maxcore value and any "! ... PALn" keyword. Later declarations win;
// unparsable values are ignored.
func ExtractResources(r io.Reader) (Resources, error) {
	res := Resources{Procs: DefaultProcs, MaxCoreMB: DefaultMaxCoreMB}

	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	insidePal := false
	for sc.Scan() {
		l := strings.ToLower(strings.TrimSpace(sc.Text()))

		if strings.HasPrefix(l, "%pal") {
			fields := strings.Fields(l)
			for i := 0; i+1 < len(fields); i++ {
				if fields[i] == "nprocs" {
					if n, err := strconv.Atoi(fields[i+1]); err == nil {
						res.Procs = n
					}
				}
			}
			// one-line form: %pal nprocs 8 end
			insidePal = fields[len(fields)-1] != "end"
			continue
		}
		if insidePal {
			if strings.HasPrefix(l, "end") {
				insidePal = false
			} else if strings.Contains(l, "nprocs") {
				if n, ok := secondInt(l); ok {
					res.Procs = n
				}
			}
		}
		if strings.HasPrefix(l, "%maxcore") {
			if n, ok := secondInt(l); ok {
				res.MaxCoreMB = n
			}
		}
		if strings.HasPrefix(l, "!") {
			if m := palBangRe.FindStringSubmatch(l); m != nil {
				if n, err := strconv.Atoi(m[1]); err == nil {
					res.Procs = n
				}
			}
		}
	}
	if err := sc.Err(); err != nil {
		return Resources{}, fmt.Errorf("scan input: %w", err)
	}
	return res, nil
}

// ExtractResourcesFile is ExtractResources over a file.
func ExtractResourcesFile(path string) (Resources, error) {
	f, err := os.Open(path)
	if err != nil {
		return Resources{}, err
	}
	defer f.Close()
	return ExtractResources(f)
}

func secondInt(line string) (int, bool) {
	fields := strings.Fields(line)
	if len(fields) < 2 {
		return 0, false
	}
	n, err := strconv.Atoi(fields[1])
	if err != nil {
		return 0, false
	}
	return n, true
}
