package jobstatus

import (
	"io"
	"strings"

	"github.com/chemflow/orcakit/pkg/slurm"
)

// Headers are the status table columns.
var Headers = []string{"JOBID", "NAME", "STATE", "ELAPSED", "CPUS", "MEM", "PARTITION", "NODE"}

const (
	colState = 2
	colNode  = 7
)

// RenderTable writes jobs as an aligned table. Widths are computed on
// visible text so colored cells line up.
func RenderTable(w io.Writer, jobs []slurm.Job, p Painter) error {
	rows := make([][]string, len(jobs))
	for i, j := range jobs {
		rows[i] = j.Row()
	}

	widths := make([]int, len(Headers))
	for i, h := range Headers {
		widths[i] = VisibleLen(h)
		for _, r := range rows {
			if i < len(r) {
				widths[i] = max(widths[i], VisibleLen(r[i]))
			}
		}
	}

	var b strings.Builder
	head := make([]string, len(Headers))
	for i, h := range Headers {
		head[i] = p.Paint(StyleHeader, h)
	}
	writeRow(&b, head, widths)

	for _, r := range rows {
		cells := append([]string(nil), r...)
		cells[colState] = p.State(cells[colState])
		if n := cells[colNode]; n != "" && n != "-" {
			cells[colNode] = p.Paint(StyleNode, n)
		}
		writeRow(&b, cells, widths)
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func writeRow(b *strings.Builder, cells []string, widths []int) {
	out := make([]string, len(widths))
	for i := range widths {
		cell := ""
		if i < len(cells) {
			cell = cells[i]
		}
		if pad := widths[i] - VisibleLen(cell); pad > 0 {
			cell += strings.Repeat(" ", pad)
		}
		out[i] = cell
	}
	b.WriteString(strings.Join(out, "  "))
	b.WriteByte('\n')
}
