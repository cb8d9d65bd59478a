package jobstatus

import (
	"context"
	"fmt"
	"io"
	"strings"
	"time"
)

// DefaultWatchInterval is used when no interval is given.
const DefaultWatchInterval = 3 * time.Second

const (
	clearScreen = "\x1b[H\x1b[2J"
	watchHint   = "[watch] press 'q' to quit, 'c' to toggle color"
	keyCtrlC    = 0x03
)

// RenderFunc draws one frame.
type RenderFunc func(ctx context.Context, w io.Writer, p Painter) error

// Watcher redraws a view on an interval until the context ends or the
// user quits.
type Watcher struct {
	Interval time.Duration
	Out      io.Writer
	Painter  Painter
	Render   RenderFunc

	// Keys delivers key presses; nil means non-interactive.
	Keys <-chan byte

	// Now stamps each frame; nil means time.Now.
	Now func() time.Time
}

// Run loops until ctx is done or 'q' (or Ctrl-C in raw mode) is pressed.
// 'c' toggles color and redraws at once. Render errors are shown in the
// frame and do not stop the loop.
func (w *Watcher) Run(ctx context.Context) error {
	interval := w.Interval
	if interval <= 0 {
		interval = DefaultWatchInterval
	}
	now := w.Now
	if now == nil {
		now = time.Now
	}

	for {
		if err := w.frame(ctx, now()); err != nil {
			return err
		}

		quit, err := w.wait(ctx, interval)
		if err != nil {
			return err
		}
		if quit {
			_, err := io.WriteString(w.Out, "\n[watch] exited.\n")
			return err
		}
	}
}

func (w *Watcher) frame(ctx context.Context, ts time.Time) error {
	var b strings.Builder
	b.WriteString(clearScreen)
	fmt.Fprintf(&b, "%s  %s\n", w.Painter.Paint(StyleHeader, ts.Format("2006-01-02 15:04:05")), w.Painter.Paint(StyleDim, watchHint))
	if err := w.Render(ctx, &b, w.Painter); err != nil {
		if ctx.Err() != nil {
			return nil
		}
		fmt.Fprintf(&b, "%s\n", w.Painter.Paint(StyleErr, "[ERROR] "+err.Error()))
	}
	_, err := io.WriteString(w.Out, b.String())
	return err
}

// wait blocks for one interval. It returns early, without quitting, when
// color is toggled.
func (w *Watcher) wait(ctx context.Context, interval time.Duration) (quit bool, err error) {
	timer := time.NewTimer(interval)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return true, nil
		case <-timer.C:
			return false, nil
		case k, ok := <-w.Keys:
			if !ok {
				// input closed; keep refreshing without key control
				w.Keys = nil
				continue
			}
			switch k {
			case 'q', 'Q', keyCtrlC:
				return true, nil
			case 'c', 'C':
				w.Painter.Enabled = !w.Painter.Enabled
				return false, nil
			}
		}
	}
}
