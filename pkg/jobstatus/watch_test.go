package jobstatus

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buf.String()
}

func fixedNow() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }

func TestWatcherQuitKey(t *testing.T) {
	keys := make(chan byte, 1)
	var out syncBuffer
	frames := 0

	w := &Watcher{
		Interval: time.Hour,
		Out:      &out,
		Keys:     keys,
		Now:      fixedNow,
		Render: func(_ context.Context, wr io.Writer, _ Painter) error {
			frames++
			_, err := io.WriteString(wr, "table\n")
			return err
		},
	}
	keys <- 'q'

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1, frames)
	s := out.String()
	assert.Contains(t, s, clearScreen+"2026-01-02 03:04:05  "+watchHint+"\ntable\n")
	assert.True(t, strings.HasSuffix(s, "\n[watch] exited.\n"))
}

func TestWatcherToggleColor(t *testing.T) {
	keys := make(chan byte, 2)
	var seen []bool

	w := &Watcher{
		Interval: time.Hour,
		Out:      io.Discard,
		Keys:     keys,
		Now:      fixedNow,
		Render: func(_ context.Context, _ io.Writer, p Painter) error {
			seen = append(seen, p.Enabled)
			return nil
		},
	}
	keys <- 'x'
	keys <- 'c'
	go func() {
		// second frame is drawn after the toggle; then quit
		time.Sleep(50 * time.Millisecond)
		keys <- 'Q'
	}()

	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, []bool{false, true}, seen)
}

func TestWatcherIntervalAndCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var out syncBuffer
	frames := 0

	w := &Watcher{
		Interval: 5 * time.Millisecond,
		Out:      &out,
		Now:      fixedNow,
		Render: func(_ context.Context, wr io.Writer, _ Painter) error {
			frames++
			if frames == 3 {
				cancel()
			}
			if frames == 2 {
				return errors.New("squeue: exit status 1")
			}
			return nil
		},
	}

	require.NoError(t, w.Run(ctx))
	assert.GreaterOrEqual(t, frames, 3)
	assert.Contains(t, out.String(), "[ERROR] squeue: exit status 1")
}

func TestWatcherClosedKeys(t *testing.T) {
	keys := make(chan byte)
	close(keys)
	ctx, cancel := context.WithCancel(context.Background())
	frames := 0

	w := &Watcher{
		Interval: time.Millisecond,
		Out:      io.Discard,
		Keys:     keys,
		Render: func(context.Context, io.Writer, Painter) error {
			frames++
			if frames == 2 {
				cancel()
			}
			return nil
		},
	}
	require.NoError(t, w.Run(ctx))
	assert.Equal(t, 2, frames)
}

func TestCRLFWriter(t *testing.T) {
	var buf bytes.Buffer
	n, err := CRLFWriter{W: &buf}.Write([]byte("a\nb\n"))
	require.NoError(t, err)
	assert.Equal(t, 4, n)
	assert.Equal(t, "a\r\nb\r\n", buf.String())
}

func TestOpenKeysNonTerminal(t *testing.T) {
	k, err := OpenKeys(nil)
	require.NoError(t, err)
	assert.Nil(t, k.Keys)
	assert.False(t, k.Raw())
	assert.NoError(t, k.Restore())
}
