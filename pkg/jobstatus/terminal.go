package jobstatus

import (
	"bytes"
	"io"
	"os"

	"golang.org/x/term"
)

// IsTerminal reports whether f is attached to a terminal.
func IsTerminal(f *os.File) bool {
	return f != nil && term.IsTerminal(int(f.Fd()))
}

// KeyInput switches a terminal into raw mode and streams single key
// presses. Restore must run on every exit path.
type KeyInput struct {
	Keys <-chan byte

	fd    int
	state *term.State
	done  chan struct{}
}

// OpenKeys puts in into raw mode when it is a terminal. For anything else
// it returns a KeyInput with nil Keys and a no-op Restore.
//
// Stdin has no read deadline, so the reader goroutine outlives Restore
// until the next key press arrives; that byte is discarded and Keys is
// closed. A prompt following watch mode therefore loses at most one key.
func OpenKeys(in *os.File) (*KeyInput, error) {
	if !IsTerminal(in) {
		return &KeyInput{fd: -1}, nil
	}
	fd := int(in.Fd())
	state, err := term.MakeRaw(fd)
	if err != nil {
		return nil, err
	}

	done := make(chan struct{})
	return &KeyInput{Keys: readKeys(in, done), fd: fd, state: state, done: done}, nil
}

// readKeys streams single bytes from r until r fails or done is closed.
// Bytes read after done is closed are dropped.
func readKeys(r io.Reader, done <-chan struct{}) <-chan byte {
	keys := make(chan byte, 8)
	go func() {
		defer close(keys)
		buf := make([]byte, 1)
		for {
			n, err := r.Read(buf)
			if err != nil {
				return
			}
			select {
			case <-done:
				return
			default:
			}
			if n == 1 {
				select {
				case keys <- buf[0]:
				case <-done:
					return
				}
			}
		}
	}()
	return keys
}

// Raw reports whether the terminal is in raw mode.
func (k *KeyInput) Raw() bool {
	return k.state != nil
}

// Restore returns the terminal to its previous mode. Safe to call twice.
func (k *KeyInput) Restore() error {
	if k.state == nil {
		return nil
	}
	state := k.state
	k.state = nil
	if k.done != nil {
		close(k.done)
	}
	return term.Restore(k.fd, state)
}

// CRLFWriter translates "\n" into "\r\n"; raw mode disables output
// post-processing.
type CRLFWriter struct {
	W io.Writer
}

func (c CRLFWriter) Write(p []byte) (int, error) {
	if _, err := c.W.Write(bytes.ReplaceAll(p, []byte("\n"), []byte("\r\n"))); err != nil {
		return 0, err
	}
	return len(p), nil
}
