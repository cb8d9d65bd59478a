package prompt

import (
	"context"
	"fmt"
	"sync"
)

// Scripted is a Driver that replays canned answers in order.
type Scripted struct {
	mu      sync.Mutex
	Inputs  []string
	Selects []int
	Multis  [][]int

	// Asked records every prompt message.
	Asked []string
}

func (s *Scripted) Input(ctx context.Context, cfg InputConfig) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.Inputs) == 0 {
		return "", fmt.Errorf("%w: no scripted input for %q", ErrAborted, cfg.Message)
	}
	v := s.Inputs[0]
	s.Inputs = s.Inputs[1:]
	if cfg.Validator != nil {
		if err := cfg.Validator(v); err != nil {
			return "", err
		}
	}
	return v, nil
}

func (s *Scripted) Select(ctx context.Context, cfg SelectConfig) (int, error) {
	if err := ctx.Err(); err != nil {
		return -1, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.Selects) == 0 {
		return -1, fmt.Errorf("%w: no scripted selection for %q", ErrAborted, cfg.Message)
	}
	v := s.Selects[0]
	s.Selects = s.Selects[1:]
	if v < 0 || v >= len(cfg.Options) {
		return -1, fmt.Errorf("scripted selection %d out of range", v)
	}
	return v, nil
}

func (s *Scripted) MultiSelect(ctx context.Context, cfg SelectConfig) ([]int, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Asked = append(s.Asked, cfg.Message)
	if len(s.Multis) == 0 {
		return nil, fmt.Errorf("%w: no scripted multi-selection for %q", ErrAborted, cfg.Message)
	}
	v := s.Multis[0]
	s.Multis = s.Multis[1:]
	return v, nil
}
