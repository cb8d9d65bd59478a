package slurm

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// FirstNode converts a Slurm node list into one concrete host name:
// "c1028" stays, "c[1028-1030,1040]" becomes "c1028", "a,b" becomes "a".
// Placeholders such as "None assigned" and parenthesized pending reasons
// from %R ("(Priority)", "(null)") yield "".
func FirstNode(nodelist string) string {
	val := strings.TrimSpace(nodelist)
	switch val {
	case "", "None", "None assigned":
		return ""
	}
	if strings.HasPrefix(val, "(") && strings.HasSuffix(val, ")") {
		return ""
	}

	open := strings.Index(val, "[")
	closing := strings.LastIndex(val, "]")
	if open < 0 || closing < open {
		first, _, _ := strings.Cut(val, ",")
		return strings.TrimSpace(first)
	}

	prefix := val[:open]
	inside := val[open+1 : closing]
	first, _, _ := strings.Cut(inside, ",")
	start, _, _ := strings.Cut(first, "-")
	return prefix + start
}

// ParseSelection parses "1,3-5,7" into sorted unique indices in [1, n].
// Out-of-range and malformed tokens are ignored; reversed ranges are
// accepted.
func ParseSelection(s string, n int) []int {
	set := make(map[int]struct{})
	for _, tok := range strings.Split(strings.ReplaceAll(s, " ", ""), ",") {
		if tok == "" {
			continue
		}
		if a, b, isRange := strings.Cut(tok, "-"); isRange {
			lo, err1 := strconv.Atoi(a)
			hi, err2 := strconv.Atoi(b)
			if err1 != nil || err2 != nil {
				continue
			}
			if lo > hi {
				lo, hi = hi, lo
			}
			for i := max(lo, 1); i <= min(hi, n); i++ {
				set[i] = struct{}{}
			}
			continue
		}
		i, err := strconv.Atoi(tok)
		if err != nil {
			continue
		}
		if i >= 1 && i <= n {
			set[i] = struct{}{}
		}
	}

	out := make([]int, 0, len(set))
	for i := range set {
		out = append(out, i)
	}
	sort.Ints(out)
	return out
}

// ParseWindow parses a history window: "24h", "24" or "h" (zero hours).
func ParseWindow(s string) (time.Duration, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "" {
		return 0, fmt.Errorf("%w: empty history window", ErrInvalidOptions)
	}
	v = strings.TrimSuffix(v, "h")
	if v == "" {
		return 0, nil
	}
	hours, err := strconv.Atoi(v)
	if err != nil || hours < 0 {
		return 0, fmt.Errorf("%w: history window %q (want hours, e.g. 24h)", ErrInvalidOptions, s)
	}
	return time.Duration(hours) * time.Hour, nil
}
