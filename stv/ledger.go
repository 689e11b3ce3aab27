package stv

import (
	"fmt"
	"sort"
	"strings"
)

// ledger stores candidates in declaration order; index is stable for the
// whole count and is what ballots refer to internally.
type ledger struct {
	candidates []Candidate
	index      map[string]int
}

func newLedger(ids []string) (*ledger, error) {
	if len(ids) == 0 {
		return nil, fmt.Errorf("%w: no candidates", ErrInvalidOptions)
	}

	l := &ledger{
		candidates: make([]Candidate, 0, len(ids)),
		index:      make(map[string]int, len(ids)),
	}

	for _, id := range ids {
		if strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("%w: empty candidate identifier", ErrInvalidOptions)
		}
		if _, ok := l.index[id]; ok {
			return nil, fmt.Errorf("%w: duplicate candidate %q", ErrInvalidOptions, id)
		}

		l.index[id] = len(l.candidates)
		l.candidates = append(l.candidates, Candidate{
			ID:       id,
			KeepRate: 1.0,
			Status:   Active,
		})
	}

	return l, nil
}

func (l *ledger) isActive(i int) bool {
	return l.candidates[i].Status == Active
}

// active returns the indexes of Active candidates in declaration order
func (l *ledger) active() []int {
	var out []int
	for i := range l.candidates {
		if l.isActive(i) {
			out = append(out, i)
		}
	}
	return out
}

// setStatus moves an Active candidate to s. A candidate that already left
// Active is never touched again.
func (l *ledger) setStatus(i int, s Status) bool {
	if !l.isActive(i) || s == Active {
		return false
	}
	l.candidates[i].Status = s
	return true
}

func (l *ledger) keepRates() []float64 {
	rates := make([]float64, len(l.candidates))
	for i := range l.candidates {
		rates[i] = l.candidates[i].KeepRate
	}
	return rates
}

// snapshot copies the ledger sorted by identifier for display
func (l *ledger) snapshot() []Candidate {
	out := make([]Candidate, len(l.candidates))
	copy(out, l.candidates)

	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})

	return out
}
