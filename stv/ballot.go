package stv

import "fmt"

// ballotStore holds every accepted ballot as a sequence of ledger indexes.
// It is filled once by newBallotStore and never changes afterwards.
type ballotStore struct {
	ballots [][]int
}

func newBallotStore(l *ledger, ballots []Ballot) (*ballotStore, error) {
	s := &ballotStore{
		ballots: make([][]int, 0, len(ballots)),
	}

	for n, b := range ballots {
		prefs, err := s.resolve(l, b)
		if err != nil {
			return nil, fmt.Errorf("ballot %d: %w", n, err)
		}
		s.ballots = append(s.ballots, prefs)
	}

	return s, nil
}

// resolve maps identifiers to ledger indexes, refusing unknown and repeated
// candidates
func (s *ballotStore) resolve(l *ledger, b Ballot) ([]int, error) {
	prefs := make([]int, 0, len(b))
	seen := make(map[int]bool, len(b))

	for _, id := range b {
		i, ok := l.index[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown candidate %q", ErrInvalidBallot, id)
		}
		if seen[i] {
			return nil, fmt.Errorf("%w: duplicate candidate %q", ErrInvalidBallot, id)
		}
		seen[i] = true
		prefs = append(prefs, i)
	}

	return prefs, nil
}

func (s *ballotStore) Len() int {
	return len(s.ballots)
}
