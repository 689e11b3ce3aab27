package stv

import (
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
)

// rounds alternates converge+eliminate while more candidates are Active
// than there are seats, then runs the terminal round.
func (e *Election) rounds() {
	for {
		e.round++

		if len(e.ledger.active()) <= e.winners {
			e.finalRound()
			return
		}

		e.emit(Event{Kind: RoundStarted, Round: e.round})

		e.converge()
		e.eliminate()
	}
}

// eliminate removes every Active candidate within threshold of the lowest
// vote total. Ties go out together.
func (e *Election) eliminate() {
	active := e.ledger.active()
	if len(active) == 0 {
		return
	}

	lowest := math.Inf(1)
	for _, i := range active {
		if v := e.ledger.candidates[i].Votes; v < lowest {
			lowest = v
		}
	}

	for _, i := range active {
		c := &e.ledger.candidates[i]
		if math.Abs(c.Votes-lowest) >= e.threshold {
			continue
		}

		e.ledger.setStatus(i, Eliminated)

		e.logger.WithFields(log.Fields{
			"round":     e.round,
			"candidate": c.ID,
			"votes":     c.Votes,
		}).Debug("Eliminated lowest candidate")

		e.emitCandidate(CandidateEliminated, i)
	}
}

// finalRound converges once more and decides everybody still Active.
// Winning needs strictly more than the quota.
func (e *Election) finalRound() {
	e.emit(Event{Kind: RoundStarted, Round: e.round, Final: true})

	e.converge()

	active := e.ledger.active()

	// Highest first so observers see winners in vote order
	sort.SliceStable(active, func(a, b int) bool {
		return e.ledger.candidates[active[a]].Votes > e.ledger.candidates[active[b]].Votes
	})

	quota := float64(e.quota)
	for _, i := range active {
		c := &e.ledger.candidates[i]

		if c.Votes > quota {
			e.ledger.setStatus(i, Elected)
			e.emitCandidate(CandidateElected, i)
		} else {
			e.ledger.setStatus(i, Eliminated)
			e.emitCandidate(CandidateDefeated, i)
		}

		e.logger.WithFields(log.Fields{
			"round":     e.round,
			"candidate": c.ID,
			"votes":     c.Votes,
			"status":    c.Status,
		}).Debug("Final decision")
	}
}
