package stv

import (
	"math"

	log "github.com/sirupsen/logrus"
)

// converge runs Meek's fixed-point iteration for the current round. Keep
// rates of Active candidates restart at 1 and shrink by quota/votes while a
// candidate is over quota, until the summed change drops under the
// threshold or the iteration cap is hit. Hitting the cap is only a warning.
func (e *Election) converge() {
	cands := e.ledger.candidates

	for i := range cands {
		if cands[i].Status == Active {
			cands[i].KeepRate = 1.0
		}
	}

	e.emitSnapshot(IterationStarted)

	quota := float64(e.quota)
	converged := false

	for it := 1; it <= e.maxIterations; it++ {
		previous := e.ledger.keepRates()

		e.redistribute()

		for i := range cands {
			if cands[i].Status == Active && cands[i].Votes > quota {
				cands[i].KeepRate *= quota / cands[i].Votes
			}
		}

		change := 0.0
		for i := range cands {
			change += math.Abs(cands[i].KeepRate - previous[i])
		}

		ev := Event{
			Kind:       IterationCompleted,
			Round:      e.round,
			Iteration:  it,
			RateChange: change,
		}
		if e.verbose {
			ev.Candidates = e.ledger.snapshot()
		}
		e.emit(ev)

		if change < e.threshold {
			converged = true
			e.emit(Event{Kind: Converged, Round: e.round, Iteration: it})
			break
		}
	}

	if !converged {
		e.logger.WithFields(log.Fields{
			"round":      e.round,
			"iterations": e.maxIterations,
		}).Warn("keep rates did not converge, continuing with last values")

		e.emit(Event{Kind: NotConverged, Round: e.round, Iteration: e.maxIterations})
	}

	e.redistribute()
	e.emitSnapshot(IterationFinished)
}
