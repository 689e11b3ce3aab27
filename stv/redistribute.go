package stv

// redistribute recomputes every candidate's votes from zero by walking all
// ballots with the current keep rates. Elected and Eliminated candidates keep
// nothing and pass the whole remaining value on. The return value is the
// total ballot value that nobody kept (exhausted).
func (e *Election) redistribute() float64 {
	cands := e.ledger.candidates

	for i := range cands {
		cands[i].Votes = 0
	}

	exhausted := 0.0

	for _, prefs := range e.ballots.ballots {
		value := 1.0

		for _, i := range prefs {
			if value < e.threshold {
				break
			}

			rate := 0.0
			if cands[i].Status == Active {
				rate = cands[i].KeepRate
			}

			transfer := value * rate
			cands[i].Votes += transfer
			value -= transfer
		}

		exhausted += value
	}

	return exhausted
}
