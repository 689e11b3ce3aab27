package stv

import (
	"fmt"
	"io"
	"math"
	"sort"

	log "github.com/sirupsen/logrus"
)

// Election is a single Meek count. It exclusively owns its ledger and
// ballot store and is not safe for concurrent use.
type Election struct {
	// Config stuff
	runID         string
	winners       int
	threshold     float64
	maxIterations int
	verbose       bool

	// Count state
	ledger  *ledger
	ballots *ballotStore
	quota   int
	round   int

	// Reporting
	logger   log.FieldLogger
	observer Observer
}

// New validates the options and ballots and prepares a count
func New(opts Options, ballots []Ballot) (*Election, error) {
	l, err := newLedger(opts.Candidates)
	if err != nil {
		return nil, err
	}

	if opts.Winners < 1 || opts.Winners > len(opts.Candidates) {
		return nil, fmt.Errorf("%w: winners must be between 1 and %d, got %d", ErrInvalidOptions, len(opts.Candidates), opts.Winners)
	}

	if opts.MaxIterations < 0 {
		return nil, fmt.Errorf("%w: max iterations must not be negative, got %d", ErrInvalidOptions, opts.MaxIterations)
	}

	// Zero picks the default. Anything else must be a usable cutoff for a
	// ballot worth at most 1.
	t := opts.Threshold
	if math.IsNaN(t) || t < 0 || t >= 1 {
		return nil, fmt.Errorf("%w: threshold must be in [0, 1), got %v", ErrInvalidOptions, t)
	}

	store, err := newBallotStore(l, ballots)
	if err != nil {
		return nil, err
	}

	e := &Election{
		runID:         opts.RunID,
		winners:       opts.Winners,
		threshold:     opts.Threshold,
		maxIterations: opts.MaxIterations,
		verbose:       opts.Verbose,
		ledger:        l,
		ballots:       store,
		logger:        opts.Logger,
		observer:      opts.Observer,
	}

	if e.threshold == 0 {
		e.threshold = DefaultThreshold
	}
	if e.maxIterations == 0 {
		e.maxIterations = DefaultMaxIterations
	}
	if e.logger == nil {
		discard := log.New()
		discard.Out = io.Discard
		e.logger = discard
	}
	if e.runID != "" {
		e.logger = e.logger.WithField("run", e.runID)
	}

	return e, nil
}

// Run performs the whole count. With no ballots it returns
// ErrNoValidBallots before the quota is computed and leaves every
// candidate Active.
func (e *Election) Run() (Result, error) {
	if e.ballots.Len() == 0 {
		return Result{}, ErrNoValidBallots
	}

	e.quota = Quota(e.ballots.Len(), e.winners)
	e.logger.WithFields(log.Fields{
		"quota":   e.quota,
		"ballots": e.ballots.Len(),
		"winners": e.winners,
	}).Info("Droop quota computed")

	e.emit(Event{Kind: QuotaComputed, Quota: e.quota})

	e.rounds()

	res := e.result()
	e.emit(Event{Kind: Completed, Round: e.round, Quota: e.quota, Candidates: res.Candidates})

	return res, nil
}

// Quota is the Droop quota floor(ballots/(winners+1)) + 1
func Quota(ballots, winners int) int {
	return ballots/(winners+1) + 1
}

// Quota returns the quota fixed for this count, zero before Run
func (e *Election) Quota() int {
	return e.quota
}

// Candidates returns a copy of the ledger sorted by identifier
func (e *Election) Candidates() []Candidate {
	return e.ledger.snapshot()
}

func (e *Election) result() Result {
	res := Result{
		RunID:       e.runID,
		Quota:       e.quota,
		Rounds:      e.round,
		BallotCount: e.ballots.Len(),
		Winners:     []string{},
		Candidates:  e.ledger.snapshot(),
	}

	for _, c := range res.Candidates {
		if c.Status == Elected {
			res.Winners = append(res.Winners, c.ID)
		}
	}
	sort.Strings(res.Winners)

	return res
}
