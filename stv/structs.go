package stv

import (
	"errors"

	log "github.com/sirupsen/logrus"
)

const (
	DefaultThreshold     = 1e-9
	DefaultMaxIterations = 1000
)

var (
	ErrNoValidBallots = errors.New("no valid ballots")
	ErrInvalidOptions = errors.New("invalid election options")
	ErrInvalidBallot  = errors.New("invalid ballot")
)

type Status string

const (
	Active     Status = "active"
	Elected    Status = "elected"
	Eliminated Status = "eliminated"
)

// Candidate is one row of the ledger. Votes is recomputed from zero on
// every redistribution pass, KeepRate only means something while Active.
type Candidate struct {
	ID       string  `json:"id"`
	Votes    float64 `json:"votes"`
	KeepRate float64 `json:"keep_rate"`
	Status   Status  `json:"status"`
}

// Ballot is an ordered list of distinct candidate identifiers, most
// preferred first.
type Ballot []string

// Options contains the settings needed to run one count
type Options struct {
	Candidates []string
	Winners    int

	// Convergence settings, zero values fall back to the defaults
	Threshold     float64
	MaxIterations int

	// Verbose only controls which events reach the Observer
	Verbose  bool
	RunID    string
	Logger   log.FieldLogger
	Observer Observer
}

// Result is the read-only outcome handed back to callers after Run
type Result struct {
	RunID       string      `json:"run_id,omitempty"`
	Quota       int         `json:"quota"`
	Rounds      int         `json:"rounds"`
	BallotCount int         `json:"ballot_count"`
	Winners     []string    `json:"winners"`
	Candidates  []Candidate `json:"candidates"`
}
