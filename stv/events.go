package stv

type EventKind string

const (
	QuotaComputed       EventKind = "quota_computed"
	RoundStarted        EventKind = "round_started"
	IterationStarted    EventKind = "iteration_started"
	IterationCompleted  EventKind = "iteration_completed"
	Converged           EventKind = "converged"
	NotConverged        EventKind = "not_converged"
	IterationFinished   EventKind = "iteration_finished"
	CandidateEliminated EventKind = "candidate_eliminated"
	CandidateElected    EventKind = "candidate_elected"
	CandidateDefeated   EventKind = "candidate_defeated"
	Completed           EventKind = "completed"
)

// verboseOnly lists the events that are only emitted when Options.Verbose
// is set
var verboseOnly = map[EventKind]bool{
	IterationStarted:   true,
	IterationCompleted: true,
	Converged:          true,
	IterationFinished:  true,
}

// Event is a read-only view of the count at one point in time. Fields that
// do not apply to Kind are left zero.
type Event struct {
	Kind       EventKind   `json:"kind"`
	Round      int         `json:"round,omitempty"`
	Final      bool        `json:"final,omitempty"`
	Iteration  int         `json:"iteration,omitempty"`
	RateChange float64     `json:"rate_change,omitempty"`
	Quota      int         `json:"quota,omitempty"`
	Candidate  *Candidate  `json:"candidate,omitempty"`
	Candidates []Candidate `json:"candidates,omitempty"`
}

// Observer is implemented by callers that want to display progress.
// Nothing an Observer does can feed back into the count.
type Observer interface {
	Observe(e Event)
}

// Recorder keeps every event it sees
type Recorder struct {
	Events []Event
}

func (r *Recorder) Observe(e Event) {
	r.Events = append(r.Events, e)
}

// Kinds returns the recorded event kinds in order
func (r *Recorder) Kinds() []EventKind {
	kinds := make([]EventKind, len(r.Events))
	for i, e := range r.Events {
		kinds[i] = e.Kind
	}
	return kinds
}

func (e *Election) emit(ev Event) {
	if e.observer == nil {
		return
	}
	if verboseOnly[ev.Kind] && !e.verbose {
		return
	}
	e.observer.Observe(ev)
}

func (e *Election) emitCandidate(kind EventKind, i int) {
	c := e.ledger.candidates[i]
	e.emit(Event{
		Kind:      kind,
		Round:     e.round,
		Quota:     e.quota,
		Candidate: &c,
	})
}

func (e *Election) emitSnapshot(kind EventKind) {
	if e.observer == nil || !e.verbose {
		return
	}
	e.emit(Event{
		Kind:       kind,
		Round:      e.round,
		Candidates: e.ledger.snapshot(),
	})
}
