// Package report renders a count for people: progress while it runs and the
// final standings once it is done.
package report

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/krantius/meek-stv/loader"
	"github.com/krantius/meek-stv/stv"
)

// Printer is an stv.Observer that writes human readable progress
type Printer struct {
	w io.Writer

	header  *color.Color
	plain   *color.Color
	good    *color.Color
	bad     *color.Color
	warn    *color.Color
	subtle  *color.Color
	verbose bool
}

func NewPrinter(w io.Writer, verbose, noColor bool) *Printer {
	p := &Printer{
		w:       w,
		header:  color.New(color.FgCyan, color.Bold),
		plain:   color.New(color.Reset),
		good:    color.New(color.FgGreen),
		bad:     color.New(color.FgRed),
		warn:    color.New(color.FgYellow),
		subtle:  color.New(color.FgHiBlack),
		verbose: verbose,
	}

	if noColor {
		for _, c := range []*color.Color{p.header, p.plain, p.good, p.bad, p.warn, p.subtle} {
			c.DisableColor()
		}
	}

	return p
}

func (p *Printer) Start() {
	p.plain.Fprintln(p.w, "Starting election...")
}

// Loaded reports how many ballots survived validation. Rejected lines are
// only listed in verbose mode.
func (p *Printer) Loaded(l loader.Loaded) {
	if p.verbose {
		for _, r := range l.Rejected {
			p.warn.Fprintf(p.w, "Invalid ballot on line %d: %s (%s)\n", r.LineNo, r.Line, r.Reason)
		}
	}
	p.plain.Fprintf(p.w, "Loaded %d valid ballots.\n", len(l.Ballots))
}

func (p *Printer) NoBallots() {
	p.warn.Fprintln(p.w, "There were no valid ballots. Ending the election.")
}

func (p *Printer) Observe(ev stv.Event) {
	switch ev.Kind {
	case stv.QuotaComputed:
		p.plain.Fprintf(p.w, "Quota (Droop): %d\n", ev.Quota)

	case stv.RoundStarted:
		if ev.Final {
			p.header.Fprintf(p.w, "\n--- Final round: %d ---\n", ev.Round)
		} else {
			p.header.Fprintf(p.w, "\n--- Round %d ---\n", ev.Round)
		}

	case stv.IterationStarted:
		p.summary("start of iteration", ev.Candidates)

	case stv.IterationCompleted:
		p.subtle.Fprintf(p.w, "  [iteration %d] keep rate change: %.6f\n", ev.Iteration, ev.RateChange)

	case stv.Converged:
		p.subtle.Fprintln(p.w, "  Keep rates converged.")

	case stv.NotConverged:
		p.warn.Fprintf(p.w, "Warning: keep rates did not converge after %d iterations.\n", ev.Iteration)

	case stv.IterationFinished:
		p.summary("end of iteration", ev.Candidates)

	case stv.CandidateEliminated:
		p.bad.Fprintf(p.w, "Eliminated: %s (votes: %.4f) - lowest\n", ev.Candidate.ID, ev.Candidate.Votes)

	case stv.CandidateElected:
		p.good.Fprintf(p.w, "Elected: %s (votes: %.4f)\n", ev.Candidate.ID, ev.Candidate.Votes)

	case stv.CandidateDefeated:
		p.bad.Fprintf(p.w, "Not elected: %s (votes: %.4f)\n", ev.Candidate.ID, ev.Candidate.Votes)
	}
}

func (p *Printer) summary(timing string, cands []stv.Candidate) {
	p.subtle.Fprintf(p.w, "  --- %s ---\n", timing)
	for _, c := range cands {
		p.plain.Fprintf(p.w, "    %s: %.4f (%s) [keep rate: %.4f]\n", c.ID, c.Votes, c.Status, c.KeepRate)
	}
}

// Final prints the winners and every candidate's last vote total, both
// sorted by identifier
func (p *Printer) Final(res stv.Result) {
	p.header.Fprintln(p.w, "\n--- Election results ---")
	p.plain.Fprintf(p.w, "Winners (%d):\n", len(res.Winners))
	for _, id := range res.Winners {
		p.good.Fprintf(p.w, "  - %s\n", id)
	}

	p.plain.Fprintln(p.w, "\nFinal standings:")
	for _, c := range res.Candidates {
		line := fmt.Sprintf("  - %s: %.4f (%s)", c.ID, c.Votes, c.Status)
		if c.Status == stv.Elected {
			p.good.Fprintln(p.w, line)
		} else {
			p.plain.Fprintln(p.w, line)
		}
	}
}
