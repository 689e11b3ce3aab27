package loader

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode"

	"github.com/krantius/meek-stv/stv"
	log "github.com/sirupsen/logrus"
)

var (
	ErrDuplicateCandidate = errors.New("duplicate candidate")
	ErrUnknownCandidate   = errors.New("unknown candidate")
)

// Source is anything that can hand back raw ballot lines in order
type Source interface {
	Lines(ctx context.Context) ([]string, error)
}

// Rejection records a ballot line that never reached the count
type Rejection struct {
	LineNo int    `json:"line"`
	Line   string `json:"ballot"`
	Reason string `json:"reason"`
}

type Loaded struct {
	Ballots  []stv.Ballot
	Rejected []Rejection
}

// Load reads every line from src and keeps the ones that are valid for the
// given candidates. Blank lines are skipped silently.
func Load(ctx context.Context, src Source, candidates []string, logger log.FieldLogger) (Loaded, error) {
	if logger == nil {
		discard := log.New()
		discard.Out = io.Discard
		logger = discard
	}

	lines, err := src.Lines(ctx)
	if err != nil {
		return Loaded{}, err
	}

	known := Known(candidates)
	loaded := Loaded{}

	for n, line := range lines {
		b := ParseBallot(line, known)
		if len(b) == 0 {
			continue
		}

		if err := Validate(b, known); err != nil {
			logger.WithFields(log.Fields{
				"line":   n + 1,
				"ballot": strings.TrimSpace(line),
			}).Debugf("Invalid ballot: %v", err)

			loaded.Rejected = append(loaded.Rejected, Rejection{
				LineNo: n + 1,
				Line:   strings.TrimSpace(line),
				Reason: err.Error(),
			})
			continue
		}

		loaded.Ballots = append(loaded.Ballots, b)
	}

	logger.WithFields(log.Fields{
		"valid":    len(loaded.Ballots),
		"rejected": len(loaded.Rejected),
	}).Info("Ballots loaded")

	return loaded, nil
}

// Known builds the membership set used by Validate
func Known(candidates []string) map[string]bool {
	known := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		known[c] = true
	}
	return known
}

// Validate rejects ballots that repeat a candidate or name one that is not
// standing
func Validate(b stv.Ballot, known map[string]bool) error {
	seen := make(map[string]bool, len(b))
	for _, id := range b {
		if !known[id] {
			return fmt.Errorf("%w %q", ErrUnknownCandidate, id)
		}
		if seen[id] {
			return fmt.Errorf("%w %q", ErrDuplicateCandidate, id)
		}
		seen[id] = true
	}
	return nil
}

// ParseCandidates splits on commas or whitespace. Without any separator
// every character is its own candidate, so "ABCDE" is five candidates.
func ParseCandidates(s string) []string {
	return split(s)
}

// ParseBallot uses the same rule as ParseCandidates: "ACB" and "A, C, B" are
// the same ballot. A separator-free line that is itself a known candidate
// stays whole, so "alice" is one preference and not five.
func ParseBallot(line string, known map[string]bool) stv.Ballot {
	if s := strings.TrimSpace(line); known[s] {
		return stv.Ballot{s}
	}
	return stv.Ballot(split(line))
}

func split(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	separator := func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	}

	if strings.IndexFunc(s, separator) >= 0 {
		return strings.FieldsFunc(s, separator)
	}

	out := make([]string, 0, len(s))
	for _, r := range s {
		out = append(out, string(r))
	}
	return out
}
