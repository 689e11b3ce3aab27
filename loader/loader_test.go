package loader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/krantius/meek-stv/stv"
	log "github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"
)

func TestParseCandidates(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected []string
	}{
		{name: "Compact", input: "ABCDE", expected: []string{"A", "B", "C", "D", "E"}},
		{name: "Comma separated", input: "alice,bob,carol", expected: []string{"alice", "bob", "carol"}},
		{name: "Mixed separators", input: " alice, bob  carol ", expected: []string{"alice", "bob", "carol"}},
		{name: "Empty", input: "   ", expected: nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseCandidates(c.input)
			if !reflect.DeepEqual(got, c.expected) {
				t.Errorf("Expected %v, got %v", c.expected, got)
			}
		})
	}
}

func TestParseBallot(t *testing.T) {
	cases := []struct {
		name       string
		candidates []string
		line       string
		expected   stv.Ballot
	}{
		{name: "Compact", candidates: []string{"A", "B", "C"}, line: "ACB", expected: stv.Ballot{"A", "C", "B"}},
		{name: "Single letter", candidates: []string{"A", "B", "C"}, line: " B ", expected: stv.Ballot{"B"}},
		{name: "Single name", candidates: []string{"alice", "bob"}, line: "alice", expected: stv.Ballot{"alice"}},
		{name: "Names with separators", candidates: []string{"alice", "bob"}, line: "bob, alice", expected: stv.Ballot{"bob", "alice"}},
		{name: "Unknown word splits", candidates: []string{"alice", "bob"}, line: "carol", expected: stv.Ballot{"c", "a", "r", "o", "l"}},
		{name: "Blank", candidates: []string{"A"}, line: "  ", expected: nil},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got := ParseBallot(c.line, Known(c.candidates))
			if !reflect.DeepEqual(got, c.expected) {
				t.Errorf("Expected %q, got %q", c.expected, got)
			}
		})
	}
}

func TestLoadKeepsSinglePreferenceNames(t *testing.T) {
	src := StaticSource{"alice", "bob", "alice,bob"}

	loaded, err := Load(context.Background(), src, ParseCandidates("alice,bob"), nil)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expected := []stv.Ballot{{"alice"}, {"bob"}, {"alice", "bob"}}
	if !reflect.DeepEqual(loaded.Ballots, expected) {
		t.Errorf("Incorrect ballots.\nExpected = %v\nGot = %v", expected, loaded.Ballots)
	}
	if len(loaded.Rejected) != 0 {
		t.Errorf("Expected no rejections, got %+v", loaded.Rejected)
	}
}

func TestValidate(t *testing.T) {
	known := Known([]string{"A", "B", "C"})

	cases := []struct {
		name     string
		ballot   stv.Ballot
		expected error
	}{
		{name: "Valid", ballot: stv.Ballot{"A", "C"}},
		{name: "Duplicate", ballot: stv.Ballot{"A", "B", "A"}, expected: ErrDuplicateCandidate},
		{name: "Unknown", ballot: stv.Ballot{"A", "Z"}, expected: ErrUnknownCandidate},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Validate(c.ballot, known)
			if c.expected == nil && err != nil {
				t.Errorf("Expected no error, got %v", err)
			}
			if c.expected != nil && !errors.Is(err, c.expected) {
				t.Errorf("Expected %v, got %v", c.expected, err)
			}
		})
	}
}

func TestLoadDropsInvalidBallots(t *testing.T) {
	logger, hook := test.NewNullLogger()
	logger.SetLevel(log.DebugLevel)

	src := StaticSource{"AB", "", "AA", "  B  ", "AD", "C"}

	loaded, err := Load(context.Background(), src, []string{"A", "B", "C"}, logger)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	expected := []stv.Ballot{{"A", "B"}, {"B"}, {"C"}}
	if !reflect.DeepEqual(loaded.Ballots, expected) {
		t.Errorf("Incorrect ballots.\nExpected = %v\nGot = %v", expected, loaded.Ballots)
	}

	if len(loaded.Rejected) != 2 {
		t.Fatalf("Expected 2 rejections, got %+v", loaded.Rejected)
	}
	if loaded.Rejected[0].LineNo != 3 || !strings.Contains(loaded.Rejected[0].Reason, "duplicate") {
		t.Errorf("Unexpected first rejection %+v", loaded.Rejected[0])
	}
	if loaded.Rejected[1].LineNo != 5 || !strings.Contains(loaded.Rejected[1].Reason, "unknown") {
		t.Errorf("Unexpected second rejection %+v", loaded.Rejected[1])
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Data["valid"] != 3 || entry.Data["rejected"] != 2 {
		t.Errorf("Expected a summary log entry, got %+v", entry)
	}
}

func TestFileSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ballots.txt")
	if err := os.WriteFile(path, []byte("AB\nBA\n\nC\n"), 0644); err != nil {
		t.Fatalf("write ballots: %v", err)
	}

	lines, err := FileSource{Path: path}.Lines(context.Background())
	if err != nil {
		t.Fatalf("Lines failed: %v", err)
	}

	if !reflect.DeepEqual(lines, []string{"AB", "BA", "", "C"}) {
		t.Errorf("Unexpected lines %q", lines)
	}
}

func TestFileSourceMissingFile(t *testing.T) {
	_, err := FileSource{Path: filepath.Join(t.TempDir(), "nope.txt")}.Lines(context.Background())
	if !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Expected a not-exist error, got %v", err)
	}
}

func TestPostgresSourceNeedsElection(t *testing.T) {
	_, err := PostgresSource{}.Lines(context.Background())
	if !errors.Is(err, ErrElectionRequired) {
		t.Errorf("Expected ErrElectionRequired, got %v", err)
	}
}

func TestLinesFromRows(t *testing.T) {
	rows := []ballotModel{
		{ID: 1, ElectionID: "e1", Position: 0, Preferences: "AB"},
		{ID: 2, ElectionID: "e1", Position: 1, Preferences: "C,A"},
	}

	if got := linesFromRows(rows); !reflect.DeepEqual(got, []string{"AB", "C,A"}) {
		t.Errorf("Unexpected lines %q", got)
	}
}
