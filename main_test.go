package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

func env(vars map[string]string) func(string) string {
	return func(k string) string {
		return vars[k]
	}
}

func writeFile(t *testing.T, name, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(body), 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestParseArgs(t *testing.T) {
	configPath := writeFile(t, "config.json", `{
		"candidates": "ABC",
		"winners": 1,
		"ballots": "from-config.txt",
		"max_iterations": 50
	}`)

	cases := []struct {
		name     string
		args     []string
		env      map[string]string
		expected *Config
		err      string
	}{
		{
			name: "Flags only",
			args: []string{"-filepath", "votes.txt", "-candidates", "ABCDE", "-num_winners", "2", "-verbose"},
			expected: &Config{
				Candidates: CandidateList{"A", "B", "C", "D", "E"},
				Winners:    2,
				BallotFile: "votes.txt",
				Verbose:    true,
				Listen:     defaultListen,
			},
		},
		{
			name: "Flags override config file",
			args: []string{"-config", configPath, "-num_winners", "2", "-filepath", "votes.txt"},
			expected: &Config{
				Candidates:    CandidateList{"A", "B", "C"},
				Winners:       2,
				BallotFile:    "votes.txt",
				MaxIterations: 50,
				Listen:        defaultListen,
			},
		},
		{
			name: "Environment fills postgres",
			args: []string{"-candidates", "alice,bob", "-num_winners", "1", "-election-id", "e1"},
			env:  map[string]string{"STV_POSTGRES_DSN": "postgres://localhost/stv", "STV_VERBOSE": "yes"},
			expected: &Config{
				Candidates:  CandidateList{"alice", "bob"},
				Winners:     1,
				PostgresDSN: "postgres://localhost/stv",
				ElectionID:  "e1",
				Verbose:     true,
				Listen:      defaultListen,
			},
		},
		{
			name:     "Serve needs nothing else",
			args:     []string{"-serve", "-listen", ":9000"},
			expected: &Config{Serve: true, Listen: ":9000"},
		},
		{
			name: "Too many winners",
			args: []string{"-filepath", "votes.txt", "-candidates", "AB", "-num_winners", "3"},
			err:  "num_winners",
		},
		{
			name: "No ballot source",
			args: []string{"-candidates", "AB", "-num_winners", "1"},
			err:  "ballot file",
		},
		{
			name: "Unknown log level",
			args: []string{"-serve", "-log-level", "loud"},
			err:  "unknown log level",
		},
		{
			name: "NaN threshold",
			args: []string{"-filepath", "votes.txt", "-candidates", "AB", "-num_winners", "1", "-threshold", "NaN"},
			err:  "threshold",
		},
		{
			name: "Infinite threshold",
			args: []string{"-filepath", "votes.txt", "-candidates", "AB", "-num_winners", "1", "-threshold", "+Inf"},
			err:  "threshold",
		},
		{
			name: "Negative max iterations",
			args: []string{"-filepath", "votes.txt", "-candidates", "AB", "-num_winners", "1", "-max-iterations", "-5"},
			err:  "max_iterations",
		},
		{
			name: "Postgres without election",
			args: []string{"-candidates", "AB", "-num_winners", "1", "-postgres-dsn", "postgres://x"},
			err:  "election_id",
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			cfg, err := parseArgs(c.args, env(c.env))
			if c.err != "" {
				if err == nil || !strings.Contains(err.Error(), c.err) {
					t.Fatalf("Expected error containing %q, got %v", c.err, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("parseArgs failed: %v", err)
			}

			if !reflect.DeepEqual(cfg, c.expected) {
				t.Errorf("Config incorrect.\nExpected = %+v\nGot = %+v", c.expected, cfg)
			}
		})
	}
}

func TestEnvBool(t *testing.T) {
	cases := []struct {
		raw      string
		fallback bool
		expected bool
	}{
		{raw: "1", expected: true},
		{raw: " ON ", expected: true},
		{raw: "no", fallback: true, expected: false},
		{raw: "", fallback: true, expected: true},
		{raw: "maybe", fallback: false, expected: false},
	}

	for _, c := range cases {
		if got := envBool(c.raw, c.fallback); got != c.expected {
			t.Errorf("envBool(%q, %v) expected=%v got=%v", c.raw, c.fallback, c.expected, got)
		}
	}
}

func TestRunFromFile(t *testing.T) {
	path := writeFile(t, "ballots.txt", "AB\nAB\nB\nC\nAA\n\n")

	buf := &bytes.Buffer{}
	err := run(context.Background(), &Config{
		Candidates: CandidateList{"A", "B", "C"},
		Winners:    1,
		BallotFile: path,
		NoColor:    true,
	}, buf)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	out := buf.String()
	for _, s := range []string{
		"Starting election...",
		"Loaded 4 valid ballots.",
		"Quota (Droop): 3",
		"Winners (0):",
		"  - A: 2.0000 (eliminated)",
	} {
		if !strings.Contains(out, s) {
			t.Errorf("Expected output to contain %q\n%s", s, out)
		}
	}
}

func TestRunWithEmptyBallotFile(t *testing.T) {
	path := writeFile(t, "ballots.txt", "\n\n")

	buf := &bytes.Buffer{}
	err := run(context.Background(), &Config{
		Candidates: CandidateList{"A", "B"},
		Winners:    1,
		BallotFile: path,
		NoColor:    true,
	}, buf)
	if err != nil {
		t.Fatalf("run should end quietly without ballots: %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "There were no valid ballots.") {
		t.Errorf("Expected no ballots message\n%s", out)
	}
	if strings.Contains(out, "Quota") {
		t.Errorf("Quota must not be computed without ballots\n%s", out)
	}
}

func TestRunMissingFile(t *testing.T) {
	err := run(context.Background(), &Config{
		Candidates: CandidateList{"A"},
		Winners:    1,
		BallotFile: filepath.Join(t.TempDir(), "missing.txt"),
		NoColor:    true,
	}, &bytes.Buffer{})
	if err == nil || !strings.Contains(err.Error(), "missing.txt") {
		t.Errorf("Expected missing file error, got %v", err)
	}
}
