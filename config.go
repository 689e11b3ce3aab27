package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"github.com/krantius/meek-stv/loader"
	"github.com/krantius/meek-stv/shared/logging"
)

const defaultListen = ":8000"

// CandidateList unmarshals from either "ABCDE" / "alice,bob" or a JSON list
type CandidateList []string

func (c *CandidateList) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*c = loader.ParseCandidates(s)
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("candidates must be a string or a list of strings: %w", err)
	}
	*c = ids
	return nil
}

// Config is everything the CLI needs for one run or for serving
type Config struct {
	Candidates    CandidateList `json:"candidates"`
	Winners       int           `json:"winners"`
	BallotFile    string        `json:"ballots"`
	PostgresDSN   string        `json:"postgres_dsn"`
	ElectionID    string        `json:"election_id"`
	Verbose       bool          `json:"verbose"`
	MaxIterations int           `json:"max_iterations"`
	Threshold     float64       `json:"threshold"`
	Serve         bool          `json:"serve"`
	Listen        string        `json:"listen"`
	NoColor       bool          `json:"no_color"`
	LogLevel      string        `json:"log_level"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config %s: %w", path, err)
	}

	c := &Config{}
	if err := json.Unmarshal(data, c); err != nil {
		return nil, fmt.Errorf("parse config %s: %w", path, err)
	}

	return c, nil
}

// applyEnv lets the environment fill in connection settings and verbosity
func (c *Config) applyEnv(getenv func(string) string) {
	if dsn := strings.TrimSpace(getenv("STV_POSTGRES_DSN")); dsn != "" {
		c.PostgresDSN = dsn
	}
	if listen := strings.TrimSpace(getenv("STV_LISTEN")); listen != "" {
		c.Listen = listen
	}
	if level := strings.TrimSpace(getenv("STV_LOG_LEVEL")); level != "" {
		c.LogLevel = level
	}
	c.Verbose = envBool(getenv("STV_VERBOSE"), c.Verbose)
}

// Validate checks a run has candidates, a sane seat count and exactly one
// ballot source. Serving only needs a listen address.
func (c *Config) Validate() error {
	if _, err := logging.ParseLevel(c.LogLevel); err != nil {
		return err
	}

	if c.Serve {
		if c.Listen == "" {
			return errors.New("listen address is required to serve")
		}
		return nil
	}

	if len(c.Candidates) == 0 {
		return errors.New("candidates are required")
	}
	if c.Winners < 1 || c.Winners > len(c.Candidates) {
		return fmt.Errorf("num_winners must be between 1 and %d, got %d", len(c.Candidates), c.Winners)
	}

	if math.IsNaN(c.Threshold) || c.Threshold < 0 || c.Threshold >= 1 {
		return fmt.Errorf("threshold must be in [0, 1), got %v", c.Threshold)
	}
	if c.MaxIterations < 0 {
		return fmt.Errorf("max_iterations must not be negative, got %d", c.MaxIterations)
	}

	hasFile := c.BallotFile != ""
	hasDB := c.PostgresDSN != ""
	switch {
	case hasFile && hasDB:
		return errors.New("use either a ballot file or postgres, not both")
	case !hasFile && !hasDB:
		return errors.New("a ballot file or postgres dsn is required")
	case hasDB && c.ElectionID == "":
		return errors.New("election_id is required when reading ballots from postgres")
	}

	return nil
}

func envBool(raw string, fallback bool) bool {
	switch strings.TrimSpace(strings.ToLower(raw)) {
	case "1", "true", "t", "yes", "y", "on":
		return true
	case "0", "false", "f", "no", "n", "off":
		return false
	default:
		return fallback
	}
}
