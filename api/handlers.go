package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/krantius/meek-stv/loader"
	"github.com/krantius/meek-stv/stv"
	log "github.com/sirupsen/logrus"
)

const (
	// maxBodyBytes caps a tabulate request body
	maxBodyBytes = 1 << 20
	// maxIterationsLimit caps the per-round iteration budget a client may ask for
	maxIterationsLimit = 10 * stv.DefaultMaxIterations
)

// BallotInput accepts either a string ("ACB", "a,c,b") or a JSON array of
// candidate identifiers. Strings are only split once the candidates are
// known.
type BallotInput struct {
	text   string
	ids    []string
	isText bool
}

func (b *BallotInput) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*b = BallotInput{text: s, isText: true}
		return nil
	}

	var ids []string
	if err := json.Unmarshal(data, &ids); err != nil {
		return fmt.Errorf("ballot must be a string or a list of strings: %w", err)
	}
	*b = BallotInput{ids: ids}
	return nil
}

// Ballot resolves the input against the standing candidates
func (b BallotInput) Ballot(known map[string]bool) stv.Ballot {
	if b.isText {
		return loader.ParseBallot(b.text, known)
	}
	return stv.Ballot(b.ids)
}

type TabulateRequest struct {
	Candidates    []string      `json:"candidates"`
	Winners       int           `json:"winners"`
	Ballots       []BallotInput `json:"ballots"`
	Verbose       bool          `json:"verbose"`
	MaxIterations int           `json:"max_iterations"`
	Threshold     float64       `json:"threshold"`
}

type TabulateResponse struct {
	stv.Result
	Rejected []loader.Rejection `json:"rejected"`
	Events   []stv.Event        `json:"events,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
	RunID string `json:"run_id,omitempty"`
}

func (s *Server) Status(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Tabulate validates the submitted ballots, drops the malformed ones and
// runs a count over the rest
func (s *Server) Tabulate(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	var req TabulateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit)})
			return
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("invalid request: %v", err)})
		return
	}

	if req.MaxIterations > maxIterationsLimit {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: fmt.Sprintf("max_iterations must not exceed %d", maxIterationsLimit)})
		return
	}

	runID := s.newID()
	logger := s.logger.WithField("run", runID)

	known := loader.Known(req.Candidates)
	resp := TabulateResponse{Rejected: []loader.Rejection{}}

	var ballots []stv.Ballot
	for i, in := range req.Ballots {
		b := in.Ballot(known)
		if len(b) == 0 {
			continue
		}
		if err := loader.Validate(b, known); err != nil {
			resp.Rejected = append(resp.Rejected, loader.Rejection{
				LineNo: i + 1,
				Line:   strings.Join(b, ","),
				Reason: err.Error(),
			})
			continue
		}
		ballots = append(ballots, b)
	}

	rec := &stv.Recorder{}
	e, err := stv.New(stv.Options{
		Candidates:    req.Candidates,
		Winners:       req.Winners,
		Threshold:     req.Threshold,
		MaxIterations: req.MaxIterations,
		Verbose:       req.Verbose,
		RunID:         runID,
		Logger:        logger,
		Observer:      rec,
	}, ballots)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), RunID: runID})
		return
	}

	res, err := e.Run()
	if errors.Is(err, stv.ErrNoValidBallots) {
		logger.WithField("rejected", len(resp.Rejected)).Warn("No valid ballots submitted")
		writeJSON(w, http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), RunID: runID})
		return
	}
	if err != nil {
		logger.Errorf("Tabulation failed: %v", err)
		writeJSON(w, http.StatusInternalServerError, errorResponse{Error: err.Error(), RunID: runID})
		return
	}

	resp.Result = res
	if req.Verbose {
		resp.Events = rec.Events
	}

	logger.WithFields(log.Fields{
		"winners": res.Winners,
		"rounds":  res.Rounds,
	}).Info("Tabulation complete")

	writeJSON(w, http.StatusOK, resp)
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func newRunID() string {
	return uuid.NewString()
}
