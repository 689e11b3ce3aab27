package api

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

const shutdownTimeout = 5 * time.Second

// Server exposes tabulation over HTTP
type Server struct {
	addr   string
	router *mux.Router
	logger log.FieldLogger

	// newID hands out run identifiers, swapped in tests
	newID func() string
}

func NewServer(addr string, logger log.FieldLogger) *Server {
	if logger == nil {
		logger = log.StandardLogger()
	}

	s := &Server{
		addr:   addr,
		logger: logger,
		newID:  newRunID,
	}

	r := mux.NewRouter()
	sr := r.PathPrefix("/api").Subrouter()
	sr.Path("/status").Methods("GET").HandlerFunc(s.Status)
	sr.Path("/tabulate").Methods("POST").HandlerFunc(s.Tabulate)

	s.router = r

	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe blocks until ctx is cancelled or the listener fails
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:    s.addr,
		Handler: s.router,
	}

	errs := make(chan error, 1)
	go func() {
		s.logger.Infof("Listening on %s...", s.addr)
		errs <- srv.ListenAndServe()
	}()

	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
