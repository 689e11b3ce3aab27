package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	"github.com/krantius/meek-stv/api"
	"github.com/krantius/meek-stv/loader"
	"github.com/krantius/meek-stv/report"
	"github.com/krantius/meek-stv/shared/logging"
	"github.com/krantius/meek-stv/stv"
	log "github.com/sirupsen/logrus"
)

func main() {
	cfg, err := parseArgs(os.Args[1:], os.Getenv)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			os.Exit(0)
		}
		logging.Errorf("%v", err)
		os.Exit(2)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c := make(chan os.Signal, 1)
	signal.Notify(c, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-c
		logging.Infof("Received %v, shutting down", sig)
		cancel()
	}()

	if err := run(ctx, cfg, os.Stdout); err != nil {
		logging.Errorf("%v", err)
		os.Exit(1)
	}
}

// parseArgs builds the config from, in increasing priority, the -config
// file, the environment and explicitly set flags
func parseArgs(args []string, getenv func(string) string) (*Config, error) {
	fs := flag.NewFlagSet("meek-stv", flag.ContinueOnError)

	var (
		configPath    = fs.String("config", "", "path to a JSON config file")
		filePath      = fs.String("filepath", "", "path to the ballot file, one ballot per line")
		candidates    = fs.String("candidates", "", "candidate identifiers, e.g. 'ABCDE' or 'alice,bob'")
		winners       = fs.Int("num_winners", 0, "number of seats to fill")
		verbose       = fs.Bool("verbose", false, "print every iteration of the count")
		maxIterations = fs.Int("max-iterations", stv.DefaultMaxIterations, "iteration cap for keep rate convergence")
		threshold     = fs.Float64("threshold", stv.DefaultThreshold, "keep rate convergence threshold")
		dsn           = fs.String("postgres-dsn", "", "read ballots from postgres instead of a file")
		electionID    = fs.String("election-id", "", "election to read from postgres")
		serve         = fs.Bool("serve", false, "run the HTTP tabulation service")
		listen        = fs.String("listen", defaultListen, "listen address for -serve")
		noColor       = fs.Bool("no-color", false, "disable colored output")
		logLevel      = fs.String("log-level", "", "console log level: trace, debug, info, warn or error")
	)

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if *configPath != "" {
		loaded, err := LoadConfig(*configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	cfg.applyEnv(getenv)

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "filepath":
			cfg.BallotFile = *filePath
		case "candidates":
			cfg.Candidates = loader.ParseCandidates(*candidates)
		case "num_winners":
			cfg.Winners = *winners
		case "verbose":
			cfg.Verbose = *verbose
		case "max-iterations":
			cfg.MaxIterations = *maxIterations
		case "threshold":
			cfg.Threshold = *threshold
		case "postgres-dsn":
			cfg.PostgresDSN = *dsn
		case "election-id":
			cfg.ElectionID = *electionID
		case "serve":
			cfg.Serve = *serve
		case "listen":
			cfg.Listen = *listen
		case "no-color":
			cfg.NoColor = *noColor
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if cfg.Listen == "" {
		cfg.Listen = defaultListen
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func newLogger(verbose bool) *log.Logger {
	logger := log.New()
	logger.Out = os.Stderr
	logger.SetLevel(log.WarnLevel)
	if verbose {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

func run(ctx context.Context, cfg *Config, out io.Writer) error {
	if cfg.Verbose {
		logging.SetLevel(logging.DEBUG)
	}
	if cfg.LogLevel != "" {
		// Validate already rejected unknown names
		level, _ := logging.ParseLevel(cfg.LogLevel)
		logging.SetLevel(level)
	}

	logger := newLogger(cfg.Verbose)

	if cfg.Serve {
		logger.SetLevel(log.InfoLevel)
		return api.NewServer(cfg.Listen, logger).ListenAndServe(ctx)
	}

	runID := uuid.NewString()
	entry := logger.WithField("run", runID)
	logging.Debugf("Starting count %s", runID)

	src, closeSrc, err := source(cfg)
	if err != nil {
		return err
	}
	defer closeSrc()

	printer := report.NewPrinter(out, cfg.Verbose, cfg.NoColor)
	printer.Start()

	loaded, err := loader.Load(ctx, src, cfg.Candidates, entry)
	if err != nil {
		return err
	}
	printer.Loaded(loaded)

	e, err := stv.New(stv.Options{
		Candidates:    cfg.Candidates,
		Winners:       cfg.Winners,
		Threshold:     cfg.Threshold,
		MaxIterations: cfg.MaxIterations,
		Verbose:       cfg.Verbose,
		RunID:         runID,
		Logger:        logger,
		Observer:      printer,
	}, loaded.Ballots)
	if err != nil {
		return err
	}

	res, err := e.Run()
	if errors.Is(err, stv.ErrNoValidBallots) {
		printer.NoBallots()
		return nil
	}
	if err != nil {
		return err
	}

	printer.Final(res)

	return nil
}

// source picks the ballot source named in cfg. The returned func releases
// whatever the source holds open.
func source(cfg *Config) (loader.Source, func(), error) {
	if cfg.PostgresDSN == "" {
		return loader.FileSource{Path: cfg.BallotFile}, func() {}, nil
	}

	db, err := loader.Connect(cfg.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect ballot store: %w", err)
	}

	closeDB := func() {
		if err := loader.Close(db); err != nil {
			logging.Warningf("closing postgres: %v", err)
		}
	}

	return loader.PostgresSource{DB: db, ElectionID: cfg.ElectionID}, closeDB, nil
}
