// Package main provides the arena binary: interactive tournaments, balance
// tests across every class pair, narrated replays of a single matchup, and
// listings of stored balance reports.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/frontend/console"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
	"github.com/cory-johannsen/arena/internal/observability"
)

// options are the command-line settings layered over the configuration file.
type options struct {
	mode    string
	seed    int64
	matchup string
	battles int
	out     string
	save    bool
	report  string
	limit   int
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "", "path to configuration file (empty = defaults and ARENA_ environment)")
	var opts options
	flag.StringVar(&opts.mode, "mode", "interactive", "run mode: interactive, test, matchup, or reports")
	flag.Int64Var(&opts.seed, "seed", 0, "random seed (0 = use config, then a fresh seed)")
	flag.StringVar(&opts.matchup, "matchup", "", "class pair for matchup mode, e.g. Fighter,Mage")
	flag.IntVar(&opts.battles, "n", 10, "number of battles in matchup mode")
	flag.StringVar(&opts.out, "out", "", "write the balance report as YAML to this path")
	flag.BoolVar(&opts.save, "save", false, "save the balance report to PostgreSQL")
	flag.StringVar(&opts.report, "report", "", "reports mode: render the stored report with this id")
	flag.IntVar(&opts.limit, "limit", 10, "reports mode: number of recent runs to list")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	if opts.seed != 0 {
		cfg.Simulation.Seed = opts.seed
	}
	if opts.save || opts.mode == "reports" {
		cfg.Storage.Enabled = true
		if err := cfg.Validate(); err != nil {
			log.Fatalf("validating config: %v", err)
		}
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	table, err := ruleset.LoadTable(cfg.Ruleset.Path)
	if err != nil {
		logger.Fatal("loading class rule table", zap.String("path", cfg.Ruleset.Path), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	a := &app{
		cfg:       cfg,
		opts:      opts,
		table:     table,
		logger:    logger,
		renderer:  console.NewRenderer(os.Stdout, cfg.Narration.Color),
		openStore: postgresStore(cfg.Database),
	}

	logger.Debug("arena starting",
		zap.String("mode", opts.mode),
		zap.Int64("seed", cfg.Simulation.Seed),
		zap.Duration("startup", time.Since(start)),
	)

	switch opts.mode {
	case "interactive":
		err = a.interactive(ctx, console.NewPrompter(os.Stdin, os.Stdout))
	case "test":
		err = a.balance(ctx)
	case "matchup":
		err = a.matchup(ctx)
	case "reports":
		err = a.reports(ctx)
	default:
		err = fmt.Errorf("unknown mode %q: must be interactive, test, matchup, or reports", opts.mode)
	}

	if errors.Is(err, console.ErrInvalidMode) {
		fmt.Fprintln(os.Stderr, "Invalid input. Please enter a number or 'test'.")
		_ = logger.Sync()
		os.Exit(1)
	}
	if err != nil {
		logger.Fatal("arena failed", zap.String("mode", opts.mode), zap.Error(err))
	}
}
