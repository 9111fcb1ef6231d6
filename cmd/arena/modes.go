package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/arena/internal/balance"
	"github.com/cory-johannsen/arena/internal/config"
	"github.com/cory-johannsen/arena/internal/frontend/console"
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
	"github.com/cory-johannsen/arena/internal/game/tournament"
	"github.com/cory-johannsen/arena/internal/storage/postgres"
)

var errMirrorMatchup = errors.New("matchup needs two different classes")

type app struct {
	cfg       config.Config
	opts      options
	table     *ruleset.Table
	logger    *zap.Logger
	renderer  *console.Renderer
	openStore func(ctx context.Context) (reportStore, func(), error)
}

// reportStore is the persistence the balance and reports modes need.
type reportStore interface {
	Save(ctx context.Context, rep *balance.Report) error
	Get(ctx context.Context, id uuid.UUID) (*balance.Report, error)
	ListRecent(ctx context.Context, limit int) ([]postgres.RunSummary, error)
}

// postgresStore opens a pool for cfg; the returned func closes it.
func postgresStore(cfg config.DatabaseConfig) func(ctx context.Context) (reportStore, func(), error) {
	return func(ctx context.Context) (reportStore, func(), error) {
		pool, err := postgres.NewPool(ctx, cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("connecting to database: %w", err)
		}
		return pool.Reports(), pool.Close, nil
	}
}

// battleOptions builds narrated battle options from the simulation config.
func (a *app) battleOptions(maxRounds int) combat.Options {
	return combat.Options{
		StartDistance: a.cfg.Simulation.StartDistance,
		AbilityChance: a.cfg.Simulation.AbilityChance,
		MaxRounds:     maxRounds,
		Observer:      a.narrate,
	}
}

// narrate renders an event and pauses after each turn.
func (a *app) narrate(e combat.Event) {
	a.renderer.Event(e)
	if e.Kind == combat.EventTurn && a.cfg.Narration.RoundDelay > 0 {
		time.Sleep(a.cfg.Narration.RoundDelay)
	}
}

func (a *app) interactive(ctx context.Context, p *console.Prompter) error {
	mode, err := p.ReadMode()
	if err != nil {
		return err
	}
	if mode.Balance {
		return a.balance(ctx)
	}

	seed := a.cfg.Simulation.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}
	a.logger.Info("tournament starting", zap.Int("players", mode.Players), zap.Int64("seed", seed))
	src := dice.NewLoggedRoller(dice.NewSeededSource(seed), a.logger)

	chars := make([]*character.Character, 0, mode.Players)
	for i := 1; i <= mode.Players; i++ {
		name, class, err := p.ReadCharacter(i)
		if err != nil {
			return fmt.Errorf("reading player %d: %w", i, err)
		}
		c, err := character.New(name, class, a.table, src)
		if err != nil {
			return err
		}
		chars = append(chars, c)
	}

	res, err := tournament.Run(chars, src, a.battleOptions(a.cfg.Simulation.TournamentMaxRounds), a.renderer.BattleStart)
	if err != nil {
		return err
	}
	a.renderer.TournamentWinner(res.Winner)
	return nil
}

// harness builds a balance harness from the simulation config. A maxRounds of
// zero leaves battles uncapped.
func (a *app) harness(maxRounds int) *balance.Harness {
	sim := a.cfg.Simulation
	return balance.NewHarness(a.table, balance.Options{
		Trials:        sim.Trials,
		Workers:       sim.Workers,
		TimeBudget:    sim.TimeBudget,
		Seed:          sim.Seed,
		ProgressEvery: sim.ProgressEvery,
		Battle: combat.Options{
			StartDistance: sim.StartDistance,
			AbilityChance: sim.AbilityChance,
			MaxRounds:     maxRounds,
		},
		OnProgress: a.renderer.Progress,
	}, a.logger)
}

func (a *app) balance(ctx context.Context) error {
	a.renderer.Printf("Running balance test...\n")
	report, err := a.harness(0).Run(ctx, ruleset.Classes)
	if err != nil {
		return fmt.Errorf("running balance test: %w", err)
	}
	a.renderer.RunSummary(report)
	a.renderer.BalanceResults(report)
	a.renderer.WinMatrix(report)

	if a.opts.out != "" {
		if err := writeReport(a.opts.out, report); err != nil {
			return err
		}
		a.logger.Info("balance report written", zap.String("path", a.opts.out))
	}
	if a.cfg.Storage.Enabled {
		if err := a.saveReport(ctx, report); err != nil {
			return err
		}
	}
	return nil
}

func (a *app) saveReport(ctx context.Context, report *balance.Report) error {
	dbStart := time.Now()
	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if err := store.Save(ctx, report); err != nil {
		return err
	}
	a.logger.Info("balance report saved",
		zap.String("run_id", report.ID.String()),
		zap.String("host", a.cfg.Database.Host),
		zap.Duration("elapsed", time.Since(dbStart)),
	)
	return nil
}

// reports lists recent stored runs, or renders one stored run when -report is set.
func (a *app) reports(ctx context.Context) error {
	var id uuid.UUID
	if a.opts.report != "" {
		parsed, err := uuid.Parse(a.opts.report)
		if err != nil {
			return fmt.Errorf("parsing report id %q: %w", a.opts.report, err)
		}
		id = parsed
	} else if a.opts.limit < 1 {
		return fmt.Errorf("limit must be >= 1, got %d", a.opts.limit)
	}

	store, closeStore, err := a.openStore(ctx)
	if err != nil {
		return err
	}
	defer closeStore()

	if id == uuid.Nil {
		runs, err := store.ListRecent(ctx, a.opts.limit)
		if err != nil {
			return err
		}
		a.renderer.RecentRuns(runs)
		return nil
	}
	report, err := store.Get(ctx, id)
	if err != nil {
		return fmt.Errorf("loading report %s: %w", id, err)
	}
	a.renderer.RunSummary(report)
	a.renderer.BalanceResults(report)
	a.renderer.WinMatrix(report)
	return nil
}

func writeReport(path string, report *balance.Report) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating report file: %w", err)
	}
	if err := balance.WriteYAML(f, report); err != nil {
		_ = f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing report file: %w", err)
	}
	return nil
}

func (a *app) matchup(ctx context.Context) error {
	first, second, err := parseMatchup(a.opts.matchup)
	if err != nil {
		return err
	}
	if a.opts.battles < 1 {
		return fmt.Errorf("matchup needs at least one battle, got %d", a.opts.battles)
	}

	a.renderer.Printf("Testing %s vs %s\n", first, second)
	outcomes, err := a.harness(a.cfg.Simulation.TournamentMaxRounds).RunMatchup(ctx, first, second, a.opts.battles, a.narrate)
	for _, o := range outcomes {
		a.renderer.Outcome(o)
	}
	return err
}

// parseMatchup reads a "A,B" class pair; each side is a class name or 1-based
// index. Mirror pairs are rejected: two identical classes can stall indefinitely.
func parseMatchup(s string) (ruleset.Class, ruleset.Class, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return ruleset.ClassUnknown, ruleset.ClassUnknown, fmt.Errorf("matchup must be two classes separated by a comma, got %q", s)
	}
	a, err := ruleset.ParseClass(parts[0])
	if err != nil {
		return ruleset.ClassUnknown, ruleset.ClassUnknown, fmt.Errorf("parsing matchup: %w", err)
	}
	b, err := ruleset.ParseClass(parts[1])
	if err != nil {
		return ruleset.ClassUnknown, ruleset.ClassUnknown, fmt.Errorf("parsing matchup: %w", err)
	}
	if a == b {
		return ruleset.ClassUnknown, ruleset.ClassUnknown, fmt.Errorf("%w: %s", errMirrorMatchup, a)
	}
	return a, b, nil
}
