package balance

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

const (
	// DefaultTrials is the number of battles per matchup.
	DefaultTrials = 1000
	// DefaultTimeBudget is the soft wall-clock limit of a full run.
	DefaultTimeBudget = 5 * time.Minute
	// DefaultProgressEvery is the number of battles between progress reports.
	DefaultProgressEvery = 100
)

// Stop reasons recorded on partial reports.
const (
	StopBudgetExceeded = "time budget exceeded"
	StopCanceled       = "canceled"
)

// ErrTooFewClasses is returned when a run is given fewer than two distinct classes.
var ErrTooFewClasses = errors.New("balance run needs at least two distinct classes")

// Progress is a snapshot passed to Options.OnProgress.
type Progress struct {
	Completed int
	Planned   int
	Elapsed   time.Duration
	// Remaining extrapolates the average battle time over the battles left.
	Remaining time.Duration
}

// Options configures a Harness.
type Options struct {
	// Trials is the number of battles per matchup.
	Trials int
	// Workers is the number of concurrent battle goroutines. Zero means runtime.NumCPU.
	Workers int
	// TimeBudget stops the run between trials once exceeded. Zero disables it.
	TimeBudget time.Duration
	// Seed derives every trial's random source. Zero draws a fresh seed per run.
	Seed int64
	// ProgressEvery is the number of completed battles between progress reports.
	ProgressEvery int
	// Battle configures every trial battle. Its Observer is ignored.
	Battle combat.Options
	// OnProgress, when non-nil, receives progress snapshots. Calls are serialized.
	OnProgress func(Progress)
}

// DefaultOptions returns 1000 trials per matchup, a five minute budget and
// progress every 100 battles.
func DefaultOptions() Options {
	return Options{
		Trials:        DefaultTrials,
		TimeBudget:    DefaultTimeBudget,
		ProgressEvery: DefaultProgressEvery,
		Battle:        combat.DefaultOptions(),
	}
}

// Harness runs balance tests against a class rule table.
type Harness struct {
	table  *ruleset.Table
	opts   Options
	logger *zap.Logger
	now    func() time.Time
}

// NewHarness creates a Harness.
//
// Precondition: table and logger must be non-nil; opts.Trials > 0.
func NewHarness(table *ruleset.Table, opts Options, logger *zap.Logger) *Harness {
	if table == nil || logger == nil {
		panic("balance: NewHarness precondition violated: table and logger must be non-nil")
	}
	if opts.Trials <= 0 {
		panic(fmt.Sprintf("balance: NewHarness precondition violated: trials must be > 0, got %d", opts.Trials))
	}
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.ProgressEvery <= 0 {
		opts.ProgressEvery = DefaultProgressEvery
	}
	opts.Battle.Observer = nil
	return &Harness{table: table, opts: opts, logger: logger, now: time.Now}
}

type trial struct {
	matchup int
	index   int
}

// Run plays opts.Trials silent battles for every ordered pair of distinct
// classes. Every trial draws from its own source seeded by the run seed, the
// matchup index and the trial index, so a complete run is reproducible
// regardless of the worker count.
//
// The time budget and ctx are checked between trials only. When either stops
// the run early, the returned Report is marked Partial and err is nil.
//
// Postcondition: Returns a Report covering every matchup, or a non-nil error.
func (h *Harness) Run(ctx context.Context, classes []ruleset.Class) (*Report, error) {
	if err := distinct(classes); err != nil {
		return nil, err
	}
	matchups := Matchups(classes)
	seed := h.opts.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}
	planned := len(matchups) * h.opts.Trials
	workers := min(h.opts.Workers, planned)
	report := &Report{
		ID:               uuid.New(),
		Seed:             seed,
		TrialsPerMatchup: h.opts.Trials,
		Planned:          planned,
		StartedAt:        h.now(),
	}
	start := report.StartedAt
	var deadline time.Time
	if h.opts.TimeBudget > 0 {
		deadline = start.Add(h.opts.TimeBudget)
	}

	h.logger.Info("balance run starting",
		zap.String("run_id", report.ID.String()),
		zap.Int("matchups", len(matchups)),
		zap.Int("planned", planned),
		zap.Int("workers", workers),
		zap.Int64("seed", seed),
	)

	var (
		mu        sync.Mutex
		total     = NewAccumulator()
		completed int
		stop      string
	)
	progress := func() {
		completed++
		if completed%h.opts.ProgressEvery != 0 {
			return
		}
		elapsed := h.now().Sub(start)
		p := Progress{
			Completed: completed,
			Planned:   planned,
			Elapsed:   elapsed,
			Remaining: time.Duration(float64(elapsed) / float64(completed) * float64(planned-completed)),
		}
		h.logger.Info("balance progress",
			zap.Int("completed", p.Completed),
			zap.Int("planned", p.Planned),
			zap.Duration("remaining", p.Remaining),
		)
		if h.opts.OnProgress != nil {
			h.opts.OnProgress(p)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	jobs := make(chan trial)

	g.Go(func() error {
		defer close(jobs)
		for m := range matchups {
			for i := 0; i < h.opts.Trials; i++ {
				if err := gctx.Err(); err != nil {
					mu.Lock()
					stop = StopCanceled
					mu.Unlock()
					return nil
				}
				if !deadline.IsZero() && h.now().After(deadline) {
					mu.Lock()
					stop = StopBudgetExceeded
					mu.Unlock()
					return nil
				}
				select {
				case jobs <- trial{matchup: m, index: i}:
				case <-gctx.Done():
					mu.Lock()
					stop = StopCanceled
					mu.Unlock()
					return nil
				}
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			local := NewAccumulator()
			defer func() {
				mu.Lock()
				total.Merge(local)
				mu.Unlock()
			}()
			for j := range jobs {
				m := matchups[j.matchup]
				out, err := h.trial(m, trialSeed(seed, j.matchup, j.index))
				if err != nil {
					return fmt.Errorf("running %s vs %s trial %d: %w", m.A, m.B, j.index, err)
				}
				local.Add(m, out)
				mu.Lock()
				progress()
				mu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	report.Completed = total.Trials()
	report.Partial = report.Completed < planned
	if report.Partial {
		report.StopReason = stop
	}
	report.Elapsed = h.now().Sub(start)
	for _, m := range matchups {
		report.Matchups = append(report.Matchups, MatchupStats{Matchup: m, Stats: total.Stats(m)})
	}

	if report.Partial {
		h.logger.Warn("balance run stopped early",
			zap.String("run_id", report.ID.String()),
			zap.String("reason", report.StopReason),
			zap.Int("completed", report.Completed),
			zap.Int("planned", report.Planned),
		)
	}
	h.logger.Info("balance run finished",
		zap.String("run_id", report.ID.String()),
		zap.Int("completed", report.Completed),
		zap.Duration("elapsed", report.Elapsed),
	)
	return report, nil
}

// RunMatchup plays n narrated battles between freshly built characters of
// classes a and b, a acting first, and returns their outcomes in order. ctx is
// checked between battles; on cancellation the outcomes so far are returned
// with ctx's error.
//
// Precondition: a and b must be valid classes; n >= 0.
func (h *Harness) RunMatchup(ctx context.Context, a, b ruleset.Class, n int, observer combat.Observer) ([]combat.Outcome, error) {
	seed := h.opts.Seed
	if seed == 0 {
		seed = dice.NewSeed()
	}
	src := dice.NewSeededSource(seed)
	opts := h.opts.Battle
	opts.Observer = observer

	h.logger.Info("matchup replay starting",
		zap.Stringer("a", a),
		zap.Stringer("b", b),
		zap.Int("battles", n),
		zap.Int64("seed", seed),
	)
	outcomes := make([]combat.Outcome, 0, n)
	for i := 0; i < n; i++ {
		if err := ctx.Err(); err != nil {
			return outcomes, err
		}
		first, second, err := h.pair(Matchup{A: a, B: b}, src)
		if err != nil {
			return outcomes, err
		}
		outcomes = append(outcomes, combat.Fight(first, second, src, opts))
	}
	return outcomes, nil
}

func (h *Harness) trial(m Matchup, seed int64) (combat.Outcome, error) {
	src := dice.NewSeededSource(seed)
	first, second, err := h.pair(m, src)
	if err != nil {
		return combat.Outcome{}, err
	}
	return combat.Fight(first, second, src, h.opts.Battle), nil
}

func (h *Harness) pair(m Matchup, src dice.Source) (*character.Character, *character.Character, error) {
	first, err := character.New("Player1", m.A, h.table, src)
	if err != nil {
		return nil, nil, err
	}
	second, err := character.New("Player2", m.B, h.table, src)
	if err != nil {
		return nil, nil, err
	}
	return first, second, nil
}

func distinct(classes []ruleset.Class) error {
	seen := make(map[ruleset.Class]bool, len(classes))
	for _, c := range classes {
		if !c.Valid() {
			return fmt.Errorf("%w: %d", ruleset.ErrUnknownClass, int(c))
		}
		if seen[c] {
			return fmt.Errorf("duplicate class %s", c)
		}
		seen[c] = true
	}
	if len(seen) < 2 {
		return fmt.Errorf("%w: got %d", ErrTooFewClasses, len(seen))
	}
	return nil
}

// trialSeed mixes the run seed, matchup index and trial index with the
// splitmix64 finalizer.
func trialSeed(run int64, matchup, index int) int64 {
	x := mix(uint64(run) + uint64(matchup)*0x9E3779B97F4A7C15)
	x = mix(x + uint64(index))
	return int64(x)
}

func mix(x uint64) uint64 {
	x += 0x9E3779B97F4A7C15
	x = (x ^ (x >> 30)) * 0xBF58476D1CE4E5B9
	x = (x ^ (x >> 27)) * 0x94D049BB133111EB
	return x ^ (x >> 31)
}
