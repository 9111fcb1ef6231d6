package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/arena/internal/balance"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// ErrReportNotFound is returned when a report lookup yields no results.
var ErrReportNotFound = errors.New("balance report not found")

// RunSummary is the header of a stored balance run, without its matchups.
type RunSummary struct {
	ID               uuid.UUID
	Seed             int64
	TrialsPerMatchup int
	Planned          int
	Completed        int
	Partial          bool
	StartedAt        time.Time
}

// ReportRepository persists balance reports.
type ReportRepository struct {
	db *pgxpool.Pool
}

// NewReportRepository creates a ReportRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

var matchupColumns = []string{
	"run_id", "position", "class_a", "class_b",
	"trials", "wins", "draws", "total_rounds", "total_winner_health",
	"ability_uses", "first_attacker_wins",
}

// Save stores r and its matchups in one transaction. Matchups are bulk
// loaded with COPY.
//
// Precondition: r must be non-nil with a non-zero ID.
// Postcondition: Either the run and all its matchups are stored, or nothing is.
func (r *ReportRepository) Save(ctx context.Context, rep *balance.Report) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback(ctx) //nolint:errcheck

	_, err = tx.Exec(ctx,
		`INSERT INTO balance_runs
		   (id, seed, trials_per_matchup, planned, completed, partial, stop_reason, started_at, elapsed_ms)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`,
		rep.ID, rep.Seed, rep.TrialsPerMatchup, rep.Planned, rep.Completed,
		rep.Partial, rep.StopReason, rep.StartedAt, rep.Elapsed.Milliseconds(),
	)
	if err != nil {
		return fmt.Errorf("inserting balance run %s: %w", rep.ID, err)
	}

	rows := make([][]any, 0, len(rep.Matchups))
	for i, m := range rep.Matchups {
		s := m.Stats
		rows = append(rows, []any{
			rep.ID, i, m.A.Key(), m.B.Key(),
			s.Trials, s.Wins, s.Draws, int64(s.TotalRounds), int64(s.TotalWinnerHealth),
			int64(s.AbilityUses), s.FirstAttackerWins,
		})
	}
	if _, err := tx.CopyFrom(ctx, pgx.Identifier{"balance_matchups"}, matchupColumns, pgx.CopyFromRows(rows)); err != nil {
		return fmt.Errorf("copying matchups for run %s: %w", rep.ID, err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("committing balance run %s: %w", rep.ID, err)
	}
	return nil
}

// Get loads a report by ID, matchups in their original order.
//
// Postcondition: Returns the Report, or ErrReportNotFound.
func (r *ReportRepository) Get(ctx context.Context, id uuid.UUID) (*balance.Report, error) {
	rep := &balance.Report{ID: id}
	var elapsedMS int64
	err := r.db.QueryRow(ctx,
		`SELECT seed, trials_per_matchup, planned, completed, partial, stop_reason, started_at, elapsed_ms
		 FROM balance_runs WHERE id = $1`, id,
	).Scan(&rep.Seed, &rep.TrialsPerMatchup, &rep.Planned, &rep.Completed,
		&rep.Partial, &rep.StopReason, &rep.StartedAt, &elapsedMS)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrReportNotFound
		}
		return nil, fmt.Errorf("querying balance run %s: %w", id, err)
	}
	rep.Elapsed = time.Duration(elapsedMS) * time.Millisecond

	rows, err := r.db.Query(ctx,
		`SELECT class_a, class_b, trials, wins, draws, total_rounds, total_winner_health,
		        ability_uses, first_attacker_wins
		 FROM balance_matchups WHERE run_id = $1 ORDER BY position`, id)
	if err != nil {
		return nil, fmt.Errorf("querying matchups for run %s: %w", id, err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			a, b                 string
			rounds, health, uses int64
			m                    balance.MatchupStats
		)
		if err := rows.Scan(&a, &b, &m.Stats.Trials, &m.Stats.Wins, &m.Stats.Draws,
			&rounds, &health, &uses, &m.Stats.FirstAttackerWins); err != nil {
			return nil, fmt.Errorf("scanning matchup: %w", err)
		}
		if m.A, err = ruleset.ParseClass(a); err != nil {
			return nil, fmt.Errorf("run %s: %w", id, err)
		}
		if m.B, err = ruleset.ParseClass(b); err != nil {
			return nil, fmt.Errorf("run %s: %w", id, err)
		}
		m.Stats.TotalRounds = int(rounds)
		m.Stats.TotalWinnerHealth = int(health)
		m.Stats.AbilityUses = int(uses)
		rep.Matchups = append(rep.Matchups, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating matchups: %w", err)
	}
	return rep, nil
}

// ListRecent returns up to limit run summaries, most recently started first.
//
// Precondition: limit > 0.
func (r *ReportRepository) ListRecent(ctx context.Context, limit int) ([]RunSummary, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, seed, trials_per_matchup, planned, completed, partial, started_at
		 FROM balance_runs ORDER BY started_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("listing balance runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var s RunSummary
		if err := rows.Scan(&s.ID, &s.Seed, &s.TrialsPerMatchup, &s.Planned, &s.Completed, &s.Partial, &s.StartedAt); err != nil {
			return nil, fmt.Errorf("scanning balance run: %w", err)
		}
		out = append(out, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating balance runs: %w", err)
	}
	return out, nil
}
