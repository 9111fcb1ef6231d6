package balance

import (
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// MatchupStats pairs a matchup with its totals.
type MatchupStats struct {
	Matchup
	Stats Stats
}

// Report is the result of one balance run.
type Report struct {
	ID               uuid.UUID
	Seed             int64
	TrialsPerMatchup int
	Planned          int
	Completed        int
	// Partial is true when the run stopped before every planned trial finished.
	Partial    bool
	StopReason string
	StartedAt  time.Time
	Elapsed    time.Duration
	// Matchups holds one entry per ordered class pair in run order.
	Matchups []MatchupStats
}

// Lookup returns the stats for a acting first against b.
func (r *Report) Lookup(a, b ruleset.Class) (Stats, bool) {
	for _, m := range r.Matchups {
		if m.A == a && m.B == b {
			return m.Stats, true
		}
	}
	return Stats{}, false
}

// Classes returns the distinct classes of the report in first-seen order.
func (r *Report) Classes() []ruleset.Class {
	var out []ruleset.Class
	seen := make(map[ruleset.Class]bool)
	for _, m := range r.Matchups {
		for _, c := range []ruleset.Class{m.A, m.B} {
			if !seen[c] {
				seen[c] = true
				out = append(out, c)
			}
		}
	}
	return out
}

type reportDoc struct {
	ID               string       `yaml:"id"`
	Seed             int64        `yaml:"seed"`
	TrialsPerMatchup int          `yaml:"trials_per_matchup"`
	Planned          int          `yaml:"planned"`
	Completed        int          `yaml:"completed"`
	Partial          bool         `yaml:"partial"`
	StopReason       string       `yaml:"stop_reason,omitempty"`
	StartedAt        string       `yaml:"started_at"`
	Elapsed          string       `yaml:"elapsed"`
	Matchups         []matchupDoc `yaml:"matchups"`
}

type matchupDoc struct {
	A                    string  `yaml:"a"`
	B                    string  `yaml:"b"`
	Stats                Stats   `yaml:"totals"`
	WinRate              float64 `yaml:"win_rate"`
	AvgRounds            float64 `yaml:"avg_rounds"`
	AvgWinnerHealth      float64 `yaml:"avg_winner_health"`
	AbilityUseRate       float64 `yaml:"ability_use_rate"`
	FirstAttackerWinRate float64 `yaml:"first_attacker_win_rate"`
}

// WriteYAML encodes r, including derived rates, as a YAML document.
//
// Precondition: r must be non-nil.
func WriteYAML(w io.Writer, r *Report) error {
	doc := reportDoc{
		ID:               r.ID.String(),
		Seed:             r.Seed,
		TrialsPerMatchup: r.TrialsPerMatchup,
		Planned:          r.Planned,
		Completed:        r.Completed,
		Partial:          r.Partial,
		StopReason:       r.StopReason,
		StartedAt:        r.StartedAt.UTC().Format(time.RFC3339),
		Elapsed:          r.Elapsed.String(),
	}
	for _, m := range r.Matchups {
		doc.Matchups = append(doc.Matchups, matchupDoc{
			A:                    m.A.String(),
			B:                    m.B.String(),
			Stats:                m.Stats,
			WinRate:              m.Stats.WinRate(),
			AvgRounds:            m.Stats.AvgRounds(),
			AvgWinnerHealth:      m.Stats.AvgWinnerHealth(),
			AbilityUseRate:       m.Stats.AbilityUseRate(),
			FirstAttackerWinRate: m.Stats.FirstAttackerWinRate(),
		})
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encoding report %s: %w", r.ID, err)
	}
	if err := enc.Close(); err != nil {
		return fmt.Errorf("encoding report %s: %w", r.ID, err)
	}
	return nil
}
