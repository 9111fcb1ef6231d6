// Package balance runs large numbers of silent battles across class pairs and
// aggregates the outcomes into per-matchup statistics.
package balance

import (
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// Matchup is an ordered class pair. A acts first in every trial.
type Matchup struct {
	A ruleset.Class
	B ruleset.Class
}

// Matchups returns every ordered pair of distinct classes, ordered by A then B
// following the order of classes.
//
// Postcondition: len(result) == n*(n-1) for n distinct classes.
func Matchups(classes []ruleset.Class) []Matchup {
	var out []Matchup
	for _, a := range classes {
		for _, b := range classes {
			if a != b {
				out = append(out, Matchup{A: a, B: b})
			}
		}
	}
	return out
}

// Stats accumulates the outcomes of one matchup.
type Stats struct {
	Trials            int `yaml:"trials"`
	Wins              int `yaml:"wins"`
	Draws             int `yaml:"draws"`
	TotalRounds       int `yaml:"total_rounds"`
	TotalWinnerHealth int `yaml:"total_winner_health"`
	AbilityUses       int `yaml:"ability_uses"`
	FirstAttackerWins int `yaml:"first_attacker_wins"`
}

// Add records one outcome from A's point of view. a is the class of the
// combatant counted as A.
func (s *Stats) Add(a ruleset.Class, o combat.Outcome) {
	s.Trials++
	s.TotalRounds += o.Rounds
	s.AbilityUses += o.AbilityUses
	if o.Draw {
		s.Draws++
		return
	}
	if o.Winner == a {
		s.Wins++
	}
	s.TotalWinnerHealth += o.WinnerHealth
	if o.FirstMoverWon {
		s.FirstAttackerWins++
	}
}

// Merge adds other's totals into s.
func (s *Stats) Merge(other Stats) {
	s.Trials += other.Trials
	s.Wins += other.Wins
	s.Draws += other.Draws
	s.TotalRounds += other.TotalRounds
	s.TotalWinnerHealth += other.TotalWinnerHealth
	s.AbilityUses += other.AbilityUses
	s.FirstAttackerWins += other.FirstAttackerWins
}

// WinRate is A's wins as a percentage of completed trials.
func (s Stats) WinRate() float64 { return percent(s.Wins, s.Trials) }

// AvgRounds is the mean number of turns per trial.
func (s Stats) AvgRounds() float64 { return mean(s.TotalRounds, s.Trials) }

// AvgWinnerHealth is the mean health the winner finished with.
func (s Stats) AvgWinnerHealth() float64 { return mean(s.TotalWinnerHealth, s.Trials) }

// AbilityUseRate is special ability attempts per hundred trials. It exceeds
// 100 when battles average more than one attempt.
func (s Stats) AbilityUseRate() float64 { return percent(s.AbilityUses, s.Trials) }

// FirstAttackerWinRate is the percentage of trials won by the side that acted first.
func (s Stats) FirstAttackerWinRate() float64 { return percent(s.FirstAttackerWins, s.Trials) }

func mean(total, n int) float64 {
	if n == 0 {
		return 0
	}
	return float64(total) / float64(n)
}

func percent(count, n int) float64 { return mean(count, n) * 100 }

// Accumulator holds Stats per matchup. It is not safe for concurrent use;
// each worker owns one and they are merged when the workers join.
type Accumulator struct {
	stats map[Matchup]*Stats
}

// NewAccumulator returns an empty Accumulator.
func NewAccumulator() *Accumulator {
	return &Accumulator{stats: make(map[Matchup]*Stats)}
}

// Add records one outcome for m.
func (a *Accumulator) Add(m Matchup, o combat.Outcome) {
	s, ok := a.stats[m]
	if !ok {
		s = &Stats{}
		a.stats[m] = s
	}
	s.Add(m.A, o)
}

// Merge folds every matchup of other into a.
func (a *Accumulator) Merge(other *Accumulator) {
	for m, s := range other.stats {
		dst, ok := a.stats[m]
		if !ok {
			dst = &Stats{}
			a.stats[m] = dst
		}
		dst.Merge(*s)
	}
}

// Stats returns a copy of the totals for m; zero when nothing was recorded.
func (a *Accumulator) Stats(m Matchup) Stats {
	if s, ok := a.stats[m]; ok {
		return *s
	}
	return Stats{}
}

// Trials returns the number of trials recorded across all matchups.
func (a *Accumulator) Trials() int {
	n := 0
	for _, s := range a.stats {
		n += s.Trials
	}
	return n
}
