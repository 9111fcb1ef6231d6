// Package combat implements the two-combatant battle engine: the per-turn
// resolver for attacks and special abilities, and the battle loop that drives
// turns until one side falls.
package combat

import "github.com/cory-johannsen/arena/internal/game/ruleset"

// AttackResult is the outcome of a basic attack.
type AttackResult int

const (
	ResultHit AttackResult = iota
	ResultDodged
	ResultOutOfRange
)

// String returns a human-readable attack result label.
func (r AttackResult) String() string {
	switch r {
	case ResultHit:
		return "hit"
	case ResultDodged:
		return "dodged"
	case ResultOutOfRange:
		return "out of range"
	default:
		return "unknown"
	}
}

// Outcome is the immutable record of one finished battle.
type Outcome struct {
	// Draw is true when the battle hit its round limit; Winner and Loser are then unset.
	Draw       bool
	Winner     ruleset.Class
	Loser      ruleset.Class
	WinnerName string
	LoserName  string
	// Rounds is the number of turns taken, counting both combatants.
	Rounds int
	// WinnerHealth is the winner's health when the battle ended, before reset.
	WinnerHealth int
	// AbilityUses counts special ability attempts by either side.
	AbilityUses int
	// FirstMover is the class of the combatant that acted on turn one.
	FirstMover ruleset.Class
	// FirstMoverWon is true when the combatant that acted on turn one won.
	FirstMoverWon bool
}
