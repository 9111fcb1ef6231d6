// Package tournament runs a round-robin between player characters: every pair
// fights once and the character with the most wins takes the tournament.
package tournament

import (
	"errors"
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// ErrTooFewPlayers is returned when no character enters.
var ErrTooFewPlayers = errors.New("tournament needs at least one player")

// Pairing is one scheduled battle, by index into the entrant list.
type Pairing struct {
	First  int
	Second int
}

// Result holds every battle outcome in schedule order and the overall winner.
type Result struct {
	Outcomes []combat.Outcome
	// Winner has the most wins; ties go to the earliest entrant.
	Winner *character.Character
}

// Schedule returns the round-robin pairings for n entrants: (i, j) for every
// i < j, ordered by i then j. The lower index acts first.
//
// Postcondition: len(result) == n*(n-1)/2.
func Schedule(n int) []Pairing {
	var out []Pairing
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			out = append(out, Pairing{First: i, Second: j})
		}
	}
	return out
}

// Run fights every pairing from Schedule in order. before, when non-nil, is
// called ahead of each battle so a presenter can show the combatants. A lone
// entrant fights nobody and wins outright.
//
// Precondition: chars holds distinct, non-nil characters; src is non-nil.
// Postcondition: Returns a Result whose Winner is one of chars, or ErrTooFewPlayers.
func Run(chars []*character.Character, src dice.Source, opts combat.Options, before func(a, b *character.Character)) (Result, error) {
	if len(chars) == 0 {
		return Result{}, fmt.Errorf("%w: got %d", ErrTooFewPlayers, len(chars))
	}
	var res Result
	for _, p := range Schedule(len(chars)) {
		a, b := chars[p.First], chars[p.Second]
		if before != nil {
			before(a, b)
		}
		res.Outcomes = append(res.Outcomes, combat.Fight(a, b, src, opts))
	}
	res.Winner = chars[0]
	for _, c := range chars[1:] {
		if c.Wins > res.Winner.Wins {
			res.Winner = c
		}
	}
	return res, nil
}
