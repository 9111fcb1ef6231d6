package combat

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

const (
	// DefaultStartDistance is the distance between combatants on turn one.
	DefaultStartDistance = 10
	// DefaultAbilityChance is the per-turn probability of attempting a special ability.
	DefaultAbilityChance = 0.2
	// maxCloseSpeed is the most distance a combatant can close in one turn.
	maxCloseSpeed = 2
)

// EventKind distinguishes the narration events emitted by Fight.
type EventKind int

const (
	EventTurn EventKind = iota
	EventRevive
	EventVictory
	EventDraw
)

// Event is a narration record for the presentation layer. Fight emits one
// EventTurn per turn, followed by EventRevive or EventVictory when the
// defender falls.
type Event struct {
	Kind  EventKind
	Round int
	// Distance is the distance at the start of the turn, before movement.
	Distance int
	// Moved is how far the actor closed this turn.
	Moved  int
	Actor  string
	Target string
	// Ability is non-nil when the actor attempted its special ability.
	Ability *AbilityResult
	// Attack and Damage describe a basic attack; unset when Ability is non-nil.
	Attack    AttackResult
	Damage    int
	Narrative string

	FirstName  string
	FirstHP    int
	SecondName string
	SecondHP   int
}

// Observer receives narration events. It is called synchronously.
type Observer func(Event)

// Options configures a battle.
type Options struct {
	// StartDistance is the initial distance between combatants. Must be >= 0.
	StartDistance int
	// AbilityChance is the per-turn probability of attempting the special ability
	// when it is off cooldown. Zero disables abilities.
	AbilityChance float64
	// MaxRounds ends the battle as a draw after that many turns. Zero means no limit.
	MaxRounds int
	// Observer, when non-nil, receives every narration event.
	Observer Observer
}

// DefaultOptions returns the standard battle options: distance 10, 20% ability chance, no turn limit.
func DefaultOptions() Options {
	return Options{
		StartDistance: DefaultStartDistance,
		AbilityChance: DefaultAbilityChance,
	}
}

// Fight runs a battle between first and second until one is defeated. first
// acts on odd turns and second on even turns. Afterwards both characters are
// Reset and the winner's Wins is incremented.
//
// Each turn: the actor closes up to two units if out of range; then, if a
// Float64 draw is below opts.AbilityChance and the actor's cooldown is zero,
// it attempts its special ability, otherwise it makes a basic attack. A
// defeated Barbarian holding rage revives once with 10-20 health. Both
// cooldowns tick down at the end of every turn that does not end the battle.
//
// Precondition: first and second are distinct, non-nil, undefeated characters;
// src is non-nil; opts.StartDistance >= 0.
// Postcondition: Both characters are Reset; the returned Outcome describes the battle.
func Fight(first, second *character.Character, src dice.Source, opts Options) Outcome {
	if first == second {
		panic("combat: Fight precondition violated: combatants must be distinct")
	}
	if opts.StartDistance < 0 {
		panic(fmt.Sprintf("combat: Fight precondition violated: negative start distance %d", opts.StartDistance))
	}
	emit := opts.Observer
	if emit == nil {
		emit = func(Event) {}
	}

	distance := opts.StartDistance
	turn := 0
	uses := 0
	var attacker, defender *character.Character

	for {
		if opts.MaxRounds > 0 && turn >= opts.MaxRounds {
			out := Outcome{Draw: true, Rounds: turn, AbilityUses: uses, FirstMover: first.Class}
			emit(Event{
				Kind:      EventDraw,
				Round:     turn,
				Distance:  distance,
				Narrative: fmt.Sprintf("%s and %s fight to a standstill after %d rounds.", first.Name, second.Name, turn),
			})
			first.Reset()
			second.Reset()
			return out
		}

		turn++
		attacker, defender = first, second
		if turn%2 == 0 {
			attacker, defender = second, first
		}

		ev := Event{
			Kind:     EventTurn,
			Round:    turn,
			Distance: distance,
			Actor:    attacker.Name,
			Target:   defender.Name,
		}

		if !attacker.InRange(distance) {
			move := min(maxCloseSpeed, distance-attacker.Range)
			distance -= move
			ev.Moved = move
		}

		if dice.Chance(src, opts.AbilityChance) && attacker.Cooldown == 0 {
			res := UseSpecialAbility(attacker, defender, distance, src)
			uses++
			ev.Ability = &res
			ev.Narrative = res.Narrative
		} else {
			dmg, result := AttackOpponent(attacker, defender, distance, src)
			ev.Attack = result
			ev.Damage = dmg
			ev.Narrative = attackNarrative(attacker, defender, dmg, result)
		}

		ev.FirstName, ev.FirstHP = first.Name, first.Health
		ev.SecondName, ev.SecondHP = second.Name, second.Health
		emit(ev)

		if defender.IsDefeated() {
			if defender.RageAvailable {
				defender.RageAvailable = false
				defender.Health = dice.RollExpression(src, RageRevive).Total()
				emit(Event{
					Kind:       EventRevive,
					Round:      turn,
					Distance:   distance,
					Actor:      defender.Name,
					Narrative:  fmt.Sprintf("%s is filled with Rage and stands back up with %d HP!", defender.Name, defender.Health),
					FirstName:  first.Name,
					FirstHP:    first.Health,
					SecondName: second.Name,
					SecondHP:   second.Health,
				})
			} else {
				break
			}
		}

		first.TickCooldown()
		second.TickCooldown()
	}

	attacker.Wins++
	out := Outcome{
		Winner:        attacker.Class,
		Loser:         defender.Class,
		WinnerName:    attacker.Name,
		LoserName:     defender.Name,
		Rounds:        turn,
		WinnerHealth:  attacker.Health,
		AbilityUses:   uses,
		FirstMover:    first.Class,
		FirstMoverWon: attacker == first,
	}
	emit(Event{
		Kind:      EventVictory,
		Round:     turn,
		Distance:  distance,
		Actor:     attacker.Name,
		Target:    defender.Name,
		Narrative: fmt.Sprintf("%s wins!", attacker.Name),
	})

	first.Reset()
	second.Reset()
	return out
}

func attackNarrative(attacker, defender *character.Character, dmg int, r AttackResult) string {
	switch r {
	case ResultHit:
		return fmt.Sprintf("%s deals %d damage to %s", attacker.Name, dmg, defender.Name)
	case ResultDodged:
		return fmt.Sprintf("%s dodges %s's attack!", defender.Name, attacker.Name)
	default:
		return fmt.Sprintf("%s is out of range to attack.", attacker.Name)
	}
}
