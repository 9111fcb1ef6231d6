package combat

import (
	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/dice"
)

// AttackOpponent resolves a basic attack from attacker against defender at distance.
//
// Out of range: no draw, no damage. Otherwise one Float64 draw decides the
// dodge; a hit deals max(0, attack-defense).
//
// Precondition: attacker, defender and src must be non-nil.
// Postcondition: 0 <= damage <= attacker.Attack; defender.Health is reduced by damage.
func AttackOpponent(attacker, defender *character.Character, distance int, src dice.Source) (int, AttackResult) {
	if !attacker.InRange(distance) {
		return 0, ResultOutOfRange
	}
	if dice.Chance(src, defender.DodgeChance) {
		return 0, ResultDodged
	}
	damage := attacker.Attack - defender.Defense
	if damage < 0 {
		damage = 0
	}
	defender.Health -= damage
	return damage, ResultHit
}
