// Package character defines the combatant model and its creation logic.
package character

import "github.com/cory-johannsen/arena/internal/game/ruleset"

// Character is one combatant. A Character is owned by exactly one battle at a
// time; it is not safe for concurrent use.
//
// Invariant: outside a turn in progress, Health <= MaxHealth and Cooldown >= 0.
type Character struct {
	Name  string
	Class ruleset.Class

	Health    int
	MaxHealth int
	Attack    int
	Defense   int
	// Range is the maximum distance for basic attacks and ranged abilities.
	Range int
	// DodgeChance is the probability in [0, 1) that an incoming basic attack misses.
	DodgeChance float64
	// Ability is the class special ability's name, cooldown and range rule.
	Ability ruleset.Ability

	// Cooldown is the number of turns before the special ability can be used again.
	Cooldown int
	// RageAvailable is true while a Barbarian still holds its one revival.
	RageAvailable bool

	// Wins counts battles won across a tournament.
	Wins int

	baseAttack  int
	baseDefense int
}

// IsDefeated reports whether Health has dropped to zero or below.
func (c *Character) IsDefeated() bool { return c.Health <= 0 }

// InRange reports whether distance is within the character's range.
func (c *Character) InRange(distance int) bool { return distance <= c.Range }

// Heal raises Health by amount, capped at MaxHealth.
//
// Postcondition: Health <= MaxHealth.
func (c *Character) Heal(amount int) {
	c.Health += amount
	if c.Health > c.MaxHealth {
		c.Health = c.MaxHealth
	}
}

// TickCooldown decrements Cooldown by one, flooring at zero.
//
// Postcondition: Cooldown >= 0.
func (c *Character) TickCooldown() {
	if c.Cooldown > 0 {
		c.Cooldown--
	}
}

// Reset restores the character to its post-creation battle state: full health,
// no cooldown, rage restored for Barbarians, and attack and defense reverted
// from any ability buffs. Wins are kept. Reset is idempotent.
//
// Postcondition: Health == MaxHealth; Cooldown == 0.
func (c *Character) Reset() {
	c.Health = c.MaxHealth
	c.Cooldown = 0
	c.RageAvailable = c.Class == ruleset.ClassBarbarian
	c.Attack = c.baseAttack
	c.Defense = c.baseDefense
}
