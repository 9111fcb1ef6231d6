package character

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// Stats are the final health, attack and defense of a character built without rolls.
type Stats struct {
	Health  int
	Attack  int
	Defense int
}

// New rolls a character of the given class. Health, attack and defense are
// drawn from the table's base ranges in that order, then the class deltas
// are applied.
//
// Precondition: class must be valid; table and src must be non-nil.
// Postcondition: Returns a Character with Health == MaxHealth > 0, or a non-nil error.
func New(name string, class ruleset.Class, table *ruleset.Table, src dice.Source) (*Character, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("building character %q: %w: %d", name, ruleset.ErrUnknownClass, int(class))
	}
	rule := table.Rule(class)

	health := dice.Roll(src, table.Base.Health)
	attack := dice.Roll(src, table.Base.Attack)
	defense := dice.Roll(src, table.Base.Defense)

	return build(name, rule, table.Base.DodgeChance, Stats{
		Health:  health + rule.HealthDelta,
		Attack:  attack + rule.AttackDelta,
		Defense: defense + rule.DefenseDelta,
	})
}

// FromStats builds a character with exact final stats, bypassing rolls and
// class deltas. Range and dodge chance still come from the table.
//
// Precondition: class must be valid; table must be non-nil.
// Postcondition: Returns a Character with Health == MaxHealth == s.Health, or a non-nil error.
func FromStats(name string, class ruleset.Class, table *ruleset.Table, s Stats) (*Character, error) {
	if !class.Valid() {
		return nil, fmt.Errorf("building character %q: %w: %d", name, ruleset.ErrUnknownClass, int(class))
	}
	return build(name, table.Rule(class), table.Base.DodgeChance, s)
}

func build(name string, rule ruleset.ClassRule, baseDodge float64, s Stats) (*Character, error) {
	if s.Health <= 0 {
		return nil, fmt.Errorf("building character %q: max health must be > 0, got %d", name, s.Health)
	}
	if s.Attack < 0 || s.Defense < 0 {
		return nil, fmt.Errorf("building character %q: attack and defense must be >= 0", name)
	}
	c := &Character{
		Name:        name,
		Class:       rule.Class,
		Health:      s.Health,
		MaxHealth:   s.Health,
		Attack:      s.Attack,
		Defense:     s.Defense,
		Range:       rule.Range,
		DodgeChance: baseDodge + rule.DodgeDelta,
		Ability:     rule.Ability,
		baseAttack:  s.Attack,
		baseDefense: s.Defense,
	}
	c.Reset()
	return c, nil
}
