package ruleset

import (
	"fmt"
	"strings"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// Ability describes a class special ability's bookkeeping. Its effect lives in
// the combat package's dispatch table.
type Ability struct {
	Name string `yaml:"name"`
	// Cooldown is the number of turns the ability stays unusable after use.
	Cooldown int `yaml:"cooldown"`
	// NeedsRange is true when the ability only applies within the actor's range.
	NeedsRange bool `yaml:"needs_range"`
}

// ClassRule holds the per-class modifiers applied after the base roll.
type ClassRule struct {
	Class        Class
	AttackDelta  int
	HealthDelta  int
	DefenseDelta int
	DodgeDelta   float64
	Range        int
	Ability      Ability
}

// BaseStats holds the rolled ranges every character starts from.
type BaseStats struct {
	Health      dice.Range `yaml:"health"`
	Attack      dice.Range `yaml:"attack"`
	Defense     dice.Range `yaml:"defense"`
	DodgeChance float64    `yaml:"dodge_chance"`
}

// Table is the closed mapping from class to rule. It is read-only once built
// and safe to share between goroutines.
type Table struct {
	Base  BaseStats
	rules map[Class]ClassRule
}

// Default returns the stock rule table.
//
// Postcondition: Returned table passes Validate and has a rule for every Class.
func Default() *Table {
	return &Table{
		Base: BaseStats{
			Health:      dice.Range{Min: 80, Max: 120},
			Attack:      dice.Range{Min: 13, Max: 20},
			Defense:     dice.Range{Min: 0, Max: 10},
			DodgeChance: 0.05,
		},
		rules: map[Class]ClassRule{
			ClassFighter: {
				Class: ClassFighter, AttackDelta: 5, DefenseDelta: 5, Range: 1,
				Ability: Ability{Name: "Powerful Strike", Cooldown: 3, NeedsRange: true},
			},
			ClassMage: {
				Class: ClassMage, AttackDelta: 10, HealthDelta: -10, Range: 5,
				Ability: Ability{Name: "Fireball", Cooldown: 2},
			},
			ClassRanger: {
				Class: ClassRanger, AttackDelta: 5, DodgeDelta: 0.05, Range: 5,
				Ability: Ability{Name: "Precise Aim", Cooldown: 2},
			},
			ClassBarbarian: {
				Class: ClassBarbarian, AttackDelta: 5, HealthDelta: 30, Range: 1,
				Ability: Ability{Name: "Berserker Rage", Cooldown: 5},
			},
			ClassRogue: {
				Class: ClassRogue, AttackDelta: 7, DefenseDelta: 3, DodgeDelta: 0.10, Range: 1,
				Ability: Ability{Name: "Sneak Attack", Cooldown: 2, NeedsRange: true},
			},
			ClassCleric: {
				Class: ClassCleric, HealthDelta: 10, DefenseDelta: 7, Range: 3,
				Ability: Ability{Name: "Heal", Cooldown: 3},
			},
			ClassAssassin: {
				Class: ClassAssassin, AttackDelta: 8, HealthDelta: -5, DodgeDelta: 0.07, Range: 1,
				Ability: Ability{Name: "Deadly Strike", Cooldown: 2, NeedsRange: true},
			},
		},
	}
}

// Rule returns the rule for c.
//
// Precondition: c must be a valid Class.
func (t *Table) Rule(c Class) ClassRule {
	r, ok := t.rules[c]
	if !ok {
		panic(fmt.Sprintf("ruleset: Table.Rule precondition violated: no rule for class %d", int(c)))
	}
	return r
}

// Validate checks every table invariant.
//
// Postcondition: Returns nil if every class can be built with positive max
// health, non-negative attack and defense, positive range, and dodge in [0, 1).
func (t *Table) Validate() error {
	var errs []string
	b := t.Base
	if !b.Health.Valid() || !b.Attack.Valid() || !b.Defense.Valid() {
		errs = append(errs, "base ranges must have min <= max")
	}
	if b.Attack.Min < 0 || b.Defense.Min < 0 {
		errs = append(errs, "base attack and defense must be >= 0")
	}
	if b.DodgeChance < 0 || b.DodgeChance >= 1 {
		errs = append(errs, fmt.Sprintf("base dodge_chance must be in [0, 1), got %g", b.DodgeChance))
	}
	for _, c := range Classes {
		r, ok := t.rules[c]
		if !ok {
			errs = append(errs, fmt.Sprintf("%s: missing rule", c))
			continue
		}
		if b.Health.Min+r.HealthDelta <= 0 {
			errs = append(errs, fmt.Sprintf("%s: minimum health %d must be > 0", c, b.Health.Min+r.HealthDelta))
		}
		if b.Attack.Min+r.AttackDelta < 0 {
			errs = append(errs, fmt.Sprintf("%s: minimum attack must be >= 0", c))
		}
		if b.Defense.Min+r.DefenseDelta < 0 {
			errs = append(errs, fmt.Sprintf("%s: minimum defense must be >= 0", c))
		}
		if d := b.DodgeChance + r.DodgeDelta; d < 0 || d >= 1 {
			errs = append(errs, fmt.Sprintf("%s: dodge chance %g must be in [0, 1)", c, d))
		}
		if r.Range < 1 {
			errs = append(errs, fmt.Sprintf("%s: range must be >= 1, got %d", c, r.Range))
		}
		if r.Ability.Cooldown < 0 {
			errs = append(errs, fmt.Sprintf("%s: cooldown must be >= 0", c))
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("rule table validation failed: %s", strings.Join(errs, "; "))
	}
	return nil
}

