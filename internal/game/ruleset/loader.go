package ruleset

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// tableFile is the YAML shape of a rule table overlay. Every field is optional;
// unset fields keep their Default values.
type tableFile struct {
	Base    *baseOverride            `yaml:"base"`
	Classes map[string]classOverride `yaml:"classes"`
}

// baseOverride ranges accept {min, max} or a dice expression such as "1d41+79".
type baseOverride struct {
	Health      *dice.Range `yaml:"health"`
	Attack      *dice.Range `yaml:"attack"`
	Defense     *dice.Range `yaml:"defense"`
	DodgeChance *float64    `yaml:"dodge_chance"`
}

type classOverride struct {
	Attack   *int     `yaml:"attack"`
	Health   *int     `yaml:"health"`
	Defense  *int     `yaml:"defense"`
	Dodge    *float64 `yaml:"dodge"`
	Range    *int     `yaml:"range"`
	Name     *string  `yaml:"ability"`
	Cooldown *int     `yaml:"cooldown"`
}

// LoadTable reads a YAML overlay from path and applies it on top of Default.
// An empty path returns Default unchanged.
//
// Postcondition: Returns a validated Table or a non-nil error.
func LoadTable(path string) (*Table, error) {
	if path == "" {
		return Default(), nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	t, err := ParseTable(data)
	if err != nil {
		return nil, fmt.Errorf("parsing rule table %s: %w", path, err)
	}
	return t, nil
}

// ParseTable applies the YAML overlay in data on top of Default.
//
// Postcondition: Returns a validated Table or a non-nil error.
func ParseTable(data []byte) (*Table, error) {
	var f tableFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, err
	}

	t := Default()
	if b := f.Base; b != nil {
		if b.Health != nil {
			t.Base.Health = *b.Health
		}
		if b.Attack != nil {
			t.Base.Attack = *b.Attack
		}
		if b.Defense != nil {
			t.Base.Defense = *b.Defense
		}
		if b.DodgeChance != nil {
			t.Base.DodgeChance = *b.DodgeChance
		}
	}
	for key, o := range f.Classes {
		c, err := ParseClass(key)
		if err != nil {
			return nil, err
		}
		r := t.rules[c]
		if o.Attack != nil {
			r.AttackDelta = *o.Attack
		}
		if o.Health != nil {
			r.HealthDelta = *o.Health
		}
		if o.Defense != nil {
			r.DefenseDelta = *o.Defense
		}
		if o.Dodge != nil {
			r.DodgeDelta = *o.Dodge
		}
		if o.Range != nil {
			r.Range = *o.Range
		}
		if o.Name != nil {
			r.Ability.Name = *o.Name
		}
		if o.Cooldown != nil {
			r.Ability.Cooldown = *o.Cooldown
		}
		t.rules[c] = r
	}

	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}
