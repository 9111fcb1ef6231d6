// Package ruleset defines the class archetypes and the static rule table that
// drives character creation and special abilities.
package ruleset

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// ErrUnknownClass is returned when a class selection matches no archetype.
var ErrUnknownClass = errors.New("unknown class")

// Class is one of the seven fixed combatant archetypes.
// The zero value (ClassUnknown) is intentionally invalid.
type Class int

const (
	ClassUnknown Class = iota
	ClassFighter
	ClassMage
	ClassRanger
	ClassBarbarian
	ClassRogue
	ClassCleric
	ClassAssassin
)

// Classes lists every valid class in selection order.
var Classes = []Class{
	ClassFighter,
	ClassMage,
	ClassRanger,
	ClassBarbarian,
	ClassRogue,
	ClassCleric,
	ClassAssassin,
}

var classNames = map[Class]string{
	ClassFighter:   "Fighter",
	ClassMage:      "Mage",
	ClassRanger:    "Ranger",
	ClassBarbarian: "Barbarian",
	ClassRogue:     "Rogue",
	ClassCleric:    "Cleric",
	ClassAssassin:  "Assassin",
}

// String returns the display name of the class, or "Unknown".
func (c Class) String() string {
	if n, ok := classNames[c]; ok {
		return n
	}
	return "Unknown"
}

// Valid reports whether c is one of Classes.
func (c Class) Valid() bool {
	_, ok := classNames[c]
	return ok
}

// Key returns the lower-case identifier used in YAML and storage.
func (c Class) Key() string {
	return strings.ToLower(c.String())
}

// ParseClass resolves a class selection given either as a 1-based index into
// Classes or as a case-insensitive class name.
//
// Postcondition: Returns a valid Class, or ErrUnknownClass wrapped with the input.
func ParseClass(s string) (Class, error) {
	s = strings.TrimSpace(s)
	if n, err := strconv.Atoi(s); err == nil {
		if n >= 1 && n <= len(Classes) {
			return Classes[n-1], nil
		}
		return ClassUnknown, fmt.Errorf("%w: index %d out of range 1-%d", ErrUnknownClass, n, len(Classes))
	}
	for _, c := range Classes {
		if strings.EqualFold(s, c.String()) {
			return c, nil
		}
	}
	return ClassUnknown, fmt.Errorf("%w: %q", ErrUnknownClass, s)
}
