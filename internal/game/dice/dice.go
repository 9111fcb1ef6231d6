// Package dice provides the randomness abstraction used by the arena simulator.
//
// Every random draw in a battle flows through a Source so a battle can be
// replayed exactly from a seed.
package dice

import "fmt"

// Source is the randomness provider for character rolls and combat checks.
type Source interface {
	// Intn returns a non-negative random int in [0, n).
	//
	// Precondition: n > 0.
	Intn(n int) int
	// Float64 returns a uniformly distributed float in [0, 1).
	Float64() float64
}

// Range is an inclusive integer interval used for stat and effect rolls.
type Range struct {
	Min int `yaml:"min"`
	Max int `yaml:"max"`
}

// Valid reports whether Min <= Max.
func (r Range) Valid() bool { return r.Min <= r.Max }

// String returns the range as "min..max".
func (r Range) String() string {
	return fmt.Sprintf("%d..%d", r.Min, r.Max)
}

// Between returns a uniformly distributed int in the inclusive interval [lo, hi].
//
// Precondition: lo <= hi; src must be non-nil.
// Postcondition: lo <= result <= hi.
func Between(src Source, lo, hi int) int {
	if lo > hi {
		panic(fmt.Sprintf("dice: Between called with lo %d > hi %d", lo, hi))
	}
	return lo + src.Intn(hi-lo+1)
}

// Roll draws a value from r.
//
// Precondition: r.Valid().
func Roll(src Source, r Range) int {
	return Between(src, r.Min, r.Max)
}

// Chance draws one float from src and reports whether it fell below p.
// A draw is always consumed, even when p <= 0.
func Chance(src Source, p float64) bool {
	return src.Float64() < p
}
