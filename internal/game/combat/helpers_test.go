package combat_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// constSrc is a deterministic Source: Intn returns i clamped to n-1 and
// Float64 always returns f.
type constSrc struct {
	i int
	f float64
}

func (s constSrc) Intn(n int) int {
	if s.i >= n {
		return n - 1
	}
	return s.i
}

func (s constSrc) Float64() float64 { return s.f }

// noDrawSrc fails the test if any draw is made.
type noDrawSrc struct{ t *testing.T }

func (s noDrawSrc) Intn(int) int {
	s.t.Fatal("unexpected Intn draw")
	return 0
}

func (s noDrawSrc) Float64() float64 {
	s.t.Fatal("unexpected Float64 draw")
	return 0
}

// neverDodge makes every Float64 check fail and every Intn draw return its minimum.
var neverDodge = constSrc{i: 0, f: 0.99}

func makeChar(t require.TestingT, class ruleset.Class, health, attack, defense int) *character.Character {
	c, err := character.FromStats(class.String(), class, ruleset.Default(),
		character.Stats{Health: health, Attack: attack, Defense: defense})
	require.NoError(t, err)
	return c
}
