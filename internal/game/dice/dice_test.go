package dice_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/dice"
)

// TestBetween_Property verifies the postcondition lo <= Between(lo, hi) <= hi.
func TestBetween_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		lo := rapid.IntRange(-100, 100).Draw(rt, "lo")
		hi := rapid.IntRange(lo, lo+200).Draw(rt, "hi")
		seed := rapid.Int64().Draw(rt, "seed")
		v := dice.Between(dice.NewSeededSource(seed), lo, hi)
		assert.GreaterOrEqual(rt, v, lo)
		assert.LessOrEqual(rt, v, hi)
	})
}

func TestBetween_PanicsOnInvertedRange(t *testing.T) {
	assert.Panics(t, func() { dice.Between(dice.NewSeededSource(1), 5, 4) })
}

func TestRange(t *testing.T) {
	r := dice.Range{Min: 80, Max: 120}
	assert.True(t, r.Valid())
	assert.Equal(t, "80..120", r.String())
	assert.False(t, dice.Range{Min: 3, Max: 2}.Valid())
}

func TestSeededSource_Deterministic(t *testing.T) {
	a := dice.NewSeededSource(42)
	b := dice.NewSeededSource(42)
	for i := 0; i < 100; i++ {
		require.Equal(t, a.Intn(1000), b.Intn(1000))
		require.Equal(t, a.Float64(), b.Float64())
	}
}

func TestSeededSource_ZeroSeedMatchesOne(t *testing.T) {
	assert.Equal(t, dice.NewSeededSource(1).Intn(1<<30), dice.NewSeededSource(0).Intn(1<<30))
}

func TestChance_AlwaysConsumesDraw(t *testing.T) {
	a := dice.NewSeededSource(7)
	b := dice.NewSeededSource(7)
	assert.False(t, dice.Chance(a, 0))
	b.Float64()
	assert.Equal(t, b.Float64(), a.Float64())
}

// TestCryptoSource_Intn_InRange verifies every value returned by Intn(6) is in [0, 6).
func TestCryptoSource_Intn_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Intn(6)
		assert.GreaterOrEqual(t, v, 0)
		assert.Less(t, v, 6)
	}
}

func TestCryptoSource_Float64_InRange(t *testing.T) {
	src := dice.NewCryptoSource()
	for i := 0; i < 1000; i++ {
		v := src.Float64()
		assert.GreaterOrEqual(t, v, 0.0)
		assert.Less(t, v, 1.0)
	}
}

func TestCryptoSource_Intn_PanicsOnZero(t *testing.T) {
	assert.Panics(t, func() { dice.NewCryptoSource().Intn(0) })
}

func TestNewSeed_NonZero(t *testing.T) {
	for i := 0; i < 100; i++ {
		assert.NotZero(t, dice.NewSeed())
	}
}

func TestRoller_LogsEachDraw(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	r := dice.NewLoggedRoller(dice.NewSeededSource(3), zap.New(core))

	v := r.Intn(20)
	f := r.Float64()

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "dice roll", entries[0].Message)
	assert.EqualValues(t, v, entries[0].ContextMap()["value"])
	assert.Equal(t, "dice chance", entries[1].Message)
	assert.Equal(t, f, entries[1].ContextMap()["value"])
}

func TestRoller_MatchesWrappedSource(t *testing.T) {
	plain := dice.NewSeededSource(11)
	logged := dice.NewLoggedRoller(dice.NewSeededSource(11), zap.NewNop())
	for i := 0; i < 50; i++ {
		require.Equal(t, plain.Intn(100), logged.Intn(100))
	}
}

func TestNewLoggedRoller_PanicsOnNil(t *testing.T) {
	assert.Panics(t, func() { dice.NewLoggedRoller(nil, zap.NewNop()) })
}
