package combat_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/combat"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

func noAbilities() combat.Options {
	return combat.Options{StartDistance: combat.DefaultStartDistance, AbilityChance: 0}
}

func TestDefaultOptions(t *testing.T) {
	opts := combat.DefaultOptions()
	assert.Equal(t, 10, opts.StartDistance)
	assert.InDelta(t, 0.2, opts.AbilityChance, 1e-9)
	assert.Zero(t, opts.MaxRounds)
}

// TestFight_FighterClosesOnMage walks the Fighter-vs-Mage scenario turn by turn:
// the Mage lands free hits while the Fighter closes to range 1.
func TestFight_FighterClosesOnMage(t *testing.T) {
	fighter := makeChar(t, ruleset.ClassFighter, 100, 25, 15)
	mage := makeChar(t, ruleset.ClassMage, 90, 30, 0)

	var turns []combat.Event
	opts := noAbilities()
	opts.Observer = func(ev combat.Event) {
		if ev.Kind == combat.EventTurn {
			turns = append(turns, ev)
		}
	}

	out := combat.Fight(fighter, mage, neverDodge, opts)

	require.Len(t, turns, 13)
	wantDistance := []int{10, 8, 6, 4, 4, 2, 2, 1, 1, 1, 1, 1, 1}
	wantMoved := []int{2, 2, 2, 0, 2, 0, 1, 0, 0, 0, 0, 0, 0}
	wantResult := []combat.AttackResult{
		combat.ResultOutOfRange, combat.ResultOutOfRange, combat.ResultOutOfRange, combat.ResultHit,
		combat.ResultOutOfRange, combat.ResultHit, combat.ResultHit, combat.ResultHit,
		combat.ResultHit, combat.ResultHit, combat.ResultHit, combat.ResultHit, combat.ResultHit,
	}
	wantFighterHP := []int{100, 100, 100, 85, 85, 70, 70, 55, 55, 40, 40, 25, 25}
	wantMageHP := []int{90, 90, 90, 90, 90, 90, 65, 65, 40, 40, 15, 15, -10}
	for i, ev := range turns {
		assert.Equal(t, i+1, ev.Round)
		assert.Equal(t, wantDistance[i], ev.Distance, "round %d distance", ev.Round)
		assert.Equal(t, wantMoved[i], ev.Moved, "round %d moved", ev.Round)
		assert.Equal(t, wantResult[i], ev.Attack, "round %d result", ev.Round)
		assert.Nil(t, ev.Ability)
		assert.Equal(t, wantFighterHP[i], ev.FirstHP, "round %d fighter hp", ev.Round)
		assert.Equal(t, wantMageHP[i], ev.SecondHP, "round %d mage hp", ev.Round)
		if i%2 == 0 {
			assert.Equal(t, "Fighter", ev.Actor)
		} else {
			assert.Equal(t, "Mage", ev.Actor)
		}
	}

	assert.Equal(t, combat.Outcome{
		Winner:        ruleset.ClassFighter,
		Loser:         ruleset.ClassMage,
		WinnerName:    "Fighter",
		LoserName:     "Mage",
		Rounds:        13,
		WinnerHealth:  25,
		AbilityUses:   0,
		FirstMover:    ruleset.ClassFighter,
		FirstMoverWon: true,
	}, out)

	assert.Equal(t, 1, fighter.Wins)
	assert.Equal(t, 0, mage.Wins)
	assert.Equal(t, fighter.MaxHealth, fighter.Health)
	assert.Equal(t, mage.MaxHealth, mage.Health)
}

func TestFight_EmitsVictoryLast(t *testing.T) {
	a := makeChar(t, ruleset.ClassAssassin, 95, 40, 0)
	b := makeChar(t, ruleset.ClassRogue, 30, 10, 0)

	var kinds []combat.EventKind
	opts := combat.Options{StartDistance: 0, Observer: func(ev combat.Event) { kinds = append(kinds, ev.Kind) }}
	out := combat.Fight(a, b, neverDodge, opts)

	assert.Equal(t, []combat.EventKind{combat.EventTurn, combat.EventVictory}, kinds)
	assert.Equal(t, 1, out.Rounds)
	assert.Equal(t, "Assassin", out.WinnerName)
}

func TestFight_BarbarianRevivesOnce(t *testing.T) {
	assassin := makeChar(t, ruleset.ClassAssassin, 95, 30, 0)
	barb := makeChar(t, ruleset.ClassBarbarian, 10, 1, 0)

	var revives []combat.Event
	rageDuringBattle := true
	opts := combat.Options{StartDistance: 0, AbilityChance: 0}
	opts.Observer = func(ev combat.Event) {
		if ev.Kind == combat.EventRevive {
			revives = append(revives, ev)
			rageDuringBattle = barb.RageAvailable
		}
	}

	// Intn 5 -> revive health 15.
	out := combat.Fight(assassin, barb, constSrc{i: 5, f: 0.99}, opts)

	require.Len(t, revives, 1)
	assert.Equal(t, "Barbarian", revives[0].Actor)
	assert.Equal(t, 15, revives[0].SecondHP)
	assert.False(t, rageDuringBattle, "rage is consumed by the revive")

	assert.Equal(t, ruleset.ClassAssassin, out.Winner)
	assert.Equal(t, 3, out.Rounds)
	assert.Equal(t, 94, out.WinnerHealth)
	assert.True(t, barb.RageAvailable, "rage is restored after the battle")
	assert.Equal(t, 10, barb.Health)
}

// TestFight_Property_BarbarianReviveHealth verifies a revive always lands in [10, 20].
func TestFight_Property_BarbarianReviveHealth(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		seed := rapid.Int64().Draw(rt, "seed")
		other := rapid.SampledFrom([]ruleset.Class{
			ruleset.ClassFighter, ruleset.ClassMage, ruleset.ClassRanger,
			ruleset.ClassRogue, ruleset.ClassCleric, ruleset.ClassAssassin,
		}).Draw(rt, "other")
		barb := makeChar(rt, ruleset.ClassBarbarian, 20, 5, 0)
		opp := makeChar(rt, other, 200, 40, 0)

		revives := 0
		opts := combat.DefaultOptions()
		opts.Observer = func(ev combat.Event) {
			if ev.Kind != combat.EventRevive {
				return
			}
			revives++
			hp := ev.FirstHP
			if ev.SecondName == barb.Name {
				hp = ev.SecondHP
			}
			assert.GreaterOrEqual(rt, hp, 10)
			assert.LessOrEqual(rt, hp, 20)
		}
		combat.Fight(opp, barb, dice.NewSeededSource(seed), opts)
		assert.LessOrEqual(rt, revives, 1)
	})
}

// TestFight_Property_CooldownBookkeeping verifies cooldowns never go negative
// and fall by exactly one per turn unless the actor just used its ability.
func TestFight_Property_CooldownBookkeeping(t *testing.T) {
	tbl := ruleset.Default()
	rapid.Check(t, func(rt *rapid.T) {
		ca := rapid.SampledFrom(ruleset.Classes).Draw(rt, "a")
		cb := rapid.SampledFrom(ruleset.Classes).Draw(rt, "b")
		seed := rapid.Int64().Draw(rt, "seed")
		src := dice.NewSeededSource(seed)
		a, err := character.New("A", ca, tbl, src)
		require.NoError(rt, err)
		b, err := character.New("B", cb, tbl, src)
		require.NoError(rt, err)

		type snap struct{ a, b int }
		var prev *snap
		opts := combat.DefaultOptions()
		opts.MaxRounds = 5000
		opts.Observer = func(ev combat.Event) {
			if ev.Kind != combat.EventTurn {
				return
			}
			cur := snap{a.Cooldown, b.Cooldown}
			assert.GreaterOrEqual(rt, cur.a, 0)
			assert.GreaterOrEqual(rt, cur.b, 0)
			if prev != nil {
				used := ev.Ability != nil && ev.Ability.Status == combat.AbilityUsed
				check := func(name string, before, after, full int) {
					if used && ev.Actor == name {
						assert.Equal(rt, full, after)
						return
					}
					assert.Equal(rt, max(0, before-1), after)
				}
				check("A", prev.a, cur.a, a.Ability.Cooldown)
				check("B", prev.b, cur.b, b.Ability.Cooldown)
			}
			prev = &cur
		}
		combat.Fight(a, b, src, opts)
	})
}

// TestFight_Property_Terminates verifies every ordered class pair produces a
// well-formed outcome and leaves both characters reset.
func TestFight_Property_Terminates(t *testing.T) {
	tbl := ruleset.Default()
	rapid.Check(t, func(rt *rapid.T) {
		ca := rapid.SampledFrom(ruleset.Classes).Draw(rt, "a")
		cb := rapid.SampledFrom(ruleset.Classes).Draw(rt, "b")
		src := dice.NewSeededSource(rapid.Int64().Draw(rt, "seed"))
		a, err := character.New("A", ca, tbl, src)
		require.NoError(rt, err)
		b, err := character.New("B", cb, tbl, src)
		require.NoError(rt, err)
		// Cleric mirrors can stalemate on zero-damage hits.
		opts := combat.DefaultOptions()
		opts.MaxRounds = 5000

		out := combat.Fight(a, b, src, opts)
		assert.Greater(rt, out.Rounds, 0)
		assert.Equal(rt, ca, out.FirstMover)
		assert.Equal(rt, a.MaxHealth, a.Health)
		assert.Equal(rt, b.MaxHealth, b.Health)
		assert.Equal(rt, 0, a.Cooldown)
		assert.Equal(rt, 0, b.Cooldown)
		if out.Draw {
			return
		}
		assert.Equal(rt, 1, a.Wins+b.Wins)
		winner := a
		if out.WinnerName == "B" {
			winner = b
		}
		assert.Equal(rt, winner.Class, out.Winner)
		assert.Greater(rt, out.WinnerHealth, 0)
		assert.LessOrEqual(rt, out.WinnerHealth, winner.MaxHealth)
		assert.Equal(rt, winner == a, out.FirstMoverWon)
	})
}

func TestFight_DeterministicForSeed(t *testing.T) {
	run := func() (combat.Outcome, []combat.Event) {
		tbl := ruleset.Default()
		src := dice.NewSeededSource(20240611)
		a, err := character.New("Ayla", ruleset.ClassRanger, tbl, src)
		require.NoError(t, err)
		b, err := character.New("Bors", ruleset.ClassBarbarian, tbl, src)
		require.NoError(t, err)
		var events []combat.Event
		opts := combat.DefaultOptions()
		opts.Observer = func(ev combat.Event) { events = append(events, ev) }
		return combat.Fight(a, b, src, opts), events
	}
	out1, ev1 := run()
	out2, ev2 := run()
	assert.Equal(t, out1, out2)
	assert.Equal(t, ev1, ev2)
}

func TestFight_DrawAtRoundLimit(t *testing.T) {
	a := makeChar(t, ruleset.ClassCleric, 100, 5, 17)
	b := makeChar(t, ruleset.ClassCleric, 100, 5, 17)

	var last combat.Event
	opts := combat.Options{StartDistance: 0, AbilityChance: 0, MaxRounds: 50}
	opts.Observer = func(ev combat.Event) { last = ev }
	out := combat.Fight(a, b, neverDodge, opts)

	assert.True(t, out.Draw)
	assert.Equal(t, 50, out.Rounds)
	assert.False(t, out.FirstMoverWon)
	assert.Equal(t, combat.EventDraw, last.Kind)
	assert.Equal(t, 0, a.Wins+b.Wins)
}

func TestFight_CountsAbilityAttempts(t *testing.T) {
	// Always attempt: Float64 0.0 is below the 20% chance, and below any dodge chance.
	a := makeChar(t, ruleset.ClassFighter, 100, 25, 5)
	b := makeChar(t, ruleset.ClassMage, 90, 30, 0)

	var events []combat.Event
	opts := combat.DefaultOptions()
	opts.Observer = func(ev combat.Event) {
		if ev.Kind == combat.EventTurn {
			events = append(events, ev)
		}
	}
	out := combat.Fight(a, b, constSrc{i: 0, f: 0.0}, opts)

	attempts := 0
	for _, ev := range events {
		if ev.Ability != nil {
			attempts++
		}
	}
	assert.Equal(t, attempts, out.AbilityUses)
	require.NotNil(t, events[0].Ability)
	assert.Equal(t, combat.AbilityTooFar, events[0].Ability.Status, "fighter attempts strike from distance 8")
}

func TestFight_PanicsOnSameCharacter(t *testing.T) {
	a := makeChar(t, ruleset.ClassFighter, 100, 25, 5)
	assert.Panics(t, func() { combat.Fight(a, a, neverDodge, combat.DefaultOptions()) })
}
