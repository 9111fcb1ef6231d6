package combat

import (
	"fmt"

	"github.com/cory-johannsen/arena/internal/game/character"
	"github.com/cory-johannsen/arena/internal/game/dice"
	"github.com/cory-johannsen/arena/internal/game/ruleset"
)

// Effect magnitudes for the class abilities: fireball 15..30, heal 10..25 and
// rage revive 10..20.
var (
	FireballDamage = dice.MustParse("1d16+14")
	HealAmount     = dice.MustParse("1d16+9")
	RageRevive     = dice.MustParse("1d11+9")
)

const (
	aimAttackBonus  = 5
	rageAttackBonus = 5
	rageDefenseCost = 2
	sneakBonus      = 10
)

// AbilityStatus reports whether a special ability took effect.
type AbilityStatus int

const (
	AbilityUsed AbilityStatus = iota
	AbilityOnCooldown
	AbilityTooFar
)

// String returns a human-readable status label.
func (s AbilityStatus) String() string {
	switch s {
	case AbilityUsed:
		return "used"
	case AbilityOnCooldown:
		return "on cooldown"
	case AbilityTooFar:
		return "too far"
	default:
		return "unknown"
	}
}

// AbilityResult describes one special ability attempt.
type AbilityResult struct {
	Ability   string
	Status    AbilityStatus
	Damage    int
	Heal      int
	Narrative string
}

// abilityFunc applies a class ability's effect. Range and cooldown gating is
// done by UseSpecialAbility before dispatch.
type abilityFunc func(actor, opponent *character.Character, src dice.Source) AbilityResult

var abilities = map[ruleset.Class]abilityFunc{
	ruleset.ClassFighter:   powerfulStrike,
	ruleset.ClassMage:      fireball,
	ruleset.ClassRanger:    preciseAim,
	ruleset.ClassBarbarian: berserkerRage,
	ruleset.ClassRogue:     sneakAttack,
	ruleset.ClassCleric:    heal,
	ruleset.ClassAssassin:  deadlyStrike,
}

// UseSpecialAbility attempts actor's class ability against opponent at distance.
//
// On cooldown or, for range-bound abilities, out of range, nothing changes and
// the cooldown is not consumed. Otherwise the effect applies and the actor's
// cooldown is set to the ability's cooldown.
//
// Precondition: actor.Class must be valid; actor, opponent and src must be non-nil.
func UseSpecialAbility(actor, opponent *character.Character, distance int, src dice.Source) AbilityResult {
	name := actor.Ability.Name
	if actor.Cooldown > 0 {
		return AbilityResult{
			Ability:   name,
			Status:    AbilityOnCooldown,
			Narrative: fmt.Sprintf("%s's special ability is on cooldown. %d turns remaining.", actor.Name, actor.Cooldown),
		}
	}
	if actor.Ability.NeedsRange && !actor.InRange(distance) {
		return AbilityResult{
			Ability:   name,
			Status:    AbilityTooFar,
			Narrative: fmt.Sprintf("%s is too far to use %s.", actor.Name, name),
		}
	}
	fn, ok := abilities[actor.Class]
	if !ok {
		panic(fmt.Sprintf("combat: UseSpecialAbility precondition violated: no ability for class %d", int(actor.Class)))
	}
	res := fn(actor, opponent, src)
	res.Ability = name
	res.Status = AbilityUsed
	actor.Cooldown = actor.Ability.Cooldown
	return res
}

func powerfulStrike(actor, opponent *character.Character, _ dice.Source) AbilityResult {
	dmg := actor.Attack * 3 / 2
	opponent.Health -= dmg
	return AbilityResult{
		Damage:    dmg,
		Narrative: fmt.Sprintf("%s uses %s, dealing %d damage!", actor.Name, actor.Ability.Name, dmg),
	}
}

func fireball(actor, opponent *character.Character, src dice.Source) AbilityResult {
	dmg := dice.RollExpression(src, FireballDamage).Total()
	opponent.Health -= dmg
	return AbilityResult{
		Damage:    dmg,
		Narrative: fmt.Sprintf("%s casts %s, dealing %d fire damage!", actor.Name, actor.Ability.Name, dmg),
	}
}

func preciseAim(actor, _ *character.Character, _ dice.Source) AbilityResult {
	actor.Attack += aimAttackBonus
	return AbilityResult{
		Narrative: fmt.Sprintf("%s uses %s, increasing attack by %d!", actor.Name, actor.Ability.Name, aimAttackBonus),
	}
}

// berserkerRage floors defense at zero so a basic hit never exceeds the attacker's attack.
func berserkerRage(actor, _ *character.Character, _ dice.Source) AbilityResult {
	actor.Attack += rageAttackBonus
	actor.Defense -= rageDefenseCost
	if actor.Defense < 0 {
		actor.Defense = 0
	}
	return AbilityResult{
		Narrative: fmt.Sprintf("%s enters a %s, increasing attack by %d but lowering defense!", actor.Name, actor.Ability.Name, rageAttackBonus),
	}
}

func sneakAttack(actor, opponent *character.Character, _ dice.Source) AbilityResult {
	dmg := actor.Attack + sneakBonus
	opponent.Health -= dmg
	return AbilityResult{
		Damage:    dmg,
		Narrative: fmt.Sprintf("%s performs a %s, dealing %d damage!", actor.Name, actor.Ability.Name, dmg),
	}
}

func heal(actor, _ *character.Character, src dice.Source) AbilityResult {
	amount := dice.RollExpression(src, HealAmount).Total()
	actor.Heal(amount)
	return AbilityResult{
		Heal:      amount,
		Narrative: fmt.Sprintf("%s uses %s, restoring %d health!", actor.Name, actor.Ability.Name, amount),
	}
}

func deadlyStrike(actor, opponent *character.Character, _ dice.Source) AbilityResult {
	dmg := actor.Attack * 2
	opponent.Health -= dmg
	return AbilityResult{
		Damage:    dmg,
		Narrative: fmt.Sprintf("%s uses %s, dealing %d damage!", actor.Name, actor.Ability.Name, dmg),
	}
}
