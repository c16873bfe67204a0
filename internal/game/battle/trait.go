package battle

import (
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// Modifier is one named advantage or disadvantage contribution to an attack
// roll, e.g. {"pack tactics", advantage} or {"long range", disadvantage}.
type Modifier struct {
	Reason string
	Effect dice.Advantage
}

// NetAdvantage merges modifiers under the cancellation rule: any advantage
// and any disadvantage together cancel to a straight roll; ties never favor
// either side.
//
// Postcondition: Returns WithAdvantage iff at least one advantage and no
// disadvantage is present, and symmetrically for WithDisadvantage.
func NetAdvantage(mods []Modifier) dice.Advantage {
	var adv, dis bool
	for _, m := range mods {
		switch m.Effect {
		case dice.WithAdvantage:
			adv = true
		case dice.WithDisadvantage:
			dis = true
		}
	}
	switch {
	case adv && !dis:
		return dice.WithAdvantage
	case dis && !adv:
		return dice.WithDisadvantage
	default:
		return dice.Straight
	}
}

// Trait is a named special ability attached to a creature or a weapon.
// Traits are polymorphic over a capability set, not a single interface: the
// pipeline asks whether a trait implements a given hook and invokes every
// trait that does, in attachment order. A trait implements any subset of
// AttackRollModifier, DamageModifier, OnHitEffect, PostDamageReaction and
// PostDealDamageReaction.
type Trait interface {
	Name() string
}

// AttackRollModifier contributes advantage/disadvantage to an attack roll
// before it is made.
type AttackRollModifier interface {
	Trait
	ModifyAttackRoll(attacker, target *creature.Creature, b *Battle) []Modifier
}

// DamageModifier adjusts a damage roll after it is made, before the target's
// resistances apply.
type DamageModifier interface {
	Trait
	ModifyDamage(attacker, target *creature.Creature, dmg *weapon.AttackDamage, b *Battle, src dice.Source) *weapon.AttackDamage
}

// PostDamageReaction lets the target override a lethal damage outcome after
// it is applied (e.g. undead fortitude).
type PostDamageReaction interface {
	Trait
	AfterDamageTaken(target *creature.Creature, dmg *weapon.AttackDamage, outcome rules.DamageOutcome, src dice.Source) rules.DamageOutcome
}

// OnHitEffect produces a temporary condition when an attack hits (e.g. a net
// restraining its target). A nil return means no effect this hit.
type OnHitEffect interface {
	Trait
	OnHit(attacker, target *creature.Creature, b *Battle) *TempCondition
}

// PostDealDamageReaction reacts on the attacker's side after damage is dealt
// (e.g. rampage granting bonus movement on a kill).
type PostDealDamageReaction interface {
	Trait
	AfterDealingDamage(attacker, target *creature.Creature, outcome rules.DamageOutcome, b *Battle)
}
