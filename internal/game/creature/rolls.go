package creature

import (
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// DeathSaveResult classifies one death saving throw.
type DeathSaveResult string

const (
	DeathSaveCritFailure DeathSaveResult = "critical failure"
	DeathSaveFailure     DeathSaveResult = "failure"
	DeathSaveSuccess     DeathSaveResult = "success"
	DeathSaveStabilised  DeathSaveResult = "stabilised"
	DeathSaveCritSuccess DeathSaveResult = "critical success"
	DeathSaveDeath       DeathSaveResult = "death"
)

// AttackModifier returns the ability modifier used for a weapon's attack and
// damage rolls: strength for melee, dexterity for ranged, and the better of
// the two for finesse weapons.
func (c *Creature) AttackModifier(w *weapon.Weapon) int {
	str := c.Abilities.Modifier(rules.Strength)
	dex := c.Abilities.Modifier(rules.Dexterity)
	if w.Finesse {
		if str > dex {
			return str
		}
		return dex
	}
	if w.Melee {
		return str
	}
	return dex
}

// AttackRollBonus returns the full flat bonus on an attack roll with w:
// the explicit attack-bonus override when set, else the ability modifier
// plus proficiency when wielded proficiently.
func (c *Creature) AttackRollBonus(w *weapon.Weapon) int {
	if c.AttackBonus != nil {
		return *c.AttackBonus
	}
	bonus := c.AttackModifier(w)
	if w.Proficient {
		bonus += c.Proficiency
	}
	return bonus
}

// RollAttack makes the attack roll for w, marking the attack action and the
// weapon as used this turn. A natural 20 is flagged as a critical hit.
//
// Precondition: src must be non-nil.
func (c *Creature) RollAttack(w *weapon.Weapon, adv dice.Advantage, src dice.Source) weapon.AttackRoll {
	c.MarkWeaponUsed(w.Name)
	rolled := dice.D20(src, adv)
	return weapon.AttackRoll{
		Rolled:   rolled,
		Modifier: c.AttackRollBonus(w),
		Crit:     rolled == 20,
	}
}

// RollDamage rolls w's damage for a hit, wielding two-handed when a hand is
// free, with the same ability modifier used for the attack roll.
//
// Precondition: src must be non-nil.
func (c *Creature) RollDamage(w *weapon.Weapon, crit bool, src dice.Source) *weapon.AttackDamage {
	return w.RollDamage(src, c.CanUseTwoHanded(), crit, c.AttackModifier(w))
}

// RollInitiative rolls d20 + dexterity modifier.
//
// Precondition: src must be non-nil.
func (c *Creature) RollInitiative(src dice.Source) int {
	return dice.D20(src, dice.Straight) + c.Abilities.Modifier(rules.Dexterity)
}

// RollSavingThrow rolls d20 + ability modifier, adding proficiency for
// proficient saves.
//
// Precondition: src must be non-nil.
func (c *Creature) RollSavingThrow(ab rules.Ability, adv dice.Advantage, src dice.Source) int {
	total := dice.D20(src, adv) + c.Abilities.Modifier(ab)
	if c.SaveProficiencies[ab] {
		total += c.Proficiency
	}
	return total
}

// RollAbilityCheck rolls a raw d20 + ability modifier check. Unlike a saving
// throw, no proficiency ever applies.
//
// Precondition: src must be non-nil.
func (c *Creature) RollAbilityCheck(ab rules.Ability, adv dice.Advantage, src dice.Source) int {
	return dice.D20(src, adv) + c.Abilities.Modifier(ab)
}

// RollSkillCheck rolls d20 + the skill's ability modifier, adding proficiency
// once when proficient and twice with expertise.
//
// Precondition: src must be non-nil.
func (c *Creature) RollSkillCheck(skill rules.Skill, adv dice.Advantage, src dice.Source) int {
	total := dice.D20(src, adv) + c.Abilities.Modifier(rules.SkillAbility[skill])
	if c.SkillExpertises[skill] {
		total += 2 * c.Proficiency
	} else if c.SkillProficiencies[skill] {
		total += c.Proficiency
	}
	return total
}

// RollDeathSave makes one death saving throw and applies its effect:
//
//	1      two failures
//	2-9    one failure
//	10-19  one success; the third stabilises (dying cleared, still unconscious)
//	20     regain 1 HP and wake up
//
// Three accumulated failures kill the creature.
//
// Precondition: src must be non-nil; the creature must be dying.
// Postcondition: Returns the raw roll and its classification.
func (c *Creature) RollDeathSave(src dice.Source) (int, DeathSaveResult) {
	rolled := dice.D20(src, dice.Straight)
	var result DeathSaveResult
	switch {
	case rolled == 1:
		result = DeathSaveCritFailure
		c.DeathSaves.Failures += 2
	case rolled <= 9:
		result = DeathSaveFailure
		c.DeathSaves.Failures++
	case rolled <= 19:
		result = DeathSaveSuccess
		c.DeathSaves.Successes++
		if c.DeathSaves.Successes >= 3 {
			result = DeathSaveStabilised
			c.resetDeathSaves(false)
		}
	default:
		result = DeathSaveCritSuccess
		c.Heal(1, true)
		c.resetDeathSaves(true)
	}

	if c.DeathSaves.Failures >= 3 {
		c.die(rules.DeadOutcome)
		result = DeathSaveDeath
	}
	return rolled, result
}

// resetDeathSaves zeroes the tally and clears dying; wakeUp also clears
// unconscious.
func (c *Creature) resetDeathSaves(wakeUp bool) {
	c.DeathSaves = DeathSaves{}
	delete(c.conditions, rules.Dying)
	if wakeUp {
		delete(c.conditions, rules.Unconscious)
	}
}
