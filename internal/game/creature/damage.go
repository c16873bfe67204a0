package creature

import (
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// ResistanceNote records how one damage component was adjusted by the target's
// defenses, for event reporting.
type ResistanceNote struct {
	Type rules.DamageType
	// Kind is "immune", "resistant" or "vulnerable".
	Kind string
}

// ModifyDamage applies the creature's immunities, vulnerabilities and
// resistances to an incoming attack's damage, one component at a time.
// Immunity short-circuits: an immune component is dropped before resistance
// or vulnerability could apply. Resistance halves rounding down; vulnerability
// doubles.
//
// Postcondition: The returned damage has no component of an immune type and
// the input is not mutated.
func (c *Creature) ModifyDamage(dmg *weapon.AttackDamage) (*weapon.AttackDamage, []ResistanceNote) {
	out := &weapon.AttackDamage{FromCrit: dmg.FromCrit}
	var notes []ResistanceNote
	for _, comp := range dmg.Components {
		switch {
		case c.Immunities[comp.Type]:
			notes = append(notes, ResistanceNote{Type: comp.Type, Kind: "immune"})
		case c.Vulnerabilities[comp.Type]:
			out.Add(comp.Type, comp.Amount*2)
			notes = append(notes, ResistanceNote{Type: comp.Type, Kind: "vulnerable"})
		case c.Resistances[comp.Type]:
			out.Add(comp.Type, comp.Amount/2)
			notes = append(notes, ResistanceNote{Type: comp.Type, Kind: "resistant"})
		default:
			out.Add(comp.Type, comp.Amount)
		}
	}
	return out, notes
}

// TakeDamage applies already-modified damage to the creature and returns the
// resulting outcome. The transition is a pure function of (HP, MaxHP, damage
// total, dying?, MakeDeathSaves, crit):
//
//   - already dead, or zero total damage: no state change
//   - excess damage beyond 0 HP exceeding MaxHP: InstantDeath
//   - HP remains above 0: Alive
//   - dropped to 0, no death saves: DeadOutcome
//   - dropped to 0, makes death saves, not yet dying: KnockedOut
//     (unconscious + dying set, HP floored at 0)
//   - already dying: one failed death save (two on a crit), then StillDying
//     or DeadOutcome at three failures
//
// Postcondition: 0 <= HP <= MaxHP; dead and dying are never both set.
func (c *Creature) TakeDamage(dmg *weapon.AttackDamage, crit bool) rules.DamageOutcome {
	if c.IsDead() {
		return rules.DeadOutcome
	}
	total := dmg.Total()
	// Only nonzero damage moves the state machine: a fully-resisted hit
	// neither wakes the dying ladder nor counts as a failed save.
	if total == 0 {
		if c.HasCondition(rules.Dying) {
			return rules.StillDying
		}
		return rules.Alive
	}

	taken := total
	if taken > c.HP {
		taken = c.HP
	}
	excess := total - taken
	c.HP -= taken

	if excess > c.MaxHP {
		return c.die(rules.InstantDeath)
	}
	if c.HP > 0 {
		return rules.Alive
	}

	if !c.HasCondition(rules.Dying) {
		if !c.MakeDeathSaves {
			return c.die(rules.DeadOutcome)
		}
		c.AddCondition(rules.Unconscious)
		c.AddCondition(rules.Dying)
		return rules.KnockedOut
	}

	// Already at death's door: the hit lands as failed death saves.
	failures := 1
	if crit {
		failures = 2
	}
	c.DeathSaves.Failures += failures
	if c.DeathSaves.Failures >= 3 {
		return c.die(rules.DeadOutcome)
	}
	return rules.StillDying
}

// die marks the creature dead and returns the outcome passed through.
func (c *Creature) die(outcome rules.DamageOutcome) rules.DamageOutcome {
	c.conditions[rules.Dead] = true
	delete(c.conditions, rules.Dying)
	delete(c.conditions, rules.Unconscious)
	return outcome
}

// Heal recovers hit points, capped at MaxHP, and clears the dead and dying
// conditions. When wakeUp is true the creature also regains consciousness.
//
// Precondition: amount >= 0.
func (c *Creature) Heal(amount int, wakeUp bool) {
	c.HP += amount
	if c.HP > c.MaxHP {
		c.HP = c.MaxHP
	}
	delete(c.conditions, rules.Dead)
	delete(c.conditions, rules.Dying)
	if wakeUp {
		delete(c.conditions, rules.Unconscious)
	}
}

// AddCondition sets a persistent condition on the creature. Adding a
// condition the creature is immune to is a no-op.
func (c *Creature) AddCondition(cond rules.Condition) bool {
	if c.ConditionImmunities[cond] {
		return false
	}
	c.conditions[cond] = true
	return true
}

// RemoveCondition clears a persistent condition; no-op when absent.
func (c *Creature) RemoveCondition(cond rules.Condition) {
	delete(c.conditions, cond)
}

// HasCondition reports whether the persistent condition is set.
func (c *Creature) HasCondition(cond rules.Condition) bool {
	return c.conditions[cond]
}

// HasAnyCondition reports whether any of the given conditions is set.
func (c *Creature) HasAnyCondition(conds ...rules.Condition) bool {
	for _, cond := range conds {
		if c.conditions[cond] {
			return true
		}
	}
	return false
}

// Conditions returns a snapshot of the active persistent conditions.
func (c *Creature) Conditions() []rules.Condition {
	out := make([]rules.Condition, 0, len(c.conditions))
	for cond := range c.conditions {
		out = append(out, cond)
	}
	return out
}

// IsDead reports whether the creature is permanently dead.
func (c *Creature) IsDead() bool { return c.conditions[rules.Dead] }

// IsIncapacitated reports whether the creature cannot take actions: the
// incapacitated condition itself, or any condition that subsumes it
// (stunned, paralyzed, petrified, unconscious) or death.
func (c *Creature) IsIncapacitated() bool {
	return c.HasAnyCondition(rules.Incapacitated, rules.Stunned, rules.Paralyzed,
		rules.Petrified, rules.Unconscious, rules.Dead)
}

// SkipsTurn reports whether the creature forfeits its turn entirely.
func (c *Creature) SkipsTurn() bool {
	return c.HasAnyCondition(rules.TurnSkipConditions...)
}
