package encounter

import (
	"fmt"

	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// attackLoop makes up to NumAttacks attacks against target, stopping early
// when nothing is usable or the target goes down.
func (e *Encounter) attackLoop(attacker, target *creature.Creature) {
	for i := 0; i < attacker.NumAttacks; i++ {
		opt, ok := e.pickOption(attacker, rules.Distance(attacker.Position, target.Position))
		if !ok {
			return
		}
		e.resolveAttack(attacker, target, opt)
		if e.checkVictory() {
			return
		}
		if target.IsDead() || target.IsIncapacitated() {
			return
		}
	}
}

// resolveAttack runs one attack through the full pipeline: modifier
// aggregation, the roll to hit, damage with trait and resistance
// modification, the damage state machine, post-damage reactions, and on-hit
// effects.
//
// Precondition: opt must be usable at the current distance; in particular a
// ranged or thrown use beyond long range must never reach here.
func (e *Encounter) resolveAttack(attacker, target *creature.Creature, opt weaponOption) {
	w := opt.weapon
	dist := rules.Distance(attacker.Position, target.Position)
	if opt.rangedUse() && dist > float64(w.RangeLong) {
		panic(fmt.Sprintf("encounter: %s attacks with %s at %.0f ft, beyond long range %d",
			attacker.Name, w.Name, dist, w.RangeLong))
	}

	mods := e.attackModifiers(attacker, target, opt, dist)
	adv := battle.NetAdvantage(mods)
	if opt.rangedUse() {
		w.Consume()
	}

	roll := attacker.RollAttack(w, adv, e.src)
	autoCrit := e.battle.HasCondition(target, rules.Paralyzed) ||
		e.battle.HasCondition(target, rules.Unconscious)
	hit := roll.Rolled == 20 || (roll.Rolled != 1 && roll.Total() >= target.AC)
	crit := hit && (roll.Crit || autoCrit)

	e.sink.Emit(Event{
		Kind:      EventAttack,
		Round:     e.battle.Round,
		Actor:     attacker.Name,
		Target:    target.Name,
		Weapon:    w.Name,
		Roll:      roll.String(),
		Hit:       hit,
		Crit:      crit,
		Modifiers: modifierReasons(mods, adv),
	})
	if !hit {
		return
	}

	dmg := attacker.RollDamage(w, crit, e.src)
	for _, tr := range e.creatureTraits[attacker.ID] {
		if dm, ok := tr.(battle.DamageModifier); ok {
			dmg = dm.ModifyDamage(attacker, target, dmg, e.battle, e.src)
		}
	}

	modified, notes := target.ModifyDamage(dmg)
	outcome := rules.Alive
	if modified.Total() > 0 {
		outcome = target.TakeDamage(modified, crit)
		if outcome == rules.KnockedOut || outcome == rules.DeadOutcome {
			for _, tr := range e.creatureTraits[target.ID] {
				if pr, ok := tr.(battle.PostDamageReaction); ok {
					outcome = pr.AfterDamageTaken(target, modified, outcome, e.src)
				}
			}
		}
	}

	e.sink.Emit(Event{
		Kind:     EventDamage,
		Round:    e.battle.Round,
		Actor:    attacker.Name,
		Target:   target.Name,
		Weapon:   w.Name,
		Damage:   modified.Total(),
		Notes:    resistanceNotes(notes),
		Outcome:  outcome.String(),
		TargetHP: target.HP,
	})

	if e.policy.OnHitDowned == OnHitDownedApply || !outcome.Lethal() {
		e.applyOnHit(attacker, target, w)
	}

	for _, tr := range e.creatureTraits[attacker.ID] {
		if pd, ok := tr.(battle.PostDealDamageReaction); ok {
			pd.AfterDealingDamage(attacker, target, outcome, e.battle)
		}
	}
}

// applyOnHit fires the on-hit effects of the weapon and the attacker,
// recording resulting conditions in the ledger. Duplicate entries are
// silently ignored.
func (e *Encounter) applyOnHit(attacker, target *creature.Creature, w *weapon.Weapon) {
	hooks := append([]battle.Trait(nil), e.weaponTraits[attacker.ID+"/"+w.Name]...)
	hooks = append(hooks, e.creatureTraits[attacker.ID]...)
	for _, tr := range hooks {
		oh, ok := tr.(battle.OnHitEffect)
		if !ok {
			continue
		}
		tc := oh.OnHit(attacker, target, e.battle)
		if tc == nil {
			continue
		}
		// A condition landing on an already-downed target (the apply
		// policy) must outlive the default down/dead end trigger, or it
		// would be pruned before anyone could observe it.
		if tc.EndOnTarget == nil && (target.IsDead() || target.IsIncapacitated()) {
			tc.EndOnTarget = []rules.Condition{}
		}
		if !e.battle.AddCondition(tc) {
			continue
		}
		e.sink.Emit(Event{
			Kind:      EventConditionApplied,
			Round:     e.battle.Round,
			Actor:     attacker.Name,
			Target:    target.Name,
			Condition: string(tc.Condition),
			Detail:    tr.Name(),
		})
	}
}

// attackModifiers aggregates named advantage/disadvantage contributions from
// the four independent sources: positioning, weapon traits, attacker
// creature traits, and active conditions on both sides.
func (e *Encounter) attackModifiers(attacker, target *creature.Creature, opt weaponOption, dist float64) []battle.Modifier {
	var mods []battle.Modifier

	if opt.rangedUse() {
		if dist <= 5 {
			mods = append(mods, battle.Modifier{Reason: "ranged attack at close quarters", Effect: dice.WithDisadvantage})
		} else if dist > float64(opt.weapon.RangeNormal) {
			mods = append(mods, battle.Modifier{Reason: "long range", Effect: dice.WithDisadvantage})
		}
	}

	for _, tr := range e.weaponTraits[attacker.ID+"/"+opt.weapon.Name] {
		if am, ok := tr.(battle.AttackRollModifier); ok {
			mods = append(mods, am.ModifyAttackRoll(attacker, target, e.battle)...)
		}
	}
	for _, tr := range e.creatureTraits[attacker.ID] {
		if am, ok := tr.(battle.AttackRollModifier); ok {
			mods = append(mods, am.ModifyAttackRoll(attacker, target, e.battle)...)
		}
	}

	mods = append(mods, e.conditionModifiers(attacker, target, dist)...)
	return mods
}

// conditionModifiers derives modifiers from active conditions on the
// attacker and the target.
func (e *Encounter) conditionModifiers(attacker, target *creature.Creature, dist float64) []battle.Modifier {
	var mods []battle.Modifier
	has := func(c *creature.Creature, cond rules.Condition) bool {
		return e.battle.HasCondition(c, cond)
	}

	if has(attacker, rules.Invisible) {
		mods = append(mods, battle.Modifier{Reason: "attacker invisible", Effect: dice.WithAdvantage})
	}
	if has(attacker, rules.Blinded) && !attacker.Senses[rules.Blindsight] && !attacker.Senses[rules.Truesight] {
		mods = append(mods, battle.Modifier{Reason: "attacker blinded", Effect: dice.WithDisadvantage})
	}
	if has(attacker, rules.Poisoned) {
		mods = append(mods, battle.Modifier{Reason: "attacker poisoned", Effect: dice.WithDisadvantage})
	}
	if has(attacker, rules.Frightened) {
		mods = append(mods, battle.Modifier{Reason: "attacker frightened", Effect: dice.WithDisadvantage})
	}
	if has(attacker, rules.Prone) {
		mods = append(mods, battle.Modifier{Reason: "attacker prone", Effect: dice.WithDisadvantage})
	}
	if has(attacker, rules.Restrained) {
		mods = append(mods, battle.Modifier{Reason: "attacker restrained", Effect: dice.WithDisadvantage})
	}

	if has(target, rules.Invisible) {
		mods = append(mods, battle.Modifier{Reason: "target invisible", Effect: dice.WithDisadvantage})
	}
	if has(target, rules.Blinded) {
		mods = append(mods, battle.Modifier{Reason: "target blinded", Effect: dice.WithAdvantage})
	}
	if has(target, rules.Prone) {
		if dist <= 5 {
			mods = append(mods, battle.Modifier{Reason: "target prone in reach", Effect: dice.WithAdvantage})
		} else {
			mods = append(mods, battle.Modifier{Reason: "target prone at range", Effect: dice.WithDisadvantage})
		}
	}
	if has(target, rules.Restrained) {
		mods = append(mods, battle.Modifier{Reason: "target restrained", Effect: dice.WithAdvantage})
	}
	if has(target, rules.Stunned) {
		mods = append(mods, battle.Modifier{Reason: "target stunned", Effect: dice.WithAdvantage})
	}
	if has(target, rules.Paralyzed) {
		mods = append(mods, battle.Modifier{Reason: "target paralyzed", Effect: dice.WithAdvantage})
	}
	if has(target, rules.Petrified) {
		mods = append(mods, battle.Modifier{Reason: "target petrified", Effect: dice.WithAdvantage})
	}
	if has(target, rules.Unconscious) {
		mods = append(mods, battle.Modifier{Reason: "target unconscious", Effect: dice.WithAdvantage})
	}
	return mods
}

// modifierReasons renders modifiers for an event, appending the net result
// when any modifier applied.
func modifierReasons(mods []battle.Modifier, net dice.Advantage) []string {
	if len(mods) == 0 {
		return nil
	}
	out := make([]string, 0, len(mods)+1)
	for _, m := range mods {
		out = append(out, fmt.Sprintf("%s (%s)", m.Reason, m.Effect))
	}
	return append(out, "net: "+net.String())
}

func resistanceNotes(notes []creature.ResistanceNote) []string {
	if len(notes) == 0 {
		return nil
	}
	out := make([]string, len(notes))
	for i, n := range notes {
		out[i] = fmt.Sprintf("%s to %s", n.Kind, n.Type)
	}
	return out
}
