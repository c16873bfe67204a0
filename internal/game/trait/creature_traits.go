package trait

import (
	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// Grappler grants advantage on attack rolls against creatures the attacker
// is itself grappling.
type Grappler struct{}

func (Grappler) Name() string { return "grappler" }

func (Grappler) ModifyAttackRoll(attacker, target *creature.Creature, b *battle.Battle) []battle.Modifier {
	for _, tc := range b.ActiveConditions(target) {
		if tc.Condition == rules.Grappled && tc.CausedByID == attacker.ID {
			return []battle.Modifier{{Reason: "grappler", Effect: dice.WithAdvantage}}
		}
	}
	return nil
}

// PackTactics grants advantage when any non-incapacitated ally of the
// attacker is within 5 ft of the target.
type PackTactics struct{}

func (PackTactics) Name() string { return "pack_tactics" }

func (PackTactics) ModifyAttackRoll(attacker, target *creature.Creature, b *battle.Battle) []battle.Modifier {
	if allyAdjacent(attacker, target, b) {
		return []battle.Modifier{{Reason: "pack tactics", Effect: dice.WithAdvantage}}
	}
	return nil
}

// allyAdjacent reports whether a living, non-incapacitated ally of attacker
// stands within 5 ft of target.
func allyAdjacent(attacker, target *creature.Creature, b *battle.Battle) bool {
	for _, ally := range b.Allies(attacker) {
		if ally.IsIncapacitated() {
			continue
		}
		if rules.Distance(ally.Position, target.Position) <= 5 {
			return true
		}
	}
	return false
}

// MartialAdvantage adds 2d6 extra damage, once per round, when the target is
// within 5 ft of a non-incapacitated ally of the attacker.
type MartialAdvantage struct {
	// lastUsed is the battle round the bonus last fired in; zero before
	// first use (rounds are 1-based).
	lastUsed int
}

func (*MartialAdvantage) Name() string { return "martial_advantage" }

func (m *MartialAdvantage) ModifyDamage(attacker, target *creature.Creature, dmg *weapon.AttackDamage, b *battle.Battle, src dice.Source) *weapon.AttackDamage {
	if m.lastUsed == b.Round {
		return dmg
	}
	if !allyAdjacent(attacker, target, b) {
		return dmg
	}
	// Damage-less on-hit weapons (a net) leave nothing to ride the bonus on.
	if len(dmg.Components) == 0 {
		return dmg
	}
	m.lastUsed = b.Round
	extra := dice.Roll(dice.MustParse("2d6"), src)
	dmg.Add(dmg.PrimaryType(), extra.Total())
	return dmg
}

// Rampage grants half the attacker's speed as bonus movement after dropping
// a target.
type Rampage struct{}

func (Rampage) Name() string { return "rampage" }

func (Rampage) AfterDealingDamage(attacker, target *creature.Creature, outcome rules.DamageOutcome, b *battle.Battle) {
	if outcome.Lethal() {
		attacker.RemainingMovement += float64(attacker.Speed) / 2
	}
}

// UndeadFortitude lets the holder drop to 1 hit point instead of 0 on a
// successful constitution save (DC 5 + damage taken). Never triggers on
// radiant damage, a critical hit, or outright instant death.
type UndeadFortitude struct{}

func (UndeadFortitude) Name() string { return "undead_fortitude" }

func (UndeadFortitude) AfterDamageTaken(target *creature.Creature, dmg *weapon.AttackDamage, outcome rules.DamageOutcome, src dice.Source) rules.DamageOutcome {
	switch outcome {
	case rules.KnockedOut, rules.DeadOutcome:
	default:
		return outcome
	}
	if dmg.FromCrit || dmg.Has(rules.Radiant) {
		return outcome
	}
	save := target.RollSavingThrow(rules.Constitution, dice.Straight, src)
	if save < 5+dmg.Total() {
		return outcome
	}
	target.Heal(1, true)
	return rules.Reanimated
}
