package trait

import (
	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
)

// Adhesive grapples a Huge or smaller target on a hit. Escape is a DC 13
// athletics or acrobatics check, and the grapple ends if the grappler dies
// or is incapacitated.
type Adhesive struct{}

func (Adhesive) Name() string { return "adhesive" }

func (Adhesive) OnHit(attacker, target *creature.Creature, b *battle.Battle) *battle.TempCondition {
	if target.Size > rules.Huge {
		return nil
	}
	return &battle.TempCondition{
		Condition:    rules.Grappled,
		TargetID:     target.ID,
		CausedByID:   attacker.ID,
		EscapeDC:     13,
		EscapeSkills: []rules.Skill{rules.Athletics, rules.Acrobatics},
		EndOnCauser:  []rules.Condition{rules.Dead, rules.Incapacitated},
	}
}

// Lance imposes disadvantage on attack rolls against targets within 5 ft.
type Lance struct{}

func (Lance) Name() string { return "lance" }

func (Lance) ModifyAttackRoll(attacker, target *creature.Creature, b *battle.Battle) []battle.Modifier {
	if rules.Distance(attacker.Position, target.Position) <= 5 {
		return []battle.Modifier{{Reason: "lance at close range", Effect: dice.WithDisadvantage}}
	}
	return nil
}

// Net restrains a Large or smaller target on a hit. Escape is a DC 10
// strength check; the net has no maintainer, so only the target's state
// ends it.
type Net struct{}

func (Net) Name() string { return "net" }

func (Net) OnHit(attacker, target *creature.Creature, b *battle.Battle) *battle.TempCondition {
	if target.Size > rules.Large {
		return nil
	}
	return &battle.TempCondition{
		Condition:     rules.Restrained,
		TargetID:      target.ID,
		EscapeDC:      10,
		EscapeAbility: rules.Strength,
	}
}
