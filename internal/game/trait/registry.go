// Package trait implements the named special abilities that plug into the
// attack resolution pipeline, and the registry resolving string keys to
// fresh behavior instances at encounter setup.
package trait

import (
	"go.uber.org/zap"

	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// creatureTraits maps creature trait keys to constructors. Constructors
// return fresh instances so that per-encounter trait state (e.g. martial
// advantage's once-per-round tracking) is never shared across encounters.
var creatureTraits = map[string]func() battle.Trait{
	"grappler":          func() battle.Trait { return &Grappler{} },
	"martial_advantage": func() battle.Trait { return &MartialAdvantage{} },
	"pack_tactics":      func() battle.Trait { return &PackTactics{} },
	"rampage":           func() battle.Trait { return &Rampage{} },
	"undead_fortitude":  func() battle.Trait { return &UndeadFortitude{} },
}

// weaponTraits maps weapon trait keys to constructors.
var weaponTraits = map[string]func() battle.Trait{
	"adhesive": func() battle.Trait { return &Adhesive{} },
	"lance":    func() battle.Trait { return &Lance{} },
	"net":      func() battle.Trait { return &Net{} },
}

// ForCreature resolves a creature's trait keys to behavior instances.
// Unknown keys are dropped with a warning, never a hard failure: creatures
// stay simulatable with partial trait coverage.
//
// Precondition: logger must be non-nil.
func ForCreature(c *creature.Creature, logger *zap.Logger) []battle.Trait {
	return resolve(c.TraitKeys, creatureTraits, "creature", c.Name, logger)
}

// ForWeapon resolves a weapon's trait keys to behavior instances, with the
// same unknown-key policy as ForCreature.
//
// Precondition: logger must be non-nil.
func ForWeapon(w *weapon.Weapon, logger *zap.Logger) []battle.Trait {
	return resolve(w.TraitKeys, weaponTraits, "weapon", w.Name, logger)
}

func resolve(keys []string, registry map[string]func() battle.Trait, kind, owner string, logger *zap.Logger) []battle.Trait {
	var out []battle.Trait
	for _, key := range keys {
		if key == "" {
			continue
		}
		ctor, ok := registry[key]
		if !ok {
			logger.Warn("skipping unimplemented trait",
				zap.String("trait", key),
				zap.String(kind, owner),
			)
			continue
		}
		out = append(out, ctor())
	}
	return out
}
