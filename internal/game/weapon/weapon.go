package weapon

import (
	"fmt"

	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
)

// Weapon describes one attack a creature can make: a manufactured weapon, or
// a natural attack such as a bite or slam.
//
// Invariant: exactly one of {melee reach-based, ranged with a range tuple}
// describes reachability. A melee weapon may additionally carry a range
// tuple when it is thrown. Quantity never goes below 0; a weapon at 0 is
// unusable until resupply, which the simulator does not model.
type Weapon struct {
	Name string
	// Melee is true for melee attacks; false means ranged.
	Melee bool
	// Damage is the one-handed damage formula; nil for weapons that can only
	// be used two-handed (e.g. a greataxe).
	Damage *DamageRoll
	// TwoHanded is the versatile/two-handed damage formula, if any.
	TwoHanded *DamageRoll
	// Bonus is an extra damage formula with its own type, e.g. "1d8 acid".
	Bonus *DamageRoll
	// RangeNormal and RangeLong are the range tuple in feet for ranged or
	// thrown use; both zero for pure melee weapons.
	RangeNormal int
	RangeLong   int
	// IsWeapon is false for natural attacks (bite, claw, pseudopod), which
	// never scale with wielder size and are never thrown.
	IsWeapon bool
	// Kind is "simple", "martial" or "monster". Informational.
	Kind string

	Ammunition bool
	Finesse    bool
	Heavy      bool
	Light      bool
	Loading    bool
	Reach      bool
	Thrown     bool

	// Quantity is remaining ammunition (ammunition weapons) or remaining
	// copies (thrown weapons); melee weapons carry 1.
	Quantity int
	// Proficient is whether the wielder adds its proficiency bonus.
	Proficient bool
	// TraitKeys name the weapon traits (adhesive, lance, net, ...) resolved
	// to behavior objects at encounter setup.
	TraitKeys []string
}

// Validate checks the weapon's structural invariants.
//
// Postcondition: Returns nil iff the weapon has a name, at least one damage
// formula or an on-hit trait, and a coherent reach/range description.
func (w *Weapon) Validate() error {
	if w.Name == "" {
		return fmt.Errorf("weapon: name must not be empty")
	}
	if w.Damage == nil && w.TwoHanded == nil && len(w.TraitKeys) == 0 {
		return fmt.Errorf("weapon %q: needs a damage formula or an on-hit trait", w.Name)
	}
	if !w.Melee && w.RangeNormal <= 0 {
		return fmt.Errorf("weapon %q: ranged weapon needs a range tuple", w.Name)
	}
	if w.RangeNormal > 0 && w.RangeLong < w.RangeNormal {
		return fmt.Errorf("weapon %q: long range %d < normal range %d", w.Name, w.RangeLong, w.RangeNormal)
	}
	if w.Quantity < 0 {
		return fmt.Errorf("weapon %q: quantity must be >= 0", w.Name)
	}
	return nil
}

// ReachFeet returns the melee reach in feet: 10 for reach weapons, else 5.
func (w *Weapon) ReachFeet() float64 {
	if w.Reach {
		return 10
	}
	return 5
}

// Throwable reports whether the weapon can be used at range right now:
// either a true ranged weapon or a melee weapon with the thrown property.
func (w *Weapon) Throwable() bool {
	return !w.Melee || w.Thrown
}

// Consume decrements the remaining quantity after a shot or a throw.
//
// Precondition: Quantity > 0 — callers filter out empty weapons before
// selecting them.
func (w *Weapon) Consume() {
	if w.Quantity <= 0 {
		panic("weapon: Consume called with quantity 0")
	}
	w.Quantity--
}

// damageFor picks the formula for the wielding mode: two-handed damage when
// requested and available, else one-handed, else two-handed alone.
func (w *Weapon) damageFor(twoHanded bool) *DamageRoll {
	if twoHanded && w.TwoHanded != nil {
		return w.TwoHanded
	}
	if w.Damage != nil {
		return w.Damage
	}
	return w.TwoHanded
}

// RollDamage rolls the weapon's damage for a hit. Critical hits double the
// dice count, never the modifier. The ability modifier applies to the primary
// formula only and the primary component is floored at zero; the bonus
// formula rolls with its own type unmodified.
//
// Precondition: src must be non-nil.
// Postcondition: Every component amount is >= 0.
func (w *Weapon) RollDamage(src dice.Source, twoHanded, crit bool, damageModifier int) *AttackDamage {
	out := &AttackDamage{FromCrit: crit}

	if primary := w.damageFor(twoHanded); primary != nil {
		expr := primary.Dice
		if crit {
			expr = expr.WithCount(expr.Count * 2)
		}
		rolled := dice.Roll(expr, src).Total() + damageModifier
		if rolled < 0 {
			rolled = 0
		}
		out.Add(primary.Type, rolled)
	}

	if w.Bonus != nil {
		expr := w.Bonus.Dice
		if crit {
			expr = expr.WithCount(expr.Count * 2)
		}
		rolled := dice.Roll(expr, src).Total()
		if rolled < 0 {
			rolled = 0
		}
		out.Add(w.Bonus.Type, rolled)
	}

	return out
}

// ExpectedDamage returns the expected total damage of a hit, used by the
// decision policy. No dice are rolled.
//
// Postcondition: Returns >= 0.
func (w *Weapon) ExpectedDamage(twoHanded bool, damageModifier int) float64 {
	total := 0.0
	if primary := w.damageFor(twoHanded); primary != nil {
		ev := primary.Dice.Average() + float64(damageModifier)
		if ev < 0 {
			ev = 0
		}
		total += ev
	}
	if w.Bonus != nil {
		total += w.Bonus.Dice.Average()
	}
	return total
}

// ScaleForSize multiplies the damage dice count of a manufactured weapon
// wielded by a Large or bigger creature (DMG p278). Natural attacks are
// written at the creature's size already and are left alone.
func (w *Weapon) ScaleForSize(size rules.Size) {
	mult := size.DamageDiceMultiplier()
	if !w.IsWeapon || mult == 1 {
		return
	}
	for _, dr := range []*DamageRoll{w.Damage, w.TwoHanded} {
		if dr == nil {
			continue
		}
		dr.Dice = dr.Dice.WithCount(dr.Dice.Count * mult)
	}
}

// DefaultQuantity rolls the conventional starting quantity for a weapon that
// does not declare one: 2d10 rounds for ammunition weapons, 2d4 copies for
// other ranged/thrown weapons, 1 for everything else.
//
// Precondition: src must be non-nil.
// Postcondition: Returns >= 1.
func DefaultQuantity(w *Weapon, src dice.Source) int {
	if w.Melee && !w.Thrown || !w.IsWeapon {
		return 1
	}
	if w.Ammunition {
		return dice.Roll(dice.MustParse("2d10"), src).Total()
	}
	if w.Throwable() {
		return dice.Roll(dice.MustParse("2d4"), src).Total()
	}
	return 1
}

// Clone returns an independent copy of the weapon, including fresh copies of
// the damage formulas and trait key list.
func (w *Weapon) Clone() *Weapon {
	out := *w
	if w.Damage != nil {
		d := *w.Damage
		out.Damage = &d
	}
	if w.TwoHanded != nil {
		d := *w.TwoHanded
		out.TwoHanded = &d
	}
	if w.Bonus != nil {
		d := *w.Bonus
		out.Bonus = &d
	}
	out.TraitKeys = append([]string(nil), w.TraitKeys...)
	return &out
}
