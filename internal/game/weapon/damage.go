// Package weapon models one usable attack — melee or ranged — with its
// damage formulas, static properties, and remaining quantity.
package weapon

import (
	"fmt"
	"strings"

	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
)

// DamageRoll pairs a dice expression with a damage type, e.g. "2d6 slashing".
type DamageRoll struct {
	Dice dice.Expression
	Type rules.DamageType
}

// ParseDamageRoll parses a damage string like "1d8 bludgeoning".
//
// Postcondition: Returns a valid DamageRoll or a descriptive error.
func ParseDamageRoll(s string) (DamageRoll, error) {
	parts := strings.Fields(s)
	if len(parts) != 2 {
		return DamageRoll{}, fmt.Errorf("weapon: damage %q must be \"<dice> <type>\"", s)
	}
	expr, err := dice.Parse(parts[0])
	if err != nil {
		return DamageRoll{}, fmt.Errorf("weapon: damage %q: %w", s, err)
	}
	dt, err := rules.ParseDamageType(parts[1])
	if err != nil {
		return DamageRoll{}, fmt.Errorf("weapon: damage %q: %w", s, err)
	}
	return DamageRoll{Dice: expr, Type: dt}, nil
}

// String formats the roll as "2d6 slashing".
func (d DamageRoll) String() string {
	return fmt.Sprintf("%s %s", d.Dice.Raw, d.Type)
}

// DamageComponent is one typed slice of an attack's damage.
type DamageComponent struct {
	Type   rules.DamageType
	Amount int
}

// AttackDamage is the damage dealt by one hit, split by damage type so that
// resistance, vulnerability and immunity apply per component.
//
// Invariant: at most one component per damage type; Amount >= 0 on every
// component.
type AttackDamage struct {
	Components []DamageComponent
	FromCrit   bool
}

// Add merges amount into the component for dt, appending a new component if
// the type is not present yet.
//
// Precondition: amount >= 0.
func (a *AttackDamage) Add(dt rules.DamageType, amount int) {
	for i := range a.Components {
		if a.Components[i].Type == dt {
			a.Components[i].Amount += amount
			return
		}
	}
	a.Components = append(a.Components, DamageComponent{Type: dt, Amount: amount})
}

// Total returns the summed damage across all components.
//
// Postcondition: Returns >= 0.
func (a *AttackDamage) Total() int {
	total := 0
	for _, c := range a.Components {
		total += c.Amount
	}
	return total
}

// Has reports whether the damage includes a component of the given type.
func (a *AttackDamage) Has(dt rules.DamageType) bool {
	for _, c := range a.Components {
		if c.Type == dt {
			return true
		}
	}
	return false
}

// PrimaryType returns the damage type of the first component.
//
// Precondition: the damage must have at least one component.
func (a *AttackDamage) PrimaryType() rules.DamageType {
	if len(a.Components) == 0 {
		panic("weapon: PrimaryType called on empty AttackDamage")
	}
	return a.Components[0].Type
}

// String formats the damage as "7 slashing + 3 fire".
func (a *AttackDamage) String() string {
	if len(a.Components) == 0 {
		return "0"
	}
	parts := make([]string, len(a.Components))
	for i, c := range a.Components {
		parts[i] = fmt.Sprintf("%d %s", c.Amount, c.Type)
	}
	return strings.Join(parts, " + ")
}

// AttackRoll is the audit record of one roll to hit.
type AttackRoll struct {
	Rolled   int  // raw d20 result after advantage/disadvantage
	Modifier int  // ability modifier + proficiency, or flat attack bonus
	Crit     bool // natural 20
}

// Total returns the full attack roll value compared against the target's AC.
func (r AttackRoll) Total() int {
	return r.Rolled + r.Modifier
}

// String formats the roll as "17 (12 + 5)".
func (r AttackRoll) String() string {
	return fmt.Sprintf("%d (%d %+d)", r.Total(), r.Rolled, r.Modifier)
}
