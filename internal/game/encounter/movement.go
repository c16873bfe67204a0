package encounter

import (
	"math"

	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// weaponOption is one usable attack at a given distance, scored by expected
// damage with the 50% penalty for purely positional disadvantage applied.
type weaponOption struct {
	weapon *weapon.Weapon
	// thrown marks a melee weapon hurled at range.
	thrown   bool
	expected float64
}

func (o weaponOption) rangedUse() bool {
	return !o.weapon.Melee || o.thrown
}

// usableOptions lists every attack c could make at distance dist: melee
// within reach, ranged or thrown within long range with quantity remaining,
// honoring the different-attacks restriction.
func (e *Encounter) usableOptions(c *creature.Creature, dist float64) []weaponOption {
	var out []weaponOption
	for _, w := range c.Weapons {
		if c.DifferentAttacks && c.WeaponUsedThisTurn(w.Name) {
			continue
		}
		if w.Melee && dist <= w.ReachFeet() {
			out = append(out, e.scoreOption(c, w, dist, false))
		}
		atRange := !w.Melee || w.Throwable()
		if atRange && w.Quantity > 0 && w.RangeLong > 0 && dist <= float64(w.RangeLong) {
			out = append(out, e.scoreOption(c, w, dist, w.Melee))
		}
	}
	return out
}

func (e *Encounter) scoreOption(c *creature.Creature, w *weapon.Weapon, dist float64, thrown bool) weaponOption {
	opt := weaponOption{weapon: w, thrown: thrown}
	opt.expected = w.ExpectedDamage(c.CanUseTwoHanded(), c.AttackModifier(w))
	if opt.rangedUse() && positionalDisadvantage(w, dist) {
		opt.expected /= 2
	}
	return opt
}

// positionalDisadvantage reports whether a ranged or thrown attack at dist
// suffers disadvantage purely from positioning: point-blank use within 5 ft,
// or firing beyond normal range.
func positionalDisadvantage(w *weapon.Weapon, dist float64) bool {
	return dist <= 5 || dist > float64(w.RangeNormal)
}

// pickOption chooses the attack with the highest expected damage at dist,
// breaking ties by a random pick across all options at peak expectation so
// equivalent weapons see varied use.
//
// Postcondition: Returns false iff nothing is usable at dist.
func (e *Encounter) pickOption(c *creature.Creature, dist float64) (weaponOption, bool) {
	options := e.usableOptions(c, dist)
	if len(options) == 0 {
		return weaponOption{}, false
	}
	best := options[0].expected
	for _, o := range options[1:] {
		if o.expected > best {
			best = o.expected
		}
	}
	peak := options[:0]
	for _, o := range options {
		if o.expected == best {
			peak = append(peak, o)
		}
	}
	if len(peak) == 1 {
		return peak[0], true
	}
	return peak[e.src.Intn(len(peak))], true
}

// idealDistance finds the distance from enemy that maximizes c's expected
// damage: each weapon's natural engagement distance (reach for melee, normal
// range for ranged and thrown use) is a candidate, scored by the best usable
// option there. Ties prefer the longer distance.
//
// Postcondition: Returns false iff c has no usable attack at any candidate.
func (e *Encounter) idealDistance(c *creature.Creature) (float64, bool) {
	seen := make(map[float64]bool)
	var candidates []float64
	for _, w := range c.Weapons {
		if c.DifferentAttacks && c.WeaponUsedThisTurn(w.Name) {
			continue
		}
		if w.Melee {
			candidates = appendDistance(candidates, seen, w.ReachFeet())
		}
		if (!w.Melee || w.Throwable()) && w.Quantity > 0 && w.RangeNormal > 0 {
			candidates = appendDistance(candidates, seen, float64(w.RangeNormal))
		}
	}
	var ideal, bestScore float64
	found := false
	for _, d := range candidates {
		score := 0.0
		for _, o := range e.usableOptions(c, d) {
			if o.expected > score {
				score = o.expected
			}
		}
		if score <= 0 {
			continue
		}
		if !found || score > bestScore || (score == bestScore && d > ideal) {
			ideal, bestScore, found = d, score, true
		}
	}
	return ideal, found
}

func appendDistance(candidates []float64, seen map[float64]bool, d float64) []float64 {
	if seen[d] {
		return candidates
	}
	seen[d] = true
	return append(candidates, d)
}

// moveAndAct positions c relative to its chosen target, then attacks, or
// dashes when nothing is usable even after moving.
func (e *Encounter) moveAndAct(c *creature.Creature) {
	target := e.chooseTarget(c)
	if target == nil {
		e.checkVictory()
		return
	}
	e.position(c, target)
	if _, ok := e.pickOption(c, rules.Distance(c.Position, target.Position)); !ok {
		e.dash(c, target)
		return
	}
	e.attackLoop(c, target)
}

// position moves c toward its ideal engagement distance from target, bounded
// by remaining movement. A creature already within 5 ft of its target stays
// put rather than forfeiting melee range.
func (e *Encounter) position(c, target *creature.Creature) {
	if rules.Distance(c.Position, target.Position) <= 5 {
		return
	}
	ideal, ok := e.idealDistance(c)
	if !ok {
		return
	}
	e.stepTo(c, target, ideal, EventMovement)
}

// dash spends the action on movement: remaining movement grows by a full
// speed and c keeps closing toward melee reach.
func (e *Encounter) dash(c, target *creature.Creature) {
	c.RemainingMovement += float64(c.Speed)
	ideal, ok := e.idealDistance(c)
	if !ok {
		ideal = 5
	}
	e.stepTo(c, target, ideal, EventDash)
}

// stepTo moves c toward or away from target to approach dist feet of
// separation, never overshooting remaining movement.
func (e *Encounter) stepTo(c, target *creature.Creature, dist float64, kind EventKind) {
	current := rules.Distance(c.Position, target.Position)
	var dest rules.Point
	switch {
	case current > dist:
		dest = rules.StepToward(c.Position, target.Position, math.Min(c.RemainingMovement, current-dist))
	case current < dist:
		dest = rules.StepAway(c.Position, target.Position, math.Min(c.RemainingMovement, dist-current))
	default:
		return
	}
	moved := rules.Distance(c.Position, dest)
	if moved <= 0 {
		return
	}
	c.RemainingMovement -= moved
	c.Position = dest
	e.sink.Emit(Event{
		Kind:   kind,
		Round:  e.battle.Round,
		Actor:  c.Name,
		Target: target.Name,
		X:      dest.X,
		Y:      dest.Y,
		Moved:  moved,
	})
}
