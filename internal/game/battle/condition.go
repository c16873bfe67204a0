package battle

import (
	"fmt"

	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/rules"
)

// DefaultEndOnTarget ends a temporary condition when its target can no longer
// be meaningfully held by it.
var DefaultEndOnTarget = []rules.Condition{rules.Dead, rules.Incapacitated}

// TempCondition is one ledger entry: a condition on a target, optionally
// maintained by a causer, with escape and end-trigger metadata.
//
// Two entries are duplicates when they share (Condition, TargetID,
// CausedByID).
type TempCondition struct {
	Condition rules.Condition
	// TargetID is the affected creature's instance ID.
	TargetID string
	// CausedByID is the maintaining creature's instance ID; empty when the
	// condition has no maintainer (e.g. a net on the ground).
	CausedByID string

	// EscapeDC is the fixed DC to escape, 0 when escape is contested or
	// impossible.
	EscapeDC int
	// EscapeSkills and EscapeAbility are the checks the target may use to
	// escape, when any.
	EscapeSkills  []rules.Skill
	EscapeAbility rules.Ability
	// ContestedBy is the skill the causer rolls to oppose an escape attempt.
	ContestedBy []rules.Skill

	// End triggers, checked at point of use: the condition ends when the
	// target (or causer) carries any of the listed conditions.
	EndOnTarget []rules.Condition
	EndOnCauser []rules.Condition
}

// String formats the entry as "grappled on <target> by <causer>".
func (tc *TempCondition) String() string {
	if tc.CausedByID == "" {
		return fmt.Sprintf("%s on %s", tc.Condition, tc.TargetID)
	}
	return fmt.Sprintf("%s on %s by %s", tc.Condition, tc.TargetID, tc.CausedByID)
}

func (tc *TempCondition) duplicates(other *TempCondition) bool {
	return tc.Condition == other.Condition &&
		tc.TargetID == other.TargetID &&
		tc.CausedByID == other.CausedByID
}

// ended reports whether an end trigger has fired, consulting persistent
// conditions on the target and causer.
func (tc *TempCondition) ended(b *Battle) bool {
	endOnTarget := tc.EndOnTarget
	if endOnTarget == nil {
		endOnTarget = DefaultEndOnTarget
	}
	if target, ok := b.byID[tc.TargetID]; ok {
		for _, cond := range endOnTarget {
			if creatureHasPersistent(target, cond) {
				return true
			}
		}
	}
	if tc.CausedByID != "" {
		if causer, ok := b.byID[tc.CausedByID]; ok {
			for _, cond := range tc.EndOnCauser {
				if creatureHasPersistent(causer, cond) {
					return true
				}
			}
		}
	}
	return false
}

// creatureHasPersistent treats incapacitated as the umbrella the rule set
// defines: stunned, paralyzed, petrified and unconscious all qualify.
func creatureHasPersistent(c *creature.Creature, cond rules.Condition) bool {
	if cond == rules.Incapacitated {
		return c.IsIncapacitated()
	}
	return c.HasCondition(cond)
}

// AddCondition records a temporary condition in the ledger. Adding a
// duplicate of an existing entry is a no-op, not an error.
//
// Precondition: tc must name a target known to this battle.
// Postcondition: Returns true iff the entry was added.
func (b *Battle) AddCondition(tc *TempCondition) bool {
	if _, ok := b.byID[tc.TargetID]; !ok {
		panic("battle: AddCondition for unknown creature " + tc.TargetID)
	}
	for _, existing := range b.temp[tc.TargetID] {
		if existing.duplicates(tc) {
			return false
		}
	}
	b.temp[tc.TargetID] = append(b.temp[tc.TargetID], tc)
	return true
}

// RemoveCondition deletes a ledger entry matched by duplicate identity;
// no-op when absent.
//
// Postcondition: Returns true iff an entry was removed.
func (b *Battle) RemoveCondition(tc *TempCondition) bool {
	entries := b.temp[tc.TargetID]
	for i, existing := range entries {
		if existing.duplicates(tc) {
			b.temp[tc.TargetID] = append(entries[:i], entries[i+1:]...)
			return true
		}
	}
	return false
}

// ActiveConditions returns the live ledger entries for a creature, pruning
// entries whose end trigger has fired. End triggers are checked here, at
// point of use, rather than by a background sweep.
func (b *Battle) ActiveConditions(c *creature.Creature) []*TempCondition {
	entries := b.temp[c.ID]
	live := entries[:0]
	for _, tc := range entries {
		if !tc.ended(b) {
			live = append(live, tc)
		}
	}
	b.temp[c.ID] = live
	return live
}

// HasCondition reports whether c carries cond, either persistently or via a
// live ledger entry.
func (b *Battle) HasCondition(c *creature.Creature, cond rules.Condition) bool {
	if creatureHasPersistent(c, cond) {
		return true
	}
	for _, tc := range b.ActiveConditions(c) {
		if tc.Condition == cond {
			return true
		}
	}
	return false
}
