// Package battle holds the shared context of one encounter: team membership,
// the temporary-condition ledger, and the round counter. The ledger is keyed
// by creature instance ID rather than the creature object, so conditions
// never own the creatures they reference.
package battle

import (
	"github.com/fellhaven/dndsim/internal/game/creature"
)

// Team groups creatures fighting on the same side.
type Team struct {
	Name      string
	Creatures []*creature.Creature
}

// Battle is the one mutable shared resource within an encounter. It is
// mutated only by the turn loop and the on-hit trait step, never
// concurrently.
//
// Invariant: Round is monotonically increasing; 0 before the first round.
type Battle struct {
	Teams []*Team
	Round int

	teamOf map[string]*Team
	byID   map[string]*creature.Creature
	temp   map[string][]*TempCondition
}

// New creates a Battle over the given teams.
//
// Precondition: teams must contain at least two teams with at least one
// creature each.
// Postcondition: Round == 0; every creature is resolvable by ID.
func New(teams ...*Team) *Battle {
	b := &Battle{
		Teams:  teams,
		teamOf: make(map[string]*Team),
		byID:   make(map[string]*creature.Creature),
		temp:   make(map[string][]*TempCondition),
	}
	for _, t := range teams {
		for _, c := range t.Creatures {
			b.teamOf[c.ID] = t
			b.byID[c.ID] = c
		}
	}
	return b
}

// StartRound advances the round counter.
//
// Postcondition: Round is incremented by 1.
func (b *Battle) StartRound() { b.Round++ }

// Creature resolves a creature by instance ID.
//
// Postcondition: Returns (creature, true) if found, (nil, false) otherwise.
func (b *Battle) Creature(id string) (*creature.Creature, bool) {
	c, ok := b.byID[id]
	return c, ok
}

// Creatures returns every participant in team order.
func (b *Battle) Creatures() []*creature.Creature {
	var out []*creature.Creature
	for _, t := range b.Teams {
		out = append(out, t.Creatures...)
	}
	return out
}

// Allies returns c's teammates, excluding c itself.
func (b *Battle) Allies(c *creature.Creature) []*creature.Creature {
	team, ok := b.teamOf[c.ID]
	if !ok {
		return nil
	}
	var out []*creature.Creature
	for _, other := range team.Creatures {
		if other.ID != c.ID {
			out = append(out, other)
		}
	}
	return out
}

// Enemies returns every creature on an opposing team.
func (b *Battle) Enemies(c *creature.Creature) []*creature.Creature {
	team := b.teamOf[c.ID]
	var out []*creature.Creature
	for _, t := range b.Teams {
		if t == team {
			continue
		}
		out = append(out, t.Creatures...)
	}
	return out
}

// LivingEnemies returns c's enemies that are not dead.
func (b *Battle) LivingEnemies(c *creature.Creature) []*creature.Creature {
	var out []*creature.Creature
	for _, e := range b.Enemies(c) {
		if !e.IsDead() {
			out = append(out, e)
		}
	}
	return out
}
