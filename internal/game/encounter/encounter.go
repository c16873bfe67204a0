// Package encounter drives combat: initiative, the per-turn loop, the attack
// resolution pipeline, the positioning policy and the batch runner. All
// resolution is single-threaded and synchronous; every attack fully resolves,
// including reactive traits, before the next action is considered.
package encounter

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/trait"
)

// State is the turn-loop state machine position.
type State int

const (
	NotStarted State = iota
	RollingInitiative
	RoundInProgress
	Finished
)

func (s State) String() string {
	switch s {
	case NotStarted:
		return "not started"
	case RollingInitiative:
		return "rolling initiative"
	case RoundInProgress:
		return "round in progress"
	case Finished:
		return "finished"
	default:
		return "unknown"
	}
}

// Result is the terminal outcome of one encounter.
type Result struct {
	// Winner is the winning team's name; empty on a stalemate.
	Winner    string
	Stalemate bool
	Rounds    int
}

// Encounter runs one battle to a terminal state. It owns the initiative
// order and the trait instances resolved from the creatures' and weapons'
// trait keys at setup.
type Encounter struct {
	battle *battle.Battle
	src    dice.Source
	sink   Sink
	logger *zap.Logger
	policy Policy

	state State
	order []*creature.Creature
	// creatureTraits is keyed by creature ID; weaponTraits by
	// "<creatureID>/<weapon name>".
	creatureTraits map[string][]battle.Trait
	weaponTraits   map[string][]battle.Trait

	result Result
}

// New prepares an encounter: resolves trait keys to behavior instances and
// places any unpositioned creatures, one team per rank, policy.Separation
// feet apart.
//
// Precondition: b and src must be non-nil; b must hold at least two teams.
// Postcondition: Returns an encounter in the NotStarted state.
func New(b *battle.Battle, src dice.Source, sink Sink, logger *zap.Logger, policy Policy) *Encounter {
	if sink == nil {
		sink = NopSink{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	e := &Encounter{
		battle:         b,
		src:            src,
		sink:           sink,
		logger:         logger,
		policy:         policy.withDefaults(),
		state:          NotStarted,
		creatureTraits: make(map[string][]battle.Trait),
		weaponTraits:   make(map[string][]battle.Trait),
	}
	e.attachTraits()
	e.placeTeams()
	return e
}

// State returns the current state machine position.
func (e *Encounter) State() State { return e.state }

// Battle exposes the underlying battle context, mainly for tests and the
// web front end.
func (e *Encounter) Battle() *battle.Battle { return e.battle }

func (e *Encounter) attachTraits() {
	for _, c := range e.battle.Creatures() {
		e.creatureTraits[c.ID] = trait.ForCreature(c, e.logger)
		for _, w := range c.Weapons {
			if len(w.TraitKeys) == 0 {
				continue
			}
			e.weaponTraits[c.ID+"/"+w.Name] = trait.ForWeapon(w, e.logger)
		}
	}
}

// placeTeams assigns starting positions to creatures still at the origin:
// team i stands on the line x = i*Separation, members spread 5 ft apart.
// Creatures positioned by the caller keep their spot.
func (e *Encounter) placeTeams() {
	for i, team := range e.battle.Teams {
		for j, c := range team.Creatures {
			if c.Position != (rules.Point{}) {
				continue
			}
			c.Position = rules.Point{
				X: float64(i) * e.policy.Separation,
				Y: float64(j) * 5,
			}
		}
	}
}

// Run drives the encounter to a terminal state and returns the result. Safe
// to call once; a finished encounter returns its recorded result unchanged.
func (e *Encounter) Run() Result {
	if e.state == Finished {
		return e.result
	}
	e.rollInitiative()
	for e.state != Finished {
		if e.battle.Round >= e.policy.MaxRounds {
			e.finish(nil)
			break
		}
		e.battle.StartRound()
		e.sink.Emit(Event{Kind: EventRoundStart, Round: e.battle.Round})
		for _, c := range e.order {
			if e.state == Finished {
				break
			}
			e.takeTurn(c)
		}
	}
	return e.result
}

// rollInitiative rolls d20 + dexterity modifier once per creature and fixes
// the turn order. Ties go to the higher dexterity score; remaining ties keep
// team insertion order.
func (e *Encounter) rollInitiative() {
	e.state = RollingInitiative
	creatures := e.battle.Creatures()
	scores := make(map[string]int, len(creatures))
	for _, c := range creatures {
		scores[c.ID] = c.RollInitiative(e.src)
		e.sink.Emit(Event{
			Kind:    EventInitiative,
			Actor:   c.Name,
			Outcome: fmt.Sprintf("%d", scores[c.ID]),
		})
	}
	order := append([]*creature.Creature(nil), creatures...)
	sort.SliceStable(order, func(i, j int) bool {
		if scores[order[i].ID] != scores[order[j].ID] {
			return scores[order[i].ID] > scores[order[j].ID]
		}
		return order[i].Abilities.Dex > order[j].Abilities.Dex
	})
	e.order = order
	e.state = RoundInProgress
}

// takeTurn runs one creature's turn: victory check, turn-state reset, the
// automatic death save while dying, the skip-turn conditions, then an escape
// attempt or movement plus the attack loop.
func (e *Encounter) takeTurn(c *creature.Creature) {
	if e.checkVictory() {
		return
	}
	c.ResetTurn()

	if c.HasCondition(rules.Dying) {
		rolled, result := c.RollDeathSave(e.src)
		e.sink.Emit(Event{
			Kind:    EventDeathSave,
			Round:   e.battle.Round,
			Actor:   c.Name,
			Roll:    fmt.Sprintf("%d", rolled),
			Outcome: string(result),
		})
		if result == creature.DeathSaveDeath {
			e.checkVictory()
			return
		}
	}
	if c.SkipsTurn() {
		return
	}

	// Grappled and restrained zero out movement for the turn. Escaping one
	// of those takes the action instead of attacking.
	held := e.heldBy(c)
	if held != nil {
		c.RemainingMovement = 0
		e.tryEscape(c, held)
		return
	}

	e.moveAndAct(c)
}

// heldBy returns the first active escapable condition restricting c's
// movement, or nil.
func (e *Encounter) heldBy(c *creature.Creature) *battle.TempCondition {
	for _, tc := range e.battle.ActiveConditions(c) {
		if tc.Condition != rules.Grappled && tc.Condition != rules.Restrained {
			continue
		}
		if tc.EscapeDC > 0 || len(tc.ContestedBy) > 0 {
			return tc
		}
	}
	return nil
}

// tryEscape spends c's action on an escape attempt: c's best escape check
// against the fixed DC, or against the causer's contested roll.
func (e *Encounter) tryEscape(c *creature.Creature, tc *battle.TempCondition) {
	rolled := e.rollEscape(c, tc)
	dc := tc.EscapeDC
	if len(tc.ContestedBy) > 0 {
		if causer, ok := e.battle.Creature(tc.CausedByID); ok && !causer.IsIncapacitated() {
			dc = causer.RollSkillCheck(tc.ContestedBy[0], dice.Straight, e.src)
		}
	}
	if rolled >= dc {
		e.battle.RemoveCondition(tc)
		e.sink.Emit(Event{
			Kind:      EventConditionRemoved,
			Round:     e.battle.Round,
			Actor:     c.Name,
			Condition: string(tc.Condition),
			Detail:    fmt.Sprintf("escaped with %d vs DC %d", rolled, dc),
		})
		return
	}
	e.sink.Emit(Event{
		Kind:      EventConditionApplied,
		Round:     e.battle.Round,
		Actor:     c.Name,
		Condition: string(tc.Condition),
		Detail:    fmt.Sprintf("failed to escape with %d vs DC %d", rolled, dc),
	})
}

// rollEscape rolls the best check the condition allows: the highest-modifier
// escape skill when given, else an ability check with the escape ability,
// else a raw strength check. Escapes are checks, not saving throws, so save
// proficiency never applies.
func (e *Encounter) rollEscape(c *creature.Creature, tc *battle.TempCondition) int {
	if len(tc.EscapeSkills) > 0 {
		best := tc.EscapeSkills[0]
		for _, s := range tc.EscapeSkills[1:] {
			if c.Abilities.Modifier(rules.SkillAbility[s]) > c.Abilities.Modifier(rules.SkillAbility[best]) {
				best = s
			}
		}
		return c.RollSkillCheck(best, dice.Straight, e.src)
	}
	ab := tc.EscapeAbility
	if ab == "" {
		ab = rules.Strength
	}
	return c.RollAbilityCheck(ab, dice.Straight, e.src)
}

// checkVictory finishes the encounter when at most one team still has a
// creature standing. With ToTheDeath unset, a dying creature already counts
// as down.
//
// Postcondition: Returns true iff the encounter is finished.
func (e *Encounter) checkVictory() bool {
	if e.state == Finished {
		return true
	}
	var standing []*battle.Team
	for _, t := range e.battle.Teams {
		for _, c := range t.Creatures {
			if !e.isDown(c) {
				standing = append(standing, t)
				break
			}
		}
	}
	if len(standing) > 1 {
		return false
	}
	if len(standing) == 1 {
		e.finish(standing[0])
	} else {
		e.finish(nil)
	}
	return true
}

func (e *Encounter) isDown(c *creature.Creature) bool {
	if c.IsDead() {
		return true
	}
	return !e.policy.ToTheDeath && c.HasCondition(rules.Dying)
}

// finish records the terminal result. A nil winner is a stalemate (round cap
// reached or mutual destruction).
func (e *Encounter) finish(winner *battle.Team) {
	e.state = Finished
	e.result = Result{Rounds: e.battle.Round, Stalemate: winner == nil}
	if winner != nil {
		e.result.Winner = winner.Name
	}
	e.sink.Emit(Event{
		Kind:      EventFinished,
		Round:     e.battle.Round,
		Winner:    e.result.Winner,
		Stalemate: e.result.Stalemate,
	})
	e.logger.Debug("encounter finished",
		zap.String("winner", e.result.Winner),
		zap.Bool("stalemate", e.result.Stalemate),
		zap.Int("rounds", e.result.Rounds),
	)
}

// chooseTarget picks the nearest conscious living enemy, falling back to the
// nearest living enemy so a downed creature can still be finished off.
func (e *Encounter) chooseTarget(c *creature.Creature) *creature.Creature {
	living := e.battle.LivingEnemies(c)
	var best *creature.Creature
	bestDist := 0.0
	for _, enemy := range living {
		if enemy.IsIncapacitated() {
			continue
		}
		d := rules.Distance(c.Position, enemy.Position)
		if best == nil || d < bestDist {
			best, bestDist = enemy, d
		}
	}
	if best != nil {
		return best
	}
	for _, enemy := range living {
		d := rules.Distance(c.Position, enemy.Position)
		if best == nil || d < bestDist {
			best, bestDist = enemy, d
		}
	}
	return best
}
