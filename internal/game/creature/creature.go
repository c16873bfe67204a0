// Package creature defines the creature stat model: static capabilities,
// mutable combat state, and the damage/death-save state machine.
package creature

import (
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// Abilities holds the six ability scores.
type Abilities struct {
	Str int
	Dex int
	Con int
	Int int
	Wis int
	Cha int
}

// Score returns the raw score for an ability.
func (a Abilities) Score(ab rules.Ability) int {
	switch ab {
	case rules.Strength:
		return a.Str
	case rules.Dexterity:
		return a.Dex
	case rules.Constitution:
		return a.Con
	case rules.Intelligence:
		return a.Int
	case rules.Wisdom:
		return a.Wis
	case rules.Charisma:
		return a.Cha
	}
	panic("creature: unknown ability " + string(ab))
}

// Modifier returns the derived modifier for an ability: floor((score-10)/2).
func (a Abilities) Modifier(ab rules.Ability) int {
	return rules.Modifier(a.Score(ab))
}

// DeathSaves tracks the running death saving throw tally.
type DeathSaves struct {
	Successes int
	Failures  int
}

// Config carries everything needed to construct a Creature. Zero values get
// sensible defaults where the rule set defines one (speed 30, two hands, one
// attack per turn).
type Config struct {
	Name string
	AC   int
	// HP is either a fixed value ("16") or a hit dice formula ("5d8");
	// rolled HP adds the constitution modifier once per hit die.
	HP        string
	Abilities Abilities
	// AttackBonus, when non-nil, overrides ability modifier + proficiency on
	// every attack roll.
	AttackBonus *int
	Weapons     []*weapon.Weapon
	// TraitKeys name the creature traits, resolved to behavior objects at
	// encounter setup. Unknown keys are dropped with a warning there.
	TraitKeys []string
	// CR is the challenge rating; used to derive Proficiency when that is
	// nil. One of the two must be provided.
	CR          *float64
	Proficiency *int

	Type    rules.CreatureType
	Subtype string
	// Size is inferred from the hit die type when zero.
	Size rules.Size

	Speed      int
	SpeedFly   int
	SpeedHover int
	SpeedSwim  int

	NumAttacks int
	// DifferentAttacks forces distinct weapons across one turn's attacks.
	DifferentAttacks bool
	HasShield        bool
	NumHands         int
	MakeDeathSaves   bool

	SaveProficiencies  []rules.Ability
	SkillProficiencies []rules.Skill
	SkillExpertises    []rules.Skill

	Vulnerabilities     []rules.DamageType
	Resistances         []rules.DamageType
	Immunities          []rules.DamageType
	ConditionImmunities []rules.Condition
	Senses              []rules.Sense
}

// Creature is one combat participant: static stat block plus mutable state.
//
// Invariant: 0 <= HP <= MaxHP; the dead and dying conditions are never both
// set; HP == 0 implies dying (death-save creatures) or dead.
type Creature struct {
	// ID is the stable instance identifier used as the battle ledger key.
	ID   string
	Name string
	AC   int

	HP       int
	MaxHP    int
	hitDice  *dice.Expression // nil for fixed-HP creatures
	hpString string

	Abilities   Abilities
	AttackBonus *int
	Proficiency int
	CR          float64

	Weapons   []*weapon.Weapon
	TraitKeys []string

	Type    rules.CreatureType
	Subtype string
	Size    rules.Size

	Speed      int
	SpeedFly   int
	SpeedHover int
	SpeedSwim  int

	NumAttacks       int
	DifferentAttacks bool
	HasShield        bool
	NumHands         int
	MakeDeathSaves   bool

	SaveProficiencies  map[rules.Ability]bool
	SkillProficiencies map[rules.Skill]bool
	SkillExpertises    map[rules.Skill]bool

	Vulnerabilities     map[rules.DamageType]bool
	Resistances         map[rules.DamageType]bool
	Immunities          map[rules.DamageType]bool
	ConditionImmunities map[rules.Condition]bool
	Senses              map[rules.Sense]bool

	Position rules.Point

	conditions map[rules.Condition]bool
	DeathSaves DeathSaves

	// Transient per-turn state.
	RemainingMovement float64
	AttackUsed        bool
	weaponsUsed       map[string]bool

	config Config
}

// New constructs a Creature from cfg, rolling HP when cfg.HP is a dice
// formula. Configuration errors (bad dice strings, missing proficiency and
// CR) fail here, before any combat begins.
//
// Precondition: src must be non-nil.
// Postcondition: Returns a creature satisfying all invariants, or an error.
func New(cfg Config, src dice.Source) (*Creature, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("creature: name must not be empty")
	}
	if cfg.AC <= 0 {
		return nil, fmt.Errorf("creature %q: ac must be >= 1", cfg.Name)
	}
	if cfg.Proficiency == nil && cfg.CR == nil {
		return nil, fmt.Errorf("creature %q: must provide at least one of proficiency or cr", cfg.Name)
	}

	c := &Creature{
		ID:               uuid.NewString(),
		Name:             cfg.Name,
		AC:               cfg.AC,
		hpString:         cfg.HP,
		Abilities:        cfg.Abilities,
		AttackBonus:      cfg.AttackBonus,
		TraitKeys:        append([]string(nil), cfg.TraitKeys...),
		Type:             cfg.Type,
		Subtype:          cfg.Subtype,
		Size:             cfg.Size,
		Speed:            cfg.Speed,
		SpeedFly:         cfg.SpeedFly,
		SpeedHover:       cfg.SpeedHover,
		SpeedSwim:        cfg.SpeedSwim,
		NumAttacks:       cfg.NumAttacks,
		DifferentAttacks: cfg.DifferentAttacks,
		HasShield:        cfg.HasShield,
		NumHands:         cfg.NumHands,
		MakeDeathSaves:   cfg.MakeDeathSaves,
		conditions:       make(map[rules.Condition]bool),
		weaponsUsed:      make(map[string]bool),
		config:           cfg,
	}

	if c.Speed == 0 {
		c.Speed = 30
	}
	if c.NumAttacks == 0 {
		c.NumAttacks = 1
	}
	if c.NumHands == 0 {
		c.NumHands = 2
	}

	if cfg.Proficiency != nil {
		c.Proficiency = *cfg.Proficiency
	} else {
		c.Proficiency = rules.ProficiencyFromCR(*cfg.CR)
	}
	if cfg.CR != nil {
		c.CR = *cfg.CR
	}

	if err := c.parseHP(cfg.HP, src); err != nil {
		return nil, err
	}

	if c.Size == 0 && c.hitDice != nil {
		if size, ok := rules.SizeFromHitDie(c.hitDice.Sides); ok {
			c.Size = size
		}
	}
	if c.Size == 0 {
		c.Size = rules.Medium
	}

	for _, w := range cfg.Weapons {
		if err := w.Validate(); err != nil {
			return nil, fmt.Errorf("creature %q: %w", cfg.Name, err)
		}
		cw := w.Clone()
		cw.ScaleForSize(c.Size)
		if cw.Quantity == 0 {
			cw.Quantity = weapon.DefaultQuantity(cw, src)
		}
		c.Weapons = append(c.Weapons, cw)
	}
	if c.Type == rules.Humanoid && !c.hasWeapon("unarmed strike") {
		c.Weapons = append(c.Weapons, UnarmedStrike())
	}
	if len(c.Weapons) == 0 {
		return nil, fmt.Errorf("creature %q: needs at least one weapon", cfg.Name)
	}

	c.SaveProficiencies = abilitySet(cfg.SaveProficiencies)
	c.SkillProficiencies = skillSet(cfg.SkillProficiencies)
	c.SkillExpertises = skillSet(cfg.SkillExpertises)
	c.Vulnerabilities = damageTypeSet(cfg.Vulnerabilities)
	c.Resistances = damageTypeSet(cfg.Resistances)
	c.Immunities = damageTypeSet(cfg.Immunities)
	c.ConditionImmunities = conditionSet(cfg.ConditionImmunities)
	c.Senses = senseSet(cfg.Senses)

	c.ResetTurn()
	return c, nil
}

// UnarmedStrike returns the attack every humanoid creature falls back to.
func UnarmedStrike() *weapon.Weapon {
	dmg, _ := weapon.ParseDamageRoll("1d1 bludgeoning")
	return &weapon.Weapon{
		Name:       "unarmed strike",
		Melee:      true,
		Damage:     &dmg,
		IsWeapon:   false,
		Kind:       "simple",
		Quantity:   1,
		Proficient: true,
	}
}

func (c *Creature) parseHP(hp string, src dice.Source) error {
	hp = strings.TrimSpace(hp)
	if hp == "" {
		return fmt.Errorf("creature %q: hp must not be empty", c.Name)
	}
	if !strings.Contains(hp, "d") {
		var fixed int
		if _, err := fmt.Sscanf(hp, "%d", &fixed); err != nil || fixed < 1 {
			return fmt.Errorf("creature %q: invalid hp %q", c.Name, hp)
		}
		c.HP, c.MaxHP = fixed, fixed
		return nil
	}
	expr, err := dice.Parse(hp)
	if err != nil {
		return fmt.Errorf("creature %q: invalid hp formula: %w", c.Name, err)
	}
	c.hitDice = &expr
	rolled := c.rollHitPoints(src)
	c.HP, c.MaxHP = rolled, rolled
	return nil
}

// rollHitPoints rolls the hit dice and adds the constitution modifier once
// per hit die, floored at 1.
func (c *Creature) rollHitPoints(src dice.Source) int {
	total := dice.Roll(*c.hitDice, src).Total()
	total += c.Abilities.Modifier(rules.Constitution) * c.hitDice.Count
	if total < 1 {
		total = 1
	}
	return total
}

func (c *Creature) hasWeapon(name string) bool {
	for _, w := range c.Weapons {
		if w.Name == name {
			return true
		}
	}
	return false
}

// Spawn produces an independent copy of the creature for a fresh encounter:
// a new instance ID, rerolled HP (when the creature uses hit dice), cleared
// conditions, a zeroed death-save tally, and reset turn state. This is the
// unit of one combat instance reused across batch runs.
//
// Precondition: src must be non-nil.
// Postcondition: The copy shares no mutable state with the parent.
func (c *Creature) Spawn(src dice.Source) *Creature {
	fresh, err := New(c.config, src)
	if err != nil {
		// The parent was built from the same config, so this is unreachable.
		panic("creature: Spawn failed: " + err.Error())
	}
	fresh.Position = c.Position
	return fresh
}

// ResetTurn clears the transient per-turn state at the start of a turn.
//
// Postcondition: RemainingMovement == Speed; no weapon is marked used.
func (c *Creature) ResetTurn() {
	c.RemainingMovement = float64(c.Speed)
	c.AttackUsed = false
	c.weaponsUsed = make(map[string]bool)
}

// MarkWeaponUsed records that the named weapon attacked this turn.
func (c *Creature) MarkWeaponUsed(name string) {
	c.AttackUsed = true
	c.weaponsUsed[name] = true
}

// WeaponUsedThisTurn reports whether the named weapon already attacked this
// turn; relevant when DifferentAttacks is enforced.
func (c *Creature) WeaponUsedThisTurn(name string) bool {
	return c.weaponsUsed[name]
}

// CanUseTwoHanded reports whether the creature has two free hands, counting
// one hand occupied by a shield.
func (c *Creature) CanUseTwoHanded() bool {
	hands := c.NumHands
	if c.HasShield {
		hands--
	}
	return hands >= 2
}

// String formats the creature as "Name (hp/max)".
func (c *Creature) String() string {
	return fmt.Sprintf("%s (%d/%d)", c.Name, c.HP, c.MaxHP)
}

func abilitySet(in []rules.Ability) map[rules.Ability]bool {
	out := make(map[rules.Ability]bool, len(in))
	for _, v := range in {
		out[v] = true
	}
	return out
}

func skillSet(in []rules.Skill) map[rules.Skill]bool {
	out := make(map[rules.Skill]bool, len(in))
	for _, v := range in {
		out[v] = true
	}
	return out
}

func damageTypeSet(in []rules.DamageType) map[rules.DamageType]bool {
	out := make(map[rules.DamageType]bool, len(in))
	for _, v := range in {
		out[v] = true
	}
	return out
}

func conditionSet(in []rules.Condition) map[rules.Condition]bool {
	out := make(map[rules.Condition]bool, len(in))
	for _, v := range in {
		out[v] = true
	}
	return out
}

func senseSet(in []rules.Sense) map[rules.Sense]bool {
	out := make(map[rules.Sense]bool, len(in))
	for _, v := range in {
		out[v] = true
	}
	return out
}
