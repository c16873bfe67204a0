// Package rules defines the fixed rule-set vocabulary for the simulator:
// abilities, skills, conditions, damage types, sizes, and the derived-value
// tables that the rest of the engine shares.
package rules

import (
	"fmt"
	"math"
)

// Ability is one of the six core ability scores.
type Ability string

const (
	Strength     Ability = "str"
	Dexterity    Ability = "dex"
	Constitution Ability = "con"
	Intelligence Ability = "int"
	Wisdom       Ability = "wis"
	Charisma     Ability = "cha"
)

// Abilities lists all six abilities in canonical order.
var Abilities = []Ability{Strength, Dexterity, Constitution, Intelligence, Wisdom, Charisma}

// ParseAbility parses an ability key such as "str" or "dex".
//
// Postcondition: Returns a valid Ability or a descriptive error.
func ParseAbility(s string) (Ability, error) {
	for _, a := range Abilities {
		if string(a) == s {
			return a, nil
		}
	}
	return "", fmt.Errorf("rules: unknown ability %q", s)
}

// Modifier computes the ability modifier for a score using floor division:
// floor((score - 10) / 2).
//
// Postcondition: Modifier(10) == 0, Modifier(9) == -1, Modifier(20) == 5.
func Modifier(score int) int {
	diff := score - 10
	if diff < 0 {
		return (diff - 1) / 2
	}
	return diff / 2
}

// ProficiencyFromCR derives a proficiency bonus from a challenge rating,
// per the DMG table: max(cr-1, 0)/4 + 2, floor division.
//
// Precondition: cr >= 0. Fractional ratings (1/8, 1/4, 1/2) are valid.
// Postcondition: Returns >= 2.
func ProficiencyFromCR(cr float64) int {
	adjusted := cr - 1
	if adjusted < 0 {
		adjusted = 0
	}
	return int(math.Floor(adjusted/4)) + 2
}

// Skill is one of the rule set's skills.
type Skill string

const (
	Acrobatics     Skill = "acrobatics"
	AnimalHandling Skill = "animal_handling"
	Arcana         Skill = "arcana"
	Athletics      Skill = "athletics"
	Deception      Skill = "deception"
	History        Skill = "history"
	Insight        Skill = "insight"
	Intimidation   Skill = "intimidation"
	Investigation  Skill = "investigation"
	Medicine       Skill = "medicine"
	Nature         Skill = "nature"
	Perception     Skill = "perception"
	Performance    Skill = "performance"
	Persuasion     Skill = "persuasion"
	Religion       Skill = "religion"
	SleightOfHand  Skill = "sleight_of_hand"
	Stealth        Skill = "stealth"
	Survival       Skill = "survival"
)

// SkillAbility maps each skill to the ability it keys off.
var SkillAbility = map[Skill]Ability{
	Acrobatics:     Dexterity,
	AnimalHandling: Wisdom,
	Arcana:         Intelligence,
	Athletics:      Strength,
	Deception:      Charisma,
	History:        Intelligence,
	Insight:        Wisdom,
	Intimidation:   Charisma,
	Investigation:  Intelligence,
	Medicine:       Wisdom,
	Nature:         Intelligence,
	Perception:     Wisdom,
	Performance:    Charisma,
	Persuasion:     Charisma,
	Religion:       Intelligence,
	SleightOfHand:  Dexterity,
	Stealth:        Dexterity,
	Survival:       Wisdom,
}

// ParseSkill parses a skill key such as "athletics".
//
// Postcondition: Returns a valid Skill or a descriptive error.
func ParseSkill(s string) (Skill, error) {
	sk := Skill(s)
	if _, ok := SkillAbility[sk]; !ok {
		return "", fmt.Errorf("rules: unknown skill %q", s)
	}
	return sk, nil
}

// Condition is a boolean status a creature can carry.
type Condition string

const (
	Blinded       Condition = "blinded"
	Charmed       Condition = "charmed"
	Deafened      Condition = "deafened"
	Frightened    Condition = "frightened"
	Grappled      Condition = "grappled"
	Incapacitated Condition = "incapacitated"
	Invisible     Condition = "invisible"
	Paralyzed     Condition = "paralyzed"
	Petrified     Condition = "petrified"
	Poisoned      Condition = "poisoned"
	Prone         Condition = "prone"
	Restrained    Condition = "restrained"
	Stunned       Condition = "stunned"
	Unconscious   Condition = "unconscious"
	// Not official conditions, but the engine tracks them the same way.
	Dying Condition = "dying"
	Dead  Condition = "dead"
)

var conditions = map[Condition]bool{
	Blinded: true, Charmed: true, Deafened: true, Frightened: true,
	Grappled: true, Incapacitated: true, Invisible: true, Paralyzed: true,
	Petrified: true, Poisoned: true, Prone: true, Restrained: true,
	Stunned: true, Unconscious: true, Dying: true, Dead: true,
}

// ParseCondition parses a condition key such as "grappled".
//
// Postcondition: Returns a valid Condition or a descriptive error.
func ParseCondition(s string) (Condition, error) {
	c := Condition(s)
	if !conditions[c] {
		return "", fmt.Errorf("rules: unknown condition %q", s)
	}
	return c, nil
}

// TurnSkipConditions are the conditions under which a creature forfeits its
// turn entirely (no movement, no action).
var TurnSkipConditions = []Condition{Dead, Paralyzed, Petrified, Stunned, Unconscious}

// DamageType classifies a damage component for resistance bookkeeping.
type DamageType string

const (
	Acid        DamageType = "acid"
	Bludgeoning DamageType = "bludgeoning"
	Cold        DamageType = "cold"
	Fire        DamageType = "fire"
	Force       DamageType = "force"
	Lightning   DamageType = "lightning"
	Necrotic    DamageType = "necrotic"
	Piercing    DamageType = "piercing"
	Poison      DamageType = "poison"
	Psychic     DamageType = "psychic"
	Radiant     DamageType = "radiant"
	Slashing    DamageType = "slashing"
	Thunder     DamageType = "thunder"
)

var damageTypes = map[DamageType]bool{
	Acid: true, Bludgeoning: true, Cold: true, Fire: true, Force: true,
	Lightning: true, Necrotic: true, Piercing: true, Poison: true,
	Psychic: true, Radiant: true, Slashing: true, Thunder: true,
}

// ParseDamageType parses a damage type key such as "slashing".
//
// Postcondition: Returns a valid DamageType or a descriptive error.
func ParseDamageType(s string) (DamageType, error) {
	dt := DamageType(s)
	if !damageTypes[dt] {
		return "", fmt.Errorf("rules: unknown damage type %q", s)
	}
	return dt, nil
}

// CreatureType is the broad taxonomy of a creature.
type CreatureType string

const (
	Aberration  CreatureType = "aberration"
	Beast       CreatureType = "beast"
	Celestial   CreatureType = "celestial"
	Construct   CreatureType = "construct"
	Dragon      CreatureType = "dragon"
	Elemental   CreatureType = "elemental"
	Fey         CreatureType = "fey"
	Fiend       CreatureType = "fiend"
	Giant       CreatureType = "giant"
	Humanoid    CreatureType = "humanoid"
	Monstrosity CreatureType = "monstrosity"
	Ooze        CreatureType = "ooze"
	Plant       CreatureType = "plant"
	Undead      CreatureType = "undead"
)

var creatureTypes = map[CreatureType]bool{
	Aberration: true, Beast: true, Celestial: true, Construct: true,
	Dragon: true, Elemental: true, Fey: true, Fiend: true, Giant: true,
	Humanoid: true, Monstrosity: true, Ooze: true, Plant: true, Undead: true,
}

// ParseCreatureType parses a creature type key such as "undead".
//
// Postcondition: Returns a valid CreatureType or a descriptive error.
func ParseCreatureType(s string) (CreatureType, error) {
	ct := CreatureType(s)
	if !creatureTypes[ct] {
		return "", fmt.Errorf("rules: unknown creature type %q", s)
	}
	return ct, nil
}

// Sense is a special sense a creature may have. Blindsight and truesight
// let a blinded attacker fight without disadvantage.
type Sense string

const (
	Blindsight  Sense = "blindsight"
	Darkvision  Sense = "darkvision"
	Tremorsense Sense = "tremorsense"
	Truesight   Sense = "truesight"
)

var senses = map[Sense]bool{
	Blindsight: true, Darkvision: true, Tremorsense: true, Truesight: true,
}

// ParseSense parses a sense key such as "darkvision".
//
// Postcondition: Returns a valid Sense or a descriptive error.
func ParseSense(s string) (Sense, error) {
	se := Sense(s)
	if !senses[se] {
		return "", fmt.Errorf("rules: unknown sense %q", s)
	}
	return se, nil
}
