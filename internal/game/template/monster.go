package template

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/fellhaven/dndsim/internal/game/rules"
)

// MonsterDef defines a reusable monster stat block loaded from YAML.
type MonsterDef struct {
	Key  string `yaml:"key"`
	Name string `yaml:"name"`
	AC   int    `yaml:"ac"`
	// HP is a fixed value ("16") or a hit dice formula ("2d8").
	HP string `yaml:"hp"`
	// Abilities lists the six scores in str, dex, con, int, wis, cha order.
	Abilities []int `yaml:"abilities"`

	CR          *float64 `yaml:"cr"`
	Proficiency *int     `yaml:"proficiency"`
	AttackBonus *int     `yaml:"attack_bonus"`

	Type string `yaml:"type"`
	// Size names a size category; empty infers it from the hit die.
	Size string `yaml:"size"`

	Speed      int `yaml:"speed"`
	SpeedFly   int `yaml:"speed_fly"`
	SpeedHover int `yaml:"speed_hover"`
	SpeedSwim  int `yaml:"speed_swim"`

	NumAttacks       int   `yaml:"num_attacks"`
	DifferentAttacks bool  `yaml:"different_attacks"`
	HasShield        bool  `yaml:"has_shield"`
	NumHands         *int  `yaml:"num_hands"`
	MakeDeathSaves   bool  `yaml:"make_death_saves"`

	// Weapons lists keys into the weapon catalogue.
	Weapons []string `yaml:"weapons"`
	Traits  []string `yaml:"traits"`

	SaveProficiencies  []string `yaml:"save_proficiencies"`
	SkillProficiencies []string `yaml:"skill_proficiencies"`
	SkillExpertises    []string `yaml:"skill_expertises"`

	Vulnerabilities     []string `yaml:"vulnerabilities"`
	Resistances         []string `yaml:"resistances"`
	Immunities          []string `yaml:"immunities"`
	ConditionImmunities []string `yaml:"condition_immunities"`
	Senses              []string `yaml:"senses"`
}

// Validate checks the template's file-level invariants. Weapon keys are
// checked later, against the loaded weapon catalogue.
//
// Precondition: d must not be nil.
// Postcondition: Returns nil iff the key, name, AC, HP, abilities,
// CR-or-proficiency requirement and every named enum value are well formed.
func (d *MonsterDef) Validate() error {
	if d.Key == "" {
		return fmt.Errorf("monster template: key must not be empty")
	}
	if d.Name == "" {
		return fmt.Errorf("monster template %q: name must not be empty", d.Key)
	}
	if d.AC < 1 {
		return fmt.Errorf("monster template %q: ac must be >= 1", d.Key)
	}
	if d.HP == "" {
		return fmt.Errorf("monster template %q: hp must not be empty", d.Key)
	}
	if len(d.Abilities) != 6 {
		return fmt.Errorf("monster template %q: abilities must list 6 scores, got %d", d.Key, len(d.Abilities))
	}
	if d.CR == nil && d.Proficiency == nil {
		return fmt.Errorf("monster template %q: must set cr or proficiency", d.Key)
	}
	if len(d.Weapons) == 0 {
		return fmt.Errorf("monster template %q: must list at least one weapon", d.Key)
	}
	if d.Type != "" {
		if _, err := rules.ParseCreatureType(d.Type); err != nil {
			return fmt.Errorf("monster template %q: %w", d.Key, err)
		}
	}
	if d.Size != "" {
		if _, err := rules.ParseSize(d.Size); err != nil {
			return fmt.Errorf("monster template %q: %w", d.Key, err)
		}
	}
	for _, s := range d.SaveProficiencies {
		if _, err := rules.ParseAbility(s); err != nil {
			return fmt.Errorf("monster template %q: save_proficiencies: %w", d.Key, err)
		}
	}
	for _, lst := range []struct {
		field  string
		values []string
	}{
		{"skill_proficiencies", d.SkillProficiencies},
		{"skill_expertises", d.SkillExpertises},
	} {
		for _, s := range lst.values {
			if _, err := rules.ParseSkill(s); err != nil {
				return fmt.Errorf("monster template %q: %s: %w", d.Key, lst.field, err)
			}
		}
	}
	for _, lst := range []struct {
		field  string
		values []string
	}{
		{"vulnerabilities", d.Vulnerabilities},
		{"resistances", d.Resistances},
		{"immunities", d.Immunities},
	} {
		for _, s := range lst.values {
			if _, err := rules.ParseDamageType(s); err != nil {
				return fmt.Errorf("monster template %q: %s: %w", d.Key, lst.field, err)
			}
		}
	}
	for _, s := range d.ConditionImmunities {
		if _, err := rules.ParseCondition(s); err != nil {
			return fmt.Errorf("monster template %q: condition_immunities: %w", d.Key, err)
		}
	}
	for _, s := range d.Senses {
		if _, err := rules.ParseSense(s); err != nil {
			return fmt.Errorf("monster template %q: senses: %w", d.Key, err)
		}
	}
	return nil
}

// LoadMonsterFromBytes parses a single monster template from raw YAML bytes.
func LoadMonsterFromBytes(data []byte) (*MonsterDef, error) {
	var def MonsterDef
	if err := yaml.Unmarshal(data, &def); err != nil {
		return nil, fmt.Errorf("parsing monster template YAML: %w", err)
	}
	if err := def.Validate(); err != nil {
		return nil, err
	}
	return &def, nil
}

// LoadMonsters reads all *.yaml files in dir and returns the parsed monster
// templates keyed by template key.
//
// Postcondition: Returns all templates or an error on the first parse,
// validate or duplicate-key failure; on error the partial result is
// discarded.
func LoadMonsters(dir string) (map[string]*MonsterDef, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading monster dir %q: %w", dir, err)
	}

	defs := make(map[string]*MonsterDef)
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".yaml") {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %q: %w", path, err)
		}
		def, err := LoadMonsterFromBytes(data)
		if err != nil {
			return nil, fmt.Errorf("loading %q: %w", path, err)
		}
		if _, dup := defs[def.Key]; dup {
			return nil, fmt.Errorf("loading %q: duplicate monster key %q", path, def.Key)
		}
		defs[def.Key] = def
	}
	return defs, nil
}
