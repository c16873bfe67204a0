package template

import (
	"fmt"
	"path/filepath"
	"sort"

	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// Library is the loaded content catalogue: weapon definitions plus monster
// templates referencing them. It is immutable after construction and safe
// for concurrent reads.
type Library struct {
	weapons  map[string]*WeaponDef
	monsters map[string]*MonsterDef
}

// Load builds a library from a content directory laid out as
//
//	<dir>/weapons.yaml
//	<dir>/monsters/*.yaml
//
// Postcondition: Every monster's weapon keys resolve against the catalogue.
func Load(dir string) (*Library, error) {
	weapons, err := LoadWeapons(filepath.Join(dir, "weapons.yaml"))
	if err != nil {
		return nil, err
	}
	monsters, err := LoadMonsters(filepath.Join(dir, "monsters"))
	if err != nil {
		return nil, err
	}
	return New(weapons, monsters)
}

// New builds a library from already-loaded catalogues, mainly for tests.
func New(weapons map[string]*WeaponDef, monsters map[string]*MonsterDef) (*Library, error) {
	lib := &Library{weapons: weapons, monsters: monsters}
	for key, def := range monsters {
		for _, wk := range def.Weapons {
			if _, ok := weapons[wk]; !ok {
				return nil, fmt.Errorf("template: monster %q references unknown weapon %q", key, wk)
			}
		}
	}
	return lib, nil
}

// MonsterKeys lists the available template keys, sorted.
func (l *Library) MonsterKeys() []string {
	keys := make([]string, 0, len(l.monsters))
	for k := range l.monsters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Weapon builds a fresh weapon from its catalogue key.
func (l *Library) Weapon(key string) (*weapon.Weapon, error) {
	def, ok := l.weapons[key]
	if !ok {
		return nil, fmt.Errorf("template: unknown weapon %q", key)
	}
	return def.Build(key)
}

// Config resolves a monster template key to a creature configuration. The
// mapping is pure: the same key always produces an equivalent configuration.
func (l *Library) Config(key string) (creature.Config, error) {
	def, ok := l.monsters[key]
	if !ok {
		return creature.Config{}, fmt.Errorf("template: unknown monster %q", key)
	}

	cfg := creature.Config{
		Name: def.Name,
		AC:   def.AC,
		HP:   def.HP,
		Abilities: creature.Abilities{
			Str: def.Abilities[0],
			Dex: def.Abilities[1],
			Con: def.Abilities[2],
			Int: def.Abilities[3],
			Wis: def.Abilities[4],
			Cha: def.Abilities[5],
		},
		AttackBonus:      def.AttackBonus,
		CR:               def.CR,
		Proficiency:      def.Proficiency,
		TraitKeys:        append([]string(nil), def.Traits...),
		Speed:            def.Speed,
		SpeedFly:         def.SpeedFly,
		SpeedHover:       def.SpeedHover,
		SpeedSwim:        def.SpeedSwim,
		NumAttacks:       def.NumAttacks,
		DifferentAttacks: def.DifferentAttacks,
		HasShield:        def.HasShield,
		MakeDeathSaves:   def.MakeDeathSaves,
	}
	if def.NumHands != nil {
		cfg.NumHands = *def.NumHands
	}
	if def.Type != "" {
		ct, err := rules.ParseCreatureType(def.Type)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.Type = ct
	}
	if def.Size != "" {
		size, err := rules.ParseSize(def.Size)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.Size = size
	}

	for _, wk := range def.Weapons {
		w, err := l.Weapon(wk)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.Weapons = append(cfg.Weapons, w)
	}

	for _, s := range def.SaveProficiencies {
		ab, err := rules.ParseAbility(s)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.SaveProficiencies = append(cfg.SaveProficiencies, ab)
	}
	for _, s := range def.SkillProficiencies {
		sk, err := rules.ParseSkill(s)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.SkillProficiencies = append(cfg.SkillProficiencies, sk)
	}
	for _, s := range def.SkillExpertises {
		sk, err := rules.ParseSkill(s)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.SkillExpertises = append(cfg.SkillExpertises, sk)
	}
	for _, s := range def.Vulnerabilities {
		dt, err := rules.ParseDamageType(s)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.Vulnerabilities = append(cfg.Vulnerabilities, dt)
	}
	for _, s := range def.Resistances {
		dt, err := rules.ParseDamageType(s)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.Resistances = append(cfg.Resistances, dt)
	}
	for _, s := range def.Immunities {
		dt, err := rules.ParseDamageType(s)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.Immunities = append(cfg.Immunities, dt)
	}
	for _, s := range def.ConditionImmunities {
		cond, err := rules.ParseCondition(s)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.ConditionImmunities = append(cfg.ConditionImmunities, cond)
	}
	for _, s := range def.Senses {
		sense, err := rules.ParseSense(s)
		if err != nil {
			return creature.Config{}, fmt.Errorf("template: monster %q: %w", key, err)
		}
		cfg.Senses = append(cfg.Senses, sense)
	}
	return cfg, nil
}

// Creature constructs a ready-to-fight creature from a monster template key,
// rolling HP with src.
//
// Precondition: src must be non-nil.
func (l *Library) Creature(key string, src dice.Source) (*creature.Creature, error) {
	cfg, err := l.Config(key)
	if err != nil {
		return nil, err
	}
	c, err := creature.New(cfg, src)
	if err != nil {
		return nil, fmt.Errorf("template: monster %q: %w", key, err)
	}
	return c, nil
}
