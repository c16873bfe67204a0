// Package template loads the shipped weapon and monster catalogues from YAML
// and turns template keys into creature configurations. The rest of the
// engine sees it as a pure key -> definition provider; the file format never
// leaks past this package.
package template

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/fellhaven/dndsim/internal/game/weapon"
)

// WeaponDef is one reusable weapon or natural attack loaded from the weapon
// catalogue. The catalogue file maps key -> definition; keys are referenced
// from monster templates.
type WeaponDef struct {
	// Name overrides the display name; defaults to the catalogue key.
	Name  string `yaml:"name"`
	Melee bool   `yaml:"melee"`
	// Damage, TwoHandedDamage and BonusDamage are "<dice> <type>" formulas,
	// e.g. "1d8 slashing".
	Damage          string `yaml:"damage"`
	TwoHandedDamage string `yaml:"two_handed_damage"`
	BonusDamage     string `yaml:"bonus_damage"`
	RangeNormal     int    `yaml:"range_normal"`
	RangeLong       int    `yaml:"range_long"`
	// Kind is "simple", "martial" or "monster".
	Kind string `yaml:"kind"`
	// Natural marks a natural attack (bite, slam, pseudopod): never thrown
	// and never scaled by wielder size.
	Natural bool `yaml:"natural"`

	Ammunition bool `yaml:"ammunition"`
	Finesse    bool `yaml:"finesse"`
	Heavy      bool `yaml:"heavy"`
	Light      bool `yaml:"light"`
	Loading    bool `yaml:"loading"`
	Reach      bool `yaml:"reach"`
	Thrown     bool `yaml:"thrown"`

	// Quantity is explicit ammo or thrown count; 0 defers to the rolled
	// default (2d10 rounds, 2d4 thrown copies).
	Quantity int      `yaml:"quantity"`
	Traits   []string `yaml:"traits"`
}

// Build constructs the weapon this definition describes. The result is a
// prototype: creature construction clones it per owner.
//
// Postcondition: Returns a validated *weapon.Weapon, or an error naming key.
func (d *WeaponDef) Build(key string) (*weapon.Weapon, error) {
	name := d.Name
	if name == "" {
		name = key
	}
	w := &weapon.Weapon{
		Name:        name,
		Melee:       d.Melee,
		RangeNormal: d.RangeNormal,
		RangeLong:   d.RangeLong,
		IsWeapon:    !d.Natural,
		Kind:        d.Kind,
		Ammunition:  d.Ammunition,
		Finesse:     d.Finesse,
		Heavy:       d.Heavy,
		Light:       d.Light,
		Loading:     d.Loading,
		Reach:       d.Reach,
		Thrown:      d.Thrown,
		Quantity:    d.Quantity,
		Proficient:  true,
		TraitKeys:   append([]string(nil), d.Traits...),
	}
	var err error
	if w.Damage, err = parseDamage(d.Damage); err != nil {
		return nil, fmt.Errorf("weapon %q: damage: %w", key, err)
	}
	if w.TwoHanded, err = parseDamage(d.TwoHandedDamage); err != nil {
		return nil, fmt.Errorf("weapon %q: two_handed_damage: %w", key, err)
	}
	if w.Bonus, err = parseDamage(d.BonusDamage); err != nil {
		return nil, fmt.Errorf("weapon %q: bonus_damage: %w", key, err)
	}
	if err := w.Validate(); err != nil {
		return nil, fmt.Errorf("weapon %q: %w", key, err)
	}
	return w, nil
}

func parseDamage(s string) (*weapon.DamageRoll, error) {
	if s == "" {
		return nil, nil
	}
	roll, err := weapon.ParseDamageRoll(s)
	if err != nil {
		return nil, err
	}
	return &roll, nil
}

// LoadWeaponsFromBytes parses a weapon catalogue from raw YAML bytes: a
// mapping from key to definition.
//
// Postcondition: Every returned definition builds without error.
func LoadWeaponsFromBytes(data []byte) (map[string]*WeaponDef, error) {
	defs := make(map[string]*WeaponDef)
	if err := yaml.Unmarshal(data, &defs); err != nil {
		return nil, fmt.Errorf("parsing weapon catalogue YAML: %w", err)
	}
	for key, def := range defs {
		if _, err := def.Build(key); err != nil {
			return nil, err
		}
	}
	return defs, nil
}

// LoadWeapons reads the weapon catalogue at path.
func LoadWeapons(path string) (map[string]*WeaponDef, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading weapon catalogue %q: %w", path, err)
	}
	defs, err := LoadWeaponsFromBytes(data)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", path, err)
	}
	return defs, nil
}
