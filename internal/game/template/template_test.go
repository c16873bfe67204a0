package template_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/template"
)

const weaponYAML = `
scimitar:
  melee: true
  damage: 1d6 slashing
  kind: martial
  finesse: true
  light: true
shortbow:
  damage: 1d6 piercing
  kind: simple
  ammunition: true
  range_normal: 80
  range_long: 320
net:
  kind: martial
  thrown: true
  range_normal: 5
  range_long: 15
  traits: [net]
`

const goblinYAML = `
key: goblin
name: Goblin
ac: 15
hp: 2d6
abilities: [8, 14, 10, 10, 8, 8]
cr: 0.25
type: humanoid
size: small
has_shield: true
weapons: [scimitar, shortbow]
senses: [darkvision]
`

func loadTestLibrary(t *testing.T) *template.Library {
	t.Helper()
	weapons, err := template.LoadWeaponsFromBytes([]byte(weaponYAML))
	require.NoError(t, err)
	goblin, err := template.LoadMonsterFromBytes([]byte(goblinYAML))
	require.NoError(t, err)
	lib, err := template.New(weapons, map[string]*template.MonsterDef{goblin.Key: goblin})
	require.NoError(t, err)
	return lib
}

func TestLoadWeaponsFromBytes(t *testing.T) {
	defs, err := template.LoadWeaponsFromBytes([]byte(weaponYAML))
	require.NoError(t, err)
	require.Len(t, defs, 3)

	assert.True(t, defs["scimitar"].Melee)
	assert.True(t, defs["scimitar"].Finesse)
	assert.Equal(t, "1d6 slashing", defs["scimitar"].Damage)
	assert.Equal(t, 320, defs["shortbow"].RangeLong)
	assert.Equal(t, []string{"net"}, defs["net"].Traits)
}

func TestLoadWeaponsFromBytesRejectsBadFormula(t *testing.T) {
	_, err := template.LoadWeaponsFromBytes([]byte("club:\n  melee: true\n  damage: banana\n  kind: simple\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "club")
}

func TestWeaponDefBuild(t *testing.T) {
	defs, err := template.LoadWeaponsFromBytes([]byte(weaponYAML))
	require.NoError(t, err)

	w, err := defs["scimitar"].Build("scimitar")
	require.NoError(t, err)
	assert.Equal(t, "scimitar", w.Name, "display name defaults to the key")
	assert.True(t, w.Proficient)
	require.NotNil(t, w.Damage)
	assert.Equal(t, rules.Slashing, w.Damage.Type)

	named := &template.WeaponDef{Name: "light crossbow", Damage: "1d8 piercing", Kind: "simple", RangeNormal: 80, RangeLong: 320}
	w, err = named.Build("light_crossbow")
	require.NoError(t, err)
	assert.Equal(t, "light crossbow", w.Name)
}

func TestWeaponDefBuildDamagelessNeedsTrait(t *testing.T) {
	bare := &template.WeaponDef{Melee: true, Kind: "martial"}
	_, err := bare.Build("pommel")
	require.Error(t, err)

	netDef := &template.WeaponDef{Kind: "martial", Thrown: true, RangeNormal: 5, RangeLong: 15, Traits: []string{"net"}}
	w, err := netDef.Build("net")
	require.NoError(t, err)
	assert.Nil(t, w.Damage)
}

func TestLoadMonsterFromBytes(t *testing.T) {
	def, err := template.LoadMonsterFromBytes([]byte(goblinYAML))
	require.NoError(t, err)
	assert.Equal(t, "goblin", def.Key)
	assert.Equal(t, 15, def.AC)
	assert.Equal(t, []int{8, 14, 10, 10, 8, 8}, def.Abilities)
	require.NotNil(t, def.CR)
	assert.Equal(t, 0.25, *def.CR)
}

func TestLoadMonsterFromBytesValidation(t *testing.T) {
	cases := map[string]string{
		"missing key":       "name: Goblin\nac: 15\nhp: 2d6\nabilities: [8, 14, 10, 10, 8, 8]\ncr: 0.25\nweapons: [scimitar]\n",
		"short abilities":   "key: goblin\nname: Goblin\nac: 15\nhp: 2d6\nabilities: [8, 14, 10]\ncr: 0.25\nweapons: [scimitar]\n",
		"no cr or prof":     "key: goblin\nname: Goblin\nac: 15\nhp: 2d6\nabilities: [8, 14, 10, 10, 8, 8]\nweapons: [scimitar]\n",
		"no weapons":        "key: goblin\nname: Goblin\nac: 15\nhp: 2d6\nabilities: [8, 14, 10, 10, 8, 8]\ncr: 0.25\n",
		"bad size":          "key: goblin\nname: Goblin\nac: 15\nhp: 2d6\nabilities: [8, 14, 10, 10, 8, 8]\ncr: 0.25\nsize: enormous\nweapons: [scimitar]\n",
		"bad creature type": "key: goblin\nname: Goblin\nac: 15\nhp: 2d6\nabilities: [8, 14, 10, 10, 8, 8]\ncr: 0.25\ntype: imp\nweapons: [scimitar]\n",
		"bad damage type":   "key: goblin\nname: Goblin\nac: 15\nhp: 2d6\nabilities: [8, 14, 10, 10, 8, 8]\ncr: 0.25\nweapons: [scimitar]\nresistances: [sarcasm]\n",
		"bad condition":     "key: goblin\nname: Goblin\nac: 15\nhp: 2d6\nabilities: [8, 14, 10, 10, 8, 8]\ncr: 0.25\nweapons: [scimitar]\ncondition_immunities: [grumpy]\n",
	}
	for name, yaml := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := template.LoadMonsterFromBytes([]byte(yaml))
			assert.Error(t, err)
		})
	}
}

func TestNewRejectsUnknownWeaponKey(t *testing.T) {
	weapons, err := template.LoadWeaponsFromBytes([]byte(weaponYAML))
	require.NoError(t, err)
	bad, err := template.LoadMonsterFromBytes([]byte(
		"key: gremlin\nname: Gremlin\nac: 12\nhp: 1d6\nabilities: [8, 14, 10, 10, 8, 8]\ncr: 0.25\nweapons: [spanner]\n"))
	require.NoError(t, err)

	_, err = template.New(weapons, map[string]*template.MonsterDef{"gremlin": bad})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "spanner")
}

func TestLibraryConfig(t *testing.T) {
	lib := loadTestLibrary(t)

	cfg, err := lib.Config("goblin")
	require.NoError(t, err)
	assert.Equal(t, "Goblin", cfg.Name)
	assert.Equal(t, 15, cfg.AC)
	assert.Equal(t, 14, cfg.Abilities.Dex)
	assert.Equal(t, rules.Humanoid, cfg.Type)
	assert.Equal(t, rules.Small, cfg.Size)
	assert.True(t, cfg.HasShield)
	assert.Equal(t, []rules.Sense{rules.Darkvision}, cfg.Senses)
	require.Len(t, cfg.Weapons, 2)
	assert.Equal(t, "scimitar", cfg.Weapons[0].Name)

	_, err = lib.Config("tarrasque")
	assert.Error(t, err)
}

func TestLibraryConfigIsPure(t *testing.T) {
	lib := loadTestLibrary(t)

	first, err := lib.Config("goblin")
	require.NoError(t, err)
	second, err := lib.Config("goblin")
	require.NoError(t, err)

	// Each call builds fresh weapons so one creature's ammo use cannot leak
	// into the next.
	assert.NotSame(t, first.Weapons[0], second.Weapons[0])
}

func TestLibraryCreature(t *testing.T) {
	lib := loadTestLibrary(t)
	src := dice.NewSeededSource(7)

	c, err := lib.Creature("goblin", src)
	require.NoError(t, err)
	assert.Equal(t, "Goblin", c.Name)
	assert.Equal(t, c.MaxHP, c.HP)
	assert.GreaterOrEqual(t, c.MaxHP, 2)
	assert.LessOrEqual(t, c.MaxHP, 12)
}

func TestMonsterKeysSorted(t *testing.T) {
	weapons, err := template.LoadWeaponsFromBytes([]byte(weaponYAML))
	require.NoError(t, err)
	defs := make(map[string]*template.MonsterDef)
	for _, key := range []string{"zombie", "goblin", "orc"} {
		defs[key] = &template.MonsterDef{
			Key: key, Name: key, AC: 10, HP: "2d6",
			Abilities: []int{10, 10, 10, 10, 10, 10},
			CR:        floatPtr(0.25), Weapons: []string{"scimitar"},
		}
	}
	lib, err := template.New(weapons, defs)
	require.NoError(t, err)
	assert.Equal(t, []string{"goblin", "orc", "zombie"}, lib.MonsterKeys())
}

func TestLoadShippedContent(t *testing.T) {
	lib, err := template.Load("../../../content")
	require.NoError(t, err)
	assert.NotEmpty(t, lib.MonsterKeys())

	src := dice.NewSeededSource(1)
	for _, key := range lib.MonsterKeys() {
		_, err := lib.Creature(key, src)
		assert.NoError(t, err, "monster %q must build", key)
	}
}

func floatPtr(f float64) *float64 { return &f }
