package trait_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/trait"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

type fixedSrc struct{ val int }

func (f fixedSrc) Intn(_ int) int { return f.val }

func intPtr(v int) *int { return &v }

func makeCreature(t *testing.T, name string, size rules.Size) *creature.Creature {
	t.Helper()
	dmg, err := weapon.ParseDamageRoll("1d4 bludgeoning")
	require.NoError(t, err)
	c, err := creature.New(creature.Config{
		Name:        name,
		AC:          12,
		HP:          "10",
		Abilities:   creature.Abilities{Str: 10, Dex: 10, Con: 10, Int: 10, Wis: 10, Cha: 10},
		Proficiency: intPtr(2),
		Size:        size,
		Weapons: []*weapon.Weapon{{
			Name: "club", Melee: true, Damage: &dmg,
			IsWeapon: true, Kind: "simple", Quantity: 1, Proficient: true,
		}},
	}, fixedSrc{val: 0})
	require.NoError(t, err)
	return c
}

func makeBattle(t *testing.T, attacker, target *creature.Creature, allies ...*creature.Creature) *battle.Battle {
	t.Helper()
	red := &battle.Team{Name: "red", Creatures: append([]*creature.Creature{attacker}, allies...)}
	blue := &battle.Team{Name: "blue", Creatures: []*creature.Creature{target}}
	return battle.New(red, blue)
}

func TestGrappler_AdvantageAgainstOwnGrappleTarget(t *testing.T) {
	attacker := makeCreature(t, "mimic", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	b := makeBattle(t, attacker, target)
	b.AddCondition(&battle.TempCondition{
		Condition:  rules.Grappled,
		TargetID:   target.ID,
		CausedByID: attacker.ID,
	})

	mods := trait.Grappler{}.ModifyAttackRoll(attacker, target, b)

	require.Len(t, mods, 1)
	assert.Equal(t, dice.WithAdvantage, mods[0].Effect)
}

func TestGrappler_NoAdvantageAgainstSomeoneElsesGrapple(t *testing.T) {
	attacker := makeCreature(t, "mimic", rules.Medium)
	ally := makeCreature(t, "other mimic", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	b := makeBattle(t, attacker, target, ally)
	b.AddCondition(&battle.TempCondition{
		Condition:  rules.Grappled,
		TargetID:   target.ID,
		CausedByID: ally.ID,
	})

	assert.Empty(t, trait.Grappler{}.ModifyAttackRoll(attacker, target, b))
}

func TestPackTactics_AllyAdjacentToTarget(t *testing.T) {
	attacker := makeCreature(t, "gnoll", rules.Medium)
	ally := makeCreature(t, "hyena", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	target.Position = rules.Point{X: 30}
	ally.Position = rules.Point{X: 25}
	b := makeBattle(t, attacker, target, ally)

	mods := trait.PackTactics{}.ModifyAttackRoll(attacker, target, b)

	require.Len(t, mods, 1)
	assert.Equal(t, dice.WithAdvantage, mods[0].Effect)
}

func TestPackTactics_IncapacitatedAllyDoesNotCount(t *testing.T) {
	attacker := makeCreature(t, "gnoll", rules.Medium)
	ally := makeCreature(t, "hyena", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	target.Position = rules.Point{X: 30}
	ally.Position = rules.Point{X: 25}
	ally.AddCondition(rules.Unconscious)
	b := makeBattle(t, attacker, target, ally)

	assert.Empty(t, trait.PackTactics{}.ModifyAttackRoll(attacker, target, b))
}

func TestPackTactics_DistantAllyDoesNotCount(t *testing.T) {
	attacker := makeCreature(t, "gnoll", rules.Medium)
	ally := makeCreature(t, "hyena", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	target.Position = rules.Point{X: 30}
	ally.Position = rules.Point{X: 10}
	b := makeBattle(t, attacker, target, ally)

	assert.Empty(t, trait.PackTactics{}.ModifyAttackRoll(attacker, target, b))
}

func TestMartialAdvantage_OncePerRound(t *testing.T) {
	attacker := makeCreature(t, "hobgoblin", rules.Medium)
	ally := makeCreature(t, "goblin", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	b := makeBattle(t, attacker, target, ally)
	b.StartRound()

	ma := &trait.MartialAdvantage{}
	src := fixedSrc{val: 2} // every d6 rolls 3

	dmg := &weapon.AttackDamage{}
	dmg.Add(rules.Slashing, 5)
	ma.ModifyDamage(attacker, target, dmg, b, src)
	assert.Equal(t, 11, dmg.Total(), "first use adds 2d6")

	dmg2 := &weapon.AttackDamage{}
	dmg2.Add(rules.Slashing, 5)
	ma.ModifyDamage(attacker, target, dmg2, b, src)
	assert.Equal(t, 5, dmg2.Total(), "second use in the same round adds nothing")

	b.StartRound()
	dmg3 := &weapon.AttackDamage{}
	dmg3.Add(rules.Slashing, 5)
	ma.ModifyDamage(attacker, target, dmg3, b, src)
	assert.Equal(t, 11, dmg3.Total(), "resets on a new round")
}

func TestMartialAdvantage_RequiresAdjacentAlly(t *testing.T) {
	attacker := makeCreature(t, "hobgoblin", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	b := makeBattle(t, attacker, target)
	b.StartRound()

	dmg := &weapon.AttackDamage{}
	dmg.Add(rules.Slashing, 5)
	(&trait.MartialAdvantage{}).ModifyDamage(attacker, target, dmg, b, fixedSrc{val: 2})

	assert.Equal(t, 5, dmg.Total())
}

func TestMartialAdvantage_SkipsDamagelessHit(t *testing.T) {
	attacker := makeCreature(t, "hobgoblin", rules.Medium)
	ally := makeCreature(t, "goblin", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	b := makeBattle(t, attacker, target, ally)
	b.StartRound()

	// A net hit carries no damage components; the bonus has nothing to
	// attach to and must not fire (or consume the once-per-round use).
	ma := &trait.MartialAdvantage{}
	dmg := &weapon.AttackDamage{}
	assert.NotPanics(t, func() {
		ma.ModifyDamage(attacker, target, dmg, b, fixedSrc{val: 2})
	})
	assert.Zero(t, dmg.Total())

	followUp := &weapon.AttackDamage{}
	followUp.Add(rules.Piercing, 5)
	ma.ModifyDamage(attacker, target, followUp, b, fixedSrc{val: 2})
	assert.Equal(t, 11, followUp.Total(), "the round's bonus is still available")
}

func TestRampage_BonusMovementOnKill(t *testing.T) {
	attacker := makeCreature(t, "gnoll", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	b := makeBattle(t, attacker, target)
	attacker.ResetTurn()

	trait.Rampage{}.AfterDealingDamage(attacker, target, rules.DeadOutcome, b)
	assert.Equal(t, float64(attacker.Speed)+float64(attacker.Speed)/2, attacker.RemainingMovement)

	attacker.ResetTurn()
	trait.Rampage{}.AfterDealingDamage(attacker, target, rules.Alive, b)
	assert.Equal(t, float64(attacker.Speed), attacker.RemainingMovement)
}

func TestUndeadFortitude_SuccessfulSaveReanimates(t *testing.T) {
	zombie := makeCreature(t, "zombie", rules.Medium)
	dmg := &weapon.AttackDamage{}
	dmg.Add(rules.Slashing, 3) // save DC 8

	outcome := trait.UndeadFortitude{}.AfterDamageTaken(zombie, dmg, rules.KnockedOut, fixedSrc{val: 9})

	assert.Equal(t, rules.Reanimated, outcome)
	assert.Equal(t, 1, zombie.HP)
}

func TestUndeadFortitude_FailedSaveKeepsOutcome(t *testing.T) {
	zombie := makeCreature(t, "zombie", rules.Medium)
	dmg := &weapon.AttackDamage{}
	dmg.Add(rules.Slashing, 3)

	outcome := trait.UndeadFortitude{}.AfterDamageTaken(zombie, dmg, rules.DeadOutcome, fixedSrc{val: 2})

	assert.Equal(t, rules.DeadOutcome, outcome)
}

func TestUndeadFortitude_NeverTriggersOnCritOrRadiant(t *testing.T) {
	zombie := makeCreature(t, "zombie", rules.Medium)

	crit := &weapon.AttackDamage{FromCrit: true}
	crit.Add(rules.Slashing, 3)
	assert.Equal(t, rules.DeadOutcome,
		trait.UndeadFortitude{}.AfterDamageTaken(zombie, crit, rules.DeadOutcome, fixedSrc{val: 19}))

	radiant := &weapon.AttackDamage{}
	radiant.Add(rules.Radiant, 3)
	assert.Equal(t, rules.KnockedOut,
		trait.UndeadFortitude{}.AfterDamageTaken(zombie, radiant, rules.KnockedOut, fixedSrc{val: 19}))
}

func TestUndeadFortitude_IgnoresNonLethalAndInstantDeath(t *testing.T) {
	zombie := makeCreature(t, "zombie", rules.Medium)
	dmg := &weapon.AttackDamage{}
	dmg.Add(rules.Slashing, 3)

	assert.Equal(t, rules.Alive,
		trait.UndeadFortitude{}.AfterDamageTaken(zombie, dmg, rules.Alive, fixedSrc{val: 19}))
	assert.Equal(t, rules.InstantDeath,
		trait.UndeadFortitude{}.AfterDamageTaken(zombie, dmg, rules.InstantDeath, fixedSrc{val: 19}))
}

func TestAdhesive_GrapplesUpToHuge(t *testing.T) {
	mimic := makeCreature(t, "mimic", rules.Medium)
	giant := makeCreature(t, "giant", rules.Huge)
	b := makeBattle(t, mimic, giant)

	tc := trait.Adhesive{}.OnHit(mimic, giant, b)

	require.NotNil(t, tc)
	assert.Equal(t, rules.Grappled, tc.Condition)
	assert.Equal(t, giant.ID, tc.TargetID)
	assert.Equal(t, mimic.ID, tc.CausedByID)
	assert.Equal(t, 13, tc.EscapeDC)
}

func TestAdhesive_GargantuanTooBig(t *testing.T) {
	mimic := makeCreature(t, "mimic", rules.Medium)
	dragon := makeCreature(t, "dragon", rules.Gargantuan)
	b := makeBattle(t, mimic, dragon)

	assert.Nil(t, trait.Adhesive{}.OnHit(mimic, dragon, b))
}

func TestNet_RestrainsUpToLarge(t *testing.T) {
	hunter := makeCreature(t, "hunter", rules.Medium)
	ogre := makeCreature(t, "ogre", rules.Large)
	b := makeBattle(t, hunter, ogre)

	tc := trait.Net{}.OnHit(hunter, ogre, b)

	require.NotNil(t, tc)
	assert.Equal(t, rules.Restrained, tc.Condition)
	assert.Empty(t, tc.CausedByID)
	assert.Equal(t, 10, tc.EscapeDC)
	assert.Equal(t, rules.Strength, tc.EscapeAbility)
}

func TestNet_HugeTooBig(t *testing.T) {
	hunter := makeCreature(t, "hunter", rules.Medium)
	giant := makeCreature(t, "giant", rules.Huge)
	b := makeBattle(t, hunter, giant)

	assert.Nil(t, trait.Net{}.OnHit(hunter, giant, b))
}

func TestLance_DisadvantageWithinFiveFeet(t *testing.T) {
	rider := makeCreature(t, "rider", rules.Medium)
	target := makeCreature(t, "adventurer", rules.Medium)
	b := makeBattle(t, rider, target)

	mods := trait.Lance{}.ModifyAttackRoll(rider, target, b)
	require.Len(t, mods, 1)
	assert.Equal(t, dice.WithDisadvantage, mods[0].Effect)

	target.Position = rules.Point{X: 10}
	assert.Empty(t, trait.Lance{}.ModifyAttackRoll(rider, target, b))
}

func TestForCreature_ResolvesKnownAndDropsUnknown(t *testing.T) {
	c := makeCreature(t, "gnoll", rules.Medium)
	c.TraitKeys = []string{"pack_tactics", "rampage", "keen_smell"}

	traits := trait.ForCreature(c, zap.NewNop())

	require.Len(t, traits, 2)
	assert.Equal(t, "pack_tactics", traits[0].Name())
	assert.Equal(t, "rampage", traits[1].Name())
}

func TestForWeapon_ResolvesKnownAndDropsUnknown(t *testing.T) {
	w := &weapon.Weapon{Name: "net", Melee: false, RangeNormal: 5, RangeLong: 15, TraitKeys: []string{"net", "silvered"}}

	traits := trait.ForWeapon(w, zap.NewNop())

	require.Len(t, traits, 1)
	assert.Equal(t, "net", traits[0].Name())
}

func TestForCreature_FreshInstancesPerCall(t *testing.T) {
	c := makeCreature(t, "hobgoblin", rules.Medium)
	c.TraitKeys = []string{"martial_advantage"}

	first := trait.ForCreature(c, zap.NewNop())
	second := trait.ForCreature(c, zap.NewNop())

	require.Len(t, first, 1)
	require.Len(t, second, 1)
	assert.NotSame(t, first[0], second[0])
}
