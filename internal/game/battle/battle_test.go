package battle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/fellhaven/dndsim/internal/game/battle"
	"github.com/fellhaven/dndsim/internal/game/creature"
	"github.com/fellhaven/dndsim/internal/game/dice"
	"github.com/fellhaven/dndsim/internal/game/rules"
	"github.com/fellhaven/dndsim/internal/game/weapon"
)

func intPtr(i int) *int { return &i }

func newCreature(t *testing.T, name string) *creature.Creature {
	t.Helper()
	dmg, err := weapon.ParseDamageRoll("1d4 bludgeoning")
	require.NoError(t, err)
	c, err := creature.New(creature.Config{
		Name:        name,
		AC:          10,
		HP:          "10",
		Abilities:   creature.Abilities{Str: 10, Dex: 10, Con: 10, Int: 10, Wis: 10, Cha: 10},
		Proficiency: intPtr(2),
		Weapons: []*weapon.Weapon{{
			Name: "club", Melee: true, Damage: &dmg, IsWeapon: true, Quantity: 1, Proficient: true,
		}},
	}, dice.NewSeededSource(1))
	require.NoError(t, err)
	return c
}

func newBattle(t *testing.T) (*battle.Battle, *creature.Creature, *creature.Creature) {
	t.Helper()
	a := newCreature(t, "A")
	b := newCreature(t, "B")
	bt := battle.New(
		&battle.Team{Name: "red", Creatures: []*creature.Creature{a}},
		&battle.Team{Name: "blue", Creatures: []*creature.Creature{b}},
	)
	return bt, a, b
}

func TestCreatureLookup(t *testing.T) {
	bt, a, _ := newBattle(t)

	got, ok := bt.Creature(a.ID)
	require.True(t, ok)
	assert.Same(t, a, got)

	_, ok = bt.Creature("nope")
	assert.False(t, ok)
}

func TestAlliesAndEnemies(t *testing.T) {
	a := newCreature(t, "A")
	a2 := newCreature(t, "A2")
	b := newCreature(t, "B")
	bt := battle.New(
		&battle.Team{Name: "red", Creatures: []*creature.Creature{a, a2}},
		&battle.Team{Name: "blue", Creatures: []*creature.Creature{b}},
	)

	allies := bt.Allies(a)
	require.Len(t, allies, 1)
	assert.Same(t, a2, allies[0], "a creature is not its own ally")

	enemies := bt.Enemies(a)
	require.Len(t, enemies, 1)
	assert.Same(t, b, enemies[0])
}

func TestLivingEnemiesExcludesDead(t *testing.T) {
	bt, a, b := newBattle(t)

	require.Len(t, bt.LivingEnemies(a), 1)

	dmg := &weapon.AttackDamage{}
	dmg.Add(rules.Bludgeoning, 100)
	b.TakeDamage(dmg, false)
	require.True(t, b.IsDead())

	assert.Empty(t, bt.LivingEnemies(a))
}

func TestAddConditionDuplicateIsNoOp(t *testing.T) {
	bt, a, b := newBattle(t)

	tc := &battle.TempCondition{Condition: rules.Grappled, TargetID: b.ID, CausedByID: a.ID}
	assert.True(t, bt.AddCondition(tc))
	assert.False(t, bt.AddCondition(&battle.TempCondition{
		Condition: rules.Grappled, TargetID: b.ID, CausedByID: a.ID,
	}))

	// A different causer is a distinct entry.
	assert.True(t, bt.AddCondition(&battle.TempCondition{
		Condition: rules.Grappled, TargetID: b.ID,
	}))
	assert.Len(t, bt.ActiveConditions(b), 2)
}

func TestAddConditionUnknownTargetPanics(t *testing.T) {
	bt, _, _ := newBattle(t)
	assert.Panics(t, func() {
		bt.AddCondition(&battle.TempCondition{Condition: rules.Grappled, TargetID: "ghost"})
	})
}

func TestRemoveCondition(t *testing.T) {
	bt, a, b := newBattle(t)

	tc := &battle.TempCondition{Condition: rules.Restrained, TargetID: b.ID, CausedByID: a.ID}
	require.True(t, bt.AddCondition(tc))
	assert.True(t, bt.RemoveCondition(tc))
	assert.False(t, bt.RemoveCondition(tc), "second removal finds nothing")
	assert.Empty(t, bt.ActiveConditions(b))
}

func TestConditionEndsWhenTargetDies(t *testing.T) {
	bt, a, b := newBattle(t)

	require.True(t, bt.AddCondition(&battle.TempCondition{
		Condition: rules.Grappled, TargetID: b.ID, CausedByID: a.ID,
	}))
	require.Len(t, bt.ActiveConditions(b), 1)

	dmg := &weapon.AttackDamage{}
	dmg.Add(rules.Bludgeoning, 100)
	b.TakeDamage(dmg, false)

	assert.Empty(t, bt.ActiveConditions(b), "default end trigger fires on target death")
}

func TestConditionEndsWhenCauserDrops(t *testing.T) {
	bt, a, b := newBattle(t)

	require.True(t, bt.AddCondition(&battle.TempCondition{
		Condition:   rules.Grappled,
		TargetID:    b.ID,
		CausedByID:  a.ID,
		EndOnCauser: []rules.Condition{rules.Dead, rules.Incapacitated},
	}))
	require.True(t, bt.HasCondition(b, rules.Grappled))

	a.AddCondition(rules.Paralyzed)

	assert.False(t, bt.HasCondition(b, rules.Grappled),
		"a paralyzed grappler is incapacitated, releasing the grapple")
}

func TestConditionWithoutCauserSurvivesCauserState(t *testing.T) {
	bt, a, b := newBattle(t)

	// A net has no maintainer: only the target's own state ends it.
	require.True(t, bt.AddCondition(&battle.TempCondition{
		Condition: rules.Restrained, TargetID: b.ID, EscapeDC: 10,
	}))
	a.AddCondition(rules.Unconscious)

	assert.True(t, bt.HasCondition(b, rules.Restrained))
}

func TestHasConditionMergesPersistentAndLedger(t *testing.T) {
	bt, _, b := newBattle(t)

	assert.False(t, bt.HasCondition(b, rules.Poisoned))
	b.AddCondition(rules.Poisoned)
	assert.True(t, bt.HasCondition(b, rules.Poisoned))

	assert.False(t, bt.HasCondition(b, rules.Restrained))
	bt.AddCondition(&battle.TempCondition{Condition: rules.Restrained, TargetID: b.ID})
	assert.True(t, bt.HasCondition(b, rules.Restrained))
}

func TestStartRound(t *testing.T) {
	bt, _, _ := newBattle(t)
	assert.Equal(t, 0, bt.Round)
	bt.StartRound()
	bt.StartRound()
	assert.Equal(t, 2, bt.Round)
}

func TestNetAdvantage(t *testing.T) {
	adv := battle.Modifier{Reason: "pack tactics", Effect: dice.WithAdvantage}
	dis := battle.Modifier{Reason: "long range", Effect: dice.WithDisadvantage}

	assert.Equal(t, dice.Straight, battle.NetAdvantage(nil))
	assert.Equal(t, dice.WithAdvantage, battle.NetAdvantage([]battle.Modifier{adv}))
	assert.Equal(t, dice.WithDisadvantage, battle.NetAdvantage([]battle.Modifier{dis}))
	assert.Equal(t, dice.Straight, battle.NetAdvantage([]battle.Modifier{adv, dis}))
	assert.Equal(t, dice.WithAdvantage, battle.NetAdvantage([]battle.Modifier{adv, adv, adv}),
		"advantage never stacks past a single step")
}

// TestNetAdvantage_Property: the cancellation rule depends only on the
// presence of each side, never the counts.
func TestNetAdvantage_Property(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		nAdv := rapid.IntRange(0, 5).Draw(rt, "advantages")
		nDis := rapid.IntRange(0, 5).Draw(rt, "disadvantages")

		var mods []battle.Modifier
		for i := 0; i < nAdv; i++ {
			mods = append(mods, battle.Modifier{Reason: "adv", Effect: dice.WithAdvantage})
		}
		for i := 0; i < nDis; i++ {
			mods = append(mods, battle.Modifier{Reason: "dis", Effect: dice.WithDisadvantage})
		}

		got := battle.NetAdvantage(mods)
		switch {
		case nAdv > 0 && nDis == 0:
			assert.Equal(rt, dice.WithAdvantage, got)
		case nDis > 0 && nAdv == 0:
			assert.Equal(rt, dice.WithDisadvantage, got)
		default:
			assert.Equal(rt, dice.Straight, got)
		}
	})
}

func TestTempConditionString(t *testing.T) {
	tc := &battle.TempCondition{Condition: rules.Grappled, TargetID: "t1", CausedByID: "c1"}
	assert.Equal(t, "grappled on t1 by c1", tc.String())

	tc = &battle.TempCondition{Condition: rules.Restrained, TargetID: "t1"}
	assert.Equal(t, "restrained on t1", tc.String())
}
