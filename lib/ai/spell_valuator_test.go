package ai

import (
	"testing"

	"github.com/turnforge/heroesai/lib"
	"github.com/turnforge/heroesai/lib/battle"
	"github.com/turnforge/heroesai/lib/spell"
)

func testSpellTable() *spell.Table {
	return spell.NewTable([]*spell.Definition{
		{ID: spell.FireBall, Family: spell.FamilyDirectDamage, Cost: 3, Damage: 100, IsCombat: true},
		{ID: spell.ChainLightning, Family: spell.FamilyDirectDamage, Cost: 6, Damage: 50, IsArea: true, IsCombat: true},
		{ID: spell.Bless, Family: spell.FamilyBuffDebuff, Cost: 2, IsCombat: true},
		{ID: spell.Resurrect, Family: spell.FamilyResurrect, Cost: 5, Restore: 500, IsCombat: true},
		{ID: spell.Hypnotize, Family: spell.FamilyBuffDebuff, Cost: 15, ExtraValue: 25, IsCombat: true},
	})
}

func TestBestSpellSkipsUnaffordableAndNonCombat(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	target := newArenaUnit(1, lib.ColorRed, 10)
	target.HP, target.MaxHP, target.Count = 5, 5, 1
	arena.PlaceUnit(target)

	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	caster := &lib.Hero{}
	bc := BattleContext{MyStrength: 1000, EnemyStrength: 10}

	got := sv.BestSpell(caster, []spell.ID{spell.FireBall}, 1, bc, false, lib.ColorBlue)
	if got.Spell != spell.None {
		t.Fatalf("a spell costing more than the available points must never be selected, got %v", got.Spell)
	}
}

func TestBestSpellNeverAutoSelectsResurrect(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	wounded := newArenaUnit(1, lib.ColorBlue, 10)
	wounded.HP, wounded.MaxHP, wounded.Count = 1, 10, 5
	arena.PlaceUnit(wounded)

	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	caster := &lib.Hero{}
	bc := BattleContext{MyStrength: 1, EnemyStrength: 1}

	got := sv.BestSpell(caster, []spell.ID{spell.Resurrect}, 10, bc, false, lib.ColorBlue)
	if got.Spell != spell.None {
		t.Fatalf("Resurrect must never be auto-selected by BestSpell, got %v", got.Spell)
	}
}

func TestBestSpellReturnsNoneWhileRetreating(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	target := newArenaUnit(1, lib.ColorRed, 10)
	target.HP, target.MaxHP, target.Count = 1, 1, 1
	arena.PlaceUnit(target)

	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	caster := &lib.Hero{}
	bc := BattleContext{MyStrength: 1000, EnemyStrength: 1, Retreating: true}

	got := sv.BestSpell(caster, []spell.ID{spell.FireBall}, 10, bc, false, lib.ColorBlue)
	if got.Spell != spell.None {
		t.Fatalf("a retreating caster must never be offered a spell by BestSpell, got %v", got.Spell)
	}
}

// TestHighestDamageAffordableBypassesThreshold implements the farewell-cast
// path of spec.md S2/4.4: even with a threshold no spell could clear, the
// best affordable direct-damage spell is still returned.
func TestHighestDamageAffordableBypassesThreshold(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	target := newArenaUnit(1, lib.ColorRed, 10)
	target.HP, target.MaxHP, target.Count = 1000, 1000, 100
	arena.PlaceUnit(target)

	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	got := sv.HighestDamageAffordable([]spell.ID{spell.FireBall, spell.ChainLightning}, 10, lib.ColorBlue)
	if got.Spell == spell.None {
		t.Fatalf("an affordable direct-damage spell must be returned regardless of threshold")
	}
}

func TestHighestDamageAffordableIgnoresUnaffordable(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	target := newArenaUnit(1, lib.ColorRed, 10)
	arena.PlaceUnit(target)

	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	got := sv.HighestDamageAffordable([]spell.ID{spell.ChainLightning}, 2, lib.ColorBlue)
	if got.Spell != spell.None {
		t.Fatalf("a spell costing more than available points must not be selected, got %v", got.Spell)
	}
}

func TestScoreDirectDamageLethalHitOutscoresChipDamage(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	weak := newArenaUnit(1, lib.ColorRed, 10)
	weak.HP, weak.MaxHP, weak.Count, weak.Speed = 10, 10, 1, 4
	strong := newArenaUnit(2, lib.ColorRed, 20)
	strong.HP, strong.MaxHP, strong.Count, strong.Speed = 1000, 1000, 1, 4
	arena.PlaceUnit(weak)
	arena.PlaceUnit(strong)

	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	score := sv.Score(spell.FireBall, BattleContext{EnemyStrength: 100, AverageArmySpeed: 4}, lib.ColorBlue)
	if score.Cell != weak.Pos.Head {
		t.Fatalf("the single-target direct-damage spell should target the unit it can kill outright, got cell %v", score.Cell)
	}
}

func TestIsUselessRejectsUnknownCell(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	if !sv.isUseless(spell.FireBall, battle.Cell(5)) {
		t.Fatalf("a cell with no unit on it must be useless to target")
	}
}

func TestIsUselessAllowsAreaSpellsWithNoCell(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	if sv.isUseless(spell.ChainLightning, battle.NoCell) {
		t.Fatalf("a mass/area spell with no single target cell must not be rejected as useless")
	}
}

func TestTeleportValueSkipsUnitsThatCanAlreadyReachAnEnemy(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	attacker := newArenaUnit(1, lib.ColorBlue, 0)
	attacker.Speed = 20
	enemy := newArenaUnit(2, lib.ColorRed, 5)
	arena.PlaceUnit(attacker)
	arena.PlaceUnit(enemy)

	sv := &SpellValuator{Spells: testSpellTable(), Arena: arena}
	def := &spell.Definition{ID: spell.Teleport, Family: spell.FamilyTeleport}
	val, _ := sv.teleportValue(def, lib.ColorBlue)
	if val != 0 {
		t.Fatalf("a unit that can already reach an enemy should not value Teleport, got %v", val)
	}
	if attacker.CanTeleport {
		t.Fatalf("the scoped CanTeleport flag must be released after valuation")
	}
}
