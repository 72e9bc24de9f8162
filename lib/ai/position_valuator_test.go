package ai

import (
	"testing"

	"github.com/turnforge/heroesai/lib"
	"github.com/turnforge/heroesai/lib/battle"
)

func newArenaUnit(uid int, color lib.Color, head battle.Cell) *battle.Unit {
	return &battle.Unit{
		UID: uid, Color: color, HP: 10, Count: 10, MaxHP: 10,
		Speed: 4, DamageMin: 2, DamageMax: 4,
		Pos: battle.Position{Head: head, Tail: battle.NoCell},
	}
}

func TestEvaluateOnlyReturnsReachableCells(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	attacker := newArenaUnit(1, lib.ColorBlue, 0)
	enemy := newArenaUnit(2, lib.ColorRed, 50)
	arena.PlaceUnit(attacker)
	arena.PlaceUnit(enemy)

	pv := &PositionValuator{Arena: arena}
	candidates := pv.Evaluate(attacker, enemy)
	for _, c := range candidates {
		if !arena.IsPositionReachable(attacker.Pos.Head, attacker.Speed, c.Cell) {
			t.Fatalf("candidate cell %v is not reachable from the attacker's position", c.Cell)
		}
		if battle.Distance(c.Cell, enemy.Pos.Head) > 1 {
			t.Fatalf("candidate cell %v is farther than one step from the enemy", c.Cell)
		}
	}
}

func TestBestPrefersCanAttackOverHigherPositionValue(t *testing.T) {
	a := CandidatePosition{Cell: 1, CanAttack: true, AttackValue: 5, PositionValue: 1}
	b := CandidatePosition{Cell: 2, CanAttack: false, AttackValue: 0, PositionValue: 100}
	best, ok := Best([]CandidatePosition{a, b})
	if !ok {
		t.Fatalf("expected a result")
	}
	if best.Cell != a.Cell {
		t.Fatalf("a can-attack candidate must win over a non-attacking one with higher position value")
	}
}

func TestBestBreaksTiesByAttackValue(t *testing.T) {
	a := CandidatePosition{Cell: 1, CanAttack: true, AttackValue: 10, PositionValue: 5}
	b := CandidatePosition{Cell: 2, CanAttack: true, AttackValue: 20, PositionValue: 5}
	best, _ := Best([]CandidatePosition{a, b})
	if best.Cell != b.Cell {
		t.Fatalf("with equal position value, the higher attack value must win")
	}
}

func TestBestEmptyInputReturnsFalse(t *testing.T) {
	if _, ok := Best(nil); ok {
		t.Fatalf("Best of an empty slice must report ok=false")
	}
}

func TestThreatFromNonShootersExcludesArchers(t *testing.T) {
	arena := battle.NewArena(battle.Geometry{})
	unit := newArenaUnit(1, lib.ColorBlue, 30)
	archer := newArenaUnit(2, lib.ColorRed, battle.Neighbour(30, battle.DirEast))
	archer.Abilities = battle.AbilityShooter
	arena.PlaceUnit(unit)
	arena.PlaceUnit(archer)

	pv := &PositionValuator{Arena: arena}
	if got := pv.ThreatFromNonShooters(unit, 30); got != 0 {
		t.Fatalf("an adjacent archer must not contribute to non-shooter threat, got %v", got)
	}

	melee := newArenaUnit(3, lib.ColorRed, battle.Neighbour(30, battle.DirWest))
	arena.PlaceUnit(melee)
	if got := pv.ThreatFromNonShooters(unit, 30); got <= 0 {
		t.Fatalf("an adjacent melee enemy must contribute positive non-shooter threat, got %v", got)
	}
}
