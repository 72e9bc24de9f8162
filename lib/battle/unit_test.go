package battle

import (
	"testing"

	"github.com/turnforge/heroesai/lib"
)

func newTestUnit(uid int, color lib.Color, head Cell) *Unit {
	return &Unit{
		UID: uid, Color: color, HP: 10, Count: 5, MaxHP: 10,
		Speed: 5, DamageMin: 2, DamageMax: 4,
		Pos: Position{Head: head, Tail: NoCell},
	}
}

func TestArenaPlaceAndRemoveUnit(t *testing.T) {
	a := NewArena(Geometry{})
	u := newTestUnit(1, lib.ColorBlue, 10)
	a.PlaceUnit(u)

	if a.UnitAt(10) != u {
		t.Fatalf("expected unit at cell 10")
	}
	a.RemoveUnit(u)
	if a.UnitAt(10) != nil {
		t.Fatalf("cell 10 should be empty after RemoveUnit")
	}
	a.PlaceAt(u)
	if a.UnitAt(10) != u {
		t.Fatalf("PlaceAt should restore the unit to its own Pos")
	}
}

func TestGetForceAndGetEnemyForceFilterByColorAndAlive(t *testing.T) {
	a := NewArena(Geometry{})
	blue := newTestUnit(1, lib.ColorBlue, 1)
	red := newTestUnit(2, lib.ColorRed, 2)
	deadBlue := newTestUnit(3, lib.ColorBlue, 3)
	deadBlue.Count = 0
	a.PlaceUnit(blue)
	a.PlaceUnit(red)
	a.PlaceUnit(deadBlue)

	force := a.GetForce(lib.ColorBlue)
	if len(force) != 1 || force[0] != blue {
		t.Fatalf("GetForce(blue) should return only the living blue unit, got %v", force)
	}
	enemy := a.GetEnemyForce(lib.ColorBlue)
	if len(enemy) != 1 || enemy[0] != red {
		t.Fatalf("GetEnemyForce(blue) should return only red, got %v", enemy)
	}
}

func TestIsPositionReachableRespectsSpeedAndOccupancy(t *testing.T) {
	a := NewArena(Geometry{})
	start := fromRowCol(4, 5)
	u := newTestUnit(1, lib.ColorBlue, start)
	a.PlaceUnit(u)

	near := Neighbour(start, DirEast)
	if !a.IsPositionReachable(start, 1, near) {
		t.Fatalf("an adjacent empty cell at speed 1 must be reachable")
	}

	blocker := newTestUnit(2, lib.ColorRed, near)
	a.PlaceUnit(blocker)
	far := Neighbour(near, DirEast)
	if a.IsPositionReachable(start, 2, far) {
		t.Fatalf("path through an occupied cell must not count as reachable")
	}
}

func TestCalculateMoveDistance(t *testing.T) {
	a := NewArena(Geometry{})
	start := fromRowCol(4, 5)
	near := Neighbour(start, DirEast)
	if d := a.CalculateMoveDistance(start, near); d != 1 {
		t.Fatalf("got distance %d, want 1", d)
	}
	if d := a.CalculateMoveDistance(start, start); d != 0 {
		t.Fatalf("distance to self must be 0, got %d", d)
	}
}

func TestUnitStrengthIncreasesWithCountAndHP(t *testing.T) {
	weak := &Unit{Count: 1, DamageMin: 1, DamageMax: 1, HP: 1}
	strong := &Unit{Count: 10, DamageMin: 5, DamageMax: 10, HP: 40}
	if strong.Strength() <= weak.Strength() {
		t.Fatalf("a bigger, harder-hitting stack must score higher strength")
	}
}

func TestIsHandFightingDetectsAdjacentEnemy(t *testing.T) {
	a := NewArena(Geometry{})
	start := fromRowCol(4, 5)
	u := newTestUnit(1, lib.ColorBlue, start)
	a.PlaceUnit(u)
	if u.IsHandFighting(a) {
		t.Fatalf("unit with no neighbours should not be hand-fighting")
	}
	enemy := newTestUnit(2, lib.ColorRed, Neighbour(start, DirEast))
	a.PlaceUnit(enemy)
	if !u.IsHandFighting(a) {
		t.Fatalf("unit adjacent to an enemy should be hand-fighting")
	}
}

func TestAbilityAndModifierFlags(t *testing.T) {
	u := &Unit{Abilities: AbilityShooter | AbilityFlyer, Modifiers: ModBerserk}
	if !u.IsArcher() || !u.IsFlyer() {
		t.Fatalf("expected archer+flyer flags to read back true")
	}
	if u.IsWide() {
		t.Fatalf("AbilityWide was not set")
	}
	if !u.IsBerserk() {
		t.Fatalf("expected berserk modifier to read back true")
	}
}
