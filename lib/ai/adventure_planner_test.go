package ai

import (
	"testing"

	"github.com/turnforge/heroesai/lib"
	"github.com/turnforge/heroesai/lib/artifact"
	"github.com/turnforge/heroesai/lib/pathfind"
)

func openWorldForAI(width, height int) *lib.World {
	w := lib.NewWorld(width, height)
	for i := range w.Tiles {
		w.Tiles[i].Passability = 0xFF
	}
	return w
}

func newTestAdventurePlanner() (*AdventurePlanner, *lib.Kingdom) {
	w := openWorldForAI(10, 10)
	k := lib.NewKingdom(lib.ColorBlue, w)
	pf := pathfind.New(w)
	return NewAdventurePlanner(k, pf, nil), k
}

func TestAssignRolesGivesChampionToStrongestAndCourierToWeakest(t *testing.T) {
	p, _ := newTestAdventurePlanner()
	strong := &lib.Hero{ID: 1, Primary: lib.PrimarySkills{Attack: 20}, Army: lib.Army{Stacks: [5]*lib.TroopStack{{Count: 100, DamageMin: 5, DamageMax: 5, HPTotal: 1000}}}}
	mid := &lib.Hero{ID: 2, Primary: lib.PrimarySkills{Attack: 10}, Army: lib.Army{Stacks: [5]*lib.TroopStack{{Count: 10, DamageMin: 2, DamageMax: 2, HPTotal: 100}}}}
	weak := &lib.Hero{ID: 3, Primary: lib.PrimarySkills{Attack: 1}, Army: lib.Army{Stacks: [5]*lib.TroopStack{{Count: 1, DamageMin: 1, DamageMax: 1, HPTotal: 5}}}}

	p.assignRoles([]*lib.Hero{weak, mid, strong})

	if strong.Role != lib.RoleChampion {
		t.Fatalf("the hero with the highest stat sum must become Champion, got %v", strong.Role)
	}
	if weak.Role != lib.RoleCourier {
		t.Fatalf("the hero with the lowest stat sum must become Courier, got %v", weak.Role)
	}
}

func TestAssignRolesForcesFighterWhileOnPatrol(t *testing.T) {
	p, _ := newTestAdventurePlanner()
	patroller := &lib.Hero{ID: 1, OnPatrol: true, Primary: lib.PrimarySkills{Attack: 5}}
	other := &lib.Hero{ID: 2, Primary: lib.PrimarySkills{Attack: 1}}

	p.assignRoles([]*lib.Hero{patroller, other})
	if patroller.Role != lib.RoleFighter {
		t.Fatalf("a hero on patrol must always be assigned Fighter, got %v", patroller.Role)
	}
}

func TestClearPerTurnCachesRunsBeforeScan(t *testing.T) {
	p, k := newTestAdventurePlanner()
	k.ActionObjects[5] = lib.ObjectMine
	k.EnemyArmies = append(k.EnemyArmies, lib.EnemyArmy{Tile: 5})

	p.RunKingdomTurn(true, 8, 1)

	if _, ok := k.ActionObjects[5]; ok {
		t.Fatalf("stale per-turn cache entries must not survive RunKingdomTurn's cache clear plus rescan of an empty tile")
	}
}

func TestScanMapPopulatesActionObjectsForVisibleObjectTiles(t *testing.T) {
	p, k := newTestAdventurePlanner()
	tile := k.World.IndexOf(3, 3)
	k.World.Tile(tile).Object = lib.ObjectResourcePile
	k.World.Tile(tile).FogByColor[lib.ColorBlue] = true

	p.scanMap(false)

	if k.ActionObjects[tile] != lib.ObjectResourcePile {
		t.Fatalf("a visible tile carrying an object must be recorded in ActionObjects")
	}
}

func TestScanMapSkipsFoggedTiles(t *testing.T) {
	p, k := newTestAdventurePlanner()
	tile := k.World.IndexOf(4, 4)
	k.World.Tile(tile).Object = lib.ObjectResourcePile
	// FogByColor left false => fogged.

	p.scanMap(false)

	if _, ok := k.ActionObjects[tile]; ok {
		t.Fatalf("a fogged tile must not populate ActionObjects")
	}
}

func TestEvaluateRegionSafetyRatesFriendlyOnlyRegionPositive(t *testing.T) {
	p, k := newTestAdventurePlanner()
	k.RegionStats[1] = &lib.RegionStats{FriendlyCastles: 1}
	k.RegionStats[2] = &lib.RegionStats{EnemyCastles: 1}

	p.evaluateRegionSafety()

	if k.RegionStats[1].Safety <= 0 {
		t.Fatalf("a region with only friendly castles must score positive safety, got %d", k.RegionStats[1].Safety)
	}
	if k.RegionStats[2].Safety >= 0 {
		t.Fatalf("a region with only enemy castles must score negative safety, got %d", k.RegionStats[2].Safety)
	}
}

func TestMostValuableCastlePicksHighestBuildingValue(t *testing.T) {
	p, k := newTestAdventurePlanner()
	k.Castles = append(k.Castles,
		&lib.Castle{ID: 1, BuildingValue: 10},
		&lib.Castle{ID: 2, BuildingValue: 99},
		&lib.Castle{ID: 3, BuildingValue: 40},
	)
	got := p.mostValuableCastle()
	if got == nil || got.ID != 2 {
		t.Fatalf("expected castle 2 (highest BuildingValue), got %+v", got)
	}
}

func TestDevelopCastlesOrdersInDangerFirst(t *testing.T) {
	p, k := newTestAdventurePlanner()
	k.Castles = append(k.Castles,
		&lib.Castle{ID: 1, BuildingValue: 100},
		&lib.Castle{ID: 2, BuildingValue: 1},
	)
	k.CastlesInDanger[2] = true

	order := p.developCastles()
	if order[0] != 2 {
		t.Fatalf("a castle in danger must be ordered first regardless of building value, got order %v", order)
	}
}

func TestMoveSlowestTroopToGarrisonMovesOnlyTheSlowest(t *testing.T) {
	fast := &lib.TroopStack{MonsterID: 1, Speed: 10, Count: 5}
	slow := &lib.TroopStack{MonsterID: 2, Speed: 2, Count: 5}
	h := &lib.Hero{Army: lib.Army{Stacks: [5]*lib.TroopStack{fast, slow}}}
	c := &lib.Castle{}

	moveSlowestTroopToGarrison(h, c)

	if h.Army.Stacks[1] != nil {
		t.Fatalf("the slowest stack must be removed from the hero's army")
	}
	if c.Garrison.Stacks[0] == nil || c.Garrison.Stacks[0].MonsterID != 2 {
		t.Fatalf("the slowest stack must land in the castle garrison, got %+v", c.Garrison.Stacks[0])
	}
}

func TestShouldUseDimensionDoorRejectsUnreachableJump(t *testing.T) {
	if shouldUseDimensionDoor(500, 0) {
		t.Fatalf("a zero Dimension-Door distance means the target is unreachable by jumps")
	}
}

func TestShouldUseDimensionDoorPrefersJumpWhenMuchShorter(t *testing.T) {
	if !shouldUseDimensionDoor(3000, 675) {
		t.Fatalf("a jump chain under half the regular distance should win")
	}
	if shouldUseDimensionDoor(1000, 600) {
		t.Fatalf("a jump chain over half the regular distance should lose to walking")
	}
}

func TestShouldUseDimensionDoorAlwaysWinsWhenRegularRouteIsBlocked(t *testing.T) {
	if !shouldUseDimensionDoor(0, 225) {
		t.Fatalf("a blocked regular route (distance 0 meaning unreachable) must still favour a usable jump")
	}
}

func TestDispatchHeroMoveCastsDimensionDoorWhenMuchFaster(t *testing.T) {
	p, k := newTestAdventurePlanner()
	w := openWorldForAI(40, 1)
	k.World = w
	p.Pathfinder = pathfind.New(w)

	h := &lib.Hero{ID: 1, Position: w.IndexOf(0, 0), SpellPoints: 1000, MaxSpellPoints: 1000, MovePoints: 100000}
	h.Artifacts.Slots[0] = artifact.MagicBook
	target := w.IndexOf(0, 30)

	p.Pathfinder.ReEvaluateIfNeeded(pathfind.Params{
		StartTile: h.Position, MovePoints: h.MovePoints, AI: true,
		SpellPoints: float64(h.SpellPoints), MaxSpellPoints: float64(h.MaxSpellPoints),
	})

	cmds := p.dispatchHeroMove(h, target, advantageConfig{})
	if len(cmds) == 0 {
		t.Fatalf("expected at least one command")
	}
	if cmds[0].Kind != CommandDimensionDoor {
		t.Fatalf("expected the first command to be a dimension door jump, got %v", cmds[0].Kind)
	}
	if h.SpellPoints >= 1000 {
		t.Fatalf("casting dimension door must spend the hero's spell points")
	}
	if h.Position == w.IndexOf(0, 0) {
		t.Fatalf("dispatching dimension door must move the hero off its starting tile")
	}
}

func TestDispatchHeroMoveWalksWithoutASpellBook(t *testing.T) {
	p, k := newTestAdventurePlanner()
	w := openWorldForAI(40, 1)
	k.World = w
	p.Pathfinder = pathfind.New(w)

	h := &lib.Hero{ID: 1, Position: w.IndexOf(0, 0), MovePoints: 100000, Artifacts: lib.NewArtifactBag()}
	target := w.IndexOf(0, 30)

	p.Pathfinder.ReEvaluateIfNeeded(pathfind.Params{StartTile: h.Position, MovePoints: h.MovePoints, AI: true})

	cmds := p.dispatchHeroMove(h, target, advantageConfig{})
	if len(cmds) != 1 || cmds[0].Kind != CommandMove {
		t.Fatalf("a hero with no spell book must only ever walk, got %+v", cmds)
	}
	if cmds[0].TargetTile != w.IndexOf(0, 1) {
		t.Fatalf("the walk command must target the next tile on the regular path, got %v", cmds[0].TargetTile)
	}
}

func TestReinforceHeroInCastleMergesMatchingMonsterStacks(t *testing.T) {
	p, k := newTestAdventurePlanner()
	c := &lib.Castle{ID: 1, Garrison: lib.Army{Stacks: [5]*lib.TroopStack{{MonsterID: 7, Count: 10, HPTotal: 100}}}}
	h := &lib.Hero{ID: 1, InCastleID: 1, Army: lib.Army{Stacks: [5]*lib.TroopStack{{MonsterID: 7, Count: 5, HPTotal: 50}}}}
	k.Castles = append(k.Castles, c)
	k.Heroes = append(k.Heroes, h)

	p.reinforceHeroInCastle(h)

	if h.Army.Stacks[0].Count != 15 {
		t.Fatalf("matching monster stacks must merge counts, got %d", h.Army.Stacks[0].Count)
	}
	if c.Garrison.Stacks[0] != nil {
		t.Fatalf("the garrison slot must be emptied after merging into the hero's army")
	}
}
