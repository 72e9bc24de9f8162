package lib

import "testing"

func TestClearPerTurnCachesResetsAllMaps(t *testing.T) {
	w := NewWorld(2, 2)
	k := NewKingdom(ColorBlue, w)
	k.ActionObjects[0] = ObjectMine
	k.EnemyArmies = append(k.EnemyArmies, EnemyArmy{Tile: 1})
	k.RegionStats[1] = &RegionStats{Safety: 10}
	k.TileArmyStrength[2] = 500
	k.PriorityTasks[3] = &PriorityTask{Tile: 3, Kind: TaskAttack}
	k.CastlesInDanger[9] = true

	k.ClearPerTurnCaches()

	if len(k.ActionObjects) != 0 || k.EnemyArmies != nil || len(k.RegionStats) != 0 ||
		len(k.TileArmyStrength) != 0 || len(k.PriorityTasks) != 0 || len(k.CastlesInDanger) != 0 {
		t.Fatalf("ClearPerTurnCaches left stale state: %+v", k)
	}
}

func TestUpdateAndRemovePriorityTarget(t *testing.T) {
	w := NewWorld(2, 2)
	k := NewKingdom(ColorBlue, w)
	k.UpdatePriorityTarget(5, TaskDefend)
	task, ok := k.PriorityTasks[5]
	if !ok || task.Kind != TaskDefend {
		t.Fatalf("expected a Defend task at tile 5, got %+v", task)
	}
	k.UpdatePriorityTarget(5, TaskAttack)
	if k.PriorityTasks[5].Kind != TaskAttack {
		t.Fatalf("updating an existing task should change its kind in place")
	}
	k.RemovePriorityTarget(5)
	if _, ok := k.PriorityTasks[5]; ok {
		t.Fatalf("task at tile 5 should have been removed")
	}
}

func TestUpdateActionObjectCacheIsIdempotent(t *testing.T) {
	w := NewWorld(2, 2)
	k := NewKingdom(ColorBlue, w)
	w.Tile(0).Object = ObjectMine

	k.UpdateActionObjectCache(0)
	first := k.ActionObjects[0]
	k.UpdateActionObjectCache(0)
	if k.ActionObjects[0] != first {
		t.Fatalf("repeated UpdateActionObjectCache calls changed the cached value")
	}

	w.Tile(0).Object = NoneObject
	k.UpdateActionObjectCache(0)
	if _, ok := k.ActionObjects[0]; ok {
		t.Fatalf("clearing the tile's object should drop it from the cache")
	}
}

func TestHeroByIDAndCastleByID(t *testing.T) {
	w := NewWorld(2, 2)
	k := NewKingdom(ColorBlue, w)
	k.Heroes = append(k.Heroes, &Hero{ID: 42})
	k.Castles = append(k.Castles, &Castle{ID: 7})

	if k.HeroByID(42) == nil {
		t.Fatalf("expected to find hero 42")
	}
	if k.HeroByID(99) != nil {
		t.Fatalf("hero 99 should not exist")
	}
	if k.CastleByID(7) == nil {
		t.Fatalf("expected to find castle 7")
	}
	if k.CastleByID(99) != nil {
		t.Fatalf("castle 99 should not exist")
	}
}

func TestIsFriendsIsSameColorOnly(t *testing.T) {
	k := NewKingdom(ColorBlue, NewWorld(1, 1))
	if !k.IsFriends(ColorBlue) {
		t.Fatalf("a kingdom must consider its own color friendly")
	}
	if k.IsFriends(ColorRed) {
		t.Fatalf("a kingdom must not consider another color friendly")
	}
}
