package lib

// PriorityTaskKind is the intent annotation C4's threat analysis places on
// a tile (spec.md 3 "Priority Task").
type PriorityTaskKind int

const (
	TaskNone PriorityTaskKind = iota
	TaskAttack
	TaskDefend
	TaskReinforce
)

// PriorityTask lives for one kingdom turn and is mutated by the threat
// analysis in C4 (spec.md 3).
type PriorityTask struct {
	Tile      TileIndex
	Kind      PriorityTaskKind
	Secondary []TileIndex
}

// EnemyArmy is a cached snapshot of a visible enemy hero or hireable castle,
// refreshed once per kingdom turn (spec.md 3).
type EnemyArmy struct {
	Tile          TileIndex
	HeroID        int // 0 if this is a castle garrison, not a hero
	Strength      float64
	MovePoints    float64
}

// RegionStats is the per-connected-region aggregate C4's safety pass
// produces (spec.md 3).
type RegionStats struct {
	HighestEnemyStrength float64
	FriendlyHeroes       int
	FriendlyCastles      int
	EnemyCastles         int
	Safety               int
}

// Kingdom is one player's per-turn state: the heroes and castles it owns
// plus every transient cache the adventure planner exclusively owns
// (spec.md 3 "Ownership", spec.md 5).
type Kingdom struct {
	Color   Color
	Heroes  []*Hero
	Castles []*Castle
	Gold    int
	Budget  map[Resource]ResourceBudget

	World *World

	// Per-turn caches, cleared at the start of every kingdom_turn
	// (spec.md 4.4 step 1, spec.md 5).
	ActionObjects    map[TileIndex]ObjectKind
	EnemyArmies      []EnemyArmy
	RegionStats      map[int]*RegionStats
	TileArmyStrength map[TileIndex]float64
	PriorityTasks    map[TileIndex]*PriorityTask
	CastlesInDanger  map[int]bool // castle id -> true

	Losing bool
}

// ResourceBudget captures whether the kingdom is short of a resource and
// whether it is a recurring cost, both of which bump the object valuator's
// priority modifier (spec.md 4.3).
type ResourceBudget struct {
	Priority  bool // kingdom is short of this resource: x2 bump
	Recurring bool // recurring cost: x1.5 bump
}

// NewKingdom allocates a kingdom with its per-turn caches ready to use.
func NewKingdom(color Color, world *World) *Kingdom {
	return &Kingdom{
		Color:            color,
		World:            world,
		Budget:           make(map[Resource]ResourceBudget),
		ActionObjects:    make(map[TileIndex]ObjectKind),
		RegionStats:      make(map[int]*RegionStats),
		TileArmyStrength: make(map[TileIndex]float64),
		PriorityTasks:    make(map[TileIndex]*PriorityTask),
		CastlesInDanger:  make(map[int]bool),
	}
}

// ClearPerTurnCaches resets every transient map C4 owns (spec.md 4.4 step 1).
func (k *Kingdom) ClearPerTurnCaches() {
	k.ActionObjects = make(map[TileIndex]ObjectKind)
	k.EnemyArmies = nil
	k.RegionStats = make(map[int]*RegionStats)
	k.TileArmyStrength = make(map[TileIndex]float64)
	k.PriorityTasks = make(map[TileIndex]*PriorityTask)
	k.CastlesInDanger = make(map[int]bool)
}

// UpdatePriorityTarget sets or refreshes the priority task for a tile, one
// of the named mutation hooks in spec.md 5.
func (k *Kingdom) UpdatePriorityTarget(tile TileIndex, kind PriorityTaskKind) {
	if t, ok := k.PriorityTasks[tile]; ok {
		t.Kind = kind
		return
	}
	k.PriorityTasks[tile] = &PriorityTask{Tile: tile, Kind: kind}
}

// RemovePriorityTarget deletes the priority task for a tile, the matching
// removal hook from spec.md 5.
func (k *Kingdom) RemovePriorityTarget(tile TileIndex) {
	delete(k.PriorityTasks, tile)
}

// UpdateActionObjectCache refreshes the cached object kind for a tile; it is
// idempotent under no intervening state change (spec.md 8 round-trip
// property).
func (k *Kingdom) UpdateActionObjectCache(tile TileIndex) {
	t := k.World.Tile(tile)
	if t == nil {
		delete(k.ActionObjects, tile)
		return
	}
	if t.Object == NoneObject {
		delete(k.ActionObjects, tile)
		return
	}
	k.ActionObjects[tile] = t.Object
}

// HeroByID finds a hero owned by this kingdom, or nil.
func (k *Kingdom) HeroByID(id int) *Hero {
	for _, h := range k.Heroes {
		if h.ID == id {
			return h
		}
	}
	return nil
}

// CastleByID finds a castle owned by this kingdom, or nil.
func (k *Kingdom) CastleByID(id int) *Castle {
	for _, c := range k.Castles {
		if c.ID == id {
			return c
		}
	}
	return nil
}

// IsLosingGame mirrors the host predicate named in spec.md 6.
func (k *Kingdom) IsLosingGame() bool { return k.Losing }

// IsFriends reports whether other is an ally; there are no alliances in
// this core's scope beyond "same color", matching spec.md's Non-goal on
// multiplayer protocol.
func (k *Kingdom) IsFriends(other Color) bool { return other == k.Color }
