// Package pathfind implements the World Pathfinder (C1): Dijkstra over the
// adventure map with a strict (human) and permissive (AI) variant. Grounded
// on turnforge-weewar/lib/rules_engine.go's heap.Interface-based Dijkstra
// (dijkstraItem/dijkstraHeap), generalised from a single-cost wargame grid
// to the guarded-tile/teleport-edge rules this spec requires.
package pathfind

import (
	"container/heap"
	"math"
	"slices"

	"github.com/turnforge/heroesai/lib"
)

// Node is one entry in the pathfinder's search tree (spec.md 3 "Pathfinder
// Node"). It lives only for the duration of one evaluation.
type Node struct {
	CameFrom        lib.TileIndex
	Cost            float64
	RemainingMove   float64
	ObjectOnTile    lib.ObjectKind
}

// Inf is the sentinel distance for an unreachable tile (spec.md 4.1
// "Failure").
const Inf = math.MaxFloat64

// Params bundles the tunables that change Pathfinder's cache key
// (spec.md 4.1 "Results are cached; cache invalidates on...").
type Params struct {
	StartTile              lib.TileIndex
	Color                  lib.Color
	MovePoints             float64
	PathfindingSkillLevel  int
	ArmyStrength           float64
	ArtifactBagFull        bool
	SpellBookSignature     uint64
	TownPortalCandidates   []lib.TileIndex

	// AI-only knobs (spec.md 4.1, spec.md 5 "state restorer").
	AI                     bool
	ArmyStrengthAdvantage  float64 // guarded-tile passability ratio
	SpellPointsReserve     float64 // fraction of MaxSpellPoints reserved
	MaxSpellPoints         float64
	SpellPoints            float64
	HasSummonBoat          bool
	HasDimensionDoor       bool
	HasTownGate            bool
}

func (p Params) cacheKey() [15]float64 {
	return [15]float64{
		float64(p.StartTile), float64(p.Color), p.MovePoints,
		float64(p.PathfindingSkillLevel), p.ArmyStrength,
		boolF(p.ArtifactBagFull), float64(p.SpellBookSignature),
		boolF(p.AI), p.ArmyStrengthAdvantage,
		p.SpellPointsReserve, p.MaxSpellPoints, p.SpellPoints,
		boolF(p.HasSummonBoat), boolF(p.HasDimensionDoor), boolF(p.HasTownGate),
	}
}

func boolF(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Pathfinder answers reachability/distance/path queries from one hero's
// current tile (spec.md 4.1).
type Pathfinder struct {
	world *lib.World

	lastParams Params
	valid      bool
	dist       []float64
	prev       []lib.TileIndex
	// remainOnArrival records, per tile, the movement left on arrival.
	remainOnArrival []float64
}

// New creates a Pathfinder bound to a world. It performs no search until
// ReEvaluateIfNeeded is called.
func New(world *lib.World) *Pathfinder {
	return &Pathfinder{world: world}
}

// ReEvaluateIfNeeded recomputes the search tree iff params differ from the
// last evaluation in any of the cache-invalidating dimensions (spec.md 4.1,
// spec.md 7 "Pathfinder cache miss / stale state").
func (pf *Pathfinder) ReEvaluateIfNeeded(p Params) {
	if pf.valid && pf.lastParams.cacheKey() == p.cacheKey() &&
		slices.Equal(pf.lastParams.TownPortalCandidates, p.TownPortalCandidates) {
		return
	}
	pf.evaluate(p)
	pf.lastParams = p
	pf.valid = true
}

func (pf *Pathfinder) evaluate(p Params) {
	n := len(pf.world.Tiles)
	dist := make([]float64, n)
	prev := make([]lib.TileIndex, n)
	remain := make([]float64, n)
	for i := range dist {
		dist[i] = Inf
		prev[i] = lib.NoTile
	}
	dist[p.StartTile] = 0
	remain[p.StartTile] = p.MovePoints

	pq := &nodeHeap{{tile: p.StartTile, cost: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(nodeItem)
		if cur.cost > dist[cur.tile] {
			continue
		}
		pf.expand(p, cur, dist, prev, remain, pq)
	}

	pf.dist = dist
	pf.prev = prev
	pf.remainOnArrival = remain
}

func (pf *Pathfinder) expand(p Params, cur nodeItem, dist []float64, prev []lib.TileIndex, remain []float64, pq *nodeHeap) {
	world := pf.world
	tile := world.Tile(cur.tile)
	if tile == nil {
		return
	}

	tryEdge := func(to lib.TileIndex, cost float64) {
		if to == lib.NoTile {
			return
		}
		if !pf.passable(p, cur.tile, to) {
			return
		}
		newCost := dist[cur.tile] + pf.edgeCost(p, dist[cur.tile], to, cost)
		if newCost < dist[to] {
			dist[to] = newCost
			prev[to] = cur.tile
			remain[to] = math.Max(0, p.MovePoints-newCost)
			heap.Push(pq, nodeItem{tile: to, cost: newCost})
		}
	}

	for d := lib.Direction(0); d < lib.DirCount; d++ {
		if n := world.Neighbour(cur.tile, d); n != lib.NoTile {
			tryEdge(n, pf.terrainCost(n))
		}
	}

	if p.HasSummonBoat {
		if boat := pf.summonBoatEdge(tile.Index); boat != lib.NoTile {
			tryEdge(boat, 0)
		}
	}

	if p.AI {
		if p.HasDimensionDoor && pf.reserveOK(p, lib.DimensionDoorCost) {
			for _, to := range pf.dimensionDoorTargets(cur.tile) {
				tryEdge(to, lib.DimensionDoorCost)
			}
		}
		if p.HasTownGate {
			for _, to := range p.TownPortalCandidates {
				tryEdge(to, 0)
			}
		}
	}
}

// passable applies the water/land boat rule and, for the AI variant, the
// guarded-tile army-strength gate (spec.md 4.1).
func (pf *Pathfinder) passable(p Params, from, to lib.TileIndex) bool {
	toTile := pf.world.Tile(to)
	fromTile := pf.world.Tile(from)
	if toTile == nil || fromTile == nil {
		return false
	}
	if toTile.Terrain.IsWater() != fromTile.Terrain.IsWater() {
		// water<->land transition only through a boat object
		if toTile.Object != lib.ObjectBoat && fromTile.Object != lib.ObjectBoat {
			return false
		}
	}
	if pf.isGuarded(to) {
		if !p.AI {
			return false
		}
		strength := pf.tileArmyStrength(to)
		return p.ArmyStrength >= strength*p.ArmyStrengthAdvantage
	}
	return true
}

func (pf *Pathfinder) isGuarded(t lib.TileIndex) bool {
	tile := pf.world.Tile(t)
	if tile == nil {
		return false
	}
	switch tile.Object {
	case lib.ObjectMonster, lib.ObjectEnemyHero, lib.ObjectEnemyCastle:
		return true
	default:
		return false
	}
}

// tileArmyStrength is overridable by the host's cached values; by default it
// derives a conservative estimate from the object payload if present.
func (pf *Pathfinder) tileArmyStrength(t lib.TileIndex) float64 {
	tile := pf.world.Tile(t)
	if tile == nil {
		return 0
	}
	if s, ok := tile.ObjectPayload.(float64); ok {
		return s
	}
	return 0
}

func (pf *Pathfinder) terrainCost(t lib.TileIndex) float64 {
	tile := pf.world.Tile(t)
	if tile == nil {
		return Inf
	}
	switch tile.Terrain {
	case lib.TerrainMountain, lib.TerrainLava:
		return 150
	case lib.TerrainSwamp, lib.TerrainSnow:
		return 125
	default:
		return 100
	}
}

// edgeCost charges the "last move" rule: the edge that uses up the current
// turn's movement costs only the points still left at its start, not the
// full terrain cost (spec.md 4.1). Edges past that point are charged in
// full.
func (pf *Pathfinder) edgeCost(p Params, fromCost float64, to lib.TileIndex, terrainCost float64) float64 {
	remaining := p.MovePoints - fromCost
	if remaining > 0 && terrainCost > remaining {
		return remaining
	}
	return terrainCost
}

func (pf *Pathfinder) summonBoatEdge(from lib.TileIndex) lib.TileIndex {
	tile := pf.world.Tile(from)
	if tile == nil || tile.Terrain.IsWater() {
		return lib.NoTile
	}
	for _, n := range pf.world.Neighbours(from) {
		nt := pf.world.Tile(n)
		if nt != nil && nt.Terrain.IsWater() && nt.Object == lib.NoneObject {
			return n
		}
	}
	return lib.NoTile
}

// dimensionDoorTargets enumerates every tile within the Chebyshev cap that a
// Dimension Door jump could reach (spec.md 4.1).
func (pf *Pathfinder) dimensionDoorTargets(from lib.TileIndex) []lib.TileIndex {
	row, col := pf.world.RowCol(from)
	out := make([]lib.TileIndex, 0, (2*lib.DimensionDoorMaxDistance+1)*(2*lib.DimensionDoorMaxDistance+1))
	for dr := -lib.DimensionDoorMaxDistance; dr <= lib.DimensionDoorMaxDistance; dr++ {
		for dc := -lib.DimensionDoorMaxDistance; dc <= lib.DimensionDoorMaxDistance; dc++ {
			if dr == 0 && dc == 0 {
				continue
			}
			if idx := pf.world.IndexOf(row+dr, col+dc); idx != lib.NoTile {
				out = append(out, idx)
			}
		}
	}
	return out
}

// BuildDimensionDoorPath greedily chains Dimension-Door jumps toward `to`,
// each hop covering at most DimensionDoorMaxDistance tiles of Chebyshev
// distance, and returns the waypoint sequence (spec.md 4.4 hero-turn phase).
// It returns nil if `to` cannot be reached by jumps alone.
func (pf *Pathfinder) BuildDimensionDoorPath(to lib.TileIndex) []lib.TileIndex {
	start := pf.lastParams.StartTile
	if pf.world.Tile(to) == nil || pf.world.Tile(start) == nil {
		return nil
	}
	toRow, toCol := pf.world.RowCol(to)
	cur := start
	maxHops := max(pf.world.Width, pf.world.Height)/lib.DimensionDoorMaxDistance + 1
	var out []lib.TileIndex
	for hops := 0; cur != to; hops++ {
		if hops >= maxHops {
			return nil
		}
		row, col := pf.world.RowCol(cur)
		dr := clampInt(toRow-row, -lib.DimensionDoorMaxDistance, lib.DimensionDoorMaxDistance)
		dc := clampInt(toCol-col, -lib.DimensionDoorMaxDistance, lib.DimensionDoorMaxDistance)
		next := pf.world.IndexOf(row+dr, col+dc)
		if next == lib.NoTile || next == cur {
			return nil
		}
		out = append(out, next)
		cur = next
	}
	return out
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func (pf *Pathfinder) reserveOK(p Params, cost float64) bool {
	if p.MaxSpellPoints <= 0 {
		return p.SpellPoints >= cost
	}
	reserve := p.SpellPointsReserve * p.MaxSpellPoints
	return p.SpellPoints-cost >= reserve
}

// Distance returns the movement cost to reach `to`, or Inf (spec.md 4.1
// "distance(to)").
func (pf *Pathfinder) Distance(to lib.TileIndex) float64 {
	if !pf.valid || int(to) >= len(pf.dist) || to < 0 {
		return Inf
	}
	return pf.dist[to]
}

// Reachable reports whether `to` can be reached at all this evaluation
// (spec.md 4.1 "reachable(to)").
func (pf *Pathfinder) Reachable(to lib.TileIndex) bool {
	return pf.Distance(to) < Inf
}

// BuildPath reconstructs the tile sequence from the evaluated start to `to`,
// or an empty slice if unreachable (spec.md 4.1 "build_path(to)").
func (pf *Pathfinder) BuildPath(to lib.TileIndex) []lib.TileIndex {
	if !pf.Reachable(to) {
		return nil
	}
	var rev []lib.TileIndex
	cur := to
	for cur != lib.NoTile {
		rev = append(rev, cur)
		if cur == pf.lastParams.StartTile {
			break
		}
		cur = pf.prev[cur]
	}
	out := make([]lib.TileIndex, len(rev))
	for i, t := range rev {
		out[len(rev)-1-i] = t
	}
	return out
}

// NearestTileToMove finds the reachable tile, other than the start, with the
// lowest movement cost, used to unblock a hero with nowhere useful to go
// (spec.md 4.1 "nearest_tile_to_move"). The movement left on arrival is not
// considered.
func (pf *Pathfinder) NearestTileToMove() lib.TileIndex {
	best := lib.NoTile
	bestDist := Inf
	for i, d := range pf.dist {
		if lib.TileIndex(i) == pf.lastParams.StartTile {
			continue
		}
		if d < bestDist {
			bestDist = d
			best = lib.TileIndex(i)
		}
	}
	return best
}

// FogDiscoveryTile returns the reachable tile that would reveal the most
// new fog, and whether that tile expands the hero's own territory
// (spec.md 4.1 "fog_discovery_tile").
func (pf *Pathfinder) FogDiscoveryTile(color lib.Color, viewAll bool) (lib.TileIndex, bool) {
	best := lib.NoTile
	bestScore := -1
	for i, d := range pf.dist {
		if d >= Inf {
			continue
		}
		idx := lib.TileIndex(i)
		score := 0
		for _, n := range pf.world.Neighbours(idx) {
			if pf.world.IsFogged(n, color, viewAll) {
				score++
			}
		}
		if score > bestScore {
			bestScore = score
			best = idx
		}
	}
	if best == lib.NoTile {
		return lib.NoTile, false
	}
	expandsTerritory := pf.world.Tile(best) != nil && pf.world.Tile(best).RegionID != pf.world.Tile(pf.lastParams.StartTile).RegionID
	return best, expandsTerritory
}

// --- heap plumbing -----------------------------------------------------

type nodeItem struct {
	tile lib.TileIndex
	cost float64
}

type nodeHeap []nodeItem

func (h nodeHeap) Len() int            { return len(h) }
func (h nodeHeap) Less(i, j int) bool  { return h[i].cost < h[j].cost }
func (h nodeHeap) Swap(i, j int)       { h[i], h[j] = h[j], h[i] }
func (h *nodeHeap) Push(x any)         { *h = append(*h, x.(nodeItem)) }
func (h *nodeHeap) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
