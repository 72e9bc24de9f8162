package ai

import (
	"log/slog"
	"sort"

	"github.com/turnforge/heroesai/lib"
	"github.com/turnforge/heroesai/lib/pathfind"
)

// AdventurePlanner implements C4's kingdom_turn procedure (spec.md 4.4).
// Grounded on turnforge-weewar/lib/ai's BasicAIAdvisor turn-loop shape,
// generalised from "suggest one move" to fheroes2's multi-phase kingdom
// turn.
type AdventurePlanner struct {
	Kingdom    *lib.Kingdom
	Pathfinder *pathfind.Pathfinder
	Objects    *ObjectValuator
	Log        *slog.Logger
}

// NewAdventurePlanner wires a planner for one kingdom, defaulting the
// logger the way the teacher's cmd/backend defaults slog.Default()
// (SPEC_FULL.md [AMBIENT] Logging).
func NewAdventurePlanner(k *lib.Kingdom, pf *pathfind.Pathfinder, log *slog.Logger) *AdventurePlanner {
	if log == nil {
		log = slog.Default()
	}
	return &AdventurePlanner{Kingdom: k, Pathfinder: pf, Objects: NewObjectValuator(k), Log: log}
}

// KingdomTurnResult is C4's output: the ordered command stream plus the
// hero-hire request the host engine must fulfil out of band (spec.md 4.4
// step 5 "purchase a new hero").
type KingdomTurnResult struct {
	Commands   []Command
	HireAtCastle int // castle id, 0 = no hire requested
}

// RunKingdomTurn executes spec.md 4.4's seven-step procedure once.
func (p *AdventurePlanner) RunKingdomTurn(viewAll bool, worldWidthSmall int, day int) KingdomTurnResult {
	k := p.Kingdom
	var result KingdomTurnResult

	// 1. Clear per-turn caches (spec.md 4.4 step 1, spec.md 5).
	k.ClearPerTurnCaches()

	// 2. Scan the map.
	p.scanMap(viewAll)

	// 3. Evaluate region safety.
	p.evaluateRegionSafety()

	// 4. Update kingdom budget is a host-owned economy computation
	// (spec.md 1 "data inputs"); this core only reads k.Budget.

	// 5. Main loop.
	available := append([]*lib.Hero(nil), k.Heroes...)
	for _, h := range available {
		if h.InCastleID != 0 {
			p.reinforceHeroInCastle(h)
		}
	}
	p.assignRoles(available)
	p.computeCastlesInDanger()
	for _, h := range available {
		if h.InCastleID != 0 && k.CastlesInDanger[h.InCastleID] {
			h.Locked = true
		}
	}

	cmds := p.heroTurnPhase(available)
	result.Commands = append(result.Commands, cmds...)

	maxHeroes := worldWidthSmall + 2
	if day <= 5 && len(k.Castles) == 1 {
		maxHeroes = 2
	}
	if len(k.Heroes) < maxHeroes {
		if castle := p.mostValuableCastle(); castle != nil {
			result.HireAtCastle = castle.ID
		}
	}

	if day%7 == 0 {
		for _, c := range k.Castles {
			if c.ResidentHero == 0 {
				k.UpdatePriorityTarget(c.Position, lib.TaskReinforce)
			}
		}
	}

	// 6. Castle development.
	p.developCastles()

	// 7. Move slowest troop into garrison.
	for _, c := range k.Castles {
		if h := k.HeroByID(c.ResidentHero); h != nil {
			moveSlowestTroopToGarrison(h, c)
		}
	}

	return result
}

// scanMap implements spec.md 4.4 step 2.
func (p *AdventurePlanner) scanMap(viewAll bool) {
	k := p.Kingdom
	w := k.World
	for i := 0; i < len(w.Tiles); i++ {
		idx := lib.TileIndex(i)
		if w.IsFogged(idx, k.Color, viewAll) {
			continue
		}
		t := w.Tile(idx)
		if t.Object != lib.NoneObject {
			k.ActionObjects[idx] = t.Object
		}
		stats := k.RegionStats[t.RegionID]
		if stats == nil {
			stats = &lib.RegionStats{}
			k.RegionStats[t.RegionID] = stats
		}
		if t.HeroID != 0 {
			if h := findHeroByID(k, t.HeroID); h != nil {
				if h.Color == k.Color {
					stats.FriendlyHeroes++
				} else {
					k.EnemyArmies = append(k.EnemyArmies, lib.EnemyArmy{
						Tile: idx, HeroID: h.ID, Strength: h.Army.Strength(), MovePoints: h.MovePoints,
					})
					if h.Army.Strength() > stats.HighestEnemyStrength {
						stats.HighestEnemyStrength = h.Army.Strength()
					}
				}
			}
		}
		if t.Object == lib.ObjectFriendlyCastle || t.Object == lib.ObjectEnemyCastle {
			if t.GarrisonColor == k.Color {
				stats.FriendlyCastles++
			} else {
				stats.EnemyCastles++
				if c := findCastleAt(k, idx); c != nil {
					k.EnemyArmies = append(k.EnemyArmies, lib.EnemyArmy{
						Tile: idx, Strength: c.Garrison.Strength(),
					})
					if c.Garrison.Strength() > stats.HighestEnemyStrength {
						stats.HighestEnemyStrength = c.Garrison.Strength()
					}
				}
			}
		}
	}
}

func findHeroByID(k *lib.Kingdom, id int) *lib.Hero {
	if h := k.HeroByID(id); h != nil {
		return h
	}
	return nil // other kingdoms' heroes are a data input the host resolves; nil is a safe "unknown"
}

func findCastleAt(k *lib.Kingdom, tile lib.TileIndex) *lib.Castle {
	for _, c := range k.Castles {
		if c.Position == tile {
			return c
		}
	}
	return nil
}

// evaluateRegionSafety implements spec.md 4.4 step 3: seed values, then
// propagate across neighbours in descending-sorted batches so each region
// influences its neighbours exactly once.
func (p *AdventurePlanner) evaluateRegionSafety() {
	k := p.Kingdom
	for _, stats := range k.RegionStats {
		switch {
		case stats.FriendlyCastles > 0 && stats.EnemyCastles == 0:
			stats.Safety = 100
		case stats.EnemyCastles > 0 && stats.FriendlyCastles == 0:
			stats.Safety = -100
		case stats.FriendlyCastles > 0 && stats.EnemyCastles > 0:
			stats.Safety = 0
		default:
			stats.Safety = 50
		}
	}

	type regionID = int
	ids := make([]regionID, 0, len(k.RegionStats))
	for id := range k.RegionStats {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return k.RegionStats[ids[i]].Safety > k.RegionStats[ids[j]].Safety })

	neighbours := p.regionNeighbours()
	propagated := make(map[regionID]bool, len(ids))
	for _, id := range ids {
		if propagated[id] {
			continue
		}
		src := k.RegionStats[id]
		ns := neighbours[id]
		if len(ns) == 0 {
			continue
		}
		share := src.Safety / (len(ns) + 1)
		for _, n := range ns {
			if dst := k.RegionStats[n]; dst != nil {
				dst.Safety += share
			}
		}
		propagated[id] = true
	}
}

// regionNeighbours derives region adjacency from tile adjacency, the data
// the host's region map owns (spec.md 1).
func (p *AdventurePlanner) regionNeighbours() map[int][]int {
	k := p.Kingdom
	w := k.World
	seen := make(map[[2]int]bool)
	out := make(map[int][]int)
	for i := range w.Tiles {
		t := &w.Tiles[i]
		for _, n := range w.Neighbours(lib.TileIndex(i)) {
			nt := w.Tile(n)
			if nt.RegionID == t.RegionID {
				continue
			}
			key := [2]int{t.RegionID, nt.RegionID}
			if seen[key] {
				continue
			}
			seen[key] = true
			out[t.RegionID] = append(out[t.RegionID], nt.RegionID)
		}
	}
	return out
}

// reinforceHeroInCastle tops off a resident hero's army from the garrison,
// the mutation named in spec.md 4.4 step 5 first bullet.
func (p *AdventurePlanner) reinforceHeroInCastle(h *lib.Hero) {
	c := p.Kingdom.CastleByID(h.InCastleID)
	if c == nil {
		return
	}
	for i, stack := range c.Garrison.Stacks {
		if stack == nil {
			continue
		}
		merged := false
		for j, hs := range h.Army.Stacks {
			if hs != nil && hs.MonsterID == stack.MonsterID {
				hs.Count += stack.Count
				hs.HPTotal += stack.HPTotal
				c.Garrison.Stacks[i] = nil
				merged = true
				_ = j
				break
			}
		}
		if merged {
			continue
		}
		for j, hs := range h.Army.Stacks {
			if hs == nil {
				h.Army.Stacks[j] = stack
				c.Garrison.Stacks[i] = nil
				break
			}
		}
	}
}

// assignRoles implements spec.md 4.4's "Role assignment".
func (p *AdventurePlanner) assignRoles(heroes []*lib.Hero) {
	if len(heroes) == 0 {
		return
	}
	sorted := append([]*lib.Hero(nil), heroes...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].StatsValue() > sorted[j].StatsValue() })

	strengths := make([]float64, len(sorted))
	for i, h := range sorted {
		strengths[i] = h.Army.Strength()
	}
	median := medianOf(strengths)

	for i, h := range sorted {
		switch {
		case h.OnPatrol:
			h.Role = lib.RoleFighter
		case i == 0:
			h.Role = lib.RoleChampion
		case i == len(sorted)-1:
			h.Role = lib.RoleCourier
		case i == len(sorted)-2 && len(sorted) >= 3:
			h.Role = lib.RoleScout
		case h.Army.Strength() > 3*median:
			h.Role = lib.RoleFighter
		default:
			h.Role = lib.RoleHunter
		}
	}
}

func medianOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sorted := append([]float64(nil), values...)
	sort.Float64s(sorted)
	mid := len(sorted) / 2
	if len(sorted)%2 == 0 {
		return (sorted[mid-1] + sorted[mid]) / 2
	}
	return sorted[mid]
}

// computeCastlesInDanger implements spec.md 4.4's "castles_in_danger":
// for every enemy army, a desperate/zero-reserve pathfinder asks whether it
// can reach each friendly castle within three turns. Each pass holds a
// Restorer built from that enemy army's own params, so Restore re-applies
// those params rather than the ones in place before the call: the
// pathfinder is left evaluated from the last enemy army's tile. Restore is
// called at the end of each pass, not deferred.
func (p *AdventurePlanner) computeCastlesInDanger() {
	k := p.Kingdom
	if p.Pathfinder == nil {
		return
	}
	for _, enemy := range k.EnemyArmies {
		params := pathfind.Params{
			StartTile:             enemy.Tile,
			MovePoints:            enemy.MovePoints,
			ArmyStrengthAdvantage: lib.AdvantageCoefficientDesperate,
			SpellPointsReserve:    0,
			AI:                    true,
		}
		restorer := p.Pathfinder.ScopedParams(params)
		p.Pathfinder.ReEvaluateIfNeeded(params)
		for _, c := range k.Castles {
			if c.Color != k.Color {
				continue
			}
			d := p.Pathfinder.Distance(c.Position)
			if d >= 0 && d <= float64(lib.CastlesInDangerHorizonTurns)*enemy.MovePoints {
				k.CastlesInDanger[c.ID] = true
			}
		}
		restorer.Restore()
	}
}

// advantageConfig is one (army-strength-advantage, spell-point-reserve)
// pair tried in descending strictness order (spec.md 4.4 "Hero-turn
// phase").
type advantageConfig struct {
	advantage float64
	reserve   float64
}

// heroTurnPhase implements spec.md 4.4's hero-turn phase.
func (p *AdventurePlanner) heroTurnPhase(heroes []*lib.Hero) []Command {
	k := p.Kingdom
	configs := []advantageConfig{
		{lib.AdvantageCoefficientLarge, lib.SpellReserveRatioLarge},
		{lib.AdvantageCoefficientMedium, lib.SpellReserveRatioMedium},
		{lib.AdvantageCoefficientSmall, lib.SpellReserveRatioSmall},
	}
	if k.IsLosingGame() {
		configs = []advantageConfig{{lib.AdvantageCoefficientDesperate, 0}}
	}

	var out []Command
	available := make([]*lib.Hero, 0, len(heroes))
	for _, h := range heroes {
		if h.MayStillMove() {
			available = append(available, h)
		}
	}

	for _, cfg := range configs {
		for len(available) > 0 {
			bestHero, bestTarget, bestPriority := p.bestHeroTarget(available, cfg)
			if bestHero == nil {
				break
			}
			for _, cmd := range p.dispatchHeroMove(bestHero, bestTarget, cfg) {
				if cmd.Kind != CommandSkip {
					out = append(out, cmd)
				}
			}
			p.threatBookkeeping(bestHero.Position)
			if !bestHero.MayStillMove() {
				available = removeHero(available, bestHero)
			}
			_ = bestPriority
		}
	}
	return out
}

// bestHeroTarget evaluates the pathfinder and object valuator for every
// available hero and returns the single best (hero, target) pair.
func (p *AdventurePlanner) bestHeroTarget(heroes []*lib.Hero, cfg advantageConfig) (*lib.Hero, lib.TileIndex, float64) {
	var bestHero *lib.Hero
	bestTarget := lib.NoTile
	bestValue := NegativeInfinity

	for _, h := range heroes {
		params := pathfind.Params{
			StartTile:             h.Position,
			Color:                 h.Color,
			MovePoints:            h.MovePoints,
			ArmyStrength:          h.Army.Strength(),
			ArmyStrengthAdvantage: cfg.advantage,
			SpellPointsReserve:    cfg.reserve,
			SpellPoints:           float64(h.SpellPoints),
			MaxSpellPoints:        float64(h.MaxSpellPoints),
			AI:                    true,
		}
		p.Pathfinder.ReEvaluateIfNeeded(params)

		for tile, kind := range p.Kingdom.ActionObjects {
			dist := p.Pathfinder.Distance(tile)
			if dist >= pathfind.Inf {
				continue
			}
			_ = kind
			value := p.Objects.Value(h, tile, dist, 0)
			if value > bestValue {
				bestValue = value
				bestHero = h
				bestTarget = tile
			}
		}
	}
	return bestHero, bestTarget, bestValue
}

// shouldUseDimensionDoor mirrors fheroes2's AI planner rule: a zero
// Dimension-Door distance means the target is unreachable by jumps at all,
// and otherwise the jump only wins when the regular distance is zero (taken
// as a blocked route) or at least twice as long as the jump chain
// (spec.md 4.4 hero-turn phase). The pathfinder reports an unreachable
// regular route as pathfind.Inf, for which the half-distance test also
// lets any jump chain win.
func shouldUseDimensionDoor(regularDistance, dimensionDoorDistance float64) bool {
	if dimensionDoorDistance == 0 {
		return false
	}
	return regularDistance == 0 || dimensionDoorDistance < regularDistance/2
}

// dispatchHeroMove implements the move-vs-dimension-door choice from
// spec.md 4.4's hero-turn phase.
func (p *AdventurePlanner) dispatchHeroMove(h *lib.Hero, target lib.TileIndex, cfg advantageConfig) []Command {
	if target == lib.NoTile {
		h.MovePoints = 0
		return []Command{skip(h.ID, "no reachable target")}
	}

	regularDistance := p.Pathfinder.Distance(target)

	ddCost := int(lib.DimensionDoorCost)
	if h.HaveSpellBook() && h.CanCastSpell(ddCost) {
		if ddPath := p.Pathfinder.BuildDimensionDoorPath(target); len(ddPath) > 0 {
			ddDistance := float64(len(ddPath)) * lib.DimensionDoorCost
			if shouldUseDimensionDoor(regularDistance, ddDistance) {
				return p.castDimensionDoorRepeatedly(h, target, ddPath)
			}
		}
	}

	path := p.Pathfinder.BuildPath(target)
	if len(path) == 0 {
		h.MovePoints = 0
		return []Command{skip(h.ID, "no path")}
	}

	next := path[0]
	if len(path) > 1 {
		next = path[1] // path[0] is the hero's own tile
	}
	prev := h.Position
	h.Position = next // ordinary move cost is charged by the host engine's move executor
	p.Kingdom.UpdateActionObjectCache(prev)
	p.Kingdom.UpdateActionObjectCache(next)
	return []Command{moveToTile(h.ID, next)}
}

// castDimensionDoorRepeatedly casts Dimension Door one jump at a time,
// re-evaluating the pathfinder and refreshing the action-object cache at
// both the previous and new position after every jump — each cast reveals
// new tiles and invalidates caches (spec.md 4.4 hero-turn phase) — then,
// if the target is still reachable on foot, emits one walking step toward
// it along the regular path. Movement points are not checked for that step.
func (p *AdventurePlanner) castDimensionDoorRepeatedly(h *lib.Hero, target lib.TileIndex, ddPath []lib.TileIndex) []Command {
	ddCost := int(lib.DimensionDoorCost)
	regularDistance := p.Pathfinder.Distance(target)
	ddDistance := float64(len(ddPath)) * lib.DimensionDoorCost

	var cmds []Command
	for len(ddPath) > 0 && shouldUseDimensionDoor(regularDistance, ddDistance) && h.CanCastSpell(ddCost) {
		hop := ddPath[0]
		prev := h.Position
		h.SpellPoints -= ddCost
		h.Position = hop
		cmds = append(cmds, dimensionDoor(h.ID, hop))

		p.Kingdom.UpdateActionObjectCache(prev)
		p.Kingdom.UpdateActionObjectCache(hop)

		ddPath = ddPath[1:]
		ddDistance -= lib.DimensionDoorCost

		p.Pathfinder.ReEvaluateIfNeeded(pathfind.Params{
			StartTile:      h.Position,
			Color:          h.Color,
			MovePoints:     h.MovePoints,
			ArmyStrength:   h.Army.Strength(),
			SpellPoints:    float64(h.SpellPoints),
			MaxSpellPoints: float64(h.MaxSpellPoints),
			AI:             true,
		})
		regularDistance = p.Pathfinder.Distance(target)
	}

	if regularDistance > 0 && regularDistance < pathfind.Inf {
		if path := p.Pathfinder.BuildPath(target); len(path) > 0 {
			next := path[0]
			if len(path) > 1 {
				next = path[1] // path[0] is the hero's own tile
			}
			prev := h.Position
			h.Position = next
			p.Kingdom.UpdateActionObjectCache(prev)
			p.Kingdom.UpdateActionObjectCache(next)
			cmds = append(cmds, moveToTile(h.ID, next))
		}
	}
	return cmds
}

// threatBookkeeping implements spec.md 4.4's "Threat book-keeping": clear
// the tile-army cache, reconcile priority tasks and refresh the
// action-object cache for the visited tile.
func (p *AdventurePlanner) threatBookkeeping(tile lib.TileIndex) {
	k := p.Kingdom
	delete(k.TileArmyStrength, tile)
	t := k.World.Tile(tile)
	if t != nil && (t.Object == lib.ObjectFriendlyCastle || t.Object == lib.ObjectEnemyHero) {
		k.RemovePriorityTarget(tile)
	}
	k.UpdateActionObjectCache(tile)
}

func removeHero(heroes []*lib.Hero, h *lib.Hero) []*lib.Hero {
	out := heroes[:0]
	for _, x := range heroes {
		if x != h {
			out = append(out, x)
		}
	}
	return out
}

// mostValuableCastle picks the hiring site for spec.md 4.4 step 5's
// "purchase a new hero" bullet.
func (p *AdventurePlanner) mostValuableCastle() *lib.Castle {
	var best *lib.Castle
	bestValue := NegativeInfinity
	for _, c := range p.Kingdom.Castles {
		if c.BuildingValue > bestValue {
			bestValue = c.BuildingValue
			best = c
		}
	}
	return best
}

// developCastles implements spec.md 4.4 step 6, ordering castles by danger,
// safety and building value; the actual resource spend is a host-owned
// economy operation this core only sequences.
func (p *AdventurePlanner) developCastles() []int {
	k := p.Kingdom
	order := append([]*lib.Castle(nil), k.Castles...)
	sort.Slice(order, func(i, j int) bool {
		a, b := order[i], order[j]
		ad, bd := k.CastlesInDanger[a.ID], k.CastlesInDanger[b.ID]
		if ad != bd {
			return ad
		}
		if a.BuildingValue != b.BuildingValue {
			return a.BuildingValue > b.BuildingValue
		}
		return a.ID < b.ID
	})
	ids := make([]int, len(order))
	for i, c := range order {
		ids[i] = c.ID
	}
	return ids
}

// moveSlowestTroopToGarrison implements spec.md 4.4 step 7.
func moveSlowestTroopToGarrison(h *lib.Hero, c *lib.Castle) {
	slowestIdx := -1
	slowestSpeed := 1 << 30
	for i, s := range h.Army.Stacks {
		if s != nil && s.Speed < slowestSpeed {
			slowestSpeed = s.Speed
			slowestIdx = i
		}
	}
	if slowestIdx == -1 {
		return
	}
	stack := h.Army.Stacks[slowestIdx]
	for i, gs := range c.Garrison.Stacks {
		if gs == nil {
			c.Garrison.Stacks[i] = stack
			h.Army.Stacks[slowestIdx] = nil
			return
		}
		if gs.MonsterID == stack.MonsterID {
			gs.Count += stack.Count
			gs.HPTotal += stack.HPTotal
			h.Army.Stacks[slowestIdx] = nil
			return
		}
	}
}
