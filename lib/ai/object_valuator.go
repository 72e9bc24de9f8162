package ai

import (
	"math"

	"github.com/turnforge/heroesai/lib"
)

// NegativeInfinity marks an object the valuator refuses to ever recommend
// (spec.md 4.3 "Special rules": victory-condition artifacts/heroes/castles).
var NegativeInfinity = math.Inf(-1)

// ObjectValuator implements C3: it maps (hero, object kind, tile, distance)
// to a desirability score. Grounded on turnforge-weewar/lib/ai's per-role
// weight tables (EvaluationWeights / NewAggressiveWeights etc.), reshaped
// from "position evaluation weights" into "per-object-kind base values"
// since C3 scores individual map objects rather than an overall position.
type ObjectValuator struct {
	Kingdom *lib.Kingdom

	// ResourceBaseValue is the raw worth-per-unit used for resource piles
	// and mines before the priority modifier (spec.md 4.3 table).
	ResourceBaseValue map[lib.Resource]float64

	// VictoryHeroID / VictoryCastleID mark the map's "defeat this hero/
	// capture this castle to win" targets, scored at -inf (spec.md 4.3).
	VictoryHeroID   int
	VictoryCastleID int

	// CourierRendezvous is set once per turn by the preliminary Courier
	// phase (spec.md 4.3 last paragraph).
	CourierRendezvous lib.TileIndex
}

// NewObjectValuator builds a valuator with the default General resource
// weights from spec.md 4.3's table (gold 750, wood/ore 7, others 4).
func NewObjectValuator(k *lib.Kingdom) *ObjectValuator {
	return &ObjectValuator{
		Kingdom: k,
		ResourceBaseValue: map[lib.Resource]float64{
			lib.ResourceGold:    750,
			lib.ResourceWood:    7,
			lib.ResourceOre:     7,
			lib.ResourceMercury: 4,
			lib.ResourceSulfur:  4,
			lib.ResourceCrystal: 4,
			lib.ResourceGems:    4,
		},
		CourierRendezvous: lib.NoTile,
	}
}

// Value scores the object on `tile` for `hero`, `distance` tiles away, given
// the current kingdom turn number (spec.md 4.3).
func (v *ObjectValuator) Value(hero *lib.Hero, tile lib.TileIndex, distance float64, turnNumber int) float64 {
	t := v.Kingdom.World.Tile(tile)
	if t == nil || t.Object == lib.NoneObject {
		return 0
	}

	if v.isVictoryTarget(t) {
		return NegativeInfinity
	}

	base := v.baseValue(hero, t, tile)
	base = v.applyRoleMultiplier(hero, tile, t.Object, base)
	friendlyCastle := t.Object == lib.ObjectFriendlyCastle || t.Object == lib.ObjectOwnCastleInDanger
	if !friendlyCastle || distance > hero.MovePoints/100.0 {
		base = v.applyEnemyThreatPenalty(hero, tile, base)
	}

	if hero.Role == lib.RoleCourier && tile != v.CourierRendezvous {
		horizon := v.courierHorizon(t.Object)
		if horizon < base {
			base = horizon
		}
	}

	return v.distanceScale(base, distance, t.Object, hero, turnNumber)
}

func (v *ObjectValuator) isVictoryTarget(t *lib.Tile) bool {
	if t.Object == lib.ObjectEnemyHero {
		if id, ok := t.ObjectPayload.(int); ok && v.VictoryHeroID != 0 && id == v.VictoryHeroID {
			return true
		}
	}
	if t.Object == lib.ObjectEnemyCastle {
		if id, ok := t.ObjectPayload.(int); ok && v.VictoryCastleID != 0 && id == v.VictoryCastleID {
			return true
		}
	}
	return false
}

// baseValue is the "General" table from spec.md 4.3.
func (v *ObjectValuator) baseValue(hero *lib.Hero, t *lib.Tile, tile lib.TileIndex) float64 {
	switch t.Object {
	case lib.ObjectOwnCastleInDanger:
		return v.enemyCastleFormula(t)
	case lib.ObjectEnemyCastle:
		val := v.enemyCastleFormula(t)
		// Tile carries no defence data; the flag is read from a Castle
		// record at this tile in Kingdom.Castles, if there is one.
		if c := findCastleAt(v.Kingdom, tile); c != nil && c.Defenseless {
			val *= 1.25
		}
		if task := v.Kingdom.PriorityTasks[tile]; task != nil && task.Kind == lib.TaskAttack {
			if max := v.maxThreatenedCastleValue(); max > val {
				val = max
			}
		}
		return val
	case lib.ObjectFriendlyCastle:
		if v.Kingdom.CastlesInDanger[v.castleIDAt(tile)] {
			return v.enemyCastleFormula(t)
		}
		return 0
	case lib.ObjectEnemyHero:
		val := 5000.0
		if v.embedsCastle(t) {
			val += 1000
		}
		if v.isAIvsAI(hero) {
			val *= 0.8
		}
		return val
	case lib.ObjectMonster:
		hp := v.monsterTotalHP(t)
		return 1000 + hp/100.0
	case lib.ObjectMine:
		return v.resourceIncomeValue(t) * v.priorityModifier(t)
	case lib.ObjectArtifact, lib.ObjectShipwreckSurvivor:
		return 1000 * v.artifactValue(t)
	case lib.ObjectTreasure, lib.ObjectSeaChest:
		return 1500 * v.priorityModifier(t)
	case lib.ObjectDaemonCave:
		return 2500 * v.priorityModifier(t)
	case lib.ObjectResourcePile:
		return v.resourcePileValue(t) * v.priorityModifier(t)
	case lib.ObjectSkillObject:
		return 500
	case lib.ObjectTreeOfKnowledge:
		return 500 / (1 + v.experienceToNextLevelRatio(hero))
	case lib.ObjectFreeDwelling:
		return v.joinableDwellingStrength(hero, t)
	case lib.ObjectPurchaseDwelling:
		return v.affordableDwellingStrength(t)
	case lib.ObjectObelisk:
		return 0
	case lib.ObjectStables, lib.ObjectFreemansFoundry, lib.ObjectHillFort:
		return v.freeUpgradeDelta(hero, t)*3 + v.movementBonusValue(t)
	case lib.ObjectMoraleLuck:
		if v.isMoraleLuckCapped(hero) {
			return -200
		}
		return 50 + 150*v.moraleLuckUsefulness(hero)
	case lib.ObjectMagicWell, lib.ObjectArtesianSpring:
		if hero.IsPotentSpellcaster() && hero.SpellPoints < hero.MaxSpellPoints {
			return 1500
		}
		return -5000
	case lib.ObjectWitchHut:
		return 500
	default:
		return 0
	}
}

func (v *ObjectValuator) applyRoleMultiplier(hero *lib.Hero, tile lib.TileIndex, kind lib.ObjectKind, base float64) float64 {
	switch hero.Role {
	case lib.RoleFighter, lib.RoleChampion:
		switch kind {
		case lib.ObjectEnemyHero, lib.ObjectEnemyCastle, lib.ObjectOwnCastleInDanger, lib.ObjectFriendlyCastle:
			return base * 2
		case lib.ObjectMonster:
			if v.regionHostsFriendlyHero(hero, tile) {
				return base * 4
			}
			return base
		case lib.ObjectSkillObject:
			return base * 1.1
		}
	case lib.RoleScout:
		if kind == lib.ObjectWitchHut {
			return base * 1.5
		}
	}
	return base
}

// applyEnemyThreatPenalty implements spec.md 4.3's "Enemy-threat penalty":
// linearly interpolated up to DangerousTaskPenalty within one turn's reach
// of any sufficiently strong enemy army. Value skips it for a friendly
// castle the hero can reach this turn.
func (v *ObjectValuator) applyEnemyThreatPenalty(hero *lib.Hero, tile lib.TileIndex, base float64) float64 {
	for _, army := range v.Kingdom.EnemyArmies {
		if army.Strength <= hero.Army.Strength()*lib.SmallAdvantageRatio {
			continue
		}
		d := hexDistance(v.Kingdom.World, army.Tile, tile)
		reach := army.MovePoints / 100.0
		if float64(d) > reach {
			continue
		}
		penalty := lib.DangerousTaskPenalty * (1 - float64(d)/math.Max(reach, 1))
		base -= penalty
	}
	return base
}

func hexDistance(w *lib.World, a, b lib.TileIndex) int {
	ar, ac := w.RowCol(a)
	br, bc := w.RowCol(b)
	dr, dc := ar-br, ac-bc
	if dr < 0 {
		dr = -dr
	}
	if dc < 0 {
		dc = -dc
	}
	if dr > dc {
		return dr
	}
	return dc
}

// distanceScale applies spec.md 4.3's distance-decay formula:
//
//	value(distance) = value − d·log10(d),  d = distance × modifier × (1 − min(0.5, turn·0.0001))
//
// with the remaining-movement penalty for objects out of reach this turn.
func (v *ObjectValuator) distanceScale(value, distance float64, kind lib.ObjectKind, hero *lib.Hero, turnNumber int) float64 {
	if distance <= 0 {
		return value
	}
	remainingMP := hero.MovePoints / 100.0
	d := distance
	if distance > remainingMP {
		d = remainingMP + 2*(distance-remainingMP)
	}
	modifier := lib.ObjectDistanceModifier(kind)
	turnDecay := 1 - math.Min(0.5, float64(turnNumber)*0.0001)
	d = d * modifier * turnDecay
	if d <= 0 {
		return value
	}
	return value - d*math.Log10(d)
}

func (v *ObjectValuator) courierHorizon(kind lib.ObjectKind) float64 {
	switch kind {
	case lib.ObjectResourcePile, lib.ObjectSkillObject:
		return 200 // ~2 tiles worth
	case lib.ObjectMine, lib.ObjectArtifact:
		return 500 // ~5 tiles worth
	default:
		return 1000 // ~10 tiles worth
	}
}

// --- small data-input accessors -----------------------------------------
//
// These read payload the host is responsible for populating on the Tile
// (spec.md 1 "data inputs"); the core only reasons about the numbers, never
// about how they were computed.

func (v *ObjectValuator) enemyCastleFormula(t *lib.Tile) float64 {
	buildingValue, _ := t.ObjectPayload.(float64)
	return buildingValue*150 + 3000
}

func (v *ObjectValuator) maxThreatenedCastleValue() float64 {
	max := 0.0
	for _, c := range v.Kingdom.Castles {
		if v.Kingdom.CastlesInDanger[c.ID] && c.BuildingValue*150+3000 > max {
			max = c.BuildingValue*150 + 3000
		}
	}
	return max
}

func (v *ObjectValuator) castleIDAt(tile lib.TileIndex) int {
	for _, c := range v.Kingdom.Castles {
		if c.Position == tile {
			return c.ID
		}
	}
	return 0
}

func (v *ObjectValuator) embedsCastle(t *lib.Tile) bool {
	embeds, _ := t.ObjectPayload.(bool)
	return embeds
}

func (v *ObjectValuator) isAIvsAI(hero *lib.Hero) bool { return false }

func (v *ObjectValuator) monsterTotalHP(t *lib.Tile) float64 {
	hp, _ := t.ObjectPayload.(float64)
	return hp
}

func (v *ObjectValuator) resourceIncomeValue(t *lib.Tile) float64 {
	payload, _ := t.ObjectPayload.(lib.ResourcePayload)
	return payload.Income
}

// resourceKindOf extracts the resource identity from either a mine's
// ResourcePayload or a resource pile's bare lib.Resource payload, the two
// shapes priorityModifier needs to handle (spec.md 4.3).
func resourceKindOf(t *lib.Tile) (lib.Resource, bool) {
	if payload, ok := t.ObjectPayload.(lib.ResourcePayload); ok {
		return payload.Resource, true
	}
	if res, ok := t.ObjectPayload.(lib.Resource); ok {
		return res, true
	}
	return 0, false
}

// priorityModifier is spec.md 4.3's "how much 1 unit is worth relative to 1
// gold", with the x2 short-resource and x1.5 recurring-cost bumps.
func (v *ObjectValuator) priorityModifier(t *lib.Tile) float64 {
	res, ok := resourceKindOf(t)
	if !ok {
		return 1
	}
	modifier := 1.0
	if b, ok := v.Kingdom.Budget[res]; ok {
		if b.Priority {
			modifier *= 2
		}
		if b.Recurring {
			modifier *= 1.5
		}
	}
	return modifier
}

func (v *ObjectValuator) artifactValue(t *lib.Tile) float64 {
	val, _ := t.ObjectPayload.(float64)
	if val == 0 {
		return 1
	}
	return val
}

func (v *ObjectValuator) resourcePileValue(t *lib.Tile) float64 {
	res, ok := t.ObjectPayload.(lib.Resource)
	if !ok {
		return 0
	}
	return v.ResourceBaseValue[res]
}

func (v *ObjectValuator) experienceToNextLevelRatio(hero *lib.Hero) float64 {
	return 0.5 // midpoint default absent a leveling model; host may override via payload
}

func (v *ObjectValuator) joinableDwellingStrength(hero *lib.Hero, t *lib.Tile) float64 {
	if hero.Army.IsFull() {
		return 0
	}
	s, _ := t.ObjectPayload.(float64)
	return s
}

func (v *ObjectValuator) affordableDwellingStrength(t *lib.Tile) float64 {
	s, _ := t.ObjectPayload.(float64)
	return s
}

func (v *ObjectValuator) freeUpgradeDelta(hero *lib.Hero, t *lib.Tile) float64 {
	d, _ := t.ObjectPayload.(float64)
	return d
}

func (v *ObjectValuator) movementBonusValue(t *lib.Tile) float64 { return 50 }

// isMoraleLuckCapped reports whether hero already sits at both the morale
// and luck ceilings (spec.md 4.3: "negative when hero is already capped").
func (v *ObjectValuator) isMoraleLuckCapped(hero *lib.Hero) bool {
	return hero.Morale >= lib.MaxMoraleLuck && hero.Luck >= lib.MaxMoraleLuck
}

// moraleLuckUsefulness scales 0..1 by how far below the ceiling the hero
// currently sits, averaged across morale and luck.
func (v *ObjectValuator) moraleLuckUsefulness(hero *lib.Hero) float64 {
	moraleRoom := float64(lib.MaxMoraleLuck-hero.Morale) / float64(lib.MaxMoraleLuck-lib.MinMoraleLuck)
	luckRoom := float64(lib.MaxMoraleLuck-hero.Luck) / float64(lib.MaxMoraleLuck-lib.MinMoraleLuck)
	usefulness := (moraleRoom + luckRoom) / 2
	if usefulness < 0 {
		return 0
	}
	if usefulness > 1 {
		return 1
	}
	return usefulness
}

// regionHostsFriendlyHero reports whether another friendly hero already
// occupies hero's region, the Fighter/Champion monster-value multiplier's
// gate (spec.md 4.3).
func (v *ObjectValuator) regionHostsFriendlyHero(hero *lib.Hero, tile lib.TileIndex) bool {
	t := v.Kingdom.World.Tile(tile)
	if t == nil {
		return false
	}
	for _, other := range v.Kingdom.Heroes {
		if other.ID == hero.ID {
			continue
		}
		ot := v.Kingdom.World.Tile(other.Position)
		if ot != nil && ot.RegionID == t.RegionID {
			return true
		}
	}
	return false
}

// SelectCourierRendezvous implements spec.md 4.3's preliminary Courier
// phase: it picks the nearest other friendly hero, by tile distance, as the
// Courier's baseline-0 target for this turn (spec.md S6). Friendly castles
// are not candidates, and no hero is picked (NoTile) when the Courier's
// Visited map records an enemy hero.
func (v *ObjectValuator) SelectCourierRendezvous(hero *lib.Hero) lib.TileIndex {
	var best lib.TileIndex = lib.NoTile
	bestDist := math.MaxInt64
	for _, other := range v.Kingdom.Heroes {
		if other.ID == hero.ID {
			continue
		}
		if hero.Visited[lib.ObjectEnemyHero] {
			continue
		}
		d := hexDistance(v.Kingdom.World, hero.Position, other.Position)
		if d < bestDist {
			bestDist = d
			best = other.Position
		}
	}
	v.CourierRendezvous = best
	return best
}
