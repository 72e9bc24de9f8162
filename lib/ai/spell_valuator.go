package ai

import (
	"math"

	"github.com/turnforge/heroesai/lib"
	"github.com/turnforge/heroesai/lib/battle"
	"github.com/turnforge/heroesai/lib/spell"
)

// SpellScore is one castable spell's evaluated strategic value
// (spec.md 4.6 "Output is (spell_id, target_cell, value)").
type SpellScore struct {
	Spell spell.ID
	Cell  battle.Cell
	Value float64
}

// SpellValuator implements C6. Grounded on
// original_source/src/fheroes2/ai/normal/ai_normal_spell.cpp's per-family
// dispatch, reshaped as a table-driven Go scorer over the spell.Table
// static data rather than a long C++ switch.
type SpellValuator struct {
	Spells *spell.Table
	Arena  *battle.Arena
}

// BattleContext bundles the army/shooter/speed aggregates spec.md 4.6's
// threshold and per-family formulas need; the Battle Planner (C7) computes
// these once per unit turn via analyseBattleState and passes them in.
type BattleContext struct {
	MyStrength, EnemyStrength               float64
	MyShooterStrength, EnemyShooterStrength float64
	AverageArmySpeed                        float64
	Retreating                              bool
	Winning2to1                             bool

	// defensive and cautiousOffensive are the tactics-mode flags C7's
	// analyseBattleState decides (spec.md 4.7 step 3).
	defensive         bool
	cautiousOffensive bool
}

// Threshold implements spec.md 4.6's value-threshold formula.
func (bc BattleContext) Threshold() float64 {
	t := bc.MyStrength * bc.MyStrength / math.Max(bc.EnemyStrength, 1) * 0.04
	if bc.EnemyShooterStrength > bc.EnemyStrength*0.5 {
		t *= 0.5
	}
	return t
}

// BestSpell scores every spell `caster` knows/can-afford/is-not-suppressed
// and returns the best one above threshold, or (None,...) if none clears it
// — unless it is a Resurrect (never auto-selected) or caster is retreating
// (spec.md 4.6).
func (sv *SpellValuator) BestSpell(caster lib.Commander, known []spell.ID, spellPoints int, bc BattleContext, spellPowerHalfSpent bool, casterColor lib.Color) SpellScore {
	threshold := bc.Threshold()
	if spellPowerHalfSpent {
		threshold *= 2
	}

	best := SpellScore{Spell: spell.None}
	for _, id := range known {
		def, ok := sv.Spells.Get(id)
		if !ok || !def.IsCombat || def.Cost > spellPoints {
			continue
		}
		score := sv.Score(id, bc, casterColor)
		if score.Value > best.Value {
			best = score
		}
	}

	if best.Spell == spell.None {
		return best
	}
	if def, _ := sv.Spells.Get(best.Spell); def != nil && def.Family == spell.FamilyResurrect {
		return SpellScore{Spell: spell.None}
	}
	if bc.Retreating {
		return SpellScore{Spell: spell.None}
	}
	if best.Value < threshold {
		return SpellScore{Spell: spell.None}
	}
	return best
}

// HighestDamageAffordable implements the farewell cast named in spec.md
// 4.4's retreat gate: "before retreating/surrendering, cast the
// highest-damage spell affordable". Unlike BestSpell this bypasses the
// value threshold entirely — a unit about to leave combat takes any free
// damage it can afford.
func (sv *SpellValuator) HighestDamageAffordable(known []spell.ID, spellPoints int, casterColor lib.Color) SpellScore {
	best := SpellScore{Spell: spell.None}
	for _, id := range known {
		def, ok := sv.Spells.Get(id)
		if !ok || !def.IsCombat || def.Family != spell.FamilyDirectDamage || def.Cost > spellPoints {
			continue
		}
		raw, cell := sv.directDamageValue(def, BattleContext{}, casterColor)
		if sv.isUseless(id, cell) {
			continue
		}
		if raw > best.Value || best.Spell == spell.None {
			best = SpellScore{Spell: id, Cell: cell, Value: raw}
		}
	}
	return best
}

// Score dispatches to the per-family scorer and applies the sub-linear
// cost penalty (spec.md 4.6 final paragraph).
func (sv *SpellValuator) Score(id spell.ID, bc BattleContext, casterColor lib.Color) SpellScore {
	def, ok := sv.Spells.Get(id)
	if !ok {
		return SpellScore{Spell: spell.None}
	}

	var raw float64
	var cell battle.Cell = battle.NoCell

	switch def.Family {
	case spell.FamilyDirectDamage:
		raw, cell = sv.directDamageValue(def, bc, casterColor)
	case spell.FamilyDispel:
		raw, cell = sv.dispelValue(def, casterColor)
	case spell.FamilyResurrect:
		raw, cell = sv.resurrectValue(def, bc, casterColor)
	case spell.FamilySummon:
		raw = sv.summonValue(def, bc)
	case spell.FamilyBuffDebuff:
		raw, cell = sv.buffDebuffValue(id, def, casterColor)
	case spell.FamilyDragonSlayer:
		raw, cell = sv.dragonSlayerValue(def, casterColor)
	case spell.FamilyTeleport:
		raw, cell = sv.teleportValue(def, casterColor)
	case spell.FamilyEarthquake:
		raw = sv.earthquakeValue(def, casterColor)
	}

	if sv.isUseless(id, cell) {
		return SpellScore{Spell: spell.None}
	}

	penalty := sv.Spells.CostPenalty(id)
	return SpellScore{Spell: id, Cell: cell, Value: raw / penalty}
}

func (sv *SpellValuator) enemies(color lib.Color) []*battle.Unit { return sv.Arena.GetEnemyForce(color) }
func (sv *SpellValuator) friends(color lib.Color) []*battle.Unit  { return sv.Arena.GetForce(color) }

// directDamageValue implements spec.md 4.6's direct-damage family,
// including the chain/mass area expansion and retreat-mode kills-only rule.
func (sv *SpellValuator) directDamageValue(def *spell.Definition, bc BattleContext, casterColor lib.Color) (float64, battle.Cell) {
	total := 0.0
	var bestCell battle.Cell = battle.NoCell
	bestUnitValue := -math.MaxFloat64

	targets := sv.Arena.Units
	for _, target := range targets {
		if target.Count == 0 {
			continue
		}
		friendly := target.Color == casterColor
		dmg := float64(def.Damage) * float64(target.Count) // attacker spell-power folded in by the host via def.Damage
		resistFraction := 1.0 // resistance is a data input from the monster table
		effective := dmg * resistFraction
		wouldDie := effective >= float64(target.HP+target.MaxHP*(target.Count-1))

		var unitValue float64
		if wouldDie {
			bonus := 0.035
			if float64(target.Speed) > bc.AverageArmySpeed {
				bonus = 0.07
			}
			unitValue = target.Strength() + bonus*bc.EnemyStrength
		} else {
			fraction := effective / math.Max(float64(target.HP+target.MaxHP*(target.Count-1)), 1)
			unitValue = fraction * target.Strength()
			if target.IsImmovable() {
				unitValue *= 0.5
			}
		}

		if friendly {
			unitValue = -unitValue // friendly casualties subtract from a chain/mass spell's value
		}

		if bc.Retreating && !wouldDie {
			unitValue = 0
		}

		if !def.IsMass && !def.IsArea {
			if friendly {
				continue // never single-target our own unit
			}
			if unitValue > bestUnitValue {
				bestUnitValue = unitValue
				bestCell = target.Pos.Head
			}
			continue
		}
		total += unitValue
	}

	if !def.IsMass && !def.IsArea {
		if bestCell == battle.NoCell {
			return 0, battle.NoCell
		}
		return bestUnitValue, bestCell
	}
	return total, battle.NoCell
}

// dispelValue is spec.md 4.6's dispel/mass-dispel family.
func (sv *SpellValuator) dispelValue(def *spell.Definition, casterColor lib.Color) (float64, battle.Cell) {
	isBuff := func(u *battle.Unit) bool {
		return u.Modifiers.Has(battle.ModBless) || u.Modifiers.Has(battle.ModHaste) || u.Modifiers.Has(battle.ModShield)
	}
	isDebuff := func(u *battle.Unit) bool {
		return u.Modifiers.Has(battle.ModCurse) || u.Modifiers.Has(battle.ModSlow) || u.Modifiers.Has(battle.ModBlind) ||
			u.Modifiers.Has(battle.ModParalyze) || u.Modifiers.Has(battle.ModBerserk) || u.Modifiers.Has(battle.ModHypnotize)
	}
	total := 0.0
	for _, u := range sv.Arena.Units {
		buffed, debuffed := isBuff(u), isDebuff(u)
		if !buffed && !debuffed {
			continue
		}
		friendly := u.Color == casterColor
		var sign float64
		switch {
		case friendly && buffed:
			sign = -1.0 // dispelling our own buff is a loss
		case friendly && debuffed:
			sign = 1.0 // dispelling a debuff off our unit helps us
		case !friendly && buffed:
			sign = 1.0 // dispelling the enemy's buff helps us
		default:
			sign = -1.0 // dispelling our curse off the enemy helps them
		}
		total += sign * u.Strength() * 0.1
	}
	return total, battle.NoCell
}

// resurrectValue is spec.md 4.6's resurrect/animate-dead family. It never
// clears the auto-select threshold (BestSpell filters Resurrect out), but
// is still scored so a host UI can surface it as an option.
func (sv *SpellValuator) resurrectValue(def *spell.Definition, bc BattleContext, casterColor lib.Color) (float64, battle.Cell) {
	total := 0.0
	var bestCell battle.Cell = battle.NoCell
	best := -1.0
	for _, u := range sv.friends(casterColor) {
		missing := u.MaxHP*u.Count - u.HP
		if missing <= 0 {
			continue
		}
		restored := def.Restore
		value := float64(min(missing, restored)) * u.Strength() / math.Max(float64(u.MaxHP), 1)
		if bc.Winning2to1 {
			value *= 2
		}
		if value > best {
			best = value
			bestCell = u.Pos.Head
		}
		total += value
	}
	return total, bestCell
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}

// summonValue is spec.md 4.6's summon-elemental family.
func (sv *SpellValuator) summonValue(def *spell.Definition, bc BattleContext) float64 {
	value := def.ExtraValue * 10
	if bc.Winning2to1 {
		value *= 0.5
	}
	return value
}

// spellRatios are the per-effect multipliers named in spec.md 4.6's
// buff/debuff family.
var spellRatios = map[spell.ID]float64{
	spell.Curse:  0.15,
	spell.Bless:  0.15,
	spell.MassCurse: 0.15,
	spell.MassBless: 0.15,
	spell.Blind:  0.8,
	spell.Paralyze: 0.85,
	spell.Berserker: 0.85,
	spell.Hypnotize: 1.5,
	spell.Bloodlust: 0.2,
}

// buffDebuffTargets picks the side a given buff/debuff spell is cast on:
// Bless/Bloodlust/Haste strengthen our own army, Curse/Blind/Paralyze/
// Hypnotize/Slow weaken the enemy's.
func (sv *SpellValuator) buffDebuffTargets(id spell.ID, casterColor lib.Color) []*battle.Unit {
	switch id {
	case spell.Bless, spell.MassBless, spell.Bloodlust, spell.Haste, spell.MassHaste:
		return sv.friends(casterColor)
	default:
		return sv.enemies(casterColor)
	}
}

func (sv *SpellValuator) buffDebuffValue(id spell.ID, def *spell.Definition, casterColor lib.Color) (float64, battle.Cell) {
	switch id {
	case spell.Slow, spell.MassSlow:
		return sv.speedChangeValue(0.1, sv.enemies(casterColor)), battle.NoCell
	case spell.Haste, spell.MassHaste:
		return sv.speedChangeValue(0.05, sv.friends(casterColor)), battle.NoCell
	case spell.MirrorImage:
		return sv.bestTargetValue(0.33, sv.friends(casterColor)), battle.NoCell
	case spell.AntiMagic:
		return sv.antiMagicValue(casterColor), sv.lowestHPUnitCell(sv.friends(casterColor))
	case spell.Berserker:
		return sv.berserkerValue(casterColor), sv.lowestHPUnitCell(sv.enemies(casterColor))
	default:
		ratio, ok := spellRatios[id]
		if !ok {
			ratio = 0.15
		}
		targets := sv.buffDebuffTargets(id, casterColor)
		best := 0.0
		var cell battle.Cell = battle.NoCell
		for _, u := range targets {
			if u.Count == 0 {
				continue
			}
			if id == spell.Blind || id == spell.Paralyze {
				if len(sv.enemies(casterColor)) <= 1 {
					continue
				}
				if u.Modifiers.Has(battle.ModUnlimitedRetaliation) && !u.Modifiers.Has(battle.ModRetaliationUsed) {
					continue
				}
			}
			val := ratio * u.Strength()
			if (id == spell.Bless && u.Modifiers.Has(battle.ModCurse)) || (id == spell.Curse && u.Modifiers.Has(battle.ModBless)) {
				val *= 2
			}
			if val > best {
				best = val
				cell = u.Pos.Head
			}
		}
		return best, cell
	}
}

func (sv *SpellValuator) speedChangeValue(ratio float64, targets []*battle.Unit) float64 {
	total := 0.0
	for _, u := range targets {
		total += ratio * float64(u.Speed) * u.Strength() / 10
	}
	return total
}

func (sv *SpellValuator) bestTargetValue(baseRatio float64, targets []*battle.Unit) float64 {
	best := 0.0
	for _, u := range targets {
		ratio := baseRatio
		if u.IsFlyer() {
			ratio = 0.55
		}
		if u.IsArcher() {
			ratio = 1.0
		}
		if v := ratio * u.Strength(); v > best {
			best = v
		}
	}
	return best
}

// antiMagicValue scores protecting our own army, proportional to how much of
// it already carries a spell effect worth shielding against further magic.
func (sv *SpellValuator) antiMagicValue(casterColor lib.Color) float64 {
	myStrength, mySpellStrength := 0.0, 0.0
	for _, u := range sv.friends(casterColor) {
		myStrength += u.Strength()
		if u.Modifiers != 0 {
			mySpellStrength += u.Strength() * 0.1
		}
	}
	val := 0.036 * mySpellStrength / 200
	if val > 0.9 {
		val = 0.9
	}
	if mySpellStrength > myStrength {
		val *= 1.5
	}
	return val
}

func (sv *SpellValuator) berserkerValue(casterColor lib.Color) float64 {
	target := sv.lowestHPUnit(sv.enemies(casterColor))
	if target == nil || target.IsArcher() {
		return 0
	}
	dist := battle.DistanceFromEdgeAlongX(target.Pos.Head, target.Pos.Reflected)
	if dist == 0 {
		dist = 1
	}
	return spellRatios[spell.Berserker] * target.Strength() / float64(dist)
}

func (sv *SpellValuator) lowestHPUnit(units []*battle.Unit) *battle.Unit {
	var best *battle.Unit
	for _, u := range units {
		if u.Count == 0 {
			continue
		}
		if best == nil || u.HP < best.HP {
			best = u
		}
	}
	return best
}

func (sv *SpellValuator) lowestHPUnitCell(units []*battle.Unit) battle.Cell {
	if u := sv.lowestHPUnit(units); u != nil {
		return u.Pos.Head
	}
	return battle.NoCell
}

// dragonSlayerValue implements the specialised valuator spec.md 9 calls for
// (the generic TODO path in original_source/ is replaced, per SPEC_FULL.md).
func (sv *SpellValuator) dragonSlayerValue(def *spell.Definition, casterColor lib.Color) (float64, battle.Cell) {
	dragonStrength, totalEnemy := 0.0, 0.0
	var dragonCell battle.Cell = battle.NoCell
	var bestDragonStrength float64
	for _, u := range sv.enemies(casterColor) {
		totalEnemy += u.Strength()
		if isDragon(u.MonsterID) {
			dragonStrength += u.Strength()
			if u.Strength() > bestDragonStrength {
				bestDragonStrength = u.Strength()
				dragonCell = u.Pos.Head
			}
		}
	}
	if dragonStrength == 0 || totalEnemy == 0 {
		return 0, battle.NoCell
	}
	bloodlustRatio := spellRatios[spell.Bloodlust]
	attackBonusRatio := 0.5
	share := dragonStrength / totalEnemy
	return bloodlustRatio * attackBonusRatio * share * dragonStrength, dragonCell
}

// isDragon is a data-input classification the host's monster table owns;
// represented here as a small set of known dragon ids for self-contained
// testing.
func isDragon(monsterID int) bool {
	switch monsterID {
	case 1001, 1002, 1003: // dragon family ids
		return true
	default:
		return false
	}
}

// teleportValue implements spec.md 4.6's Teleport family: only valuable for
// a grounded, non-shooter unit currently unable to reach any enemy. The
// "can teleport anywhere" flag is granted scoped via battle.Unit.CanTeleport
// inside canReachAnyEnemy, which also releases it (spec.md 5).
func (sv *SpellValuator) teleportValue(def *spell.Definition, casterColor lib.Color) (float64, battle.Cell) {
	best := 0.0
	var bestCell battle.Cell = battle.NoCell
	for _, u := range sv.friends(casterColor) {
		if u.IsFlyer() || u.IsArcher() {
			continue
		}
		if sv.canReachAnyEnemy(u) {
			continue
		}
		val := spellRatios[spell.Bloodlust] * u.Strength()
		if val > best {
			best = val
			bestCell = u.Pos.Head
		}
	}
	return best, bestCell
}

// canReachAnyEnemy grants u a scoped teleport-anywhere flag, re-queries
// reachability, and always releases the flag before returning — the guard
// pattern spec.md 5 requires for scoped mutations. Arena.IsPositionReachable
// does not consult the flag, so the answer is the unit's ordinary
// reachability within its speed.
func (sv *SpellValuator) canReachAnyEnemy(u *battle.Unit) bool {
	saved := u.CanTeleport
	u.CanTeleport = true
	defer func() { u.CanTeleport = saved }()

	for _, other := range sv.Arena.Units {
		if other.Color == u.Color {
			continue
		}
		if sv.Arena.IsPositionReachable(u.Pos.Head, u.Speed, other.Pos.Head) {
			return true
		}
	}
	return false
}

// earthquakeValue is spec.md 4.6's Earthquake family: only valuable when
// besieging a castle with melee units present.
func (sv *SpellValuator) earthquakeValue(def *spell.Definition, casterColor lib.Color) float64 {
	if sv.Arena.Geometry.CastleCells == nil {
		return 0
	}
	meleeStrength, totalStrength, shooterStrength := 0.0, 0.0, 0.0
	for _, u := range sv.friends(casterColor) {
		totalStrength += u.Strength()
		if u.IsArcher() {
			shooterStrength += u.Strength()
		} else {
			meleeStrength += u.Strength()
		}
	}
	if meleeStrength == 0 || totalStrength == 0 {
		return 0
	}
	meleeShare := meleeStrength / totalStrength
	damagedTargets, totalTargets := 2.0, float64(len(sv.Arena.Geometry.CastleCells))
	if totalTargets == 0 {
		totalTargets = 1
	}
	avgDamage := 20.0
	shooterShare := shooterStrength / totalStrength
	return meleeStrength * meleeShare * damagedTargets / totalTargets * avgDamage * shooterShare * 0.2
}

// isUseless implements spec.md 4.6's uselessness filter for a single target
// cell: it drops a spell aimed at an empty cell, Resurrect aimed at a
// death-immune unit, Slow/Haste/Berserker/Teleport aimed at an immovable
// unit, and any spell missing from the table or costing nothing. It does
// not check whether the target already carries the spell's effect, other
// immunities, or the spell's duration.
func (sv *SpellValuator) isUseless(id spell.ID, cell battle.Cell) bool {
	if cell == battle.NoCell {
		return false // mass/area spells have no single target cell to check
	}
	target := sv.Arena.UnitAt(cell)
	if target == nil {
		return true
	}
	if target.Modifiers.Has(battle.ModDeathImmune) && id == spell.Resurrect {
		return true
	}
	if target.IsImmovable() && id != spell.AntiMagic {
		switch id {
		case spell.Slow, spell.Haste, spell.Berserker, spell.Teleport:
			return true
		}
	}
	def, ok := sv.Spells.Get(id)
	if !ok || def.Cost == 0 {
		return true
	}
	return false
}
