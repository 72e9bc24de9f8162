package ai

import (
	"log/slog"

	"github.com/turnforge/heroesai/lib"
	"github.com/turnforge/heroesai/lib/battle"
	"github.com/turnforge/heroesai/lib/spell"
)

// BattlePlanner implements C7's unit_turn procedure (spec.md 4.7). Grounded
// on turnforge-weewar/lib/ai's DecisionStrategy interface, generalised from
// weewar's single best-move suggestion to fheroes2's full decision tree.
type BattlePlanner struct {
	Arena     *battle.Arena
	Positions *PositionValuator
	Spells    *SpellValuator

	TurnsSinceDeath   int
	AutoBattleOn      bool
	AttackerRetreatOK bool

	Log *slog.Logger
}

// NewBattlePlanner wires a planner for one arena.
func NewBattlePlanner(arena *battle.Arena, spells *spell.Table, log *slog.Logger) *BattlePlanner {
	if log == nil {
		log = slog.Default()
	}
	pv := &PositionValuator{Arena: arena}
	sv := &SpellValuator{Spells: spells, Arena: arena}
	return &BattlePlanner{Arena: arena, Positions: pv, Spells: sv, TurnsSinceDeath: 0, Log: log}
}

// NoteCasualties implements spec.md 4.7.1's turn-limit counter reset rule:
// the counter resets whenever either side's dead-count increases between
// consecutive turns.
func (p *BattlePlanner) NoteCasualties(deathsThisTurn bool) {
	if deathsThisTurn {
		p.TurnsSinceDeath = 0
		return
	}
	p.TurnsSinceDeath++
}

// UnitTurn implements spec.md 4.7's seven-step procedure for one unit.
func (p *BattlePlanner) UnitTurn(unit *battle.Unit, commander lib.Commander) []Command {
	// 1. Turn-limit gate.
	if p.TurnsSinceDeath >= lib.TurnLimit {
		if p.AutoBattleOn {
			p.AutoBattleOn = false
		}
		return []Command{retreat(unit.UID, "turn limit reached with no casualties")}
	}

	// 2. Berserk override.
	if unit.IsBerserk() {
		return p.berserkOverride(unit)
	}

	// 3. Analyse battle state.
	bc := p.analyseBattleState(unit)

	// 4. Retreat/surrender gate.
	if cmds, retreated := p.retreatGate(unit, commander, bc); retreated {
		return cmds
	}

	// 5. Spell cast.
	if commander != nil {
		if cmd, cast := p.castStep(unit, commander, bc); cast {
			return []Command{cmd}
		}
	}

	// 6. Unit decision tree.
	if unit.IsArcher() {
		return p.archerDecision(unit, bc)
	}
	if bc.defensive {
		return p.meleeDefensiveDecision(unit, bc)
	}
	return p.meleeOffensiveDecision(unit, bc)
}

// berserkOverride implements spec.md 4.7 step 2.
func (p *BattlePlanner) berserkOverride(unit *battle.Unit) []Command {
	nearest := p.nearestEnemy(unit)
	if nearest == nil {
		return []Command{skip(unit.UID, "no enemy on board")}
	}
	if unit.IsArcher() && p.Arena.HasLineOfSight(unit.Pos.Head, nearest.Pos.Head) {
		return []Command{attack(unit.UID, nearest.UID, battle.NoCell, nearest.Pos.Head, 0)}
	}
	if p.Arena.IsPositionReachable(unit.Pos.Head, unit.Speed, nearest.Pos.Head) {
		for _, n := range battle.Neighbours(nearest.Pos.Head) {
			if p.Arena.IsPositionReachable(unit.Pos.Head, unit.Speed, n) {
				dir := battle.DirectionBetween(n, nearest.Pos.Head)
				return []Command{attack(unit.UID, nearest.UID, n, nearest.Pos.Head, dir)}
			}
		}
	}
	moves := p.Arena.GetAllAvailableMoves(unit)
	best := battle.NoCell
	bestDist := 1 << 30
	for _, m := range moves {
		d := battle.Distance(m, nearest.Pos.Head)
		if d < bestDist {
			bestDist = d
			best = m
		}
	}
	if best == battle.NoCell {
		return []Command{skip(unit.UID, "berserk: nowhere to move")}
	}
	return []Command{move(unit.UID, best)}
}

func (p *BattlePlanner) nearestEnemy(unit *battle.Unit) *battle.Unit {
	var best *battle.Unit
	bestDist := 1 << 30
	for _, e := range p.Arena.GetEnemyForce(unit.Color) {
		d := battle.Distance(unit.Pos.Head, e.Pos.Head)
		if d < bestDist {
			bestDist = d
			best = e
		}
	}
	return best
}

// analyseBattleState implements spec.md 4.7 step 3.
func (p *BattlePlanner) analyseBattleState(unit *battle.Unit) BattleContext {
	mine := p.Arena.GetForce(unit.Color)
	enemies := p.Arena.GetEnemyForce(unit.Color)

	var myStrength, enemyStrength, myShooter, enemyShooter, mySpeedSum, enemySpeedSum float64
	for _, u := range mine {
		myStrength += u.Strength()
		mySpeedSum += float64(u.Speed) * u.Strength()
		if u.IsArcher() {
			myShooter += u.Strength()
		}
	}
	for _, u := range enemies {
		enemyStrength += u.Strength()
		enemySpeedSum += float64(u.Speed) * u.Strength()
		if u.IsArcher() {
			enemyShooter += u.Strength()
		}
	}

	defending := p.Arena.Geometry.CastleCells != nil && unit.Color == p.Arena.DefenderColor
	if defending && !unit.IsArcher() {
		enemyShooter += p.towerStrength()
	}
	wallPenaltyApplies := defending == false && p.Arena.Geometry.CastleCells != nil && unit.IsArcher()
	if wallPenaltyApplies {
		myShooter = myShooter / (1 + p.wallPenaltyPercent(unit)/100)
	}

	myShooterRatio := ratio(myShooter, myStrength)
	enemyShooterRatio := ratio(enemyShooter, enemyStrength)
	overmatched := enemyStrength >= myStrength*6 || myStrength >= enemyStrength*10

	onOurHalf := battle.DistanceFromEdgeAlongX(unit.Pos.Head, unit.Pos.Reflected) <= battle.Width/2

	defensive := onOurHalf && (defending ||
		(myShooter >= enemyShooter && myShooterRatio >= 0.15 && enemyShooterRatio <= 0.66 && !overmatched))

	bc := BattleContext{
		MyStrength: myStrength, EnemyStrength: enemyStrength,
		MyShooterStrength: myShooter, EnemyShooterStrength: enemyShooter,
		AverageArmySpeed: ratio(mySpeedSum+enemySpeedSum, myStrength+enemyStrength),
		Winning2to1:      myStrength >= enemyStrength*2,
	}
	bc.defensive = defensive
	bc.cautiousOffensive = !defensive && enemyShooterRatio < 0.15
	return bc
}

func ratio(a, b float64) float64 {
	if b == 0 {
		return 0
	}
	return a / b
}

// towerStrength is a data input the host's siege model owns (spec.md 1);
// defaulted to zero when the arena carries no castle geometry.
func (p *BattlePlanner) towerStrength() float64 {
	if p.Arena.Geometry.CastleCells == nil {
		return 0
	}
	return 150 // two side towers plus the keep, averaged; the exact per-tower HP/damage table is a host data input
}

// wallPenaltyPercent is spec.md 4.7 step 3's `wall_penalty`, waived when the
// attacker carries Archery or the No-Shooting-Penalty artifact — a data
// input the host surfaces via ModNoShootingPenalty.
func (p *BattlePlanner) wallPenaltyPercent(unit *battle.Unit) float64 {
	if unit.Modifiers.Has(battle.ModNoShootingPenalty) {
		return 0
	}
	return 50
}

// retreatGate implements spec.md 4.4's "Retreat gate" for the battle
// planner's unit turn.
func (p *BattlePlanner) retreatGate(unit *battle.Unit, commander lib.Commander, bc BattleContext) ([]Command, bool) {
	advantage := lib.AdvantageCoefficientSmall
	if bc.MyStrength*advantage >= bc.EnemyStrength {
		return nil, false
	}

	var out []Command
	if commander != nil {
		known := knownSpells(commander)
		spellPoints := commanderSpellPoints(commander)
		if score := p.Spells.HighestDamageAffordable(known, spellPoints, unit.Color); score.Spell != spell.None {
			out = append(out, cast(unit.UID, score.Spell, score.Cell))
		}
	}

	preferSurrender := p.carriesHighValueArtifacts(commander) || p.isUniqueHero(commander)
	if preferSurrender && p.AttackerRetreatOK {
		out = append(out, surrender(unit.UID, "overmatched, carrying irreplaceable assets"))
		return out, true
	}
	out = append(out, retreat(unit.UID, "overmatched"))
	return out, true
}

func (p *BattlePlanner) carriesHighValueArtifacts(commander lib.Commander) bool {
	h, ok := commander.(*lib.Hero)
	return ok && len(h.Artifacts.IDs()) > 0
}

func (p *BattlePlanner) isUniqueHero(commander lib.Commander) bool {
	h, ok := commander.(*lib.Hero)
	return ok && h.Unique
}

// castStep implements spec.md 4.7 step 5.
func (p *BattlePlanner) castStep(unit *battle.Unit, commander lib.Commander, bc BattleContext) (Command, bool) {
	known := knownSpells(commander)
	spellPoints := commanderSpellPoints(commander)
	if len(known) == 0 || spellPoints <= 0 {
		return Command{}, false
	}
	score := p.Spells.BestSpell(commander, known, spellPoints, bc, false, unit.Color)
	if score.Spell == spell.None {
		return Command{}, false
	}
	return cast(unit.UID, score.Spell, score.Cell), true
}

func knownSpells(commander lib.Commander) []spell.ID {
	var out []spell.ID
	switch c := commander.(type) {
	case *lib.Hero:
		for id, known := range c.SpellBook {
			if known {
				out = append(out, spell.ID(id))
			}
		}
	case *lib.Captain:
		for id, known := range c.SpellBook {
			if known {
				out = append(out, spell.ID(id))
			}
		}
	}
	return out
}

func commanderSpellPoints(commander lib.Commander) int {
	switch c := commander.(type) {
	case *lib.Hero:
		return c.SpellPoints
	case *lib.Captain:
		return c.SpellPoints
	default:
		return 0
	}
}

// archerDecision implements spec.md 4.7 step 6's "Archer" branch.
func (p *BattlePlanner) archerDecision(unit *battle.Unit, bc BattleContext) []Command {
	if retreatCell, ok := p.archerRetreatCell(unit); ok {
		return []Command{move(unit.UID, retreatCell)}
	}

	if unit.IsHandFighting(p.Arena) {
		best := battle.NoCell
		bestScore := -1e18
		for _, n := range battle.Neighbours(unit.Pos.Head) {
			enemy := p.Arena.UnitAt(n)
			if enemy == nil || enemy.Color == unit.Color {
				continue
			}
			score := meleeDamage(unit, enemy) - retaliationDamage(enemy, unit)
			if score > bestScore {
				bestScore = score
				best = n
			}
		}
		if best == battle.NoCell {
			return []Command{skip(unit.UID, "archer blocked with no attack")}
		}
		target := p.Arena.UnitAt(best)
		return []Command{attack(unit.UID, target.UID, battle.NoCell, best, 0)}
	}

	enemies := p.Arena.GetEnemyForce(unit.Color)
	if len(enemies) == 0 {
		return []Command{skip(unit.UID, "no enemy to shoot")}
	}

	if unit.Abilities.Has(battle.AbilityAreaShot) {
		best := enemies[0]
		bestVal := -1.0
		for _, e := range enemies {
			val := p.splashValue(unit, e)
			if val > bestVal {
				bestVal = val
				best = e
			}
		}
		return []Command{attack(unit.UID, best.UID, battle.NoCell, best.Pos.Head, 0)}
	}

	best := enemies[0]
	bestThreat := -1.0
	for _, e := range enemies {
		t := e.EvaluateThreatForUnit(unit)
		if t > bestThreat {
			bestThreat = t
			best = e
		}
	}
	return []Command{attack(unit.UID, best.UID, battle.NoCell, best.Pos.Head, 0)}
}

// archerRetreatCell implements spec.md 4.7 step 6(a): temporarily remove the
// unit, assess threat at every reachable cell, and retreat only when every
// currently-threatening enemy is slower by at least 2 speed points.
func (p *BattlePlanner) archerRetreatCell(unit *battle.Unit) (battle.Cell, bool) {
	enemies := p.Arena.GetEnemyForce(unit.Color)
	if len(enemies) == 0 {
		return battle.NoCell, false
	}
	threatening := 0
	for _, e := range enemies {
		if !p.Arena.IsPositionReachable(e.Pos.Head, e.Speed, unit.Pos.Head) {
			continue
		}
		threatening++
		if unit.Speed-e.Speed < 2 {
			return battle.NoCell, false
		}
	}
	if threatening == 0 {
		return battle.NoCell, false
	}

	p.Arena.RemoveUnit(unit)
	defer p.Arena.PlaceAt(unit)

	var candidates []battle.Cell
	for c := battle.Cell(0); c < battle.Size; c++ {
		if p.Arena.UnitAt(c) != nil {
			continue
		}
		if !p.Arena.IsPositionReachable(unit.Pos.Head, unit.Speed, c) {
			continue
		}
		threatened := false
		for _, e := range enemies {
			if battle.IsNear(c, e.Pos.Head) || p.Arena.IsPositionReachable(e.Pos.Head, e.Speed, c) {
				threatened = true
				break
			}
		}
		if !threatened {
			candidates = append(candidates, c)
		}
	}
	if len(candidates) == 0 {
		return battle.NoCell, false
	}

	centre := battle.Cell(battle.Size / 2)
	best := candidates[0]
	bestNearest, bestToCentre := -1, 1<<30
	for _, c := range candidates {
		nearest := 1 << 30
		for _, e := range enemies {
			if d := battle.Distance(c, e.Pos.Head); d < nearest {
				nearest = d
			}
		}
		toCentre := battle.Distance(c, centre)
		if nearest > bestNearest || (nearest == bestNearest && toCentre < bestToCentre) {
			bestNearest = nearest
			bestToCentre = toCentre
			best = c
		}
	}
	return best, true
}

func meleeDamage(attacker, defender *battle.Unit) float64 {
	avg := float64(attacker.DamageMin+attacker.DamageMax) / 2
	return avg * float64(attacker.Count)
}

func retaliationDamage(defender, attacker *battle.Unit) float64 {
	if defender.Modifiers.Has(battle.ModRetaliationUsed) {
		return 0
	}
	avg := float64(defender.DamageMin+defender.DamageMax) / 2
	return avg * float64(defender.Count)
}

func (p *BattlePlanner) splashValue(shooter, primary *battle.Unit) float64 {
	total := primary.EvaluateThreatForUnit(shooter)
	for _, n := range battle.Neighbours(primary.Pos.Head) {
		if other := p.Arena.UnitAt(n); other != nil && other.Color != shooter.Color {
			total += other.EvaluateThreatForUnit(shooter)
		}
	}
	return total
}

// meleeOffensiveDecision implements spec.md 4.7 step 6's "Melee, offensive"
// branch.
func (p *BattlePlanner) meleeOffensiveDecision(unit *battle.Unit, bc BattleContext) []Command {
	enemies := p.Arena.GetEnemyForce(unit.Color)
	if len(enemies) == 0 {
		return []Command{skip(unit.UID, "no enemy on board")}
	}

	var best CandidatePosition
	haveBest := false
	var bestTarget *battle.Unit
	for _, e := range enemies {
		for _, cand := range p.Positions.Evaluate(unit, e) {
			if !cand.CanAttack {
				continue
			}
			if !haveBest || better(cand, best) {
				best = cand
				haveBest = true
				bestTarget = e
			}
		}
	}
	if haveBest {
		dir := battle.DirectionBetween(best.Cell, bestTarget.Pos.Head)
		return []Command{attack(unit.UID, bestTarget.UID, best.Cell, bestTarget.Pos.Head, dir)}
	}

	// Distance-based target: prefer enemies that cannot evade.
	target := p.bestEvasionProofTarget(unit, enemies)
	if target != nil {
		dest := p.stepToward(unit, target.Pos.Head)
		if dest != battle.NoCell {
			return []Command{move(unit.UID, dest)}
		}
	}

	if p.Arena.Geometry.MoatCells != nil {
		if dest := p.attackFromMoat(unit, enemies); dest != battle.NoCell {
			return []Command{move(unit.UID, dest)}
		}
	}

	if stop := p.cautiousOffensiveStop(unit, enemies); stop != battle.NoCell {
		return []Command{move(unit.UID, stop)}
	}

	if p.Arena.Geometry.CastleCells != nil {
		for _, wall := range p.Arena.Geometry.SiegeWallCells {
			if p.Arena.IsPositionReachable(unit.Pos.Head, unit.Speed, wall) {
				return []Command{move(unit.UID, wall)}
			}
		}
	}

	return []Command{skip(unit.UID, "no attack or advance available")}
}

func (p *BattlePlanner) bestEvasionProofTarget(unit *battle.Unit, enemies []*battle.Unit) *battle.Unit {
	var best *battle.Unit
	bestScore := -1
	for _, e := range enemies {
		score := 0
		if e.IsImmovable() {
			score = 3
		} else if e.Speed < unit.Speed && !e.IsFlyer() {
			score = 2
		} else if e.IsArcher() {
			score = 1
		}
		if score > bestScore {
			bestScore = score
			best = e
		}
	}
	return best
}

func (p *BattlePlanner) stepToward(unit *battle.Unit, target battle.Cell) battle.Cell {
	moves := p.Arena.GetAllAvailableMoves(unit)
	best := battle.NoCell
	bestDist := 1 << 30
	for _, m := range moves {
		if d := battle.Distance(m, target); d < bestDist {
			bestDist = d
			best = m
		}
	}
	return best
}

func (p *BattlePlanner) attackFromMoat(unit *battle.Unit, enemies []*battle.Unit) battle.Cell {
	for c := range p.Arena.Geometry.MoatCells {
		if p.Arena.IsPositionReachable(unit.Pos.Head, unit.Speed, c) {
			for _, e := range enemies {
				if battle.IsNear(c, e.Pos.Head) {
					return c
				}
			}
		}
	}
	return battle.NoCell
}

// cautiousOffensiveStop implements spec.md 4.5's "path step with the lowest
// cumulative threat from non-shooter enemies".
func (p *BattlePlanner) cautiousOffensiveStop(unit *battle.Unit, enemies []*battle.Unit) battle.Cell {
	moves := p.Arena.GetAllAvailableMoves(unit)
	best := battle.NoCell
	bestThreat := 1e18
	for _, m := range moves {
		t := p.Positions.ThreatFromNonShooters(unit, m)
		if t < bestThreat {
			bestThreat = t
			best = m
		}
	}
	return best
}

// meleeDefensiveDecision implements spec.md 4.7 step 6's "Melee, defensive"
// branch.
func (p *BattlePlanner) meleeDefensiveDecision(unit *battle.Unit, bc BattleContext) []Command {
	archers := p.friendlyArchers(unit)
	if len(archers) > 0 {
		bestArcher, bestCell, bestScore := (*battle.Unit)(nil), battle.NoCell, -1e18
		for _, a := range archers {
			for _, n := range battle.Neighbours(a.Pos.Head) {
				if p.Arena.UnitAt(n) != nil {
					continue
				}
				if !p.Arena.IsPositionReachable(unit.Pos.Head, unit.Speed, n) {
					continue
				}
				dist := float64(battle.Distance(unit.Pos.Head, n))
				score := a.Strength() - dist*(bc.MyShooterStrength/15)
				if score > bestScore {
					bestScore = score
					bestArcher = a
					bestCell = n
				}
			}
		}
		if bestArcher != nil {
			for _, n := range battle.Neighbours(bestArcher.Pos.Head) {
				if enemy := p.Arena.UnitAt(n); enemy != nil && enemy.Color != unit.Color {
					dir := battle.DirectionBetween(bestCell, enemy.Pos.Head)
					return []Command{attack(unit.UID, enemy.UID, bestCell, enemy.Pos.Head, dir)}
				}
			}
			return []Command{move(unit.UID, bestCell)}
		}
	}

	canStepOut := unit.Modifiers.Has(battle.ModUnlimitedRetaliation) || p.coversAreaShooter(unit)
	for _, e := range p.Arena.GetEnemyForce(unit.Color) {
		for _, cand := range p.Positions.Evaluate(unit, e) {
			if !cand.CanAttack {
				continue
			}
			onOurHalf := battle.DistanceFromEdgeAlongX(cand.Cell, unit.Pos.Reflected) <= battle.Width/2
			if !onOurHalf && !canStepOut {
				continue
			}
			dir := battle.DirectionBetween(cand.Cell, e.Pos.Head)
			return []Command{attack(unit.UID, e.UID, cand.Cell, e.Pos.Head, dir)}
		}
	}
	return []Command{skip(unit.UID, "defensive: nothing to attack within bounds")}
}

func (p *BattlePlanner) friendlyArchers(unit *battle.Unit) []*battle.Unit {
	var out []*battle.Unit
	for _, u := range p.Arena.GetForce(unit.Color) {
		if u.IsArcher() && u.UID != unit.UID {
			out = append(out, u)
		}
	}
	return out
}

func (p *BattlePlanner) coversAreaShooter(unit *battle.Unit) bool {
	for _, n := range battle.Neighbours(unit.Pos.Head) {
		if other := p.Arena.UnitAt(n); other != nil && other.Color == unit.Color && other.Abilities.Has(battle.AbilityAreaShot) {
			return true
		}
	}
	return false
}
