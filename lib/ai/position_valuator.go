package ai

import (
	"math"

	"github.com/turnforge/heroesai/lib/battle"
)

// PositionValuator implements C5: scores battlefield tiles a unit may move
// to this turn by summing the threat of neighbouring enemies and the
// blocking value against enemy shooters. Grounded on
// turnforge-weewar/lib/ai/position_evaluator.go's component-score summation
// style, reshaped from "overall position" to "one candidate cell".
type PositionValuator struct {
	Arena *battle.Arena
}

// CandidatePosition is one scored move-to cell for a melee unit
// (spec.md 4.5).
type CandidatePosition struct {
	Cell          battle.Cell
	AttackValue   float64
	PositionValue float64
	CanAttack     bool
	MainTargetUID int
}

// Evaluate returns every reachable cell at distance 1 (2 if wide) from
// `enemy`'s position that `attacker` could move to this turn, scored per
// spec.md 4.5.
func (pv *PositionValuator) Evaluate(attacker *battle.Unit, enemy *battle.Unit) []CandidatePosition {
	maxDist := 1
	if attacker.IsWide() {
		maxDist = 2
	}

	out := make([]CandidatePosition, 0, battle.Size)
	for c := battle.Cell(0); c < battle.Size; c++ {
		if battle.Distance(c, enemy.Pos.Head) > maxDist {
			continue
		}
		if !pv.Arena.IsPositionReachable(attacker.Pos.Head, attacker.Speed, c) {
			continue
		}
		cp := CandidatePosition{Cell: c}
		cp.CanAttack = battle.IsNear(c, enemy.Pos.Head)
		if cp.CanAttack {
			cp.AttackValue = pv.attackValue(attacker, enemy, c)
			cp.MainTargetUID = enemy.UID
		}
		cp.PositionValue = pv.positionValue(attacker, c)
		out = append(out, cp)
	}
	return out
}

// attackValue is spec.md 4.5's "attack value": the primary target's threat
// plus, for every non-archer attacker, each other enemy adjacent to the
// attack cell, plus, for a wide attacker, the enemy directly behind the
// primary target. Attackers are told apart only by archer status and
// width; no all-around or double-cell attack ability is consulted.
func (pv *PositionValuator) attackValue(attacker, primary *battle.Unit, at battle.Cell) float64 {
	val := primary.EvaluateThreatForUnit(attacker)

	if !attacker.IsArcher() {
		for _, n := range battle.Neighbours(at) {
			if other := pv.Arena.UnitAt(n); other != nil && other.Color != attacker.Color && other.UID != primary.UID {
				val += other.EvaluateThreatForUnit(attacker)
			}
		}
	}

	if attacker.IsWide() {
		dir := battle.DirectionBetween(at, primary.Pos.Head)
		if dir >= 0 {
			behind := battle.Neighbour(primary.Pos.Head, dir)
			if secondary := pv.Arena.UnitAt(behind); secondary != nil && secondary.Color != attacker.Color {
				val += secondary.EvaluateThreatForUnit(attacker)
			}
		}
	}

	return val
}

// positionValue is spec.md 4.5's "position value": the max threat among
// adjacent melee enemies, plus the sum of threats of adjacent enemy
// archers (the sum incentivises body-blocking shooters).
func (pv *PositionValuator) positionValue(attacker *battle.Unit, at battle.Cell) float64 {
	maxMelee := 0.0
	archerSum := 0.0
	for _, n := range battle.Neighbours(at) {
		other := pv.Arena.UnitAt(n)
		if other == nil || other.Color == attacker.Color {
			continue
		}
		threat := other.EvaluateThreatForUnit(attacker)
		if other.IsArcher() {
			archerSum += threat
		} else if threat > maxMelee {
			maxMelee = threat
		}
	}
	return maxMelee + archerSum
}

// Best applies the outcome-selection ordering from spec.md 4.5: can-attack
// preferred, then higher position value, then higher attack value, with
// ties inside 0.001 on either axis broken by the other.
func Best(candidates []CandidatePosition) (CandidatePosition, bool) {
	if len(candidates) == 0 {
		return CandidatePosition{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if better(c, best) {
			best = c
		}
	}
	return best, true
}

func better(a, b CandidatePosition) bool {
	if a.CanAttack != b.CanAttack {
		return a.CanAttack
	}
	if math.Abs(a.PositionValue-b.PositionValue) > 0.001 {
		return a.PositionValue > b.PositionValue
	}
	if math.Abs(a.AttackValue-b.AttackValue) > 0.001 {
		return a.AttackValue > b.AttackValue
	}
	return a.PositionValue > b.PositionValue
}

// ThreatFromNonShooters sums the threat of every enemy within one step of
// `cell` that is not a shooter, the metric the melee-offensive decision
// tree uses to pick a "cautious-offensive" intermediate stop (spec.md 4.7).
func (pv *PositionValuator) ThreatFromNonShooters(unit *battle.Unit, cell battle.Cell) float64 {
	total := 0.0
	for _, n := range battle.Neighbours(cell) {
		other := pv.Arena.UnitAt(n)
		if other != nil && other.Color != unit.Color && !other.IsArcher() {
			total += other.EvaluateThreatForUnit(unit)
		}
	}
	return total
}
