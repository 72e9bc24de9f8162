package battle

import "github.com/turnforge/heroesai/lib"

// ModifierFlag is a bitmask of the status effects a Unit can carry
// (spec.md 3 "Battle Unit").
type ModifierFlag uint32

const (
	ModBless ModifierFlag = 1 << iota
	ModCurse
	ModHaste
	ModSlow
	ModBlind
	ModParalyze
	ModBerserk
	ModHypnotize
	ModShield
	ModAntiMagic
	ModMirrorImage
	ModDeathImmune
	ModMovedThisRound
	ModStoneskin
	ModSteelskin
	ModRetaliationUsed
	ModUnlimitedRetaliation
	ModNoShootingPenalty // Archery skill or the No-Shooting-Penalty artifact waives the archer's wall penalty
)

func (f ModifierFlag) Has(m ModifierFlag) bool { return f&m != 0 }

// Ability flags that change how a unit fights, read from its monster
// definition (a data input per spec.md 1).
type AbilityFlag uint32

const (
	AbilityShooter AbilityFlag = 1 << iota
	AbilityAreaShot
	AbilityFlyer
	AbilityImmovable // e.g. towers: cannot move in response to partial damage
	AbilityWide      // occupies head+tail cells
)

func (f AbilityFlag) Has(a AbilityFlag) bool { return f&a != 0 }

// Unit is one combat instance of a troop stack (spec.md 3 "Battle Unit").
type Unit struct {
	UID          int
	MonsterID    int
	HP           int // current HP of the front creature
	Count        int // remaining creature count
	MaxHP        int // per-creature max HP
	Speed        int
	DamageMin    int
	DamageMax    int
	Abilities    AbilityFlag
	Modifiers    ModifierFlag
	Color        lib.Color // may differ from owning army's color under Hypnotize
	Pos          Position
	CanTeleport  bool // scoped flag granted during Teleport-spell valuation
}

func (u *Unit) IsArcher() bool     { return u.Abilities.Has(AbilityShooter) }
func (u *Unit) IsFlyer() bool      { return u.Abilities.Has(AbilityFlyer) }
func (u *Unit) IsWide() bool       { return u.Abilities.Has(AbilityWide) }
func (u *Unit) IsImmovable() bool  { return u.Abilities.Has(AbilityImmovable) }
func (u *Unit) IsBerserk() bool    { return u.Modifiers.Has(ModBerserk) }
func (u *Unit) IsBlind() bool      { return u.Modifiers.Has(ModBlind) }
func (u *Unit) IsParalyzed() bool  { return u.Modifiers.Has(ModParalyze) }
func (u *Unit) HasMoved() bool     { return u.Modifiers.Has(ModMovedThisRound) }

// IsHandFighting reports whether the unit is currently locked in melee
// (adjacent to an enemy), used by the battle planner's archer branch.
func (u *Unit) IsHandFighting(board *Arena) bool {
	for _, n := range AroundIndexes(u.Pos) {
		if other := board.UnitAt(n); other != nil && other.Color != u.Color {
			return true
		}
	}
	return false
}

// Strength is a coarse combat-power estimate for threat/value math,
// mirroring TroopStack.Strength in the adventure-map model.
func (u *Unit) Strength() float64 {
	avgDamage := float64(u.DamageMin+u.DamageMax) / 2.0
	return float64(u.Count) * avgDamage * (1 + float64(u.HP)/50.0)
}

// EvaluateThreatForUnit estimates how dangerous u is to target, the host
// method named in spec.md 6 ("Unit ... evaluateThreatForUnit"). It folds in
// speed (faster attackers threaten more often); whether u can currently
// reach target's position is not considered.
func (u *Unit) EvaluateThreatForUnit(target *Unit) float64 {
	base := u.Strength()
	if u.Speed > target.Speed {
		base *= 1.1
	}
	if u.IsArcher() {
		base *= 1.0 // archers threaten from range regardless of adjacency
	}
	return base
}

// Cell2 is one hex of the battlefield board (spec.md 3 "Battle Cell").
type Cell2 struct {
	Occupant *Unit
	IsWall   bool
	IsMoat   bool
}

// Arena is the live battle state: board geometry, occupants and the two
// forces (spec.md 6 "Arena").
type Arena struct {
	Geometry Geometry
	cells    map[Cell]*Unit
	Units    []*Unit
	AttackerColor lib.Color
	DefenderColor lib.Color
}

func NewArena(geo Geometry) *Arena {
	return &Arena{Geometry: geo, cells: make(map[Cell]*Unit)}
}

// PlaceUnit occupies u's head (and tail, if wide) cells.
func (a *Arena) PlaceUnit(u *Unit) {
	a.cells[u.Pos.Head] = u
	if u.Pos.Wide && u.Pos.Tail != NoCell {
		a.cells[u.Pos.Tail] = u
	}
	a.Units = append(a.Units, u)
}

// RemoveUnit vacates u's cells without deleting it from Units, used by the
// scoped "temporarily remove from board" trick in spec.md 4.7.6 and 5.
func (a *Arena) RemoveUnit(u *Unit) {
	if a.cells[u.Pos.Head] == u {
		delete(a.cells, u.Pos.Head)
	}
	if u.Pos.Tail != NoCell && a.cells[u.Pos.Tail] == u {
		delete(a.cells, u.Pos.Tail)
	}
}

// PlaceAt re-occupies u's current Pos, the inverse of RemoveUnit.
func (a *Arena) PlaceAt(u *Unit) {
	a.cells[u.Pos.Head] = u
	if u.Pos.Wide && u.Pos.Tail != NoCell {
		a.cells[u.Pos.Tail] = u
	}
}

func (a *Arena) UnitAt(c Cell) *Unit { return a.cells[c] }

// GetForce returns every live unit of the given color.
func (a *Arena) GetForce(color lib.Color) []*Unit {
	out := make([]*Unit, 0, len(a.Units))
	for _, u := range a.Units {
		if u.Color == color && u.Count > 0 {
			out = append(out, u)
		}
	}
	return out
}

// GetEnemyForce returns every live unit not of the given color.
func (a *Arena) GetEnemyForce(color lib.Color) []*Unit {
	out := make([]*Unit, 0, len(a.Units))
	for _, u := range a.Units {
		if u.Color != color && u.Count > 0 {
			out = append(out, u)
		}
	}
	return out
}

// IsPositionReachable reports whether target lies within the given remaining
// speed of from this turn, via a breadth-first walk over unoccupied cells;
// the target cell itself may be occupied, and wall cells are not treated
// specially (spec.md 4.2 "reachability within a unit's speed").
func (a *Arena) IsPositionReachable(from Cell, speed int, target Cell) bool {
	if from == target {
		return true
	}
	visited := map[Cell]int{from: 0}
	queue := []Cell{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := visited[cur]
		if d >= speed {
			continue
		}
		for _, n := range Neighbours(cur) {
			if _, seen := visited[n]; seen {
				continue
			}
			if occ := a.cells[n]; occ != nil && n != target {
				continue
			}
			visited[n] = d + 1
			if n == target {
				return true
			}
			queue = append(queue, n)
		}
	}
	return false
}

// CalculateMoveDistance returns the number of steps from `from` to `to`
// along the shortest unobstructed path, or -1 if unreachable regardless of
// speed (used by the position valuator to rank equally-good cells).
func (a *Arena) CalculateMoveDistance(from, to Cell) int {
	if from == to {
		return 0
	}
	visited := map[Cell]int{from: 0}
	queue := []Cell{from}
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]
		d := visited[cur]
		for _, n := range Neighbours(cur) {
			if _, seen := visited[n]; seen {
				continue
			}
			if occ := a.cells[n]; occ != nil && n != to {
				continue
			}
			visited[n] = d + 1
			if n == to {
				return d + 1
			}
			queue = append(queue, n)
		}
	}
	return -1
}

// GetAllAvailableMoves returns every cell reachable by u this turn that no
// other unit occupies; u's own cell is included.
func (a *Arena) GetAllAvailableMoves(u *Unit) []Cell {
	out := make([]Cell, 0, Size)
	for c := Cell(0); c < Size; c++ {
		if a.cells[c] != nil || a.Geometry.CastleCells == nil {
			if occ := a.cells[c]; occ != nil && occ != u {
				continue
			}
		}
		if a.IsPositionReachable(u.Pos.Head, u.Speed, c) {
			out = append(out, c)
		}
	}
	return out
}

// HasLineOfSight reports whether an archer at `from` has a clear shot at
// `to`. It always returns true: the cells between the two are not examined,
// so neither units nor castle walls block a shot (spec.md 4.2).
func (a *Arena) HasLineOfSight(from, to Cell) bool {
	return true // ranged units in this ruleset are only blocked by melee lock, not LOS obstacles
}
