// Package spell is the static combat-spell data table (spec.md 6 "Spell
// API"): levels, costs and the effect calculators the Spell Valuator (C6)
// consumes as read-only input. Grounded on original_source/src/fheroes2/spell
// (spell.cpp/spell_info.cpp), reshaped into a Go table rather than a C++
// enum-with-switch.
package spell

import "math"

// ID identifies a spell in the static table. None is "no spell castable",
// the sentinel spec.md 8's "a spell list with no affordable spell" expects.
type ID int

const None ID = -1

const (
	FireBall ID = iota
	Lightning
	ChainLightning
	ColdRing
	MeteorShower
	Resurrect
	ResurrectTrue
	AnimateDead
	SummonEarthElemental
	SummonAirElemental
	SummonFireElemental
	SummonWaterElemental
	MassDispel
	Dispel
	Slow
	MassSlow
	Haste
	MassHaste
	Curse
	MassCurse
	Bless
	MassBless
	Blind
	Paralyze
	Berserker
	Hypnotize
	DisruptingRay
	Stoneskin
	Steelskin
	Shield
	MassShield
	AntiMagic
	MirrorImage
	Bloodlust
	DragonSlayer
	Teleport
	Earthquake
)

// Family classifies a spell for C6's scoring dispatch (spec.md 4.6).
type Family int

const (
	FamilyDirectDamage Family = iota
	FamilyDispel
	FamilyResurrect
	FamilySummon
	FamilyBuffDebuff
	FamilyDragonSlayer
	FamilyTeleport
	FamilyEarthquake
)

// Definition is the static row for one spell.
type Definition struct {
	ID          ID
	Name        string
	Level       int
	Cost        int // spell points
	Family      Family
	Damage      int     // base damage for FamilyDirectDamage, 0 otherwise
	ExtraValue  float64 // e.g. Hypnotize's HP-per-power coefficient
	Restore     int     // HP restored per cast, for Resurrect family
	IsMass      bool
	IsArea      bool // chain-lightning/mass-damage style area expansion
	IsCombat    bool
	ApplyToSelf bool
}

// Table is the read-only spell static data table.
type Table struct {
	byID map[ID]*Definition
}

func NewTable(defs []*Definition) *Table {
	t := &Table{byID: make(map[ID]*Definition, len(defs))}
	for _, d := range defs {
		t.byID[d.ID] = d
	}
	return t
}

func (t *Table) Get(id ID) (*Definition, bool) {
	d, ok := t.byID[id]
	return d, ok
}

func (t *Table) IsCombat(id ID) bool {
	d, ok := t.byID[id]
	return ok && d.IsCombat
}

func (t *Table) IsDamage(id ID) bool {
	d, ok := t.byID[id]
	return ok && d.Family == FamilyDirectDamage
}

func (t *Table) IsSummon(id ID) bool {
	d, ok := t.byID[id]
	return ok && d.Family == FamilySummon
}

func (t *Table) IsMassAction(id ID) bool {
	d, ok := t.byID[id]
	return ok && d.IsMass
}

func (t *Table) IsSingleTarget(id ID) bool {
	d, ok := t.byID[id]
	return ok && !d.IsMass && !d.IsArea
}

func (t *Table) IsEffectDispel(id ID) bool {
	d, ok := t.byID[id]
	return ok && d.Family == FamilyDispel
}

// GetSpellDamage returns the raw damage a casting power/knowledge would
// deal before resistance, grounded on spell_info.cpp's getSpellDamage.
func (t *Table) GetSpellDamage(id ID, spellPower int) int {
	d, ok := t.byID[id]
	if !ok {
		return 0
	}
	return d.Damage * spellPower
}

// GetResurrectPoints returns the HP a single cast restores at the given
// spell power.
func (t *Table) GetResurrectPoints(id ID, spellPower int) int {
	d, ok := t.byID[id]
	if !ok {
		return 0
	}
	return d.Restore * spellPower
}

// GetSummonMonsterCount returns how many creatures a summon spell raises at
// the given spell power.
func (t *Table) GetSummonMonsterCount(id ID, spellPower int, monsterHP int) int {
	d, ok := t.byID[id]
	if !ok || monsterHP <= 0 {
		return 0
	}
	return int(d.ExtraValue*float64(spellPower)) / monsterHP
}

// GetHypnotizeMonsterHPPoints returns the maximum HP of stack Hypnotize can
// take control of at the given spell power (spec.md S5).
func (t *Table) GetHypnotizeMonsterHPPoints(spellPower int) int {
	d, ok := t.byID[Hypnotize]
	if !ok {
		return 0
	}
	return int(d.ExtraValue * float64(spellPower))
}

// CostPenalty implements the sub-linear level-cost penalty from spec.md 4.6:
// level-1 spells are unpenalised, higher levels pay sqrt(cost/3).
func (t *Table) CostPenalty(id ID) float64 {
	d, ok := t.byID[id]
	if !ok || d.Cost <= 0 {
		return 1
	}
	v := float64(d.Cost) / 3.0
	if v < 1 {
		v = 1
	}
	return math.Sqrt(v)
}
