// Package artifact is the static artifact data table the decision core
// consumes as a read-only input (spec.md 6 "Artifact API"). It classifies
// each bonus kind once and aggregates per the four strategies spec.md 9
// calls out explicitly, instead of mixing aggregation styles inline.
package artifact

// ID identifies an artifact type in the static table. Unknown is the
// sentinel for "no such artifact" (spec.md 9).
type ID int

const Unknown ID = -1

// MagicBook is always artifact slot 0 in a hero's bag when present
// (spec.md 3 "Hero" invariant).
const MagicBook ID = 0

// BonusKind enumerates the effects an artifact can grant.
type BonusKind int

const (
	BonusAttack BonusKind = iota
	BonusDefense
	BonusPower
	BonusKnowledge
	BonusMorale
	BonusLuck
	BonusArmyStrength
	BonusSpellPointsPercent
	BonusNoShootingPenalty
	BonusArchery
)

// AggregationStrategy says how multiple artifacts granting the same
// BonusKind combine, per spec.md 9.
type AggregationStrategy int

const (
	// CumulativePerInstance: every artifact instance in the bag adds its
	// bonus (e.g. +1 attack artifacts each add +1).
	CumulativePerInstance AggregationStrategy = iota
	// CumulativePerType: only the first artifact of a given type counts;
	// owning two identical artifacts is no better than owning one.
	CumulativePerType
	// Multiplied: bonuses compound multiplicatively rather than adding.
	Multiplied
	// Unique: at most one artifact in the game may carry this bonus; the
	// bag is assumed to already enforce that, so these bonuses are summed
	// without deduplication.
	Unique
)

// Bonus is one effect an artifact instance grants.
type Bonus struct {
	Kind     BonusKind
	Value    float64
	Strategy AggregationStrategy
}

// Definition is the static row for one artifact type.
type Definition struct {
	ID      ID
	Name    string
	Bonuses []Bonus
	Curse   bool
	Value   float64 // base scoring value consumed by the object valuator
}

// Table is the read-only artifact static data table (spec.md 6).
type Table struct {
	byID map[ID]*Definition
}

// NewTable builds a Table from a definition list, as the host would load
// from its data files at startup.
func NewTable(defs []*Definition) *Table {
	t := &Table{byID: make(map[ID]*Definition, len(defs))}
	for _, d := range defs {
		t.byID[d.ID] = d
	}
	return t
}

// Get returns the definition for id, or nil and false if unknown.
func (t *Table) Get(id ID) (*Definition, bool) {
	d, ok := t.byID[id]
	return d, ok
}

// GetTotalArtifactEffectValue sums/aggregates Value across every bonus of
// kind across all artifacts in bag, per each bonus's AggregationStrategy
// (spec.md 6 "getTotalArtifactEffectValue").
func (t *Table) GetTotalArtifactEffectValue(bag []ID, kind BonusKind) float64 {
	total := 0.0
	seenTypes := make(map[ID]bool)
	for _, id := range bag {
		def, ok := t.byID[id]
		if !ok {
			continue
		}
		for _, b := range def.Bonuses {
			if b.Kind != kind {
				continue
			}
			switch b.Strategy {
			case CumulativePerInstance:
				total += b.Value
			case CumulativePerType:
				if !seenTypes[id] {
					total += b.Value
					seenTypes[id] = true
				}
			case Unique:
				total += b.Value
			case Multiplied:
				// handled by GetTotalArtifactMultipliedPercent
			}
		}
	}
	return total
}

// GetTotalArtifactMultipliedPercent combines every Multiplied bonus of kind
// as a compounded percentage, e.g. two +20% artifacts yield 1.2*1.2 = 1.44,
// not 1.4 (spec.md 6 "getTotalArtifactMultipliedPercent").
func (t *Table) GetTotalArtifactMultipliedPercent(bag []ID, kind BonusKind) float64 {
	factor := 1.0
	for _, id := range bag {
		def, ok := t.byID[id]
		if !ok {
			continue
		}
		for _, b := range def.Bonuses {
			if b.Kind == kind && b.Strategy == Multiplied {
				factor *= 1.0 + b.Value
			}
		}
	}
	return factor
}

// GetFirstArtifactWithBonus returns the first bag entry granting kind, or
// Unknown if none do (spec.md 6 "getFirstArtifactWithBonus").
func (t *Table) GetFirstArtifactWithBonus(bag []ID, kind BonusKind) ID {
	for _, id := range bag {
		def, ok := t.byID[id]
		if !ok {
			continue
		}
		for _, b := range def.Bonuses {
			if b.Kind == kind {
				return id
			}
		}
	}
	return Unknown
}

// Value returns the base object-valuator score for owning id (spec.md 4.3
// "Artifact, shipwreck-survivor" row), or 0 for an unknown id.
func (t *Table) Value(id ID) float64 {
	if d, ok := t.byID[id]; ok {
		return d.Value
	}
	return 0
}
