package pathfind

// Restorer is the scoped state guard named in spec.md 5: it snapshots the
// pathfinder's army-strength-advantage and spell-point-reserve ratios so a
// nested evaluation (e.g. simulating enemy reachability for
// castles_in_danger) can change them and have them restored on every exit
// path, including a panicking one.
//
// Usage:
//
//	r := pf.ScopedParams(params)
//	defer r.Restore()
//	params.ArmyStrengthAdvantage = Desperate
//	pf.ReEvaluateIfNeeded(params)
type Restorer struct {
	pf       *Pathfinder
	saved    Params
	restored bool
}

// ScopedParams captures the current params so they can later be restored,
// independent of whatever the caller mutates on its own copy.
func (pf *Pathfinder) ScopedParams(current Params) *Restorer {
	return &Restorer{pf: pf, saved: current}
}

// Restore re-evaluates the pathfinder at the saved params. Safe to call
// multiple times; only the first call has an effect.
func (r *Restorer) Restore() {
	if r.restored {
		return
	}
	r.restored = true
	r.pf.ReEvaluateIfNeeded(r.saved)
}

// SavedArmyStrengthAdvantage and SavedSpellPointsReserve expose the
// snapshotted ratios for callers that want to read, not just restore, them
// (spec.md 6 "getters for the restorer").
func (r *Restorer) SavedArmyStrengthAdvantage() float64 { return r.saved.ArmyStrengthAdvantage }
func (r *Restorer) SavedSpellPointsReserve() float64    { return r.saved.SpellPointsReserve }
