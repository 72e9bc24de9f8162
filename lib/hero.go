package lib

import "github.com/turnforge/heroesai/lib/artifact"

// Role is the adventure-map personality tag reassigned every kingdom turn
// (spec.md 3 "Hero", 4.4 "Role assignment").
type Role int

const (
	RoleNone Role = iota
	RoleHunter
	RoleFighter
	RoleChampion
	RoleScout
	RoleCourier
)

// SecondarySkill is one of the learnable hero skills; only the ones the core
// reasons about directly are named here (spec.md 4.1, 4.3).
type SecondarySkill int

const (
	SkillPathfinding SecondarySkill = iota
	SkillLogistics
	SkillScouting
	SkillDiplomacy
	SkillWisdom
	SkillNecromancy
)

// PrimarySkills are the four stats that sum to decide role assignment
// (spec.md 4.4).
type PrimarySkills struct {
	Attack, Defense, Power, Knowledge int
}

func (p PrimarySkills) Sum() int { return p.Attack + p.Defense + p.Power + p.Knowledge }

// TroopStack is one army slot: a monster type and count (spec.md 3).
type TroopStack struct {
	MonsterID int
	Count     int
	Speed     int
	HPTotal   int // Count * per-creature HP
	DamageMin int
	DamageMax int
}

// Strength is a coarse per-stack combat-power estimate used throughout the
// planners wherever "army strength" is compared.
func (t TroopStack) Strength() float64 {
	avgDamage := float64(t.DamageMin+t.DamageMax) / 2.0
	return float64(t.Count) * avgDamage * (1 + float64(t.HPTotal)/float64(max(t.Count, 1))/50.0)
}

func max(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Army is a hero's or garrison's 1-5 troop stacks.
type Army struct {
	Stacks [5]*TroopStack
}

// Strength sums the strength of every occupied stack.
func (a *Army) Strength() float64 {
	total := 0.0
	for _, s := range a.Stacks {
		if s != nil {
			total += s.Strength()
		}
	}
	return total
}

// IsFull reports whether every stack slot is occupied.
func (a *Army) IsFull() bool {
	for _, s := range a.Stacks {
		if s == nil {
			return false
		}
	}
	return true
}

// ArtifactBag is a hero's ordered, capacity-14 artifact inventory. Slot 0
// is reserved for the Magic Book when the hero owns one (spec.md 3
// invariant, spec.md 8 invariant 2).
type ArtifactBag struct {
	Slots [14]artifact.ID
}

// NewArtifactBag returns an empty bag (every slot Unknown).
func NewArtifactBag() ArtifactBag {
	b := ArtifactBag{}
	for i := range b.Slots {
		b.Slots[i] = artifact.Unknown
	}
	return b
}

// IDs returns the occupied slots as a flat slice, for Table lookups.
func (b ArtifactBag) IDs() []artifact.ID {
	out := make([]artifact.ID, 0, len(b.Slots))
	for _, id := range b.Slots {
		if id != artifact.Unknown {
			out = append(out, id)
		}
	}
	return out
}

// HasMagicBook reports whether slot 0 carries the Magic Book, which is the
// only legal slot for it (spec.md 8 invariant 2).
func (b ArtifactBag) HasMagicBook() bool {
	return b.Slots[0] == artifact.MagicBook
}

// Hero is a mobile agent on the world map (spec.md 3 "Hero").
type Hero struct {
	ID             int
	Color          Color
	Position       TileIndex
	Primary        PrimarySkills
	Secondary      map[SecondarySkill]int // skill -> level (0 = not known)
	Artifacts      ArtifactBag
	Morale         int // -3..+3, spec.md 4.3 "Morale/luck objects"
	Luck           int // -3..+3
	SpellBook      map[int]bool // known spell ids, kept loosely typed vs. package spell to avoid an import cycle with ai
	SpellPoints    int
	MaxSpellPoints int
	MovePoints     float64
	MaxMovePoints  float64
	Army           Army
	Role           Role
	Visited        map[ObjectKind]bool
	OnPatrol       bool
	Unique         bool // victory-condition or otherwise irreplaceable hero
	InCastleID     int  // 0 = not resident
	Locked         bool // locked in a threatened castle this turn (spec.md 4.4)
}

// StatsValue sums primary skills, used for role-assignment sorting
// (spec.md 4.4).
func (h *Hero) StatsValue() int { return h.Primary.Sum() }

// MayStillMove reports whether the hero has movement budget left this turn
// (spec.md 8 invariant 3).
func (h *Hero) MayStillMove() bool { return h.MovePoints > 0 && !h.Locked && !h.OnPatrol }

// HaveSpell reports whether the hero knows spell id.
func (h *Hero) HaveSpell(id int) bool { return h.SpellBook[id] }

// HaveSpellBook reports whether the hero carries the Magic Book.
func (h *Hero) HaveSpellBook() bool { return h.Artifacts.HasMagicBook() }

// MayCastAdventureSpells requires a spell book and at least one spell
// point — mirrors the host API named in spec.md 6.
func (h *Hero) MayCastAdventureSpells() bool { return h.HaveSpellBook() && h.SpellPoints > 0 }

// IsPotentSpellcaster is the informal threshold spec.md 4.3's Magic
// Well/Artesian Spring row references: a caster worth topping off.
func (h *Hero) IsPotentSpellcaster() bool {
	return h.Primary.Power >= 3 && h.MaxSpellPoints >= 10
}
