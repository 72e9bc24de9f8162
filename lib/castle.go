package lib

// BuiltStructure is one bit of a castle's built-structures bitmask
// (spec.md 3 "Castle").
type BuiltStructure uint32

const (
	StructCastle BuiltStructure = 1 << iota
	StructMoat
	StructMageGuild1
	StructMageGuild2
	StructMageGuild3
	StructMageGuild4
	StructMageGuild5
	StructCaptain
	StructTavern
	StructMarketplace
)

func (b BuiltStructure) Has(s BuiltStructure) bool { return b&s != 0 }

// Castle is a fixed-position town (spec.md 3 "Castle").
type Castle struct {
	ID            int
	Color         Color
	Position      TileIndex
	Garrison      Army
	ResidentHero  int // hero id, 0 = none
	Built         BuiltStructure
	BuildingValue float64 // aggregate construction worth, feeds the object valuator
	Defenseless   bool
	Captain       *Captain // garrison commander when no hero is resident
}

// Captain is the non-hero commander variant named in spec.md 9 ("HeroBase
// with Heroes and Captain variants"): it can cast combat spells for a
// castle under siege but never moves on the adventure map or gains
// experience.
type Captain struct {
	Color          Color
	Primary        PrimarySkills
	SpellBook      map[int]bool
	SpellPoints    int
	MaxSpellPoints int
	Army           Army
}

func (c *Captain) HaveSpell(id int) bool      { return c.SpellBook[id] }
func (c *Captain) HaveSpellBook() bool        { return c.SpellBook != nil }
func (c *Captain) CanCastSpell(cost int) bool { return c.SpellPoints >= cost }
func (c *Captain) GetAttack() int             { return c.Primary.Attack }
func (c *Captain) GetDefense() int            { return c.Primary.Defense }
func (c *Captain) GetPower() int              { return c.Primary.Power }
func (c *Captain) GetKnowledge() int          { return c.Primary.Knowledge }
func (c *Captain) GetMorale() int             { return 0 } // a garrison captain carries no morale bonus/penalty
func (c *Captain) GetLuck() int               { return 0 }
func (c *Captain) GetColor() Color            { return c.Color }
func (c *Captain) GetArmy() *Army             { return &c.Army }
func (c *Captain) GetBagArtifacts() []int     { return nil } // a captain never carries artifacts
func (c *Captain) GetSpellPoints() int        { return c.SpellPoints }
func (c *Captain) GetMaxSpellPoints() int     { return c.MaxSpellPoints }

// Commander is the capability trait spec.md 9 calls for: the read
// operations shared by Hero and Captain, used wherever C6/C7 need "whoever
// is casting" without caring which concrete type it is.
type Commander interface {
	GetAttack() int
	GetDefense() int
	GetPower() int
	GetKnowledge() int
	GetMorale() int
	GetLuck() int
	GetColor() Color
	GetArmy() *Army
	GetBagArtifacts() []int
	HaveSpellBook() bool
	HaveSpell(id int) bool
	CanCastSpell(cost int) bool
	GetSpellPoints() int
	GetMaxSpellPoints() int
}

func (h *Hero) CanCastSpell(cost int) bool { return h.HaveSpellBook() && h.SpellPoints >= cost }
func (h *Hero) GetAttack() int             { return h.Primary.Attack }
func (h *Hero) GetDefense() int            { return h.Primary.Defense }
func (h *Hero) GetPower() int              { return h.Primary.Power }
func (h *Hero) GetKnowledge() int          { return h.Primary.Knowledge }
func (h *Hero) GetMorale() int             { return h.Morale }
func (h *Hero) GetLuck() int               { return h.Luck }
func (h *Hero) GetColor() Color            { return h.Color }
func (h *Hero) GetArmy() *Army             { return &h.Army }
func (h *Hero) GetBagArtifacts() []int {
	ids := h.Artifacts.IDs()
	out := make([]int, len(ids))
	for i, id := range ids {
		out[i] = int(id)
	}
	return out
}
func (h *Hero) GetSpellPoints() int    { return h.SpellPoints }
func (h *Hero) GetMaxSpellPoints() int { return h.MaxSpellPoints }

var _ Commander = (*Hero)(nil)
var _ Commander = (*Captain)(nil)
