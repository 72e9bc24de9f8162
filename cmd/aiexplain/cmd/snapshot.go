package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/turnforge/heroesai/lib"
	"github.com/turnforge/heroesai/lib/battle"
	"github.com/turnforge/heroesai/lib/spell"
)

// kingdomSnapshot is the JSON shape kingdom-turn reads. It is a thin wire
// format over lib's plain structs, not a generated type — this module has
// no protobuf/gRPC surface (SPEC_FULL.md [DOMAIN STACK]).
type kingdomSnapshot struct {
	WorldWidth, WorldHeight int
	Color                   int
	Day                     int
	ViewAll                 bool
	Heroes                  []heroSnapshot
	Castles                 []castleSnapshot
}

type heroSnapshot struct {
	ID             int
	Color          int
	Position       int
	MovePoints     float64
	MaxMovePoints  float64
	SpellPoints    int
	MaxSpellPoints int
	InCastleID     int
	Army           []troopSnapshot
}

type troopSnapshot struct {
	MonsterID, Count, Speed, DamageMin, DamageMax, HPTotal int
}

type castleSnapshot struct {
	ID            int
	Color         int
	Position      int
	BuildingValue float64
}

func loadKingdom(path string) (*lib.Kingdom, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read snapshot: %w", err)
	}
	var snap kingdomSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("parse snapshot: %w", err)
	}

	world := lib.NewWorld(snap.WorldWidth, snap.WorldHeight)
	k := lib.NewKingdom(lib.Color(snap.Color), world)

	for _, hs := range snap.Heroes {
		h := &lib.Hero{
			ID: hs.ID, Color: lib.Color(hs.Color), Position: lib.TileIndex(hs.Position),
			MovePoints: hs.MovePoints, MaxMovePoints: hs.MaxMovePoints,
			SpellPoints: hs.SpellPoints, MaxSpellPoints: hs.MaxSpellPoints,
			InCastleID: hs.InCastleID, Artifacts: lib.NewArtifactBag(),
			SpellBook: map[int]bool{}, Visited: map[lib.ObjectKind]bool{},
		}
		for i, ts := range hs.Army {
			if i >= len(h.Army.Stacks) {
				break
			}
			h.Army.Stacks[i] = &lib.TroopStack{
				MonsterID: ts.MonsterID, Count: ts.Count, Speed: ts.Speed,
				DamageMin: ts.DamageMin, DamageMax: ts.DamageMax, HPTotal: ts.HPTotal,
			}
		}
		k.Heroes = append(k.Heroes, h)
	}
	for _, cs := range snap.Castles {
		k.Castles = append(k.Castles, &lib.Castle{
			ID: cs.ID, Color: lib.Color(cs.Color), Position: lib.TileIndex(cs.Position),
			BuildingValue: cs.BuildingValue,
		})
	}
	return k, nil
}

// battleSnapshot is unit-turn's input: the arena plus which unit is acting.
type battleSnapshot struct {
	AttackerColor, DefenderColor int
	Units                        []unitSnapshot
	ActingUID                    int
}

type unitSnapshot struct {
	UID, MonsterID, HP, Count, MaxHP, Speed, DamageMin, DamageMax int
	Abilities, Modifiers                                          uint32
	Color                                                         int
	HeadCell, TailCell                                            int
	Wide, Reflected                                               bool
}

func loadBattle(path string) (*battle.Arena, int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, 0, fmt.Errorf("read snapshot: %w", err)
	}
	var snap battleSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, 0, fmt.Errorf("parse snapshot: %w", err)
	}

	arena := battle.NewArena(battle.Geometry{})
	arena.AttackerColor = lib.Color(snap.AttackerColor)
	arena.DefenderColor = lib.Color(snap.DefenderColor)

	for _, us := range snap.Units {
		u := &battle.Unit{
			UID: us.UID, MonsterID: us.MonsterID, HP: us.HP, Count: us.Count, MaxHP: us.MaxHP,
			Speed: us.Speed, DamageMin: us.DamageMin, DamageMax: us.DamageMax,
			Abilities: battle.AbilityFlag(us.Abilities), Modifiers: battle.ModifierFlag(us.Modifiers),
			Color: lib.Color(us.Color),
			Pos: battle.Position{
				Head: battle.Cell(us.HeadCell), Tail: battle.Cell(us.TailCell),
				Wide: us.Wide, Reflected: us.Reflected,
			},
		}
		arena.PlaceUnit(u)
	}
	return arena, snap.ActingUID, nil
}

func findUnitByUID(arena *battle.Arena, uid int) *battle.Unit {
	for _, u := range arena.Units {
		if u.UID == uid {
			return u
		}
	}
	return nil
}

// defaultSpellTable is a minimal static data set good enough for scenario
// replay; a host wiring this module into a full game supplies the real
// table (spec.md 1 "data inputs").
func defaultSpellTable() *spell.Table {
	return spell.NewTable([]*spell.Definition{
		{ID: spell.FireBall, Name: "Fireball", Level: 3, Cost: 9, Family: spell.FamilyDirectDamage, Damage: 10, IsCombat: true, IsArea: true},
		{ID: spell.Lightning, Name: "Lightning Bolt", Level: 2, Cost: 6, Family: spell.FamilyDirectDamage, Damage: 11, IsCombat: true},
		{ID: spell.Resurrect, Name: "Resurrect", Level: 3, Cost: 10, Family: spell.FamilyResurrect, Restore: 15, IsCombat: true},
		{ID: spell.Bless, Name: "Bless", Level: 1, Cost: 3, Family: spell.FamilyBuffDebuff, IsCombat: true},
		{ID: spell.Curse, Name: "Curse", Level: 1, Cost: 3, Family: spell.FamilyBuffDebuff, IsCombat: true},
		{ID: spell.Slow, Name: "Slow", Level: 2, Cost: 6, Family: spell.FamilyBuffDebuff, IsCombat: true},
		{ID: spell.Haste, Name: "Haste", Level: 1, Cost: 3, Family: spell.FamilyBuffDebuff, IsCombat: true},
		{ID: spell.Berserker, Name: "Berserker", Level: 3, Cost: 15, Family: spell.FamilyBuffDebuff, IsCombat: true},
		{ID: spell.Hypnotize, Name: "Hypnotize", Level: 4, Cost: 15, Family: spell.FamilyBuffDebuff, ExtraValue: 25, IsCombat: true},
		{ID: spell.DragonSlayer, Name: "Dragon Slayer", Level: 2, Cost: 6, Family: spell.FamilyDragonSlayer, IsCombat: true},
		{ID: spell.Teleport, Name: "Teleport", Level: 2, Cost: 5, Family: spell.FamilyTeleport, IsCombat: true},
		{ID: spell.Earthquake, Name: "Earthquake", Level: 3, Cost: 15, Family: spell.FamilyEarthquake, IsCombat: true},
		{ID: spell.SummonFireElemental, Name: "Summon Fire Elemental", Level: 4, Cost: 15, Family: spell.FamilySummon, ExtraValue: 200, IsCombat: true},
	})
}
