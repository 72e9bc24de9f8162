package spell

import "testing"

func testTable() *Table {
	return NewTable([]*Definition{
		{ID: FireBall, Name: "Fireball", Level: 3, Cost: 9, Family: FamilyDirectDamage, Damage: 10, IsCombat: true},
		{ID: Bless, Name: "Bless", Level: 1, Cost: 1, Family: FamilyBuffDebuff, IsCombat: true},
		{ID: Resurrect, Name: "Resurrect", Level: 3, Cost: 10, Family: FamilyResurrect, Restore: 15, IsCombat: true},
		{ID: Hypnotize, Name: "Hypnotize", Level: 4, Cost: 15, Family: FamilyBuffDebuff, ExtraValue: 25, IsCombat: true},
		{ID: SummonFireElemental, Name: "Summon Fire Elemental", Level: 4, Cost: 15, Family: FamilySummon, ExtraValue: 200, IsCombat: true},
	})
}

func TestGetReturnsOkFalseForUnknownID(t *testing.T) {
	tb := testTable()
	if _, ok := tb.Get(ID(9999)); ok {
		t.Fatalf("an unregistered id must not be found")
	}
	if _, ok := tb.Get(FireBall); !ok {
		t.Fatalf("FireBall should be registered")
	}
}

func TestIsDamageAndIsSummonClassification(t *testing.T) {
	tb := testTable()
	if !tb.IsDamage(FireBall) {
		t.Fatalf("FireBall should classify as damage")
	}
	if tb.IsDamage(Bless) {
		t.Fatalf("Bless must not classify as damage")
	}
	if !tb.IsSummon(SummonFireElemental) {
		t.Fatalf("SummonFireElemental should classify as summon")
	}
}

func TestGetSpellDamageScalesWithPower(t *testing.T) {
	tb := testTable()
	if got := tb.GetSpellDamage(FireBall, 5); got != 50 {
		t.Fatalf("got %d, want 50", got)
	}
	if got := tb.GetSpellDamage(ID(9999), 5); got != 0 {
		t.Fatalf("unknown spell must deal 0 damage, got %d", got)
	}
}

func TestGetResurrectPoints(t *testing.T) {
	tb := testTable()
	if got := tb.GetResurrectPoints(Resurrect, 2); got != 30 {
		t.Fatalf("got %d, want 30", got)
	}
}

func TestGetHypnotizeMonsterHPPoints(t *testing.T) {
	tb := testTable()
	// spec.md S5: spellPower=10, ExtraValue=25 -> HP-controllable = 250.
	if got := tb.GetHypnotizeMonsterHPPoints(10); got != 250 {
		t.Fatalf("got %d, want 250", got)
	}
}

func TestCostPenaltyIsUnpenalisedAtLowCost(t *testing.T) {
	tb := testTable()
	if p := tb.CostPenalty(Bless); p != 1 {
		t.Fatalf("a cost-1 spell should carry no penalty, got %v", p)
	}
	high := tb.CostPenalty(Hypnotize)
	low := tb.CostPenalty(Bless)
	if high <= low {
		t.Fatalf("a higher-cost spell must carry a bigger penalty: high=%v low=%v", high, low)
	}
}

func TestCostPenaltyUnknownSpellDefaultsToOne(t *testing.T) {
	tb := testTable()
	if p := tb.CostPenalty(ID(9999)); p != 1 {
		t.Fatalf("unknown spell should default to penalty 1, got %v", p)
	}
}
