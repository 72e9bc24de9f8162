package lib

import "github.com/turnforge/heroesai/lib/artifact"
import "testing"

func TestArmyStrengthSumsOccupiedStacks(t *testing.T) {
	a := Army{}
	a.Stacks[0] = &TroopStack{Count: 10, DamageMin: 2, DamageMax: 4, HPTotal: 100}
	if a.Strength() <= 0 {
		t.Fatalf("expected positive strength for one stack")
	}
	if a.IsFull() {
		t.Fatalf("army with 4 empty slots must not be full")
	}
	for i := 1; i < 5; i++ {
		a.Stacks[i] = &TroopStack{Count: 1, DamageMin: 1, DamageMax: 1, HPTotal: 1}
	}
	if !a.IsFull() {
		t.Fatalf("army with 5 occupied slots must be full")
	}
}

func TestArtifactBagReservesMagicBookSlot(t *testing.T) {
	b := NewArtifactBag()
	for i, id := range b.Slots {
		if id != artifact.Unknown {
			t.Fatalf("slot %d should start Unknown, got %v", i, id)
		}
	}
	if b.HasMagicBook() {
		t.Fatalf("empty bag must not report a magic book")
	}
	b.Slots[0] = artifact.MagicBook
	if !b.HasMagicBook() {
		t.Fatalf("slot 0 = MagicBook must report true")
	}
	b.Slots[3] = artifact.ID(7)
	ids := b.IDs()
	if len(ids) != 2 {
		t.Fatalf("got %d occupied slots, want 2", len(ids))
	}
}

func TestHeroMayStillMove(t *testing.T) {
	h := &Hero{MovePoints: 10}
	if !h.MayStillMove() {
		t.Fatalf("hero with move points and no lock should be able to move")
	}
	h.Locked = true
	if h.MayStillMove() {
		t.Fatalf("locked hero must not be able to move")
	}
	h.Locked = false
	h.OnPatrol = true
	if h.MayStillMove() {
		t.Fatalf("patrolling hero must not be able to move")
	}
	h.OnPatrol = false
	h.MovePoints = 0
	if h.MayStillMove() {
		t.Fatalf("hero with no move points must not be able to move")
	}
}

func TestHeroSpellBookCapability(t *testing.T) {
	h := &Hero{Artifacts: NewArtifactBag(), SpellBook: map[int]bool{5: true}, SpellPoints: 3}
	if h.HaveSpellBook() {
		t.Fatalf("hero without the magic book artifact must not HaveSpellBook")
	}
	h.Artifacts.Slots[0] = artifact.MagicBook
	if !h.HaveSpellBook() {
		t.Fatalf("hero with magic book must HaveSpellBook")
	}
	if !h.HaveSpell(5) {
		t.Fatalf("hero should know spell 5")
	}
	if h.HaveSpell(6) {
		t.Fatalf("hero should not know spell 6")
	}
	if !h.CanCastSpell(3) {
		t.Fatalf("hero with 3 spell points should afford a cost-3 spell")
	}
	if h.CanCastSpell(4) {
		t.Fatalf("hero with 3 spell points should not afford a cost-4 spell")
	}
}

func TestCaptainImplementsCommander(t *testing.T) {
	var _ Commander = (*Captain)(nil)
	c := &Captain{SpellBook: map[int]bool{1: true}, SpellPoints: 5}
	if !c.HaveSpellBook() {
		t.Fatalf("captain with a non-nil spellbook must HaveSpellBook")
	}
	if !c.CanCastSpell(5) || c.CanCastSpell(6) {
		t.Fatalf("captain spell-point affordability check failed")
	}
}
