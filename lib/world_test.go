package lib

import "testing"

func TestNewWorldAllocatesTiles(t *testing.T) {
	w := NewWorld(4, 3)
	if len(w.Tiles) != 12 {
		t.Fatalf("got %d tiles, want 12", len(w.Tiles))
	}
	for i, tile := range w.Tiles {
		if tile.Index != TileIndex(i) {
			t.Fatalf("tile %d has Index %d", i, tile.Index)
		}
		if tile.FogByColor == nil {
			t.Fatalf("tile %d has nil FogByColor", i)
		}
	}
}

func TestIndexOfRowColRoundTrip(t *testing.T) {
	w := NewWorld(5, 5)
	idx := w.IndexOf(2, 3)
	row, col := w.RowCol(idx)
	if row != 2 || col != 3 {
		t.Fatalf("got (%d,%d), want (2,3)", row, col)
	}
	if w.IndexOf(-1, 0) != NoTile {
		t.Fatalf("expected NoTile for out-of-bounds row")
	}
	if w.IndexOf(0, 5) != NoTile {
		t.Fatalf("expected NoTile for out-of-bounds col")
	}
}

func TestNeighbourRespectsPassability(t *testing.T) {
	w := NewWorld(3, 3)
	centre := w.IndexOf(1, 1)
	tile := w.Tile(centre)
	tile.Passability = 0 // block every direction
	for d := Direction(0); d < DirCount; d++ {
		if n := w.Neighbour(centre, d); n != NoTile {
			t.Fatalf("direction %d: got %d, want NoTile", d, n)
		}
	}

	tile.Passability = 1 << uint(DirNorth)
	if n := w.Neighbour(centre, DirNorth); n != w.IndexOf(0, 1) {
		t.Fatalf("got %d, want tile (0,1)", n)
	}
}

func TestIsFoggedHonoursViewAll(t *testing.T) {
	w := NewWorld(2, 2)
	idx := w.IndexOf(0, 0)
	if !w.IsFogged(idx, ColorBlue, false) {
		t.Fatalf("freshly created tile should start fogged")
	}
	if w.IsFogged(idx, ColorBlue, true) {
		t.Fatalf("viewAll must bypass fog")
	}
	w.RevealFog(idx, ColorBlue)
	if w.IsFogged(idx, ColorBlue, false) {
		t.Fatalf("tile should be visible after RevealFog")
	}
	if !w.IsFogged(idx, ColorRed, false) {
		t.Fatalf("revealing for blue must not reveal for red")
	}
}

func TestColorString(t *testing.T) {
	if ColorBlue.String() != "blue" {
		t.Fatalf("got %q, want blue", ColorBlue.String())
	}
	if ColorNone.String() == "blue" {
		t.Fatalf("ColorNone must not print as a real color")
	}
}
