package placement

import (
	"testing"

	"github.com/dockyard-eng/voxelpack/deckcfg"
	"github.com/dockyard-eng/voxelpack/voxel"
)

func rectBlock(t *testing.T, id string, typ voxel.Type, w, h int) *voxel.Block {
	t.Helper()
	var cells []voxel.Cell
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cells = append(cells, voxel.Cell{X: x, Y: y})
		}
	}
	b, err := voxel.NewBlock(id, typ, cells, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return b
}

func TestNewAreaRejectsInvalidConfig(t *testing.T) {
	_, err := NewArea(deckcfg.Config{Width: 0, Height: 10})
	if err == nil {
		t.Fatal("expected error for invalid config")
	}
}

func TestCanPlaceBounds(t *testing.T) {
	area, _ := NewArea(deckcfg.Config{Width: 10, Height: 10})
	b := rectBlock(t, "b1", voxel.Trestle, 3, 2)
	if area.CanPlace(b, 8, 0, Orient0) {
		t.Fatal("expected out-of-bounds placement to be rejected")
	}
	if !area.CanPlace(b, 7, 0, Orient0) {
		t.Fatal("expected in-bounds placement to be accepted")
	}
}

func TestPlaceThenCanPlaceRejectsOverlap(t *testing.T) {
	area, _ := NewArea(deckcfg.Config{Width: 10, Height: 10})
	b1 := rectBlock(t, "b1", voxel.Trestle, 3, 2)
	area.Place(b1, 0, 0, Orient0)

	b2 := rectBlock(t, "b2", voxel.Trestle, 3, 2)
	if area.CanPlace(b2, 1, 0, Orient0) {
		t.Fatal("expected overlapping placement to be rejected")
	}
}

func TestRemoveRestoresGrid(t *testing.T) {
	area, _ := NewArea(deckcfg.Config{Width: 10, Height: 10})
	b1 := rectBlock(t, "b1", voxel.Trestle, 3, 2)
	area.Place(b1, 2, 2, Orient0)

	if area.CanPlace(b1, 2, 2, Orient0) {
		t.Fatal("expected CanPlace to reject re-placing an occupied region")
	}

	area.Remove("b1")

	for _, p := range area.Placements() {
		if p.Block.ID() == "b1" {
			t.Fatal("expected b1 removed from placements")
		}
	}
	if !area.IsEmpty(2, 2) || !area.IsEmpty(4, 3) {
		t.Fatal("expected grid cells cleared after Remove")
	}
	if !area.CanPlace(b1, 2, 2, Orient0) {
		t.Fatal("expected CanPlace true again after Remove")
	}
}

func TestPlaceAlreadyPlacedPanics(t *testing.T) {
	area, _ := NewArea(deckcfg.Config{Width: 10, Height: 10})
	b1 := rectBlock(t, "b1", voxel.Trestle, 3, 2)
	area.Place(b1, 0, 0, Orient0)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic for re-placing an already-placed id")
		}
	}()
	area.Place(b1, 5, 5, Orient0)
}

func TestSpacingInvariant(t *testing.T) {
	// Crane blocks, so no trestle corridor rule applies between them.
	area, _ := NewArea(deckcfg.Config{Width: 20, Height: 10, BlockSpacing: 1})
	b1 := rectBlock(t, "b1", voxel.Crane, 2, 2)
	area.Place(b1, 0, 0, Orient0)

	b2 := rectBlock(t, "b2", voxel.Crane, 2, 2)
	// Directly adjacent (touching) should be rejected at delta=1.
	if area.CanPlace(b2, 2, 0, Orient0) {
		t.Fatal("expected touching placement to be rejected at delta=1")
	}
	// One empty column of space should be accepted.
	if !area.CanPlace(b2, 3, 0, Orient0) {
		t.Fatal("expected placement with 1 empty column to be accepted at delta=1")
	}
}

func TestSpacingZeroAllowsTouching(t *testing.T) {
	// delta=0, two identical crane blocks exactly fitting side-by-side
	// (cranes, so no trestle corridor rule applies between them).
	area, _ := NewArea(deckcfg.Config{Width: 6, Height: 2, BlockSpacing: 0})
	b1 := rectBlock(t, "b1", voxel.Crane, 3, 2)
	b2 := rectBlock(t, "b2", voxel.Crane, 3, 2)

	if !area.CanPlace(b1, 0, 0, Orient0) {
		t.Fatal("expected b1 placement to be accepted")
	}
	area.Place(b1, 0, 0, Orient0)
	if !area.CanPlace(b2, 3, 0, Orient0) {
		t.Fatal("expected touching placement to be accepted at delta=0")
	}
	area.Place(b2, 3, 0, Orient0)
	if len(area.Placements()) != 2 {
		t.Fatalf("expected both blocks placed, got %d", len(area.Placements()))
	}
}

func TestColumnTopsDeterministicOrder(t *testing.T) {
	area, _ := NewArea(deckcfg.Config{Width: 10, Height: 10})
	b1 := rectBlock(t, "b1", voxel.Trestle, 3, 2)
	area.Place(b1, 7, 0, Orient0)

	tops := area.ColumnTops()
	keys := SortedColumnTopKeys(tops)
	for i := 1; i < len(keys); i++ {
		if keys[i-1] > keys[i] {
			t.Fatal("expected ascending key order")
		}
	}
	if tops[7] != 2 || tops[8] != 2 || tops[9] != 2 {
		t.Fatalf("unexpected column tops: %v", tops)
	}
}

func TestCraneRingClearanceInvariant(t *testing.T) {
	// Deck 30x10, bow_clearance=0, ring_bow_clearance=5, crane 4x4.
	area, _ := NewArea(deckcfg.Config{Width: 30, Height: 10, RingBowClearance: 5})
	c := rectBlock(t, "c1", voxel.Crane, 4, 4)

	if area.CanPlace(c, 26, 0, Orient0) {
		t.Fatal("expected anchor (26,0) to violate ring clearance")
	}
	if !area.CanPlace(c, 21, 0, Orient0) {
		t.Fatal("expected anchor (21,0) to satisfy ring clearance")
	}
}

func TestTrestleCorridorInvariant(t *testing.T) {
	// Placing T then C must block C; the reverse order is checked in
	// TestTrestleCorridorInvariantSymmetric.
	area, _ := NewArea(deckcfg.Config{Width: 20, Height: 10})
	trestle := rectBlock(t, "t1", voxel.Trestle, 4, 4)
	crane := rectBlock(t, "c1", voxel.Crane, 4, 4)

	area.Place(trestle, 10, 3, Orient0)
	if area.CanPlace(crane, 4, 3, Orient0) {
		t.Fatal("expected crane placement to be blocked by trestle's corridor")
	}
}

func TestTrestleCorridorInvariantSymmetric(t *testing.T) {
	area, _ := NewArea(deckcfg.Config{Width: 20, Height: 10})
	crane := rectBlock(t, "c1", voxel.Crane, 4, 4)
	trestle := rectBlock(t, "t1", voxel.Trestle, 4, 4)

	area.Place(crane, 4, 3, Orient0)
	if area.CanPlace(trestle, 10, 3, Orient0) {
		t.Fatal("expected trestle placement to be blocked because its corridor is occupied")
	}
}
