package voxelio

import (
	"errors"
	"testing"
)

func TestParseBlockRectangle(t *testing.T) {
	raw := []byte(`{
		"block_id": "t1",
		"block_type": "trestle",
		"voxel_data": {
			"resolution": 0.5,
			"voxel_positions": [
				[0, 0, [0, 2]],
				[1, 0, [0, 2]],
				[0, 1, [0, 2]],
				[1, 1, [0, 2]]
			],
			"footprint_area": 4
		}
	}`)

	b, err := ParseBlock(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.ID() != "t1" {
		t.Errorf("expected id t1, got %s", b.ID())
	}
	if b.ActualWidth() != 2 || b.ActualHeight() != 2 {
		t.Fatalf("expected 2x2, got %dx%d", b.ActualWidth(), b.ActualHeight())
	}
	hr, ok := b.HeightAt(0, 0)
	if !ok || hr.MinLayer != 0 || hr.MaxLayer != 2 {
		t.Errorf("expected height range (0,2), got %+v ok=%v", hr, ok)
	}
}

func TestParseBlockUnknownTypeTreatedAsTrestle(t *testing.T) {
	raw := []byte(`{
		"block_id": "s1",
		"block_type": "support",
		"voxel_data": {
			"voxel_positions": [[0, 0, [0, 1]]]
		}
	}`)

	b, err := ParseBlock(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if b.Type().String() != "trestle" {
		t.Errorf("expected support to map to trestle, got %s", b.Type())
	}
}

func TestParseBlockEmptyPositionsRejected(t *testing.T) {
	raw := []byte(`{
		"block_id": "empty",
		"block_type": "crane",
		"voxel_data": { "voxel_positions": [] }
	}`)

	_, err := ParseBlock(raw)
	if !errors.Is(err, ErrInputInvalid) {
		t.Fatalf("expected ErrInputInvalid, got %v", err)
	}
}

func TestParseBlockFootprintAreaMismatchRejected(t *testing.T) {
	raw := []byte(`{
		"block_id": "mismatch",
		"block_type": "crane",
		"voxel_data": {
			"voxel_positions": [[0, 0, [0, 1]]],
			"footprint_area": 2
		}
	}`)

	_, err := ParseBlock(raw)
	if !errors.Is(err, ErrInputInvalid) {
		t.Fatalf("expected ErrInputInvalid, got %v", err)
	}
}

func TestParseDeckConfigMapsFields(t *testing.T) {
	raw := []byte(`{
		"grid_size": { "width": 30, "height": 10, "grid_unit": 0.5 },
		"constraints": {
			"margin": { "bow": 2, "stern": 1 },
			"block_clearance": 1,
			"ring_bow_clearance": 5
		}
	}`)

	cfg, err := ParseDeckConfig(raw)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// width/height are metres, grid_unit is metres/cell: 30m/0.5 = 60
	// cells, 10m/0.5 = 20 cells.
	if cfg.Width != 60 || cfg.Height != 20 {
		t.Fatalf("unexpected extent: %dx%d", cfg.Width, cfg.Height)
	}
	if cfg.BowClearance != 2 || cfg.SternClearance != 1 {
		t.Fatalf("unexpected margins: bow=%d stern=%d", cfg.BowClearance, cfg.SternClearance)
	}
	if cfg.BlockSpacing != 1 {
		t.Errorf("expected block_clearance mapped to BlockSpacing=1, got %d", cfg.BlockSpacing)
	}
	if cfg.RingBowClearance != 5 {
		t.Errorf("expected ring_bow_clearance=5, got %d", cfg.RingBowClearance)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestParseDeckConfigRejectsZeroGridUnit(t *testing.T) {
	raw := []byte(`{
		"grid_size": { "width": 30, "height": 10, "grid_unit": 0 },
		"constraints": { "margin": { "bow": 0, "stern": 0 }, "block_clearance": 0, "ring_bow_clearance": 0 }
	}`)

	_, err := ParseDeckConfig(raw)
	if !errors.Is(err, ErrInputInvalid) {
		t.Fatalf("expected ErrInputInvalid, got %v", err)
	}
}
