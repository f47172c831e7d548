// Package voxelio loads the two external record formats the packing
// engine consumes: a per-block voxel record and a deck configuration,
// both plain JSON. This is the only place in the module that touches
// encoding/json or the filesystem; the packer itself never reads files.
package voxelio

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"

	"github.com/dockyard-eng/voxelpack/deckcfg"
	"github.com/dockyard-eng/voxelpack/voxel"
)

// ErrInputInvalid is returned when a record parses as JSON but fails
// the packer's own structural requirements.
var ErrInputInvalid = errors.New("voxelio: invalid input")

// voxelPosition is one [x, y, [min_height, max_height]] entry.
type voxelPosition struct {
	X, Y       int
	MinH, MaxH int
}

func (v *voxelPosition) UnmarshalJSON(data []byte) error {
	var raw [3]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[0], &v.X); err != nil {
		return err
	}
	if err := json.Unmarshal(raw[1], &v.Y); err != nil {
		return err
	}
	var height [2]int
	if err := json.Unmarshal(raw[2], &height); err != nil {
		return err
	}
	v.MinH, v.MaxH = height[0], height[1]
	return nil
}

// blockRecord is the on-disk voxel record shape.
type blockRecord struct {
	BlockID   string `json:"block_id"`
	BlockType string `json:"block_type"`
	VoxelData struct {
		Resolution     float64         `json:"resolution"`
		VoxelPositions []voxelPosition `json:"voxel_positions"`
		FootprintArea  *int            `json:"footprint_area"`
	} `json:"voxel_data"`
}

// ParseBlock decodes a single voxel record and constructs the
// corresponding immutable voxel.Block.
func ParseBlock(data []byte) (*voxel.Block, error) {
	var rec blockRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}
	if len(rec.VoxelData.VoxelPositions) == 0 {
		return nil, fmt.Errorf("%w: block %q has no voxel positions", ErrInputInvalid, rec.BlockID)
	}
	if rec.VoxelData.FootprintArea != nil && *rec.VoxelData.FootprintArea != len(rec.VoxelData.VoxelPositions) {
		return nil, fmt.Errorf("%w: block %q footprint_area %d does not match %d voxel positions",
			ErrInputInvalid, rec.BlockID, *rec.VoxelData.FootprintArea, len(rec.VoxelData.VoxelPositions))
	}

	footprint := make([]voxel.Cell, len(rec.VoxelData.VoxelPositions))
	heights := make(map[voxel.Cell]voxel.HeightRange, len(rec.VoxelData.VoxelPositions))
	for i, p := range rec.VoxelData.VoxelPositions {
		c := voxel.Cell{X: p.X, Y: p.Y}
		footprint[i] = c
		heights[c] = voxel.HeightRange{MinLayer: p.MinH, MaxLayer: p.MaxH}
	}

	return voxel.NewBlock(rec.BlockID, voxel.TypeFromString(rec.BlockType), footprint, heights)
}

// LoadBlock reads and parses a voxel record from path.
func LoadBlock(path string) (*voxel.Block, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseBlock(data)
}

// deckRecord is the on-disk deck configuration shape. grid_size.width
// and grid_size.height are metres; grid_unit is metres/cell. Every
// other field (margins, block_clearance, ring_bow_clearance) is
// already in cells.
type deckRecord struct {
	GridSize struct {
		Width    float64 `json:"width"`
		Height   float64 `json:"height"`
		GridUnit float64 `json:"grid_unit"`
	} `json:"grid_size"`
	Constraints struct {
		Margin struct {
			Bow    int `json:"bow"`
			Stern  int `json:"stern"`
		} `json:"margin"`
		BlockClearance   int `json:"block_clearance"`
		RingBowClearance int `json:"ring_bow_clearance"`
	} `json:"constraints"`
}

// ParseDeckConfig decodes a deck configuration record into a
// deckcfg.Config, converting grid_size.width/height from metres to
// cells via grid_unit. The returned config has not been validated;
// callers should call Validate (or let PlacementArea construction do
// it).
func ParseDeckConfig(data []byte) (deckcfg.Config, error) {
	var rec deckRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return deckcfg.Config{}, fmt.Errorf("%w: %v", ErrInputInvalid, err)
	}
	if rec.GridSize.GridUnit <= 0 {
		return deckcfg.Config{}, fmt.Errorf("%w: grid_size.grid_unit must be > 0, got %v", ErrInputInvalid, rec.GridSize.GridUnit)
	}
	return deckcfg.Config{
		Width:            int(math.Round(rec.GridSize.Width / rec.GridSize.GridUnit)),
		Height:           int(math.Round(rec.GridSize.Height / rec.GridSize.GridUnit)),
		BowClearance:     rec.Constraints.Margin.Bow,
		SternClearance:   rec.Constraints.Margin.Stern,
		BlockSpacing:     rec.Constraints.BlockClearance,
		RingBowClearance: rec.Constraints.RingBowClearance,
	}, nil
}

// LoadDeckConfig reads and parses a deck configuration from path.
func LoadDeckConfig(path string) (deckcfg.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return deckcfg.Config{}, err
	}
	return ParseDeckConfig(data)
}
