// Package placement implements the mutable deck state: an occupancy
// grid, the set of placed blocks with their anchors, and the primitive
// CanPlace/Place/Remove/ColumnTops operations that the rest of the
// packing engine is built from.
package placement

import (
	"errors"
	"fmt"
	"sort"

	"github.com/dockyard-eng/voxelpack/deckcfg"
	"github.com/dockyard-eng/voxelpack/placement/constraint"
	"github.com/dockyard-eng/voxelpack/voxel"
)

// ErrAlreadyPlaced is a programming error: the caller attempted to place
// a block id that is already on the deck. Place panics with this error
// rather than returning it.
var ErrAlreadyPlaced = errors.New("placement: block id already placed")

// ErrInvariantViolation indicates a defensive geometry/occupancy check
// failed after a mutation that should have been impossible. It is fatal.
var ErrInvariantViolation = errors.New("placement: internal invariant violation")

// Orientation is the anchor orientation a block was (or would be)
// placed at. Only 0 and 90 exist, and 90 is only ever used for Crane
// blocks.
type Orientation int

const (
	Orient0  Orientation = 0
	Orient90 Orientation = 90
)

// Placed records a single committed placement, in the order it was
// committed.
type Placed struct {
	Block       *voxel.Block
	AnchorX     int
	AnchorY     int
	Orientation Orientation
}

// geometry returns the footprint view to use for this placement: the
// block itself at Orient0, or its cached rotated view at Orient90.
func (p Placed) geometry() *voxel.Block {
	if p.Orientation == Orient90 {
		return p.Block.Rotated()
	}
	return p.Block
}

// Area is the mutable deck: occupancy grid plus ordered placement list.
// Zero value is not usable; construct with NewArea.
type Area struct {
	cfg  deckcfg.Config
	grid [][]string // grid[y][x] = block id, or "" if empty

	placed []Placed
	index  map[string]int // block id -> index into placed
}

// NewArea constructs an empty deck of the given configuration.
func NewArea(cfg deckcfg.Config) (*Area, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	grid := make([][]string, cfg.Height)
	for y := range grid {
		grid[y] = make([]string, cfg.Width)
	}
	return &Area{
		cfg:   cfg,
		grid:  grid,
		index: make(map[string]int),
	}, nil
}

// Config returns the deck's configuration.
func (a *Area) Config() deckcfg.Config { return a.cfg }

// inBounds reports whether (x, y) is within the full deck extent
// (including clearance bands, which are part of the grid but never
// occupiable).
func (a *Area) inBounds(x, y int) bool {
	return x >= 0 && x < a.cfg.Width && y >= 0 && y < a.cfg.Height
}

// IsEmpty reports whether (x, y) holds no placed block. Out-of-bounds
// cells are reported as not empty, so corridor/obstacle scans never
// need a separate bounds check.
func (a *Area) IsEmpty(x, y int) bool {
	if !a.inBounds(x, y) {
		return false
	}
	return a.grid[y][x] == ""
}

// CellOccupant returns the id of the block occupying (x, y), if any.
func (a *Area) CellOccupant(x, y int) (string, bool) {
	if !a.inBounds(x, y) {
		return "", false
	}
	id := a.grid[y][x]
	return id, id != ""
}

// Placements returns the committed placements in insertion order. The
// returned slice is a copy; callers may not mutate the area through it.
func (a *Area) Placements() []Placed {
	out := make([]Placed, len(a.placed))
	copy(out, a.placed)
	return out
}

// Get returns the placement for a given block id, if present.
func (a *Area) Get(id string) (Placed, bool) {
	idx, ok := a.index[id]
	if !ok {
		return Placed{}, false
	}
	return a.placed[idx], true
}

// footprintAbs returns the absolute-coordinate footprint cells for a
// block placed at (ax, ay) with the given orientation.
func footprintAbs(block *voxel.Block, ax, ay int, orientation Orientation) []voxel.Cell {
	geo := block
	if orientation == Orient90 {
		geo = block.Rotated()
	}
	cells := geo.Cells()
	out := make([]voxel.Cell, len(cells))
	for i, c := range cells {
		out[i] = voxel.Cell{X: ax + c.X, Y: ay + c.Y}
	}
	return out
}

func perimeterAbs(block *voxel.Block, ax, ay int, orientation Orientation) []constraint.Point {
	geo := block
	if orientation == Orient90 {
		geo = block.Rotated()
	}
	cells := geo.PerimeterCells()
	out := make([]constraint.Point, len(cells))
	for i, c := range cells {
		out[i] = constraint.Point{X: ax + c.X, Y: ay + c.Y}
	}
	return out
}

// CanPlace reports whether placing block at (ax, ay) with orientation
// would keep the deck's bounds, occupancy, type-constraint and spacing
// invariants intact. Checks run fail-fast, in that order.
func (a *Area) CanPlace(block *voxel.Block, ax, ay int, orientation Orientation) bool {
	geo := block
	if orientation == Orient90 {
		geo = block.Rotated()
	}

	// 1. Bounds: every footprint cell inside the usable rectangle.
	left := a.cfg.SternClearance
	right := a.cfg.Width - a.cfg.BowClearance
	for _, c := range geo.Cells() {
		x, y := ax+c.X, ay+c.Y
		if x < left || x >= right || y < 0 || y >= a.cfg.Height {
			return false
		}
	}

	// 2. Occupancy: every footprint cell empty.
	for _, c := range geo.Cells() {
		if !a.IsEmpty(ax+c.X, ay+c.Y) {
			return false
		}
	}

	// 3. Type constraints.
	if block.Type() == voxel.Crane {
		farX := ax + geo.ActualWidth() - 1
		if !constraint.CraneRingClear(farX, a.cfg.Width, a.cfg.BowClearance, a.cfg.RingBowClearance) {
			return false
		}
	}
	if block.Type() == voxel.Trestle {
		if !constraint.TrestleCorridorClear(ax, ay, geo.ActualHeight(), a.IsEmpty) {
			return false
		}
	}
	// This is a standing invariant, not just a self-check: placing any
	// block (not just another trestle) must not intrude into an
	// already-placed trestle's corridor, or that trestle would lose its
	// stern-side access.
	for _, p := range a.placed {
		if p.Block.Type() != voxel.Trestle {
			continue
		}
		pGeo := p.geometry()
		for _, c := range geo.Cells() {
			x, y := ax+c.X, ay+c.Y
			if x < p.AnchorX && y >= p.AnchorY && y < p.AnchorY+pGeo.ActualHeight() {
				return false
			}
		}
	}

	// 4. Spacing: chessboard distance >= delta against every other
	// placed block's perimeter, restricted (for cost) to blocks whose
	// bounding boxes lie within delta of the candidate's.
	if a.cfg.BlockSpacing > 0 {
		candPerim := perimeterAbs(block, ax, ay, orientation)
		candMinX, candMinY, candMaxX, candMaxY := boundingBox(ax, ay, geo)
		for _, p := range a.placed {
			pGeo := p.geometry()
			pMinX, pMinY, pMaxX, pMaxY := boundingBox(p.AnchorX, p.AnchorY, pGeo)
			if !boxesWithinDelta(candMinX, candMinY, candMaxX, candMaxY, pMinX, pMinY, pMaxX, pMaxY, a.cfg.BlockSpacing) {
				continue
			}
			otherPerim := perimeterAbs(p.Block, p.AnchorX, p.AnchorY, p.Orientation)
			if !constraint.SpacingOK(candPerim, otherPerim, a.cfg.BlockSpacing) {
				return false
			}
		}
	}

	return true
}

func boundingBox(ax, ay int, geo *voxel.Block) (minX, minY, maxX, maxY int) {
	return ax, ay, ax + geo.ActualWidth() - 1, ay + geo.ActualHeight() - 1
}

// boxesWithinDelta reports whether two axis-aligned boxes are close
// enough that a spacing check between their perimeters is worth doing.
func boxesWithinDelta(aMinX, aMinY, aMaxX, aMaxY, bMinX, bMinY, bMaxX, bMaxY, delta int) bool {
	gapX := 0
	if bMinX > aMaxX {
		gapX = bMinX - aMaxX - 1
	} else if aMinX > bMaxX {
		gapX = aMinX - bMaxX - 1
	}
	gapY := 0
	if bMinY > aMaxY {
		gapY = bMinY - aMaxY - 1
	} else if aMinY > bMaxY {
		gapY = aMinY - bMaxY - 1
	}
	gap := gapX
	if gapY > gap {
		gap = gapY
	}
	return gap <= delta
}

// Place commits a placement. The caller must have already confirmed
// CanPlace; Place re-validates and panics with ErrAlreadyPlaced if the
// id is already present (a programming error, not a recoverable one).
func (a *Area) Place(block *voxel.Block, ax, ay int, orientation Orientation) {
	if _, exists := a.index[block.ID()]; exists {
		panic(fmt.Errorf("%w: id %q", ErrAlreadyPlaced, block.ID()))
	}
	if !a.CanPlace(block, ax, ay, orientation) {
		panic(fmt.Errorf("%w: Place called without a passing CanPlace for id %q", ErrInvariantViolation, block.ID()))
	}

	for _, c := range footprintAbs(block, ax, ay, orientation) {
		a.grid[c.Y][c.X] = block.ID()
	}
	a.index[block.ID()] = len(a.placed)
	a.placed = append(a.placed, Placed{Block: block, AnchorX: ax, AnchorY: ay, Orientation: orientation})
}

// Remove clears a placed block's grid cells and removes it from the
// placement list. It is the exact inverse of Place: grid and
// placement state are restored to what they were before Place ran.
func (a *Area) Remove(id string) {
	idx, ok := a.index[id]
	if !ok {
		return
	}
	p := a.placed[idx]
	for _, c := range footprintAbs(p.Block, p.AnchorX, p.AnchorY, p.Orientation) {
		a.grid[c.Y][c.X] = ""
	}

	a.placed = append(a.placed[:idx], a.placed[idx+1:]...)
	delete(a.index, id)
	for id2, i := range a.index {
		if i > idx {
			a.index[id2] = i - 1
		}
	}
}

// ColumnTops returns, for each x in [stern_clearance, width-bow_clearance)
// that lies within any placed block's x-range, the smallest y strictly
// above the topmost occupied cell in that column. Columns with no
// occupied cell are omitted. Callers iterating the result must sort the
// keys (numeric order) to stay deterministic.
func (a *Area) ColumnTops() map[int]int {
	tops := make(map[int]int)
	left := a.cfg.SternClearance
	right := a.cfg.Width - a.cfg.BowClearance
	for x := left; x < right; x++ {
		maxY := -1
		for y := 0; y < a.cfg.Height; y++ {
			if a.grid[y][x] != "" {
				maxY = y
			}
		}
		if maxY >= 0 {
			tops[x] = maxY + 1
		}
	}
	return tops
}

// SortedColumnTopKeys returns ColumnTops' keys in ascending numeric
// order, the deterministic iteration order every caller must use.
func SortedColumnTopKeys(tops map[int]int) []int {
	keys := make([]int, 0, len(tops))
	for k := range tops {
		keys = append(keys, k)
	}
	sort.Ints(keys)
	return keys
}

// CheckInvariants defensively re-verifies bounds, grid consistency,
// type constraints, and spacing against the current state. It is not
// called on every mutation (that would defeat the O(|footprint|) cost
// bound CanPlace is designed for); callers that want belt-and-suspenders
// verification (the tests do) can call it explicitly. Any failure panics: a breach here means the packer itself
// has a bug.
func (a *Area) CheckInvariants() {
	left := a.cfg.SternClearance
	right := a.cfg.Width - a.cfg.BowClearance

	for _, p := range a.placed {
		geo := p.geometry()
		for _, c := range geo.Cells() {
			x, y := p.AnchorX+c.X, p.AnchorY+c.Y
			if x < left || x >= right || y < 0 || y >= a.cfg.Height {
				a.violate("out-of-bounds", p.Block.ID())
			}
			if a.grid[y][x] != p.Block.ID() {
				a.violate("grid-mismatch", p.Block.ID())
			}
		}
		if p.Block.Type() == voxel.Crane {
			farX := p.AnchorX + geo.ActualWidth() - 1
			if !constraint.CraneRingClear(farX, a.cfg.Width, a.cfg.BowClearance, a.cfg.RingBowClearance) {
				a.violate("crane-ring-clearance", p.Block.ID())
			}
		}
		if p.Block.Type() == voxel.Trestle {
			if !constraint.TrestleCorridorClear(p.AnchorX, p.AnchorY, geo.ActualHeight(), a.IsEmpty) {
				a.violate("trestle-corridor", p.Block.ID())
			}
		}
	}

	for i := 0; i < len(a.placed); i++ {
		for j := i + 1; j < len(a.placed); j++ {
			pi, pj := a.placed[i], a.placed[j]
			perimI := perimeterAbs(pi.Block, pi.AnchorX, pi.AnchorY, pi.Orientation)
			perimJ := perimeterAbs(pj.Block, pj.AnchorX, pj.AnchorY, pj.Orientation)
			if !constraint.SpacingOK(perimI, perimJ, a.cfg.BlockSpacing) {
				a.violate("spacing", pi.Block.ID()+"/"+pj.Block.ID())
			}
		}
	}
}

func (a *Area) violate(invariant, blockID string) {
	panic(fmt.Errorf("%w: %s broken for block %q", ErrInvariantViolation, invariant, blockID))
}
