// Package voxel describes the immutable block geometry the packing
// engine places: a 2.5-D voxel footprint with per-cell height, a
// block type, and derived boundary geometry.
package voxel

import (
	"errors"
	"fmt"
	"sort"
	"sync"
)

// ErrInputInvalid is returned by constructors when a block descriptor
// violates the invariants required by the packer.
var ErrInputInvalid = errors.New("voxel: invalid input")

// Type distinguishes the block-type rules the constraint checker applies.
type Type int

const (
	// Trestle is the default type; it also covers any block_type string
	// the loader does not recognize, including "support".
	Trestle Type = iota
	Crane
)

func (t Type) String() string {
	if t == Crane {
		return "crane"
	}
	return "trestle"
}

// Cell is an integer grid coordinate, relative to a block's own origin
// unless stated otherwise.
type Cell struct {
	X, Y int
}

// HeightRange is an opaque per-cell height band, carried through for
// visualisation only. The packer never inspects it.
type HeightRange struct {
	MinLayer, MaxLayer int
}

// Block is an immutable voxel footprint descriptor. Construct with
// NewBlock; all derived geometry is computed once and never mutated.
type Block struct {
	id         string
	typ        Type
	cells      map[Cell]struct{}
	heights    map[Cell]HeightRange
	rotated    *Block // cached 90°-rotated view, materialised once by rotateOnce
	rotateOnce sync.Once
	rotation   bool // true if this Block value IS a rotated view

	actualWidth    int
	actualHeight   int
	area           int
	rightBoundary  map[int]int // y -> max rx
	bottomBoundary map[int]int // x -> min ry
	perimeter      []Cell
}

// NewBlock constructs a Block from an id, type, and set of filled cells
// with associated height info. The footprint is normalised so the
// minimum x and y are both zero. footprint must be non-empty.
func NewBlock(id string, typ Type, footprint []Cell, heights map[Cell]HeightRange) (*Block, error) {
	if len(footprint) == 0 {
		return nil, fmt.Errorf("%w: block %q has an empty footprint", ErrInputInvalid, id)
	}

	minX, minY := footprint[0].X, footprint[0].Y
	for _, c := range footprint {
		if c.X < minX {
			minX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
	}

	cells := make(map[Cell]struct{}, len(footprint))
	heightInfo := make(map[Cell]HeightRange, len(footprint))
	maxRX, maxRY := 0, 0
	for _, c := range footprint {
		nc := Cell{X: c.X - minX, Y: c.Y - minY}
		cells[nc] = struct{}{}
		if h, ok := heights[c]; ok {
			heightInfo[nc] = h
		}
		if nc.X > maxRX {
			maxRX = nc.X
		}
		if nc.Y > maxRY {
			maxRY = nc.Y
		}
	}

	b := &Block{
		id:             id,
		typ:            typ,
		cells:          cells,
		heights:        heightInfo,
		actualWidth:    maxRX + 1,
		actualHeight:   maxRY + 1,
		area:           len(cells),
		rightBoundary:  make(map[int]int),
		bottomBoundary: make(map[int]int),
	}
	b.computeBoundaries()
	b.computePerimeter()
	return b, nil
}

func (b *Block) computeBoundaries() {
	for c := range b.cells {
		if cur, ok := b.rightBoundary[c.Y]; !ok || c.X > cur {
			b.rightBoundary[c.Y] = c.X
		}
		if cur, ok := b.bottomBoundary[c.X]; !ok || c.Y < cur {
			b.bottomBoundary[c.X] = c.Y
		}
	}
}

func (b *Block) computePerimeter() {
	neighbors := [4]Cell{{1, 0}, {-1, 0}, {0, 1}, {0, -1}}
	var perim []Cell
	for c := range b.cells {
		for _, d := range neighbors {
			n := Cell{X: c.X + d.X, Y: c.Y + d.Y}
			if _, occupied := b.cells[n]; !occupied {
				perim = append(perim, c)
				break
			}
		}
	}
	sort.Slice(perim, func(i, j int) bool {
		if perim[i].Y != perim[j].Y {
			return perim[i].Y < perim[j].Y
		}
		return perim[i].X < perim[j].X
	})
	b.perimeter = perim
}

// ID returns the block's opaque identifier.
func (b *Block) ID() string { return b.id }

// Type returns the block's placement-rule type.
func (b *Block) Type() Type { return b.typ }

// ActualWidth returns max(rx)+1 across the footprint.
func (b *Block) ActualWidth() int { return b.actualWidth }

// ActualHeight returns max(ry)+1 across the footprint.
func (b *Block) ActualHeight() int { return b.actualHeight }

// Area returns the number of filled footprint cells.
func (b *Block) Area() int { return b.area }

// HasCell reports whether (rx, ry) is a filled footprint cell.
func (b *Block) HasCell(rx, ry int) bool {
	_, ok := b.cells[Cell{X: rx, Y: ry}]
	return ok
}

// Cells returns the footprint cells. The returned slice is freshly
// allocated and safe for the caller to mutate.
func (b *Block) Cells() []Cell {
	out := make([]Cell, 0, len(b.cells))
	for c := range b.cells {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Y != out[j].Y {
			return out[i].Y < out[j].Y
		}
		return out[i].X < out[j].X
	})
	return out
}

// PerimeterCells returns footprint cells with at least one 4-neighbour
// outside the footprint, in deterministic (row-major) order.
func (b *Block) PerimeterCells() []Cell {
	out := make([]Cell, len(b.perimeter))
	copy(out, b.perimeter)
	return out
}

// RightBoundary returns, for each occupied row y, the maximum rx in
// that row.
func (b *Block) RightBoundary() map[int]int {
	out := make(map[int]int, len(b.rightBoundary))
	for k, v := range b.rightBoundary {
		out[k] = v
	}
	return out
}

// BottomBoundary returns, for each occupied column x, the minimum ry in
// that column.
func (b *Block) BottomBoundary() map[int]int {
	out := make(map[int]int, len(b.bottomBoundary))
	for k, v := range b.bottomBoundary {
		out[k] = v
	}
	return out
}

// HeightAt returns the opaque height range for a footprint cell, if any.
func (b *Block) HeightAt(rx, ry int) (HeightRange, bool) {
	h, ok := b.heights[Cell{X: rx, Y: ry}]
	return h, ok
}

// IsRotatedView reports whether this Block value is itself a
// materialised 90°-rotated view of another block.
func (b *Block) IsRotatedView() bool { return b.rotation }

// Rotated returns a 90°-rotated view of the block, materialised once and
// cached. Only meaningful for Type() == Crane: the candidate generator
// requests it for crane blocks, and placement and compaction request it
// for 90° placements, which only cranes receive. Any block may be
// rotated, but callers outside the crane rotation rule have no reason to.
func (b *Block) Rotated() *Block {
	b.rotateOnce.Do(b.buildRotated)
	return b.rotated
}

// buildRotated materialises the 90°-rotated view. Called at most once
// per Block, guarded by rotateOnce, since the same *Block is meant to
// be shared read-only across concurrent placement runs (spec's
// clone-the-area-not-the-blocks contract).
func (b *Block) buildRotated() {
	// Rotate 90° clockwise about the origin: (x, y) -> (y, -x).
	rotCells := make([]Cell, 0, len(b.cells))
	for c := range b.cells {
		rotCells = append(rotCells, Cell{X: c.Y, Y: -c.X})
	}

	minX, minY := rotCells[0].X, rotCells[0].Y
	for _, c := range rotCells {
		if c.X < minX {
			minX = c.X
		}
		if c.Y < minY {
			minY = c.Y
		}
	}
	// NewBlock will re-normalise coordinates the same way; replay that
	// shift here so the height map lines up with the final cell keys.
	normHeights := make(map[Cell]HeightRange, len(rotCells))
	for c := range b.cells {
		nc := Cell{X: c.Y - minX, Y: -c.X - minY}
		if h, ok := b.heights[c]; ok {
			normHeights[nc] = h
		}
	}

	rb, _ := NewBlock(b.id, b.typ, rotCells, nil)
	rb.heights = normHeights
	rb.rotation = true
	b.rotated = rb
}
