// Package compact implements post-placement movement optimization: after
// a block is committed to a PlacementArea, shift it right then down
// toward the nearest obstacle, without breaking any invariant.
package compact

import (
	"github.com/dockyard-eng/voxelpack/placement"
	"github.com/dockyard-eng/voxelpack/voxel"
)

// Compact right-shifts then down-shifts the block with the given id.
// It only ever moves that one block; earlier placements are untouched.
// The id must currently be placed on area; Compact is a no-op otherwise.
func Compact(area *placement.Area, id string) {
	p, ok := area.Get(id)
	if !ok {
		return
	}
	rightShift(area, p)

	p, ok = area.Get(id)
	if !ok {
		return
	}
	downShift(area, p)
}

func geometryFor(p placement.Placed) *voxel.Block {
	if p.Orientation == placement.Orient90 {
		return p.Block.Rotated()
	}
	return p.Block
}

// rowEdges returns, for each occupied row, the rightmost local rx.
func rowEdges(geo *voxel.Block) map[int]int {
	edges := make(map[int]int)
	for _, c := range geo.Cells() {
		if cur, ok := edges[c.Y]; !ok || c.X > cur {
			edges[c.Y] = c.X
		}
	}
	return edges
}

// columnEdges returns, for each occupied column, the bottommost (smallest)
// local ry.
func columnEdges(geo *voxel.Block) map[int]int {
	edges := make(map[int]int)
	for _, c := range geo.Cells() {
		if cur, ok := edges[c.X]; !ok || c.Y < cur {
			edges[c.X] = c.Y
		}
	}
	return edges
}

// rightShift moves p's block toward increasing x, one row-scan per
// occupied row, stopping at the first occupied cell or the deck edge.
func rightShift(area *placement.Area, p placement.Placed) {
	geo := geometryFor(p)
	cfg := area.Config()

	maxShift := -1
	for ry, rx := range rowEdges(geo) {
		edgeX := p.AnchorX + rx
		edgeY := p.AnchorY + ry

		obstacleX := cfg.Width
		for x := edgeX + 1; x < cfg.Width; x++ {
			if !area.IsEmpty(x, edgeY) {
				obstacleX = x
				break
			}
		}
		shift := obstacleX - edgeX - 1 - cfg.BlockSpacing
		if shift < 0 {
			shift = 0
		}
		if maxShift == -1 || shift < maxShift {
			maxShift = shift
		}
	}
	if maxShift <= 0 {
		return
	}

	attemptShift(area, p, func(k int) (int, int) { return p.AnchorX + k, p.AnchorY }, maxShift)
}

// downShift moves p's block toward decreasing y (the y=0 edge), one
// column-scan per occupied column, stopping at the first occupied cell or
// the deck edge.
func downShift(area *placement.Area, p placement.Placed) {
	geo := geometryFor(p)
	cfg := area.Config()

	maxShift := -1
	for cx, ry := range columnEdges(geo) {
		edgeX := p.AnchorX + cx
		edgeY := p.AnchorY + ry

		obstacleY := -1
		for y := edgeY - 1; y >= 0; y-- {
			if !area.IsEmpty(edgeX, y) {
				obstacleY = y
				break
			}
		}
		shift := edgeY - obstacleY - 1 - cfg.BlockSpacing
		if shift < 0 {
			shift = 0
		}
		if maxShift == -1 || shift < maxShift {
			maxShift = shift
		}
	}
	if maxShift <= 0 {
		return
	}

	attemptShift(area, p, func(k int) (int, int) { return p.AnchorX, p.AnchorY - k }, maxShift)
}

// attemptShift removes p's block, then tries anchors k = maxShift down
// to 1 (via next), committing the first that passes CanPlace. If none
// pass, the block is restored to its original anchor.
func attemptShift(area *placement.Area, p placement.Placed, next func(k int) (int, int), maxShift int) {
	area.Remove(p.Block.ID())
	for k := maxShift; k >= 1; k-- {
		ax, ay := next(k)
		if area.CanPlace(p.Block, ax, ay, p.Orientation) {
			area.Place(p.Block, ax, ay, p.Orientation)
			return
		}
	}
	area.Place(p.Block, p.AnchorX, p.AnchorY, p.Orientation)
}
