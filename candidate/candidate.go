// Package candidate generates the ordered anchor positions the greedy
// placer tries for a given (area, block) pair: an initial corner,
// column-wise vertical stacking, new-column initiation, and — for crane
// blocks — the same three rules replayed against the 90°-rotated view.
package candidate

import (
	"sort"

	"github.com/dockyard-eng/voxelpack/placement"
	"github.com/dockyard-eng/voxelpack/voxel"
)

// Anchor is one candidate position, with the orientation it was
// generated for.
type Anchor struct {
	X, Y        int
	Orientation placement.Orientation
}

// Generate produces the ordered candidate list for placing block on
// area, truncated to maxCandidates.
func Generate(area *placement.Area, block *voxel.Block, maxCandidates int) []Anchor {
	var out []Anchor
	out = append(out, generateForOrientation(area, block, placement.Orient0)...)

	if block.Type() == voxel.Crane {
		out = append(out, generateForOrientation(area, block, placement.Orient90)...)
	}

	if maxCandidates > 0 && len(out) > maxCandidates {
		out = out[:maxCandidates]
	}
	return out
}

func geometryFor(block *voxel.Block, orientation placement.Orientation) *voxel.Block {
	if orientation == placement.Orient90 {
		return block.Rotated()
	}
	return block
}

func generateForOrientation(area *placement.Area, block *voxel.Block, orientation placement.Orientation) []Anchor {
	geo := geometryFor(block, orientation)
	cfg := area.Config()
	var out []Anchor

	tops := area.ColumnTops()

	// R1 — initial anchor (deck empty).
	if len(tops) == 0 {
		x := cfg.Width - cfg.BowClearance - geo.ActualWidth()
		out = append(out, Anchor{X: x, Y: 0, Orientation: orientation})
		return out
	}

	// R2 — column-wise vertical stacking, rightmost columns first.
	keys := placement.SortedColumnTopKeys(tops)
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))
	for _, x := range keys {
		y := tops[x] + cfg.BlockSpacing
		if y+geo.ActualHeight() <= cfg.Height {
			out = append(out, Anchor{X: x, Y: y, Orientation: orientation})
		}
	}

	// R3 — new column to the left. keys is sorted descending, so the
	// last entry is the minimum.
	xMin := keys[len(keys)-1]
	newX := xMin - geo.ActualWidth() - cfg.BlockSpacing
	if newX >= cfg.SternClearance {
		out = append(out, Anchor{X: newX, Y: 0, Orientation: orientation})
	}

	return out
}
