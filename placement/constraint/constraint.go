// Package constraint implements the block-type-specific placement rules
// (crane bow-ring clearance, trestle horizontal access corridor) and the
// chessboard perimeter-spacing formula, as pure functions over primitive
// geometry. It has no knowledge of the placement grid's representation,
// so placement can depend on it without a cycle.
package constraint

// CraneRingClear reports whether a crane-typed block placed so its
// rightmost (bow-facing) footprint column is at absolute x = farX keeps
// at least ringBowClearance cells between it and the bow, where the
// usable bow coordinate is deckWidth+bowClearance (the clearance band
// counts as part of the bow side for this check).
func CraneRingClear(farX, deckWidth, bowClearance, ringBowClearance int) bool {
	totalX := deckWidth + bowClearance
	return totalX-farX-1 >= ringBowClearance
}

// TrestleCorridorClear reports whether every cell in
// [0, ax) x [ay, ay+actualHeight) is empty, per isEmpty. This is the
// horizontal access corridor a trestle block requires from the stern
// side (x=0).
func TrestleCorridorClear(ax, ay, actualHeight int, isEmpty func(x, y int) bool) bool {
	for y := ay; y < ay+actualHeight; y++ {
		for x := 0; x < ax; x++ {
			if !isEmpty(x, y) {
				return false
			}
		}
	}
	return true
}

// Point is an absolute-coordinate cell, used only for the spacing check
// below (kept distinct from voxel.Cell, which is footprint-relative).
type Point struct {
	X, Y int
}

// ChessboardDistance computes d(p,q) = max(|dx|,|dy|) - 1 for
// non-coincident points, and 0 for coincident ones: axis-aligned
// adjacency is distance 0, one empty cell between is distance 1.
func ChessboardDistance(p, q Point) int {
	if p == q {
		return 0
	}
	dx := p.X - q.X
	if dx < 0 {
		dx = -dx
	}
	dy := p.Y - q.Y
	if dy < 0 {
		dy = -dy
	}
	m := dx
	if dy > m {
		m = dy
	}
	return m - 1
}

// SpacingOK reports whether every pair of points drawn one from each of
// perimeterA and perimeterB has chessboard distance >= delta.
func SpacingOK(perimeterA, perimeterB []Point, delta int) bool {
	for _, p := range perimeterA {
		for _, q := range perimeterB {
			if ChessboardDistance(p, q) < delta {
				return false
			}
		}
	}
	return true
}
