// Package greedy orchestrates the two-phase placement loop: a primary
// descending-area pass over all blocks, then a retry ascending-area
// pass over whatever didn't fit, against a wall-clock budget observed
// at per-block and per-candidate granularity.
package greedy

import (
	"context"
	"sort"
	"time"

	"github.com/dockyard-eng/voxelpack/candidate"
	"github.com/dockyard-eng/voxelpack/compact"
	"github.com/dockyard-eng/voxelpack/placement"
	"github.com/dockyard-eng/voxelpack/voxel"
)

// phase1Cap is the candidate cap for the primary pass; the retry pass
// uses min(50, 10*placed+30), computed in phase2Cap.
const phase1Cap = 25

// Placement is one committed outcome, in commit order.
type Placement struct {
	BlockID     string
	AnchorX     int
	AnchorY     int
	Orientation placement.Orientation
}

// Result is PlaceAll's return value: the final placement/unplaced split
// plus the metrics a caller needs to judge the outcome.
type Result struct {
	Placed             []Placement
	Unplaced           []string
	TimeBudgetExceeded bool
	Elapsed            time.Duration
	Phase1Placed       int
	Phase2Placed       int
}

// deadlineChecker mirrors the cheap periodic cancellation check used for
// long-running scans: cooperative cancellation is only observed at coarse
// granularity (per block, per candidate), never inside inner loops.
type deadlineChecker struct {
	ctx      context.Context
	deadline time.Time
	hasDL    bool
}

func newDeadlineChecker(ctx context.Context, maxTime time.Duration) *deadlineChecker {
	if ctx == nil {
		ctx = context.Background()
	}
	dc := &deadlineChecker{ctx: ctx}
	if maxTime > 0 {
		dc.deadline = time.Now().Add(maxTime)
		dc.hasDL = true
	}
	return dc
}

func (dc *deadlineChecker) exceeded() bool {
	select {
	case <-dc.ctx.Done():
		return true
	default:
	}
	return dc.hasDL && time.Now().After(dc.deadline)
}

// PlaceAll runs the two-phase greedy loop against area, attempting to
// place every block in blocks, and returns the outcome. area must be
// freshly constructed or otherwise owned exclusively by this call for
// its duration; concurrent callers must each clone the area first.
func PlaceAll(ctx context.Context, area *placement.Area, blocks []*voxel.Block, maxTime time.Duration) Result {
	start := time.Now()
	dc := newDeadlineChecker(ctx, maxTime)

	phase1 := sortedByArea(blocks, false)
	var result Result

	unplaced1 := runPhase(area, phase1, phase1Cap, dc, &result)
	result.Phase1Placed = len(result.Placed)

	if len(unplaced1) > 0 && !result.TimeBudgetExceeded {
		phase2 := sortedByArea(unplaced1, true)
		cap2 := phase2Cap(len(result.Placed))
		unplaced2 := runPhase(area, phase2, cap2, dc, &result)
		result.Unplaced = idsOf(unplaced2)
	} else {
		result.Unplaced = idsOf(unplaced1)
	}
	result.Phase2Placed = len(result.Placed) - result.Phase1Placed

	result.Elapsed = time.Since(start)
	return result
}

func phase2Cap(placedSoFar int) int {
	n := 10*placedSoFar + 30
	if n > 50 {
		n = 50
	}
	return n
}

// runPhase attempts to place every block in order, appending to
// result.Placed on success. It returns the blocks that could not be
// placed (either genuinely infeasible, or skipped once the time budget
// is exceeded).
func runPhase(area *placement.Area, blocks []*voxel.Block, maxCandidates int, dc *deadlineChecker, result *Result) []*voxel.Block {
	var unplaced []*voxel.Block
	for i, b := range blocks {
		if dc.exceeded() {
			result.TimeBudgetExceeded = true
			unplaced = append(unplaced, blocks[i:]...)
			break
		}

		anchors := candidate.Generate(area, b, maxCandidates)
		placedHere := false
		for _, anc := range anchors {
			if dc.exceeded() {
				result.TimeBudgetExceeded = true
				break
			}
			if !area.CanPlace(b, anc.X, anc.Y, anc.Orientation) {
				continue
			}
			area.Place(b, anc.X, anc.Y, anc.Orientation)
			compact.Compact(area, b.ID())

			p, _ := area.Get(b.ID())
			result.Placed = append(result.Placed, Placement{
				BlockID:     b.ID(),
				AnchorX:     p.AnchorX,
				AnchorY:     p.AnchorY,
				Orientation: p.Orientation,
			})
			placedHere = true
			break
		}
		if !placedHere {
			unplaced = append(unplaced, b)
		}
		if result.TimeBudgetExceeded {
			unplaced = append(unplaced, blocks[i+1:]...)
			break
		}
	}
	return unplaced
}

// sortedByArea returns a stable-sorted copy of blocks, by footprint
// area, tie-broken by id. ascending controls sort direction; the
// primary pass sorts descending, the retry pass ascending.
func sortedByArea(blocks []*voxel.Block, ascending bool) []*voxel.Block {
	out := make([]*voxel.Block, len(blocks))
	copy(out, blocks)
	sort.SliceStable(out, func(i, j int) bool {
		ai, aj := out[i].Area(), out[j].Area()
		if ai == aj {
			return out[i].ID() < out[j].ID()
		}
		if ascending {
			return ai < aj
		}
		return ai > aj
	})
	return out
}

func idsOf(blocks []*voxel.Block) []string {
	ids := make([]string, len(blocks))
	for i, b := range blocks {
		ids[i] = b.ID()
	}
	return ids
}
