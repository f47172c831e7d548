// Package scenario runs the greedy placer once per named deck
// configuration and reports the results side by side, so a caller can
// compare clearance or time-budget settings against the same block
// list without re-running the engine by hand.
package scenario

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dockyard-eng/voxelpack/deckcfg"
	"github.com/dockyard-eng/voxelpack/greedy"
	"github.com/dockyard-eng/voxelpack/placement"
	"github.com/dockyard-eng/voxelpack/voxel"
)

// Scenario names one deck configuration and time budget to try.
type Scenario struct {
	Name    string
	Config  deckcfg.Config
	MaxTime time.Duration
}

// Result holds the placement outcome and derived statistics for a
// single scenario run.
type Result struct {
	ID            string
	Scenario      Scenario
	Placement     greedy.Result
	PlacedCount   int
	UnplacedCount int
	UsedAreaRatio float64
}

// CompareScenarios runs the greedy placer once per scenario, each
// against its own freshly constructed PlacementArea (an area must be
// owned exclusively by a single placement run), and returns the
// results in scenario order.
func CompareScenarios(ctx context.Context, scenarios []Scenario, blocks []*voxel.Block) ([]Result, error) {
	results := make([]Result, 0, len(scenarios))

	for _, s := range scenarios {
		area, err := placement.NewArea(s.Config)
		if err != nil {
			return nil, fmt.Errorf("scenario %q: %w", s.Name, err)
		}

		placed := greedy.PlaceAll(ctx, area, blocks, s.MaxTime)

		results = append(results, Result{
			ID:            uuid.New().String()[:8],
			Scenario:      s,
			Placement:     placed,
			PlacedCount:   len(placed.Placed),
			UnplacedCount: len(placed.Unplaced),
			UsedAreaRatio: usedAreaRatio(s.Config, blocks, placed),
		})
	}

	return results, nil
}

func usedAreaRatio(cfg deckcfg.Config, blocks []*voxel.Block, result greedy.Result) float64 {
	usable := cfg.UsableWidth() * cfg.Height
	if usable <= 0 {
		return 0
	}

	byID := make(map[string]*voxel.Block, len(blocks))
	for _, b := range blocks {
		byID[b.ID()] = b
	}

	placedArea := 0
	for _, p := range result.Placed {
		if b, ok := byID[p.BlockID]; ok {
			placedArea += b.Area()
		}
	}
	return float64(placedArea) / float64(usable)
}

// BuildDefaultScenarios generates a small set of comparison scenarios
// from a base configuration, varying block spacing and time budget to
// show what-if alternatives against the same deck extent.
func BuildDefaultScenarios(base deckcfg.Config, baseMaxTime time.Duration) []Scenario {
	scenarios := []Scenario{
		{Name: "current settings", Config: base, MaxTime: baseMaxTime},
	}

	if base.BlockSpacing > 0 {
		tighter := base
		tighter.BlockSpacing = 0
		scenarios = append(scenarios, Scenario{
			Name:    "zero spacing",
			Config:  tighter,
			MaxTime: baseMaxTime,
		})
	}

	looser := base
	looser.BlockSpacing = base.BlockSpacing + 1
	scenarios = append(scenarios, Scenario{
		Name:    fmt.Sprintf("spacing %d (looser)", looser.BlockSpacing),
		Config:  looser,
		MaxTime: baseMaxTime,
	})

	if baseMaxTime > 0 {
		scenarios = append(scenarios, Scenario{
			Name:    "half time budget",
			Config:  base,
			MaxTime: baseMaxTime / 2,
		})
	}

	return scenarios
}
