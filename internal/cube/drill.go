package cube

import (
	"github.com/gridlens/cubelens/internal/aggtree"
)

// AxisObservation summarizes the depths observed for one axis in a single
// update: how many tree levels the descriptor assigns to the axis, the
// maximum path length seen among the update's tuples, and the most frequent
// path length (ties broken toward the larger depth).
type AxisObservation struct {
	LevelCount int
	MaxDepth   int
	ModalDepth int
}

// DrillTracker infers which single axis the user drilled on, using only
// before/after depth deltas. The host delivers the resulting tree shape but
// no drill event, and one update may span a drill-down, a roll-up, or an
// unrelated filter change; the transition rules prefer leaving untouched
// axes alone over perfectly classifying every update.
//
// One tracker belongs to exactly one visualization instance. It is never a
// shared singleton; a host showing two cubes owns two trackers.
type DrillTracker struct {
	depths      [NumAxes]int
	initialized bool
}

// NewDrillTracker creates a tracker with no prior state.
func NewDrillTracker() *DrillTracker {
	return &DrillTracker{}
}

// RestoreDrillTracker creates a tracker seeded with previously persisted
// per-axis depths.
func RestoreDrillTracker(depths [NumAxes]int) *DrillTracker {
	return &DrillTracker{depths: depths, initialized: true}
}

// Depths returns the committed per-axis depths and whether any resolution
// has been committed yet.
func (t *DrillTracker) Depths() ([NumAxes]int, bool) {
	return t.depths, t.initialized
}

// ResolveDepths computes the active per-axis depths for this update. It is
// a pure function of the prior state and the observations; the result is
// not persisted until Commit is called after a successful resolution.
func (t *DrillTracker) ResolveDepths(obs [NumAxes]AxisObservation) [NumAxes]int {
	if !t.initialized {
		return resolveFirst(obs)
	}

	return t.resolveNext(obs)
}

// Commit persists the depths of a completed resolution as the new state.
func (t *DrillTracker) Commit(depths [NumAxes]int) {
	t.depths = depths
	t.initialized = true
}

// resolveFirst handles the first resolution: the axis with the largest
// positive lift of max over modal depth is taken as mid-drill and pinned to
// its max; every other axis takes its modal depth.
func resolveFirst(obs [NumAxes]AxisObservation) [NumAxes]int {
	liftAxis := -1
	bestLift := 0

	for i := range obs {
		lift := obs[i].MaxDepth - obs[i].ModalDepth
		if lift > bestLift {
			bestLift = lift
			liftAxis = i
		}
	}

	var depths [NumAxes]int

	for i := range obs {
		if i == liftAxis {
			depths[i] = obs[i].MaxDepth
		} else {
			depths[i] = obs[i].ModalDepth
		}
	}

	return depths
}

func (t *DrillTracker) resolveNext(obs [NumAxes]AxisObservation) [NumAxes]int {
	grownAxis := -1
	grownCount := 0

	for i := range obs {
		if obs[i].MaxDepth-t.depths[i] > 0 {
			grownCount++
			grownAxis = i
		}
	}

	switch {
	case grownCount == 1:
		// Drill-down on exactly one axis: pin it to its observed max and
		// leave the other two untouched.
		depths := t.depths
		depths[grownAxis] = obs[grownAxis].MaxDepth

		return depths

	case grownCount == 0:
		return t.resolveShrink(obs)

	default:
		// Simultaneous growth on several axes is ambiguous; never guess
		// across multiple axis changes.
		return t.depths
	}
}

// resolveShrink handles updates where no axis grew. A single axis sitting
// above its modal depth signals a roll-up, which snaps every axis to its
// modal depth; anything else is treated as noise and the previous depths
// are kept.
func (t *DrillTracker) resolveShrink(obs [NumAxes]AxisObservation) [NumAxes]int {
	shrunkCount := 0

	for i := range obs {
		if t.depths[i]-obs[i].ModalDepth > 0 {
			shrunkCount++
		}
	}

	if shrunkCount == 1 {
		var depths [NumAxes]int
		for i := range obs {
			depths[i] = obs[i].ModalDepth
		}

		return depths
	}

	return t.depths
}

// ObserveAxes builds the per-axis depth observations for one update from the
// traversal's tuple list and the level descriptors.
func ObserveAxes(tuples []PathTuple, levels []aggtree.Level) [NumAxes]AxisObservation {
	var obs [NumAxes]AxisObservation

	for _, lvl := range levels {
		if lvl.Axis.Assigned() {
			obs[lvl.Axis].LevelCount++
		}
	}

	var histograms [NumAxes]map[int]int

	for i := range histograms {
		histograms[i] = make(map[int]int)
	}

	for i := range tuples {
		for axis := 0; axis < NumAxes; axis++ {
			depth := tuples[i].Depth(axis)
			histograms[axis][depth]++

			if depth > obs[axis].MaxDepth {
				obs[axis].MaxDepth = depth
			}
		}
	}

	for axis := 0; axis < NumAxes; axis++ {
		obs[axis].ModalDepth = modalDepth(histograms[axis])
	}

	return obs
}

// modalDepth returns the most frequent depth, breaking count ties toward
// the larger depth.
func modalDepth(histogram map[int]int) int {
	best := 0
	bestCount := 0

	for depth, count := range histogram {
		if count > bestCount || (count == bestCount && depth > best) {
			best = depth
			bestCount = count
		}
	}

	return best
}
