package cube

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/gridlens/cubelens/internal/aggtree"
)

// Options configures one Resolver instance.
type Options struct {
	// Separator joins path segments into composed member keys.
	// Empty means DefaultSeparator.
	Separator string
	// TopN is the per-axis member limit, clamped to [MinTopN, MaxTopN].
	TopN int
	// SortMode ranks members for Top-N selection; unknown values fall back
	// to SortByTotals.
	SortMode SortMode
	// Logger receives resolution diagnostics. Nil means slog.Default().
	Logger *slog.Logger
}

// Resolver turns one host update into a dense Dataset. It owns the drill
// tracker for its visualization instance and is the only writer of that
// state. Every update is a complete synchronous recomputation; nothing is
// committed when an update materializes no cells.
type Resolver struct {
	separator string
	reducer   *TopNReducer
	tracker   *DrillTracker
	logger    *slog.Logger
}

// NewResolver creates a resolver with a fresh drill tracker.
func NewResolver(opts Options) *Resolver {
	separator := opts.Separator
	if separator == "" {
		separator = DefaultSeparator
	}

	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Resolver{
		separator: separator,
		reducer:   NewTopNReducer(opts.TopN, opts.SortMode),
		tracker:   NewDrillTracker(),
		logger:    logger,
	}
}

// RestoreDepths seeds the drill tracker with depths persisted from a
// previous update cycle of the same visualization instance.
func (r *Resolver) RestoreDepths(depths [NumAxes]int) {
	r.tracker = RestoreDrillTracker(depths)
}

// Depths returns the committed per-axis depths and whether any update has
// completed yet.
func (r *Resolver) Depths() ([NumAxes]int, bool) {
	return r.tracker.Depths()
}

// Resolve runs the full pipeline for one update: traversal, depth
// resolution, cell materialization with the zero-cell fallback chain, and
// Top-N reduction. Data-shape irregularities degrade; they never fail.
func (r *Resolver) Resolve(in *aggtree.Input) *Dataset {
	tuples := Traverse(in.Root, in.Levels)
	if len(tuples) == 0 {
		r.logger.Debug("no data points in aggregation tree")

		return &Dataset{Measure: in.Measure, AxisNames: axisNames(in.Levels)}
	}

	obs := ObserveAxes(tuples, in.Levels)
	resolved := r.tracker.ResolveDepths(obs)

	effective, cells, axisTotals := r.materializeWithFallback(tuples, obs, resolved)

	dataset := r.reduce(cells, axisTotals)
	dataset.Measure = in.Measure
	dataset.AxisNames = axisNames(in.Levels)
	dataset.Depths = effective

	// The rule-resolved depths become the new state even when rendering
	// fell back to a different combination: fallback is a display rescue,
	// not a drill signal.
	r.tracker.Commit(resolved)

	return dataset
}

// materializeWithFallback materializes cells at the resolved depths, then
// retries at the modal and max depth combinations. Any tree with at least
// one data point always materializes under one of the three.
func (r *Resolver) materializeWithFallback(
	tuples []PathTuple,
	obs [NumAxes]AxisObservation,
	resolved [NumAxes]int,
) ([NumAxes]int, []Cell, [NumAxes]map[string]float64) {
	cells, axisTotals := r.materialize(tuples, resolved)
	if len(cells) > 0 {
		return resolved, cells, axisTotals
	}

	var modal, maxed [NumAxes]int

	for axis := range obs {
		modal[axis] = obs[axis].ModalDepth
		maxed[axis] = obs[axis].MaxDepth
	}

	r.logger.Debug("resolved depths materialized no cells, retrying at modal depths",
		"resolved", resolved, "modal", modal)

	cells, axisTotals = r.materialize(tuples, modal)
	if len(cells) > 0 {
		return modal, cells, axisTotals
	}

	cells, axisTotals = r.materialize(tuples, maxed)

	return maxed, cells, axisTotals
}

// materialize filters tuples to those whose per-axis path length exactly
// matches the active depth on every axis, composes their display keys, and
// accumulates per-axis member totals in the same pass.
func (r *Resolver) materialize(
	tuples []PathTuple,
	depths [NumAxes]int,
) ([]Cell, [NumAxes]map[string]float64) {
	var axisTotals [NumAxes]map[string]float64

	for axis := range axisTotals {
		axisTotals[axis] = make(map[string]float64)
	}

	var cells []Cell

	for i := range tuples {
		tuple := &tuples[i]

		if !matchesDepths(tuple, depths) {
			continue
		}

		cell := Cell{
			Value:     tuple.Value,
			AxisNodes: tuple.Nodes,
			Source:    tuple.Source,
		}

		for axis := range depths {
			key := r.composeKey(tuple.Paths[axis])
			cell.Keys[axis] = key
			axisTotals[axis][key] += tuple.Value
		}

		cells = append(cells, cell)
	}

	return cells, axisTotals
}

func matchesDepths(tuple *PathTuple, depths [NumAxes]int) bool {
	for axis := range depths {
		if tuple.Depth(axis) != depths[axis] {
			return false
		}
	}

	return true
}

// axisNames derives display names per axis by joining the names of the
// levels assigned to it. Axes with no named levels fall back to a generic
// positional label.
func axisNames(levels []aggtree.Level) [NumAxes]string {
	var names [NumAxes][]string

	for _, lvl := range levels {
		if lvl.Axis.Assigned() && lvl.Name != "" {
			names[lvl.Axis] = append(names[lvl.Axis], lvl.Name)
		}
	}

	var result [NumAxes]string

	for axis := range names {
		if len(names[axis]) == 0 {
			result[axis] = fmt.Sprintf("axis%d", axis)

			continue
		}

		result[axis] = strings.Join(names[axis], " / ")
	}

	return result
}

// composeKey joins path segments with the configured separator. A
// zero-length path composes to the aggregate AllKey.
func (r *Resolver) composeKey(path []string) string {
	if len(path) == 0 {
		return AllKey
	}

	return strings.Join(path, r.separator)
}

// reduce applies per-axis Top-N selection, drops cells outside any axis's
// selected set, and assigns dense grid coordinates from each axis's reduced
// ordered member list.
func (r *Resolver) reduce(cells []Cell, axisTotals [NumAxes]map[string]float64) *Dataset {
	dataset := &Dataset{}

	var indices [NumAxes]map[string]int

	for axis := range axisTotals {
		members := r.reducer.Select(axisTotals[axis])
		dataset.Members[axis] = members

		indices[axis] = make(map[string]int, len(members))
		for pos, member := range members {
			indices[axis][member] = pos
		}

		dataset.AxisTotals[axis] = make(map[string]float64, len(members))
		for _, member := range members {
			dataset.AxisTotals[axis][member] = axisTotals[axis][member]
		}
	}

	for i := range cells {
		cell := cells[i]

		included := true

		for axis := range indices {
			pos, ok := indices[axis][cell.Keys[axis]]
			if !ok {
				included = false

				break
			}

			cell.Coords[axis] = pos
		}

		if !included {
			continue
		}

		if len(dataset.Cells) == 0 {
			dataset.MinValue = cell.Value
			dataset.MaxValue = cell.Value
		} else {
			if cell.Value < dataset.MinValue {
				dataset.MinValue = cell.Value
			}

			if cell.Value > dataset.MaxValue {
				dataset.MaxValue = cell.Value
			}
		}

		dataset.GrandTotal += cell.Value
		dataset.Cells = append(dataset.Cells, cell)
	}

	dataset.compactMembers()

	return dataset
}

// compactMembers drops members whose every cell was filtered away by the
// reduction on another axis, then reindexes the surviving cells so the
// coordinate ranges stay gapless.
func (d *Dataset) compactMembers() {
	var used [NumAxes]map[string]bool

	for axis := range used {
		used[axis] = make(map[string]bool)
	}

	for i := range d.Cells {
		for axis := range used {
			used[axis][d.Cells[i].Keys[axis]] = true
		}
	}

	var indices [NumAxes]map[string]int

	for axis := range used {
		kept := make([]string, 0, len(d.Members[axis]))
		indices[axis] = make(map[string]int)

		for _, member := range d.Members[axis] {
			if used[axis][member] {
				indices[axis][member] = len(kept)
				kept = append(kept, member)
			} else {
				delete(d.AxisTotals[axis], member)
			}
		}

		d.Members[axis] = kept
	}

	for i := range d.Cells {
		for axis := range indices {
			d.Cells[i].Coords[axis] = indices[axis][d.Cells[i].Keys[axis]]
		}
	}
}
