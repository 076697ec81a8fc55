package cube

import (
	"github.com/gridlens/cubelens/internal/aggtree"
)

// AllKey is the composed display key of a zero-length axis path: the axis
// is not expanded at all and contributes a single aggregate position.
const AllKey = "All"

// DefaultSeparator joins path segments of a composed member key.
const DefaultSeparator = "→"

// Cell is one materialized grid unit. Coordinates are dense and contiguous
// per axis, derived purely from each axis's ordered member list index.
type Cell struct {
	Coords [NumAxes]int    `json:"coords" yaml:"coords"`
	Keys   [NumAxes]string `json:"keys"   yaml:"keys"`
	Value  float64         `json:"value"  yaml:"value"`

	// AxisNodes holds the originating tree nodes per axis and Source the
	// measure-carrying node, for host selection identities. They never
	// serialize; the rendering contract is the scalar fields above.
	AxisNodes [NumAxes][]*aggtree.Node `json:"-" yaml:"-"`
	Source    *aggtree.Node            `json:"-" yaml:"-"`
}

// Dataset is the resolver output consumed verbatim by the rendering layer
// for geometry instancing, coloring, and tooltip text. A fresh instance is
// produced on every update; only the tracker's depth state survives.
type Dataset struct {
	Measure    string                      `json:"measure,omitempty" yaml:"measure,omitempty"`
	AxisNames  [NumAxes]string             `json:"axis_names"        yaml:"axis_names"`
	Depths     [NumAxes]int                `json:"depths"            yaml:"depths"`
	Members    [NumAxes][]string           `json:"members"           yaml:"members"`
	Cells      []Cell                      `json:"cells"             yaml:"cells"`
	MinValue   float64                     `json:"min_value"         yaml:"min_value"`
	MaxValue   float64                     `json:"max_value"         yaml:"max_value"`
	AxisTotals [NumAxes]map[string]float64 `json:"axis_totals"       yaml:"axis_totals"`
	GrandTotal float64                     `json:"grand_total"       yaml:"grand_total"`
}

// Empty reports whether the dataset materialized no cells. The rendering
// layer draws nothing for an empty dataset; it is not an error.
func (d *Dataset) Empty() bool {
	return len(d.Cells) == 0
}

// Size returns the reduced member count for the given axis.
func (d *Dataset) Size(axis int) int {
	return len(d.Members[axis])
}

// Snapshot returns a copy of the dataset with the tree-node references
// stripped. Node references alias the host's mutable tree and must never
// outlive the update that produced them; only snapshots are persisted.
func (d *Dataset) Snapshot() *Dataset {
	snap := *d
	snap.Cells = make([]Cell, len(d.Cells))

	for i := range d.Cells {
		cell := d.Cells[i]
		cell.AxisNodes = [NumAxes][]*aggtree.Node{}
		cell.Source = nil
		snap.Cells[i] = cell
	}

	return &snap
}
