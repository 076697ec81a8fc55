package cube

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gridlens/cubelens/internal/aggtree"
)

func TestResolver_SalesScenario(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Options{})

	dataset := resolver.Resolve(salesInput())

	assert.Equal(t, [NumAxes]int{1, 1, 1}, dataset.Depths)
	require.Len(t, dataset.Cells, 4)

	assert.InEpsilon(t, 270.0, dataset.GrandTotal, 1e-9)
	assert.InEpsilon(t, 40.0, dataset.MinValue, 1e-9)
	assert.InEpsilon(t, 100.0, dataset.MaxValue, 1e-9)

	assert.Equal(t, []string{"East", "West"}, dataset.Members[0])
	assert.Equal(t, []string{"2023", "2024"}, dataset.Members[1])
	assert.Equal(t, []string{"Tech"}, dataset.Members[2])

	assert.InEpsilon(t, 180.0, dataset.AxisTotals[0]["East"], 1e-9)
	assert.InEpsilon(t, 90.0, dataset.AxisTotals[0]["West"], 1e-9)

	assert.Equal(t, testMeasure, dataset.Measure)
	assert.Equal(t, [NumAxes]string{testRegionName, testYearName, testCatName}, dataset.AxisNames)

	depths, committed := resolver.Depths()

	require.True(t, committed)
	assert.Equal(t, [NumAxes]int{1, 1, 1}, depths)
}

func TestResolver_ConservesGrandTotal(t *testing.T) {
	t.Parallel()

	dataset := NewResolver(Options{}).Resolve(salesInput())

	var sum float64
	for i := range dataset.Cells {
		sum += dataset.Cells[i].Value
	}

	assert.InEpsilon(t, dataset.GrandTotal, sum, 1e-9)
}

func TestResolver_CoordinatesAreDense(t *testing.T) {
	t.Parallel()

	dataset := NewResolver(Options{TopN: 2}).Resolve(salesInput())

	for axis := 0; axis < NumAxes; axis++ {
		seen := make(map[int]bool)

		for i := range dataset.Cells {
			coord := dataset.Cells[i].Coords[axis]

			require.GreaterOrEqual(t, coord, 0)
			require.Less(t, coord, dataset.Size(axis))
			seen[coord] = true
		}

		// Every position of the reduced member list is occupied by at
		// least one cell.
		assert.Len(t, seen, dataset.Size(axis))
	}
}

func TestResolver_IsIdempotentAcrossIdenticalUpdates(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Options{})

	first := resolver.Resolve(salesInput())
	second := resolver.Resolve(salesInput())

	assert.Equal(t, first.Depths, second.Depths)
	assert.Equal(t, first.Members, second.Members)
	assert.InEpsilon(t, first.GrandTotal, second.GrandTotal, 1e-9)
	require.Len(t, second.Cells, len(first.Cells))

	for i := range first.Cells {
		assert.Equal(t, first.Cells[i].Keys, second.Cells[i].Keys)
		assert.Equal(t, first.Cells[i].Coords, second.Cells[i].Coords)
	}
}

func TestResolver_DrillDownDeepensOneAxis(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Options{})

	_ = resolver.Resolve(salesInput())

	dataset := resolver.Resolve(&aggtree.Input{
		Measure: testMeasure,
		Levels:  quarterLevels(),
		Root:    quarterTree(),
	})

	assert.Equal(t, [NumAxes]int{1, 2, 1}, dataset.Depths)
	require.Len(t, dataset.Cells, 3)

	// Composed keys join the year and quarter segments.
	assert.Contains(t, dataset.Members[1], "2023"+DefaultSeparator+"Q1")

	depths, committed := resolver.Depths()

	require.True(t, committed)
	assert.Equal(t, [NumAxes]int{1, 2, 1}, depths)
}

func TestResolver_AmbiguousGrowthKeepsStateButStillRenders(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Options{})
	resolver.RestoreDepths([NumAxes]int{1, 1, 1})

	// Axes 0 and 2 both deepen in one update. The tracker must not guess,
	// and the cells fall back to the modal depths for display.
	levels := []aggtree.Level{
		{Axis: aggtree.Axis0, Name: testRegionName},
		{Axis: aggtree.Axis0, Name: "City"},
		{Axis: aggtree.Axis2, Name: testCatName},
		{Axis: aggtree.Axis2, Name: "Subcategory"},
	}
	root := branchNode("",
		branchNode("East",
			branchNode("Boston",
				branchNode("Tech", leafNode("Software", 30)),
			),
		),
		branchNode("West",
			branchNode("Austin",
				branchNode("Retail", leafNode("Food", 20)),
			),
		),
	)

	dataset := resolver.Resolve(&aggtree.Input{Levels: levels, Root: root})

	require.False(t, dataset.Empty())
	assert.Equal(t, [NumAxes]int{2, 0, 2}, dataset.Depths)

	depths, committed := resolver.Depths()

	require.True(t, committed)
	assert.Equal(t, [NumAxes]int{1, 1, 1}, depths, "ambiguous growth must not move the state")
}

func TestResolver_FallbackRescuesUnreachableState(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Options{})
	resolver.RestoreDepths([NumAxes]int{3, 3, 3})

	dataset := resolver.Resolve(salesInput())

	require.False(t, dataset.Empty())
	assert.Equal(t, [NumAxes]int{1, 1, 1}, dataset.Depths)
	require.Len(t, dataset.Cells, 4)
}

func TestResolver_FallbackReachesMaxDepths(t *testing.T) {
	t.Parallel()

	// Modal depths are chosen per axis independently, so the modal
	// combination can match no tuple at all: axis paths of lengths
	// (1,0,0) x5, (2,1,0) x4 and (2,2,1) x5 give modal depths (2,2,0),
	// a combination no tuple has. Only the max-depth retry renders.
	levels := []aggtree.Level{
		{Axis: aggtree.Axis0, Name: testRegionName},
		{Axis: aggtree.Axis0, Name: "City"},
		{Axis: aggtree.Axis1, Name: testYearName},
		{Axis: aggtree.Axis1, Name: "Quarter"},
		{Axis: aggtree.Axis2, Name: testCatName},
	}
	root := branchNode("",
		leafNode("North", 1),
		leafNode("South", 1),
		leafNode("Central", 1),
		leafNode("Coast", 1),
		leafNode("Islands", 1),
		branchNode("East",
			branchNode("Boston",
				leafNode("2023", 10),
				leafNode("2022", 11),
				leafNode("2021", 12),
				leafNode("2020", 13),
				branchNode("2019",
					branchNode("Q1",
						leafNode("Tech", 1),
						leafNode("Retail", 2),
						leafNode("Food", 3),
						leafNode("Media", 4),
						leafNode("Energy", 5),
					),
				),
			),
		),
	)

	resolver := NewResolver(Options{})
	resolver.RestoreDepths([NumAxes]int{5, 5, 5})

	dataset := resolver.Resolve(&aggtree.Input{Levels: levels, Root: root})

	require.False(t, dataset.Empty())
	assert.Equal(t, [NumAxes]int{2, 2, 1}, dataset.Depths)
	require.Len(t, dataset.Cells, 5)
	assert.InEpsilon(t, 15.0, dataset.GrandTotal, 1e-9)

	depths, committed := resolver.Depths()

	require.True(t, committed)
	assert.Equal(t, [NumAxes]int{5, 5, 5}, depths, "a display rescue never moves the state")
}

func TestResolver_EmptyTree(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Options{})

	dataset := resolver.Resolve(&aggtree.Input{
		Measure: testMeasure,
		Levels:  salesLevels(),
		Root:    &aggtree.Node{},
	})

	assert.True(t, dataset.Empty())
	assert.Equal(t, testMeasure, dataset.Measure)

	_, committed := resolver.Depths()
	assert.False(t, committed, "an update with no data points commits nothing")
}

func TestResolver_TopNDropsCellsOutsideSelection(t *testing.T) {
	t.Parallel()

	dataset := NewResolver(Options{TopN: 1}).Resolve(salesInput())

	require.Len(t, dataset.Cells, 1)
	assert.Equal(t, [NumAxes]string{"East", "2023", "Tech"}, dataset.Cells[0].Keys)
	assert.InEpsilon(t, 100.0, dataset.GrandTotal, 1e-9)
	assert.Equal(t, []string{"East"}, dataset.Members[0])
}

func TestResolver_CompactsMembersLeftWithoutCells(t *testing.T) {
	t.Parallel()

	// Member X survives axis-1 selection on its own total but every X cell
	// is dropped by the axis-0 cut; X must not keep an empty grid column.
	levels := []aggtree.Level{
		{Axis: aggtree.Axis0, Name: "Product"},
		{Axis: aggtree.Axis1, Name: "Channel"},
	}
	root := branchNode("",
		branchNode("A", leafNode("X", 1)),
		branchNode("B", leafNode("Y", 100)),
		branchNode("C", leafNode("Y", 90)),
	)

	dataset := NewResolver(Options{TopN: 2}).Resolve(&aggtree.Input{Levels: levels, Root: root})

	assert.Equal(t, []string{"B", "C"}, dataset.Members[0])
	assert.Equal(t, []string{"Y"}, dataset.Members[1])
	require.Len(t, dataset.Cells, 2)

	for i := range dataset.Cells {
		assert.Equal(t, 0, dataset.Cells[i].Coords[1])
	}

	assert.NotContains(t, dataset.AxisTotals[1], "X")
}

func TestResolver_UnexpandedAxisComposesAllKey(t *testing.T) {
	t.Parallel()

	levels := []aggtree.Level{
		{Axis: aggtree.Axis0, Name: testRegionName},
		{Axis: aggtree.Axis1, Name: testYearName},
	}
	root := branchNode("",
		branchNode("East", leafNode("2023", 10)),
	)

	dataset := NewResolver(Options{}).Resolve(&aggtree.Input{Levels: levels, Root: root})

	require.Len(t, dataset.Cells, 1)
	assert.Equal(t, AllKey, dataset.Cells[0].Keys[2])
	assert.Equal(t, []string{AllKey}, dataset.Members[2])
}

func TestResolver_CustomSeparator(t *testing.T) {
	t.Parallel()

	resolver := NewResolver(Options{Separator: " / "})

	_ = resolver.Resolve(salesInput())

	dataset := resolver.Resolve(&aggtree.Input{
		Measure: testMeasure,
		Levels:  quarterLevels(),
		Root:    quarterTree(),
	})

	assert.Contains(t, dataset.Members[1], "2023 / Q1")
}

func TestResolver_AxisNamesFallBackToPositionalLabels(t *testing.T) {
	t.Parallel()

	levels := []aggtree.Level{{Axis: aggtree.Axis0}}
	root := branchNode("", leafNode("East", 1))

	dataset := NewResolver(Options{}).Resolve(&aggtree.Input{Levels: levels, Root: root})

	assert.Equal(t, [NumAxes]string{"axis0", "axis1", "axis2"}, dataset.AxisNames)
}

func TestDataset_SnapshotStripsNodeReferences(t *testing.T) {
	t.Parallel()

	dataset := NewResolver(Options{}).Resolve(salesInput())

	require.NotNil(t, dataset.Cells[0].Source)

	snap := dataset.Snapshot()

	for i := range snap.Cells {
		assert.Nil(t, snap.Cells[i].Source)

		for axis := 0; axis < NumAxes; axis++ {
			assert.Empty(t, snap.Cells[i].AxisNodes[axis])
		}
	}

	// The original keeps its references.
	assert.NotNil(t, dataset.Cells[0].Source)
	assert.InEpsilon(t, dataset.GrandTotal, snap.GrandTotal, 1e-9)
}
