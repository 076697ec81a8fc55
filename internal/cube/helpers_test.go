package cube

import (
	"github.com/gridlens/cubelens/internal/aggtree"
)

// Test measure and level names shared across the package tests.
const (
	testMeasure    = "Sales"
	testRegionName = "Region"
	testYearName   = "Year"
	testCatName    = "Category"
)

func leafNode(value string, measure float64) *aggtree.Node {
	return &aggtree.Node{
		Value:  value,
		Values: aggtree.MeasureSet{{Value: measure}},
	}
}

func branchNode(value string, children ...*aggtree.Node) *aggtree.Node {
	return &aggtree.Node{Value: value, Children: children}
}

func measuredBranch(value string, measure float64, children ...*aggtree.Node) *aggtree.Node {
	return &aggtree.Node{
		Value:    value,
		Values:   aggtree.MeasureSet{{Value: measure}},
		Children: children,
	}
}

// salesLevels maps depth 0 to axis 0 (Region), depth 1 to axis 1 (Year) and
// depth 2 to axis 2 (Category).
func salesLevels() []aggtree.Level {
	return []aggtree.Level{
		{Axis: aggtree.Axis0, Name: testRegionName},
		{Axis: aggtree.Axis1, Name: testYearName},
		{Axis: aggtree.Axis2, Name: testCatName},
	}
}

// salesTree builds the two-region, two-year, one-category tree whose four
// data points total 270.
func salesTree() *aggtree.Node {
	return branchNode("",
		branchNode("East",
			branchNode("2023", leafNode("Tech", 100)),
			branchNode("2024", leafNode("Tech", 80)),
		),
		branchNode("West",
			branchNode("2023", leafNode("Tech", 50)),
			branchNode("2024", leafNode("Tech", 40)),
		),
	)
}

func salesInput() *aggtree.Input {
	return &aggtree.Input{
		Measure: testMeasure,
		Levels:  salesLevels(),
		Root:    salesTree(),
	}
}

// quarterLevels adds a second axis-1 level below Year.
func quarterLevels() []aggtree.Level {
	return []aggtree.Level{
		{Axis: aggtree.Axis0, Name: testRegionName},
		{Axis: aggtree.Axis1, Name: testYearName},
		{Axis: aggtree.Axis1, Name: "Quarter"},
		{Axis: aggtree.Axis2, Name: testCatName},
	}
}

// quarterTree is the sales tree after a drill-down on the year axis: every
// data point now sits one level deeper on axis 1.
func quarterTree() *aggtree.Node {
	return branchNode("",
		branchNode("East",
			branchNode("2023",
				branchNode("Q1", leafNode("Tech", 60)),
				branchNode("Q2", leafNode("Tech", 40)),
			),
		),
		branchNode("West",
			branchNode("2023",
				branchNode("Q1", leafNode("Tech", 50)),
			),
		),
	)
}
