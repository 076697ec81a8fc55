// Package cubefmt renders resolved cube datasets for the terminal.
package cubefmt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/gridlens/cubelens/internal/cube"
)

// totalDigits is the decimal precision for humanized measure totals.
const totalDigits = 2

// maxTableRows caps the cell table; a reduced cube is at most 50^3 cells
// and nobody reads that many rows.
const maxTableRows = 200

// Summary returns a short colored overview of a resolved dataset:
// grid dimensions, cell count, value bounds, grand total, and which axis
// changed depth since the previous update (if any).
func Summary(dataset *cube.Dataset, prevDepths *[cube.NumAxes]int) string {
	var lines []string

	if dataset.Empty() {
		lines = append(lines, color.New(color.FgYellow).Sprint("no cells resolved (empty dataset)"))

		return strings.Join(lines, "\n")
	}

	lines = append(lines, fmt.Sprintf("grid: %d x %d x %d (%s cells)",
		dataset.Size(0), dataset.Size(1), dataset.Size(2),
		humanize.Comma(int64(len(dataset.Cells)))))

	lines = append(lines, fmt.Sprintf("depths: %d/%d/%d%s",
		dataset.Depths[0], dataset.Depths[1], dataset.Depths[2],
		drillNote(dataset, prevDepths)))

	lines = append(lines, fmt.Sprintf("values: min %s, max %s, total %s",
		humanize.CommafWithDigits(dataset.MinValue, totalDigits),
		humanize.CommafWithDigits(dataset.MaxValue, totalDigits),
		color.New(color.FgGreen).Sprint(humanize.CommafWithDigits(dataset.GrandTotal, totalDigits))))

	if dataset.Measure != "" {
		lines = append(lines, "measure: "+dataset.Measure)
	}

	return strings.Join(lines, "\n")
}

// drillNote names the axis whose depth changed since the previous update.
// The displayed depths come from the fallback chain and may differ from the
// previous state on several axes at once; that is a shape change, not a
// drill, and gets no axis attribution.
func drillNote(dataset *cube.Dataset, prevDepths *[cube.NumAxes]int) string {
	if prevDepths == nil {
		return ""
	}

	changedAxis := -1
	changedCount := 0

	for axis := range dataset.Depths {
		if dataset.Depths[axis] != prevDepths[axis] {
			changedCount++
			changedAxis = axis
		}
	}

	switch {
	case changedCount == 0:
		return ""
	case changedCount > 1:
		return color.New(color.FgCyan).Sprint(" (grid shape changed)")
	case dataset.Depths[changedAxis] > prevDepths[changedAxis]:
		return color.New(color.FgCyan).Sprintf(" (drilled down on %s)", dataset.AxisNames[changedAxis])
	default:
		return color.New(color.FgCyan).Sprintf(" (rolled up on %s)", dataset.AxisNames[changedAxis])
	}
}

// CellsTable renders the resolved cells as a go-pretty table ordered by
// grid coordinates.
func CellsTable(dataset *cube.Dataset) string {
	if dataset.Empty() {
		return ""
	}

	cells := make([]cube.Cell, len(dataset.Cells))
	copy(cells, dataset.Cells)

	sort.Slice(cells, func(i, j int) bool {
		for axis := range cells[i].Coords {
			if cells[i].Coords[axis] != cells[j].Coords[axis] {
				return cells[i].Coords[axis] < cells[j].Coords[axis]
			}
		}

		return false
	})

	if len(cells) > maxTableRows {
		cells = cells[:maxTableRows]
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{
		dataset.AxisNames[0], dataset.AxisNames[1], dataset.AxisNames[2], measureHeader(dataset),
	})

	for i := range cells {
		tbl.AppendRow(table.Row{
			cells[i].Keys[0],
			cells[i].Keys[1],
			cells[i].Keys[2],
			humanize.CommafWithDigits(cells[i].Value, totalDigits),
		})
	}

	tbl.AppendFooter(table.Row{"", "", "Total",
		humanize.CommafWithDigits(dataset.GrandTotal, totalDigits)})

	return tbl.Render()
}

// TotalsTable renders one axis's per-member totals in member order.
func TotalsTable(dataset *cube.Dataset, axis int) string {
	if axis < 0 || axis >= cube.NumAxes || dataset.Size(axis) == 0 {
		return ""
	}

	tbl := newTable()
	tbl.AppendHeader(table.Row{dataset.AxisNames[axis], measureHeader(dataset)})

	for _, member := range dataset.Members[axis] {
		tbl.AppendRow(table.Row{
			member,
			humanize.CommafWithDigits(dataset.AxisTotals[axis][member], totalDigits),
		})
	}

	return tbl.Render()
}

func newTable() table.Writer {
	tbl := table.NewWriter()
	tbl.SetStyle(table.StyleLight)
	tbl.Style().Options.SeparateRows = false
	tbl.Style().Options.SeparateColumns = true

	return tbl
}

func measureHeader(dataset *cube.Dataset) string {
	if dataset.Measure != "" {
		return dataset.Measure
	}

	return "Value"
}
