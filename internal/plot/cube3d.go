// Package plot renders a resolved cube dataset as go-echarts charts: one
// 3-D bar layer per axis-2 member plus per-axis totals bars. It consumes
// the dataset verbatim and never re-derives drill state.
package plot

import (
	"fmt"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/gridlens/cubelens/internal/cube"
)

// Chart dimensions.
const (
	cubeChartWidth   = "900px"
	cubeChartHeight  = "600px"
	totalChartWidth  = "900px"
	totalChartHeight = "400px"
)

// Grid3D box proportions.
const (
	grid3DBoxWidth = 160
	grid3DBoxDepth = 160
)

// heatColors is the low-to-high color ramp for the value visual map.
var heatColors = []string{"#50a3ba", "#eac736", "#d94e5d"}

// BuildCharts produces the chart set for one dataset: a Bar3D layer per
// axis-2 member followed by one totals bar chart per axis. An empty dataset
// yields no charts.
func BuildCharts(dataset *cube.Dataset, theme string) []components.Charter {
	if dataset.Empty() {
		return nil
	}

	charters := make([]components.Charter, 0, dataset.Size(2)+cube.NumAxes)

	for layer, member := range dataset.Members[2] {
		charters = append(charters, buildLayerChart(dataset, layer, member, theme))
	}

	for axis := 0; axis < cube.NumAxes; axis++ {
		totals := buildTotalsChart(dataset, axis, theme)
		if totals != nil {
			charters = append(charters, totals)
		}
	}

	return charters
}

// buildLayerChart renders one axis-2 slice of the cube as a 3-D bar grid:
// axis 0 and axis 1 span the floor, the measure is the bar height.
func buildLayerChart(dataset *cube.Dataset, layer int, member, theme string) *charts.Bar3D {
	bar3d := charts.NewBar3D()
	bar3d.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  cubeChartWidth,
			Height: cubeChartHeight,
			Theme:  theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    fmt.Sprintf("%s: %s", dataset.AxisNames[2], member),
			Subtitle: measureLabel(dataset),
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(dataset.MinValue),
			Max:        float32(dataset.MaxValue),
			InRange:    &opts.VisualMapInRange{Color: heatColors},
		}),
		charts.WithXAxis3DOpts(opts.XAxis3D{
			Name: dataset.AxisNames[0],
			Type: "category",
			Data: dataset.Members[0],
		}),
		charts.WithYAxis3DOpts(opts.YAxis3D{
			Name: dataset.AxisNames[1],
			Type: "category",
			Data: dataset.Members[1],
		}),
		charts.WithZAxis3DOpts(opts.ZAxis3D{
			Name: measureLabel(dataset),
			Type: "value",
		}),
		charts.WithGrid3DOpts(opts.Grid3D{
			BoxWidth: grid3DBoxWidth,
			BoxDepth: grid3DBoxDepth,
		}),
	)

	data := make([]opts.Chart3DData, 0, len(dataset.Cells))

	for i := range dataset.Cells {
		cell := &dataset.Cells[i]
		if cell.Coords[2] != layer {
			continue
		}

		data = append(data, opts.Chart3DData{
			Name:  cell.Keys[0] + " / " + cell.Keys[1],
			Value: []any{cell.Coords[0], cell.Coords[1], cell.Value},
		})
	}

	bar3d.AddSeries(measureLabel(dataset), data)

	return bar3d
}

// buildTotalsChart renders one axis's per-member totals as a bar chart in
// member order.
func buildTotalsChart(dataset *cube.Dataset, axis int, theme string) *charts.Bar {
	if dataset.Size(axis) == 0 {
		return nil
	}

	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  totalChartWidth,
			Height: totalChartHeight,
			Theme:  theme,
		}),
		charts.WithTitleOpts(opts.Title{
			Title: fmt.Sprintf("Totals by %s", dataset.AxisNames[axis]),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
	)

	data := make([]opts.BarData, 0, dataset.Size(axis))
	for _, member := range dataset.Members[axis] {
		data = append(data, opts.BarData{Value: dataset.AxisTotals[axis][member]})
	}

	bar.SetXAxis(dataset.Members[axis])
	bar.AddSeries(measureLabel(dataset), data)

	return bar
}

func measureLabel(dataset *cube.Dataset) string {
	if dataset.Measure != "" {
		return dataset.Measure
	}

	return "Value"
}
