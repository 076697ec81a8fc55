package plot

import (
	"fmt"
	"io"

	"github.com/go-echarts/go-echarts/v2/components"

	"github.com/gridlens/cubelens/internal/cube"
)

// WritePage assembles the dataset's charts into a single HTML page. An
// empty dataset produces a page with no charts; drawing nothing is the
// correct rendering of an empty cube.
func WritePage(w io.Writer, dataset *cube.Dataset, title, theme string) error {
	page := components.NewPage()
	page.PageTitle = title
	page.SetLayout(components.PageFlexLayout)

	charters := BuildCharts(dataset, theme)
	if len(charters) > 0 {
		page.AddCharts(charters...)
	}

	err := page.Render(w)
	if err != nil {
		return fmt.Errorf("render cube page: %w", err)
	}

	return nil
}
