package echarts

import (
	"fmt"
	"io"
	"math"
	"sort"

	"medvis/domain/stats"
	apperrors "medvis/internal/errors"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
)

// CatPlotPage renders one interactive bar chart per cardio value on a single page
func CatPlotPage(counts []stats.CategoryCount, w io.Writer) error {
	if len(counts) == 0 {
		return apperrors.InvalidInput("no category counts to plot")
	}

	totals := map[int]map[string]map[int]int{}
	variableSet := map[string]bool{}
	valueSet := map[int]bool{}
	for _, c := range counts {
		if totals[c.Cardio] == nil {
			totals[c.Cardio] = map[string]map[int]int{}
		}
		if totals[c.Cardio][c.Variable] == nil {
			totals[c.Cardio][c.Variable] = map[int]int{}
		}
		totals[c.Cardio][c.Variable][c.Value] = c.Total
		variableSet[c.Variable] = true
		valueSet[c.Value] = true
	}

	variables := make([]string, 0, len(variableSet))
	for v := range variableSet {
		variables = append(variables, v)
	}
	sort.Strings(variables)
	values := make([]int, 0, len(valueSet))
	for v := range valueSet {
		values = append(values, v)
	}
	sort.Ints(values)
	cardios := make([]int, 0, len(totals))
	for c := range totals {
		cardios = append(cardios, c)
	}
	sort.Ints(cardios)

	page := components.NewPage()
	page.PageTitle = "catplot"
	for _, cardio := range cardios {
		bar := charts.NewBar()
		bar.SetGlobalOptions(
			charts.WithTitleOpts(opts.Title{
				Title: fmt.Sprintf("cardio = %d", cardio),
			}),
			charts.WithTooltipOpts(opts.Tooltip{
				Show: opts.Bool(true),
			}),
			charts.WithLegendOpts(opts.Legend{
				Show: opts.Bool(true),
				Top:  "bottom",
			}),
			charts.WithXAxisOpts(opts.XAxis{
				Name: "variable",
			}),
			charts.WithYAxisOpts(opts.YAxis{
				Name: "total",
			}),
		)

		bar.SetXAxis(variables)
		for _, value := range values {
			data := make([]opts.BarData, len(variables))
			for i, variable := range variables {
				data[i] = opts.BarData{Value: totals[cardio][variable][value]}
			}
			bar.AddSeries(fmt.Sprintf("%d", value), data)
		}
		page.AddCharts(bar)
	}

	if err := page.Render(w); err != nil {
		return apperrors.RenderFailed("catplot html", err)
	}
	return nil
}

// HeatMapPage renders the visible, defined cells of m as an interactive heatmap
// with a visual map spanning -vmax..vmax.
func HeatMapPage(m *stats.CorrelationMatrix, mask stats.Mask, vmax float64, w io.Writer) error {
	if m == nil || m.Size() == 0 {
		return apperrors.InvalidInput("correlation matrix is empty")
	}
	n := m.Size()
	if len(mask) != n {
		return apperrors.InvalidInput(fmt.Sprintf("mask has %d rows, matrix has %d", len(mask), n))
	}

	// echarts draws category y axes bottom-up; reverse them so row 0 is on top.
	yLabels := make([]string, n)
	for i, c := range m.Columns {
		yLabels[n-1-i] = c
	}

	var data []opts.HeatMapData
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			v := m.At(i, j)
			if !mask.Visible(i, j) || math.IsNaN(v) {
				continue
			}
			data = append(data, opts.HeatMapData{
				Value: [3]interface{}{j, n - 1 - i, math.Round(v*100) / 100},
			})
		}
	}

	hm := charts.NewHeatMap()
	hm.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{
			Title: "correlation",
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show: opts.Bool(true),
		}),
		charts.WithXAxisOpts(opts.XAxis{
			Type: "category",
			Data: m.Columns,
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Type: "category",
			Data: yLabels,
		}),
		charts.WithVisualMapOpts(opts.VisualMap{
			Calculable: opts.Bool(true),
			Min:        float32(-vmax),
			Max:        float32(vmax),
			InRange: &opts.VisualMapInRange{
				Color: []string{"#2166ac", "#f7f7f7", "#b2182b"},
			},
		}),
	)
	hm.SetXAxis(m.Columns).AddSeries("correlation", data,
		charts.WithLabelOpts(opts.Label{Show: opts.Bool(true)}))

	if err := hm.Render(w); err != nil {
		return apperrors.RenderFailed("heatmap html", err)
	}
	return nil
}
