package render

import (
	"bytes"
	"fmt"
	"image/color"
	"image/png"
	"sort"

	"medvis/domain/stats"
	apperrors "medvis/internal/errors"

	"github.com/fogleman/gg"
	chart "github.com/wcharczuk/go-chart/v2"
	"github.com/wcharczuk/go-chart/v2/drawing"
	"golang.org/x/image/font/basicfont"
)

// hueHex holds the bar colours by indicator value, in order.
var hueHex = []string{"1f77b4", "ff7f0e", "2ca02c", "d62728"}

// CatPlotStyle controls the categorical chart layout
type CatPlotStyle struct {
	PanelWidth  int
	PanelHeight int
	BarWidth    int
	BarSpacing  int
	LegendWidth int
}

// DefaultCatPlotStyle returns the layout used for catplot.png
func DefaultCatPlotStyle() CatPlotStyle {
	return CatPlotStyle{
		PanelWidth:  560,
		PanelHeight: 480,
		BarWidth:    30,
		BarSpacing:  8,
		LegendWidth: 90,
	}
}

// Bar is one drawn bar of a panel
type Bar struct {
	Variable string
	Value    int
	Total    int
}

// Panel is one facet of the categorical chart
type Panel struct {
	Cardio int
	Title  string
	X      int
	Y      int
	Width  int
	Height int
	Bars   []Bar
}

// CatPlotAxes describes the facets of a rendered categorical chart
type CatPlotAxes struct {
	Panels      []Panel
	Variables   []string
	Values      []int
	YMax        float64
	LegendTitle string
}

// Panel returns the facet for a cardio value
func (a *CatPlotAxes) Panel(cardio int) (Panel, bool) {
	for _, p := range a.Panels {
		if p.Cardio == cardio {
			return p, true
		}
	}
	return Panel{}, false
}

// CatPlot draws one bar panel per cardio value. Bars are grouped by variable and
// coloured by value; all panels share the y range. Combinations absent from counts
// are drawn as zero-height bars.
func CatPlot(counts []stats.CategoryCount, style CatPlotStyle) (*Figure, *CatPlotAxes, error) {
	if len(counts) == 0 {
		return nil, nil, apperrors.InvalidInput("no category counts to plot")
	}
	if style.PanelWidth <= 0 || style.PanelHeight <= 0 {
		return nil, nil, apperrors.InvalidInput("catplot panel size must be positive")
	}

	type key struct {
		cardio   int
		variable string
		value    int
	}
	totals := make(map[key]int, len(counts))
	cardioSet := map[int]bool{}
	variableSet := map[string]bool{}
	valueSet := map[int]bool{}
	maxTotal := 0
	for _, c := range counts {
		totals[key{c.Cardio, c.Variable, c.Value}] = c.Total
		cardioSet[c.Cardio] = true
		variableSet[c.Variable] = true
		valueSet[c.Value] = true
		if c.Total > maxTotal {
			maxTotal = c.Total
		}
	}

	axes := &CatPlotAxes{
		Variables:   sortedStrings(variableSet),
		Values:      sortedInts(valueSet),
		YMax:        float64(maxTotal) * 1.1,
		LegendTitle: "value",
	}
	if axes.YMax < 1 {
		axes.YMax = 1
	}
	cardios := sortedInts(cardioSet)

	dc := gg.NewContext(len(cardios)*style.PanelWidth+style.LegendWidth, style.PanelHeight)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for i, cardio := range cardios {
		panel := Panel{
			Cardio: cardio,
			Title:  fmt.Sprintf("cardio = %d", cardio),
			X:      i * style.PanelWidth,
			Width:  style.PanelWidth,
			Height: style.PanelHeight,
		}

		var bars []chart.Value
		for _, variable := range axes.Variables {
			for j, value := range axes.Values {
				total := totals[key{cardio, variable, value}]
				label := ""
				if j == 0 {
					label = variable
				}
				fill := drawing.ColorFromHex(hueHex[j%len(hueHex)])
				bars = append(bars, chart.Value{
					Value: float64(total),
					Label: label,
					Style: chart.Style{FillColor: fill, StrokeColor: fill, StrokeWidth: 1},
				})
				panel.Bars = append(panel.Bars, Bar{Variable: variable, Value: value, Total: total})
			}
		}

		bc := chart.BarChart{
			Title:      panel.Title,
			Width:      style.PanelWidth,
			Height:     style.PanelHeight,
			BarWidth:   style.BarWidth,
			BarSpacing: style.BarSpacing,
			Background: chart.Style{Padding: chart.Box{Top: 40, Left: 16, Right: 12, Bottom: 28}},
			YAxis: chart.YAxis{
				Range:          &chart.ContinuousRange{Min: 0, Max: axes.YMax},
				ValueFormatter: chart.IntValueFormatter,
			},
			Bars: bars,
		}

		var buf bytes.Buffer
		if err := bc.Render(chart.PNG, &buf); err != nil {
			return nil, nil, apperrors.RenderFailed(fmt.Sprintf("catplot panel %q", panel.Title), err)
		}
		img, err := png.Decode(&buf)
		if err != nil {
			return nil, nil, apperrors.RenderFailed(fmt.Sprintf("catplot panel %q", panel.Title), err)
		}
		dc.DrawImage(img, panel.X, panel.Y)

		dc.SetColor(color.Black)
		dc.DrawStringAnchored("variable", float64(panel.X+panel.Width/2), float64(style.PanelHeight-6), 0.5, 0)
		axes.Panels = append(axes.Panels, panel)
	}

	drawHueLegend(dc, axes, float64(len(cardios)*style.PanelWidth+10), float64(style.PanelHeight)/2-30)
	return newFigure(dc), axes, nil
}

func drawHueLegend(dc *gg.Context, axes *CatPlotAxes, x, y float64) {
	dc.SetColor(color.Black)
	dc.DrawString(axes.LegendTitle, x, y)
	for j, value := range axes.Values {
		row := y + 10 + float64(j)*20
		dc.DrawRectangle(x, row, 14, 14)
		dc.SetColor(mustHex("#" + hueHex[j%len(hueHex)]))
		dc.Fill()
		dc.SetColor(color.Black)
		dc.DrawString(fmt.Sprintf("%d", value), x+20, row+11)
	}
}

func sortedInts(set map[int]bool) []int {
	out := make([]int, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Ints(out)
	return out
}

func sortedStrings(set map[string]bool) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
