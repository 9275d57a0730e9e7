package render

import (
	"fmt"
	"image/color"
	"math"
	"strconv"

	"medvis/domain/stats"
	apperrors "medvis/internal/errors"

	"github.com/fogleman/gg"
	"golang.org/x/image/font/basicfont"
)

// HeatMapStyle controls the correlation heatmap layout and colour scale
type HeatMapStyle struct {
	Title        string
	CellSize     int
	VMax         float64 // colour scale spans Center-VMax .. Center+VMax
	Center       float64
	Format       string // annotation format
	LeftMargin   int
	TopMargin    int
	BottomMargin int
	RightMargin  int
}

// DefaultHeatMapStyle returns the layout used for heatmap.png
func DefaultHeatMapStyle() HeatMapStyle {
	return HeatMapStyle{
		CellSize:     44,
		VMax:         0.3,
		Center:       0,
		Format:       "%.1f",
		LeftMargin:   100,
		TopMargin:    30,
		BottomMargin: 100,
		RightMargin:  90,
	}
}

// Rect is a pixel rectangle with its origin at the top-left
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// Cell is one matrix position as drawn
type Cell struct {
	Rect
	Row        int
	Col        int
	Value      float64
	Visible    bool
	Annotation string // empty when hidden or undefined
}

// Axes describes a rendered heatmap
type Axes struct {
	Title    string
	XLabels  []string
	YLabels  []string
	Plot     Rect
	ColorBar Rect
	VMin     float64
	VMax     float64
	Center   float64
	cells    [][]Cell
}

// Size is the number of rows (and columns)
func (a *Axes) Size() int { return len(a.cells) }

// Cell returns the cell at row i, column j
func (a *Axes) Cell(i, j int) Cell { return a.cells[i][j] }

// VisibleCells counts drawn cells
func (a *Axes) VisibleCells() int {
	n := 0
	for _, row := range a.cells {
		for _, c := range row {
			if c.Visible {
				n++
			}
		}
	}
	return n
}

// Annotations returns the annotation texts in row-major order
func (a *Axes) Annotations() []string {
	var out []string
	for _, row := range a.cells {
		for _, c := range row {
			if c.Annotation != "" {
				out = append(out, c.Annotation)
			}
		}
	}
	return out
}

// HeatMap draws the visible cells of m with a diverging palette, an annotation per
// defined cell and a colour bar. Hidden cells and undefined (NaN) cells stay blank.
func HeatMap(m *stats.CorrelationMatrix, mask stats.Mask, style HeatMapStyle) (*Figure, *Axes, error) {
	if m == nil || m.Size() == 0 {
		return nil, nil, apperrors.InvalidInput("correlation matrix is empty")
	}
	n := m.Size()
	if len(mask) != n {
		return nil, nil, apperrors.InvalidInput(fmt.Sprintf("mask has %d rows, matrix has %d", len(mask), n))
	}
	for i := range mask {
		if len(mask[i]) != n {
			return nil, nil, apperrors.InvalidInput(fmt.Sprintf("mask row %d has %d columns, matrix has %d", i, len(mask[i]), n))
		}
	}
	if style.CellSize <= 0 || !(style.VMax > 0) {
		return nil, nil, apperrors.InvalidInput("heatmap cell size and colour range must be positive")
	}
	if style.Format == "" {
		style.Format = "%.1f"
	}

	cell := float64(style.CellSize)
	side := cell * float64(n)
	axes := &Axes{
		Title:    style.Title,
		XLabels:  append([]string(nil), m.Columns...),
		YLabels:  append([]string(nil), m.Columns...),
		Plot:     Rect{X: float64(style.LeftMargin), Y: float64(style.TopMargin), W: side, H: side},
		VMin:     style.Center - style.VMax,
		VMax:     style.Center + style.VMax,
		Center:   style.Center,
		cells:    make([][]Cell, n),
	}
	axes.ColorBar = Rect{X: axes.Plot.X + side + 20, Y: axes.Plot.Y, W: 16, H: side}

	palette := NewDiverging(style.Center, style.VMax)
	width := style.LeftMargin + n*style.CellSize + style.RightMargin
	height := style.TopMargin + n*style.CellSize + style.BottomMargin

	dc := gg.NewContext(width, height)
	dc.SetColor(color.White)
	dc.Clear()
	dc.SetFontFace(basicfont.Face7x13)

	for i := 0; i < n; i++ {
		axes.cells[i] = make([]Cell, n)
		for j := 0; j < n; j++ {
			v := m.At(i, j)
			c := Cell{
				Rect:    Rect{X: axes.Plot.X + float64(j)*cell, Y: axes.Plot.Y + float64(i)*cell, W: cell, H: cell},
				Row:     i,
				Col:     j,
				Value:   v,
				Visible: mask.Visible(i, j),
			}
			if c.Visible && !math.IsNaN(v) {
				c.Annotation = fmt.Sprintf(style.Format, v)

				dc.DrawRectangle(c.X+0.5, c.Y+0.5, c.W-1, c.H-1)
				dc.SetColor(palette.Color(v))
				dc.Fill()
				dc.SetColor(palette.TextColor(v))
				dc.DrawStringAnchored(c.Annotation, c.X+c.W/2, c.Y+c.H/2, 0.5, 0.5)
			}
			axes.cells[i][j] = c
		}
	}

	dc.SetColor(color.Black)
	for i, label := range axes.YLabels {
		dc.DrawStringAnchored(label, axes.Plot.X-6, axes.Plot.Y+(float64(i)+0.5)*cell, 1, 0.5)
	}
	baseline := axes.Plot.Y + side + 6
	for j, label := range axes.XLabels {
		x := axes.Plot.X + (float64(j)+0.5)*cell
		dc.Push()
		dc.RotateAbout(gg.Radians(-90), x, baseline)
		dc.DrawStringAnchored(label, x, baseline, 1, 0.5)
		dc.Pop()
	}
	if axes.Title != "" {
		dc.DrawStringAnchored(axes.Title, float64(width)/2, float64(style.TopMargin)/2, 0.5, 0.5)
	}

	drawColorBar(dc, axes.ColorBar, palette, axes.VMin, axes.VMax)
	return newFigure(dc), axes, nil
}

// drawColorBar paints the palette top (VMax) to bottom (VMin) with seven ticks.
func drawColorBar(dc *gg.Context, bar Rect, palette Diverging, vmin, vmax float64) {
	rows := int(bar.H)
	for py := 0; py < rows; py++ {
		v := vmax - (float64(py)+0.5)/bar.H*(vmax-vmin)
		dc.DrawRectangle(bar.X, bar.Y+float64(py), bar.W, 1)
		dc.SetColor(palette.Color(v))
		dc.Fill()
	}

	dc.SetColor(color.Black)
	dc.SetLineWidth(1)
	dc.DrawRectangle(bar.X, bar.Y, bar.W, bar.H)
	dc.Stroke()

	const ticks = 7
	for k := 0; k < ticks; k++ {
		frac := float64(k) / (ticks - 1)
		v := vmax - frac*(vmax-vmin)
		y := bar.Y + frac*bar.H
		dc.DrawLine(bar.X+bar.W, y, bar.X+bar.W+4, y)
		dc.Stroke()
		dc.DrawStringAnchored(tickLabel(v), bar.X+bar.W+8, y, 0, 0.5)
	}
}

func tickLabel(v float64) string {
	v = math.Round(v*1e6) / 1e6
	if v == 0 {
		v = 0 // normalise -0
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
