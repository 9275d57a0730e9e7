package render

import (
	"image/color"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// Diverging maps values onto a blue-white-red ramp centred on Center.
// Values beyond Center±Span saturate; the data itself is never clamped.
type Diverging struct {
	Low    colorful.Color
	Mid    colorful.Color
	High   colorful.Color
	Center float64
	Span   float64
}

// NewDiverging builds the default palette for the given centre and half-range
func NewDiverging(center, span float64) Diverging {
	return Diverging{
		Low:    mustHex("#2166ac"),
		Mid:    mustHex("#f7f7f7"),
		High:   mustHex("#b2182b"),
		Center: center,
		Span:   span,
	}
}

// Position returns v scaled to [-1, 1] relative to the palette range
func (d Diverging) Position(v float64) float64 {
	if d.Span <= 0 || math.IsNaN(v) {
		return 0
	}
	t := (v - d.Center) / d.Span
	return math.Max(-1, math.Min(1, t))
}

// Color returns the palette colour for v
func (d Diverging) Color(v float64) colorful.Color {
	t := d.Position(v)
	switch {
	case t == 0:
		return d.Mid
	case t < 0:
		return d.Mid.BlendLab(d.Low, -t).Clamped()
	default:
		return d.Mid.BlendLab(d.High, t).Clamped()
	}
}

// TextColor picks black or white for legible annotations over the cell colour of v
func (d Diverging) TextColor(v float64) color.Color {
	if math.Abs(d.Position(v)) > 0.6 {
		return color.White
	}
	return color.Black
}

func mustHex(s string) colorful.Color {
	c, err := colorful.Hex(s)
	if err != nil {
		panic(err)
	}
	return c
}
