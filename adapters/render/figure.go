package render

import (
	"bytes"
	"image"
	"io"

	"github.com/fogleman/gg"
)

// Figure is a rendered chart raster
type Figure struct {
	dc *gg.Context
}

func newFigure(dc *gg.Context) *Figure {
	return &Figure{dc: dc}
}

// Width returns the figure width in pixels
func (f *Figure) Width() int { return f.dc.Width() }

// Height returns the figure height in pixels
func (f *Figure) Height() int { return f.dc.Height() }

// Image returns the underlying raster
func (f *Figure) Image() image.Image { return f.dc.Image() }

// EncodePNG writes the figure as PNG
func (f *Figure) EncodePNG(w io.Writer) error { return f.dc.EncodePNG(w) }

// PNG returns the encoded PNG bytes
func (f *Figure) PNG() ([]byte, error) {
	var buf bytes.Buffer
	if err := f.dc.EncodePNG(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// SavePNG writes the figure to path, replacing any existing file
func (f *Figure) SavePNG(path string) error { return f.dc.SavePNG(path) }
