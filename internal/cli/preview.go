package cli

import (
	"image/color"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"

	"github.com/matzehuels/imageoi/pkg/canvas"
	"github.com/matzehuels/imageoi/pkg/errors"
)

// previewSize is the edge length of preview images.
const previewSize = 5 * vg.Inch

// pixelGrid adapts an image to plotter.GridXYZ with axes in pixels.
type pixelGrid struct {
	m *mat.Dense
}

func (g pixelGrid) Dims() (c, r int) {
	r, c = g.m.Dims()
	return c, r
}

func (g pixelGrid) Z(c, r int) float64 { return g.m.At(r, c) }
func (g pixelGrid) X(c int) float64    { return float64(c) }
func (g pixelGrid) Y(r int) float64    { return float64(r) }

// writePreview renders img as a heat map PNG at path.
func writePreview(img *canvas.Canvas, path string) error {
	grid := pixelGrid{m: img.Image()}
	hm := plotter.NewHeatMap(grid, moreland.ExtendedBlackBody().Palette(255))
	if !(hm.Max > hm.Min) {
		// A flat image still needs a non-empty range.
		hm.Max = hm.Min + 1
	}
	hm.NaN = color.Transparent

	p := plot.New()
	p.Title.Text = img.Name()
	p.X.Label.Text = "x / pixel"
	p.Y.Label.Text = "y / pixel"
	p.Add(hm)

	if err := p.Save(previewSize, previewSize, path); err != nil {
		return errors.Wrap(errors.ErrCodeIO, err, "save preview %s", path)
	}
	return nil
}
