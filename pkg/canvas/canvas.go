// Package canvas holds model images: a pixel grid paired with a world
// coordinate model.
//
// Images are synthesized by adding model components (point sources,
// uniform disks, Gaussians and limb-darkened disks) and can be
// serialized either as the primary section of a FITS file or as a named
// image extension.
//
// Pixel positions are given in pixels with x along NAXIS1 (the fast
// axis) and y along NAXIS2. The grid is stored as a gonum matrix with
// NAXIS2 rows and NAXIS1 columns, so row-major order equals FITS order.
package canvas

import (
	"fmt"
	"math"

	"github.com/astrogo/fitsio"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/hdulist"
	"github.com/matzehuels/imageoi/pkg/header"
	"github.com/matzehuels/imageoi/pkg/observability"
	"github.com/matzehuels/imageoi/pkg/wcs"
)

// scaleTolerance is the relative tolerance allowed between a requested
// pixel scale and the scale of a template header.
const scaleTolerance = 1e-12

// Canvas is a named image with square pixels.
type Canvas struct {
	name string
	grid *mat.Dense
	wcs  wcs.WCS
}

// New returns a blank canvas of naxis1 x naxis2 pixels of pixelScale
// milliarcseconds. When template is non-nil its coordinate attributes
// are inherited; its pixel scale must agree with pixelScale.
func New(name string, naxis1, naxis2 int, pixelScale float64, template *header.Header) (*Canvas, error) {
	if err := errors.ValidateDims(naxis1, naxis2); err != nil {
		return nil, err
	}
	if err := errors.ValidatePixelScale(pixelScale); err != nil {
		return nil, err
	}

	w := wcs.New(pixelScale)
	if template != nil {
		tw, err := wcs.FromHeader(template)
		if err != nil {
			return nil, errors.Wrap(errors.ErrCodeInvalidScale, err, "template header")
		}
		want := pixelScale * wcs.MasToDeg
		if math.Abs(tw.CDelt[0]-want) > scaleTolerance*math.Abs(want) {
			return nil, errors.New(errors.ErrCodeInvalidScale,
				"pixel scale %g mas disagrees with template scale %g mas", pixelScale, tw.PixelScale())
		}
		tw.CDelt = w.CDelt
		w = tw
	}

	return &Canvas{
		name: name,
		grid: mat.NewDense(naxis2, naxis1, nil),
		wcs:  w,
	}, nil
}

// FromHDU reads a canvas from an image section. The name is taken from
// HDUNAME, or EXTNAME when HDUNAME is absent.
func FromHDU(hdu fitsio.HDU) (*Canvas, error) {
	if !hdulist.IsImage(hdu) {
		return nil, errors.New(errors.ErrCodeTypeNotSupported, "section %q is not an image", hdu.Name())
	}
	pixels, naxis1, naxis2, err := hdulist.ReadPixels(hdu.(fitsio.Image))
	if err != nil {
		return nil, err
	}
	if err := errors.ValidateDims(naxis1, naxis2); err != nil {
		return nil, errors.Wrap(errors.ErrCodeTypeNotSupported, err, "section %q", hdu.Name())
	}

	h := hdulist.HeaderOf(hdu)
	w, err := wcs.FromHeader(h)
	if err != nil {
		return nil, err
	}
	name, ok := h.GetString("HDUNAME")
	if !ok {
		name, _ = h.GetString("EXTNAME")
	}
	return &Canvas{name: name, grid: mat.NewDense(naxis2, naxis1, pixels), wcs: w}, nil
}

// Name returns the label written to HDUNAME.
func (c *Canvas) Name() string { return c.name }

// Dims returns (naxis1, naxis2).
func (c *Canvas) Dims() (naxis1, naxis2 int) {
	r, cols := c.grid.Dims()
	return cols, r
}

func (c *Canvas) Naxis1() int { _, n := c.grid.Dims(); return n }
func (c *Canvas) Naxis2() int { n, _ := c.grid.Dims(); return n }

// PixelScale returns the pixel size in milliarcseconds.
func (c *Canvas) PixelScale() float64 { return c.wcs.PixelScale() }

// IsSquare reports whether the grid has as many columns as rows.
func (c *Canvas) IsSquare() bool {
	r, cols := c.grid.Dims()
	return r == cols
}

// WCS returns a copy of the coordinate model.
func (c *Canvas) WCS() wcs.WCS { return c.wcs }

// SetWCS applies coordinate options. The canvas is unchanged on error.
func (c *Canvas) SetWCS(o wcs.Options) error {
	w := c.wcs
	if err := w.Apply(o); err != nil {
		return err
	}
	c.wcs = w
	return nil
}

// Image returns a copy of the pixel grid.
func (c *Canvas) Image() *mat.Dense {
	return mat.DenseCopyOf(c.grid)
}

// SetImage replaces the pixel grid. m must have the current shape.
func (c *Canvas) SetImage(m mat.Matrix) error {
	r, cols := m.Dims()
	wr, wc := c.grid.Dims()
	if r != wr || cols != wc {
		return errors.New(errors.ErrCodeInvalidShape,
			"image shape (%d, %d) does not match canvas shape (%d, %d)", r, cols, wr, wc)
	}
	c.grid.Copy(m)
	return nil
}

// Pixels returns the grid in FITS order.
func (c *Canvas) Pixels() []float64 {
	return append([]float64(nil), c.grid.RawMatrix().Data...)
}

// SetPixels replaces the grid from values in FITS order.
func (c *Canvas) SetPixels(pixels []float64) error {
	raw := c.grid.RawMatrix()
	if len(pixels) != len(raw.Data) {
		return errors.New(errors.ErrCodeInvalidShape,
			"have %d pixels, canvas holds %d", len(pixels), len(raw.Data))
	}
	copy(raw.Data, pixels)
	return nil
}

// Sum returns the total flux.
func (c *Canvas) Sum() float64 {
	return floats.Sum(c.grid.RawMatrix().Data)
}

// Normalise scales the image to unit sum. An image whose sum is zero or
// not finite is left alone and Normalise reports false.
func (c *Canvas) Normalise() bool {
	data := c.grid.RawMatrix().Data
	total := floats.Sum(data)
	applied := total != 0 && !math.IsNaN(total) && !math.IsInf(total, 0)
	if applied {
		floats.Scale(1/total, data)
	}
	observability.Canvas().OnNormalise(c.name, total, applied)
	return applied
}

// Add rasterizes comp onto the grid. Point sources must fall inside the
// grid; other components are evaluated at every pixel center.
func (c *Canvas) Add(comp Component) (err error) {
	defer func() { observability.Canvas().OnComponent(c.name, comp.Kind(), comp.Flux(), err) }()

	rows, cols := c.grid.Dims()
	if p, ok := comp.(interface{ Pixel() (int, int) }); ok {
		ix, iy := p.Pixel()
		if ix < 0 || ix >= cols || iy < 0 || iy >= rows {
			return errors.New(errors.ErrCodeInvalidInput,
				"%s at pixel (%d, %d) is outside the %dx%d image", comp.Kind(), ix, iy, cols, rows)
		}
		c.grid.Set(iy, ix, c.grid.At(iy, ix)+comp.Flux())
		return nil
	}

	for iy := 0; iy < rows; iy++ {
		row := c.grid.RawRowView(iy)
		for ix := range row {
			row[ix] += comp.At(ix, iy)
		}
	}
	return nil
}

// AddDirac adds a point source to the pixel nearest (x, y).
func (c *Canvas) AddDirac(x, y, flux float64) error {
	d, err := NewDirac(x, y, flux)
	if err != nil {
		return err
	}
	return c.Add(d)
}

// AddUniformDisk adds a uniform disk of the given diameter in pixels.
func (c *Canvas) AddUniformDisk(x, y, flux, diameter float64) error {
	d, err := NewUniformDisk(x, y, flux, diameter)
	if err != nil {
		return err
	}
	return c.Add(d)
}

// AddGaussian adds a circular Gaussian of the given FWHM in pixels.
func (c *Canvas) AddGaussian(x, y, flux, fwhm float64) error {
	g, err := NewGaussian(x, y, flux, fwhm)
	if err != nil {
		return err
	}
	return c.Add(g)
}

// AddLimbDarkenedDisk adds a power-law limb-darkened disk.
func (c *Canvas) AddLimbDarkenedDisk(x, y, flux, diameter, alpha float64) error {
	d, err := NewLimbDarkenedDisk(x, y, flux, diameter, alpha)
	if err != nil {
		return err
	}
	return c.Add(d)
}

// PrimaryHeader returns the header of the canvas written as a primary
// section, structural cards included.
func (c *Canvas) PrimaryHeader() *header.Header {
	n1, n2 := c.Dims()
	h := hdulist.PrimaryStructure(hdulist.BitpixFloat64, []int{n1, n2})
	for _, card := range c.wcs.Cards() {
		h.SetCard(card)
	}
	h.Set("HDUNAME", c.name)
	return h
}

// ExtensionHeader returns the non-structural header of the canvas
// written as an image extension.
func (c *Canvas) ExtensionHeader() *header.Header {
	h := header.New(c.wcs.Cards()...)
	h.Set("HDUNAME", c.name)
	h.Set("EXTNAME", c.name)
	return h
}

// PrimaryHDU builds a primary section holding the canvas.
func (c *Canvas) PrimaryHDU() (fitsio.Image, error) {
	return hdulist.NewPrimary(c.PrimaryHeader(), c.Pixels())
}

// PrimaryHDUWith builds a primary section whose header is merged with
// extra. Conflicting values abort with a conflict error.
func (c *Canvas) PrimaryHDUWith(extra *header.Header) (fitsio.Image, error) {
	h, err := header.Merge(c.PrimaryHeader(), extra)
	if err != nil {
		return nil, err
	}
	return hdulist.NewPrimary(h, c.Pixels())
}

// ImageHDU builds an image extension holding the canvas. Several such
// sections may share a file.
func (c *Canvas) ImageHDU() (fitsio.Image, error) {
	n1, n2 := c.Dims()
	return hdulist.NewImageExtension(c.ExtensionHeader(), n1, n2, c.Pixels())
}

func (c *Canvas) String() string {
	n1, n2 := c.Dims()
	return fmt.Sprintf("%s: %dx%d pixels of %g mas, sum %g", c.name, n1, n2, c.PixelScale(), c.Sum())
}
