package canvas

import (
	"bytes"
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gonum.org/v1/gonum/mat"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/hdulist"
	"github.com/matzehuels/imageoi/pkg/header"
	"github.com/matzehuels/imageoi/pkg/wcs"
)

func newCanvas(t *testing.T, n1, n2 int) *Canvas {
	t.Helper()
	c, err := New("test", n1, n2, 0.25, nil)
	require.NoError(t, err)
	return c
}

func TestNew(t *testing.T) {
	c := newCanvas(t, 48, 32)

	n1, n2 := c.Dims()
	assert.Equal(t, 48, n1)
	assert.Equal(t, 32, n2)
	assert.Equal(t, 48, c.Naxis1())
	assert.Equal(t, 32, c.Naxis2())
	assert.False(t, c.IsSquare())
	assert.Equal(t, "test", c.Name())
	assert.InDelta(t, 0.25, c.PixelScale(), 1e-15)
	assert.Zero(t, c.Sum())

	r, cols := c.Image().Dims()
	assert.Equal(t, 32, r)
	assert.Equal(t, 48, cols)
}

func TestNewRejectsBadGeometry(t *testing.T) {
	tests := []struct {
		name   string
		n1, n2 int
		scale  float64
		code   errors.Code
	}{
		{"zero width", 0, 4, 0.25, errors.ErrCodeInvalidShape},
		{"negative height", 4, -1, 0.25, errors.ErrCodeInvalidShape},
		{"zero scale", 4, 4, 0, errors.ErrCodeInvalidScale},
		{"nan scale", 4, 4, math.NaN(), errors.ErrCodeInvalidScale},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New("x", tt.n1, tt.n2, tt.scale, nil)
			require.Error(t, err)
			assert.True(t, errors.Is(err, tt.code), "got %v", err)
		})
	}
}

func TestNewFromTemplate(t *testing.T) {
	d := 0.25 * wcs.MasToDeg
	tmpl := header.New(
		header.Card{Key: "CDELT1", Value: d},
		header.Card{Key: "CDELT2", Value: d},
		header.Card{Key: "CTYPE1", Value: "RA---SIN"},
		header.Card{Key: "CTYPE2", Value: "DEC--SIN"},
		header.Card{Key: "CRPIX1", Value: 32.0},
	)

	c, err := New("tmpl", 64, 64, 0.25, tmpl)
	require.NoError(t, err)
	w := c.WCS()
	assert.Equal(t, [2]string{"RA---SIN", "DEC--SIN"}, w.CType)
	assert.Equal(t, 32.0, w.CRPix[0])
	assert.Equal(t, wcs.New(0.25).CDelt, w.CDelt)

	_, err = New("tmpl", 64, 64, 0.3, tmpl)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScale))

	_, err = New("tmpl", 64, 64, 0.25, header.New(header.Card{Key: "CTYPE1", Value: "RA"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidScale))
}

func TestSetImage(t *testing.T) {
	c := newCanvas(t, 3, 2)

	err := c.SetImage(mat.NewDense(3, 2, nil))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidShape))

	m := mat.NewDense(2, 3, []float64{1, 2, 3, 4, 5, 6})
	require.NoError(t, c.SetImage(m))
	assert.Equal(t, []float64{1, 2, 3, 4, 5, 6}, c.Pixels())
	assert.Equal(t, 6.0, c.Image().At(1, 2))

	// The returned image is a copy.
	c.Image().Set(0, 0, 100)
	assert.Equal(t, 1.0, c.Image().At(0, 0))

	require.Error(t, c.SetPixels([]float64{1}))
	require.NoError(t, c.SetPixels([]float64{0, 0, 0, 0, 0, 7}))
	assert.Equal(t, 7.0, c.Sum())
}

func TestSetWCS(t *testing.T) {
	c := newCanvas(t, 8, 8)

	require.NoError(t, c.SetWCS(wcs.Options{CType: []string{"RA", "DEC"}, CRPix: []float64{4, 4}}))
	assert.Equal(t, [2]string{"RA", "DEC"}, c.WCS().CType)

	before := c.WCS()
	err := c.SetWCS(wcs.Options{CType: []string{"X", "Y"}, CDelt: []float64{1e-9, 2e-9}})
	require.Error(t, err)
	assert.Equal(t, before, c.WCS())
}

func TestNormalise(t *testing.T) {
	c := newCanvas(t, 64, 64)
	assert.False(t, c.Normalise())
	assert.Zero(t, c.Sum())
	for _, v := range c.Pixels() {
		assert.False(t, math.IsNaN(v))
	}

	require.NoError(t, c.AddGaussian(12, 37, 0.5, 40))
	assert.True(t, c.Normalise())
	assert.InDelta(t, 1.0, c.Sum(), 1e-6)
}

func TestNormaliseNonFinite(t *testing.T) {
	c := newCanvas(t, 2, 2)
	require.NoError(t, c.SetPixels([]float64{1, math.Inf(1), 0, 0}))
	assert.False(t, c.Normalise())
	assert.Equal(t, 1.0, c.Pixels()[0])
}

func TestAddDirac(t *testing.T) {
	c := newCanvas(t, 64, 64)
	require.NoError(t, c.AddDirac(12.0, 37.0, 0.5))
	assert.Equal(t, 0.5, c.Image().At(37, 12))

	require.NoError(t, c.AddDirac(13.5, 42.8, 0.25))
	assert.Equal(t, 0.25, c.Image().At(43, 14))
	assert.InDelta(t, 0.75, c.Sum(), 1e-12)

	require.NoError(t, c.AddDirac(12.5, 36.5, 1))
	assert.Equal(t, 1.0, c.Image().At(36, 12))

	err := c.AddDirac(64, 0, 1)
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
	err = c.AddDirac(-0.6, 0, 1)
	require.Error(t, err)
	assert.InDelta(t, 1.75, c.Sum(), 1e-12)
}

func TestAddUniformDisk(t *testing.T) {
	c := newCanvas(t, 64, 64)
	require.NoError(t, c.AddUniformDisk(32, 32, 1.0, 11))
	assert.InDelta(t, 1.0, c.Sum(), 1e-2)

	img := c.Image()
	level := img.At(32, 32)
	assert.Equal(t, level, img.At(32, 37))
	assert.Equal(t, level, img.At(27, 32))
	assert.Zero(t, img.At(32, 38))
	assert.Zero(t, img.At(37, 37))

	require.NoError(t, c.AddUniformDisk(12.0, 37.0, 0.5, 11))
	require.NoError(t, c.AddUniformDisk(13.5, 42.8, 0.25, 11))
	assert.InDelta(t, 1.75, c.Sum(), 1e-2)
}

func TestAddGaussian(t *testing.T) {
	c := newCanvas(t, 64, 64)
	require.NoError(t, c.AddGaussian(32, 32, 1.0, 5))
	assert.InDelta(t, 1.0, c.Sum(), 1e-6)

	img := c.Image()
	assert.Greater(t, img.At(32, 32), img.At(32, 33))
	assert.InDelta(t, img.At(32, 30), img.At(32, 34), 1e-15)

	// Half maximum lies fwhm/2 from the center.
	g, err := NewGaussian(0, 0, 1, 4)
	require.NoError(t, err)
	assert.InDelta(t, g.Peak()/2, g.At(2, 0), 1e-15)
}

func TestAddLimbDarkenedDisk(t *testing.T) {
	c := newCanvas(t, 64, 64)
	require.NoError(t, c.AddLimbDarkenedDisk(32, 32, 1.0, 21, 0.5))
	assert.InDelta(t, 1.0, c.Sum(), 1e-9)

	img := c.Image()
	assert.Greater(t, img.At(32, 32), img.At(32, 40))
	assert.Greater(t, img.At(32, 40), 0.0)
	assert.Zero(t, img.At(32, 43))
}

func TestLimbDarkenedDiskWithoutDarkeningIsUniform(t *testing.T) {
	ld := newCanvas(t, 32, 32)
	ud := newCanvas(t, 32, 32)
	require.NoError(t, ld.AddLimbDarkenedDisk(15.3, 16.1, 2, 9, 0))
	require.NoError(t, ud.AddUniformDisk(15.3, 16.1, 2, 9))
	assert.InDeltaSlice(t, ud.Pixels(), ld.Pixels(), 1e-15)
}

func TestComponentValidation(t *testing.T) {
	c := newCanvas(t, 8, 8)
	tests := []struct {
		name string
		add  func() error
	}{
		{"nan position", func() error { return c.AddDirac(math.NaN(), 1, 1) }},
		{"infinite flux", func() error { return c.AddGaussian(1, 1, math.Inf(1), 2) }},
		{"zero diameter", func() error { return c.AddUniformDisk(1, 1, 1, 0) }},
		{"negative fwhm", func() error { return c.AddGaussian(1, 1, 1, -2) }},
		{"negative alpha", func() error { return c.AddLimbDarkenedDisk(1, 1, 1, 3, -0.1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.add()
			require.Error(t, err)
			assert.True(t, errors.Is(err, errors.ErrCodeInvalidInput))
		})
	}
	assert.Zero(t, c.Sum())
}

func TestDiskSpanMatchesPixelTest(t *testing.T) {
	for _, d := range []struct{ x, y, diameter float64 }{
		{32, 32, 11},
		{15.3, 16.1, 9},
		{13.5, 42.8, 11},
		{0, 0, 2},
		{7.25, -3.5, 40.5},
	} {
		rsq := d.diameter * d.diameter / 4
		var rows, want int
		eachRow(d.x, d.y, rsq, func(_ float64, lo, hi int) { rows += hi - lo + 1 })
		r := int(d.diameter) + 2
		for iy := int(d.y) - r; iy <= int(d.y)+r; iy++ {
			for ix := int(d.x) - r; ix <= int(d.x)+r; ix++ {
				if sqDist(ix, iy, d.x, d.y) <= rsq {
					want++
				}
			}
		}
		assert.Equal(t, want, rows, "disk %+v", d)
	}
}

func TestWideDiskOnSmallGrid(t *testing.T) {
	c := newCanvas(t, 16, 16)

	start := time.Now()
	require.NoError(t, c.AddUniformDisk(8, 8, 1, 60000))
	require.NoError(t, c.AddLimbDarkenedDisk(8, 8, 1, 60000, 0.5))
	assert.Less(t, time.Since(start), time.Second)

	r := 30000.0
	uniform := 1 / (math.Pi * r * r)
	ld := 2.5 / (2 * math.Pi * r * r)
	img := c.Image()
	assert.InEpsilon(t, uniform+ld, img.At(8, 8), 1e-6)
	assert.InEpsilon(t, img.At(8, 8), img.At(0, 15), 1e-6)
}

func TestLatticeAndAnalyticLevelsAgree(t *testing.T) {
	lattice, err := NewUniformDisk(0.3, 0.6, 1, maxLatticeDiameter)
	require.NoError(t, err)
	analytic, err := NewUniformDisk(0.3, 0.6, 1, maxLatticeDiameter+1e-9)
	require.NoError(t, err)
	assert.InEpsilon(t, lattice.At(0, 0), analytic.At(0, 0), 1e-3)
}

func TestTinyDiskAddsNothing(t *testing.T) {
	c := newCanvas(t, 8, 8)
	require.NoError(t, c.AddUniformDisk(3.5, 3.5, 1, 0.5))
	assert.Zero(t, c.Sum())
}

func TestHeaders(t *testing.T) {
	c := newCanvas(t, 16, 8)

	p := c.PrimaryHeader()
	assert.Equal(t, []string{"SIMPLE", "BITPIX", "NAXIS", "NAXIS1", "NAXIS2", "EXTEND"}, p.Keys()[:6])
	name, _ := p.GetString("HDUNAME")
	assert.Equal(t, "test", name)
	assert.False(t, p.Has("EXTNAME"))

	e := c.ExtensionHeader()
	assert.False(t, e.Has("NAXIS"))
	extname, _ := e.GetString("EXTNAME")
	assert.Equal(t, "test", extname)
}

func TestPrimaryRoundTrip(t *testing.T) {
	c := newCanvas(t, 16, 8)
	require.NoError(t, c.SetWCS(wcs.Options{CType: []string{"RA---SIN", "DEC--SIN"}}))
	require.NoError(t, c.AddGaussian(7.3, 4.1, 1, 3))

	hdu, err := c.PrimaryHDU()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, hdulist.Encode(&buf, hdu))

	l, err := hdulist.Decode(&buf)
	require.NoError(t, err)
	got, err := FromHDU(l.HDUs()[0])
	require.NoError(t, err)

	assert.Equal(t, c.Name(), got.Name())
	assert.Equal(t, c.WCS(), got.WCS())
	assert.Equal(t, c.Pixels(), got.Pixels())
}

func TestExtensionRoundTrip(t *testing.T) {
	c, err := New("IMAGE-OI PRIOR IMAGE", 10, 12, 0.5, nil)
	require.NoError(t, err)
	require.NoError(t, c.AddUniformDisk(5, 6, 1, 7))

	placeholder, err := hdulist.NewPrimary(hdulist.PrimaryStructure(8, nil), nil)
	require.NoError(t, err)
	ext, err := c.ImageHDU()
	require.NoError(t, err)
	var buf bytes.Buffer
	require.NoError(t, hdulist.Encode(&buf, placeholder, ext))

	l, err := hdulist.Decode(&buf)
	require.NoError(t, err)
	hdu, err := l.Lookup(hdulist.Name("IMAGE-OI PRIOR IMAGE"))
	require.NoError(t, err)
	got, err := FromHDU(hdu)
	require.NoError(t, err)

	assert.Equal(t, c.Name(), got.Name())
	assert.Equal(t, c.PixelScale(), got.PixelScale())
	assert.Equal(t, c.Pixels(), got.Pixels())

	_, err = FromHDU(l.HDUs()[0])
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeTypeNotSupported))
}

func TestPrimaryHDUWithConflict(t *testing.T) {
	c := newCanvas(t, 4, 4)

	_, err := c.PrimaryHDUWith(header.New(header.Card{Key: "OBSERVER", Value: "me"}))
	require.NoError(t, err)

	_, err = c.PrimaryHDUWith(header.New(header.Card{Key: "HDUNAME", Value: "other"}))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrCodeConflict))
}
