package canvas

import (
	"math"

	"github.com/matzehuels/imageoi/pkg/errors"
)

// Component is a model brightness distribution that can be rasterized
// onto a pixel grid. At returns the flux contributed to the pixel whose
// center sits at integer coordinates (ix, iy), where ix runs along
// NAXIS1 and iy along NAXIS2. Implementations are pure.
type Component interface {
	Kind() string
	Flux() float64
	At(ix, iy int) float64
}

// Dirac is a point source that lands in a single pixel.
type Dirac struct {
	x, y, flux float64
	ix, iy     int
}

// NewDirac returns a point source at (x, y) pixels. The position is
// rounded to the nearest pixel, halves to even.
func NewDirac(x, y, flux float64) (Dirac, error) {
	if err := checkPosition(x, y, flux); err != nil {
		return Dirac{}, err
	}
	return Dirac{
		x: x, y: y, flux: flux,
		ix: int(math.RoundToEven(x)),
		iy: int(math.RoundToEven(y)),
	}, nil
}

func (d Dirac) Kind() string  { return "dirac" }
func (d Dirac) Flux() float64 { return d.flux }

// Pixel returns the pixel the source falls into.
func (d Dirac) Pixel() (ix, iy int) { return d.ix, d.iy }

func (d Dirac) At(ix, iy int) float64 {
	if ix == d.ix && iy == d.iy {
		return d.flux
	}
	return 0
}

// UniformDisk has constant surface brightness inside its radius. A pixel
// belongs to the disk when its center lies within the radius, edge
// included.
//
// The level is flux divided by the number of lattice points inside the
// disk, so the disk carries exactly flux whenever it fits on the grid.
// A disk too small to cover any pixel center contributes nothing. Disks
// wider than maxLatticeDiameter use the analytic level flux/(πR²).
type UniformDisk struct {
	x, y, flux, diameter float64
	rsq, level           float64
}

// NewUniformDisk returns a disk centered on (x, y) pixels.
func NewUniformDisk(x, y, flux, diameter float64) (UniformDisk, error) {
	if err := checkPosition(x, y, flux); err != nil {
		return UniformDisk{}, err
	}
	if !(diameter > 0) || math.IsInf(diameter, 0) {
		return UniformDisk{}, errors.New(errors.ErrCodeInvalidInput, "disk diameter must be positive, got %g", diameter)
	}
	d := UniformDisk{x: x, y: y, flux: flux, diameter: diameter}
	d.rsq = diameter * diameter / 4
	if diameter > maxLatticeDiameter {
		d.level = flux / (math.Pi * d.rsq)
		return d, nil
	}
	var n int
	eachRow(x, y, d.rsq, func(_ float64, lo, hi int) { n += hi - lo + 1 })
	if n > 0 {
		d.level = flux / float64(n)
	}
	return d, nil
}

func (d UniformDisk) Kind() string      { return "uniform" }
func (d UniformDisk) Flux() float64     { return d.flux }
func (d UniformDisk) Diameter() float64 { return d.diameter }

func (d UniformDisk) At(ix, iy int) float64 {
	if sqDist(ix, iy, d.x, d.y) <= d.rsq {
		return d.level
	}
	return 0
}

// Gaussian is a circular Gaussian whose integral over the infinite plane
// equals its flux.
type Gaussian struct {
	x, y, flux, fwhm float64
	peak, k          float64
}

// NewGaussian returns a Gaussian centered on (x, y) pixels with the
// given full width at half maximum in pixels.
func NewGaussian(x, y, flux, fwhm float64) (Gaussian, error) {
	if err := checkPosition(x, y, flux); err != nil {
		return Gaussian{}, err
	}
	if !(fwhm > 0) || math.IsInf(fwhm, 0) {
		return Gaussian{}, errors.New(errors.ErrCodeInvalidInput, "gaussian fwhm must be positive, got %g", fwhm)
	}
	k := 4 * math.Ln2 / (fwhm * fwhm)
	return Gaussian{
		x: x, y: y, flux: flux, fwhm: fwhm,
		peak: flux * k / math.Pi,
		k:    k,
	}, nil
}

func (g Gaussian) Kind() string  { return "gaussian" }
func (g Gaussian) Flux() float64 { return g.flux }
func (g Gaussian) FWHM() float64 { return g.fwhm }

// Peak returns the central surface brightness.
func (g Gaussian) Peak() float64 { return g.peak }

func (g Gaussian) At(ix, iy int) float64 {
	return g.peak * math.Exp(-g.k*sqDist(ix, iy, g.x, g.y))
}

// LimbDarkenedDisk follows the power law of Hestroffer (1997),
// I(r) = I0 (1 - r²/R²)^(alpha/2). Alpha 0 gives a uniform disk.
// Like UniformDisk, I0 is set from the lattice sum of the profile, or
// from the analytic I0 = flux (alpha+2)/(2πR²) past maxLatticeDiameter.
type LimbDarkenedDisk struct {
	x, y, flux, diameter, alpha float64
	rsq, i0                     float64
}

// NewLimbDarkenedDisk returns a limb-darkened disk centered on (x, y).
func NewLimbDarkenedDisk(x, y, flux, diameter, alpha float64) (LimbDarkenedDisk, error) {
	if err := checkPosition(x, y, flux); err != nil {
		return LimbDarkenedDisk{}, err
	}
	if !(diameter > 0) || math.IsInf(diameter, 0) {
		return LimbDarkenedDisk{}, errors.New(errors.ErrCodeInvalidInput, "disk diameter must be positive, got %g", diameter)
	}
	if !(alpha >= 0) || math.IsInf(alpha, 0) {
		return LimbDarkenedDisk{}, errors.New(errors.ErrCodeInvalidInput, "limb darkening alpha must be >= 0, got %g", alpha)
	}
	d := LimbDarkenedDisk{x: x, y: y, flux: flux, diameter: diameter, alpha: alpha}
	d.rsq = diameter * diameter / 4
	if diameter > maxLatticeDiameter {
		d.i0 = flux * (alpha + 2) / (2 * math.Pi * d.rsq)
		return d, nil
	}
	var sum float64
	eachRow(x, y, d.rsq, func(dy2 float64, lo, hi int) {
		for ix := lo; ix <= hi; ix++ {
			dx := float64(ix) - x
			sum += d.profile(dx*dx + dy2)
		}
	})
	if sum > 0 {
		d.i0 = flux / sum
	}
	return d, nil
}

func (d LimbDarkenedDisk) Kind() string      { return "ld" }
func (d LimbDarkenedDisk) Flux() float64     { return d.flux }
func (d LimbDarkenedDisk) Diameter() float64 { return d.diameter }
func (d LimbDarkenedDisk) Alpha() float64    { return d.alpha }

func (d LimbDarkenedDisk) At(ix, iy int) float64 {
	rsq := sqDist(ix, iy, d.x, d.y)
	if rsq > d.rsq {
		return 0
	}
	return d.i0 * d.profile(rsq)
}

// profile is the unscaled intensity at squared distance rsq.
func (d LimbDarkenedDisk) profile(rsq float64) float64 {
	mu2 := max(1-rsq/d.rsq, 0)
	return math.Pow(mu2, d.alpha/2)
}

// maxLatticeDiameter bounds the disks normalised by their lattice sum.
// Wider disks use the analytic level, which differs from the lattice sum
// by well under 1e-3 relative at this size.
const maxLatticeDiameter = 1024

// eachRow calls fn for every lattice row iy within rsq of (x, y) with the
// squared row offset and the inclusive column span [lo, hi] of lattice
// points inside the circle. The span agrees with sqDist(ix, iy, x, y) <= rsq.
func eachRow(x, y, rsq float64, fn func(dy2 float64, lo, hi int)) {
	r := math.Sqrt(rsq)
	for iy := int(math.Ceil(y - r)); iy <= int(math.Floor(y+r)); iy++ {
		dy := float64(iy) - y
		dy2 := dy * dy
		if dy2 > rsq {
			continue
		}
		w := math.Sqrt(rsq - dy2)
		lo, hi := int(math.Ceil(x-w)), int(math.Floor(x+w))
		for sqDist(lo-1, iy, x, y) <= rsq {
			lo--
		}
		for lo <= hi && sqDist(lo, iy, x, y) > rsq {
			lo++
		}
		for sqDist(hi+1, iy, x, y) <= rsq {
			hi++
		}
		for hi >= lo && sqDist(hi, iy, x, y) > rsq {
			hi--
		}
		if lo <= hi {
			fn(dy2, lo, hi)
		}
	}
}

func sqDist(ix, iy int, x, y float64) float64 {
	dx, dy := float64(ix)-x, float64(iy)-y
	return dx*dx + dy*dy
}

func checkPosition(x, y, flux float64) error {
	for _, v := range []struct {
		name string
		v    float64
	}{{"x", x}, {"y", y}, {"flux", flux}} {
		if math.IsNaN(v.v) || math.IsInf(v.v, 0) {
			return errors.New(errors.ErrCodeInvalidInput, "component %s must be finite, got %g", v.name, v.v)
		}
	}
	return nil
}
