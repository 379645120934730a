// Package model renders simple model images used to start or regularize
// an image reconstruction.
//
// A model is one centered component whose width is given in
// milliarcseconds. It is rendered with unit flux onto a square canvas:
//
//	opts := model.Options{Type: model.TypeUniform, Width: 2.5}
//	img, err := model.NewCanvas("IMAGE-OI INITIAL IMAGE", 64, 0.25, nil, opts)
package model

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/matzehuels/imageoi/pkg/canvas"
	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/wcs"
)

// =============================================================================
// Default Values
// =============================================================================

const (
	// DefaultWidth is the default component width in milliarcseconds.
	DefaultWidth = 10.0

	// DefaultLDAlpha is the default limb darkening exponent.
	DefaultLDAlpha = 0.5
)

// Model types.
const (
	TypeBlank    = "blank"
	TypeDirac    = "dirac"
	TypeUniform  = "uniform"
	TypeGaussian = "gaussian"
	TypeLD       = "ld"
)

// DefaultType is the default model type.
const DefaultType = TypeBlank

// DefaultCType is the coordinate type written for both image axes.
var DefaultCType = []string{"RA", "DEC"}

// ValidTypes is the set of supported model types.
var ValidTypes = map[string]bool{
	TypeBlank:    true,
	TypeDirac:    true,
	TypeUniform:  true,
	TypeGaussian: true,
	TypeLD:       true,
}

// TypeNames returns the supported model types in sorted order.
func TypeNames() []string {
	names := make([]string, 0, len(ValidTypes))
	for t := range ValidTypes {
		names = append(names, t)
	}
	sort.Strings(names)
	return names
}

// ValidateType checks that a model type is valid.
func ValidateType(t string) error {
	if !ValidTypes[t] {
		return errors.New(errors.ErrCodeInvalidOption,
			"invalid model type: %q (must be one of: %s)", t, strings.Join(TypeNames(), ", "))
	}
	return nil
}

// =============================================================================
// Options
// =============================================================================

// Options describes a model image. Zero fields take their defaults. LDAlpha
// is a pointer so that an explicit 0 (no darkening) differs from unset.
type Options struct {
	Type    string   `json:"type,omitempty" yaml:"type,omitempty" toml:"type"`
	Width   float64  `json:"width,omitempty" yaml:"width,omitempty" toml:"width"`
	LDAlpha *float64 `json:"ldalpha,omitempty" yaml:"ldalpha,omitempty" toml:"ldalpha"`
}

// SetDefaults fills unset fields.
func (o *Options) SetDefaults() {
	if o.Type == "" {
		o.Type = DefaultType
	}
	if o.Width == 0 {
		o.Width = DefaultWidth
	}
	if o.LDAlpha == nil && o.Type == TypeLD {
		alpha := DefaultLDAlpha
		o.LDAlpha = &alpha
	}
}

// Alpha returns the limb darkening exponent, DefaultLDAlpha when unset.
func (o Options) Alpha() float64 {
	if o.LDAlpha == nil {
		return DefaultLDAlpha
	}
	return *o.LDAlpha
}

// Validate sets defaults and checks the options.
func (o *Options) Validate() error {
	o.SetDefaults()
	if err := ValidateType(o.Type); err != nil {
		return err
	}
	if !(o.Width > 0) || math.IsInf(o.Width, 0) {
		return errors.New(errors.ErrCodeInvalidOption, "model width must be positive, got %g", o.Width)
	}
	if alpha := o.Alpha(); !(alpha >= 0) || math.IsInf(alpha, 0) {
		return errors.New(errors.ErrCodeInvalidOption, "limb darkening alpha must be >= 0, got %g", alpha)
	}
	return nil
}

// Component returns the component of the model centered on (x, y) for a
// pixel scale in milliarcseconds. A blank model has no component.
func (o Options) Component(x, y, pixelScale float64) (canvas.Component, error) {
	if err := o.Validate(); err != nil {
		return nil, err
	}
	width := o.Width / pixelScale
	switch o.Type {
	case TypeDirac:
		return canvas.NewDirac(x, y, 1)
	case TypeUniform:
		return canvas.NewUniformDisk(x, y, 1, width)
	case TypeGaussian:
		return canvas.NewGaussian(x, y, 1, width)
	case TypeLD:
		return canvas.NewLimbDarkenedDisk(x, y, 1, width, o.Alpha())
	}
	return nil, nil
}

// Render adds the model, centered on the grid, to c.
func (o Options) Render(c *canvas.Canvas) error {
	n1, n2 := c.Dims()
	comp, err := o.Component(float64(n1)/2, float64(n2)/2, c.PixelScale())
	if err != nil || comp == nil {
		return err
	}
	return c.Add(comp)
}

func (o Options) String() string {
	switch o.Type {
	case TypeBlank, "":
		return TypeBlank
	case TypeDirac:
		return TypeDirac
	case TypeLD:
		return fmt.Sprintf("%s width=%gmas alpha=%g", o.Type, o.Width, o.Alpha())
	}
	return fmt.Sprintf("%s width=%gmas", o.Type, o.Width)
}

// NewCanvas returns a square canvas of naxis1 pixels of pixelScale
// milliarcseconds holding the rendered model. A nil ctype labels the axes
// with DefaultCType.
func NewCanvas(name string, naxis1 int, pixelScale float64, ctype []string, opts Options) (*canvas.Canvas, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	c, err := canvas.New(name, naxis1, naxis1, pixelScale, nil)
	if err != nil {
		return nil, err
	}
	if ctype == nil {
		ctype = DefaultCType
	}
	if err := c.SetWCS(wcs.Options{CType: ctype}); err != nil {
		return nil, err
	}
	if err := opts.Render(c); err != nil {
		return nil, err
	}
	return c, nil
}
