package cli

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/matzehuels/imageoi/pkg/canvas"
	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/model"
	"github.com/matzehuels/imageoi/pkg/wcs"
)

// modelFlags holds the flags shared by commands that render a model image.
type modelFlags struct {
	opts    model.Options
	ldAlpha float64
	wcs     []string
}

func (m *modelFlags) register(fs *pflag.FlagSet) {
	fs.VarP(model.NewTypeValue(&m.opts.Type, model.DefaultType), "modeltype", "t",
		"model type: blank, dirac, uniform, gaussian, ld")
	fs.Float64VarP(&m.opts.Width, "modelwidth", "w", model.DefaultWidth, "model width /mas (diameter or FWHM)")
	fs.Float64Var(&m.ldAlpha, "ldalpha", model.DefaultLDAlpha, "limb darkening exponent of the ld model")
	fs.StringArrayVar(&m.wcs, "wcs", nil, "coordinate option key=v1,v2 (ctype, crpix, crval, cunit, cdelt), repeatable")
}

// resolve returns the model options, taking config defaults for flags
// that were not given.
func (m *modelFlags) resolve(fs *pflag.FlagSet, cfg *Config) model.Options {
	o := m.opts
	if !fs.Changed("modeltype") && cfg.Model.Type != "" {
		o.Type = cfg.Model.Type
	}
	if !fs.Changed("modelwidth") && cfg.Model.Width != 0 {
		o.Width = cfg.Model.Width
	}
	switch {
	case fs.Changed("ldalpha"):
		alpha := m.ldAlpha
		o.LDAlpha = &alpha
	case cfg.Model.LDAlpha != nil:
		o.LDAlpha = cfg.Model.LDAlpha
	}
	return o
}

// modelCanvas renders the model selected by the flags of cmd.
func (c *CLI) modelCanvas(cmd *cobra.Command, name string, naxis1 int, pixelSize float64, mf *modelFlags) (*canvas.Canvas, error) {
	opts := mf.resolve(cmd.Flags(), c.Config)
	img, err := model.NewCanvas(name, naxis1, pixelSize, c.Config.Image.CType, opts)
	if err != nil {
		return nil, err
	}
	if len(mf.wcs) > 0 {
		raw, err := wcs.ParseOptions(mf.wcs)
		if err != nil {
			return nil, err
		}
		o, err := wcs.DecodeOptions(raw)
		if err != nil {
			return nil, err
		}
		if err := img.SetWCS(o); err != nil {
			return nil, err
		}
	}
	loggerFromContext(cmd.Context()).Debug("rendered model", "image", name, "model", opts.String(), "sum", img.Sum())
	return img, nil
}

// geometry splits the leading NAXIS1 PIXELSIZE arguments off args. When
// both are absent the config file provides them.
func (c *CLI) geometry(args []string) (naxis1 int, pixelSize float64, rest []string, err error) {
	n := 0
	for n < len(args) && !isParam(args[n]) {
		n++
	}
	switch n {
	case 0:
		naxis1, pixelSize = c.Config.Image.Naxis1, c.Config.Image.PixelSize
		if naxis1 == 0 || pixelSize == 0 {
			return 0, 0, nil, errors.New(errors.ErrCodeInvalidInput,
				"NAXIS1 and PIXELSIZE are required unless set in the [image] section of the config file")
		}
	case 2:
		if naxis1, err = parseNaxis(args[0]); err != nil {
			return 0, 0, nil, err
		}
		if pixelSize, err = parsePixelSize(args[1]); err != nil {
			return 0, 0, nil, err
		}
	default:
		return 0, 0, nil, errors.New(errors.ErrCodeInvalidInput,
			"expected NAXIS1 PIXELSIZE, got %d positional values", n)
	}
	return naxis1, pixelSize, args[n:], nil
}

// refuseExisting fails early when path exists and overwrite is off.
func refuseExisting(path string, overwrite bool) error {
	if overwrite {
		return nil
	}
	if _, err := os.Stat(path); err == nil {
		return errors.New(errors.ErrCodeFileExists, "not creating %s as it already exists", path)
	}
	return nil
}
