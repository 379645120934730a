package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/hdulist"
	"github.com/matzehuels/imageoi/pkg/imaging"
)

type generateOpts struct {
	overwrite bool
	preview   string
	model     modelFlags
}

func (c *CLI) generateCommand() *cobra.Command {
	var opts generateOpts

	cmd := &cobra.Command{
		Use:   "generate IMAGEFILE [NAXIS1 PIXELSIZE]",
		Short: "Generate a model image as a FITS file",
		Long: `Write a square model image of NAXIS1 pixels of PIXELSIZE milliarcseconds
as the primary image of IMAGEFILE. The model is centred and carries unit
flux. The result can be copied into an input file with copyinit or
copyprior.`,
		Example: `  imageoi generate disk.fits 64 0.25 -t uniform -w 3
  imageoi generate star.fits 128 0.1 -t ld -w 2 --ldalpha 0.7 --preview star.png`,
		Args: cobra.RangeArgs(1, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runGenerate(cmd, args, &opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.overwrite, "overwrite", "o", false, "overwrite an existing file")
	cmd.Flags().StringVar(&opts.preview, "preview", "", "also render the image to this PNG file")
	opts.model.register(cmd.Flags())
	return cmd
}

func (c *CLI) runGenerate(cmd *cobra.Command, args []string, opts *generateOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	imageFile := args[0]

	naxis1, pixelSize, rest, err := c.geometry(args[1:])
	if err != nil {
		return err
	}
	if len(rest) > 0 {
		return errors.New(errors.ErrCodeInvalidInput, "unexpected argument %q", rest[0])
	}
	if err := refuseExisting(imageFile, opts.overwrite); err != nil {
		return err
	}

	prog := newProgress(logger)
	img, err := c.modelCanvas(cmd, imaging.InitImgName, naxis1, pixelSize, &opts.model)
	if err != nil {
		return err
	}
	hdu, err := img.PrimaryHDU()
	if err != nil {
		return err
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := hdulist.WriteFile(imageFile, opts.overwrite, hdu); err != nil {
		return err
	}
	prog.done("Generated " + imageFile)

	out := c.output(cmd)
	printSuccess(out, "Generated model image")
	printFile(out, imageFile)

	if opts.preview != "" {
		if err := writePreview(img, opts.preview); err != nil {
			return err
		}
		printFile(out, opts.preview)
	}
	return nil
}
