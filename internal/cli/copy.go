package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/imageoi/pkg/canvas"
	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/imaging"
)

func (c *CLI) copyInitCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copyinit INPUTFILE IMAGEFILE",
		Short: "Copy the initial image from the primary image of a FITS file",
		Long: `Replace the pixels of the initial image of INPUTFILE with the primary
image of IMAGEFILE, normalised to unit flux. The coordinate cards of the
input file are kept; those of IMAGEFILE are ignored.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCopy(cmd, args[0], args[1], false)
		},
	}
}

func (c *CLI) copyPriorCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "copyprior INPUTFILE IMAGEFILE",
		Short: "Copy the prior image from the primary image of a FITS file",
		Long: `Replace the pixels of the prior image of INPUTFILE with the primary image
of IMAGEFILE, normalised to unit flux. When the input file has no prior
image yet, one is created with the geometry of the initial image.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCopy(cmd, args[0], args[1], true)
		},
	}
}

func (c *CLI) runCopy(cmd *cobra.Command, inputFile, imageFile string, prior bool) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	prog := newProgress(logger)

	f, err := imaging.Open(inputFile)
	if err != nil {
		return err
	}
	initImg := f.InitImg()
	if initImg == nil {
		return errors.New(errors.ErrCodeInvalidInput,
			"input file %s has no initial image, hence pixel size is not defined", inputFile)
	}

	pixels, err := imaging.LoadPrimaryPixels(imageFile)
	if err != nil {
		return err
	}

	target := initImg
	if prior {
		target = f.PriorImg()
		if target == nil {
			n1, n2 := initImg.Dims()
			target, err = canvas.New(imaging.PriorImgName, n1, n2, initImg.PixelScale(), nil)
			if err != nil {
				return err
			}
			logger.Debug("created prior image", "naxis1", n1, "naxis2", n2)
		}
	}

	if err := target.SetImage(pixels); err != nil {
		return err
	}
	if !target.Normalise() {
		logger.Warn("image has no usable flux, copied without normalising", "file", imageFile)
	}
	if prior {
		f.SetPriorImg(target)
	} else {
		f.SetInitImg(target)
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.WriteFile(inputFile, true); err != nil {
		return err
	}
	prog.done("Updated " + inputFile)

	out := c.output(cmd)
	printSuccess(out, "Copied %s to %s", imageFile, target.Name())
	printFile(out, inputFile)
	return nil
}
