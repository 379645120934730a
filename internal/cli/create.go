package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imageoi/pkg/imaging"
)

type createOpts struct {
	overwrite bool
	model     modelFlags
}

func (c *CLI) createCommand() *cobra.Command {
	var opts createOpts

	cmd := &cobra.Command{
		Use:   "create DATAFILE INPUTFILE [NAXIS1 PIXELSIZE] [KEY=VALUE...]",
		Short: "Create an image reconstruction input file from OIFITS data",
		Long: `Create an image reconstruction input file.

The OI_ tables and descriptive header of DATAFILE are copied into INPUTFILE
together with the default input parameters and a square initial image of
NAXIS1 pixels of PIXELSIZE milliarcseconds. Parameters from the [params]
section of the config file are applied first, then KEY=VALUE arguments.`,
		Example: `  imageoi create data.oifits input.fits 64 0.25
  imageoi create -t gaussian -w 2.5 data.oifits input.fits 64 0.25 MAXITER=500 USE_T3=PHI`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runCreate(cmd, args, &opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.overwrite, "overwrite", "o", false, "overwrite an existing file")
	opts.model.register(cmd.Flags())
	return cmd
}

func (c *CLI) runCreate(cmd *cobra.Command, args []string, opts *createOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	dataFile, inputFile := args[0], args[1]

	naxis1, pixelSize, rest, err := c.geometry(args[2:])
	if err != nil {
		return err
	}
	params, err := parseParams(rest)
	if err != nil {
		return err
	}
	if err := refuseExisting(inputFile, opts.overwrite); err != nil {
		return err
	}

	prog := newProgress(logger)
	f, err := imaging.NewFromData(dataFile)
	if err != nil {
		return err
	}
	logger.Debug("copied data", "file", dataFile, "tables", len(f.DataTables))

	for _, p := range append(c.Config.ParamCards(), params...) {
		if err := f.SetParam(p.Key, p.Value); err != nil {
			return err
		}
	}

	img, err := c.modelCanvas(cmd, imaging.InitImgName, naxis1, pixelSize, &opts.model)
	if err != nil {
		return err
	}
	f.SetInitImg(img)

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.WriteFile(inputFile, opts.overwrite); err != nil {
		return err
	}
	prog.done("Created " + inputFile)

	out := c.output(cmd)
	printSuccess(out, "Created input file")
	printFile(out, inputFile)
	printDetail(out, "%d data tables, %dx%d initial image at %g mas/pixel",
		len(f.DataTables), naxis1, naxis1, pixelSize)
	return nil
}

// output returns the writer for status messages, which --quiet silences.
func (c *CLI) output(cmd *cobra.Command) io.Writer {
	if c.quiet {
		return io.Discard
	}
	return cmd.OutOrStdout()
}
