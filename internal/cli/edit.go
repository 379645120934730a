package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/imageoi/pkg/header"
	"github.com/matzehuels/imageoi/pkg/imaging"
	pio "github.com/matzehuels/imageoi/pkg/io"
)

type editOpts struct {
	from string
}

func (c *CLI) editCommand() *cobra.Command {
	var opts editOpts

	cmd := &cobra.Command{
		Use:   "edit INPUTFILE [KEY=VALUE...]",
		Short: "Change input parameters of an existing file",
		Long: `Change input parameters of INPUTFILE in place.

Parameters are read from the --from file first (JSON or YAML, as written by
"imageoi show --format"), then from KEY=VALUE arguments. An empty value
makes a parameter undefined.`,
		Example: `  imageoi edit input.fits MAXITER=1000 RGL_WGT=1e4
  imageoi edit input.fits --from params.yaml`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runEdit(cmd, args, &opts)
		},
	}

	cmd.Flags().StringVar(&opts.from, "from", "", "read parameters from a .json, .yaml or .yml file")
	return cmd
}

func (c *CLI) runEdit(cmd *cobra.Command, args []string, opts *editOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	inputFile := args[0]

	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}
	if opts.from != "" {
		imported, err := pio.ImportParams(opts.from)
		if err != nil {
			return err
		}
		logger.Debug("imported parameters", "file", opts.from, "count", len(imported))
		params = append(imported, params...)
	}
	if len(params) == 0 {
		logger.Info("No parameters given, leaving file unchanged", "file", inputFile)
		return nil
	}

	prog := newProgress(logger)
	f, err := imaging.Open(inputFile)
	if err != nil {
		return err
	}
	for _, p := range params {
		if err := applyParam(f, p); err != nil {
			return err
		}
	}

	if err := ctx.Err(); err != nil {
		return err
	}
	if err := f.WriteFile(inputFile, true); err != nil {
		return err
	}
	prog.done("Updated " + inputFile)

	out := c.output(cmd)
	printSuccess(out, "Updated %d parameters", len(params))
	printFile(out, inputFile)
	return nil
}

// applyParam sets p on f. Commentary cards are appended and a comment
// given with the card replaces the standard one.
func applyParam(f *imaging.File, p header.Card) error {
	if header.IsAppendKey(p.Key) {
		f.InParam.Add(p.Key, p.Value, p.Comment)
		return nil
	}
	if err := f.SetParam(p.Key, p.Value); err != nil {
		return err
	}
	if p.Comment != "" {
		f.InParam.SetComment(p.Key, p.Comment)
	}
	return nil
}
