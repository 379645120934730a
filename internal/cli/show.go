package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/matzehuels/imageoi/pkg/canvas"
	"github.com/matzehuels/imageoi/pkg/errors"
	"github.com/matzehuels/imageoi/pkg/header"
	"github.com/matzehuels/imageoi/pkg/imaging"
	pio "github.com/matzehuels/imageoi/pkg/io"
)

const (
	formatText  = "text"
	formatTable = "table"

	sectionInput  = "input"
	sectionOutput = "output"
)

var validShowFormats = map[string]bool{
	formatText: true, formatTable: true, pio.FormatJSON: true, pio.FormatYAML: true,
}

type showOpts struct {
	format  string
	section string
	preview string
}

func (c *CLI) showCommand() *cobra.Command {
	opts := showOpts{format: formatText, section: sectionInput}

	cmd := &cobra.Command{
		Use:   "show INPUTFILE",
		Short: "List the parameters of an input or output file",
		Long: `List the parameters of an image reconstruction input or output file.

The text and table formats list input and output parameters. The json and
yaml formats export one parameter section, chosen with --section, in the
format read by "imageoi edit --from".`,
		Example: `  imageoi show input.fits
  imageoi show output.fits --format table
  imageoi show input.fits --format yaml > params.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !validShowFormats[opts.format] {
				return errors.New(errors.ErrCodeInvalidOption,
					"invalid format: %s (must be 'text', 'table', 'json' or 'yaml')", opts.format)
			}
			if opts.section != sectionInput && opts.section != sectionOutput {
				return errors.New(errors.ErrCodeInvalidOption,
					"invalid section: %s (must be 'input' or 'output')", opts.section)
			}
			return c.runShow(cmd, args[0], &opts)
		},
	}

	cmd.Flags().StringVarP(&opts.format, "format", "f", opts.format, "output format: text, table, json, yaml")
	cmd.Flags().StringVar(&opts.section, "section", opts.section, "parameter section for json and yaml: input, output")
	cmd.Flags().StringVar(&opts.preview, "preview", "", "also render the initial image to this PNG file")
	return cmd
}

func (c *CLI) runShow(cmd *cobra.Command, inputFile string, opts *showOpts) error {
	f, err := imaging.Open(inputFile)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()

	switch opts.format {
	case formatText:
		fmt.Fprint(out, f.String())
	case formatTable:
		writeTables(out, f)
	default:
		h := f.InParam
		if opts.section == sectionOutput {
			if f.OutParam == nil {
				return errors.New(errors.ErrCodeNotFound, "%s has no output parameters", inputFile)
			}
			h = f.OutParam
		}
		if err := pio.WriteParams(out, h, opts.format); err != nil {
			return err
		}
	}

	if opts.preview != "" {
		if f.InitImg() == nil {
			return errors.New(errors.ErrCodeInvalidInput, "%s has no initial image to preview", inputFile)
		}
		if err := writePreview(f.InitImg(), opts.preview); err != nil {
			return err
		}
		loggerFromContext(cmd.Context()).Info("Wrote preview", "file", opts.preview)
	}
	return nil
}

func writeTables(w io.Writer, f *imaging.File) {
	sections := []struct {
		name string
		h    *header.Header
	}{
		{imaging.InputParamName, f.InParam},
		{imaging.OutputParamName, f.OutParam},
	}
	for _, s := range sections {
		if s.h == nil {
			continue
		}
		fmt.Fprintln(w, StyleTitle.Render(s.name))
		fmt.Fprintln(w, paramTable(s.h))
	}
	if img := f.InitImg(); img != nil {
		printImage(w, img)
	}
	if img := f.PriorImg(); img != nil {
		printImage(w, img)
	}
}

func printImage(w io.Writer, img *canvas.Canvas) {
	n1, n2 := img.Dims()
	fmt.Fprintln(w, StyleTitle.Render(img.Name()))
	printDetail(w, "%dx%d pixels of %g mas, total flux %g", n1, n2, img.PixelScale(), img.Sum())
}
