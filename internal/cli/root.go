package cli

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/imageoi/pkg/buildinfo"
	"github.com/matzehuels/imageoi/pkg/errors"
)

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	build := buildinfo.Get()
	root := &cobra.Command{
		Use:   appName,
		Short: "imageoi manages image reconstruction input files",
		Long: `imageoi creates and edits the input files of optical interferometric image
reconstruction programs. An input file bundles the OIFITS data with the
initial and prior images and the reconstruction parameters.`,
		Version:           build.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(build.Template())
	c.addGlobalFlags(root)

	root.AddCommand(c.createCommand())
	root.AddCommand(c.copyInitCommand())
	root.AddCommand(c.copyPriorCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.generateCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// ImgenCommand returns the generate command as the root of the
// stand-alone model image generator.
func (c *CLI) ImgenCommand() *cobra.Command {
	build := buildinfo.Get()
	cmd := c.generateCommand()
	cmd.Use = "imgen IMAGEFILE [NAXIS1 PIXELSIZE]"
	cmd.Version = build.Version
	cmd.SilenceUsage = true
	cmd.SilenceErrors = true
	cmd.PersistentPreRunE = c.setup
	cmd.SetVersionTemplate(build.Template())
	c.addGlobalFlags(cmd)
	registerCompletions(cmd)
	return cmd
}

func (c *CLI) addGlobalFlags(cmd *cobra.Command) {
	cmd.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	cmd.PersistentFlags().BoolVarP(&c.quiet, "quiet", "q", false, "only log errors")
	cmd.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/imageoi/config.toml)")
}

// setup runs before every command: it applies the log level, loads the
// config file and routes library events to the logger.
func (c *CLI) setup(cmd *cobra.Command, _ []string) error {
	if c.verbose && c.quiet {
		return errors.New(errors.ErrCodeInvalidOption, "--verbose and --quiet cannot be combined")
	}
	switch {
	case c.quiet:
		c.SetLogLevel(log.ErrorLevel)
	case c.verbose:
		c.SetLogLevel(log.DebugLevel)
	}

	cfg, err := loadConfig(c.configPath)
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.path != "" {
		c.Logger.Debug("loaded config", "path", cfg.path)
	}

	bindHooks(c.Logger)
	cmd.SetContext(withLogger(cmd.Context(), c.Logger))
	return nil
}
