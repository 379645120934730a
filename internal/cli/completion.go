package cli

import (
	"strings"

	"github.com/spf13/cobra"

	pio "github.com/matzehuels/imageoi/pkg/io"
	"github.com/matzehuels/imageoi/pkg/model"
)

// fitsExts are the extensions offered for FITS file arguments.
var fitsExts = []string{"fits", "fit", "fts", "oifits"}

// completionCommand creates the completion command for generating shell completions.
func (c *CLI) completionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Long: `Generate shell completion scripts for imageoi.

File arguments complete to FITS files (.fits, .fit, .fts, .oifits),
--modeltype to the model types and show --format/--section to their
values. KEY=VALUE parameters are not completed.

  $ source <(imageoi completion bash)
  $ imageoi completion zsh > "${fpath[1]}/_imageoi"
  $ imageoi completion fish > ~/.config/fish/completions/imageoi.fish
  PS> imageoi completion powershell | Out-String | Invoke-Expression
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(out)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}

// registerCompletions attaches argument and flag completions to root and
// every command below it.
func registerCompletions(root *cobra.Command) {
	flags := map[string]cobra.CompletionFunc{
		"modeltype": fixedValues(model.TypeNames()...),
		"format":    fixedValues(formatText, formatTable, pio.FormatJSON, pio.FormatYAML),
		"section":   fixedValues(sectionInput, sectionOutput),
		"from":      fileExts("json", "yaml", "yml"),
		"preview":   fileExts("png"),
		"config":    fileExts("toml"),
	}

	var walk func(cmd *cobra.Command)
	walk = func(cmd *cobra.Command) {
		if !cmd.HasSubCommands() && len(cmd.ValidArgs) == 0 {
			cmd.ValidArgsFunction = fitsArgs
		}
		for name, fn := range flags {
			if cmd.LocalFlags().Lookup(name) != nil {
				_ = cmd.RegisterFlagCompletionFunc(name, fn)
			}
		}
		for _, sub := range cmd.Commands() {
			walk(sub)
		}
	}
	walk(root)
}

// fitsArgs completes positional arguments to FITS files. Parameter
// assignments get no suggestions.
func fitsArgs(_ *cobra.Command, _ []string, toComplete string) ([]cobra.Completion, cobra.ShellCompDirective) {
	if strings.Contains(toComplete, "=") {
		return nil, cobra.ShellCompDirectiveNoFileComp
	}
	return fitsExts, cobra.ShellCompDirectiveFilterFileExt
}

func fixedValues(values ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return values, cobra.ShellCompDirectiveNoFileComp
	}
}

func fileExts(exts ...string) cobra.CompletionFunc {
	return func(*cobra.Command, []string, string) ([]cobra.Completion, cobra.ShellCompDirective) {
		return exts, cobra.ShellCompDirectiveFilterFileExt
	}
}
