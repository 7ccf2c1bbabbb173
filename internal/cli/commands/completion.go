package commands

import (
	"github.com/spf13/cobra"
)

// NewCompletionCommand creates the completion command for shell completions
func NewCompletionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion script",
		Long: `Generate shell completion script for blue-eyes.

To load completions:

Bash:

  $ source <(blue-eyes completion bash)

  # To load completions for each session, execute once:
  # Linux:
  $ blue-eyes completion bash > /etc/bash_completion.d/blue-eyes
  # macOS:
  $ blue-eyes completion bash > $(brew --prefix)/etc/bash_completion.d/blue-eyes

Zsh:

  # If shell completion is not already enabled in your environment,
  # you will need to enable it. You can execute the following once:

  $ echo "autoload -U compinit; compinit" >> ~/.zshrc

  # To load completions for each session, execute once:
  $ blue-eyes completion zsh > "${fpath[1]}/_blue-eyes"

  # You will need to start a new shell for this setup to take effect.

Fish:

  $ blue-eyes completion fish | source

  # To load completions for each session, execute once:
  $ blue-eyes completion fish > ~/.config/fish/completions/blue-eyes.fish

PowerShell:

  PS> blue-eyes completion powershell | Out-String | Invoke-Expression

  # To load completions for every new session, run:
  PS> blue-eyes completion powershell > blue-eyes.ps1
  # and source this file from your PowerShell profile.
`,
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			root := cmd.Root()
			out := cmd.OutOrStdout()

			switch args[0] {
			case "bash":
				return root.GenBashCompletionV2(out, true)
			case "zsh":
				return root.GenZshCompletion(out)
			case "fish":
				return root.GenFishCompletion(out, true)
			case "powershell":
				return root.GenPowerShellCompletionWithDesc(out)
			}
			return nil
		},
	}

	return cmd
}
