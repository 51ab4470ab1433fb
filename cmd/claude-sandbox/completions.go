package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var completionsCmd = &cobra.Command{
	Use:   "completions <bash|zsh|fish|powershell>",
	Short: "Generate shell completions",
	Example: `  claude-sandbox completions bash > /etc/bash_completion.d/claude-sandbox
  claude-sandbox completions zsh > "${fpath[1]}/_claude-sandbox"`,
	Args:      cobra.ExactArgs(1),
	ValidArgs: []string{"bash", "zsh", "fish", "powershell"},
	RunE:      runCompletions,
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(completionsCmd)
}

func runCompletions(cmd *cobra.Command, args []string) error {
	out := cmd.OutOrStdout()
	switch args[0] {
	case "bash":
		return rootCmd.GenBashCompletionV2(out, true)
	case "zsh":
		return rootCmd.GenZshCompletion(out)
	case "fish":
		return rootCmd.GenFishCompletion(out, true)
	case "powershell":
		return rootCmd.GenPowerShellCompletionWithDesc(out)
	default:
		return fmt.Errorf("unsupported shell %q", args[0])
	}
}
