package main

import (
	"github.com/spf13/cobra"
)

var continueCmd = &cobra.Command{
	Use:   "continue [target]",
	Short: "Continue a session by folder path or container name",
	Long: `Attach to a running container and continue its most recent conversation, or the
conversation bound to a named session with -n.

The target is a folder path, a container name or a registered folder name. Without a
target the last used container is addressed.`,
	Example: `  claude-sandbox continue
  claude-sandbox continue ./api -n auth-refactor`,
	Args: cobra.MaximumNArgs(1),
	RunE: runContinueCmd,
}

var resumeCmd = &cobra.Command{
	Use:   "resume [conversation-id]",
	Short: "Resume a specific conversation by ID",
	Long:  `Attach to a running container and resume a conversation. Without an ID Claude's conversation picker opens.`,
	Args:  cobra.MaximumNArgs(1),
	RunE:  runResumeCmd,
}

var shellCmd = &cobra.Command{
	Use:   "shell [target]",
	Short: "Open a shell in a container",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runShell,
}

var (
	continueSession string
	resumeTarget    string
)

func init() {
	continueCmd.Flags().StringVarP(&continueSession, "name", "n", "", "Named session to resume (omit to continue the most recent conversation)")
	resumeCmd.Flags().StringVarP(&resumeTarget, "target", "t", "", "Folder path or container name")
	rootCmd.AddCommand(continueCmd, resumeCmd, shellCmd)
}

func firstArg(args []string) string {
	if len(args) > 0 {
		return args[0]
	}
	return ""
}

func runContinueCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	target := firstArg(args)
	name, err := a.orch.Continue(cmd.Context(), target, continueSession)
	if err != nil {
		return err
	}
	printExit(cmd.OutOrStdout(), name, hintFor(target, name), continueSession)
	return nil
}

func runResumeCmd(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	name, err := a.orch.Resume(cmd.Context(), resumeTarget, firstArg(args))
	if err != nil {
		return err
	}
	printExit(cmd.OutOrStdout(), name, hintFor(resumeTarget, name), "")
	return nil
}

func runShell(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	_, err = a.orch.Shell(cmd.Context(), firstArg(args))
	return err
}

func hintFor(target, name string) string {
	if target != "" {
		return target
	}
	return name
}
