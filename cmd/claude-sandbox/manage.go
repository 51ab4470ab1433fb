package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sandbox "github.com/everydev1618/claude-sandbox"
	"github.com/everydev1618/claude-sandbox/internal/history"
	"github.com/everydev1618/claude-sandbox/internal/prompt"
)

var stopCmd = &cobra.Command{
	Use:   "stop [target|all]",
	Short: "Stop and remove a container",
	Long: `Stop and remove the container for a folder path or container name. With "all",
every container built from the sandbox image is stopped and removed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status [target]",
	Short: "Show status of a container",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runStatus,
}

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Build or rebuild the Docker image",
	Args:  cobra.NoArgs,
	RunE:  runBuild,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Reset Claude's persistent state",
	Long: `Delete the whole configuration root: credentials, conversation history of every
container, the folder and session registries and the lifecycle journal. Containers
themselves are left alone; remove them with "stop all".`,
	Args: cobra.NoArgs,
	RunE: runReset,
}

var (
	buildNoCache bool
	resetForce   bool
)

func init() {
	buildCmd.Flags().BoolVar(&buildNoCache, "no-cache", false, "Force rebuild without cache")
	resetCmd.Flags().BoolVarP(&resetForce, "force", "f", false, "Skip confirmation prompt")
	rootCmd.AddCommand(stopCmd, statusCmd, buildCmd, resetCmd)
}

func runStop(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	out := cmd.OutOrStdout()

	if firstArg(args) == "all" {
		fmt.Fprintln(out, accentStyle.Render("Stopping all Claude sandbox containers..."))
		names, err := a.orch.StopAll(cmd.Context())
		if err != nil {
			return err
		}
		if len(names) == 0 {
			fmt.Fprintln(out, "No containers to stop.")
			return nil
		}
		fmt.Fprintf(out, "%s Stopped and removed %d container(s)\n", checkMark(), len(names))
		return nil
	}

	if _, err := a.orch.Stop(cmd.Context(), firstArg(args)); err != nil {
		return err
	}
	fmt.Fprintf(out, "%s Container stopped and removed\n", checkMark())
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	out := cmd.OutOrStdout()

	st, err := a.orch.Status(cmd.Context(), firstArg(args))
	if err != nil {
		return err
	}
	if !st.Exists {
		fmt.Fprintf(out, "%s Container '%s' does not exist\n", crossMark(), st.Container)
	} else {
		fmt.Fprintf(out, "%s Container '%s': %s\n", stateIcon(st.Running), st.Container, st.Status)
	}
	if err := a.store.Check(); err != nil {
		fmt.Fprintf(out, "%s %v\n", warnMark(), err)
	}
	return nil
}

func runBuild(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.orch.Build(cmd.Context(), buildNoCache, cmd.OutOrStdout()); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), okStyle.Render("Image built successfully!"))
	return nil
}

func runReset(cmd *cobra.Command, _ []string) error {
	store, _, err := loadConfig()
	if err != nil {
		return err
	}
	layout := store.Layout()
	out := cmd.OutOrStdout()

	if !resetForce {
		fmt.Fprintln(out, warnStyle.Render("This will delete all Claude sandbox state and memory."))
		fmt.Fprintf(out, "Config directory: %s\n", layout.Root)
		if n := countHistory(cmd, layout.HistoryPath()); n > 0 {
			fmt.Fprintf(out, "  %-22s %d records\n", "Lifecycle events", n)
		}
	}
	confirm := prompt.New(os.Stdin, out, prompt.IsInteractive(), prompt.WithAssumeYes(resetForce))
	ok, err := confirm.Confirm("Continue?")
	if err != nil {
		return err
	}
	if !ok {
		fmt.Fprintln(out, "Aborted.")
		return nil
	}

	removed, err := layout.Reset()
	if err != nil {
		return fmt.Errorf("%w: %v", sandbox.ErrConfigUnavailable, err)
	}
	if removed {
		fmt.Fprintf(out, "%s State reset successfully\n", checkMark())
	} else {
		fmt.Fprintln(out, "No state to reset.")
	}
	return nil
}

// countHistory returns the number of journaled events (best-effort, returns 0 on error).
func countHistory(cmd *cobra.Command, path string) int {
	if _, err := os.Stat(path); err != nil {
		return 0
	}
	h, err := history.Open(path)
	if err != nil {
		return 0
	}
	defer h.Close()
	n, _ := h.Count(cmd.Context())
	return n
}
