package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	sandbox "github.com/everydev1618/claude-sandbox"
	"github.com/everydev1618/claude-sandbox/internal/history"
)

var historyCmd = &cobra.Command{
	Use:   "history [target]",
	Short: "Show container lifecycle history",
	Long: `Show when containers were created, recreated, attached to and stopped, newest first.
With a target only that container's events are shown.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

var historyLimit int

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Maximum number of events (0 for all)")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()
	if a.history == nil {
		return fmt.Errorf("history database %s is unavailable", a.store.Layout().HistoryPath())
	}

	var name string
	if len(args) > 0 {
		if name, err = sandbox.NewResolver(a.store).Resolve(args[0]); err != nil {
			return err
		}
	}
	events, err := a.history.List(cmd.Context(), name, historyLimit)
	if err != nil {
		return err
	}
	renderHistory(cmd.OutOrStdout(), events)
	return nil
}

func renderHistory(w io.Writer, events []history.Event) {
	if len(events) == 0 {
		fmt.Fprintln(w, "No history recorded.")
		return
	}
	t := newTable("TIME", "CONTAINER", "ACTION", "DETAIL")
	for _, e := range events {
		t.Row(e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Container, e.Action, e.Detail)
	}
	fmt.Fprintln(w, t.Render())
}
