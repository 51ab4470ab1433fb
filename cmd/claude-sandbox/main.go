// Package main provides the claude-sandbox CLI.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	sandbox "github.com/everydev1618/claude-sandbox"
	"github.com/everydev1618/claude-sandbox/container"
	"github.com/everydev1618/claude-sandbox/internal/history"
	"github.com/everydev1618/claude-sandbox/internal/log"
	"github.com/everydev1618/claude-sandbox/internal/prompt"
)

var (
	version = "dev"
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "claude-sandbox",
	Short: "Run Claude Code in per-project Docker containers",
	Long: `claude-sandbox runs Claude Code inside Docker containers, one per set of project
folders. Containers are reused across invocations, named sessions survive container
recreation, and all state lives under ~/.claude-sandbox (override with CLAUDE_SANDBOX_CONFIG).`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Enable debug logging")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%s %v\n", errorStyle.Render("Error:"), err)
		os.Exit(1)
	}
}

// app is everything a command needs to talk to Docker and the config root.
type app struct {
	store    *sandbox.Store
	settings sandbox.Settings
	engine   *container.Manager
	history  *history.Store
	orch     *sandbox.Orchestrator
}

// loadConfig resolves the config root and settings, and applies the log level.
func loadConfig() (*sandbox.Store, sandbox.Settings, error) {
	store, err := sandbox.OpenDefaultStore()
	if err != nil {
		return nil, sandbox.Settings{}, err
	}
	settings, err := sandbox.LoadSettings(store.Layout().Root)
	if err != nil {
		return nil, settings, err
	}
	if settings.LogLevel != "" {
		log.SetLevel(settings.LogLevel)
	}
	if verbose {
		log.SetLevel("debug")
	}
	return store, settings, nil
}

func newApp(cmd *cobra.Command, opts ...sandbox.Option) (*app, error) {
	store, settings, err := loadConfig()
	if err != nil {
		return nil, err
	}
	if err := store.Layout().EnsureHome(); err != nil {
		return nil, err
	}

	a := &app{
		store:    store,
		settings: settings,
		engine:   container.NewManager(container.WithDockerBinary(settings.DockerBinary)),
	}

	base := []sandbox.Option{
		sandbox.WithSettings(settings),
		sandbox.WithOutput(cmd.OutOrStdout()),
		sandbox.WithConfirmer(prompt.Terminal()),
	}
	if h, err := history.Open(store.Layout().HistoryPath()); err != nil {
		log.Warn().Err(err).Msg("history unavailable")
	} else {
		a.history = h
		base = append(base, sandbox.WithRecorder(h))
	}
	a.orch = sandbox.New(a.engine, store, append(base, opts...)...)
	return a, nil
}

func (a *app) Close() {
	if a.history != nil {
		a.history.Close()
	}
	a.engine.Close()
}
