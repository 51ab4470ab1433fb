package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	sandbox "github.com/everydev1618/claude-sandbox"
)

var runCmd = &cobra.Command{
	Use:   "run <folder>...",
	Short: "Start Claude Code with mapped folders",
	Long: `Start Claude Code in the container for the given folders.

A running container is attached to. A stopped one is recreated. A missing one is
created, building the image first if needed. Asking for ports on a running container
offers to recreate it with the new mappings.`,
	Example: `  claude-sandbox run .
  claude-sandbox run ./api ./web -p 3000 -p 127.0.0.1:8080:80
  claude-sandbox run . -n auth-refactor -m "continue the auth work"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runRun,
}

var (
	runPrompt     string
	runPromptFile string
	runSession    string
	runContainer  string
	runMemory     string
	runCPUs       string
	runPorts      []string
	runEnv        []string
	runSkipPerms  bool
	runContinue   bool
	runResume     string
)

func init() {
	f := runCmd.Flags()
	f.StringVarP(&runPrompt, "prompt", "m", "", "Initial prompt to send to Claude")
	f.StringVarP(&runPromptFile, "prompt-file", "f", "", "Path to a file containing the initial prompt")
	f.StringVarP(&runSession, "name", "n", "", "Named session (creates a new conversation, resume with continue -n)")
	f.StringVar(&runContainer, "container", "", "Override container name (default: derived from folder names)")
	f.StringVar(&runMemory, "memory", "", `Memory limit (e.g. "4g")`)
	f.StringVar(&runCPUs, "cpus", "", `CPU limit (e.g. "2")`)
	f.StringArrayVarP(&runPorts, "port", "p", nil, "Expose a container port: PORT | HOST:CONTAINER | IP:HOST:CONTAINER")
	f.StringArrayVarP(&runEnv, "env", "e", nil, "Additional environment variable (KEY=VALUE, or KEY to pass through)")
	f.BoolVar(&runSkipPerms, "dangerously-skip-permissions", false, "Run Claude without permission prompts")
	f.BoolVarP(&runContinue, "continue", "c", false, "Continue the most recent conversation")
	f.StringVarP(&runResume, "resume", "r", "", "Resume a specific conversation by ID")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	text, err := initialPrompt(runPrompt, runPromptFile)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	a, err := newApp(cmd, sandbox.WithBeforeAttach(func(s sandbox.Session) {
		printBanner(out, s)
	}))
	if err != nil {
		return err
	}
	defer a.Close()

	res, err := a.orch.Run(cmd.Context(), sandbox.RunRequest{
		Folders:         args,
		Container:       runContainer,
		SessionName:     runSession,
		Ports:           runPorts,
		Memory:          runMemory,
		CPUs:            runCPUs,
		Env:             runEnv,
		Prompt:          text,
		SkipPermissions: runSkipPerms,
		Continue:        runContinue,
		Resume:          runResume,
	})
	if err != nil {
		return err
	}
	if res.Aborted {
		return nil
	}

	if runSession != "" {
		if res.Detected {
			fmt.Fprintf(out, "\n%s Session '%s' saved (conversation: %s)\n", checkMark(), runSession, sandbox.ShortID(res.ConversationID))
		} else {
			fmt.Fprintf(out, "\n%s Could not detect conversation ID for session '%s'\n", warnMark(), runSession)
		}
	}
	printExit(out, res.Container, args[0], runSession)
	return nil
}

// initialPrompt returns the inline prompt, or the contents of file when no inline prompt is given.
func initialPrompt(inline, file string) (string, error) {
	if inline != "" || file == "" {
		return inline, nil
	}
	data, err := os.ReadFile(file)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", file, err)
	}
	return strings.TrimRight(string(data), "\r\n"), nil
}
