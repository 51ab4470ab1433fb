package main

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	sandbox "github.com/everydev1618/claude-sandbox"
)

var (
	accentStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("39"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
	boldStyle   = lipgloss.NewStyle().Bold(true)
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	hintStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	keyStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("252")).Padding(0, 1)
	cellStyle   = lipgloss.NewStyle().Padding(0, 1)
)

const bannerWidth = 70

func checkMark() string { return okStyle.Render("✓") }
func crossMark() string { return errorStyle.Render("✗") }
func warnMark() string  { return warnStyle.Render("⚠") }

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		BorderStyle(dimStyle).
		Headers(headers...).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})
}

func stateIcon(running bool) string {
	if running {
		return okStyle.Render("●")
	}
	return errorStyle.Render("○")
}

// folderHint is what the operator types to address the container again.
func folderHint(s sandbox.Session) string {
	if len(s.Folders) > 0 {
		return s.Folders[0]
	}
	return s.Container
}

// printBanner is shown right before the interactive program takes the terminal.
func printBanner(w io.Writer, s sandbox.Session) {
	bar := accentStyle.Render("│")
	rule := accentStyle.Render(strings.Repeat("═", bannerWidth))

	fmt.Fprintf(w, "\n%s\n", rule)
	if s.SessionName != "" {
		fmt.Fprintf(w, "%s  Claude Code running session '%s' in container '%s'\n",
			bar, okStyle.Render(s.SessionName), accentStyle.Render(s.Container))
	} else {
		fmt.Fprintf(w, "%s  Claude Code running in container '%s'\n", bar, okStyle.Render(s.Container))
	}

	if folders := sandbox.CanonicalFolders(s.Folders); len(folders) > 0 {
		fmt.Fprintf(w, "%s  %s\n", bar, boldStyle.Render("Mapped folders:"))
		for _, f := range folders {
			fmt.Fprintf(w, "%s    %s %s -> /home/claude/workspace/%s\n", bar, okStyle.Render("→"), f, filepath.Base(f))
		}
	}
	if len(s.Ports) > 0 {
		fmt.Fprintf(w, "%s  %s\n", bar, boldStyle.Render("Exposed ports:"))
		for _, p := range s.Ports {
			fmt.Fprintf(w, "%s    %s %s\n", bar, okStyle.Render("→"), p)
		}
	}

	hint := folderHint(s)
	fmt.Fprintf(w, "%s  Press %s to exit (container keeps running)\n", bar, keyStyle.Render("Ctrl+C"))
	fmt.Fprintf(w, "%s\n", bar)
	fmt.Fprintf(w, "%s  Reconnect with:\n", bar)
	if s.SessionName != "" {
		fmt.Fprintf(w, "%s    %s - resume this named session\n", bar,
			okStyle.Render(fmt.Sprintf("claude-sandbox continue %s -n %s", hint, s.SessionName)))
	} else {
		fmt.Fprintf(w, "%s    %s - continue last conversation\n", bar,
			okStyle.Render("claude-sandbox continue "+hint))
	}
	fmt.Fprintf(w, "%s    %s - resume specific conversation by ID\n", bar,
		okStyle.Render(fmt.Sprintf("claude-sandbox resume -t %s <id>", hint)))
	fmt.Fprintf(w, "%s\n\n", rule)
}

// printExit tells the operator the container outlived the session and how to get back.
func printExit(w io.Writer, container, hint, session string) {
	if session != "" {
		fmt.Fprintf(w, "\n%s Exited session '%s'\n", checkMark(), session)
	} else {
		fmt.Fprintf(w, "\n%s Exited Claude session\n", checkMark())
	}
	fmt.Fprintf(w, "  Container '%s' is still running\n", container)
	if hint == "" {
		return
	}
	if session != "" {
		fmt.Fprintf(w, "  Use %s to resume this session\n",
			hintStyle.Render(fmt.Sprintf("claude-sandbox continue %s -n %s", hint, session)))
	} else {
		fmt.Fprintf(w, "  Use %s to continue\n", hintStyle.Render("claude-sandbox continue "+hint))
	}
}
