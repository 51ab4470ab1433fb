package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	sandbox "github.com/everydev1618/claude-sandbox"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List all Claude sandbox sessions",
	Args:  cobra.NoArgs,
	RunE:  runList,
}

var listOutput string

func init() {
	listCmd.Flags().StringVarP(&listOutput, "output", "o", "table", "Output format: table, json or yaml")
	rootCmd.AddCommand(listCmd)
}

type containerView struct {
	Name    string    `json:"name" yaml:"name"`
	State   string    `json:"state" yaml:"state"`
	Status  string    `json:"status" yaml:"status"`
	Ports   string    `json:"ports,omitempty" yaml:"ports,omitempty"`
	Created time.Time `json:"created" yaml:"created"`
}

type folderView struct {
	Container string    `json:"container" yaml:"container"`
	Folders   []string  `json:"folders" yaml:"folders"`
	Created   time.Time `json:"created" yaml:"created"`
}

type listView struct {
	Containers  []containerView   `json:"containers" yaml:"containers"`
	LastSession string            `json:"last_session" yaml:"last_session"`
	Folders     []folderView      `json:"folders" yaml:"folders"`
	Sessions    map[string]string `json:"sessions" yaml:"sessions"`
	Warnings    []string          `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func newListView(l *sandbox.Listing) listView {
	v := listView{
		Containers:  []containerView{},
		LastSession: l.LastSession,
		Folders:     []folderView{},
		Sessions:    l.Sessions,
		Warnings:    l.Warnings,
	}
	for _, c := range l.Containers {
		v.Containers = append(v.Containers, containerView{Name: c.Name, State: c.State, Status: c.Status, Ports: c.Ports, Created: c.Created})
	}
	for _, f := range l.Folders {
		v.Folders = append(v.Folders, folderView{Container: f.ContainerName, Folders: f.FolderPaths, Created: f.CreatedAt})
	}
	if v.Sessions == nil {
		v.Sessions = map[string]string{}
	}
	return v
}

func runList(cmd *cobra.Command, _ []string) error {
	a, err := newApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	l, err := a.orch.List(cmd.Context())
	if err != nil {
		return err
	}
	return renderList(cmd.OutOrStdout(), listOutput, newListView(l))
}

func renderList(w io.Writer, format string, v listView) error {
	switch strings.ToLower(format) {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		renderListTable(w, v)
		return nil
	default:
		return fmt.Errorf("unknown output format %q (want table, json or yaml)", format)
	}
}

func renderListTable(w io.Writer, v listView) {
	fmt.Fprintln(w, boldStyle.Render("Claude sandbox containers:"))
	if len(v.Containers) == 0 {
		fmt.Fprintln(w, dimStyle.Render("  (none)"))
	} else {
		t := newTable("NAME", "STATUS", "PORTS", "CREATED")
		for _, c := range v.Containers {
			t.Row(c.Name, c.Status, c.Ports, c.Created.Local().Format("2006-01-02 15:04"))
		}
		fmt.Fprintln(w, t.Render())
	}

	fmt.Fprintf(w, "\n%s: %s\n", accentStyle.Render("Last used container"), okStyle.Render(v.LastSession))

	if len(v.Folders) > 0 {
		fmt.Fprintf(w, "\n%s\n", boldStyle.Render("Folder mappings:"))
		for _, f := range v.Folders {
			fmt.Fprintf(w, "  %s %s\n", okStyle.Render(f.Container), dimStyle.Render("("+f.Created.Local().Format("2006-01-02 15:04")+")"))
			for _, p := range f.Folders {
				fmt.Fprintf(w, "    %s %s\n", okStyle.Render("→"), p)
			}
		}
	}

	if len(v.Sessions) > 0 {
		fmt.Fprintf(w, "\n%s\n", boldStyle.Render("Named sessions:"))
		names := make([]string, 0, len(v.Sessions))
		for name := range v.Sessions {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(w, "  %s -> %s\n", okStyle.Render(name), sandbox.ShortID(v.Sessions[name]))
		}
	}

	for _, warning := range v.Warnings {
		fmt.Fprintf(w, "\n%s %s\n", warnMark(), warning)
	}
}
