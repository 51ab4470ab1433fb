package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"

	sandbox "github.com/everydev1618/claude-sandbox"
)

func sampleView() listView {
	return listView{
		Containers: []containerView{
			{Name: "claude-app", State: "running", Status: "Up 2 hours", Ports: "3000->3000/tcp", Created: time.Unix(0, 0)},
		},
		LastSession: "claude-app",
		Folders:     []folderView{{Container: "claude-app", Folders: []string{"/src/app"}}},
		Sessions:    map[string]string{"feature": "0123456789abcdef"},
	}
}

func TestRenderListFormats(t *testing.T) {
	v := sampleView()

	var buf bytes.Buffer
	if err := renderList(&buf, "json", v); err != nil {
		t.Fatalf("renderList(json) error = %v", err)
	}
	var decoded listView
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("json output does not parse: %v", err)
	}
	if decoded.LastSession != "claude-app" || decoded.Sessions["feature"] != "0123456789abcdef" {
		t.Errorf("decoded = %+v", decoded)
	}

	buf.Reset()
	if err := renderList(&buf, "yaml", v); err != nil {
		t.Fatalf("renderList(yaml) error = %v", err)
	}
	var doc map[string]any
	if err := yaml.Unmarshal(buf.Bytes(), &doc); err != nil {
		t.Fatalf("yaml output does not parse: %v", err)
	}
	if doc["last_session"] != "claude-app" {
		t.Errorf("yaml last_session = %v", doc["last_session"])
	}

	buf.Reset()
	if err := renderList(&buf, "table", v); err != nil {
		t.Fatal(err)
	}
	for _, want := range []string{"claude-app", "Up 2 hours", "/src/app", "feature", "01234567"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("table output missing %q:\n%s", want, buf.String())
		}
	}

	if err := renderList(&buf, "xml", v); err == nil {
		t.Error("renderList(xml) should fail")
	}
}

func TestPrintBanner(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "app")
	if err := os.Mkdir(dir, 0o755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	printBanner(&buf, sandbox.Session{
		Container:   "claude-app",
		SessionName: "feature",
		Folders:     []string{dir},
		Ports:       []string{"3000:3000"},
	})
	out := buf.String()
	for _, want := range []string{
		"session 'feature'",
		"/home/claude/workspace/app",
		"3000:3000",
		"claude-sandbox continue " + dir + " -n feature",
		"claude-sandbox resume -t " + dir,
	} {
		if !strings.Contains(out, want) {
			t.Errorf("banner missing %q:\n%s", want, out)
		}
	}
}

func TestPrintExit(t *testing.T) {
	var buf bytes.Buffer
	printExit(&buf, "claude-app", ".", "")
	if !strings.Contains(buf.String(), "claude-sandbox continue .") {
		t.Errorf("exit hint = %q", buf.String())
	}
}

func TestInitialPrompt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prompt.txt")
	if err := os.WriteFile(path, []byte("from file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		name, inline, file, want string
	}{
		{"inline wins", "inline", path, "inline"},
		{"file", "", path, "from file"},
		{"none", "", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := initialPrompt(tt.inline, tt.file)
			if err != nil || got != tt.want {
				t.Errorf("initialPrompt() = %q, %v; want %q", got, err, tt.want)
			}
		})
	}

	if _, err := initialPrompt("", filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Error("missing prompt file should fail")
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := []string{"run", "continue", "resume", "shell", "stop", "list", "build", "reset", "status", "history", "completions"}
	for _, name := range want {
		cmd, _, err := rootCmd.Find([]string{name})
		if err != nil || cmd.Name() != name {
			t.Errorf("command %q not registered", name)
		}
	}
}

func TestResetForce(t *testing.T) {
	root := filepath.Join(t.TempDir(), "config")
	t.Setenv(sandbox.ConfigEnv, root)
	if err := os.MkdirAll(filepath.Join(root, "containers"), 0o755); err != nil {
		t.Fatal(err)
	}

	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetArgs([]string{"reset", "--force"})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
		resetForce = false
	})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("reset error = %v", err)
	}
	if _, err := os.Stat(root); !os.IsNotExist(err) {
		t.Errorf("config root still exists: %v", err)
	}
	if !strings.Contains(buf.String(), "State reset successfully") {
		t.Errorf("output = %q", buf.String())
	}
}
