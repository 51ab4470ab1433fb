package sandbox

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHomeOverride(t *testing.T) {
	t.Setenv(ConfigEnv, "/tmp/sandbox-config")

	got, err := Home()
	if err != nil || got != "/tmp/sandbox-config" {
		t.Errorf("Home() = %q, %v", got, err)
	}
}

func TestHomeDefault(t *testing.T) {
	home := t.TempDir()
	t.Setenv(ConfigEnv, "")
	t.Setenv("HOME", home)

	got, err := Home()
	if err != nil {
		t.Fatalf("Home() error = %v", err)
	}
	if got != filepath.Join(home, ".claude-sandbox") {
		t.Errorf("Home() = %q", got)
	}
}

func TestPrepareContainerState(t *testing.T) {
	l := Layout{Root: t.TempDir()}
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		t.Fatal(err)
	}
	writeFile(t, l.ClaudeJSONPath(), `{"theme":"dark"}`)

	if err := l.PrepareContainerState("claude-app"); err != nil {
		t.Fatalf("PrepareContainerState() error = %v", err)
	}
	for _, dir := range []string{l.SharedClaudeDir(), l.SharedConfigDir(), l.ConversationsDir("claude-app")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Errorf("%s not created: %v", dir, err)
		}
	}

	data, _ := os.ReadFile(l.ClaudeJSONPath())
	if string(data) != `{"theme":"dark"}` {
		t.Errorf(".claude.json overwritten: %q", data)
	}
	data, _ = os.ReadFile(l.ClaudeJSONBackupPath())
	if string(data) != "{}" {
		t.Errorf(".claude.json.backup = %q, want {}", data)
	}
}

func TestReset(t *testing.T) {
	l := Layout{Root: filepath.Join(t.TempDir(), "config")}

	if removed, err := l.Reset(); err != nil || removed {
		t.Errorf("Reset() on missing root = %v, %v", removed, err)
	}
	if err := l.PrepareContainerState("claude-app"); err != nil {
		t.Fatal(err)
	}
	if removed, err := l.Reset(); err != nil || !removed {
		t.Errorf("Reset() = %v, %v", removed, err)
	}
	if _, err := os.Stat(l.Root); !os.IsNotExist(err) {
		t.Errorf("root still present: %v", err)
	}
}
