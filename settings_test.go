package sandbox

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadSettingsDefaults(t *testing.T) {
	s, err := LoadSettings(t.TempDir())
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Image != "claude-code-sandbox" || s.Network != "bridge" {
		t.Errorf("defaults = %+v", s)
	}
	if s.Settle() != 500*time.Millisecond {
		t.Errorf("Settle() = %v, want 500ms", s.Settle())
	}
}

func TestLoadSettingsTOML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "settings.toml"), `
image = "my-sandbox"
memory = "8g"
settle_delay = "2s"
env = ["FOO=bar"]
skip_permissions = true
docker = "/usr/local/bin/docker"
`)
	writeFile(t, filepath.Join(dir, "settings.yaml"), "image: ignored\n")

	s, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.Image != "my-sandbox" {
		t.Errorf("Image = %q, toml should win over yaml", s.Image)
	}
	if s.Memory != "8g" || !s.SkipPermissions || len(s.Env) != 1 {
		t.Errorf("settings = %+v", s)
	}
	if s.Settle() != 2*time.Second {
		t.Errorf("Settle() = %v", s.Settle())
	}
	if s.Network != "bridge" {
		t.Errorf("Network = %q, want default", s.Network)
	}
	if s.DockerBinary != "/usr/local/bin/docker" {
		t.Errorf("DockerBinary = %q", s.DockerBinary)
	}
}

func TestLoadSettingsYAML(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "settings.yml"), "cpus: \"2\"\nlog_level: debug\n")

	s, err := LoadSettings(dir)
	if err != nil {
		t.Fatalf("LoadSettings() error = %v", err)
	}
	if s.CPUs != "2" || s.LogLevel != "debug" {
		t.Errorf("settings = %+v", s)
	}
}

func TestLoadSettingsMalformed(t *testing.T) {
	tests := []struct {
		name string
		file string
		body string
	}{
		{"bad toml", "settings.toml", "image = \n"},
		{"bad yaml", "settings.yaml", "image: [unterminated\n"},
		{"bad delay", "settings.toml", "settle_delay = \"soon\"\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeFile(t, filepath.Join(dir, tt.file), tt.body)
			if _, err := LoadSettings(dir); err == nil {
				t.Error("LoadSettings() should fail")
			} else if !strings.Contains(err.Error(), "settle_delay") && !strings.Contains(err.Error(), tt.file) {
				t.Errorf("error %q should name the file or key", err)
			}
		})
	}
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}
}
