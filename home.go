package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
)

// ConfigEnv overrides the configuration root when set.
const ConfigEnv = "CLAUDE_SANDBOX_CONFIG"

// Home returns the sandbox configuration root.
// It defaults to ~/.claude-sandbox but can be overridden with the CLAUDE_SANDBOX_CONFIG environment variable.
func Home() (string, error) {
	if v := os.Getenv(ConfigEnv); v != "" {
		return v, nil
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "", fmt.Errorf("%w: cannot determine home directory", ErrConfigUnavailable)
	}
	return filepath.Join(home, ".claude-sandbox"), nil
}

// Layout names every path under a configuration root.
type Layout struct {
	Root string
}

// LastSessionPath holds the most recently addressed container name.
func (l Layout) LastSessionPath() string { return filepath.Join(l.Root, "last_session") }

// FolderRegistryPath is the folder-set key to container document.
func (l Layout) FolderRegistryPath() string { return filepath.Join(l.Root, "folder_registry.json") }

// SessionsPath is the session name to conversation id document.
func (l Layout) SessionsPath() string { return filepath.Join(l.Root, "named_sessions.json") }

// HistoryPath is the SQLite lifecycle journal.
func (l Layout) HistoryPath() string { return filepath.Join(l.Root, "history.db") }

// DockerfilePath is where the embedded Dockerfile is written before a build.
func (l Layout) DockerfilePath() string { return filepath.Join(l.Root, "Dockerfile") }

// SharedClaudeDir holds credentials and settings mounted into every container.
func (l Layout) SharedClaudeDir() string { return filepath.Join(l.Root, ".claude") }

// SharedConfigDir is mounted at ~/.config inside every container.
func (l Layout) SharedConfigDir() string { return filepath.Join(l.Root, ".config") }

// ClaudeJSONPath is the shared .claude.json mounted into every container.
func (l Layout) ClaudeJSONPath() string { return filepath.Join(l.Root, ".claude.json") }

// ClaudeJSONBackupPath is the shared .claude.json.backup mounted into every container.
func (l Layout) ClaudeJSONBackupPath() string { return filepath.Join(l.Root, ".claude.json.backup") }

// ContainerDir is the isolated state directory of one container.
func (l Layout) ContainerDir(name string) string {
	return filepath.Join(l.Root, "containers", name)
}

// ConversationsDir is the per-container overlay for conversation history.
func (l Layout) ConversationsDir(name string) string {
	return filepath.Join(l.ContainerDir(name), "conversations")
}

// EnsureHome creates the configuration root if it doesn't exist.
func (l Layout) EnsureHome() error {
	if err := os.MkdirAll(l.Root, 0o755); err != nil {
		return fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
	}
	return nil
}

// PrepareContainerState creates the shared and per-container directories and
// files that a new container mounts.
func (l Layout) PrepareContainerState(name string) error {
	for _, dir := range []string{l.SharedClaudeDir(), l.SharedConfigDir(), l.ConversationsDir(name)} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
		}
	}
	for _, path := range []string{l.ClaudeJSONPath(), l.ClaudeJSONBackupPath()} {
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte("{}"), 0o644); err != nil {
			return fmt.Errorf("%w: %v", ErrConfigUnavailable, err)
		}
	}
	return nil
}

// Reset deletes the whole configuration root. It reports whether anything was removed.
func (l Layout) Reset() (bool, error) {
	if _, err := os.Stat(l.Root); os.IsNotExist(err) {
		return false, nil
	}
	if err := os.RemoveAll(l.Root); err != nil {
		return false, err
	}
	return true, nil
}
