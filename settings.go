package sandbox

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/everydev1618/claude-sandbox/container"
)

// DefaultSettleDelay is how long to wait after creating a container before attaching.
const DefaultSettleDelay = 500 * time.Millisecond

// Settings are operator defaults read from settings.toml or settings.yaml in
// the configuration root.
type Settings struct {
	Image           string   `toml:"image,omitempty" yaml:"image,omitempty"`
	Network         string   `toml:"network,omitempty" yaml:"network,omitempty"`
	Memory          string   `toml:"memory,omitempty" yaml:"memory,omitempty"`
	CPUs            string   `toml:"cpus,omitempty" yaml:"cpus,omitempty"`
	SettleDelay     string   `toml:"settle_delay,omitempty" yaml:"settle_delay,omitempty"`
	LogLevel        string   `toml:"log_level,omitempty" yaml:"log_level,omitempty"`
	Env             []string `toml:"env,omitempty" yaml:"env,omitempty"`
	SkipPermissions bool     `toml:"skip_permissions,omitempty" yaml:"skip_permissions,omitempty"`
	DockerBinary    string   `toml:"docker,omitempty" yaml:"docker,omitempty"`

	settle time.Duration
}

// DefaultSettings returns the settings used when no file is present.
func DefaultSettings() Settings {
	return Settings{
		Image:        container.DefaultImage,
		Network:      container.DefaultNetwork,
		DockerBinary: "docker",
		settle:       DefaultSettleDelay,
	}
}

// Settle returns the parsed settle delay.
func (s Settings) Settle() time.Duration {
	return s.settle
}

// LoadSettings reads settings from root. settings.toml wins over settings.yaml
// and settings.yml. A missing file yields DefaultSettings.
func LoadSettings(root string) (Settings, error) {
	s := DefaultSettings()
	candidates := []struct {
		name      string
		unmarshal func([]byte, any) error
	}{
		{"settings.toml", toml.Unmarshal},
		{"settings.yaml", yaml.Unmarshal},
		{"settings.yml", yaml.Unmarshal},
	}
	for _, c := range candidates {
		path := filepath.Join(root, c.name)
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return s, err
		}
		if err := c.unmarshal(data, &s); err != nil {
			return s, fmt.Errorf("invalid settings file %s: %w", path, err)
		}
		break
	}
	return s.normalize()
}

func (s Settings) normalize() (Settings, error) {
	if s.Image == "" {
		s.Image = container.DefaultImage
	}
	if s.Network == "" {
		s.Network = container.DefaultNetwork
	}
	if s.DockerBinary == "" {
		s.DockerBinary = "docker"
	}
	s.settle = DefaultSettleDelay
	if s.SettleDelay != "" {
		d, err := time.ParseDuration(s.SettleDelay)
		if err != nil || d < 0 {
			return s, fmt.Errorf("invalid settle_delay %q", s.SettleDelay)
		}
		s.settle = d
	}
	return s, nil
}
