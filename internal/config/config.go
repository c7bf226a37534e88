// Package config loads and applies .vao.yml configuration files for default
// schedules, tool selections, and report settings.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the .vao.yml configuration file. All fields are optional;
// command-line flags take precedence over anything set here.
type Config struct {
	Schedule    string   `yaml:"schedule,omitempty"`
	Tools       []string `yaml:"tools,omitempty"`
	ReportDir   string   `yaml:"report_dir,omitempty"`
	Output      string   `yaml:"output,omitempty"`
	Format      string   `yaml:"format,omitempty"`
	ToolTimeout string   `yaml:"tool_timeout,omitempty"`
	LogLevel    string   `yaml:"log_level,omitempty"`
	LogFormat   string   `yaml:"log_format,omitempty"`
	Listen      string   `yaml:"listen,omitempty"`
}

// Load reads the .vao.yml or .vao.yaml config file from the given directory.
// If dir is a file, its parent directory is used. If no config file is found,
// it returns a zero Config (not an error).
func Load(dir string) (Config, error) {
	if info, err := os.Stat(dir); err == nil && !info.IsDir() {
		dir = filepath.Dir(dir)
	}
	for _, name := range []string{".vao.yml", ".vao.yaml"} {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		if info.Size() > 1<<20 {
			return Config{}, fmt.Errorf("config file too large: %s (%d bytes, max 1 MB)", path, info.Size())
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("reading %s: %w", path, err)
		}
		var cfg Config
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
		return cfg, nil
	}
	return Config{}, nil
}

// ParseToolTimeout converts the configured tool_timeout to a duration,
// returning def when the field is unset.
func (c Config) ParseToolTimeout(def time.Duration) (time.Duration, error) {
	if c.ToolTimeout == "" {
		return def, nil
	}
	d, err := time.ParseDuration(c.ToolTimeout)
	if err != nil {
		return 0, fmt.Errorf("invalid tool_timeout %q: %w", c.ToolTimeout, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("tool_timeout must be positive, got %q", c.ToolTimeout)
	}
	return d, nil
}
