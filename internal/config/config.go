// Package config handles geomtool configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all geomtool settings.
type Config struct {
	Normals NormalsConfig `yaml:"normals"`
	Export  ExportConfig  `yaml:"export"`
	Logging LoggingConfig `yaml:"logging"`
}

// NormalsConfig selects the default normal calculation.
type NormalsConfig struct {
	Mode   string  `yaml:"mode"`
	MinDot float32 `yaml:"min_dot"`
}

// ExportConfig holds glTF export settings.
type ExportConfig struct {
	Binary      bool   `yaml:"binary"`
	Padding     int    `yaml:"padding"`
	TextureDir  string `yaml:"texture_dir"`
	DoubleSided bool   `yaml:"double_sided"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level   string `yaml:"level"`
	LogFile string `yaml:"log_file"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Normals: NormalsConfig{
			Mode:   "CalculateVertexNormals",
			MinDot: 0.9,
		},
		Export: ExportConfig{
			Binary:  true,
			Padding: 8,
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration with priority defaults < file. An empty path searches the
// working directory for geomtool.yaml.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = findConfigFile()
	}
	if path != "" {
		if err := loadFromFile(cfg, path); err != nil {
			return nil, fmt.Errorf("loading config from %s: %w", path, err)
		}
	}
	return cfg, nil
}

func findConfigFile() string {
	candidates := []string{"./geomtool.yaml"}
	if home, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, filepath.Join(home, ".config", "geomtool", "geomtool.yaml"))
	}
	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// loadFromFile loads config from a YAML file, merging with existing values.
func loadFromFile(cfg *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// SaveTo writes the config to a specific path.
func (c *Config) SaveTo(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}
