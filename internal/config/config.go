// Package config resolves tool settings: the oracle API key and optional
// per-project overrides from .stackshift.yml.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ProjectConfigName is the per-project override file at the project root.
const ProjectConfigName = ".stackshift.yml"

// ProjectConfig holds per-project overrides.
type ProjectConfig struct {
	Convention string   `yaml:"convention"` // "app" or "pages", empty means detect
	Model      string   `yaml:"model"`      // oracle model override
	Ignore     []string `yaml:"ignore"`     // extra scanner ignore directories
}

// LoadProjectConfig reads .stackshift.yml from root. A missing file returns
// the zero config; a malformed file is an error.
func LoadProjectConfig(root string) (*ProjectConfig, error) {
	data, err := os.ReadFile(filepath.Join(root, ProjectConfigName))
	if err != nil {
		if os.IsNotExist(err) {
			return &ProjectConfig{}, nil
		}
		return nil, err
	}

	var cfg ProjectConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", ProjectConfigName, err)
	}
	if cfg.Convention != "" && cfg.Convention != "app" && cfg.Convention != "pages" {
		return nil, fmt.Errorf("invalid convention %q in %s", cfg.Convention, ProjectConfigName)
	}
	return &cfg, nil
}

// APIKey resolves the oracle API key: GEMINI_API_KEY in the environment
// wins, then gemini_api_key from ~/.stackshift/config.yaml.
func APIKey() (string, error) {
	if key := os.Getenv("GEMINI_API_KEY"); key != "" {
		return key, nil
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(filepath.Join(home, ".stackshift"))

	if err := v.ReadInConfig(); err != nil {
		return "", fmt.Errorf("no GEMINI_API_KEY set and no config file found: %w", err)
	}

	key := v.GetString("gemini_api_key")
	if key == "" {
		return "", fmt.Errorf("gemini_api_key not set in %s", v.ConfigFileUsed())
	}
	return key, nil
}
