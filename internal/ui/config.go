package ui

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// AboutConfig contains application metadata. Version and GoVersion are
// populated at runtime from build info.
type AboutConfig struct {
	Name             string `yaml:"name,omitempty"`
	Description      string `yaml:"description,omitempty"`
	Version          string `yaml:"version,omitempty"`
	GoVersion        string `yaml:"go_version,omitempty"`
	License          string `yaml:"license,omitempty"`
	RepositoryURL    string `yaml:"repository_url,omitempty"`
	DocumentationURL string `yaml:"documentation_url,omitempty"`
	Author           string `yaml:"author,omitempty"`
}

// ThemeSelectionConfig holds theme selection configuration.
type ThemeSelectionConfig struct {
	Default string `yaml:"default,omitempty"`
}

// FeaturesConfig holds feature flags for UI features.
type FeaturesConfig struct {
	KeyMode *string `yaml:"key_mode,omitempty"`
}

// SearchSettingsConfig holds search behavior settings.
type SearchSettingsConfig struct {
	// DebounceMs is the quiet period after the last keystroke before the
	// filter runs. Default: 500.
	DebounceMs *int `yaml:"debounce_ms,omitempty"`
	// CharLimit caps the search input length. Default: 500.
	CharLimit *int `yaml:"char_limit,omitempty"`
}

// AppConfig holds application-level configuration (not UI-specific).
type AppConfig struct {
	About AboutConfig `yaml:"about"`
}

// Config holds UI-specific configuration.
type Config struct {
	Theme    ThemeSelectionConfig   `yaml:"theme"`
	Features FeaturesConfig         `yaml:"features"`
	Search   SearchSettingsConfig   `yaml:"search,omitempty"`
	Themes   map[string]ThemeConfig `yaml:"themes"`
}

// ConfigFile is the flattened view of a full configuration (app + ui
// sections), used internally after parsing.
type ConfigFile struct {
	About    AboutConfig
	Theme    ThemeSelectionConfig
	Features FeaturesConfig
	Search   SearchSettingsConfig
	Themes   map[string]ThemeConfig
}

// ParseConfig decodes YAML with nested app:/ui: sections into a flattened
// ConfigFile.
func ParseConfig(data []byte) (ConfigFile, error) {
	var raw struct {
		App AppConfig `yaml:"app"`
		UI  Config    `yaml:"ui"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return ConfigFile{}, fmt.Errorf("decode config: %w", err)
	}
	cfg := ConfigFile{
		About:    raw.App.About,
		Theme:    raw.UI.Theme,
		Features: raw.UI.Features,
		Search:   raw.UI.Search,
		Themes:   raw.UI.Themes,
	}
	if cfg.Themes == nil {
		cfg.Themes = map[string]ThemeConfig{}
	}
	return cfg, nil
}

// LoadConfigFile reads and parses a user configuration file.
func LoadConfigFile(path string) (ConfigFile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return ConfigFile{}, err
	}
	return ParseConfig(data)
}

// KeyModeFromConfig returns the configured key mode, or the default when
// unset or invalid.
func KeyModeFromConfig(cfg ConfigFile) KeyMode {
	if cfg.Features.KeyMode == nil || !IsValidKeyMode(*cfg.Features.KeyMode) {
		return DefaultKeyMode
	}
	return KeyMode(*cfg.Features.KeyMode)
}

// DebounceFromConfig returns the configured search debounce in milliseconds.
// Returns 0 when unset; the search widget treats 0 as its packaged default.
func DebounceFromConfig(cfg ConfigFile) int {
	if cfg.Search.DebounceMs == nil || *cfg.Search.DebounceMs <= 0 {
		return 0
	}
	return *cfg.Search.DebounceMs
}

// CharLimitFromConfig returns the configured search input length cap.
// Returns 0 when unset; the search widget treats 0 as its packaged default.
func CharLimitFromConfig(cfg ConfigFile) int {
	if cfg.Search.CharLimit == nil || *cfg.Search.CharLimit <= 0 {
		return 0
	}
	return *cfg.Search.CharLimit
}
