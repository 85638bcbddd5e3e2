package ui

import (
	_ "embed"
	"fmt"
	"sync"
)

//go:embed default_config.yaml
var embeddedDefaultConfig []byte

var (
	embeddedConfigOnce sync.Once
	embeddedConfig     ConfigFile
	embeddedConfigErr  error
)

// DefaultConfigYAML returns a copy of the embedded default config YAML bytes.
func DefaultConfigYAML() []byte {
	return append([]byte(nil), embeddedDefaultConfig...)
}

// EmbeddedDefaultConfig parses and returns the embedded default configuration.
// This is the single source of truth for default settings and themes.
func EmbeddedDefaultConfig() (ConfigFile, error) {
	embeddedConfigOnce.Do(func() {
		if len(embeddedDefaultConfig) == 0 {
			embeddedConfigErr = fmt.Errorf("embedded default config is empty")
			return
		}
		embeddedConfig, embeddedConfigErr = ParseConfig(embeddedDefaultConfig)
	})
	return embeddedConfig, embeddedConfigErr
}
