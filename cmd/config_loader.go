package cmd

import (
	"fmt"
	"strings"

	"github.com/oakwood-commons/opx/internal/ui"
)

// loadMergedConfig loads the embedded default configuration and overlays the
// user file at cfgPath, if any, on top of it.
func loadMergedConfig(cfgPath string) (ui.ConfigFile, error) {
	cfg, err := ui.EmbeddedDefaultConfig()
	if err != nil {
		return cfg, fmt.Errorf("load default config: %w", err)
	}
	if cfg.Theme.Default == "" || len(cfg.Themes) == 0 {
		return cfg, fmt.Errorf("default config is missing required theme defaults")
	}
	if cfgPath == "" {
		return cfg, nil
	}
	user, err := ui.LoadConfigFile(cfgPath)
	if err != nil {
		return cfg, err
	}
	return mergeConfig(cfg, user), nil
}

// mergeConfig overlays set user values on top of the defaults. Themes merge
// per name so a user file can recolor a single field without restating the
// whole palette. Version and go_version come from build info, never from a
// config file.
func mergeConfig(base, user ui.ConfigFile) ui.ConfigFile {
	cfg := base
	cfg.Themes = make(map[string]ui.ThemeConfig, len(base.Themes))
	for name, theme := range base.Themes {
		cfg.Themes[name] = theme
	}

	if user.About.Name != "" {
		cfg.About.Name = user.About.Name
	}
	if user.About.Description != "" {
		cfg.About.Description = user.About.Description
	}
	if user.About.License != "" {
		cfg.About.License = user.About.License
	}
	if user.About.RepositoryURL != "" {
		cfg.About.RepositoryURL = user.About.RepositoryURL
	}
	if user.About.DocumentationURL != "" {
		cfg.About.DocumentationURL = user.About.DocumentationURL
	}
	if user.About.Author != "" {
		cfg.About.Author = user.About.Author
	}
	if user.Theme.Default != "" {
		cfg.Theme.Default = user.Theme.Default
	}
	if user.Features.KeyMode != nil {
		cfg.Features.KeyMode = user.Features.KeyMode
	}
	if user.Search.DebounceMs != nil {
		cfg.Search.DebounceMs = user.Search.DebounceMs
	}
	if user.Search.CharLimit != nil {
		cfg.Search.CharLimit = user.Search.CharLimit
	}
	for name, themeCfg := range user.Themes {
		cfg.Themes[name] = mergeThemeConfig(cfg.Themes[name], themeCfg)
	}
	return cfg
}

func mergeThemeConfig(base, override ui.ThemeConfig) ui.ThemeConfig {
	out := base
	apply := func(src ui.ColorValue, dst *ui.ColorValue) {
		if src != "" {
			*dst = src
		}
	}
	if strings.TrimSpace(override.BorderStyle) != "" {
		out.BorderStyle = override.BorderStyle
	}
	apply(override.CodeColor, &out.CodeColor)
	apply(override.TextColor, &out.TextColor)
	apply(override.HeaderFG, &out.HeaderFG)
	apply(override.HeaderBG, &out.HeaderBG)
	apply(override.SelectedFG, &out.SelectedFG)
	apply(override.SelectedBG, &out.SelectedBG)
	apply(override.SeparatorColor, &out.SeparatorColor)
	apply(override.AccentColor, &out.AccentColor)
	apply(override.InfoColor, &out.InfoColor)
	apply(override.StatusColor, &out.StatusColor)
	apply(override.StatusError, &out.StatusError)
	apply(override.StatusSuccess, &out.StatusSuccess)
	apply(override.FooterFG, &out.FooterFG)
	apply(override.FooterBG, &out.FooterBG)
	apply(override.HelpKey, &out.HelpKey)
	apply(override.HelpValue, &out.HelpValue)
	return out
}
