package ui

import (
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/opx/internal/formatter"
)

// Theme defines colors and styles used across the browser. Host apps can
// supply their own theme.
type Theme struct {
	CodeColor      color.Color // Grouped cell text (mnemonics, syntax, gas)
	TextColor      color.Color // Separate cell text (descriptions)
	HeaderFG       color.Color // Table header text
	HeaderBG       color.Color // Table header background
	BorderStyle    string      // Border style (normal|rounded)
	SelectedFG     color.Color // Selected row foreground
	SelectedBG     color.Color // Selected row background
	SeparatorColor color.Color // Separator lines
	AccentColor    color.Color // Search prompt and highlights
	InfoColor      color.Color // Prompt/no-results informational rows
	StatusColor    color.Color // Normal status bar text
	StatusError    color.Color // Error status bar text
	StatusSuccess  color.Color // Success status bar text
	FooterFG       color.Color // Footer text
	FooterBG       color.Color // Footer background
	HelpKey        color.Color // Help key labels
	HelpValue      color.Color // Help value text
}

var (
	defaultThemeOnce sync.Once
	defaultTheme     Theme
	currentTheme     Theme
)

// DefaultTheme returns the palette defined in the embedded default
// configuration, falling back to the built-in palette if the embedded config
// cannot be read.
func DefaultTheme() Theme {
	defaultThemeOnce.Do(func() {
		cfg, err := EmbeddedDefaultConfig()
		if err != nil {
			defaultTheme = fallbackDefaultTheme()
			return
		}

		if len(loadedThemes) == 0 {
			loadedThemes = make(map[string]Theme, len(cfg.Themes))
			base := fallbackDefaultTheme()
			for name, themeCfg := range cfg.Themes {
				loadedThemes[name] = themeFromConfigWithBase(themeCfg, base)
			}
		}

		selected := strings.TrimSpace(cfg.Theme.Default)
		if selected == "" {
			selected = "dark"
		}
		if th, ok := loadedThemes[selected]; ok {
			defaultTheme = th
			return
		}
		defaultTheme = fallbackDefaultTheme()
	})

	return defaultTheme
}

// fallbackDefaultTheme preserves the hard-coded palette for safety.
func fallbackDefaultTheme() Theme {
	return Theme{
		CodeColor:      lipgloss.Color("214"), // amber for literal opcode text
		TextColor:      lipgloss.Color("246"), // muted gray prose
		HeaderFG:       lipgloss.Color("81"),  // cyan header
		HeaderBG:       lipgloss.Color("236"), // charcoal header background
		BorderStyle:    "normal",
		SelectedFG:     lipgloss.Color("250"), // muted light text on selection
		SelectedBG:     lipgloss.Color("24"),  // deep teal selection
		SeparatorColor: lipgloss.Color("238"),
		AccentColor:    lipgloss.Color("81"),  // cyan accent
		InfoColor:      lipgloss.Color("240"), // dim informational rows
		StatusColor:    lipgloss.Color("81"),
		StatusError:    lipgloss.Color("203"), // softer red
		StatusSuccess:  lipgloss.Color("114"), // mint
		FooterFG:       lipgloss.Color("244"),
		FooterBG:       lipgloss.Color("236"),
		HelpKey:        lipgloss.Color("81"),
		HelpValue:      lipgloss.Color("245"),
	}
}

// loadedThemes stores all available themes, populated at startup by
// InitializeThemes() from the embedded default config and user config files.
var loadedThemes = map[string]Theme{}

// SetTheme overrides the global theme.
func SetTheme(t Theme) {
	t.BorderStyle = normalizeBorderStyle(t.BorderStyle)
	currentTheme = t
	formatter.SetTableTheme(formatter.TableColors{
		HeaderFG:       t.HeaderFG,
		HeaderBG:       t.HeaderBG,
		CodeColor:      t.CodeColor,
		TextColor:      t.TextColor,
		SeparatorColor: t.SeparatorColor,
	})
}

// SetThemeByName sets the theme by name from loaded configuration.
// Themes must be initialized first via InitializeThemes().
func SetThemeByName(name string) error {
	if theme, ok := loadedThemes[name]; ok {
		SetTheme(theme)
		return nil
	}
	if len(loadedThemes) == 0 {
		return fmt.Errorf("no themes loaded; call InitializeThemes() before SetThemeByName()")
	}
	return fmt.Errorf("unknown theme %q (available: %s)", name, availableThemeNames())
}

func availableThemeNames() string {
	if len(loadedThemes) == 0 {
		return "(none)"
	}
	names := make([]string, 0, len(loadedThemes))
	for name := range loadedThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// GetTheme returns a theme by name from loaded configuration.
func GetTheme(name string) (Theme, bool) {
	theme, ok := loadedThemes[name]
	return theme, ok
}

// AvailableThemes returns all loaded theme names, sorted.
func AvailableThemes() []string {
	names := make([]string, 0, len(loadedThemes))
	for name := range loadedThemes {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// CurrentTheme returns the currently configured theme.
func CurrentTheme() Theme {
	if currentTheme == (Theme{}) {
		currentTheme = DefaultTheme()
	}
	return currentTheme
}

// ColorValue stores a color token (number or name) and marshals numerics as
// YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: s,
		}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	// Accept both ints and strings; store the literal value.
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is a YAML-friendly theme configuration (colors accept ints or
// strings).
type ThemeConfig struct {
	CodeColor      ColorValue `yaml:"code_color"`
	TextColor      ColorValue `yaml:"text_color"`
	HeaderFG       ColorValue `yaml:"header_fg"`
	HeaderBG       ColorValue `yaml:"header_bg"`
	BorderStyle    string     `yaml:"border_style"`
	SelectedFG     ColorValue `yaml:"selected_fg"`
	SelectedBG     ColorValue `yaml:"selected_bg"`
	SeparatorColor ColorValue `yaml:"separator_color"`
	AccentColor    ColorValue `yaml:"accent_color"`
	InfoColor      ColorValue `yaml:"info_color"`
	StatusColor    ColorValue `yaml:"status_color"`
	StatusError    ColorValue `yaml:"status_error"`
	StatusSuccess  ColorValue `yaml:"status_success"`
	FooterFG       ColorValue `yaml:"footer_fg"`
	FooterBG       ColorValue `yaml:"footer_bg"`
	HelpKey        ColorValue `yaml:"help_key"`
	HelpValue      ColorValue `yaml:"help_value"`
}

// ThemeFromConfig builds a Theme from a ThemeConfig, falling back to
// defaults when fields are empty.
func ThemeFromConfig(cfg ThemeConfig) Theme {
	return themeFromConfigWithBase(cfg, fallbackDefaultTheme())
}

func themeFromConfigWithBase(cfg ThemeConfig, base Theme) Theme {
	th := base
	set := func(val ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.CodeColor, &th.CodeColor)
	set(cfg.TextColor, &th.TextColor)
	set(cfg.HeaderFG, &th.HeaderFG)
	set(cfg.HeaderBG, &th.HeaderBG)
	if cfg.BorderStyle != "" {
		th.BorderStyle = normalizeBorderStyle(cfg.BorderStyle)
	}
	set(cfg.SelectedFG, &th.SelectedFG)
	set(cfg.SelectedBG, &th.SelectedBG)
	set(cfg.SeparatorColor, &th.SeparatorColor)
	set(cfg.AccentColor, &th.AccentColor)
	set(cfg.InfoColor, &th.InfoColor)
	set(cfg.StatusColor, &th.StatusColor)
	set(cfg.StatusError, &th.StatusError)
	set(cfg.StatusSuccess, &th.StatusSuccess)
	set(cfg.FooterFG, &th.FooterFG)
	set(cfg.FooterBG, &th.FooterBG)
	set(cfg.HelpKey, &th.HelpKey)
	set(cfg.HelpValue, &th.HelpValue)
	th.BorderStyle = normalizeBorderStyle(th.BorderStyle)
	return th
}

func colorToColorValue(c color.Color) ColorValue { //nolint:gosec // RGBA values are 16-bit; explicit scaling to 8-bit is safe
	if c == nil {
		return ""
	}
	r, g, b, a := c.RGBA()
	if a == 0 && r == 0 && g == 0 && b == 0 {
		return ""
	}
	// Normalize to 8-bit per channel hex; RGBA returns 16-bit values so divide by 257.
	r8 := r / 257
	g8 := g / 257
	b8 := b / 257
	return ColorValue(fmt.Sprintf("#%02x%02x%02x", r8, g8, b8))
}

// ThemeConfigFromTheme converts a Theme into its YAML-friendly config form.
func ThemeConfigFromTheme(th Theme) ThemeConfig {
	return ThemeConfig{
		CodeColor:      colorToColorValue(th.CodeColor),
		TextColor:      colorToColorValue(th.TextColor),
		HeaderFG:       colorToColorValue(th.HeaderFG),
		HeaderBG:       colorToColorValue(th.HeaderBG),
		BorderStyle:    th.BorderStyle,
		SelectedFG:     colorToColorValue(th.SelectedFG),
		SelectedBG:     colorToColorValue(th.SelectedBG),
		SeparatorColor: colorToColorValue(th.SeparatorColor),
		AccentColor:    colorToColorValue(th.AccentColor),
		InfoColor:      colorToColorValue(th.InfoColor),
		StatusColor:    colorToColorValue(th.StatusColor),
		StatusError:    colorToColorValue(th.StatusError),
		StatusSuccess:  colorToColorValue(th.StatusSuccess),
		FooterFG:       colorToColorValue(th.FooterFG),
		FooterBG:       colorToColorValue(th.FooterBG),
		HelpKey:        colorToColorValue(th.HelpKey),
		HelpValue:      colorToColorValue(th.HelpValue),
	}
}

func normalizeBorderStyle(val string) string {
	v := strings.TrimSpace(strings.ToLower(val))
	switch v {
	case "", "normal", "square":
		return "normal"
	case "rounded", "round":
		return "rounded"
	default:
		return "normal"
	}
}

func borderForStyle(style string) lipgloss.Border {
	switch normalizeBorderStyle(style) {
	case "rounded":
		return lipgloss.RoundedBorder()
	default:
		return lipgloss.NormalBorder()
	}
}

func borderForTheme(th Theme) lipgloss.Border {
	return borderForStyle(th.BorderStyle)
}

// LoadThemeFile reads a YAML theme file and returns a Theme.
func LoadThemeFile(path string) (Theme, error) {
	var cfg ThemeConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Theme{}, err
	}
	return ThemeFromConfig(cfg), nil
}

// InitializeThemes loads all themes from the provided configuration.
// Call at startup, before any SetThemeByName().
func InitializeThemes(cfg *ConfigFile) error {
	if cfg == nil {
		return fmt.Errorf("cannot initialize themes with nil configuration")
	}
	if len(cfg.Themes) == 0 {
		return fmt.Errorf("no themes found in configuration")
	}

	loadedThemes = make(map[string]Theme)
	for name, themeCfg := range cfg.Themes {
		loadedThemes[name] = ThemeFromConfig(themeCfg)
	}

	// Ensure at least a "dark" theme exists as fallback.
	if _, ok := loadedThemes["dark"]; !ok {
		loadedThemes["dark"] = DefaultTheme()
	}

	return nil
}
