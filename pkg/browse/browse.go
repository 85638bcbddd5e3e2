// Package browse exposes the interactive instruction browser for embedding
// in other programs. The opx command is a thin wrapper over this package and
// pkg/opcode.
package browse

import (
	"context"
	"io"
	"strings"

	"github.com/oakwood-commons/opx/internal/formatter"
	"github.com/oakwood-commons/opx/internal/ui"
	"github.com/oakwood-commons/opx/pkg/opcode"
)

// Config holds host-provided settings for a browser session.
type Config struct {
	// ThemeName selects a theme from the embedded set (dark, light, mono).
	// Empty keeps the current theme.
	ThemeName string

	// NoColor renders without ANSI styling.
	NoColor bool

	// InitialQuery pre-fills the search input, as if the user had typed it.
	InitialQuery string

	// KeyMode selects the keybinding mode: "vim" (default), "emacs", or
	// "function". Invalid values fall back to vim.
	KeyMode string

	// DebounceMs is the quiet period after the last keystroke before the
	// filter runs. 0 keeps the built-in default.
	DebounceMs int

	// CharLimit caps the search input length. 0 keeps the built-in default.
	CharLimit int

	// AboutLines replaces the about block at the top of the help overlay.
	AboutLines []string

	// Input and Output override the terminal streams. Hosts that multiplex
	// their own IO, and tests, set these; interactive use leaves them nil.
	Input  io.Reader
	Output io.Writer
}

// DefaultConfig returns a baseline config with the same defaults as the opx
// command: the embedded theme, key mode, and search debounce.
func DefaultConfig() Config {
	cfg := Config{KeyMode: string(ui.DefaultKeyMode)}
	embedded, err := ui.EmbeddedDefaultConfig()
	if err != nil {
		return cfg
	}
	cfg.ThemeName = embedded.Theme.Default
	cfg.KeyMode = string(ui.KeyModeFromConfig(embedded))
	cfg.DebounceMs = ui.DebounceFromConfig(embedded)
	cfg.CharLimit = ui.CharLimitFromConfig(embedded)
	return cfg
}

// Apply pushes process-wide settings (the theme registry) before the program
// starts. Run calls it; hosts only need it directly when rendering outside
// Run, e.g. with RenderTable.
func (c Config) Apply() {
	if strings.TrimSpace(c.ThemeName) == "" {
		return
	}
	if len(ui.AvailableThemes()) == 0 {
		if embedded, err := ui.EmbeddedDefaultConfig(); err == nil {
			_ = ui.InitializeThemes(&embedded)
		}
	}
	if err := ui.SetThemeByName(c.ThemeName); err != nil {
		// Unknown name: start anyway on the default palette.
		ui.SetTheme(ui.DefaultTheme())
	}
}

// Run opens the interactive browser over the dataset and blocks until the
// user quits or ctx is canceled.
func Run(ctx context.Context, ds *opcode.Dataset, cfg Config) error {
	cfg.Apply()

	keyMode := ui.DefaultKeyMode
	if cfg.KeyMode != "" && ui.IsValidKeyMode(cfg.KeyMode) {
		keyMode = ui.KeyMode(cfg.KeyMode)
	}

	return ui.Run(ctx, ds, ui.RunOptions{
		Browser: ui.BrowserOptions{
			KeyMode:    keyMode,
			DebounceMs: cfg.DebounceMs,
			CharLimit:  cfg.CharLimit,
			NoColor:    cfg.NoColor,
			AboutLines: cfg.AboutLines,
		},
		InitialQuery: cfg.InitialQuery,
		Input:        cfg.Input,
		Output:       cfg.Output,
	})
}

// RenderTable renders the dataset as the same table `opx -o table` prints,
// without starting a program. Width 0 detects the terminal width.
func RenderTable(ds *opcode.Dataset, width int, noColor bool) string {
	return formatter.RenderDatasetTable(ds, formatter.TableOptions{Width: width, NoColor: noColor})
}
