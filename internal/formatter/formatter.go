// Package formatter renders a dataset for non-interactive output: a themed
// columnar table for terminals, and JSON/YAML/TOML/CSV/list encodings for
// scripts and pipelines.
package formatter

import (
	"image/color"
	"os"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"golang.org/x/term"

	"github.com/oakwood-commons/opx/internal/markup"
)

var (
	defaultHeaderFG  = lipgloss.Color("12")
	defaultHeaderBG  = lipgloss.Color("236")
	defaultCode      = lipgloss.Color("14")
	defaultText      = lipgloss.Color("248")
	defaultSeparator = lipgloss.Color("240")

	headerStyle    lipgloss.Style
	codeStyle      lipgloss.Style
	textStyle      lipgloss.Style
	separatorStyle lipgloss.Style

	// cellMarkup renders separate-bucket cell markup with the active table
	// colors. Rebuilt whenever the theme changes.
	cellMarkup markup.Renderer
)

// TableColors controls the rendered colors for the printed table. Nil fields
// fall back to package defaults (ANSI 256 codes).
type TableColors struct {
	HeaderFG       color.Color
	HeaderBG       color.Color
	CodeColor      color.Color
	TextColor      color.Color
	SeparatorColor color.Color
}

func applyTableTheme(tc TableColors) {
	hfg := tc.HeaderFG
	hbg := tc.HeaderBG
	cc := tc.CodeColor
	tx := tc.TextColor
	sep := tc.SeparatorColor
	if hfg == nil {
		hfg = defaultHeaderFG
	}
	if hbg == nil {
		hbg = defaultHeaderBG
	}
	if cc == nil {
		cc = defaultCode
	}
	if tx == nil {
		tx = defaultText
	}
	if sep == nil {
		sep = defaultSeparator
	}

	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(hfg).Background(hbg)
	codeStyle = lipgloss.NewStyle().Foreground(cc)
	textStyle = lipgloss.NewStyle().Foreground(tx)
	separatorStyle = lipgloss.NewStyle().Foreground(sep)

	styles := markup.DefaultStyles()
	styles.Text = styles.Text.Foreground(tx)
	styles.Code = styles.Code.Foreground(cc)
	cellMarkup = markup.NewTerm(styles)
}

// SetTableTheme overrides the global table styles. Callers can pass nil
// fields to fall back to formatter defaults.
func SetTableTheme(tc TableColors) {
	applyTableTheme(tc)
}

//nolint:gochecknoinits // initialize default table theme for package consumers
func init() {
	applyTableTheme(TableColors{})
}

// flattenCell folds embedded line breaks to spaces so a record value cannot
// break the one-row-per-record layout.
func flattenCell(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", " ")
}

// truncate shortens s to maxLen display columns, adding an ellipsis when
// anything was cut. ANSI sequences and wide runes are measured, not counted.
func truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return s
	}
	if lipgloss.Width(s) <= maxLen {
		return s
	}
	if maxLen < 3 {
		// Too short for an ellipsis: hard cut.
		return ansi.Cut(s, 0, maxLen)
	}
	return ansi.Truncate(s, maxLen, "...")
}

// padRight pads s with trailing spaces to the given display width, truncating
// when it is already wider.
func padRight(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate(s, width)
	}
	return s + strings.Repeat(" ", width-w)
}

// padLeft right-aligns s within the given width, padding with spaces on the left.
func padLeft(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return truncate(s, width)
	}
	return strings.Repeat(" ", width-w) + s
}

// getTerminalWidth returns the terminal width, or a default if detection fails
func getTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return 120 // sensible default
	}
	return width
}
