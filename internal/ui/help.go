package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// HelpModel represents the help overlay component
type HelpModel struct {
	Visible    bool
	NoColor    bool
	Width      int
	AboutTitle string
	AboutLines []string
	AboutAlign string
	KeyMode    KeyMode // Current keybinding mode
}

// NewHelpModel creates a new help model
func NewHelpModel() HelpModel {
	return HelpModel{
		Width:      92, // Default width
		KeyMode:    DefaultKeyMode,
		AboutTitle: "",
		AboutLines: nil,
		AboutAlign: "right",
	}
}

// Update handles messages for the help component
func (m HelpModel) Update(_ tea.Msg) (HelpModel, tea.Cmd) {
	// Help overlay is passive - it just displays when visible
	// Toggle is handled by parent model
	return m, nil
}

// navigationHelpRows returns the navigation keybinding rows based on the key mode.
func navigationHelpRows(keyMode KeyMode) [][]string {
	var rows [][]string
	switch keyMode {
	case KeyModeVim:
		rows = [][]string{
			{"j/k", "navigate up/down"},
			{"l/Enter", "open instruction detail"},
			{"h", "back to the table"},
			{"/", "focus search"},
			{"gg/G", "go to top/bottom"},
			{"y", "copy instruction"},
			{"?", "toggle help"},
			{"q", "quit"},
		}
	case KeyModeEmacs:
		rows = [][]string{
			{"C-n/C-p", "navigate up/down"},
			{"Enter", "open instruction detail"},
			{"C-b", "back to the table"},
			{"C-s", "focus search"},
			{"M-</M->", "go to top/bottom"},
			{"M-w", "copy instruction"},
			{"F1", "toggle help"},
			{"C-q", "quit"},
		}
	case KeyModeFunction:
		rows = [][]string{
			{"↑/↓", "navigate up/down"},
			{"Enter", "open instruction detail"},
			{"Esc", "back to the table"},
			{"F3", "focus search"},
			{"Home/End", "go to top/bottom"},
			{"F5", "copy instruction"},
			{"F1", "toggle help"},
			{"F10", "quit"},
		}
	}
	return rows
}

// View renders the help overlay if visible
func (m HelpModel) View() string {
	if !m.Visible {
		return ""
	}

	navRows := navigationHelpRows(m.KeyMode)

	// Search input keybindings (separate section)
	searchRows := [][]string{
		{"Enter", "move focus to the table"},
		{"Ctrl+C", "quit"},
	}

	// Mode switch hint
	modeHint := keyModeSwitchHint(m.KeyMode)

	leftStyle := lipgloss.NewStyle().PaddingLeft(1)
	rightStyle := lipgloss.NewStyle()
	boxStyle := lipgloss.NewStyle()
	aboutStyle := rightStyle
	if !m.NoColor {
		th := CurrentTheme()
		leftStyle = leftStyle.Foreground(th.HelpKey).Bold(true)
		rightStyle = rightStyle.Foreground(th.HelpValue)
		aboutStyle = aboutStyle.Foreground(th.HelpValue)
		boxStyle = boxStyle.Border(borderForTheme(th)).PaddingLeft(1).PaddingRight(1).AlignVertical(lipgloss.Top)
	} else {
		// In no-color mode still highlight key labels with true black on white
		leftStyle = leftStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
		boxStyle = boxStyle.Border(borderForTheme(CurrentTheme())).PaddingLeft(1).PaddingRight(1).AlignVertical(lipgloss.Top)
	}

	lines := []string{}

	// Optional About section at the top
	if len(m.AboutLines) > 0 {
		alignment := strings.ToLower(m.AboutAlign)
		switch alignment {
		case "center", "middle":
			aboutStyle = aboutStyle.Align(lipgloss.Center)
		case "left":
			aboutStyle = aboutStyle.Align(lipgloss.Left)
		default:
			aboutStyle = aboutStyle.Align(lipgloss.Right)
		}
		if m.Width > 4 {
			aboutStyle = aboutStyle.Width(m.Width - 4)
		}
		for _, l := range m.AboutLines {
			lines = append(lines, aboutStyle.Render(l))
		}
		lines = append(lines, "")
	}

	// Navigation section
	for _, row := range navRows {
		key := leftStyle.Render(fmt.Sprintf("%-16s", row[0]))
		val := rightStyle.Render(row[1])
		lines = append(lines, key+" "+val)
	}

	// Search section
	lines = append(lines, "")
	for _, row := range searchRows {
		key := leftStyle.Render(fmt.Sprintf("%-16s", row[0]))
		val := rightStyle.Render(row[1])
		lines = append(lines, key+" "+val)
	}

	// Mode switch hint at the bottom
	lines = append(lines, "")
	lines = append(lines, rightStyle.Render(modeHint))

	content := strings.Join(lines, "\n")
	box := boxStyle.Render(content)
	// Constrain width a bit so we do not overflow narrow terminals
	if m.Width > 0 && len(box) > m.Width {
		box = boxStyle.Width(m.Width - 2).Render(content)
	}

	return box + "\n"
}

// keyModeSwitchHint returns a footer hint showing the current mode and how to switch.
func keyModeSwitchHint(mode KeyMode) string {
	var current string
	switch mode {
	case KeyModeVim:
		current = "vim"
	case KeyModeEmacs:
		current = "emacs"
	case KeyModeFunction:
		current = "function"
	default:
		current = string(mode)
	}
	return fmt.Sprintf("Mode: %s  (switch with --key-mode vim|emacs|function)", current)
}

// SetWidth sets the width of the help overlay
func (m *HelpModel) SetWidth(width int) {
	m.Width = width
}

// SetVisible sets the visibility of the help overlay
func (m *HelpModel) SetVisible(visible bool) {
	m.Visible = visible
}
