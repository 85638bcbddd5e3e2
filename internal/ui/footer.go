package ui

import (
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// FooterModel represents the footer component with key binding hints
type FooterModel struct {
	NoColor    bool
	Width      int
	KeyMode    KeyMode // Current keybinding mode
	DetailOpen bool    // Detail pane open; swap the detail hint for a back hint
}

// NewFooterModel creates a new footer model
func NewFooterModel() FooterModel {
	return FooterModel{
		Width:   92, // Default width
		KeyMode: DefaultKeyMode,
	}
}

// Update handles messages for the footer component
func (m FooterModel) Update(_ tea.Msg) (FooterModel, tea.Cmd) {
	// Footer is passive - it just displays key bindings
	return m, nil
}

// footerEntry pairs a display key with its action label.
type footerEntry struct {
	key   string
	label string
}

func footerEntries(mode KeyMode, detailOpen bool) []footerEntry {
	switch mode {
	case KeyModeEmacs:
		entries := []footerEntry{
			{formatEmacsKey("f1"), "help"},
			{formatEmacsKey("ctrl+s"), "search"},
			{formatEmacsKey("enter"), "detail"},
			{formatEmacsKey("alt+w"), "copy"},
			{formatEmacsKey("ctrl+q"), "quit"},
		}
		if detailOpen {
			entries[2] = footerEntry{formatEmacsKey("ctrl+b"), "back"}
		}
		return entries
	case KeyModeFunction:
		entries := []footerEntry{
			{"F1", "help"},
			{"F3", "search"},
			{"ENTER", "detail"},
			{"F5", "copy"},
			{"F10", "quit"},
		}
		if detailOpen {
			entries[2] = footerEntry{"ESC", "back"}
		}
		return entries
	default: // vim
		entries := []footerEntry{
			{"?", "help"},
			{"/", "search"},
			{"l", "detail"},
			{"y", "copy"},
			{"q", "quit"},
		}
		if detailOpen {
			entries[2] = footerEntry{"h", "back"}
		}
		return entries
	}
}

// View renders the footer with key binding hints for the active mode
func (m FooterModel) View() string {
	fkeyStyle := lipgloss.NewStyle()
	if !m.NoColor {
		// Grey background with white text across the key labels
		fkeyStyle = fkeyStyle.Foreground(lipgloss.Color("15")).Background(lipgloss.Color("240")).Bold(true)
	} else {
		// In no-color mode still highlight keys with true black on white
		fkeyStyle = fkeyStyle.Foreground(lipgloss.Color("#000000")).Background(lipgloss.Color("#ffffff")).Bold(true)
	}

	parts := []string{}
	for _, e := range footerEntries(m.KeyMode, m.DetailOpen) {
		parts = append(parts, fkeyStyle.Render(e.key), e.label)
	}

	return strings.Join(parts, " ")
}

// formatEmacsKey converts internal key format to display format (ctrl+s -> C-s)
func formatEmacsKey(key string) string {
	if key == "" {
		return ""
	}
	// Uppercase F-keys (f1 -> F1)
	if len(key) >= 2 && (key[0] == 'f' || key[0] == 'F') && key[1] >= '0' && key[1] <= '9' {
		return strings.ToUpper(key)
	}
	key = strings.ReplaceAll(key, "ctrl+", "C-")
	key = strings.ReplaceAll(key, "alt+", "M-")
	return key
}

// SetWidth sets the width of the footer (not used for rendering, but kept for consistency)
func (m *FooterModel) SetWidth(width int) {
	m.Width = width
}
