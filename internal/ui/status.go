package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// StatusModel represents the status bar component
type StatusModel struct {
	ErrMsg        string
	StatusType    string // "error", "success", or ""
	SearchQuery   string // settled search query ("" when browsing the full set)
	CursorIndex   int    // Current cursor position (1-based)
	TotalRows     int    // Rows currently shown in the table
	DatasetSize   int    // Full dataset size
	HelpVisible   bool   // Whether help overlay is visible
	DetailVisible bool   // Whether the detail pane is open
	DetailTitle   string // Title shown while the detail pane is open
	NoColor       bool
	Width         int
}

// NewStatusModel creates a new status model
func NewStatusModel() StatusModel {
	return StatusModel{
		Width: 92, // Default width
	}
}

// Update handles messages for the status component
func (m StatusModel) Update(_ tea.Msg) (StatusModel, tea.Cmd) {
	// Status bar is passive - it just displays state
	return m, nil
}

// View renders the status bar
func (m StatusModel) View() string {
	// Base styling for the status panel; derive from theme and avoid ANSI when no-color.
	baseStyle := lipgloss.NewStyle()
	if !m.NoColor {
		th := CurrentTheme()
		if th.FooterBG != nil {
			baseStyle = baseStyle.Background(th.FooterBG)
		}
		if th.FooterFG != nil {
			baseStyle = baseStyle.Foreground(th.FooterFG)
		}
	}
	statusStyle := baseStyle
	message := ""

	switch {
	case m.ErrMsg != "" && m.StatusType == "success":
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusSuccess)
		message = m.ErrMsg
	case m.ErrMsg != "":
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusError)
		message = m.ErrMsg
	case m.HelpVisible:
		// Show help hint left-justified, no counter
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusColor)
		message = "Help: press Esc to close"
	case m.DetailVisible:
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusColor)
		message = m.DetailTitle
	case m.SearchQuery != "":
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusColor)
		if m.TotalRows > 0 && m.CursorIndex > 0 {
			message = fmt.Sprintf("%d/%d (of %d)", m.CursorIndex, m.TotalRows, m.DatasetSize)
		}
	default:
		statusStyle = statusStyle.Foreground(CurrentTheme().StatusColor)
		if m.TotalRows > 0 && m.CursorIndex > 0 {
			message = fmt.Sprintf("%d/%d", m.CursorIndex, m.TotalRows)
		}
	}

	// Pad the status bar to the window width (fallback to 92 if unknown)
	target := 92
	if m.Width > 0 {
		target = m.Width
	}

	if len(message) > target && target > 3 {
		message = message[:target-3] + "..."
	}

	// Left-justify help and detail titles; right-justify everything else
	msgLen := len(message)
	var padded string
	if m.HelpVisible || m.DetailVisible {
		if msgLen < target {
			padded = message + strings.Repeat(" ", target-msgLen)
		} else {
			padded = message
		}
	} else {
		if msgLen < target {
			padded = strings.Repeat(" ", target-msgLen) + message
		} else {
			padded = message
		}
	}

	return statusStyle.Width(target).Render(padded) + "\n"
}

// SetWidth sets the width of the status bar
func (m *StatusModel) SetWidth(width int) {
	m.Width = width
}
