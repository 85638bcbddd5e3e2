package table

import (
	"fmt"
	"image/color"

	bubtable "charm.land/bubbles/v2/table"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"
)

// Re-export common table types so callers can construct columns/rows without
// importing bubbles directly. This keeps the generic wrapper ergonomic.
type Column = bubtable.Column
type Row = bubtable.Row

// Model is a generic row grid that can display any type of row data. It
// wraps the bubbles table component and provides type-safe row handling and
// cursor identity across row refreshes. Which rows are shown is the caller's
// business; the grid only displays what it is given.
//
// Type parameter V represents the row data type (e.g., opcode.Record).
type Model[V any] struct {
	table   bubtable.Model
	styles  bubtable.Styles
	rows    []V
	columns []Column

	// Rendering functions
	toRow   func(V) Row    // Convert value to table row
	keyFunc func(V) string // Extract identity key from value

	// Display settings
	width   int
	height  int
	focused bool
	noColor bool

	// Theme colors (optional)
	headerFG   color.Color
	headerBG   color.Color
	selectedFG color.Color
	selectedBG color.Color
}

// NewModel creates a new generic row grid.
// Parameters:
//
//	columns: table column definitions
//	toRow: function to convert value V to table.Row
//	keyFunc: function to extract the identity key from value V
func NewModel[V any](
	columns []Column,
	toRow func(V) Row,
	keyFunc func(V) string,
) *Model[V] {
	t := bubtable.New(
		bubtable.WithColumns(columns),
		bubtable.WithFocused(true),
		bubtable.WithHeight(5),
	)

	// Apply default styles
	s := bubtable.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderBottom(true).
		BorderTop(false).
		BorderLeft(false).
		BorderRight(false).
		Bold(true).
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)
	s.Selected = s.Selected.
		PaddingLeft(0).
		PaddingRight(0)
	s.Cell = lipgloss.NewStyle().
		Align(lipgloss.Left).
		PaddingLeft(0).
		PaddingRight(0)
	t.SetStyles(s)

	return &Model[V]{
		table:   t,
		styles:  s,
		rows:    []V{},
		columns: columns,
		toRow:   toRow,
		keyFunc: keyFunc,
		width:   80,
		height:  10,
		focused: true,
	}
}

// SetRows replaces the grid contents. When the previously selected row is
// still present (by identity key) the cursor follows it; otherwise the
// cursor resets to the top.
func (m *Model[V]) SetRows(rows []V) {
	var selectedKey string
	if sel := m.SelectedRow(); sel != nil {
		selectedKey = m.keyFunc(*sel)
	}

	m.rows = rows

	tableRows := make([]Row, len(rows))
	for i, row := range rows {
		tableRows[i] = m.toRow(row)
	}
	m.table.SetRows(tableRows)

	if selectedKey != "" {
		for i, row := range rows {
			if m.keyFunc(row) == selectedKey {
				m.table.SetCursor(i)
				return
			}
		}
	}
	if m.Cursor() >= len(rows) {
		m.table.SetCursor(0)
	}
}

// SetColumns updates the table columns and reapplies styles.
func (m *Model[V]) SetColumns(columns []Column) {
	m.columns = columns
	m.table.SetColumns(columns)
	m.applyColorScheme()
}

// Rows returns the current rows.
func (m *Model[V]) Rows() []V {
	return m.rows
}

// Cursor returns the current cursor position.
func (m *Model[V]) Cursor() int {
	return m.table.Cursor()
}

// SetCursor sets the cursor position.
func (m *Model[V]) SetCursor(pos int) {
	m.table.SetCursor(pos)
}

// MoveUp moves the cursor up by n rows.
func (m *Model[V]) MoveUp(n int) {
	m.table.MoveUp(n)
}

// MoveDown moves the cursor down by n rows.
func (m *Model[V]) MoveDown(n int) {
	m.table.MoveDown(n)
}

// GotoTop moves the cursor to the first row.
func (m *Model[V]) GotoTop() {
	m.table.GotoTop()
}

// GotoBottom moves the cursor to the last row.
func (m *Model[V]) GotoBottom() {
	m.table.GotoBottom()
}

// SelectedRow returns the currently selected row value, or nil if no rows.
func (m *Model[V]) SelectedRow() *V {
	if len(m.rows) == 0 {
		return nil
	}
	cursor := m.Cursor()
	if cursor < 0 || cursor >= len(m.rows) {
		return nil
	}
	return &m.rows[cursor]
}

// SelectedKey returns the identity key of the selected row, or "".
func (m *Model[V]) SelectedKey() string {
	sel := m.SelectedRow()
	if sel == nil {
		return ""
	}
	return m.keyFunc(*sel)
}

// SetSize sets the table dimensions.
func (m *Model[V]) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.table.SetHeight(height)
}

// SetHeight updates only the table height, preserving current width.
func (m *Model[V]) SetHeight(height int) {
	m.SetSize(m.width, height)
}

// Focus sets the table focus state.
func (m *Model[V]) Focus() {
	m.focused = true
	m.table.Focus()
}

// Blur removes focus from the table.
func (m *Model[V]) Blur() {
	m.focused = false
	m.table.Blur()
}

// Focused returns true if the table has focus.
func (m *Model[V]) Focused() bool {
	return m.focused
}

// SetNoColor enables/disables color output.
func (m *Model[V]) SetNoColor(noColor bool) {
	m.noColor = noColor
	m.applyColorScheme()
}

// SetColors sets custom theme colors.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.headerFG = headerFG
	m.headerBG = headerBG
	m.selectedFG = selectedFG
	m.selectedBG = selectedBG
	m.applyColorScheme()
}

// applyColorScheme applies the current color scheme to table styles.
func (m *Model[V]) applyColorScheme() {
	s := m.styles

	if m.noColor {
		s.Header = s.Header.UnsetForeground().UnsetBackground()
		s.Selected = s.Selected.UnsetForeground().UnsetBackground().Reverse(true)
		s.Cell = s.Cell.UnsetForeground().UnsetBackground()
	} else {
		if m.headerFG != nil {
			s.Header = s.Header.Foreground(m.headerFG)
		}
		if m.headerBG != nil {
			s.Header = s.Header.Background(m.headerBG)
		}
		if m.selectedFG != nil {
			s.Selected = s.Selected.Foreground(m.selectedFG)
		}
		if m.selectedBG != nil {
			s.Selected = s.Selected.Background(m.selectedBG)
		}
	}

	m.table.SetStyles(s)
	m.styles = s
}

// Update handles messages and updates the table state.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

// View renders the table to a string.
func (m *Model[V]) View() string {
	return m.table.View()
}

// Height returns the rendered height of the table (including header).
func (m *Model[V]) Height() int {
	return lipgloss.Height(m.View())
}

// Width returns the rendered width of the table.
func (m *Model[V]) Width() int {
	return lipgloss.Width(m.View())
}

// String returns a string representation for debugging.
func (m *Model[V]) String() string {
	return fmt.Sprintf("Table[rows=%d, cursor=%d]", len(m.rows), m.Cursor())
}
