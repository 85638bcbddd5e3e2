// Package searchfield implements a debounced, substring-filtering table
// widget. It owns a text input and a row grid: keystrokes update the input
// immediately, a quiet-period timer promotes the input value to the settled
// query, and the settled query selects which rows the grid shows.
//
// Filtering is a linear scan over a precomputed searchable blob per record
// (every field value serialized into one lowercased string), so a match
// anywhere in a record makes its row visible. The nominal search key is used
// for row identity only, never by the filter predicate.
package searchfield

import (
	"image/color"
	"strings"
	"time"

	"charm.land/bubbles/v2/textinput"
	tea "charm.land/bubbletea/v2"
	"charm.land/lipgloss/v2"

	"github.com/oakwood-commons/opx/internal/markup"
	"github.com/oakwood-commons/opx/internal/ui/table"
)

const (
	// DefaultDebounceMs is the quiet period between the last keystroke and
	// the filter recomputation.
	DefaultDebounceMs = 500

	// DefaultCharLimit caps the query input length.
	DefaultCharLimit = 500

	// PromptMessage is shown under the header while the settled query is empty.
	PromptMessage = "enter a search query"
	// NoResultsMessage is shown when a non-empty settled query matches nothing.
	NoResultsMessage = "no results"
)

const (
	minColWidth      = 3
	maxColWidth      = 60
	colGap           = 2
	tableHeaderLines = 2 // header row plus its bottom border
	widthSampleRows  = 200
)

// Column describes one table column: which record field it reads, the header
// text, and whether it belongs to the grouped bucket. Grouped columns render
// first, as literal text; the rest render after, through the markup renderer.
type Column struct {
	Key     string
	Title   string
	Grouped bool
}

// Config wires a record type V into the widget. Cell reads a field by key
// and must return "" for a missing field. Blob returns the searchable form
// of a whole record. Key returns the row identity used to keep the cursor on
// the same record across refilters.
type Config[V any] struct {
	Columns     []Column
	Cell        func(V, string) string
	Blob        func(V) string
	Key         func(V) string
	Placeholder string
	DebounceMs  int
	CharLimit   int
	Markup      markup.Renderer
	NoColor     bool
}

// DebounceMsg is sent after the quiet period to promote a pending query.
// The ID is compared against the model's debounce counter so only the most
// recently scheduled timer is honored.
type DebounceMsg struct {
	ID    int
	Query string
}

func debounceCmd(id int, query string, delayMs int) tea.Cmd {
	return func() tea.Msg {
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
		return DebounceMsg{ID: id, Query: query}
	}
}

// Styles holds the widget's own chrome styling. Grid colors are configured
// separately through SetColors.
type Styles struct {
	Prompt lipgloss.Style
	Info   lipgloss.Style
}

// DefaultStyles returns the standard widget chrome.
func DefaultStyles() Styles {
	return Styles{
		Prompt: lipgloss.NewStyle().Foreground(lipgloss.Color("81")).Bold(true),
		Info:   lipgloss.NewStyle().Foreground(lipgloss.Color("240")).Italic(true),
	}
}

// Model is the widget state. V is the record type; the widget never inspects
// it directly, only through the Config accessors.
type Model[V any] struct {
	cfg     Config[V]
	input   textinput.Model
	grid    *table.Model[V]
	styles  Styles
	display []Column // grouped first, then separate

	data  []V
	blobs []string // lowercased searchable blob per data row

	debounced    string // settled query driving the visible set
	pendingQuery string // query waiting on its timer
	debounceID   int    // correlation counter for DebounceMsg
	debounceMs   int

	visible []V

	width       int
	maxBodyRows int
}

// New builds the widget around a fixed dataset. The input starts focused.
func New[V any](data []V, cfg Config[V]) *Model[V] {
	if cfg.Markup == nil {
		cfg.Markup = markup.NewPlain()
	}
	if cfg.DebounceMs <= 0 {
		cfg.DebounceMs = DefaultDebounceMs
	}
	if cfg.CharLimit <= 0 {
		cfg.CharLimit = DefaultCharLimit
	}

	ti := textinput.New()
	ti.Placeholder = cfg.Placeholder
	ti.CharLimit = cfg.CharLimit
	ti.SetWidth(76)
	ti.Prompt = ""
	ti.Focus()

	m := &Model[V]{
		cfg:         cfg,
		input:       ti,
		styles:      DefaultStyles(),
		display:     displayOrder(cfg.Columns),
		debounceMs:  cfg.DebounceMs,
		width:       80,
		maxBodyRows: 10,
	}
	m.grid = table.NewModel(
		m.headerColumns(nil),
		m.rowFor,
		cfg.Key,
	)
	m.grid.Blur()
	m.SetNoColor(cfg.NoColor)
	m.SetData(data)
	return m
}

// displayOrder partitions columns into grouped-then-separate render order.
// Relative order within each bucket follows the declared order.
func displayOrder(cols []Column) []Column {
	ordered := make([]Column, 0, len(cols))
	for _, c := range cols {
		if c.Grouped {
			ordered = append(ordered, c)
		}
	}
	for _, c := range cols {
		if !c.Grouped {
			ordered = append(ordered, c)
		}
	}
	return ordered
}

// Init starts the cursor blink.
func (m *Model[V]) Init() tea.Cmd {
	return textinput.Blink
}

// SetData replaces the dataset, rebuilds the searchable blobs, and
// recomputes the visible set against the current settled query.
func (m *Model[V]) SetData(data []V) {
	m.data = data
	m.blobs = make([]string, len(data))
	for i, v := range data {
		m.blobs[i] = strings.ToLower(m.cfg.Blob(v))
	}
	m.recompute()
}

// SetQuery sets the query programmatically and applies it immediately,
// skipping the debounce. Any pending timer is invalidated.
func (m *Model[V]) SetQuery(query string) {
	m.input.SetValue(query)
	m.input.SetCursor(len(query))
	m.debounceID++
	m.pendingQuery = ""
	m.debounced = query
	m.recompute()
}

// Teardown invalidates any pending debounce timer. Call when the widget
// leaves the view tree so a late timer cannot mutate state.
func (m *Model[V]) Teardown() {
	m.debounceID++
	m.pendingQuery = ""
}

// Value returns the immediate input value, which may be ahead of the
// settled query while a timer is pending.
func (m *Model[V]) Value() string {
	return m.input.Value()
}

// Query returns the settled query.
func (m *Model[V]) Query() string {
	return m.debounced
}

// Pending reports whether the input value is ahead of the settled query,
// i.e. a debounce timer should still be in flight.
func (m *Model[V]) Pending() bool {
	return m.input.Value() != m.debounced
}

// Visible returns the current visible set.
func (m *Model[V]) Visible() []V {
	return m.visible
}

// Total returns the dataset size.
func (m *Model[V]) Total() int {
	return len(m.data)
}

// Selected returns the record under the cursor, or nil when the visible
// set is empty.
func (m *Model[V]) Selected() *V {
	return m.grid.SelectedRow()
}

// Cursor returns the grid cursor position.
func (m *Model[V]) Cursor() int {
	return m.grid.Cursor()
}

// MoveUp moves the grid cursor up one row.
func (m *Model[V]) MoveUp() {
	m.grid.MoveUp(1)
}

// MoveDown moves the grid cursor down one row.
func (m *Model[V]) MoveDown() {
	m.grid.MoveDown(1)
}

// GotoTop moves the grid cursor to the first row.
func (m *Model[V]) GotoTop() {
	m.grid.GotoTop()
}

// GotoBottom moves the grid cursor to the last row.
func (m *Model[V]) GotoBottom() {
	m.grid.GotoBottom()
}

// FocusInput gives the text input keyboard focus and moves grid highlight
// focus away.
func (m *Model[V]) FocusInput() tea.Cmd {
	m.grid.Blur()
	return m.input.Focus()
}

// FocusGrid blurs the input so keystrokes drive row navigation.
func (m *Model[V]) FocusGrid() {
	m.input.Blur()
	m.grid.Focus()
}

// InputFocused reports whether keystrokes currently edit the query.
func (m *Model[V]) InputFocused() bool {
	return m.input.Focused()
}

// SetStyles replaces the widget chrome styles.
func (m *Model[V]) SetStyles(s Styles) {
	m.styles = s
}

// SetNoColor strips all styling from the widget and its grid.
func (m *Model[V]) SetNoColor(noColor bool) {
	if noColor {
		m.styles = Styles{Prompt: lipgloss.NewStyle(), Info: lipgloss.NewStyle()}
	} else {
		m.styles = DefaultStyles()
	}
	m.grid.SetNoColor(noColor)
}

// SetColors forwards theme colors to the grid.
func (m *Model[V]) SetColors(headerFG, headerBG, selectedFG, selectedBG color.Color) {
	m.grid.SetColors(headerFG, headerBG, selectedFG, selectedBG)
}

// SetSize sets the widget's total width and height budget. One line goes to
// the input, one to the informational row, and the rest to the grid.
func (m *Model[V]) SetSize(width, height int) {
	if width > 0 {
		m.width = width
		m.input.SetWidth(width - 2)
	}
	if height > 0 {
		body := height - 2 - tableHeaderLines
		if body < 1 {
			body = 1
		}
		m.maxBodyRows = body
	}
	m.refreshColumns()
	m.syncHeight()
}

// Update handles key presses, debounce timers, and cursor blink.
func (m *Model[V]) Update(msg tea.Msg) (*Model[V], tea.Cmd) {
	switch msg := msg.(type) {
	case DebounceMsg:
		// Only the latest scheduled timer may promote its query.
		if msg.ID == m.debounceID && msg.Query == m.pendingQuery {
			m.pendingQuery = ""
			m.debounced = msg.Query
			m.recompute()
		}
		return m, nil

	case tea.KeyPressMsg:
		if m.input.Focused() {
			if msg.String() == "enter" {
				// Enter only drops focus; the query and visible set stay.
				m.input.Blur()
				m.grid.Focus()
				return m, nil
			}
			prev := m.input.Value()
			var cmd tea.Cmd
			m.input, cmd = m.input.Update(msg)
			if cur := m.input.Value(); cur != prev {
				return m, tea.Batch(cmd, m.scheduleFilter(cur))
			}
			return m, cmd
		}
		var cmd tea.Cmd
		m.grid, cmd = m.grid.Update(msg)
		return m, cmd

	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

// scheduleFilter records query as pending and starts a fresh quiet-period
// timer. Bumping the counter orphans any timer already in flight.
func (m *Model[V]) scheduleFilter(query string) tea.Cmd {
	m.debounceID++
	m.pendingQuery = query
	return debounceCmd(m.debounceID, query, m.debounceMs)
}

// recompute derives the visible set from the settled query. An empty query
// yields an empty set; the prompt row stands in for the data.
func (m *Model[V]) recompute() {
	q := strings.ToLower(m.debounced)
	if q == "" {
		m.visible = nil
	} else {
		vis := make([]V, 0, len(m.data))
		for i := range m.data {
			if strings.Contains(m.blobs[i], q) {
				vis = append(vis, m.data[i])
			}
		}
		m.visible = vis
	}
	m.grid.SetRows(m.visible)
	m.refreshColumns()
	m.syncHeight()
}

// rowFor renders one record into grid cells in display order. Grouped
// columns pass the raw value through; separate columns go through the
// markup renderer. Missing fields render as empty cells.
func (m *Model[V]) rowFor(v V) table.Row {
	cells := make(table.Row, 0, len(m.display))
	for _, col := range m.display {
		raw := m.cfg.Cell(v, col.Key)
		if raw == "" {
			cells = append(cells, "")
			continue
		}
		if col.Grouped {
			cells = append(cells, raw)
		} else {
			cells = append(cells, m.cfg.Markup.Render(raw))
		}
	}
	return cells
}

// headerColumns builds the grid column set with fitted widths. Widths are
// sampled from the rows actually visible so a refilter can tighten or relax
// the layout.
func (m *Model[V]) headerColumns(rows []V) []table.Column {
	natural := make([]int, len(m.display))
	for i, col := range m.display {
		natural[i] = lipgloss.Width(col.Title)
	}
	limit := len(rows)
	if limit > widthSampleRows {
		limit = widthSampleRows
	}
	for r := 0; r < limit; r++ {
		cells := m.rowFor(rows[r])
		for i, cell := range cells {
			if w := lipgloss.Width(cell); w > natural[i] {
				natural[i] = w
			}
		}
	}

	avail := m.width - colGap*(len(m.display)-1)
	widths := fitWidths(natural, avail)

	cols := make([]table.Column, len(m.display))
	for i, col := range m.display {
		w := widths[i]
		if i < len(m.display)-1 {
			w += colGap
		}
		cols[i] = table.Column{Title: col.Title, Width: w}
	}
	return cols
}

func (m *Model[V]) refreshColumns() {
	if len(m.display) == 0 {
		return
	}
	m.grid.SetColumns(m.headerColumns(m.visible))
}

func (m *Model[V]) syncHeight() {
	rows := len(m.visible)
	if rows > m.maxBodyRows {
		rows = m.maxBodyRows
	}
	if rows < 1 {
		rows = 1
	}
	m.grid.SetHeight(rows + tableHeaderLines)
}

// fitWidths clamps natural column widths and shrinks the widest columns
// until the row fits. Leftover space goes to the last column, which holds
// prose in the usual layouts.
func fitWidths(natural []int, available int) []int {
	widths := make([]int, len(natural))
	total := 0
	for i, w := range natural {
		if w < minColWidth {
			w = minColWidth
		}
		if w > maxColWidth {
			w = maxColWidth
		}
		widths[i] = w
		total += w
	}
	for total > available {
		widest := -1
		for i, w := range widths {
			if w > minColWidth && (widest < 0 || w > widths[widest]) {
				widest = i
			}
		}
		if widest < 0 {
			break
		}
		widths[widest]--
		total--
	}
	if total < available && len(widths) > 0 {
		widths[len(widths)-1] += available - total
	}
	return widths
}

// View renders the input line, the grid, and, when the body is empty, the
// informational row.
func (m *Model[V]) View() string {
	var b strings.Builder
	b.WriteString(m.styles.Prompt.Render("/"))
	b.WriteString(" ")
	b.WriteString(m.input.View())
	b.WriteString("\n")
	b.WriteString(m.grid.View())
	if info := m.infoMessage(); info != "" {
		b.WriteString("\n")
		b.WriteString(m.styles.Info.Render(info))
	}
	return b.String()
}

// infoMessage distinguishes the empty-query prompt from a query that
// matched nothing.
func (m *Model[V]) infoMessage() string {
	if m.debounced == "" {
		return PromptMessage
	}
	if len(m.visible) == 0 {
		return NoResultsMessage
	}
	return ""
}
