package ui

import (
	"fmt"
	"strings"

	tea "charm.land/bubbletea/v2"

	"github.com/oakwood-commons/opx/internal/markup"
	"github.com/oakwood-commons/opx/internal/ui/searchfield"
	"github.com/oakwood-commons/opx/pkg/opcode"
)

// Model is the top-level browser: a debounced search field over the
// instruction table, a detail pane for the selected record, and the status,
// footer, and help chrome around them.
type Model struct {
	Dataset *opcode.Dataset

	Search *searchfield.Model[opcode.Record]
	Detail *DetailModel
	Status StatusModel
	Footer FooterModel
	Help   HelpModel

	Term   markup.Renderer // markup renderer for the detail pane
	Layout *LayoutManager

	KeyMode    KeyMode
	pendingKey string // buffered first key of a vim gg sequence

	ErrMsg     string
	StatusType string

	WinWidth  int
	WinHeight int
	NoColor   bool
}

// BrowserOptions configures a new browser model.
type BrowserOptions struct {
	KeyMode    KeyMode
	DebounceMs int // 0 uses the search field default
	CharLimit  int // 0 uses the search field default
	NoColor    bool
	AboutLines []string // shown at the top of the help overlay
}

// NewBrowser builds the browser around a validated dataset.
func NewBrowser(ds *opcode.Dataset, opts BrowserOptions) *Model {
	if opts.KeyMode == "" {
		opts.KeyMode = DefaultKeyMode
	}

	cols := make([]searchfield.Column, len(ds.Columns))
	for i, c := range ds.Columns {
		cols[i] = searchfield.Column{Key: c.Key, Title: c.Title(), Grouped: c.Grouped}
	}

	search := searchfield.New(ds.Records, searchfield.Config[opcode.Record]{
		Columns:     cols,
		Cell:        opcode.Record.Get,
		Blob:        opcode.Record.SearchBlob,
		Key:         ds.KeyOf,
		Placeholder: "search " + ds.Name,
		DebounceMs:  opts.DebounceMs,
		CharLimit:   opts.CharLimit,
		Markup:      markup.NewPlain(),
		NoColor:     opts.NoColor,
	})

	m := &Model{
		Dataset: ds,
		Search:  search,
		Status:  NewStatusModel(),
		Footer:  NewFooterModel(),
		Help:    NewHelpModel(),
		Layout:  NewLayoutManager(0, 0),
		KeyMode: opts.KeyMode,
		NoColor: opts.NoColor,
	}
	m.Help.AboutLines = opts.AboutLines
	if opts.NoColor {
		m.Term = markup.NewPlain()
	} else {
		th := CurrentTheme()
		m.Term = markup.NewTerm(markupStylesForTheme(th))
		m.Search.SetColors(th.HeaderFG, th.HeaderBG, th.SelectedFG, th.SelectedBG)
	}
	return m
}

// markupStylesForTheme maps theme colors onto the inline markup constructs
// used in detail pane prose.
func markupStylesForTheme(t Theme) markup.Styles {
	s := markup.DefaultStyles()
	if t.TextColor != nil {
		s.Text = s.Text.Foreground(t.TextColor)
	}
	if t.CodeColor != nil {
		s.Code = s.Code.Foreground(t.CodeColor)
	}
	if t.AccentColor != nil {
		s.Link = s.Link.Foreground(t.AccentColor)
	}
	if t.InfoColor != nil {
		s.URL = s.URL.Foreground(t.InfoColor)
	}
	return s
}

// Init starts the input cursor blink.
func (m *Model) Init() tea.Cmd {
	return m.Search.Init()
}

// Update routes messages to the focused component.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case searchfield.DebounceMsg:
		// Debounce timers settle regardless of focus.
		var cmd tea.Cmd
		m.Search, cmd = m.Search.Update(msg)
		return m, cmd

	case tea.WindowSizeMsg:
		if m.WinWidth == msg.Width && m.WinHeight == msg.Height {
			return m, nil
		}
		m.WinWidth = msg.Width
		m.WinHeight = msg.Height
		m.Layout.SetDimensions(msg.Width, msg.Height)
		m.applyLayout()
		return m, nil

	case tea.KeyPressMsg:
		return m.handleKey(msg)
	}

	// Everything else (cursor blink) belongs to the input.
	var cmd tea.Cmd
	m.Search, cmd = m.Search.Update(msg)
	return m, cmd
}

// handleKey dispatches one key press according to focus and key mode.
func (m *Model) handleKey(msg tea.KeyPressMsg) (tea.Model, tea.Cmd) {
	keyStr := msg.String()

	if keyStr == "ctrl+c" {
		m.Search.Teardown()
		return m, tea.Quit
	}

	// Help overlay is modal: it closes on esc or its toggle key and
	// swallows everything else.
	if m.Help.Visible {
		switch keyStr {
		case "esc", "f1", "?":
			m.Help.SetVisible(false)
		}
		return m, nil
	}

	m.clearStatus()

	// While the input is focused it owns every key; Enter inside the
	// search field moves focus to the table.
	if m.Detail == nil && m.Search.InputFocused() {
		var cmd tea.Cmd
		m.Search, cmd = m.Search.Update(msg)
		return m, cmd
	}

	action, pending := ResolveKey(m.KeyMode, keyStr, m.pendingKey)
	m.pendingKey = pending
	if action == ActionNone && pending != "" {
		// First key of a multi-key sequence; wait for the rest.
		return m, nil
	}

	switch action {
	case ActionDown:
		if m.Detail != nil {
			m.Detail.ScrollBy(1)
		} else {
			m.Search.MoveDown()
		}
		return m, nil

	case ActionUp:
		if m.Detail != nil {
			m.Detail.ScrollBy(-1)
		} else {
			m.Search.MoveUp()
		}
		return m, nil

	case ActionTop:
		if m.Detail != nil {
			m.Detail.ScrollToTop()
		} else {
			m.Search.GotoTop()
		}
		return m, nil

	case ActionBottom:
		if m.Detail != nil {
			m.Detail.ScrollToBottom()
		} else {
			m.Search.GotoBottom()
		}
		return m, nil

	case ActionSearch:
		m.closeDetail()
		return m, m.Search.FocusInput()

	case ActionDetail:
		m.openDetail()
		return m, nil

	case ActionBack:
		m.closeDetail()
		return m, nil

	case ActionCopy:
		m.copySelection()
		return m, nil

	case ActionHelp:
		m.Help.SetVisible(true)
		return m, nil

	case ActionQuit:
		m.Search.Teardown()
		return m, tea.Quit
	}

	// Unbound keys go to the grid (arrow navigation and paging) unless the
	// detail pane is open.
	if m.Detail == nil {
		var cmd tea.Cmd
		m.Search, cmd = m.Search.Update(msg)
		return m, cmd
	}
	return m, nil
}

// openDetail builds the detail pane for the selected record.
func (m *Model) openDetail() {
	sel := m.Search.Selected()
	if sel == nil {
		return
	}
	w, h := m.contentSize()
	m.Detail = buildDetailModel(m.Dataset, *sel, m.Term, m.Dataset.CodeLang, w, h, m.NoColor)
}

// closeDetail returns to the table, keeping query and selection.
func (m *Model) closeDetail() {
	m.Detail = nil
}

// copySelection copies the selected record's identity value.
func (m *Model) copySelection() {
	sel := m.Search.Selected()
	if sel == nil {
		return
	}
	key := m.Dataset.KeyOf(*sel)
	if err := CopyToClipboard(key); err != nil {
		m.ErrMsg = fmt.Sprintf("Clipboard unavailable: %v", err)
		m.StatusType = "error"
	} else {
		m.ErrMsg = fmt.Sprintf("Copied: %s", key)
		m.StatusType = "success"
	}
}

func (m *Model) clearStatus() {
	m.ErrMsg = ""
	m.StatusType = ""
}

// contentSize returns the area available to the search field or detail pane:
// everything above the status bar and footer.
func (m *Model) contentSize() (int, int) {
	heights := m.Layout.CalculateHeights()
	return m.Layout.ContentWidth(), heights.ContentHeight
}

// applyLayout pushes the window size into every component.
func (m *Model) applyLayout() {
	w, h := m.contentSize()
	m.Search.SetSize(w, h)
	if m.Detail != nil {
		m.Detail.Resize(w, h)
	}
	m.Status.SetWidth(m.WinWidth)
	m.Footer.SetWidth(m.WinWidth)
	m.Help.SetWidth(m.WinWidth)
}

// syncComponents pushes browser state into the passive chrome components.
func (m *Model) syncComponents() {
	m.Status.ErrMsg = m.ErrMsg
	m.Status.StatusType = m.StatusType
	m.Status.SearchQuery = m.Search.Query()
	m.Status.TotalRows = len(m.Search.Visible())
	m.Status.DatasetSize = m.Search.Total()
	if m.Status.TotalRows > 0 {
		m.Status.CursorIndex = m.Search.Cursor() + 1
	} else {
		m.Status.CursorIndex = 0
	}
	m.Status.HelpVisible = m.Help.Visible
	m.Status.DetailVisible = m.Detail != nil
	if m.Detail != nil {
		m.Status.DetailTitle = m.Detail.TitleText
	}
	m.Status.NoColor = m.NoColor

	m.Footer.KeyMode = m.KeyMode
	m.Footer.NoColor = m.NoColor
	m.Footer.DetailOpen = m.Detail != nil
	m.Help.KeyMode = m.KeyMode
	m.Help.NoColor = m.NoColor
}

// View renders the full browser frame.
func (m *Model) View() tea.View {
	m.syncComponents()

	var b strings.Builder
	switch {
	case m.Help.Visible:
		b.WriteString(m.Help.View())
	case m.Detail != nil:
		b.WriteString(m.Detail.View())
		b.WriteString("\n")
	default:
		b.WriteString(m.Search.View())
		b.WriteString("\n")
	}
	b.WriteString(m.Status.View())
	b.WriteString(m.Footer.View())

	view := b.String()
	if m.NoColor {
		view = stripANSIExceptInverse(view)
	}
	v := tea.NewView(view)
	v.AltScreen = true
	v.KeyboardEnhancements.ReportEventTypes = true
	return v
}
