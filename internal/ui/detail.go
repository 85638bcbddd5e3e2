package ui

import (
	"bytes"
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/alecthomas/chroma/v2/quick"

	"github.com/oakwood-commons/opx/internal/markup"
	"github.com/oakwood-commons/opx/pkg/opcode"
)

// DetailModel holds the sectioned rendering of a single instruction record.
// Lines are pre-computed at build time; View only slices by scroll position.
type DetailModel struct {
	Record    opcode.Record
	TitleText string
	Sections  []renderedSection
	ScrollTop int // First visible line
	Width     int // Available width
	Height    int // Available height
	NoColor   bool
}

// renderedSection is a pre-computed section of the detail pane.
type renderedSection struct {
	Title string   // Section heading (may be empty)
	Lines []string // Rendered lines
}

// buildDetailModel pre-renders one record into sections. Grouped columns
// become aligned label/value rows with the value highlighted as code;
// separate columns become wrapped paragraphs with markup interpreted.
func buildDetailModel(ds *opcode.Dataset, rec opcode.Record, rend markup.Renderer, codeLang string, width, height int, noColor bool) *DetailModel {
	dm := &DetailModel{
		Record:    rec,
		TitleText: ds.KeyOf(rec),
		Width:     width,
		Height:    height,
		NoColor:   noColor,
	}
	if rend == nil {
		rend = markup.NewPlain()
	}

	contentWidth := width - 4
	if contentWidth < 10 {
		contentWidth = 10
	}

	if grouped := ds.GroupedColumns(); len(grouped) > 0 {
		rs := renderCodeSection(rec, grouped, codeLang, noColor)
		if len(rs.Lines) > 0 {
			dm.Sections = append(dm.Sections, rs)
		}
	}

	for _, col := range ds.SeparateColumns() {
		raw := rec.Get(col.Key)
		if raw == "" {
			continue
		}
		text := rend.Render(raw)
		dm.Sections = append(dm.Sections, renderedSection{
			Title: col.Title(),
			Lines: wrapANSILines(text, contentWidth),
		})
	}

	return dm
}

// renderCodeSection renders grouped columns as aligned label/value rows.
func renderCodeSection(rec opcode.Record, cols []opcode.Column, codeLang string, noColor bool) renderedSection {
	th := CurrentTheme()
	labelStyle := lipgloss.NewStyle().Foreground(th.TextColor)
	codeStyle := lipgloss.NewStyle().Foreground(th.CodeColor)

	maxLabel := 0
	for _, c := range cols {
		if rec.Get(c.Key) == "" {
			continue
		}
		if l := len(c.Title()); l > maxLabel {
			maxLabel = l
		}
	}

	var lines []string
	for _, c := range cols {
		raw := rec.Get(c.Key)
		if raw == "" {
			continue
		}
		label := c.Title() + strings.Repeat(" ", maxLabel-len(c.Title()))
		val := highlightCode(raw, codeLang, noColor)
		if val == raw && !noColor {
			val = codeStyle.Render(raw)
		}
		if noColor {
			lines = append(lines, label+"  "+raw)
		} else {
			lines = append(lines, labelStyle.Render(label)+"  "+val)
		}
	}

	return renderedSection{Lines: lines}
}

// highlightCode runs a chroma terminal highlighter over src. Returns src
// unchanged when highlighting is disabled or fails.
func highlightCode(src, lang string, noColor bool) string {
	if noColor || lang == "" || lang == "text" {
		return src
	}
	var buf bytes.Buffer
	if err := quick.Highlight(&buf, src, lang, "terminal256", "monokai"); err != nil {
		return src
	}
	return strings.TrimRight(buf.String(), "\n")
}

// wrapANSILines word-wraps text measuring display width, so rendered markup
// does not inflate line lengths.
func wrapANSILines(text string, width int) []string {
	if width <= 0 || ansiVisibleWidth(text) <= width {
		return []string{text}
	}
	words := strings.Fields(text)
	if len(words) == 0 {
		return []string{text}
	}

	var lines []string
	current := words[0]
	currentWidth := ansiVisibleWidth(current)
	for _, word := range words[1:] {
		w := ansiVisibleWidth(word)
		if currentWidth+1+w > width {
			lines = append(lines, current)
			current = word
			currentWidth = w
		} else {
			current += " " + word
			currentWidth += 1 + w
		}
	}
	lines = append(lines, current)
	return lines
}

// allLines flattens sections into the scrollable line list.
func (dm *DetailModel) allLines() []string {
	th := CurrentTheme()
	sectionStyle := lipgloss.NewStyle().Bold(true)
	if !dm.NoColor {
		sectionStyle = sectionStyle.Foreground(th.StatusColor)
	}

	var lines []string
	for i, sec := range dm.Sections {
		if i > 0 {
			lines = append(lines, "")
		}
		if sec.Title != "" {
			lines = append(lines, sectionStyle.Render(sec.Title))
		}
		lines = append(lines, sec.Lines...)
	}
	return lines
}

// LineCount returns the total number of content lines.
func (dm *DetailModel) LineCount() int {
	if dm == nil {
		return 0
	}
	return len(dm.allLines())
}

// ScrollBy moves the viewport by delta lines, clamped to the content.
func (dm *DetailModel) ScrollBy(delta int) {
	if dm == nil {
		return
	}
	dm.ScrollTop += delta
	dm.clampScroll()
}

// ScrollToTop resets the viewport to the first line.
func (dm *DetailModel) ScrollToTop() {
	if dm != nil {
		dm.ScrollTop = 0
	}
}

// ScrollToBottom moves the viewport to the last page.
func (dm *DetailModel) ScrollToBottom() {
	if dm == nil {
		return
	}
	dm.ScrollTop = dm.LineCount()
	dm.clampScroll()
}

func (dm *DetailModel) clampScroll() {
	maxTop := dm.LineCount() - dm.visibleHeight()
	if dm.ScrollTop > maxTop {
		dm.ScrollTop = maxTop
	}
	if dm.ScrollTop < 0 {
		dm.ScrollTop = 0
	}
}

func (dm *DetailModel) visibleHeight() int {
	h := dm.Height - 2 // borders
	if h < 1 {
		h = 1
	}
	return h
}

// Resize updates the pane dimensions.
func (dm *DetailModel) Resize(width, height int) {
	if dm == nil {
		return
	}
	dm.Width = width
	dm.Height = height
	dm.clampScroll()
}

// View renders the detail pane with the record identity in the border title.
func (dm *DetailModel) View() string {
	if dm == nil {
		return ""
	}

	lines := dm.allLines()
	dm.clampScroll()

	end := dm.ScrollTop + dm.visibleHeight()
	if end > len(lines) {
		end = len(lines)
	}
	start := dm.ScrollTop
	if start > end {
		start = end
	}
	content := strings.Join(lines[start:end], "\n")

	return panelWithTitle(dm.TitleText, content, dm.Width, dm.Height, borderForTheme(CurrentTheme()), dm.NoColor)
}
