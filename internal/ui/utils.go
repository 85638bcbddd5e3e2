package ui

import (
	"regexp"
	"strings"

	"charm.land/lipgloss/v2"
	runewidth "github.com/mattn/go-runewidth"
)

var ansiRegexp = regexp.MustCompile(`\x1b\[[0-9;]*[a-zA-Z]`)

func stripANSI(s string) string {
	return ansiRegexp.ReplaceAllString(s, "")
}

// stripANSIExceptInverse removes color/formatting codes but preserves inverse
// video sequences so selection highlighting stays visible in no-color mode.
func stripANSIExceptInverse(s string) string {
	return ansiRegexp.ReplaceAllStringFunc(s, func(seq string) string {
		switch seq {
		case "\x1b[7m", "\x1b[27m", "\x1b[0m", "\x1b[m":
			return seq
		default:
			return ""
		}
	})
}

// repeatToWidth repeats the fill string until reaching the requested display width.
func repeatToWidth(fill string, width int) string {
	if width <= 0 {
		return ""
	}
	if strings.TrimSpace(fill) == "" {
		fill = " "
	}
	var b strings.Builder
	for runewidth.StringWidth(b.String()) < width {
		b.WriteString(fill)
	}
	result := b.String()
	if w := runewidth.StringWidth(result); w > width {
		result = runewidth.Truncate(result, width, "")
	}
	return result
}

// wrapAtWidth wraps text at the given width, breaking on word boundaries.
func wrapAtWidth(text string, width int) string {
	if width <= 0 || runewidth.StringWidth(text) <= width {
		return text
	}

	words := strings.Fields(text)
	if len(words) == 0 {
		return text
	}

	var lines []string
	current := words[0]
	for _, word := range words[1:] {
		test := current + " " + word
		if runewidth.StringWidth(test) > width {
			lines = append(lines, current)
			current = word
		} else {
			current = test
		}
	}
	lines = append(lines, current)
	return strings.Join(lines, "\n")
}

// ansiVisibleWidth calculates the visible width of a string with ANSI escape sequences.
func ansiVisibleWidth(s string) int {
	plain := ansiRegexp.ReplaceAllString(s, "")
	return runewidth.StringWidth(plain)
}

// padANSIToWidth pads a string with trailing spaces up to the target display width.
func padANSIToWidth(s string, targetWidth int) string {
	visible := ansiVisibleWidth(s)
	if visible >= targetWidth {
		return s
	}
	padding := targetWidth - visible
	return s + strings.Repeat(" ", padding)
}

// clampANSITextWidth trims each line to the provided max display width while
// preserving ANSI escape sequences.
func clampANSITextWidth(s string, maxWidth int) string {
	if maxWidth <= 0 {
		return ""
	}

	var out strings.Builder
	width := 0

	// State machine for ANSI escape sequences.
	// Handles both CSI (ESC [ ... letter) and OSC (ESC ] ... ST/BEL).
	const (
		stNormal = iota
		stEsc    // just saw ESC, next char determines sequence type
		stCSI    // inside CSI sequence, waiting for terminating letter
		stOSC    // inside OSC sequence, waiting for ST (ESC \) or BEL
		stOSCEsc // inside OSC, just saw ESC (looking for \\ to end)
	)
	state := stNormal

	for _, r := range s {
		if r == '\n' {
			out.WriteRune(r)
			width = 0
			state = stNormal
			continue
		}

		switch state {
		case stNormal:
			if r == 0x1b { // ESC
				state = stEsc
				out.WriteRune(r)
				continue
			}
			w := runewidth.RuneWidth(r)
			if width+w > maxWidth {
				continue
			}
			out.WriteRune(r)
			width += w

		case stEsc:
			out.WriteRune(r)
			switch r {
			case '[':
				state = stCSI
			case ']':
				state = stOSC
			default:
				// Single-char escape (e.g. ESC c), done.
				state = stNormal
			}

		case stCSI:
			out.WriteRune(r)
			// CSI sequences end with a letter.
			if (r >= 'A' && r <= 'Z') || (r >= 'a' && r <= 'z') {
				state = stNormal
			}

		case stOSC:
			out.WriteRune(r)
			switch r {
			case 0x1b:
				state = stOSCEsc
			case 0x07: // BEL terminates OSC
				state = stNormal
			}

		case stOSCEsc:
			out.WriteRune(r)
			// ESC \ (ST) terminates OSC; anything else stays in OSC.
			if r == '\\' {
				state = stNormal
			} else {
				state = stOSC
			}
		}
	}

	return out.String()
}

// intMax returns the maximum of two integers.
func intMax(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// panelWithTitle draws a bordered panel with the title embedded in the top
// border. Content is clamped and padded manually so colored text is never
// re-wrapped by lipgloss.
func panelWithTitle(title string, content string, width int, height int, border lipgloss.Border, noColor bool) string {
	if width < 4 {
		width = 4
	}
	if height < 1 {
		height = 1
	}

	th := CurrentTheme()
	borderStyle := lipgloss.NewStyle().Border(border)
	if !noColor {
		borderStyle = borderStyle.BorderForeground(th.SeparatorColor)
	}

	contentLines := strings.Split(content, "\n")
	innerHeight := height - 2 // account for top/bottom borders
	innerWidth := width - 2
	if innerWidth < 1 {
		innerWidth = 1
	}
	if innerHeight < 1 {
		innerHeight = 1
	}

	// Trim or pad height
	if len(contentLines) > innerHeight {
		contentLines = contentLines[:innerHeight]
	} else {
		for len(contentLines) < innerHeight {
			contentLines = append(contentLines, "")
		}
	}

	for i := range contentLines {
		contentLines[i] = clampANSITextWidth(contentLines[i], innerWidth)
		contentLines[i] = padANSIToWidth(contentLines[i], innerWidth)
	}

	paddedContent := strings.Join(contentLines, "\n")
	bordered := borderStyle.Render(paddedContent)

	// Insert title into the top border
	lines := strings.Split(bordered, "\n")
	if len(lines) == 0 || title == "" {
		return bordered
	}

	topBorder := lines[0]
	plainTop := ansiRegexp.ReplaceAllString(topBorder, "")
	topLeft := border.TopLeft
	topRight := border.TopRight
	if topLeft == "" || topRight == "" {
		return bordered
	}
	if len(plainTop) < 4 || !strings.HasPrefix(plainTop, topLeft) {
		return bordered // Can't parse, return as-is
	}

	titleWithSpace := " " + title + " "

	plainTopWidth := runewidth.StringWidth(plainTop)
	leftWidth := runewidth.StringWidth(topLeft)
	rightWidth := runewidth.StringWidth(topRight)
	titleInnerWidth := plainTopWidth - leftWidth - rightWidth
	if titleInnerWidth < 1 {
		return bordered
	}

	// Trim title to available width (display-width aware).
	titleRunes := []rune(titleWithSpace)
	trimmed := make([]rune, 0, len(titleRunes))
	for _, r := range titleRunes {
		trimmed = append(trimmed, r)
		if lipgloss.Width(string(trimmed)) > titleInnerWidth {
			trimmed = trimmed[:len(trimmed)-1]
			break
		}
	}
	titleWidth := lipgloss.Width(string(trimmed))

	// Center the title by padding with box-drawing characters.
	leftPad := 0
	if titleInnerWidth > titleWidth {
		leftPad = (titleInnerWidth - titleWidth) / 2
	}
	rightPad := titleInnerWidth - leftPad - titleWidth

	borderPaint := lipgloss.NewStyle().Foreground(th.SeparatorColor).Render
	titlePaint := lipgloss.NewStyle().Foreground(th.HeaderFG).Bold(true).Render
	if noColor {
		borderPaint = func(s ...string) string { return strings.Join(s, " ") }
		titlePaint = borderPaint
	}
	newTopBorder := borderPaint(topLeft) + borderPaint(repeatToWidth(border.Top, leftPad)) + titlePaint(string(trimmed)) + borderPaint(repeatToWidth(border.Top, rightPad)) + borderPaint(topRight)

	lines[0] = newTopBorder
	return strings.Join(lines, "\n")
}
