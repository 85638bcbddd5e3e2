// Package markup interprets the light text markup used in separate-bucket
// cells: emphasis, strong, inline code, and links. The rest of the UI talks
// to the Renderer interface only, so the markup dialect is contained here.
package markup

import (
	"strings"

	"charm.land/lipgloss/v2"
	"github.com/gomarkdown/markdown/ast"
	"github.com/gomarkdown/markdown/parser"
)

// Renderer turns one cell's worth of markup into display text.
type Renderer interface {
	Render(text string) string
}

// Styles carries the terminal styles for each inline construct. Text is the
// base style for runs outside any construct; the zero style leaves them bare.
type Styles struct {
	Text   lipgloss.Style
	Emph   lipgloss.Style
	Strong lipgloss.Style
	Code   lipgloss.Style
	Link   lipgloss.Style
	URL    lipgloss.Style
}

// DefaultStyles returns the styles used when no theme is wired in.
func DefaultStyles() Styles {
	return Styles{
		Text:   lipgloss.NewStyle(),
		Emph:   lipgloss.NewStyle().Italic(true),
		Strong: lipgloss.NewStyle().Bold(true),
		Code:   lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		Link:   lipgloss.NewStyle().Underline(true).Foreground(lipgloss.Color("81")),
		URL:    lipgloss.NewStyle().Foreground(lipgloss.Color("240")),
	}
}

// Term renders markup as ANSI-styled terminal text. Links render as
// "text (url)" since a cell cannot be clicked.
type Term struct {
	styles Styles
}

// NewTerm returns a terminal renderer with the given styles.
func NewTerm(styles Styles) *Term {
	return &Term{styles: styles}
}

func (t *Term) Render(text string) string {
	if text == "" {
		return ""
	}
	return renderInline(text, t.styles, false)
}

// Plain renders markup with all styling stripped: emphasis markers vanish,
// code loses its backticks, links become "text (url)". Used under --no-color
// and anywhere ANSI sequences are unwelcome.
type Plain struct{}

// NewPlain returns a style-free renderer.
func NewPlain() Plain {
	return Plain{}
}

func (Plain) Render(text string) string {
	if text == "" {
		return ""
	}
	return renderInline(text, Styles{}, true)
}

// renderInline parses one cell's markup and walks the inline tree. Cells are
// single paragraphs; block constructs other than paragraphs degrade to their
// text content.
func renderInline(text string, styles Styles, plain bool) string {
	// NoIntraEmphasis keeps snake_case field names from sprouting italics.
	p := parser.NewWithExtensions(parser.NoIntraEmphasis)
	doc := p.Parse([]byte(text))

	var b strings.Builder
	var paragraphs []string
	for _, child := range doc.GetChildren() {
		b.Reset()
		walkInline(&b, child, styles, plain)
		if s := b.String(); s != "" {
			paragraphs = append(paragraphs, s)
		}
	}
	return strings.Join(paragraphs, " ")
}

func walkInline(b *strings.Builder, node ast.Node, styles Styles, plain bool) {
	switch n := node.(type) {
	case *ast.Text:
		writeStyled(b, styles.Text, collapseBreaks(string(n.Literal)), plain)
	case *ast.Code:
		writeStyled(b, styles.Code, string(n.Literal), plain)
	case *ast.Emph:
		writeStyled(b, styles.Emph, childText(n), plain)
	case *ast.Strong:
		writeStyled(b, styles.Strong, childText(n), plain)
	case *ast.Link:
		writeStyled(b, styles.Link, childText(n), plain)
		if dest := string(n.Destination); dest != "" {
			b.WriteString(" ")
			writeStyled(b, styles.URL, "("+dest+")", plain)
		}
	case *ast.Softbreak, *ast.Hardbreak:
		b.WriteString(" ")
	default:
		for _, child := range node.GetChildren() {
			walkInline(b, child, styles, plain)
		}
	}
}

func writeStyled(b *strings.Builder, style lipgloss.Style, text string, plain bool) {
	if text == "" {
		return
	}
	if plain {
		b.WriteString(text)
		return
	}
	b.WriteString(style.Render(text))
}

// childText flattens a container's inline children to plain text. Nested
// styling inside emphasis is not preserved; the outer style wins, which is
// all the cell dialect needs.
func childText(node ast.Node) string {
	var b strings.Builder
	var walk func(ast.Node)
	walk = func(n ast.Node) {
		if t, ok := n.(*ast.Text); ok {
			b.WriteString(collapseBreaks(string(t.Literal)))
			return
		}
		if c, ok := n.(*ast.Code); ok {
			b.WriteString(string(c.Literal))
			return
		}
		for _, child := range n.GetChildren() {
			walk(child)
		}
	}
	walk(node)
	return b.String()
}

// collapseBreaks folds embedded newlines to spaces so table rows stay
// single-line, matching how scalar strings are escaped elsewhere.
func collapseBreaks(s string) string {
	if !strings.ContainsAny(s, "\r\n") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", "\n")
	return strings.ReplaceAll(s, "\n", " ")
}
