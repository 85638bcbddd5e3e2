package sitegen

import (
	"bytes"
	"fmt"
	"html"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/alecthomas/chroma/v2"
	chromahtml "github.com/alecthomas/chroma/v2/formatters/html"
	"github.com/alecthomas/chroma/v2/lexers"
	"github.com/alecthomas/chroma/v2/styles"
	"github.com/gomarkdown/markdown"
	"github.com/gomarkdown/markdown/ast"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"github.com/oakwood-commons/opx/pkg/opcode"
)

// site carries the state shared by every page of one build.
type site struct {
	ds    *opcode.Dataset
	title string
	files map[string]string
	hl    *highlighter
}

func (s *site) indexPage() []byte {
	return s.page(s.title, func(b *strings.Builder) {
		fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(s.title))

		cats := s.ds.Categories()
		fmt.Fprintf(b, `<p class="overview">%d instructions, %d columns`,
			len(s.ds.Records), len(s.ds.Columns))
		if len(cats) > 0 {
			fmt.Fprintf(b, ", %d categories", len(cats))
		}
		b.WriteString("</p>\n")

		if len(cats) > 0 {
			b.WriteString("<h2 id=\"categories\">Categories</h2>\n<ul class=\"toc\">\n")
			for _, c := range cats {
				fmt.Fprintf(b, "  <li><a href=\"%s\">%s</a> <span class=\"count\">(%d)</span></li>\n",
					s.files[c], html.EscapeString(c), len(recordsInCategory(s.ds, c)))
			}
			b.WriteString("</ul>\n")
		}

		fmt.Fprintf(b, "<h2 id=\"instructions\">Instructions</h2>\n")
		s.writeInstructionTable(b, s.ds.Records)
	})
}

func (s *site) categoryPage(category string) []byte {
	records := recordsInCategory(s.ds, category)
	return s.page(category+" - "+s.title, func(b *strings.Builder) {
		fmt.Fprintf(b, "<p class=\"crumbs\"><a href=\"index.html\">%s</a></p>\n",
			html.EscapeString(s.title))
		fmt.Fprintf(b, "<h1>%s</h1>\n", html.EscapeString(category))
		for _, r := range records {
			s.writeRecordSection(b, r)
		}
	})
}

// writeInstructionTable renders records as one flat table: grouped columns
// as code cells, separate columns through the markdown pipeline.
func (s *site) writeInstructionTable(b *strings.Builder, records []opcode.Record) {
	cols := s.ds.DisplayColumns()
	b.WriteString("<table class=\"instructions\">\n<thead><tr>")
	for _, c := range cols {
		fmt.Fprintf(b, "<th>%s</th>", html.EscapeString(c.Title()))
	}
	b.WriteString("</tr></thead>\n<tbody>\n")
	for _, r := range records {
		b.WriteString("<tr>")
		for _, c := range cols {
			v := r.Get(c.Key)
			switch {
			case v == "":
				b.WriteString("<td></td>")
			case c.Grouped:
				fmt.Fprintf(b, "<td><code>%s</code></td>", html.EscapeString(v))
			default:
				fmt.Fprintf(b, "<td>%s</td>", s.renderInline(v))
			}
		}
		b.WriteString("</tr>\n")
	}
	b.WriteString("</tbody>\n</table>\n")
}

// writeRecordSection renders one record the way the detail pane lays it out:
// grouped fields as a code-styled definition list, separate fields as titled
// prose. The category field is skipped since the page itself names it.
func (s *site) writeRecordSection(b *strings.Builder, r opcode.Record) {
	key := s.ds.KeyOf(r)
	fmt.Fprintf(b, "<h2 id=\"%s\">%s</h2>\n", recordAnchor(key), html.EscapeString(key))

	if grouped := s.ds.GroupedColumns(); len(grouped) > 0 {
		b.WriteString("<dl class=\"fields\">\n")
		for _, c := range grouped {
			v := r.Get(c.Key)
			if v == "" {
				continue
			}
			fmt.Fprintf(b, "  <dt>%s</dt><dd><code>%s</code></dd>\n",
				html.EscapeString(c.Title()), html.EscapeString(v))
		}
		b.WriteString("</dl>\n")
	}

	for _, c := range s.ds.SeparateColumns() {
		if c.Key == "category" {
			continue
		}
		v := r.Get(c.Key)
		if v == "" {
			continue
		}
		fmt.Fprintf(b, "<h3>%s</h3>\n", html.EscapeString(c.Title()))
		b.Write(s.renderMarkdown([]byte(v)))
	}
}

// renderPagesDir renders every *.md file in pagesDir into outDir, through
// the same pipeline as the generated pages.
func (s *site) renderPagesDir(pagesDir, outDir string) error {
	entries, err := os.ReadDir(pagesDir)
	if err != nil {
		return fmt.Errorf("read pages directory: %w", err)
	}
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".md") {
			continue
		}
		src, err := os.ReadFile(filepath.Join(pagesDir, e.Name()))
		if err != nil {
			return fmt.Errorf("read page %s: %w", e.Name(), err)
		}
		name := strings.TrimSuffix(e.Name(), ".md")
		page := s.page(pageTitleFrom(src, name), func(b *strings.Builder) {
			b.Write(s.renderMarkdown(src))
		})
		if err := writeFile(filepath.Join(outDir, name+".html"), page); err != nil {
			return err
		}
	}
	return nil
}

// pageTitleFrom takes the first top-level heading, falling back to the
// filename stem.
func pageTitleFrom(src []byte, fallback string) string {
	for _, line := range strings.Split(string(src), "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return fallback
}

// page wraps body content in the shared document chrome.
func (s *site) page(title string, body func(b *strings.Builder)) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, `<!doctype html>
<html lang="en">
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1">
  <title>%s</title>
  <link rel="stylesheet" href="style.css">
</head>
<body>
<main>
`, html.EscapeString(title))
	body(&b)
	b.WriteString("</main>\n</body>\n</html>\n")
	return []byte(b.String())
}

// renderMarkdown converts markdown to HTML with highlighted code blocks.
func (s *site) renderMarkdown(src []byte) []byte {
	exts := parser.CommonExtensions | parser.AutoHeadingIDs
	doc := parser.NewWithExtensions(exts).Parse(src)

	opts := mdhtml.RendererOptions{
		Flags:          mdhtml.CommonFlags | mdhtml.HrefTargetBlank,
		RenderNodeHook: s.renderCodeBlock,
	}
	return markdown.Render(doc, mdhtml.NewRenderer(opts))
}

// renderInline renders one cell of light markup and unwraps the paragraph
// the block renderer adds, so the result sits inside a table cell.
func (s *site) renderInline(text string) string {
	out := strings.TrimSpace(string(s.renderMarkdown([]byte(text))))
	if strings.HasPrefix(out, "<p>") && strings.HasSuffix(out, "</p>") && strings.Count(out, "<p>") == 1 {
		out = strings.TrimSuffix(strings.TrimPrefix(out, "<p>"), "</p>")
	}
	return out
}

// renderCodeBlock swaps fenced code blocks for chroma-highlighted HTML,
// deferring to the default renderer when tokenizing fails.
func (s *site) renderCodeBlock(w io.Writer, node ast.Node, entering bool) (ast.WalkStatus, bool) {
	cb, ok := node.(*ast.CodeBlock)
	if !ok {
		return ast.GoToNext, false
	}
	out, err := s.hl.codeHTML(string(cb.Info), string(cb.Literal))
	if err != nil {
		return ast.GoToNext, false
	}
	_, _ = w.Write(out)
	return ast.GoToNext, true
}

func (s *site) styleCSS() []byte {
	var b bytes.Buffer
	b.WriteString(baseCSS)
	b.WriteString("\n")
	b.WriteString(s.hl.css())
	return b.Bytes()
}

// highlighter renders code blocks through chroma's class-based HTML
// formatter. The classes are defined once in the shared stylesheet.
type highlighter struct {
	form     *chromahtml.Formatter
	style    *chroma.Style
	fallback string
}

func newHighlighter(codeLang string) *highlighter {
	style := styles.Get("monokai")
	if style == nil {
		style = styles.Fallback
	}
	return &highlighter{
		form:     chromahtml.New(chromahtml.WithClasses(true)),
		style:    style,
		fallback: codeLang,
	}
}

// codeHTML highlights source using the fence language, the dataset's
// code_lang when the fence names none, and plain text as the last resort.
func (h *highlighter) codeHTML(lang, source string) ([]byte, error) {
	if lang == "" {
		lang = h.fallback
	}
	lexer := lexers.Get(lang)
	if lexer == nil {
		lexer = lexers.Fallback
	}
	it, err := chroma.Coalesce(lexer).Tokenise(nil, source)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := h.form.Format(&buf, h.style, it); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (h *highlighter) css() string {
	var buf bytes.Buffer
	if err := h.form.WriteCSS(&buf, h.style); err != nil {
		return ""
	}
	return buf.String()
}

const baseCSS = `body { font-family: system-ui, -apple-system, sans-serif; max-width: 960px; margin: 40px auto; padding: 0 20px; line-height: 1.6; color: #333; }
h1 { color: #2563eb; border-bottom: 2px solid #2563eb; padding-bottom: 10px; }
h2 { color: #1e40af; margin-top: 30px; }
h3 { color: #1e3a8a; margin-top: 20px; }
code { background: #f1f5f9; padding: 2px 6px; border-radius: 3px; font-family: Monaco, Menlo, monospace; font-size: 0.9em; }
pre { background: #1e293b; color: #e2e8f0; padding: 16px; border-radius: 6px; overflow-x: auto; }
pre code { background: none; color: inherit; padding: 0; }
a { color: #2563eb; }
.crumbs { margin-bottom: 0; font-size: 0.9em; }
.overview { color: #64748b; }
.toc { list-style: none; padding: 0; }
.toc li { margin: 4px 0; }
.toc .count { color: #64748b; font-size: 0.9em; }
table.instructions { width: 100%; border-collapse: collapse; margin: 20px 0; }
table.instructions th { text-align: left; background: #eff6ff; color: #1e40af; padding: 8px; border-bottom: 2px solid #2563eb; }
table.instructions td { padding: 6px 8px; border-bottom: 1px solid #e2e8f0; vertical-align: top; }
dl.fields { background: #eff6ff; padding: 12px 16px; border-radius: 6px; border-left: 4px solid #2563eb; }
dl.fields dt { font-weight: 600; color: #1e3a8a; margin-top: 6px; }
dl.fields dd { margin: 0 0 4px 0; }
`
