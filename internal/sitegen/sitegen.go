// Package sitegen renders a dataset into a static HTML documentation site:
// an index page with the category list and the full instruction table, one
// detail page per category, optional extra markdown pages, and one shared
// stylesheet. Everything is generated from local inputs into local files.
package sitegen

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/oakwood-commons/opx/pkg/opcode"
)

// Options configures a site build.
type Options struct {
	// OutDir is the destination directory, created if missing.
	OutDir string

	// Title overrides the site title. Empty derives one from the dataset name.
	Title string

	// PagesDir optionally names a directory whose *.md files are rendered
	// into pages alongside the generated ones.
	PagesDir string

	// Workers bounds concurrent category page renders. Zero means 4.
	Workers int
}

// Generate writes the complete site for ds into opts.OutDir.
func Generate(ctx context.Context, ds *opcode.Dataset, opts Options) error {
	if opts.OutDir == "" {
		return fmt.Errorf("sitegen: output directory not set")
	}
	if err := os.MkdirAll(opts.OutDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	title := opts.Title
	if title == "" {
		title = ds.Name + " instruction reference"
	}

	cats := ds.Categories()
	s := &site{
		ds:    ds,
		title: title,
		files: categoryFiles(cats),
		hl:    newHighlighter(ds.CodeLang),
	}

	if err := writeFile(filepath.Join(opts.OutDir, "style.css"), s.styleCSS()); err != nil {
		return err
	}
	if err := writeFile(filepath.Join(opts.OutDir, "index.html"), s.indexPage()); err != nil {
		return err
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = 4
	}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for _, cat := range cats {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			return writeFile(filepath.Join(opts.OutDir, s.files[cat]), s.categoryPage(cat))
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	if opts.PagesDir != "" {
		return s.renderPagesDir(opts.PagesDir, opts.OutDir)
	}
	return nil
}

var slugRE = regexp.MustCompile(`[^a-z0-9]+`)

// categorySlug normalizes a category name into a filename stem.
func categorySlug(name string) string {
	s := strings.Trim(slugRE.ReplaceAllString(strings.ToLower(name), "-"), "-")
	if s == "" {
		return "category"
	}
	return s
}

// categoryFiles maps each category to its page filename. Slugs that collide
// after normalization get a numeric suffix so no page overwrites another.
func categoryFiles(cats []string) map[string]string {
	used := make(map[string]int, len(cats))
	out := make(map[string]string, len(cats))
	for _, c := range cats {
		slug := categorySlug(c)
		used[slug]++
		if n := used[slug]; n > 1 {
			slug = fmt.Sprintf("%s-%d", slug, n)
		}
		out[c] = slug + ".html"
	}
	return out
}

func recordAnchor(key string) string {
	return strings.Trim(slugRE.ReplaceAllString(strings.ToLower(key), "-"), "-")
}

func recordsInCategory(ds *opcode.Dataset, category string) []opcode.Record {
	var out []opcode.Record
	for _, r := range ds.Records {
		if r.Get("category") == category {
			out = append(out, r)
		}
	}
	return out
}

func writeFile(path string, content []byte) error {
	if err := os.WriteFile(path, content, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", filepath.Base(path), err)
	}
	return nil
}
