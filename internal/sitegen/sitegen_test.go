package sitegen

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/oakwood-commons/opx/pkg/opcode"
)

func siteDataset() *opcode.Dataset {
	return &opcode.Dataset{
		Name:     "testvm",
		SearchBy: "name",
		Columns: []opcode.Column{
			{Key: "name", Grouped: true},
			{Key: "opcode", Grouped: true},
			{Key: "category"},
			{Key: "description"},
		},
		Records: []opcode.Record{
			{
				"name":        "ADD",
				"opcode":      "A0",
				"category":    "Arithmetic",
				"description": "Adds **two** integers.",
			},
			{
				"name":        "SUB",
				"opcode":      "A1",
				"category":    "Arithmetic",
				"description": "Subtracts one integer from another.",
			},
			{
				"name":        "JMP",
				"opcode":      "C3",
				"category":    "Control flow",
				"description": "Jumps to the target address.\n\n```\nJMP target\n```\n",
			},
		},
	}
}

func readSiteFile(t *testing.T, dir, name string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(dir, name))
	require.NoError(t, err)
	return string(data)
}

func TestGenerate(t *testing.T) {
	dir := t.TempDir()
	err := Generate(context.Background(), siteDataset(), Options{OutDir: dir})
	require.NoError(t, err)

	t.Run("index page", func(t *testing.T) {
		index := readSiteFile(t, dir, "index.html")
		assert.Contains(t, index, "<title>testvm instruction reference</title>")
		assert.Contains(t, index, `href="arithmetic.html"`)
		assert.Contains(t, index, `href="control-flow.html"`)
		assert.Contains(t, index, "<th>Name</th>")
		assert.Contains(t, index, "<td><code>A0</code></td>")
		assert.Contains(t, index, "<strong>two</strong>")
		assert.NotContains(t, index, "**two**")
	})

	t.Run("category page", func(t *testing.T) {
		page := readSiteFile(t, dir, "control-flow.html")
		assert.Contains(t, page, "<h1>Control flow</h1>")
		assert.Contains(t, page, `<h2 id="jmp">JMP</h2>`)
		assert.Contains(t, page, "<dt>Opcode</dt><dd><code>C3</code></dd>")
		assert.Contains(t, page, `class="chroma"`)
		assert.NotContains(t, page, "<h3>Category</h3>")
	})

	t.Run("stylesheet", func(t *testing.T) {
		css := readSiteFile(t, dir, "style.css")
		assert.Contains(t, css, "table.instructions")
		assert.Contains(t, css, ".chroma")
	})
}

func TestGenerateTitleOverride(t *testing.T) {
	dir := t.TempDir()
	err := Generate(context.Background(), siteDataset(), Options{OutDir: dir, Title: "TVM ops"})
	require.NoError(t, err)

	index := readSiteFile(t, dir, "index.html")
	assert.Contains(t, index, "<title>TVM ops</title>")
}

func TestGenerateWithoutCategories(t *testing.T) {
	ds := &opcode.Dataset{
		Name:     "flatvm",
		SearchBy: "name",
		Columns: []opcode.Column{
			{Key: "name", Grouped: true},
			{Key: "description"},
		},
		Records: []opcode.Record{
			{"name": "NOP", "description": "Does nothing."},
		},
	}

	dir := t.TempDir()
	require.NoError(t, Generate(context.Background(), ds, Options{OutDir: dir}))

	pages, err := filepath.Glob(filepath.Join(dir, "*.html"))
	require.NoError(t, err)
	assert.Len(t, pages, 1, "expected only index.html")

	index := readSiteFile(t, dir, "index.html")
	assert.NotContains(t, index, `id="categories"`)
}

func TestGenerateExtraPages(t *testing.T) {
	pagesDir := t.TempDir()
	guide := "# Getting started\n\nSome *prose* here.\n"
	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "guide.md"), []byte(guide), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(pagesDir, "notes.txt"), []byte("skip me"), 0o644))

	dir := t.TempDir()
	err := Generate(context.Background(), siteDataset(), Options{OutDir: dir, PagesDir: pagesDir})
	require.NoError(t, err)

	page := readSiteFile(t, dir, "guide.html")
	assert.Contains(t, page, "<title>Getting started</title>")
	assert.Contains(t, page, "<em>prose</em>")

	_, statErr := os.Stat(filepath.Join(dir, "notes.html"))
	assert.True(t, os.IsNotExist(statErr), "non-markdown files should be ignored")
}

func TestGenerateMissingOutDir(t *testing.T) {
	err := Generate(context.Background(), siteDataset(), Options{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "output directory")
}

func TestGenerateCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Generate(ctx, siteDataset(), Options{OutDir: t.TempDir()})
	require.Error(t, err)
	assert.True(t, errors.Is(err, context.Canceled))
}

func TestCategorySlug(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Arithmetic", "arithmetic"},
		{"Control flow", "control-flow"},
		{"Cells, bits & bytes", "cells-bits-bytes"},
		{"", "category"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, categorySlug(tt.in), "slug of %q", tt.in)
	}
}

func TestCategoryFilesDeduplicates(t *testing.T) {
	files := categoryFiles([]string{"App ops", "App Ops"})
	assert.Equal(t, "app-ops.html", files["App ops"])
	assert.Equal(t, "app-ops-2.html", files["App Ops"])
}
