package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"

	"github.com/oakwood-commons/opx/pkg/opcode"
)

func printDataset() *opcode.Dataset {
	return &opcode.Dataset{
		Name:     "testvm",
		SearchBy: "name",
		Columns: []opcode.Column{
			{Key: "name", Grouped: true},
			{Key: "opcode", Grouped: true},
			{Key: "description"},
		},
		Records: []opcode.Record{
			{"name": "ADD", "opcode": "A0", "description": "Adds **two** integers."},
			{"name": "SUB", "opcode": "A1", "description": "Subtracts one integer from another."},
		},
	}
}

func TestRenderDatasetTableNoColor(t *testing.T) {
	out := RenderDatasetTable(printDataset(), TableOptions{NoColor: true, Width: 80})
	if strings.Contains(out, "\x1b") {
		t.Fatalf("expected no ANSI codes, got %q", out)
	}
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header, separator, and 2 rows, got %d lines:\n%s", len(lines), out)
	}
	for _, want := range []string{"Name", "Opcode", "Description"} {
		if !strings.Contains(lines[0], want) {
			t.Fatalf("expected header to contain %q, got %q", want, lines[0])
		}
	}
	if !strings.HasPrefix(lines[2], "ADD") {
		t.Fatalf("expected first row to start with ADD, got %q", lines[2])
	}
	if !strings.HasPrefix(lines[3], "SUB") {
		t.Fatalf("expected second row to start with SUB, got %q", lines[3])
	}
}

func TestRenderDatasetTableInterpretsMarkup(t *testing.T) {
	out := RenderDatasetTable(printDataset(), TableOptions{NoColor: true, Width: 80})
	if strings.Contains(out, "**") {
		t.Fatalf("expected markup syntax to be interpreted, got %q", out)
	}
	if !strings.Contains(out, "Adds two integers.") {
		t.Fatalf("expected rendered description, got %q", out)
	}
}

func TestRenderDatasetTableColored(t *testing.T) {
	out := RenderDatasetTable(printDataset(), TableOptions{Width: 80})
	if !strings.Contains(out, "\x1b[") {
		t.Fatalf("expected ANSI styling in colored output")
	}
	plain := ansi.Strip(out)
	if !strings.Contains(plain, "ADD") || !strings.Contains(plain, "Adds two integers.") {
		t.Fatalf("expected cell content to survive styling, got %q", plain)
	}
}

func TestRenderDatasetTableGroupedColumnsFirst(t *testing.T) {
	ds := &opcode.Dataset{
		Name:     "ordering",
		SearchBy: "name",
		Columns: []opcode.Column{
			{Key: "description"},
			{Key: "name", Grouped: true},
		},
		Records: []opcode.Record{{"name": "NOP", "description": "Does nothing."}},
	}
	out := RenderDatasetTable(ds, TableOptions{NoColor: true, Width: 60})
	header := strings.Split(out, "\n")[0]
	if strings.Index(header, "Name") > strings.Index(header, "Description") {
		t.Fatalf("expected grouped column rendered first, got %q", header)
	}
}

func TestRenderDatasetTableShrinksDescriptionFirst(t *testing.T) {
	ds := printDataset()
	ds.Records[1]["description"] = strings.Repeat("long description text ", 10)
	out := RenderDatasetTable(ds, TableOptions{NoColor: true, Width: 40})
	for _, line := range strings.Split(strings.TrimRight(out, "\n"), "\n") {
		if w := lipgloss.Width(line); w > 40 {
			t.Fatalf("line exceeds width 40 (%d): %q", w, line)
		}
	}
	// Grouped cells keep their full width; the description absorbs the cut.
	if !strings.Contains(out, "ADD") || !strings.Contains(out, "A0") {
		t.Fatalf("expected grouped cells untouched, got %q", out)
	}
}

func TestRenderDatasetTableMissingFieldRendersEmpty(t *testing.T) {
	ds := printDataset()
	ds.Records = append(ds.Records, opcode.Record{"name": "NOP", "opcode": "00"})
	out := RenderDatasetTable(ds, TableOptions{NoColor: true, Width: 80})
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 5 {
		t.Fatalf("expected 5 lines, got %d:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[4], "NOP") {
		t.Fatalf("expected NOP row, got %q", lines[4])
	}
}

func TestRenderDatasetTableNoRecords(t *testing.T) {
	ds := printDataset()
	ds.Records = nil
	if out := RenderDatasetTable(ds, TableOptions{NoColor: true}); out != "" {
		t.Fatalf("expected empty output for no records, got %q", out)
	}
}

func TestPrintDefaultsToTable(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, printDataset(), Options{NoColor: true, Width: 80}); err != nil {
		t.Fatalf("print: %v", err)
	}
	if !strings.Contains(buf.String(), "Description") {
		t.Fatalf("expected table header, got %q", buf.String())
	}
}

func TestPrintJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, printDataset(), Options{Format: "json"}); err != nil {
		t.Fatalf("print json: %v", err)
	}
	var decoded opcode.Dataset
	if err := json.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal printed json: %v", err)
	}
	if decoded.Name != "testvm" || len(decoded.Records) != 2 {
		t.Fatalf("unexpected round trip: %+v", decoded)
	}
	if decoded.Records[0]["name"] != "ADD" {
		t.Fatalf("expected first record ADD, got %v", decoded.Records[0])
	}
}

func TestPrintYAMLUsesLiteralBlocks(t *testing.T) {
	ds := printDataset()
	ds.Records[0]["description"] = "First line.\nSecond line."

	var buf bytes.Buffer
	if err := Print(&buf, ds, Options{Format: "yaml"}); err != nil {
		t.Fatalf("print yaml: %v", err)
	}
	if !strings.Contains(buf.String(), "description: |") {
		t.Fatalf("expected literal block for multiline description, got:\n%s", buf.String())
	}

	var decoded opcode.Dataset
	if err := yaml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal printed yaml: %v", err)
	}
	if decoded.Records[0]["description"] != "First line.\nSecond line." {
		t.Fatalf("expected newlines preserved, got %q", decoded.Records[0]["description"])
	}
}

func TestPrintTOML(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, printDataset(), Options{Format: "toml"}); err != nil {
		t.Fatalf("print toml: %v", err)
	}
	var decoded opcode.Dataset
	if err := toml.Unmarshal(buf.Bytes(), &decoded); err != nil {
		t.Fatalf("unmarshal printed toml: %v", err)
	}
	if decoded.Name != "testvm" || len(decoded.Records) != 2 {
		t.Fatalf("unexpected round trip: %+v", decoded)
	}
}

func TestPrintCSV(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, printDataset(), Options{Format: "csv"}); err != nil {
		t.Fatalf("print csv: %v", err)
	}
	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("read printed csv: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("expected header plus 2 rows, got %d", len(rows))
	}
	if got := strings.Join(rows[0], ","); got != "name,opcode,description" {
		t.Fatalf("unexpected header: %q", got)
	}
	if rows[1][0] != "ADD" || rows[1][1] != "A0" {
		t.Fatalf("unexpected first row: %v", rows[1])
	}
}

func TestPrintList(t *testing.T) {
	var buf bytes.Buffer
	if err := Print(&buf, printDataset(), Options{Format: "list"}); err != nil {
		t.Fatalf("print list: %v", err)
	}
	if buf.String() != "ADD\nSUB\n" {
		t.Fatalf("expected one identity per line, got %q", buf.String())
	}
}

func TestPrintInvalidFormat(t *testing.T) {
	var buf bytes.Buffer
	err := Print(&buf, printDataset(), Options{Format: "mermaid"})
	if err == nil || !strings.Contains(err.Error(), "invalid output format") {
		t.Fatalf("expected invalid format error, got %v", err)
	}
	if buf.Len() != 0 {
		t.Fatalf("expected no output on error, got %q", buf.String())
	}
}

func TestValidateFormat(t *testing.T) {
	for _, f := range ValidFormats {
		if err := ValidateFormat(f); err != nil {
			t.Fatalf("expected %q to be valid: %v", f, err)
		}
	}
	if err := ValidateFormat("tree"); err == nil {
		t.Fatalf("expected error for unknown format")
	}
}
