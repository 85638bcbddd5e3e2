package formatter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/oakwood-commons/opx/internal/markup"
	"github.com/oakwood-commons/opx/pkg/opcode"
)

// ValidFormats contains all valid output format values.
var ValidFormats = []string{"table", "json", "yaml", "toml", "csv", "list"}

// ValidateFormat returns an error if the format name is invalid.
func ValidateFormat(name string) error {
	for _, valid := range ValidFormats {
		if name == valid {
			return nil
		}
	}
	return fmt.Errorf("invalid output format %q: valid values are %s", name, strings.Join(ValidFormats, ", "))
}

// Options control non-interactive printing.
type Options struct {
	// Format selects the output encoding. Empty means table.
	Format string

	// NoColor renders the table without ANSI styling. The structured
	// formats never carry color.
	NoColor bool

	// Width caps the table width. 0 detects the terminal width.
	Width int
}

// Print writes the dataset to w in the requested format.
func Print(w io.Writer, ds *opcode.Dataset, opts Options) error {
	switch opts.Format {
	case "table", "":
		_, err := io.WriteString(w, RenderDatasetTable(ds, TableOptions{NoColor: opts.NoColor, Width: opts.Width}))
		return err
	case "json":
		return printJSON(w, ds)
	case "yaml":
		out, err := FormatYAML(ds, YAMLFormatOptions{Indent: 2, LiteralBlockStrings: true})
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, out)
		return err
	case "toml":
		b, err := toml.Marshal(ds)
		if err != nil {
			return err
		}
		_, err = w.Write(b)
		return err
	case "csv":
		return printCSV(w, ds)
	case "list":
		return printList(w, ds)
	default:
		return ValidateFormat(opts.Format)
	}
}

// TableOptions controls dataset table rendering.
type TableOptions struct {
	// NoColor strips styling and renders cell markup as plain text.
	NoColor bool

	// Width is the total table width. 0 detects the terminal width.
	Width int
}

// RenderDatasetTable renders the dataset as a columnar table. Grouped columns
// come first and are styled as code; separate columns follow with their light
// markup interpreted. Description-style columns give up width first when the
// table is too wide for the terminal.
func RenderDatasetTable(ds *opcode.Dataset, opts TableOptions) string {
	cols := ds.DisplayColumns()
	if len(cols) == 0 || len(ds.Records) == 0 {
		return ""
	}

	var rend markup.Renderer = cellMarkup
	if opts.NoColor {
		rend = markup.NewPlain()
	}

	keys := make([]string, len(cols))
	hints := make(map[string]ColumnHint, len(cols))
	for i, c := range cols {
		keys[i] = c.Key
		h := ColumnHint{DisplayName: c.Title(), Priority: 1}
		if c.Grouped {
			h.Priority = 2
		}
		hints[c.Key] = h
	}

	rows := make([][]string, len(ds.Records))
	for i, r := range ds.Records {
		row := make([]string, len(cols))
		for j, c := range cols {
			val := r.Get(c.Key)
			if c.Grouped {
				cell := flattenCell(val)
				if !opts.NoColor {
					cell = codeStyle.Render(cell)
				}
				row[j] = cell
			} else {
				row[j] = rend.Render(val)
			}
		}
		rows[i] = row
	}

	return RenderColumnarTable(keys, rows, ColumnarOptions{
		NoColor:     opts.NoColor,
		TotalWidth:  opts.Width,
		ColumnHints: hints,
	})
}

func printJSON(w io.Writer, ds *opcode.Dataset) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(ds)
}

// printCSV writes a header row of column keys followed by one row per record,
// in display order. Output round-trips through the CSV loader.
func printCSV(w io.Writer, ds *opcode.Dataset) error {
	cols := ds.DisplayColumns()
	cw := csv.NewWriter(w)

	header := make([]string, len(cols))
	for i, c := range cols {
		header[i] = c.Key
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	row := make([]string, len(cols))
	for _, r := range ds.Records {
		for i, c := range cols {
			row[i] = r.Get(c.Key)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}

// printList writes one record identity per line, for piping into other tools.
func printList(w io.Writer, ds *opcode.Dataset) error {
	for _, r := range ds.Records {
		if _, err := fmt.Fprintln(w, ds.KeyOf(r)); err != nil {
			return err
		}
	}
	return nil
}
