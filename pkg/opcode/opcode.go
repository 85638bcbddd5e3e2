// Package opcode defines the instruction dataset model: flat string records,
// ordered column descriptors, and the searchable form of a record. Loading
// and validation live here so the UI and printers only ever see clean data.
package opcode

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"
)

// Record is one instruction row: a flat mapping from field name to field
// value. Values are always strings; anything else is rejected at load time.
type Record map[string]string

// Get returns the value for key, or "" when the record does not carry it.
// Missing fields are not an error; they render as empty cells.
func (r Record) Get(key string) string {
	return r[key]
}

// SearchBlob returns the lowercased JSON-serialized form of all field values,
// ordered by field name for determinism. The substring filter operates on
// this blob only, so a query matches against every field of the record.
func (r Record) SearchBlob() string {
	keys := make([]string, 0, len(r))
	for k := range r {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	values := make([]string, len(keys))
	for i, k := range keys {
		values[i] = r[k]
	}
	// Marshal of []string cannot fail.
	b, _ := json.Marshal(values)
	return strings.ToLower(string(b))
}

// Column describes one table column. Grouped columns render first, styled as
// literal/monospace text; separate columns render after, with their value
// interpreted as light markup.
type Column struct {
	Key         string `yaml:"key" json:"key" toml:"key"`
	DisplayName string `yaml:"display_name,omitempty" json:"display_name,omitempty" toml:"display_name,omitempty"`
	Grouped     bool   `yaml:"grouped" json:"grouped" toml:"grouped"`
}

// Title returns the column header text: DisplayName when set, otherwise a
// name derived from the key ("doc_opcode" and "opcode" both become "Opcode").
func (c Column) Title() string {
	if c.DisplayName != "" {
		return c.DisplayName
	}
	return DeriveDisplayName(c.Key)
}

// DeriveDisplayName builds a human header from a field key: a leading "doc_"
// prefix is dropped, underscores split words, and each word is capitalized.
func DeriveDisplayName(key string) string {
	key = strings.TrimPrefix(key, "doc_")
	parts := strings.Split(key, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}

// Dataset is a complete instruction set: named, with ordered column
// descriptors and the record rows. Immutable once loaded.
type Dataset struct {
	// Name identifies the instruction set (shown in titles and site output).
	Name string `yaml:"name" json:"name" toml:"name"`

	// SearchBy names the column whose value identifies a record. It is used
	// for row identity, clipboard copy, and list output. The search predicate
	// does not read it; search always covers the whole record.
	SearchBy string `yaml:"search_by" json:"search_by" toml:"search_by"`

	// CodeLang optionally names a syntax-highlighting lexer for grouped
	// column values ("forth" for Fift-style assembly). Empty disables
	// highlighting.
	CodeLang string `yaml:"code_lang,omitempty" json:"code_lang,omitempty" toml:"code_lang,omitempty"`

	Columns []Column `yaml:"columns" json:"columns" toml:"columns"`
	Records []Record `yaml:"records" json:"records" toml:"records"`
}

// Validate checks the dataset's structural invariants. Records missing a
// declared column are fine; everything else that would surprise the renderer
// is refused here.
func (d *Dataset) Validate() error {
	if len(d.Columns) == 0 {
		return fmt.Errorf("dataset %q: no columns declared", d.Name)
	}
	seen := make(map[string]bool, len(d.Columns))
	for i, c := range d.Columns {
		if c.Key == "" {
			return fmt.Errorf("dataset %q: column %d has an empty key", d.Name, i)
		}
		if seen[c.Key] {
			return fmt.Errorf("dataset %q: duplicate column key %q", d.Name, c.Key)
		}
		seen[c.Key] = true
	}
	if d.SearchBy == "" {
		// Default to the first declared column rather than failing: bare
		// record arrays have no place to declare it.
		d.SearchBy = d.Columns[0].Key
	}
	if !seen[d.SearchBy] {
		return fmt.Errorf("dataset %q: search_by %q does not name a declared column (have %s)",
			d.Name, d.SearchBy, strings.Join(d.ColumnKeys(), ", "))
	}
	return nil
}

// ColumnKeys returns the declared column keys in order.
func (d *Dataset) ColumnKeys() []string {
	keys := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		keys[i] = c.Key
	}
	return keys
}

// HasColumn reports whether key names a declared column.
func (d *Dataset) HasColumn(key string) bool {
	for _, c := range d.Columns {
		if c.Key == key {
			return true
		}
	}
	return false
}

// GroupedColumns returns the grouped-bucket columns in declared order.
func (d *Dataset) GroupedColumns() []Column {
	var cols []Column
	for _, c := range d.Columns {
		if c.Grouped {
			cols = append(cols, c)
		}
	}
	return cols
}

// SeparateColumns returns the separate-bucket columns in declared order.
func (d *Dataset) SeparateColumns() []Column {
	var cols []Column
	for _, c := range d.Columns {
		if !c.Grouped {
			cols = append(cols, c)
		}
	}
	return cols
}

// DisplayColumns returns all columns in render order: grouped first, then
// separate, each bucket keeping its declared order.
func (d *Dataset) DisplayColumns() []Column {
	return append(d.GroupedColumns(), d.SeparateColumns()...)
}

// KeyOf returns the record's identity value (the SearchBy field).
func (d *Dataset) KeyOf(r Record) string {
	return r.Get(d.SearchBy)
}

// Categories returns the distinct values of the "category" field in first-use
// order, or nil when the dataset has no category column.
func (d *Dataset) Categories() []string {
	if !d.HasColumn("category") {
		return nil
	}
	seen := make(map[string]bool)
	var out []string
	for _, r := range d.Records {
		c := r.Get("category")
		if c == "" || seen[c] {
			continue
		}
		seen[c] = true
		out = append(out, c)
	}
	return out
}

// SelectColumns returns a copy of the dataset restricted to the named columns
// in the given order. Unknown names are an error.
func (d *Dataset) SelectColumns(keys []string) (*Dataset, error) {
	if len(keys) == 0 {
		return d, nil
	}
	byKey := make(map[string]Column, len(d.Columns))
	for _, c := range d.Columns {
		byKey[c.Key] = c
	}
	cols := make([]Column, 0, len(keys))
	for _, k := range keys {
		c, ok := byKey[k]
		if !ok {
			return nil, fmt.Errorf("unknown column %q (have %s)", k, strings.Join(d.ColumnKeys(), ", "))
		}
		cols = append(cols, c)
	}
	out := &Dataset{
		Name:     d.Name,
		SearchBy: d.SearchBy,
		CodeLang: d.CodeLang,
		Columns:  cols,
		Records:  d.Records,
	}
	if !out.HasColumn(out.SearchBy) {
		out.SearchBy = cols[0].Key
	}
	return out, nil
}
