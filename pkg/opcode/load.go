package opcode

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// datasetDoc is the on-disk shape of a full dataset document. Records decode
// as loose maps first so non-string values can be rejected with a useful
// message instead of a decoder error.
type datasetDoc struct {
	Name     string           `yaml:"name" json:"name" toml:"name"`
	SearchBy string           `yaml:"search_by" json:"search_by" toml:"search_by"`
	CodeLang string           `yaml:"code_lang" json:"code_lang" toml:"code_lang"`
	Columns  []Column         `yaml:"columns" json:"columns" toml:"columns"`
	Records  []map[string]any `yaml:"records" json:"records" toml:"records"`
}

// LoadData parses a dataset from a string, auto-detecting format.
// Supports:
// - Full dataset documents (name/search_by/columns/records) in JSON, YAML, or TOML
// - A bare JSON or YAML array of records
// - Newline-delimited JSON (NDJSON): one record object per line
// - Multi-document YAML (separated by ---): one record per document
// - CSV: header row of field names, one record per data row
//
// Bare record inputs get derived columns (sorted union of field names, all
// grouped) and default the identity column to the first one.
func LoadData(input string) (*Dataset, error) {
	input = strings.TrimSpace(input)
	if input == "" {
		return nil, fmt.Errorf("empty input")
	}

	// Try multi-document YAML first (most restrictive)
	if strings.Contains(input, "\n---") || strings.HasPrefix(input, "---") {
		return loadMultiDocYAML(input)
	}

	// Newline-delimited JSON: multiple lines, majority starting with '{'
	lines := strings.Split(input, "\n")
	if len(lines) > 1 && isLikelyNDJSON(lines) {
		return loadNDJSON(input)
	}

	// CSV before TOML and YAML: a comma-separated header row has no '=' or
	// ':' so the other heuristics would misread it.
	if isLikelyCSV(lines) {
		return loadCSV(input)
	}

	// TOML before JSON: TOML [section] headers look like JSON arrays
	// but are distinct (e.g. "[records]" vs "[1, 2, 3]")
	if isLikelyTOML(input) {
		return loadTOML(input)
	}

	if strings.HasPrefix(input, "{") || strings.HasPrefix(input, "[") {
		return loadJSON(input)
	}

	return loadYAML(input)
}

// LoadBytes parses dataset bytes, auto-detecting format.
func LoadBytes(data []byte) (*Dataset, error) {
	return LoadData(string(data))
}

// LoadFile reads and parses a dataset file. The file extension, when
// recognized, picks the decoder directly; otherwise content sniffing applies.
// A dataset without its own name is named after the file.
func LoadFile(path string) (*Dataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var (
		ds      *Dataset
		loadErr error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		ds, loadErr = loadCSV(string(data))
	case ".toml":
		ds, loadErr = loadTOML(strings.TrimSpace(string(data)))
	case ".json":
		ds, loadErr = loadJSON(strings.TrimSpace(string(data)))
	default:
		ds, loadErr = LoadBytes(data)
	}
	if loadErr != nil {
		return nil, fmt.Errorf("%s: %w", path, loadErr)
	}
	if ds.Name == "" {
		base := filepath.Base(path)
		ds.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	return ds, nil
}

// FromRecords builds a validated dataset from already-constructed records.
// This is the entry point for embedding programs that hold native Go data.
func FromRecords(name, searchBy string, columns []Column, records []Record) (*Dataset, error) {
	ds := &Dataset{
		Name:     name,
		SearchBy: searchBy,
		Columns:  columns,
		Records:  records,
	}
	if len(ds.Columns) == 0 {
		ds.Columns = deriveColumns(records)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// FromMaps is like FromRecords but accepts loose maps, applying the same
// non-string rejection the file loaders use.
func FromMaps(name, searchBy string, columns []Column, rows []map[string]any) (*Dataset, error) {
	records, err := buildRecords(rows)
	if err != nil {
		return nil, err
	}
	return FromRecords(name, searchBy, columns, records)
}

// buildRecords converts loose maps into Records, refusing any non-string
// field value. The searchable blob and the rendered cells both assume string
// fields, so anything else is rejected here rather than mangled later.
func buildRecords(rows []map[string]any) ([]Record, error) {
	records := make([]Record, 0, len(rows))
	for i, row := range rows {
		rec := make(Record, len(row))
		for k, v := range row {
			s, ok := v.(string)
			if !ok {
				return nil, fmt.Errorf("record %d: field %q: non-string value (%T); quote it in the source", i, k, v)
			}
			rec[k] = s
		}
		records = append(records, rec)
	}
	return records, nil
}

// deriveColumns builds default column descriptors for bare record inputs:
// the sorted union of all field names, every column grouped. Inputs that
// want markup columns or a custom order use a full dataset document.
func deriveColumns(records []Record) []Column {
	seen := make(map[string]bool)
	var keys []string
	for _, r := range records {
		for k := range r {
			if !seen[k] {
				seen[k] = true
				keys = append(keys, k)
			}
		}
	}
	// Sorted for stability; record maps have no order of their own.
	sort.Strings(keys)
	cols := make([]Column, len(keys))
	for i, k := range keys {
		cols[i] = Column{Key: k, Grouped: true}
	}
	return cols
}

// finishBare wraps bare records into a validated dataset with derived columns.
func finishBare(rows []map[string]any) (*Dataset, error) {
	records, err := buildRecords(rows)
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("no records found in input")
	}
	ds := &Dataset{
		Columns: deriveColumns(records),
		Records: records,
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// finishDoc validates a full dataset document.
func finishDoc(doc datasetDoc) (*Dataset, error) {
	records, err := buildRecords(doc.Records)
	if err != nil {
		return nil, err
	}
	ds := &Dataset{
		Name:     doc.Name,
		SearchBy: doc.SearchBy,
		CodeLang: doc.CodeLang,
		Columns:  doc.Columns,
		Records:  records,
	}
	if len(ds.Columns) == 0 {
		ds.Columns = deriveColumns(records)
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// loadJSON parses a single JSON document: either a dataset object or a bare
// array of record objects.
func loadJSON(input string) (*Dataset, error) {
	if strings.HasPrefix(input, "[") {
		var rows []map[string]any
		if err := json.Unmarshal([]byte(input), &rows); err != nil {
			return nil, fmt.Errorf("invalid JSON: %w", err)
		}
		return finishBare(rows)
	}
	var doc datasetDoc
	if err := json.Unmarshal([]byte(input), &doc); err != nil {
		return nil, fmt.Errorf("invalid JSON: %w", err)
	}
	if doc.Records == nil {
		return nil, fmt.Errorf("JSON object has no \"records\" array")
	}
	return finishDoc(doc)
}

// loadYAML parses a single YAML document: a dataset mapping or a bare
// sequence of record mappings.
func loadYAML(input string) (*Dataset, error) {
	var probe any
	if err := yaml.Unmarshal([]byte(input), &probe); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	switch probe.(type) {
	case []any:
		var rows []map[string]any
		if err := yaml.Unmarshal([]byte(input), &rows); err != nil {
			return nil, fmt.Errorf("invalid YAML record list: %w", err)
		}
		return finishBare(rows)
	case map[string]any:
		var doc datasetDoc
		if err := yaml.Unmarshal([]byte(input), &doc); err != nil {
			return nil, fmt.Errorf("invalid YAML dataset: %w", err)
		}
		if doc.Records == nil {
			return nil, fmt.Errorf("YAML mapping has no \"records\" list")
		}
		return finishDoc(doc)
	default:
		return nil, fmt.Errorf("YAML input is not a mapping or a list")
	}
}

// loadMultiDocYAML parses YAML with multiple documents (separated by ---),
// one record per document.
func loadMultiDocYAML(input string) (*Dataset, error) {
	var rows []map[string]any
	decoder := yaml.NewDecoder(strings.NewReader(input))

	for {
		var doc map[string]any
		if err := decoder.Decode(&doc); err != nil {
			if err.Error() == "EOF" {
				break
			}
			return nil, fmt.Errorf("invalid multi-document YAML: %w", err)
		}
		if doc != nil {
			rows = append(rows, doc)
		}
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no documents found in multi-document YAML")
	}
	return finishBare(rows)
}

// loadNDJSON parses newline-delimited JSON, one record object per line.
func loadNDJSON(input string) (*Dataset, error) {
	lines := strings.Split(input, "\n")
	rows := make([]map[string]any, 0, len(lines))

	for i, line := range lines {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var row map[string]any
		if err := json.Unmarshal([]byte(line), &row); err != nil {
			return nil, fmt.Errorf("line %d: not a JSON object: %w", i+1, err)
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, fmt.Errorf("no records found in input")
	}
	return finishBare(rows)
}

// loadTOML parses a TOML dataset document.
func loadTOML(input string) (*Dataset, error) {
	var doc datasetDoc
	if err := toml.Unmarshal([]byte(input), &doc); err != nil {
		return nil, fmt.Errorf("invalid TOML: %w", err)
	}
	if doc.Records == nil {
		return nil, fmt.Errorf("TOML document has no [[records]] tables")
	}
	return finishDoc(doc)
}

// loadCSV parses CSV with a header row of field names. Every cell is already
// a string, so no value validation is needed; columns come out in header
// order, all grouped.
func loadCSV(input string) (*Dataset, error) {
	reader := csv.NewReader(strings.NewReader(input))
	reader.TrimLeadingSpace = true
	all, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("invalid CSV: %w", err)
	}
	if len(all) < 2 {
		return nil, fmt.Errorf("CSV needs a header row and at least one record")
	}

	header := all[0]
	cols := make([]Column, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if h == "" {
			return nil, fmt.Errorf("CSV header column %d is empty", i+1)
		}
		cols[i] = Column{Key: h, Grouped: true}
	}

	records := make([]Record, 0, len(all)-1)
	for _, row := range all[1:] {
		rec := make(Record, len(header))
		for i, cell := range row {
			if i < len(header) {
				rec[header[i]] = cell
			}
		}
		records = append(records, rec)
	}

	ds := &Dataset{Columns: cols, Records: records}
	if err := ds.Validate(); err != nil {
		return nil, err
	}
	return ds, nil
}

// isLikelyNDJSON heuristic: returns true if the input looks like newline-
// delimited JSON. A majority of non-empty lines must start with '{' so YAML
// files with bare list items are not misclassified.
func isLikelyNDJSON(lines []string) bool {
	jsonCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmptyCount++
		if strings.HasPrefix(trimmed, "{") {
			jsonCount++
		}
	}

	return nonEmptyCount > 1 && jsonCount > nonEmptyCount/2
}

// isLikelyCSV heuristic: multiple lines, every non-empty line carries the
// same comma count (>= 1), and nothing looks like JSON, YAML, or TOML.
func isLikelyCSV(lines []string) bool {
	commas := -1
	nonEmpty := 0
	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		nonEmpty++
		if strings.ContainsAny(trimmed[:1], "{[-#") || strings.Contains(trimmed, ": ") || strings.Contains(trimmed, " = ") {
			return false
		}
		n := strings.Count(trimmed, ",")
		if n == 0 {
			return false
		}
		if commas == -1 {
			commas = n
		} else if n != commas {
			return false
		}
	}
	return nonEmpty > 1 && commas >= 1
}

// isLikelyTOML heuristic: returns true if the input looks like TOML.
// Detects TOML by looking for section headers [name] or key = value patterns
// that are distinct from YAML syntax.
func isLikelyTOML(input string) bool {
	lines := strings.Split(input, "\n")

	// Pattern for TOML section headers: [section] or [[array]]
	// Supports bare keys, quoted keys, and dotted keys:
	//   [dataset], [[records]], ["table name"], [dataset.meta]
	// Excludes JSON arrays like [1, 2, 3] which have spaces/commas without quotes
	sectionPattern := regexp.MustCompile(`^\s*\[{1,2}(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\]{1,2}\s*$`)

	// Pattern for TOML key = value (not key: value which is YAML)
	keyValuePattern := regexp.MustCompile(`^\s*(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+')+(?:\.(?:[a-zA-Z_][a-zA-Z0-9_-]*|"[^"]+"|'[^']+'))*\s*=\s*.+$`)

	sectionCount := 0
	keyValueCount := 0
	nonEmptyCount := 0

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		nonEmptyCount++

		if sectionPattern.MatchString(line) {
			sectionCount++
		}
		if keyValuePattern.MatchString(line) {
			keyValueCount++
		}
	}

	if sectionCount > 0 {
		return true
	}
	if nonEmptyCount > 0 && keyValueCount > nonEmptyCount/2 {
		return true
	}
	return false
}
