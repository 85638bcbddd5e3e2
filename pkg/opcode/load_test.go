package opcode

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadJSONDataset(t *testing.T) {
	input := `{
		"name": "mini",
		"search_by": "mnemonic",
		"columns": [
			{"key": "mnemonic", "grouped": true},
			{"key": "description", "grouped": false}
		],
		"records": [
			{"mnemonic": "ADD", "description": "adds"},
			{"mnemonic": "POP", "description": "pops"}
		]
	}`
	ds, err := LoadData(input)
	require.NoError(t, err)
	assert.Equal(t, "mini", ds.Name)
	assert.Equal(t, "mnemonic", ds.SearchBy)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "adds", ds.Records[0].Get("description"))
}

func TestLoadJSONBareArray(t *testing.T) {
	input := `[{"mnemonic": "ADD", "gas": "18"}, {"mnemonic": "POP", "gas": "18"}]`
	ds, err := LoadData(input)
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	// Derived columns: sorted union, all grouped, first one is the identity.
	assert.Equal(t, []string{"gas", "mnemonic"}, ds.ColumnKeys())
	assert.Equal(t, "gas", ds.SearchBy)
	for _, c := range ds.Columns {
		assert.True(t, c.Grouped)
	}
}

func TestLoadYAMLDataset(t *testing.T) {
	input := `name: mini
search_by: mnemonic
code_lang: nasm
columns:
  - key: mnemonic
    grouped: true
  - key: description
records:
  - mnemonic: ADD
    description: adds two integers
  - mnemonic: POP
    description: discards the top
`
	ds, err := LoadData(input)
	require.NoError(t, err)
	assert.Equal(t, "mini", ds.Name)
	assert.Equal(t, "nasm", ds.CodeLang)
	require.Len(t, ds.Records, 2)
	assert.False(t, ds.Columns[1].Grouped)
}

func TestLoadYAMLBareList(t *testing.T) {
	input := `- mnemonic: ADD
  gas: "18"
- mnemonic: POP
  gas: "18"
`
	ds, err := LoadData(input)
	require.NoError(t, err)
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "ADD", ds.Records[0].Get("mnemonic"))
}

func TestLoadMultiDocYAML(t *testing.T) {
	input := `mnemonic: ADD
gas: "18"
---
mnemonic: POP
gas: "18"
---
mnemonic: DUP
gas: "18"`
	ds, err := LoadData(input)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 3)
}

func TestLoadNDJSON(t *testing.T) {
	input := `{"mnemonic": "ADD", "gas": "18"}
{"mnemonic": "POP", "gas": "18"}
{"mnemonic": "DUP", "gas": "18"}`
	ds, err := LoadData(input)
	require.NoError(t, err)
	assert.Len(t, ds.Records, 3)
}

func TestLoadNDJSONBadLine(t *testing.T) {
	input := `{"mnemonic": "ADD"}
{not json}`
	_, err := LoadData(input)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line 2")
}

func TestLoadTOML(t *testing.T) {
	input := `name = "mini"
search_by = "mnemonic"

[[columns]]
key = "mnemonic"
grouped = true

[[columns]]
key = "description"
grouped = false

[[records]]
mnemonic = "ADD"
description = "adds"

[[records]]
mnemonic = "POP"
description = "pops"
`
	ds, err := LoadData(input)
	require.NoError(t, err)
	assert.Equal(t, "mini", ds.Name)
	assert.Len(t, ds.Records, 2)
}

func TestLoadCSV(t *testing.T) {
	input := `mnemonic,gas,category
ADD,18,arithmetic
POP,18,stack`
	ds, err := LoadData(input)
	require.NoError(t, err)
	// CSV keeps header order and marks every column grouped.
	assert.Equal(t, []string{"mnemonic", "gas", "category"}, ds.ColumnKeys())
	require.Len(t, ds.Records, 2)
	assert.Equal(t, "18", ds.Records[0].Get("gas"))
	assert.Equal(t, "mnemonic", ds.SearchBy)
}

func TestLoadRejectsNonStringFields(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{
			name:  "JSON number",
			input: `[{"mnemonic": "ADD", "gas": 18}]`,
		},
		{
			name:  "JSON bool",
			input: `[{"mnemonic": "ADD", "deprecated": true}]`,
		},
		{
			name:  "JSON null",
			input: `[{"mnemonic": "ADD", "gas": null}]`,
		},
		{
			name:  "JSON nested object",
			input: `[{"mnemonic": "ADD", "meta": {"a": "b"}}]`,
		},
		{
			name: "YAML unquoted int",
			input: `- mnemonic: ADD
  gas: 18
- mnemonic: POP
  gas: "18"`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadData(tt.input)
			require.Error(t, err)
			assert.Contains(t, err.Error(), "non-string value")
		})
	}
}

func TestLoadEmptyInput(t *testing.T) {
	_, err := LoadData("   \n  ")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty input")
}

func TestLoadDocWithoutRecords(t *testing.T) {
	_, err := LoadData(`{"name": "x", "columns": [{"key": "a"}]}`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "records")
}

func TestLoadFileNamesDatasetAfterFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "tinyvm.json")
	content := `[{"mnemonic": "ADD", "gas": "18"}]`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tinyvm", ds.Name)
}

func TestLoadFileKeepsDocumentName(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "anything.yaml")
	content := `name: corevm
columns:
  - key: mnemonic
records:
  - mnemonic: ADD
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "corevm", ds.Name)
}

func TestLoadFileCSVByExtension(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ops.csv")
	require.NoError(t, os.WriteFile(path, []byte("mnemonic,gas\nADD,18\n"), 0o644))

	ds, err := LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ops", ds.Name)
	assert.Len(t, ds.Records, 1)
}

func TestLoadFileMissing(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestFromMaps(t *testing.T) {
	rows := []map[string]any{
		{"mnemonic": "ADD", "gas": "18"},
		{"mnemonic": "POP", "gas": "18"},
	}
	ds, err := FromMaps("mini", "mnemonic", []Column{{Key: "mnemonic", Grouped: true}, {Key: "gas", Grouped: true}}, rows)
	require.NoError(t, err)
	assert.Equal(t, "mini", ds.Name)
	assert.Len(t, ds.Records, 2)

	_, err = FromMaps("mini", "", nil, []map[string]any{{"gas": 18}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "non-string value")
}
