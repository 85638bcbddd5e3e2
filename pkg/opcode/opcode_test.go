package opcode

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRecordGet(t *testing.T) {
	r := Record{"mnemonic": "ADD", "gas": "18"}
	assert.Equal(t, "ADD", r.Get("mnemonic"))
	assert.Equal(t, "", r.Get("missing"), "missing fields read as empty, not as an error")
}

func TestSearchBlob(t *testing.T) {
	r := Record{"opcode": "0x01", "mnemonic": "PUSHINT", "syntax": "5 PUSHINT", "gas": "26"}
	blob := r.SearchBlob()

	// All field values are present, lowercased.
	assert.Contains(t, blob, "pushint")
	assert.Contains(t, blob, "5 pushint")
	assert.Contains(t, blob, "26")
	assert.Contains(t, blob, "0x01")
	assert.Equal(t, strings.ToLower(blob), blob)

	// Field names do not leak into the searchable form.
	assert.NotContains(t, blob, "mnemonic")
	assert.NotContains(t, blob, "syntax")
}

func TestSearchBlobDeterministic(t *testing.T) {
	r := Record{"b": "two", "a": "one", "c": "three"}
	first := r.SearchBlob()
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, r.SearchBlob())
	}
	// Values serialize in sorted field order.
	assert.Equal(t, `["one","two","three"]`, first)
}

func TestSearchBlobEscapesLikeJSON(t *testing.T) {
	r := Record{"description": `pushes "n" onto the stack`}
	assert.Contains(t, r.SearchBlob(), `\"n\"`)
}

func TestDeriveDisplayName(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"opcode", "Opcode"},
		{"doc_opcode", "Opcode"},
		{"doc_stack_effect", "Stack Effect"},
		{"gas", "Gas"},
		{"display_name", "Display Name"},
	}
	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			assert.Equal(t, tt.want, DeriveDisplayName(tt.key))
		})
	}
}

func TestColumnTitle(t *testing.T) {
	assert.Equal(t, "Fift Syntax", Column{Key: "doc_fift", DisplayName: "Fift Syntax"}.Title())
	assert.Equal(t, "Fift", Column{Key: "doc_fift"}.Title())
}

func TestDatasetValidate(t *testing.T) {
	tests := []struct {
		name    string
		ds      Dataset
		wantErr string
	}{
		{
			name:    "no columns",
			ds:      Dataset{Name: "x"},
			wantErr: "no columns",
		},
		{
			name: "empty column key",
			ds: Dataset{Name: "x", Columns: []Column{
				{Key: "a"}, {Key: ""},
			}},
			wantErr: "empty key",
		},
		{
			name: "duplicate column key",
			ds: Dataset{Name: "x", Columns: []Column{
				{Key: "a"}, {Key: "a"},
			}},
			wantErr: "duplicate column key",
		},
		{
			name: "search_by names unknown column",
			ds: Dataset{Name: "x", SearchBy: "nope", Columns: []Column{
				{Key: "a"}, {Key: "b"},
			}},
			wantErr: `search_by "nope"`,
		},
		{
			name: "valid",
			ds: Dataset{Name: "x", SearchBy: "b", Columns: []Column{
				{Key: "a"}, {Key: "b"},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.ds.Validate()
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
		})
	}
}

func TestValidateDefaultsSearchBy(t *testing.T) {
	ds := Dataset{Name: "x", Columns: []Column{{Key: "first"}, {Key: "second"}}}
	require.NoError(t, ds.Validate())
	assert.Equal(t, "first", ds.SearchBy)
}

func TestColumnBuckets(t *testing.T) {
	ds := Dataset{
		SearchBy: "op",
		Columns: []Column{
			{Key: "op", Grouped: true},
			{Key: "description", Grouped: false},
			{Key: "gas", Grouped: true},
			{Key: "notes", Grouped: false},
		},
	}
	require.NoError(t, ds.Validate())

	grouped := ds.GroupedColumns()
	require.Len(t, grouped, 2)
	assert.Equal(t, "op", grouped[0].Key)
	assert.Equal(t, "gas", grouped[1].Key)

	separate := ds.SeparateColumns()
	require.Len(t, separate, 2)
	assert.Equal(t, "description", separate[0].Key)
	assert.Equal(t, "notes", separate[1].Key)

	// Display order: grouped bucket first, declared order inside each bucket.
	display := ds.DisplayColumns()
	keys := make([]string, len(display))
	for i, c := range display {
		keys[i] = c.Key
	}
	assert.Equal(t, []string{"op", "gas", "description", "notes"}, keys)
}

func TestCategories(t *testing.T) {
	ds := Dataset{
		SearchBy: "m",
		Columns:  []Column{{Key: "m"}, {Key: "category"}},
		Records: []Record{
			{"m": "ADD", "category": "arithmetic"},
			{"m": "POP", "category": "stack"},
			{"m": "SUB", "category": "arithmetic"},
			{"m": "ODD"},
		},
	}
	assert.Equal(t, []string{"arithmetic", "stack"}, ds.Categories())

	noCat := Dataset{SearchBy: "m", Columns: []Column{{Key: "m"}}}
	assert.Nil(t, noCat.Categories())
}

func TestSelectColumns(t *testing.T) {
	ds := Dataset{
		SearchBy: "m",
		Columns:  []Column{{Key: "m", Grouped: true}, {Key: "gas", Grouped: true}, {Key: "description"}},
		Records:  []Record{{"m": "ADD", "gas": "18", "description": "adds"}},
	}
	require.NoError(t, ds.Validate())

	sel, err := ds.SelectColumns([]string{"gas", "m"})
	require.NoError(t, err)
	assert.Equal(t, []string{"gas", "m"}, sel.ColumnKeys())
	assert.Equal(t, "m", sel.SearchBy, "identity column survives when selected")

	// Dropping the identity column falls back to the first selected one.
	sel, err = ds.SelectColumns([]string{"gas"})
	require.NoError(t, err)
	assert.Equal(t, "gas", sel.SearchBy)

	_, err = ds.SelectColumns([]string{"bogus"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown column "bogus"`)

	same, err := ds.SelectColumns(nil)
	require.NoError(t, err)
	assert.Equal(t, ds.ColumnKeys(), same.ColumnKeys())
}

func TestKeyOf(t *testing.T) {
	ds := Dataset{SearchBy: "mnemonic", Columns: []Column{{Key: "mnemonic"}}}
	assert.Equal(t, "ADD", ds.KeyOf(Record{"mnemonic": "ADD"}))
	assert.Equal(t, "", ds.KeyOf(Record{}))
}
