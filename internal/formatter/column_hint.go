package formatter

// ColumnHint provides display hints for a specific column in columnar table
// rendering. Hints are keyed by the original field name, before any display
// name remapping.
type ColumnHint struct {
	// MaxWidth caps the column width (in characters). 0 = no cap.
	MaxWidth int

	// Priority controls column importance when shrinking.
	// Higher values resist shrinking; lower values shrink first.
	Priority int

	// Align controls text alignment: "right" or "left" (default).
	Align string

	// DisplayName overrides the column header text.
	// Empty string means use the original field name.
	DisplayName string
}
