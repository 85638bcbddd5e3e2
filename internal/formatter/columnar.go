package formatter

import (
	"sort"
	"strings"

	"charm.land/lipgloss/v2"
)

// ColumnarOptions configures columnar table rendering.
type ColumnarOptions struct {
	// NoColor disables color on the header and separator line. Cell values
	// are rendered exactly as given either way; callers style them.
	NoColor bool

	// TotalWidth is the total available width. If 0, uses terminal width.
	TotalWidth int

	// ColumnHints provides per-column display hints for width, priority,
	// alignment, and header text. Keys are the original field names.
	ColumnHints map[string]ColumnHint
}

// RenderColumnarTable renders data as a multi-column table with a header row.
// columns carries the field names; rows the cell values in the same order.
// Cells may contain ANSI styling; widths are measured on display width.
func RenderColumnarTable(columns []string, rows [][]string, opts ColumnarOptions) string {
	if len(columns) == 0 || len(rows) == 0 {
		return ""
	}

	// Apply DisplayName overrides for headers. Hint lookup stays keyed on
	// the original names.
	displayCols := make([]string, len(columns))
	for i, col := range columns {
		displayCols[i] = col
		if h, ok := opts.ColumnHints[col]; ok && h.DisplayName != "" {
			displayCols[i] = h.DisplayName
		}
	}

	colAligns := make([]string, len(columns))
	if len(opts.ColumnHints) > 0 {
		for i, col := range columns {
			if h, ok := opts.ColumnHints[col]; ok {
				colAligns[i] = h.Align
			}
		}
	}

	totalWidth := opts.TotalWidth
	if totalWidth <= 0 {
		totalWidth = getTerminalWidth()
	}

	sepWidth := 2
	colWidths := calculateColumnWidths(displayCols, rows, totalWidth, resolveHints(columns, opts.ColumnHints))

	var b strings.Builder

	headerRow := renderHeader(displayCols, colWidths, sepWidth, opts.NoColor)
	b.WriteString(headerRow + "\n")

	// Separator line matches the full header width.
	totalHeaderWidth := 0
	for i, w := range colWidths {
		totalHeaderWidth += w
		if i < len(colWidths)-1 {
			totalHeaderWidth += sepWidth
		}
	}
	separator := strings.Repeat("─", totalHeaderWidth)
	if !opts.NoColor {
		separator = separatorStyle.Render(separator)
	}
	b.WriteString(separator + "\n")

	for _, row := range rows {
		b.WriteString(renderDataRow(row, colWidths, sepWidth, colAligns) + "\n")
	}

	return b.String()
}

func calculateColumnWidths(columns []string, rows [][]string, availableWidth int, hints []ColumnHint) []int {
	numCols := len(columns)
	if numCols == 0 {
		return nil
	}

	const sepWidth = 2
	const minColWidth = 3
	widths := make([]int, numCols)
	for i, col := range columns {
		widths[i] = lipgloss.Width(col)
	}

	// Expand to fit data
	for _, row := range rows {
		for i, val := range row {
			if i < numCols {
				w := lipgloss.Width(val)
				if w > widths[i] {
					widths[i] = w
				}
			}
		}
	}

	// Apply MaxWidth caps from hints before any shrinking
	for i := range columns {
		if i < len(hints) && hints[i].MaxWidth > 0 && widths[i] > hints[i].MaxWidth {
			widths[i] = hints[i].MaxWidth
		}
	}

	// Calculate space for separators and determine if we need to shrink
	totalSeps := (numCols - 1) * sepWidth
	usableWidth := availableWidth - totalSeps

	totalNeeded := 0
	for _, w := range widths {
		totalNeeded += w
	}

	// Only apply constraints if we exceed available space
	if totalNeeded > usableWidth && usableWidth > 0 {
		if len(hints) > 0 {
			// Priority-based shrinking: shrink lowest-priority columns first
			widths = shrinkByPriority(widths, usableWidth, hints)
		} else {
			// Cap then proportional shrink
			maxColWidth := 40
			for i := range widths {
				if widths[i] > maxColWidth {
					widths[i] = maxColWidth
				}
			}

			totalNeeded = 0
			for _, w := range widths {
				totalNeeded += w
			}

			if totalNeeded > usableWidth {
				totalOriginal := 0
				for _, w := range widths {
					totalOriginal += w
				}

				for i := range widths {
					proportion := float64(widths[i]) / float64(totalOriginal)
					newWidth := int(proportion * float64(usableWidth))
					if newWidth < minColWidth {
						newWidth = minColWidth
					}
					widths[i] = newWidth
				}

				// Final adjustment: ensure total doesn't exceed usableWidth
				for {
					total := 0
					for _, w := range widths {
						total += w
					}
					if total <= usableWidth {
						break
					}
					maxIdx := 0
					for i := 1; i < numCols; i++ {
						if widths[i] > widths[maxIdx] {
							maxIdx = i
						}
					}
					if widths[maxIdx] > minColWidth {
						widths[maxIdx]--
					} else {
						break
					}
				}
			}
		}
	}

	return widths
}

func renderHeader(columns []string, widths []int, sepWidth int, noColor bool) string {
	sep := strings.Repeat(" ", sepWidth)
	parts := make([]string, 0, len(columns))

	for i, col := range columns {
		w := widths[i]
		header := padRight(truncate(col, w), w)
		if !noColor {
			header = headerStyle.Render(header)
		}
		parts = append(parts, header)
	}

	return strings.Join(parts, sep)
}

func renderDataRow(values []string, widths []int, sepWidth int, colAligns []string) string {
	sep := strings.Repeat(" ", sepWidth)
	parts := make([]string, 0, len(values))

	for i, val := range values {
		if i >= len(widths) {
			break
		}
		w := widths[i]
		if i < len(colAligns) && colAligns[i] == "right" {
			parts = append(parts, padLeft(truncate(val, w), w))
		} else {
			parts = append(parts, padRight(truncate(val, w), w))
		}
	}

	return strings.Join(parts, sep)
}

// resolveHints builds a per-column hint slice so that calculateColumnWidths
// and shrinkByPriority can look up hints by index, avoiding collisions when
// multiple columns share the same display name.
func resolveHints(columns []string, hints map[string]ColumnHint) []ColumnHint {
	if len(hints) == 0 {
		return nil
	}

	result := make([]ColumnHint, len(columns))
	for i, col := range columns {
		if h, ok := hints[col]; ok {
			result[i] = h
		}
	}
	return result
}

// shrinkByPriority reduces column widths to fit within usableWidth by shrinking
// lowest-priority columns first. Higher Priority values mean the column is more
// important and will be shrunk last.
func shrinkByPriority(widths []int, usableWidth int, hints []ColumnHint) []int {
	const minColWidth = 3
	total := 0
	for _, w := range widths {
		total += w
	}
	excess := total - usableWidth
	if excess <= 0 {
		return widths
	}

	// Build column indices sorted by priority ascending (lowest priority first)
	type colPri struct {
		idx      int
		priority int
	}
	cols := make([]colPri, len(widths))
	for i := range widths {
		pri := 0
		if i < len(hints) {
			pri = hints[i].Priority
		}
		cols[i] = colPri{idx: i, priority: pri}
	}
	sort.Slice(cols, func(a, b int) bool {
		return cols[a].priority < cols[b].priority
	})

	// Shrink columns starting from lowest priority
	for _, cp := range cols {
		if excess <= 0 {
			break
		}
		shrinkable := widths[cp.idx] - minColWidth
		if shrinkable <= 0 {
			continue
		}
		shrink := shrinkable
		if shrink > excess {
			shrink = excess
		}
		widths[cp.idx] -= shrink
		excess -= shrink
	}

	return widths
}
