package ui

// LayoutManager turns the window size into per-component dimensions. The
// frame is a content area (search field or detail pane) above two
// single-line bars.
type LayoutManager struct {
	width  int
	height int
}

// ComponentHeights is the vertical allocation for one frame.
type ComponentHeights struct {
	ContentHeight int // search field or detail pane
	StatusHeight  int // always 1 line
	FooterHeight  int // always 1 line
}

const (
	StatusLineCount = 1
	FooterLineCount = 1

	// MinContentLines keeps the search header and at least one row (or a
	// usable slice of the detail pane) visible on tiny windows, at the cost
	// of overflowing the frame.
	MinContentLines = 4

	// DefaultFrameWidth is used before the first WindowSizeMsg arrives.
	DefaultFrameWidth = 92
)

// NewLayoutManager creates a layout manager for the given window size.
func NewLayoutManager(width, height int) *LayoutManager {
	return &LayoutManager{width: width, height: height}
}

// SetDimensions updates the window size.
func (lm *LayoutManager) SetDimensions(width, height int) {
	lm.width = width
	lm.height = height
}

// CalculateHeights allocates the window height across the components.
func (lm *LayoutManager) CalculateHeights() ComponentHeights {
	heights := ComponentHeights{
		StatusHeight: StatusLineCount,
		FooterHeight: FooterLineCount,
	}

	content := lm.height - heights.StatusHeight - heights.FooterHeight
	if content < MinContentLines {
		content = MinContentLines
	}
	heights.ContentHeight = content

	return heights
}

// ContentWidth returns the width available to the content area.
func (lm *LayoutManager) ContentWidth() int {
	if lm.width > 0 {
		return lm.width
	}
	return DefaultFrameWidth
}

// GetWidth returns the current width.
func (lm *LayoutManager) GetWidth() int {
	return lm.width
}

// GetHeight returns the current height.
func (lm *LayoutManager) GetHeight() int {
	return lm.height
}
