package viewport

// DefaultCellWidth is the assumed pixel width of one terminal column.
const DefaultCellWidth = 8

// CellWindow adapts terminal column counts to pixel widths so that the same
// breakpoint applies to terminal and browser hosts.
type CellWindow struct {
	*Window
	cellWidth int
}

// NewCellWindow creates a CellWindow for a terminal that is cols wide.
// A non-positive cellWidth falls back to DefaultCellWidth.
func NewCellWindow(cols, cellWidth int) *CellWindow {
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	return &CellWindow{
		Window:    NewWindow(cols * cellWidth),
		cellWidth: cellWidth,
	}
}

// ResizeCells reports a new terminal width in columns.
func (c *CellWindow) ResizeCells(cols int) {
	c.Resize(cols * c.cellWidth)
}

// Cols returns the current width in columns.
func (c *CellWindow) Cols() int {
	return c.Width() / c.cellWidth
}

// CellWidth returns the pixel width of one column.
func (c *CellWindow) CellWidth() int {
	return c.cellWidth
}
