package render

// Cell is one terminal character cell
type Cell struct {
	Rune rune
	Fg   RGB
	Bg   RGB
}

var emptyCell = Cell{Fg: RGBWhite, Bg: RGBBlack}

// Canvas is a row-major cell buffer composited each frame and presented once
type Canvas struct {
	cells  []Cell
	width  int
	height int
}

// NewCanvas creates a canvas with the specified dimensions
func NewCanvas(width, height int) *Canvas {
	c := &Canvas{}
	c.Resize(width, height)
	return c
}

// Resize adjusts dimensions, reallocates only if capacity insufficient
func (c *Canvas) Resize(width, height int) {
	width = max(width, 0)
	height = max(height, 0)
	size := width * height
	if cap(c.cells) < size {
		c.cells = make([]Cell, size)
	} else {
		c.cells = c.cells[:size]
	}
	c.width = width
	c.height = height
	c.Clear()
}

// Clear resets all cells to empty using exponential copy
func (c *Canvas) Clear() {
	if len(c.cells) == 0 {
		return
	}
	c.cells[0] = emptyCell
	for filled := 1; filled < len(c.cells); filled *= 2 {
		copy(c.cells[filled:], c.cells[:filled])
	}
}

// Size returns canvas dimensions
func (c *Canvas) Size() (width, height int) {
	return c.width, c.height
}

func (c *Canvas) inBounds(x, y int) bool {
	return x >= 0 && x < c.width && y >= 0 && y < c.height
}

// Get returns the cell at x, y; out of bounds returns an empty cell
func (c *Canvas) Get(x, y int) Cell {
	if !c.inBounds(x, y) {
		return emptyCell
	}
	return c.cells[y*c.width+x]
}

// AddBg additively blends src into the background at x, y
func (c *Canvas) AddBg(x, y int, src RGB, alpha float64) {
	if !c.inBounds(x, y) {
		return
	}
	cell := &c.cells[y*c.width+x]
	cell.Bg = Add(cell.Bg, src, alpha)
}

// SetRune writes a glyph, blending its color over the existing foreground
func (c *Canvas) SetRune(x, y int, r rune, fg RGB, alpha float64) {
	if !c.inBounds(x, y) {
		return
	}
	cell := &c.cells[y*c.width+x]
	if cell.Rune == 0 {
		cell.Fg = fg
	} else {
		cell.Fg = Blend(cell.Fg, fg, alpha)
	}
	cell.Rune = r
}

// DrawText writes s starting at x, y on a solid background, clipped to the canvas
func (c *Canvas) DrawText(x, y int, s string, fg, bg RGB) int {
	n := 0
	for _, r := range s {
		if c.inBounds(x+n, y) {
			c.cells[y*c.width+x+n] = Cell{Rune: r, Fg: fg, Bg: bg}
		}
		n++
	}
	return n
}
