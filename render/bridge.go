package render

import "github.com/gdamore/tcell/v2"

// RGBToTcell converts RGB to tcell.Color
func RGBToTcell(rgb RGB) tcell.Color {
	return tcell.NewRGBColor(int32(rgb.R), int32(rgb.G), int32(rgb.B))
}

// TcellToRGB converts tcell.Color to RGB
// ColorDefault maps to black, the canvas background
func TcellToRGB(c tcell.Color) RGB {
	if c == tcell.ColorDefault {
		return RGBBlack
	}
	r, g, b := c.RGB()
	return RGB{uint8(r), uint8(g), uint8(b)}
}

// Present copies the canvas onto the screen and shows it
func Present(screen tcell.Screen, c *Canvas) {
	w, h := screen.Size()
	w = min(w, c.width)
	h = min(h, c.height)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			cell := &c.cells[y*c.width+x]
			r := cell.Rune
			if r == 0 {
				r = ' '
			}
			style := tcell.StyleDefault.
				Foreground(RGBToTcell(cell.Fg)).
				Background(RGBToTcell(cell.Bg))
			screen.SetContent(x, y, r, nil, style)
		}
	}
	screen.Show()
}
