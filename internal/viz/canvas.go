package viz

import (
	"image"
	"image/color/palette"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/san-kum/sonoform/internal/scene"
)

// Braille cells hold a 2x4 dot matrix:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// offset from U+2800.
const brailleBase = 0x2800

var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

// Canvas is a Braille pixel buffer of Width x Height terminal cells, i.e.
// (Width*2) x (Height*4) dots. Each cell remembers the last colour drawn into it.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
	Colors        [][]scene.RGB
	pen           scene.RGB
}

func NewCanvas(w, h int) *Canvas {
	if w < 1 {
		w = 1
	}
	if h < 1 {
		h = 1
	}
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
		Colors: make([][]scene.RGB, h),
		pen:    scene.RGB{R: 1, G: 1, B: 1},
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
		c.Colors[i] = make([]scene.RGB, w)
	}
	c.Clear()
	return c
}

// Dots returns the canvas size in dots.
func (c *Canvas) Dots() (int, int) { return c.Width * 2, c.Height * 4 }

// Pen sets the colour used by subsequent Set and DrawLine calls.
func (c *Canvas) Pen(col scene.RGB) { c.pen = col }

// Set lights the dot at (x, y). Out-of-range dots are ignored.
func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
	c.Colors[row][col] = c.pen
}

func (c *Canvas) Unset(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] &^= pixelMap[y%4][x%2]
}

// Lit reports whether the dot at (x, y) is set.
func (c *Canvas) Lit(x, y int) bool {
	if x < 0 || y < 0 || x/2 >= c.Width || y/4 >= c.Height {
		return false
	}
	return c.Grid[y/4][x/2]&pixelMap[y%4][x%2] != 0
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBase
			c.Colors[i][j] = scene.RGB{}
		}
	}
}

// DrawLine draws a line using Bresenham's algorithm. Segments longer than
// the canvas diagonal several times over are clipped by step count so a
// projection blow-up cannot stall a frame.
func (c *Canvas) DrawLine(x0, y0, x1, y1 int) {
	dx := absInt(x1 - x0)
	dy := absInt(y1 - y0)
	sx := -1
	if x0 < x1 {
		sx = 1
	}
	sy := -1
	if y0 < y1 {
		sy = 1
	}
	err := dx - dy

	w, h := c.Dots()
	budget := 4 * (w + h)
	for i := 0; i <= budget; i++ {
		c.Set(x0, y0)
		if x0 == x1 && y0 == y1 {
			break
		}
		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x0 += sx
		}
		if e2 < dx {
			err += dx
			y0 += sy
		}
	}
}

// String renders the canvas without colour.
func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

// Render draws each lit cell in its stored colour. Runs of equal colour
// share one style call.
func (c *Canvas) Render() string {
	var b strings.Builder
	for i, row := range c.Grid {
		start := 0
		for j := 1; j <= len(row); j++ {
			if j < len(row) && c.Colors[i][j] == c.Colors[i][start] {
				continue
			}
			run := string(row[start:j])
			col := c.Colors[i][start]
			if col == (scene.RGB{}) {
				b.WriteString(run)
			} else {
				b.WriteString(lipgloss.NewStyle().Foreground(hexOf(col)).Render(run))
			}
			start = j
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// Image rasterises the canvas with cellW x cellH pixels per terminal cell.
func (c *Canvas) Image(cellW, cellH int) *image.Paletted {
	img := image.NewPaletted(image.Rect(0, 0, c.Width*cellW, c.Height*cellH), palette.Plan9)
	black := uint8(img.Palette.Index(image.Black.C))
	for i := range img.Pix {
		img.Pix[i] = black
	}
	dotW, dotH := max(1, cellW/2), max(1, cellH/4)
	for row := 0; row < c.Height; row++ {
		for col := 0; col < c.Width; col++ {
			cell := c.Grid[row][col]
			if cell == brailleBase {
				continue
			}
			rgb := c.Colors[row][col]
			if rgb == (scene.RGB{}) {
				rgb = scene.RGB{R: 1, G: 1, B: 1}
			}
			idx := uint8(img.Palette.Index(colorful.Color{R: rgb.R, G: rgb.G, B: rgb.B}.Clamped()))
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if cell&pixelMap[dy][dx] == 0 {
						continue
					}
					x0, y0 := col*cellW+dx*dotW, row*cellH+dy*dotH
					for py := 0; py < dotH; py++ {
						for px := 0; px < dotW; px++ {
							img.SetColorIndex(x0+px, y0+py, idx)
						}
					}
				}
			}
		}
	}
	return img
}

func hexOf(col scene.RGB) lipgloss.Color {
	return lipgloss.Color(colorful.Color{R: col.R, G: col.G, B: col.B}.Clamped().Hex())
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
