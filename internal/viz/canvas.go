package viz

import (
	"math"
	"strings"

	"github.com/san-kum/xpbd2d/internal/vec"
)

// Braille cells hold 2x4 dots:
//
//	1 4
//	2 5
//	3 6
//	7 8
//
// starting at U+2800.
var pixelMap = [4][2]rune{
	{0x1, 0x8},
	{0x2, 0x10},
	{0x4, 0x20},
	{0x40, 0x80},
}

const brailleBlank = 0x2800

// Canvas is a Width×Height grid of braille cells, addressed in sub-pixels:
// (Width*2) × (Height*4), origin top-left.
type Canvas struct {
	Width, Height int
	Grid          [][]rune
}

func NewCanvas(w, h int) *Canvas {
	c := &Canvas{
		Width:  w,
		Height: h,
		Grid:   make([][]rune, h),
	}
	for i := range c.Grid {
		c.Grid[i] = make([]rune, w)
	}
	c.Clear()
	return c
}

// PixelSize is the canvas size in sub-pixels.
func (c *Canvas) PixelSize() (int, int) { return c.Width * 2, c.Height * 4 }

func (c *Canvas) Set(x, y int) {
	if x < 0 || y < 0 {
		return
	}
	col, row := x/2, y/4
	if col >= c.Width || row >= c.Height {
		return
	}
	c.Grid[row][col] |= pixelMap[y%4][x%2]
}

func (c *Canvas) Clear() {
	for i := range c.Grid {
		for j := range c.Grid[i] {
			c.Grid[i][j] = brailleBlank
		}
	}
}

// DrawLine is Bresenham between two sub-pixels, inclusive.
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

	for {
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

// DrawCircle is the midpoint circle of radius r sub-pixels.
func (c *Canvas) DrawCircle(cx, cy, r int) {
	if r <= 0 {
		c.Set(cx, cy)
		return
	}
	x, y, d := r, 0, 1-r
	for x >= y {
		for _, p := range [8][2]int{
			{x, y}, {y, x}, {-y, x}, {-x, y},
			{-x, -y}, {-y, -x}, {y, -x}, {x, -y},
		} {
			c.Set(cx+p[0], cy+p[1])
		}
		y++
		if d < 0 {
			d += 2*y + 1
		} else {
			x--
			d += 2*(y-x) + 1
		}
	}
}

func (c *Canvas) String() string {
	var b strings.Builder
	for _, row := range c.Grid {
		b.WriteString(string(row))
		b.WriteByte('\n')
	}
	return b.String()
}

func absInt(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

// Camera maps world metres to canvas sub-pixels. Screen y grows downward,
// world y upward.
type Camera struct {
	Center vec.Vec2
	Scale  float64 // sub-pixels per metre
	W, H   int     // canvas size in sub-pixels
}

// FitCamera frames the box [lo, hi] with a 10% margin, keeping the aspect
// ratio of the world.
func FitCamera(lo, hi vec.Vec2, w, h int) Camera {
	span := hi.Sub(lo)
	sx := float64(w) / math.Max(span.X()*1.2, 1e-6)
	sy := float64(h) / math.Max(span.Y()*1.2, 1e-6)
	return Camera{
		Center: lo.Add(hi).Mul(0.5),
		Scale:  math.Min(sx, sy),
		W:      w,
		H:      h,
	}
}

func (cam Camera) ToScreen(p vec.Vec2) (int, int) {
	d := p.Sub(cam.Center).Mul(cam.Scale)
	return int(math.Round(float64(cam.W)/2 + d.X())), int(math.Round(float64(cam.H)/2 - d.Y()))
}

func (cam Camera) ToWorld(x, y int) vec.Vec2 {
	return cam.Center.Add(vec.New(
		(float64(x)-float64(cam.W)/2)/cam.Scale,
		(float64(cam.H)/2-float64(y))/cam.Scale,
	))
}
