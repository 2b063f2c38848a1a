package domain

import "fmt"

// DefaultTolerance is the colour tolerance used when a block does not set one.
const DefaultTolerance = 10

// Color is an 8-bit RGB sample.
type Color struct {
	R, G, B uint8
}

var (
	White = Color{255, 255, 255}
	Black = Color{0, 0, 0}
)

// Distance is the sum of the absolute per-channel differences.
func (c Color) Distance(o Color) int {
	return absDiff(c.R, o.R) + absDiff(c.G, o.G) + absDiff(c.B, o.B)
}

// Matches reports whether c is within tolerance of target.
func (c Color) Matches(target Color, tolerance int) bool {
	return c.Distance(target) <= tolerance
}

func (c Color) String() string {
	return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
}

func absDiff(a, b uint8) int {
	if a > b {
		return int(a - b)
	}
	return int(b - a)
}

// Point is a screen coordinate.
type Point struct {
	X int `json:"x" yaml:"x"`
	Y int `json:"y" yaml:"y"`
}

// Rect is a screen region anchored at its top-left corner.
type Rect struct {
	X, Y, W, H int
}

func (r Rect) Empty() bool { return r.W <= 0 || r.H <= 0 }

func (r Rect) Contains(p Point) bool {
	return p.X >= r.X && p.X < r.X+r.W && p.Y >= r.Y && p.Y < r.Y+r.H
}
