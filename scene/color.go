package scene

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"cogentcore.org/core/math32"
)

// Color3 is a linear RGB color with components in [0, 1].
type Color3 struct {
	R, G, B float32
}

func NewColor3(r, g, b float32) Color3 {
	return Color3{R: r, G: g, B: b}
}

func White() Color3 { return Color3{1, 1, 1} }
func Black() Color3 { return Color3{0, 0, 0} }
func Red() Color3   { return Color3{1, 0, 0} }
func Green() Color3 { return Color3{0, 1, 0} }
func Blue() Color3  { return Color3{0, 0, 1} }

var namedColors = map[string]Color3{
	"white":  White(),
	"black":  Black(),
	"red":    Red(),
	"green":  Green(),
	"blue":   Blue(),
	"purple": {0.5, 0, 0.5},
	"gray":   {0.5, 0.5, 0.5},
	"yellow": {1, 1, 0},
}

// ParseColor3 accepts a named color or a #rrggbb hex string.
func ParseColor3(s string) (Color3, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return Color3{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return Color3{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return Color3{
		R: float32((v>>16)&0xFF) / 255,
		G: float32((v>>8)&0xFF) / 255,
		B: float32(v&0xFF) / 255,
	}, nil
}

// Equals compares exactly, the way tween end states are written back.
func (c Color3) Equals(o Color3) bool {
	return c == o
}

// Near reports whether every channel differs by at most eps.
func (c Color3) Near(o Color3, eps float32) bool {
	return math32.Abs(c.R-o.R) <= eps && math32.Abs(c.G-o.G) <= eps && math32.Abs(c.B-o.B) <= eps
}

func (c Color3) Lerp(to Color3, t float32) Color3 {
	return Color3{
		R: math32.Lerp(c.R, to.R, t),
		G: math32.Lerp(c.G, to.G, t),
		B: math32.Lerp(c.B, to.B, t),
	}
}

// RGBA converts to an opaque 8-bit color for host drawing.
func (c Color3) RGBA() color.RGBA {
	return color.RGBA{R: channel(c.R), G: channel(c.G), B: channel(c.B), A: 0xFF}
}

func (c Color3) String() string {
	return fmt.Sprintf("#%02x%02x%02x", channel(c.R), channel(c.G), channel(c.B))
}

func channel(v float32) uint8 {
	v = math32.Clamp(v, 0, 1)
	return uint8(v*255 + 0.5)
}
