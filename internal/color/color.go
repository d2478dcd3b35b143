package color

import (
	"fmt"
	"strconv"

	"github.com/lucasb-eyer/go-colorful"
)

// Transparent is the display form of an absent or fully transparent color.
const Transparent = "transparent"

// Color is a design-token color. R, G and B are normalized to [0, 1]; A is the
// optional alpha channel, nil when the token carries none.
type Color struct {
	R float64  `mapstructure:"r" yaml:"r"`
	G float64  `mapstructure:"g" yaml:"g"`
	B float64  `mapstructure:"b" yaml:"b"`
	A *float64 `mapstructure:"a" yaml:"a"`
}

// RGB builds an opaque Color without an alpha channel.
func RGB(r, g, b float64) Color {
	return Color{R: r, G: g, B: b}
}

// RGBA builds a Color with an explicit alpha channel.
func RGBA(r, g, b, a float64) Color {
	return Color{R: r, G: g, B: b, A: &a}
}

// Alpha returns the alpha channel, treating an absent one as 1.
func (c Color) Alpha() float64 {
	if c.A == nil {
		return 1
	}
	return *c.A
}

// IsTransparent reports an explicit alpha of exactly 0, regardless of the channels.
func (c Color) IsTransparent() bool {
	return c.A != nil && *c.A == 0
}

// IsOpaque reports an absent alpha or an alpha of exactly 1.
func (c Color) IsOpaque() bool {
	return c.A == nil || *c.A == 1
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}.Clamped()
}

// RGB255 returns the channels scaled to 0..255 and rounded half-up.
func (c Color) RGB255() (r, g, b uint8) {
	return c.colorful().RGB255()
}

// Hex returns the color as a lowercase hex string with leading #, e.g. "#ffe000".
// Alpha is ignored.
func (c Color) Hex() string {
	return c.colorful().Hex()
}

// RGBAString returns the color in rgba() form, e.g. "rgba(255, 0, 0, 0.5)".
// The alpha is printed exactly as given, without rounding.
func (c Color) RGBAString() string {
	r, g, b := c.RGB255()
	return fmt.Sprintf("rgba(%d, %d, %d, %s)", r, g, b, strconv.FormatFloat(c.Alpha(), 'f', -1, 64))
}

// Display converts a token color into its canonical display string.
// A nil color or a zero alpha is "transparent"; opaque colors use hex;
// everything else uses rgba().
func Display(c *Color) string {
	if c == nil || c.IsTransparent() {
		return Transparent
	}
	if c.IsOpaque() {
		return c.Hex()
	}
	return c.RGBAString()
}
