package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// FormatNumber renders number the way it appears in CSS output: no
// exponent, no trailing zeros, at most 8 fractional digits.
func FormatNumber(v float64) string {
	v = math.Round(v*1e8) / 1e8
	if v == 0 {
		return "0"
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// ParseHexColor parses #rgb and #rrggbb notation.
func ParseHexColor(raw string) (*Color, bool) {
	hex := strings.TrimPrefix(raw, "#")
	switch len(hex) {
	case 3:
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	case 6:
	default:
		return nil, false
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, false
	}
	return &Color{
		R:   int(v >> 16 & 0xff),
		G:   int(v >> 8 & 0xff),
		B:   int(v & 0xff),
		A:   1,
		Raw: strings.ToLower(raw),
	}, true
}

// NewColor creates color clamping channels to valid ranges.
func NewColor(r, g, b float64, a float64) *Color {
	return &Color{
		R: clampChannel(r),
		G: clampChannel(g),
		B: clampChannel(b),
		A: math.Max(0, math.Min(1, a)),
	}
}

func clampChannel(v float64) int {
	return int(math.Max(0, math.Min(255, math.Round(v))))
}

// Hex returns #rrggbb form, or #rgb form when short is requested and
// possible.
func (c *Color) Hex(short bool) string {
	s := fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	if short && s[1] == s[2] && s[3] == s[4] && s[5] == s[6] {
		return string([]byte{'#', s[1], s[3], s[5]})
	}
	return s
}

var colorKeywords = map[string]uint32{
	"aqua":        0x00ffff,
	"black":       0x000000,
	"blue":        0x0000ff,
	"fuchsia":     0xff00ff,
	"gray":        0x808080,
	"green":       0x008000,
	"lime":        0x00ff00,
	"maroon":      0x800000,
	"navy":        0x000080,
	"olive":       0x808000,
	"orange":      0xffa500,
	"purple":      0x800080,
	"red":         0xff0000,
	"silver":      0xc0c0c0,
	"teal":        0x008080,
	"white":       0xffffff,
	"yellow":      0xffff00,
	"transparent": 0,
}

// ColorFromKeyword converts CSS color names to colors.
func ColorFromKeyword(name string) (*Color, bool) {
	name = strings.ToLower(name)
	v, ok := colorKeywords[name]
	if !ok {
		return nil, false
	}
	c := &Color{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff), A: 1, Raw: name}
	if name == "transparent" {
		c.A = 0
	}
	return c, true
}
