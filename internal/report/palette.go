// Package report renders analyses as HTML pages, PNG charts, text and JSON.
package report

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const DefaultColor = "blue"

var namedColors = map[string]color.RGBA{
	"green":  {R: 0x2e, G: 0x9e, B: 0x44, A: 0xff},
	"red":    {R: 0xd6, G: 0x33, B: 0x2f, A: 0xff},
	"blue":   {R: 0x1f, G: 0x6f, B: 0xd1, A: 0xff},
	"orange": {R: 0xf0, G: 0x8c, B: 0x1a, A: 0xff},
	"purple": {R: 0x7b, G: 0x3f, B: 0xbf, A: 0xff},
	"teal":   {R: 0x1a, G: 0x9c, B: 0x9c, A: 0xff},
	"gray":   {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"black":  {R: 0x00, G: 0x00, B: 0x00, A: 0xff},
}

// Palette maps labels to colours. Labels without an entry use the fallback.
type Palette struct {
	colors   map[string]string
	fallback string
}

// DefaultPalette shows joy in green, anger in red and everything else in blue.
func DefaultPalette() Palette {
	return Palette{
		colors:   map[string]string{"joy": "green", "anger": "red"},
		fallback: DefaultColor,
	}
}

// NewPalette layers overrides on top of the default palette. Colours are
// either one of the named colours or #rrggbb. An empty fallback keeps blue.
func NewPalette(overrides map[string]string, fallback string) (Palette, error) {
	p := DefaultPalette()
	if fallback != "" {
		if _, err := ParseColor(fallback); err != nil {
			return Palette{}, fmt.Errorf("default colour: %w", err)
		}
		p.fallback = strings.ToLower(fallback)
	}
	for label, c := range overrides {
		if _, err := ParseColor(c); err != nil {
			return Palette{}, fmt.Errorf("colour for %q: %w", label, err)
		}
		p.colors[strings.ToLower(label)] = strings.ToLower(c)
	}
	return p, nil
}

// Color returns the CSS colour for a label.
func (p Palette) Color(label string) string {
	if c, ok := p.colors[label]; ok {
		return c
	}
	if p.fallback == "" {
		return DefaultColor
	}
	return p.fallback
}

// RGBA returns the colour for a label as pixels.
func (p Palette) RGBA(label string) color.RGBA {
	c, err := ParseColor(p.Color(label))
	if err != nil {
		return namedColors[DefaultColor]
	}
	return c
}

// ParseColor accepts a named colour or #rrggbb.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}
	if len(s) != 7 || s[0] != '#' {
		return color.RGBA{}, fmt.Errorf("unsupported colour %q", s)
	}
	v, err := strconv.ParseUint(s[1:], 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("unsupported colour %q", s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}

// Capitalize upper-cases the first letter of a label and lower-cases the rest.
func Capitalize(label string) string {
	return cases.Title(language.Und).String(label)
}
