package visualization

import (
	"fmt"
	"image/color"

	"github.com/lucasb-eyer/go-colorful"
)

// HexColors names each overlay color as a "#rrggbb" string.
type HexColors struct {
	Background    string
	Hull          string
	LongDiameter  string
	ShortDiameter string
	LongAxis      string
	ShortAxis     string
	Text          string
	Grid          string
}

// Style controls how scenes are drawn.
type Style struct {
	Background    color.Color
	Hull          color.Color
	LongDiameter  color.Color
	ShortDiameter color.Color
	LongAxis      color.Color
	ShortAxis     color.Color
	Text          color.Color
	Grid          color.Color

	// LineWidth is the stroke width in pixels
	LineWidth int

	// Ticks is the number of labeled ticks per axis; below 2 disables ticks
	Ticks int
}

// DefaultStyle mirrors the default configuration colors.
func DefaultStyle() Style {
	s, _ := NewStyle(HexColors{
		Background:    "#000000",
		Hull:          "#00ff00",
		LongDiameter:  "#0000ff",
		ShortDiameter: "#ff0000",
		LongAxis:      "#ffff00",
		ShortAxis:     "#ff00ff",
		Text:          "#ffffff",
		Grid:          "#808080",
	}, 2, 10)
	return s
}

// NewStyle parses hex colors into a Style.
func NewStyle(hex HexColors, lineWidth, ticks int) (Style, error) {
	style := Style{LineWidth: lineWidth, Ticks: ticks}
	if style.LineWidth < 1 {
		style.LineWidth = 1
	}

	fields := []struct {
		name string
		hex  string
		dst  *color.Color
	}{
		{"background", hex.Background, &style.Background},
		{"hull", hex.Hull, &style.Hull},
		{"longDiameter", hex.LongDiameter, &style.LongDiameter},
		{"shortDiameter", hex.ShortDiameter, &style.ShortDiameter},
		{"longAxis", hex.LongAxis, &style.LongAxis},
		{"shortAxis", hex.ShortAxis, &style.ShortAxis},
		{"text", hex.Text, &style.Text},
		{"grid", hex.Grid, &style.Grid},
	}
	for _, f := range fields {
		c, err := colorful.Hex(f.hex)
		if err != nil {
			return Style{}, fmt.Errorf("invalid %s color %q: %w", f.name, f.hex, err)
		}
		r, g, b := c.RGB255()
		*f.dst = color.NRGBA{R: r, G: g, B: b, A: 255}
	}
	return style, nil
}
