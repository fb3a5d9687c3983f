// Package tagcolor gives every tag name a stable colour.
package tagcolor

import (
	"unicode/utf16"

	"github.com/charmbracelet/lipgloss"
)

// Palette is the fixed set of tag background colours
var Palette = []lipgloss.Color{
	"#F8B4B4", // rose
	"#FBD38D", // apricot
	"#FAF089", // butter
	"#C6F6D5", // mint
	"#9AE6B4", // sage
	"#B2F5EA", // seafoam
	"#BEE3F8", // sky
	"#A3BFFA", // periwinkle
	"#D6BCFA", // lavender
	"#FBB6CE", // blush
	"#E9D8A6", // sand
	"#CBD5E0", // slate
}

// Hash is a 32-bit string hash over UTF-16 code units: hash*31 + unit,
// wrapping on overflow.
func Hash(s string) int32 {
	var h int32
	for _, unit := range utf16.Encode([]rune(s)) {
		h = (h << 5) - h + int32(unit)
	}
	return h
}

// Index returns the palette position for a name
func Index(name string) int {
	h := int64(Hash(name))
	if h < 0 {
		h = -h
	}
	return int(h % int64(len(Palette)))
}

// For returns the colour for a tag name
func For(name string) lipgloss.Color {
	return Palette[Index(name)]
}

// Style renders a tag chip in its colour
func Style(name string) lipgloss.Style {
	return lipgloss.NewStyle().
		Background(For(name)).
		Foreground(lipgloss.Color("#1A202C")).
		Padding(0, 1)
}
