package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"
)

// CompactTheme wraps the default theme with tighter spacing and the
// platform's pink and blue accents.
type CompactTheme struct {
	fyne.Theme
}

// NewCompactTheme creates a new compact theme
func NewCompactTheme() fyne.Theme {
	return &CompactTheme{Theme: theme.DefaultTheme()}
}

var compactColors = map[fyne.ThemeColorName]color.Color{
	theme.ColorNamePrimary:   color.NRGBA{R: 251, G: 114, B: 153, A: 255},
	theme.ColorNameHyperlink: color.NRGBA{R: 0, G: 174, B: 236, A: 255},
	theme.ColorNameSuccess:   color.NRGBA{R: 46, G: 160, B: 67, A: 255},
	theme.ColorNameError:     color.NRGBA{R: 198, G: 40, B: 40, A: 255},
}

var compactSizes = map[fyne.ThemeSizeName]float32{
	theme.SizeNamePadding:         3,
	theme.SizeNameInnerPadding:    6,
	theme.SizeNameLineSpacing:     2,
	theme.SizeNameScrollBar:       10,
	theme.SizeNameText:            13,
	theme.SizeNameHeadingText:     17,
	theme.SizeNameSubHeadingText:  14,
	theme.SizeNameCaptionText:     11,
	theme.SizeNameInputRadius:     4,
	theme.SizeNameSelectionRadius: 3,
}

func (t *CompactTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	if c, ok := compactColors[name]; ok {
		return c
	}
	return t.Theme.Color(name, variant)
}

func (t *CompactTheme) Size(name fyne.ThemeSizeName) float32 {
	if s, ok := compactSizes[name]; ok {
		return s
	}
	return t.Theme.Size(name)
}
