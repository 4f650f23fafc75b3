package theme

import (
	"image/color"

	"gioui.org/unit"
	"gioui.org/widget/material"
)

// Palette defines the observer colors.
type Palette struct {
	Background color.NRGBA
	Surface    color.NRGBA
	Panel      color.NRGBA
	Primary    color.NRGBA
	Text       color.NRGBA
	TextMuted  color.NRGBA
	Border     color.NRGBA
	Warning    color.NRGBA
	Error      color.NRGBA

	// Node fills for the diagram highlight states.
	NodeNeutral color.NRGBA
	NodeSuccess color.NRGBA
	NodeError   color.NRGBA
	NodeText    color.NRGBA
	NodeBorder  color.NRGBA
}

// Config defines the observer metrics.
type Config struct {
	CornerRadius unit.Dp
	Spacing      unit.Dp
	Padding      unit.Dp
	LogPanel     unit.Dp
	FontBody     unit.Sp
	FontCaption  unit.Sp
}

// Theme wraps the material theme with observer-specific styling.
type Theme struct {
	*material.Theme
	Palette Palette
	Config  Config
}

// NewTheme creates the observer theme.
func NewTheme(mtheme *material.Theme) *Theme {
	return &Theme{
		Theme: mtheme,
		Palette: Palette{
			Background: color.NRGBA{R: 0x1E, G: 0x1E, B: 0x22, A: 0xFF},
			Surface:    color.NRGBA{R: 0x26, G: 0x26, B: 0x2B, A: 0xFF},
			Panel:      color.NRGBA{R: 0x2E, G: 0x2E, B: 0x34, A: 0xFF},
			Primary:    color.NRGBA{R: 0x4C, G: 0x8E, B: 0xD9, A: 0xFF},
			Text:       color.NRGBA{R: 0xEC, G: 0xEC, B: 0xEE, A: 0xFF},
			TextMuted:  color.NRGBA{R: 0x97, G: 0x97, B: 0x9F, A: 0xFF},
			Border:     color.NRGBA{R: 0x44, G: 0x44, B: 0x4C, A: 0xFF},
			Warning:    color.NRGBA{R: 0xE8, G: 0xA8, B: 0x3C, A: 0xFF},
			Error:      color.NRGBA{R: 0xE5, G: 0x53, B: 0x5E, A: 0xFF},

			NodeNeutral: color.NRGBA{R: 0xD8, G: 0xD8, B: 0xDC, A: 0xFF},
			NodeSuccess: color.NRGBA{R: 0x7B, G: 0xC9, B: 0x6F, A: 0xFF},
			NodeError:   color.NRGBA{R: 0xF2, G: 0x9D, B: 0xB8, A: 0xFF},
			NodeText:    color.NRGBA{R: 0x20, G: 0x20, B: 0x24, A: 0xFF},
			NodeBorder:  color.NRGBA{R: 0x55, G: 0x55, B: 0x5E, A: 0xFF},
		},
		Config: Config{
			CornerRadius: unit.Dp(4),
			Spacing:      unit.Dp(8),
			Padding:      unit.Dp(12),
			LogPanel:     unit.Dp(380),
			FontBody:     unit.Sp(13),
			FontCaption:  unit.Sp(11),
		},
	}
}
