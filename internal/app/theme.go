package app

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/theme"

	"github.com/squall321/SmartTwinCluster-sub006/pkg/colorutil"
)

// BoxNetTheme is the default fyne theme recoloured with the atlas palette,
// so widgets match the pattern ink and face highlight drawn on the canvas.
type BoxNetTheme struct{}

var _ fyne.Theme = (*BoxNetTheme)(nil)

func (t *BoxNetTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	switch name {
	case theme.ColorNamePrimary, theme.ColorNameFocus:
		return colorutil.PatternInk
	case theme.ColorNameSelection:
		return colorutil.WithAlpha(colorutil.Highlight, 0.5)
	case theme.ColorNameError:
		return colorutil.MaskInk
	case theme.ColorNameBackground:
		if variant == theme.VariantDark {
			return colorutil.Background
		}
	}
	return theme.DefaultTheme().Color(name, variant)
}

func (t *BoxNetTheme) Font(style fyne.TextStyle) fyne.Resource {
	return theme.DefaultTheme().Font(style)
}

func (t *BoxNetTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}

func (t *BoxNetTheme) Size(name fyne.ThemeSizeName) float32 {
	if name == theme.SizeNameScrollBar {
		return 14
	}
	return theme.DefaultTheme().Size(name)
}
