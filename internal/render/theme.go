// Package render draws outlines and symbol lists for terminals.
package render

import (
	"github.com/charmbracelet/lipgloss"
)

var (
	colorPrimary   = lipgloss.Color("39")
	colorSecondary = lipgloss.Color("86")
	colorAccent    = lipgloss.Color("213")
	colorWarning   = lipgloss.Color("220")
	colorDim       = lipgloss.Color("241")

	KindStyle      = lipgloss.NewStyle().Bold(true)
	DetailStyle    = lipgloss.NewStyle()
	CommentStyle   = lipgloss.NewStyle().Foreground(colorDim).Italic(true)
	GuideStyle     = lipgloss.NewStyle().Foreground(colorDim)
	PathStyle      = lipgloss.NewStyle().Bold(true).Foreground(colorSecondary)
	ContainerStyle = lipgloss.NewStyle().Foreground(colorDim)
	SelectedStyle  = lipgloss.NewStyle().Reverse(true)
	StatusStyle    = lipgloss.NewStyle().
			Background(lipgloss.Color("235")).
			Foreground(lipgloss.Color("255")).
			Padding(0, 1)
	ErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// Glyph is the terminal stand-in for an icon key.
type Glyph struct {
	Symbol string
	Color  lipgloss.Color
}

func (g Glyph) Render() string {
	return lipgloss.NewStyle().Foreground(g.Color).Render(g.Symbol)
}

// Theme maps icon keys to glyphs. Keys without an entry use the
// "unknown" glyph.
type Theme struct {
	Glyphs map[string]Glyph
}

func DefaultTheme() Theme {
	return Theme{Glyphs: map[string]Glyph{
		"stack_v":   {Symbol: "▤", Color: colorPrimary},
		"stack_h":   {Symbol: "▥", Color: colorPrimary},
		"text":      {Symbol: "T", Color: colorSecondary},
		"button":    {Symbol: "◉", Color: colorAccent},
		"image":     {Symbol: "▣", Color: colorAccent},
		"scroll":    {Symbol: "⇅", Color: colorPrimary},
		"paging":    {Symbol: "⧉", Color: colorPrimary},
		"indicator": {Symbol: "•", Color: colorSecondary},
		"line":      {Symbol: "─", Color: colorDim},
		"import":    {Symbol: "⇲", Color: colorWarning},
		"exp":       {Symbol: "$", Color: colorWarning},
		"node":      {Symbol: "□", Color: colorDim},
		"unknown":   {Symbol: "?", Color: colorDim},
	}}
}

// WithOverrides returns a copy of t with the symbols in overrides replacing
// the defaults. Unknown keys are added with the dim color.
func (t Theme) WithOverrides(overrides map[string]string) Theme {
	glyphs := make(map[string]Glyph, len(t.Glyphs)+len(overrides))
	for key, glyph := range t.Glyphs {
		glyphs[key] = glyph
	}
	for key, symbol := range overrides {
		glyph, ok := glyphs[key]
		if !ok {
			glyph.Color = colorDim
		}
		glyph.Symbol = symbol
		glyphs[key] = glyph
	}
	return Theme{Glyphs: glyphs}
}

// Glyph resolves an icon key.
func (t Theme) Glyph(iconKey string) Glyph {
	if glyph, ok := t.Glyphs[iconKey]; ok {
		return glyph
	}
	if glyph, ok := t.Glyphs["unknown"]; ok {
		return glyph
	}
	return Glyph{Symbol: "?"}
}
