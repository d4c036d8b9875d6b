package prompt

import (
	"io"

	"github.com/charmbracelet/lipgloss"
)

const (
	headerLightColorConstant  = "#5A56E0"
	headerDarkColorConstant   = "#7571F9"
	oursLightColorConstant    = "#1A7F37"
	oursDarkColorConstant     = "#3FB950"
	theirsLightColorConstant  = "#0550AE"
	theirsDarkColorConstant   = "#58A6FF"
	baseLightColorConstant    = "#6E7781"
	baseDarkColorConstant     = "#8B949E"
	warningLightColorConstant = "#9A6700"
	warningDarkColorConstant  = "#D29922"
)

// Styles renders the sections of a conflict listing.
type Styles struct {
	Header  lipgloss.Style
	Ours    lipgloss.Style
	Theirs  lipgloss.Style
	Base    lipgloss.Style
	Warning lipgloss.Style
}

// NewStyles builds styles bound to the output writer so color support is detected
// for that stream rather than for the process stdout.
func NewStyles(output io.Writer) Styles {
	renderer := lipgloss.NewRenderer(output)
	return Styles{
		Header:  renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: headerLightColorConstant, Dark: headerDarkColorConstant}).Bold(true),
		Ours:    renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: oursLightColorConstant, Dark: oursDarkColorConstant}).Bold(true),
		Theirs:  renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: theirsLightColorConstant, Dark: theirsDarkColorConstant}).Bold(true),
		Base:    renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: baseLightColorConstant, Dark: baseDarkColorConstant}).Italic(true),
		Warning: renderer.NewStyle().Foreground(lipgloss.AdaptiveColor{Light: warningLightColorConstant, Dark: warningDarkColorConstant}),
	}
}
