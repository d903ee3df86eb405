// SPDX-License-Identifier: MPL-2.0

package cmd

import (
	"io"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"

	"github.com/mcewann/qakit/internal/config"
)

// Color palette shared by all CLI output.
const (
	// ColorPrimary is purple, for titles and headers.
	ColorPrimary = lipgloss.Color("#7C3AED")
	// ColorMuted is gray, for subtitles and secondary text.
	ColorMuted = lipgloss.Color("#6B7280")
	// ColorSuccess is green.
	ColorSuccess = lipgloss.Color("#10B981")
	// ColorError is red.
	ColorError = lipgloss.Color("#EF4444")
	// ColorWarning is amber.
	ColorWarning = lipgloss.Color("#F59E0B")
	// ColorHighlight is blue, for commands and interactive elements.
	ColorHighlight = lipgloss.Color("#3B82F6")
	// ColorVerbose is light gray, for supplementary details.
	ColorVerbose = lipgloss.Color("#9CA3AF")
)

// Styles are the palette styles bound to one output's color profile.
type Styles struct {
	renderer *lipgloss.Renderer
	mode     config.ColorMode

	Title    lipgloss.Style
	Subtitle lipgloss.Style
	Success  lipgloss.Style
	Error    lipgloss.Style
	Warning  lipgloss.Style
	Cmd      lipgloss.Style
	Verbose  lipgloss.Style
}

// NewStyles builds the palette for w. ColorAuto detects the terminal and
// honors NO_COLOR; the other modes force a profile.
func NewStyles(w io.Writer, mode config.ColorMode) Styles {
	r := lipgloss.NewRenderer(w)
	switch {
	case mode == config.ColorNever, mode == config.ColorAuto && termenv.EnvNoColor():
		r.SetColorProfile(termenv.Ascii)
	case mode == config.ColorAlways:
		r.SetColorProfile(termenv.TrueColor)
	}

	return Styles{
		renderer: r,
		mode:     mode,
		Title:    r.NewStyle().Bold(true).Foreground(ColorPrimary),
		Subtitle: r.NewStyle().Foreground(ColorMuted),
		Success:  r.NewStyle().Foreground(ColorSuccess),
		Error:    r.NewStyle().Bold(true).Foreground(ColorError),
		Warning:  r.NewStyle().Foreground(ColorWarning),
		Cmd:      r.NewStyle().Foreground(ColorHighlight),
		Verbose:  r.NewStyle().Foreground(ColorVerbose),
	}
}

// Plain reports whether the styles render without escape sequences.
func (s Styles) Plain() bool {
	return s.renderer.ColorProfile() == termenv.Ascii
}

// MarkdownStyle returns the glamour style matching the profile.
func (s Styles) MarkdownStyle() string {
	switch {
	case s.Plain():
		return "notty"
	case s.renderer.HasDarkBackground():
		return "dark"
	default:
		return "light"
	}
}

// Renderer returns the lipgloss renderer behind the styles.
func (s Styles) Renderer() *lipgloss.Renderer {
	return s.renderer
}
