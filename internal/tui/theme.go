package tui

import (
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// Theme/palette helpers.
//
// The TUI must remain readable on both light and dark terminal backgrounds,
// so every color is a lipgloss.AdaptiveColor. Faint styling is reserved for
// dark backgrounds; faint text on light terminals often becomes illegible.

func ac(light, dark string) lipgloss.AdaptiveColor {
	return lipgloss.AdaptiveColor{Light: light, Dark: dark}
}

func faintIfDark(st lipgloss.Style) lipgloss.Style {
	if lipgloss.HasDarkBackground() {
		return st.Faint(true)
	}
	return st
}

var (
	colorMuted      lipgloss.TerminalColor = ac("240", "243")
	colorSelectedBg lipgloss.TerminalColor = ac("#e9e9e9", "#262626")
	colorSelectedFg lipgloss.TerminalColor = ac("235", "255")
	colorSurfaceFg  lipgloss.TerminalColor = ac("235", "252")
	colorControlBg  lipgloss.TerminalColor = ac("252", "235")
	colorAccent     lipgloss.TerminalColor = ac("27", "62") // blue
	colorDanger     lipgloss.TerminalColor = ac("124", "203")
	colorWarn       lipgloss.TerminalColor = ac("130", "214")
	colorOK         lipgloss.TerminalColor = ac("28", "78")
)

func styleMuted() lipgloss.Style {
	return faintIfDark(lipgloss.NewStyle().Foreground(colorMuted))
}

func styleTitle() lipgloss.Style {
	return lipgloss.NewStyle().Bold(true).Foreground(colorSurfaceFg)
}

func styleError() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorDanger)
}

func styleAccent() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(colorAccent)
}

// hasDarkBackground consults termenv directly; lipgloss caches its answer
// from program start, which is what we want inside the alt screen.
func hasDarkBackground() bool {
	return termenv.HasDarkBackground()
}

func statusColor(endState bool) lipgloss.TerminalColor {
	if endState {
		return colorOK
	}
	return colorWarn
}
