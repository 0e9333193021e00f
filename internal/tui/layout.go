package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	xansi "github.com/charmbracelet/x/ansi"
)

// truncLine forces s to at most width columns (ANSI-aware), appending an
// ellipsis when cut.
func truncLine(s string, width int) string {
	if width <= 0 {
		return ""
	}
	if xansi.StringWidth(s) <= width {
		return s
	}
	if width == 1 {
		return xansi.Cut(s, 0, 1)
	}
	return xansi.Cut(s, 0, width-1) + "…"
}

// padLine forces s to exactly width columns.
func padLine(s string, width int) string {
	s = truncLine(s, width)
	if w := xansi.StringWidth(s); w < width {
		s += strings.Repeat(" ", width-w)
	}
	return s
}

func modalBodyWidth(width int) int {
	w := width - 12
	if w > 72 {
		w = 72
	}
	if w < 24 {
		w = 24
	}
	return w
}

// renderModalBox centers a titled box over the given terminal width. No
// borders: some terminals show background artifacts when nesting bordered
// components inside a modal with a background color.
func renderModalBox(width int, title string, content string) string {
	bodyW := modalBodyWidth(width)
	box := lipgloss.NewStyle().
		Background(colorControlBg).
		Foreground(colorSurfaceFg).
		Padding(1, 2).
		Width(bodyW + 4)

	head := styleTitle().Background(colorControlBg).Render(truncLine(title, bodyW))
	lines := []string{head, ""}
	for _, ln := range strings.Split(content, "\n") {
		lines = append(lines, padLine(ln, bodyW))
	}
	return lipgloss.Place(width, lipgloss.Height(box.Render(strings.Join(lines, "\n")))+2,
		lipgloss.Center, lipgloss.Center,
		box.Render(strings.Join(lines, "\n")))
}

func renderConfirmModal(width int, title string, body string, confirmLabel string, cancelLabel string, focus confirmModalFocus) string {
	btnBase := lipgloss.NewStyle().
		Padding(0, 1).
		Foreground(colorSurfaceFg).
		Background(colorControlBg)
	btnActive := btnBase.
		Foreground(colorSelectedFg).
		Background(colorSelectedBg).
		Bold(true)

	confirm := btnBase.Render(confirmLabel)
	cancel := btnBase.Render(cancelLabel)
	if focus == confirmFocusConfirm {
		confirm = btnActive.Render(confirmLabel)
	}
	if focus == confirmFocusCancel {
		cancel = btnActive.Render(cancelLabel)
	}

	sep := lipgloss.NewStyle().Background(colorControlBg).Render(" ")
	controls := lipgloss.JoinHorizontal(lipgloss.Top, confirm, sep, cancel)

	bodyW := modalBodyWidth(width)
	help := styleMuted().Width(bodyW).Render("tab: focus   enter: select   esc: cancel")

	content := strings.Join([]string{
		body,
		"",
		controls,
		"",
		help,
	}, "\n")
	return renderModalBox(width, title, content)
}
