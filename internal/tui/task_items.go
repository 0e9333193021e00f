package tui

import (
	"fmt"
	"io"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/statusutil"
)

type taskItem struct {
	task model.Task
}

func (i taskItem) Title() string       { return i.task.Title }
func (i taskItem) FilterValue() string { return i.task.Title }

// taskDelegate renders one task per row: status glyph, title, then due and
// priority metadata right-aligned.
type taskDelegate struct {
	normal   lipgloss.Style
	selected lipgloss.Style
	meta     lipgloss.Style
	overdue  lipgloss.Style
}

func newTaskDelegate() taskDelegate {
	return taskDelegate{
		normal: lipgloss.NewStyle().Foreground(colorSurfaceFg),
		selected: lipgloss.NewStyle().
			Foreground(colorSelectedFg).
			Background(colorSelectedBg).
			Bold(true),
		meta:    styleMuted(),
		overdue: lipgloss.NewStyle().Foreground(colorDanger).Bold(true),
	}
}

func (d taskDelegate) Height() int                             { return 1 }
func (d taskDelegate) Spacing() int                            { return 0 }
func (d taskDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd { return nil }

func statusGlyph(s model.Status) string {
	switch s {
	case model.StatusDone:
		return "✓"
	case model.StatusInProgress:
		return "◐"
	default:
		return "○"
	}
}

func (d taskDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	it, ok := item.(taskItem)
	if !ok {
		return
	}
	contentW := m.Width()
	if contentW < 8 {
		fmt.Fprint(w, "")
		return
	}

	t := it.task
	meta := statusutil.PriorityLabel(t.Priority)
	if t.DueDate != nil {
		meta += "  due " + t.DueDate.Local().Format("Jan 2")
	}
	if t.Overdue(time.Now()) {
		meta += "  OVERDUE"
	}

	left := statusGlyph(t.Status) + " " + t.Title
	metaW := lipgloss.Width(meta)
	leftW := contentW - metaW - 2
	if leftW < 4 {
		leftW = 4
	}
	left = padLine(left, leftW)

	line := left + "  " + meta
	line = padLine(line, contentW)

	style := d.normal
	if t.Overdue(time.Now()) {
		style = d.overdue
	}
	if index == m.Index() {
		style = d.selected
	}
	fmt.Fprint(w, style.Render(line))
}
