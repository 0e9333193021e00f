package tui

import (
	"context"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dianegit/develops-task-management/internal/api"
	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/statusutil"
)

// taskForm is the create/edit modal. Priority and status are cycled rather
// than typed; everything else is a text input.
type taskForm struct {
	editingID string

	title       textinput.Model
	description textinput.Model
	category    textinput.Model
	due         textinput.Model

	priority model.Priority
	status   model.Status

	focus int
	err   string
}

const taskFormInputs = 4

func newTaskForm(t *model.Task) taskForm {
	f := taskForm{
		title:       textinput.New(),
		description: textinput.New(),
		category:    textinput.New(),
		due:         textinput.New(),
		priority:    model.PriorityMedium,
		status:      model.StatusTodo,
	}
	f.title.Placeholder = "Title (required)"
	f.title.CharLimit = 255
	f.description.Placeholder = "Description"
	f.category.Placeholder = "Category"
	f.category.CharLimit = 100
	f.due.Placeholder = "Due (2026-09-30 or 2026-09-30 17:00)"

	if t != nil {
		f.editingID = t.ID
		f.title.SetValue(t.Title)
		f.description.SetValue(t.Description)
		f.category.SetValue(t.Category)
		if t.DueDate != nil {
			f.due.SetValue(t.DueDate.Local().Format("2006-01-02 15:04"))
		}
		f.priority = t.Priority
		f.status = t.Status
	}
	f.title.Focus()
	return f
}

func (f *taskForm) input(i int) *textinput.Model {
	switch i {
	case 0:
		return &f.title
	case 1:
		return &f.description
	case 2:
		return &f.category
	default:
		return &f.due
	}
}

func (f *taskForm) cycleFocus(back bool) {
	f.input(f.focus).Blur()
	if back {
		f.focus = (f.focus - 1 + taskFormInputs) % taskFormInputs
	} else {
		f.focus = (f.focus + 1) % taskFormInputs
	}
	f.input(f.focus).Focus()
}

func (f taskForm) draft() api.TaskDraft {
	return api.TaskDraft{
		Title:       f.title.Value(),
		Description: f.description.Value(),
		Priority:    f.priority,
		Status:      f.status,
		Category:    f.category.Value(),
		DueDate:     f.due.Value(),
	}
}

func (m appModel) submitTaskFormCmd(f taskForm) tea.Cmd {
	client := m.deps.Client
	draft := f.draft()
	editingID := f.editingID
	return func() tea.Msg {
		var err error
		action := "Task created"
		if editingID == "" {
			_, err = client.CreateTask(context.Background(), draft)
		} else {
			action = "Task updated"
			_, err = client.UpdateTask(context.Background(), editingID, draft)
		}
		return taskMutatedMsg{action: action, err: err}
	}
}

func (m appModel) updateModal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.modal {
	case modalTaskForm:
		return m.updateTaskForm(msg)
	case modalConfirmDelete:
		return m.updateConfirmDelete(msg)
	case modalTaskDetail:
		switch msg.Type {
		case tea.KeyEsc, tea.KeyEnter:
			m.modal = modalNone
			m.detailTask = nil
		}
		return m, nil
	}
	return m, nil
}

func (m appModel) updateTaskForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	f := m.form
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = modalNone
		m.form = nil
		return m, nil
	case tea.KeyTab:
		f.cycleFocus(false)
		return m, nil
	case tea.KeyShiftTab:
		f.cycleFocus(true)
		return m, nil
	case tea.KeyCtrlP:
		f.priority = cyclePriorityFilter(f.priority)
		if f.priority == "" {
			f.priority = model.PriorityLow
		}
		return m, nil
	case tea.KeyCtrlT:
		f.status = nextTaskStatus(f.status)
		return m, nil
	case tea.KeyEnter:
		// Boundary validation happens before any network dispatch; an
		// invalid draft never leaves the modal.
		if strings.TrimSpace(f.title.Value()) == "" {
			f.err = "Title must not be empty"
			return m, nil
		}
		if _, err := api.ParseDueDate(f.due.Value()); err != nil {
			f.err = err.Error()
			return m, nil
		}
		form := *f
		m.modal = modalNone
		m.form = nil
		return m, m.submitTaskFormCmd(form)
	}

	var cmd tea.Cmd
	in := f.input(f.focus)
	*in, cmd = in.Update(msg)
	return m, cmd
}

func (m appModel) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		m.modal = modalNone
		m.confirmTaskID = ""
		return m, nil
	case tea.KeyTab, tea.KeyLeft, tea.KeyRight:
		if m.confirmFocus == confirmFocusConfirm {
			m.confirmFocus = confirmFocusCancel
		} else {
			m.confirmFocus = confirmFocusConfirm
		}
		return m, nil
	case tea.KeyEnter:
		id := m.confirmTaskID
		m.modal = modalNone
		m.confirmTaskID = ""
		if m.confirmFocus == confirmFocusConfirm && id != "" {
			return m, m.deleteTaskCmd(id)
		}
		return m, nil
	}
	return m, nil
}

func (f taskForm) render(width int) string {
	var b strings.Builder
	title := "New Task"
	if f.editingID != "" {
		title = "Edit Task"
	}

	labels := []string{"Title", "Description", "Category", "Due"}
	for i := 0; i < taskFormInputs; i++ {
		marker := "  "
		if i == f.focus {
			marker = "> "
		}
		b.WriteString(marker + labels[i] + "\n  ")
		switch i {
		case 0:
			b.WriteString(f.title.View())
		case 1:
			b.WriteString(f.description.View())
		case 2:
			b.WriteString(f.category.View())
		case 3:
			b.WriteString(f.due.View())
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString("Priority: " + statusutil.PriorityLabel(f.priority) + "   Status: " + statusutil.StatusLabel(f.status) + "\n")
	if f.err != "" {
		b.WriteString(styleError().Render(f.err) + "\n")
	}
	b.WriteString(styleMuted().Render("enter: save   tab: next   ctrl+p: priority   ctrl+t: status   esc: cancel"))
	return renderModalBox(width, title, b.String())
}

func renderTaskDetail(t model.Task, width int) string {
	var b strings.Builder
	b.WriteString(statusutil.StatusLabel(t.Status) + " · " + statusutil.PriorityLabel(t.Priority))
	if t.Category != "" {
		b.WriteString(" · " + t.Category)
	}
	b.WriteString("\n")
	if t.DueDate != nil {
		due := "Due " + t.DueDate.Local().Format("2006-01-02 15:04")
		if t.Overdue(time.Now()) {
			due += "  (overdue)"
		}
		b.WriteString(due + "\n")
	}
	if len(t.Tags) > 0 {
		b.WriteString("Tags: " + strings.Join(t.Tags, ", ") + "\n")
	}
	if t.Description != "" {
		b.WriteString("\n")
		b.WriteString(renderMarkdown(t.Description, modalBodyWidth(width)))
		b.WriteString("\n")
	}
	b.WriteString("\n" + faintIfDark(styleMuted()).Render("esc: close"))
	return renderModalBox(width, t.Title, b.String())
}
