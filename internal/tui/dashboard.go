package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/perm"
	"github.com/dianegit/develops-task-management/internal/query"
	"github.com/dianegit/develops-task-management/internal/stats"
	"github.com/dianegit/develops-task-management/internal/statusutil"
	"github.com/dianegit/develops-task-management/internal/store"
)

const statsPanelHeight = 5

func (m *appModel) syncTaskList() {
	res := m.engine.Snapshot()
	items := make([]list.Item, 0, len(res.Tasks))
	for _, t := range res.Tasks {
		items = append(items, taskItem{task: t})
	}
	m.taskList.SetItems(items)
}

func (m appModel) selectedTask() (model.Task, bool) {
	it, ok := m.taskList.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func cycleStatusFilter(s model.Status) model.Status {
	switch s {
	case "":
		return model.StatusTodo
	case model.StatusTodo:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusDone
	default:
		return ""
	}
}

func cyclePriorityFilter(p model.Priority) model.Priority {
	switch p {
	case "":
		return model.PriorityLow
	case model.PriorityLow:
		return model.PriorityMedium
	case model.PriorityMedium:
		return model.PriorityHigh
	case model.PriorityHigh:
		return model.PriorityCritical
	default:
		return ""
	}
}

func nextTaskStatus(s model.Status) model.Status {
	switch s {
	case model.StatusTodo:
		return model.StatusInProgress
	case model.StatusInProgress:
		return model.StatusDone
	default:
		return model.StatusTodo
	}
}

func (m appModel) patchStatusCmd(id string, status model.Status) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		_, err := client.UpdateTaskStatus(context.Background(), id, status)
		return taskMutatedMsg{action: "Status updated", err: err}
	}
}

func (m appModel) deleteTaskCmd(id string) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		err := client.DeleteTask(context.Background(), id)
		return taskMutatedMsg{action: "Task deleted", err: err}
	}
}

func (m appModel) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.searchFocused {
		switch msg.Type {
		case tea.KeyEnter:
			m.searchFocused = false
			m.searchInput.Blur()
			return m, m.applyFilter()
		case tea.KeyEsc:
			m.searchFocused = false
			m.searchInput.Blur()
			m.searchInput.SetValue(m.engine.Filter().Search)
			return m, nil
		}
		var cmd tea.Cmd
		m.searchInput, cmd = m.searchInput.Update(msg)
		return m, cmd
	}

	switch msg.String() {
	case "q":
		return m, tea.Quit
	case "/":
		m.searchFocused = true
		return m, m.searchInput.Focus()
	case "s":
		m.statusFilter = cycleStatusFilter(m.statusFilter)
		return m, m.applyFilter()
	case "p":
		m.priorityFilter = cyclePriorityFilter(m.priorityFilter)
		return m, m.applyFilter()
	case "r":
		return m, m.reloadTasks()
	case "t":
		m.statsOpen = !m.statsOpen
		m.resize()
		m.saveStatsOpen()
		return m, nil
	case "n":
		f := newTaskForm(nil)
		m.form = &f
		m.modal = modalTaskForm
		return m, nil
	case "e":
		if t, ok := m.selectedTask(); ok {
			f := newTaskForm(&t)
			m.form = &f
			m.modal = modalTaskForm
		}
		return m, nil
	case "m":
		if t, ok := m.selectedTask(); ok {
			return m, m.patchStatusCmd(t.ID, nextTaskStatus(t.Status))
		}
		return m, nil
	case "d":
		// Irrevocable action guard: never dispatch a delete without the
		// confirm step.
		if t, ok := m.selectedTask(); ok {
			m.confirmTaskID = t.ID
			m.confirmTitle = t.Title
			m.confirmFocus = confirmFocusCancel
			m.modal = modalConfirmDelete
		}
		return m, nil
	case "enter":
		if t, ok := m.selectedTask(); ok {
			task := t
			m.detailTask = &task
			m.modal = modalTaskDetail
		}
		return m, nil
	case "a":
		s := m.deps.Sessions.Snapshot()
		switch perm.Admit(s, perm.SurfaceAdmin) {
		case perm.DecisionAllow:
			m.view = viewAdmin
			m.adminTab = adminTabOverview
			return m, m.loadAdminCmd()
		case perm.DecisionDashboard:
			m.notice = "Admin role required"
			return m, nil
		default:
			return m, nil
		}
	case "L":
		return m, m.logoutCmd()
	}

	var cmd tea.Cmd
	m.taskList, cmd = m.taskList.Update(msg)
	return m, cmd
}

// saveStatsOpen persists the panel preference so the next session restores
// it. Preference only; a failed save is not worth surfacing mid-session.
func (m appModel) saveStatsOpen() {
	cfg := m.deps.Config
	if cfg == nil {
		return
	}
	if cfg.TUI == nil {
		cfg.TUI = &store.TUIConfig{}
	}
	open := m.statsOpen
	cfg.TUI.StatsOpen = &open
	_ = store.SaveConfig(cfg)
}

func (m appModel) viewDashboardScreen() string {
	var b strings.Builder

	s := m.deps.Sessions.Snapshot()
	who := ""
	if s.User != nil {
		who = s.User.FullName + " (" + string(perm.RoleOf(s)) + ")"
	}
	header := styleTitle().Render("My Tasks")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, header, "  ", styleMuted().Render(who)))
	b.WriteString("\n")

	b.WriteString(m.renderFilterRow())
	b.WriteString("\n")

	if m.statsOpen {
		b.WriteString(m.renderStatsPanel())
		b.WriteString("\n")
	}

	res := m.engine.Snapshot()
	if res.State == query.StateLoading {
		b.WriteString(m.spin.View() + " Loading…\n")
	} else if len(res.Tasks) == 0 && res.State == query.StateLoaded {
		b.WriteString(styleMuted().Render("No tasks found. Press n to create one.") + "\n")
	} else {
		b.WriteString(m.taskList.View())
		b.WriteString("\n")
	}

	b.WriteString(m.renderStatusLine(res))
	return b.String()
}

func (m appModel) renderFilterRow() string {
	statusLabel := "all"
	if m.statusFilter != "" {
		statusLabel = statusutil.StatusLabel(m.statusFilter)
	}
	priorityLabel := "all"
	if m.priorityFilter != "" {
		priorityLabel = statusutil.PriorityLabel(m.priorityFilter)
	}

	search := m.searchInput.View()
	if !m.searchFocused && m.searchInput.Value() == "" {
		search = styleMuted().Render("/ search")
	}
	chips := fmt.Sprintf("status:%s  priority:%s", statusLabel, priorityLabel)
	return lipgloss.JoinHorizontal(lipgloss.Top, search, "   ", styleAccent().Render(chips))
}

func (m appModel) renderStatsPanel() string {
	res := m.engine.Snapshot()
	sum := stats.Aggregate(res.Tasks)

	row1 := fmt.Sprintf("Total %d   Completed %d   Completion %.1f%%",
		sum.Total, sum.Completed, sum.CompletionRate)
	row2 := fmt.Sprintf("To Do %d   In Progress %d   Done %d",
		sum.ByStatus[model.StatusTodo], sum.ByStatus[model.StatusInProgress], sum.ByStatus[model.StatusDone])
	row3 := fmt.Sprintf("Low %d   Medium %d   High %d   Critical %d",
		sum.ByPriority[model.PriorityLow], sum.ByPriority[model.PriorityMedium],
		sum.ByPriority[model.PriorityHigh], sum.ByPriority[model.PriorityCritical])

	panel := strings.Join([]string{
		styleTitle().Render("Statistics"),
		row1,
		row2,
		row3,
	}, "\n")
	return lipgloss.NewStyle().Padding(0, 1).Render(panel)
}

func (m appModel) renderStatusLine(res query.Result) string {
	help := "n: new  e: edit  m: status  d: delete  enter: detail  /: search  s/p: filters  r: reload  t: stats  a: admin  L: logout  q: quit"
	line := styleMuted().Render(truncLine(help, m.width))
	if res.Err != nil {
		// Query failures keep the last-good collection on screen; the error
		// is a non-blocking indicator here.
		line = styleError().Render(truncLine("Load failed: "+res.Err.Error()+" (r to retry)", m.width))
	} else if m.errLine != "" {
		line = styleError().Render(truncLine(m.errLine, m.width))
	} else if m.notice != "" {
		line = styleMuted().Render(truncLine(m.notice, m.width))
	}
	return line
}
