package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/dianegit/develops-task-management/internal/admin"
	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/perm"
	"github.com/dianegit/develops-task-management/internal/query"
)

type appModel struct {
	deps Deps

	width  int
	height int

	view  view
	modal modal

	errLine string
	notice  string

	login    authForm
	register authForm

	engine         *query.Engine
	taskList       list.Model
	searchInput    textinput.Model
	searchFocused  bool
	statusFilter   model.Status
	priorityFilter model.Priority
	statsOpen      bool
	spin           spinner.Model

	form          *taskForm
	confirmTaskID string
	confirmTitle  string
	confirmFocus  confirmModalFocus
	detailTask    *model.Task

	panel        *admin.Panel
	adminTab     adminTab
	adminUserIdx int
}

func newAppModel(deps Deps) appModel {
	m := appModel{
		deps:      deps,
		view:      viewGate,
		engine:    query.NewEngine(deps.Client),
		panel:     admin.NewPanel(deps.Client),
		login:     newLoginForm(),
		register:  newRegisterForm(),
		statsOpen: true,
	}
	if deps.Config != nil && deps.Config.TUI != nil && deps.Config.TUI.StatsOpen != nil {
		m.statsOpen = *deps.Config.TUI.StatsOpen
	}

	m.searchInput = textinput.New()
	m.searchInput.Placeholder = "Search tasks…"
	m.searchInput.Prompt = "/ "
	m.searchInput.CharLimit = 120

	m.spin = spinner.New(spinner.WithSpinner(spinner.Dot))

	m.taskList = list.New(nil, newTaskDelegate(), 0, 0)
	m.taskList.Title = "My Tasks"
	m.taskList.SetShowStatusBar(false)
	m.taskList.SetFilteringEnabled(false) // server-side filtering only
	m.taskList.SetShowHelp(false)
	return m
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.bootstrapCmd(), m.spin.Tick)
}

// The session gate must settle before any role-gated view renders: the app
// stays on viewGate until bootstrapDoneMsg arrives, and loading is never
// read as anonymous.
func (m appModel) bootstrapCmd() tea.Cmd {
	sessions := m.deps.Sessions
	return func() tea.Msg {
		err := sessions.Bootstrap(context.Background())
		return bootstrapDoneMsg{err: err}
	}
}

func (m appModel) fetchTasksCmd(job query.Job) tea.Cmd {
	client := m.deps.Client
	return func() tea.Msg {
		list, err := client.ListTasks(context.Background(), job.Filter)
		return tasksFetchedMsg{job: job, list: list, err: err}
	}
}

func (m appModel) loadAdminCmd() tea.Cmd {
	panel := m.panel
	gen := panel.Begin()
	return func() tea.Msg {
		panel.Load(context.Background(), gen)
		return adminLoadedMsg{gen: gen}
	}
}

func (m appModel) currentFilter() model.Filter {
	return model.Filter{
		Search:   m.searchInput.Value(),
		Status:   m.statusFilter,
		Priority: m.priorityFilter,
	}
}

// applyFilter hands the new filter to the engine; an unchanged filter issues
// no fetch.
func (m *appModel) applyFilter() tea.Cmd {
	job, changed := m.engine.SetFilter(m.currentFilter())
	if !changed {
		return nil
	}
	return m.fetchTasksCmd(job)
}

func (m *appModel) reloadTasks() tea.Cmd {
	return m.fetchTasksCmd(m.engine.Reload())
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.resize()
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case bootstrapDoneMsg:
		return m.afterBootstrap(msg)

	case loginDoneMsg:
		return m.afterLogin(msg)

	case registerDoneMsg:
		return m.afterRegister(msg)

	case logoutDoneMsg:
		m.view = viewLogin
		m.modal = modalNone
		m.login = newLoginForm()
		// Drop the collection and filter with the session; the next login
		// must fetch fresh, never render the previous account's tasks.
		m.engine.Reset()
		m.searchInput.SetValue("")
		m.searchFocused = false
		m.statusFilter = ""
		m.priorityFilter = ""
		m.syncTaskList()
		m.errLine = ""
		m.notice = "Logged out"
		return m, nil

	case tasksFetchedMsg:
		// Stale generations are discarded by the engine; the list only
		// re-renders from the snapshot when the result was applied.
		if m.engine.Complete(msg.job, msg.list, msg.err) {
			m.syncTaskList()
		}
		return m, nil

	case taskMutatedMsg:
		if msg.err != nil {
			m.errLine = msg.action + ": " + msg.err.Error()
			return m, nil
		}
		m.errLine = ""
		m.notice = msg.action
		// Mandatory re-synchronization after every mutation; the local
		// collection is never patched optimistically.
		return m, m.reloadTasks()

	case adminLoadedMsg:
		m.clampAdminCursor()
		return m, nil

	case adminMutatedMsg:
		if msg.err != nil {
			m.errLine = msg.err.Error()
			return m, nil
		}
		m.errLine = ""
		return m, m.loadAdminCmd()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m.routeUpdate(msg)
}

func (m appModel) afterBootstrap(msg bootstrapDoneMsg) (tea.Model, tea.Cmd) {
	s := m.deps.Sessions.Snapshot()
	switch perm.Admit(s, perm.SurfaceDashboard) {
	case perm.DecisionWait:
		// Another bootstrap still outstanding; stay on the gate.
		return m, nil
	case perm.DecisionAllow:
		m.view = viewDashboard
		m.errLine = ""
		return m, m.applyFilter()
	default:
		m.view = viewLogin
		if msg.err != nil {
			m.errLine = "Session expired, please log in again"
		}
		return m, nil
	}
}

func (m appModel) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Ctrl+C always quits, even while an input has focus.
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}

	if m.modal != modalNone {
		return m.updateModal(msg)
	}

	switch m.view {
	case viewGate:
		return m, nil
	case viewLogin:
		return m.updateLogin(msg)
	case viewRegister:
		return m.updateRegister(msg)
	case viewDashboard:
		return m.updateDashboard(msg)
	case viewAdmin:
		return m.updateAdmin(msg)
	}
	return m, nil
}

func (m appModel) routeUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m.view {
	case viewLogin:
		var cmd tea.Cmd
		m.login, cmd = m.login.Update(msg)
		return m, cmd
	case viewRegister:
		var cmd tea.Cmd
		m.register, cmd = m.register.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) resize() {
	listHeight := m.height - m.chromeHeight()
	if listHeight < 3 {
		listHeight = 3
	}
	m.taskList.SetSize(m.width, listHeight)
	m.searchInput.Width = m.width - 8
}

func (m appModel) chromeHeight() int {
	h := 6 // header + filter row + status line
	if m.statsOpen {
		h += statsPanelHeight
	}
	return h
}

func (m appModel) View() string {
	if m.modal != modalNone {
		return m.viewModalScreen()
	}
	switch m.view {
	case viewGate:
		return m.viewGateScreen()
	case viewLogin:
		return m.viewLoginScreen()
	case viewRegister:
		return m.viewRegisterScreen()
	case viewDashboard:
		return m.viewDashboardScreen()
	case viewAdmin:
		return m.viewAdminScreen()
	}
	return ""
}

func (m appModel) viewModalScreen() string {
	switch m.modal {
	case modalTaskForm:
		if m.form != nil {
			return m.form.render(m.width)
		}
	case modalConfirmDelete:
		return renderConfirmModal(m.width, "Delete task",
			"Delete \""+m.confirmTitle+"\"? This cannot be undone.",
			"Delete", "Cancel", m.confirmFocus)
	case modalTaskDetail:
		if m.detailTask != nil {
			return renderTaskDetail(*m.detailTask, m.width)
		}
	}
	return ""
}
