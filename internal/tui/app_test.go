package tui

import (
	"context"
	"errors"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dianegit/develops-task-management/internal/api"
	"github.com/dianegit/develops-task-management/internal/credstore"
	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/query"
	"github.com/dianegit/develops-task-management/internal/session"
	"github.com/dianegit/develops-task-management/internal/store"
)

// fakeBackend implements both the TUI client surface and the session
// manager's client slice, backed by an in-memory task table.
type fakeBackend struct {
	tasks    []model.Task
	listErr  error
	profile  model.UserProfile
	deleted  []string
	patched  []string
	loggedIn bool
}

func (f *fakeBackend) ListTasks(_ context.Context, filter model.Filter) (model.TaskList, error) {
	if f.listErr != nil {
		return model.TaskList{}, f.listErr
	}
	var out []model.Task
	for _, t := range f.tasks {
		if filter.Search != "" && !strings.Contains(t.Title, filter.Search) {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, t)
	}
	return model.TaskList{Tasks: out, Total: len(out)}, nil
}

func (f *fakeBackend) CreateTask(_ context.Context, d api.TaskDraft) (model.Task, error) {
	t := model.Task{ID: "new", Title: d.Title, Status: model.StatusTodo}
	f.tasks = append(f.tasks, t)
	return t, nil
}

func (f *fakeBackend) UpdateTask(_ context.Context, id string, d api.TaskDraft) (model.Task, error) {
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Title = d.Title
			return f.tasks[i], nil
		}
	}
	return model.Task{}, errors.New("no such task")
}

func (f *fakeBackend) UpdateTaskStatus(_ context.Context, id string, status model.Status) (model.Task, error) {
	f.patched = append(f.patched, id)
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks[i].Status = status
			return f.tasks[i], nil
		}
	}
	return model.Task{}, errors.New("no such task")
}

func (f *fakeBackend) DeleteTask(_ context.Context, id string) error {
	f.deleted = append(f.deleted, id)
	kept := f.tasks[:0]
	for _, t := range f.tasks {
		if t.ID != id {
			kept = append(kept, t)
		}
	}
	f.tasks = kept
	return nil
}

func (f *fakeBackend) Analytics(context.Context) (model.Analytics, error) {
	return model.Analytics{TotalTasks: len(f.tasks)}, nil
}

func (f *fakeBackend) ListUsers(context.Context) ([]model.UserProfile, error) {
	return []model.UserProfile{f.profile}, nil
}

func (f *fakeBackend) AuditLogs(context.Context, int) ([]model.AuditLog, error) {
	return nil, nil
}

func (f *fakeBackend) SecurityEvents(context.Context, int) ([]model.SecurityEvent, error) {
	return nil, nil
}

func (f *fakeBackend) UpdateUserStatus(_ context.Context, id string, active bool) (model.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeBackend) UpdateUserRole(_ context.Context, id string, role model.Role) (model.UserProfile, error) {
	return f.profile, nil
}

func (f *fakeBackend) Login(context.Context, string, string) (model.TokenPair, error) {
	f.loggedIn = true
	return model.TokenPair{AccessToken: "a", RefreshToken: "r"}, nil
}

func (f *fakeBackend) Register(_ context.Context, email, fullName, _ string) (model.UserProfile, error) {
	return model.UserProfile{Email: email, FullName: fullName, Role: model.RoleUser}, nil
}

func (f *fakeBackend) Logout(context.Context) error { return nil }

func (f *fakeBackend) Profile(context.Context) (model.UserProfile, error) {
	return f.profile, nil
}

type memTokens struct {
	pair model.TokenPair
}

func (m *memTokens) Load(context.Context) (model.TokenPair, error) {
	if !m.pair.Present() {
		return model.TokenPair{}, credstore.ErrNoCredentials
	}
	return m.pair, nil
}

func (m *memTokens) Save(_ context.Context, pair model.TokenPair) error {
	m.pair = pair
	return nil
}

func (m *memTokens) Clear(context.Context) error {
	m.pair = model.TokenPair{}
	return nil
}

func sampleTasks() []model.Task {
	return []model.Task{
		{ID: "1", Title: "write report", Status: model.StatusTodo, Priority: model.PriorityHigh},
		{ID: "2", Title: "review code", Status: model.StatusInProgress, Priority: model.PriorityMedium},
	}
}

func newTestApp(t *testing.T, backend *fakeBackend, authed bool) appModel {
	t.Helper()
	tokens := &memTokens{}
	if authed {
		tokens.pair = model.TokenPair{AccessToken: "a", RefreshToken: "r"}
	}
	mgr := session.NewManager(backend, tokens)
	m := newAppModel(Deps{Client: backend, Sessions: mgr})
	m.width, m.height = 100, 40
	m.resize()
	return m
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// settle runs the given message and any follow-up fetch commands to
// completion, returning the settled model.
func settle(t *testing.T, m appModel, msg tea.Msg) appModel {
	t.Helper()
	next, cmd := m.Update(msg)
	m = next.(appModel)
	for cmd != nil {
		out := cmd()
		if out == nil {
			break
		}
		switch out.(type) {
		case tasksFetchedMsg, bootstrapDoneMsg, loginDoneMsg, registerDoneMsg, logoutDoneMsg, taskMutatedMsg, adminLoadedMsg, adminMutatedMsg:
			next, cmd = m.Update(out)
			m = next.(appModel)
		default:
			return m
		}
	}
	return m
}

func bootstrappedDashboard(t *testing.T, backend *fakeBackend) appModel {
	t.Helper()
	m := newTestApp(t, backend, true)
	if err := m.deps.Sessions.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}
	m = settle(t, m, bootstrapDoneMsg{})
	if m.view != viewDashboard {
		t.Fatalf("expected dashboard after authenticated bootstrap, got view %d", m.view)
	}
	return m
}

func TestBootstrapWithoutSessionRoutesToLogin(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestApp(t, backend, false)
	if m.view != viewGate {
		t.Fatalf("expected app to start on the gate, got view %d", m.view)
	}

	if err := m.deps.Sessions.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}
	m = settle(t, m, bootstrapDoneMsg{})
	if m.view != viewLogin {
		t.Fatalf("expected login view for an anonymous session, got view %d", m.view)
	}
}

func TestBootstrapWithSessionLoadsDashboard(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", FullName: "Ada", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	res := m.engine.Snapshot()
	if res.State != query.StateLoaded || len(res.Tasks) != 2 {
		t.Fatalf("expected the initial fetch to load 2 tasks, got %+v", res)
	}
	if len(m.taskList.Items()) != 2 {
		t.Fatalf("expected the list to mirror the engine snapshot, got %d items", len(m.taskList.Items()))
	}
}

func TestStaleFetchResultDoesNotClobberList(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	// Two filter changes in quick succession; the older response arrives
	// last and must be discarded.
	job1, _ := m.engine.SetFilter(model.Filter{Search: "report"})
	job2, _ := m.engine.SetFilter(model.Filter{Search: "review"})

	fresh, _ := backend.ListTasks(context.Background(), job2.Filter)
	stale, _ := backend.ListTasks(context.Background(), job1.Filter)

	next, _ := m.Update(tasksFetchedMsg{job: job2, list: fresh})
	m = next.(appModel)
	next, _ = m.Update(tasksFetchedMsg{job: job1, list: stale})
	m = next.(appModel)

	items := m.taskList.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 item from the newest filter, got %d", len(items))
	}
	if it := items[0].(taskItem); it.task.ID != "2" {
		t.Fatalf("expected the review task, got %+v", it.task)
	}
}

func TestLoginFailureStaysOnLogin(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestApp(t, backend, false)
	m.view = viewLogin

	next, _ := m.Update(loginDoneMsg{err: errors.New("invalid credentials")})
	m = next.(appModel)
	if m.view != viewLogin {
		t.Fatalf("expected to remain on login, got view %d", m.view)
	}
	if m.errLine == "" {
		t.Fatalf("expected the failure to be surfaced")
	}
}

func TestLoginWithoutProfileStaysOnLogin(t *testing.T) {
	// Token stored but the session snapshot carries no user: rendering a
	// dashboard for nobody is worse than asking again.
	backend := &fakeBackend{}
	m := newTestApp(t, backend, false)
	m.view = viewLogin

	next, _ := m.Update(loginDoneMsg{})
	m = next.(appModel)
	if m.view != viewLogin {
		t.Fatalf("expected to remain on login without a profile, got view %d", m.view)
	}
}

func TestRegisterHandsOverToLogin(t *testing.T) {
	backend := &fakeBackend{}
	m := newTestApp(t, backend, false)
	m.view = viewRegister

	next, _ := m.Update(registerDoneMsg{email: "new@example.com"})
	m = next.(appModel)
	if m.view != viewLogin {
		t.Fatalf("expected login view after registration, got view %d", m.view)
	}
	if got := m.login.inputs[0].Value(); got != "new@example.com" {
		t.Fatalf("expected the email prefilled, got %q", got)
	}
	if m.notice == "" {
		t.Fatalf("expected a sign-in prompt notice")
	}
}

func TestDeleteRequiresConfirmation(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	next, _ := m.Update(keyRune('d'))
	m = next.(appModel)
	if m.modal != modalConfirmDelete {
		t.Fatalf("expected the confirm modal, got modal %d", m.modal)
	}
	if m.confirmFocus != confirmFocusCancel {
		t.Fatalf("expected focus to default to cancel")
	}
	if len(backend.deleted) != 0 {
		t.Fatalf("expected no delete dispatched before confirmation")
	}

	// Enter on the default (cancel) focus aborts.
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.modal != modalNone {
		t.Fatalf("expected the modal dismissed, got modal %d", m.modal)
	}
	if len(backend.deleted) != 0 {
		t.Fatalf("expected cancel to dispatch nothing, got %v", backend.deleted)
	}
}

func TestConfirmedDeleteReloads(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	next, _ := m.Update(keyRune('d'))
	m = next.(appModel)
	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyTab})
	m = next.(appModel)
	if m.confirmFocus != confirmFocusConfirm {
		t.Fatalf("expected tab to move focus to confirm")
	}

	m = settle(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if len(backend.deleted) != 1 {
		t.Fatalf("expected exactly one delete, got %v", backend.deleted)
	}
	// Reload-not-patch: the list reflects the re-fetched collection.
	if len(m.taskList.Items()) != 1 {
		t.Fatalf("expected 1 item after delete+reload, got %d", len(m.taskList.Items()))
	}
}

func TestStatusPatchReloads(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	m = settle(t, m, keyRune('m'))
	if len(backend.patched) != 1 || backend.patched[0] != "1" {
		t.Fatalf("expected a status patch for the selected task, got %v", backend.patched)
	}
	res := m.engine.Snapshot()
	if res.Tasks[0].Status != model.StatusInProgress {
		t.Fatalf("expected the reloaded collection to carry the new status, got %v", res.Tasks[0].Status)
	}
}

func TestAdminSurfaceGatedByRole(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	next, _ := m.Update(keyRune('a'))
	m = next.(appModel)
	if m.view != viewDashboard {
		t.Fatalf("expected a non-admin to stay on the dashboard, got view %d", m.view)
	}
	if m.notice != "Admin role required" {
		t.Fatalf("expected the role notice, got %q", m.notice)
	}
}

func TestAdminSurfaceOpensForAdmin(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleAdmin},
	}
	m := bootstrappedDashboard(t, backend)

	m = settle(t, m, keyRune('a'))
	if m.view != viewAdmin {
		t.Fatalf("expected the admin view, got view %d", m.view)
	}
	view := m.panel.Snapshot()
	if view.Snapshot == nil {
		t.Fatalf("expected the snapshot loaded on entry")
	}
}

func TestLogoutReturnsToLogin(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	m = settle(t, m, keyRune('L'))
	if m.view != viewLogin {
		t.Fatalf("expected login view after logout, got view %d", m.view)
	}
	if s := m.deps.Sessions.Snapshot(); s.User != nil {
		t.Fatalf("expected the session cleared, got %+v", s.User)
	}
	if len(m.taskList.Items()) != 0 {
		t.Fatalf("expected the collection dropped with the session, got %d items", len(m.taskList.Items()))
	}
}

func TestReloginFetchesFreshCollection(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", FullName: "Ada", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	// Leave a sticky filter behind, then log out.
	next, _ := m.Update(keyRune('/'))
	m = next.(appModel)
	m.searchInput.SetValue("report")
	m = settle(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	m = settle(t, m, keyRune('L'))
	if got := m.searchInput.Value(); got != "" {
		t.Fatalf("expected the search input cleared on logout, got %q", got)
	}

	// A different account signs in; its dashboard must show its own tasks,
	// never the previous session's collection.
	backend.profile = model.UserProfile{ID: "u2", FullName: "Grace", Role: model.RoleUser}
	backend.tasks = []model.Task{
		{ID: "9", Title: "ship release", Status: model.StatusTodo, Priority: model.PriorityLow},
	}
	if err := m.deps.Sessions.Login(context.Background(), "grace@example.com", "pw"); err != nil {
		t.Fatalf("Login() error: %v", err)
	}
	m = settle(t, m, loginDoneMsg{})
	if m.view != viewDashboard {
		t.Fatalf("expected the dashboard after re-login, got view %d", m.view)
	}

	items := m.taskList.Items()
	if len(items) != 1 {
		t.Fatalf("expected 1 freshly fetched task, got %d items", len(items))
	}
	if it := items[0].(taskItem); it.task.ID != "9" {
		t.Fatalf("expected the new account's task, got %+v", it.task)
	}
}

func TestTaskFormRejectsEmptyTitleInModal(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	next, _ := m.Update(keyRune('n'))
	m = next.(appModel)
	if m.modal != modalTaskForm {
		t.Fatalf("expected the task form modal, got modal %d", m.modal)
	}

	next, _ = m.Update(tea.KeyMsg{Type: tea.KeyEnter})
	m = next.(appModel)
	if m.modal != modalTaskForm {
		t.Fatalf("expected the invalid draft to stay in the modal")
	}
	if m.form == nil || m.form.err == "" {
		t.Fatalf("expected a validation message in the form")
	}
	if len(backend.tasks) != 2 {
		t.Fatalf("expected no create dispatched, backend has %d tasks", len(backend.tasks))
	}
}

func TestStatsToggleSavesPreference(t *testing.T) {
	t.Setenv("DEVTASKS_CONFIG_DIR", t.TempDir())
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	tokens := &memTokens{pair: model.TokenPair{AccessToken: "a", RefreshToken: "r"}}
	mgr := session.NewManager(backend, tokens)
	m := newAppModel(Deps{Client: backend, Sessions: mgr, Config: &store.Config{}})
	m.width, m.height = 100, 40
	m.resize()
	if err := m.deps.Sessions.Bootstrap(context.Background()); err != nil {
		t.Fatalf("Bootstrap() error: %v", err)
	}
	m = settle(t, m, bootstrapDoneMsg{})
	if !m.statsOpen {
		t.Fatalf("expected the stats panel open by default")
	}

	m = settle(t, m, keyRune('t'))
	if m.statsOpen {
		t.Fatalf("expected the toggle to close the panel")
	}

	cfg, err := store.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig() error: %v", err)
	}
	if cfg.TUI == nil || cfg.TUI.StatsOpen == nil || *cfg.TUI.StatsOpen {
		t.Fatalf("expected statsOpen=false persisted, got %+v", cfg.TUI)
	}
}

func TestQueryFailureKeepsListOnScreen(t *testing.T) {
	backend := &fakeBackend{
		tasks:   sampleTasks(),
		profile: model.UserProfile{ID: "u1", Role: model.RoleUser},
	}
	m := bootstrappedDashboard(t, backend)

	backend.listErr = errors.New("service unavailable")
	m = settle(t, m, keyRune('r'))

	res := m.engine.Snapshot()
	if res.Err == nil {
		t.Fatalf("expected the failure recorded")
	}
	if len(m.taskList.Items()) != 2 {
		t.Fatalf("expected the last-good collection kept on screen, got %d items", len(m.taskList.Items()))
	}
}
