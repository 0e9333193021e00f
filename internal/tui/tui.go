package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/dianegit/develops-task-management/internal/admin"
	"github.com/dianegit/develops-task-management/internal/api"
	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/query"
	"github.com/dianegit/develops-task-management/internal/session"
	"github.com/dianegit/develops-task-management/internal/store"
)

// Client is the slice of the API client the TUI drives.
type Client interface {
	query.Lister
	admin.Client
	CreateTask(ctx context.Context, d api.TaskDraft) (model.Task, error)
	UpdateTask(ctx context.Context, id string, d api.TaskDraft) (model.Task, error)
	UpdateTaskStatus(ctx context.Context, id string, status model.Status) (model.Task, error)
	DeleteTask(ctx context.Context, id string) error
}

type Deps struct {
	Client   Client
	Sessions *session.Manager
	Config   *store.Config
}

func Run(deps Deps) error {
	m := newAppModel(deps)
	_, err := tea.NewProgram(m, tea.WithAltScreen()).Run()
	return err
}
