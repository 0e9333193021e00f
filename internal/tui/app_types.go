package tui

import (
	"github.com/dianegit/develops-task-management/internal/model"
	"github.com/dianegit/develops-task-management/internal/query"
)

type view int

const (
	viewGate view = iota // session bootstrap in flight
	viewLogin
	viewRegister
	viewDashboard
	viewAdmin
)

type modal int

const (
	modalNone modal = iota
	modalTaskForm
	modalConfirmDelete
	modalTaskDetail
)

type adminTab int

const (
	adminTabOverview adminTab = iota
	adminTabUsers
	adminTabAudit
	adminTabSecurity
)

type confirmModalFocus int

const (
	confirmFocusConfirm confirmModalFocus = iota
	confirmFocusCancel
)

// bootstrapDoneMsg reports that the session manager finished one bootstrap.
// The manager itself discards stale generations; the message only tells the
// UI to re-read the snapshot.
type bootstrapDoneMsg struct {
	err error
}

type loginDoneMsg struct {
	err error
}

type registerDoneMsg struct {
	email string
	err   error
}

type logoutDoneMsg struct {
	err error
}

// tasksFetchedMsg carries the generation-stamped job so the engine can
// discard results for superseded filters.
type tasksFetchedMsg struct {
	job  query.Job
	list model.TaskList
	err  error
}

type taskMutatedMsg struct {
	action string
	err    error
}

type adminLoadedMsg struct {
	gen int
}

type adminMutatedMsg struct {
	err error
}
