// Package query owns the task filter and the resulting collection. It is a
// renderer-free state machine: callers ask it for a fetch job, run the job
// however they like (inline, goroutine, bubbletea command), and hand the
// result back. Responses for superseded filter generations are discarded, so
// a slow early request can never overwrite a fast later one.
package query

import (
	"context"
	"sync"

	"github.com/dianegit/develops-task-management/internal/model"
)

type State int

const (
	StateIdle State = iota
	StateLoading
	StateLoaded
	StateFailed
)

// Lister is the slice of the API client the engine needs.
type Lister interface {
	ListTasks(ctx context.Context, f model.Filter) (model.TaskList, error)
}

// Job identifies one fetch: the filter to query and the generation the
// result must carry to be applied. Exactly one job is current at a time.
type Job struct {
	Gen    int
	Filter model.Filter
}

// Result is a point-in-time view of the engine.
type Result struct {
	State  State
	Filter model.Filter
	Tasks  []model.Task
	Total  int
	Err    error
}

type Engine struct {
	client Lister

	mu     sync.Mutex
	state  State
	filter model.Filter
	tasks  []model.Task
	total  int
	err    error
	gen    int
}

func NewEngine(client Lister) *Engine {
	return &Engine{client: client}
}

func (e *Engine) Snapshot() Result {
	e.mu.Lock()
	defer e.mu.Unlock()
	tasks := make([]model.Task, len(e.tasks))
	copy(tasks, e.tasks)
	return Result{State: e.state, Filter: e.filter, Tasks: tasks, Total: e.total, Err: e.err}
}

func (e *Engine) Filter() model.Filter {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.filter
}

// SetFilter starts a new fetch generation when the filter changed by value.
// An unchanged filter issues no job; filter changes are the only implicit
// fetch trigger.
func (e *Engine) SetFilter(f model.Filter) (Job, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if f == e.filter && e.state != StateIdle {
		return Job{}, false
	}
	e.filter = f
	return e.startLocked(), true
}

// Reload starts a fetch against the current filter. Used after any mutation:
// the collection is re-synchronized from the server, never patched locally.
func (e *Engine) Reload() Job {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.startLocked()
}

func (e *Engine) startLocked() Job {
	e.gen++
	e.state = StateLoading
	e.err = nil
	return Job{Gen: e.gen, Filter: e.filter}
}

// Reset returns the engine to its idle zero state and invalidates any
// in-flight job. Used when the session ends: the next session must never
// see the previous session's collection.
func (e *Engine) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.gen++
	e.state = StateIdle
	e.filter = model.Filter{}
	e.tasks = nil
	e.total = 0
	e.err = nil
}

// Complete applies a finished fetch. It reports false when the job's
// generation has been superseded, in which case nothing changes. On failure
// the last-good collection is retained and the error surfaced.
func (e *Engine) Complete(j Job, list model.TaskList, err error) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if j.Gen != e.gen {
		return false
	}
	if err != nil {
		e.state = StateFailed
		e.err = err
		return true
	}
	e.state = StateLoaded
	e.err = nil
	e.tasks = list.Tasks
	e.total = list.Total
	return true
}

// Run performs the job's fetch and applies the result. It reports whether
// the result was applied (false means it was stale and discarded).
func (e *Engine) Run(ctx context.Context, j Job) bool {
	list, err := e.client.ListTasks(ctx, j.Filter)
	return e.Complete(j, list, err)
}

// Refresh is the blocking convenience for scriptable callers: reload the
// current filter and return the resulting snapshot.
func (e *Engine) Refresh(ctx context.Context) (Result, error) {
	j := e.Reload()
	e.Run(ctx, j)
	res := e.Snapshot()
	return res, res.Err
}
