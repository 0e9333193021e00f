// Package admin loads the read-only admin snapshot and drives the two user
// mutations. The four sub-fetches form one logical snapshot: if any fails,
// the whole load fails rather than rendering a panel with silently missing
// sections.
package admin

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/dianegit/develops-task-management/internal/model"
)

const recentLimit = 10

// Client is the slice of the API client the panel needs.
type Client interface {
	Analytics(ctx context.Context) (model.Analytics, error)
	ListUsers(ctx context.Context) ([]model.UserProfile, error)
	AuditLogs(ctx context.Context, limit int) ([]model.AuditLog, error)
	SecurityEvents(ctx context.Context, limit int) ([]model.SecurityEvent, error)
	UpdateUserStatus(ctx context.Context, id string, active bool) (model.UserProfile, error)
	UpdateUserRole(ctx context.Context, id string, role model.Role) (model.UserProfile, error)
}

type Panel struct {
	client Client

	mu       sync.Mutex
	gen      int
	snapshot *model.AdminSnapshot
	err      error
	loading  bool
}

// View is a point-in-time read of the panel.
type View struct {
	Snapshot *model.AdminSnapshot
	Err      error
	Loading  bool
}

func NewPanel(client Client) *Panel {
	return &Panel{client: client}
}

func (p *Panel) Snapshot() View {
	p.mu.Lock()
	defer p.mu.Unlock()
	return View{Snapshot: p.snapshot, Err: p.err, Loading: p.loading}
}

// Begin starts a new snapshot generation. As with the task query engine, a
// completed load whose generation was superseded is discarded.
func (p *Panel) Begin() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.gen++
	p.loading = true
	return p.gen
}

// Load fetches the four snapshot resources concurrently and applies the
// batch under the given generation. All-or-nothing: the first failing
// sub-fetch cancels the rest and fails the snapshot.
func (p *Panel) Load(ctx context.Context, gen int) bool {
	var snap model.AdminSnapshot
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		stats, err := p.client.Analytics(gctx)
		if err != nil {
			return fmt.Errorf("analytics: %w", err)
		}
		snap.Stats = stats
		return nil
	})
	g.Go(func() error {
		users, err := p.client.ListUsers(gctx)
		if err != nil {
			return fmt.Errorf("users: %w", err)
		}
		snap.Users = users
		return nil
	})
	g.Go(func() error {
		logs, err := p.client.AuditLogs(gctx, recentLimit)
		if err != nil {
			return fmt.Errorf("audit logs: %w", err)
		}
		snap.AuditLogs = logs
		return nil
	})
	g.Go(func() error {
		events, err := p.client.SecurityEvents(gctx, recentLimit)
		if err != nil {
			return fmt.Errorf("security events: %w", err)
		}
		snap.SecurityEvents = events
		return nil
	})
	err := g.Wait()

	p.mu.Lock()
	defer p.mu.Unlock()
	if gen != p.gen {
		return false
	}
	p.loading = false
	if err != nil {
		// Last consistent snapshot is retained; the failure is surfaced.
		p.err = err
		return true
	}
	p.err = nil
	p.snapshot = &snap
	return true
}

// Refresh is the blocking convenience: one full load against a fresh
// generation.
func (p *Panel) Refresh(ctx context.Context) (View, error) {
	gen := p.Begin()
	p.Load(ctx, gen)
	v := p.Snapshot()
	return v, v.Err
}

// ToggleUserStatus flips a user's active flag, then reloads the snapshot.
// Reload-not-patch, same discipline as task mutations.
func (p *Panel) ToggleUserStatus(ctx context.Context, user model.UserProfile) error {
	if _, err := p.client.UpdateUserStatus(ctx, user.ID, !user.IsActive); err != nil {
		return err
	}
	_, err := p.Refresh(ctx)
	return err
}

// ChangeUserRole sets a user's role, then reloads the snapshot.
func (p *Panel) ChangeUserRole(ctx context.Context, userID string, role model.Role) error {
	if _, err := p.client.UpdateUserRole(ctx, userID, role); err != nil {
		return err
	}
	_, err := p.Refresh(ctx)
	return err
}
