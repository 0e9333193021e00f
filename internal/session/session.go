// Package session owns the authenticated-user object and reconciles it with
// the credential store and the remote profile endpoint. It is the single
// writer of the session; everything else reads snapshots.
package session

import (
	"context"
	"errors"
	"log"
	"sync"

	"github.com/dianegit/develops-task-management/internal/credstore"
	"github.com/dianegit/develops-task-management/internal/model"
)

// Client is the slice of the API client the manager needs.
type Client interface {
	Login(ctx context.Context, email, password string) (model.TokenPair, error)
	Register(ctx context.Context, email, fullName, password string) (model.UserProfile, error)
	Logout(ctx context.Context) error
	Profile(ctx context.Context) (model.UserProfile, error)
}

// CredentialStore is the full read/write surface of the credential store.
// Only this package's login/logout paths (and the API client's 401 handler)
// write it.
type CredentialStore interface {
	Load(ctx context.Context) (model.TokenPair, error)
	Save(ctx context.Context, pair model.TokenPair) error
	Clear(ctx context.Context) error
}

// Session is a point-in-time view. Loading is true only during bootstrap or
// an explicit re-check, never in steady state; a gate must render a
// placeholder while it is set, not "anonymous".
type Session struct {
	User    *model.UserProfile
	Loading bool
}

type Manager struct {
	client Client
	creds  CredentialStore
	logger *log.Logger

	mu      sync.Mutex
	user    *model.UserProfile
	loading bool
	gen     int
}

type Option func(*Manager)

func WithLogger(l *log.Logger) Option {
	return func(m *Manager) { m.logger = l }
}

func NewManager(client Client, creds CredentialStore, opts ...Option) *Manager {
	m := &Manager{client: client, creds: creds}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func (m *Manager) logf(format string, args ...any) {
	if m.logger != nil {
		m.logger.Printf(format, args...)
	}
}

// Snapshot returns a copy of the current session state.
func (m *Manager) Snapshot() Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	var user *model.UserProfile
	if m.user != nil {
		u := *m.user
		user = &u
	}
	return Session{User: user, Loading: m.loading}
}

// Bootstrap reconciles the session with the credential store. Absent
// credentials resolve to a nil user without touching the network. A failed
// profile fetch also resolves to a nil user but does NOT clear stored
// credentials: transient failures must not log the user out everywhere, and
// genuinely dead tokens are cleared by the API client's 401 handler the
// moment the server rejects them.
//
// Each call starts a new generation; a slower earlier call whose response
// arrives after a newer one is discarded, so the user never flickers between
// two non-nil values and loading only drops when the latest check completes.
func (m *Manager) Bootstrap(ctx context.Context) error {
	m.mu.Lock()
	m.gen++
	gen := m.gen
	m.loading = true
	m.mu.Unlock()

	if _, err := m.creds.Load(ctx); err != nil {
		if !errors.Is(err, credstore.ErrNoCredentials) {
			m.finish(gen, nil)
			return err
		}
		m.finish(gen, nil)
		return nil
	}

	profile, err := m.client.Profile(ctx)
	if err != nil {
		m.logf("bootstrap: profile fetch failed: %v", err)
		m.finish(gen, nil)
		return err
	}
	m.finish(gen, &profile)
	return nil
}

func (m *Manager) finish(gen int, user *model.UserProfile) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if gen != m.gen {
		// A newer bootstrap superseded this one; its result is stale.
		return
	}
	m.user = user
	m.loading = false
}

// Login exchanges credentials for a token pair, persists the pair, then
// re-runs the bootstrap profile fetch. The user is never populated from the
// login response; the profile endpoint is the canonical source.
func (m *Manager) Login(ctx context.Context, email, password string) error {
	pair, err := m.client.Login(ctx, email, password)
	if err != nil {
		return err
	}
	if err := m.creds.Save(ctx, pair); err != nil {
		return err
	}
	return m.Bootstrap(ctx)
}

// Register creates an account without authenticating; callers still log in.
func (m *Manager) Register(ctx context.Context, email, fullName, password string) (model.UserProfile, error) {
	return m.client.Register(ctx, email, fullName, password)
}

// Logout revokes the session best-effort, then unconditionally clears the
// credential store and the user. Logout must be effective locally regardless
// of network state.
func (m *Manager) Logout(ctx context.Context) error {
	if err := m.client.Logout(ctx); err != nil {
		m.logf("logout: remote revoke failed: %v", err)
	}
	clearErr := m.creds.Clear(ctx)

	m.mu.Lock()
	m.gen++ // discard any in-flight bootstrap result
	m.user = nil
	m.loading = false
	m.mu.Unlock()

	return clearErr
}
