// Package session tracks the authenticated identity and persists it so a
// restarted process resumes where it left off.
package session

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"socialvibe/internal/models"
	"socialvibe/internal/observability"
	"socialvibe/internal/recordstore"
	"socialvibe/internal/repository"
)

// DocumentName is the store name of the persisted session.
const DocumentName = "current_session_user"

// State is the authentication state of a Manager.
type State int

const (
	StateAnonymous State = iota
	StateAuthenticating
	StateAuthenticated
)

func (s State) String() string {
	switch s {
	case StateAuthenticating:
		return "authenticating"
	case StateAuthenticated:
		return "authenticated"
	default:
		return "anonymous"
	}
}

// Manager owns the current session.
type Manager struct {
	users repository.UserRepository
	doc   *recordstore.Document[models.Session]

	mu      sync.RWMutex
	state   State
	current *models.Session
}

// NewManager restores any persisted session and subscribes to user changes.
// A missing or corrupt session document leaves the manager anonymous.
func NewManager(ctx context.Context, store *recordstore.Store, users repository.UserRepository) (*Manager, error) {
	m := &Manager{
		users: users,
		doc:   recordstore.NewDocument[models.Session](store, DocumentName),
	}

	s, ok, err := m.doc.Get(ctx)
	switch {
	case errors.Is(err, models.ErrParseError):
		observability.Logger.WarnContext(ctx, "discarding corrupt session", slog.String("error", err.Error()))
	case err != nil:
		return nil, err
	case ok && s.ID != "":
		m.current = &s
		m.state = StateAuthenticated
	}

	users.OnChange(m.Refresh)
	return m, nil
}

// Login authenticates by email and password and persists the session.
func (m *Manager) Login(ctx context.Context, email, password string) (models.Session, error) {
	m.setState(StateAuthenticating)

	user, err := m.users.FindByCredentials(ctx, email, password)
	if err != nil {
		m.fail(ctx)
		return models.Session{}, err
	}
	return m.establish(ctx, user)
}

// Register creates an account and signs in as it.
func (m *Manager) Register(ctx context.Context, username, email, password string) (models.Session, error) {
	m.setState(StateAuthenticating)

	user, err := m.users.Create(ctx, username, email, password)
	if err != nil {
		m.fail(ctx)
		return models.Session{}, err
	}
	return m.establish(ctx, user)
}

func (m *Manager) establish(ctx context.Context, user *models.User) (models.Session, error) {
	s := models.NewSession(user)
	if err := m.doc.Put(ctx, s); err != nil {
		m.fail(ctx)
		return models.Session{}, err
	}

	m.mu.Lock()
	m.current = &s
	m.state = StateAuthenticated
	m.mu.Unlock()

	observability.Logger.InfoContext(observability.WithUserID(ctx, s.ID), "session established")
	return s, nil
}

// fail returns the manager to anonymous after a failed sign-in.
func (m *Manager) fail(ctx context.Context) {
	m.mu.Lock()
	m.current = nil
	m.state = StateAnonymous
	m.mu.Unlock()

	if err := m.doc.Delete(ctx); err != nil {
		observability.Logger.ErrorContext(ctx, "failed to clear session", slog.String("error", err.Error()))
	}
}

// Logout clears the session. Logging out while anonymous is a no-op.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.current = nil
	m.state = StateAnonymous
	m.mu.Unlock()
	return m.doc.Delete(ctx)
}

func (m *Manager) setState(s State) {
	m.mu.Lock()
	m.state = s
	m.mu.Unlock()
}

// State returns the current authentication state.
func (m *Manager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.state
}

// Current returns a copy of the session snapshot, if authenticated.
func (m *Manager) Current() (models.Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.current == nil || m.state != StateAuthenticated {
		return models.Session{}, false
	}
	return *m.current, true
}

// RequireUser returns the session or UNAUTHORIZED.
func (m *Manager) RequireUser() (models.Session, error) {
	s, ok := m.Current()
	if !ok {
		return models.Session{}, models.NewUnauthorizedError("Please log in to continue")
	}
	return s, nil
}

// Refresh replaces the snapshot when user is the signed-in user. It is
// registered as a user change listener.
func (m *Manager) Refresh(ctx context.Context, user models.User) {
	m.mu.Lock()
	if m.current == nil || m.current.ID != user.ID {
		m.mu.Unlock()
		return
	}
	s := models.NewSession(&user)
	m.current = &s
	m.mu.Unlock()

	if err := m.doc.Put(ctx, s); err != nil {
		observability.Logger.ErrorContext(ctx, "failed to persist refreshed session",
			slog.String("user_id", user.ID),
			slog.String("error", err.Error()),
		)
	}
}
