package session

import (
	"context"
	"log/slog"
	"sync"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/cache"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/store"
	"github.com/aretw0/conduit/pkg/undo"
)

// Manager owns the session-scoped state of a client.
type Manager struct {
	store  *store.Store
	cache  *cache.Cache
	undo   *undo.Log
	logger *slog.Logger

	mu sync.Mutex // serialises project switches and sign-out
}

// Option configures the Manager.
type Option func(*Manager)

// WithStore shares an existing store.
func WithStore(s *store.Store) Option {
	return func(m *Manager) {
		m.store = s
	}
}

// WithCache sets the persistent cache. The default is an in-memory cache.
func WithCache(c *cache.Cache) Option {
	return func(m *Manager) {
		m.cache = c
	}
}

// WithUndoLog shares an existing undo history.
func WithUndoLog(l *undo.Log) Option {
	return func(m *Manager) {
		m.undo = l
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// NewManager creates a Manager. Collaborators not supplied are created fresh.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		logger: logging.NewNop(), // Default to no-op
	}
	for _, opt := range opts {
		opt(m)
	}
	if m.store == nil {
		m.store = store.New()
	}
	if m.cache == nil {
		m.cache = cache.New(memory.NewStore(), cache.WithLogger(m.logger))
	}
	if m.undo == nil {
		m.undo = undo.New(undo.WithLogger(m.logger))
	}
	return m
}

func (m *Manager) Store() *store.Store { return m.store }
func (m *Manager) Cache() *cache.Cache { return m.cache }
func (m *Manager) Undo() *undo.Log     { return m.undo }

// ProjectID reports the selected project. It is meant to be installed as the
// orchestrator's context source, so it never blocks on I/O.
func (m *Manager) ProjectID() (string, bool) {
	return m.store.App.ProjectID()
}

// Restore loads the last selected project from the cache into the App slice and
// marks the session ready. When only the ID was persisted, a project carrying
// just that ID is restored. It reports whether a project was found.
func (m *Manager) Restore(ctx context.Context) (*domain.Project, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var project domain.Project
	found := m.cache.Get(ctx, domain.KeyCurrentProject, &project) && project.ID != ""
	if !found {
		var id string
		if m.cache.Get(ctx, domain.KeyCurrentProjectID, &id) && id != "" {
			project = domain.Project{ID: id}
			found = true
		}
	}

	if found {
		m.store.App.SetCurrentProject(&project)
		m.logger.InfoContext(ctx, "session restored", "project_id", project.ID)
	}
	m.store.App.SetReady(true)
	if !found {
		return nil, false
	}
	return &project, true
}

// SelectProject makes p the current project and persists it. Switching to a
// different project clears the data and UI slices and the undo history.
// Re-selecting the current project only refreshes its details.
func (m *Manager) SelectProject(ctx context.Context, p domain.Project) error {
	if p.ID == "" {
		return domain.ErrNoProject
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	current, _ := m.store.App.ProjectID()
	switching := current != p.ID

	m.cache.Set(ctx, domain.KeyCurrentProjectID, p.ID)
	m.cache.Set(ctx, domain.KeyCurrentProject, p)

	if switching {
		m.store.ResetProject()
		m.undo.Clear()
	}
	m.store.App.SetCurrentProject(&p)

	m.logger.InfoContext(ctx, "project selected", "project_id", p.ID, "switched", switching)
	return nil
}

// SetUser records the signed-in user.
func (m *Manager) SetUser(u domain.User) {
	m.store.App.SetCurrentUser(&u)
}

// SignOut resets every slice, drops the undo history and forgets the persisted
// project.
func (m *Manager) SignOut(ctx context.Context) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.undo.Clear()
	m.store.Reset()
	m.cache.Remove(ctx, domain.KeyCurrentProjectID)
	m.cache.Remove(ctx, domain.KeyCurrentProject)
	m.logger.InfoContext(ctx, "signed out")
}
