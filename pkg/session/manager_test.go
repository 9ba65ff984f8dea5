package session_test

import (
	"context"
	"sync"
	"testing"

	"github.com/aretw0/conduit/pkg/adapters/memory"
	"github.com/aretw0/conduit/pkg/cache"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/session"
	"github.com/aretw0/conduit/pkg/undo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManager_SelectAndRestore(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()

	first := session.NewManager(session.WithCache(cache.New(backend)))
	require.NoError(t, first.SelectProject(ctx, domain.Project{ID: "proj-42", Name: "Apollo"}))

	id, ok := first.ProjectID()
	require.True(t, ok)
	assert.Equal(t, "proj-42", id)

	// A new process over the same storage.
	second := session.NewManager(session.WithCache(cache.New(backend)))
	project, ok := second.Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, "Apollo", project.Name)
	assert.True(t, second.Store().App.Get().Ready)

	id, ok = second.ProjectID()
	require.True(t, ok)
	assert.Equal(t, "proj-42", id)
}

func TestManager_RestoreFromIDOnly(t *testing.T) {
	ctx := context.Background()
	c := cache.New(memory.NewStore())
	c.Set(ctx, domain.KeyCurrentProjectID, "proj-7")

	m := session.NewManager(session.WithCache(c))
	project, ok := m.Restore(ctx)
	require.True(t, ok)
	assert.Equal(t, domain.Project{ID: "proj-7"}, *project)
}

func TestManager_RestoreWithNothingPersisted(t *testing.T) {
	m := session.NewManager()

	project, ok := m.Restore(context.Background())
	assert.False(t, ok)
	assert.Nil(t, project)
	assert.True(t, m.Store().App.Get().Ready)
	_, ok = m.ProjectID()
	assert.False(t, ok)
}

func TestManager_ProjectSwitchResetsScopedState(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager()
	require.NoError(t, m.SelectProject(ctx, domain.Project{ID: "p1"}))

	m.Store().Data.UpsertItem(domain.Item{ID: "r1", Kind: domain.KindRisk, Title: "x"})
	m.Store().UI.SetActiveTab("risks")
	m.Undo().Push(undo.Entry{Description: "create risk"})

	// Re-selecting the same project keeps everything.
	require.NoError(t, m.SelectProject(ctx, domain.Project{ID: "p1", Name: "renamed"}))
	assert.Len(t, m.Store().Data.Items(domain.KindRisk), 1)
	assert.True(t, m.Undo().CanUndo())
	assert.Equal(t, "renamed", m.Store().App.Get().CurrentProject.Name)

	require.NoError(t, m.SelectProject(ctx, domain.Project{ID: "p2"}))
	assert.Empty(t, m.Store().Data.Items(domain.KindRisk))
	assert.Equal(t, domain.UIState{}, m.Store().UI.Get())
	assert.False(t, m.Undo().CanUndo())

	id, _ := m.ProjectID()
	assert.Equal(t, "p2", id)
}

func TestManager_SelectProjectRequiresID(t *testing.T) {
	m := session.NewManager()
	assert.ErrorIs(t, m.SelectProject(context.Background(), domain.Project{Name: "nameless"}), domain.ErrNoProject)
}

func TestManager_SignOut(t *testing.T) {
	ctx := context.Background()
	backend := memory.NewStore()
	m := session.NewManager(session.WithCache(cache.New(backend)))

	require.NoError(t, m.SelectProject(ctx, domain.Project{ID: "p1"}))
	m.SetUser(domain.User{ID: "u1", Name: "Ada"})
	m.Undo().Push(undo.Entry{Description: "x"})

	m.SignOut(ctx)

	app := m.Store().App.Get()
	assert.Nil(t, app.CurrentProject)
	assert.Nil(t, app.CurrentUser)
	assert.False(t, m.Undo().CanUndo())

	keys, err := backend.Keys(ctx)
	require.NoError(t, err)
	assert.Empty(t, keys)

	_, ok := session.NewManager(session.WithCache(cache.New(backend))).Restore(ctx)
	assert.False(t, ok)
}

func TestManager_ConcurrentSwitches(t *testing.T) {
	ctx := context.Background()
	m := session.NewManager()

	var wg sync.WaitGroup
	for _, id := range []string{"a", "b", "c", "d"} {
		wg.Add(1)
		go func(id string) {
			defer wg.Done()
			assert.NoError(t, m.SelectProject(ctx, domain.Project{ID: id}))
		}(id)
	}
	wg.Wait()

	id, ok := m.ProjectID()
	require.True(t, ok)
	assert.Contains(t, []string{"a", "b", "c", "d"}, id)
}
