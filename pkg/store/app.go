package store

import "github.com/aretw0/conduit/pkg/domain"

// App is the session-wide slice: signed-in user and open project.
type App struct {
	*Slice[domain.AppState]
}

// NewApp creates an empty App slice.
func NewApp() *App {
	return &App{Slice: NewSlice(domain.AppState{}, cloneApp)}
}

func cloneApp(s domain.AppState) domain.AppState {
	if s.CurrentProject != nil {
		p := *s.CurrentProject
		s.CurrentProject = &p
	}
	if s.CurrentUser != nil {
		u := *s.CurrentUser
		s.CurrentUser = &u
	}
	return s
}

func (a *App) SetCurrentProject(p *domain.Project) {
	a.Update(func(s domain.AppState) domain.AppState {
		s.CurrentProject = p
		return s
	})
}

func (a *App) SetCurrentUser(u *domain.User) {
	a.Update(func(s domain.AppState) domain.AppState {
		s.CurrentUser = u
		return s
	})
}

func (a *App) SetReady(ready bool) {
	a.Update(func(s domain.AppState) domain.AppState {
		s.Ready = ready
		return s
	})
}

// ProjectID reports the open project's ID. It is the orchestrator's context source.
func (a *App) ProjectID() (string, bool) {
	return a.Get().ProjectID()
}
