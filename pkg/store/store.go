package store

// Store groups the three slices of a client session.
type Store struct {
	App  *App
	Data *Data
	UI   *UI
}

// New creates a Store with every slice at its initial snapshot.
func New() *Store {
	return &Store{
		App:  NewApp(),
		Data: NewData(),
		UI:   NewUI(),
	}
}

// ResetProject clears the project-scoped slices, as on a project switch.
func (s *Store) ResetProject() {
	s.Data.Reset()
	s.UI.Reset()
}

// Reset restores every slice, as on sign-out.
func (s *Store) Reset() {
	s.App.Reset()
	s.ResetProject()
}
