package domain

// AppState is the session-wide slice: who is signed in and which project is open.
type AppState struct {
	CurrentProject *Project
	CurrentUser    *User
	Ready          bool
}

// ProjectID returns the current project's ID, if any.
func (s AppState) ProjectID() (string, bool) {
	if s.CurrentProject == nil || s.CurrentProject.ID == "" {
		return "", false
	}
	return s.CurrentProject.ID, true
}

// DataState holds the collections scoped to the current project.
type DataState struct {
	Questions []Item
	Risks     []Item
	Actions   []Item
	Decisions []Item
	Contacts  []Contact
	Documents []Document
}

// Items returns the collection for kind.
func (s DataState) Items(kind ItemKind) []Item {
	switch kind {
	case KindQuestion:
		return s.Questions
	case KindRisk:
		return s.Risks
	case KindAction:
		return s.Actions
	case KindDecision:
		return s.Decisions
	}
	return nil
}

// WithItems returns a copy of s with the collection for kind replaced.
func (s DataState) WithItems(kind ItemKind, items []Item) DataState {
	switch kind {
	case KindQuestion:
		s.Questions = items
	case KindRisk:
		s.Risks = items
	case KindAction:
		s.Actions = items
	case KindDecision:
		s.Decisions = items
	}
	return s
}

// UIState is transient view state.
type UIState struct {
	ActiveTab  string
	Loading    bool
	SelectedID string
	Filter     string
}
