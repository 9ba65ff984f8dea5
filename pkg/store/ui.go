package store

import "github.com/aretw0/conduit/pkg/domain"

// UI holds transient view state.
type UI struct {
	*Slice[domain.UIState]
}

// NewUI creates an empty UI slice.
func NewUI() *UI {
	return &UI{Slice: NewSlice(domain.UIState{}, nil)}
}

func (u *UI) SetActiveTab(tab string) {
	u.Update(func(s domain.UIState) domain.UIState {
		s.ActiveTab = tab
		return s
	})
}

func (u *UI) SetLoading(loading bool) {
	u.Update(func(s domain.UIState) domain.UIState {
		s.Loading = loading
		return s
	})
}

func (u *UI) SetSelectedID(id string) {
	u.Update(func(s domain.UIState) domain.UIState {
		s.SelectedID = id
		return s
	})
}

func (u *UI) SetFilter(filter string) {
	u.Update(func(s domain.UIState) domain.UIState {
		s.Filter = filter
		return s
	})
}
