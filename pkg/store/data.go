package store

import (
	"slices"

	"github.com/aretw0/conduit/pkg/domain"
)

// Data holds the collections scoped to the open project.
type Data struct {
	*Slice[domain.DataState]
}

// NewData creates an empty Data slice.
func NewData() *Data {
	return &Data{Slice: NewSlice(domain.DataState{}, cloneData)}
}

func cloneData(s domain.DataState) domain.DataState {
	s.Questions = slices.Clone(s.Questions)
	s.Risks = slices.Clone(s.Risks)
	s.Actions = slices.Clone(s.Actions)
	s.Decisions = slices.Clone(s.Decisions)
	s.Contacts = slices.Clone(s.Contacts)
	s.Documents = slices.Clone(s.Documents)
	return s
}

func (d *Data) SetQuestions(items []domain.Item) { d.SetItems(domain.KindQuestion, items) }
func (d *Data) SetRisks(items []domain.Item)     { d.SetItems(domain.KindRisk, items) }
func (d *Data) SetActions(items []domain.Item)   { d.SetItems(domain.KindAction, items) }
func (d *Data) SetDecisions(items []domain.Item) { d.SetItems(domain.KindDecision, items) }

// SetItems replaces the collection for kind. Unknown kinds are ignored.
func (d *Data) SetItems(kind domain.ItemKind, items []domain.Item) {
	if !slices.Contains(domain.ItemKinds, kind) {
		return
	}
	d.Update(func(s domain.DataState) domain.DataState {
		return s.WithItems(kind, items)
	})
}

func (d *Data) SetContacts(contacts []domain.Contact) {
	d.Update(func(s domain.DataState) domain.DataState {
		s.Contacts = contacts
		return s
	})
}

func (d *Data) SetDocuments(docs []domain.Document) {
	d.Update(func(s domain.DataState) domain.DataState {
		s.Documents = docs
		return s
	})
}

// Items returns a copy of the collection for kind.
func (d *Data) Items(kind domain.ItemKind) []domain.Item {
	return d.Get().Items(kind)
}

// FindItem looks up an item by kind and ID.
func (d *Data) FindItem(kind domain.ItemKind, id string) (domain.Item, bool) {
	items := d.Items(kind)
	if i := indexOf(items, id); i >= 0 {
		return items[i], true
	}
	return domain.Item{}, false
}

// UpsertItem replaces the item with the same ID in its kind's collection, or appends it.
func (d *Data) UpsertItem(item domain.Item) {
	if !slices.Contains(domain.ItemKinds, item.Kind) {
		return
	}
	d.Update(func(s domain.DataState) domain.DataState {
		items := s.Items(item.Kind)
		if i := indexOf(items, item.ID); i >= 0 {
			items[i] = item
		} else {
			items = append(items, item)
		}
		return s.WithItems(item.Kind, items)
	})
}

// InsertItem places item at index in its kind's collection, clamping index to the
// valid range. An existing item with the same ID is replaced in place instead.
func (d *Data) InsertItem(item domain.Item, index int) {
	if !slices.Contains(domain.ItemKinds, item.Kind) {
		return
	}
	d.Update(func(s domain.DataState) domain.DataState {
		items := s.Items(item.Kind)
		if i := indexOf(items, item.ID); i >= 0 {
			items[i] = item
			return s.WithItems(item.Kind, items)
		}
		index = max(0, min(index, len(items)))
		return s.WithItems(item.Kind, slices.Insert(items, index, item))
	})
}

// RemoveItem deletes an item and returns it with its former position.
// Nothing is committed, and no subscriber is notified, when the item is absent.
func (d *Data) RemoveItem(kind domain.ItemKind, id string) (domain.Item, int, bool) {
	var (
		removed domain.Item
		index   = -1
	)
	d.update(func(s domain.DataState) (domain.DataState, bool) {
		items := s.Items(kind)
		index = indexOf(items, id)
		if index < 0 {
			return s, false
		}
		removed = items[index]
		return s.WithItems(kind, slices.Delete(items, index, index+1)), true
	})
	return removed, index, index >= 0
}

func indexOf(items []domain.Item, id string) int {
	return slices.IndexFunc(items, func(it domain.Item) bool { return it.ID == id })
}
