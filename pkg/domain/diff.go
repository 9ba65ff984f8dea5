package domain

import "time"

// ItemsDiff summarises how a register changed between two loads.
// It holds IDs only and is meant for logging and change feeds.
type ItemsDiff struct {
	Added   []string `json:"added,omitempty"`
	Removed []string `json:"removed,omitempty"`
	Changed []string `json:"changed,omitempty"`
}

// DiffItems compares two versions of a register by item ID.
// Order changes alone are not reported.
func DiffItems(old, new []Item) ItemsDiff {
	var diff ItemsDiff

	before := make(map[string]Item, len(old))
	for _, it := range old {
		before[it.ID] = it
	}

	seen := make(map[string]bool, len(new))
	for _, it := range new {
		seen[it.ID] = true
		prev, ok := before[it.ID]
		switch {
		case !ok:
			diff.Added = append(diff.Added, it.ID)
		case !prev.Equal(it):
			diff.Changed = append(diff.Changed, it.ID)
		}
	}

	for _, it := range old {
		if !seen[it.ID] {
			diff.Removed = append(diff.Removed, it.ID)
		}
	}
	return diff
}

// IsEmpty reports whether nothing changed.
func (d ItemsDiff) IsEmpty() bool {
	return len(d.Added) == 0 && len(d.Removed) == 0 && len(d.Changed) == 0
}

// Equal compares items field by field, with UpdatedAt compared as an instant.
func (it Item) Equal(other Item) bool {
	if !it.UpdatedAt.Equal(other.UpdatedAt) {
		return false
	}
	a, b := it, other
	a.UpdatedAt, b.UpdatedAt = time.Time{}, time.Time{}
	return a == b
}
