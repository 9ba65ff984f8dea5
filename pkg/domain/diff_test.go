package domain

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDiffItems(t *testing.T) {
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	q1 := Item{ID: "q-1", Kind: KindQuestion, Title: "Who signs off?", UpdatedAt: at}
	q2 := Item{ID: "q-2", Kind: KindQuestion, Title: "When?", UpdatedAt: at}
	q1Edited := q1
	q1Edited.Title = "Who signs off the plan?"

	tests := []struct {
		name string
		old  []Item
		new  []Item
		want ItemsDiff
	}{
		{
			name: "Initial Load (Old is Nil)",
			old:  nil,
			new:  []Item{q1, q2},
			want: ItemsDiff{Added: []string{"q-1", "q-2"}},
		},
		{
			name: "No Changes",
			old:  []Item{q1, q2},
			new:  []Item{q1, q2},
			want: ItemsDiff{},
		},
		{
			name: "Reordered Only",
			old:  []Item{q1, q2},
			new:  []Item{q2, q1},
			want: ItemsDiff{},
		},
		{
			name: "Edited",
			old:  []Item{q1, q2},
			new:  []Item{q1Edited, q2},
			want: ItemsDiff{Changed: []string{"q-1"}},
		},
		{
			name: "Removed And Added",
			old:  []Item{q1},
			new:  []Item{q2},
			want: ItemsDiff{Added: []string{"q-2"}, Removed: []string{"q-1"}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DiffItems(tt.old, tt.new)
			gotJSON, _ := json.Marshal(got)
			wantJSON, _ := json.Marshal(tt.want)
			if string(gotJSON) != string(wantJSON) {
				t.Errorf("DiffItems() = %s, want %s", gotJSON, wantJSON)
			}
			if got.IsEmpty() != tt.want.IsEmpty() {
				t.Errorf("IsEmpty() = %v, want %v", got.IsEmpty(), tt.want.IsEmpty())
			}
		})
	}
}

func TestItemEqual_TimeZone(t *testing.T) {
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	a := Item{ID: "r-1", UpdatedAt: at}
	b := Item{ID: "r-1", UpdatedAt: at.In(time.FixedZone("CET", 3600))}
	if !a.Equal(b) {
		t.Error("Expected the same instant in different zones to be equal")
	}
}
