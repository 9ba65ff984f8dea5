package http

import (
	"time"

	"github.com/aretw0/conduit/pkg/domain"
)

// Seed is the initial content of a Server.
type Seed struct {
	Projects  []domain.Project
	Items     map[string][]domain.Item
	Contacts  map[string][]domain.Contact
	Documents map[string][]domain.Document
}

// DefaultSeed returns a small demo data set with two projects.
func DefaultSeed() Seed {
	at := time.Date(2026, 1, 5, 9, 0, 0, 0, time.UTC)
	return Seed{
		Projects: []domain.Project{
			{ID: "proj-1", Name: "Apollo", Description: "Warehouse migration"},
			{ID: "proj-2", Name: "Borealis", Description: "Customer portal"},
		},
		Items: map[string][]domain.Item{
			"proj-1": {
				{ID: "q-1", Kind: domain.KindQuestion, Title: "Who signs off the cut-over plan?", Status: "open", UpdatedAt: at},
				{ID: "r-1", Kind: domain.KindRisk, Title: "Supplier delay", Status: "open", Priority: "high", UpdatedAt: at},
				{ID: "a-1", Kind: domain.KindAction, Title: "Book the rehearsal window", Owner: "ops", DueDate: "2026-02-01", UpdatedAt: at},
				{ID: "d-1", Kind: domain.KindDecision, Title: "Freeze schema on 15 Jan", Status: "agreed", UpdatedAt: at},
			},
			"proj-2": {
				{ID: "r-2", Kind: domain.KindRisk, Title: "SSO provider change", Status: "open", Priority: "medium", UpdatedAt: at},
			},
		},
		Contacts: map[string][]domain.Contact{
			"proj-1": {{ID: "c-1", Name: "Ada Byron", Email: "ada@example.com", Organisation: "Acme", Role: "sponsor"}},
		},
		Documents: map[string][]domain.Document{
			"proj-1": {{ID: "doc-1", Title: "Project charter", URL: "https://example.com/charter.pdf", Kind: "pdf"}},
		},
	}
}
