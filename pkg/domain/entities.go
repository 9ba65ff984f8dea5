package domain

import (
	"fmt"
	"time"
)

// Project is a workspace scope; its ID travels in the context header.
type Project struct {
	ID          string `json:"id" mapstructure:"id"`
	Name        string `json:"name" mapstructure:"name"`
	Description string `json:"description,omitempty" mapstructure:"description"`
}

// User is the signed-in account.
type User struct {
	ID    string `json:"id" mapstructure:"id"`
	Name  string `json:"name" mapstructure:"name"`
	Email string `json:"email,omitempty" mapstructure:"email"`
	Role  string `json:"role,omitempty" mapstructure:"role"`
}

// ItemKind names one of the register panels.
type ItemKind string

const (
	KindQuestion ItemKind = "questions"
	KindRisk     ItemKind = "risks"
	KindAction   ItemKind = "actions"
	KindDecision ItemKind = "decisions"
)

// ItemKinds lists every supported kind in panel order.
var ItemKinds = []ItemKind{KindQuestion, KindRisk, KindAction, KindDecision}

// ParseItemKind validates a kind name.
func ParseItemKind(s string) (ItemKind, error) {
	for _, k := range ItemKinds {
		if string(k) == s {
			return k, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// Item is an entry in the questions, risks, actions or decisions register.
type Item struct {
	ID          string    `json:"id" mapstructure:"id"`
	Kind        ItemKind  `json:"kind" mapstructure:"kind"`
	Title       string    `json:"title" mapstructure:"title"`
	Description string    `json:"description,omitempty" mapstructure:"description"`
	Status      string    `json:"status,omitempty" mapstructure:"status"`
	Owner       string    `json:"owner,omitempty" mapstructure:"owner"`
	Priority    string    `json:"priority,omitempty" mapstructure:"priority"`
	DueDate     string    `json:"due_date,omitempty" mapstructure:"due_date"`
	UpdatedAt   time.Time `json:"updated_at,omitzero" mapstructure:"updated_at"`
}

// Contact is a stakeholder attached to a project.
type Contact struct {
	ID           string `json:"id" mapstructure:"id"`
	Name         string `json:"name" mapstructure:"name"`
	Email        string `json:"email,omitempty" mapstructure:"email"`
	Organisation string `json:"organisation,omitempty" mapstructure:"organisation"`
	Role         string `json:"role,omitempty" mapstructure:"role"`
}

// Document is a reference to a project file.
type Document struct {
	ID    string `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`
	URL   string `json:"url,omitempty" mapstructure:"url"`
	Kind  string `json:"kind,omitempty" mapstructure:"kind"`
}
