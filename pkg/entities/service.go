package entities

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/aretw0/conduit/pkg/request"
	"github.com/aretw0/conduit/pkg/session"
	"github.com/aretw0/conduit/pkg/undo"
	"github.com/google/uuid"
)

// Client is the subset of the orchestrator the service needs.
type Client interface {
	Get(ctx context.Context, path string) (domain.Response, error)
	Post(ctx context.Context, path string, body any) (domain.Response, error)
	Put(ctx context.Context, path string, body any) (domain.Response, error)
	Delete(ctx context.Context, path string) (domain.Response, error)
}

// Service performs domain operations and keeps the session's store in sync.
type Service struct {
	client  Client
	session *session.Manager
	logger  *slog.Logger
}

// Option configures the Service.
type Option func(*Service)

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// New creates a Service.
func New(client Client, sess *session.Manager, opts ...Option) *Service {
	s := &Service{
		client:  client,
		session: sess,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func itemsPath(kind domain.ItemKind) string {
	return "/api/items/" + url.PathEscape(string(kind))
}

func itemPath(kind domain.ItemKind, id string) string {
	return itemsPath(kind) + "/" + url.PathEscape(id)
}

func (s *Service) requireProject() error {
	if _, ok := s.session.ProjectID(); !ok {
		return domain.ErrNoProject
	}
	return nil
}

func validKind(kind domain.ItemKind) error {
	_, err := domain.ParseItemKind(string(kind))
	return err
}

// fetch GETs path and decodes the body into out.
func (s *Service) fetch(ctx context.Context, path string, out any) error {
	resp, err := s.client.Get(ctx, path)
	if err != nil {
		s.logger.DebugContext(ctx, "load failed", "path", path, "err", err)
		return err
	}
	if resp.Data.Kind == domain.BodyEmpty {
		return nil
	}
	if err := request.DecodeJSON(resp.Data, out); err != nil {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// loading flips the UI loading flag for the duration of a load.
func (s *Service) loading() func() {
	ui := s.session.Store().UI
	ui.SetLoading(true)
	return func() { ui.SetLoading(false) }
}

// LoadProjects returns the projects visible to the user.
func (s *Service) LoadProjects(ctx context.Context) ([]domain.Project, error) {
	var projects []domain.Project
	if err := s.fetch(ctx, "/api/projects", &projects); err != nil {
		return nil, err
	}
	return projects, nil
}

// LoadItems fetches the register for kind into the Data slice.
func (s *Service) LoadItems(ctx context.Context, kind domain.ItemKind) ([]domain.Item, error) {
	if err := validKind(kind); err != nil {
		return nil, err
	}
	if err := s.requireProject(); err != nil {
		return nil, err
	}
	defer s.loading()()

	var items []domain.Item
	if err := s.fetch(ctx, itemsPath(kind), &items); err != nil {
		return nil, err
	}
	data := s.session.Store().Data
	if diff := domain.DiffItems(data.Items(kind), items); !diff.IsEmpty() {
		s.logger.DebugContext(ctx, "register refreshed",
			"kind", kind,
			"added", len(diff.Added),
			"removed", len(diff.Removed),
			"changed", len(diff.Changed),
		)
	}
	data.SetItems(kind, items)
	return items, nil
}

// LoadContacts fetches the project's contacts into the Data slice.
func (s *Service) LoadContacts(ctx context.Context) ([]domain.Contact, error) {
	if err := s.requireProject(); err != nil {
		return nil, err
	}
	defer s.loading()()

	var contacts []domain.Contact
	if err := s.fetch(ctx, "/api/contacts", &contacts); err != nil {
		return nil, err
	}
	s.session.Store().Data.SetContacts(contacts)
	return contacts, nil
}

// LoadDocuments fetches the project's documents into the Data slice.
func (s *Service) LoadDocuments(ctx context.Context) ([]domain.Document, error) {
	if err := s.requireProject(); err != nil {
		return nil, err
	}
	defer s.loading()()

	var docs []domain.Document
	if err := s.fetch(ctx, "/api/documents", &docs); err != nil {
		return nil, err
	}
	s.session.Store().Data.SetDocuments(docs)
	return docs, nil
}

// LoadAll refreshes every project-scoped collection, stopping at the first error.
func (s *Service) LoadAll(ctx context.Context) error {
	for _, kind := range domain.ItemKinds {
		if _, err := s.LoadItems(ctx, kind); err != nil {
			return err
		}
	}
	if _, err := s.LoadContacts(ctx); err != nil {
		return err
	}
	_, err := s.LoadDocuments(ctx)
	return err
}

// decodeItem turns a mutation result into the returned item, if any.
func decodeItem(resp domain.Response, err error) (domain.Item, error) {
	if err != nil {
		return domain.Item{}, err
	}
	var item domain.Item
	if resp.Data.Kind == domain.BodyJSON {
		if err := request.DecodeJSON(resp.Data, &item); err != nil {
			return domain.Item{}, fmt.Errorf("decode item: %w", err)
		}
	}
	return item, nil
}

func describe(verb string, item domain.Item) string {
	kind := strings.TrimSuffix(string(item.Kind), "s")
	return fmt.Sprintf("%s %s %q", verb, kind, item.Title)
}

// CreateItem adds item to its register. A placeholder is shown immediately and
// replaced by the server's copy once the request succeeds.
func (s *Service) CreateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	if err := validKind(item.Kind); err != nil {
		return domain.Item{}, err
	}
	if err := s.requireProject(); err != nil {
		return domain.Item{}, err
	}
	data := s.session.Store().Data

	placeholder := item
	placeholder.ID = "tmp-" + uuid.NewString()
	data.UpsertItem(placeholder)

	created, err := decodeItem(s.post(ctx, item))
	if err != nil {
		data.RemoveItem(item.Kind, placeholder.ID)
		s.logger.WarnContext(ctx, "create rolled back", "kind", item.Kind, "err", err)
		return domain.Item{}, err
	}
	if created.ID == "" {
		if item.ID == "" {
			// Nothing to address the item by, so there is no undo entry either.
			s.logger.WarnContext(ctx, "create returned no id, keeping placeholder", "kind", item.Kind, "placeholder", placeholder.ID)
			return placeholder, nil
		}
		created = item
	}
	if created.Kind == "" {
		created.Kind = item.Kind
	}
	s.replace(placeholder, created)

	s.session.Undo().Push(undo.Entry{
		Description: describe("Create", created),
		Backward: func(ctx context.Context) error {
			if _, err := s.client.Delete(ctx, itemPath(created.Kind, created.ID)); err != nil {
				return err
			}
			data.RemoveItem(created.Kind, created.ID)
			return nil
		},
		Forward: func(ctx context.Context) error {
			again, err := decodeItem(s.post(ctx, created))
			if err != nil {
				return err
			}
			data.UpsertItem(again)
			return nil
		},
	})
	return created, nil
}

func (s *Service) post(ctx context.Context, item domain.Item) (domain.Response, error) {
	return s.client.Post(ctx, itemsPath(item.Kind), item)
}

func (s *Service) put(ctx context.Context, item domain.Item) (domain.Response, error) {
	return s.client.Put(ctx, itemPath(item.Kind, item.ID), item)
}

// replace swaps old for next at old's position.
func (s *Service) replace(old, next domain.Item) {
	data := s.session.Store().Data
	if _, idx, ok := data.RemoveItem(old.Kind, old.ID); ok {
		data.InsertItem(next, idx)
		return
	}
	data.UpsertItem(next)
}

// UpdateItem saves item, showing the change immediately and restoring the
// previous version if the request fails.
func (s *Service) UpdateItem(ctx context.Context, item domain.Item) (domain.Item, error) {
	if err := validKind(item.Kind); err != nil {
		return domain.Item{}, err
	}
	if err := s.requireProject(); err != nil {
		return domain.Item{}, err
	}
	data := s.session.Store().Data

	previous, existed := data.FindItem(item.Kind, item.ID)
	data.UpsertItem(item)

	updated, err := decodeItem(s.put(ctx, item))
	if err != nil {
		if existed {
			data.UpsertItem(previous)
		} else {
			data.RemoveItem(item.Kind, item.ID)
		}
		s.logger.WarnContext(ctx, "update rolled back", "kind", item.Kind, "id", item.ID, "err", err)
		return domain.Item{}, err
	}
	if updated.ID == "" {
		updated = item
	}
	data.UpsertItem(updated)

	if existed {
		s.session.Undo().Push(undo.Entry{
			Description: describe("Edit", updated),
			Backward:    s.putEffect(previous),
			Forward:     s.putEffect(updated),
		})
	}
	return updated, nil
}

func (s *Service) putEffect(item domain.Item) undo.Effect {
	return func(ctx context.Context) error {
		saved, err := decodeItem(s.put(ctx, item))
		if err != nil {
			return err
		}
		if saved.ID == "" {
			saved = item
		}
		s.session.Store().Data.UpsertItem(saved)
		return nil
	}
}

// DeleteItem removes an item, hiding it immediately and putting it back in place
// if the request fails.
func (s *Service) DeleteItem(ctx context.Context, kind domain.ItemKind, id string) error {
	if err := validKind(kind); err != nil {
		return err
	}
	if err := s.requireProject(); err != nil {
		return err
	}
	data := s.session.Store().Data

	removed, index, existed := data.RemoveItem(kind, id)
	if _, err := s.client.Delete(ctx, itemPath(kind, id)); err != nil {
		if existed {
			data.InsertItem(removed, index)
		}
		s.logger.WarnContext(ctx, "delete rolled back", "kind", kind, "id", id, "err", err)
		return err
	}
	if !existed {
		return nil
	}

	s.session.Undo().Push(undo.Entry{
		Description: describe("Delete", removed),
		Backward: func(ctx context.Context) error {
			restored, err := decodeItem(s.post(ctx, removed))
			if err != nil {
				return err
			}
			if restored.ID == "" {
				restored = removed
			}
			data.InsertItem(restored, index)
			return nil
		},
		Forward: func(ctx context.Context) error {
			if _, err := s.client.Delete(ctx, itemPath(kind, id)); err != nil {
				return err
			}
			data.RemoveItem(kind, id)
			return nil
		},
	})
	return nil
}
