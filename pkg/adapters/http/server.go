package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/aretw0/conduit/internal/logging"
	"github.com/aretw0/conduit/pkg/domain"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Server is an in-memory project API.
type Server struct {
	mu        sync.RWMutex
	projects  []domain.Project
	items     map[string][]domain.Item
	contacts  map[string][]domain.Contact
	documents map[string][]domain.Document

	faults     *Faults
	streams    *StreamManager
	logger     *slog.Logger
	middleware []func(http.Handler) http.Handler
	mounts     map[string]http.Handler
	newID      func() string
	now        func() time.Time
}

// Option configures the Server.
type Option func(*Server)

// WithSeed replaces the default demo data.
func WithSeed(seed Seed) Option {
	return func(s *Server) {
		s.load(seed)
	}
}

// WithFaults replaces the fault injector in front of the API routes.
func WithFaults(f *Faults) Option {
	return func(s *Server) {
		s.faults = f
	}
}

// WithLogger sets a custom structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// WithMiddleware wraps every route, e.g. with request metrics.
func WithMiddleware(mw func(http.Handler) http.Handler) Option {
	return func(s *Server) {
		s.middleware = append(s.middleware, mw)
	}
}

// WithMount serves h under pattern outside the API (and outside fault injection),
// e.g. a /metrics endpoint.
func WithMount(pattern string, h http.Handler) Option {
	return func(s *Server) {
		s.mounts[pattern] = h
	}
}

// WithIDGenerator overrides the UUID generator for created items.
func WithIDGenerator(fn func() string) Option {
	return func(s *Server) {
		s.newID = fn
	}
}

// NewServer creates a Server holding DefaultSeed unless WithSeed is given.
func NewServer(opts ...Option) *Server {
	s := &Server{
		logger: logging.NewNop(),
		faults: &Faults{},
		mounts: make(map[string]http.Handler),
		newID:  uuid.NewString,
		now:    time.Now,
	}
	s.load(DefaultSeed())
	for _, opt := range opts {
		opt(s)
	}
	s.streams = NewStreamManager(s.logger)
	return s
}

func (s *Server) load(seed Seed) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects = slices.Clone(seed.Projects)
	s.items = make(map[string][]domain.Item)
	for id, items := range seed.Items {
		s.items[id] = slices.Clone(items)
	}
	s.contacts = make(map[string][]domain.Contact)
	for id, c := range seed.Contacts {
		s.contacts[id] = slices.Clone(c)
	}
	s.documents = make(map[string][]domain.Document)
	for id, d := range seed.Documents {
		s.documents[id] = slices.Clone(d)
	}
}

// Faults returns the installed injector. A server built without WithFaults has
// an empty one, so faults can still be queued at runtime.
func (s *Server) Faults() *Faults {
	return s.faults
}

// Streams returns the change-event fan-out.
func (s *Server) Streams() *StreamManager {
	return s.streams
}

// Handler builds the router.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	for _, mw := range s.middleware {
		r.Use(mw)
	}

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	for pattern, h := range s.mounts {
		r.Handle(pattern, h)
	}

	r.Route("/api", func(r chi.Router) {
		if s.faults != nil {
			r.Use(s.faults.Middleware)
		}
		r.Get("/projects", s.listProjects)

		r.Group(func(r chi.Router) {
			r.Use(s.requireProject)
			r.Get("/contacts", s.listContacts)
			r.Get("/documents", s.listDocuments)
			r.Get("/events", s.events)

			r.Route("/items/{kind}", func(r chi.Router) {
				r.Use(requireKind)
				r.Get("/", s.listItems)
				r.Post("/", s.createItem)
				r.Put("/{id}", s.updateItem)
				r.Delete("/{id}", s.deleteItem)
			})
		})
	})

	return enableCORS(r)
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, PATCH, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+domain.HeaderProjectID)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

type ctxKey int

const (
	projectKey ctxKey = iota
	kindKey
)

func projectFrom(ctx context.Context) string {
	id, _ := ctx.Value(projectKey).(string)
	return id
}

func kindFrom(ctx context.Context) domain.ItemKind {
	k, _ := ctx.Value(kindKey).(domain.ItemKind)
	return k
}

// requireProject resolves the project from the context header (or, for browsers'
// EventSource which cannot set headers, the project_id query parameter).
func (s *Server) requireProject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := strings.TrimSpace(r.Header.Get(domain.HeaderProjectID))
		if id == "" {
			id = r.URL.Query().Get("project_id")
		}
		if id == "" {
			writeError(w, http.StatusBadRequest, "no active project: "+domain.HeaderProjectID+" header is required")
			return
		}
		if !s.hasProject(id) {
			writeError(w, http.StatusNotFound, "project "+id+" not found")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), projectKey, id)))
	})
}

func requireKind(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		kind, err := domain.ParseItemKind(chi.URLParam(r, "kind"))
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), kindKey, kind)))
	})
}

func (s *Server) hasProject(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.ContainsFunc(s.projects, func(p domain.Project) bool { return p.ID == id })
}

func (s *Server) listProjects(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	projects := slices.Clone(s.projects)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, projects)
}

func (s *Server) listContacts(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	contacts := slices.Clone(s.contacts[projectFrom(r.Context())])
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, nonNil(contacts))
}

func (s *Server) listDocuments(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	docs := slices.Clone(s.documents[projectFrom(r.Context())])
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, nonNil(docs))
}

func (s *Server) listItems(w http.ResponseWriter, r *http.Request) {
	projectID, kind := projectFrom(r.Context()), kindFrom(r.Context())

	s.mu.RLock()
	var out []domain.Item
	for _, it := range s.items[projectID] {
		if it.Kind == kind {
			out = append(out, it)
		}
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, nonNil(out))
}

func (s *Server) createItem(w http.ResponseWriter, r *http.Request) {
	projectID, kind := projectFrom(r.Context()), kindFrom(r.Context())

	item, ok := decodeItem(w, r)
	if !ok {
		return
	}
	item.Kind = kind
	if item.ID == "" {
		item.ID = s.newID()
	}
	item.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	if slices.ContainsFunc(s.items[projectID], func(it domain.Item) bool { return it.ID == item.ID }) {
		s.mu.Unlock()
		writeError(w, http.StatusConflict, "item "+item.ID+" already exists")
		return
	}
	s.items[projectID] = append(s.items[projectID], item)
	s.mu.Unlock()

	s.logger.Info("item created", "project_id", projectID, "kind", kind, "id", item.ID)
	s.publish(projectID, "created", item)
	writeJSON(w, http.StatusCreated, item)
}

func (s *Server) updateItem(w http.ResponseWriter, r *http.Request) {
	projectID, kind := projectFrom(r.Context()), kindFrom(r.Context())
	id := chi.URLParam(r, "id")

	item, ok := decodeItem(w, r)
	if !ok {
		return
	}
	item.ID, item.Kind = id, kind
	item.UpdatedAt = s.now().UTC()

	s.mu.Lock()
	idx := s.indexOf(projectID, kind, id)
	if idx < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "item "+id+" not found")
		return
	}
	s.items[projectID][idx] = item
	s.mu.Unlock()

	s.logger.Info("item updated", "project_id", projectID, "kind", kind, "id", id)
	s.publish(projectID, "updated", item)
	writeJSON(w, http.StatusOK, item)
}

func (s *Server) deleteItem(w http.ResponseWriter, r *http.Request) {
	projectID, kind := projectFrom(r.Context()), kindFrom(r.Context())
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	idx := s.indexOf(projectID, kind, id)
	if idx < 0 {
		s.mu.Unlock()
		writeError(w, http.StatusNotFound, "item "+id+" not found")
		return
	}
	removed := s.items[projectID][idx]
	s.items[projectID] = slices.Delete(s.items[projectID], idx, idx+1)
	s.mu.Unlock()

	s.logger.Info("item deleted", "project_id", projectID, "kind", kind, "id", id)
	s.publish(projectID, "deleted", removed)
	w.WriteHeader(http.StatusNoContent)
}

// indexOf must be called with mu held.
func (s *Server) indexOf(projectID string, kind domain.ItemKind, id string) int {
	return slices.IndexFunc(s.items[projectID], func(it domain.Item) bool {
		return it.Kind == kind && it.ID == id
	})
}

// ChangeEvent is the payload streamed on /api/events.
type ChangeEvent struct {
	Type string      `json:"type"`
	Item domain.Item `json:"item"`
}

func (s *Server) publish(projectID, typ string, item domain.Item) {
	data, err := json.Marshal(ChangeEvent{Type: typ, Item: item})
	if err != nil {
		s.logger.Error("change event encode failed", "err", err)
		return
	}
	s.streams.Broadcast(projectID, string(data))
}

func decodeItem(w http.ResponseWriter, r *http.Request) (domain.Item, bool) {
	var item domain.Item
	if err := json.NewDecoder(r.Body).Decode(&item); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return item, false
	}
	if strings.TrimSpace(item.Title) == "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]any{
			"message": "title is required",
			"fields":  map[string]string{"title": "required"},
		})
		return item, false
	}
	return item, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("response encode failed", "err", err)
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

func nonNil[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}
