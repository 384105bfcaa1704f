package inspect

import (
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"

	"github.com/km-arc/go-wiring/framework/manifest"
	"github.com/km-arc/go-wiring/framework/registry"
)

// Server serves a read-only JSON view of a registry.
//
//	GET  /definitions        every live definition
//	GET  /definitions/{id}   one definition
//	GET  /groups             every group and its members
//	GET  /overrides          id → number of displaced registrations
//	GET  /diagnostics        compile the registry and report
//	POST /lint               lint a manifest body with stub factories
//	GET  /status             revision and counts
//
// The served registry can be replaced with Swap, which also issues a new
// revision id. Diagnostics are cached per revision, so a registry changed in
// place is only recompiled after it is swapped in again.
type Server struct {
	mu        sync.RWMutex
	registry  *registry.Registry
	revision  string
	updatedAt time.Time

	newRegistry func() *registry.Registry
	logger      *slog.Logger
	router      *Router

	// revision → Report
	reports *gocache.Cache
}

const (
	reportExpiration      = 10 * time.Minute
	reportCleanupInterval = 30 * time.Minute
)

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithLogger sets the logger for request and swap logs.
func WithLogger(logger *slog.Logger) ServerOption {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithRegistryFactory sets how POST /lint builds the registry it lints into,
// so lint requests use the same validator pipeline as the served registry.
func WithRegistryFactory(fn func() *registry.Registry) ServerOption {
	return func(s *Server) {
		if fn != nil {
			s.newRegistry = fn
		}
	}
}

// NewServer creates a server for r.
func NewServer(r *registry.Registry, opts ...ServerOption) *Server {
	s := &Server{
		newRegistry: func() *registry.Registry { return registry.New() },
		logger:      slog.New(slog.DiscardHandler),
		reports:     gocache.New(reportExpiration, reportCleanupInterval),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.swap(r)

	s.router = NewRouter(s.logger)
	s.router.Get("/definitions", s.listDefinitions)
	s.router.Get("/definitions/{id}", s.showDefinition)
	s.router.Get("/groups", s.listGroups)
	s.router.Get("/overrides", s.listOverrides)
	s.router.Get("/diagnostics", s.diagnostics)
	s.router.Post("/lint", s.lint)
	s.router.Get("/status", s.status)
	return s
}

// Swap replaces the served registry and returns the new revision id.
func (s *Server) Swap(r *registry.Registry) string {
	rev := s.swap(r)
	s.logger.Info("registry swapped", "revision", rev)
	return rev
}

func (s *Server) swap(r *registry.Registry) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.revision != "" {
		s.reports.Delete(s.revision)
	}
	s.registry = r
	s.revision = uuid.NewString()
	s.updatedAt = time.Now().UTC()
	return s.revision
}

// Registry returns the served registry.
func (s *Server) Registry() *registry.Registry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.registry
}

// Revision returns the current revision id.
func (s *Server) Revision() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// ── Views ─────────────────────────────────────────────────────────────────────

type definitionView struct {
	ID         string   `json:"id"`
	Type       string   `json:"type"`
	Arity      int      `json:"arity"`
	Args       []string `json:"args"`
	Group      string   `json:"group,omitempty"`
	Overridden int      `json:"overridden"`
}

type groupView struct {
	ID      string   `json:"id"`
	Element string   `json:"element"`
	Members []string `json:"members"`
}

type statusView struct {
	Revision    string    `json:"revision"`
	UpdatedAt   time.Time `json:"updated_at"`
	Definitions int       `json:"definitions"`
	Groups      int       `json:"groups"`
	Overrides   int       `json:"overrides"`
}

func newDefinitionView(snap *registry.Snapshot, id string) definitionView {
	def, _ := snap.Definition(id)
	args := def.Args()
	if args == nil {
		args = []string{}
	}
	return definitionView{
		ID:         id,
		Type:       def.Factory().Type().String(),
		Arity:      def.Factory().Arity(),
		Args:       args,
		Group:      def.Group(),
		Overridden: len(snap.Overridden(id)),
	}
}

// ── Handlers ──────────────────────────────────────────────────────────────────

func (s *Server) listDefinitions(w http.ResponseWriter, r *http.Request) {
	snap := s.Registry().Snapshot()
	views := []definitionView{}
	for _, id := range snap.DefinitionIDs() {
		views = append(views, newDefinitionView(snap, id))
	}
	NewResponse(w).Success(views)
}

func (s *Server) showDefinition(w http.ResponseWriter, r *http.Request) {
	id := NewRequest(r).RouteParam("id")
	snap := s.Registry().Snapshot()
	if !snap.HasDefinition(id) {
		NewResponse(w).NotFound("No definition named " + id + ".")
		return
	}
	NewResponse(w).Success(newDefinitionView(snap, id))
}

func (s *Server) listGroups(w http.ResponseWriter, r *http.Request) {
	snap := s.Registry().Snapshot()
	views := []groupView{}
	for _, id := range snap.GroupIDs() {
		g, _ := snap.Group(id)
		members := snap.Members(id)
		if members == nil {
			members = []string{}
		}
		views = append(views, groupView{ID: id, Element: g.Aggregate().Elem().String(), Members: members})
	}
	NewResponse(w).Success(views)
}

func (s *Server) listOverrides(w http.ResponseWriter, r *http.Request) {
	snap := s.Registry().Snapshot()
	counts := make(map[string]int)
	for _, id := range snap.OverriddenIDs() {
		counts[id] = len(snap.Overridden(id))
	}
	NewResponse(w).Success(counts)
}

func (s *Server) diagnostics(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	rev, reg := s.revision, s.registry
	s.mu.RUnlock()

	if cached, found := s.reports.Get(rev); found {
		if rep, ok := cached.(Report); ok {
			s.logger.Debug("diagnostics cache hit", "revision", rev)
			NewResponse(w).JSON(http.StatusOK, rep)
			return
		}
	}

	_, err := reg.CompileContext(r.Context())
	rep := NewReport(err)
	s.reports.SetDefault(rev, rep)
	NewResponse(w).JSON(http.StatusOK, rep)
}

func (s *Server) lint(w http.ResponseWriter, r *http.Request) {
	res := NewResponse(w)

	m, err := NewRequest(r).Manifest()
	if err != nil {
		res.Error(http.StatusBadRequest, err.Error())
		return
	}

	reg := s.newRegistry()
	if err := manifest.Apply(reg, m, manifest.Stubs{}); err != nil {
		res.Report(NewReport(err))
		return
	}
	_, err = reg.CompileContext(r.Context())
	res.Report(NewReport(err))
}

func (s *Server) status(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	view := statusView{Revision: s.revision, UpdatedAt: s.updatedAt}
	reg := s.registry
	s.mu.RUnlock()

	snap := reg.Snapshot()
	view.Definitions = len(snap.DefinitionIDs())
	view.Groups = len(snap.GroupIDs())
	view.Overrides = len(snap.OverriddenIDs())
	NewResponse(w).Success(view)
}
