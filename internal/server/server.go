// Package server is the access-control dispatcher. It resolves the caller,
// checks game membership and the dungeon master role, and routes each request
// through a declarative table to an entity read or write.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/alfredjeanlab/dungeonmaster/internal/entity"
	"github.com/alfredjeanlab/dungeonmaster/internal/events"
	"github.com/alfredjeanlab/dungeonmaster/internal/identity"
	"github.com/alfredjeanlab/dungeonmaster/internal/reference"
	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

// Referencer serves rules-reference documents.
type Referencer interface {
	Lookup(ctx context.Context, q reference.Query) (map[string]any, error)
}

// Server dispatches game requests against a store. It holds no per-request or
// cross-request state of its own.
type Server struct {
	store     store.Store
	publisher events.Publisher
	reference Referencer
	logger    *slog.Logger
	now       func() time.Time
}

type Option func(*Server)

func WithPublisher(p events.Publisher) Option { return func(s *Server) { s.publisher = p } }

func WithReference(r Referencer) Option { return func(s *Server) { s.reference = r } }

func WithLogger(l *slog.Logger) Option { return func(s *Server) { s.logger = l } }

// WithClock sets the clock used to stamp writes.
func WithClock(now func() time.Time) Option { return func(s *Server) { s.now = now } }

// New returns a Server backed by st. Without WithReference the /reference
// route uses the public SRD API.
func New(st store.Store, opts ...Option) *Server {
	s := &Server{
		store:     st,
		publisher: events.NoopPublisher{},
		logger:    slog.Default(),
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.reference == nil {
		s.reference = reference.New(st, reference.Options{Logger: s.logger})
	}
	return s
}

// Request is the transport-neutral input to Dispatch.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Query  url.Values
	Body   []byte
}

// Response is a successful dispatch outcome.
type Response struct {
	Status int
	Body   any
}

// WriteResult is the body returned by a successful POST.
type WriteResult struct {
	OK          bool      `json:"ok"`
	LastUpdated time.Time `json:"last_updated"`
}

// call is the per-request state built up while dispatching.
type call struct {
	req  Request
	id   identity.Identity
	game entity.Record
	isDM bool
}

func (s *Server) open(k entity.Kind, id string) (*entity.Entity, error) {
	e, err := k.Open(s.store, id, entity.WithClock(s.now))
	if err != nil {
		return nil, ErrInvalidIdentifier.wrap(err)
	}
	return e, nil
}

// Dispatch runs one request through identity resolution, the membership and
// role checks, and the routing table. Every error it returns is a *Failure.
func (s *Server) Dispatch(ctx context.Context, req Request) (Response, error) {
	c, err := s.authorize(ctx, req)
	if err != nil {
		return Response{}, err
	}

	rt, ok := lookupRoute(normalizePath(req.Path))
	if !ok {
		return Response{}, ErrRouteNotSupported
	}
	if rt.dmOnly && !c.isDM {
		return Response{}, ErrForbidden
	}
	if !rt.allows(req.Method) {
		return Response{}, ErrRouteNotSupported
	}

	var body any
	switch {
	case req.Method == http.MethodPost:
		body, err = s.write(ctx, rt, c)
	case rt.read != nil:
		body, err = rt.read(s, ctx, c)
	default:
		body, err = s.readEntity(ctx, rt, c)
	}
	if err != nil {
		return Response{}, asFailure(err)
	}
	return Response{Status: http.StatusOK, Body: body}, nil
}

// authorize resolves the caller and checks that they belong to the game.
func (s *Server) authorize(ctx context.Context, req Request) (*call, error) {
	id, err := identity.Resolve(req.Header)
	if err != nil {
		return nil, ErrBadCredential.wrap(err)
	}
	if !id.Complete() {
		return nil, ErrMissingIdentity
	}

	game, err := s.open(entity.Game, id.GameID)
	if err != nil {
		return nil, err
	}
	player, err := s.open(entity.Player, id.PlayerID)
	if err != nil {
		return nil, err
	}

	rec, found, err := game.Lookup(ctx)
	if err != nil {
		return nil, ErrStoreFailure.wrap(err)
	}
	if !found {
		return nil, ErrGameNotFound
	}
	if !isMember(rec, id.PlayerID) {
		return nil, ErrNotAMember
	}

	prec, err := player.Get(ctx)
	if err != nil {
		return nil, ErrStoreFailure.wrap(err)
	}

	return &call{req: req, id: id, game: rec, isDM: isDungeonMaster(prec)}, nil
}

func isMember(game entity.Record, playerID string) bool {
	players, ok := game.Data["players"].([]any)
	if !ok {
		return false
	}
	return slices.ContainsFunc(players, func(p any) bool {
		s, ok := p.(string)
		return ok && s == playerID
	})
}

func isDungeonMaster(player entity.Record) bool {
	dm, _ := player.Data["dungeon_master"].(bool)
	return dm
}

func (s *Server) readEntity(ctx context.Context, rt *route, c *call) (any, error) {
	kind, id := rt.target(c)
	if kind == entity.Game && id == c.id.GameID {
		return c.game, nil
	}
	e, err := s.open(kind, id)
	if err != nil {
		return nil, err
	}
	rec, err := e.Get(ctx)
	if err != nil {
		return nil, ErrStoreFailure.wrap(err)
	}
	return rec, nil
}

func (s *Server) write(ctx context.Context, rt *route, c *call) (any, error) {
	var data map[string]any
	if err := json.Unmarshal(c.req.Body, &data); err != nil || data == nil {
		return nil, ErrInvalidBody.wrap(err)
	}

	kind, id := rt.target(c)
	e, err := s.open(kind, id)
	if err != nil {
		return nil, err
	}
	rec, err := e.Upsert(ctx, data)
	if err != nil {
		return nil, ErrStoreFailure.wrap(err)
	}

	evt := events.EntityUpdated{
		GameID:      c.id.GameID,
		Kind:        kind.Name,
		ID:          id,
		Actor:       c.id.PlayerID,
		LastUpdated: rec.LastUpdated,
	}
	if err := s.publisher.Publish(ctx, evt.Subject(), evt); err != nil {
		s.logger.Warn("failed to publish event", "subject", evt.Subject(), "error", err)
	}

	return WriteResult{OK: true, LastUpdated: rec.LastUpdated}, nil
}

func (s *Server) readGame(_ context.Context, c *call) (any, error) {
	return c.game, nil
}

func (s *Server) readReference(ctx context.Context, c *call) (any, error) {
	q := reference.Query{
		Database: c.req.Query.Get("database"),
		Table:    c.req.Query.Get("table"),
		Resource: c.req.Query.Get("resource"),
	}
	data, err := s.reference.Lookup(ctx, q)
	switch {
	case errors.Is(err, store.ErrInvalidNamespace):
		return nil, ErrInvalidIdentifier.wrap(err)
	case errors.Is(err, reference.ErrUpstream):
		return nil, ErrReferenceFailure.wrap(err)
	case err != nil:
		return nil, ErrStoreFailure.wrap(err)
	}
	return map[string]any{"data": data}, nil
}

// asFailure passes failures through and classifies anything else as a store
// failure.
func asFailure(err error) error {
	var f *Failure
	if errors.As(err, &f) {
		return err
	}
	return ErrStoreFailure.wrap(err)
}

// normalizePath collapses a doubled leading slash left by some proxies.
func normalizePath(p string) string {
	if strings.HasPrefix(p, "//") {
		return p[1:]
	}
	return p
}
