// Package reference serves D&D 5e SRD rules data. Responses from the public
// API are cached in the datastore the first time they are requested and served
// from there afterwards.
package reference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/alfredjeanlab/dungeonmaster/internal/entity"
	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

// Defaults for the public SRD API.
const (
	DefaultBaseURL = "https://www.dnd5eapi.co/api/2014"
	DefaultTimeout = 30 * time.Second

	// Index is the placeholder for an unspecified query level.
	Index = "index"

	databasePrefix = "dnd-5e-srd-2014-"
)

// ErrUpstream is returned when the rules API cannot be reached or answers
// with something other than a JSON object.
var ErrUpstream = errors.New("reference: upstream failure")

// Query addresses one SRD document by up to three levels, e.g.
// (classes, ranger, multi-classing). Empty levels mean Index.
type Query struct {
	Database string
	Table    string
	Resource string
}

func (q Query) normalized() Query {
	if q.Database == "" {
		q.Database = Index
	}
	if q.Table == "" {
		q.Table = Index
	}
	if q.Resource == "" {
		q.Resource = Index
	}
	return q
}

// Namespace is where the cached copy of q lives.
func (q Query) Namespace() (store.Namespace, error) {
	q = q.normalized()
	return store.NewNamespace(databasePrefix+q.Database, q.Table, q.Resource)
}

// URL builds the upstream address. A level is only appended when every level
// above it is set.
func (q Query) URL(base string) string {
	q = q.normalized()
	parts := []string{strings.TrimRight(base, "/")}
	for _, level := range []string{q.Database, q.Table, q.Resource} {
		if level == Index {
			break
		}
		parts = append(parts, level)
	}
	return strings.Join(parts, "/")
}

// Options configures a Service. Zero values select the defaults.
type Options struct {
	BaseURL string
	Timeout time.Duration
	Client  *http.Client
	Logger  *slog.Logger
}

// Service looks up SRD documents through the datastore cache.
type Service struct {
	store   store.Store
	baseURL string
	client  *http.Client
	logger  *slog.Logger
}

func New(s store.Store, opts Options) *Service {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.Client == nil {
		opts.Client = &http.Client{Timeout: opts.Timeout}
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	return &Service{store: s, baseURL: opts.BaseURL, client: opts.Client, logger: opts.Logger}
}

// Lookup returns the cached document for q, fetching and caching it on a miss.
// An empty upstream document is returned but not cached.
func (s *Service) Lookup(ctx context.Context, q Query) (map[string]any, error) {
	ns, err := q.Namespace()
	if err != nil {
		return nil, err
	}
	cache := entity.New(s.store, ns)

	rec, err := cache.Get(ctx)
	if err != nil {
		return nil, fmt.Errorf("read reference cache: %w", err)
	}
	if len(rec.Data) > 0 {
		s.logger.Debug("reference cache hit", "key", ns.Key())
		return rec.Data, nil
	}

	url := q.URL(s.baseURL)
	data, err := s.fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	if len(data) == 0 {
		return data, nil
	}
	if _, err := cache.Upsert(ctx, data); err != nil {
		return nil, fmt.Errorf("write reference cache: %w", err)
	}
	s.logger.Info("reference cached", "url", url, "key", ns.Key())
	return data, nil
}

func (s *Service) fetch(ctx context.Context, url string) (map[string]any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUpstream, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: GET %s: %v", ErrUpstream, url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("%w: GET %s: status %d", ErrUpstream, url, resp.StatusCode)
	}

	var data map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("%w: GET %s: decode: %v", ErrUpstream, url, err)
	}
	if data == nil {
		data = map[string]any{}
	}
	return data, nil
}
