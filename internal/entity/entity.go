package entity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

// Entity is one versioned record at a fixed namespace.
type Entity struct {
	ns    store.Namespace
	store store.Store
	now   func() time.Time
}

// Option configures an Entity.
type Option func(*Entity)

// WithClock overrides the timestamp source. The result is converted to UTC.
func WithClock(now func() time.Time) Option {
	return func(e *Entity) { e.now = now }
}

func New(s store.Store, ns store.Namespace, opts ...Option) *Entity {
	e := &Entity{ns: ns, store: s, now: time.Now}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Entity) Namespace() store.Namespace { return e.ns }

func (e *Entity) stamp() time.Time { return e.now().UTC() }

// Upsert replaces the stored data wholesale and stamps last_updated with the
// current time, or 1ns past the stored stamp if the clock has not moved
// beyond it. It returns the record as written.
func (e *Entity) Upsert(ctx context.Context, data map[string]any) (Record, error) {
	if data == nil {
		data = map[string]any{}
	}
	stamp := e.stamp()
	if prev, ok := e.storedStamp(ctx); ok && !stamp.After(prev) {
		stamp = prev.Add(time.Nanosecond)
	}
	rec := Record{Data: data, LastUpdated: stamp}
	blob, err := json.Marshal(rec)
	if err != nil {
		return Record{}, fmt.Errorf("encode record %s: %w", e.ns, err)
	}
	if err := e.store.Put(ctx, e.ns, blob); err != nil {
		return Record{}, err
	}
	return rec, nil
}

// storedStamp reads the last_updated of the stored record. Any failure to
// read or decode it reports false and leaves the wall clock in charge.
func (e *Entity) storedStamp(ctx context.Context) (time.Time, bool) {
	blob, err := e.store.Get(ctx, e.ns)
	if err != nil {
		return time.Time{}, false
	}
	var stamped struct {
		LastUpdated time.Time `json:"last_updated"`
	}
	if err := json.Unmarshal(blob, &stamped); err != nil || stamped.LastUpdated.IsZero() {
		return time.Time{}, false
	}
	return stamped.LastUpdated.UTC(), true
}

// Get returns the stored record. A namespace with nothing stored reads as an
// empty record with a fresh timestamp; use Lookup or Exists to tell the two
// apart.
func (e *Entity) Get(ctx context.Context) (Record, error) {
	rec, _, err := e.Lookup(ctx)
	return rec, err
}

// Lookup is Get plus an explicit presence flag.
func (e *Entity) Lookup(ctx context.Context) (Record, bool, error) {
	blob, err := e.store.Get(ctx, e.ns)
	if errors.Is(err, store.ErrNotFound) {
		return EmptyRecord(e.stamp()), false, nil
	}
	if err != nil {
		return Record{}, false, err
	}

	var rec Record
	if err := json.Unmarshal(blob, &rec); err != nil {
		return Record{}, false, fmt.Errorf("decode record %s: %w", e.ns, err)
	}
	if rec.LastUpdated.IsZero() {
		rec.LastUpdated = e.stamp()
	}
	return rec, true, nil
}

func (e *Entity) Exists(ctx context.Context) (bool, error) {
	return e.store.Exists(ctx, e.ns)
}

func (e *Entity) Delete(ctx context.Context) error {
	return e.store.Delete(ctx, e.ns)
}
