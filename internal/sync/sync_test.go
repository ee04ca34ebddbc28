package sync

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alfredjeanlab/dungeonmaster/internal/store/memstore"
)

// mockDestination records calls to Write.
type mockDestination struct {
	writes atomic.Int64
	last   atomic.Value // []byte
	err    error
}

func (d *mockDestination) Write(_ context.Context, data []byte) error {
	d.writes.Add(1)
	cp := make([]byte, len(data))
	copy(cp, data)
	d.last.Store(cp)
	return d.err
}

func (d *mockDestination) Name() string { return "mock" }

func discardLogger() *slog.Logger { return slog.New(slog.NewTextHandler(io.Discard, nil)) }

func TestSchedulerStartStop(t *testing.T) {
	ms := memstore.New()
	put(t, ms, "games", "game-data", "g1", `{"data":{},"last_updated":"2025-01-01T00:00:00Z"}`)

	dest := &mockDestination{}
	sched := NewScheduler(ms, []Destination{dest}, 50*time.Millisecond, discardLogger())
	sched.Start()

	// Initial sync plus at least one tick.
	time.Sleep(120 * time.Millisecond)
	sched.Stop()

	if writes := dest.writes.Load(); writes < 2 {
		t.Fatalf("expected at least 2 writes, got %d", writes)
	}
	data, ok := dest.last.Load().([]byte)
	if !ok || len(data) == 0 {
		t.Fatal("expected non-empty data")
	}
	if lines := nonEmptyLines(string(data)); len(lines) != 2 {
		t.Fatalf("expected header + 1 record, got %d lines", len(lines))
	}
}

func TestSchedulerStop_NoStart(t *testing.T) {
	sched := NewScheduler(memstore.New(), nil, time.Minute, discardLogger())
	sched.Stop()
}

func TestSyncOnce_FailingDestinationDoesNotStopOthers(t *testing.T) {
	bad := &mockDestination{err: errors.New("denied")}
	good := &mockDestination{}

	sched := NewScheduler(memstore.New(), []Destination{bad, good}, time.Minute, discardLogger())
	sched.SyncOnce(context.Background())

	if bad.writes.Load() != 1 || good.writes.Load() != 1 {
		t.Fatalf("writes = %d, %d", bad.writes.Load(), good.writes.Load())
	}
}
