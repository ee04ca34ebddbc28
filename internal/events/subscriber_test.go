package events

import (
	"context"
	"testing"
	"time"

	natsserver "github.com/nats-io/nats-server/v2/server"
)

// startTestNATS starts an embedded NATS server and returns its client URL.
func startTestNATS(t *testing.T) string {
	t.Helper()
	srv, err := natsserver.NewServer(&natsserver.Options{Host: "127.0.0.1", Port: -1})
	if err != nil {
		t.Fatalf("starting embedded NATS: %v", err)
	}
	srv.Start()
	t.Cleanup(srv.Shutdown)
	if !srv.ReadyForConnections(5 * time.Second) {
		t.Fatal("embedded NATS not ready")
	}
	return srv.ClientURL()
}

// connectPair returns a publisher and subscriber on one embedded server.
func connectPair(t *testing.T) (*NATSPublisher, *NATSSubscriber) {
	t.Helper()
	url := startTestNATS(t)
	pub, err := NewNATSPublisher(url)
	if err != nil {
		t.Fatalf("creating publisher: %v", err)
	}
	t.Cleanup(func() { pub.Close() })
	sub, err := NewNATSSubscriber(url)
	if err != nil {
		t.Fatalf("creating subscriber: %v", err)
	}
	t.Cleanup(func() { sub.Close() })
	return pub, sub
}

func publishUpdate(t *testing.T, pub *NATSPublisher, evt EntityUpdated) {
	t.Helper()
	if err := pub.Publish(context.Background(), evt.Subject(), evt); err != nil {
		t.Fatalf("publishing %s: %v", evt.Subject(), err)
	}
	if err := pub.conn.Flush(); err != nil {
		t.Fatalf("flushing: %v", err)
	}
}

func receiveUpdate(t *testing.T, ch <-chan []byte) EntityUpdated {
	t.Helper()
	select {
	case payload := <-ch:
		evt, err := DecodeEntityUpdated(payload)
		if err != nil {
			t.Fatalf("decoding %s: %v", payload, err)
		}
		return evt
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for update")
	}
	return EntityUpdated{}
}

func TestNATSSubscriber_GameUpdates(t *testing.T) {
	pub, sub := connectPair(t)

	ch, cancel, err := sub.Subscribe(GameSubjects("g1"))
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	stamp := time.Date(2025, 3, 4, 12, 6, 7, 0, time.UTC)
	publishUpdate(t, pub, EntityUpdated{GameID: "g2", Kind: "notes", ID: "g2", Actor: "zed", LastUpdated: stamp})
	want := EntityUpdated{GameID: "g1", Kind: "monster", ID: "m7", Actor: "alice", LastUpdated: stamp}
	publishUpdate(t, pub, want)

	got := receiveUpdate(t, ch)
	if got.GameID != want.GameID || got.Kind != want.Kind || got.ID != want.ID || got.Actor != want.Actor {
		t.Errorf("got %+v, want %+v", got, want)
	}
	if !got.LastUpdated.Equal(stamp) {
		t.Errorf("last_updated = %v, want %v", got.LastUpdated, stamp)
	}

	// The g2 update was published first, so anything else buffered is a leak.
	select {
	case payload := <-ch:
		t.Errorf("unexpected delivery %s", payload)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestNATSSubscriber_AllGames(t *testing.T) {
	pub, sub := connectPair(t)

	ch, cancel, err := sub.Subscribe(AllSubjects)
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	games := []string{"g1", "g2", "g3"}
	for _, g := range games {
		publishUpdate(t, pub, EntityUpdated{GameID: g, Kind: "locations", ID: g, Actor: "alice"})
	}

	seen := map[string]bool{}
	for range games {
		seen[receiveUpdate(t, ch).GameID] = true
	}
	for _, g := range games {
		if !seen[g] {
			t.Errorf("no update for %s", g)
		}
	}
}

func TestNATSSubscriber_ImplementsSubscriber(t *testing.T) {
	var _ Subscriber = (*NATSSubscriber)(nil)
}

func TestNATSSubscriber_CancelClosesChannel(t *testing.T) {
	pub, sub := connectPair(t)

	ch, cancel, err := sub.Subscribe(GameSubjects("g1"))
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}

	// Updates racing with cancel must not panic or survive it.
	done := make(chan struct{})
	go func() {
		defer close(done)
		evt := EntityUpdated{GameID: "g1", Kind: "events", ID: "g1", Actor: "alice"}
		for range 100 {
			_ = pub.Publish(context.Background(), evt.Subject(), evt)
		}
	}()
	cancel()
	<-done

	if _, ok := <-ch; ok {
		t.Fatal("expected channel to be closed after cancel")
	}
}

func TestNATSSubscriber_DoubleCancel(t *testing.T) {
	_, sub := connectPair(t)

	_, cancel, err := sub.Subscribe(GameSubjects("g1"))
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	cancel()
	cancel()
}

func TestNATSSubscriber_SlowConsumerDrops(t *testing.T) {
	pub, sub := connectPair(t)

	ch, cancel, err := sub.Subscribe(GameSubjects("g1"))
	if err != nil {
		t.Fatalf("subscribing: %v", err)
	}
	defer cancel()

	for range 100 {
		publishUpdate(t, pub, EntityUpdated{GameID: "g1", Kind: "notes", ID: "g1", Actor: "alice"})
	}
	// Let the last handler calls land before counting.
	time.Sleep(100 * time.Millisecond)

	if n := len(ch); n != cap(ch) {
		t.Errorf("buffered %d updates, want the buffer full at %d", n, cap(ch))
	}
}
