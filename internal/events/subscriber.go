package events

import (
	"encoding/json"
	"fmt"
)

// Subscriber receives events from the event bus.
type Subscriber interface {
	// Subscribe delivers raw payloads on the returned channel until the
	// returned cancel function is called.
	Subscribe(subject string) (<-chan []byte, func(), error)
	Close() error
}

// DecodeEntityUpdated parses a payload received from a Subscriber.
func DecodeEntityUpdated(payload []byte) (EntityUpdated, error) {
	var e EntityUpdated
	if err := json.Unmarshal(payload, &e); err != nil {
		return EntityUpdated{}, fmt.Errorf("decoding entity update: %w", err)
	}
	return e, nil
}
