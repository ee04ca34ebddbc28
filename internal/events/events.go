// Package events publishes entity-change notifications so other sessions at
// the same table can refresh without polling.
package events

import (
	"context"
	"strings"
	"time"
)

// SubjectRoot prefixes every subject this service publishes.
const SubjectRoot = "dm.game"

// Subject returns the subject for updates to kind within gameID, e.g.
// "dm.game.g1.monsters.updated".
func Subject(gameID, kind string) string {
	return strings.Join([]string{SubjectRoot, gameID, kind, "updated"}, ".")
}

// GameSubjects matches every update within gameID.
func GameSubjects(gameID string) string {
	return SubjectRoot + "." + gameID + ".>"
}

// AllSubjects matches every update in every game.
const AllSubjects = SubjectRoot + ".>"

// EntityUpdated is emitted after a successful write through the API.
type EntityUpdated struct {
	GameID      string    `json:"game_id"`
	Kind        string    `json:"kind"`
	ID          string    `json:"id"`
	Actor       string    `json:"actor"`
	LastUpdated time.Time `json:"last_updated"`
}

// Subject returns the subject e is published on.
func (e EntityUpdated) Subject() string { return Subject(e.GameID, e.Kind) }

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, subject string, event any) error
	Close() error
}
