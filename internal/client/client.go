// Package client talks to the dungeonmaster HTTP API on behalf of a player or
// dungeon master.
package client

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/alfredjeanlab/dungeonmaster/internal/entity"
	"github.com/alfredjeanlab/dungeonmaster/internal/ui"
)

// GameClient is what the CLI commands use to reach the server.
type GameClient interface {
	LoadGame(ctx context.Context) (*LoadGame, error)
	Game(ctx context.Context) (*entity.Record, error)
	Navigation(ctx context.Context) (*ui.Menu, error)
	Get(ctx context.Context, section string) (*entity.Record, error)
	Put(ctx context.Context, section string, data map[string]any) (*WriteResult, error)
	Reference(ctx context.Context, database, table, resource string) (map[string]any, error)
	Health(ctx context.Context) (string, error)
	Close() error
}

// LoadGame is the composite /loadgame view.
type LoadGame struct {
	Game       entity.Record `json:"game"`
	Navigation ui.Menu       `json:"navigation"`
	Locations  entity.Record `json:"locations"`
	Players    entity.Record `json:"players"`
	Events     entity.Record `json:"events"`
	IsDM       bool          `json:"is_dm"`
}

// WriteResult is returned by a successful Put.
type WriteResult struct {
	OK          bool      `json:"ok"`
	LastUpdated time.Time `json:"last_updated"`
}

// Sections lists the names accepted by Get and Put, each served at
// /game/<section>. All but "player" are dungeon master only.
var Sections = []string{"settings", "npcs", "quests", "events", "locations", "items", "monsters", "players", "notes", "player"}

func sectionPath(section string) (string, error) {
	if !slices.Contains(Sections, section) {
		return "", fmt.Errorf("unknown section %q", section)
	}
	return "/game/" + section, nil
}
