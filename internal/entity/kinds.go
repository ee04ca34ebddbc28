package entity

import (
	"fmt"

	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

// Kind binds the record shape to a default (database, table) pair. The id
// that completes the namespace is supplied per use: a game id for game-wide
// kinds, an individual id for per-entity kinds.
type Kind struct {
	Name     string
	Database string
	Table    string

	// Collection kinds hold one mapping of sub-entity id to sub-entity per game.
	Collection bool
}

var (
	Game      = Kind{Name: "game", Database: "games", Table: "game-data"}
	Player    = Kind{Name: "player", Database: "players", Table: "player-data"}
	Players   = Kind{Name: "players", Database: "players", Table: "players-data", Collection: true}
	Locations = Kind{Name: "locations", Database: "locations", Table: "locations-data", Collection: true}
	Events    = Kind{Name: "events", Database: "events", Table: "events-data", Collection: true}
	Monster   = Kind{Name: "monster", Database: "monsters", Table: "monster-data"}
	Monsters  = Kind{Name: "monsters", Database: "monsters", Table: "monsters-data", Collection: true}
	NPC       = Kind{Name: "npc", Database: "npcs", Table: "npc-data"}
	NPCs      = Kind{Name: "npcs", Database: "npcs", Table: "npcs-data", Collection: true}
	Items     = Kind{Name: "items", Database: "items", Table: "items-data", Collection: true}
	Quests    = Kind{Name: "quests", Database: "quests", Table: "quests-data", Collection: true}
	Notes     = Kind{Name: "notes", Database: "notes", Table: "notes-data", Collection: true}
)

var catalog = []Kind{Game, Player, Players, Locations, Events, Monster, Monsters, NPC, NPCs, Items, Quests, Notes}

// Kinds returns the catalog in a stable order.
func Kinds() []Kind {
	out := make([]Kind, len(catalog))
	copy(out, catalog)
	return out
}

// KindByName looks a kind up by its Name.
func KindByName(name string) (Kind, bool) {
	for _, k := range catalog {
		if k.Name == name {
			return k, true
		}
	}
	return Kind{}, false
}

// WithTable returns a copy of k bound to a different (database, table) pair.
func (k Kind) WithTable(database, table string) Kind {
	k.Database = database
	k.Table = table
	return k
}

func (k Kind) Namespace(id string) (store.Namespace, error) {
	ns, err := store.NewNamespace(k.Database, k.Table, id)
	if err != nil {
		return store.Namespace{}, fmt.Errorf("%s: %w", k.Name, err)
	}
	return ns, nil
}

// Open validates the namespace and returns the entity for id.
func (k Kind) Open(s store.Store, id string, opts ...Option) (*Entity, error) {
	ns, err := k.Namespace(id)
	if err != nil {
		return nil, err
	}
	return New(s, ns, opts...), nil
}

func (k Kind) String() string { return k.Name }
