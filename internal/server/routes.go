package server

import (
	"context"
	"net/http"
	"slices"

	"github.com/alfredjeanlab/dungeonmaster/internal/entity"
)

// keyedBy selects which id completes a route's namespace.
type keyedBy int

const (
	byGame keyedBy = iota
	byCaller
)

// route is one row of the access matrix. Routes with a read func serve GET
// from it instead of a plain entity read; those routes are read-only.
type route struct {
	path    string
	methods []string
	dmOnly  bool

	kind    entity.Kind
	keyedBy keyedBy

	// impersonate is the kind a dungeon master reaches by supplying
	// dm_data_id. Zero means the route ignores dm_data_id.
	impersonate entity.Kind

	read func(s *Server, ctx context.Context, c *call) (any, error)
}

var (
	readOnly  = []string{http.MethodGet}
	readWrite = []string{http.MethodGet, http.MethodPost}
)

var routes = []route{
	{path: "/loadgame", methods: readOnly, read: (*Server).loadGame},
	{path: "/game", methods: readOnly, kind: entity.Game, read: (*Server).readGame},
	{path: "/navigation", methods: readOnly, read: (*Server).readNavigation},
	{path: "/reference", methods: readOnly, read: (*Server).readReference},
	{path: "/game/settings", methods: readWrite, dmOnly: true, kind: entity.Game},
	{path: "/game/npcs", methods: readWrite, dmOnly: true, kind: entity.NPCs},
	{path: "/game/quests", methods: readWrite, dmOnly: true, kind: entity.Quests},
	{path: "/game/events", methods: readWrite, dmOnly: true, kind: entity.Events},
	{path: "/game/locations", methods: readWrite, dmOnly: true, kind: entity.Locations},
	{path: "/game/items", methods: readWrite, dmOnly: true, kind: entity.Items},
	{path: "/game/monsters", methods: readWrite, dmOnly: true, kind: entity.Monsters, impersonate: entity.Monster},
	{path: "/game/players", methods: readWrite, dmOnly: true, kind: entity.Players},
	{path: "/game/notes", methods: readWrite, dmOnly: true, kind: entity.Notes},
	{path: "/game/player", methods: readWrite, kind: entity.Player, keyedBy: byCaller, impersonate: entity.Player},
}

func lookupRoute(path string) (*route, bool) {
	for i := range routes {
		if routes[i].path == path {
			return &routes[i], true
		}
	}
	return nil, false
}

func (r *route) allows(method string) bool {
	return slices.Contains(r.methods, method)
}

// target resolves the kind and id a call operates on. A dungeon master's
// dm_data_id redirects impersonation-eligible routes; everyone else's is
// ignored.
func (r *route) target(c *call) (entity.Kind, string) {
	if r.impersonate.Name != "" && c.isDM && c.id.DMDataID != "" {
		return r.impersonate, c.id.DMDataID
	}
	if r.keyedBy == byCaller {
		return r.kind, c.id.PlayerID
	}
	return r.kind, c.id.GameID
}
