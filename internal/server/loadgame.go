package server

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/alfredjeanlab/dungeonmaster/internal/entity"
	"github.com/alfredjeanlab/dungeonmaster/internal/ui"
)

// LoadGame is the /loadgame body. Collections carry only their current
// entries.
type LoadGame struct {
	Game       entity.Record `json:"game"`
	Navigation ui.Menu       `json:"navigation"`
	Locations  entity.Record `json:"locations"`
	Players    entity.Record `json:"players"`
	Events     entity.Record `json:"events"`
	IsDM       bool          `json:"is_dm,omitempty"`
}

// loadGame reads the three collections concurrently. Each read is independent
// and may observe a different moment; any failure fails the whole request.
func (s *Server) loadGame(ctx context.Context, c *call) (any, error) {
	kinds := []entity.Kind{entity.Locations, entity.Players, entity.Events}
	recs := make([]entity.Record, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		e, err := s.open(k, c.id.GameID)
		if err != nil {
			return nil, err
		}
		g.Go(func() error {
			rec, err := e.Get(gctx)
			if err != nil {
				return ErrStoreFailure.wrap(err)
			}
			recs[i] = rec.Current()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	return LoadGame{
		Game:       c.game,
		Navigation: ui.Navigation(c.isDM),
		Locations:  recs[0],
		Players:    recs[1],
		Events:     recs[2],
		IsDM:       c.isDM,
	}, nil
}

func (s *Server) readNavigation(_ context.Context, c *call) (any, error) {
	return ui.Navigation(c.isDM), nil
}
