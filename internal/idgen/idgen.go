// Package idgen mints ids for new games and players. Every id it returns is a
// valid namespace component.
package idgen

import (
	"fmt"

	nanoid "github.com/matoous/go-nanoid/v2"

	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

// Prefixes by entity.
const (
	GamePrefix   = "game-"
	PlayerPrefix = "player-"
)

// alphabet is limited to lowercase letters and digits.
const alphabet = "abcdefghijklmnopqrstuvwxyz0123456789"

// Length is the number of random characters after the prefix.
const Length = 12

// New returns prefix followed by Length random characters. The prefix must
// itself be a valid namespace component (or empty).
func New(prefix string) (string, error) {
	if prefix != "" && !store.ValidComponent(prefix) {
		return "", fmt.Errorf("idgen: invalid prefix %q", prefix)
	}
	id, err := nanoid.Generate(alphabet, Length)
	if err != nil {
		return "", fmt.Errorf("idgen: %w", err)
	}
	return prefix + id, nil
}

// Game returns a new game id.
func Game() (string, error) { return New(GamePrefix) }

// Player returns a new player id.
func Player() (string, error) { return New(PlayerPrefix) }
