// Package identity resolves the caller's (game, player, impersonation) ids
// from request headers. Credentials are trusted as-is; authenticating the
// caller is the job of whatever sits in front of the API.
package identity

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// Header names.
const (
	HeaderAPIKey   = "x-api-key"
	HeaderGameID   = "game_id"
	HeaderPlayerID = "player_id"
	HeaderDMDataID = "dm_data_id"
)

// ErrBadCredential is returned when the composite credential cannot be decoded.
var ErrBadCredential = errors.New("identity: malformed credential")

// Identity is who is calling and on behalf of which game. DMDataID is the
// optional impersonation target and may be empty.
type Identity struct {
	GameID   string `json:"game_id"`
	PlayerID string `json:"player_id"`
	DMDataID string `json:"dm_data_id,omitempty"`
}

// Complete reports whether both the game and player ids are present.
func (id Identity) Complete() bool {
	return id.GameID != "" && id.PlayerID != ""
}

// Resolve reads the composite x-api-key credential when present, falling back
// to the three plain headers otherwise.
func Resolve(h http.Header) (Identity, error) {
	if key := strings.TrimSpace(header(h, HeaderAPIKey)); key != "" {
		return Decode(key)
	}
	return Identity{
		GameID:   header(h, HeaderGameID),
		PlayerID: header(h, HeaderPlayerID),
		DMDataID: header(h, HeaderDMDataID),
	}, nil
}

// header reads a header by its literal name first, since Go canonicalizes
// "game_id" to "Game_id" on the way in but callers building headers by hand
// may not.
func header(h http.Header, name string) string {
	if v := h.Values(name); len(v) > 0 {
		return v[0]
	}
	if v, ok := h[name]; ok && len(v) > 0 {
		return v[0]
	}
	return ""
}

// Decode parses a base64-encoded JSON credential.
func Decode(credential string) (Identity, error) {
	raw, err := base64.StdEncoding.DecodeString(credential)
	if err != nil {
		raw, err = base64.RawStdEncoding.DecodeString(credential)
	}
	if err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrBadCredential, err)
	}

	var fields map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return Identity{}, fmt.Errorf("%w: %v", ErrBadCredential, err)
	}
	if fields == nil {
		return Identity{}, fmt.Errorf("%w: credential is not an object", ErrBadCredential)
	}

	var id Identity
	for name, dst := range map[string]*string{
		HeaderGameID:   &id.GameID,
		HeaderPlayerID: &id.PlayerID,
		HeaderDMDataID: &id.DMDataID,
	} {
		v, ok := fields[name]
		if !ok || v == nil {
			continue
		}
		s, ok := v.(string)
		if !ok {
			return Identity{}, fmt.Errorf("%w: %s is not a string", ErrBadCredential, name)
		}
		*dst = s
	}
	return id, nil
}

// Encode renders id as a composite credential suitable for the x-api-key header.
func Encode(id Identity) string {
	b, _ := json.Marshal(id)
	return base64.StdEncoding.EncodeToString(b)
}

// Apply sets the composite credential on h.
func Apply(h http.Header, id Identity) {
	h.Set(HeaderAPIKey, Encode(id))
}
