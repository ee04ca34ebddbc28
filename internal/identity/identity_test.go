package identity

import (
	"encoding/base64"
	"errors"
	"net/http"
	"testing"
)

func b64(s string) string { return base64.StdEncoding.EncodeToString([]byte(s)) }

func TestResolve(t *testing.T) {
	tests := []struct {
		name    string
		headers http.Header
		want    Identity
		wantErr bool
	}{
		{
			name:    "composite",
			headers: http.Header{"X-Api-Key": {b64(`{"game_id":"g1","player_id":"alice","dm_data_id":"m7"}`)}},
			want:    Identity{GameID: "g1", PlayerID: "alice", DMDataID: "m7"},
		},
		{
			name:    "composite without impersonation",
			headers: http.Header{"X-Api-Key": {b64(`{"game_id":"g1","player_id":"alice"}`)}},
			want:    Identity{GameID: "g1", PlayerID: "alice"},
		},
		{
			name: "composite wins over plain headers",
			headers: http.Header{
				"X-Api-Key": {b64(`{"game_id":"g1","player_id":"alice"}`)},
				"Game_id":   {"g2"},
			},
			want: Identity{GameID: "g1", PlayerID: "alice"},
		},
		{
			name:    "unpadded composite",
			headers: http.Header{"X-Api-Key": {base64.RawStdEncoding.EncodeToString([]byte(`{"game_id":"g1","player_id":"p"}`))}},
			want:    Identity{GameID: "g1", PlayerID: "p"},
		},
		{
			name: "plain canonical headers",
			headers: func() http.Header {
				h := http.Header{}
				h.Set("game_id", "g1")
				h.Set("player_id", "bob")
				h.Set("dm_data_id", "x")
				return h
			}(),
			want: Identity{GameID: "g1", PlayerID: "bob", DMDataID: "x"},
		},
		{
			name:    "plain raw headers",
			headers: http.Header{"game_id": {"g1"}, "player_id": {"bob"}},
			want:    Identity{GameID: "g1", PlayerID: "bob"},
		},
		{
			name:    "nothing",
			headers: http.Header{},
			want:    Identity{},
		},
		{name: "not base64", headers: http.Header{"X-Api-Key": {"%%%"}}, wantErr: true},
		{name: "not json", headers: http.Header{"X-Api-Key": {b64("hello")}}, wantErr: true},
		{name: "json array", headers: http.Header{"X-Api-Key": {b64(`["g1"]`)}}, wantErr: true},
		{name: "json null", headers: http.Header{"X-Api-Key": {b64(`null`)}}, wantErr: true},
		{name: "non-string id", headers: http.Header{"X-Api-Key": {b64(`{"game_id":7}`)}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.headers)
			if tt.wantErr {
				if !errors.Is(err, ErrBadCredential) {
					t.Fatalf("expected ErrBadCredential, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if got != tt.want {
				t.Errorf("Resolve = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	id := Identity{GameID: "g1", PlayerID: "alice", DMDataID: "m7"}
	h := http.Header{}
	Apply(h, id)

	got, err := Resolve(h)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if got != id {
		t.Errorf("got %+v, want %+v", got, id)
	}
}

func TestComplete(t *testing.T) {
	if (Identity{GameID: "g1"}).Complete() {
		t.Error("missing player should not be complete")
	}
	if !(Identity{GameID: "g1", PlayerID: "p"}).Complete() {
		t.Error("expected complete")
	}
}
