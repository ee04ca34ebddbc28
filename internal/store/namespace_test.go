package store

import (
	"errors"
	"testing"
)

func TestNewNamespace_Key(t *testing.T) {
	ns, err := NewNamespace("locations", "locations-data", "g1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got, want := ns.Key(), "datastore/locations/locations-data/g1/data.json"; got != want {
		t.Fatalf("Key() = %q, want %q", got, want)
	}
	if ns.Database() != "locations" || ns.Table() != "locations-data" || ns.ID() != "g1" {
		t.Fatalf("unexpected components: %+v", ns)
	}
}

func TestNewNamespace_Invalid(t *testing.T) {
	for _, tc := range []struct {
		name              string
		database, table, id string
	}{
		{"uppercase database", "Games", "game-data", "g1"},
		{"empty table", "games", "", "g1"},
		{"slash in id", "games", "game-data", "g1/../x"},
		{"underscore", "games", "game_data", "g1"},
		{"space", "games", "game-data", "g 1"},
		{"dot", "games", "game-data", "g.1"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewNamespace(tc.database, tc.table, tc.id)
			if !errors.Is(err, ErrInvalidNamespace) {
				t.Fatalf("expected ErrInvalidNamespace, got %v", err)
			}
		})
	}
}

func TestParseKey(t *testing.T) {
	ns, err := NewNamespace("monsters", "monster-data", "m7")
	if err != nil {
		t.Fatal(err)
	}
	got, err := ParseKey(ns.Key())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != ns {
		t.Fatalf("ParseKey = %+v, want %+v", got, ns)
	}

	for _, key := range []string{
		"",
		"datastore/monsters/m7/data.json",
		"other/monsters/monster-data/m7/data.json",
		"datastore/monsters/monster-data/m7/data.txt",
		"datastore/Monsters/monster-data/m7/data.json",
	} {
		if _, err := ParseKey(key); !errors.Is(err, ErrInvalidNamespace) {
			t.Errorf("ParseKey(%q): expected ErrInvalidNamespace, got %v", key, err)
		}
	}
}
