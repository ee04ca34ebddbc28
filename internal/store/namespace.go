// Package store defines the namespaced blob store that every entity record is
// persisted through, plus the namespace triple that addresses a blob.
package store

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

// KeyPrefix is the root of every storage key.
const KeyPrefix = "datastore/"

const keySuffix = "/data.json"

// ErrInvalidNamespace is returned when a namespace component contains
// anything other than lowercase letters, digits and hyphens.
var ErrInvalidNamespace = errors.New("store: invalid namespace")

var componentPattern = regexp.MustCompile(`^[a-z0-9-]+$`)

// Namespace is the (database, table, id) triple addressing one stored blob.
// A Namespace can only be obtained through NewNamespace or ParseKey, so a
// value in hand is always valid.
type Namespace struct {
	database string
	table    string
	id       string
}

// NewNamespace validates the three components and returns the triple.
func NewNamespace(database, table, id string) (Namespace, error) {
	for _, c := range []struct{ name, value string }{
		{"database", database},
		{"table", table},
		{"id", id},
	} {
		if !componentPattern.MatchString(c.value) {
			return Namespace{}, fmt.Errorf("%w: %s %q must contain only lowercase letters, numbers, and hyphens",
				ErrInvalidNamespace, c.name, c.value)
		}
	}
	return Namespace{database: database, table: table, id: id}, nil
}

// ValidComponent reports whether s is usable as a namespace component.
func ValidComponent(s string) bool {
	return componentPattern.MatchString(s)
}

func (n Namespace) Database() string { return n.database }
func (n Namespace) Table() string    { return n.table }
func (n Namespace) ID() string       { return n.id }

// Key returns the storage key datastore/{database}/{table}/{id}/data.json.
func (n Namespace) Key() string {
	return KeyPrefix + n.database + "/" + n.table + "/" + n.id + keySuffix
}

func (n Namespace) String() string { return n.Key() }

// ParseKey is the inverse of Namespace.Key.
func ParseKey(key string) (Namespace, error) {
	if !strings.HasPrefix(key, KeyPrefix) || !strings.HasSuffix(key, keySuffix) {
		return Namespace{}, fmt.Errorf("%w: malformed key %q", ErrInvalidNamespace, key)
	}
	parts := strings.Split(strings.TrimSuffix(strings.TrimPrefix(key, KeyPrefix), keySuffix), "/")
	if len(parts) != 3 {
		return Namespace{}, fmt.Errorf("%w: malformed key %q", ErrInvalidNamespace, key)
	}
	return NewNamespace(parts[0], parts[1], parts[2])
}
