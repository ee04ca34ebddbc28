package postgres

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

// newMockDB creates a sqlmock database with automatic cleanup and expectation checking.
func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unfulfilled expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func testNamespace(t *testing.T) store.Namespace {
	t.Helper()
	ns, err := store.NewNamespace("monsters", "monster-data", "m7")
	if err != nil {
		t.Fatal(err)
	}
	return ns
}

const testKey = "datastore/monsters/monster-data/m7/data.json"

func TestPut(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)

	mock.ExpectExec("INSERT INTO records .+ ON CONFLICT \\(key\\) DO UPDATE").
		WithArgs(testKey, "monsters", "monster-data", "m7", `{"data":{"hp":7}}`).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := s.Put(context.Background(), testNamespace(t), []byte(`{"data":{"hp":7}}`)); err != nil {
		t.Fatalf("Put: %v", err)
	}
}

func TestPut_Error(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)

	boom := errors.New("connection reset")
	mock.ExpectExec("INSERT INTO records").WillReturnError(boom)

	err := s.Put(context.Background(), testNamespace(t), []byte(`{}`))
	if !errors.Is(err, boom) {
		t.Fatalf("expected wrapped driver error, got %v", err)
	}
}

func TestGet(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)

	mock.ExpectQuery("SELECT body FROM records WHERE key = \\$1").
		WithArgs(testKey).
		WillReturnRows(sqlmock.NewRows([]string{"body"}).AddRow([]byte(`{"data":{"hp":7}}`)))

	blob, err := s.Get(context.Background(), testNamespace(t))
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(blob) != `{"data":{"hp":7}}` {
		t.Fatalf("Get = %q", blob)
	}
}

func TestGet_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)

	mock.ExpectQuery("SELECT body FROM records WHERE key = \\$1").
		WithArgs(testKey).
		WillReturnRows(sqlmock.NewRows([]string{"body"}))

	_, err := s.Get(context.Background(), testNamespace(t))
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestExists(t *testing.T) {
	for _, want := range []bool{true, false} {
		db, mock := newMockDB(t)
		s := NewWithDB(db)

		mock.ExpectQuery("SELECT EXISTS").
			WithArgs(testKey).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(want))

		got, err := s.Exists(context.Background(), testNamespace(t))
		if err != nil {
			t.Fatalf("Exists: %v", err)
		}
		if got != want {
			t.Fatalf("Exists = %v, want %v", got, want)
		}
	}
}

func TestDelete(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)

	mock.ExpectExec("DELETE FROM records WHERE key = \\$1").
		WithArgs(testKey).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Delete(context.Background(), testNamespace(t)); err != nil {
		t.Fatalf("Delete: %v", err)
	}
}

func TestList(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewWithDB(db)

	mock.ExpectQuery("SELECT key FROM records WHERE starts_with\\(key, \\$1\\) ORDER BY key").
		WithArgs("datastore/monsters/").
		WillReturnRows(sqlmock.NewRows([]string{"key"}).
			AddRow("datastore/monsters/monster-data/m1/data.json").
			AddRow(testKey))

	keys, err := s.List(context.Background(), "datastore/monsters/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(keys) != 2 || keys[1] != testKey {
		t.Fatalf("List = %v", keys)
	}
}
