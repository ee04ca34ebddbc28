package postgres

import (
	"context"
	"database/sql"

	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

// executor is the interface satisfied by both *sql.DB and *sql.Tx.
type executor interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// queryPut replaces the whole body; concurrent writers resolve last-writer-wins.
func queryPut(ctx context.Context, db executor, ns store.Namespace, blob []byte) error {
	_, err := db.ExecContext(ctx, `
		INSERT INTO records (key, database, table_name, entity_id, body, updated_at)
		VALUES ($1, $2, $3, $4, $5::jsonb, now())
		ON CONFLICT (key) DO UPDATE SET
			body = EXCLUDED.body,
			updated_at = EXCLUDED.updated_at`,
		ns.Key(),
		ns.Database(),
		ns.Table(),
		ns.ID(),
		string(blob),
	)
	return err
}

func queryGet(ctx context.Context, db executor, ns store.Namespace) ([]byte, error) {
	var body []byte
	err := db.QueryRowContext(ctx, `SELECT body FROM records WHERE key = $1`, ns.Key()).Scan(&body)
	if err != nil {
		return nil, err
	}
	return body, nil
}

func queryExists(ctx context.Context, db executor, ns store.Namespace) (bool, error) {
	var ok bool
	err := db.QueryRowContext(ctx, `SELECT EXISTS (SELECT 1 FROM records WHERE key = $1)`, ns.Key()).Scan(&ok)
	return ok, err
}

func queryDelete(ctx context.Context, db executor, ns store.Namespace) error {
	_, err := db.ExecContext(ctx, `DELETE FROM records WHERE key = $1`, ns.Key())
	return err
}

func queryList(ctx context.Context, db executor, prefix string) ([]string, error) {
	rows, err := db.QueryContext(ctx, `SELECT key FROM records WHERE starts_with(key, $1) ORDER BY key`, prefix)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, err
		}
		keys = append(keys, key)
	}
	return keys, rows.Err()
}
