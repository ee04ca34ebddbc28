package sync

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/alfredjeanlab/dungeonmaster/internal/store"
)

const formatVersion = "1"

// header is the first JSONL line written by ExportJSONL.
type header struct {
	Version     string    `json:"version"`
	Type        string    `json:"type"`
	Timestamp   time.Time `json:"timestamp"`
	RecordCount int       `json:"record_count"`
}

// line is one stored record. Data is the blob exactly as stored.
type line struct {
	Type string          `json:"type"`
	Key  string          `json:"key"`
	Data json.RawMessage `json:"data"`
}

// ExportJSONL writes every record under the datastore prefix to w: a header
// line, then one line per record in key order. Records deleted while the
// export runs are skipped.
func ExportJSONL(ctx context.Context, s store.Store, w io.Writer) error {
	keys, err := s.List(ctx, store.KeyPrefix)
	if err != nil {
		return fmt.Errorf("list records: %w", err)
	}

	lines := make([]line, 0, len(keys))
	for _, key := range keys {
		ns, err := store.ParseKey(key)
		if err != nil {
			return fmt.Errorf("export %s: %w", key, err)
		}
		blob, err := s.Get(ctx, ns)
		if errors.Is(err, store.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("get %s: %w", key, err)
		}
		lines = append(lines, line{Type: "record", Key: key, Data: blob})
	}

	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)

	if err := enc.Encode(header{
		Version:     formatVersion,
		Type:        "header",
		Timestamp:   time.Now().UTC(),
		RecordCount: len(lines),
	}); err != nil {
		return fmt.Errorf("encode header: %w", err)
	}
	for _, l := range lines {
		if err := enc.Encode(l); err != nil {
			return fmt.Errorf("encode record %s: %w", l.Key, err)
		}
	}
	return nil
}

// maxLineBytes bounds a single JSONL line on import.
const maxLineBytes = 16 << 20

// ImportJSONL restores records written by ExportJSONL, overwriting any record
// already stored at the same key. It returns the number of records written.
func ImportJSONL(ctx context.Context, s store.Store, r io.Reader) (int, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxLineBytes)

	if !sc.Scan() {
		if err := sc.Err(); err != nil {
			return 0, fmt.Errorf("read header: %w", err)
		}
		return 0, fmt.Errorf("read header: empty input")
	}
	var h header
	if err := json.Unmarshal(sc.Bytes(), &h); err != nil {
		return 0, fmt.Errorf("decode header: %w", err)
	}
	if h.Type != "header" || h.Version != formatVersion {
		return 0, fmt.Errorf("unsupported export: type=%q version=%q", h.Type, h.Version)
	}

	n := 0
	for lineNo := 2; sc.Scan(); lineNo++ {
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		var l line
		if err := json.Unmarshal(raw, &l); err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if l.Type != "record" {
			return n, fmt.Errorf("line %d: unknown type %q", lineNo, l.Type)
		}
		ns, err := store.ParseKey(l.Key)
		if err != nil {
			return n, fmt.Errorf("line %d: %w", lineNo, err)
		}
		if err := s.Put(ctx, ns, l.Data); err != nil {
			return n, fmt.Errorf("line %d: put %s: %w", lineNo, l.Key, err)
		}
		n++
	}
	if err := sc.Err(); err != nil {
		return n, fmt.Errorf("read export: %w", err)
	}
	if n != h.RecordCount {
		return n, fmt.Errorf("header announced %d records, imported %d", h.RecordCount, n)
	}
	return n, nil
}
