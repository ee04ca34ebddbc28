// Package entity layers the versioned record shape on top of the blob store
// and names the fixed catalog of entity kinds a game persists.
package entity

import (
	"encoding/json"
	"time"
)

// Record is the persisted {data, last_updated} shape. Data is opaque; no
// schema is applied at this layer.
type Record struct {
	Data        map[string]any `json:"data"`
	LastUpdated time.Time      `json:"last_updated"`
}

// EmptyRecord is what a read of a never-written namespace yields.
func EmptyRecord(now time.Time) Record {
	return Record{Data: map[string]any{}, LastUpdated: now}
}

func (r Record) MarshalJSON() ([]byte, error) {
	type wire Record
	w := wire(r)
	if w.Data == nil {
		w.Data = map[string]any{}
	}
	return json.Marshal(w)
}

func (r *Record) UnmarshalJSON(b []byte) error {
	type wire Record
	var w wire
	if err := json.Unmarshal(b, &w); err != nil {
		return err
	}
	if w.Data == nil {
		w.Data = map[string]any{}
	}
	*r = Record(w)
	return nil
}

// Current returns a copy of r whose data keeps only sub-entries that are
// mappings with a truthy "current" key.
func (r Record) Current() Record {
	return Record{Data: CurrentFilter(r.Data), LastUpdated: r.LastUpdated}
}

// CurrentFilter applies the current-filter to a collection mapping.
func CurrentFilter(data map[string]any) map[string]any {
	out := make(map[string]any)
	for key, value := range data {
		sub, ok := value.(map[string]any)
		if !ok {
			continue
		}
		if truthy(sub["current"]) {
			out[key] = sub
		}
	}
	return out
}

// truthy follows JSON truthiness: false, null, zero, "" and empty
// containers are false.
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case json.Number:
		f, err := t.Float64()
		return err == nil && f != 0
	case string:
		return t != ""
	case []any:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}
