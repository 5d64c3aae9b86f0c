package document

import (
	"context"
	"encoding/json"
	"os"
	"reflect"
	"sync"
	"time"

	"github.com/pkg/errors"
)

// SnapshotStore is the demo/offline engine: mutex-guarded in-memory tables
// serialized in full to a single JSON file on every mutation, with ISO-8601
// strings revived back to time.Time on load.
type SnapshotStore struct {
	mutex  sync.RWMutex
	path   string // empty disables persistence (tests)
	tables map[string][]Record
}

var _ Store = (*SnapshotStore)(nil)

// OpenSnapshot loads the snapshot file at path if it exists.
func OpenSnapshot(path string) (*SnapshotStore, error) {
	store := &SnapshotStore{
		path:   path,
		tables: make(map[string][]Record),
	}
	if path == "" {
		return store, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return store, nil
		}
		return nil, errors.Wrap(err, "reading snapshot")
	}
	if err := json.Unmarshal(data, &store.tables); err != nil {
		return nil, errors.Wrap(err, "decoding snapshot")
	}
	for _, records := range store.tables {
		for i, rec := range records {
			records[i] = reviveDates(rec).(Record)
		}
	}
	return store, nil
}

func (s *SnapshotStore) Select(_ context.Context, collection string, filter Filter) ([]Record, error) {
	s.mutex.RLock()
	defer s.mutex.RUnlock()

	var out []Record
	for _, rec := range s.tables[collection] {
		if matches(rec, filter) {
			out = append(out, rec.Clone())
		}
	}
	return out, nil
}

func (s *SnapshotStore) Insert(_ context.Context, collection string, rec Record) (Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	rec = stamp(rec)
	s.tables[collection] = append(s.tables[collection], rec)
	return rec.Clone(), s.persist()
}

func (s *SnapshotStore) Update(_ context.Context, collection string, match Match, patch Record) (Record, error) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	for i, rec := range s.tables[collection] {
		if eqValue(rec[match.Key], match.Value) {
			merged := rec.Merge(patch)
			s.tables[collection][i] = merged
			return merged.Clone(), s.persist()
		}
	}
	return nil, ErrNotFound
}

func (s *SnapshotStore) Delete(_ context.Context, collection string, match Match) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	records := s.tables[collection]
	for i, rec := range records {
		if eqValue(rec[match.Key], match.Value) {
			s.tables[collection] = append(records[:i:i], records[i+1:]...)
			return s.persist()
		}
	}
	return ErrNotFound
}

// persist serializes the whole store; callers must hold the write lock.
func (s *SnapshotStore) persist() error {
	if s.path == "" {
		return nil
	}
	data, err := json.Marshal(s.tables)
	if err != nil {
		return errors.Wrap(err, "encoding snapshot")
	}
	return errors.Wrap(os.WriteFile(s.path, data, 0o644), "writing snapshot")
}

func matches(rec Record, filter Filter) bool {
	for key, want := range filter.Eq {
		if !eqValue(rec[key], want) {
			return false
		}
	}
	for key, want := range filter.Contains {
		if !containsValue(rec[key], want) {
			return false
		}
	}
	return true
}

func containsValue(field, want interface{}) bool {
	switch items := field.(type) {
	case []interface{}:
		for _, item := range items {
			if eqValue(item, want) {
				return true
			}
		}
	case []string:
		for _, item := range items {
			if eqValue(item, want) {
				return true
			}
		}
	}
	return false
}

func eqValue(got, want interface{}) bool {
	if gt, ok := got.(time.Time); ok {
		if wt, ok := want.(time.Time); ok {
			return gt.Equal(wt)
		}
	}
	if gf, ok := asFloat(got); ok {
		if wf, ok := asFloat(want); ok {
			return gf == wf
		}
	}
	return reflect.DeepEqual(got, want)
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		return f, err == nil
	}
	return 0, false
}

// reviveDates walks a decoded JSON value promoting RFC3339 strings to time.Time.
func reviveDates(v interface{}) interface{} {
	switch val := v.(type) {
	case string:
		if t, err := time.Parse(time.RFC3339, val); err == nil {
			return t
		}
		return val
	case map[string]interface{}:
		for k, item := range val {
			val[k] = reviveDates(item)
		}
		return val
	case Record:
		for k, item := range val {
			val[k] = reviveDates(item)
		}
		return val
	case []interface{}:
		for i, item := range val {
			val[i] = reviveDates(item)
		}
		return val
	}
	return v
}
