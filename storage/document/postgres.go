package document

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

// PostgresStore is the hosted engine: one jsonb table, filters compiled to
// containment queries. The call shape is identical to the snapshot engine.
type PostgresStore struct {
	db *sqlx.DB
}

var _ Store = (*PostgresStore)(nil)

func NewPostgresStore(db *sqlx.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Select(ctx context.Context, collection string, filter Filter) ([]Record, error) {
	query, args, err := filterQuery("SELECT data FROM documents WHERE collection = $1", collection, filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, errors.Wrap(err, "selecting documents")
	}
	defer func() { _ = rows.Close() }()

	var out []Record
	for rows.Next() {
		var data []byte
		if err = rows.Scan(&data); err != nil {
			return nil, errors.Wrap(err, "scanning document")
		}
		rec, err := decodeRecord(data)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, errors.Wrap(rows.Err(), "iterating documents")
}

func (s *PostgresStore) Insert(ctx context.Context, collection string, rec Record) (Record, error) {
	rec = stamp(rec)
	data, err := json.Marshal(rec)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	_, err = s.db.ExecContext(ctx,
		"INSERT INTO documents (id, collection, data, created_at) VALUES ($1, $2, $3, $4)",
		rec.ID(), collection, data, rec.Time("created_at"),
	)
	if err != nil {
		return nil, errors.Wrap(err, "inserting document")
	}
	return rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, collection string, match Match, patch Record) (Record, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, errors.Wrap(err, "beginning tx")
	}
	defer func() { _ = tx.Rollback() }()

	rec, err := s.getForUpdate(ctx, tx, collection, match)
	if err != nil {
		return nil, err
	}

	merged := rec.Merge(patch)
	data, err := json.Marshal(merged)
	if err != nil {
		return nil, errors.Wrap(err, "encoding document")
	}
	if _, err = tx.ExecContext(ctx, "UPDATE documents SET data = $1 WHERE id = $2", data, rec.ID()); err != nil {
		return nil, errors.Wrap(err, "updating document")
	}
	return merged, errors.Wrap(tx.Commit(), "committing tx")
}

func (s *PostgresStore) Delete(ctx context.Context, collection string, match Match) error {
	query, args, err := matchQuery("SELECT id FROM documents WHERE collection = $1", collection, match)
	if err != nil {
		return err
	}
	var id string
	if err = s.db.QueryRowxContext(ctx, query+" LIMIT 1", args...).Scan(&id); err != nil {
		if err == sql.ErrNoRows {
			return ErrNotFound
		}
		return errors.Wrap(err, "finding document")
	}
	_, err = s.db.ExecContext(ctx, "DELETE FROM documents WHERE id = $1", id)
	return errors.Wrap(err, "deleting document")
}

func (s *PostgresStore) getForUpdate(ctx context.Context, tx *sqlx.Tx, collection string, match Match) (Record, error) {
	query, args, err := matchQuery("SELECT data FROM documents WHERE collection = $1", collection, match)
	if err != nil {
		return nil, err
	}
	var data []byte
	if err = tx.QueryRowxContext(ctx, query+" LIMIT 1 FOR UPDATE", args...).Scan(&data); err != nil {
		if err == sql.ErrNoRows {
			return nil, ErrNotFound
		}
		return nil, errors.Wrap(err, "finding document")
	}
	return decodeRecord(data)
}

// filterQuery compiles a Filter to jsonb containment terms: all Eq pairs as
// one @> object, each Contains term as an element check on its array field.
func filterQuery(base, collection string, filter Filter) (string, []interface{}, error) {
	query := base
	args := []interface{}{collection}

	if len(filter.Eq) > 0 {
		obj, err := json.Marshal(filter.Eq)
		if err != nil {
			return "", nil, errors.Wrap(err, "encoding filter")
		}
		args = append(args, string(obj))
		query += fmt.Sprintf(" AND data @> $%d::jsonb", len(args))
	}
	for key, want := range filter.Contains {
		val, err := json.Marshal(want)
		if err != nil {
			return "", nil, errors.Wrap(err, "encoding filter")
		}
		args = append(args, key, string(val))
		query += fmt.Sprintf(" AND data->$%d @> $%d::jsonb", len(args)-1, len(args))
	}
	return query, args, nil
}

func matchQuery(base, collection string, match Match) (string, []interface{}, error) {
	args := []interface{}{collection}
	if match.Key == "id" {
		args = append(args, match.Value)
		return base + " AND id = $2", args, nil
	}
	obj, err := json.Marshal(map[string]interface{}{match.Key: match.Value})
	if err != nil {
		return "", nil, errors.Wrap(err, "encoding match")
	}
	args = append(args, string(obj))
	return base + " AND data @> $2::jsonb", args, nil
}

func decodeRecord(data []byte) (Record, error) {
	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "decoding document")
	}
	return reviveDates(rec).(Record), nil
}
