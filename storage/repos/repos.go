// Package docrepos implements each domain's Repository interface on top of
// the document.Store call shape, so both store engines (snapshot and
// Postgres) are covered by one set of typed repositories.
package docrepos

import (
	"encoding/json"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/storage/document"
)

func toRecord(v interface{}) (document.Record, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return nil, errors.Wrap(err, "encoding record")
	}
	var rec document.Record
	if err = json.Unmarshal(data, &rec); err != nil {
		return nil, errors.Wrap(err, "decoding record")
	}
	return rec, nil
}

func fromRecord(rec document.Record, v interface{}) error {
	data, err := json.Marshal(rec)
	if err != nil {
		return errors.Wrap(err, "encoding record")
	}
	return errors.Wrap(json.Unmarshal(data, v), "decoding record")
}
