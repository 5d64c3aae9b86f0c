package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func Test_filterQuery(t *testing.T) {
	const base = "SELECT data FROM documents WHERE collection = $1"

	tests := []struct {
		name     string
		filter   Filter
		wantSQL  string
		wantArgs []interface{}
	}{
		{
			name:     "no terms",
			filter:   Filter{},
			wantSQL:  base,
			wantArgs: []interface{}{Students},
		},
		{
			name:     "eq terms compile to one containment object",
			filter:   Eq("school_id", "s1", "class", "A"),
			wantSQL:  base + " AND data @> $2::jsonb",
			wantArgs: []interface{}{Students, `{"class":"A","school_id":"s1"}`},
		},
		{
			name:     "contains term checks the array field",
			filter:   Filter{Contains: map[string]interface{}{"student_ids": "st1"}},
			wantSQL:  base + ` AND data->$2 @> $3::jsonb`,
			wantArgs: []interface{}{Students, "student_ids", `"st1"`},
		},
		{
			name: "eq and contains combine",
			filter: Filter{
				Eq:       map[string]interface{}{"school_id": "s1"},
				Contains: map[string]interface{}{"student_ids": "st1"},
			},
			wantSQL:  base + ` AND data @> $2::jsonb AND data->$3 @> $4::jsonb`,
			wantArgs: []interface{}{Students, `{"school_id":"s1"}`, "student_ids", `"st1"`},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			query, args, err := filterQuery(base, Students, tt.filter)
			assert.NoError(t, err)
			assert.Equal(t, tt.wantSQL, query)
			assert.Equal(t, tt.wantArgs, args)
		})
	}
}

func Test_matchQuery(t *testing.T) {
	const base = "SELECT data FROM documents WHERE collection = $1"

	t.Run("id matches the primary key column", func(t *testing.T) {
		query, args, err := matchQuery(base, Students, ByID("st1"))
		assert.NoError(t, err)
		assert.Equal(t, base+" AND id = $2", query)
		assert.Equal(t, []interface{}{Students, "st1"}, args)
	})

	t.Run("other keys match by containment", func(t *testing.T) {
		query, args, err := matchQuery(base, FeePayments, Match{Key: "reference", Value: "ord-1"})
		assert.NoError(t, err)
		assert.Equal(t, base+" AND data @> $2::jsonb", query)
		assert.Equal(t, []interface{}{FeePayments, `{"reference":"ord-1"}`}, args)
	})
}
