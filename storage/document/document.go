package document

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

// Collection names. Every record carries a "school_id" field except schools
// themselves; deletion is plain filtering, no foreign keys are enforced.
const (
	Schools               = "schools"
	Students              = "students"
	Teachers              = "teachers"
	Summaries             = "summaries"
	Exercises             = "exercises"
	Notes                 = "notes"
	Absences              = "absences"
	ExamPrograms          = "exam_programs"
	Notifications         = "notifications"
	Announcements         = "announcements"
	Complaints            = "complaints"
	Tips                  = "tips"
	FeePayments           = "fee_payments"
	InterviewRequests     = "interview_requests"
	Lessons               = "lessons"
	Timetables            = "timetables"
	Quizzes               = "quizzes"
	Projects              = "projects"
	LibraryItems          = "library_items"
	AlbumPhotos           = "album_photos"
	PersonalizedExercises = "personalized_exercises"
	UnifiedAssessments    = "unified_assessments"
	TalkingCards          = "talking_cards"
	MemorizationItems     = "memorization_items"
	Expenses              = "expenses"
	Feedback              = "feedback"
)

// ErrNotFound is the soft error returned by Update/Delete when no record
// matches; callers are expected to log it and carry on, never to panic.
var ErrNotFound = errors.New("record not found")

type (
	// Record is a schemaless document row. IDs are uuid strings under "id";
	// "created_at" is stamped on insert.
	Record map[string]interface{}

	// Filter is ANDed equality and array-containment terms.
	// No joins, no pagination.
	Filter struct {
		Eq       map[string]interface{}
		Contains map[string]interface{}
	}

	// Match identifies a single record by one key/value pair.
	Match struct {
		Key   string
		Value interface{}
	}

	// Store is the document store call shape shared by the snapshot (demo)
	// engine and the Postgres engine. Implementations are picked by DI,
	// never by environment sniffing inside the store.
	Store interface {
		Select(ctx context.Context, collection string, filter Filter) ([]Record, error)
		Insert(ctx context.Context, collection string, rec Record) (Record, error)
		Update(ctx context.Context, collection string, match Match, patch Record) (Record, error)
		Delete(ctx context.Context, collection string, match Match) error
	}
)

func Eq(pairs ...interface{}) Filter {
	f := Filter{Eq: make(map[string]interface{}, len(pairs)/2)}
	for i := 0; i+1 < len(pairs); i += 2 {
		f.Eq[pairs[i].(string)] = pairs[i+1]
	}
	return f
}

func ByID(id string) Match { return Match{Key: "id", Value: id} }

func (r Record) ID() string       { return r.String("id") }
func (r Record) SchoolID() string { return r.String("school_id") }

func (r Record) String(key string) string {
	s, _ := r[key].(string)
	return s
}

func (r Record) Bool(key string) bool {
	b, _ := r[key].(bool)
	return b
}

func (r Record) Time(key string) time.Time {
	t, _ := r[key].(time.Time)
	return t
}

func (r Record) Float(key string) (float64, bool) {
	switch v := r[key].(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	}
	return 0, false
}

func (r Record) Strings(key string) []string {
	switch v := r[key].(type) {
	case []string:
		return v
	case []interface{}:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func (r Record) Clone() Record {
	out := make(Record, len(r))
	for k, v := range r {
		out[k] = v
	}
	return out
}

// Merge shallow-merges patch into a copy of r; last writer wins.
func (r Record) Merge(patch Record) Record {
	out := r.Clone()
	for k, v := range patch {
		out[k] = v
	}
	return out
}

// stamp assigns a fresh uuid and creation timestamp to a copy of rec.
func stamp(rec Record) Record {
	rec = rec.Clone()
	if rec.ID() == "" {
		rec["id"] = uuid.NewString()
	}
	if _, ok := rec["created_at"]; !ok {
		rec["created_at"] = time.Now().UTC()
	}
	return rec
}
