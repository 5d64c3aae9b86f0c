package content

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/madrasahub/madrasa/core"
)

// Kind names a content collection. All kinds share the same record shape
// (a stamped item with an optional attachment); kind-specific payloads such
// as quiz questions or talking-card hotspots ride in Extra.
type Kind string

const (
	KindSummary              Kind = "summary"
	KindExercise             Kind = "exercise"
	KindNote                 Kind = "note"
	KindAbsence              Kind = "absence"
	KindExamProgram          Kind = "exam_program"
	KindAnnouncement         Kind = "announcement"
	KindComplaint            Kind = "complaint"
	KindTip                  Kind = "tip"
	KindInterviewRequest     Kind = "interview_request"
	KindLesson               Kind = "lesson"
	KindTimetable            Kind = "timetable"
	KindQuiz                 Kind = "quiz"
	KindProject              Kind = "project"
	KindLibraryItem          Kind = "library_item"
	KindAlbumPhoto           Kind = "album_photo"
	KindPersonalizedExercise Kind = "personalized_exercise"
	KindUnifiedAssessment    Kind = "unified_assessment"
	KindTalkingCard          Kind = "talking_card"
	KindMemorizationItem     Kind = "memorization_item"
	KindFeedback             Kind = "feedback"
)

var Kinds = []Kind{
	KindSummary, KindExercise, KindNote, KindAbsence, KindExamProgram,
	KindAnnouncement, KindComplaint, KindTip, KindInterviewRequest,
	KindLesson, KindTimetable, KindQuiz, KindProject, KindLibraryItem,
	KindAlbumPhoto, KindPersonalizedExercise, KindUnifiedAssessment,
	KindTalkingCard, KindMemorizationItem, KindFeedback,
}

func ValidKind(k Kind) bool {
	for _, kind := range Kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Note statuses
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

type (
	// Attachment is an inline base64 image, a PDF reference, or an external
	// link. PDF URLs are browser-session blob URLs and do not survive a
	// reload; a known limitation carried over from the product.
	Attachment struct {
		Image   string `json:"image,omitempty"` // base64 data URI
		PDFName string `json:"pdf_name,omitempty"`
		PDFURL  string `json:"pdf_url,omitempty"`
		Link    string `json:"link,omitempty"`
	}

	Item struct {
		ID         string                 `json:"id"`
		SchoolID   string                 `json:"school_id"`
		Kind       Kind                   `json:"kind"`
		Title      string                 `json:"title"`
		Body       string                 `json:"body,omitempty"`
		Stage      string                 `json:"stage,omitempty"`
		Level      string                 `json:"level,omitempty"`
		Class      string                 `json:"class,omitempty"`
		Subject    string                 `json:"subject,omitempty"`
		Status     string                 `json:"status,omitempty"` // notes only
		StudentIDs []string               `json:"student_ids,omitempty"`
		TeacherID  string                 `json:"teacher_id,omitempty"`
		Attachment *Attachment            `json:"attachment,omitempty"`
		Extra      map[string]interface{} `json:"extra,omitempty"`
		CreatedAt  time.Time              `json:"created_at"` // UTC
	}
)

// NewItem contains information needed to post a content item.
type NewItem struct {
	Kind       Kind                   `json:"kind" validate:"required"`
	Title      string                 `json:"title" validate:"required"`
	Body       string                 `json:"body"`
	Stage      string                 `json:"stage" validate:"omitempty,stage"`
	Level      string                 `json:"level"`
	Class      string                 `json:"class"`
	Subject    string                 `json:"subject"`
	StudentIDs []string               `json:"student_ids"`
	Attachment *Attachment            `json:"attachment"`
	Extra      map[string]interface{} `json:"extra"`
}

func (ni *NewItem) Validate(validate *validator.Validate) error {
	ni.Title = core.CleanString(ni.Title)
	if err := validate.Struct(ni); err != nil {
		return err
	}
	if !ValidKind(ni.Kind) {
		return core.NewValidationError(nil, core.FieldError{Field: "kind", Error: "unknown content kind"})
	}
	return nil
}

// UpdateItem defines what information may be provided to modify an existing Item.
type UpdateItem struct {
	Title      string                 `json:"title"`
	Body       string                 `json:"body"`
	Subject    string                 `json:"subject"`
	StudentIDs []string               `json:"student_ids"`
	Attachment *Attachment            `json:"attachment"`
	Extra      map[string]interface{} `json:"extra"`
}

func (ui *UpdateItem) Validate(validate *validator.Validate) error {
	ui.Title = core.CleanString(ui.Title)
	return validate.Struct(ui)
}

// QueryFilter applies AND operation on available fields; StudentID matches
// items whose student_ids array contains the value.
type QueryFilter struct {
	Kind      Kind   `query:"kind"`
	SchoolID  string `query:"school_id"`
	Stage     string `query:"stage"`
	Level     string `query:"level"`
	Class     string `query:"class"`
	Subject   string `query:"subject"`
	Status    string `query:"status"`
	StudentID string `query:"student_id"`
}
