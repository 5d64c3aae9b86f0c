package student

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/madrasahub/madrasa/core"
)

type (
	// GradeEntry is one scored (or not yet scored) assignment.
	// A nil Score is a blank cell, not a zero.
	GradeEntry struct {
		SubSubject Ssub     `json:"sub_subject"`
		Semester   int      `json:"semester" validate:"semester"`
		Assignment string   `json:"assignment"`
		Score      *float64 `json:"score"`
	}

	Student struct {
		ID            string                  `json:"id"`
		SchoolID      string                  `json:"school_id"`
		GuardianCode  string                  `json:"guardian_code"`
		GuardianEmail string                  `json:"guardian_email,omitempty"`
		Name          string                  `json:"name"`
		Stage         string                  `json:"stage"`
		Level         string                  `json:"level"`
		Class         string                  `json:"class"`
		Grades        map[string][]GradeEntry `json:"grades,omitempty"` // keyed by subject
		CreatedAt     time.Time               `json:"created_at"`       // UTC
	}
)

// Ssub names a sub-subject ("reading", "dictation", ...); free-form text.
type Ssub = string

// GradedAssignments counts entries with a non-nil score for one subject.
func (s Student) GradedAssignments(subject string) int {
	var n int
	for _, entry := range s.Grades[subject] {
		if entry.Score != nil {
			n++
		}
	}
	return n
}

// NewStudent contains information needed to enroll a new Student.
type NewStudent struct {
	GuardianCode  string `json:"guardian_code" validate:"required,logincode"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	Name          string `json:"name" validate:"required"`
	Stage         string `json:"stage" validate:"required,stage"`
	Level         string `json:"level" validate:"required"`
	Class         string `json:"class" validate:"required"`
}

func (ns *NewStudent) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	ns.GuardianCode = core.CleanString(ns.GuardianCode)
	ns.GuardianEmail = core.CleanString(ns.GuardianEmail, true /* lower */)
	return validate.Struct(ns)
}

// UpdateStudent defines what information may be provided to modify an existing Student.
type UpdateStudent struct {
	GuardianCode  string `json:"guardian_code" validate:"omitempty,logincode"`
	GuardianEmail string `json:"guardian_email" validate:"omitempty,email"`
	Name          string `json:"name"`
	Stage         string `json:"stage" validate:"omitempty,stage"`
	Level         string `json:"level"`
	Class         string `json:"class"`
}

func (us *UpdateStudent) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	us.GuardianCode = core.CleanString(us.GuardianCode)
	us.GuardianEmail = core.CleanString(us.GuardianEmail, true /* lower */)
	return validate.Struct(us)
}

// SaveGrades is a grade sheet submission for one subject. All-nil scores are
// a valid submission and store a blank sheet.
type SaveGrades struct {
	Subject string       `json:"subject" validate:"required"`
	Entries []GradeEntry `json:"entries" validate:"dive"`
}

func (sg *SaveGrades) Validate(validate *validator.Validate) error {
	sg.Subject = core.CleanString(sg.Subject)
	return validate.Struct(sg)
}
