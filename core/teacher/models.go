package teacher

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/madrasahub/madrasa/core"
)

type Teacher struct {
	ID       string   `json:"id"`
	SchoolID string   `json:"school_id"`
	Code     string   `json:"code"`
	Name     string   `json:"name"`
	Subjects []string `json:"subjects"`
	Salary   *float64 `json:"salary,omitempty"`
	// Assignments maps a level to the classes taught at that level.
	Assignments map[string][]string `json:"assignments,omitempty"`
	CreatedAt   time.Time           `json:"created_at"` // UTC
}

// Teaches reports whether the teacher covers the given level/class pair.
func (t Teacher) Teaches(level, class string) bool {
	for _, c := range t.Assignments[level] {
		if c == class {
			return true
		}
	}
	return false
}

// NewTeacher contains information needed to register a new Teacher.
type NewTeacher struct {
	Code     string   `json:"code" validate:"required,logincode"`
	Name     string   `json:"name" validate:"required"`
	Subjects []string `json:"subjects" validate:"required,min=1"`
	Salary   *float64 `json:"salary"`
}

func (nt *NewTeacher) Validate(validate *validator.Validate) error {
	nt.Name = core.CleanString(nt.Name)
	nt.Code = core.CleanString(nt.Code)
	return validate.Struct(nt)
}

// UpdateTeacher defines what information may be provided to modify an existing Teacher.
type UpdateTeacher struct {
	Code        string              `json:"code" validate:"omitempty,logincode"`
	Name        string              `json:"name"`
	Subjects    []string            `json:"subjects"`
	Salary      *float64            `json:"salary"`
	Assignments map[string][]string `json:"assignments"`
}

func (ut *UpdateTeacher) Validate(validate *validator.Validate) error {
	ut.Name = core.CleanString(ut.Name)
	ut.Code = core.CleanString(ut.Code)
	return validate.Struct(ut)
}
