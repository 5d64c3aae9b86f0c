package school

import (
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/madrasahub/madrasa/core"
)

// Feature flag names gating dashboard actions per school.
const (
	FeatureGrades        = "grades"
	FeatureAbsences      = "absences"
	FeatureAnnouncements = "announcements"
	FeatureFees          = "fees"
	FeatureLibrary       = "library"
	FeatureTalkingCards  = "talking_cards"
	FeatureAIReports     = "ai_reports"
	FeatureAILessonPlans = "ai_lesson_plans"
)

type (
	// Principal holds a stage principal's identity; one person may appear
	// under several stages with the same code for cross-stage access.
	Principal struct {
		ID    string `json:"id"`
		Name  string `json:"name" validate:"required"`
		Code  string `json:"code" validate:"required,logincode"`
		Stage string `json:"stage" validate:"required,stage"`
	}

	School struct {
		ID         string          `json:"id"`
		Name       string          `json:"name"`
		Logo       string          `json:"logo,omitempty"`
		Active     bool            `json:"active"`
		Stages     []string        `json:"stages"`
		Features   map[string]bool `json:"features,omitempty"`
		Principals []Principal     `json:"principals"`
		CreatedAt  time.Time       `json:"created_at"` // UTC
	}
)

// FeatureEnabled reports whether a dashboard action is enabled for the
// school. Flags are additive: an absent flag means enabled.
func (s School) FeatureEnabled(name string) bool {
	enabled, ok := s.Features[name]
	return !ok || enabled
}

func (s School) HasStage(stage string) bool {
	for _, st := range s.Stages {
		if st == stage {
			return true
		}
	}
	return false
}

// PrincipalStages collects every stage the given code is a principal of.
func (s School) PrincipalStages(code string) []string {
	var stages []string
	for _, p := range s.Principals {
		if p.Code == code {
			stages = append(stages, p.Stage)
		}
	}
	return stages
}

// NewSchool contains information needed to register a new School.
type NewSchool struct {
	Name   string   `json:"name" validate:"required"`
	Logo   string   `json:"logo"`
	Stages []string `json:"stages" validate:"required,min=1,dive,stage"`
}

func (ns *NewSchool) Validate(validate *validator.Validate) error {
	ns.Name = core.CleanString(ns.Name)
	return validate.Struct(ns)
}

// UpdateSchool defines what information may be provided to modify an existing School.
type UpdateSchool struct {
	Name     string          `json:"name"`
	Logo     string          `json:"logo"`
	Active   *bool           `json:"active"`
	Stages   []string        `json:"stages" validate:"omitempty,dive,stage"`
	Features map[string]bool `json:"features"`
}

func (us *UpdateSchool) Validate(validate *validator.Validate) error {
	us.Name = core.CleanString(us.Name)
	return validate.Struct(us)
}

// NewPrincipal contains information needed to appoint a Principal.
type NewPrincipal struct {
	Name  string `json:"name" validate:"required"`
	Code  string `json:"code" validate:"required,logincode"`
	Stage string `json:"stage" validate:"required,stage"`
}

func (np *NewPrincipal) Validate(validate *validator.Validate) error {
	np.Name = core.CleanString(np.Name)
	np.Code = core.CleanString(np.Code)
	return validate.Struct(np)
}
