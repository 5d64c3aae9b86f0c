package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/student"
)

var (
	// ErrNoAPIKey is returned before any network call when the generative
	// endpoint is not configured.
	ErrNoAPIKey = errors.New("generative AI API key is not configured")
	// ErrInsufficientGrades rejects report-comment generation when too few
	// assignments are graded to say anything meaningful.
	ErrInsufficientGrades = errors.New("not enough graded assignments to generate a comment")
)

type (
	// Box is a hotspot bounding box; all fields are 0-1 fractions of the
	// image dimensions.
	Box struct {
		X      float64 `json:"x"`
		Y      float64 `json:"y"`
		Width  float64 `json:"width"`
		Height float64 `json:"height"`
	}

	// Hotspot is one labeled region of a talking card.
	Hotspot struct {
		Label string `json:"label"`
		Box   Box    `json:"box"`
	}

	// Generator is any backend that can complete a text prompt or detect
	// labeled regions in an image.
	Generator interface {
		GenerateText(ctx context.Context, prompt string) (string, error)
		DetectHotspots(ctx context.Context, imageBase64, mimeType string) ([]Hotspot, error)
	}

	Service interface {
		ReportCardComment(ctx context.Context, std student.Student, subject, language string) (string, error)
		LessonPlan(ctx context.Context, subject, topic, stage, language string) (string, error)
		TalkingCardHotspots(ctx context.Context, imageBase64, mimeType string) ([]Hotspot, error)
	}

	service struct {
		gen  Generator
		conf *core.Config
	}
)

var _ Service = (*service)(nil)

func NewService(gen Generator, conf *core.Config) Service {
	return &service{gen: gen, conf: conf}
}

// ReportCardComment builds a comment prompt from the student's graded work.
// There is no retry and no fallback model: a failure is surfaced to the
// screen as-is and the user resubmits.
func (svc *service) ReportCardComment(ctx context.Context, std student.Student, subject, language string) (string, error) {
	graded := std.GradedAssignments(subject)
	if graded < svc.conf.AI.MinGradedAssignments {
		return "", errors.Wrapf(ErrInsufficientGrades,
			"%d graded assignments in %s, need at least %d", graded, subject, svc.conf.AI.MinGradedAssignments)
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "You are a %s teacher writing a short report-card comment in %s for the student %q.\n",
		subject, language, std.Name)
	sb.WriteString("Their graded assignments this year:\n")
	for _, entry := range std.Grades[subject] {
		if entry.Score == nil {
			continue
		}
		fmt.Fprintf(&sb, "- %s (%s, semester %d): %.1f\n", entry.Assignment, entry.SubSubject, entry.Semester, *entry.Score)
	}
	sb.WriteString("Write 2-3 encouraging sentences mentioning concrete strengths and one area to improve. Plain text only.")

	return svc.gen.GenerateText(ctx, sb.String())
}

func (svc *service) LessonPlan(ctx context.Context, subject, topic, stage, language string) (string, error) {
	prompt := fmt.Sprintf(
		"Write a structured lesson plan in %s for a %s class at the %s stage on the topic %q. "+
			"Include objectives, materials, a warm-up, main activities with timings, and an assessment idea.",
		language, subject, stage, topic)
	return svc.gen.GenerateText(ctx, prompt)
}

func (svc *service) TalkingCardHotspots(ctx context.Context, imageBase64, mimeType string) ([]Hotspot, error) {
	return svc.gen.DetectHotspots(ctx, imageBase64, mimeType)
}
