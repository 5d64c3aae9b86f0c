package ai_test

import (
	"context"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/ai"
	"github.com/madrasahub/madrasa/core/student"
	aisvc "github.com/madrasahub/madrasa/services/ai"
)

var ctx = context.Background()

func ptr(f float64) *float64 { return &f }

func newService(gen ai.Generator) ai.Service {
	conf := &core.Config{}
	conf.AI.MinGradedAssignments = 2
	return ai.NewService(gen, conf)
}

func gradedStudent() student.Student {
	return student.Student{
		Name:  "Layla Benkirane",
		Stage: "primary",
		Grades: map[string][]student.GradeEntry{
			"arabic": {
				{SubSubject: "reading", Semester: 1, Assignment: "quiz-1", Score: ptr(17.5)},
				{SubSubject: "dictation", Semester: 1, Assignment: "quiz-1", Score: ptr(14)},
				{SubSubject: "reading", Semester: 2, Assignment: "exam", Score: nil},
			},
		},
	}
}

func TestService_ReportCardComment(t *testing.T) {
	t.Run("builds the prompt from graded work", func(t *testing.T) {
		gen := &aisvc.DummyGenerator{Text: "Layla reads beautifully."}
		svc := newService(gen)

		comment, err := svc.ReportCardComment(ctx, gradedStudent(), "arabic", "English")
		assert.NoError(t, err)
		assert.Equal(t, "Layla reads beautifully.", comment)

		require.Len(t, gen.Prompts, 1)
		prompt := gen.Prompts[0]
		assert.Contains(t, prompt, "Layla Benkirane")
		assert.Contains(t, prompt, "English")
		assert.Contains(t, prompt, "quiz-1 (reading, semester 1): 17.5")
		assert.Contains(t, prompt, "quiz-1 (dictation, semester 1): 14.0")
		// ungraded entries stay out of the prompt
		assert.NotContains(t, prompt, "exam")
	})

	t.Run("too few graded assignments", func(t *testing.T) {
		gen := &aisvc.DummyGenerator{}
		svc := newService(gen)

		std := gradedStudent()
		std.Grades["arabic"] = std.Grades["arabic"][:1]
		_, err := svc.ReportCardComment(ctx, std, "arabic", "English")
		assert.Equal(t, ai.ErrInsufficientGrades, errors.Cause(err))
		assert.Empty(t, gen.Prompts)
	})

	t.Run("generator errors pass through", func(t *testing.T) {
		genErr := errors.New("boom")
		svc := newService(&aisvc.DummyGenerator{Err: genErr})

		_, err := svc.ReportCardComment(ctx, gradedStudent(), "arabic", "English")
		assert.Equal(t, genErr, errors.Cause(err))
	})
}

func TestService_LessonPlan(t *testing.T) {
	gen := &aisvc.DummyGenerator{Text: "Lesson plan."}
	svc := newService(gen)

	plan, err := svc.LessonPlan(ctx, "arabic", "The solar system", "primary", "Arabic")
	assert.NoError(t, err)
	assert.Equal(t, "Lesson plan.", plan)

	require.Len(t, gen.Prompts, 1)
	assert.Contains(t, gen.Prompts[0], `"The solar system"`)
	assert.Contains(t, gen.Prompts[0], "primary")
}

func TestService_TalkingCardHotspots(t *testing.T) {
	want := []ai.Hotspot{{Label: "cat", Box: ai.Box{X: 0.1, Y: 0.2, Width: 0.3, Height: 0.4}}}
	svc := newService(&aisvc.DummyGenerator{Hotspots: want})

	spots, err := svc.TalkingCardHotspots(ctx, "aW1hZ2U=", "image/png")
	assert.NoError(t, err)
	assert.Equal(t, want, spots)
}
