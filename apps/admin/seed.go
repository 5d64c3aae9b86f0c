package main

import (
	"context"
	"time"

	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/core/teacher"
)

func ptr(f float64) *float64 { return &f }

// seed loads a demo school with principals, teachers, students and a few
// content items so every dashboard has something to show.
func (cli *commandLine) seed(ctx ...context.Context) error {
	c := context.Background()
	if len(ctx) > 0 {
		c = ctx[0]
	}
	now := time.Now().UTC()

	sch, err := cli.schoolRepo.CreateSchool(c, school.School{
		Name:   "Al Nour Academy",
		Active: true,
		Stages: []string{"kindergarten", "primary"},
		Principals: []school.Principal{
			{ID: "p-kg", Name: "Amina Haddad", Code: "AMINA-01", Stage: "kindergarten"},
			{ID: "p-pr", Name: "Amina Haddad", Code: "AMINA-01", Stage: "primary"},
		},
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	tch, err := cli.teacherRepo.CreateTeacher(c, teacher.Teacher{
		SchoolID: sch.ID,
		Code:     "TCH-1001",
		Name:     "Yusuf Benali",
		Subjects: []string{"arabic", "math"},
		Salary:   ptr(1200),
		Assignments: map[string][]string{
			"grade-1": {"A", "B"},
			"grade-2": {"A"},
		},
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	std, err := cli.studentRepo.CreateStudent(c, student.Student{
		SchoolID:      sch.ID,
		GuardianCode:  "GRD-2001",
		GuardianEmail: "guardian@example.com",
		Name:          "Layla Benkirane",
		Stage:         "primary",
		Level:         "grade-1",
		Class:         "A",
		Grades: map[string][]student.GradeEntry{
			"arabic": {
				{SubSubject: "reading", Semester: 1, Assignment: "quiz 1", Score: ptr(17.5)},
				{SubSubject: "dictation", Semester: 1, Assignment: "quiz 2", Score: ptr(15)},
				{SubSubject: "reading", Semester: 2, Assignment: "exam", Score: nil},
			},
		},
		CreatedAt: now,
	})
	if err != nil {
		return err
	}

	if _, err = cli.studentRepo.CreateStudent(c, student.Student{
		SchoolID:     sch.ID,
		GuardianCode: "GRD-2002",
		Name:         "Omar Cherkaoui",
		Stage:        "primary",
		Level:        "grade-1",
		Class:        "A",
		CreatedAt:    now,
	}); err != nil {
		return err
	}

	items := []content.Item{
		{
			SchoolID:  sch.ID,
			Kind:      content.KindAnnouncement,
			Title:     "Term starts Monday",
			Body:      "Classes resume at 8:00.",
			Stage:     "primary",
			CreatedAt: now,
		},
		{
			SchoolID:   sch.ID,
			Kind:       content.KindNote,
			Title:      "Excellent participation",
			Body:       "Layla led the reading circle today.",
			Stage:      "primary",
			Level:      "grade-1",
			Class:      "A",
			Subject:    "arabic",
			Status:     content.StatusPending,
			StudentIDs: []string{std.ID},
			TeacherID:  tch.ID,
			CreatedAt:  now,
		},
	}
	for _, item := range items {
		if _, err = cli.contentRepo.CreateItem(c, item); err != nil {
			return err
		}
	}

	logger.Printf("seeded school %q (id %s)", sch.Name, sch.ID)
	logger.Printf("  principal code: AMINA-01")
	logger.Printf("  teacher code:   TCH-1001")
	logger.Printf("  guardian code:  GRD-2001")
	return nil
}
