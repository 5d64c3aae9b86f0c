package session_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/core/teacher"
	"github.com/madrasahub/madrasa/storage/document"
	docrepos "github.com/madrasahub/madrasa/storage/repos"
)

var ctx = context.Background()

type resolverFixture struct {
	resolver *session.Resolver

	school school.School
	std    student.Student
	tch    teacher.Teacher
}

func newResolverFixture(t *testing.T) *resolverFixture {
	t.Helper()

	store, err := document.OpenSnapshot("")
	require.NoError(t, err)

	schoolRepo := docrepos.NewSchoolRepository(store)
	studentRepo := docrepos.NewStudentRepository(store)
	teacherRepo := docrepos.NewTeacherRepository(store)

	sch, err := schoolRepo.CreateSchool(ctx, school.School{
		Name:   "Al Nour Academy",
		Active: true,
		Stages: []string{"kindergarten", "primary"},
		Principals: []school.Principal{
			{ID: "p-kg", Name: "Amina Haddad", Code: "AMINA-01", Stage: "kindergarten"},
			{ID: "p-pr", Name: "Amina Haddad", Code: "AMINA-01", Stage: "primary"},
			{ID: "p-solo", Name: "Karim Idrissi", Code: "KARIM-01", Stage: "primary"},
		},
	})
	require.NoError(t, err)

	std, err := studentRepo.CreateStudent(ctx, student.Student{
		SchoolID:     sch.ID,
		GuardianCode: "GRD-2001",
		Name:         "Layla Benkirane",
		Stage:        "primary",
		Level:        "grade-1",
		Class:        "A",
	})
	require.NoError(t, err)

	tch, err := teacherRepo.CreateTeacher(ctx, teacher.Teacher{
		SchoolID: sch.ID,
		Code:     "TCH-1001",
		Name:     "Yusuf Benali",
		Subjects: []string{"arabic"},
	})
	require.NoError(t, err)

	conf := &core.Config{SuperAdminCode: "ROOT-999"}
	return &resolverFixture{
		resolver: session.NewResolver(conf, schoolRepo, studentRepo, teacherRepo),
		school:   sch,
		std:      std,
		tch:      tch,
	}
}

func TestResolver_Resolve(t *testing.T) {
	fix := newResolverFixture(t)

	tests := []struct {
		name string
		code string
		ok   bool
		want session.Session
	}{
		{name: "empty code misses", code: "   ", ok: false},
		{name: "unknown code misses", code: "NOPE-0000", ok: false},
		{name: "super admin", code: "ROOT-999", ok: true,
			want: session.Session{Role: session.RoleSuperAdmin}},
		{name: "principal collects every stage sharing the code", code: "AMINA-01", ok: true,
			want: session.Session{Role: session.RolePrincipal, SchoolID: fix.school.ID, Stages: []string{"kindergarten", "primary"}}},
		{name: "single-stage principal", code: "KARIM-01", ok: true,
			want: session.Session{Role: session.RolePrincipal, SchoolID: fix.school.ID, Stages: []string{"primary"}}},
		{name: "guardian", code: "GRD-2001", ok: true,
			want: session.Session{Role: session.RoleGuardian, SchoolID: fix.school.ID, StudentID: fix.std.ID}},
		{name: "teacher", code: "TCH-1001", ok: true,
			want: session.Session{Role: session.RoleTeacher, SchoolID: fix.school.ID, TeacherID: fix.tch.ID}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sess, ok, err := fix.resolver.Resolve(ctx, tt.code)
			assert.NoError(t, err)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, sess)
		})
	}
}

func TestResolver_Resolve_inactiveSchool(t *testing.T) {
	store, err := document.OpenSnapshot("")
	require.NoError(t, err)

	schoolRepo := docrepos.NewSchoolRepository(store)
	studentRepo := docrepos.NewStudentRepository(store)
	teacherRepo := docrepos.NewTeacherRepository(store)

	_, err = schoolRepo.CreateSchool(ctx, school.School{
		Name:   "Closed Academy",
		Active: false,
		Stages: []string{"primary"},
		Principals: []school.Principal{
			{ID: "p1", Name: "Sara Alami", Code: "SARA-01", Stage: "primary"},
		},
	})
	require.NoError(t, err)

	resolver := session.NewResolver(&core.Config{}, schoolRepo, studentRepo, teacherRepo)
	sess, ok, err := resolver.Resolve(ctx, "SARA-01")
	assert.NoError(t, err)
	assert.False(t, ok)
	assert.True(t, sess.IsZero())
}

func TestResolver_Resolve_firstSchoolWins(t *testing.T) {
	store, err := document.OpenSnapshot("")
	require.NoError(t, err)

	schoolRepo := docrepos.NewSchoolRepository(store)
	studentRepo := docrepos.NewStudentRepository(store)
	teacherRepo := docrepos.NewTeacherRepository(store)

	first, err := schoolRepo.CreateSchool(ctx, school.School{Name: "First", Active: true, Stages: []string{"primary"}})
	require.NoError(t, err)
	second, err := schoolRepo.CreateSchool(ctx, school.School{Name: "Second", Active: true, Stages: []string{"primary"}})
	require.NoError(t, err)

	// the same guardian code registered in both schools, newest school first
	// to prove it is registration order, not insert order, that decides
	_, err = studentRepo.CreateStudent(ctx, student.Student{SchoolID: second.ID, GuardianCode: "GRD-DUP", Name: "B", Stage: "primary", Level: "grade-1", Class: "A"})
	require.NoError(t, err)
	wantStd, err := studentRepo.CreateStudent(ctx, student.Student{SchoolID: first.ID, GuardianCode: "GRD-DUP", Name: "A", Stage: "primary", Level: "grade-1", Class: "A"})
	require.NoError(t, err)

	resolver := session.NewResolver(&core.Config{}, schoolRepo, studentRepo, teacherRepo)
	sess, ok, err := resolver.Resolve(ctx, "GRD-DUP")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, first.ID, sess.SchoolID)
	assert.Equal(t, wantStd.ID, sess.StudentID)
}
