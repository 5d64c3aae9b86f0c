package session

import (
	"context"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/core/teacher"
)

// Resolver turns a plaintext login code into a Session by scanning every
// school. Codes are assumed globally unique by convention, not constraint:
// the scan order is schools (registration order), then within each school
// principals, then students by guardian code, then teachers; first match
// wins. If two roles ever shared a code the earlier scan position would
// silently win; that ordering is an implementation accident, not a product
// rule (see DESIGN.md).
type Resolver struct {
	conf        *core.Config
	schoolRepo  school.Repository
	studentRepo student.Repository
	teacherRepo teacher.Repository
}

func NewResolver(conf *core.Config, schoolRepo school.Repository, studentRepo student.Repository, teacherRepo teacher.Repository) *Resolver {
	return &Resolver{
		conf:        conf,
		schoolRepo:  schoolRepo,
		studentRepo: studentRepo,
		teacherRepo: teacherRepo,
	}
}

// Resolve returns (session, true) when the code matches a role, and
// (zero, false) when it matches nothing. A miss is an expected outcome for
// the caller to render, not an error.
func (r *Resolver) Resolve(ctx context.Context, code string) (Session, bool, error) {
	code = core.CleanString(code)
	if code == "" {
		return Session{}, false, nil
	}

	if code == r.conf.SuperAdminCode {
		return Session{Role: RoleSuperAdmin}, true, nil
	}

	schools, err := r.schoolRepo.QueryAllSchools(ctx)
	if err != nil {
		return Session{}, false, errors.Wrap(err, "querying schools")
	}

	for _, sch := range schools {
		if !sch.Active {
			continue
		}

		if stages := sch.PrincipalStages(code); len(stages) > 0 {
			return Session{Role: RolePrincipal, SchoolID: sch.ID, Stages: stages}, true, nil
		}

		students, err := r.studentRepo.FilterStudents(ctx, student.QueryFilter{SchoolID: sch.ID})
		if err != nil {
			return Session{}, false, errors.Wrap(err, "querying students")
		}
		for _, std := range students {
			if std.GuardianCode == code {
				return Session{Role: RoleGuardian, SchoolID: sch.ID, StudentID: std.ID}, true, nil
			}
		}

		teachers, err := r.teacherRepo.QueryTeachersBySchool(ctx, sch.ID)
		if err != nil {
			return Session{}, false, errors.Wrap(err, "querying teachers")
		}
		for _, tch := range teachers {
			if tch.Code == code {
				return Session{Role: RoleTeacher, SchoolID: sch.ID, TeacherID: tch.ID}, true, nil
			}
		}
	}
	return Session{}, false, nil
}
