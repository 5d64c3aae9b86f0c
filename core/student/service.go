package student

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("student not found")

type (
	// QueryFilter applies AND operation on available fields.
	QueryFilter struct {
		SchoolID string `query:"school_id"`
		Stage    string `query:"stage"`
		Level    string `query:"level"`
		Class    string `query:"class"`
	}

	Repository interface {
		CreateStudent(ctx context.Context, std Student) (Student, error)
		GetStudentByID(ctx context.Context, id string) (Student, error)
		FilterStudents(ctx context.Context, filter QueryFilter) ([]Student, error)
		UpdateStudent(ctx context.Context, std Student) (Student, error)
		DeleteStudent(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, schoolID string, ns NewStudent) (Student, error)
		GetByID(ctx context.Context, id string) (Student, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Student, error)
		Update(ctx context.Context, id string, us UpdateStudent) (Student, error)
		Delete(ctx context.Context, id string) error
		SaveGrades(ctx context.Context, id string, sg SaveGrades) (Student, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, schoolID string, ns NewStudent) (Student, error) {
	std := Student{
		SchoolID:      schoolID,
		GuardianCode:  ns.GuardianCode,
		GuardianEmail: ns.GuardianEmail,
		Name:          ns.Name,
		Stage:         ns.Stage,
		Level:         ns.Level,
		Class:         ns.Class,
		CreatedAt:     time.Now().UTC(),
	}
	return svc.repo.CreateStudent(ctx, std)
}

func (svc *service) GetByID(ctx context.Context, id string) (Student, error) {
	return svc.repo.GetStudentByID(ctx, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Student, error) {
	return svc.repo.FilterStudents(ctx, filter)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateStudent) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if us.GuardianCode != "" {
		std.GuardianCode = us.GuardianCode
	}
	if us.GuardianEmail != "" {
		std.GuardianEmail = us.GuardianEmail
	}
	if us.Name != "" {
		std.Name = us.Name
	}
	if us.Stage != "" {
		std.Stage = us.Stage
	}
	if us.Level != "" {
		std.Level = us.Level
	}
	if us.Class != "" {
		std.Class = us.Class
	}
	return svc.repo.UpdateStudent(ctx, std)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteStudent(ctx, id)
}

// SaveGrades replaces the subject's grade sheet; a sheet of all-nil scores is
// stored as-is.
func (svc *service) SaveGrades(ctx context.Context, id string, sg SaveGrades) (Student, error) {
	std, err := svc.repo.GetStudentByID(ctx, id)
	if err != nil {
		return Student{}, err
	}
	if std.Grades == nil {
		std.Grades = make(map[string][]GradeEntry)
	}
	if sg.Entries == nil {
		sg.Entries = []GradeEntry{}
	}
	std.Grades[sg.Subject] = sg.Entries
	return svc.repo.UpdateStudent(ctx, std)
}
