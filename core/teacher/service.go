package teacher

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("teacher not found")

type (
	Repository interface {
		CreateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		GetTeacherByID(ctx context.Context, id string) (Teacher, error)
		QueryTeachersBySchool(ctx context.Context, schoolID string) ([]Teacher, error)
		UpdateTeacher(ctx context.Context, tch Teacher) (Teacher, error)
		DeleteTeacher(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, schoolID string, nt NewTeacher) (Teacher, error)
		GetByID(ctx context.Context, id string) (Teacher, error)
		QueryBySchool(ctx context.Context, schoolID string) ([]Teacher, error)
		Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error)
		Delete(ctx context.Context, id string) error
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, schoolID string, nt NewTeacher) (Teacher, error) {
	tch := Teacher{
		SchoolID:  schoolID,
		Code:      nt.Code,
		Name:      nt.Name,
		Subjects:  nt.Subjects,
		Salary:    nt.Salary,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateTeacher(ctx, tch)
}

func (svc *service) GetByID(ctx context.Context, id string) (Teacher, error) {
	return svc.repo.GetTeacherByID(ctx, id)
}

func (svc *service) QueryBySchool(ctx context.Context, schoolID string) ([]Teacher, error) {
	return svc.repo.QueryTeachersBySchool(ctx, schoolID)
}

func (svc *service) Update(ctx context.Context, id string, ut UpdateTeacher) (Teacher, error) {
	tch, err := svc.repo.GetTeacherByID(ctx, id)
	if err != nil {
		return Teacher{}, err
	}
	if ut.Code != "" {
		tch.Code = ut.Code
	}
	if ut.Name != "" {
		tch.Name = ut.Name
	}
	if ut.Subjects != nil {
		tch.Subjects = ut.Subjects
	}
	if ut.Salary != nil {
		tch.Salary = ut.Salary
	}
	if ut.Assignments != nil {
		tch.Assignments = ut.Assignments
	}
	return svc.repo.UpdateTeacher(ctx, tch)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteTeacher(ctx, id)
}
