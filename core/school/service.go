package school

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("school not found")

type (
	Repository interface {
		CreateSchool(ctx context.Context, sch School) (School, error)
		// QueryAllSchools returns schools in registration order; the login
		// scan relies on that order being stable.
		QueryAllSchools(ctx context.Context) ([]School, error)
		GetSchoolByID(ctx context.Context, id string) (School, error)
		UpdateSchool(ctx context.Context, sch School) (School, error)
		DeleteSchool(ctx context.Context, id string) error
	}

	Service interface {
		Create(ctx context.Context, ns NewSchool) (School, error)
		QueryAll(ctx context.Context) ([]School, error)
		GetByID(ctx context.Context, id string) (School, error)
		Update(ctx context.Context, id string, us UpdateSchool) (School, error)
		Delete(ctx context.Context, id string) error
		SetFeature(ctx context.Context, id, feature string, enabled bool) (School, error)
		AddPrincipal(ctx context.Context, id string, np NewPrincipal) (School, error)
		RemovePrincipal(ctx context.Context, id, principalID string) (School, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Create(ctx context.Context, ns NewSchool) (School, error) {
	sch := School{
		Name:      ns.Name,
		Logo:      ns.Logo,
		Active:    true,
		Stages:    ns.Stages,
		CreatedAt: time.Now().UTC(),
	}
	return svc.repo.CreateSchool(ctx, sch)
}

func (svc *service) QueryAll(ctx context.Context) ([]School, error) {
	return svc.repo.QueryAllSchools(ctx)
}

func (svc *service) GetByID(ctx context.Context, id string) (School, error) {
	return svc.repo.GetSchoolByID(ctx, id)
}

func (svc *service) Update(ctx context.Context, id string, us UpdateSchool) (School, error) {
	sch, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return School{}, err
	}
	if us.Name != "" {
		sch.Name = us.Name
	}
	if us.Logo != "" {
		sch.Logo = us.Logo
	}
	if us.Active != nil {
		sch.Active = *us.Active
	}
	if us.Stages != nil {
		sch.Stages = us.Stages
	}
	if us.Features != nil {
		sch.Features = us.Features
	}
	return svc.repo.UpdateSchool(ctx, sch)
}

func (svc *service) Delete(ctx context.Context, id string) error {
	return svc.repo.DeleteSchool(ctx, id)
}

func (svc *service) SetFeature(ctx context.Context, id, feature string, enabled bool) (School, error) {
	sch, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return School{}, err
	}
	if sch.Features == nil {
		sch.Features = make(map[string]bool)
	}
	sch.Features[feature] = enabled
	return svc.repo.UpdateSchool(ctx, sch)
}

func (svc *service) AddPrincipal(ctx context.Context, id string, np NewPrincipal) (School, error) {
	sch, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return School{}, err
	}
	sch.Principals = append(sch.Principals, Principal{
		ID:    uuid.NewString(),
		Name:  np.Name,
		Code:  np.Code,
		Stage: np.Stage,
	})
	return svc.repo.UpdateSchool(ctx, sch)
}

func (svc *service) RemovePrincipal(ctx context.Context, id, principalID string) (School, error) {
	sch, err := svc.repo.GetSchoolByID(ctx, id)
	if err != nil {
		return School{}, err
	}
	kept := sch.Principals[:0]
	for _, p := range sch.Principals {
		if p.ID != principalID {
			kept = append(kept, p)
		}
	}
	sch.Principals = kept
	return svc.repo.UpdateSchool(ctx, sch)
}
