package docrepos

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/storage/document"
)

type schoolRepository struct {
	store document.Store
}

var _ school.Repository = (*schoolRepository)(nil)

func NewSchoolRepository(store document.Store) school.Repository {
	return &schoolRepository{store: store}
}

func (repo *schoolRepository) CreateSchool(ctx context.Context, sch school.School) (school.School, error) {
	rec, err := toRecord(sch)
	if err != nil {
		return school.School{}, err
	}
	rec, err = repo.store.Insert(ctx, document.Schools, rec)
	if err != nil {
		return school.School{}, err
	}
	err = fromRecord(rec, &sch)
	return sch, err
}

func (repo *schoolRepository) QueryAllSchools(ctx context.Context) ([]school.School, error) {
	records, err := repo.store.Select(ctx, document.Schools, document.Filter{})
	if err != nil {
		return nil, err
	}
	schools := make([]school.School, 0, len(records))
	for _, rec := range records {
		var sch school.School
		if err = fromRecord(rec, &sch); err != nil {
			return nil, err
		}
		schools = append(schools, sch)
	}
	// registration order; the login scan depends on it being stable
	sort.SliceStable(schools, func(i, j int) bool { return schools[i].CreatedAt.Before(schools[j].CreatedAt) })
	return schools, nil
}

func (repo *schoolRepository) GetSchoolByID(ctx context.Context, id string) (school.School, error) {
	records, err := repo.store.Select(ctx, document.Schools, document.Eq("id", id))
	if err != nil {
		return school.School{}, err
	}
	if len(records) == 0 {
		return school.School{}, school.ErrNotFound
	}
	var sch school.School
	err = fromRecord(records[0], &sch)
	return sch, err
}

func (repo *schoolRepository) UpdateSchool(ctx context.Context, sch school.School) (school.School, error) {
	rec, err := toRecord(sch)
	if err != nil {
		return school.School{}, err
	}
	rec, err = repo.store.Update(ctx, document.Schools, document.ByID(sch.ID), rec)
	if err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return school.School{}, school.ErrNotFound
		}
		return school.School{}, err
	}
	err = fromRecord(rec, &sch)
	return sch, err
}

func (repo *schoolRepository) DeleteSchool(ctx context.Context, id string) error {
	if err := repo.store.Delete(ctx, document.Schools, document.ByID(id)); err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return school.ErrNotFound
		}
		return err
	}
	return nil
}
