package docrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/teacher"
	"github.com/madrasahub/madrasa/storage/document"
)

type teacherRepository struct {
	store document.Store
}

var _ teacher.Repository = (*teacherRepository)(nil)

func NewTeacherRepository(store document.Store) teacher.Repository {
	return &teacherRepository{store: store}
}

func (repo *teacherRepository) CreateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	rec, err := toRecord(tch)
	if err != nil {
		return teacher.Teacher{}, err
	}
	rec, err = repo.store.Insert(ctx, document.Teachers, rec)
	if err != nil {
		return teacher.Teacher{}, err
	}
	err = fromRecord(rec, &tch)
	return tch, err
}

func (repo *teacherRepository) GetTeacherByID(ctx context.Context, id string) (teacher.Teacher, error) {
	records, err := repo.store.Select(ctx, document.Teachers, document.Eq("id", id))
	if err != nil {
		return teacher.Teacher{}, err
	}
	if len(records) == 0 {
		return teacher.Teacher{}, teacher.ErrNotFound
	}
	var tch teacher.Teacher
	err = fromRecord(records[0], &tch)
	return tch, err
}

func (repo *teacherRepository) QueryTeachersBySchool(ctx context.Context, schoolID string) ([]teacher.Teacher, error) {
	records, err := repo.store.Select(ctx, document.Teachers, document.Eq("school_id", schoolID))
	if err != nil {
		return nil, err
	}
	teachers := make([]teacher.Teacher, 0, len(records))
	for _, rec := range records {
		var tch teacher.Teacher
		if err = fromRecord(rec, &tch); err != nil {
			return nil, err
		}
		teachers = append(teachers, tch)
	}
	return teachers, nil
}

func (repo *teacherRepository) UpdateTeacher(ctx context.Context, tch teacher.Teacher) (teacher.Teacher, error) {
	rec, err := toRecord(tch)
	if err != nil {
		return teacher.Teacher{}, err
	}
	rec, err = repo.store.Update(ctx, document.Teachers, document.ByID(tch.ID), rec)
	if err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return teacher.Teacher{}, teacher.ErrNotFound
		}
		return teacher.Teacher{}, err
	}
	err = fromRecord(rec, &tch)
	return tch, err
}

func (repo *teacherRepository) DeleteTeacher(ctx context.Context, id string) error {
	if err := repo.store.Delete(ctx, document.Teachers, document.ByID(id)); err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return teacher.ErrNotFound
		}
		return err
	}
	return nil
}
