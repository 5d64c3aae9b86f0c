package docrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/storage/document"
)

type studentRepository struct {
	store document.Store
}

var _ student.Repository = (*studentRepository)(nil)

func NewStudentRepository(store document.Store) student.Repository {
	return &studentRepository{store: store}
}

func (repo *studentRepository) CreateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	rec, err := toRecord(std)
	if err != nil {
		return student.Student{}, err
	}
	rec, err = repo.store.Insert(ctx, document.Students, rec)
	if err != nil {
		return student.Student{}, err
	}
	err = fromRecord(rec, &std)
	return std, err
}

func (repo *studentRepository) GetStudentByID(ctx context.Context, id string) (student.Student, error) {
	records, err := repo.store.Select(ctx, document.Students, document.Eq("id", id))
	if err != nil {
		return student.Student{}, err
	}
	if len(records) == 0 {
		return student.Student{}, student.ErrNotFound
	}
	var std student.Student
	err = fromRecord(records[0], &std)
	return std, err
}

func (repo *studentRepository) FilterStudents(ctx context.Context, filter student.QueryFilter) ([]student.Student, error) {
	eq := make(map[string]interface{})
	if filter.SchoolID != "" {
		eq["school_id"] = filter.SchoolID
	}
	if filter.Stage != "" {
		eq["stage"] = filter.Stage
	}
	if filter.Level != "" {
		eq["level"] = filter.Level
	}
	if filter.Class != "" {
		eq["class"] = filter.Class
	}

	records, err := repo.store.Select(ctx, document.Students, document.Filter{Eq: eq})
	if err != nil {
		return nil, err
	}
	students := make([]student.Student, 0, len(records))
	for _, rec := range records {
		var std student.Student
		if err = fromRecord(rec, &std); err != nil {
			return nil, err
		}
		students = append(students, std)
	}
	return students, nil
}

func (repo *studentRepository) UpdateStudent(ctx context.Context, std student.Student) (student.Student, error) {
	rec, err := toRecord(std)
	if err != nil {
		return student.Student{}, err
	}
	rec, err = repo.store.Update(ctx, document.Students, document.ByID(std.ID), rec)
	if err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return student.Student{}, student.ErrNotFound
		}
		return student.Student{}, err
	}
	err = fromRecord(rec, &std)
	return std, err
}

func (repo *studentRepository) DeleteStudent(ctx context.Context, id string) error {
	if err := repo.store.Delete(ctx, document.Students, document.ByID(id)); err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return student.ErrNotFound
		}
		return err
	}
	return nil
}
