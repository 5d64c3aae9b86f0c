package docrepos

import (
	"context"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/storage/document"
)

// collections maps a content kind to its store collection.
var collections = map[content.Kind]string{
	content.KindSummary:              document.Summaries,
	content.KindExercise:             document.Exercises,
	content.KindNote:                 document.Notes,
	content.KindAbsence:              document.Absences,
	content.KindExamProgram:          document.ExamPrograms,
	content.KindAnnouncement:         document.Announcements,
	content.KindComplaint:            document.Complaints,
	content.KindTip:                  document.Tips,
	content.KindInterviewRequest:     document.InterviewRequests,
	content.KindLesson:               document.Lessons,
	content.KindTimetable:            document.Timetables,
	content.KindQuiz:                 document.Quizzes,
	content.KindProject:              document.Projects,
	content.KindLibraryItem:          document.LibraryItems,
	content.KindAlbumPhoto:           document.AlbumPhotos,
	content.KindPersonalizedExercise: document.PersonalizedExercises,
	content.KindUnifiedAssessment:    document.UnifiedAssessments,
	content.KindTalkingCard:          document.TalkingCards,
	content.KindMemorizationItem:     document.MemorizationItems,
	content.KindFeedback:             document.Feedback,
}

type contentRepository struct {
	store document.Store
}

var _ content.Repository = (*contentRepository)(nil)

func NewContentRepository(store document.Store) content.Repository {
	return &contentRepository{store: store}
}

func (repo *contentRepository) CreateItem(ctx context.Context, item content.Item) (content.Item, error) {
	rec, err := toRecord(item)
	if err != nil {
		return content.Item{}, err
	}
	rec, err = repo.store.Insert(ctx, collections[item.Kind], rec)
	if err != nil {
		return content.Item{}, err
	}
	err = fromRecord(rec, &item)
	return item, err
}

func (repo *contentRepository) GetItemByID(ctx context.Context, kind content.Kind, id string) (content.Item, error) {
	records, err := repo.store.Select(ctx, collections[kind], document.Eq("id", id))
	if err != nil {
		return content.Item{}, err
	}
	if len(records) == 0 {
		return content.Item{}, content.ErrNotFound
	}
	var item content.Item
	err = fromRecord(records[0], &item)
	return item, err
}

func (repo *contentRepository) FilterItems(ctx context.Context, filter content.QueryFilter) ([]content.Item, error) {
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
	if filter.Subject != "" {
		eq["subject"] = filter.Subject
	}
	if filter.Status != "" {
		eq["status"] = filter.Status
	}

	f := document.Filter{Eq: eq}
	if filter.StudentID != "" {
		f.Contains = map[string]interface{}{"student_ids": filter.StudentID}
	}

	records, err := repo.store.Select(ctx, collections[filter.Kind], f)
	if err != nil {
		return nil, err
	}
	items := make([]content.Item, 0, len(records))
	for _, rec := range records {
		var item content.Item
		if err = fromRecord(rec, &item); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

func (repo *contentRepository) UpdateItem(ctx context.Context, item content.Item) (content.Item, error) {
	rec, err := toRecord(item)
	if err != nil {
		return content.Item{}, err
	}
	rec, err = repo.store.Update(ctx, collections[item.Kind], document.ByID(item.ID), rec)
	if err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return content.Item{}, content.ErrNotFound
		}
		return content.Item{}, err
	}
	err = fromRecord(rec, &item)
	return item, err
}

func (repo *contentRepository) DeleteItem(ctx context.Context, kind content.Kind, id string) error {
	if err := repo.store.Delete(ctx, collections[kind], document.ByID(id)); err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return content.ErrNotFound
		}
		return err
	}
	return nil
}
