package docrepos

import (
	"context"
	"sort"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/notification"
	"github.com/madrasahub/madrasa/storage/document"
)

type notificationRepository struct {
	store document.Store
}

var _ notification.Repository = (*notificationRepository)(nil)

func NewNotificationRepository(store document.Store) notification.Repository {
	return &notificationRepository{store: store}
}

func (repo *notificationRepository) CreateNotification(ctx context.Context, n notification.Notification) (notification.Notification, error) {
	rec, err := toRecord(n)
	if err != nil {
		return notification.Notification{}, err
	}
	rec, err = repo.store.Insert(ctx, document.Notifications, rec)
	if err != nil {
		return notification.Notification{}, err
	}
	err = fromRecord(rec, &n)
	return n, err
}

func (repo *notificationRepository) GetNotificationByID(ctx context.Context, id string) (notification.Notification, error) {
	records, err := repo.store.Select(ctx, document.Notifications, document.Eq("id", id))
	if err != nil {
		return notification.Notification{}, err
	}
	if len(records) == 0 {
		return notification.Notification{}, notification.ErrNotFound
	}
	var n notification.Notification
	err = fromRecord(records[0], &n)
	return n, err
}

func (repo *notificationRepository) QueryNotificationsByStudent(ctx context.Context, schoolID, studentID string) ([]notification.Notification, error) {
	records, err := repo.store.Select(ctx, document.Notifications,
		document.Eq("school_id", schoolID, "student_id", studentID))
	if err != nil {
		return nil, err
	}
	notifs := make([]notification.Notification, 0, len(records))
	for _, rec := range records {
		var n notification.Notification
		if err = fromRecord(rec, &n); err != nil {
			return nil, err
		}
		notifs = append(notifs, n)
	}
	// newest first
	sort.SliceStable(notifs, func(i, j int) bool { return notifs[i].CreatedAt.After(notifs[j].CreatedAt) })
	return notifs, nil
}

func (repo *notificationRepository) MarkNotificationRead(ctx context.Context, id string) (notification.Notification, error) {
	rec, err := repo.store.Update(ctx, document.Notifications, document.ByID(id), document.Record{"read": true})
	if err != nil {
		if errors.Cause(err) == document.ErrNotFound {
			return notification.Notification{}, notification.ErrNotFound
		}
		return notification.Notification{}, err
	}
	var n notification.Notification
	err = fromRecord(rec, &n)
	return n, err
}
