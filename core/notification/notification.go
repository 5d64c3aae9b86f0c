package notification

import (
	"context"
	"time"

	"github.com/pkg/errors"
)

var ErrNotFound = errors.New("notification not found")

type (
	Notification struct {
		ID        string    `json:"id"`
		SchoolID  string    `json:"school_id"`
		StudentID string    `json:"student_id"`
		Message   string    `json:"message"`
		Read      bool      `json:"read"`
		CreatedAt time.Time `json:"created_at"` // UTC
	}

	Repository interface {
		CreateNotification(ctx context.Context, n Notification) (Notification, error)
		GetNotificationByID(ctx context.Context, id string) (Notification, error)
		QueryNotificationsByStudent(ctx context.Context, schoolID, studentID string) ([]Notification, error)
		MarkNotificationRead(ctx context.Context, id string) (Notification, error)
	}

	Service interface {
		Notify(ctx context.Context, schoolID, studentID, message string) (Notification, error)
		QueryByStudent(ctx context.Context, schoolID, studentID string) ([]Notification, error)
		// MarkRead treats a notification addressed to another student as
		// not found.
		MarkRead(ctx context.Context, schoolID, studentID, id string) (Notification, error)
	}

	service struct {
		repo Repository
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository) Service {
	return &service{repo: repo}
}

func (svc *service) Notify(ctx context.Context, schoolID, studentID, message string) (Notification, error) {
	return svc.repo.CreateNotification(ctx, Notification{
		SchoolID:  schoolID,
		StudentID: studentID,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now().UTC(),
	})
}

func (svc *service) QueryByStudent(ctx context.Context, schoolID, studentID string) ([]Notification, error) {
	return svc.repo.QueryNotificationsByStudent(ctx, schoolID, studentID)
}

func (svc *service) MarkRead(ctx context.Context, schoolID, studentID, id string) (Notification, error) {
	n, err := svc.repo.GetNotificationByID(ctx, id)
	if err != nil {
		return Notification{}, err
	}
	if n.SchoolID != schoolID || n.StudentID != studentID {
		return Notification{}, ErrNotFound
	}
	return svc.repo.MarkNotificationRead(ctx, n.ID)
}
