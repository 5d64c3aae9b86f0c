package content

import (
	"context"
	"fmt"
	"net/mail"
	"time"

	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/notification"
	"github.com/madrasahub/madrasa/core/student"
)

var (
	ErrNotFound   = errors.New("content item not found")
	ErrNotPending = errors.New("note is not pending")
)

type (
	Repository interface {
		CreateItem(ctx context.Context, item Item) (Item, error)
		GetItemByID(ctx context.Context, kind Kind, id string) (Item, error)
		FilterItems(ctx context.Context, filter QueryFilter) ([]Item, error)
		UpdateItem(ctx context.Context, item Item) (Item, error)
		DeleteItem(ctx context.Context, kind Kind, id string) error
	}

	Service interface {
		Create(ctx context.Context, schoolID, teacherID string, ni NewItem) (Item, error)
		GetByID(ctx context.Context, kind Kind, id string) (Item, error)
		Filter(ctx context.Context, filter QueryFilter) ([]Item, error)
		Update(ctx context.Context, kind Kind, id string, ui UpdateItem) (Item, error)
		Delete(ctx context.Context, kind Kind, id string) error
		// ApproveNote flips a pending note to approved and fans out one
		// notification per listed student.
		ApproveNote(ctx context.Context, id string) (Item, error)
		RejectNote(ctx context.Context, id string) (Item, error)
		// PublishAnnouncement posts the announcement and emails the guardians
		// of every student in its stage.
		PublishAnnouncement(ctx context.Context, schoolID string, ni NewItem) (Item, error)
	}

	service struct {
		repo       Repository
		notifSvc   notification.Service
		studentSvc student.Service
		mailSvc    core.EmailService
	}
)

var _ Service = (*service)(nil)

func NewService(repo Repository, notifSvc notification.Service, studentSvc student.Service, mailSvc core.EmailService) Service {
	return &service{
		repo:       repo,
		notifSvc:   notifSvc,
		studentSvc: studentSvc,
		mailSvc:    mailSvc,
	}
}

func (svc *service) Create(ctx context.Context, schoolID, teacherID string, ni NewItem) (Item, error) {
	item := Item{
		SchoolID:   schoolID,
		Kind:       ni.Kind,
		Title:      ni.Title,
		Body:       ni.Body,
		Stage:      ni.Stage,
		Level:      ni.Level,
		Class:      ni.Class,
		Subject:    ni.Subject,
		StudentIDs: ni.StudentIDs,
		TeacherID:  teacherID,
		Attachment: ni.Attachment,
		Extra:      ni.Extra,
		CreatedAt:  time.Now().UTC(),
	}
	if ni.Kind == KindNote {
		item.Status = StatusPending
	}
	return svc.repo.CreateItem(ctx, item)
}

func (svc *service) GetByID(ctx context.Context, kind Kind, id string) (Item, error) {
	return svc.repo.GetItemByID(ctx, kind, id)
}

func (svc *service) Filter(ctx context.Context, filter QueryFilter) ([]Item, error) {
	return svc.repo.FilterItems(ctx, filter)
}

func (svc *service) Update(ctx context.Context, kind Kind, id string, ui UpdateItem) (Item, error) {
	item, err := svc.repo.GetItemByID(ctx, kind, id)
	if err != nil {
		return Item{}, err
	}
	if ui.Title != "" {
		item.Title = ui.Title
	}
	if ui.Body != "" {
		item.Body = ui.Body
	}
	if ui.Subject != "" {
		item.Subject = ui.Subject
	}
	if ui.StudentIDs != nil {
		item.StudentIDs = ui.StudentIDs
	}
	if ui.Attachment != nil {
		item.Attachment = ui.Attachment
	}
	if ui.Extra != nil {
		item.Extra = ui.Extra
	}
	return svc.repo.UpdateItem(ctx, item)
}

func (svc *service) Delete(ctx context.Context, kind Kind, id string) error {
	return svc.repo.DeleteItem(ctx, kind, id)
}

func (svc *service) ApproveNote(ctx context.Context, id string) (Item, error) {
	note, err := svc.setNoteStatus(ctx, id, StatusApproved)
	if err != nil {
		return Item{}, err
	}

	msg := fmt.Sprintf("Note %q was approved", note.Title)
	for _, studentID := range note.StudentIDs {
		if _, err := svc.notifSvc.Notify(ctx, note.SchoolID, studentID, msg); err != nil {
			return Item{}, errors.Wrap(err, "notifying student")
		}
	}
	return note, nil
}

func (svc *service) RejectNote(ctx context.Context, id string) (Item, error) {
	return svc.setNoteStatus(ctx, id, StatusRejected)
}

func (svc *service) setNoteStatus(ctx context.Context, id, status string) (Item, error) {
	note, err := svc.repo.GetItemByID(ctx, KindNote, id)
	if err != nil {
		return Item{}, err
	}
	if note.Status != StatusPending {
		return Item{}, ErrNotPending
	}
	note.Status = status
	return svc.repo.UpdateItem(ctx, note)
}

func (svc *service) PublishAnnouncement(ctx context.Context, schoolID string, ni NewItem) (Item, error) {
	ni.Kind = KindAnnouncement
	item, err := svc.Create(ctx, schoolID, "", ni)
	if err != nil {
		return Item{}, err
	}

	students, err := svc.studentSvc.Filter(ctx, student.QueryFilter{SchoolID: schoolID, Stage: item.Stage})
	if err != nil {
		return Item{}, errors.Wrap(err, "querying students")
	}

	var msgs []*core.EmailMessage
	for _, std := range students {
		if std.GuardianEmail == "" {
			continue
		}
		msgs = append(msgs, &core.EmailMessage{
			To:      []mail.Address{{Name: std.Name, Address: std.GuardianEmail}},
			Subject: item.Title,
			Body:    item.Body,
		})
	}
	if len(msgs) > 0 {
		svc.mailSvc.SendMessages(msgs...)
	}
	return item, nil
}
