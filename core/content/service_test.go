package content_test

import (
	"context"
	"sync"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/core/notification"
	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/storage/document"
	docrepos "github.com/madrasahub/madrasa/storage/repos"
)

var ctx = context.Background()

// mailerMock records sent messages so tests can assert on them.
type mailerMock struct {
	mu   sync.Mutex
	sent []*core.EmailMessage
}

func (m *mailerMock) SendMessages(messages ...*core.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sent = append(m.sent, messages...)
}

type contentFixture struct {
	svc      content.Service
	notifSvc notification.Service
	stdSvc   student.Service
	mailer   *mailerMock
}

func newContentFixture(t *testing.T) *contentFixture {
	t.Helper()

	store, err := document.OpenSnapshot("")
	require.NoError(t, err)

	notifSvc := notification.NewService(docrepos.NewNotificationRepository(store))
	stdSvc := student.NewService(docrepos.NewStudentRepository(store))
	mailer := &mailerMock{}
	svc := content.NewService(docrepos.NewContentRepository(store), notifSvc, stdSvc, mailer)
	return &contentFixture{svc: svc, notifSvc: notifSvc, stdSvc: stdSvc, mailer: mailer}
}

func TestService_Create(t *testing.T) {
	fix := newContentFixture(t)

	t.Run("notes start pending", func(t *testing.T) {
		item, err := fix.svc.Create(ctx, "sch1", "tch1", content.NewItem{
			Kind:       content.KindNote,
			Title:      "Homework missing",
			StudentIDs: []string{"std1"},
		})
		assert.NoError(t, err)
		assert.Equal(t, content.StatusPending, item.Status)
		assert.Equal(t, "tch1", item.TeacherID)
		assert.NotEmpty(t, item.ID)
	})

	t.Run("other kinds carry no status", func(t *testing.T) {
		item, err := fix.svc.Create(ctx, "sch1", "tch1", content.NewItem{
			Kind:  content.KindSummary,
			Title: "Unit 3 summary",
		})
		assert.NoError(t, err)
		assert.Empty(t, item.Status)
	})
}

func TestService_ApproveNote(t *testing.T) {
	fix := newContentFixture(t)

	note, err := fix.svc.Create(ctx, "sch1", "tch1", content.NewItem{
		Kind:       content.KindNote,
		Title:      "Field trip form",
		StudentIDs: []string{"std1", "std2"},
	})
	require.NoError(t, err)

	note, err = fix.svc.ApproveNote(ctx, note.ID)
	assert.NoError(t, err)
	assert.Equal(t, content.StatusApproved, note.Status)

	// one notification per listed student
	for _, studentID := range []string{"std1", "std2"} {
		notifs, err := fix.notifSvc.QueryByStudent(ctx, "sch1", studentID)
		assert.NoError(t, err)
		require.Len(t, notifs, 1)
		assert.Contains(t, notifs[0].Message, "Field trip form")
		assert.False(t, notifs[0].Read)
	}

	// approving twice is rejected
	_, err = fix.svc.ApproveNote(ctx, note.ID)
	assert.Equal(t, content.ErrNotPending, errors.Cause(err))
}

func TestService_RejectNote(t *testing.T) {
	fix := newContentFixture(t)

	note, err := fix.svc.Create(ctx, "sch1", "tch1", content.NewItem{
		Kind:       content.KindNote,
		Title:      "Late arrival",
		StudentIDs: []string{"std1"},
	})
	require.NoError(t, err)

	note, err = fix.svc.RejectNote(ctx, note.ID)
	assert.NoError(t, err)
	assert.Equal(t, content.StatusRejected, note.Status)

	// rejection does not notify anyone
	notifs, err := fix.notifSvc.QueryByStudent(ctx, "sch1", "std1")
	assert.NoError(t, err)
	assert.Empty(t, notifs)

	_, err = fix.svc.RejectNote(ctx, note.ID)
	assert.Equal(t, content.ErrNotPending, errors.Cause(err))
}

func TestService_PublishAnnouncement(t *testing.T) {
	fix := newContentFixture(t)

	mkStudent := func(name, stage, email string) {
		t.Helper()
		_, err := fix.stdSvc.Create(ctx, "sch1", student.NewStudent{
			GuardianCode:  "GRD-" + name,
			GuardianEmail: email,
			Name:          name,
			Stage:         stage,
			Level:         "grade-1",
			Class:         "A",
		})
		require.NoError(t, err)
	}
	mkStudent("Layla", "primary", "layla.parent@example.com")
	mkStudent("Omar", "primary", "") // no guardian email, skipped
	mkStudent("Nour", "kindergarten", "nour.parent@example.com")

	item, err := fix.svc.PublishAnnouncement(ctx, "sch1", content.NewItem{
		Title: "Parent meeting",
		Body:  "Thursday at 5pm.",
		Stage: "primary",
	})
	assert.NoError(t, err)
	assert.Equal(t, content.KindAnnouncement, item.Kind)

	// only primary-stage guardians with an email are mailed
	require.Len(t, fix.mailer.sent, 1)
	msg := fix.mailer.sent[0]
	assert.Equal(t, "Parent meeting", msg.Subject)
	require.Len(t, msg.To, 1)
	assert.Equal(t, "layla.parent@example.com", msg.To[0].Address)
}
