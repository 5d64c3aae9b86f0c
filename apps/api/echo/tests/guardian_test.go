package tests

import (
	"net/http"
	"testing"

	echoapi "github.com/madrasahub/madrasa/apps/api/echo"
	"github.com/madrasahub/madrasa/core/finance"
	"github.com/madrasahub/madrasa/core/notification"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
	"github.com/madrasahub/madrasa/core/student"
)

func guardianSession(schoolID, studentID string) session.Session {
	return session.Session{Role: session.RoleGuardian, SchoolID: schoolID, StudentID: studentID}
}

func Test_guardianApi_student(t *testing.T) {
	sch := createSchool(t, "Guardian Academy", []string{"primary"})
	std := createStudent(t, sch.ID, student.NewStudent{
		GuardianCode: "GRD-API-1", Name: "Layla Benkirane", Stage: "primary", Level: "grade-1", Class: "A",
	})
	token := signIn(t, guardianSession(sch.ID, std.ID))

	t.Run("own child", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/guardian/student", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var got student.Student
		decodeBody(t, rec, &got)
		if got.ID != std.ID {
			t.Errorf("failed! student = %q; want %q", got.ID, std.ID)
		}
	})

	t.Run("teacher role is denied", func(t *testing.T) {
		teacherToken := signIn(t, session.Session{Role: session.RoleTeacher, SchoolID: sch.ID, TeacherID: "tch1"})
		req, rec := newAuthRequest(http.MethodGet, "/v1/guardian/student", teacherToken)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermDenied)}, rec)
	})
}

func Test_guardianApi_notifications(t *testing.T) {
	sch := createSchool(t, "Notif Academy", []string{"primary"})
	std := createStudent(t, sch.ID, student.NewStudent{
		GuardianCode: "GRD-API-2", Name: "Omar", Stage: "primary", Level: "grade-1", Class: "A",
	})
	notif, err := notifSvc.Notify(ctx, sch.ID, std.ID, "Grades updated in arabic")
	if err != nil {
		t.Fatalf("Notify(): %v", err)
	}
	token := signIn(t, guardianSession(sch.ID, std.ID))

	req, rec := newAuthRequest(http.MethodGet, "/v1/guardian/notifications", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var notifs []notification.Notification
	decodeBody(t, rec, &notifs)
	if len(notifs) != 1 || notifs[0].Read {
		t.Fatalf("failed! notifications = %+v", notifs)
	}

	req, rec = newAuthRequest(http.MethodPut, "/v1/guardian/notifications/"+notif.ID+"/read", token)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}
	var read notification.Notification
	decodeBody(t, rec, &read)
	if !read.Read {
		t.Error("failed! notification still unread")
	}

	t.Run("another student's notification is invisible", func(t *testing.T) {
		sibling := createStudent(t, sch.ID, student.NewStudent{
			GuardianCode: "GRD-API-2B", Name: "Sara", Stage: "primary", Level: "grade-1", Class: "A",
		})
		other, err := notifSvc.Notify(ctx, sch.ID, sibling.ID, "Grades updated in math")
		if err != nil {
			t.Fatalf("Notify(): %v", err)
		}

		req, rec := newAuthRequest(http.MethodPut, "/v1/guardian/notifications/"+other.ID+"/read", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}

		notifs, err := notifSvc.QueryByStudent(ctx, sch.ID, sibling.ID)
		if err != nil {
			t.Fatalf("QueryByStudent(): %v", err)
		}
		if len(notifs) != 1 || notifs[0].Read {
			t.Errorf("failed! notifications = %+v", notifs)
		}
	})
}

func Test_guardianApi_fees(t *testing.T) {
	sch := createSchool(t, "Fees Academy", []string{"primary"})
	std := createStudent(t, sch.ID, student.NewStudent{
		GuardianCode: "GRD-API-3", Name: "Nour", Stage: "primary", Level: "grade-1", Class: "A",
	})
	token := signIn(t, guardianSession(sch.ID, std.ID))

	var fee finance.FeePayment
	t.Run("pay opens a checkout", func(t *testing.T) {
		body := marshalObj(t, finance.NewFeePayment{Amount: 1500000, Currency: "IDR", Semester: 1})
		req, rec := newAuthRequest(http.MethodPost, "/v1/guardian/fees", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &fee)
		if fee.Status != finance.StatusPending {
			t.Errorf("failed! status = %q", fee.Status)
		}
		if fee.StudentID != std.ID {
			t.Errorf("failed! student = %q; want %q", fee.StudentID, std.ID)
		}
		if fee.RedirectURL == "" {
			t.Error("failed! no redirect URL")
		}
	})

	t.Run("settlement webhook settles the fee", func(t *testing.T) {
		body := marshalObj(t, echoapi.PaymentNotification{OrderID: fee.Reference, TransactionStatus: "settlement"})
		req, rec := newRequest(http.MethodPost, "/v1/payments/notify", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		req, rec = newAuthRequest(http.MethodGet, "/v1/guardian/fees", token)
		app.ServeHTTP(rec, req)
		var fees []finance.FeePayment
		decodeBody(t, rec, &fees)
		if len(fees) != 1 || fees[0].Status != finance.StatusSettled {
			t.Errorf("failed! fees = %+v", fees)
		}
	})

	t.Run("unknown order is acknowledged", func(t *testing.T) {
		body := marshalObj(t, echoapi.PaymentNotification{OrderID: "nope", TransactionStatus: "settlement"})
		req, rec := newRequest(http.MethodPost, "/v1/payments/notify", body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusOK)
		}
	})

	t.Run("disabled fees feature gates the group", func(t *testing.T) {
		if _, err := schoolSvc.SetFeature(ctx, sch.ID, school.FeatureFees, false); err != nil {
			t.Fatalf("SetFeature(): %v", err)
		}
		defer func() {
			if _, err := schoolSvc.SetFeature(ctx, sch.ID, school.FeatureFees, true); err != nil {
				t.Fatalf("SetFeature(): %v", err)
			}
		}()

		req, rec := newAuthRequest(http.MethodGet, "/v1/guardian/fees", token)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errFeatureOff)}, rec)
	})
}
