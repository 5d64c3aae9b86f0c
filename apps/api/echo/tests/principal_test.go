package tests

import (
	"net/http"
	"testing"

	echoapi "github.com/madrasahub/madrasa/apps/api/echo"
	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/core/finance"
	"github.com/madrasahub/madrasa/core/nav"
	"github.com/madrasahub/madrasa/core/session"
	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/core/teacher"
)

func principalSession(sch string, stages ...string) session.Session {
	return session.Session{Role: session.RolePrincipal, SchoolID: sch, Stages: stages}
}

func Test_principalApi_selectStage(t *testing.T) {
	sch := createSchool(t, "Stage Academy", []string{"kindergarten", "primary"})
	token := signIn(t, principalSession(sch.ID, "primary"))

	t.Run("own stage", func(t *testing.T) {
		body := marshalObj(t, echoapi.SelectStageRequest{Stage: "primary"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/principal/stage", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp echoapi.NavStateResponse
		decodeBody(t, rec, &resp)
		if resp.Page != nav.PagePrincipalHome {
			t.Errorf("failed! page = %v; want %v", resp.Page, nav.PagePrincipalHome)
		}
		if resp.Session.SelectedStage != "primary" {
			t.Errorf("failed! selected stage = %q", resp.Session.SelectedStage)
		}
	})

	t.Run("foreign stage is denied", func(t *testing.T) {
		body := marshalObj(t, echoapi.SelectStageRequest{Stage: "kindergarten"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/principal/stage", token, body)
		app.ServeHTTP(rec, req)
		checkCodeAndData(t, httpTest{wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermDenied)}, rec)
	})
}

func Test_principalApi_teachers(t *testing.T) {
	sch := createSchool(t, "Teachers Academy", []string{"primary"})
	other := createSchool(t, "Other Academy", []string{"primary"})
	foreign := createTeacher(t, other.ID, teacher.NewTeacher{Code: "PRN-FGN-1", Name: "Foreign", Subjects: []string{"math"}})
	token := signIn(t, principalSession(sch.ID, "primary"))

	var tch teacher.Teacher
	t.Run("create", func(t *testing.T) {
		body := marshalObj(t, teacher.NewTeacher{Code: "PRN-TCH-1", Name: "Yusuf Benali", Subjects: []string{"arabic"}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/principal/teachers", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &tch)
		if tch.SchoolID != sch.ID {
			t.Errorf("failed! school = %q; want %q", tch.SchoolID, sch.ID)
		}
	})

	t.Run("another school's teacher is invisible", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/principal/teachers/"+foreign.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})

	t.Run("impersonate", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/principal/teachers/"+tch.ID+"/impersonate", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var resp echoapi.NavStateResponse
		decodeBody(t, rec, &resp)
		if resp.Page != nav.PageTeacherHome {
			t.Errorf("failed! page = %v; want %v", resp.Page, nav.PageTeacherHome)
		}
		if resp.Session.ImpersonatedTeacherID != tch.ID {
			t.Errorf("failed! impersonated = %q; want %q", resp.Session.ImpersonatedTeacherID, tch.ID)
		}

		// navigating back drops the borrowed identity; a fresh struct so the
		// omitempty session fields of the previous decode cannot linger
		req, rec = newAuthRequest(http.MethodPost, "/v1/nav/back", token)
		app.ServeHTTP(rec, req)
		var backResp echoapi.NavStateResponse
		decodeBody(t, rec, &backResp)
		if backResp.Session.ImpersonatedTeacherID != "" {
			t.Errorf("failed! impersonated = %q after back", backResp.Session.ImpersonatedTeacherID)
		}
	})
}

func Test_principalApi_notes(t *testing.T) {
	sch := createSchool(t, "Notes Academy", []string{"primary"})
	std := createStudent(t, sch.ID, student.NewStudent{
		GuardianCode: "PRN-GRD-1", Name: "Layla", Stage: "primary", Level: "grade-1", Class: "A",
	})
	note, err := contentSvc.Create(ctx, sch.ID, "tch1", content.NewItem{
		Kind:       content.KindNote,
		Title:      "Missing homework",
		StudentIDs: []string{std.ID},
	})
	if err != nil {
		t.Fatalf("contentSvc.Create(): %v", err)
	}

	token := signIn(t, principalSession(sch.ID, "primary"))

	t.Run("pending notes are listed by default", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/principal/notes", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var notes []content.Item
		decodeBody(t, rec, &notes)
		if len(notes) != 1 || notes[0].ID != note.ID {
			t.Errorf("failed! notes = %+v", notes)
		}
	})

	t.Run("approve notifies the listed students", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/principal/notes/"+note.ID+"/approve", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var approved content.Item
		decodeBody(t, rec, &approved)
		if approved.Status != content.StatusApproved {
			t.Errorf("failed! status = %q", approved.Status)
		}

		notifs, err := notifSvc.QueryByStudent(ctx, sch.ID, std.ID)
		if err != nil {
			t.Fatalf("QueryByStudent(): %v", err)
		}
		if len(notifs) != 1 {
			t.Errorf("failed! notifications = %+v", notifs)
		}
	})

	t.Run("approving twice is a validation error", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodPost, "/v1/principal/notes/"+note.ID+"/approve", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("another school's note is invisible", func(t *testing.T) {
		other := createSchool(t, "Other Notes Academy", []string{"primary"})
		otherStd := createStudent(t, other.ID, student.NewStudent{
			GuardianCode: "PRN-GRD-2", Name: "Ziad", Stage: "primary", Level: "grade-1", Class: "A",
		})
		foreign, err := contentSvc.Create(ctx, other.ID, "tch2", content.NewItem{
			Kind:       content.KindNote,
			Title:      "Late arrival",
			StudentIDs: []string{otherStd.ID},
		})
		if err != nil {
			t.Fatalf("contentSvc.Create(): %v", err)
		}

		req, rec := newAuthRequest(http.MethodPost, "/v1/principal/notes/"+foreign.ID+"/approve", token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}

		// still pending, and nothing was fanned out to the other school
		foreign, err = contentSvc.GetByID(ctx, content.KindNote, foreign.ID)
		if err != nil {
			t.Fatalf("GetByID(): %v", err)
		}
		if foreign.Status != content.StatusPending {
			t.Errorf("failed! status = %q", foreign.Status)
		}
		notifs, err := notifSvc.QueryByStudent(ctx, other.ID, otherStd.ID)
		if err != nil {
			t.Fatalf("QueryByStudent(): %v", err)
		}
		if len(notifs) != 0 {
			t.Errorf("failed! notifications = %+v", notifs)
		}
	})
}

func Test_principalApi_expenses(t *testing.T) {
	sch := createSchool(t, "Expenses Academy", []string{"primary"})
	other := createSchool(t, "Other Expenses Academy", []string{"primary"})
	token := signIn(t, principalSession(sch.ID, "primary"))

	var exp finance.Expense
	t.Run("record", func(t *testing.T) {
		body := marshalObj(t, finance.NewExpense{Label: "Chalk and notebooks", Amount: 250000})
		req, rec := newAuthRequest(http.MethodPost, "/v1/principal/expenses", token, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &exp)
		if exp.SchoolID != sch.ID {
			t.Errorf("failed! school = %q; want %q", exp.SchoolID, sch.ID)
		}
	})

	t.Run("another school's expense is invisible", func(t *testing.T) {
		foreign, err := financeSvc.RecordExpense(ctx, other.ID, finance.NewExpense{Label: "Projector", Amount: 4000000})
		if err != nil {
			t.Fatalf("RecordExpense(): %v", err)
		}

		req, rec := newAuthRequest(http.MethodDelete, "/v1/principal/expenses/"+foreign.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}

		expenses, err := financeSvc.QueryExpenses(ctx, other.ID)
		if err != nil {
			t.Fatalf("QueryExpenses(): %v", err)
		}
		if len(expenses) != 1 {
			t.Errorf("failed! expenses = %+v", expenses)
		}
	})

	t.Run("destroy", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodDelete, "/v1/principal/expenses/"+exp.ID, token)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNoContent {
			t.Errorf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}

		expenses, err := financeSvc.QueryExpenses(ctx, sch.ID)
		if err != nil {
			t.Fatalf("QueryExpenses(): %v", err)
		}
		if len(expenses) != 0 {
			t.Errorf("failed! expenses = %+v", expenses)
		}
	})
}
