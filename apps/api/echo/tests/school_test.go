package tests

import (
	"net/http"
	"testing"

	echoapi "github.com/madrasahub/madrasa/apps/api/echo"
	"github.com/madrasahub/madrasa/core/nav"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
)

func Test_schoolApi_roleGating(t *testing.T) {
	teacherToken := signIn(t, session.Session{Role: session.RoleTeacher, SchoolID: "sch1", TeacherID: "tch1"})
	guardianToken := signIn(t, session.Session{Role: session.RoleGuardian, SchoolID: "sch1", StudentID: "std1"})

	tests := []httpTest{
		{name: "auth required", path: "/v1/schools", wantCode: http.StatusUnauthorized, wantData: marshalObj(t, errMissingToken)},
		{name: "teacher denied", path: "/v1/schools", token: teacherToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermDenied)},
		{name: "guardian denied", path: "/v1/schools", token: guardianToken, wantCode: http.StatusForbidden, wantData: marshalObj(t, errPermDenied)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, rec := newAuthRequest(http.MethodGet, tt.path, tt.token)
			app.ServeHTTP(rec, req)
			checkCodeAndData(t, tt, rec)
		})
	}
}

func Test_schoolApi_crud(t *testing.T) {
	adminToken := signIn(t, session.Session{Role: session.RoleSuperAdmin})

	var sch school.School
	t.Run("create", func(t *testing.T) {
		body := marshalObj(t, school.NewSchool{Name: "Crud Academy", Stages: []string{"primary", "middle"}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/schools", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &sch)
		if !sch.Active {
			t.Error("failed! new school is not active")
		}
	})

	t.Run("invalid stage is rejected", func(t *testing.T) {
		body := marshalObj(t, school.NewSchool{Name: "Bad Academy", Stages: []string{"university"}})
		req, rec := newAuthRequest(http.MethodPost, "/v1/schools", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusBadRequest)
		}
	})

	t.Run("set feature flag", func(t *testing.T) {
		body := marshalObj(t, echoapi.SetFeatureRequest{Feature: school.FeatureFees, Enabled: false})
		req, rec := newAuthRequest(http.MethodPut, "/v1/schools/"+sch.ID+"/features", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var updated school.School
		decodeBody(t, rec, &updated)
		if updated.FeatureEnabled(school.FeatureFees) {
			t.Error("failed! fees still enabled")
		}
		if !updated.FeatureEnabled(school.FeatureGrades) {
			t.Error("failed! absent flags must stay enabled")
		}
	})

	t.Run("add and remove principal", func(t *testing.T) {
		body := marshalObj(t, school.NewPrincipal{Name: "Amina Haddad", Code: "CRUD-PRN-1", Stage: "primary"})
		req, rec := newAuthRequest(http.MethodPost, "/v1/schools/"+sch.ID+"/principals", adminToken, body)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusCreated {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		var updated school.School
		decodeBody(t, rec, &updated)
		if len(updated.Principals) != 1 {
			t.Fatalf("failed! principals = %+v", updated.Principals)
		}

		req, rec = newAuthRequest(http.MethodDelete, "/v1/schools/"+sch.ID+"/principals/"+updated.Principals[0].ID, adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
		}
		decodeBody(t, rec, &updated)
		if len(updated.Principals) != 0 {
			t.Errorf("failed! principals = %+v", updated.Principals)
		}
	})

	t.Run("unknown school is a 404", func(t *testing.T) {
		req, rec := newAuthRequest(http.MethodGet, "/v1/schools/nope", adminToken)
		app.ServeHTTP(rec, req)
		if rec.Code != http.StatusNotFound {
			t.Errorf("failed! code = %v; wantCode %v", rec.Code, http.StatusNotFound)
		}
	})
}

func Test_schoolApi_view(t *testing.T) {
	sch := createSchool(t, "Viewed Academy", []string{"primary"})
	adminToken := signIn(t, session.Session{Role: session.RoleSuperAdmin})

	req, rec := newAuthRequest(http.MethodPost, "/v1/schools/"+sch.ID+"/view", adminToken)
	app.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("failed! code = %v; body %s", rec.Code, rec.Body.String())
	}

	var resp echoapi.NavStateResponse
	decodeBody(t, rec, &resp)
	if resp.Page != nav.PageSchoolManagement {
		t.Errorf("failed! page = %v; want %v", resp.Page, nav.PageSchoolManagement)
	}
	if resp.Session.ViewingSchoolID != sch.ID {
		t.Errorf("failed! viewing school = %q; want %q", resp.Session.ViewingSchoolID, sch.ID)
	}
}
