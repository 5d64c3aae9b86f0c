package tests

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	echoapi "github.com/madrasahub/madrasa/apps/api/echo"
	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/ai"
	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/core/finance"
	"github.com/madrasahub/madrasa/core/nav"
	"github.com/madrasahub/madrasa/core/notification"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/core/teacher"
	aisvc "github.com/madrasahub/madrasa/services/ai"
	emailsvc "github.com/madrasahub/madrasa/services/email"
	logsvc "github.com/madrasahub/madrasa/services/logger"
	paymentsvc "github.com/madrasahub/madrasa/services/payment"
	"github.com/madrasahub/madrasa/storage/document"
	docrepos "github.com/madrasahub/madrasa/storage/repos"
)

var (
	ctx = context.Background()

	app        *echoapi.Server
	conf       *core.Config
	navMgr     *nav.Manager
	schoolSvc  school.Service
	studentSvc student.Service
	teacherSvc teacher.Service
	notifSvc   notification.Service
	contentSvc content.Service
	financeSvc finance.Service

	errMissingToken  = httpErr{Error: "missing or malformed jwt"}
	errPermDenied    = httpErr{Error: "permission denied"}
	errFeatureOff    = httpErr{Error: "feature disabled for this school"}
	errSessionDead   = httpErr{Error: "session expired, log in again"}
	errLoginCodeMiss = map[string]string{"code": "unrecognized login code"}
)

func TestMain(m *testing.M) {
	conf = &core.Config{
		TestMode:       true,
		AppName:        "Madrasa",
		SecretKey:      "test-secret",
		SuperAdminCode: "ROOT-9999",
	}
	conf.Server.JWTExpirationDelta = 10 * time.Minute
	conf.Server.JWTRefreshExpirationDelta = 4 * time.Hour
	conf.AI.MinGradedAssignments = 2

	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "TEST : ", log.LstdFlags),
		conf,
	)
	logger.Enable(false)

	store, err := document.OpenSnapshot("")
	if err != nil {
		fmt.Printf("document.OpenSnapshot(): %v", err)
		os.Exit(1)
	}

	schoolRepo := docrepos.NewSchoolRepository(store)
	studentRepo := docrepos.NewStudentRepository(store)
	teacherRepo := docrepos.NewTeacherRepository(store)
	contentRepo := docrepos.NewContentRepository(store)
	notifRepo := docrepos.NewNotificationRepository(store)
	financeRepo := docrepos.NewFinanceRepository(store)

	mailSvc := emailsvc.NewConsoleServiceMock(conf)

	schoolSvc = school.NewService(schoolRepo)
	studentSvc = student.NewService(studentRepo)
	teacherSvc = teacher.NewService(teacherRepo)
	notifSvc = notification.NewService(notifRepo)
	contentSvc = content.NewService(contentRepo, notifSvc, studentSvc, mailSvc)
	financeSvc = finance.NewService(financeRepo, paymentsvc.DummyGateway{})
	aiSvc := ai.NewService(&aisvc.DummyGenerator{}, conf)
	resolver := session.NewResolver(conf, schoolRepo, studentRepo, teacherRepo)
	navMgr = nav.NewManager()

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	app = echoapi.NewServer(
		echoapi.ServerDeps{
			Conf:       conf,
			Logger:     logger,
			Resolver:   resolver,
			NavMgr:     navMgr,
			SchoolSvc:  schoolSvc,
			StudentSvc: studentSvc,
			TeacherSvc: teacherSvc,
			ContentSvc: contentSvc,
			NotifSvc:   notifSvc,
			FinanceSvc: financeSvc,
			AISvc:      aiSvc,
			Validate:   validate,
			Translator: translator,
		},
	)

	os.Exit(m.Run())
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}

type httpErr struct {
	Error string `json:"error"`
}

type httpTest struct {
	name     string
	method   string
	path     string
	body     []byte
	token    string
	wantCode int
	wantData []byte
}

func newAuthRequest(method, path, token string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	var body bytes.Buffer
	if len(data) > 0 {
		body.Write(data[0])
	}
	req := httptest.NewRequest(method, path, &body)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	return req, rec
}

func newRequest(method, path string, data ...[]byte) (*http.Request, *httptest.ResponseRecorder) {
	return newAuthRequest(method, path, "", data...)
}

// signIn registers a live navigation state for the session and returns a
// token bound to it, skipping the login-code resolution step.
func signIn(t *testing.T, sess session.Session) string {
	t.Helper()
	navID := navMgr.Start(sess)
	token, err := echoapi.GenerateToken(echoapi.GetSessionClaims(conf, sess, navID))
	if err != nil {
		t.Fatalf("signIn(): %v", err)
	}
	return token
}

func marshalObj(t *testing.T, obj interface{}) []byte {
	t.Helper()
	data, err := json.Marshal(obj)
	if err != nil {
		t.Fatalf("marshalObj(): %v", err)
	}
	return data
}

func jsonBytesEqual(b1, b2 []byte) (bool, error) {
	var j1, j2 interface{}
	if err := json.Unmarshal(b1, &j1); err != nil {
		return false, err
	}
	if err := json.Unmarshal(b2, &j2); err != nil {
		return false, err
	}
	return reflect.DeepEqual(j1, j2), nil
}

func checkCodeAndData(t *testing.T, tt httpTest, rec *httptest.ResponseRecorder) {
	t.Helper()
	if rec.Code != tt.wantCode {
		t.Errorf("failed! code = %v; wantCode %v", rec.Code, tt.wantCode)
	}
	if tt.wantData == nil {
		return
	}
	ok, err := jsonBytesEqual(rec.Body.Bytes(), tt.wantData)
	if err != nil {
		t.Errorf("jsonBytesEqual() failed to compare; err %v", err)
	}
	if !ok {
		t.Errorf("failed! data = %v; wantData %v", rec.Body.String(), string(tt.wantData))
	}
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), v); err != nil {
		t.Fatalf("decodeBody(): %v; body %s", err, rec.Body.String())
	}
}

// fixtures

func createSchool(t *testing.T, name string, stages []string, principals ...school.NewPrincipal) school.School {
	t.Helper()
	sch, err := schoolSvc.Create(ctx, school.NewSchool{Name: name, Stages: stages})
	if err != nil {
		t.Fatalf("createSchool(): %v", err)
	}
	for _, np := range principals {
		if sch, err = schoolSvc.AddPrincipal(ctx, sch.ID, np); err != nil {
			t.Fatalf("createSchool(): %v", err)
		}
	}
	return sch
}

func createStudent(t *testing.T, schoolID string, ns student.NewStudent) student.Student {
	t.Helper()
	std, err := studentSvc.Create(ctx, schoolID, ns)
	if err != nil {
		t.Fatalf("createStudent(): %v", err)
	}
	return std
}

func createTeacher(t *testing.T, schoolID string, nt teacher.NewTeacher) teacher.Teacher {
	t.Helper()
	tch, err := teacherSvc.Create(ctx, schoolID, nt)
	if err != nil {
		t.Fatalf("createTeacher(): %v", err)
	}
	return tch
}
