package main

import (
	"context"
	"expvar"
	"fmt"
	"log"
	"net/http"
	"os"

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

func main() {
	// =========================================================================
	// Set up Dependencies

	conf := core.NewConfig()

	// set up loggers
	logger := logsvc.NewRollbarLogger(
		log.New(os.Stdout, "API : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile),
		conf,
	)
	logger.Enable(!conf.Debug)

	// set up the document store: snapshot file in DEV, Postgres elsewhere
	store, closeStore, err := setUpStore(conf)
	if err != nil {
		logger.Fatal(fmt.Sprintf("setting up document store: %v", err), err)
	}
	defer func() {
		if err = closeStore(); err != nil {
			logger.Error(fmt.Sprintf("closing document store: %v", err), err)
		}
	}()

	// set up repositories
	schoolRepo := docrepos.NewSchoolRepository(store)
	studentRepo := docrepos.NewStudentRepository(store)
	teacherRepo := docrepos.NewTeacherRepository(store)
	contentRepo := docrepos.NewContentRepository(store)
	notifRepo := docrepos.NewNotificationRepository(store)
	financeRepo := docrepos.NewFinanceRepository(store)

	// set up services
	var mailSvc core.EmailService
	if conf.Debug {
		mailSvc = emailsvc.NewConsoleService(conf)
	} else {
		mailSvc = emailsvc.NewSendgridService(conf, logger)
	}
	var gateway finance.Gateway
	if conf.MidtransKey == "" {
		gateway = paymentsvc.DummyGateway{}
	} else {
		gateway = paymentsvc.NewMidtransGateway(conf)
	}

	schoolSvc := school.NewService(schoolRepo)
	studentSvc := student.NewService(studentRepo)
	teacherSvc := teacher.NewService(teacherRepo)
	notifSvc := notification.NewService(notifRepo)
	contentSvc := content.NewService(contentRepo, notifSvc, studentSvc, mailSvc)
	financeSvc := finance.NewService(financeRepo, gateway)
	aiSvc := ai.NewService(aisvc.NewGeminiGenerator(conf), conf)
	resolver := session.NewResolver(conf, schoolRepo, studentRepo, teacherRepo)
	navMgr := nav.NewManager()

	// =========================================================================
	// Initialize App

	logger.Info(fmt.Sprintf("Application initializing : version %q", conf.Build))
	defer logger.Info("Application stopped")

	validate := validator.New()
	translator := newTranslator()
	core.InitValidators(validate, translator)

	// =========================================================================
	// Start Debug Service
	//
	// /debug/pprof - Added to the default mux by importing the net/http/pprof package.
	// /debug/vars - Added to the default mux by importing the expvar package.

	// Expose important info under /debug/vars.
	expvar.NewString("build").Set(conf.Build)
	expvar.NewString("env").Set(conf.Env)

	go func() {
		if err := http.ListenAndServe(conf.Server.DebugHost, http.DefaultServeMux); err != nil {
			logger.Error(fmt.Sprintf("debug server closed: %v", err), err)
		}
	}()

	// =========================================================================
	// Start API Service

	server := echoapi.NewServer(
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

	go func() {
		server.Start()
	}()

	// =========================================================================
	// Shutdown

	select {
	case err = <-server.Errors():
		logger.Fatal(fmt.Sprintf("server error: %v", err), err)

	case sig := <-server.ShutdownSignal():
		logger.Info(fmt.Sprintf("%v: Start shutdown...", sig))

		// give outstanding requests a deadline for completion
		ctx, cancel := context.WithTimeout(context.Background(), conf.Server.ShutdownTimeout)
		defer cancel()

		// asking listener to shutdown and shed load
		if err = server.Shutdown(ctx); err != nil {
			logger.Error(fmt.Sprintf("could not stop server gracefully: %v", err), err)

			if err = server.Close(); err != nil {
				logger.Fatal(fmt.Sprintf("could not force stop server: %v", err), err)
			}
		}
	}
}

func setUpStore(conf *core.Config) (document.Store, func() error, error) {
	if conf.Debug {
		store, err := document.OpenSnapshot(conf.Store.SnapshotPath)
		if err != nil {
			return nil, nil, err
		}
		return store, func() error { return nil }, nil
	}

	if err := document.CreateIfNotExist(conf); err != nil {
		return nil, nil, err
	}
	db, err := document.Open(conf)
	if err != nil {
		return nil, nil, err
	}
	if err = document.Migrate(db.DB); err != nil {
		return nil, nil, err
	}
	return document.NewPostgresStore(db), db.Close, nil
}

func newTranslator() ut.Translator {
	_en := en.New()
	uni := ut.New(_en, _en)
	translator, _ := uni.GetTranslator("en")
	return translator
}
