package echoapi

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"

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
)

type (
	ServerDeps struct {
		Conf       *core.Config
		Logger     core.Logger
		Resolver   *session.Resolver
		NavMgr     *nav.Manager
		SchoolSvc  school.Service
		StudentSvc student.Service
		TeacherSvc teacher.Service
		ContentSvc content.Service
		NotifSvc   notification.Service
		FinanceSvc finance.Service
		AISvc      ai.Service
		Validate   *validator.Validate
		Translator ut.Translator
	}

	Server struct {
		deps     ServerDeps
		app      *echo.Echo
		errors   chan error
		shutdown chan os.Signal
	}
)

func NewServer(deps ServerDeps) *Server {
	s := &Server{
		deps:     deps,
		app:      echo.New(),
		errors:   make(chan error, 1),
		shutdown: make(chan os.Signal, 1),
	}
	signal.Notify(s.shutdown, os.Interrupt, syscall.SIGTERM)
	s.setup()
	return s
}

func (s *Server) setup() {
	conf := s.deps.Conf
	initJWTConfig(conf)

	s.app.Pre(middleware.RemoveTrailingSlash())
	if !conf.TestMode {
		s.app.Use(middleware.Logger())
	}
	// do not recover in DEV|TEST mode
	if !(conf.Debug || conf.TestMode) {
		s.app.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{LogLevel: log.ERROR}))
	}

	s.app.HTTPErrorHandler = newAppHTTPErrorHandler(s.deps.Logger, s.signalShutdown)
	s.app.Debug = conf.Debug

	s.app.GET("/", home)

	v1 := s.app.Group("/v1")
	jwt := middleware.JWTWithConfig(appJWTConfig)

	registerAuthAPI(v1, jwt, s.deps)
	registerNavAPI(v1, jwt, s.deps)
	registerSchoolAPI(v1, jwt, s.deps)
	registerPrincipalAPI(v1, jwt, s.deps)
	registerTeacherAPI(v1, jwt, s.deps)
	registerGuardianAPI(v1, jwt, s.deps)
	registerAIAPI(v1, jwt, s.deps)
	registerPaymentAPI(v1, s.deps)
}

func (s *Server) Start() {
	if err := s.app.Start(s.deps.Conf.Server.Addr); err != nil && err != http.ErrServerClosed {
		s.errors <- err
	}
}

func (s *Server) Errors() <-chan error { return s.errors }

func (s *Server) ShutdownSignal() <-chan os.Signal { return s.shutdown }

// signalShutdown is handed to the error handler so an integrity error can
// bring the server down gracefully.
func (s *Server) signalShutdown() {
	s.shutdown <- syscall.SIGTERM
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

func (s *Server) Close() error {
	return s.app.Close()
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) { // for tests
	s.app.ServeHTTP(w, r)
}

func home(ctx echo.Context) error {
	return ctx.String(http.StatusOK, "Welcome to Madrasa API!")
}
