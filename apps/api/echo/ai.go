package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/ai"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
	"github.com/madrasahub/madrasa/core/student"
)

type aiApi struct {
	svc        ai.Service
	studentSvc student.Service
	validate   *validator.Validate
}

func registerAIAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := aiApi{
		svc:        deps.AISvc,
		studentSvc: deps.StudentSvc,
		validate:   deps.Validate,
	}

	ag := g.Group("/ai", jwt, roleMiddleware(session.RoleTeacher, session.RolePrincipal))
	ag.POST("/report-comment", api.reportComment,
		featureMiddleware(deps.SchoolSvc, school.FeatureAIReports))
	ag.POST("/lesson-plan", api.lessonPlan,
		featureMiddleware(deps.SchoolSvc, school.FeatureAILessonPlans))
	ag.POST("/talking-card-hotspots", api.talkingCardHotspots,
		featureMiddleware(deps.SchoolSvc, school.FeatureTalkingCards))
}

// Handlers

func (api *aiApi) reportComment(ctx echo.Context) error {
	var data ReportCommentRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to ReportCommentRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.studentSvc.GetByID(ctx.Request().Context(), data.StudentID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	if std.SchoolID != claims.SchoolID {
		return errHttpNotFound
	}

	comment, err := api.svc.ReportCardComment(ctx.Request().Context(), std, data.Subject, data.language())
	if err != nil {
		if cause := errors.Cause(err); cause == ai.ErrInsufficientGrades || cause == ai.ErrNoAPIKey {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "generating report comment")
	}
	return ctx.JSON(http.StatusOK, GeneratedTextResponse{Text: comment})
}

func (api *aiApi) lessonPlan(ctx echo.Context) error {
	var data LessonPlanRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to LessonPlanRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	plan, err := api.svc.LessonPlan(ctx.Request().Context(), data.Subject, data.Topic, data.Stage, data.language())
	if err != nil {
		if errors.Cause(err) == ai.ErrNoAPIKey {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "generating lesson plan")
	}
	return ctx.JSON(http.StatusOK, GeneratedTextResponse{Text: plan})
}

func (api *aiApi) talkingCardHotspots(ctx echo.Context) error {
	var data HotspotsRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to HotspotsRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	hotspots, err := api.svc.TalkingCardHotspots(ctx.Request().Context(), data.Image, data.MimeType)
	if err != nil {
		if errors.Cause(err) == ai.ErrNoAPIKey {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "detecting hotspots")
	}
	if hotspots == nil {
		hotspots = []ai.Hotspot{}
	}
	return ctx.JSON(http.StatusOK, hotspots)
}

type (
	ReportCommentRequest struct {
		StudentID string `json:"student_id" validate:"required"`
		Subject   string `json:"subject" validate:"required"`
		Language  string `json:"language"`
	}

	LessonPlanRequest struct {
		Subject  string `json:"subject" validate:"required"`
		Topic    string `json:"topic" validate:"required"`
		Stage    string `json:"stage" validate:"required,stage"`
		Language string `json:"language"`
	}

	HotspotsRequest struct {
		Image    string `json:"image" validate:"required"` // base64, no data URI prefix
		MimeType string `json:"mime_type" validate:"required"`
	}

	GeneratedTextResponse struct {
		Text string `json:"text"`
	}
)

func (r ReportCommentRequest) language() string { return defaultLanguage(r.Language) }
func (r LessonPlanRequest) language() string    { return defaultLanguage(r.Language) }

func defaultLanguage(lang string) string {
	if lang == "" {
		return "English"
	}
	return lang
}
