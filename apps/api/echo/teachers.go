package echoapi

import (
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/core/nav"
	"github.com/madrasahub/madrasa/core/notification"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
	"github.com/madrasahub/madrasa/core/student"
)

type teacherApi struct {
	studentSvc student.Service
	contentSvc content.Service
	notifSvc   notification.Service
	navMgr     *nav.Manager
	validate   *validator.Validate
}

func registerTeacherAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := teacherApi{
		studentSvc: deps.StudentSvc,
		contentSvc: deps.ContentSvc,
		notifSvc:   deps.NotifSvc,
		navMgr:     deps.NavMgr,
		validate:   deps.Validate,
	}

	tg := g.Group("/teacher", jwt, roleMiddleware(session.RoleTeacher, session.RolePrincipal))

	tg.GET("/students", api.queryStudents)
	tg.POST("/students/:id/grades", api.saveGrades,
		featureMiddleware(deps.SchoolSvc, school.FeatureGrades))

	cg := tg.Group("/content")
	cg.GET("", api.queryContent)
	cg.POST("", api.createContent)
	cg.GET("/:id", api.retrieveContent)
	cg.PUT("/:id", api.updateContent)
	cg.DELETE("/:id", api.destroyContent)
}

// effectiveTeacherID resolves who is acting as the teacher: the teacher
// themselves, or the teacher an impersonating principal picked.
func (api *teacherApi) effectiveTeacherID(ctx echo.Context, claims Claims) (string, error) {
	if claims.TeacherID != "" {
		return claims.TeacherID, nil
	}

	navID, err := getContextState(ctx, api.navMgr)
	if err != nil {
		return "", err
	}
	state, err := api.navMgr.Get(navID)
	if err != nil {
		return "", errSessionExpired
	}
	if state.Session.ImpersonatedTeacherID == "" {
		return "", errHttpForbidden
	}
	return state.Session.ImpersonatedTeacherID, nil
}

// Handlers

func (api *teacherApi) queryStudents(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(student.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []student.Student{})
	}
	filter.SchoolID = claims.SchoolID

	students, err := api.studentSvc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying students")
	}
	if students == nil {
		students = []student.Student{}
	}
	return ctx.JSON(http.StatusOK, students)
}

// saveGrades replaces one subject's grade sheet for the student. A sheet of
// all-blank scores is a valid submission.
func (api *teacherApi) saveGrades(ctx echo.Context) error {
	var data student.SaveGrades
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SaveGrades")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.studentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding student by ID")
	}
	if std.SchoolID != claims.SchoolID {
		return errHttpNotFound
	}

	std, err = api.studentSvc.SaveGrades(ctx.Request().Context(), std.ID, data)
	if err != nil {
		return errors.Wrap(err, "saving grades")
	}

	msg := fmt.Sprintf("Grades updated in %s", data.Subject)
	if _, err = api.notifSvc.Notify(ctx.Request().Context(), std.SchoolID, std.ID, msg); err != nil {
		return errors.Wrap(err, "notifying student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *teacherApi) queryContent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	filter := new(content.QueryFilter)
	if err := ctx.Bind(filter); err != nil {
		return ctx.JSON(http.StatusOK, []content.Item{})
	}
	filter.SchoolID = claims.SchoolID

	items, err := api.contentSvc.Filter(ctx.Request().Context(), *filter)
	if err != nil {
		return errors.Wrap(err, "querying content")
	}
	if items == nil {
		items = []content.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *teacherApi) createContent(ctx echo.Context) error {
	var data content.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	teacherID, err := api.effectiveTeacherID(ctx, claims)
	if err != nil {
		return err
	}

	item, err := api.contentSvc.Create(ctx.Request().Context(), claims.SchoolID, teacherID, data)
	if err != nil {
		return errors.Wrap(err, "creating content item")
	}

	// absences land on the guardian's dashboard immediately
	if item.Kind == content.KindAbsence {
		msg := fmt.Sprintf("Absence recorded: %s", item.Title)
		for _, studentID := range item.StudentIDs {
			if _, err = api.notifSvc.Notify(ctx.Request().Context(), item.SchoolID, studentID, msg); err != nil {
				return errors.Wrap(err, "notifying student")
			}
		}
	}
	return ctx.JSON(http.StatusCreated, item)
}

func (api *teacherApi) retrieveContent(ctx echo.Context) error {
	item, err := api.getSchoolItem(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *teacherApi) updateContent(ctx echo.Context) error {
	var data content.UpdateItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateItem")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	item, err := api.getSchoolItem(ctx)
	if err != nil {
		return err
	}
	item, err = api.contentSvc.Update(ctx.Request().Context(), item.Kind, item.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating content item")
	}
	return ctx.JSON(http.StatusOK, item)
}

func (api *teacherApi) destroyContent(ctx echo.Context) error {
	item, err := api.getSchoolItem(ctx)
	if err != nil {
		return err
	}
	if err = api.contentSvc.Delete(ctx.Request().Context(), item.Kind, item.ID); err != nil {
		return errors.Wrap(err, "deleting content item")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// getSchoolItem fetches the :id item of the ?kind= collection and hides
// other schools' items behind a 404.
func (api *teacherApi) getSchoolItem(ctx echo.Context) (content.Item, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return content.Item{}, errors.Wrap(err, "getting context claims")
	}

	kind := content.Kind(ctx.QueryParam("kind"))
	if !content.ValidKind(kind) {
		return content.Item{}, errHttpNotFound
	}

	item, err := api.contentSvc.GetByID(ctx.Request().Context(), kind, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return content.Item{}, errHttpNotFound
		}
		return content.Item{}, errors.Wrap(err, "finding content item by ID")
	}
	if item.SchoolID != claims.SchoolID {
		return content.Item{}, errHttpNotFound
	}
	return item, nil
}
