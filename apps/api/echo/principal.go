package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core"
	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/core/finance"
	"github.com/madrasahub/madrasa/core/nav"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
	"github.com/madrasahub/madrasa/core/student"
	"github.com/madrasahub/madrasa/core/teacher"
)

type principalApi struct {
	teacherSvc teacher.Service
	studentSvc student.Service
	contentSvc content.Service
	financeSvc finance.Service
	navMgr     *nav.Manager
	validate   *validator.Validate
}

func registerPrincipalAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := principalApi{
		teacherSvc: deps.TeacherSvc,
		studentSvc: deps.StudentSvc,
		contentSvc: deps.ContentSvc,
		financeSvc: deps.FinanceSvc,
		navMgr:     deps.NavMgr,
		validate:   deps.Validate,
	}

	pg := g.Group("/principal", jwt, roleMiddleware(session.RolePrincipal))

	pg.POST("/stage", api.selectStage)

	tg := pg.Group("/teachers")
	tg.GET("", api.queryTeachers)
	tg.POST("", api.createTeacher)
	tg.PUT("/:id", api.updateTeacher)
	tg.DELETE("/:id", api.destroyTeacher)
	tg.POST("/:id/impersonate", api.impersonateTeacher)

	sg := pg.Group("/students")
	sg.GET("", api.queryStudents)
	sg.POST("", api.createStudent)
	sg.PUT("/:id", api.updateStudent)
	sg.DELETE("/:id", api.destroyStudent)

	ng := pg.Group("/notes")
	ng.GET("", api.queryNotes)
	ng.POST("/:id/approve", api.approveNote)
	ng.POST("/:id/reject", api.rejectNote)

	eg := pg.Group("/expenses")
	eg.GET("", api.queryExpenses)
	eg.POST("", api.recordExpense)
	eg.DELETE("/:id", api.destroyExpense)

	pg.POST("/announcements", api.publishAnnouncement,
		featureMiddleware(deps.SchoolSvc, school.FeatureAnnouncements))
}

// Handlers

// selectStage picks one of the principal's stages for the session; the pick
// is cleared by the reset rules when they navigate back past the stage home.
func (api *principalApi) selectStage(ctx echo.Context) error {
	var data SelectStageRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SelectStageRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}
	if !claims.Session().HasStage(data.Stage) {
		return errHttpForbidden
	}

	navID, err := getContextState(ctx, api.navMgr)
	if err != nil {
		return err
	}
	state, err := api.navMgr.Update(navID, func(s *nav.State) error {
		s.Session.SelectedStage = data.Stage
		return s.NavigateTo(nav.PagePrincipalHome)
	})
	if err != nil {
		return errSessionExpired
	}
	return ctx.JSON(http.StatusOK, newNavStateResponse(state))
}

func (api *principalApi) queryTeachers(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	teachers, err := api.teacherSvc.QueryBySchool(ctx.Request().Context(), claims.SchoolID)
	if err != nil {
		return errors.Wrap(err, "querying teachers")
	}
	if teachers == nil {
		teachers = []teacher.Teacher{}
	}
	return ctx.JSON(http.StatusOK, teachers)
}

func (api *principalApi) createTeacher(ctx echo.Context) error {
	var data teacher.NewTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	tch, err := api.teacherSvc.Create(ctx.Request().Context(), claims.SchoolID, data)
	if err != nil {
		return errors.Wrap(err, "creating teacher")
	}
	return ctx.JSON(http.StatusCreated, tch)
}

func (api *principalApi) updateTeacher(ctx echo.Context) error {
	var data teacher.UpdateTeacher
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateTeacher")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	tch, err := api.getSchoolTeacher(ctx)
	if err != nil {
		return err
	}
	tch, err = api.teacherSvc.Update(ctx.Request().Context(), tch.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating teacher")
	}
	return ctx.JSON(http.StatusOK, tch)
}

func (api *principalApi) destroyTeacher(ctx echo.Context) error {
	tch, err := api.getSchoolTeacher(ctx)
	if err != nil {
		return err
	}
	if err = api.teacherSvc.Delete(ctx.Request().Context(), tch.ID); err != nil {
		return errors.Wrap(err, "deleting teacher")
	}
	return ctx.NoContent(http.StatusNoContent)
}

// impersonateTeacher opens the teacher's dashboard as that teacher; leaving
// the teacher home clears the impersonation via the reset rules.
func (api *principalApi) impersonateTeacher(ctx echo.Context) error {
	tch, err := api.getSchoolTeacher(ctx)
	if err != nil {
		return err
	}

	navID, err := getContextState(ctx, api.navMgr)
	if err != nil {
		return err
	}
	state, err := api.navMgr.Update(navID, func(s *nav.State) error {
		s.Session.ImpersonatedTeacherID = tch.ID
		return s.NavigateTo(nav.PageTeacherHome)
	})
	if err != nil {
		return errSessionExpired
	}
	return ctx.JSON(http.StatusOK, newNavStateResponse(state))
}

// getSchoolTeacher fetches the :id teacher and hides teachers of other
// schools behind a 404.
func (api *principalApi) getSchoolTeacher(ctx echo.Context) (teacher.Teacher, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return teacher.Teacher{}, errors.Wrap(err, "getting context claims")
	}

	tch, err := api.teacherSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == teacher.ErrNotFound {
			return teacher.Teacher{}, errHttpNotFound
		}
		return teacher.Teacher{}, errors.Wrap(err, "finding teacher by ID")
	}
	if tch.SchoolID != claims.SchoolID {
		return teacher.Teacher{}, errHttpNotFound
	}
	return tch, nil
}

func (api *principalApi) queryStudents(ctx echo.Context) error {
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

func (api *principalApi) createStudent(ctx echo.Context) error {
	var data student.NewStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	std, err := api.studentSvc.Create(ctx.Request().Context(), claims.SchoolID, data)
	if err != nil {
		return errors.Wrap(err, "creating student")
	}
	return ctx.JSON(http.StatusCreated, std)
}

func (api *principalApi) updateStudent(ctx echo.Context) error {
	var data student.UpdateStudent
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateStudent")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	std, err := api.getSchoolStudent(ctx)
	if err != nil {
		return err
	}
	std, err = api.studentSvc.Update(ctx.Request().Context(), std.ID, data)
	if err != nil {
		return errors.Wrap(err, "updating student")
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *principalApi) destroyStudent(ctx echo.Context) error {
	std, err := api.getSchoolStudent(ctx)
	if err != nil {
		return err
	}
	if err = api.studentSvc.Delete(ctx.Request().Context(), std.ID); err != nil {
		return errors.Wrap(err, "deleting student")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *principalApi) getSchoolStudent(ctx echo.Context) (student.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting context claims")
	}

	std, err := api.studentSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	if std.SchoolID != claims.SchoolID {
		return student.Student{}, errHttpNotFound
	}
	return std, nil
}

func (api *principalApi) queryNotes(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	status := ctx.QueryParam("status")
	if status == "" {
		status = content.StatusPending
	}
	notes, err := api.contentSvc.Filter(ctx.Request().Context(), content.QueryFilter{
		Kind:     content.KindNote,
		SchoolID: claims.SchoolID,
		Status:   status,
	})
	if err != nil {
		return errors.Wrap(err, "querying notes")
	}
	if notes == nil {
		notes = []content.Item{}
	}
	return ctx.JSON(http.StatusOK, notes)
}

func (api *principalApi) approveNote(ctx echo.Context) error {
	note, err := api.getSchoolNote(ctx)
	if err != nil {
		return err
	}
	note, err = api.contentSvc.ApproveNote(ctx.Request().Context(), note.ID)
	if err != nil {
		if errors.Cause(err) == content.ErrNotPending {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "approving note")
	}
	return ctx.JSON(http.StatusOK, note)
}

func (api *principalApi) rejectNote(ctx echo.Context) error {
	note, err := api.getSchoolNote(ctx)
	if err != nil {
		return err
	}
	note, err = api.contentSvc.RejectNote(ctx.Request().Context(), note.ID)
	if err != nil {
		if errors.Cause(err) == content.ErrNotPending {
			return core.NewValidationError(err)
		}
		return errors.Wrap(err, "rejecting note")
	}
	return ctx.JSON(http.StatusOK, note)
}

// getSchoolNote fetches the :id note and hides other schools' notes behind
// a 404, the same way teachers and students are hidden.
func (api *principalApi) getSchoolNote(ctx echo.Context) (content.Item, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return content.Item{}, errors.Wrap(err, "getting context claims")
	}

	note, err := api.contentSvc.GetByID(ctx.Request().Context(), content.KindNote, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == content.ErrNotFound {
			return content.Item{}, errHttpNotFound
		}
		return content.Item{}, errors.Wrap(err, "finding note by ID")
	}
	if note.SchoolID != claims.SchoolID {
		return content.Item{}, errHttpNotFound
	}
	return note, nil
}

func (api *principalApi) queryExpenses(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	expenses, err := api.financeSvc.QueryExpenses(ctx.Request().Context(), claims.SchoolID)
	if err != nil {
		return errors.Wrap(err, "querying expenses")
	}
	if expenses == nil {
		expenses = []finance.Expense{}
	}
	return ctx.JSON(http.StatusOK, expenses)
}

func (api *principalApi) recordExpense(ctx echo.Context) error {
	var data finance.NewExpense
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewExpense")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	exp, err := api.financeSvc.RecordExpense(ctx.Request().Context(), claims.SchoolID, data)
	if err != nil {
		return errors.Wrap(err, "recording expense")
	}
	return ctx.JSON(http.StatusCreated, exp)
}

func (api *principalApi) destroyExpense(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	if err := api.financeSvc.DeleteExpense(ctx.Request().Context(), claims.SchoolID, ctx.Param("id")); err != nil {
		if errors.Cause(err) == finance.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting expense")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *principalApi) publishAnnouncement(ctx echo.Context) error {
	var data content.NewItem
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewItem")
	}
	data.Kind = content.KindAnnouncement
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	item, err := api.contentSvc.PublishAnnouncement(ctx.Request().Context(), claims.SchoolID, data)
	if err != nil {
		return errors.Wrap(err, "publishing announcement")
	}
	return ctx.JSON(http.StatusCreated, item)
}

type SelectStageRequest struct {
	Stage string `json:"stage" validate:"required,stage"`
}
