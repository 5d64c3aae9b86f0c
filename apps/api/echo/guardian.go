package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/content"
	"github.com/madrasahub/madrasa/core/finance"
	"github.com/madrasahub/madrasa/core/notification"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
	"github.com/madrasahub/madrasa/core/student"
)

type guardianApi struct {
	studentSvc student.Service
	notifSvc   notification.Service
	contentSvc content.Service
	financeSvc finance.Service
	validate   *validator.Validate
}

func registerGuardianAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := guardianApi{
		studentSvc: deps.StudentSvc,
		notifSvc:   deps.NotifSvc,
		contentSvc: deps.ContentSvc,
		financeSvc: deps.FinanceSvc,
		validate:   deps.Validate,
	}

	gg := g.Group("/guardian", jwt, roleMiddleware(session.RoleGuardian))

	gg.GET("/student", api.retrieveStudent)
	gg.GET("/notifications", api.queryNotifications)
	gg.PUT("/notifications/:id/read", api.markNotificationRead)
	gg.GET("/announcements", api.queryAnnouncements)
	gg.GET("/content", api.queryContent)

	fg := gg.Group("/fees", featureMiddleware(deps.SchoolSvc, school.FeatureFees))
	fg.GET("", api.queryFees)
	fg.POST("", api.payFee)
}

// getOwnStudent fetches the guardian's child from the claims.
func (api *guardianApi) getOwnStudent(ctx echo.Context) (student.Student, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return student.Student{}, errors.Wrap(err, "getting context claims")
	}

	std, err := api.studentSvc.GetByID(ctx.Request().Context(), claims.StudentID)
	if err != nil {
		if errors.Cause(err) == student.ErrNotFound {
			return student.Student{}, errHttpNotFound
		}
		return student.Student{}, errors.Wrap(err, "finding student by ID")
	}
	return std, nil
}

// Handlers

func (api *guardianApi) retrieveStudent(ctx echo.Context) error {
	std, err := api.getOwnStudent(ctx)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, std)
}

func (api *guardianApi) queryNotifications(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	notifs, err := api.notifSvc.QueryByStudent(ctx.Request().Context(), claims.SchoolID, claims.StudentID)
	if err != nil {
		return errors.Wrap(err, "querying notifications")
	}
	if notifs == nil {
		notifs = []notification.Notification{}
	}
	return ctx.JSON(http.StatusOK, notifs)
}

func (api *guardianApi) markNotificationRead(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	notif, err := api.notifSvc.MarkRead(ctx.Request().Context(), claims.SchoolID, claims.StudentID, ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == notification.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "marking notification read")
	}
	return ctx.JSON(http.StatusOK, notif)
}

func (api *guardianApi) queryAnnouncements(ctx echo.Context) error {
	std, err := api.getOwnStudent(ctx)
	if err != nil {
		return err
	}

	items, err := api.contentSvc.Filter(ctx.Request().Context(), content.QueryFilter{
		Kind:     content.KindAnnouncement,
		SchoolID: std.SchoolID,
		Stage:    std.Stage,
	})
	if err != nil {
		return errors.Wrap(err, "querying announcements")
	}
	if items == nil {
		items = []content.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

// queryContent lists items of one kind addressed to the guardian's child.
func (api *guardianApi) queryContent(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	kind := content.Kind(ctx.QueryParam("kind"))
	if !content.ValidKind(kind) {
		return errHttpNotFound
	}

	items, err := api.contentSvc.Filter(ctx.Request().Context(), content.QueryFilter{
		Kind:      kind,
		SchoolID:  claims.SchoolID,
		StudentID: claims.StudentID,
	})
	if err != nil {
		return errors.Wrap(err, "querying content")
	}
	if items == nil {
		items = []content.Item{}
	}
	return ctx.JSON(http.StatusOK, items)
}

func (api *guardianApi) queryFees(ctx echo.Context) error {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return errors.Wrap(err, "getting context claims")
	}

	fees, err := api.financeSvc.QueryFeesByStudent(ctx.Request().Context(), claims.SchoolID, claims.StudentID)
	if err != nil {
		return errors.Wrap(err, "querying fee payments")
	}
	if fees == nil {
		fees = []finance.FeePayment{}
	}
	return ctx.JSON(http.StatusOK, fees)
}

// payFee opens a checkout for the guardian's own child and returns the
// pending payment with its redirect URL. A double submit opens two pending
// checkouts; the gateway settles at most the one the guardian completes.
func (api *guardianApi) payFee(ctx echo.Context) error {
	var data finance.NewFeePayment
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewFeePayment")
	}

	std, err := api.getOwnStudent(ctx)
	if err != nil {
		return err
	}
	data.StudentID = std.ID
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	fp, err := api.financeSvc.PayFee(ctx.Request().Context(), std.SchoolID, data, std.Name, std.GuardianEmail)
	if err != nil {
		return errors.Wrap(err, "paying fee")
	}
	return ctx.JSON(http.StatusCreated, fp)
}
