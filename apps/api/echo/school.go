package echoapi

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/nav"
	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
)

type schoolApi struct {
	svc      school.Service
	navMgr   *nav.Manager
	validate *validator.Validate
}

func registerSchoolAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := schoolApi{
		svc:      deps.SchoolSvc,
		navMgr:   deps.NavMgr,
		validate: deps.Validate,
	}

	sg := g.Group("/schools", jwt, roleMiddleware(session.RoleSuperAdmin))
	sg.GET("", api.query)
	sg.POST("", api.create)

	dg := sg.Group("/:id")
	dg.GET("", api.retrieve)
	dg.PUT("", api.update)
	dg.DELETE("", api.destroy)
	dg.PUT("/features", api.setFeature)
	dg.POST("/principals", api.addPrincipal)
	dg.DELETE("/principals/:pid", api.removePrincipal)
	dg.POST("/view", api.view)
}

// Handlers

func (api *schoolApi) query(ctx echo.Context) error {
	schools, err := api.svc.QueryAll(ctx.Request().Context())
	if err != nil {
		return errors.Wrap(err, "querying schools")
	}
	if schools == nil {
		schools = []school.School{}
	}
	return ctx.JSON(http.StatusOK, schools)
}

func (api *schoolApi) create(ctx echo.Context) error {
	var data school.NewSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewSchool")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.Create(ctx.Request().Context(), data)
	if err != nil {
		return errors.Wrap(err, "creating school")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *schoolApi) retrieve(ctx echo.Context) error {
	sch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding school by ID")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) update(ctx echo.Context) error {
	var data school.UpdateSchool
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to UpdateSchool")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.Update(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "updating school")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) destroy(ctx echo.Context) error {
	if err := api.svc.Delete(ctx.Request().Context(), ctx.Param("id")); err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "deleting school")
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (api *schoolApi) setFeature(ctx echo.Context) error {
	var data SetFeatureRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to SetFeatureRequest")
	}
	if err := api.validate.Struct(&data); err != nil {
		return err
	}

	sch, err := api.svc.SetFeature(ctx.Request().Context(), ctx.Param("id"), data.Feature, data.Enabled)
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "setting feature flag")
	}
	return ctx.JSON(http.StatusOK, sch)
}

func (api *schoolApi) addPrincipal(ctx echo.Context) error {
	var data school.NewPrincipal
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NewPrincipal")
	}
	if err := data.Validate(api.validate); err != nil {
		return err
	}

	sch, err := api.svc.AddPrincipal(ctx.Request().Context(), ctx.Param("id"), data)
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "adding principal")
	}
	return ctx.JSON(http.StatusCreated, sch)
}

func (api *schoolApi) removePrincipal(ctx echo.Context) error {
	sch, err := api.svc.RemovePrincipal(ctx.Request().Context(), ctx.Param("id"), ctx.Param("pid"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "removing principal")
	}
	return ctx.JSON(http.StatusOK, sch)
}

// view opens one school's management screen: the selection is stored on the
// session and cleared again when the super-admin navigates back.
func (api *schoolApi) view(ctx echo.Context) error {
	sch, err := api.svc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		if errors.Cause(err) == school.ErrNotFound {
			return errHttpNotFound
		}
		return errors.Wrap(err, "finding school by ID")
	}

	navID, err := getContextState(ctx, api.navMgr)
	if err != nil {
		return err
	}
	state, err := api.navMgr.Update(navID, func(s *nav.State) error {
		s.Session.ViewingSchoolID = sch.ID
		return s.NavigateTo(nav.PageSchoolManagement)
	})
	if err != nil {
		return errSessionExpired
	}
	return ctx.JSON(http.StatusOK, newNavStateResponse(state))
}

type SetFeatureRequest struct {
	Feature string `json:"feature" validate:"required"`
	Enabled bool   `json:"enabled"`
}
