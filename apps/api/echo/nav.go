package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/nav"
	"github.com/madrasahub/madrasa/core/session"
)

type navApi struct {
	navMgr *nav.Manager
}

func registerNavAPI(g *echo.Group, jwt echo.MiddlewareFunc, deps ServerDeps) {
	api := navApi{navMgr: deps.NavMgr}

	ng := g.Group("/nav", jwt)
	ng.GET("", api.retrieve)
	ng.POST("/go", api.navigate)
	ng.POST("/back", api.goBack)
	ng.POST("/logout", api.logout)
}

// getContextState fetches the caller's navigation state; a dead nav id means
// the server restarted and the client has to log in again.
func getContextState(ctx echo.Context, mgr *nav.Manager) (string, error) {
	claims, err := getContextClaims(ctx)
	if err != nil {
		return "", errors.Wrap(err, "getting context claims")
	}
	if _, err = mgr.Get(claims.NavID); err != nil {
		return "", errSessionExpired
	}
	return claims.NavID, nil
}

// Handlers

func (api *navApi) retrieve(ctx echo.Context) error {
	navID, err := getContextState(ctx, api.navMgr)
	if err != nil {
		return err
	}
	state, err := api.navMgr.Get(navID)
	if err != nil {
		return errSessionExpired
	}
	return ctx.JSON(http.StatusOK, newNavStateResponse(state))
}

func (api *navApi) navigate(ctx echo.Context) error {
	var data NavigateRequest
	if err := ctx.Bind(&data); err != nil {
		return errors.Wrap(err, "binding to NavigateRequest")
	}

	navID, err := getContextState(ctx, api.navMgr)
	if err != nil {
		return err
	}
	state, err := api.navMgr.Update(navID, func(s *nav.State) error {
		return s.NavigateTo(data.Page)
	})
	if err != nil {
		if errors.Cause(err) == nav.ErrNoState {
			return errSessionExpired
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return ctx.JSON(http.StatusOK, newNavStateResponse(state))
}

func (api *navApi) goBack(ctx echo.Context) error {
	navID, err := getContextState(ctx, api.navMgr)
	if err != nil {
		return err
	}
	state, err := api.navMgr.Update(navID, func(s *nav.State) error {
		s.GoBack()
		return nil
	})
	if err != nil {
		return errSessionExpired
	}
	return ctx.JSON(http.StatusOK, newNavStateResponse(state))
}

func (api *navApi) logout(ctx echo.Context) error {
	navID, err := getContextState(ctx, api.navMgr)
	if err != nil {
		return err
	}
	state, err := api.navMgr.Update(navID, func(s *nav.State) error {
		s.Logout()
		return nil
	})
	if err != nil {
		return errSessionExpired
	}
	return ctx.JSON(http.StatusOK, newNavStateResponse(state))
}

type (
	NavigateRequest struct {
		Page nav.Page `json:"page"`
	}

	NavStateResponse struct {
		Page    nav.Page        `json:"page"`
		History []nav.Page      `json:"history"`
		Session session.Session `json:"session"`
	}
)

func newNavStateResponse(state nav.State) NavStateResponse {
	return NavStateResponse{
		Page:    state.Current(),
		History: state.History(),
		Session: state.Session,
	}
}
