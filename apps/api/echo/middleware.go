package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/madrasahub/madrasa/core/school"
	"github.com/madrasahub/madrasa/core/session"
)

func roleMiddleware(roles ...session.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			for _, role := range roles {
				if session.Role(claims.Role) == role {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

// featureMiddleware gates an endpoint on a school's feature flag. Flags are
// additive: an absent flag is enabled. The super-admin is never gated.
func featureMiddleware(svc school.Service, feature string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			if session.Role(claims.Role) == session.RoleSuperAdmin {
				return next(ctx)
			}

			sch, err := svc.GetByID(ctx.Request().Context(), claims.SchoolID)
			if err != nil {
				if errors.Cause(err) == school.ErrNotFound {
					return errHttpNotFound
				}
				return errors.Wrap(err, "finding school by ID")
			}
			if !sch.FeatureEnabled(feature) {
				return errFeatureDisabled
			}
			return next(ctx)
		}
	}
}
