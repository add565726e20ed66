package echoapi

import (
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/trezcool/shule/core/user"
)

// roleMiddleware restricts a route to the given roles. Claims carrying an
// unrecognized role never match and are denied.
func roleMiddleware(roles ...user.Role) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			claims, err := getContextClaims(ctx)
			if err != nil {
				return errors.Wrap(err, "getting context claims")
			}
			role := user.ParseRole(claims.Role)
			for _, allowed := range roles {
				if role == allowed {
					return next(ctx)
				}
			}
			return errHttpForbidden
		}
	}
}

func principalMiddleware() echo.MiddlewareFunc {
	return roleMiddleware(user.RolePrincipal)
}
