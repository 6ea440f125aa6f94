package middlewares

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequirePrivilege memeriksa apakah klaim JWT memiliki salah satu privilege
// yang dibutuhkan. Harus dipasang setelah JWTMiddleware.
func RequirePrivilege(required ...int) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			claims := ClaimsFrom(c)
			if claims == nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing or invalid JWT claims")
			}
			for _, priv := range required {
				if claims.HasPrivilege(priv) {
					return next(c)
				}
			}
			return echo.NewHTTPError(http.StatusForbidden, "Anda tidak memiliki hak akses")
		}
	}
}
