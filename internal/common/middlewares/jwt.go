package middlewares

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/pkg/utils"
)

// Definisikan tipe kustom untuk context key
type contextKey string

const ContextKeyClaims contextKey = "claims"

// JWTMiddleware memvalidasi bearer token dan menyimpan *utils.Claims ke context.
// Untuk koneksi websocket token boleh dikirim lewat query ?token=.
func JWTMiddleware(secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			tokenStr := ""
			if authHeader := c.Request().Header.Get(echo.HeaderAuthorization); authHeader != "" {
				parts := strings.SplitN(authHeader, " ", 2)
				if len(parts) != 2 || parts[0] != "Bearer" {
					return echo.NewHTTPError(http.StatusUnauthorized, "Invalid authorization header")
				}
				tokenStr = parts[1]
			} else {
				tokenStr = c.QueryParam("token")
			}
			if tokenStr == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Authorization header missing")
			}

			claims, err := utils.ValidateJWTToken(secret, tokenStr)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid token: "+err.Error())
			}

			c.Set(string(ContextKeyClaims), claims)
			return next(c)
		}
	}
}

// ClaimsFrom mengambil klaim yang disimpan JWTMiddleware, nil jika tidak ada.
func ClaimsFrom(c echo.Context) *utils.Claims {
	claims, _ := c.Get(string(ContextKeyClaims)).(*utils.Claims)
	return claims
}
