package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/controllers"
)

func RegisterPoliklinikRoutes(api *echo.Group, auth echo.MiddlewareFunc, pc *controllers.PoliklinikController) {
	api.GET("/poliklinik", pc.GetPoliklinikList, auth)
}
