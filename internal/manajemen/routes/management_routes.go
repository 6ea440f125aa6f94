package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/common/middlewares"
	"github.com/c14220110/poliklinik-billing/internal/common/models"
	"github.com/c14220110/poliklinik-billing/internal/manajemen/controllers"
)

// RegisterManagementRoutes mendaftarkan route dashboard manajemen (dilindungi JWT).
func RegisterManagementRoutes(api *echo.Group, auth echo.MiddlewareFunc, dc *controllers.DashboardController) {
	manajemen := api.Group("/manajemen", auth, middlewares.RequirePrivilege(models.PrivManajemen))
	manajemen.GET("/dashboard", dc.GetDashboard)
}
