package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/controllers"
	"github.com/c14220110/poliklinik-billing/internal/common/middlewares"
	commonModels "github.com/c14220110/poliklinik-billing/internal/common/models"
)

// RegisterBillingRoutes mendaftarkan endpoint kasir di bawah /api/billing.
func RegisterBillingRoutes(api *echo.Group, auth echo.MiddlewareFunc, bc *controllers.BillingController) {
	billing := api.Group("/billing", auth, middlewares.RequirePrivilege(commonModels.PrivKasir))
	billing.GET("", bc.ListBilling)
	billing.GET("/queue", bc.BillingQueue)
	billing.POST("/payment", bc.Payment)
	billing.GET("/:visitId", bc.BillingDetail)
	billing.POST("/:visitId/calculate", bc.Calculate)
}
