package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/controllers"
	"github.com/c14220110/poliklinik-billing/internal/common/middlewares"
	commonModels "github.com/c14220110/poliklinik-billing/internal/common/models"
)

// RegisterAdministrasiRoutes mendaftarkan login dan endpoint kunjungan.
// api adalah grup /api tanpa JWT; auth adalah middleware JWT.
func RegisterAdministrasiRoutes(api *echo.Group, auth echo.MiddlewareFunc, ac *controllers.AdministrasiController, pc *controllers.PasienController) {
	// Login endpoint tidak dilindungi
	api.POST("/auth/login", ac.Login)

	kunjungan := api.Group("/kunjungan", auth)
	kunjungan.POST("", pc.RegisterKunjungan, middlewares.RequirePrivilege(commonModels.PrivPendaftaran))
	kunjungan.PUT("/:id/lock", pc.LockRekamMedis, middlewares.RequirePrivilege(commonModels.PrivRekamMedis))
}
