package routes

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/common/middlewares"
	commonModels "github.com/c14220110/poliklinik-billing/internal/common/models"
	"github.com/c14220110/poliklinik-billing/internal/dokter/controllers"
)

// RegisterDokterRoutes mendaftarkan endpoint tagihan tindakan dan resep.
func RegisterDokterRoutes(api *echo.Group, auth echo.MiddlewareFunc, dc *controllers.DokterController, rc *controllers.ResepController) {
	api.POST("/kunjungan/:id/tindakan", dc.AddTindakan, auth, middlewares.RequirePrivilege(commonModels.PrivRekamMedis))
	api.POST("/resep", rc.CreateResep, auth, middlewares.RequirePrivilege(commonModels.PrivFarmasi))
}
