package routes

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	adminControllers "github.com/c14220110/poliklinik-billing/internal/administrasi/controllers"
	adminRoutes "github.com/c14220110/poliklinik-billing/internal/administrasi/routes"
	adminServices "github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/middlewares"
	"github.com/c14220110/poliklinik-billing/internal/common/response"
	"github.com/c14220110/poliklinik-billing/internal/common/validation"
	dokterControllers "github.com/c14220110/poliklinik-billing/internal/dokter/controllers"
	dokterRoutes "github.com/c14220110/poliklinik-billing/internal/dokter/routes"
	dokterServices "github.com/c14220110/poliklinik-billing/internal/dokter/services"
	manajemenControllers "github.com/c14220110/poliklinik-billing/internal/manajemen/controllers"
	manajemenRoutes "github.com/c14220110/poliklinik-billing/internal/manajemen/routes"
	manajemenServices "github.com/c14220110/poliklinik-billing/internal/manajemen/services"
	"github.com/c14220110/poliklinik-billing/internal/repository"
	"github.com/c14220110/poliklinik-billing/ws"
)

// Deps berisi dependency yang dibuat oleh perintah serve.
type Deps struct {
	Store     repository.Store
	Hub       *ws.Hub
	Tariff    adminServices.ConsultationTariff
	JWTSecret string
	JWTTTL    time.Duration
	Logger    zerolog.Logger
}

// Init menginisialisasi semua routes menggunakan Echo framework
func Init(e *echo.Echo, d Deps) {
	e.Validator = validation.New()

	var notifier adminServices.Notifier = adminServices.NopNotifier{}
	if d.Hub != nil {
		notifier = d.Hub
	}

	// Inisialisasi service
	adminService := adminServices.NewAdministrasiService(d.Store, d.JWTSecret, d.JWTTTL, d.Logger)
	billingService := adminServices.NewBillingService(d.Store, d.Tariff, notifier, d.Logger)
	paymentService := adminServices.NewPaymentService(d.Store, notifier, d.Logger)
	queueService := adminServices.NewQueueService(d.Store)
	pendaftaranService := adminServices.NewPendaftaranService(d.Store, billingService, notifier, d.Logger)
	poliklinikService := adminServices.NewPoliklinikService(d.Store)
	dokterService := dokterServices.NewDokterService(d.Store, billingService, notifier, d.Logger)
	resepService := dokterServices.NewResepService(d.Store, billingService, notifier, d.Logger)
	dashboardService := manajemenServices.NewDashboardService(d.Store, d.Logger)

	// Inisialisasi controller dengan service yang sesuai
	adminController := adminControllers.NewAdministrasiController(adminService)
	pasienController := adminControllers.NewPasienController(pendaftaranService)
	billingController := adminControllers.NewBillingController(billingService, paymentService, queueService)
	poliklinikController := adminControllers.NewPoliklinikController(poliklinikService)
	dokterController := dokterControllers.NewDokterController(dokterService)
	resepController := dokterControllers.NewResepController(resepService)
	dashboardController := manajemenControllers.NewDashboardController(dashboardService)

	e.GET("/healthz", func(c echo.Context) error {
		if err := d.Store.Ping(c.Request().Context()); err != nil {
			d.Logger.Error().Err(err).Msg("health check failed")
			return c.JSON(http.StatusServiceUnavailable, response.Envelope{
				Status:  http.StatusServiceUnavailable,
				Message: "database unavailable",
			})
		}
		return response.OK(c, "ok", nil)
	})

	// Grup API utama
	api := e.Group("/api")
	auth := middlewares.JWTMiddleware(d.JWTSecret)

	adminRoutes.RegisterAdministrasiRoutes(api, auth, adminController, pasienController)
	adminRoutes.RegisterPoliklinikRoutes(api, auth, poliklinikController)
	adminRoutes.RegisterBillingRoutes(api, auth, billingController)
	dokterRoutes.RegisterDokterRoutes(api, auth, dokterController, resepController)
	manajemenRoutes.RegisterManagementRoutes(api, auth, dashboardController)

	if d.Hub != nil {
		api.GET("/ws", ws.ServeWS(d.Hub), auth)
	}
}
