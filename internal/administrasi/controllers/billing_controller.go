package controllers

import (
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/middlewares"
	"github.com/c14220110/poliklinik-billing/internal/common/response"
	"github.com/c14220110/poliklinik-billing/pkg/pagination"
)

// BillingController menangani endpoint kasir: daftar, antrian, detail,
// perhitungan ulang, dan pembayaran.
type BillingController struct {
	Billing  *services.BillingService
	Payments *services.PaymentService
	Queue    *services.QueueService
}

func NewBillingController(billing *services.BillingService, payments *services.PaymentService, queue *services.QueueService) *BillingController {
	return &BillingController{Billing: billing, Payments: payments, Queue: queue}
}

// ListBilling: GET /api/billing?status=&limit=&offset=
func (bc *BillingController) ListBilling(c echo.Context) error {
	var status *models.PaymentStatus
	if s := strings.TrimSpace(c.QueryParam("status")); s != "" {
		ps := models.PaymentStatus(s)
		status = &ps
	}

	page, err := bc.Queue.List(c.Request().Context(), status, pagination.FromContext(c))
	if err != nil {
		return err
	}
	return response.OK(c, "Billing data retrieved successfully", page)
}

// BillingQueue: GET /api/billing/queue?q=
func (bc *BillingController) BillingQueue(c echo.Context) error {
	queue, err := bc.Queue.SearchQueue(c.Request().Context(), c.QueryParam("q"))
	if err != nil {
		return err
	}
	return response.OK(c, "Billing queue retrieved successfully", queue)
}

// BillingDetail: GET /api/billing/:visitId
func (bc *BillingController) BillingDetail(c echo.Context) error {
	visitID, err := response.PathID(c, "visitId")
	if err != nil {
		return err
	}
	detail, err := bc.Queue.Detail(c.Request().Context(), visitID)
	if err != nil {
		return err
	}
	return response.OK(c, "Billing detail retrieved successfully", detail)
}

// Calculate: POST /api/billing/:visitId/calculate
func (bc *BillingController) Calculate(c echo.Context) error {
	visitID, err := response.PathID(c, "visitId")
	if err != nil {
		return err
	}
	var req models.CalculateRequest
	if err := response.Bind(c, &req); err != nil {
		return err
	}

	billing, err := bc.Billing.Calculate(c.Request().Context(), visitID, services.AdjustmentsFromRequest(req))
	if err != nil {
		return err
	}
	return response.OK(c, "Billing calculated successfully", billing)
}

// Payment: POST /api/billing/payment
func (bc *BillingController) Payment(c echo.Context) error {
	claims := middlewares.ClaimsFrom(c)
	if claims == nil {
		return echo.ErrUnauthorized
	}
	var req models.PaymentRequest
	if err := response.Bind(c, &req); err != nil {
		return err
	}
	result, err := bc.Payments.ProcessPaymentForVisit(c.Request().Context(), req.VisitID,
		services.PaymentInputFromRequest(req, claims.IDKaryawan))
	if err != nil {
		return err
	}
	return response.Created(c, "Payment recorded successfully", result)
}
