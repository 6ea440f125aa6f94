package controllers

import (
	"github.com/labstack/echo/v4"

	"github.com/c14220110/poliklinik-billing/internal/administrasi/models"
	"github.com/c14220110/poliklinik-billing/internal/administrasi/services"
	"github.com/c14220110/poliklinik-billing/internal/common/middlewares"
	"github.com/c14220110/poliklinik-billing/internal/common/response"
)

// PasienController menangani pendaftaran kunjungan dan penguncian rekam medis.
type PasienController struct {
	Service *services.PendaftaranService
}

func NewPasienController(service *services.PendaftaranService) *PasienController {
	return &PasienController{Service: service}
}

// RegisterKunjungan: POST /api/kunjungan
func (pc *PasienController) RegisterKunjungan(c echo.Context) error {
	var req models.RegisterKunjunganRequest
	if err := response.Bind(c, &req); err != nil {
		return err
	}

	result, err := pc.Service.RegisterKunjungan(c.Request().Context(), req)
	if err != nil {
		return err
	}
	return response.Created(c, "Kunjungan registered successfully", result)
}

// LockRekamMedis: PUT /api/kunjungan/:id/lock
func (pc *PasienController) LockRekamMedis(c echo.Context) error {
	claims := middlewares.ClaimsFrom(c)
	if claims == nil {
		return echo.ErrUnauthorized
	}
	visitID, err := response.PathID(c, "id")
	if err != nil {
		return err
	}

	billing, err := pc.Service.LockRekamMedis(c.Request().Context(), visitID, claims.IDKaryawan)
	if err != nil {
		return err
	}
	return response.OK(c, "Rekam medis locked successfully", billing)
}
